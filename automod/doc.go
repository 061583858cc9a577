// Toxicity moderation decision engine for chat communities.
//
// This package (`github.com/cogitia/cogitia/automod`) decides what should happen to a single chat message: nothing, human review, or an automatic sanction. Each message is rate limited per client, cleaned and language-tagged, checked against guild exception rules (whitelisted phrases, protected roles, reported speech), scored by a toxicity classifier, and compared against the guild's thresholds. Sanctions escalate with the author's recent infraction history and the severity of the violation. Every terminal decision is written to an audit log, which moderators can later approve or reject.
//
// The implementation lives in sub-packages: `engine` holds the pipeline, and `policystore`, `countstore`, `auditlog`, `ratelimit` and `cachestore` are its pluggable storage layers (in-memory, redis, or SQL via `dbstore`). See `cmd/cogitia` for a daemon built on this package.
package automod
