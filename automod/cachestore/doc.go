// Automod component for caching typed values (such as resolved guild policies) with a fixed TTL and purging.
//
// Includes an interface and implementations using redis and in-process memory.
//
// This is used by the policy store to avoid a database round-trip for every analyzed message.
package cachestore
