package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/cogitia/cogitia/automod/engine"
	"github.com/cogitia/cogitia/automod/policy"
	"github.com/cogitia/cogitia/automod/policystore"
	"github.com/cogitia/cogitia/automod/toxicity"
	"github.com/cogitia/cogitia/util/cliutil"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "cogitia",
		Usage:   "chat moderation decision service",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity level (eg: warn, info, debug)",
			EnvVars: []string{"COGITIA_LOG_LEVEL", "LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "log output format: text or json",
			Value:   "json",
			EnvVars: []string{"COGITIA_LOG_FMT", "LOG_FMT"},
		},
		&cli.StringFlag{
			Name:    "escalation-table",
			Usage:   "sanction escalation table: default (severity-aware) or legacy (count only)",
			Value:   "default",
			EnvVars: []string{"COGITIA_ESCALATION_TABLE"},
		},
		&cli.StringFlag{
			Name:    "policy-file",
			Usage:   "JSON file of guild policies to preload",
			EnvVars: []string{"COGITIA_POLICY_FILE"},
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
		checkCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "database connection string for policies and audit log (sqlite or postgres); empty keeps everything in memory",
			EnvVars: []string{"COGITIA_DATABASE_URL", "DATABASE_URL"},
		},
		&cli.BoolFlag{
			Name:    "enable-db-tracing",
			Usage:   "emit OpenTelemetry spans for database queries",
			EnvVars: []string{"COGITIA_ENABLE_DB_TRACING"},
		},
		&cli.IntFlag{
			Name:    "max-db-connections",
			EnvVars: []string{"COGITIA_MAX_DB_CONNECTIONS"},
			Value:   40,
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL, for shared rate limits, infraction counts and policy cache: redis://<user>:<pass>@<hostname>:6379/<db>",
			EnvVars: []string{"COGITIA_REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for HTTP APIs",
			Value:   ":5000",
			EnvVars: []string{"COGITIA_BIND"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":5001",
			EnvVars: []string{"COGITIA_METRICS_LISTEN"},
		},
		&cli.StringFlag{
			Name:    "classifier",
			Usage:   "toxicity classifier backend: http, openai, or static (all-zero scores, for testing)",
			Value:   "http",
			EnvVars: []string{"COGITIA_CLASSIFIER"},
		},
		&cli.StringFlag{
			Name:    "model-url",
			Usage:   "endpoint of the self-hosted toxicity model service",
			Value:   "http://localhost:8000/classify",
			EnvVars: []string{"COGITIA_MODEL_URL"},
		},
		&cli.StringFlag{
			Name:    "model-token",
			Usage:   "bearer token for the model service",
			EnvVars: []string{"COGITIA_MODEL_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "openai-api-key",
			EnvVars: []string{"COGITIA_OPENAI_API_KEY", "OPENAI_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "openai-base-url",
			Usage:   "override for OpenAI-compatible moderation APIs",
			EnvVars: []string{"COGITIA_OPENAI_BASE_URL"},
		},
		&cli.StringFlag{
			Name:    "openai-model",
			EnvVars: []string{"COGITIA_OPENAI_MODEL"},
		},
		&cli.Float64Flag{
			Name:    "openai-rate-limit",
			Usage:   "max moderation requests per second to OpenAI (0 for unlimited)",
			Value:   20,
			EnvVars: []string{"COGITIA_OPENAI_RATE_LIMIT"},
		},
		&cli.IntFlag{
			Name:    "rate-limit",
			Usage:   "max analyze requests per client per minute",
			Value:   60,
			EnvVars: []string{"COGITIA_RATE_LIMIT"},
		},
		&cli.StringFlag{
			Name:    "admin-token",
			Usage:   "bearer token required to update guild configuration; empty disables updates",
			EnvVars: []string{"COGITIA_ADMIN_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "slack-webhook-url",
			Usage:   "full URL of slack webhook, for review notifications",
			EnvVars: []string{"SLACK_WEBHOOK_URL"},
		},
	},
	Action: func(cctx *cli.Context) error {
		logger, err := configLogger(cctx)
		if err != nil {
			return err
		}

		shutdownOTEL := configOTEL("cogitia")
		defer shutdownOTEL()

		escalation, err := engine.EscalationTableByName(cctx.String("escalation-table"))
		if err != nil {
			return err
		}

		srv, err := NewServer(Config{
			Logger:           logger,
			Bind:             cctx.String("bind"),
			DatabaseURL:      cctx.String("database-url"),
			MaxDBConnections: cctx.Int("max-db-connections"),
			EnableDBTracing:  cctx.Bool("enable-db-tracing"),
			RedisURL:         cctx.String("redis-url"),
			PolicyFileJSON:   cctx.String("policy-file"),
			Classifier:       cctx.String("classifier"),
			ModelURL:         cctx.String("model-url"),
			ModelToken:       cctx.String("model-token"),
			OpenAIKey:        cctx.String("openai-api-key"),
			OpenAIBaseURL:    cctx.String("openai-base-url"),
			OpenAIModel:      cctx.String("openai-model"),
			OpenAIRateLimit:  cctx.Float64("openai-rate-limit"),
			RateLimit:        cctx.Int("rate-limit"),
			Escalation:       escalation,
			AdminToken:       cctx.String("admin-token"),
			SlackWebhookURL:  cctx.String("slack-webhook-url"),
		})
		if err != nil {
			return fmt.Errorf("failed to construct server: %v", err)
		}

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				slog.Error("failed to start metrics endpoint", "error", err)
				panic(fmt.Errorf("failed to start metrics endpoint: %w", err))
			}
		}()

		return srv.RunAPI()
	},
}

var checkCmd = &cli.Command{
	Name:      "check",
	Usage:     "evaluate category scores against a guild policy, without a classifier or any stores",
	ArgsUsage: `<scores-json>`,
	Description: `Scores are a JSON object of category probabilities, eg '{"toxic": 0.95}'.
The guild policy is the default one, or the named guild from --policy-file.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "guild",
			Usage: "guild whose policy to evaluate against",
			Value: "default",
		},
		&cli.Float64Flag{
			Name:  "tolerance",
			Usage: "override the policy tolerance multiplier",
		},
		&cli.IntFlag{
			Name:  "prior",
			Usage: "number of prior infractions in the trailing window",
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := context.Background()
		if cctx.Args().Len() != 1 {
			return fmt.Errorf("expected a single scores JSON argument")
		}
		var scores toxicity.Scores
		if err := json.Unmarshal([]byte(cctx.Args().First()), &scores); err != nil {
			return fmt.Errorf("parsing scores: %w", err)
		}

		cfg := engine.DefaultEngineConfig()
		escalation, err := engine.EscalationTableByName(cctx.String("escalation-table"))
		if err != nil {
			return err
		}
		cfg.Escalation = escalation

		store := policystore.NewMemPolicyStore()
		if p := cctx.String("policy-file"); p != "" {
			if err := store.LoadFromFileJSON(p); err != nil {
				return fmt.Errorf("loading policy file: %w", err)
			}
		}
		pol := engine.ResolvePolicy(ctx, store, cctx.String("guild"), slog.Default())
		if cctx.IsSet("tolerance") {
			tol := cctx.Float64("tolerance")
			pol, err = pol.Apply(policy.Update{Tolerance: &tol}, pol.UpdatedAt)
			if err != nil {
				return err
			}
		}

		dec := engine.Assess(engine.Aggregate(scores, cfg.Weights), &pol, cctx.Int("prior"), cfg)
		b, err := json.MarshalIndent(dec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cctx.App.Writer, string(b))
		return nil
	},
}

func configLogger(cctx *cli.Context) (*slog.Logger, error) {
	return cliutil.SetupSlog(cliutil.LogOptions{
		LogLevel:  cctx.String("log-level"),
		LogFormat: cctx.String("log-format"),
	})
}
