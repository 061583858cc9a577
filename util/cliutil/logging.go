package cliutil

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type LogOptions struct {
	// text|json
	LogFormat string

	// info|debug|warn|error
	LogLevel string

	// defaults to stdout
	Out io.Writer
}

func firstenv(env_var_names ...string) string {
	for _, env_var_name := range env_var_names {
		val := os.Getenv(env_var_name)
		if val != "" {
			return val
		}
	}
	return ""
}

func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(raw) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %#v", raw)
	}
}

// SetupSlog builds a logger from the passed options, falling back to env vars, and installs it as the slog default.
//
// passing default cliutil.LogOptions{} is ok.
//
// COGITIA_LOG_LEVEL=info|debug|warn|error
//
// COGITIA_LOG_FMT=text|json
func SetupSlog(options LogOptions) (*slog.Logger, error) {
	if options.LogLevel == "" {
		options.LogLevel = firstenv("COGITIA_LOG_LEVEL", "LOG_LEVEL")
	}
	level, err := parseLevel(options.LogLevel)
	if err != nil {
		return nil, err
	}
	hopts := slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	if options.LogFormat == "" {
		options.LogFormat = firstenv("COGITIA_LOG_FMT", "LOG_FMT")
	}
	out := options.Out
	if out == nil {
		out = os.Stdout
	}

	var handler slog.Handler
	switch strings.ToLower(options.LogFormat) {
	case "", "text":
		handler = slog.NewTextHandler(out, &hopts)
	case "json":
		handler = slog.NewJSONHandler(out, &hopts)
	default:
		return nil, fmt.Errorf("invalid log format: %#v", options.LogFormat)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}
