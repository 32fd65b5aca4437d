// Command queryfarmer translates farmer queries between English and Indian
// languages while keeping placeholders, URLs and numbers intact.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	queryfarmer "github.com/srivastavaprakhar/queryFARMER"
	"github.com/srivastavaprakhar/queryFARMER/config"
)

type rootOptions struct {
	configFile string
	debug      bool
	stdout     io.Writer
	stderr     io.Writer
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	rootCommand := &cobra.Command{
		Use:           queryfarmer.Name,
		Short:         queryfarmer.Description,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCommand.SetOut(stdout)
	rootCommand.SetErr(stderr)
	rootCommand.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file path")
	rootCommand.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	rootCommand.AddCommand(
		newServeCommand(opts),
		newTranslateCommand(opts),
		newShieldCommand(opts),
		newLanguagesCommand(opts),
		newConfigCommand(opts),
		newVersionCommand(opts),
	)
	return rootCommand
}

// load reads the configuration and installs the default logger.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	level := cfg.Log.Level
	if o.debug || cfg.Server.Debug {
		level = "debug"
	}
	setupLogger(o.stderr, level, cfg.Log.Format)
	return cfg, nil
}

// setupLogger configures the default logger.
func setupLogger(w io.Writer, level, format string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: logLevel == slog.LevelDebug,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
