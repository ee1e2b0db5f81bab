// Package cli implements the clearclaim command tree: `understand` prints
// the structured understanding of a query, `decide` runs the full decision
// pipeline. Both emit JSON on stdout; logs go to stderr.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/clearclaim/clearclaim/internal/application/engine"
	"github.com/clearclaim/clearclaim/internal/config"
	"github.com/clearclaim/clearclaim/internal/infrastructure/monitoring/logging"
	"github.com/clearclaim/clearclaim/internal/infrastructure/monitoring/prometheus"
	"github.com/clearclaim/clearclaim/internal/infrastructure/search/opensearch"
	"github.com/clearclaim/clearclaim/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	Timeout    time.Duration
}

// cliContext carries the initialized dependencies through the command tree.
type cliContext struct {
	cfg     *config.Config
	log     logging.Logger
	service *engine.Service
}

type cliContextKey struct{}

// NewRootCommand builds the root command with its subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	root := &cobra.Command{
		Use:           "clearclaim",
		Short:         "Insurance claim query understanding and decision engine",
		Long:          "clearclaim answers free-text insurance eligibility and claim questions\nwith a deterministic, explainable multi-hop decision pipeline.",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := initContext(opts)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cc))
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "path to the YAML configuration file")
	flags.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "per-command timeout")

	root.AddCommand(newUnderstandCommand(opts))
	root.AddCommand(newDecideCommand(opts))
	return root
}

func initContext(opts *RootOptions) (*cliContext, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	log, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	logging.SetDefault(log)

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace: "clearclaim",
	}, log)
	if err != nil {
		return nil, err
	}

	var retriever engine.PassageRetriever
	if cfg.Search.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
		defer cancel()
		client, err := opensearch.NewClient(ctx, opensearch.ClientConfig{
			Addresses: cfg.Search.Addresses,
			Username:  cfg.Search.Username,
			Password:  cfg.Search.Password,
		}, log)
		if err != nil {
			return nil, err
		}
		retriever, err = opensearch.NewRetriever(client, cfg.Search.Index, cfg.Search.TopK, log)
		if err != nil {
			return nil, err
		}
	}

	return &cliContext{
		cfg:     cfg,
		log:     log,
		service: engine.New(cfg, retriever, prometheus.NewEngineMetrics(collector), log),
	}, nil
}

func getContext(cmd *cobra.Command) (*cliContext, error) {
	cc, ok := cmd.Context().Value(cliContextKey{}).(*cliContext)
	if !ok || cc == nil {
		return nil, errors.NewInternal("command context not initialized")
	}
	return cc, nil
}

// printJSON renders v as indented JSON on w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "error: %v\n", err)
		return 1
	}
	return 0
}
