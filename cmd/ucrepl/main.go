// Package main provides the ucrepl binary: an interactive REPL over a
// use-case catalog plus tooling to validate, describe and list it.
package main

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ormasoftchile/ucrepl/pkg/catalog"
	"github.com/ormasoftchile/ucrepl/pkg/config"
	"github.com/ormasoftchile/ucrepl/pkg/logging"
	"github.com/ormasoftchile/ucrepl/pkg/usecase"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	loadDotEnv()
	if err := newRootCmd().Execute(); err != nil {
		printHints(err)
		os.Exit(1)
	}
}

// printHints writes the hints attached to err below cobra's error line.
func printHints(err error) {
	for _, h := range errors.GetAllHints(err) {
		fmt.Fprintf(os.Stderr, "hint: %s\n", h)
	}
}

// loadDotEnv reads a .env file from the working directory. Variables that
// are already set in the environment win.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}
}

// app carries what every command resolves before it runs.
type app struct {
	configFile string
	cfg        *config.Config
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "ucrepl",
		Short:         "Interactive REPL for use-case catalogs",
		Long:          "ucrepl lets an operator pick a use case, read its execution plan, answer its prompts and run it under an identity.",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "Config file (default: ucrepl.yaml in . or $HOME/.config/ucrepl)")
	pf.String("catalog", "", "Use-case catalog YAML")
	pf.String("group-by", config.DefaultGroupBy, "Tag used to label use cases in the menu")
	pf.String("log-level", logging.DefaultLevel, "Log level: debug, info, warn or error")
	pf.Bool("no-color", false, "Disable colored output")

	root.AddCommand(
		newREPLCmd(a),
		newValidateCmd(a),
		newDescribeCmd(a),
		newListCmd(a),
		newSchemaCmd(),
		newVersionCmd(),
	)
	return root
}

// setup resolves configuration and the logger for cmd.
func (a *app) setup(cmd *cobra.Command) error {
	v := config.New(a.configFile)
	if err := config.BindFlags(cmd, v); err != nil {
		return err
	}
	return a.load(v)
}

func (a *app) load(v *viper.Viper) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.logger.Debug("configuration resolved",
		zap.String("config_file", v.ConfigFileUsed()),
		zap.String("catalog", cfg.Catalog),
		zap.String("group_by", cfg.GroupBy))
	return nil
}

// catalogPath prefers an explicit argument over the configured catalog.
func (a *app) catalogPath(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if a.cfg != nil && a.cfg.Catalog != "" {
		return a.cfg.Catalog, nil
	}
	return "", errors.WithHint(errors.New("no catalog given"),
		"pass the catalog path as an argument, use --catalog, or set UCREPL_CATALOG")
}

// loadCatalog validates the catalog at path, prints findings to stderr
// and compiles its entries. Warnings do not stop loading.
func (a *app) loadCatalog(path string) (*catalog.Catalog, []usecase.Entry, error) {
	c, errs := catalog.ValidateFile(path, catalog.ValidateOptions{GroupBy: a.cfg.GroupBy})
	printFindings(errs)
	if catalog.HasErrors(errs) {
		return nil, nil, errors.WithHint(errors.Newf("catalog validation failed with %d error(s)", countErrors(errs)),
			"run ucrepl validate for the full report")
	}
	entries, err := c.Entries(a.logger)
	if err != nil {
		return nil, nil, err
	}
	return c, entries, nil
}

// printFindings reports warnings first, then numbered errors.
func printFindings(errs []*catalog.ValidationError) {
	var failures, warnings []*catalog.ValidationError
	for _, e := range errs {
		if e.Severity == "warning" {
			warnings = append(warnings, e)
		} else {
			failures = append(failures, e)
		}
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "  ⚠ [%s] %s\n", w.Phase, w.Message)
		if w.Path != "" {
			fmt.Fprintf(os.Stderr, "    at: %s\n", w.Path)
		}
	}
	if len(failures) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "Validation failed: %d error(s)\n\n", len(failures))
	for i, e := range failures {
		fmt.Fprintf(os.Stderr, "  %d. [%s] %s\n", i+1, e.Phase, e.Message)
		if e.Path != "" {
			fmt.Fprintf(os.Stderr, "     at: %s\n", e.Path)
		}
	}
}

func countErrors(errs []*catalog.ValidationError) int {
	n := 0
	for _, e := range errs {
		if e.Severity != "warning" {
			n++
		}
	}
	return n
}

// parsePairs splits repeated key=value flag values.
func parsePairs(values []string, flag string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, v := range values {
		k, val, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, errors.Newf("invalid %s %q: expected key=value", flag, v)
		}
		out[strings.TrimSpace(k)] = val
	}
	return out, nil
}

// --- validate ---

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [catalog.yaml]",
		Short: "Validate a use-case catalog against the schema and domain rules",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.catalogPath(args)
			if err != nil {
				return err
			}
			c, errs := catalog.ValidateFile(path, catalog.ValidateOptions{GroupBy: a.cfg.GroupBy})
			printFindings(errs)
			if catalog.HasErrors(errs) {
				return errors.Newf("validation failed with %d error(s)", countErrors(errs))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid (%d use cases)\n", path, len(c.UseCases))
			return nil
		},
	}
}

// --- schema ---

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Export the catalog JSON Schema to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := catalog.GenerateJSONSchema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

// --- version ---

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ucrepl %s (build: %s)\n", version, commit)
		},
	}
}
