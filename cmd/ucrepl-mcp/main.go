// Package main provides the ucrepl-mcp binary: a use-case catalog served as
// MCP tools over stdio.
package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/ormasoftchile/ucrepl/pkg/catalog"
	"github.com/ormasoftchile/ucrepl/pkg/config"
	umcp "github.com/ormasoftchile/ucrepl/pkg/ecosystem/mcp"
	"github.com/ormasoftchile/ucrepl/pkg/logging"
)

var version = "dev"

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		for _, h := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "hint: %s\n", h)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:          "ucrepl-mcp [catalog.yaml]",
		Short:        "Serve a use-case catalog as MCP tools over stdio",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := config.New(configFile)
			if err := config.BindFlags(cmd, v); err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			path := cfg.Catalog
			if len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				return errors.WithHint(errors.New("no catalog given"),
					"pass the catalog path as an argument or set UCREPL_CATALOG")
			}
			c, errs := catalog.ValidateFile(path, catalog.ValidateOptions{GroupBy: cfg.GroupBy})
			for _, e := range errs {
				fmt.Fprintf(os.Stderr, "%s (%s)\n", e.Error(), e.Severity)
			}
			if catalog.HasErrors(errs) {
				return errors.Newf("catalog %s is invalid", path)
			}
			entries, err := c.Entries(logger)
			if err != nil {
				return err
			}

			s := umcp.NewServer(entries, umcp.Options{
				Version:  version,
				GroupBy:  cfg.GroupBy,
				Identity: cfg.Identity,
				Logger:   logger,
			})
			return server.ServeStdio(s)
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "Config file (default: ucrepl.yaml in . or $HOME/.config/ucrepl)")
	cmd.Flags().String("catalog", "", "Use-case catalog YAML")
	cmd.Flags().String("group-by", config.DefaultGroupBy, "Tag used to label use cases")
	cmd.Flags().String("log-level", "error", "Log level: debug, info, warn or error")
	cmd.Flags().StringToString("identity", nil, "Identity the server runs use cases as (key=value), repeatable")
	return cmd
}
