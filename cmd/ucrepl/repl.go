package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ormasoftchile/ucrepl/pkg/ecosystem/recorder"
	"github.com/ormasoftchile/ucrepl/pkg/prompt"
	"github.com/ormasoftchile/ucrepl/pkg/repl"
	"github.com/ormasoftchile/ucrepl/pkg/tui"
)

func newREPLCmd(a *app) *cobra.Command {
	var (
		answers []string
		record  string
		redact  []string
	)
	cmd := &cobra.Command{
		Use:   "repl [catalog.yaml]",
		Short: "Start the interactive use-case session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.catalogPath(args)
			if err != nil {
				return err
			}
			c, entries, err := a.loadCatalog(path)
			if err != nil {
				return err
			}
			var rec *recorder.Recorder
			if record != "" {
				rec = recorder.New()
				rec.SetSecrets(redact)
				entries = rec.WrapEntries(entries, c.Names())
			}
			scripted, err := parsePairs(answers, "--answer")
			if err != nil {
				return err
			}

			rl, err := prompt.NewTerminal()
			if err != nil {
				return err
			}
			defer rl.Close()

			var collector prompt.Collector = prompt.NewReadlineCollector(rl, cmd.OutOrStdout())
			if len(scripted) > 0 {
				collector = &prompt.Scripted{Values: scripted, Fallback: collector}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			session := &repl.Session{
				Entries:   entries,
				Identity:  a.cfg.Identity,
				GroupBy:   a.cfg.GroupBy,
				Menu:      &tui.Menu{},
				Collector: collector,
				Output:    cmd.OutOrStdout(),
				Theme:     tui.ThemeFor(a.cfg.NoColor),
				Logger:    a.logger,
			}
			runErr := session.Run(ctx)
			if rec != nil {
				if err := rec.Save(record); err != nil {
					return errors.Join(runErr, err)
				}
				a.logger.Info("transcript saved", zap.String("path", record), zap.Int("runs", len(rec.Runs())))
			}
			return runErr
		},
	}
	cmd.Flags().StringToString("identity", nil, "Identity attribute (key=value), repeatable; replaces the configured identity")
	cmd.Flags().StringArrayVar(&answers, "answer", nil, "Answer a prompt up front (name=value), repeatable")
	cmd.Flags().StringVar(&record, "record", "", "Save a YAML transcript of the session's runs to this file")
	cmd.Flags().StringArrayVar(&redact, "redact", nil, "Env var whose value is redacted from the transcript, repeatable")
	return cmd
}
