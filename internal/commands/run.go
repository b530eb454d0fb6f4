package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/notastransf/notastransf/internal/config"
	"github.com/notastransf/notastransf/internal/pipeline"
	"github.com/notastransf/notastransf/internal/sheets"
)

func newRunCommand() *cobra.Command {
	var reportName string
	var configPath string
	var inputDir string
	var revokeShare bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process the latest export(s) and publish the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := config.Preset(reportName)
			if err != nil {
				return err
			}
			if configPath != "" {
				if err := config.Overlay(configPath, &report); err != nil {
					return err
				}
			}
			if inputDir != "" {
				report.InputDir = inputDir
			}

			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			log, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			defer log.Sync()
			log = log.With(
				zap.String("run_id", uuid.NewString()),
				zap.String("report", report.Name),
			)

			ctx := cmd.Context()
			client, err := sheets.NewClient(ctx, cfg.SpreadsheetID, cfg.Credentials)
			if err != nil {
				return err
			}
			pub := sheets.NewPublisher(client, log)

			if err := pipeline.New(pub, log).Run(ctx, report); err != nil {
				log.Error("run failed", zap.Error(err))
				return err
			}

			if revokeShare {
				if err := pub.Revoke(ctx); err != nil {
					return err
				}
				log.Info("link sharing dropped to read-only")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&reportName, "report", "pendencias", "report preset (pendencias or transferencias)")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML file overriding preset values")
	cmd.Flags().StringVar(&inputDir, "input", "", "directory holding the downloaded exports")
	cmd.Flags().BoolVar(&revokeShare, "revoke-share", false, "set link sharing back to read-only after publishing")

	return cmd
}
