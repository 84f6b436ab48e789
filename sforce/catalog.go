package main

import (
	"fmt"

	"github.com/natserract/sfrest/pkg/catalog/schema/postgres"
	"github.com/natserract/sfrest/sforce/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var catalogModifiedSince string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Keep a Postgres catalog of sObject describes",
}

var catalogSyncCmd = &cobra.Command{
	Use:   "sync [OBJECT_NAME...]",
	Short: "Describe sObjects and store the results in Postgres",
	Long: `Describe sObjects and store the results in Postgres.
With no names every object listed by the org is described.
The database is configured with DB_HOST, DB_PORT, DB_USER, DB_PASSWORD,
DB_NAME and DB_SSLMODE.

Examples:
  sforce catalog sync
  sforce catalog sync Account Contact --modified-since "Fri, 01 Mar 2024 00:00:00 GMT"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := current.logger

		s, err := authenticatedSession(ctx)
		if err != nil {
			return err
		}

		db, err := postgres.New(ctx, postgres.NewConfig(), logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		if err := db.InitSchema(ctx); err != nil {
			return err
		}

		svc := services.NewCatalogService(s, db, s.Version(), logger)
		metrics, err := svc.Sync(ctx, services.SyncOptions{
			Names:         args,
			ModifiedSince: catalogModifiedSince,
		})
		if err != nil {
			logger.Error("Catalog sync failed", zap.Error(err))
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "synced %d objects: %d stored, %d unchanged, %d failed\n",
			metrics.Total(), metrics.Succeeded, metrics.Unchanged, metrics.Failed)
		if metrics.Failed > 0 {
			return fmt.Errorf("%d objects failed to sync", metrics.Failed)
		}
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show OBJECT_NAME",
	Short: "Print the stored describe of an sObject",
	Long: `Print the stored describe of an sObject from the Postgres catalog.
The org is not contacted.

Examples:
  sforce catalog show Account -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := postgres.New(ctx, postgres.NewConfig(), current.logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		obj, err := db.GetObjectDescribe(ctx, args[0])
		if err != nil {
			return err
		}

		current.logger.Debug("Loaded stored describe",
			zap.String("object", obj.Name),
			zap.String("api_version", obj.APIVersion),
			zap.Time("synced_at", obj.SyncedAt))
		return writeBody(cmd.OutOrStdout(), obj.Describe)
	},
}

func init() {
	catalogSyncCmd.Flags().StringVar(&catalogModifiedSince, "modified-since", "", "Only store describes modified after this date")

	catalogCmd.AddCommand(catalogSyncCmd, catalogShowCmd)
	rootCmd.AddCommand(catalogCmd)
}
