package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var smokeTables = []string{
	"scope.grants",
	"scope.sites",
	"scope.buildings",
	"competency.teams",
	"competency.contract_versions",
	"competency.contract_version_categories",
	"competency.category_required_skills",
	"competency.team_zones",
	"competency.team_skills",
	"competency.matrix",
	"dispatch.routing_rules",
	"dispatch.locations",
	"dispatch.assets",
	"dispatch.tickets",
}

func dbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database checks",
	}
	cmd.AddCommand(dbSmokeCmd())
	return cmd
}

func dbSmokeCmd() *cobra.Command {
	var url string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Verify connectivity and the presence of every service table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			pool, err := pgxpool.New(context.Background(), dsnFromFlag(url))
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := pool.Ping(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}

			for _, table := range smokeTables {
				var count int64
				if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
					return fmt.Errorf("table %s: %w", table, err)
				}
				fmt.Printf("ok   %-32s %d rows\n", table, count)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "postgres connection string (default $DATABASE_URL)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "overall timeout")
	return cmd
}
