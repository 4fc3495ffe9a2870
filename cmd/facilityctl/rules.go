package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	dispatchpersistence "github.com/harborworks/facilitydesk/modules/dispatch/infrastructure/persistence"
	dispatchservices "github.com/harborworks/facilitydesk/modules/dispatch/services"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and validate routing rules",
	}
	cmd.AddCommand(rulesLintCmd())
	return cmd
}

func rulesLintCmd() *cobra.Command {
	var url string
	var contractVersionID string

	cmd := &cobra.Command{
		Use:   "lint [expr ...]",
		Short: "Check that tag expressions compile",
		Long: `Compiles each tag expression without evaluating it.
Expressions can be given as arguments, or loaded from the rules of a
stored contract version with --url and --contract-version.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && contractVersionID == "" {
				return errors.New("pass expressions as arguments or set --contract-version")
			}

			failed := 0
			for _, expr := range args {
				if err := dispatchservices.CompileTagExpr(expr); err != nil {
					failed++
					fmt.Fprintf(os.Stderr, "FAIL %q: %v\n", expr, err)
					continue
				}
				fmt.Printf("ok   %q\n", expr)
			}

			if contractVersionID != "" {
				pool, err := pgxpool.New(context.Background(), dsnFromFlag(url))
				if err != nil {
					return err
				}
				defer pool.Close()

				store := dispatchpersistence.NewRoutingRulePGStore(pool)
				rules, err := store.ListByContractVersion(cmd.Context(), contractVersionID)
				if err != nil {
					return err
				}
				for _, rule := range rules {
					if rule.Condition.TagExpr == "" {
						continue
					}
					if err := dispatchservices.CompileTagExpr(rule.Condition.TagExpr); err != nil {
						failed++
						fmt.Fprintf(os.Stderr, "FAIL rule %s: %v\n", rule.ID, err)
						continue
					}
					fmt.Printf("ok   rule %s\n", rule.ID)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d expression(s) failed to compile", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "postgres connection string (default $DATABASE_URL)")
	cmd.Flags().StringVar(&contractVersionID, "contract-version", "", "lint the stored rules of this contract version")
	return cmd
}

func dsnFromFlag(url string) string {
	if url != "" {
		return url
	}
	return os.Getenv("DATABASE_URL")
}
