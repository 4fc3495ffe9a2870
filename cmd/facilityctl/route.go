package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	competencytypes "github.com/harborworks/facilitydesk/modules/competency/domain/types"
	competencypersistence "github.com/harborworks/facilitydesk/modules/competency/infrastructure/persistence"
	dispatchtypes "github.com/harborworks/facilitydesk/modules/dispatch/domain/types"
	dispatchpersistence "github.com/harborworks/facilitydesk/modules/dispatch/infrastructure/persistence"
	dispatchservices "github.com/harborworks/facilitydesk/modules/dispatch/services"
	scopepersistence "github.com/harborworks/facilitydesk/modules/scope/infrastructure/persistence"
)

func routeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Exercise the ticket routing pipeline",
	}
	cmd.AddCommand(routeSimulateCmd())
	return cmd
}

func routeSimulateCmd() *cobra.Command {
	var url string
	var ticket dispatchtypes.TicketContext
	var window string

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Route a hypothetical ticket and print the outcome",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ticket.TimeWindow = competencytypes.TimeWindow(window)

			pool, err := pgxpool.New(context.Background(), dsnFromFlag(url))
			if err != nil {
				return err
			}
			defer pool.Close()

			scopeStore := scopepersistence.NewScopePGStore(pool)
			referenceStore := competencypersistence.NewReferencePGStore(pool)
			zoneStore := competencypersistence.NewTeamZonePGStore(pool)
			skillStore := competencypersistence.NewTeamSkillPGStore(pool)
			matrixStore := competencypersistence.NewCompetencyMatrixPGStore(pool)
			ruleStore := dispatchpersistence.NewRoutingRulePGStore(pool)
			placementStore := dispatchpersistence.NewPlacementPGStore(pool)

			eligibility := dispatchservices.NewEligibilityResolver(matrixStore, referenceStore, zoneStore, skillStore, referenceStore)
			engine := dispatchservices.NewRuleEngine(ruleStore)
			sites := dispatchservices.NewSiteResolver(scopeStore, placementStore, placementStore)
			coordinator := dispatchservices.NewCoordinator(engine, eligibility, sites, referenceStore, placementStore)

			outcome, err := coordinator.Route(cmd.Context(), ticket)
			if err != nil {
				return err
			}

			b, err := json.MarshalIndent(outcome, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "postgres connection string (default $DATABASE_URL)")
	cmd.Flags().StringVar(&ticket.ContractVersionID, "contract-version", "", "explicit contract version id")
	cmd.Flags().StringVar(&ticket.CategoryID, "category", "", "ticket category id")
	cmd.Flags().StringVar(&ticket.SiteID, "site", "", "site id")
	cmd.Flags().StringVar(&ticket.BuildingID, "building", "", "building id")
	cmd.Flags().StringVar(&ticket.LocationID, "location", "", "location id")
	cmd.Flags().StringVar(&ticket.AssetID, "asset", "", "asset id")
	cmd.Flags().StringVar(&ticket.AssetKind, "asset-kind", "", "asset kind")
	cmd.Flags().StringVar(&window, "window", "business_hours", "time window (business_hours|after_hours)")
	cmd.Flags().StringSliceVar(&ticket.Tags, "tag", nil, "ticket tag (repeatable)")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}
