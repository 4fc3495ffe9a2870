package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "facilityctl",
		Short: "Operator tooling for the facilitydesk routing service",
	}

	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(routeCmd())
	rootCmd.AddCommand(dbCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
