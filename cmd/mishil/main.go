package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mishil",
	Short: "Mishil — storefront backend CLI",
	Long:  "Mishil is the backend for the Mishil clothing storefront. Use this CLI to run the server and manage the database.",
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Database
	rootCmd.AddCommand(indexesCmd)
	rootCmd.AddCommand(seedCmd)
}
