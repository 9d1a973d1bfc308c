package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ganzorig/mishil/app/repositories"
	"github.com/ganzorig/mishil/database/seeders"
	"github.com/ganzorig/mishil/internal/server"
	"github.com/ganzorig/mishil/pkg/mongodb"
)

// mishil indexes
var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the MongoDB indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if err := server.Boot(ctx); err != nil {
			return err
		}
		defer mongodb.Close(ctx) //nolint:errcheck

		fmt.Println("Ensuring indexes…")
		return mongodb.EnsureIndexes(ctx, repositories.Indexes())
	},
}

// mishil seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if err := server.Boot(ctx); err != nil {
			return err
		}
		defer mongodb.Close(ctx) //nolint:errcheck

		fmt.Println("Running seeders…")
		return seeders.RunAll(ctx)
	},
}
