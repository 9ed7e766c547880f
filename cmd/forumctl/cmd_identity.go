package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	if err := services.Migration.Migrate(ctx, migrateOld, migrateNew, migrateName); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "migrated %s -> %s\n", migrateOld, migrateNew)
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	for _, id := range args {
		resolved, err := services.Identity.Resolve(ctx, id)
		if err != nil {
			return err
		}
		supported := services.Identity.IsSupported(id)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tsupported=%t\n", id, resolved, supported)
	}
	return nil
}
