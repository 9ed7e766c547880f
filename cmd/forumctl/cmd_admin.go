package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func runAdmin(grant bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		account, err := services.Account.GrantAdmin(commandContext(cmd), args[0], grant)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) isAdmin=%t\n", account.LoginID, account.ID, account.IsAdmin)
		return nil
	}
}

func runCacheRefresh(cmd *cobra.Command, _ []string) error {
	n, err := services.Post.RefreshCache(commandContext(cmd))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "refreshed %d posts\n", n)
	return nil
}
