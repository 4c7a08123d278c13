package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCreateTableCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create-table",
		Short: "Create the session table if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			components, cfg, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer components.Close()

			switch {
			case components.Store.Dynamo != nil:
				if err := components.Store.Dynamo.CreateTable(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "DynamoDB table %s is ready\n", components.Store.Dynamo.Table())
			case components.Store.Postgres != nil:
				if err := components.Store.Postgres.Migrate(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Postgres table wake_sessions is ready")
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "%s backend needs no table\n", cfg.StoreBackend)
			}
			return nil
		},
	}
}
