package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sifs_backend/internals/bootstrap"
	database "sifs_backend/internals/databases"
	logService "sifs_backend/internals/features/certificates/verification_logs/service"
)

func newMigrateCmd(services func() *bootstrap.Services) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the verification log table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := services()
			if !s.Config.DatabaseEnabled() {
				return fmt.Errorf("DB_HOST is not set")
			}
			db, err := database.ConnectDB(s.Config, s.Log)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := logService.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✅ verification log table is up to date")
			return nil
		},
	}
}
