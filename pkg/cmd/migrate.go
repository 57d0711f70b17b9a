package cmd

import (
	"github.com/spf13/cobra"
)

var MigrateCmd = &cobra.Command{
	Use:   MigrateCmdName,
	Short: MigrateCmdShort,
	Long:  MigrateCmdLong,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, db, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Migrate(cmd.Context()); err != nil {
			return err
		}

		version, err := db.Version(cmd.Context())
		if err != nil {
			return err
		}
		logger.Info("migrations applied", "driver", db.DriverName(), "version", version)
		return nil
	},
}
