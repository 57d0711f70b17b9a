package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	RootCmdName  = "jeepsales"
	RootCmdShort = "Jeep catalog lookup service"
	RootCmdLong  = `jeepsales serves the Jeep model catalog over HTTP.

GET /jeeps?model=<MODEL>&trim=<TRIM> returns every catalog row matching the
optional model and trim exactly.`

	ServeCmdName  = "serve"
	ServeCmdShort = "Start the HTTP server"
	ServeCmdLong  = "Start the HTTP server, applying pending migrations first unless --migrate=false."

	MigrateCmdName  = "migrate"
	MigrateCmdShort = "Apply database migrations and exit"
	MigrateCmdLong  = "Apply every pending embedded migration to the configured database and print the schema version."
)

var configFile string

var RootCmd = &cobra.Command{
	Use:           RootCmdName,
	Short:         RootCmdShort,
	Long:          RootCmdLong,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {

	if err := RootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(-1)
	}
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file (yaml, json or toml)")
	flags.String("db-driver", "sqlite", "database driver: pgx or sqlite")
	flags.String("db-dsn", "jeepsales.db", "database DSN")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "text", "log format: text or json")

	viper.BindPFlag("database.driver", flags.Lookup("db-driver"))
	viper.BindPFlag("database.dsn", flags.Lookup("db-dsn"))
	viper.BindPFlag("log.level", flags.Lookup("log-level"))
	viper.BindPFlag("log.format", flags.Lookup("log-format"))

	RootCmd.AddCommand(ServeCmd, MigrateCmd)
}
