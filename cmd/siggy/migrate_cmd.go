package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/siggy-land/siggy/adapters/users"
	"github.com/siggy-land/siggy/conf"
)

var migrateCmd = cobra.Command{
	Use:  "migrate",
	Long: "Migrate database structures. This will create new tables and add missing columns and indexes.",
	Run: func(cmd *cobra.Command, args []string) {
		execWithConfig(cmd, migrate)
	},
}

func migrate(cmd *cobra.Command, config *conf.GlobalConfiguration) {
	if config.StoreDriver != conf.StorePostgres {
		logrus.Infof("Store driver is %q, nothing to migrate", config.StoreDriver)
		return
	}

	db, err := users.OpenPostgres(cmd.Context(), config.DatabaseURL)
	if err != nil {
		logrus.Fatalf("error opening database: %+v", err)
	}
	defer closeDB(db)

	if err := users.NewPostgresStore(db).RunMigrations(cmd.Context()); err != nil {
		logrus.Fatalf("%+v", err)
	}

	logrus.Info("Siggy migrations applied successfully")
}
