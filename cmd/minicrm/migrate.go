package main

import (
	"github.com/spf13/cobra"
	"github.com/suteetoe/minicrm/pkg/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		log.Info("Schema is up to date")
		return database.Close(db)
	},
}
