package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/surveydesk/backend/internal/config"
	"github.com/surveydesk/backend/internal/models"
	"gorm.io/gorm"
)

// newRootCommand builds the surveyctl command tree. Flag state lives in
// each subcommand, so every call returns an independent tree.
func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "surveyctl",
		Short: "Operator tooling for the survey moderation service",
		Long: `surveyctl manages a survey moderation database from the command line.

Examples:
  surveyctl config init --output config.yaml
  surveyctl import --file submissions.json
  surveyctl create-user --name Alice --email alice@example.com --role user --password secret`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_PATH"), "Path to the YAML config file")

	root.AddCommand(newImportCommand(&configPath))
	root.AddCommand(newCreateUserCommand(&configPath))
	root.AddCommand(newConfigCommand())
	return root
}

// openStore loads the config at configPath and opens a migrated database.
func openStore(configPath string) (*gorm.DB, *config.Config, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := models.Open(&cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if err := models.Migrate(db); err != nil {
		closeDB()
		return nil, nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, cfg, closeDB, nil
}
