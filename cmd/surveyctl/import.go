package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"github.com/surveydesk/backend/internal/services"
)

const importFileFlag = "file"

func newImportCommand(configPath *string) *cobra.Command {
	flags := map[string]cobraflags.Flag{
		importFileFlag: &cobraflags.StringFlag{
			Name:  importFileFlag,
			Value: "",
			Usage: "JSON file holding an array of submissions (required)",
		},
	}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import survey submissions as pending entries",
		Long: `Import reads a JSON array of questionnaire submissions and stores each one
as a new entry awaiting review. Multi-select answers may be arrays or
comma-separated strings.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := flags[importFileFlag].GetString()
			if path == "" {
				return fmt.Errorf("submission file is required (use --%s)", importFileFlag)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read submissions: %w", err)
			}
			var submissions []services.Submission
			if err := json.Unmarshal(data, &submissions); err != nil {
				return fmt.Errorf("parse submissions: %w", err)
			}

			db, cfg, closeDB, err := openStore(*configPath)
			if err != nil {
				return err
			}
			defer closeDB()

			svc := services.NewSurveyService(db, cfg.Display.Location())
			for i := range submissions {
				if _, err := svc.Create(cmd.Context(), &submissions[i]); err != nil {
					return fmt.Errorf("import submission %d: %w", i+1, err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d submissions\n", len(submissions))
			return nil
		},
	}

	cobraflags.RegisterMap(cmd, flags)
	return cmd
}
