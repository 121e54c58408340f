package main

import (
	"os"

	"github.com/surveydesk/backend/pkg/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logger.Error().Err(err).Msg("surveyctl failed")
		os.Exit(1)
	}
}
