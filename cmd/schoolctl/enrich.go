package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/schoolkeuze/internal/repository/dataset"
	"github.com/kailas-cloud/schoolkeuze/internal/usecase/ingest"
)

var enrichPath string

var enrichCmd = &cobra.Command{
	Use:   "enrich-admissions",
	Short: "Rewrite the admissionsInfo of every record in the dataset file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := datasetPath(enrichPath)
		cache := dataset.NewCache(path, cfg.Dataset.DefaultCity)

		n, err := ingest.New(cache, nil, ingest.Config{}, log).Enrich(cache)
		if err != nil {
			return err
		}
		log.Debug("dataset rewritten", zap.String("path", path))
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated admissionsInfo for %d schools in %s\n", n, path)
		return err
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichPath, "dataset", "", "dataset file (default: dataset.path from config)")
}
