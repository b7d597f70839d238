package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/schoolkeuze/internal/repository/dataset"
	schoolrepo "github.com/kailas-cloud/schoolkeuze/internal/repository/school"
	"github.com/kailas-cloud/schoolkeuze/internal/usecase/ingest"
)

var (
	seedPath        string
	seedSource      string
	seedConcurrency int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the dataset into Redis",
	Long: "Reads the dataset file, builds admissions guidance for every school, removes the previously " +
		"seeded documents of the source and writes the new ones.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := connectRedis(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer store.Close()

		path := datasetPath(seedPath)
		svc := ingest.New(
			dataset.NewCache(path, cfg.Dataset.DefaultCity),
			schoolrepo.New(store, cfg.Storage.KeyPrefix),
			ingest.Config{Source: seedSource, Concurrency: seedConcurrency},
			log,
		)
		log.Info("seeding", zap.String("dataset", path), zap.String("source", seedSource))

		rep, err := svc.Seed(ctx)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPath, "dataset", "", "dataset file (default: dataset.path from config)")
	seedCmd.Flags().StringVar(&seedSource, "source", ingest.DefaultSource, "source whose documents are replaced")
	seedCmd.Flags().IntVar(&seedConcurrency, "concurrency", ingest.DefaultConcurrency, "parallel writes")
}
