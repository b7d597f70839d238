package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/schoolkeuze/internal/config"
	logpkg "github.com/kailas-cloud/schoolkeuze/internal/logger"
	"github.com/kailas-cloud/schoolkeuze/internal/version"
)

var (
	cfg config.Config
	log = zap.NewNop()

	envFlag     string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:           "schoolctl",
	Short:         "Operator tooling for the schoolkeuze dataset and search engine",
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		env := envFlag
		if env == "" {
			env = config.GetEnv()
		}
		c, err := config.Load(env)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		l, err := logpkg.NewCLI(verboseFlag)
		if err != nil {
			return err
		}
		log = l
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = log.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFlag, "env", "", "config environment (default: $ENV or local)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(seedCmd, enrichCmd, searchCmd, geocodeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
