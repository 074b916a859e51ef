package cmd

import (
	"os"

	"github.com/delbyte/solana-news-analysis/config"
	"github.com/delbyte/solana-news-analysis/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        *config.Config
	logger     *logrus.Logger
)

var rootCMD = &cobra.Command{
	Use:   "solana-news",
	Short: "Solana price and news analysis service",
	Long: `A CLI application that collects Solana market data and news headlines,
scores headline sentiment, detects volatility spikes and asks a language
model to explain them. Results are cached per date range.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = logging.New(cfg.Log)
		return nil
	},
}

func Execute() {
	err := rootCMD.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCMD.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to YAML config file")
	rootCMD.AddCommand(serverCMD, ingestCMD, analyzeCMD)
}
