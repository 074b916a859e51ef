package cmd

import (
	"fmt"
	"strings"

	"github.com/delbyte/solana-news-analysis/granularity"
	"github.com/spf13/cobra"
)

var (
	ingestStart       string
	ingestEnd         string
	ingestGranularity string
)

var ingestCMD = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch and store prices and headlines for a date range",
	Long: `Fetch Solana prices from CoinGecko and headlines from GNews for the given
range, score headline sentiment and persist everything without running an analysis.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rng, err := granularity.ParseRange(ingestStart, ingestEnd, cfg.Analysis.DateLayout)
		if err != nil {
			return err
		}

		g := granularity.Resolve(rng)
		if ingestGranularity != "" {
			if g, err = granularity.Parse(ingestGranularity); err != nil {
				return err
			}
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		logger.Infof("Starting ingestion for %s at %s", rng, g)
		batch, err := a.processor.Ingest(cmd.Context(), rng, g)
		if err != nil {
			return err
		}

		fmt.Printf("Ingested %d price points and %d headlines for %s\n", len(batch.Prices), len(batch.Headlines), rng)
		return nil
	},
}

func init() {
	ingestCMD.Flags().StringVar(&ingestStart, "start", "", "first day of the range")
	ingestCMD.Flags().StringVar(&ingestEnd, "end", "", "last day of the range")
	names := make([]string, 0, len(granularity.All()))
	for _, g := range granularity.All() {
		names = append(names, g.String())
	}
	ingestCMD.Flags().StringVar(&ingestGranularity, "granularity", "", "override the resolved granularity ("+strings.Join(names, ", ")+")")
	_ = ingestCMD.MarkFlagRequired("start")
	_ = ingestCMD.MarkFlagRequired("end")
}
