package llm

import (
	"strings"
	"testing"
	"time"

	"github.com/delbyte/solana-news-analysis/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	in := PromptInput{
		Asset:       "SOL",
		Start:       start,
		End:         start.AddDate(0, 0, 31),
		Granularity: "1d",
		Prices: []models.PriceSample{
			{Timestamp: start.Unix(), Price: 100},
			{Timestamp: start.Unix() + 86400, Price: 150},
			{Timestamp: start.Unix() + 2*86400, Price: 120},
		},
		Volumes:    []models.VolumeSample{{Timestamp: start.Unix(), Volume: 10}, {Timestamp: start.Unix() + 86400, Volume: 5}},
		Volatility: []models.VolatilitySample{{Timestamp: start.Unix() + 86400, SpikeValue: 3.5}},
		Headlines: []models.Headline{
			{Title: "Neutral note", Source: "A", PublishedAt: start.Unix(), SentimentScore: 0.5},
			{Title: "SOL rallies", Source: "B", PublishedAt: start.Unix() + 3600, SentimentScore: 1},
		},
		Label: func(score float64) string {
			if score >= 0.6 {
				return "positive"
			}
			return "neutral"
		},
	}

	prompt, err := BuildPrompt(in, 1)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Period: 2025-03-01 to 2025-04-01 (1d buckets, 3 points)")
	assert.Contains(t, prompt, "open 100.00, close 120.00, high 150.00, low 100.00, change +20.00%")
	assert.Contains(t, prompt, "Total volume across buckets: 15")
	assert.Contains(t, prompt, "- 2025-03-02 00:00: 3.50")
	assert.Contains(t, prompt, "SOL rallies (B, sentiment positive 1.00)")
	assert.NotContains(t, prompt, "Neutral note")
}

func TestBuildPromptEmpty(t *testing.T) {
	prompt, err := BuildPrompt(PromptInput{Asset: "SOL", Granularity: "30min"}, 5)
	require.NoError(t, err)

	assert.Contains(t, prompt, "- none detected")
	assert.Contains(t, prompt, "- no headlines found")
	assert.False(t, strings.Contains(prompt, "Price: open"))
}

func TestTopSpikes(t *testing.T) {
	spikes := topSpikes([]models.VolatilitySample{
		{Timestamp: 1, SpikeValue: 0.5},
		{Timestamp: 2, SpikeValue: 0},
		{Timestamp: 3, SpikeValue: 4},
		{Timestamp: 4, SpikeValue: 2},
	}, 2)

	require.Len(t, spikes, 2)
	assert.Equal(t, int64(3), spikes[0].Timestamp)
	assert.Equal(t, int64(4), spikes[1].Timestamp)
}
