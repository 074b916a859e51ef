package sentiment

import (
	"testing"

	"github.com/delbyte/solana-news-analysis/config"
	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	s := NewScorer(config.SentimentConfig{PositiveThreshold: 0.6, NegativeThreshold: 0.4})

	testCases := []struct {
		text     string
		expected float64
	}{
		{"Solana network update scheduled", 0.5},
		{"SOL rallies to record high", 1.0},
		{"Exchange hacked, SOL price crashes", 0.0},
		{"Solana surges despite outage", 0.5},
		{"Bullish breakout, minor drop", 0.5 + 1.0/6.0},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			assert.InDelta(t, tc.expected, s.Score(tc.text), 1e-9)
		})
	}
}

func TestLabel(t *testing.T) {
	s := NewScorer(config.SentimentConfig{PositiveThreshold: 0.6, NegativeThreshold: 0.4})

	assert.Equal(t, Positive, s.Label(0.6))
	assert.Equal(t, Neutral, s.Label(0.5))
	assert.Equal(t, Negative, s.Label(0.4))
	assert.Equal(t, Negative, s.Label(0.1))
}
