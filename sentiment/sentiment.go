package sentiment

import (
	"strings"
	"unicode"

	"github.com/delbyte/solana-news-analysis/config"
)

type Label string

const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"
)

var positiveWords = []string{
	"surge", "surges", "rally", "rallies", "gain", "gains", "bull", "bullish", "soar", "soars",
	"record", "high", "growth", "adopt", "adoption", "upgrade", "partnership", "launch", "approve",
	"approved", "approval", "inflow", "inflows", "breakout", "recover", "recovery", "rise", "rises", "jump",
}

var negativeWords = []string{
	"crash", "crashes", "plunge", "plunges", "drop", "drops", "fall", "falls", "bear", "bearish",
	"hack", "hacked", "exploit", "outage", "lawsuit", "sue", "sued", "fraud", "scam", "loss", "losses",
	"selloff", "sell-off", "outflow", "outflows", "decline", "declines", "slump", "risk", "ban", "low",
}

// Scorer assigns a score in [0, 1] to free text from word lists. 0.5 is neutral.
type Scorer struct {
	positive map[string]struct{}
	negative map[string]struct{}
	posCut   float64
	negCut   float64
}

func NewScorer(cfg config.SentimentConfig) *Scorer {
	s := &Scorer{
		positive: make(map[string]struct{}, len(positiveWords)),
		negative: make(map[string]struct{}, len(negativeWords)),
		posCut:   cfg.PositiveThreshold,
		negCut:   cfg.NegativeThreshold,
	}
	for _, w := range positiveWords {
		s.positive[w] = struct{}{}
	}
	for _, w := range negativeWords {
		s.negative[w] = struct{}{}
	}
	return s
}

// Score returns 0.5 + (pos - neg) / (2 * (pos + neg)), or 0.5 when no listed word occurs.
func (s *Scorer) Score(text string) float64 {
	var pos, neg int
	for _, word := range tokenize(text) {
		if _, ok := s.positive[word]; ok {
			pos++
		}
		if _, ok := s.negative[word]; ok {
			neg++
		}
	}
	if pos+neg == 0 {
		return 0.5
	}
	return 0.5 + float64(pos-neg)/float64(2*(pos+neg))
}

// Label classifies a score with the configured thresholds.
func (s *Scorer) Label(score float64) Label {
	switch {
	case score >= s.posCut:
		return Positive
	case score <= s.negCut:
		return Negative
	default:
		return Neutral
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	})
}
