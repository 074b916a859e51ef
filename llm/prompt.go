package llm

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/delbyte/solana-news-analysis/models"
)

const maxSpikes = 5

// PromptInput is the structured data summarized for the model.
type PromptInput struct {
	Asset       string
	Start       time.Time
	End         time.Time
	Granularity string
	Prices      []models.PriceSample
	Volumes     []models.VolumeSample
	Volatility  []models.VolatilitySample
	Headlines   []models.Headline
	// Label classifies a sentiment score; nil omits labels.
	Label func(float64) string
}

type priceSummary struct {
	Open, Close, High, Low, ChangePct float64
}

type promptData struct {
	PromptInput
	Summary      *priceSummary
	TotalVolume  float64
	Spikes       []models.VolatilitySample
	HeadlineRows []string
}

var promptTemplate = template.Must(template.New("prompt").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.UTC().Format("2006-01-02") },
	"ts":   ts,
}).Parse(`Asset: {{.Asset}}
Period: {{date .Start}} to {{date .End}} ({{.Granularity}} buckets, {{len .Prices}} points)
{{- with .Summary}}
Price: open {{printf "%.2f" .Open}}, close {{printf "%.2f" .Close}}, high {{printf "%.2f" .High}}, low {{printf "%.2f" .Low}}, change {{printf "%+.2f" .ChangePct}}%
{{- end}}
Total volume across buckets: {{printf "%.0f" .TotalVolume}}

Largest volatility spikes (z-score of bucket return):
{{- range .Spikes}}
- {{ts .Timestamp}}: {{printf "%.2f" .SpikeValue}}
{{- else}}
- none detected
{{- end}}

Headlines:
{{- range .HeadlineRows}}
- {{.}}
{{- else}}
- no headlines found
{{- end}}

Summarize how the price moved over the period and which headlines could explain the largest spikes.`))

// BuildPrompt renders the analysis prompt. At most maxHeadlines headlines are
// included, strongest sentiment first.
func BuildPrompt(in PromptInput, maxHeadlines int) (string, error) {
	data := promptData{
		PromptInput: in,
		Summary:     summarize(in.Prices),
		Spikes:      topSpikes(in.Volatility, maxSpikes),
	}
	for _, v := range in.Volumes {
		data.TotalVolume += v.Volume
	}
	for _, h := range strongestHeadlines(in.Headlines, maxHeadlines) {
		row := fmt.Sprintf("[%s] %s (%s", ts(h.PublishedAt), h.Title, h.Source)
		if in.Label != nil {
			row += fmt.Sprintf(", sentiment %s %.2f", in.Label(h.SentimentScore), h.SentimentScore)
		}
		data.HeadlineRows = append(data.HeadlineRows, row+")")
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func ts(sec int64) string { return time.Unix(sec, 0).UTC().Format("2006-01-02 15:04") }

func summarize(prices []models.PriceSample) *priceSummary {
	if len(prices) == 0 {
		return nil
	}
	s := &priceSummary{Open: prices[0].Price, Close: prices[len(prices)-1].Price, High: prices[0].Price, Low: prices[0].Price}
	for _, p := range prices {
		s.High = max(s.High, p.Price)
		s.Low = min(s.Low, p.Price)
	}
	if s.Open != 0 {
		s.ChangePct = (s.Close - s.Open) / s.Open * 100
	}
	return s
}

// topSpikes returns the n largest non-zero spikes in chronological order.
func topSpikes(samples []models.VolatilitySample, n int) []models.VolatilitySample {
	spikes := make([]models.VolatilitySample, 0, len(samples))
	for _, s := range samples {
		if s.SpikeValue > 0 {
			spikes = append(spikes, s)
		}
	}
	sort.SliceStable(spikes, func(i, j int) bool { return spikes[i].SpikeValue > spikes[j].SpikeValue })
	if len(spikes) > n {
		spikes = spikes[:n]
	}
	sort.Slice(spikes, func(i, j int) bool { return spikes[i].Timestamp < spikes[j].Timestamp })
	return spikes
}

// strongestHeadlines keeps the n headlines furthest from neutral, in
// publication order.
func strongestHeadlines(headlines []models.Headline, n int) []models.Headline {
	if n <= 0 || len(headlines) <= n {
		return headlines
	}
	idx := make([]int, len(headlines))
	for i := range idx {
		idx[i] = i
	}
	strength := func(i int) float64 {
		d := headlines[i].SentimentScore - 0.5
		if d < 0 {
			d = -d
		}
		return d
	}
	sort.SliceStable(idx, func(a, b int) bool { return strength(idx[a]) > strength(idx[b]) })
	idx = idx[:n]
	sort.Ints(idx)

	out := make([]models.Headline, 0, n)
	for _, i := range idx {
		out = append(out, headlines[i])
	}
	return out
}
