package sentiment

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	clierr "github.com/skillhq/onchain/internal/errors"
	"github.com/skillhq/onchain/internal/model"
	"github.com/skillhq/onchain/internal/providers"
)

const (
	searchCap   = 25
	trendingCap = 20

	defaultLimit = 5
)

// Contrarian thresholds: a bullish-worded question with high "Yes" odds is a
// bullish signal; with very low odds the market is betting against it.
const (
	agreeThreshold    = 0.5
	contrarianCutoff  = 0.3
	scoreLabelCutoff  = 20
	minVerdictSignals = 1
)

// topicSynonyms expands a topic into related search terms. Topics not listed
// are used verbatim as their own single term.
var topicSynonyms = map[string][]string{
	"btc":      {"bitcoin", "btc"},
	"bitcoin":  {"bitcoin", "btc"},
	"eth":      {"ethereum", "eth"},
	"ethereum": {"ethereum", "eth"},
	"sol":      {"solana", "sol"},
	"solana":   {"solana", "sol"},
	"doge":     {"dogecoin", "doge"},
	"xrp":      {"xrp", "ripple"},
	"fed":      {"fed", "federal reserve", "interest rate"},
	"crypto":   {"crypto", "bitcoin", "ethereum"},
}

// relevanceKeywords is the per-topic match list; topics not listed fall back
// to their raw search terms.
var relevanceKeywords = map[string][]string{
	"btc":      {"bitcoin", "btc"},
	"bitcoin":  {"bitcoin", "btc"},
	"eth":      {"ethereum", "eth"},
	"ethereum": {"ethereum", "eth"},
	"fed":      {"fed", "fomc", "rate", "powell"},
	"crypto":   {"crypto", "bitcoin", "ethereum", "token"},
}

// neutralOverrides discard purely informational questions regardless of
// relevance; they have no direction to score.
var neutralOverrides = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^who (will|is going to|would)`),
	regexp.MustCompile(`(?i)^when will`),
	regexp.MustCompile(`(?i)^which `),
	regexp.MustCompile(`(?i)^how (many|much)`),
	regexp.MustCompile(`(?i)^what (day|date|time)`),
}

var bullishCues = []*regexp.Regexp{
	regexp.MustCompile(`(?i)above \$`),
	regexp.MustCompile(`(?i)(reach|hit|exceed|close above) \$`),
	regexp.MustCompile(`(?i)rate cut`),
	regexp.MustCompile(`(?i)all[- ]time high`),
	regexp.MustCompile(`(?i)\bath\b`),
	regexp.MustCompile(`(?i)\bwin\b`),
	regexp.MustCompile(`(?i)approv(e|al|ed)`),
	regexp.MustCompile(`(?i)\b(surge|rally)\b`),
}

var bearishCues = []*regexp.Regexp{
	regexp.MustCompile(`(?i)below \$`),
	regexp.MustCompile(`(?i)(drop|fall|close) (below|under) \$`),
	regexp.MustCompile(`(?i)rate hike`),
	regexp.MustCompile(`(?i)\bban(ned)?\b`),
	regexp.MustCompile(`(?i)\b(crash|collapse)\b`),
	regexp.MustCompile(`(?i)\bdefault\b`),
	regexp.MustCompile(`(?i)recession`),
	regexp.MustCompile(`(?i)\bhack(ed)?\b`),
	regexp.MustCompile(`(?i)(delist|reject)`),
}

// Engine turns a topic into a directional market-sentiment verdict from one
// prediction-market provider. It is not a fallback chain; failures propagate.
type Engine struct {
	markets providers.MarketProvider
}

func New(markets providers.MarketProvider) *Engine {
	return &Engine{markets: markets}
}

func (e *Engine) Analyze(ctx context.Context, topic string, limit int) (model.SentimentVerdict, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	normTopic := strings.ToLower(strings.TrimSpace(topic))
	if normTopic == "" {
		return model.SentimentVerdict{}, clierr.New(clierr.CodeUsage, "topic is required")
	}

	terms := expandTopic(normTopic)
	candidates, err := e.gather(ctx, terms)
	if err != nil {
		return model.SentimentVerdict{}, err
	}

	relevant := filterRelevant(candidates, normTopic, terms)
	if len(relevant) == 0 {
		return model.SentimentVerdict{}, clierr.New(clierr.CodeNotFound, fmt.Sprintf("no prediction markets found for topic %q", topic))
	}

	signals := make([]model.SentimentSignal, 0, len(relevant))
	for _, market := range relevant {
		// Informational questions have no direction to score; they count
		// as found-but-unscoreable, not as absent.
		if matchesAny(market.Question, neutralOverrides) {
			continue
		}
		if signal, ok := scoreMarket(market); ok {
			signals = append(signals, signal)
		}
	}
	if len(signals) < minVerdictSignals {
		return model.SentimentVerdict{}, clierr.New(clierr.CodeNotFound, fmt.Sprintf("found markets for topic %q but no scoreable signals", topic))
	}

	return aggregate(topic, signals, limit), nil
}

func expandTopic(topic string) []string {
	if terms, ok := topicSynonyms[topic]; ok {
		return terms
	}
	return []string{topic}
}

// gather merges per-term search results with the general trending list,
// de-duplicating by market identifier.
func (e *Engine) gather(ctx context.Context, terms []string) ([]model.Market, error) {
	seen := map[string]struct{}{}
	var out []model.Market
	var firstErr error

	add := func(markets []model.Market) {
		for _, m := range markets {
			if _, ok := seen[m.ID]; ok {
				continue
			}
			seen[m.ID] = struct{}{}
			out = append(out, m)
		}
	}

	for _, term := range terms {
		markets, err := e.markets.SearchMarkets(ctx, term, searchCap)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		add(markets)
	}

	trending, err := e.markets.TrendingMarkets(ctx, trendingCap)
	if err == nil {
		add(trending)
	} else if firstErr == nil {
		firstErr = err
	}

	if len(out) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func filterRelevant(markets []model.Market, topic string, terms []string) []model.Market {
	keywords, ok := relevanceKeywords[topic]
	if !ok {
		keywords = terms
	}

	out := make([]model.Market, 0, len(markets))
	for _, market := range markets {
		question := strings.ToLower(market.Question)
		if !containsAny(question, keywords) && !containsAny(question, terms) {
			continue
		}
		out = append(out, market)
	}
	return out
}

// scoreMarket combines a question's wording flavor with its "Yes" odds to
// derive one directional signal, or none.
func scoreMarket(market model.Market) (model.SentimentSignal, bool) {
	if !market.HasYesOutcome {
		return model.SentimentSignal{}, false
	}
	bull := matchesAny(market.Question, bullishCues)
	bear := matchesAny(market.Question, bearishCues)
	if bull == bear {
		// Neither flavor, or conflicting cues: no signal.
		return model.SentimentSignal{}, false
	}

	p := market.YesProbability
	var direction string
	switch {
	case p > agreeThreshold:
		direction = model.SentimentBullish
		if bear {
			direction = model.SentimentBearish
		}
	case p < contrarianCutoff:
		direction = model.SentimentBearish
		if bear {
			direction = model.SentimentBullish
		}
	default:
		return model.SentimentSignal{}, false
	}

	confidence := math.Abs(p-0.5) * 200
	if confidence > 100 {
		confidence = 100
	}
	return model.SentimentSignal{
		MarketID:    market.ID,
		Question:    market.Question,
		Sentiment:   direction,
		Confidence:  int(math.Round(confidence)),
		Probability: p,
		VolumeUSD:   market.VolumeUSD,
	}, true
}

func aggregate(topic string, signals []model.SentimentSignal, limit int) model.SentimentVerdict {
	var bullWeight, bearWeight float64
	var bullCount, bearCount int
	var confSum float64
	for _, s := range signals {
		// log10 dampens the pull of a single high-volume market.
		weight := math.Log10(s.VolumeUSD+1) * (float64(s.Confidence) / 100)
		switch s.Sentiment {
		case model.SentimentBullish:
			bullWeight += weight
			bullCount++
		case model.SentimentBearish:
			bearWeight += weight
			bearCount++
		}
		confSum += float64(s.Confidence)
	}

	total := len(signals)
	totalWeight := bullWeight + bearWeight
	var normBull, normBear float64
	if totalWeight > 0 {
		normBull = bullWeight / totalWeight
		normBear = bearWeight / totalWeight
	} else {
		// All-zero volume: fall back to signal counts.
		normBull = float64(bullCount) / float64(total)
		normBear = float64(bearCount) / float64(total)
	}
	score := int(math.Round((normBull - normBear) * 100))

	overall := model.SentimentNeutral
	switch {
	case score > scoreLabelCutoff:
		overall = model.SentimentBullish
	case score < -scoreLabelCutoff:
		overall = model.SentimentBearish
	case bullWeight > 0 && bearWeight > 0:
		overall = model.SentimentMixed
	}

	agreement := math.Abs(float64(bullCount-bearCount)) / float64(total)
	meanConf := confSum / float64(total)
	confidence := int(math.Round(agreement*50 + meanConf*0.5))

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].VolumeUSD > signals[j].VolumeUSD
	})
	if len(signals) > limit {
		signals = signals[:limit]
	}

	top := signals[0]
	summary := fmt.Sprintf("Strongest signal: %q is %s at %.0f%% implied probability ($%.0f volume).",
		top.Question, top.Sentiment, top.Probability*100, top.VolumeUSD)

	return model.SentimentVerdict{
		Topic:            topic,
		OverallSentiment: overall,
		Score:            score,
		Confidence:       confidence,
		Signals:          signals,
		Summary:          summary,
	}
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}
