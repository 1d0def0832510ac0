package analyzer

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/alexomaset/journal-entries/internal/models"
)

const (
	maxRecommendations = 3
	maxThemes          = 5
	// Sentiment weighting caps the effective text length so long entries
	// with sparse sentiment words are pulled toward neutral rather than
	// diluted to zero.
	sentimentLengthCap = 100
)

// Analyzer performs heuristic content analysis of journal entries. It is
// stateless apart from its fixed lexicons and safe for concurrent use.
type Analyzer struct {
	stopWords        map[string]bool
	positiveWords    map[string]bool
	negativeWords    map[string]bool
	categoryKeywords map[string][]string
}

// New creates a new Analyzer
func New() *Analyzer {
	return &Analyzer{
		stopWords:        getStopWords(),
		positiveWords:    getPositiveWords(),
		negativeWords:    getNegativeWords(),
		categoryKeywords: getCategoryKeywords(),
	}
}

// Analyze runs the full analysis pipeline over entry content. Empty or
// all-whitespace content yields a zero-valued result; rejecting it with a
// client error is the HTTP boundary's job, not this package's.
func (a *Analyzer) Analyze(content string, catalog []models.Category) models.AnalysisResult {
	sentiment := a.ScoreSentiment(content)
	recommendations := a.RecommendCategories(content, catalog)
	themes := a.ExtractThemes(content)

	return models.AnalysisResult{
		Sentiment:               sentiment,
		CategoryRecommendations: recommendations,
		Themes:                  themes,
		WordCount:               countWords(content),
		Insight:                 synthesizeInsight(sentiment, recommendations, themes),
	}
}

// ScoreSentiment counts positive and negative lexicon hits and weights the
// polarity ratio by how sentiment-dense the (length-capped) text is.
func (a *Analyzer) ScoreSentiment(text string) models.SentimentResult {
	words := extractWords(text)

	positiveCount := 0
	negativeCount := 0
	for _, word := range words {
		if a.positiveWords[word] {
			positiveCount++
		}
		if a.negativeWords[word] {
			negativeCount++
		}
	}

	sentimentWords := positiveCount + negativeCount
	if sentimentWords == 0 {
		return models.SentimentResult{Score: 0, Mood: models.MoodNeutral}
	}

	totalWords := len(words)
	polarity := float64(positiveCount-negativeCount) / float64(sentimentWords)
	weight := float64(min(sentimentWords, totalWords)) / float64(min(totalWords, sentimentLengthCap))

	score := polarity * weight
	score = math.Max(-1.0, math.Min(1.0, score))
	score = round2(score)

	return models.SentimentResult{Score: score, Mood: moodForScore(score)}
}

// moodForScore maps a score in [-1,1] to one of the five mood buckets
func moodForScore(score float64) models.Mood {
	switch {
	case score >= 0.5:
		return models.MoodVeryPositive
	case score >= 0.1:
		return models.MoodPositive
	case score > -0.1:
		return models.MoodNeutral
	case score > -0.5:
		return models.MoodNegative
	default:
		return models.MoodVeryNegative
	}
}

// RecommendCategories ranks the caller's category catalog against the text.
// Categories whose name has a canonical keyword list are scored by
// length-adjusted keyword matches; others fall back to 0.5 when the name
// itself appears in the text. At most three recommendations are returned,
// highest relevance first.
func (a *Analyzer) RecommendCategories(text string, catalog []models.Category) []models.CategoryRecommendation {
	if len(catalog) == 0 {
		return []models.CategoryRecommendation{}
	}

	words := extractWords(text)
	freq := make(map[string]int, len(words))
	for _, word := range words {
		freq[word]++
	}

	// Length normalization: longer text needs proportionally more keyword
	// matches to reach the same relevance.
	lengthFactor := math.Sqrt(float64(len(text)) / 100.0)
	if lengthFactor <= 0 {
		lengthFactor = 1
	}

	canonical := make(map[string]float64, len(a.categoryKeywords))
	for label, keywords := range a.categoryKeywords {
		matches := 0
		for _, keyword := range keywords {
			matches += freq[keyword]
		}
		relevance := float64(matches) / lengthFactor
		canonical[label] = math.Min(1.0, relevance)
	}

	lowerText := strings.ToLower(text)

	recommendations := make([]models.CategoryRecommendation, 0, len(catalog))
	for _, category := range catalog {
		relevance, ok := canonical[category.Name]
		if !ok && strings.Contains(lowerText, strings.ToLower(category.Name)) {
			relevance = 0.5
		}
		if relevance <= 0 {
			continue
		}
		recommendations = append(recommendations, models.CategoryRecommendation{
			CategoryID: category.ID,
			Name:       category.Name,
			Relevance:  round2(relevance),
		})
	}

	// Stable sort keeps catalog order on ties so repeated calls are
	// byte-identical.
	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Relevance > recommendations[j].Relevance
	})

	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}
	return recommendations
}

// ExtractThemes returns up to five high-frequency keywords from the text,
// most frequent first. Stop words and tokens of three characters or fewer
// are ignored; equal-frequency themes keep first-occurrence order.
func (a *Analyzer) ExtractThemes(text string) []string {
	words := extractWords(text)

	freq := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, word := range words {
		if len(word) <= 3 || a.stopWords[word] {
			continue
		}
		if _, seen := freq[word]; !seen {
			firstSeen[word] = i
		}
		freq[word]++
	}

	themes := make([]string, 0, len(freq))
	for word := range freq {
		themes = append(themes, word)
	}

	sort.Slice(themes, func(i, j int) bool {
		if freq[themes[i]] != freq[themes[j]] {
			return freq[themes[i]] > freq[themes[j]]
		}
		return firstSeen[themes[i]] < firstSeen[themes[j]]
	})

	if len(themes) > maxThemes {
		themes = themes[:maxThemes]
	}
	return themes
}

// synthesizeInsight builds the natural-language summary from the three
// analysis results. Fully deterministic string templating.
func synthesizeInsight(sentiment models.SentimentResult, recommendations []models.CategoryRecommendation, themes []string) string {
	var b strings.Builder
	b.WriteString("Based on your entry, ")

	if sentiment.Mood != models.MoodNeutral {
		b.WriteString("your mood appears to be ")
		b.WriteString(strings.ToLower(string(sentiment.Mood)))
		b.WriteString(". ")
	}

	if len(recommendations) > 0 {
		names := make([]string, len(recommendations))
		for i, rec := range recommendations {
			names[i] = strings.ToLower(rec.Name)
		}
		b.WriteString("This entry seems to focus on themes related to ")
		b.WriteString(strings.Join(names, ", "))
		b.WriteString(". ")
	}

	if len(themes) > 0 {
		b.WriteString("Key topics include: ")
		b.WriteString(strings.Join(themes, ", "))
		b.WriteString(".")
	}

	return b.String()
}

var nonWordPattern = regexp.MustCompile(`[^\w\s]`)

// extractWords lower-cases text and splits it into alphanumeric runs
func extractWords(text string) []string {
	text = strings.ToLower(text)
	text = nonWordPattern.ReplaceAllString(text, " ")
	return strings.Fields(text)
}

// countWords counts whitespace-separated words in the raw text
func countWords(text string) int {
	return len(strings.Fields(text))
}

// round2 rounds to two decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
