package models

import "time"

// Mood is one of five fixed sentiment buckets derived from a continuous score.
type Mood string

const (
	MoodVeryPositive Mood = "Very Positive"
	MoodPositive     Mood = "Positive"
	MoodNeutral      Mood = "Neutral"
	MoodNegative     Mood = "Negative"
	MoodVeryNegative Mood = "Very Negative"
)

// Valid reports whether m is one of the five mood buckets.
func (m Mood) Valid() bool {
	switch m {
	case MoodVeryPositive, MoodPositive, MoodNeutral, MoodNegative, MoodVeryNegative:
		return true
	}
	return false
}

// User represents a journal account. PasswordHash never crosses the wire.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is an opaque server-side login session.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Category organizes entries. Global categories (empty UserID) are
// admin-managed and visible to everyone.
type Category struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id,omitempty"`
	Name       string    `json:"name"`
	Color      string    `json:"color,omitempty"`
	IsGlobal   bool      `json:"is_global"`
	EntryCount int       `json:"entry_count,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Entry is a single journal entry with its tags.
type Entry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	CategoryID string    `json:"category_id,omitempty"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Mood       Mood      `json:"mood,omitempty"`
	Tags       []string  `json:"tags"`
	WordCount  int       `json:"word_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SentimentResult is the scored polarity of a piece of text.
type SentimentResult struct {
	Score float64 `json:"score"` // -1.0 to 1.0
	Mood  Mood    `json:"mood"`
}

// CategoryRecommendation ranks a catalog category against entry text.
type CategoryRecommendation struct {
	CategoryID string  `json:"id"`
	Name       string  `json:"name"`
	Relevance  float64 `json:"relevance"` // 0.0 to 1.0
}

// AnalysisResult is the full heuristic analysis of entry content. It is
// computed per request and never persisted; callers may copy derived fields
// (mood, themes) onto their own records.
type AnalysisResult struct {
	Sentiment               SentimentResult          `json:"sentiment"`
	CategoryRecommendations []CategoryRecommendation `json:"categoryRecommendations"`
	Themes                  []string                 `json:"themes"`
	WordCount               int                      `json:"wordCount"`
	Insight                 string                   `json:"insight"`
}

// TagCount is a tag with its usage count.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// MonthCount is an entries-per-month data point, Month formatted "2006-01".
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// CategoryCount is an entries-per-category data point.
type CategoryCount struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Count      int    `json:"count"`
}

// Stats aggregates a user's journaling activity.
type Stats struct {
	TotalEntries     int             `json:"total_entries"`
	TotalWords       int             `json:"total_words"`
	MoodDistribution map[Mood]int    `json:"mood_distribution"`
	Categories       []CategoryCount `json:"categories"`
	TopTags          []TagCount      `json:"top_tags"`
	EntriesPerMonth  []MonthCount    `json:"entries_per_month"`
	CurrentStreak    int             `json:"current_streak"`
}
