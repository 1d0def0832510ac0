package database

import (
	"fmt"
	"time"

	"github.com/alexomaset/journal-entries/internal/models"
)

// GetStats aggregates a user's journaling activity
func (db *DB) GetStats(userID string) (*models.Stats, error) {
	stats := &models.Stats{
		MoodDistribution: map[models.Mood]int{},
		Categories:       []models.CategoryCount{},
		TopTags:          []models.TagCount{},
		EntriesPerMonth:  []models.MonthCount{},
	}

	err := db.conn.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(word_count), 0)
		FROM entries WHERE user_id = $1
	`, userID).Scan(&stats.TotalEntries, &stats.TotalWords)
	if err != nil {
		return nil, fmt.Errorf("failed to query totals: %w", err)
	}

	if err := db.moodDistribution(userID, stats); err != nil {
		return nil, err
	}
	if err := db.categoryDistribution(userID, stats); err != nil {
		return nil, err
	}

	tags, err := db.ListTags(userID)
	if err != nil {
		return nil, err
	}
	if len(tags) > 10 {
		tags = tags[:10]
	}
	stats.TopTags = tags

	if err := db.entriesPerMonth(userID, stats); err != nil {
		return nil, err
	}

	streak, err := db.currentStreak(userID)
	if err != nil {
		return nil, err
	}
	stats.CurrentStreak = streak

	return stats, nil
}

func (db *DB) moodDistribution(userID string, stats *models.Stats) error {
	rows, err := db.conn.Query(`
		SELECT mood, COUNT(*)
		FROM entries
		WHERE user_id = $1 AND mood <> ''
		GROUP BY mood
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to query mood distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			mood  string
			count int
		)
		if err := rows.Scan(&mood, &count); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
		stats.MoodDistribution[models.Mood(mood)] = count
	}
	return rows.Err()
}

func (db *DB) categoryDistribution(userID string, stats *models.Stats) error {
	rows, err := db.conn.Query(`
		SELECT c.id, c.name, COUNT(e.id)
		FROM categories c
		INNER JOIN entries e ON e.category_id = c.id
		WHERE e.user_id = $1
		GROUP BY c.id, c.name
		ORDER BY COUNT(e.id) DESC, c.name
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to query category distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cc models.CategoryCount
		if err := rows.Scan(&cc.CategoryID, &cc.Name, &cc.Count); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
		stats.Categories = append(stats.Categories, cc)
	}
	return rows.Err()
}

func (db *DB) entriesPerMonth(userID string, stats *models.Stats) error {
	rows, err := db.conn.Query(`
		SELECT to_char(created_at, 'YYYY-MM') AS month, COUNT(*)
		FROM entries
		WHERE user_id = $1 AND created_at >= NOW() - INTERVAL '12 months'
		GROUP BY month
		ORDER BY month
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to query monthly counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var mc models.MonthCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
		stats.EntriesPerMonth = append(stats.EntriesPerMonth, mc)
	}
	return rows.Err()
}

// currentStreak counts consecutive days with at least one entry, ending at
// today or yesterday (a streak survives until a full day is missed).
func (db *DB) currentStreak(userID string) (int, error) {
	rows, err := db.conn.Query(`
		SELECT DISTINCT created_at::date AS day
		FROM entries
		WHERE user_id = $1
		ORDER BY day DESC
		LIMIT 366
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to query entry days: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return 0, fmt.Errorf("failed to scan row: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("row iteration error: %w", err)
	}

	if len(days) == 0 {
		return 0, nil
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	latest := days[0].UTC().Truncate(24 * time.Hour)
	if today.Sub(latest) > 24*time.Hour {
		return 0, nil
	}

	streak := 1
	previous := latest
	for _, day := range days[1:] {
		day = day.UTC().Truncate(24 * time.Hour)
		if previous.Sub(day) != 24*time.Hour {
			break
		}
		streak++
		previous = day
	}

	return streak, nil
}
