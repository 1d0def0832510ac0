package database

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexomaset/journal-entries/internal/models"
)

func newTestDB(t *testing.T, name string) (*DB, func()) {
	t.Helper()

	connStr, dbCleanup := setupTestDB(t, fmt.Sprintf("%s_%d", name, time.Now().UnixNano()%1000))

	db, err := New(connStr)
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, db.Migrate(), "failed to run migrations")

	return db, func() {
		db.Close()
		dbCleanup()
	}
}

func newTestUser(t *testing.T, db *DB, username string) *models.User {
	t.Helper()

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, db.CreateUser(user))
	return user
}

func newTestEntry(user *models.User, title string, tags ...string) *models.Entry {
	now := time.Now().UTC()
	return &models.Entry{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Title:     title,
		Content:   "content of " + title,
		Tags:      tags,
		WordCount: 3,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestUserCRUD(t *testing.T) {
	db, cleanup := newTestDB(t, "users")
	defer cleanup()

	user := newTestUser(t, db, "alice")

	got, err := db.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.False(t, got.IsAdmin)

	got, err = db.GetUserByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got, err = db.GetUserByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	// Duplicate username rejected
	dup := *user
	dup.ID = uuid.NewString()
	dup.Email = "other@example.com"
	err = db.CreateUser(&dup)
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, db.SetUserAdmin(user.ID, true))
	got, err = db.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)

	require.NoError(t, db.DeleteUser(user.ID))
	_, err = db.GetUserByID(user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessions(t *testing.T) {
	db, cleanup := newTestDB(t, "sessions")
	defer cleanup()

	user := newTestUser(t, db, "bob")

	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, db.CreateSession(session))

	got, err := db.GetSession(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)

	expired := &models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	require.NoError(t, db.CreateSession(expired))
	_, err = db.GetSession(expired.Token)
	assert.ErrorIs(t, err, ErrNotFound, "expired session should not resolve")

	purged, err := db.DeleteExpiredSessions()
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	require.NoError(t, db.DeleteSession(session.Token))
	_, err = db.GetSession(session.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategories(t *testing.T) {
	db, cleanup := newTestDB(t, "categories")
	defer cleanup()

	user := newTestUser(t, db, "carol")

	personal := &models.Category{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Name:      "Work",
		Color:     "#336699",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.CreateCategory(personal))

	global := &models.Category{
		ID:        uuid.NewString(),
		Name:      "Gratitude",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.CreateCategory(global))

	// Duplicate name for the same user rejected
	dup := &models.Category{ID: uuid.NewString(), UserID: user.ID, Name: "Work", CreatedAt: time.Now().UTC()}
	assert.ErrorIs(t, db.CreateCategory(dup), ErrDuplicate)

	categories, err := db.ListCategoriesForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, categories, 2, "user should see own plus global categories")

	globals, err := db.ListGlobalCategories()
	require.NoError(t, err)
	require.Len(t, globals, 1)
	assert.True(t, globals[0].IsGlobal)
	assert.Equal(t, "Gratitude", globals[0].Name)

	personal.Name = "Office"
	require.NoError(t, db.UpdateCategory(personal))
	got, err := db.GetCategory(personal.ID)
	require.NoError(t, err)
	assert.Equal(t, "Office", got.Name)

	require.NoError(t, db.DeleteCategory(personal.ID))
	_, err = db.GetCategory(personal.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntryCRUD(t *testing.T) {
	db, cleanup := newTestDB(t, "entries")
	defer cleanup()

	user := newTestUser(t, db, "dave")
	other := newTestUser(t, db, "eve")

	entry := newTestEntry(user, "first", "alpha", "beta")
	entry.Mood = models.MoodPositive
	require.NoError(t, db.SaveEntry(entry))

	got, err := db.GetEntry(entry.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)
	assert.Equal(t, models.MoodPositive, got.Mood)
	assert.Equal(t, []string{"alpha", "beta"}, got.Tags)

	// Ownership scoping
	_, err = db.GetEntry(entry.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	entry.Title = "first revised"
	entry.Tags = []string{"gamma"}
	entry.UpdatedAt = time.Now().UTC()
	require.NoError(t, db.UpdateEntry(entry))

	got, err = db.GetEntry(entry.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "first revised", got.Title)
	assert.Equal(t, []string{"gamma"}, got.Tags)

	require.NoError(t, db.MergeEntryTags(entry.ID, []string{"gamma", "delta"}))
	got, err = db.GetEntry(entry.ID, user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"gamma", "delta"}, got.Tags)

	require.NoError(t, db.SetEntryMood(entry.ID, models.MoodNegative))
	got, err = db.GetEntry(entry.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MoodNegative, got.Mood)

	assert.ErrorIs(t, db.DeleteEntry(entry.ID, other.ID), ErrNotFound)
	require.NoError(t, db.DeleteEntry(entry.ID, user.ID))
	_, err = db.GetEntry(entry.ID, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListEntriesFilters(t *testing.T) {
	db, cleanup := newTestDB(t, "list")
	defer cleanup()

	user := newTestUser(t, db, "frank")

	category := &models.Category{ID: uuid.NewString(), UserID: user.ID, Name: "Work", CreatedAt: time.Now().UTC()}
	require.NoError(t, db.CreateCategory(category))

	first := newTestEntry(user, "standup notes", "work")
	first.CategoryID = category.ID
	first.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	first.UpdatedAt = first.CreatedAt
	require.NoError(t, db.SaveEntry(first))

	second := newTestEntry(user, "evening walk", "health")
	require.NoError(t, db.SaveEntry(second))

	all, err := db.ListEntries(user.ID, EntryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "evening walk", all[0].Title, "newest first")

	byTag, err := db.ListEntries(user.ID, EntryFilter{Tag: "work"})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, first.ID, byTag[0].ID)

	byCategory, err := db.ListEntries(user.ID, EntryFilter{CategoryID: category.ID})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)

	bySearch, err := db.ListEntries(user.ID, EntryFilter{Search: "walk"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, second.ID, bySearch[0].ID)

	since, err := db.ListEntries(user.ID, EntryFilter{From: time.Now().UTC().Add(-time.Hour)})
	require.NoError(t, err)
	require.Len(t, since, 1)
	assert.Equal(t, second.ID, since[0].ID)

	paged, err := db.ListEntries(user.ID, EntryFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, first.ID, paged[0].ID)
}

func TestListTags(t *testing.T) {
	db, cleanup := newTestDB(t, "tags")
	defer cleanup()

	user := newTestUser(t, db, "grace")

	require.NoError(t, db.SaveEntry(newTestEntry(user, "a", "running", "morning")))
	require.NoError(t, db.SaveEntry(newTestEntry(user, "b", "running")))

	tags, err := db.ListTags(user.ID)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, models.TagCount{Tag: "running", Count: 2}, tags[0])
}

func TestGetStats(t *testing.T) {
	db, cleanup := newTestDB(t, "stats")
	defer cleanup()

	user := newTestUser(t, db, "heidi")

	category := &models.Category{ID: uuid.NewString(), UserID: user.ID, Name: "Health", CreatedAt: time.Now().UTC()}
	require.NoError(t, db.CreateCategory(category))

	today := newTestEntry(user, "today", "running")
	today.CategoryID = category.ID
	today.Mood = models.MoodPositive
	today.WordCount = 120
	require.NoError(t, db.SaveEntry(today))

	yesterday := newTestEntry(user, "yesterday")
	yesterday.Mood = models.MoodNeutral
	yesterday.WordCount = 80
	yesterday.CreatedAt = time.Now().UTC().Add(-24 * time.Hour)
	yesterday.UpdatedAt = yesterday.CreatedAt
	require.NoError(t, db.SaveEntry(yesterday))

	stats, err := db.GetStats(user.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 200, stats.TotalWords)
	assert.Equal(t, 1, stats.MoodDistribution[models.MoodPositive])
	assert.Equal(t, 1, stats.MoodDistribution[models.MoodNeutral])
	require.Len(t, stats.Categories, 1)
	assert.Equal(t, "Health", stats.Categories[0].Name)
	require.NotEmpty(t, stats.TopTags)
	assert.Equal(t, "running", stats.TopTags[0].Tag)
	assert.NotEmpty(t, stats.EntriesPerMonth)
	assert.GreaterOrEqual(t, stats.CurrentStreak, 2)
}

func TestErrNotFoundSentinel(t *testing.T) {
	db, cleanup := newTestDB(t, "notfound")
	defer cleanup()

	_, err := db.GetUserByID(uuid.NewString())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
