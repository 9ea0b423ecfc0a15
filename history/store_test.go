package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: create a test run store
func createTestRunStore(t *testing.T) *RunStore {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")
	store, err := NewRunStore(dbPath)
	require.NoError(t, err, "should create run store")
	t.Cleanup(func() { store.Close() })
	return store
}

// TestNewRunStore_CreatesDatabase verifies database creation
func TestNewRunStore_CreatesDatabase(t *testing.T) {
	store := createTestRunStore(t)

	runs, err := store.ListRuns(RunFilter{})
	require.NoError(t, err, "runs table should exist")
	assert.NotNil(t, runs)
	assert.Empty(t, runs, "new database should have no runs")
}

// TestNewRunStore_ExistingDatabase verifies runs persist across connections
func TestNewRunStore_ExistingDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store1, err := NewRunStore(dbPath)
	require.NoError(t, err)
	_, err = store1.StartRun("https://quotes.toscrape.com/", "quotes.csv")
	require.NoError(t, err)
	store1.Close()

	store2, err := NewRunStore(dbPath)
	require.NoError(t, err)
	defer store2.Close()

	runs, err := store2.ListRuns(RunFilter{})
	require.NoError(t, err)
	assert.Len(t, runs, 1, "data should persist across connections")
}

// TestStartRun_Running verifies a new run is recorded as running
func TestStartRun_Running(t *testing.T) {
	store := createTestRunStore(t)

	before := time.Now().Add(-time.Second)
	run, err := store.StartRun("https://quotes.toscrape.com/", "out.csv")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, run.RunID, "should generate UUID")
	assert.Equal(t, StatusRunning, run.Status)
	assert.Equal(t, "https://quotes.toscrape.com/", run.BaseURL)
	assert.Equal(t, "out.csv", run.OutputPath)
	assert.True(t, run.StartedAt.After(before))
	assert.Nil(t, run.FinishedAt)
	assert.Nil(t, run.LastError)
	assert.Equal(t, time.Duration(0), run.Duration())
}

// TestGetRun_PreservesAllFields verifies round trip through the database
func TestGetRun_PreservesAllFields(t *testing.T) {
	store := createTestRunStore(t)

	run, err := store.StartRun("https://quotes.toscrape.com/", "out.csv")
	require.NoError(t, err)

	got, err := store.GetRun(run.RunID)
	require.NoError(t, err)

	assert.Equal(t, run.RunID, got.RunID)
	assert.Equal(t, run.BaseURL, got.BaseURL)
	assert.Equal(t, run.OutputPath, got.OutputPath)
	assert.True(t, run.StartedAt.Equal(got.StartedAt), "start time should round trip")
	assert.Equal(t, StatusRunning, got.Status)
	assert.Nil(t, got.FinishedAt)
}

// TestGetRun_NotFound verifies the sentinel error
func TestGetRun_NotFound(t *testing.T) {
	store := createTestRunStore(t)

	run, err := store.GetRun(uuid.New())
	assert.Nil(t, run)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

// TestFinishRun_Succeeded verifies counts and status for a clean run
func TestFinishRun_Succeeded(t *testing.T) {
	store := createTestRunStore(t)

	run, err := store.StartRun("https://quotes.toscrape.com/", "quotes.csv")
	require.NoError(t, err)

	require.NoError(t, store.FinishRun(run.RunID, 10, 100, nil))

	got, err := store.GetRun(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, got.Status)
	assert.Equal(t, 10, got.Pages)
	assert.Equal(t, 100, got.Quotes)
	require.NotNil(t, got.FinishedAt)
	assert.False(t, got.FinishedAt.Before(got.StartedAt))
	assert.Nil(t, got.LastError)
}

// TestFinishRun_Failed verifies the error message is stored
func TestFinishRun_Failed(t *testing.T) {
	store := createTestRunStore(t)

	run, err := store.StartRun("https://quotes.toscrape.com/", "quotes.csv")
	require.NoError(t, err)

	runErr := errors.New("failed to fetch https://quotes.toscrape.com/: HTTP error: 503 Service Unavailable")
	require.NoError(t, store.FinishRun(run.RunID, 0, 0, runErr))

	got, err := store.GetRun(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	require.NotNil(t, got.LastError)
	assert.Equal(t, runErr.Error(), *got.LastError)
	assert.Equal(t, 0, got.Quotes)
}

// TestFinishRun_NotFound verifies finishing an unknown run
func TestFinishRun_NotFound(t *testing.T) {
	store := createTestRunStore(t)

	err := store.FinishRun(uuid.New(), 1, 1, nil)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

// TestListRuns_OrderByStartedDesc verifies newest runs come first
func TestListRuns_OrderByStartedDesc(t *testing.T) {
	store := createTestRunStore(t)

	first, err := store.StartRun("http://example.com/1", "1.csv")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	second, err := store.StartRun("http://example.com/2", "2.csv")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	third, err := store.StartRun("http://example.com/3", "3.csv")
	require.NoError(t, err)

	runs, err := store.ListRuns(RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 3)

	// Should be in reverse start order
	assert.Equal(t, third.RunID, runs[0].RunID)
	assert.Equal(t, second.RunID, runs[1].RunID)
	assert.Equal(t, first.RunID, runs[2].RunID)
}

// TestListRuns_FilterByStatus verifies status filtering
func TestListRuns_FilterByStatus(t *testing.T) {
	store := createTestRunStore(t)

	ok, err := store.StartRun("http://example.com/", "ok.csv")
	require.NoError(t, err)
	require.NoError(t, store.FinishRun(ok.RunID, 1, 10, nil))

	bad, err := store.StartRun("http://example.com/", "bad.csv")
	require.NoError(t, err)
	require.NoError(t, store.FinishRun(bad.RunID, 0, 0, errors.New("boom")))

	_, err = store.StartRun("http://example.com/", "pending.csv")
	require.NoError(t, err)

	tests := []struct {
		status   string
		expected int
	}{
		{StatusSucceeded, 1},
		{StatusFailed, 1},
		{StatusRunning, 1},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			status := tt.status
			runs, err := store.ListRuns(RunFilter{Status: &status})
			require.NoError(t, err)
			assert.Len(t, runs, tt.expected)
			for _, run := range runs {
				assert.Equal(t, tt.status, run.Status)
			}
		})
	}
}

// TestListRuns_LimitOffset verifies pagination
func TestListRuns_LimitOffset(t *testing.T) {
	store := createTestRunStore(t)

	var ids []uuid.UUID
	for i := 0; i < 4; i++ {
		run, err := store.StartRun("http://example.com/", "quotes.csv")
		require.NoError(t, err)
		ids = append(ids, run.RunID)
		time.Sleep(5 * time.Millisecond)
	}

	runs, err := store.ListRuns(RunFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[3], runs[0].RunID)

	runs, err = store.ListRuns(RunFilter{Offset: 3})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, ids[0], runs[0].RunID)
}
