package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/harrison/jenkins-job-linter/internal/linter"
	"github.com/harrison/jenkins-job-linter/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func makeRun(id string, startedAt time.Time, results ...linter.Result) *models.RunReport {
	outcomes := make([]models.LinterOutcome, len(results))
	for i, r := range results {
		outcomes[i] = models.LinterOutcome{Linter: []string{"check_shebang", "ensure_timestamps", "check_for_empty_shell"}[i%3], Result: r}
	}
	return &models.RunReport{
		ID:        id,
		StartedAt: startedAt,
		Duration:  1500 * time.Millisecond,
		Files:     []models.FileReport{{Path: "/jobs/a/config.xml", Outcomes: outcomes}},
	}
}

func countRows(t *testing.T, s *Store, table string) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestOpenCreatesFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, path, store.Path())
	assert.FileExists(t, path)
}

func TestRecordRunAndRecentRuns(t *testing.T) {
	ctx := context.Background()
	store := openMemory(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.RecordRun(ctx, makeRun("run-1", base, linter.Pass, linter.Pass)))
	require.NoError(t, store.RecordRun(ctx, makeRun("run-2", base.Add(time.Minute), linter.Fail, linter.Skip)))

	runs, err := store.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-2", runs[0].ID)
	assert.False(t, runs[0].Success)
	assert.Equal(t, 1, runs[0].Failed)
	assert.Equal(t, 1, runs[0].Skipped)
	assert.Equal(t, 1500*time.Millisecond, runs[0].Duration)
	assert.True(t, runs[0].StartedAt.Equal(base.Add(time.Minute)))

	assert.Equal(t, "run-1", runs[1].ID)
	assert.True(t, runs[1].Success)
	assert.Equal(t, 2, runs[1].Passed)
	assert.Equal(t, 1, runs[1].FileCount)

	limited, err := store.RecentRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "run-2", limited[0].ID)

	assert.Equal(t, 4, countRows(t, store, "outcomes"))
}

func TestRecordRunAssignsID(t *testing.T) {
	store := openMemory(t)
	run := makeRun("", time.Now(), linter.Pass)

	require.NoError(t, store.RecordRun(context.Background(), run))
	assert.Len(t, run.ID, 36)
}

func TestRecordRunFileErrors(t *testing.T) {
	store := openMemory(t)
	run := &models.RunReport{
		ID:        "run-err",
		StartedAt: time.Now(),
		Files:     []models.FileReport{{Path: "/jobs/broken/config.xml", Error: "XML syntax error"}},
	}

	require.NoError(t, store.RecordRun(context.Background(), run))
	assert.Equal(t, 1, countRows(t, store, "file_errors"))
	assert.Equal(t, 0, countRows(t, store, "outcomes"))

	runs, err := store.RecentRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Errored)
	assert.False(t, runs[0].Success)
}

func TestRecordRunDuplicateID(t *testing.T) {
	ctx := context.Background()
	store := openMemory(t)
	run := makeRun("dup", time.Now(), linter.Pass)

	require.NoError(t, store.RecordRun(ctx, run))
	assert.Error(t, store.RecordRun(ctx, run))
	assert.Equal(t, 1, countRows(t, store, "outcomes"))
}

func TestTopFailures(t *testing.T) {
	ctx := context.Background()
	store := openMemory(t)
	now := time.Now()

	require.NoError(t, store.RecordRun(ctx, makeRun("a", now, linter.Fail, linter.Fail, linter.Pass)))
	require.NoError(t, store.RecordRun(ctx, makeRun("b", now.Add(time.Second), linter.Fail, linter.Pass, linter.Pass)))

	top, err := store.TopFailures(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []LinterFailures{
		{Linter: "check_shebang", Failures: 2},
		{Linter: "ensure_timestamps", Failures: 1},
	}, top)
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	store := openMemory(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, store.RecordRun(ctx, makeRun(id, base.Add(time.Duration(i)*time.Minute), linter.Fail)))
	}

	removed, err := store.Prune(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)

	removed, err = store.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	runs, err := store.RecentRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r3", runs[0].ID)
	assert.Equal(t, "r2", runs[1].ID)

	// Outcomes of pruned runs are removed with them
	assert.Equal(t, 2, countRows(t, store, "outcomes"))
}
