package counter

import (
	"database/sql"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmjmahal/billing/db"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenPath(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))
	t.Cleanup(func() { database.Close() })
	return database
}

func TestNextStartsAtOne(t *testing.T) {
	database := openTestDB(t)

	v, err := Next(database, "bill")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	v, err = Next(database, "bill")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestSequencesAreIndependent(t *testing.T) {
	database := openTestDB(t)

	for i := 0; i < 3; i++ {
		_, err := Next(database, "bill")
		require.NoError(t, err)
	}
	v, err := Next(database, "account_land")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestCurrent(t *testing.T) {
	database := openTestDB(t)

	v, err := Current(database, "bill")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v, "unused sequence reads as zero")

	_, err = Next(database, "bill")
	require.NoError(t, err)

	v1, err := Current(database, "bill")
	require.NoError(t, err)
	v2, err := Current(database, "bill")
	require.NoError(t, err)
	assert.Equal(t, v1, v2, "reads do not advance the sequence")
	assert.Equal(t, int64(1), v1)
}

func TestReset(t *testing.T) {
	database := openTestDB(t)

	for i := 0; i < 5; i++ {
		_, err := Next(database, "bill")
		require.NoError(t, err)
	}
	require.NoError(t, Reset(database, "bill", 0))

	v, err := Next(database, "bill")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	require.NoError(t, Reset(database, "bill", 100))
	v, err = Next(database, "bill")
	require.NoError(t, err)
	assert.Equal(t, int64(101), v)
}

func TestConcurrentNextIsContiguous(t *testing.T) {
	database := openTestDB(t)

	const n = 50
	results := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := Next(database, "bill")
			assert.NoError(t, err)
			results <- v
		}()
	}
	wg.Wait()
	close(results)

	var got []int64
	for v := range results {
		got = append(got, v)
	}
	require.Len(t, got, n)

	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	for i, v := range got {
		assert.Equal(t, int64(i+1), v, "values must form a contiguous ascending run with no duplicates")
	}
}

func TestCheckAndResetDue(t *testing.T) {
	database := openTestDB(t)

	for i := 0; i < 7; i++ {
		_, err := Next(database, "daily_seq")
		require.NoError(t, err)
	}
	_, err := Next(database, "keep_seq")
	require.NoError(t, err)

	// a daily sequence last reset far in the past is due; frequency
	// "never" is untouched regardless
	_, err = database.Exec(`UPDATE counters SET reset_frequency = 'daily', last_reset = '2020-01-01 00:00:00' WHERE name = 'daily_seq'`)
	require.NoError(t, err)

	require.NoError(t, CheckAndResetDue(database, time.Now()))

	v, err := Current(database, "daily_seq")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	v, err = Current(database, "keep_seq")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	// second pass on the same day is a no-op
	_, err = Next(database, "daily_seq")
	require.NoError(t, err)
	require.NoError(t, CheckAndResetDue(database, time.Now()))
	v, err = Current(database, "daily_seq")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestBoundaryCrossed(t *testing.T) {
	mar31 := time.Date(2024, time.March, 31, 10, 0, 0, 0, time.UTC)
	apr1 := time.Date(2024, time.April, 1, 10, 0, 0, 0, time.UTC)
	apr30 := time.Date(2024, time.April, 30, 10, 0, 0, 0, time.UTC)
	nextYear := time.Date(2025, time.March, 31, 10, 0, 0, 0, time.UTC)

	assert.True(t, boundaryCrossed("daily", mar31, apr1))
	assert.False(t, boundaryCrossed("daily", apr1, apr1))

	assert.True(t, boundaryCrossed("monthly", mar31, apr1))
	assert.False(t, boundaryCrossed("monthly", apr1, apr30))

	assert.False(t, boundaryCrossed("yearly", mar31, apr30))
	assert.True(t, boundaryCrossed("yearly", apr1, nextYear))

	assert.False(t, boundaryCrossed("never", mar31, nextYear))
}
