package samples

import (
	"math/rand"
	"testing"
	"time"

	"temp_monitor/internal/clock"
	"temp_monitor/internal/persist"
	"temp_monitor/internal/store"

	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 1, hour, minute, 0, 0, time.UTC)
}

func newTestBuffer(t *testing.T, c clock.Clock, s store.Store) *Buffer {
	t.Helper()
	b, err := New(Options{
		BucketWidth: 30 * time.Minute,
		Clock:       c,
		Location:    time.UTC,
		Store:       s,
	})
	require.NoError(t, err)
	return b
}

func TestNew_Defaults(t *testing.T) {
	b := newTestBuffer(t, clock.Fake(at(0, 0)), store.NewMemory())

	require.Equal(t, 48, b.BucketCount())
	snap := b.Snapshot()
	require.Equal(t, DefaultMaxValid, snap.Min)
	require.Equal(t, DefaultMinValid, snap.Max)
	for i, bk := range snap.Buckets {
		require.Zero(t, bk.Count, "bucket %d", i)
		require.Zero(t, bk.Average, "bucket %d", i)
	}
}

func TestNew_RejectsWidthsThatDoNotDivideADay(t *testing.T) {
	for _, w := range []time.Duration{7 * time.Minute, 90 * time.Second, 30 * time.Second, 25 * time.Hour} {
		_, err := New(Options{BucketWidth: w})
		require.ErrorIs(t, err, ErrBucketWidth, "width %s", w)
	}
	b, err := New(Options{BucketWidth: time.Hour})
	require.NoError(t, err)
	require.Equal(t, 24, b.BucketCount())
}

func TestRecordReading_WindowAverageAndTransition(t *testing.T) {
	c := clock.Fake(at(10, 5))
	s := store.NewMemory()
	b := newTestBuffer(t, c, s)

	ev, err := b.RecordReading(20.0)
	require.NoError(t, err)
	require.Equal(t, EventBucketChanged, ev)
	require.Equal(t, 20, b.CurrentIndex())

	c.Set(at(10, 20))
	ev, err = b.RecordReading(22.0)
	require.NoError(t, err)
	require.Equal(t, EventNone, ev)

	snap := b.Snapshot()
	require.InDelta(t, 21.0, snap.Buckets[20].Average, 1e-9)
	require.Equal(t, 2, snap.Buckets[20].Count)

	c.Set(at(10, 35))
	ev, err = b.RecordReading(19.0)
	require.NoError(t, err)
	require.Equal(t, EventBucketChanged, ev)

	snap = b.Snapshot()
	require.Equal(t, 21, snap.CurrentIndex)
	require.InDelta(t, 19.0, snap.Buckets[21].Average, 1e-9)
	require.Equal(t, 1, snap.Buckets[21].Count)
	require.InDelta(t, 21.0, snap.Buckets[20].Average, 1e-9)
	require.Equal(t, 2, snap.Buckets[20].Count)

	require.True(t, s.Exists(DataFile))
}

func TestRecordReading_TransitionDiscardsStaleBucket(t *testing.T) {
	c := clock.Fake(at(3, 0))
	b := newTestBuffer(t, c, store.NewMemory())

	for _, v := range []float64{30, 31, 32} {
		_, err := b.RecordReading(v)
		require.NoError(t, err)
	}
	c.Set(at(4, 0))
	_, err := b.RecordReading(25)
	require.NoError(t, err)

	// next day, same window as the first batch
	c.Set(at(3, 10))
	ev, err := b.RecordReading(18.5)
	require.NoError(t, err)
	require.Equal(t, EventBucketChanged, ev)

	bk := b.Snapshot().Buckets[6]
	require.Equal(t, 1, bk.Count)
	require.InDelta(t, 18.5, bk.Average, 1e-9)
}

func TestRecordReading_MeanMatchesArithmeticMean(t *testing.T) {
	c := clock.Fake(at(12, 0))
	b := newTestBuffer(t, c, store.NewMemory())
	rng := rand.New(rand.NewSource(7))

	var sum float64
	const n = 200
	for i := 0; i < n; i++ {
		v := 10 + rng.Float64()*20
		sum += v
		c.Set(at(12, i%30))
		_, err := b.RecordReading(v)
		require.NoError(t, err)
	}

	bk := b.Snapshot().Buckets[24]
	require.Equal(t, n, bk.Count)
	require.InDelta(t, sum/n, bk.Average, 1e-9)
}

func TestRecordReading_RejectsOutOfRange(t *testing.T) {
	c := clock.Fake(at(8, 0))
	s := store.NewMemory()
	b := newTestBuffer(t, c, s)

	before := b.Snapshot()
	for _, v := range []float64{-0.5, 100.5, 1e9} {
		ev, err := b.RecordReading(v)
		require.NoError(t, err)
		require.Equal(t, EventRejected, ev)
	}
	require.Equal(t, before, b.Snapshot())
	require.False(t, s.Exists(DataFile))
}

func TestRecordReading_ExtremaBracketCurrent(t *testing.T) {
	c := clock.Fake(at(0, 0))
	b := newTestBuffer(t, c, store.NewMemory())
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 500; i++ {
		c.Advance(time.Duration(rng.Intn(10)) * time.Minute)
		if i%97 == 0 {
			b.ResetMinMaxExtrema()
		}
		_, err := b.RecordReading(rng.Float64() * 100)
		require.NoError(t, err)
		snap := b.Snapshot()
		require.LessOrEqual(t, snap.Min, snap.Current)
		require.LessOrEqual(t, snap.Current, snap.Max)
	}
}

func TestResetMinMaxExtrema_LeavesBuckets(t *testing.T) {
	c := clock.Fake(at(1, 0))
	s := store.NewMemory()
	b := newTestBuffer(t, c, s)
	_, err := b.RecordReading(23)
	require.NoError(t, err)
	require.NoError(t, s.Remove(DataFile))

	b.ResetMinMaxExtrema()
	snap := b.Snapshot()
	require.Equal(t, DefaultMaxValid, snap.Min)
	require.Equal(t, DefaultMinValid, snap.Max)
	require.Equal(t, 1, snap.Buckets[2].Count)
	require.False(t, s.Exists(DataFile), "reset must not persist")
}

func TestClearAll(t *testing.T) {
	c := clock.Fake(at(1, 0))
	b := newTestBuffer(t, c, store.NewMemory())
	_, err := b.RecordReading(23)
	require.NoError(t, err)

	b.ClearAll()
	snap := b.Snapshot()
	for _, bk := range snap.Buckets {
		require.Zero(t, bk.Count)
	}
	require.Equal(t, DefaultMaxValid, snap.Min)
}

func TestSummary(t *testing.T) {
	c := clock.Fake(at(1, 0))
	b := newTestBuffer(t, c, store.NewMemory())
	_, err := b.RecordReading(21.26)
	require.NoError(t, err)
	c.Advance(time.Minute)
	_, err = b.RecordReading(18.04)
	require.NoError(t, err)

	require.Equal(t, "Now: 18.0 C,  Min: 18.0 C,  Max: 21.3 C", b.Summary())
}

func TestSetLocation_ShiftsBucketIndex(t *testing.T) {
	c := clock.Fake(at(23, 0))
	b := newTestBuffer(t, c, store.NewMemory())
	b.SetLocation(time.FixedZone("UTC+12", 12*3600))

	_, err := b.RecordReading(20)
	require.NoError(t, err)
	require.Equal(t, 22, b.CurrentIndex()) // 11:00 local
}

func TestPersistReload_RoundTrip(t *testing.T) {
	c := clock.Fake(at(9, 0))
	s := store.NewMemory()
	b := newTestBuffer(t, c, s)
	for i, v := range []float64{20.1, 20.4, 22.7, 19.9} {
		c.Set(at(9+i, 15))
		_, err := b.RecordReading(v)
		require.NoError(t, err)
	}
	_, err := b.RecordReading(21.3)
	require.NoError(t, err)
	require.NoError(t, b.Persist())
	want := b.Snapshot()

	fresh := newTestBuffer(t, c, s)
	require.NoError(t, fresh.Reload())
	got := fresh.Snapshot()

	require.InDelta(t, want.Current, got.Current, 0.05)
	require.InDelta(t, want.Min, got.Min, 0.05)
	require.InDelta(t, want.Max, got.Max, 0.05)
	for i := range want.Buckets {
		require.Equal(t, want.Buckets[i].Count, got.Buckets[i].Count, "bucket %d", i)
		require.InDelta(t, want.Buckets[i].Average, got.Buckets[i].Average, 0.05, "bucket %d", i)
	}
}

func TestReload_FallsBackToBackup(t *testing.T) {
	c := clock.Fake(at(9, 0))
	s := store.NewMemory()
	b := newTestBuffer(t, c, s)
	_, err := b.RecordReading(24.0)
	require.NoError(t, err)
	require.NoError(t, s.Rename(DataFile, BackupFile))

	fresh := newTestBuffer(t, c, s)
	require.NoError(t, fresh.Reload())
	snap := fresh.Snapshot()
	require.Equal(t, 1, snap.Buckets[18].Count)
	require.InDelta(t, 24.0, snap.Buckets[18].Average, 1e-9)
}

func TestReload_NoStateKeepsDefaults(t *testing.T) {
	b := newTestBuffer(t, clock.Fake(at(0, 0)), store.NewMemory())
	require.ErrorIs(t, b.Reload(), persist.ErrNoState)
	require.Equal(t, DefaultMaxValid, b.Snapshot().Min)
}

func TestReload_MalformedFieldsFallBack(t *testing.T) {
	s := store.NewMemory()
	require.NoError(t, s.WriteFile(DataFile, []byte("21.5,x,30.0,20.0,-3,19.0,2,")))

	b := newTestBuffer(t, clock.Fake(at(0, 0)), s)
	require.NoError(t, b.Reload())
	snap := b.Snapshot()
	require.InDelta(t, 21.5, snap.Current, 1e-9)
	require.Equal(t, DefaultMaxValid, snap.Min)
	require.InDelta(t, 30.0, snap.Max, 1e-9)
	require.Equal(t, 0, snap.Buckets[0].Count)
	require.Zero(t, snap.Buckets[0].Average)
	require.Equal(t, 2, snap.Buckets[1].Count)
	require.Equal(t, 0, snap.Buckets[2].Count)
}

func TestEvent_String(t *testing.T) {
	require.Equal(t, "bucket_changed", EventBucketChanged.String())
	require.Equal(t, "event(9)", Event(9).String())
}

func TestReload_FirstReadingStartsFreshBucketAtMidnight(t *testing.T) {
	s := store.NewMemory()
	c := clock.Fake(at(0, 5))
	b := newTestBuffer(t, c, s)
	for _, v := range []float64{30, 31} {
		_, err := b.RecordReading(v)
		require.NoError(t, err)
	}
	require.Equal(t, 0, b.CurrentIndex())
	require.NoError(t, b.Persist())

	// restart the next day inside the same window
	c.Set(at(0, 10).Add(24 * time.Hour))
	fresh := newTestBuffer(t, c, s)
	require.NoError(t, fresh.Reload())
	require.Equal(t, 2, fresh.Snapshot().Buckets[0].Count)

	ev, err := fresh.RecordReading(18.0)
	require.NoError(t, err)
	require.Equal(t, EventBucketChanged, ev)
	bk := fresh.Snapshot().Buckets[0]
	require.Equal(t, 1, bk.Count)
	require.InDelta(t, 18.0, bk.Average, 1e-9)

	c.Set(at(0, 20).Add(24 * time.Hour))
	ev, err = fresh.RecordReading(20.0)
	require.NoError(t, err)
	require.Equal(t, EventNone, ev)
	require.Equal(t, 2, fresh.Snapshot().Buckets[0].Count)
}

func TestNew_FirstReadingInBucketZeroIsATransition(t *testing.T) {
	s := store.NewMemory()
	b := newTestBuffer(t, clock.Fake(at(0, 1)), s)
	ev, err := b.RecordReading(21.0)
	require.NoError(t, err)
	require.Equal(t, EventBucketChanged, ev)
	require.True(t, s.Exists(DataFile))
}
