package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fireRecorder struct {
	mu    sync.Mutex
	fires []string // "name:today"
}

func (f *fireRecorder) job(name string) Job {
	return func(ctx context.Context, today string) {
		f.mu.Lock()
		f.fires = append(f.fires, name+":"+today)
		f.mu.Unlock()
	}
}

func newTestScheduler(t *testing.T, triggers []Trigger) *Scheduler {
	t.Helper()
	logger := zerolog.Nop()
	s, err := NewScheduler(Config{Timezone: "America/Chicago"}, triggers, &logger)
	require.NoError(t, err)
	return s
}

// chicagoTime builds an instant whose Chicago-local clock reads as given.
func chicagoTime(t *testing.T, year int, month time.Month, day, hour, minute int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

func TestTriggerFiresAtItsSlot(t *testing.T) {
	rec := &fireRecorder{}
	s := newTestScheduler(t, []Trigger{
		{Name: "mark", Times: []string{"10:00"}, Run: rec.job("mark")},
	})

	s.checkAndRun(context.Background(), chicagoTime(t, 2024, time.February, 29, 9, 59))
	assert.Empty(t, rec.fires)

	s.checkAndRun(context.Background(), chicagoTime(t, 2024, time.February, 29, 10, 0))
	assert.Equal(t, []string{"mark:2024-02-29"}, rec.fires)
}

func TestSlotFiresOncePerDay(t *testing.T) {
	rec := &fireRecorder{}
	s := newTestScheduler(t, []Trigger{
		{Name: "mark", Times: []string{"10:00"}, Run: rec.job("mark")},
	})

	now := chicagoTime(t, 2024, time.February, 29, 10, 0)
	s.checkAndRun(context.Background(), now)
	s.checkAndRun(context.Background(), now.Add(30*time.Second))
	assert.Len(t, rec.fires, 1, "same slot must not fire twice in one day")

	// Next day, same slot fires again.
	s.checkAndRun(context.Background(), chicagoTime(t, 2024, time.March, 1, 10, 0))
	assert.Equal(t, []string{"mark:2024-02-29", "mark:2024-03-01"}, rec.fires)
}

func TestMultiSlotTriggerFiresEachSlotIndependently(t *testing.T) {
	rec := &fireRecorder{}
	s := newTestScheduler(t, []Trigger{
		{Name: "interval", Times: []string{"13:00", "16:00", "19:00", "22:00"}, Run: rec.job("interval")},
	})

	for _, hour := range []int{13, 16, 19, 22} {
		s.checkAndRun(context.Background(), chicagoTime(t, 2024, time.February, 29, hour, 0))
	}
	assert.Len(t, rec.fires, 4)
}

func TestSlotMatchingUsesConfiguredZone(t *testing.T) {
	rec := &fireRecorder{}
	s := newTestScheduler(t, []Trigger{
		{Name: "mark", Times: []string{"10:00"}, Run: rec.job("mark")},
	})

	// 16:00 UTC on Feb 29 is 10:00 CST in Chicago.
	s.checkAndRun(context.Background(), time.Date(2024, 2, 29, 16, 0, 0, 0, time.UTC))
	assert.Equal(t, []string{"mark:2024-02-29"}, rec.fires)
}

func TestRunNow(t *testing.T) {
	rec := &fireRecorder{}
	s := newTestScheduler(t, []Trigger{
		{Name: "mark", Times: []string{"10:00"}, Run: rec.job("mark")},
	})

	assert.True(t, s.RunNow(context.Background(), "mark"))
	assert.Len(t, rec.fires, 1)
	assert.False(t, s.RunNow(context.Background(), "missing"))
}

func TestNewSchedulerRejectsBadConfig(t *testing.T) {
	logger := zerolog.Nop()

	_, err := NewScheduler(Config{Timezone: "Not/AZone"}, nil, &logger)
	assert.Error(t, err)

	_, err = NewScheduler(Config{}, []Trigger{{Name: "x", Times: []string{"25:99"}}}, &logger)
	assert.Error(t, err)

	_, err = NewScheduler(Config{}, []Trigger{{Name: "x"}}, &logger)
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	rec := &fireRecorder{}
	logger := zerolog.Nop()
	s, err := NewScheduler(Config{CheckInterval: 10 * time.Millisecond},
		[]Trigger{{Name: "mark", Times: []string{"10:00"}, Run: rec.job("mark")}}, &logger)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	assert.Eventually(t, s.IsRunning, time.Second, 10*time.Millisecond)
	s.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.False(t, s.IsRunning())
}
