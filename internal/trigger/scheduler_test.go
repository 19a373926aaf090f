package trigger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rbright/splconfig/internal/clock"
)

func TestSchedulerArmsWithinLookahead(t *testing.T) {
	c := clock.NewFake(at(0, 8, 30))
	s := NewSchedule()
	require.NoError(t, s.Set("Morning", Record{Days: AllDays, Start: at(0, 9, 0), Duration: 30}))

	var fired []Candidate
	sched := NewScheduler(s, c, nil, func(cand Candidate) { fired = append(fired, cand) }, nil)

	_, immediate := sched.Start(false)
	require.False(t, immediate)
	pending, ok := sched.Pending()
	require.True(t, ok)
	require.Equal(t, "Morning", pending.Profile)
	require.Equal(t, 1, c.Pending())

	_, immediate = sched.Start(false)
	require.False(t, immediate)
	require.Equal(t, 1, c.Pending())

	c.Advance(30 * time.Minute)
	require.Len(t, fired, 1)
	require.Equal(t, at(0, 9, 0), fired[0].At)
	_, ok = sched.Pending()
	require.False(t, ok)
}

func TestSchedulerRestartStopsPreviousTimer(t *testing.T) {
	c := clock.NewFake(at(0, 8, 30))
	s := NewSchedule()
	require.NoError(t, s.Set("Morning", Record{Days: AllDays, Start: at(0, 9, 0), Duration: 30}))

	fired := 0
	sched := NewScheduler(s, c, nil, func(Candidate) { fired++ }, nil)
	sched.Start(false)
	sched.Start(true)
	sched.Start(true)
	require.Equal(t, 1, c.Pending())

	c.Advance(time.Hour)
	require.Equal(t, 1, fired)
}

func TestSchedulerDefersBeyondLookahead(t *testing.T) {
	c := clock.NewFake(at(0, 6, 0))
	s := NewSchedule()
	require.NoError(t, s.Set("Morning", Record{Days: AllDays, Start: at(0, 9, 0), Duration: 30}))

	sched := NewScheduler(s, c, nil, func(Candidate) {}, nil)
	_, immediate := sched.Start(false)
	require.False(t, immediate)
	require.Zero(t, c.Pending())
}

func TestSchedulerReturnsImmediateCandidate(t *testing.T) {
	c := clock.NewFake(at(0, 9, 10))
	s := NewSchedule()
	s.records["Morning"] = Record{Days: AllDays, Start: at(0, 9, 0), Duration: 30}

	sched := NewScheduler(s, c, nil, func(Candidate) { t.Fatal("timer should not fire") }, nil)
	cand, immediate := sched.Start(false)
	require.True(t, immediate)
	require.Equal(t, "Morning", cand.Profile)
	require.Equal(t, 20*time.Minute, cand.Remaining)
	require.Zero(t, c.Pending())
}

func TestSchedulerStop(t *testing.T) {
	c := clock.NewFake(at(0, 8, 30))
	s := NewSchedule()
	require.NoError(t, s.Set("Morning", Record{Days: AllDays, Start: at(0, 9, 0), Duration: 30}))

	sched := NewScheduler(s, c, nil, func(Candidate) { t.Fatal("stopped timer fired") }, nil)
	sched.Start(false)
	sched.Stop()
	c.Advance(time.Hour)
}
