package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	c := NewFake(start)
	var order []string
	var firedAt []time.Time

	c.AfterFunc(2*time.Minute, func() { order = append(order, "b"); firedAt = append(firedAt, c.Now()) })
	c.AfterFunc(time.Minute, func() { order = append(order, "a"); firedAt = append(firedAt, c.Now()) })
	stopped := c.AfterFunc(90*time.Second, func() { order = append(order, "x") })
	require.True(t, stopped.Stop())
	require.False(t, stopped.Stop())
	require.Equal(t, 2, c.Pending())

	c.Advance(5 * time.Minute)
	require.Equal(t, []string{"a", "b"}, order)
	require.Equal(t, []time.Time{start.Add(time.Minute), start.Add(2 * time.Minute)}, firedAt)
	require.Equal(t, start.Add(5*time.Minute), c.Now())
	require.Zero(t, c.Pending())
}

func TestFakeTimerArmedFromCallbackFires(t *testing.T) {
	c := NewFake(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	fired := 0
	c.AfterFunc(time.Minute, func() {
		fired++
		c.AfterFunc(time.Minute, func() { fired++ })
	})

	c.Advance(90 * time.Second)
	require.Equal(t, 1, fired)
	next, ok := c.NextDeadline()
	require.True(t, ok)
	require.Equal(t, c.Now().Add(30*time.Second), next)

	c.Advance(30 * time.Second)
	require.Equal(t, 2, fired)
}

func TestOneShotRearmStopsPrevious(t *testing.T) {
	c := NewFake(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	o := NewOneShot(c, nil)
	var fired []string

	o.Arm(time.Minute, func() { fired = append(fired, "first") })
	o.Arm(2*time.Minute, func() { fired = append(fired, "second") })
	require.Equal(t, 1, c.Pending())
	deadline, ok := o.Deadline()
	require.True(t, ok)
	require.Equal(t, c.Now().Add(2*time.Minute), deadline)

	c.Advance(3 * time.Minute)
	require.Equal(t, []string{"second"}, fired)
	require.False(t, o.Armed())
	require.False(t, o.Stop())
}

func TestOneShotDropsCallbackQueuedBeforeStop(t *testing.T) {
	c := NewFake(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	var queued []func()
	o := NewOneShot(c, func(fn func()) { queued = append(queued, fn) })
	fired := false

	o.Arm(time.Minute, func() { fired = true })
	c.Advance(time.Minute)
	require.Len(t, queued, 1)

	require.True(t, o.Stop())
	queued[0]()
	require.False(t, fired)
}
