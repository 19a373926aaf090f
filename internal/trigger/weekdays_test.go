package trigger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBitMondayHigh(t *testing.T) {
	require.Equal(t, Weekdays(64), Bit(time.Monday))
	require.Equal(t, Weekdays(32), Bit(time.Tuesday))
	require.Equal(t, Weekdays(2), Bit(time.Saturday))
	require.Equal(t, Weekdays(1), Bit(time.Sunday))
}

func TestParseWeekdays(t *testing.T) {
	tests := []struct {
		raw     string
		want    Weekdays
		wantErr bool
	}{
		{raw: "mon", want: 64},
		{raw: "Mon, wed ,fri", want: 64 | 16 | 4},
		{raw: "sat,sun", want: 3},
		{raw: "all", want: AllDays},
		{raw: "tu,th", want: 32 | 8},
		{raw: "m", wantErr: true},
		{raw: "funday", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseWeekdays(tc.raw)
		if tc.wantErr {
			require.Error(t, err, tc.raw)
			continue
		}
		require.NoError(t, err, tc.raw)
		require.Equal(t, tc.want, got, tc.raw)
	}
	require.Equal(t, "Mon,Wed,Fri", Weekdays(64|16|4).String())
}

// referenceNext walks forward hour by hour; targets sit on minute 30.
func referenceNext(w Weekdays, hour int, from time.Time) time.Time {
	t := from.Truncate(time.Hour).Add(30 * time.Minute)
	if !t.After(from) {
		t = t.Add(time.Hour)
	}
	for i := 0; i < 24*9; i++ {
		if t.Hour() == hour && w.Has(t.Weekday()) {
			return t
		}
		t = t.Add(time.Hour)
	}
	return time.Time{}
}

func TestNextExhaustive(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	const hour = 9

	for mask := Weekdays(1); mask <= AllDays; mask++ {
		for day := 0; day < 7; day++ {
			for _, clockTime := range []time.Duration{8 * time.Hour, 9*time.Hour + 30*time.Minute, 10*time.Hour + 15*time.Minute} {
				from := monday.AddDate(0, 0, day).Add(clockTime)
				got := mask.Next(hour, 30, from)
				want := referenceNext(mask, hour, from)

				require.Equal(t, want, got, "mask=%07b from=%s", mask, from)
				require.True(t, got.After(from))
				require.LessOrEqual(t, got.Sub(from), 7*24*time.Hour)
			}
		}
	}
}

func TestNextAdvancesByOneRecurrence(t *testing.T) {
	monday := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	for mask := Weekdays(1); mask <= AllDays; mask++ {
		first := mask.Next(9, 0, monday)
		second := mask.Next(9, 0, first)
		gap := second.Sub(first)

		require.GreaterOrEqual(t, gap, 24*time.Hour)
		require.LessOrEqual(t, gap, 7*24*time.Hour)
		for d := 1; d < int(gap/(24*time.Hour)); d++ {
			require.False(t, mask.Has(first.AddDate(0, 0, d).Weekday()), "mask=%07b skipped a set day", mask)
		}
		if mask.Count() == 1 {
			require.Equal(t, 7*24*time.Hour, gap)
		}
	}
}

func TestNextSameDayOnlyBeforeTarget(t *testing.T) {
	wednesday := time.Date(2026, 3, 4, 8, 59, 0, 0, time.UTC)
	mask := Bit(time.Wednesday) | Bit(time.Monday)

	require.Equal(t, time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC), mask.Next(9, 0, wednesday))
	atTarget := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC), mask.Next(9, 0, atTarget))
}

func TestPrevious(t *testing.T) {
	mask := Bit(time.Friday)
	at := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC), mask.Previous(9, 0, at))

	onTime := time.Date(2026, 3, 6, 9, 0, 0, 0, time.UTC)
	require.Equal(t, onTime, mask.Previous(9, 0, onTime))
}
