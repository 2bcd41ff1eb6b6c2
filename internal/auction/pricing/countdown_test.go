package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeRemaining(t *testing.T) {
	a := AuctionPricing{
		StartPrice:      d("2"),
		FloorPrice:      d("1"),
		DurationMinutes: 90,
		StartsAt:        testStart,
	}

	tests := []struct {
		name string
		now  time.Time
		want Countdown
	}{
		{
			name: "before start reports full duration",
			now:  testStart.Add(-10 * time.Minute),
			want: Countdown{Hours: 1, Minutes: 30, Seconds: 0, TotalSeconds: 5400},
		},
		{
			name: "at start",
			now:  testStart,
			want: Countdown{Hours: 1, Minutes: 30, Seconds: 0, TotalSeconds: 5400},
		},
		{
			name: "truncates partial seconds",
			now:  testStart.Add(60*time.Minute + 500*time.Millisecond),
			want: Countdown{Hours: 0, Minutes: 29, Seconds: 59, TotalSeconds: 1799},
		},
		{
			name: "one second left",
			now:  testStart.Add(90*time.Minute - time.Second),
			want: Countdown{Seconds: 1, TotalSeconds: 1},
		},
		{
			name: "at end",
			now:  testStart.Add(90 * time.Minute),
			want: Countdown{Expired: true},
		},
		{
			name: "long after end",
			now:  testStart.Add(48 * time.Hour),
			want: Countdown{Expired: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeRemaining(a, tt.now))
		})
	}
}

func TestTimeRemaining_HoursAreNotWrapped(t *testing.T) {
	a := AuctionPricing{DurationMinutes: 3 * 24 * 60, StartsAt: testStart}

	got := TimeRemaining(a, testStart)

	assert.Equal(t, int64(72), got.Hours)
	assert.Equal(t, int64(72*3600), got.TotalSeconds)
}

func TestTimeUntilStart(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want StartCountdown
	}{
		{
			name: "decomposes days",
			now:  testStart.Add(-(26*time.Hour + 3*time.Minute + 4*time.Second + 900*time.Millisecond)),
			want: StartCountdown{Days: 1, Hours: 2, Minutes: 3, Seconds: 4},
		},
		{
			name: "under a minute",
			now:  testStart.Add(-42 * time.Second),
			want: StartCountdown{Seconds: 42},
		},
		{
			name: "exactly at start",
			now:  testStart,
			want: StartCountdown{Started: true},
		},
		{
			name: "after start",
			now:  testStart.Add(time.Hour),
			want: StartCountdown{Started: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeUntilStart(testStart, tt.now))
		})
	}
}
