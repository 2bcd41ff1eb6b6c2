package pricing

import "time"

// Countdown is the time left in an auction's decay window.
type Countdown struct {
	Hours        int64 `json:"hours"`
	Minutes      int64 `json:"minutes"`
	Seconds      int64 `json:"seconds"`
	TotalSeconds int64 `json:"totalSeconds"`
	Expired      bool  `json:"expired"`
}

// StartCountdown is the time left before a scheduled auction goes live.
type StartCountdown struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
	Started bool  `json:"started"`
}

// TimeRemaining counts down to the end of the auction. Before the auction
// starts it reports the full duration, as if the auction were already running;
// callers showing it to users must check TimeUntilStart first.
func TimeRemaining(a AuctionPricing, now time.Time) Countdown {
	remaining := a.EndsAt().Sub(now)
	if now.Before(a.StartsAt) {
		remaining = time.Duration(a.DurationMinutes) * time.Minute
	}
	if remaining <= 0 {
		return Countdown{Expired: true}
	}

	total := int64(remaining / time.Second)
	return Countdown{
		Hours:        total / 3600,
		Minutes:      (total % 3600) / 60,
		Seconds:      total % 60,
		TotalSeconds: total,
	}
}

// TimeUntilStart counts down to startsAt.
func TimeUntilStart(startsAt, now time.Time) StartCountdown {
	if !now.Before(startsAt) {
		return StartCountdown{Started: true}
	}

	total := int64(startsAt.Sub(now) / time.Second)
	return StartCountdown{
		Days:    total / 86400,
		Hours:   (total % 86400) / 3600,
		Minutes: (total % 3600) / 60,
		Seconds: total % 60,
	}
}
