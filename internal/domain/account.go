package domain

import "time"

// Account is one gateway API key with its quota bookkeeping. UsedToday resets
// when LastReset falls on a previous day.
type Account struct {
	ID         string
	Name       string
	APIKey     string
	IsPrimary  bool
	DailyQuota int
	UsedToday  int
	LastReset  *string
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// QuotaRemaining reports how many generations the account has left today.
func (a *Account) QuotaRemaining() int {
	remaining := a.DailyQuota - a.UsedToday
	if remaining < 0 {
		return 0
	}
	return remaining
}

// NeedsReset reports whether the daily counter belongs to a previous day.
func (a *Account) NeedsReset(today string) bool {
	return a.LastReset == nil || *a.LastReset != today
}
