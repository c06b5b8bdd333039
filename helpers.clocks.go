package main

import (
	"time"
)

var _ TickerClocker = (*Clock)(nil)

// Clocker provides the current time. Placed orders, log file names and
// session activity are stamped through it.
type Clocker interface {
	Now() time.Time
}

// TickerClocker also drives periodic jobs like the idle sessions sweeper.
type TickerClocker interface {
	Clocker
	NewTicker(time.Duration) *time.Ticker
}

// Clock reads the system time in UTC for production and in the local
// timezone otherwise.
type Clock struct {
	loc *time.Location
}

func NewClock(isProd bool) *Clock {
	loc := time.Local
	if isProd {
		loc = time.UTC
	}
	return &Clock{loc: loc}
}

func (c *Clock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *Clock) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}
