package utils

import (
	"math"
	"time"
)

// ET is the US Eastern time location used by the US options market.
var ET *time.Location

func init() {
	var err error
	ET, err = time.LoadLocation("America/New_York")
	if err != nil {
		// Fallback: create fixed zone if tz database is not available
		ET = time.FixedZone("EST", -5*60*60)
	}
}

// Clock returns the current instant. Components take a Clock instead of calling
// time.Now directly so tests can pin "now".
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time { return time.Now() }

// FixedClock returns a Clock that always reports t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// DaysBetween returns the whole number of days from "from" to "to", rounded to
// the nearest day. The result is negative when "to" is before "from".
func DaysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}

// FormatExpiry renders an expiration date as "Fri, Nov 21, 2025".
// Expirations are calendar dates stamped at UTC midnight, so they are formatted in UTC.
func FormatExpiry(t time.Time) string {
	return t.UTC().Format("Mon, Jan 2, 2006")
}

// MarketOpenTime returns the regular session open (9:30 AM ET) for a given date.
func MarketOpenTime(date time.Time) time.Time {
	d := date.In(ET)
	return time.Date(d.Year(), d.Month(), d.Day(), 9, 30, 0, 0, ET)
}

// MarketCloseTime returns the regular session close (4:00 PM ET) for a given date.
func MarketCloseTime(date time.Time) time.Time {
	d := date.In(ET)
	return time.Date(d.Year(), d.Month(), d.Day(), 16, 0, 0, 0, ET)
}

// MarketStatus returns a short description of the US session state at t.
// Exchange holidays are not modelled. Quotes fetched while the market is closed are last-session values.
func MarketStatus(t time.Time) string {
	t = t.In(ET)
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return "CLOSED (Weekend)"
	}
	switch {
	case t.Before(MarketOpenTime(t)):
		return "PRE-MARKET"
	case t.Before(MarketCloseTime(t)):
		return "OPEN"
	default:
		return "CLOSED"
	}
}
