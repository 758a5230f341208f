// Package format renders money, dates and times the way the HomeSwift
// frontends display them.
package format

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrInvalidTime is returned for a time that is not HH:MM on a 24-hour clock
var ErrInvalidTime = errors.New("time must be HH:MM")

var groupPrinter = message.NewPrinter(language.English)

// Currency formats amount as rand with two decimals and comma thousands,
// for example "R 1,234.56". The grouping is fixed so server and browser
// output always match.
func Currency(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")

	grouped := whole
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		grouped = groupPrinter.Sprintf("%d", n)
	}

	sign := ""
	if amount.Round(2).IsNegative() {
		sign = "-"
	}
	return "R " + sign + grouped + "." + cents
}

// Date formats t in the en-ZA long form, for example "18 October 2026"
func Date(t time.Time) string {
	return t.Format("2 January 2006")
}

// ParseDate accepts an RFC 3339 timestamp or a bare YYYY-MM-DD date
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

// Time converts "HH:MM" to a 12-hour clock: "13:05" is "1:05 PM",
// "00:30" is "12:30 AM".
func Time(hhmm string) (string, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(hhmm), ":")
	if !ok || len(m) != 2 || h == "" || len(h) > 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
	}

	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%s %s", display, m, period), nil
}
