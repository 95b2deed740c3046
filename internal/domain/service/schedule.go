package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/syncfield/standup-bot/internal/domain"
	"github.com/syncfield/standup-bot/internal/domain/errs"
)

// NextOccurrence returns the next instant strictly after now at which one of
// the configured ISO weekdays hits the wall-clock time of day in the given
// IANA timezone. The time of day is local wall clock, so DST shifts are honored; if
// today's slot already passed, the search moves to the next matching day. An
// empty weekday set or an unparseable time/zone is a configuration error.
func NextOccurrence(weekdays []int, timeOfDay, timezone string, now time.Time) (time.Time, error) {
	if len(weekdays) == 0 {
		return time.Time{}, errs.Validationf("no weekdays configured")
	}

	hour, minute, err := parseTimeOfDay(timeOfDay)
	if err != nil {
		return time.Time{}, err
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, errs.Validationf("invalid timezone %q: %v", timezone, err)
	}

	activeDays := make(map[int]bool, len(weekdays))
	for _, day := range weekdays {
		if day < 1 || day > 7 {
			return time.Time{}, errs.Validationf("invalid weekday %d", day)
		}
		activeDays[day] = true
	}

	local := now.In(loc)
	for offset := 0; offset <= 7; offset++ {
		day := local.AddDate(0, 0, offset)
		// time.Date normalizes wall-clock times that fall inside a DST gap
		candidate := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
		if activeDays[isoWeekday(candidate)] && candidate.After(now) {
			return candidate, nil
		}
	}

	// Unreachable with at least one valid weekday
	return time.Time{}, errs.Validationf("no occurrence found within a week")
}

// isoWeekday maps Go's Sunday-based weekday to ISO 8601 (Monday=1..Sunday=7)
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func parseTimeOfDay(timeOfDay string) (hour, minute int, err error) {
	parts := strings.Split(timeOfDay, ":")
	if len(parts) != 2 {
		return 0, 0, errs.Validationf("invalid time format %q, expected HH:MM", timeOfDay)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, errs.Validationf("invalid hour in %q", timeOfDay)
	}

	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, errs.Validationf("invalid minute in %q", timeOfDay)
	}

	return hour, minute, nil
}

// formatWeekdays renders an ISO weekday set for status messages
func formatWeekdays(days []int) string {
	names := make([]string, 0, len(days))
	for _, d := range days {
		if name, ok := domain.WeekdayNames[d]; ok {
			names = append(names, name)
		} else {
			names = append(names, fmt.Sprintf("day-%d", d))
		}
	}
	return strings.Join(names, ", ")
}
