package engine

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
)

// TimeResolver turns a record's plain civil schedule (date, time-of-day,
// IANA zone name) into an absolute instant. It never consults the process
// local zone: records with an empty or unknown zone fall back to the
// configured default instead.
type TimeResolver struct {
	defaultLoc *time.Location
}

// NewTimeResolver creates a resolver with the given default zone. An
// unloadable default degrades to UTC.
func NewTimeResolver(defaultZone string) *TimeResolver {
	loc, err := time.LoadLocation(defaultZone)
	if err != nil {
		log.Printf("Default timezone %q could not be loaded, falling back to UTC: %v", defaultZone, err)
		loc = time.UTC
	}
	return &TimeResolver{defaultLoc: loc}
}

// Location resolves an IANA zone name, substituting the default for empty or
// unrecognized names. A bad zone on one record must not stall the scan, so
// this never fails.
func (r *TimeResolver) Location(name string) *time.Location {
	if name == "" {
		return r.defaultLoc
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("Unrecognized timezone %q, using default %s", name, r.defaultLoc)
		return r.defaultLoc
	}
	return loc
}

// ResolveInstant resolves a civil date ("2006-01-02") and time-of-day
// ("15:04") in the given zone to the absolute instant they represent on that
// specific date, DST included.
func (r *TimeResolver) ResolveInstant(date, timeOfDay, timezone string) (time.Time, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, &ScheduleFormatError{Field: "date", Value: date}
	}

	hour, minute, err := parseTimeOfDay(timeOfDay)
	if err != nil {
		return time.Time{}, &ScheduleFormatError{Field: "time", Value: timeOfDay}
	}

	loc := r.Location(timezone)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), nil
}

// Now returns the current instant expressed in the given zone, the same zone
// space ResolveInstant produces for that record.
func (r *TimeResolver) Now(timezone string) time.Time {
	return time.Now().In(r.Location(timezone))
}

// parseTimeOfDay parses "HH:MM". Anything that is not two colon-separated
// in-range integers is rejected.
func parseTimeOfDay(value string) (int, int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", value)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time of day %q out of range", value)
	}

	return hour, minute, nil
}
