/*
Copyright © 2026 the raw2l1 authors.
This file is part of raw2l1.

raw2l1 is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

raw2l1 is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with raw2l1.  If not, see <http://www.gnu.org/licenses/>.
*/

package ncgen

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Calendar is a CF calendar name.
type Calendar string

// Supported calendars.
const (
	Standard Calendar = "standard"
	NoLeap   Calendar = "noleap"
	AllLeap  Calendar = "all_leap"
	Day360   Calendar = "360_day"
	Julian   Calendar = "julian"
)

var calendars = map[string]Calendar{
	"standard":            Standard,
	"gregorian":           Standard,
	"proleptic_gregorian": Standard,
	"noleap":              NoLeap,
	"365_day":             NoLeap,
	"all_leap":            AllLeap,
	"366_day":             AllLeap,
	"360_day":             Day360,
	"julian":              Julian,
}

// ParseCalendar returns the calendar named s. An empty name is the
// standard calendar.
func ParseCalendar(s string) (Calendar, error) {
	if strings.TrimSpace(s) == "" {
		return Standard, nil
	}
	c, ok := calendars[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unsupported calendar %q", s)
	}
	return c, nil
}

var timeUnits = map[string]float64{
	"microseconds": 1e-6, "microsecond": 1e-6, "us": 1e-6,
	"milliseconds": 1e-3, "millisecond": 1e-3, "msec": 1e-3, "ms": 1e-3,
	"seconds": 1, "second": 1, "secs": 1, "sec": 1, "s": 1,
	"minutes": 60, "minute": 60, "mins": 60, "min": 60,
	"hours": 3600, "hour": 3600, "hrs": 3600, "hr": 3600, "h": 3600,
	"days": 86400, "day": 86400, "d": 86400,
}

var refLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-1-2 15:4:5",
	"2006-1-2",
}

// TimeUnits is a parsed CF time units string, "<unit> since <reference>".
type TimeUnits struct {
	// Seconds is the length of one unit in seconds.
	Seconds float64
	Ref     time.Time
}

// ParseTimeUnits parses a CF time units string such as
// "seconds since 1970-01-01 00:00:00". A trailing "UTC", "Z" or zero
// offset is accepted; other time zones are not.
func ParseTimeUnits(s string) (TimeUnits, error) {
	parts := strings.SplitN(strings.TrimSpace(s), " since ", 2)
	if len(parts) != 2 {
		return TimeUnits{}, fmt.Errorf("time units %q: want \"<unit> since <reference>\"", s)
	}
	sec, ok := timeUnits[strings.ToLower(strings.TrimSpace(parts[0]))]
	if !ok {
		return TimeUnits{}, fmt.Errorf("time units %q: unknown unit %q", s, parts[0])
	}
	ref := strings.TrimSpace(parts[1])
	for _, suffix := range []string{"UTC", "Z", "+00:00", "+0000"} {
		if r := strings.TrimSpace(strings.TrimSuffix(ref, suffix)); r != ref && len(r) >= len("2006-1-2") {
			ref = r
			break
		}
	}
	for _, l := range refLayouts {
		if t, err := time.Parse(l, ref); err == nil {
			return TimeUnits{Seconds: sec, Ref: t}, nil
		}
	}
	return TimeUnits{}, fmt.Errorf("time units %q: cannot parse reference time %q", s, ref)
}

// Encode returns the number of units between the reference time and t in
// calendar c. Dates that do not exist in c, such as February 29 in a
// noleap calendar, are an error.
func (u TimeUnits) Encode(t time.Time, c Calendar) (float64, error) {
	t = t.UTC()
	if c == Standard {
		d := t.Sub(u.Ref)
		if d == math.MaxInt64 || d == math.MinInt64 {
			return 0, fmt.Errorf("%s is too far from the reference time %s", t, u.Ref)
		}
		return d.Seconds() / u.Seconds, nil
	}
	dt, err := dayNumber(t, c)
	if err != nil {
		return 0, err
	}
	dr, err := dayNumber(u.Ref, c)
	if err != nil {
		return 0, err
	}
	s := float64(dt-dr)*86400 + secondOfDay(t) - secondOfDay(u.Ref)
	return s / u.Seconds, nil
}

func secondOfDay(t time.Time) float64 {
	return float64(t.Hour()*3600+t.Minute()*60+t.Second()) + float64(t.Nanosecond())*1e-9
}

var (
	cumDays     = [13]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334, 365}
	cumDaysLeap = [13]int{0, 31, 60, 91, 121, 152, 182, 213, 244, 274, 305, 335, 366}
)

// dayNumber returns a day count for the date of t in calendar c. Only
// differences between day numbers are meaningful.
func dayNumber(t time.Time, c Calendar) (int64, error) {
	y, m, d := int64(t.Year()), int64(t.Month()), int64(t.Day())
	switch c {
	case NoLeap:
		if m == 2 && d == 29 {
			return 0, fmt.Errorf("%s does not exist in the %s calendar", t.Format("2006-01-02"), c)
		}
		return y*365 + int64(cumDays[m-1]) + d - 1, nil
	case AllLeap:
		return y*366 + int64(cumDaysLeap[m-1]) + d - 1, nil
	case Day360:
		if d > 30 {
			return 0, fmt.Errorf("%s does not exist in the %s calendar", t.Format("2006-01-02"), c)
		}
		return y*360 + (m-1)*30 + d - 1, nil
	case Julian:
		// Julian day number of a date in the Julian calendar.
		a := (14 - m) / 12
		yy := y + 4800 - a
		mm := m + 12*a - 3
		return d + (153*mm+2)/5 + 365*yy + yy/4 - 32083, nil
	}
	return 0, fmt.Errorf("unsupported calendar %q", c)
}
