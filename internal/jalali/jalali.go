// Package jalali converts between the Gregorian calendar used for storage and
// the Persian solar (Jalali) calendar used for display.
package jalali

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar date in the Jalali calendar.
type Date struct {
	Year  int
	Month int
	Day   int
}

var gregorianDaysBeforeMonth = [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// FromTime returns the Jalali date of t's calendar day in t's location.
func FromTime(t time.Time) Date {
	gy, gm, gd := t.Date()
	return FromGregorian(gy, int(gm), gd)
}

// FromGregorian converts a Gregorian year/month/day to a Jalali date.
func FromGregorian(gy, gm, gd int) Date {
	gy2 := gy
	if gm > 2 {
		gy2 = gy + 1
	}
	days := 355666 + 365*gy + (gy2+3)/4 - (gy2+99)/100 + (gy2+399)/400 + gd + gregorianDaysBeforeMonth[gm-1]

	jy := -1595 + 33*(days/12053)
	days %= 12053
	jy += 4 * (days / 1461)
	days %= 1461
	if days > 365 {
		jy += (days - 1) / 365
		days = (days - 1) % 365
	}

	var jm, jd int
	if days < 186 {
		jm = 1 + days/31
		jd = 1 + days%31
	} else {
		jm = 7 + (days-186)/30
		jd = 1 + (days-186)%30
	}
	return Date{Year: jy, Month: jm, Day: jd}
}

// Gregorian converts d to a Gregorian year/month/day.
func (d Date) Gregorian() (gy, gm, gd int) {
	jy := d.Year + 1595
	days := -355668 + 365*jy + (jy/33)*8 + ((jy%33)+3)/4 + d.Day
	if d.Month < 7 {
		days += (d.Month - 1) * 31
	} else {
		days += (d.Month-7)*30 + 186
	}

	gy = 400 * (days / 146097)
	days %= 146097
	if days > 36524 {
		days--
		gy += 100 * (days / 36524)
		days %= 36524
		if days >= 365 {
			days++
		}
	}
	gy += 4 * (days / 1461)
	days %= 1461
	if days > 365 {
		gy += (days - 1) / 365
		days = (days - 1) % 365
	}

	gd = days + 1
	monthDays := [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	if (gy%4 == 0 && gy%100 != 0) || gy%400 == 0 {
		monthDays[2] = 29
	}
	for gm = 1; gm < 13 && gd > monthDays[gm]; gm++ {
		gd -= monthDays[gm]
	}
	return gy, gm, gd
}

// Time returns midnight UTC of the Gregorian day equal to d.
func (d Date) Time() time.Time {
	gy, gm, gd := d.Gregorian()
	return time.Date(gy, time.Month(gm), gd, 0, 0, 0, 0, time.UTC)
}

// Valid reports whether d names a real day, including the 30th of Esfand
// only in leap years.
func (d Date) Valid() bool {
	if d.Year < 1 || d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return false
	}
	switch {
	case d.Month <= 6 && d.Day > 31:
		return false
	case d.Month > 6 && d.Day > 30:
		return false
	}
	// Round-tripping through the Gregorian calendar rejects 30 Esfand in common years.
	return FromTime(d.Time()) == d
}

// String formats d as YYYY/MM/DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, d.Month, d.Day)
}

// Years Parse accepts. A Gregorian year such as 2024 falls outside.
const (
	MinYear = 1200
	MaxYear = 1600
)

// Parse reads a YYYY/MM/DD (or YYYY-MM-DD) Jalali date with a year in
// [MinYear, MaxYear].
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("jalali: %q is not in YYYY/MM/DD form", s)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, fmt.Errorf("jalali: %q is not in YYYY/MM/DD form", s)
		}
		nums[i] = n
	}

	d := Date{Year: nums[0], Month: nums[1], Day: nums[2]}
	if d.Year < MinYear || d.Year > MaxYear {
		return Date{}, fmt.Errorf("jalali: year %d outside %d-%d", d.Year, MinYear, MaxYear)
	}
	if !d.Valid() {
		return Date{}, fmt.Errorf("jalali: %s is not a valid date", d)
	}
	return d, nil
}
