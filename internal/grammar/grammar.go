// Package grammar implements the recursive-descent date/session parser
// of spec.md §4.5: dates (today/yesterday/tmrw/tomorrow/weekday/
// dd/mm/yyyy), times (proper_time and quick_time, both requiring an
// am/pm suffix), and session ranges combining any two of
// {datetime, bare time}.
//
// No parser-combinator library appears anywhere in the retrieved
// dependency surface, so this is a small hand-written cursor the way
// the standard library's own text/scanner and net/url parsers are
// written: no third-party dependency fits this concern.
package grammar

import (
	"strconv"
	"strings"
	"time"
)

// Session is a parsed [Start, End) datetime pair.
type Session struct {
	Start time.Time
	End   time.Time
}

// ParseDatetime parses a single date, datetime, or bare time, resolving
// relative forms (today, a weekday, a bare time) against now. The whole
// input must be consumed; any trailing or unparseable text yields
// ok == false rather than an error, per spec.md §7's silent-no-op policy.
func ParseDatetime(s string, now time.Time) (time.Time, bool) {
	c := &cursor{s: s}
	if t, ok := parseDatetimeCombo(c, now); ok && c.eof() {
		return t, true
	}
	c.s = s
	if h, m, ok := parseTime(c); ok && c.eof() {
		return combine(dateOnly(now), h, m), true
	}
	c.s = s
	if d, ok := parseDate(c, now); ok && c.eof() {
		return combine(d, 0, 0), true
	}
	return time.Time{}, false
}

// ParseSession parses a session range: any combination of a full
// datetime or a bare time on either side of the literal separator
// " to ". Where one side is a bare time, spec.md §4.5's rule governs
// which date it borrows; see the per-shape helpers below for the exact
// (slightly asymmetric) assignment inherited from the original grammar.
func ParseSession(s string, now time.Time) (Session, bool) {
	if sess, ok := parseSessionDtDt(s, now); ok {
		return sess, true
	}
	if sess, ok := parseSessionDtTime(s, now); ok {
		return sess, true
	}
	if sess, ok := parseSessionTimeDt(s, now); ok {
		return sess, true
	}
	if sess, ok := parseSessionTimeTime(s, now); ok {
		return sess, true
	}
	return Session{}, false
}

const sep = " to "

func parseSessionDtDt(s string, now time.Time) (Session, bool) {
	c := &cursor{s: s}
	start, ok := parseDateWithOptTime(c, now)
	if !ok || !c.consume(sep) {
		return Session{}, false
	}
	end, ok := parseDateWithOptTime(c, now)
	if !ok || !c.eof() {
		return Session{}, false
	}
	return Session{Start: start, End: end}, true
}

// parseSessionDtTime: the bare time on the right takes the left
// datetime's date (spec.md §4.5: "takes the other endpoint's date").
func parseSessionDtTime(s string, now time.Time) (Session, bool) {
	c := &cursor{s: s}
	start, ok := parseDateWithOptTime(c, now)
	if !ok || !c.consume(sep) {
		return Session{}, false
	}
	h, m, ok := parseTime(c)
	if !ok || !c.eof() {
		return Session{}, false
	}
	return Session{Start: start, End: combine(dateOnly(start), h, m)}, true
}

// parseSessionTimeDt: the bare time on the left takes today's date.
func parseSessionTimeDt(s string, now time.Time) (Session, bool) {
	c := &cursor{s: s}
	h, m, ok := parseTime(c)
	if !ok || !c.consume(sep) {
		return Session{}, false
	}
	end, ok := parseDateWithOptTime(c, now)
	if !ok || !c.eof() {
		return Session{}, false
	}
	return Session{Start: combine(dateOnly(now), h, m), End: end}, true
}

func parseSessionTimeTime(s string, now time.Time) (Session, bool) {
	c := &cursor{s: s}
	h1, m1, ok := parseTime(c)
	if !ok || !c.consume(sep) {
		return Session{}, false
	}
	h2, m2, ok := parseTime(c)
	if !ok || !c.eof() {
		return Session{}, false
	}
	today := dateOnly(now)
	return Session{Start: combine(today, h1, m1), End: combine(today, h2, m2)}, true
}

func combine(date time.Time, hour, min int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, min, 0, 0, date.Location())
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// parseDateWithOptTime parses a datetime, falling back to a bare date at
// midnight.
func parseDateWithOptTime(c *cursor, now time.Time) (time.Time, bool) {
	if t, ok := parseDatetimeCombo(c, now); ok {
		return t, true
	}
	if d, ok := parseDate(c, now); ok {
		return combine(d, 0, 0), true
	}
	return time.Time{}, false
}

func parseDatetimeCombo(c *cursor, now time.Time) (time.Time, bool) {
	save := c.s
	d, ok := parseDate(c, now)
	if !ok {
		c.s = save
		return time.Time{}, false
	}
	c.skipSpaces()
	h, m, ok := parseTime(c)
	if !ok {
		c.s = save
		return time.Time{}, false
	}
	return combine(d, h, m), true
}

func parseDate(c *cursor, now time.Time) (time.Time, bool) {
	if c.consumeFold("today") {
		return dateOnly(now), true
	}
	if c.consumeFold("yesterday") {
		return dateOnly(now).AddDate(0, 0, -1), true
	}
	if c.consumeFold("tmrw") {
		return dateOnly(now).AddDate(0, 0, 1), true
	}
	if c.consumeFold("tomorrow") {
		return dateOnly(now).AddDate(0, 0, 1), true
	}
	if d, ok := parseWeekday(c, now); ok {
		return d, true
	}
	if d, ok := parseDDMMYYYY(c); ok {
		return d, true
	}
	return time.Time{}, false
}

var weekdayNames = []struct {
	long, short string
	day         time.Weekday
}{
	{"monday", "mon", time.Monday},
	{"tuesday", "tue", time.Tuesday},
	{"wednesday", "wed", time.Wednesday},
	{"thursday", "thu", time.Thursday},
	{"friday", "fri", time.Friday},
	{"saturday", "sat", time.Saturday},
	{"sunday", "sun", time.Sunday},
}

// mondayIndex reorders a time.Weekday (Sunday == 0) to a Monday-first
// index, matching the original grammar's num_days_from_monday.
func mondayIndex(w time.Weekday) int { return (int(w) + 6) % 7 }

func parseWeekday(c *cursor, now time.Time) (time.Time, bool) {
	for _, wd := range weekdayNames {
		if c.consumeFold(wd.long) || c.consumeFold(wd.short) {
			today := dateOnly(now)
			delta := (mondayIndex(wd.day) + 7 - mondayIndex(today.Weekday())) % 7
			return today.AddDate(0, 0, delta), true
		}
	}
	return time.Time{}, false
}

func parseDDMMYYYY(c *cursor) (time.Time, bool) {
	save := c.s
	fail := func() (time.Time, bool) { c.s = save; return time.Time{}, false }

	dayStr, ok := c.takeExactly(2)
	if !ok || !c.consume("/") {
		return fail()
	}
	monthStr, ok := c.takeExactly(2)
	if !ok || !c.consume("/") {
		return fail()
	}
	yearStr, ok := c.takeExactly(4)
	if !ok {
		return fail()
	}

	day, err1 := strconv.Atoi(dayStr)
	month, err2 := strconv.Atoi(monthStr)
	year, err3 := strconv.Atoi(yearStr)
	if err1 != nil || err2 != nil || err3 != nil || month < 1 || month > 12 {
		return fail()
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return fail()
	}
	return t, true
}

// parseTime tries proper_time ("3:05 pm") then quick_time ("3 pm").
func parseTime(c *cursor) (hour, min int, ok bool) {
	if h, m, ok := parseProperTime(c); ok {
		return h, m, true
	}
	if h, m, ok := parseQuickTime(c); ok {
		return h, m, true
	}
	return 0, 0, false
}

func parseProperTime(c *cursor) (hour, min int, ok bool) {
	save := c.s
	fail := func() (int, int, bool) { c.s = save; return 0, 0, false }

	hourStr, found := c.takeUntil(":")
	if !found || hourStr == "" || !c.consume(":") {
		return fail()
	}
	minStr, ok := c.takeExactly(2)
	if !ok {
		return fail()
	}
	c.skipSpaces()
	delta, ok := c.consumeMeridiem()
	if !ok {
		return fail()
	}
	h, err := strconv.Atoi(hourStr)
	if err != nil || h > 12 {
		return fail()
	}
	if h == 12 {
		h = 0
	}
	m, err := strconv.Atoi(minStr)
	if err != nil || m > 59 {
		return fail()
	}
	return h + delta, m, true
}

func parseQuickTime(c *cursor) (hour, min int, ok bool) {
	save := c.s
	fail := func() (int, int, bool) { c.s = save; return 0, 0, false }

	hourStr, ok := c.takeDigits(1)
	if !ok {
		return fail()
	}
	c.skipSpaces()
	delta, ok := c.consumeMeridiem()
	if !ok {
		return fail()
	}
	h, err := strconv.Atoi(hourStr)
	if err != nil || h > 12 {
		return fail()
	}
	if h == 12 {
		h = 0
	}
	return h + delta, 0, true
}

// cursor is a minimal hand-rolled scanner over the remaining input; all
// consume/take methods leave the cursor unchanged on failure.
type cursor struct {
	s string
}

func (c *cursor) eof() bool { return len(c.s) == 0 }

func (c *cursor) consume(tag string) bool {
	if strings.HasPrefix(c.s, tag) {
		c.s = c.s[len(tag):]
		return true
	}
	return false
}

func (c *cursor) consumeFold(tag string) bool {
	if len(c.s) >= len(tag) && strings.EqualFold(c.s[:len(tag)], tag) {
		c.s = c.s[len(tag):]
		return true
	}
	return false
}

func (c *cursor) skipSpaces() {
	c.s = strings.TrimLeft(c.s, " \t\n\r\f\v")
}

func (c *cursor) takeExactly(n int) (string, bool) {
	if len(c.s) < n {
		return "", false
	}
	out := c.s[:n]
	c.s = c.s[n:]
	return out, true
}

func (c *cursor) takeDigits(min int) (string, bool) {
	i := 0
	for i < len(c.s) && c.s[i] >= '0' && c.s[i] <= '9' {
		i++
	}
	if i < min {
		return "", false
	}
	out := c.s[:i]
	c.s = c.s[i:]
	return out, true
}

// takeUntil takes at least one byte up to (not including) the first
// occurrence of sep, mirroring winnow's take_until1.
func (c *cursor) takeUntil(sep string) (string, bool) {
	idx := strings.Index(c.s, sep)
	if idx <= 0 {
		return "", false
	}
	out := c.s[:idx]
	c.s = c.s[idx:]
	return out, true
}

func (c *cursor) consumeMeridiem() (delta int, ok bool) {
	if c.consume("am") || c.consume("AM") {
		return 0, true
	}
	if c.consume("pm") || c.consume("PM") {
		return 12, true
	}
	return 0, false
}
