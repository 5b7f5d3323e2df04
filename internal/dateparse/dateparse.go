// Package dateparse resolves free-form plan lines into calendar dates.
//
// Resolution is deterministic: rules are tried in a fixed priority order and
// the first match wins. The reference date is always passed in by the caller
// (computed once in the user's timezone), never read from the wall clock here.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Input limits for one-shot multiline ingestion.
const (
	MaxLines      = 100
	MaxContentLen = 512
)

// Explicit date literals, priority 1. Checked in this order.
var (
	reYMD    = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`)
	reMDDash = regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})\b`)
	reMDSep  = regexp.MustCompile(`\b(\d{1,2})[/.](\d{1,2})\b`)
	reMDCJK  = regexp.MustCompile(`(\d{1,2})月(\d{1,2})[日号]`)

	reOffsetDays  = regexp.MustCompile(`(?i)\+(\d+)d`)
	reOffsetWeeks = regexp.MustCompile(`(?i)\+(\d+)w`)
)

// weekdayToken maps a keyword to a weekday index, Monday = 0 through Sunday = 6.
type weekdayToken struct {
	word    string
	weekday int
}

var weekdayTokens []weekdayToken
var nextWeekTokens []weekdayToken

func init() {
	cjkDigits := []string{"一", "二", "三", "四", "五", "六"}
	for i, d := range cjkDigits {
		for _, prefix := range []string{"周", "星期", "礼拜"} {
			weekdayTokens = append(weekdayTokens, weekdayToken{prefix + d, i})
			nextWeekTokens = append(nextWeekTokens, weekdayToken{"下" + prefix + d, i})
		}
	}
	for _, d := range []string{"日", "天"} {
		for _, prefix := range []string{"周", "星期", "礼拜"} {
			weekdayTokens = append(weekdayTokens, weekdayToken{prefix + d, 6})
			nextWeekTokens = append(nextWeekTokens, weekdayToken{"下" + prefix + d, 6})
		}
	}
	english := []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	for i, name := range english {
		weekdayTokens = append(weekdayTokens, weekdayToken{name, i})
		nextWeekTokens = append(nextWeekTokens, weekdayToken{"next " + name, i})
	}
}

var (
	todayTokens    = []string{"今天", "今日", "today"}
	tomorrowTokens = []string{"明天", "明日", "tomorrow"}
	dayAfterTokens = []string{"后天", "day after tomorrow"}
)

// Resolve converts a plan line into a calendar date relative to today.
// It is total: when no rule matches, the result is tomorrow.
func Resolve(text string, today time.Time) time.Time {
	today = midnight(today)
	lower := strings.ToLower(text)

	// 1. Explicit date literals.
	if m := reYMD.FindStringSubmatch(text); m != nil {
		return civilDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), today)
	}
	if m := reMDDash.FindStringSubmatch(text); m != nil {
		return civilDate(today.Year(), atoi(m[1]), atoi(m[2]), today)
	}
	if m := reMDSep.FindStringSubmatch(text); m != nil {
		return civilDate(today.Year(), atoi(m[1]), atoi(m[2]), today)
	}
	if m := reMDCJK.FindStringSubmatch(text); m != nil {
		return civilDate(today.Year(), atoi(m[1]), atoi(m[2]), today)
	}

	// 2. Relative offsets.
	if m := reOffsetDays.FindStringSubmatch(text); m != nil {
		return today.AddDate(0, 0, atoi(m[1]))
	}
	if m := reOffsetWeeks.FindStringSubmatch(text); m != nil {
		return today.AddDate(0, 0, 7*atoi(m[1]))
	}

	// 3. Weekday in the following week. The arithmetic is
	// (7 - todayWeekday) + targetWeekday: from a Saturday, "next Monday"
	// is two days out, not nine.
	for _, tok := range nextWeekTokens {
		if strings.Contains(lower, tok.word) {
			ahead := (7 - weekdayIndex(today)) + tok.weekday
			return today.AddDate(0, 0, ahead)
		}
	}

	// 4. Bare weekday: the next occurrence strictly after today.
	for _, tok := range weekdayTokens {
		if strings.Contains(lower, tok.word) {
			ahead := tok.weekday - weekdayIndex(today)
			if ahead <= 0 {
				ahead += 7
			}
			return today.AddDate(0, 0, ahead)
		}
	}

	// 5. Relative-day keywords. Day-after first: the English form contains
	// the word "tomorrow".
	for _, tok := range dayAfterTokens {
		if strings.Contains(lower, tok) {
			return today.AddDate(0, 0, 2)
		}
	}
	for _, tok := range todayTokens {
		if strings.Contains(lower, tok) {
			return today
		}
	}
	for _, tok := range tomorrowTokens {
		if strings.Contains(lower, tok) {
			return today.AddDate(0, 0, 1)
		}
	}

	// 6. Default: tomorrow.
	return today.AddDate(0, 0, 1)
}

// StripDateToken removes a leading date token recognized by Resolve, so the
// stored task content carries no date marker. Tokens elsewhere in the line
// are left alone.
func StripDateToken(text string) string {
	s := strings.TrimSpace(text)
	for _, re := range []*regexp.Regexp{reYMD, reMDDash, reMDSep, reMDCJK, reOffsetDays, reOffsetWeeks} {
		if loc := re.FindStringIndex(s); loc != nil && loc[0] == 0 {
			return strings.TrimSpace(s[loc[1]:])
		}
	}
	lower := strings.ToLower(s)
	// Longer keyword families first, so "下周一" is not consumed as "周一".
	for _, tok := range nextWeekTokens {
		if strings.HasPrefix(lower, tok.word) {
			return strings.TrimSpace(s[len(tok.word):])
		}
	}
	for _, tok := range weekdayTokens {
		if strings.HasPrefix(lower, tok.word) {
			return strings.TrimSpace(s[len(tok.word):])
		}
	}
	for _, group := range [][]string{dayAfterTokens, tomorrowTokens, todayTokens} {
		for _, tok := range group {
			if strings.HasPrefix(lower, tok) {
				return strings.TrimSpace(s[len(tok):])
			}
		}
	}
	return s
}

// Plan is one resolved line of multiline input.
type Plan struct {
	Content string
	Due     time.Time
}

// ParseLines splits multiline input into plans, one per non-blank line.
// Input is capped at MaxLines lines and MaxContentLen runes per line; the
// second return value reports whether anything was cut.
func ParseLines(text string, today time.Time) ([]Plan, bool) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	truncated := false
	if len(lines) > MaxLines {
		lines = lines[:MaxLines]
		truncated = true
	}

	var plans []Plan
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if runes := []rune(line); len(runes) > MaxContentLen {
			line = string(runes[:MaxContentLen])
			truncated = true
		}
		content := StripDateToken(line)
		if content == "" {
			content = line
		}
		plans = append(plans, Plan{Content: content, Due: Resolve(line, today)})
	}
	return plans, truncated
}

// weekdayIndex returns Monday = 0 through Sunday = 6.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// civilDate builds a date in today's location. time.Date normalizes
// out-of-range components, which keeps Resolve total on garbage input.
func civilDate(year, month, day int, today time.Time) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, today.Location())
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
