package schedule

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	timeLineRe = regexp.MustCompile(`^(\d{1,2}:\d{2}\s*(?i:am|pm)?)\s+(.+)$`)
	dateTailRe = regexp.MustCompile(`\s*-?\s*\d{1,2}/\d{1,2}/\d{2,4}.*$`)
	initialsRe = regexp.MustCompile(`(?:\s+|\s*-\s*)[A-Z]{2,3}\s*-?\s*$`)
	nameWordRe = regexp.MustCompile(`^[A-Z][a-zA-Z'-]*$`)
)

// Parse returns the unique patient names found in text, in the order they
// first appear. Names are deduplicated case-insensitively and keep the
// casing of their first occurrence. The result is never nil.
func Parse(text string) []string {
	names := make([]string, 0)
	seen := make(map[string]struct{})

	for _, line := range strings.Split(text, "\n") {
		if isNoteLine(line) {
			continue
		}

		remainder, ok := MatchAppointmentLine(line)
		if !ok {
			continue
		}

		remainder = StripAppointmentType(remainder)
		remainder = StripTrailingDate(remainder)
		remainder = StripInitials(remainder)

		name, ok := ExtractName(remainder)
		if !ok {
			continue
		}

		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}

	return names
}

// isNoteLine reports whether line is an indented annotation. Indented lines
// that still start with a clock time are appointments.
func isNoteLine(line string) bool {
	r, _ := utf8.DecodeRuneInString(line)
	if line == "" || !unicode.IsSpace(r) {
		return false
	}
	return !timeLineRe.MatchString(strings.TrimSpace(line))
}

// MatchAppointmentLine checks that the trimmed line starts with a clock time
// such as "2:00pm" or "14:30 PM" followed by whitespace, and returns the
// trimmed text after the time.
func MatchAppointmentLine(line string) (string, bool) {
	m := timeLineRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[2]), true
}

// StripAppointmentType removes one trailing appointment phrase from s. The
// phrase must be separated from the preceding text by whitespace.
func StripAppointmentType(s string) string {
	body := strings.TrimRightFunc(s, unicode.IsSpace)

	for _, kind := range AppointmentTypes {
		if len(body) <= len(kind) {
			continue
		}
		cut := len(body) - len(kind)
		if !strings.EqualFold(body[cut:], kind) {
			continue
		}
		r, _ := utf8.DecodeLastRuneInString(body[:cut])
		if !unicode.IsSpace(r) {
			continue
		}
		return strings.TrimRightFunc(body[:cut], unicode.IsSpace)
	}

	return s
}

// StripTrailingDate removes the first M/D/YY or M/D/YYYY date in s, an
// optional dash before it, and everything after it.
func StripTrailingDate(s string) string {
	return dateTailRe.ReplaceAllString(s, "")
}

// StripInitials removes a trailing staff-initials marker of two or three
// upper-case letters, as in "Smith MK", "Smith -LP" or "Smith -TC-".
func StripInitials(s string) string {
	return initialsRe.ReplaceAllString(s, "")
}

// ExtractName walks the whitespace-separated tokens of s and collects the
// leading capitalized words. It reports false when fewer than two were
// collected.
func ExtractName(s string) (string, bool) {
	words := make([]string, 0, maxNameWords)

	for _, tok := range strings.Fields(s) {
		if stopsName(tok) {
			break
		}

		if nameWordRe.MatchString(tok) {
			words = append(words, tok)
			if len(words) >= maxNameWords {
				break
			}
			continue
		}

		if len(words) >= minNameWords {
			break
		}
	}

	if len(words) < minNameWords {
		return "", false
	}
	return strings.Join(words, " "), true
}

func stopsName(tok string) bool {
	if tok[0] >= '0' && tok[0] <= '9' {
		return true
	}
	if utf8.RuneCountInString(tok) > maxTokenLen {
		return true
	}
	_, stop := StopWords[strings.ToLower(tok)]
	return stop
}
