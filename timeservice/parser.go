// Package timeservice turns dns.toys time TXT lookups into readable reports.
package timeservice

import (
	"fmt"
	"regexp"
	"strings"
)

// PlatformMode selects how TXT records are recognized in lookup output.
type PlatformMode int

const (
	// DigStyle treats every non-blank line as a record, unwrapping quotes.
	DigStyle PlatformMode = iota
	// NslookupStyle keeps only lines that are a single quoted string.
	NslookupStyle
)

func (m PlatformMode) String() string {
	switch m {
	case NslookupStyle:
		return "nslookup"
	default:
		return "dig"
	}
}

var (
	quotedLinePattern = regexp.MustCompile(`^\s*"(.+)"\s*$`)
	clockPattern      = regexp.MustCompile(`\d{2}:\d{2}`)
)

// TimeReport is the classified form of a single lookup.
type TimeReport struct {
	City            string   `json:"city"`
	CurrentTime     string   `json:"current_time,omitempty"`
	Timezone        string   `json:"timezone,omitempty"`
	AdditionalInfo  string   `json:"additional_info,omitempty"`
	Records         []string `json:"records,omitempty"`
	Raw             string   `json:"-"`
	RawFallbackUsed bool     `json:"raw_fallback_used"`
}

// Parse renders raw lookup output for city as a report string. It never
// panics and never returns an empty string.
func Parse(raw, city string, mode PlatformMode) string {
	return ParseReport(raw, city, mode).Render(city)
}

// ParseReport classifies the TXT records found in raw. Any failure while
// classifying degrades to a report with RawFallbackUsed set.
func ParseReport(raw, city string, mode PlatformMode) (report TimeReport) {
	defer func() {
		if r := recover(); r != nil {
			report = fallbackReport(raw, city)
		}
	}()

	records := extractRecords(nonBlankLines(raw), mode)
	if len(records) == 0 {
		return fallbackReport(raw, city)
	}

	report = TimeReport{
		City:    Capitalize(city),
		Records: records,
		Raw:     raw,
	}

	var info strings.Builder
	for _, record := range records {
		switch {
		case strings.Contains(record, "timezone") || strings.Contains(record, "tz"):
			report.Timezone = record
		case strings.Contains(record, ":") &&
			(strings.Contains(record, "AM") || strings.Contains(record, "PM") || clockPattern.MatchString(record)):
			report.CurrentTime = record
		default:
			info.WriteString(record)
			info.WriteString("\n")
		}
	}
	report.AdditionalInfo = strings.TrimSpace(info.String())

	return report
}

// Render is String plus the empty-lookup message, which names city exactly
// as the caller gave it.
func (r TimeReport) Render(city string) string {
	if len(nonBlankLines(r.Raw)) == 0 {
		return fmt.Sprintf("No time information available for %s", city)
	}
	return r.String()
}

// String formats the report for display as a tool result.
func (r TimeReport) String() string {
	if r.RawFallbackUsed {
		return fmt.Sprintf("Time information for %s:\n\n%s", r.City, r.Raw)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🕐 Time information for %s:\n\n", r.City)

	if r.CurrentTime != "" {
		fmt.Fprintf(&b, "Current Time: %s\n", r.CurrentTime)
	}
	if r.Timezone != "" {
		fmt.Fprintf(&b, "Timezone: %s\n", r.Timezone)
	}
	if r.AdditionalInfo != "" {
		fmt.Fprintf(&b, "Additional Info: %s\n", r.AdditionalInfo)
	}
	if r.CurrentTime == "" && r.Timezone == "" && r.AdditionalInfo == "" {
		b.WriteString(strings.Join(r.Records, "\n"))
	}

	return strings.TrimRight(b.String(), " \t\r\n")
}

// Capitalize upper-cases a leading ASCII letter and leaves the rest alone.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}

func fallbackReport(raw, city string) TimeReport {
	return TimeReport{
		City:            Capitalize(city),
		Raw:             raw,
		RawFallbackUsed: true,
	}
}

func nonBlankLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func extractRecords(lines []string, mode PlatformMode) []string {
	var records []string
	for _, line := range lines {
		if mode == NslookupStyle {
			if m := quotedLinePattern.FindStringSubmatch(line); m != nil {
				records = append(records, m[1])
			}
			continue
		}
		if inner, ok := unquote(strings.TrimSpace(line)); ok {
			records = append(records, inner)
			continue
		}
		records = append(records, line)
	}
	return records
}

// unquote strips one pair of double quotes when they wrap the whole line.
func unquote(line string) (string, bool) {
	if len(line) < 2 || line[0] != '"' || line[len(line)-1] != '"' {
		return line, false
	}
	inner := line[1 : len(line)-1]
	if strings.Contains(inner, `"`) {
		return line, false
	}
	return inner, true
}
