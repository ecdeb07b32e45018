package timeservice

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmptyInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t\n  "},
		{"newlines only", "\n\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw, "Paris", DigStyle)
			assert.Equal(t, "No time information available for Paris", got)
		})
	}
}

func TestParseEmptyInputKeepsCityAsGiven(t *testing.T) {
	assert.Equal(t, "No time information available for paris", Parse("", "paris", NslookupStyle))
}

func TestParseDigTimeAndTimezone(t *testing.T) {
	got := Parse("\"14:32\"\n\"Europe/Paris timezone\"", "paris", DigStyle)

	assert.Contains(t, got, "🕐 Time information for Paris:")
	assert.Contains(t, got, "Current Time: 14:32")
	assert.Contains(t, got, "Timezone: Europe/Paris timezone")
	assert.NotContains(t, got, "Additional Info")

	want := "🕐 Time information for Paris:\n\nCurrent Time: 14:32\nTimezone: Europe/Paris timezone"
	assert.Equal(t, want, got)
}

func TestParseNslookupOnlyQuotedLines(t *testing.T) {
	raw := "Server:  dns.toys\nignored junk\n\n\"10:15 PM\"\n"
	report := ParseReport(raw, "tokyo", NslookupStyle)

	require.False(t, report.RawFallbackUsed)
	assert.Equal(t, []string{"10:15 PM"}, report.Records)
	assert.Equal(t, "10:15 PM", report.CurrentTime)
	assert.Equal(t, "🕐 Time information for Tokyo:\n\nCurrent Time: 10:15 PM", report.String())
}

func TestParseNslookupQuotedWithWhitespace(t *testing.T) {
	report := ParseReport("  \t\"Asia/Tokyo\"  \r\n", "tokyo", NslookupStyle)
	assert.Equal(t, []string{"Asia/Tokyo"}, report.Records)
}

func TestParseUnclassifiedRecordsGoToAdditionalInfo(t *testing.T) {
	got := Parse("\"hello\"\n\"world\"", "rome", DigStyle)
	assert.Equal(t, "🕐 Time information for Rome:\n\nAdditional Info: hello\nworld", got)
}

func TestParseBlankRecordsFallBackToJoinedBody(t *testing.T) {
	report := ParseReport("\"\"\n\"  \"", "oslo", DigStyle)

	assert.Equal(t, []string{"", "  "}, report.Records)
	assert.Empty(t, report.CurrentTime)
	assert.Empty(t, report.Timezone)
	assert.Empty(t, report.AdditionalInfo)
	assert.Equal(t, "🕐 Time information for Oslo:", report.String())
}

func TestParseNoRecordsUsesRawFallback(t *testing.T) {
	raw := "Server:\t\tdns.toys\nAddress:\t1.1.1.1#53\n"
	got := Parse(raw, "mumbai", NslookupStyle)

	assert.Equal(t, "Time information for Mumbai:\n\n"+raw, got)
	assert.False(t, strings.HasPrefix(got, "🕐"))
}

func TestParseReparsingFallbackDoesNotPanic(t *testing.T) {
	first := Parse("no quotes here", "lima", NslookupStyle)
	for _, mode := range []PlatformMode{DigStyle, NslookupStyle} {
		assert.NotPanics(t, func() {
			assert.NotEmpty(t, Parse(first, "lima", mode))
		})
	}
}

func TestParseClassificationOrder(t *testing.T) {
	tests := []struct {
		name   string
		record string
		want   TimeReport
	}{
		{
			name:   "colon and timezone is a timezone",
			record: "timezone: UTC+09:00",
			want:   TimeReport{Timezone: "timezone: UTC+09:00"},
		},
		{
			name:   "tz substring matches",
			record: "Asia/Tokyo tz",
			want:   TimeReport{Timezone: "Asia/Tokyo tz"},
		},
		{
			name:   "AM with colon",
			record: "9:05 AM",
			want:   TimeReport{CurrentTime: "9:05 AM"},
		},
		{
			name:   "AM without colon is info",
			record: "9 AM",
			want:   TimeReport{AdditionalInfo: "9 AM"},
		},
		{
			name:   "single digit clock without meridiem is info",
			record: "at 9:05",
			want:   TimeReport{AdditionalInfo: "at 9:05"},
		},
		{
			name:   "matching is case sensitive",
			record: "TIMEZONE 10 pm",
			want:   TimeReport{AdditionalInfo: "TIMEZONE 10 pm"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseReport(tt.record, "x", DigStyle)
			want := tt.want
			want.City = "X"
			want.Records = []string{tt.record}
			want.Raw = tt.record
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("ParseReport() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseLastMatchWins(t *testing.T) {
	raw := strings.Join([]string{
		`"10:00"`,
		`"first timezone"`,
		`"note one"`,
		`"11:30"`,
		`"second timezone"`,
		`"note two"`,
	}, "\n")

	report := ParseReport(raw, "berlin", DigStyle)
	assert.Equal(t, "11:30", report.CurrentTime)
	assert.Equal(t, "second timezone", report.Timezone)
	assert.Equal(t, "note one\nnote two", report.AdditionalInfo)
}

func TestParseDigKeepsUnquotedAndMultiQuotedLines(t *testing.T) {
	raw := "plain line\n\"Mumbai (Asia/Kolkata)\" \"Fri, 17 Oct 2025 10:15:32 +0530\""
	report := ParseReport(raw, "mumbai", DigStyle)

	require.Len(t, report.Records, 2)
	assert.Equal(t, "plain line", report.Records[0])
	assert.Equal(t, `"Mumbai (Asia/Kolkata)" "Fri, 17 Oct 2025 10:15:32 +0530"`, report.Records[1])
	assert.Equal(t, report.Records[1], report.CurrentTime)
}

func TestCapitalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"tokyo", "Tokyo"},
		{"Tokyo", "Tokyo"},
		{"TOKYO", "TOKYO"},
		{"new york", "New york"},
		{" paris", " paris"},
		{"", ""},
		{"émile", "émile"},
		{"1city", "1city"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Capitalize(tt.in), "Capitalize(%q)", tt.in)
	}
}

func TestParseHeaderCapitalization(t *testing.T) {
	for _, mode := range []PlatformMode{DigStyle, NslookupStyle} {
		got := Parse("\"10:15 PM\"", "tokyo", mode)
		assert.Contains(t, got, "Tokyo")
		assert.NotContains(t, got, "TOKYO")
		assert.NotContains(t, got, "tokyo")
	}
}

func TestParseNeverEmpty(t *testing.T) {
	inputs := []string{"", " ", "\"", "\"\"", "a", "\n\"\n", "::", "\"tz\"", "\x00\xff"}
	cities := []string{"", "x", "São Paulo"}

	for _, raw := range inputs {
		for _, city := range cities {
			for _, mode := range []PlatformMode{DigStyle, NslookupStyle} {
				assert.NotPanics(t, func() {
					assert.NotEmpty(t, Parse(raw, city, mode))
				})
			}
		}
	}
}

func TestParseDoesNotTouchInput(t *testing.T) {
	raw := "\"12:00\"\n"
	_ = ParseReport(raw, "x", DigStyle)
	assert.Equal(t, "\"12:00\"\n", raw)
}

func TestPlatformModeString(t *testing.T) {
	assert.Equal(t, "dig", DigStyle.String())
	assert.Equal(t, "nslookup", NslookupStyle.String())
}

func TestParseDigKeepsUnquotedLineWhitespace(t *testing.T) {
	report := ParseReport("a\n  b  ", "x", DigStyle)

	assert.Equal(t, []string{"a", "  b  "}, report.Records)
	assert.Equal(t, "a\n  b", report.AdditionalInfo)
	assert.Equal(t, "🕐 Time information for X:\n\nAdditional Info: a\n  b", report.String())
}

func TestParseDigTrimsOnlyToFindQuotes(t *testing.T) {
	report := ParseReport("  \"14:32\"  \n", "x", DigStyle)
	assert.Equal(t, []string{"14:32"}, report.Records)
}

func TestRenderMatchesParse(t *testing.T) {
	inputs := []string{"", "\n \n", "\"14:32\"\n\"Europe/Paris timezone\"", "Server: dns.toys\n"}

	for _, raw := range inputs {
		for _, mode := range []PlatformMode{DigStyle, NslookupStyle} {
			report := ParseReport(raw, "paris", mode)
			assert.Equal(t, Parse(raw, "paris", mode), report.Render("paris"), "raw=%q mode=%s", raw, mode)
		}
	}

	assert.Equal(t, "No time information available for paris", ParseReport(" ", "paris", DigStyle).Render("paris"))
}
