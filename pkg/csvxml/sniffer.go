package csvxml

import (
	"regexp"
	"strings"
	"unicode"
)

// SniffSampleSize is the number of leading input bytes that give the
// Sniffer enough context for reliable detection.
const SniffSampleSize = 4096

// Sniffer detects the dialect of a delimited-text sample: the field
// separator in use and whether the first row looks like a header.
// Detection assumes the default '"' escape character.
type Sniffer struct {
	sample    string
	separator rune
	hasHeader bool
	analyzed  bool
}

// NewSniffer creates a Sniffer over a sample of input.
// For best results, provide at least 2-3 lines of data.
func NewSniffer(sample string) *Sniffer {
	return &Sniffer{
		sample:   sample,
		analyzed: false,
	}
}

// analyze performs dialect detection on the sample.
func (s *Sniffer) analyze() {
	if s.analyzed {
		return
	}
	s.separator = s.detectSeparator()
	s.hasHeader = s.detectHeader()
	s.analyzed = true
}

// DetectSeparator returns the detected field separator.
// Candidates checked: comma, tab, semicolon, pipe.
func (s *Sniffer) DetectSeparator() rune {
	s.analyze()
	return s.separator
}

// HasHeader reports whether the first row appears to be a header.
func (s *Sniffer) HasHeader() bool {
	s.analyze()
	return s.hasHeader
}

// Apply returns base with the detected separator and header mode set.
func (s *Sniffer) Apply(base Options) Options {
	s.analyze()
	base.Separator = s.separator
	base.Headers = s.hasHeader
	return base
}

// sampleLines splits the sample into physical lines with any CR of a
// CRLF pair removed.
func (s *Sniffer) sampleLines() []string {
	lines := strings.Split(s.sample, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// detectSeparator scores each candidate by how many times it appears
// per line, with a large bonus when the count is consistent across
// every non-empty line.
func (s *Sniffer) detectSeparator() rune {
	if s.sample == "" {
		return ','
	}

	candidates := []rune{',', '\t', ';', '|'}
	scores := make(map[rune]int)

	lines := s.sampleLines()
	for _, sep := range candidates {
		counts := make([]int, 0, len(lines))
		for _, line := range lines {
			if line == "" {
				continue
			}
			counts = append(counts, countSeparators(line, sep))
		}

		if len(counts) > 0 && counts[0] > 0 {
			consistent := true
			for i := 1; i < len(counts); i++ {
				if counts[i] != counts[0] {
					consistent = false
					break
				}
			}
			if consistent {
				scores[sep] = counts[0] * 10
			} else {
				scores[sep] = counts[0]
			}
		}
	}

	best := ','
	bestScore := 0
	for sep, score := range scores {
		if score > bestScore {
			best = sep
			bestScore = score
		}
	}

	return best
}

// countSeparators counts occurrences of sep outside quoted sections.
func countSeparators(line string, sep rune) int {
	count := 0
	inQuotes := false

	for _, ch := range line {
		if ch == '"' {
			inQuotes = !inQuotes
		} else if ch == sep && !inQuotes {
			count++
		}
	}

	return count
}

// detectHeader compares the first row against header and data
// heuristics: header cells tend to be identifier-like text, data cells
// tend to be numbers, dates or addresses.
func (s *Sniffer) detectHeader() bool {
	lines := s.sampleLines()
	if len(lines) < 2 {
		return false
	}

	firstLine := lines[0]
	secondLine := ""
	for _, line := range lines[1:] {
		if line != "" {
			secondLine = line
			break
		}
	}
	if firstLine == "" || secondLine == "" {
		return false
	}

	sep := s.detectSeparator()
	firstFields := splitFields(firstLine, sep)
	secondFields := splitFields(secondLine, sep)
	if len(firstFields) == 0 || len(secondFields) == 0 {
		return false
	}

	headerScore := 0
	dataScore := 0
	for _, field := range firstFields {
		field = strings.TrimSpace(field)
		if isLikelyHeader(field) {
			headerScore++
		}
		if isLikelyData(field) {
			dataScore++
		}
	}

	return headerScore > dataScore
}

var headerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`),       // snake_case or identifier
	regexp.MustCompile(`^[a-zA-Z]+[A-Z][a-zA-Z]*$`),      // camelCase
	regexp.MustCompile(`^[A-Z][a-z]+([ ][A-Z][a-z]+)*$`), // Title Case
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
	regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`),
}

// isLikelyHeader checks if a field looks like a header name.
func isLikelyHeader(s string) bool {
	if s == "" || isNumeric(s) {
		return false
	}
	for _, pattern := range headerPatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// isLikelyData checks if a field looks like data rather than a header.
func isLikelyData(s string) bool {
	if s == "" {
		return false
	}
	if isNumeric(s) {
		return true
	}
	if strings.Contains(s, "@") {
		return true
	}
	for _, pattern := range datePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// isNumeric checks if a string represents a number.
func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if s[0] == '-' {
		s = s[1:]
	}

	hasDot := false
	for _, ch := range s {
		if ch == '.' {
			if hasDot {
				return false
			}
			hasDot = true
		} else if !unicode.IsDigit(ch) {
			return false
		}
	}

	return len(s) > 0
}

// splitFields splits a line on sep, respecting quoted sections.
func splitFields(line string, sep rune) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	for _, ch := range line {
		if ch == '"' {
			inQuotes = !inQuotes
		} else if ch == sep && !inQuotes {
			fields = append(fields, current.String())
			current.Reset()
		} else {
			current.WriteRune(ch)
		}
	}
	fields = append(fields, current.String())

	return fields
}
