package extract

import (
	"regexp"
	"strings"
	"unicode"
)

type LineClass int

const (
	LineBody LineClass = iota
	LineHeader
)

// HeaderClassifier decides whether a single line of page text opens a
// new section. Implementations must be safe for concurrent use.
type HeaderClassifier interface {
	Classify(line string) LineClass
}

var headerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Z][A-Za-z\s\-:]+$`),             // capitalized words
	regexp.MustCompile(`^[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*$`),  // title case words
	regexp.MustCompile(`^\d+\.\s*[A-Z]`),                    // numbered sections
	regexp.MustCompile(`^[A-Z].*:`),                         // colon-ended headers
	regexp.MustCompile(`^[A-Z][A-Za-z\s]+$`),                // capitalized phrases
	regexp.MustCompile(`^[A-Z][a-z]+$`),                     // single capitalized word
}

// HeuristicClassifier classifies lines with structural pattern
// matching: capitalization, numbered-section prefixes, colon-ended
// phrases and short title-case phrases. Likely false positives
// (a lone short word, a phrase of abbreviations) are downgraded back
// to body text.
type HeuristicClassifier struct{}

func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{}
}

func (c HeuristicClassifier) Classify(line string) LineClass {
	line = strings.TrimSpace(line)
	if line == "" || len(line) >= 100 {
		return LineBody
	}

	isHeader := false
	for _, pattern := range headerPatterns {
		if pattern.MatchString(line) {
			isHeader = true
			break
		}
	}

	if !isHeader && len(line) < 50 {
		isHeader = looksLikeTitlePhrase(line)
	}

	if isHeader && isGenericHeader(line) {
		return LineBody
	}

	if isHeader {
		return LineHeader
	}
	return LineBody
}

// looksLikeTitlePhrase catches short descriptive titles the structural
// patterns miss: a few capitalized words, no digits, no list markers.
func looksLikeTitlePhrase(line string) bool {
	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 5 || len(line) <= 2 {
		return false
	}

	if strings.ContainsFunc(line, unicode.IsDigit) {
		return false
	}

	switch line[0] {
	case '-', '*':
		return false
	}
	if strings.HasPrefix(line, "•") {
		return false
	}

	for _, word := range words {
		if len(word) <= 1 {
			return false
		}
		r := []rune(word)
		if !unicode.IsUpper(r[0]) {
			return false
		}
	}
	return true
}

// isGenericHeader flags likely false positives: a single short word, or
// one or two words that are all abbreviation-length.
func isGenericHeader(line string) bool {
	words := strings.Fields(line)
	if len(words) == 1 && len(line) < 15 {
		return true
	}

	if len(words) <= 2 {
		allShort := true
		for _, word := range words {
			if len(word) > 2 {
				allShort = false
				break
			}
		}
		if allShort {
			return true
		}
	}

	return false
}
