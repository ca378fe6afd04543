package routing

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	answeredPattern    = regexp.MustCompile(`([A-Z][A-Z0-9_]*)\s*=\s*'([^']+)'`)
	notSelectedPattern = regexp.MustCompile(`([A-Z][A-Z0-9_]*)\s+does not include\s+'([^']+)'`)
	selectedPattern    = regexp.MustCompile(`([A-Z][A-Z0-9_]*)\s+includes?\s+'([^']+)'`)
	andPattern         = regexp.MustCompile(`(?i)\s+AND\s+`)
	orPattern          = regexp.MustCompile(`(?i)\s+OR\s+`)
)

// PlainCondition rewrites a rule condition for respondents, e.g.
// "SCR_Q1 = 'No'" becomes "you answered 'No'". Phrasings the patterns do
// not know pass through unchanged apart from the leading capital.
func PlainCondition(condition string) string {
	if condition == "" {
		return ""
	}
	text := answeredPattern.ReplaceAllString(condition, "you answered '${2}'")
	text = notSelectedPattern.ReplaceAllString(text, "you did not select '${2}'")
	text = selectedPattern.ReplaceAllString(text, "you selected '${2}'")
	text = andPattern.ReplaceAllString(text, " and ")
	text = orPattern.ReplaceAllString(text, " or ")
	if !strings.HasPrefix(text, "You ") && !strings.HasPrefix(text, "If ") {
		first, size := utf8.DecodeRuneInString(text)
		text = string(unicode.ToLower(first)) + text[size:]
	}
	return strings.TrimSpace(text)
}
