package assistant

import "strings"

var (
	bookKeywords  = []string{"book", "schedule"}
	checkKeywords = []string{"free", "available"}
)

// ClassifyIntent assigns an intent by plain substring matching on the
// lower-cased input. Booking verbs win over availability words. There is no
// tokenisation or negation handling, so "not available" is still a check.
func ClassifyIntent(input string) Intent {
	lower := strings.ToLower(input)
	switch {
	case containsAny(lower, bookKeywords):
		return IntentBook
	case containsAny(lower, checkKeywords):
		return IntentCheck
	default:
		return IntentUnknown
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
