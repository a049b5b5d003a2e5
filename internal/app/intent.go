package app

import "strings"

// Intent is the classified shape of a user message. Classification is pure
// string matching so the response-format precedence can be tested without a
// model call.
type Intent int

const (
	IntentQuestion Intent = iota // default: direct question
	IntentGreeting
	IntentSummary
	IntentComparison
	IntentExtraction
)

func (i Intent) String() string {
	switch i {
	case IntentGreeting:
		return "greeting"
	case IntentSummary:
		return "summary"
	case IntentComparison:
		return "comparison"
	case IntentExtraction:
		return "extraction"
	default:
		return "question"
	}
}

var greetingPhrases = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {}, "hiya": {}, "howdy": {}, "yo": {},
	"good morning": {}, "good afternoon": {}, "good evening": {},
}

var comparisonKeywords = []string{"compare", "comparison", "difference", "similarit", "versus", " vs ", "vs."}

var extractionKeywords = []string{"find ", "list ", "show me", "show all", "extract", "enumerate"}

var summaryKeywords = []string{"summar", "overview", "brief", "tl;dr"}

// ClassifyIntent maps a message to an intent. Precedence when several
// keyword sets match: greeting (only when the whole message is a greeting),
// then comparison, then extraction, then summary, then direct question.
// Comparison and extraction outrank summary and the question fallback so the
// more specific structured format wins.
func ClassifyIntent(message string) Intent {
	m := strings.ToLower(strings.TrimSpace(message))
	if _, ok := greetingPhrases[strings.Trim(m, " !.,?")]; ok {
		return IntentGreeting
	}
	if containsAny(m, comparisonKeywords) {
		return IntentComparison
	}
	if containsAny(m, extractionKeywords) {
		return IntentExtraction
	}
	if containsAny(m, summaryKeywords) {
		return IntentSummary
	}
	return IntentQuestion
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// ResolveDocument finds the document a message refers to. Match rules are
// tried in order: exact name substring, case-insensitive name substring,
// case-insensitive substring of the name without its extension. A rule only
// resolves when exactly one document matches it; several matches mean the
// reference is ambiguous and resolution stops at that rule.
func ResolveDocument(message string, available []string) string {
	rules := []func(msg, name string) bool{
		func(msg, name string) bool {
			return strings.Contains(msg, name)
		},
		func(msg, name string) bool {
			return strings.Contains(strings.ToLower(msg), strings.ToLower(name))
		},
		func(msg, name string) bool {
			base := name
			if i := strings.LastIndex(name, "."); i > 0 {
				base = name[:i]
			}
			return strings.Contains(strings.ToLower(msg), strings.ToLower(base))
		},
	}
	for _, match := range rules {
		var found []string
		for _, name := range available {
			if match(message, name) {
				found = append(found, name)
			}
		}
		if len(found) == 1 {
			return found[0]
		}
		if len(found) > 1 {
			return ""
		}
	}
	return ""
}
