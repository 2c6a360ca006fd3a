package classify

import (
	"regexp"
	"strings"
	"unicode"
)

// Class is the lexical classification of a query.
type Class int

const (
	// ClassUnknown means no lexical rule matched; domain membership must be
	// resolved by the remote intent classifier.
	ClassUnknown Class = iota
	// ClassGibberish marks short inputs that look like keyboard noise.
	ClassGibberish
	// ClassCasual marks greetings, thanks, farewells and acknowledgements.
	ClassCasual
	// ClassAnalyticsHint marks queries that mention data/analytics terms.
	ClassAnalyticsHint
)

func (c Class) String() string {
	switch c {
	case ClassGibberish:
		return "gibberish"
	case ClassCasual:
		return "casual"
	case ClassAnalyticsHint:
		return "analytics-hint"
	default:
		return "unknown"
	}
}

// Short tokens that look consonant-heavy but are legitimate chat shorthand.
var shortWordAllowList = map[string]bool{
	"hi": true, "ok": true, "no": true, "yes": true, "yo": true,
	"hey": true, "bye": true, "gm": true, "gn": true, "ty": true,
}

// Casual vocabulary. Word-boundary matching rather than raw substring
// containment, so "history" does not light up on "hi".
var casualPattern = regexp.MustCompile(`(?i)\b(` + strings.Join([]string{
	"hi", "hello", "hey", "thanks", "thank you", "ok", "okay",
	"good morning", "good afternoon", "good evening", "good night",
	"how are you", "bye", "see you", "take care",
}, "|") + `)\b`)

// Analytics vocabulary: statistics, BI and data-tooling terms plus a few
// generic ones. A match here is the fast path that skips the remote
// intent classifier.
var analyticsPattern = regexp.MustCompile(`(?i)\b(` + strings.Join([]string{
	"data", "analytics", "analysis", "statistics", "dataset", "database",
	"visualization", "chart", "graph", "dashboard", "reporting", "metrics",
	"sql", "python", "pandas", "numpy", "matplotlib", "seaborn",
	"tableau", "power bi", "excel", "regression", "correlation", "clustering",
	"machine learning", "forecasting", "trend", "pattern", "insight",
	"business intelligence", "etl", "data warehouse", "data mining", "big data",
	"spark", "mongodb", "postgresql", "mysql", "snowflake",
	"data science", "hypothesis testing", "a/b testing", "p-value",
	"confidence interval", "data cleaning", "feature engineering",
}, "|") + `)\b`)

var (
	consonantRunPattern  = regexp.MustCompile(`[bcdfghjklmnpqrstvwxz]{4,}`)
	lettersDigitsPattern = regexp.MustCompile(`[a-z]{3,}[0-9]|[0-9][a-z]{3,}`)
)

// Classify applies the lexical rules in priority order: gibberish wins over
// casual, casual over analytics. Pure and deterministic, so classification
// is testable without network access.
func Classify(query string) Class {
	switch {
	case IsGibberish(query):
		return ClassGibberish
	case IsCasual(query):
		return ClassCasual
	case HasAnalyticsHint(query):
		return ClassAnalyticsHint
	default:
		return ClassUnknown
	}
}

// IsCasual reports whether the query matches the casual vocabulary.
func IsCasual(query string) bool {
	return casualPattern.MatchString(query)
}

// HasAnalyticsHint reports whether the query mentions an analytics term.
func HasAnalyticsHint(query string) bool {
	return analyticsPattern.MatchString(query)
}

// IsGibberish reports whether a short free-form input looks like keyboard
// noise. Only single-token queries are considered; anything with whitespace
// is real prose as far as this check is concerned. Known chat shorthand and
// exact casual vocabulary words are never gibberish, which keeps the casual
// routing guarantee intact for consonant-heavy words like "thanks".
func IsGibberish(query string) bool {
	token := strings.ToLower(strings.TrimSpace(query))
	if token == "" || strings.ContainsFunc(token, unicode.IsSpace) {
		return false
	}
	token = strings.TrimFunc(token, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if token == "" {
		return true
	}
	if shortWordAllowList[token] || casualPattern.MatchString(token) {
		return false
	}

	if len(token) < 3 {
		return true
	}
	if !strings.ContainsAny(token, "aeiouy") {
		return true
	}
	if isRepeatedRun(token) {
		return true
	}
	if consonantRunPattern.MatchString(token) {
		return true
	}
	if consonantRatio(token) > 0.7 {
		return true
	}
	if lettersDigitsPattern.MatchString(token) {
		return true
	}
	return false
}

// isRepeatedRun reports whether the token is a single rune repeated three
// or more times ("aaa", "zzzz"). RE2 has no backreferences, so this is a
// plain loop rather than a pattern.
func isRepeatedRun(token string) bool {
	runes := []rune(token)
	if len(runes) < 3 {
		return false
	}
	for _, r := range runes[1:] {
		if r != runes[0] {
			return false
		}
	}
	return true
}

func consonantRatio(token string) float64 {
	if token == "" {
		return 0
	}
	consonants := 0
	for _, r := range token {
		if strings.ContainsRune("bcdfghjklmnpqrstvwxz", r) {
			consonants++
		}
	}
	return float64(consonants) / float64(len([]rune(token)))
}
