package classify

import "testing"

func TestIsGibberish(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"repeated characters", "zzzz", true},
		{"repeated vowel run", "aaa", true},
		{"two repeats are too short to judge", "aa", true},
		{"consonant run", "xkqpmn", true},
		{"no vowels", "bcdfg", true},
		{"letters glued to digits", "abc123", true},
		{"too short", "q", true},
		{"punctuation only", "??!", true},
		{"allow-listed shorthand", "ok", false},
		{"allow-listed greeting", "hi", false},
		{"casual word with heavy consonants", "thanks", false},
		{"ordinary word", "regression", false},
		{"word with trailing punctuation", "hello!", false},
		{"multi-word prose is never gibberish", "qq ww ee", false},
		{"empty string", "", false},
		{"y counts as a vowel", "dry", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsGibberish(tt.query); got != tt.want {
				t.Errorf("IsGibberish(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestIsCasual(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"plain greeting", "hello", true},
		{"greeting in a sentence", "hey there, how's it going", true},
		{"thanks", "thanks a lot", true},
		{"good morning", "Good morning!", true},
		{"word boundary holds", "show me the history of sales", false},
		{"okay", "okay", true},
		{"analytics question", "run a regression on my data", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCasual(tt.query); got != tt.want {
				t.Errorf("IsCasual(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestHasAnalyticsHint(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"single term", "regression", true},
		{"term in a sentence", "how do I build a dashboard for sales", true},
		{"multi-word term", "what is a confidence interval", true},
		{"case insensitive", "Explain P-VALUE to me", true},
		{"unrelated question", "what's the weather like today", false},
		{"no partial matches", "I love databasics", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasAnalyticsHint(tt.query); got != tt.want {
				t.Errorf("HasAnalyticsHint(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Class
	}{
		{"gibberish wins", "xkqpmn", ClassGibberish},
		{"casual over analytics", "thanks for the data", ClassCasual},
		{"analytics hint", "plot a trend for me", ClassAnalyticsHint},
		{"nothing matched", "tell me about the roman empire", ClassUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.query); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}
