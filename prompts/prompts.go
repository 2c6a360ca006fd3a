package prompts

import _ "embed"

// Embedded prompt files

//go:embed analytics_system.txt
var analyticsSystem string

//go:embed intent_classifier.txt
var intentClassifier string

func AnalyticsSystem() string  { return analyticsSystem }
func IntentClassifier() string { return intentClassifier }
