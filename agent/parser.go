package agent

import (
	"encoding/json"
	"regexp"
	"strings"

	"datachat/chart"

	"go.uber.org/zap"
)

// ParsedReply is the structured form of a raw completion reply after the
// embedded blocks have been extracted and stripped.
type ParsedReply struct {
	Answer    string
	Chart     *chart.Spec
	FollowUps []string
}

// Embedded-block micro-protocol inside free-form completion text. The JSON
// payload sits on a single line after the marker.
var (
	chartBlockPattern = regexp.MustCompile(`(?m)CHART:\s*(\{.*\})`)
	followUpsPattern  = regexp.MustCompile(`(?m)FOLLOW_UPS:\s*(\[.*\])`)
	codeFencePattern  = regexp.MustCompile("(?m)^```[a-zA-Z]*[ \t]*$\n?")
)

// ParseCompletion extracts the CHART and FOLLOW_UPS blocks from a raw
// completion reply and strips them from the displayed answer. The protocol
// is fragile by nature, so parsing is strictly best-effort: a malformed
// block is removed from the text and otherwise ignored, never an error.
func ParseCompletion(raw string, logger *zap.Logger) ParsedReply {
	text := codeFencePattern.ReplaceAllString(raw, "")

	parsed := ParsedReply{}

	if m := chartBlockPattern.FindStringSubmatch(text); m != nil {
		var spec chart.Spec
		if err := json.Unmarshal([]byte(m[1]), &spec); err != nil {
			logger.Warn("Failed to parse embedded chart block", zap.Error(err))
		} else if !spec.Valid() {
			logger.Warn("Embedded chart block is not renderable, dropping it",
				zap.String("type", spec.Type),
				zap.Int("rows", len(spec.Data)))
		} else {
			parsed.Chart = &spec
		}
		// The block is removed even when its JSON is invalid.
		text = chartBlockPattern.ReplaceAllString(text, "")
	}

	if m := followUpsPattern.FindStringSubmatch(text); m != nil {
		var followUps []string
		if err := json.Unmarshal([]byte(m[1]), &followUps); err != nil {
			logger.Warn("Failed to parse embedded follow-ups block", zap.Error(err))
		} else {
			parsed.FollowUps = followUps
		}
		text = followUpsPattern.ReplaceAllString(text, "")
	}

	if len(parsed.FollowUps) == 0 {
		parsed.FollowUps = genericFollowUps
	}

	parsed.Answer = strings.TrimSpace(text)
	if parsed.Answer == "" {
		parsed.Answer = emptyAnswerText
	}
	return parsed
}
