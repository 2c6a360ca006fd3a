package agent

import (
	"reflect"
	"testing"

	"datachat/chart"

	"go.uber.org/zap"
)

func TestParseCompletionExtractsBlocks(t *testing.T) {
	raw := "Use bar charts for categories.\n" +
		`CHART: {"type":"bar","data":[{"x":"a","y":1},{"x":"b","y":2}],"xKey":"x","yKey":"y"}` + "\n" +
		`FOLLOW_UPS: ["Why?","More?"]`

	got := ParseCompletion(raw, zap.NewNop())

	if got.Answer != "Use bar charts for categories." {
		t.Errorf("Answer = %q, want stripped prose", got.Answer)
	}
	if got.Chart == nil {
		t.Fatal("Chart = nil, want parsed spec")
	}
	if got.Chart.Type != chart.TypeBar || len(got.Chart.Data) != 2 {
		t.Errorf("Chart = %+v, want bar chart with 2 rows", got.Chart)
	}
	if got.Chart.XKey != "x" || got.Chart.YKey != "y" {
		t.Errorf("Chart keys = (%q, %q), want (x, y)", got.Chart.XKey, got.Chart.YKey)
	}
	if want := []string{"Why?", "More?"}; !reflect.DeepEqual(got.FollowUps, want) {
		t.Errorf("FollowUps = %v, want %v", got.FollowUps, want)
	}
}

func TestParseCompletionMalformedChartJSON(t *testing.T) {
	raw := "Some prose.\nCHART: {not valid json}"

	got := ParseCompletion(raw, zap.NewNop())

	if got.Chart != nil {
		t.Errorf("Chart = %+v, want nil for malformed JSON", got.Chart)
	}
	// The broken block must still disappear from the displayed text.
	if got.Answer != "Some prose." {
		t.Errorf("Answer = %q, want the block stripped", got.Answer)
	}
}

func TestParseCompletionDropsUnrenderableChart(t *testing.T) {
	// Valid JSON, but the rows are missing the declared keys.
	raw := `CHART: {"type":"bar","data":[{"a":1}],"xKey":"x","yKey":"y"}` + "\nAnswer text."

	got := ParseCompletion(raw, zap.NewNop())

	if got.Chart != nil {
		t.Errorf("Chart = %+v, want nil for unrenderable spec", got.Chart)
	}
	if got.Answer != "Answer text." {
		t.Errorf("Answer = %q, want block stripped", got.Answer)
	}
}

func TestParseCompletionEmptyRemainder(t *testing.T) {
	raw := `CHART: {"type":"pie","data":[{"label":"a","value":1}],"xKey":"label","yKey":"value"}`

	got := ParseCompletion(raw, zap.NewNop())

	if got.Chart == nil {
		t.Fatal("Chart = nil, want parsed spec")
	}
	if got.Answer != emptyAnswerText {
		t.Errorf("Answer = %q, want fixed placeholder %q", got.Answer, emptyAnswerText)
	}
}

func TestParseCompletionStripsCodeFences(t *testing.T) {
	raw := "```json\n" +
		`CHART: {"type":"line","data":[{"t":1,"v":2}],"xKey":"t","yKey":"v"}` + "\n" +
		"```\nTrend looks stable."

	got := ParseCompletion(raw, zap.NewNop())

	if got.Chart == nil || got.Chart.Type != chart.TypeLine {
		t.Fatalf("Chart = %+v, want line chart from inside fence", got.Chart)
	}
	if got.Answer != "Trend looks stable." {
		t.Errorf("Answer = %q, want fence markers removed", got.Answer)
	}
}

func TestParseCompletionFollowUpFallback(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no block", "Plain answer."},
		{"malformed block", "Plain answer.\nFOLLOW_UPS: [broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCompletion(tt.raw, zap.NewNop())
			if !reflect.DeepEqual(got.FollowUps, genericFollowUps) {
				t.Errorf("FollowUps = %v, want generic fallback", got.FollowUps)
			}
		})
	}
}
