package agent

import (
	"testing"

	"datachat/chart"
	"datachat/web/types"
)

func TestHistorySnapshotRoundTrip(t *testing.T) {
	h := NewHistory("s1")
	h.mu.Lock()
	h.append(types.RoleUser, "chart my sales")
	h.append(types.RoleModel, "Here you go.")
	h.lastChart = &chart.Spec{
		Type: chart.TypeBar,
		Data: []chart.Row{{"month": "Jan", "sales": 120.0}},
		XKey: "month",
		YKey: "sales",
	}
	h.mu.Unlock()

	data, err := h.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	restored, err := RestoreHistory(data)
	if err != nil {
		t.Fatalf("RestoreHistory: %v", err)
	}

	got := restored.Turns()
	want := h.Turns()
	if len(got) != len(want) {
		t.Fatalf("restored %d turns, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Role != want[i].Role || got[i].Content != want[i].Content {
			t.Errorf("turn %d = (%q, %q), want (%q, %q)",
				i, got[i].Role, got[i].Content, want[i].Role, want[i].Content)
		}
		if got[i].ID != want[i].ID {
			t.Errorf("turn %d ID changed across round-trip", i)
		}
	}

	lc := restored.LastChart()
	if lc == nil {
		t.Fatal("restored LastChart = nil")
	}
	if lc.Type != chart.TypeBar || lc.XKey != "month" || lc.YKey != "sales" {
		t.Errorf("restored chart = %+v", lc)
	}
}

func TestHistoryLastExchange(t *testing.T) {
	h := NewHistory("s1")
	h.mu.Lock()
	defer h.mu.Unlock()

	if u, m := h.lastExchange(0); u != nil || m != nil {
		t.Error("empty history should have no exchange")
	}

	h.append(types.RoleUser, "what is regression?")
	h.append(types.RoleModel, "Fitting a line.")
	h.append(types.RoleUser, "explain in detail")

	// Skip the in-flight user turn.
	u, m := h.lastExchange(1)
	if u == nil || m == nil {
		t.Fatal("expected a completed exchange")
	}
	if u.Content != "what is regression?" || m.Content != "Fitting a line." {
		t.Errorf("exchange = (%q, %q)", u.Content, m.Content)
	}
}

func TestHistoryReset(t *testing.T) {
	h := NewHistory("s1")
	h.mu.Lock()
	h.append(types.RoleUser, "hello")
	h.lastChart = &chart.Spec{Type: chart.TypeBar}
	h.mu.Unlock()

	h.Reset()

	if len(h.Turns()) != 0 {
		t.Error("turns survived reset")
	}
	if h.LastChart() != nil {
		t.Error("cached chart survived reset")
	}
}

func TestHistoryLoadReplacesState(t *testing.T) {
	h := NewHistory("s1")
	h.mu.Lock()
	h.append(types.RoleUser, "stale")
	h.mu.Unlock()

	turns := []types.Turn{
		{ID: "a", SessionID: "s1", Role: types.RoleUser, Content: "restored question"},
		{ID: "b", SessionID: "s1", Role: types.RoleModel, Content: "restored answer"},
	}
	spec := &chart.Spec{Type: chart.TypeLine}
	h.Load(turns, spec)

	got := h.Turns()
	if len(got) != 2 || got[0].Content != "restored question" {
		t.Errorf("loaded turns = %+v", got)
	}
	if h.LastChart() != spec {
		t.Error("loaded chart not installed")
	}
}
