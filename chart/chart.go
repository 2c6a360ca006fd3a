package chart

// Row is a single dataset record mapping column names to scalar values.
// Values are either strings or numbers, as produced by the dataset parsers
// or by an embedded chart block in a completion reply.
type Row map[string]any

// Spec describes a renderable chart: the chart type, the rows to plot and
// the two column names bound to the axes.
type Spec struct {
	Type string `json:"type"`
	Data []Row  `json:"data"`
	XKey string `json:"xKey"`
	YKey string `json:"yKey"`
}

// Supported chart types.
const (
	TypeBar     = "bar"
	TypeLine    = "line"
	TypePie     = "pie"
	TypeScatter = "scatter"
	TypeArea    = "area"
)

var knownTypes = map[string]bool{
	TypeBar:     true,
	TypeLine:    true,
	TypePie:     true,
	TypeScatter: true,
	TypeArea:    true,
}

// KnownType reports whether t is one of the supported chart types.
func KnownType(t string) bool {
	return knownTypes[t]
}

// Valid reports whether the spec can be rendered: a known type, at least
// one row, and both axis keys present in every row.
func (s *Spec) Valid() bool {
	if s == nil || !KnownType(s.Type) || len(s.Data) == 0 {
		return false
	}
	if s.XKey == "" || s.YKey == "" {
		return false
	}
	for _, row := range s.Data {
		if _, ok := row[s.XKey]; !ok {
			return false
		}
		if _, ok := row[s.YKey]; !ok {
			return false
		}
	}
	return true
}
