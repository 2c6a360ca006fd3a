package chart

import "sort"

// Fallback axis keys used when the dataset is empty or has no usable fields.
const (
	FallbackXKey = "x"
	FallbackYKey = "y"
)

// InferKeys picks the categorical (x) and numeric (y) axis columns for a
// row-oriented dataset. Only the first row is inspected, in column order:
// the last textual column wins the x axis and the last numeric column wins
// the y axis, with the first (and second) columns as defaults. This is a
// cheap best-effort heuristic the user can override by asking for a
// different chart conversationally, not a column-type inference engine.
//
// columns carries the dataset's column order; when nil the first row's keys
// are used in sorted order, since Go maps do not preserve field order.
func InferKeys(columns []string, rows []Row) (xKey string, yKey string) {
	if len(rows) == 0 {
		return FallbackXKey, FallbackYKey
	}

	first := rows[0]
	if len(columns) == 0 {
		for name := range first {
			columns = append(columns, name)
		}
		sort.Strings(columns)
	}
	if len(columns) == 0 {
		return FallbackXKey, FallbackYKey
	}

	xKey = columns[0]
	if len(columns) > 1 {
		yKey = columns[1]
	} else {
		yKey = columns[0]
	}

	for _, name := range columns {
		switch first[name].(type) {
		case string:
			xKey = name
		case float64, float32, int, int32, int64:
			yKey = name
		}
	}
	return xKey, yKey
}

// FromRows builds a bar chart spec from an uploaded dataset using the
// inferred axis keys.
func FromRows(columns []string, rows []Row) *Spec {
	xKey, yKey := InferKeys(columns, rows)
	return &Spec{
		Type: TypeBar,
		Data: rows,
		XKey: xKey,
		YKey: yKey,
	}
}
