package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"datachat/chart"
	apperrors "datachat/errors"
)

// Dataset is a parsed upload: the rows plus the column order from the
// source file, which the key inferencer needs because Go maps do not keep
// insertion order.
type Dataset struct {
	FileName string
	Columns  []string
	Rows     []chart.Row
}

// Parse reads an uploaded tabular file into row-records. CSV and JSON are
// supported; anything else is rejected before reading. maxRows caps the
// dataset size (0 means unlimited).
func Parse(r io.Reader, fileName string, maxRows int) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return parseCSV(r, fileName, maxRows)
	case ".json":
		return parseJSON(r, fileName, maxRows)
	default:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedDataset, fileName)
	}
}

// parseCSV maps the header row to column names and coerces numeric-looking
// cells to float64, matching how charts consume the values.
func parseCSV(r io.Reader, fileName string, maxRows int) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &Dataset{FileName: fileName}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	var rows []chart.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}

		row := make(chart.Row, len(columns))
		for i, col := range columns {
			if i >= len(record) {
				break
			}
			row[col] = coerceScalar(record[i])
		}
		rows = append(rows, row)

		if maxRows > 0 && len(rows) >= maxRows {
			break
		}
	}

	return &Dataset{FileName: fileName, Columns: columns, Rows: rows}, nil
}

// parseJSON expects a top-level array of flat objects. Column order is
// taken from the first object's keys as decoded, which json tokenization
// does not preserve; the inferencer falls back to sorted keys.
func parseJSON(r io.Reader, fileName string, maxRows int) (*Dataset, error) {
	var rows []chart.Row
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode json dataset: %w", err)
	}
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}
	return &Dataset{FileName: fileName, Rows: rows}, nil
}

// coerceScalar turns numeric-looking strings into float64 and leaves
// everything else as text.
func coerceScalar(value string) any {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return n
	}
	return trimmed
}
