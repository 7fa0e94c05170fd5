package helpers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/spektr-org/spektrchart/engine"
	"github.com/spektr-org/spektrchart/schema"
)

// ============================================================================
// CSV HELPER — Parses CSV data into typed []engine.Row
// ============================================================================
// Consumer reads the CSV from wherever it lives (file, S3, Sheets).
// This helper converts the raw bytes into rows keyed by column name, with
// cells typed according to the column metadata.
// ============================================================================

// ParseCSV parses CSV bytes into Rows. Headers are matched to columns by
// schema.ColumnKey; headers with no matching column are skipped. Cells that
// are empty or fail to parse as the column's type become nil.
func ParseCSV(data []byte, columns []engine.ColumnMeta) ([]engine.Row, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	// Read header
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	types := make(map[string]engine.SimpleType, len(columns))
	for _, c := range columns {
		types[c.Name] = c.SimpleType
	}

	type colMapping struct {
		name       string
		simpleType engine.SimpleType
		mapped     bool
	}

	// Same naming as discovery, duplicate headers included
	mappings := make([]colMapping, len(headers))
	seen := make(map[string]int)
	for i, h := range headers {
		key := schema.ColumnKey(h)
		seen[key]++
		if n := seen[key]; n > 1 {
			key = fmt.Sprintf("%s_%d", key, n)
		}
		if t, ok := types[key]; ok {
			mappings[i] = colMapping{name: key, simpleType: t, mapped: true}
		}
	}

	// Read rows
	var rows []engine.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}

		row := make(engine.Row, len(columns))
		for i, m := range mappings {
			if !m.mapped {
				continue
			}
			if i >= len(record) {
				row[m.name] = nil
				continue
			}
			row[m.name] = typedCell(record[i], m.simpleType)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// ParseCSVAuto parses CSV without pre-existing column metadata.
// Returns the typed rows and the discovered columns.
func ParseCSVAuto(data []byte) ([]engine.Row, []engine.ColumnMeta, error) {
	d, err := schema.DiscoverColumns(data, schema.DiscoverOptions{})
	if err != nil {
		return nil, nil, err
	}
	rows, err := ParseCSV(data, d.Columns)
	if err != nil {
		return nil, nil, err
	}
	return rows, d.Columns, nil
}

// typedCell converts one raw cell into the Row value for its column type.
func typedCell(raw string, t engine.SimpleType) any {
	val := strings.TrimSpace(raw)
	if schema.IsNull(val) {
		return nil
	}

	switch t {
	case engine.TypeNumber:
		if f, ok := schema.ParseNumber(val); ok {
			return f
		}
		return nil
	case engine.TypeDate:
		if d, ok := schema.ParseDate(val); ok {
			return d
		}
		return nil
	case engine.TypeBoolean:
		if b, ok := schema.ParseBool(val); ok {
			return b
		}
		return nil
	}
	return val
}
