package schema

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"

	"github.com/spektr-org/spektrchart/engine"
)

// ============================================================================
// AUTO-DISCOVERY — Heuristic column typing
// ============================================================================
// Inspects raw data (CSV) and produces the column metadata the chart engine
// needs. No external service involved.
//
// Pipeline per column:
//   1. Sample values → detect type (number, date, boolean, string)
//   2. Collect cardinality statistics
//   3. Flag columns unusable as an axis (all null, identifiers, free text)
// ============================================================================

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	SampleSize int    // Max rows to inspect (0 = all). Default: 1000
	Name       string // Dataset name override
}

// DefaultDiscoverOptions returns sensible defaults.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{
		SampleSize: 1000,
	}
}

// DiscoverColumns inspects CSV data and returns typed column metadata.
// Column names are snake_case keys of the headers; display names keep the
// header's readable form.
func DiscoverColumns(data []byte, opts ...DiscoverOptions) (*Discovery, error) {
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	// 1. Read headers
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("CSV has no columns")
	}

	// 2. Read sample rows
	var rows [][]string
	limit := opt.SampleSize
	if limit <= 0 {
		limit = 100000 // safety cap
	}
	for i := 0; i < limit; i++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		rows = append(rows, row)
	}

	totalRows := len(rows)
	if totalRows == 0 {
		return nil, fmt.Errorf("CSV has no data rows")
	}

	// 3. Analyze each column
	d := &Discovery{
		Name:           opt.Name,
		DiscoveredFrom: "CSV",
		DiscoveredAt:   time.Now().UTC().Format(time.RFC3339),
		SampledRows:    totalRows,
	}
	if d.Name == "" {
		d.Name = "Auto-discovered Dataset"
	}

	seen := make(map[string]int)
	for i, header := range headers {
		col := analyzeColumn(header, i, rows, totalRows)

		// Duplicate headers get a numeric suffix so names stay unique
		seen[col.key]++
		if n := seen[col.key]; n > 1 {
			col.key = fmt.Sprintf("%s_%d", col.key, n)
		}

		d.Columns = append(d.Columns, engine.ColumnMeta{
			Name:        col.key,
			SimpleType:  col.simpleType,
			DisplayName: toDisplayName(header),
		})
		d.Stats = append(d.Stats, col.stats())
		if col.skipReason != "" {
			d.SkippedColumns = append(d.SkippedColumns, SkippedColumn{Column: col.key, Reason: col.skipReason})
		}
	}
	return d, nil
}

// ============================================================================
// COLUMN ANALYSIS
// ============================================================================

type columnAnalysis struct {
	header     string
	key        string
	index      int
	simpleType engine.SimpleType
	skipReason string

	// Stats
	uniqueCount     int
	totalCount      int
	nullCount       int
	sampleVals      []string
	hasDecimals     bool
	isIdentifier    bool
	cardinalityHint string
}

// analyzeColumn inspects all values in a column and classifies it.
func analyzeColumn(header string, index int, rows [][]string, totalRows int) columnAnalysis {
	col := columnAnalysis{
		header:     header,
		key:        ColumnKey(header),
		index:      index,
		totalCount: totalRows,
		simpleType: engine.TypeString,
	}

	// Collect values
	values := make([]string, 0, len(rows))
	uniqueSet := make(map[string]bool)

	for _, row := range rows {
		if index >= len(row) {
			col.nullCount++
			continue
		}
		val := strings.TrimSpace(row[index])
		if IsNull(val) {
			col.nullCount++
			continue
		}
		values = append(values, val)
		uniqueSet[val] = true
	}

	col.uniqueCount = len(uniqueSet)

	if len(values) == 0 {
		col.skipReason = "All values are empty/null"
		return col
	}

	// Collect sample values (up to 10)
	col.sampleVals = collectSamples(uniqueSet, 10)

	// Step 1: Detect type
	col.simpleType = detectType(values)

	if col.simpleType == engine.TypeNumber {
		for _, v := range values {
			if strings.Contains(v, ".") {
				col.hasDecimals = true
				break
			}
		}
	}

	// Step 2: Classify axis usability
	col.classify(totalRows)

	// Step 3: Set cardinality hint
	switch {
	case col.uniqueCount <= 10:
		col.cardinalityHint = "low"
	case col.uniqueCount <= 100:
		col.cardinalityHint = "medium"
	default:
		col.cardinalityHint = "high"
	}

	return col
}

// classify flags identifier and free-text columns.
func (col *columnAnalysis) classify(totalRows int) {
	switch col.simpleType {
	case engine.TypeNumber:
		if col.uniqueCount == totalRows && totalRows > 10 && !col.hasDecimals {
			// Every value unique and integral → likely an ID
			col.isIdentifier = true
			col.skipReason = "Unique per row — likely an ID column"
		}

	case engine.TypeString:
		if col.uniqueCount == totalRows && totalRows > 10 {
			col.isIdentifier = true
			col.skipReason = "Unique per row — likely an identifier"
			return
		}
		if col.uniqueCount > totalRows/2 && col.uniqueCount > 50 {
			col.skipReason = fmt.Sprintf("High cardinality (%d unique values) — not useful for grouping", col.uniqueCount)
		}
	}
}

func (col *columnAnalysis) stats() ColumnStats {
	return ColumnStats{
		Name:            col.key,
		Header:          col.header,
		UniqueCount:     col.uniqueCount,
		NullCount:       col.nullCount,
		SampleValues:    col.sampleVals,
		CardinalityHint: col.cardinalityHint,
		HasDecimals:     col.hasDecimals,
		IsIdentifier:    col.isIdentifier,
	}
}

// ============================================================================
// TYPE DETECTION
// ============================================================================

// detectType inspects values to determine column type.
// Requires 80%+ of non-null values to match for number/date/boolean.
func detectType(values []string) engine.SimpleType {
	if len(values) == 0 {
		return engine.TypeString
	}

	numCount := 0
	dateCount := 0
	boolCount := 0

	for _, v := range values {
		if isNumeric(v) {
			numCount++
		}
		if isDate(v) {
			dateCount++
		}
		if isBool(v) {
			boolCount++
		}
	}

	threshold := int(float64(len(values)) * 0.8)
	if threshold == 0 {
		threshold = 1
	}

	if boolCount >= threshold && boolCount > numCount-boolCount {
		return engine.TypeBoolean
	}
	if dateCount >= threshold {
		return engine.TypeDate
	}
	if numCount >= threshold {
		return engine.TypeNumber
	}
	return engine.TypeString
}

// IsNull reports whether a raw cell means "no value".
func IsNull(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "null", "NULL", "N/A", "n/a", "NaN":
		return true
	}
	return false
}

func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "") // handle "1,234.56"
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimPrefix(s, "£")
	if neg {
		s = "-" + s
	}
	return s
}

// ParseNumber parses a numeric cell, tolerating thousands separators and a
// leading currency symbol.
func ParseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(cleanNumber(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isNumeric(s string) bool {
	_, ok := ParseNumber(s)
	return ok
}

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"02/01/2006",
	"Jan-2006",
	"January 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseDate parses a date cell. Known layouts are tried first; values that
// start with a digit then go through dateparse. Plain numbers are never
// dates.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || isNumeric(s) {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if !unicode.IsDigit(rune(s[0])) {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func isDate(s string) bool {
	_, ok := ParseDate(s)
	return ok
}

// ParseBool parses a boolean cell.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true, true
	case "false", "no", "0":
		return false, true
	}
	return false, false
}

func isBool(s string) bool {
	_, ok := ParseBool(s)
	return ok
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// ColumnKey is the column name derived from a CSV header.
func ColumnKey(header string) string {
	return toSnakeCase(strings.TrimSpace(header))
}

// toSnakeCase converts "Column Name" or "columnName" → "column_name".
func toSnakeCase(s string) string {
	// Handle camelCase: insert underscore before uppercase letters
	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			prev := rune(s[i-1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				result.WriteRune('_')
			}
		}
		result.WriteRune(r)
	}

	s = result.String()
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "__", "_")
	s = strings.Trim(s, "_")
	return s
}

// toDisplayName cleans a header for human display.
// "story_points" → "Story Points", "assignee" → "Assignee"
func toDisplayName(s string) string {
	// If already has spaces/mixed case, just trim
	if strings.Contains(s, " ") {
		return strings.TrimSpace(s)
	}

	// Convert snake_case to Title Case
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}

// collectSamples picks up to maxSamples representative values.
func collectSamples(uniqueSet map[string]bool, maxSamples int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}

	// Sort for deterministic output
	sort.Strings(samples)

	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}
