package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/spektr-org/spektrchart/engine"
)

// ============================================================================
// OUTPUT — BackendConfig → JSON, MessagePack or Sheets-ready CSV
// ============================================================================

func writeOutput(w io.Writer, cfg *engine.BackendConfig, format string) error {
	switch format {
	case "csv":
		return writeCSV(w, cfg)
	case "msgpack":
		return writeMsgpack(w, cfg)
	default:
		return writeJSON(w, cfg, format)
	}
}

func writeJSON(w io.Writer, v any, format string) error {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func writeMsgpack(w io.Writer, v any) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode msgpack: %w", err)
	}
	return nil
}

// ============================================================================
// CSV OUTPUT
// ============================================================================

// writeCSV flattens the dataset section. Categorical charts become one row
// per tick and one column per series; point charts (scatter) one row per
// point.
func writeCSV(w io.Writer, cfg *engine.BackendConfig) error {
	cw := csv.NewWriter(w)

	if len(cfg.Data.Labels) == 0 {
		_ = cw.Write([]string{"Series", "X", "Y"})
		for _, ds := range cfg.Data.Datasets {
			for _, p := range ds.Data {
				_ = cw.Write([]string{ds.Label, fmtCell(p.X), fmtValue(p.Y)})
			}
		}
		cw.Flush()
		return cw.Error()
	}

	headers := []string{categoryTitle(cfg)}
	for _, ds := range cfg.Data.Datasets {
		headers = append(headers, ds.Label)
	}
	_ = cw.Write(headers)

	for i, label := range cfg.Data.Labels {
		row := []string{label}
		for _, ds := range cfg.Data.Datasets {
			if i < len(ds.Data) {
				row = append(row, fmtValue(ds.Data[i].Y))
			} else {
				row = append(row, "")
			}
		}
		_ = cw.Write(row)
	}
	cw.Flush()
	return cw.Error()
}

// categoryTitle is the caption of the category axis, "Label" when untitled.
func categoryTitle(cfg *engine.BackendConfig) string {
	axis := "x"
	if cfg.Options.IndexAxis != "" {
		axis = cfg.Options.IndexAxis
	}
	if s, ok := cfg.Options.Scales[axis]; ok && s.Title.Text != "" {
		return s.Title.Text
	}
	return "Label"
}

// ============================================================================
// HELPERS
// ============================================================================

func fmtNum(v float64) string {
	// Whole numbers → no decimals, fractional → 2 decimals
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func fmtValue(v *float64) string {
	if v == nil {
		return ""
	}
	return fmtNum(*v)
}

func fmtCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		return fmtNum(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}
