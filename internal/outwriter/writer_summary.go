package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"math"

	"github.com/huangsam/metricsagg/schema"
)

// writeCSVSummary writes the header and one row per folder. Keys a folder
// does not have are written as empty cells.
func writeCSVSummary(w io.Writer, table schema.SummaryTable, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, table.Header(), func(cw *csv.Writer) error {
		for _, r := range table.Rows {
			row := make([]string, 0, len(table.Columns)+1)
			row = append(row, r.Folder)
			for _, col := range table.Columns {
				v, ok := r.Values[col]
				if !ok {
					row = append(row, "")
					continue
				}
				row = append(row, fmtFloat(v))
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeJSONSummary writes the rows as an array of {folder, metrics} objects.
// Values are formatted like the CSV cells; non-finite values become null.
func writeJSONSummary(w io.Writer, table schema.SummaryTable, fmtFloat func(float64) string) error {
	type jsonSummaryRow struct {
		Folder  string         `json:"folder"`
		Metrics map[string]any `json:"metrics"`
	}

	output := make([]jsonSummaryRow, len(table.Rows))
	for i, r := range table.Rows {
		metrics := make(map[string]any, len(r.Values))
		for key, v := range r.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				metrics[key] = nil
				continue
			}
			metrics[key] = json.Number(fmtFloat(v))
		}
		output[i] = jsonSummaryRow{Folder: r.Folder, Metrics: metrics}
	}
	return writeJSON(w, output)
}

// MarshalSummaryJSON renders the table exactly as the json output format does.
func MarshalSummaryJSON(table schema.SummaryTable, precision int) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSONSummary(&buf, table, createFormatter(precision)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
