package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/dmitrijs2005/huddlekeeper/internal/huddle"
)

// utf8BOM makes spreadsheet applications detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// EncodeCSV renders the header row for c followed by rows, newest first.
// rows is not modified.
func EncodeCSV(c huddle.Category, rows []huddle.TrackedItem) ([]byte, error) {
	sorted := make([]huddle.TrackedItem, len(rows))
	copy(sorted, rows)
	huddle.SortNewestFirst(sorted)

	headers := huddle.Headers(c)

	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	if err := w.Write(headers); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, r := range sorted {
		if err := w.Write(fitCells(r.Cells, len(headers))); err != nil {
			return nil, fmt.Errorf("write row %s: %w", r.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush: %w", err)
	}
	return buf.Bytes(), nil
}

// fitCells pads or truncates cells to n columns.
func fitCells(cells []string, n int) []string {
	out := make([]string, n)
	copy(out, cells)
	return out
}
