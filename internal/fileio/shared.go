package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ReadTable picks a parser by extension and returns the raw cell grid.
// Format detection happens downstream; this layer only decodes.
func ReadTable(r io.Reader, filename string) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return readXLSX(r)
	case ".xls":
		return readXLS(r)
	case ".csv":
		return readCSV(r)
	default:
		return nil, fmt.Errorf("unsupported file: %s", filename)
	}
}

// dropEmptyRows removes rows whose every cell is blank; spreadsheet exports
// are full of them.
func dropEmptyRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		empty := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if !empty {
			out = append(out, row)
		}
	}
	return out
}

// cleanCell trims whitespace including NBSP and the full-width space.
func cleanCell(s string) string {
	return strings.Trim(s, " \t\r\n 　")
}
