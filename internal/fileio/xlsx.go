package fileio

import (
	"bytes"
	"io"

	excelize "github.com/xuri/excelize/v2"
)

// readXLSX reads the first sheet only; multi-sheet workbooks keep their
// price matrix on sheet one by convention.
func readXLSX(r io.Reader) ([][]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		for i, cell := range row {
			row[i] = cleanCell(cell)
		}
	}
	return dropEmptyRows(rows), nil
}
