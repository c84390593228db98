package fileio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readCSV reads a CSV file, auto-detecting the encoding and converting to
// UTF-8. Scraper exports are usually Shift-JIS (CP932); UTF-8 with or
// without BOM and EUC-JP also pass through.
func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)

	peek, _ := br.Peek(2048)
	cs := "utf-8"
	if bytes.HasPrefix(peek, utf8BOM) {
		// BOM settles it before chardet gets a vote
	} else if len(peek) > 0 {
		if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
			cs = strings.ToLower(det.Charset)
		}
	}

	var dec io.Reader = br
	switch cs {
	case "shift_jis", "shift-jis", "windows-31j", "cp932":
		dec = transform.NewReader(br, japanese.ShiftJIS.NewDecoder())
	case "euc-jp":
		dec = transform.NewReader(br, japanese.EUCJP.NewDecoder())
	case "iso-2022-jp":
		dec = transform.NewReader(br, japanese.ISO2022JP.NewDecoder())
	default:
		// assume UTF-8
	}

	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for i, cell := range rec {
			rec[i] = cleanCell(strings.TrimPrefix(cell, string(utf8BOM)))
		}
		rows = append(rows, rec)
	}
	return dropEmptyRows(rows), nil
}
