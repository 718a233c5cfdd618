package importer

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

var lineBreak = regexp.MustCompile(`\r?\n`)

var utf8BOM = []byte("\ufeff")

// readCSV splits on line breaks and then on commas. Quoted fields are not
// unescaped; a comma inside a name splits the cell. A leading UTF-8 BOM, as
// Excel writes, is dropped.
func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	lines := lineBreak.Split(string(data), -1)
	rows := make([][]string, len(lines))
	for i, line := range lines {
		rows[i] = strings.Split(line, ",")
	}
	return rows, nil
}

// readXLSX returns the rows of the first worksheet. Cells are read raw so a
// number format such as "#,##0.00" does not leak into N.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}
