package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var supportedExtensions = map[string]bool{
	"csv":  true,
	"xlsx": true,
	"xls":  true,
	"json": true,
}

// IsSupportedExtension reports whether files with the given extension
// (lowercase, without dot) can be loaded.
func IsSupportedExtension(ext string) bool {
	return supportedExtensions[ext]
}

// Load parses uploaded bytes into a Frame based on the file extension.
func Load(content []byte, ext string) (*Frame, error) {
	switch ext {
	case "csv":
		return loadCSV(content)
	case "xlsx":
		return loadXLSX(content)
	case "xls":
		return loadXLS(content)
	case "json":
		return loadJSON(content)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

func loadCSV(content []byte) (*Frame, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Frame{}, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	frame := &Frame{Columns: header}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		frame.Rows = append(frame.Rows, padRow(record, len(header)))
	}
	return frame, nil
}

func loadXLSX(content []byte) (*Frame, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Frame{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx sheet %q: %w", sheets[0], err)
	}
	return frameFromRows(rows), nil
}

func loadXLS(content []byte) (*Frame, error) {
	wb, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return &Frame{}, nil
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		var cells []string
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		rows = append(rows, cells)
	}
	return frameFromRows(rows), nil
}

// loadJSON parses an array of flat objects. Decoding walks the token stream
// instead of unmarshalling into maps so that column order follows first
// appearance in the document; map iteration order would break fingerprint
// determinism.
func loadJSON(content []byte) (*Frame, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("json data must be an array of objects")
	}

	frame := &Frame{}
	colIndex := map[string]int{}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read json object: %w", err)
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '{' {
			return nil, fmt.Errorf("json array elements must be objects")
		}

		cells := map[int]string{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("read json key: %w", err)
			}
			key := keyTok.(string)
			idx, seen := colIndex[key]
			if !seen {
				idx = len(frame.Columns)
				colIndex[key] = idx
				frame.Columns = append(frame.Columns, key)
			}

			valTok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("read json value: %w", err)
			}
			cell, err := jsonCell(valTok)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", key, err)
			}
			cells[idx] = cell
		}
		if _, err := dec.Token(); err != nil { // closing '}'
			return nil, fmt.Errorf("read json object end: %w", err)
		}

		row := make([]string, len(frame.Columns))
		for idx, cell := range cells {
			row[idx] = cell
		}
		frame.Rows = append(frame.Rows, row)
	}

	// Earlier rows may be shorter than the final column set.
	for i, row := range frame.Rows {
		frame.Rows[i] = padRow(row, len(frame.Columns))
	}
	return frame, nil
}

// jsonCell renders a scalar JSON value the same way the CSV loader would see
// it, so the number 30 and the text "30" fingerprint identically.
func jsonCell(tok json.Token) (string, error) {
	switch v := tok.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case json.Number:
		return canonicalNumber(v.String()), nil
	case json.Delim:
		return "", fmt.Errorf("nested values are not supported in tabular json")
	default:
		return fmt.Sprint(v), nil
	}
}

// canonicalNumber strips redundant float notation: 30.0 and 3e1 both render
// as 30.
func canonicalNumber(s string) string {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func frameFromRows(rows [][]string) *Frame {
	if len(rows) == 0 {
		return &Frame{}
	}
	header := rows[0]
	frame := &Frame{Columns: header}
	for _, row := range rows[1:] {
		frame.Rows = append(frame.Rows, padRow(row, len(header)))
	}
	return frame
}

func padRow(row []string, n int) []string {
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}
	if len(row) >= n {
		return row[:n]
	}
	padded := make([]string, n)
	copy(padded, row)
	return padded
}
