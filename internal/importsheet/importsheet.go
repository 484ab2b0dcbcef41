// Package importsheet reads attendance sheets exported from spreadsheets.
package importsheet

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	dto "care-tasks.com/care-tasks/internal/data_models"
	"care-tasks.com/care-tasks/internal/names"
)

var ErrUnsupportedFormat = errors.New("unsupported sheet format")

const (
	colName = "name"
	colRole = "role"
	colType = "type"
	colNote = "note"
	colAt   = "at"
)

// headerAliases maps normalized header labels to columns.
var headerAliases = map[string]string{
	"name":        colName,
	"nome":        colName,
	"member":      colName,
	"role":        colRole,
	"funcao":      colRole,
	"type":        colType,
	"tipo":        colType,
	"event_type":  colType,
	"note":        colNote,
	"observacao":  colNote,
	"observacoes": colNote,
	"at":          colAt,
	"data_hora":   colAt,
	"timestamp":   colAt,
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"01-02-06 15:04",
}

// Parse reads a .csv or .xlsx sheet whose first row is a header. Each data row keeps
// its sheet row number as Line. Rows with an unreadable timestamp are returned as
// import errors; blank rows are skipped.
func Parse(filename string, r io.Reader) ([]dto.ClockImportRow, []dto.ImportError, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		records, err = readCSV(r)
	case ".xlsx":
		records, err = readXLSX(r)
	default:
		return nil, nil, errors.Wrap(ErrUnsupportedFormat, filename)
	}
	if err != nil {
		return nil, nil, err
	}

	return toRows(records, time.Local)
}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read csv")
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if first, _, _ := bytes.Cut(data, []byte("\n")); bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		reader.Comma = ';'
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parse csv")
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "open xlsx")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("xlsx has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrap(err, "read xlsx rows")
	}
	return rows, nil
}

func toRows(records [][]string, loc *time.Location) ([]dto.ClockImportRow, []dto.ImportError, error) {
	if len(records) == 0 {
		return nil, nil, errors.New("sheet is empty")
	}

	columns := make(map[string]int)
	for i, label := range records[0] {
		key := strings.ReplaceAll(names.Key(label), " ", "_")
		if col, ok := headerAliases[key]; ok {
			if _, seen := columns[col]; !seen {
				columns[col] = i
			}
		}
	}
	if _, ok := columns[colName]; !ok {
		return nil, nil, errors.New("sheet has no name column")
	}

	rows := make([]dto.ClockImportRow, 0, len(records)-1)
	var rowErrors []dto.ImportError
	for i, record := range records[1:] {
		cell := func(col string) string {
			idx, ok := columns[col]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		if blank(record) {
			continue
		}

		row := dto.ClockImportRow{
			Line:      i + 2,
			Name:      cell(colName),
			Role:      cell(colRole),
			EventType: cell(colType),
			Note:      cell(colNote),
		}
		if raw := cell(colAt); raw != "" {
			at, err := parseTime(raw, loc)
			if err != nil {
				rowErrors = append(rowErrors, dto.ImportError{Line: row.Line, Name: row.Name, Reason: "invalid timestamp"})
				continue
			}
			row.At = &at
		}
		rows = append(rows, row)
	}

	return rows, rowErrors, nil
}

func parseTime(raw string, loc *time.Location) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("unrecognized timestamp %q", raw)
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
