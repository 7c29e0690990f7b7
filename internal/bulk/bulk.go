// Package bulk reads and writes the CSV interchange format for rating
// imports and exports. Each row names one item, its star rating, and
// its ownership classification.
package bulk

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/CWuestefeld/plex-rating-utils/internal/ownership"
)

// Header is the expected first row of every rating CSV.
var Header = []string{"item_id", "rating", "classification"}

// Row is one rating in the interchange format. Line is the source
// line the row was read from, zero for rows built in memory; it lets
// later validation stages report positions matching the input file.
type Row struct {
	ItemID string
	Rating float64
	Class  ownership.Class
	Line   int
}

// RowError reports one rejected input row. Rejections never abort the
// surrounding import; callers collect them and apply the rest.
type RowError struct {
	Line    int
	Message string
}

func (e RowError) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Read parses rating rows from r. Malformed rows are returned as
// RowErrors alongside the rows that parsed.
func Read(r io.Reader) ([]Row, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	cr.TrimLeadingSpace = true

	var rows []Row
	var rowErrs []RowError
	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			if perr, ok := err.(*csv.ParseError); ok {
				rowErrs = append(rowErrs, RowError{Line: perr.Line, Message: perr.Err.Error()})
				continue
			}
			return rows, rowErrs, err
		}
		if line == 1 && strings.EqualFold(record[0], Header[0]) {
			continue
		}

		row, rerr := parseRow(line, record)
		if rerr != nil {
			rowErrs = append(rowErrs, *rerr)
			continue
		}
		rows = append(rows, row)
	}
	return rows, rowErrs, nil
}

// ReadFile parses rating rows from a file on disk.
func ReadFile(path string) ([]Row, []RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return Read(f)
}

func parseRow(line int, record []string) (Row, *RowError) {
	id := strings.TrimSpace(record[0])
	if id == "" {
		return Row{}, &RowError{Line: line, Message: "empty item id"}
	}

	rating, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return Row{}, &RowError{Line: line, Message: fmt.Sprintf("bad rating %q", record[1])}
	}
	if rating < 0 || rating > 5 {
		return Row{}, &RowError{Line: line, Message: fmt.Sprintf("rating %g outside 0-5", rating)}
	}

	var class ownership.Class
	switch strings.ToLower(strings.TrimSpace(record[2])) {
	case string(ownership.ClassManual):
		class = ownership.ClassManual
	case string(ownership.ClassInferred):
		class = ownership.ClassInferred
	default:
		return Row{}, &RowError{Line: line, Message: fmt.Sprintf("unknown classification %q", record[2])}
	}

	return Row{ItemID: id, Rating: rating, Class: class, Line: line}, nil
}

// Write emits a header plus one line per row.
func Write(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.ItemID,
			strconv.FormatFloat(row.Rating, 'f', -1, 64),
			string(row.Class),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes rows to a file, replacing any existing content.
func WriteFile(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
