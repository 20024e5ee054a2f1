// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/xuri/excelize/v2"
)

// Response sheet columns
const (
	ColSurvey     = "survey"
	ColRespondent = "respondent"
	ColQuestion   = "question"
	ColType       = "type"
	ColText       = "text"
	ColResponse   = "response"
	ColOrder      = "order"
)

var requiredColumns = []string{ColSurvey, ColRespondent, ColQuestion, ColType}

// Row is one line of a response sheet with raw cell values. Line is the
// 1-based sheet line, header included.
type Row struct {
	Line       int
	Survey     string
	Respondent string
	Question   string
	Type       string
	Text       string
	Response   string
	Order      string
}

// RowSource yields sheet rows. Next returns io.EOF after the last row.
type RowSource interface {
	Next() (Row, error)
	Close() error
}

// OpenSheet opens a response sheet, choosing the reader by extension:
// .csv, .csv.gz and .xlsx.
func OpenSheet(path string) (RowSource, error) {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".csv.gz"):
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open sheet: %w", err)
		}
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open gzip sheet: %w", err)
		}
		src, err := NewCSVSource(zr)
		if err != nil {
			zr.Close()
			f.Close()
			return nil, err
		}
		src.closers = []io.Closer{zr, f}
		return src, nil
	case strings.HasSuffix(name, ".csv"):
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open sheet: %w", err)
		}
		src, err := NewCSVSource(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		src.closers = []io.Closer{f}
		return src, nil
	case strings.HasSuffix(name, ".xlsx"):
		return openXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported sheet format: %s", filepath.Base(path))
	}
}

// columns maps column names to record positions.
type columns map[string]int

func readHeader(header []string) (columns, error) {
	cols := make(columns, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("sheet header is missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func (c columns) row(line int, record []string) Row {
	get := func(name string) string {
		i, ok := c[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}
	return Row{
		Line:       line,
		Survey:     get(ColSurvey),
		Respondent: get(ColRespondent),
		Question:   get(ColQuestion),
		Type:       get(ColType),
		Text:       get(ColText),
		Response:   get(ColResponse),
		Order:      get(ColOrder),
	}
}

// CSVSource reads rows from CSV with a header line.
type CSVSource struct {
	r       *csv.Reader
	cols    columns
	line    int
	closers []io.Closer
}

func NewCSVSource(r io.Reader) (*CSVSource, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("sheet is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read sheet header: %w", err)
	}
	cols, err := readHeader(header)
	if err != nil {
		return nil, err
	}
	return &CSVSource{r: cr, cols: cols, line: 1}, nil
}

func (s *CSVSource) Next() (Row, error) {
	for {
		record, err := s.r.Read()
		if err != nil {
			if err == io.EOF {
				return Row{}, io.EOF
			}
			return Row{}, fmt.Errorf("read sheet line %d: %w", s.line+1, err)
		}
		s.line++
		if blank(record) {
			continue
		}
		return s.cols.row(s.line, record), nil
	}
}

func (s *CSVSource) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// XLSXSource streams rows from the first worksheet of a workbook.
type XLSXSource struct {
	f    *excelize.File
	rows *excelize.Rows
	cols columns
	line int
}

func openXLSX(path string) (*XLSXSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.Rows(sheets[0])
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	src := &XLSXSource{f: f, rows: rows}
	if !rows.Next() {
		src.Close()
		return nil, errors.New("sheet is empty")
	}
	header, err := rows.Columns()
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("read sheet header: %w", err)
	}
	if src.cols, err = readHeader(header); err != nil {
		src.Close()
		return nil, err
	}
	src.line = 1
	return src, nil
}

func (s *XLSXSource) Next() (Row, error) {
	for s.rows.Next() {
		s.line++
		record, err := s.rows.Columns()
		if err != nil {
			return Row{}, fmt.Errorf("read sheet line %d: %w", s.line, err)
		}
		if blank(record) {
			continue
		}
		return s.cols.row(s.line, record), nil
	}
	if err := s.rows.Error(); err != nil {
		return Row{}, fmt.Errorf("read sheet: %w", err)
	}
	return Row{}, io.EOF
}

func (s *XLSXSource) Close() error {
	return errors.Join(s.rows.Close(), s.f.Close())
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
