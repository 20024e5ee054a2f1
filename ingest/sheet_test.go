// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ingest

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sheetCSV = "\ufeffSurvey,Respondent,Question,Type,Text,Response,Order\n" +
	"S1,R1,q1,1,hello,,\n" +
	"\n" +
	"S1,R1,q3,3,,q3-web,2\n" +
	"S1,R2,q2,2,,q2-no,nan\n"

func drain(t *testing.T, src RowSource) []Row {
	t.Helper()
	var rows []Row
	for {
		row, err := src.Next()
		if err == io.EOF {
			return rows
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
}

func assertSheetRows(t *testing.T, rows []Row) {
	t.Helper()
	require.Len(t, rows, 3)
	assert.Equal(t, Row{Line: 2, Survey: "S1", Respondent: "R1", Question: "q1", Type: "1", Text: "hello"}, rows[0])
	assert.Equal(t, "q3-web", rows[1].Response)
	assert.Equal(t, "2", rows[1].Order)
	assert.Equal(t, "nan", rows[2].Order)
}

func TestOpenSheet_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.csv")
	require.NoError(t, os.WriteFile(path, []byte(sheetCSV), 0o600))

	src, err := OpenSheet(path)
	require.NoError(t, err)
	defer src.Close()

	assertSheetRows(t, drain(t, src))
}

func TestOpenSheet_GzipCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.csv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(sheetCSV))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	src, err := OpenSheet(path)
	require.NoError(t, err)
	defer src.Close()

	assertSheetRows(t, drain(t, src))
}

func TestOpenSheet_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.xlsx")

	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	rows := [][]interface{}{
		{"survey", "respondent", "question", "type", "text", "response", "order"},
		{"S1", "R1", "q1", 1, "hello"},
		{"S1", "R1", "q3", 3, "", "q3-web", 2},
		{"S1", "R2", "q2", 2, "", "q2-no", "nan"},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, cell, &r))
	}
	require.NoError(t, wb.SaveAs(path))
	require.NoError(t, wb.Close())

	src, err := OpenSheet(path)
	require.NoError(t, err)
	defer src.Close()

	got := drain(t, src)
	require.Len(t, got, 3)
	assert.Equal(t, "R1", got[0].Respondent)
	assert.Equal(t, "1", got[0].Type)
	assert.Equal(t, "hello", got[0].Text)
	assert.Equal(t, "", got[0].Order)
	assert.Equal(t, "q3-web", got[1].Response)
	assert.Equal(t, "2", got[1].Order)
	assert.Equal(t, "q2-no", got[2].Response)
}

func TestOpenSheet_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(dir, "responses.json")
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
		_, err := OpenSheet(path)
		assert.ErrorContains(t, err, "unsupported sheet format")
	})

	t.Run("missing required columns", func(t *testing.T) {
		path := filepath.Join(dir, "partial.csv")
		require.NoError(t, os.WriteFile(path, []byte("survey,respondent,text\nS1,R1,hi\n"), 0o600))
		_, err := OpenSheet(path)
		assert.ErrorContains(t, err, "question, type")
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.csv")
		require.NoError(t, os.WriteFile(path, nil, 0o600))
		_, err := OpenSheet(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := OpenSheet(filepath.Join(dir, "nope.csv"))
		assert.Error(t, err)
	})
}

func TestCSVSource_ShortRecords(t *testing.T) {
	src, err := NewCSVSource(strings.NewReader("survey,respondent,question,type,text\nS1,R1,q1\n"))
	require.NoError(t, err)

	row, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, "q1", row.Question)
	assert.Equal(t, "", row.Type)
	assert.Equal(t, "", row.Order)
}
