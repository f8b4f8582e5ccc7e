package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"

	rejectionSheet = "Import Errors"
)

// Report is a rendered rejection file.
type Report struct {
	Data        []byte
	ContentType string
	Extension   string
}

// RejectionReport renders one line per rejected row: the row number, the
// original cells under the upload's headers, and the reasons joined by "; ".
// CSV uploads get a CSV report; spreadsheet uploads get xlsx.
func RejectionReport(format Format, headers []string, rejections []Rejection) (*Report, error) {
	columns := make([]string, 0, len(headers)+2)
	columns = append(columns, "Row Number")
	columns = append(columns, headers...)
	columns = append(columns, "Errors")

	lines := make([][]string, 0, len(rejections))
	for _, r := range rejections {
		line := make([]string, 0, len(columns))
		line = append(line, strconv.Itoa(r.RowNumber))
		for i := range headers {
			if i < len(r.Cells) {
				line = append(line, r.Cells[i])
			} else {
				line = append(line, "")
			}
		}
		line = append(line, strings.Join(r.Reasons, "; "))
		lines = append(lines, line)
	}

	if format == FormatCSV {
		data, err := writeCSV(columns, lines)
		if err != nil {
			return nil, err
		}
		return &Report{Data: data, ContentType: ContentTypeCSV, Extension: ".csv"}, nil
	}

	data, err := writeXLSX(columns, lines)
	if err != nil {
		return nil, err
	}
	return &Report{Data: data, ContentType: ContentTypeXLSX, Extension: ".xlsx"}, nil
}

func writeCSV(columns []string, lines [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, err
	}
	if err := w.WriteAll(lines); err != nil {
		return nil, fmt.Errorf("failed to write csv report: %w", err)
	}
	return buf.Bytes(), nil
}

func writeXLSX(columns []string, lines [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", rejectionSheet); err != nil {
		return nil, err
	}
	if err := writeTable(f, rejectionSheet, columns, toRows(lines)); err != nil {
		return nil, err
	}

	last, _ := excelize.ColumnNumberToName(len(columns))
	f.SetColWidth(rejectionSheet, "A", "A", 12)
	if len(columns) > 2 {
		prev, _ := excelize.ColumnNumberToName(len(columns) - 1)
		f.SetColWidth(rejectionSheet, "B", prev, 16)
	}
	f.SetColWidth(rejectionSheet, last, last, 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write xlsx report: %w", err)
	}
	return buf.Bytes(), nil
}

// writeTable writes a bold header row followed by the data rows.
func writeTable(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	headerCells := make([]interface{}, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerCells); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	end, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", end, style); err != nil {
		return err
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

func toRows(lines [][]string) [][]interface{} {
	rows := make([][]interface{}, len(lines))
	for i, line := range lines {
		row := make([]interface{}, len(line))
		for j, v := range line {
			row[j] = v
		}
		rows[i] = row
	}
	return rows
}
