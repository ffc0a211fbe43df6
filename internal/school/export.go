package school

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

var ErrNoRecords = errors.New("no schools to write")

const sheetName = "Schools"

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0777)
}

// EncodeCSV writes the header and one row per record to w.
func EncodeCSV(w io.Writer, layout Layout, records []*Record) error {
	if len(records) == 0 {
		return ErrNoRecords
	}
	writer := csv.NewWriter(w)
	err := writer.Write(layout.Header())
	if err != nil {
		return err
	}
	for _, r := range records {
		err = writer.Write(layout.Row(r))
		if err != nil {
			return fmt.Errorf("write %s: %w", r.Name, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCSV writes the records to a csv file, creating its directory when missing.
func WriteCSV(path string, layout Layout, records []*Record) error {
	if len(records) == 0 {
		return ErrNoRecords
	}
	err := ensureDir(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = EncodeCSV(f, layout, records)
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeXLSX writes the same layout as EncodeCSV into a single sheet workbook.
func EncodeXLSX(w io.Writer, layout Layout, records []*Record) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	f := excelize.NewFile()
	defer f.Close()

	err := f.SetSheetName(f.GetSheetName(0), sheetName)
	if err != nil {
		return err
	}

	rows := [][]string{layout.Header()}
	for _, r := range records {
		rows = append(rows, layout.Row(r))
	}
	for y, row := range rows {
		for x, value := range row {
			cell, err := excelize.CoordinatesToCellName(x+1, y+1)
			if err != nil {
				return err
			}
			err = f.SetCellValue(sheetName, cell, value)
			if err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

// WriteXLSX writes the records to an xlsx file, creating its directory when missing.
func WriteXLSX(path string, layout Layout, records []*Record) error {
	if len(records) == 0 {
		return ErrNoRecords
	}
	err := ensureDir(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = EncodeXLSX(f, layout, records)
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
