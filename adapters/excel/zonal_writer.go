// Package excel writes the zonal-statistics table as an Excel workbook.
package excel

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/xuri/excelize/v2"

	"landtrend/internal/errors"
	"landtrend/ports"
)

const sheetName = "ZonalStats"

// ZonalWriter implements ports.ZonalSink by writing one row per tract to an
// xlsx workbook.
type ZonalWriter struct {
	filePath string
}

// NewZonalWriter creates a writer targeting the given workbook path.
func NewZonalWriter(filePath string) *ZonalWriter {
	return &ZonalWriter{filePath: filePath}
}

// WriteTable writes the full table. Band-median columns are ordered
// alphabetically so workbook layout is stable across runs.
func (w *ZonalWriter) WriteTable(ctx context.Context, records []ports.TractRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(records) == 0 {
		return errors.InvalidInput("no tract records to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return errors.Wrap(err, "failed to create zonal sheet")
	}
	f.SetActiveSheet(idx)

	bandCols := bandColumns(records)
	header := append([]string{"GEOID"}, bandCols...)
	header = append(header, "medianNDVI", "medianLST", "greenArea", "waterArea", "urbanArea")
	if err := writeRow(f, 1, toAny(header)); err != nil {
		return err
	}

	for i, rec := range records {
		row := make([]interface{}, 0, len(header))
		row = append(row, rec.GEOID)
		for _, col := range bandCols {
			row = append(row, rec.BandMedians[col])
		}
		row = append(row, rec.MedianNDVI, rec.MedianLST, rec.GreenArea, rec.WaterArea, rec.UrbanArea)
		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(w.filePath); err != nil {
		return errors.Wrapf(err, "failed to save zonal workbook %s", w.filePath)
	}
	log.Printf("[excel] wrote %d tract rows to %s", len(records), w.filePath)
	return nil
}

func bandColumns(records []ports.TractRecord) []string {
	seen := make(map[string]bool)
	for _, rec := range records {
		for col := range rec.BandMedians {
			seen[col] = true
		}
	}
	cols := make([]string, 0, len(seen))
	for col := range seen {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func writeRow(f *excelize.File, row int, values []interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return errors.Wrap(err, "failed to compute cell name")
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return errors.Wrap(err, fmt.Sprintf("failed to write cell %s", cell))
		}
	}
	return nil
}

func toAny(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
