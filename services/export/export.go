package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"pricehound/internal/scrape"
	"pricehound/pkg/errors"
)

// Row is one exportable record, keyed by column name
type Row map[string]interface{}

// preferredColumns fixes the order of the well-known columns. Columns not
// listed here are appended alphabetically after them.
var preferredColumns = []string{
	"image_url",
	"title",
	"original",
	"percent_off",
	"absolute_off",
	"final",
	"url",
	"source",
	"site",
	"price_text",
	"clean_title",
	"model",
	"compare_price",
	"delta",
	"delta_pct",
	"cost",
	"fees_pct",
	"target_margin_pct",
	"margin_pct",
	"profit",
	"recommended_price",
	"watchlisted",
}

// Columns derives the header for a row set: preferred columns that actually
// occur, then any extras in alphabetical order
func Columns(rows []Row) []string {
	present := make(map[string]bool)
	for _, row := range rows {
		for k := range row {
			present[k] = true
		}
	}

	var cols []string
	for _, c := range preferredColumns {
		if present[c] {
			cols = append(cols, c)
			delete(present, c)
		}
	}

	var extras []string
	for k := range present {
		extras = append(extras, k)
	}
	sort.Strings(extras)

	return append(cols, extras...)
}

// ItemRows flattens scraped items into export rows, recording the discount
// rule that produced them
func ItemRows(items []scrape.Item, rule scrape.DiscountRule) []Row {
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, Row{
			"image_url":    item.ImageURL,
			"title":        item.Title,
			"original":     item.OriginalFormatted,
			"percent_off":  rule.PercentOff,
			"absolute_off": rule.AbsoluteOff,
			"final":        item.DiscountedFormatted,
			"url":          item.URL,
			"source":       item.Source,
			"site":         item.Site,
			"price_text":   item.PriceText,
		})
	}
	return rows
}

// WriteCSV writes rows as CSV with a header line
func WriteCSV(w io.Writer, rows []Row) error {
	cols := Columns(rows)
	writer := csv.NewWriter(w)

	if err := writer.Write(cols); err != nil {
		return errors.NewExport("failed to write CSV header", err)
	}
	for _, row := range rows {
		record := make([]string, len(cols))
		for i, c := range cols {
			record[i] = cellString(row[c])
		}
		if err := writer.Write(record); err != nil {
			return errors.NewExport("failed to write CSV row", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.NewExport("failed to flush CSV", err)
	}
	return nil
}

// WriteXLSX renders rows into a single-sheet workbook and returns the
// serialized file
func WriteXLSX(rows []Row) ([]byte, error) {
	cols := Columns(rows)

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, errors.NewExport("failed to write XLSX header", err)
	}

	for i, row := range rows {
		record := make([]interface{}, len(cols))
		for j, c := range cols {
			record[j] = row[c]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, errors.NewExport("failed to address XLSX row", err)
		}
		if err := f.SetSheetRow(sheet, cell, &record); err != nil {
			return nil, errors.NewExport("failed to write XLSX row", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errors.NewExport("failed to serialize XLSX", err)
	}
	return buf.Bytes(), nil
}

// cellString renders a cell value for CSV output. Nils become empty cells,
// floats keep their natural precision.
func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case *float64:
		if val == nil {
			return ""
		}
		return strconv.FormatFloat(*val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
