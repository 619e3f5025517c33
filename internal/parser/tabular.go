package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"catalog-service/internal/models"
	"github.com/xuri/excelize/v2"
)

// Format identifies the tabular input encoding.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

// ParseError is returned for malformed buffers and for rows that resolved
// values which then failed type or range checks. It always aborts the whole
// file; a partial record sequence is never returned alongside it.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error processing file: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Accepted header spellings per field, matched after lowercasing and
// trimming. Checked in order; the first alias with a usable value wins.
var (
	nameAliases  = []string{"name", "productname", "product name"}
	codeAliases  = []string{"productcode", "product code", "code"}
	priceAliases = []string{"price", "unit price"}
)

// Parse converts a raw spreadsheet or delimited-text buffer into candidate
// records. Rows that fail to resolve a required field are dropped silently;
// rows that resolve a price which is not a positive number abort the parse.
func Parse(data []byte, format Format) ([]models.ProductInput, error) {
	var (
		rows []map[string]string
		err  error
	)
	if format == FormatCSV {
		rows, err = readCSV(data)
	} else {
		rows, err = readExcel(data)
	}
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	records := make([]models.ProductInput, 0, len(rows))
	for _, row := range rows {
		record, ok := extractRecord(row)
		if !ok {
			continue // leniency policy: unresolvable rows are skipped
		}
		records = append(records, record)
	}

	// Second pass: rows that resolved values must also pass type/range
	// checks, and a single failure fails the entire batch.
	for _, record := range records {
		if err := checkRecord(record); err != nil {
			return nil, &ParseError{Err: err}
		}
	}

	return records, nil
}

// readCSV consumes the buffer row by row.
func readCSV(data []byte) ([]map[string]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		row := make(map[string]string)
		for i, value := range record {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// readExcel reads the first worksheet. Empty cells are omitted from the row
// map, matching how sparse spreadsheet rows present missing values.
func readExcel(data []byte) ([]map[string]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in workbook")
	}

	excelRows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(excelRows) == 0 {
		return nil, nil
	}

	headers := excelRows[0]
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
	}

	var rows []map[string]string
	for _, excelRow := range excelRows[1:] {
		row := make(map[string]string)
		for i, value := range excelRow {
			value = strings.TrimSpace(value)
			if i < len(headers) && value != "" {
				row[headers[i]] = value
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// extractRecord resolves the three required fields against the alias lists.
// A row missing any of them is reported as not ok and dropped by the caller.
func extractRecord(row map[string]string) (models.ProductInput, bool) {
	name, ok := resolveText(row, nameAliases)
	if !ok {
		return models.ProductInput{}, false
	}
	code, ok := resolveText(row, codeAliases)
	if !ok {
		return models.ProductInput{}, false
	}
	rawPrice, ok := resolveText(row, priceAliases)
	if !ok {
		return models.ProductInput{}, false
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(rawPrice), 64)
	if err != nil {
		// Resolution succeeded but the value is unusable; keep the row so
		// the second pass fails the batch instead of dropping it quietly.
		price = math.NaN()
	}

	return models.ProductInput{
		Name:        strings.TrimSpace(name),
		ProductCode: strings.TrimSpace(code),
		Price:       price,
	}, true
}

// resolveText returns the first non-empty value among the aliases. An empty
// cell is a resolution failure even when the column exists, so the row drops;
// only values that resolved and then fail type or range checks abort.
func resolveText(row map[string]string, aliases []string) (string, bool) {
	for _, alias := range aliases {
		if value := row[alias]; value != "" {
			return value, true
		}
	}
	return "", false
}

func checkRecord(record models.ProductInput) error {
	if record.Name == "" {
		return fmt.Errorf("missing required field 'name' in row data")
	}
	if record.ProductCode == "" {
		return fmt.Errorf("missing required field 'productCode' in row data")
	}
	if math.IsNaN(record.Price) || record.Price == 0 {
		return fmt.Errorf("missing required field 'price' in row data")
	}
	if record.Price < 0 {
		return fmt.Errorf("invalid price value: %v. Price must be a positive number", record.Price)
	}
	return nil
}
