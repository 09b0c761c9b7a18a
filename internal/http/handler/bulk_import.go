package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/cherrycherry3/crt-backend/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	extCSV  = ".csv"
	extXLSX = ".xlsx"

	colName           = "name"
	colEmail          = "email"
	colRollNumber     = "roll_number"
	colPhone          = "phone"
	colAcademicYearID = "academic_year_id"
	colBranchID       = "branch_id"
	colPassword       = "password"
)

var requiredBulkColumns = []string{
	colName, colEmail, colRollNumber, colPhone, colAcademicYearID, colBranchID, colPassword,
}

// bulkRow is one data line keyed by lower-cased header. Line is the 1-based
// position in the file, counting the header.
type bulkRow struct {
	Line   int
	Values map[string]string
}

func (r bulkRow) get(column string) string {
	return strings.TrimSpace(r.Values[column])
}

// intValue accepts "3" as well as spreadsheet renderings such as "3.0".
func (r bulkRow) intValue(column string) (int, error) {
	raw := r.get(column)
	if raw == "" {
		return 0, fmt.Errorf(msgRowFieldRequired, column)
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf(msgInvalidRowIntFmt, column)
	}
	return int(f), nil
}

func isSupportedBulkFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case extCSV, extXLSX:
		return true
	default:
		return false
	}
}

// readBulkRows parses a CSV or XLSX upload. Blank lines are skipped.
func readBulkRows(filename string, r io.Reader) ([]bulkRow, error) {
	var records [][]string
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case extCSV:
		records, err = readCSV(r)
	case extXLSX:
		records, err = readXLSX(r)
	default:
		return nil, apperrors.BadRequest(msgUnsupportedBulkFile)
	}
	if err != nil {
		return nil, apperrors.BadRequest(msgUnreadableBulkFile)
	}
	if len(records) == 0 {
		return nil, apperrors.BadRequest(fmt.Sprintf(msgMissingColumnsFmt, strings.Join(requiredBulkColumns, ", ")))
	}

	header := make([]string, len(records[0]))
	present := make(map[string]bool, len(header))
	for i, h := range records[0] {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		header[i] = name
		present[name] = true
	}

	var missing []string
	for _, col := range requiredBulkColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.BadRequest(fmt.Sprintf(msgMissingColumnsFmt, strings.Join(missing, ", ")))
	}

	rows := make([]bulkRow, 0, len(records)-1)
	for i, record := range records[1:] {
		values := make(map[string]string, len(header))
		blank := true
		for j, cell := range record {
			if j >= len(header) {
				break
			}
			values[header[j]] = cell
			if strings.TrimSpace(cell) != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		rows = append(rows, bulkRow{Line: i + 2, Values: values})
	}

	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}
