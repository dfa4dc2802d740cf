package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RoomInfo is one row of an imported room schedule.
type RoomInfo struct {
	Code  string
	Name  string
	Notes string
}

// ScheduleResult holds the results of a room-schedule import.
type ScheduleResult struct {
	Rooms    []RoomInfo
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Code  int
	Name  int
	Notes int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"code":  {"code", "room", "room code", "room no", "room number", "id", "nr", "no", "number"},
	"name":  {"name", "room name", "label", "description", "desc", "title", "use", "function"},
	"notes": {"notes", "note", "comment", "comments", "remarks"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1 // Allow variable field counts

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		// Score: count how many rows have the same column count as the
		// first row. Only consider delimiters producing more than 1 column.
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Matching is case-insensitive against the known aliases for each role.
// Returns the mapping and true if a header was detected, or a default
// positional mapping (code, name, notes) and false if not.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Code: -1, Name: -1, Notes: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					switch role {
					case "code":
						if mapping.Code == -1 {
							mapping.Code = i
						}
					case "name":
						if mapping.Name == -1 {
							mapping.Name = i
						}
					case "notes":
						if mapping.Notes == -1 {
							mapping.Notes = i
						}
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Code: 0, Name: 1, Notes: 2}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportScheduleCSV imports a room schedule from a CSV file. The
// delimiter is auto-detected and columns are mapped by header names.
func ImportScheduleCSV(path string) ScheduleResult {
	result := ScheduleResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return scheduleFromRows(records, "Line", result.Warnings)
}

// ImportScheduleCSVFromReader imports a room schedule from a CSV reader
// with a known delimiter. Useful for testing.
func ImportScheduleCSVFromReader(reader io.Reader, delimiter rune) ScheduleResult {
	result := ScheduleResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return scheduleFromRows(records, "Line", nil)
}

// ImportScheduleExcel imports a room schedule from an Excel file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportScheduleExcel(path string) ScheduleResult {
	result := ScheduleResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	return scheduleFromRows(rows, "Row", nil)
}

// scheduleFromRows is the shared import logic for CSV and Excel data.
func scheduleFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ScheduleResult {
	result := ScheduleResult{Warnings: initialWarnings}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		if mapping.Code == -1 {
			result.Errors = append(result.Errors, "Required column not found in header: Room code")
			return result
		}
	}

	seen := map[string]bool{}
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		code := getCell(row, mapping.Code)
		if code == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Missing room code", rowLabel))
			continue
		}
		if seen[code] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: Duplicate room code %q", rowLabel, code))
			continue
		}
		seen[code] = true

		result.Rooms = append(result.Rooms, RoomInfo{
			Code:  code,
			Name:  getCell(row, mapping.Name),
			Notes: getCell(row, mapping.Notes),
		})
	}

	if len(result.Rooms) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No rooms found")
	}
	return result
}
