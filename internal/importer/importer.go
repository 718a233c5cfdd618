// Package importer turns an uploaded participant sheet into a validated
// participant set. Problems are reported per row and never abort the import,
// except for file-level problems (unsupported type, unreadable file, missing
// header) which yield a single row-0 error and no participants.
package importer

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"luckydraw/internal/models"
)

// headerScanRows bounds how far down the header row is searched for.
const headerScanRows = 10

// maxExactFloat is the largest integer a float64 holds exactly.
const maxExactFloat = 1 << 53

// integralDecimal limits the float fallback to plain decimals; exponent
// forms like "1e3" are not ids.
var integralDecimal = regexp.MustCompile(`^[+-]?\d+\.\d+$`)

// Parse reads the file named filename from r and validates its rows.
func Parse(filename string, r io.Reader) models.ParseResult {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "csv":
		rows, err = readCSV(r)
	case "xlsx":
		rows, err = readXLSX(r)
	default:
		return fileError("Unsupported file type")
	}
	if err != nil {
		return fileError(fmt.Sprintf("Error reading file: %v", err))
	}
	return ParseRows(rows)
}

// ParseRows validates already materialized rows.
func ParseRows(rows [][]string) models.ParseResult {
	header := findHeader(rows)
	if header < 0 {
		return fileError("Could not find header row with columns: N, Name. Please ensure your file has these exact headers.")
	}

	result := models.ParseResult{
		Participants: []models.Participant{},
		Errors:       []models.ImportError{},
	}
	seen := make(map[int]struct{})

	for i := header + 1; i < len(rows); i++ {
		rawN, rawName := cell(rows[i], 0), cell(rows[i], 1)
		if strings.TrimSpace(rawN) == "" && strings.TrimSpace(rawName) == "" {
			continue
		}
		row := i + 1

		n, ok := parseInt(rawN)
		if !ok {
			result.Errors = append(result.Errors, models.ImportError{
				Row:     row,
				Message: fmt.Sprintf("N is required and must be integer (found: %s)", rawN),
			})
			continue
		}
		if _, dup := seen[n]; dup {
			result.Errors = append(result.Errors, models.ImportError{
				Row:     row,
				Message: fmt.Sprintf("Duplicate N: %d", n),
			})
			continue
		}
		name := strings.TrimSpace(rawName)
		if name == "" {
			result.Errors = append(result.Errors, models.ImportError{
				Row:     row,
				Message: fmt.Sprintf("Name is required for N=%d", n),
			})
			continue
		}

		seen[n] = struct{}{}
		result.Participants = append(result.Participants, models.Participant{N: n, Name: name})
	}
	return result
}

// findHeader returns the index of the N/Name header row or -1.
func findHeader(rows [][]string) int {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		if len(rows[i]) < 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(rows[i][0]), "n") &&
			strings.EqualFold(strings.TrimSpace(rows[i][1]), "name") {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

// parseInt accepts plain integers and integral decimals such as "7.0",
// which spreadsheets produce for numeric cells.
func parseInt(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if !integralDecimal.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > maxExactFloat {
		return 0, false
	}
	return int(f), true
}

func fileError(msg string) models.ParseResult {
	return models.ParseResult{
		Participants: []models.Participant{},
		Errors:       []models.ImportError{{Row: 0, Message: msg}},
	}
}
