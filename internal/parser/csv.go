package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/payops/payday-bot/internal/models"
)

// Expected payroll columns. slack_id, nombre and sueldo are mandatory;
// faltas and feriados_trabajados default to zero downstream when absent.
const (
	ColSlackID  = "slack_id"
	ColName     = "nombre"
	ColSalary   = "sueldo"
	ColAbsences = "faltas"
	ColHolidays = "feriados_trabajados"
)

var requiredColumns = []string{ColSlackID, ColName, ColSalary}

// ReadFile parses a payroll CSV into raw rows. The header is validated up
// front: any missing required column aborts the read with a
// *models.MalformedInputError before a single row is returned. A corrupt data
// line also aborts the whole read; recovering half a payroll is worse than
// asking for a re-upload.
func ReadFile(filePath string) ([]models.PayrollRow, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	return Read(file)
}

func Read(r io.Reader) ([]models.PayrollRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, &models.MalformedInputError{Missing: requiredColumns}
		}
		return nil, fmt.Errorf("failed to read header from CSV: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &models.MalformedInputError{Missing: missing}
	}

	var rows []models.PayrollRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read record at line %d: %w", line, err)
		}

		rows = append(rows, models.PayrollRow{
			Line:     line,
			SlackID:  field(record, columns, ColSlackID),
			Name:     field(record, columns, ColName),
			Salary:   field(record, columns, ColSalary),
			Absences: field(record, columns, ColAbsences),
			Holidays: field(record, columns, ColHolidays),
		})
	}

	return rows, nil
}

func field(record []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
