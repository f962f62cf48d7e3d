package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSalary is returned by the renderer when the salary is not a
// finite number. Positive-value validation happens earlier, in dispatch.
var ErrInvalidSalary = errors.New("salary must be a finite number")

// ErrDuplicateFile marks a file whose processing was skipped by the guard.
var ErrDuplicateFile = errors.New("file already processed")

// MalformedInputError means the CSV header is missing required columns. The
// read aborts before yielding any rows.
type MalformedInputError struct {
	Missing []string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("payroll file is missing required columns: %s", strings.Join(e.Missing, ", "))
}
