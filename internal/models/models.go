package models

import (
	"fmt"
	"strings"
	"time"
)

// PayrollRow is one data line of the payroll CSV after header mapping.
// Fields are carried as raw strings; validation happens in dispatch so that a
// bad row is reported instead of aborting the batch.
type PayrollRow struct {
	Line     int
	SlackID  string
	Name     string
	Salary   string
	Absences string
	Holidays string
}

// Payment is a validated row, ready to be rendered and sent.
type Payment struct {
	SlackID  string
	Name     string
	Salary   float64
	Absences int
	Holidays int
}

// AppError records a single row failure without interrupting the batch.
type AppError struct {
	Line    int
	SlackID string
	Name    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	who := e.SlackID
	if who == "" {
		who = fmt.Sprintf("line %d", e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", who, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", who, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// DeliveryReport is the end-of-batch summary delivered to the triggering
// channel. It lives only for the duration of one dispatch run.
type DeliveryReport struct {
	BatchID   string
	Total     int
	Sent      int
	Details   []string
	Failures  []AppError
	StartedAt time.Time
}

func (r *DeliveryReport) Failed() int { return len(r.Failures) }

// Summary renders the short form: overall counts plus one line per failure.
func (r *DeliveryReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mensajes enviados: %d/%d", r.Sent, r.Total)
	if len(r.Failures) > 0 {
		fmt.Fprintf(&b, "\nFallidos: %d", len(r.Failures))
		for i := range r.Failures {
			fmt.Fprintf(&b, "\n• %s", r.Failures[i].Error())
		}
	}
	return b.String()
}

// Detail renders the full form: summary counts followed by the per-recipient
// detail lines. Used for the attached report when the batch is large.
func (r *DeliveryReport) Detail() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reporte de pagos %s\n", r.BatchID)
	fmt.Fprintf(&b, "Mensajes enviados: %d/%d\n\n", r.Sent, r.Total)
	for _, line := range r.Details {
		fmt.Fprintf(&b, "%s\n", line)
	}
	if len(r.Failures) > 0 {
		fmt.Fprintf(&b, "\nFallidos (%d):\n", len(r.Failures))
		for i := range r.Failures {
			fmt.Fprintf(&b, "• %s\n", r.Failures[i].Error())
		}
	}
	return b.String()
}
