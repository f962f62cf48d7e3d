package dispatch

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/payops/payday-bot/internal/models"
	"github.com/payops/payday-bot/internal/render"
)

// Messenger is the outbound edge of the dispatcher. The Slack implementation
// lives in internal/messenger; tests substitute a mock.
type Messenger interface {
	SendDirect(ctx context.Context, userID string, msg render.Message) (messageID string, err error)
	PostChannel(ctx context.Context, channelID, text string) error
	UploadReport(ctx context.Context, channelID, filename, content string) error
}

// Tracker registers successful sends for later reaction correlation.
type Tracker interface {
	Track(messageID, recipientID, name string)
}

type Config struct {
	Render          render.Config
	InlineThreshold int
}

// Dispatcher walks payroll rows one by one: validate, render, send, record.
// Sends are strictly sequential so a big payroll cannot trip Slack's rate
// limits; a single bad row never aborts the batch.
type Dispatcher struct {
	messenger Messenger
	tracker   Tracker
	config    Config
	logger    *zap.SugaredLogger
}

func NewDispatcher(messenger Messenger, tracker Tracker, cfg Config, logger *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{
		messenger: messenger,
		tracker:   tracker,
		config:    cfg,
		logger:    logger,
	}
}

var slackIDPattern = regexp.MustCompile(`^[UW][A-Z0-9]{4,}$`)

// Process dispatches every row and delivers the resulting report to
// reportChannel. Row failures accumulate in the report; only the report is
// returned, never an error.
func (d *Dispatcher) Process(ctx context.Context, rows []models.PayrollRow, reportChannel string) models.DeliveryReport {
	report := models.DeliveryReport{
		BatchID:   uuid.NewString(),
		Total:     len(rows),
		StartedAt: time.Now(),
	}
	d.logger.Infow("starting dispatch", "batch_id", report.BatchID, "rows", len(rows))

	for _, row := range rows {
		payment, appErr := validateRow(row)
		if appErr != nil {
			d.logger.Warnw("skipping invalid row", "line", row.Line, "reason", appErr.Message)
			report.Failures = append(report.Failures, *appErr)
			continue
		}

		msg, err := render.Render(payment.Name, payment.Salary, payment.Absences, payment.Holidays, d.config.Render)
		if err != nil {
			report.Failures = append(report.Failures, models.AppError{
				Line: row.Line, SlackID: payment.SlackID, Name: payment.Name,
				Message: "no se pudo generar el mensaje", Err: err,
			})
			continue
		}

		messageID, err := d.messenger.SendDirect(ctx, payment.SlackID, msg)
		if err != nil {
			d.logger.Warnw("send failed", "slack_id", payment.SlackID, "error", err)
			report.Failures = append(report.Failures, models.AppError{
				Line: row.Line, SlackID: payment.SlackID, Name: payment.Name,
				Message: "no se pudo enviar el mensaje", Err: err,
			})
			continue
		}

		d.tracker.Track(messageID, payment.SlackID, payment.Name)
		report.Sent++
		report.Details = append(report.Details, fmt.Sprintf("✔ %s (%s)", payment.Name, payment.SlackID))
	}

	d.deliverReport(ctx, &report, reportChannel)
	d.logger.Infow("dispatch finished",
		"batch_id", report.BatchID, "sent", report.Sent, "failed", report.Failed())
	return report
}

// deliverReport posts the report inline when it is small and as an attached
// document otherwise. Delivery is best-effort; a failure here is only logged.
func (d *Dispatcher) deliverReport(ctx context.Context, report *models.DeliveryReport, channel string) {
	if len(report.Details) <= d.config.InlineThreshold {
		text := report.Summary()
		if len(report.Details) > 0 {
			text += "\n\n" + strings.Join(report.Details, "\n")
		}
		if err := d.messenger.PostChannel(ctx, channel, text); err != nil {
			d.logger.Errorw("failed to post delivery report", "channel", channel, "error", err)
		}
		return
	}

	if err := d.messenger.PostChannel(ctx, channel, report.Summary()); err != nil {
		d.logger.Errorw("failed to post delivery report summary", "channel", channel, "error", err)
	}
	filename := fmt.Sprintf("reporte-pagos-%s.txt", report.BatchID)
	if err := d.messenger.UploadReport(ctx, channel, filename, report.Detail()); err != nil {
		d.logger.Errorw("failed to upload delivery report", "channel", channel, "error", err)
	}
}

// validateRow turns a raw CSV row into a Payment or explains why it cannot.
func validateRow(row models.PayrollRow) (models.Payment, *models.AppError) {
	if !slackIDPattern.MatchString(row.SlackID) {
		return models.Payment{}, &models.AppError{
			Line: row.Line, SlackID: row.SlackID, Name: row.Name,
			Message: "slack_id faltante o inválido",
		}
	}

	salary, err := strconv.ParseFloat(row.Salary, 64)
	if err != nil || math.IsNaN(salary) || math.IsInf(salary, 0) || salary <= 0 {
		return models.Payment{}, &models.AppError{
			Line: row.Line, SlackID: row.SlackID, Name: row.Name,
			Message: fmt.Sprintf("sueldo inválido: '%s'", row.Salary),
		}
	}

	return models.Payment{
		SlackID:  row.SlackID,
		Name:     row.Name,
		Salary:   salary,
		Absences: parseCount(row.Absences),
		Holidays: parseCount(row.Holidays),
	}, nil
}

// parseCount defaults to zero when the column is absent or unparseable.
func parseCount(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
