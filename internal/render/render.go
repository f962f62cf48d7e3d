package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/slack-go/slack"

	"github.com/payops/payday-bot/internal/models"
)

// Config carries the opaque strings the renderer embeds verbatim. Email
// addresses are not validated; they come straight from configuration.
type Config struct {
	PayrollEmail string
	CCEmail      string
	ConfirmEmoji string
}

// Message is the immutable payload for one recipient. Text is the fallback
// rendering, Blocks the rich one; both are derived from the same inputs.
type Message struct {
	Text   string
	Blocks []slack.Block
}

// Render builds the payment summary for one recipient. Pure: same inputs,
// same message. The only rejected input is a non-finite salary; everything
// else was validated by the caller.
func Render(name string, salary float64, absences, holidays int, cfg Config) (Message, error) {
	if math.IsNaN(salary) || math.IsInf(salary, 0) {
		return Message{}, models.ErrInvalidSalary
	}

	emoji := cfg.ConfirmEmoji
	if emoji == "" {
		emoji = "white_check_mark"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "¡Hola %s! :wave:\n", name)
	fmt.Fprintf(&b, "Ya se realizó el pago de tu sueldo: *$%.2f*\n", salary)
	b.WriteString(absencesPhrase(absences) + "\n")
	b.WriteString(holidaysPhrase(holidays) + "\n")
	fmt.Fprintf(&b, "Cualquier consulta escribí a %s (cc: %s).\n", cfg.PayrollEmail, cfg.CCEmail)
	fmt.Fprintf(&b, "Reaccioná con :%s: para confirmar la recepción.", emoji)

	text := b.String()
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, "Resumen de pago", true, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
	}

	return Message{Text: text, Blocks: blocks}, nil
}

func absencesPhrase(n int) string {
	switch {
	case n == 0:
		return "No tuviste faltas este mes."
	case n == 1:
		return "Tuviste 1 falta este mes."
	default:
		return fmt.Sprintf("Tuviste %d faltas este mes.", n)
	}
}

func holidaysPhrase(n int) string {
	switch {
	case n == 0:
		return "No trabajaste feriados este mes."
	case n == 1:
		return "Trabajaste 1 feriado este mes."
	default:
		return fmt.Sprintf("Trabajaste %d feriados este mes.", n)
	}
}
