package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payops/payday-bot/internal/models"
)

func testConfig() Config {
	return Config{
		PayrollEmail: "pagos@empresa.com",
		CCEmail:      "rrhh@empresa.com",
		ConfirmEmoji: "white_check_mark",
	}
}

func TestRender(t *testing.T) {
	t.Run("should use the negative phrasing for zero absences and holidays", func(t *testing.T) {
		msg, err := Render("Ana", 100, 0, 0, testConfig())

		require.NoError(t, err)
		assert.Contains(t, msg.Text, "No tuviste faltas este mes.")
		assert.Contains(t, msg.Text, "No trabajaste feriados este mes.")
	})

	t.Run("should use the singular phrasing for exactly one", func(t *testing.T) {
		msg, err := Render("Ana", 100, 1, 1, testConfig())

		require.NoError(t, err)
		assert.Contains(t, msg.Text, "Tuviste 1 falta este mes.")
		assert.Contains(t, msg.Text, "Trabajaste 1 feriado este mes.")
		assert.NotContains(t, msg.Text, "faltas este mes")
	})

	t.Run("should use the plural phrasing with the literal count", func(t *testing.T) {
		msg, err := Render("Ana", 100, 3, 2, testConfig())

		require.NoError(t, err)
		assert.Contains(t, msg.Text, "Tuviste 3 faltas este mes.")
		assert.Contains(t, msg.Text, "Trabajaste 2 feriados este mes.")
	})

	t.Run("should apply the rule to absences and holidays independently", func(t *testing.T) {
		msg, err := Render("Leo", 200, 0, 5, testConfig())

		require.NoError(t, err)
		assert.Contains(t, msg.Text, "No tuviste faltas este mes.")
		assert.Contains(t, msg.Text, "Trabajaste 5 feriados este mes.")
	})

	t.Run("should embed the configured emails verbatim", func(t *testing.T) {
		cfg := testConfig()
		cfg.PayrollEmail = "not-even-an-email"
		cfg.CCEmail = "cc@x"

		msg, err := Render("Ana", 100, 0, 0, cfg)

		require.NoError(t, err)
		assert.Contains(t, msg.Text, "not-even-an-email")
		assert.Contains(t, msg.Text, "(cc: cc@x)")
	})

	t.Run("should include the greeting and formatted salary", func(t *testing.T) {
		msg, err := Render("Ana", 1234.5, 0, 0, testConfig())

		require.NoError(t, err)
		assert.Contains(t, msg.Text, "¡Hola Ana!")
		assert.Contains(t, msg.Text, "*$1234.50*")
	})

	t.Run("should ask for the configured confirmation emoji", func(t *testing.T) {
		cfg := testConfig()
		cfg.ConfirmEmoji = "thumbsup"

		msg, err := Render("Ana", 100, 0, 0, cfg)

		require.NoError(t, err)
		assert.Contains(t, msg.Text, ":thumbsup:")
	})

	t.Run("should fall back to the checkmark when no emoji is configured", func(t *testing.T) {
		cfg := testConfig()
		cfg.ConfirmEmoji = ""

		msg, err := Render("Ana", 100, 0, 0, cfg)

		require.NoError(t, err)
		assert.Contains(t, msg.Text, ":white_check_mark:")
	})

	t.Run("should produce blocks alongside the fallback text", func(t *testing.T) {
		msg, err := Render("Ana", 100, 0, 0, testConfig())

		require.NoError(t, err)
		assert.Len(t, msg.Blocks, 2)
	})

	t.Run("should reject a non-finite salary", func(t *testing.T) {
		for _, salary := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			_, err := Render("Ana", salary, 0, 0, testConfig())
			assert.ErrorIs(t, err, models.ErrInvalidSalary)
		}
	})

	t.Run("should be a pure function of its inputs", func(t *testing.T) {
		a, err := Render("Ana", 100, 2, 1, testConfig())
		require.NoError(t, err)
		b, err := Render("Ana", 100, 2, 1, testConfig())
		require.NoError(t, err)

		assert.Equal(t, a.Text, b.Text)
	})
}
