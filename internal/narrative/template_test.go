package narrative

import (
	"testing"

	"gonarrate/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstitute(t *testing.T) {
	values := map[string]string{"sites": "1,204", "mean_oc": "2.31"}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"plain", "no placeholders here", "no placeholders here"},
		{"single", "{sites} sites", "1,204 sites"},
		{"several", "{sites} sites averaging {mean_oc}%", "1,204 sites averaging 2.31%"},
		{"padded name", "{ sites }", "1,204"},
		{"escaped braces", "{{sites}} is literal, {sites} is not", "{sites} is literal, 1,204 is not"},
		{"lone closing brace", "a } b", "a } b"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Substitute(tt.template, values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubstituteUnknownPlaceholder(t *testing.T) {
	_, err := Substitute("mean is {mean}", map[string]string{"mean_oc": "2"})
	assert.ErrorIs(t, err, core.ErrUnknownPlaceholder)
	assert.Contains(t, err.Error(), "{mean}")
}

func TestSubstituteUnterminated(t *testing.T) {
	_, err := Substitute("oops {sites", map[string]string{"sites": "1"})
	assert.Error(t, err)
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("{a} and {{b}} and {c} then {a}")
	assert.Equal(t, []string{"a", "c"}, got)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatThousands(1234567))
	assert.Equal(t, "999", FormatThousands(999))
	assert.Equal(t, "0", FormatThousands(0))
	assert.Equal(t, "2.00", FormatFixed(2, 2))
	assert.Equal(t, "84.7", FormatFixed(254.0/3, 1))
	assert.Equal(t, "3", FormatFixed(3.14159, -1))
	assert.Equal(t, "1,234.50", FormatGrouped(1234.5, 2))
}
