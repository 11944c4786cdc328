package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr bool
	}{
		{"histogram", Spec{Mark: MarkHistogram, X: Encoding{Field: "avg_oc"}}, false},
		{"scatter with fit", Spec{Mark: MarkPoint, X: Encoding{Field: "observed"}, Y: Encoding{Field: "predicted"}, Regression: true}, false},
		{"missing x", Spec{Mark: MarkBar}, true},
		{"point without y", Spec{Mark: MarkPoint, X: Encoding{Field: "observed"}}, true},
		{"histogram with fit", Spec{Mark: MarkHistogram, X: Encoding{Field: "avg_oc"}, Regression: true}, true},
		{"inverted domain", Spec{Mark: MarkHistogram, X: Encoding{Field: "avg_oc", Domain: &Domain{Min: 10, Max: 1}}}, true},
		{"unknown mark", Spec{Mark: "area", X: Encoding{Field: "avg_oc"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEncodingLabelAndBins(t *testing.T) {
	assert.Equal(t, "avg_oc", Encoding{Field: "avg_oc"}.Label())
	assert.Equal(t, "Organic carbon", Encoding{Field: "avg_oc", Title: "Organic carbon"}.Label())
	assert.Equal(t, DefaultBins, Spec{}.BinCount())
	assert.Equal(t, 7, Spec{Bins: 7}.BinCount())
	assert.InDelta(t, 7.0, Line{Slope: 2, Intercept: 1}.At(3), 1e-12)
}
