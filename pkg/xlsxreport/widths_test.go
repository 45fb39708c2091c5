package xlsxreport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnWidths(t *testing.T) {
	cfg := WidthConfig{Min: 10, Max: 60, Padding: 3}

	tests := []struct {
		name     string
		headers  []string
		rows     [][]interface{}
		expected []float64
	}{
		{
			name:     "clamped to minimum",
			headers:  []string{"ID"},
			rows:     [][]interface{}{{1}},
			expected: []float64{10},
		},
		{
			name:     "longest cell wins",
			headers:  []string{"IDPEL"},
			rows:     [][]interface{}{{"512345678901"}, {"5"}},
			expected: []float64{15},
		},
		{
			name:     "header longer than cells",
			headers:  []string{"NAMA PELANGGAN LENGKAP"},
			rows:     [][]interface{}{{"X"}},
			expected: []float64{25},
		},
		{
			name:     "clamped to maximum",
			headers:  []string{"ALAMAT"},
			rows:     [][]interface{}{{strings.Repeat("x", 100)}},
			expected: []float64{60},
		},
		{
			name:     "ragged rows and nil cells",
			headers:  []string{"A"},
			rows:     [][]interface{}{{nil, "seventeen chars!!"}},
			expected: []float64{10, 20},
		},
		{
			name:     "multibyte counted as characters",
			headers:  []string{"ÄÄÄÄÄÄÄÄÄÄ"},
			expected: []float64{13},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ColumnWidths(tt.headers, tt.rows, cfg))
		})
	}
}
