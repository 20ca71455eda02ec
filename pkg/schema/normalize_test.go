package schema

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		native string
		want   string
	}{
		{"int", TypeInteger},
		{"INT", TypeInteger},
		{"bigint", TypeInteger},
		{"tinyint(1)", TypeInteger},
		{"int64", TypeInteger},
		{"float", TypeFloat},
		{"double precision", TypeFloat},
		{"NUMERIC(10,2)", TypeFloat},
		{"real", TypeFloat},
		{"date", TypeDate},
		{"DATETIME", TypeDate},
		{"timestamp", TypeDate},
		{"bool", TypeBoolean},
		{"BOOLEAN", TypeBoolean},
		{"varchar(255)", TypeText},
		{"text", TypeText},
		{"blob", TypeText},
		{"", TypeText},
	}

	for _, tt := range tests {
		t.Run(tt.native, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeType(tt.native))
		})
	}
}

// A native string matching several rules resolves per the documented
// match order: int beats date, date beats bool.
func TestNormalizeTypeFirstMatchWins(t *testing.T) {
	assert.Equal(t, TypeInteger, NormalizeType("interval_date"))
	assert.Equal(t, TypeDate, NormalizeType("datebool"))
	assert.Equal(t, TypeInteger, NormalizeType("point_int_real"))
}

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Order Date", "order_date"},
		{"  Total Amount  ", "total_amount"},
		{"region", "region"},
		{"2024 sales", "col_2024_sales"},
		{"price ($)", "price____"},
		{"Üñïçödé", "_____d_"},
		{"", "_"},
		{"already_normal_1", "already_normal_1"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeColumnName(tt.raw))
		})
	}
}

func TestNormalizeColumnNameShapeAndIdempotence(t *testing.T) {
	shape := regexp.MustCompile(`^[a-z0-9_]+$`)
	inputs := []string{"Order Date", "2024!", "a-b-c", "X", "  spaced out  ", "price ($)"}
	for _, raw := range inputs {
		once := NormalizeColumnName(raw)
		assert.Regexp(t, shape, once)
		assert.Equal(t, once, NormalizeColumnName(once), "not idempotent for %q", raw)
	}
}
