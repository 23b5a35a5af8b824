package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "₡25.000,00", Format(decimal.NewFromInt(25000)))
	assert.Equal(t, "₡1.234.567,50", Format(decimal.RequireFromString("1234567.5")))
	assert.Equal(t, "₡0,00", Format(decimal.Zero))
}
