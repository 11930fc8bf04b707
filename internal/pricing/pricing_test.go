package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thelistcl/marketplace-api/internal/pricing"
)

func TestApplyServiceFee(t *testing.T) {
	cases := []struct {
		hostPrice int64
		want      int64
	}{
		{45000, 49500},
		{0, 0},
		{1, 1},     // fee rounds 0.1 -> 0
		{5, 6},     // fee rounds 0.5 -> 1 (half up)
		{15, 17},   // fee rounds 1.5 -> 2
		{9990, 10989},
		{120000, 132000},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, pricing.ApplyServiceFee(c.hostPrice), "host price %d", c.hostPrice)
	}
}

// The fee-then-add convention must hold exactly for every price, not
// just when rounding happens to line up.
func TestFeeIdentity(t *testing.T) {
	for p := int64(0); p < 2000; p++ {
		assert.Equal(t, pricing.ApplyServiceFee(p), p+pricing.CalcServiceFee(p), "price %d", p)
	}
	for _, p := range []int64{45000, 99999, 123456, 1000000, 98765432} {
		assert.Equal(t, pricing.ApplyServiceFee(p), p+pricing.CalcServiceFee(p))
	}
}

func TestTotalMultipliesUnitPrice(t *testing.T) {
	for _, p := range []int64{45000, 333, 15, 1} {
		for qty := uint32(1); qty <= 8; qty++ {
			assert.Equal(t, pricing.ApplyServiceFee(p)*int64(qty), pricing.Total(p, qty))
		}
	}
}

func TestFormatCLP(t *testing.T) {
	cases := []struct {
		amount int64
		want   string
	}{
		{49500, "$49.500"},
		{0, "$0"},
		{999, "$999"},
		{1000, "$1.000"},
		{45000, "$45.000"},
		{1234567, "$1.234.567"},
		{-49500, "-$49.500"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, pricing.FormatCLP(c.amount))
	}
}
