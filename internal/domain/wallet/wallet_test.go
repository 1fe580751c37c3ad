package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/barberbook/barberbook-api/internal/httperr"
)

func TestConvertCoins(t *testing.T) {
	cases := []struct {
		coins    int64
		credited int64
	}{
		{1000, 5},
		{2000, 10},
		{1999, 9},  // floored, the remainder is not refunded
		{200, 1},   // smallest convertible amount
		{123456, 617},
	}

	for _, tc := range cases {
		credited, err := ConvertCoins(tc.coins)
		assert.NoError(t, err, "coins=%d", tc.coins)
		assert.Equal(t, tc.credited, credited, "coins=%d", tc.coins)
	}
}

func TestConvertCoins_Rejected(t *testing.T) {
	for _, coins := range []int64{0, -1, -1000, 199, 1} {
		_, err := ConvertCoins(coins)
		assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidAmount),
			"coins=%d should be rejected, got %v", coins, err)
	}
}
