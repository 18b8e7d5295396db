package inventory_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

var key = entity.QuantKey{ProductID: "p1", WarehouseID: "w1"}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestApplyDelta(t *testing.T) {
	cases := []struct {
		name    string
		current string
		delta   string
		want    string
		wantErr bool
	}{
		{"entrada sobre cero", "0", "10", "10", false},
		{"salida parcial", "10", "-4", "6", false},
		{"salida exacta deja cero", "6", "-6", "0", false},
		{"decimales exactos", "0.3", "-0.1", "0.2", false},
		{"salida excesiva", "5", "-5.0001", "", true},
		{"negativo sobre cuenta nueva", "0", "-1", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := inventory.ApplyDelta(key, d(tc.current), d(tc.delta))
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInsufficientStock)
				var ise *domain.InsufficientStockError
				require.True(t, errors.As(err, &ise))
				assert.Equal(t, "p1", ise.ProductID)
				assert.True(t, ise.Available.Equal(d(tc.current)))
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(d(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestStockValue_IgnoraNoPositivos(t *testing.T) {
	v := inventory.StockValue([]inventory.ValuedQuantity{
		{Quantity: d("2"), Price: d("10.50")},
		{Quantity: d("0"), Price: d("99")},
		{Quantity: d("3"), Price: d("1")},
	})
	assert.True(t, v.Equal(d("24")), v.String())
}

func TestSuggestedOrderQty(t *testing.T) {
	maxQty := d("50")
	assert.True(t, inventory.SuggestedOrderQty(d("4"), d("10"), &maxQty).Equal(d("46")))
	assert.True(t, inventory.SuggestedOrderQty(d("4"), d("10"), nil).Equal(d("6")))
	assert.True(t, inventory.SuggestedOrderQty(d("12"), d("10"), nil).IsZero())
}

func TestFitsScale(t *testing.T) {
	assert.True(t, inventory.FitsScale(d("12.3456")))
	assert.True(t, inventory.FitsScale(d("1.50000")))
	assert.True(t, inventory.FitsScale(d("-3")))
	assert.False(t, inventory.FitsScale(d("0.00004")))
	assert.False(t, inventory.FitsScale(d("-1.23456")))
}
