package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

func TestInsufficientStockError_EsSentinel(t *testing.T) {
	var err error = &domain.InsufficientStockError{
		ProductID:   "p1",
		WarehouseID: "w1",
		Available:   decimal.NewFromInt(2),
		Requested:   decimal.NewFromInt(5),
	}
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "p1")

	var ise *domain.InsufficientStockError
	assert.True(t, errors.As(err, &ise))
	assert.Equal(t, "w1", ise.WarehouseID)
}

func TestStoreFailure_EnvuelveSoloInfraestructura(t *testing.T) {
	infra := errors.New("connection reset")
	wrapped := domain.StoreFailure(infra)
	assert.ErrorIs(t, wrapped, domain.ErrStoreFailure)
	assert.ErrorIs(t, wrapped, infra)

	notFound := domain.StoreFailure(domain.ErrNotFound)
	assert.Same(t, domain.ErrNotFound, notFound)
	assert.False(t, errors.Is(notFound, domain.ErrStoreFailure))

	assert.ErrorIs(t, domain.StoreFailure(context.DeadlineExceeded), context.DeadlineExceeded)
	assert.Nil(t, domain.StoreFailure(nil))
}

func TestTransitionError_MensajeCancelado(t *testing.T) {
	err := &domain.TransitionError{DocumentID: "d1", Kind: "receipt", From: "cancelled"}
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Contains(t, err.Error(), "cancelado")
}
