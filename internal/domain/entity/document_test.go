package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestDocumentKind_TextosDeMovimiento(t *testing.T) {
	assert.Equal(t, "Receipt #42", entity.KindReceipt.MoveReason("42"))
	assert.Equal(t, "Adjustment #a1", entity.KindAdjustment.MoveReason("a1"))
	assert.Equal(t, "TRANSFER#7", entity.KindTransfer.MoveReference("7"))
	assert.False(t, entity.DocumentKind("invoice").Valid())
}

func TestDocumentStatus_Clasificacion(t *testing.T) {
	for _, s := range []entity.DocumentStatus{entity.StatusDraft, entity.StatusWaiting, entity.StatusReady} {
		assert.True(t, s.Pending(), s)
		assert.False(t, s.Terminal(), s)
	}
	assert.True(t, entity.StatusDone.Terminal())
	assert.True(t, entity.StatusCancelled.Terminal())
	assert.False(t, entity.StatusDone.Pending())
}

func TestQuantKey_String(t *testing.T) {
	loc := "l1"
	assert.Equal(t, "p|w|", entity.QuantKey{ProductID: "p", WarehouseID: "w"}.String())
	assert.Equal(t, "p|w|l1", entity.QuantKey{ProductID: "p", WarehouseID: "w", LocationID: &loc}.String())
}
