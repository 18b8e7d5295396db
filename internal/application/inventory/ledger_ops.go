package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// upsertBalance aplica delta a la cuenta key dentro de la transacción del caller.
// Bloquea la fila, rechaza saldos negativos y crea la cuenta si no existía.
func upsertBalance(ctx context.Context, quants repository.QuantRepository, key entity.QuantKey, delta decimal.Decimal, now time.Time) (*entity.StockQuant, error) {
	q, err := quants.GetForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}
	if q == nil {
		if _, err := inventory.ApplyDelta(key, decimal.Zero, delta); err != nil {
			return nil, err
		}
		return quants.Create(ctx, &entity.StockQuant{
			ID:          uuid.New().String(),
			ProductID:   key.ProductID,
			WarehouseID: key.WarehouseID,
			LocationID:  key.LocationID,
			Quantity:    delta,
			UpdatedAt:   now,
		})
	}

	next, err := inventory.ApplyDelta(key, q.Quantity, delta)
	if err != nil {
		return nil, err
	}
	q.Quantity = next
	q.UpdatedAt = now
	if err := quants.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// moveInput campos variables de un movimiento; el resto los fija recordMove.
type moveInput struct {
	kind        entity.DocumentKind
	documentID  string
	productID   string
	quantity    decimal.Decimal
	unitMeasure string
	from        *entity.QuantKey
	to          *entity.QuantKey
	createdBy   *string
	at          time.Time
}

// recordMove inserta un movimiento inmutable con estado done.
func recordMove(ctx context.Context, moves repository.MoveRepository, in moveInput) (*entity.StockMove, error) {
	m := &entity.StockMove{
		ID:           uuid.New().String(),
		ProductID:    in.productID,
		Quantity:     in.quantity,
		UnitMeasure:  in.unitMeasure,
		Reason:       in.kind.MoveReason(in.documentID),
		Reference:    in.kind.MoveReference(in.documentID),
		DocumentType: in.kind,
		DocumentID:   in.documentID,
		CreatedBy:    in.createdBy,
		Status:       entity.MoveStatusDone,
		CreatedAt:    in.at,
	}
	if in.from != nil {
		m.FromWarehouseID = strPtr(in.from.WarehouseID)
		m.FromLocationID = in.from.LocationID
	}
	if in.to != nil {
		m.ToWarehouseID = strPtr(in.to.WarehouseID)
		m.ToLocationID = in.to.LocationID
	}
	if err := moves.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
