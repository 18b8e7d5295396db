package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Ledger aplica documentos de stock: en una sola transacción relee y bloquea el estado del
// documento, mueve los saldos línea a línea, registra un movimiento por línea y deja el
// documento en done. Cualquier error revierte todo.
type Ledger struct {
	tx  TxRunner
	log *logger.Logger
	now func() time.Time
}

// NewLedger construye el motor con el runner transaccional inyectado.
func NewLedger(tx TxRunner, log *logger.Logger) *Ledger {
	if log == nil {
		log = logger.Nop()
	}
	return &Ledger{tx: tx, log: log.Named("ledger"), now: time.Now}
}

// ApplyReceiptInput entrada de ApplyReceipt.
type ApplyReceiptInput struct {
	DocumentID   string
	Lines        []entity.ReceiptLine
	ActingUserID string
}

// ApplyDeliveryInput entrada de ApplyDelivery.
type ApplyDeliveryInput struct {
	DocumentID   string
	Lines        []entity.DeliveryLine
	ActingUserID string
}

// ApplyTransferInput entrada de ApplyTransfer.
type ApplyTransferInput struct {
	DocumentID      string
	Lines           []entity.TransferLine
	FromWarehouseID string
	ToWarehouseID   string
	ActingUserID    string
}

// ApplyAdjustmentInput entrada de ApplyAdjustment.
type ApplyAdjustmentInput struct {
	DocumentID   string
	Lines        []entity.AdjustmentLine
	ActingUserID string
}

// ApplyReceipt suma cada línea en (producto, bodega, ubicación) de destino.
func (l *Ledger) ApplyReceipt(ctx context.Context, in ApplyReceiptInput) (*entity.Receipt, error) {
	if err := validateReceiptLines(in.Lines); err != nil {
		return nil, err
	}
	var out *entity.Receipt
	err := l.apply(ctx, entity.KindReceipt, in.DocumentID, in.ActingUserID, len(in.Lines), func(ctx context.Context, r TxRepos, st stamp) error {
		for _, ln := range in.Lines {
			to := entity.QuantKey{ProductID: ln.ProductID, WarehouseID: ln.WarehouseID, LocationID: ln.LocationID}
			if _, err := upsertBalance(ctx, r.Quants, to, ln.Quantity, st.at); err != nil {
				return err
			}
			if _, err := recordMove(ctx, r.Moves, st.move(ln.ProductID, ln.Quantity, ln.UnitMeasure, nil, &to)); err != nil {
				return err
			}
		}
		return nil
	}, func(ctx context.Context, r TxRepos) (err error) {
		out, err = r.Documents.GetReceipt(ctx, in.DocumentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyDelivery descuenta cada línea de la cuenta de origen; el movimiento lleva cantidad negativa.
func (l *Ledger) ApplyDelivery(ctx context.Context, in ApplyDeliveryInput) (*entity.Delivery, error) {
	if err := validateDeliveryLines(in.Lines); err != nil {
		return nil, err
	}
	var out *entity.Delivery
	err := l.apply(ctx, entity.KindDelivery, in.DocumentID, in.ActingUserID, len(in.Lines), func(ctx context.Context, r TxRepos, st stamp) error {
		for _, ln := range in.Lines {
			from := entity.QuantKey{ProductID: ln.ProductID, WarehouseID: ln.WarehouseID, LocationID: ln.LocationID}
			if _, err := upsertBalance(ctx, r.Quants, from, ln.Quantity.Neg(), st.at); err != nil {
				return err
			}
			if _, err := recordMove(ctx, r.Moves, st.move(ln.ProductID, ln.Quantity.Neg(), ln.UnitMeasure, &from, nil)); err != nil {
				return err
			}
		}
		return nil
	}, func(ctx context.Context, r TxRepos) (err error) {
		out, err = r.Documents.GetDelivery(ctx, in.DocumentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyTransfer descuenta del origen y suma en el destino; un solo movimiento con ambos lados.
func (l *Ledger) ApplyTransfer(ctx context.Context, in ApplyTransferInput) (*entity.Transfer, error) {
	if err := validateTransferLines(in.FromWarehouseID, in.ToWarehouseID, in.Lines); err != nil {
		return nil, err
	}
	var out *entity.Transfer
	err := l.apply(ctx, entity.KindTransfer, in.DocumentID, in.ActingUserID, len(in.Lines), func(ctx context.Context, r TxRepos, st stamp) error {
		for _, ln := range in.Lines {
			from := entity.QuantKey{ProductID: ln.ProductID, WarehouseID: in.FromWarehouseID, LocationID: ln.FromLocationID}
			to := entity.QuantKey{ProductID: ln.ProductID, WarehouseID: in.ToWarehouseID, LocationID: ln.ToLocationID}
			if _, err := upsertBalance(ctx, r.Quants, from, ln.Quantity.Neg(), st.at); err != nil {
				return err
			}
			if _, err := upsertBalance(ctx, r.Quants, to, ln.Quantity, st.at); err != nil {
				return err
			}
			if _, err := recordMove(ctx, r.Moves, st.move(ln.ProductID, ln.Quantity, ln.UnitMeasure, &from, &to)); err != nil {
				return err
			}
		}
		return nil
	}, func(ctx context.Context, r TxRepos) (err error) {
		out, err = r.Documents.GetTransfer(ctx, in.DocumentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyAdjustment aplica la cantidad con signo en la cuenta indicada; el movimiento es de forma entrante.
func (l *Ledger) ApplyAdjustment(ctx context.Context, in ApplyAdjustmentInput) (*entity.Adjustment, error) {
	if err := validateAdjustmentLines(in.Lines); err != nil {
		return nil, err
	}
	var out *entity.Adjustment
	err := l.apply(ctx, entity.KindAdjustment, in.DocumentID, in.ActingUserID, len(in.Lines), func(ctx context.Context, r TxRepos, st stamp) error {
		for _, ln := range in.Lines {
			at := entity.QuantKey{ProductID: ln.ProductID, WarehouseID: ln.WarehouseID, LocationID: ln.LocationID}
			if _, err := upsertBalance(ctx, r.Quants, at, ln.Quantity, st.at); err != nil {
				return err
			}
			if _, err := recordMove(ctx, r.Moves, st.move(ln.ProductID, ln.Quantity, ln.UnitMeasure, nil, &at)); err != nil {
				return err
			}
		}
		return nil
	}, func(ctx context.Context, r TxRepos) (err error) {
		out, err = r.Documents.GetAdjustment(ctx, in.DocumentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// stamp datos comunes a todos los movimientos de una aplicación.
type stamp struct {
	kind       entity.DocumentKind
	documentID string
	user       *string
	at         time.Time
}

func (s stamp) move(productID string, qty decimal.Decimal, uom string, from, to *entity.QuantKey) moveInput {
	return moveInput{
		kind:        s.kind,
		documentID:  s.documentID,
		productID:   productID,
		quantity:    qty,
		unitMeasure: uom,
		from:        from,
		to:          to,
		createdBy:   s.user,
		at:          s.at,
	}
}

// apply envuelve body con la transacción: relectura bloqueante del estado, guardas,
// líneas, cierre en done y relectura del documento actualizado.
func (l *Ledger) apply(
	ctx context.Context,
	kind entity.DocumentKind,
	documentID, userID string,
	lines int,
	body func(context.Context, TxRepos, stamp) error,
	reload func(context.Context, TxRepos) error,
) error {
	if documentID == "" {
		return domain.NewFieldError("document_id", "requerido")
	}
	st := stamp{kind: kind, documentID: documentID, user: strPtr(userID), at: l.now().UTC()}

	err := l.tx.Run(ctx, func(ctx context.Context, r TxRepos) error {
		status, err := r.Documents.LockStatus(ctx, kind, documentID)
		if err != nil {
			return err
		}
		if !status.Pending() {
			return &domain.TransitionError{DocumentID: documentID, Kind: string(kind), From: string(status)}
		}
		if err := body(ctx, r, st); err != nil {
			return err
		}
		if err := r.Documents.SetStatus(ctx, kind, documentID, entity.StatusDone); err != nil {
			return err
		}
		return reload(ctx, r)
	})
	if err != nil {
		err = domain.StoreFailure(err)
		l.log.Warn().Err(err).
			Str("kind", string(kind)).
			Str("document_id", documentID).
			Msg("aplicación de documento rechazada")
		return err
	}

	l.log.Info().
		Str("kind", string(kind)).
		Str("document_id", documentID).
		Int("lines", lines).
		Str("user_id", userID).
		Msg("documento aplicado")
	return nil
}
