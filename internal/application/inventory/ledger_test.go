package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	prod1  = "p1"
	prod2  = "p2"
	whA    = "wA"
	whB    = "wB"
	userID = "u1"
)

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func loc(s string) *string { return &s }

type fixture struct {
	store  *memory.Store
	ledger *inventory.Ledger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	for _, id := range []string{prod1, prod2, "p3"} {
		require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: id, SKU: "SKU-" + id, Name: id, UnitMeasure: "und"}))
	}
	for _, id := range []string{whA, whB} {
		require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: id, Code: id, Name: id}))
	}
	require.NoError(t, store.Warehouses().CreateLocation(ctx, &entity.Location{ID: "A-1", WarehouseID: whA, Code: "A-1"}))
	require.NoError(t, store.Warehouses().CreateLocation(ctx, &entity.Location{ID: "B-7", WarehouseID: whB, Code: "B-7"}))
	return &fixture{store: store, ledger: inventory.NewLedger(store, logger.Nop())}
}

func header(id string, kind entity.DocumentKind, status entity.DocumentStatus) entity.DocumentHeader {
	return entity.DocumentHeader{ID: id, Kind: kind, Status: status, CreatedAt: time.Now()}
}

func (f *fixture) receipt(t *testing.T, id string, status entity.DocumentStatus, lines ...entity.ReceiptLine) *entity.Receipt {
	t.Helper()
	doc := &entity.Receipt{DocumentHeader: header(id, entity.KindReceipt, status), WarehouseID: whA, Lines: lines}
	require.NoError(t, f.store.Documents().CreateReceipt(context.Background(), doc))
	return doc
}

func (f *fixture) delivery(t *testing.T, id string, lines ...entity.DeliveryLine) *entity.Delivery {
	t.Helper()
	doc := &entity.Delivery{DocumentHeader: header(id, entity.KindDelivery, entity.StatusDraft), WarehouseID: whA, Lines: lines}
	require.NoError(t, f.store.Documents().CreateDelivery(context.Background(), doc))
	return doc
}

func (f *fixture) transfer(t *testing.T, id, from, to string, lines ...entity.TransferLine) *entity.Transfer {
	t.Helper()
	doc := &entity.Transfer{DocumentHeader: header(id, entity.KindTransfer, entity.StatusDraft), FromWarehouseID: from, ToWarehouseID: to, Lines: lines}
	require.NoError(t, f.store.Documents().CreateTransfer(context.Background(), doc))
	return doc
}

func (f *fixture) adjustment(t *testing.T, id string, lines ...entity.AdjustmentLine) *entity.Adjustment {
	t.Helper()
	doc := &entity.Adjustment{DocumentHeader: header(id, entity.KindAdjustment, entity.StatusDraft), WarehouseID: whA, Lines: lines}
	require.NoError(t, f.store.Documents().CreateAdjustment(context.Background(), doc))
	return doc
}

// seed deja la cuenta (producto, bodega) con cantidad q mediante un ajuste aplicado.
func (f *fixture) seed(t *testing.T, productID, warehouseID string, q string) {
	t.Helper()
	id := "seed-" + productID + "-" + warehouseID
	line := entity.AdjustmentLine{ProductID: productID, Quantity: qty(q), WarehouseID: warehouseID}
	f.adjustment(t, id, line)
	_, err := f.ledger.ApplyAdjustment(context.Background(), inventory.ApplyAdjustmentInput{
		DocumentID: id, Lines: []entity.AdjustmentLine{line}, ActingUserID: userID,
	})
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, productID, warehouseID string, location *string) decimal.Decimal {
	t.Helper()
	q, err := f.store.Quants().Get(context.Background(), entity.QuantKey{ProductID: productID, WarehouseID: warehouseID, LocationID: location})
	require.NoError(t, err)
	if q == nil {
		return decimal.Zero
	}
	return q.Quantity
}

func (f *fixture) moves(t *testing.T, kind entity.DocumentKind, id string) []*entity.StockMove {
	t.Helper()
	list, err := f.store.Moves().ListByDocument(context.Background(), kind, id)
	require.NoError(t, err)
	return list
}

func (f *fixture) status(t *testing.T, kind entity.DocumentKind, id string) entity.DocumentStatus {
	t.Helper()
	s, err := f.store.Documents().LockStatus(context.Background(), kind, id)
	require.NoError(t, err)
	return s
}

func assertQty(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(qty(want)), "cantidad esperada %s, obtenida %s", want, got)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios base
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyReceipt_CuentaVacia(t *testing.T) {
	f := newFixture(t)
	lines := []entity.ReceiptLine{{ProductID: prod1, Quantity: qty("10"), WarehouseID: whA}}
	f.receipt(t, "r1", entity.StatusDraft, lines...)

	doc, err := f.ledger.ApplyReceipt(context.Background(), inventory.ApplyReceiptInput{DocumentID: "r1", Lines: lines, ActingUserID: userID})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDone, doc.Status)
	assert.Len(t, doc.Lines, 1)

	assertQty(t, "10", f.balance(t, prod1, whA, nil))
	moves := f.moves(t, entity.KindReceipt, "r1")
	require.Len(t, moves, 1)
	m := moves[0]
	assertQty(t, "10", m.Quantity)
	require.NotNil(t, m.ToWarehouseID)
	assert.Equal(t, whA, *m.ToWarehouseID)
	assert.Nil(t, m.FromWarehouseID)
	assert.Equal(t, "Receipt #r1", m.Reason)
	assert.Equal(t, entity.MoveStatusDone, m.Status)
	require.NotNil(t, m.CreatedBy)
	assert.Equal(t, userID, *m.CreatedBy)
}

func TestApply_ActualizaUpdatedAt(t *testing.T) {
	f := newFixture(t)
	line := entity.ReceiptLine{ProductID: prod1, Quantity: qty("1"), WarehouseID: whA}
	doc := f.receipt(t, "r-upd", entity.StatusDraft, line)
	require.True(t, doc.UpdatedAt.IsZero())

	before := time.Now().UTC().Add(-time.Second)
	out, err := f.ledger.ApplyReceipt(context.Background(), inventory.ApplyReceiptInput{DocumentID: "r-upd", Lines: []entity.ReceiptLine{line}, ActingUserID: userID})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDone, out.Status)
	assert.True(t, out.UpdatedAt.After(before), "updated_at %s", out.UpdatedAt)
}

func TestApplyDelivery_StockInsuficiente(t *testing.T) {
	f := newFixture(t)
	f.seed(t, prod1, whA, "10")
	lines := []entity.DeliveryLine{{ProductID: prod1, Quantity: qty("15"), WarehouseID: whA}}
	f.delivery(t, "d1", lines...)

	_, err := f.ledger.ApplyDelivery(context.Background(), inventory.ApplyDeliveryInput{DocumentID: "d1", Lines: lines, ActingUserID: userID})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, prod1, ise.ProductID)
	assertQty(t, "10", ise.Available)
	assertQty(t, "15", ise.Requested)

	assertQty(t, "10", f.balance(t, prod1, whA, nil))
	assert.Equal(t, entity.StatusDraft, f.status(t, entity.KindDelivery, "d1"))
	assert.Empty(t, f.moves(t, entity.KindDelivery, "d1"))
}

func TestApplyDelivery_MovimientoNegativo(t *testing.T) {
	f := newFixture(t)
	f.seed(t, prod1, whA, "10")
	lines := []entity.DeliveryLine{{ProductID: prod1, Quantity: qty("4"), WarehouseID: whA}}
	f.delivery(t, "d1", lines...)

	_, err := f.ledger.ApplyDelivery(context.Background(), inventory.ApplyDeliveryInput{DocumentID: "d1", Lines: lines})
	require.NoError(t, err)

	assertQty(t, "6", f.balance(t, prod1, whA, nil))
	moves := f.moves(t, entity.KindDelivery, "d1")
	require.Len(t, moves, 1)
	assertQty(t, "-4", moves[0].Quantity)
	require.NotNil(t, moves[0].FromWarehouseID)
	assert.Nil(t, moves[0].ToWarehouseID)
	assert.Nil(t, moves[0].CreatedBy)
}

func TestApplyTransfer_EntreBodegas(t *testing.T) {
	f := newFixture(t)
	f.seed(t, prod1, whA, "20")
	lines := []entity.TransferLine{{ProductID: prod1, Quantity: qty("5")}}
	f.transfer(t, "t1", whA, whB, lines...)

	doc, err := f.ledger.ApplyTransfer(context.Background(), inventory.ApplyTransferInput{
		DocumentID: "t1", Lines: lines, FromWarehouseID: whA, ToWarehouseID: whB, ActingUserID: userID,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDone, doc.Status)

	assertQty(t, "15", f.balance(t, prod1, whA, nil))
	assertQty(t, "5", f.balance(t, prod1, whB, nil))
	moves := f.moves(t, entity.KindTransfer, "t1")
	require.Len(t, moves, 1)
	assert.Equal(t, whA, *moves[0].FromWarehouseID)
	assert.Equal(t, whB, *moves[0].ToWarehouseID)
	assertQty(t, "5", moves[0].Quantity)
}

func TestApplyTransfer_EntreUbicacionesDeLaMismaBodega(t *testing.T) {
	f := newFixture(t)
	f.seed(t, prod1, whA, "8")
	lines := []entity.TransferLine{{ProductID: prod1, Quantity: qty("3"), ToLocationID: loc("A-1")}}
	f.transfer(t, "t1", whA, whA, lines...)

	_, err := f.ledger.ApplyTransfer(context.Background(), inventory.ApplyTransferInput{
		DocumentID: "t1", Lines: lines, FromWarehouseID: whA, ToWarehouseID: whA,
	})
	require.NoError(t, err)
	assertQty(t, "5", f.balance(t, prod1, whA, nil))
	assertQty(t, "3", f.balance(t, prod1, whA, loc("A-1")))
}

func TestApplyAdjustment_LlegaExactoACero(t *testing.T) {
	f := newFixture(t)
	f.seed(t, prod1, whA, "3")
	lines := []entity.AdjustmentLine{{ProductID: prod1, Quantity: qty("-3"), WarehouseID: whA}}
	f.adjustment(t, "a1", lines...)

	_, err := f.ledger.ApplyAdjustment(context.Background(), inventory.ApplyAdjustmentInput{DocumentID: "a1", Lines: lines})
	require.NoError(t, err)
	assertQty(t, "0", f.balance(t, prod1, whA, nil))

	moves := f.moves(t, entity.KindAdjustment, "a1")
	require.Len(t, moves, 1)
	assertQty(t, "-3", moves[0].Quantity)
	assert.Equal(t, whA, *moves[0].ToWarehouseID)
	assert.Nil(t, moves[0].FromWarehouseID)
}

func TestApplyAdjustment_NegativoExcesivo(t *testing.T) {
	f := newFixture(t)
	f.seed(t, prod1, whA, "2")
	lines := []entity.AdjustmentLine{{ProductID: prod1, Quantity: qty("-3"), WarehouseID: whA}}
	f.adjustment(t, "a1", lines...)

	_, err := f.ledger.ApplyAdjustment(context.Background(), inventory.ApplyAdjustmentInput{DocumentID: "a1", Lines: lines})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assertQty(t, "2", f.balance(t, prod1, whA, nil))
	assert.Equal(t, entity.StatusDraft, f.status(t, entity.KindAdjustment, "a1"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Guardas de estado
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_DocumentoInexistente(t *testing.T) {
	f := newFixture(t)
	lines := []entity.ReceiptLine{{ProductID: prod1, Quantity: qty("1"), WarehouseID: whA}}
	_, err := f.ledger.ApplyReceipt(context.Background(), inventory.ApplyReceiptInput{DocumentID: "nope", Lines: lines})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, errors.Is(err, domain.ErrStoreFailure))
}

func TestApply_ReferenciasInexistentesSonNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []entity.ReceiptLine{
		{ProductID: "ghost-product", Quantity: qty("5"), WarehouseID: whA},
		{ProductID: prod1, Quantity: qty("5"), WarehouseID: "ghost-wh"},
		{ProductID: prod1, Quantity: qty("5"), WarehouseID: whA, LocationID: loc("ghost-bin")},
	}
	for i, line := range cases {
		id := "r-ghost-" + string(rune('a'+i))
		f.receipt(t, id, entity.StatusDraft, line)

		_, err := f.ledger.ApplyReceipt(ctx, inventory.ApplyReceiptInput{DocumentID: id, Lines: []entity.ReceiptLine{line}, ActingUserID: userID})
		assert.ErrorIs(t, err, domain.ErrNotFound, "línea %d", i)
		assert.NotErrorIs(t, err, domain.ErrStoreFailure)

		assertQty(t, "0", f.balance(t, line.ProductID, line.WarehouseID, line.LocationID))
		assert.Empty(t, f.moves(t, entity.KindReceipt, id))
		assert.Equal(t, entity.StatusDraft, f.status(t, entity.KindReceipt, id))
	}
}

func TestApply_DosVecesFallaLaSegunda(t *testing.T) {
	f := newFixture(t)
	lines := []entity.ReceiptLine{{ProductID: prod1, Quantity: qty("10"), WarehouseID: whA}}
	f.receipt(t, "r1", entity.StatusDraft, lines...)
	in := inventory.ApplyReceiptInput{DocumentID: "r1", Lines: lines}

	_, err := f.ledger.ApplyReceipt(context.Background(), in)
	require.NoError(t, err)
	_, err = f.ledger.ApplyReceipt(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	assertQty(t, "10", f.balance(t, prod1, whA, nil))
	assert.Len(t, f.moves(t, entity.KindReceipt, "r1"), 1)
}

func TestApply_Cancelado(t *testing.T) {
	f := newFixture(t)
	lines := []entity.ReceiptLine{{ProductID: prod1, Quantity: qty("1"), WarehouseID: whA}}
	f.receipt(t, "r1", entity.StatusCancelled, lines...)

	_, err := f.ledger.ApplyReceipt(context.Background(), inventory.ApplyReceiptInput{DocumentID: "r1", Lines: lines})
	require.Error(t, err)
	var te *domain.TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "cancelled", te.From)
	assert.True(t, f.balance(t, prod1, whA, nil).IsZero())
}

func TestApply_EstadosPendientesSonAplicables(t *testing.T) {
	for _, st := range []entity.DocumentStatus{entity.StatusDraft, entity.StatusWaiting, entity.StatusReady} {
		t.Run(string(st), func(t *testing.T) {
			f := newFixture(t)
			lines := []entity.ReceiptLine{{ProductID: prod1, Quantity: qty("1"), WarehouseID: whA}}
			f.receipt(t, "r1", st, lines...)
			_, err := f.ledger.ApplyReceipt(context.Background(), inventory.ApplyReceiptInput{DocumentID: "r1", Lines: lines})
			require.NoError(t, err)
			assert.Equal(t, entity.StatusDone, f.status(t, entity.KindReceipt, "r1"))
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación previa a la persistencia
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_ValidacionDeLineas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.ApplyReceipt(ctx, inventory.ApplyReceiptInput{DocumentID: "r1",
		Lines: []entity.ReceiptLine{{ProductID: prod1, Quantity: qty("0"), WarehouseID: whA}}})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, 0, ve.Line)
	assert.Equal(t, "quantity", ve.Field)

	_, err = f.ledger.ApplyDelivery(ctx, inventory.ApplyDeliveryInput{DocumentID: "d1",
		Lines: []entity.DeliveryLine{{Quantity: qty("1"), WarehouseID: whA}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.ledger.ApplyAdjustment(ctx, inventory.ApplyAdjustmentInput{DocumentID: "a1",
		Lines: []entity.AdjustmentLine{{ProductID: prod1, Quantity: qty("0"), WarehouseID: whA}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.ledger.ApplyTransfer(ctx, inventory.ApplyTransferInput{DocumentID: "t1", FromWarehouseID: whA, ToWarehouseID: whA,
		Lines: []entity.TransferLine{{ProductID: prod1, Quantity: qty("1")}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.ledger.ApplyReceipt(ctx, inventory.ApplyReceiptInput{DocumentID: "r1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.ledger.ApplyAdjustment(ctx, inventory.ApplyAdjustmentInput{DocumentID: "a1",
		Lines: []entity.AdjustmentLine{{ProductID: prod1, Quantity: qty("0.00004"), WarehouseID: whA}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.ledger.ApplyReceipt(ctx, inventory.ApplyReceiptInput{DocumentID: "r1",
		Lines: []entity.ReceiptLine{{ProductID: prod1, Quantity: qty("2.00005"), WarehouseID: whA}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedades: atomicidad, orden, consistencia
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_AtomicidadSiFallaUnaLineaIntermedia(t *testing.T) {
	f := newFixture(t)
	f.seed(t, prod1, whA, "10")
	f.seed(t, prod2, whA, "1")
	lines := []entity.DeliveryLine{
		{ProductID: prod1, Quantity: qty("3"), WarehouseID: whA},
		{ProductID: prod2, Quantity: qty("2"), WarehouseID: whA},
		{ProductID: prod1, Quantity: qty("1"), WarehouseID: whA},
	}
	f.delivery(t, "d1", lines...)

	_, err := f.ledger.ApplyDelivery(context.Background(), inventory.ApplyDeliveryInput{DocumentID: "d1", Lines: lines})
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, prod2, ise.ProductID)

	assertQty(t, "10", f.balance(t, prod1, whA, nil))
	assertQty(t, "1", f.balance(t, prod2, whA, nil))
	assert.Empty(t, f.moves(t, entity.KindDelivery, "d1"))
	assert.Equal(t, entity.StatusDraft, f.status(t, entity.KindDelivery, "d1"))
}

func TestApply_MovimientosEnOrdenDeLineas(t *testing.T) {
	f := newFixture(t)
	lines := []entity.ReceiptLine{
		{ProductID: "p3", Quantity: qty("3"), WarehouseID: whA},
		{ProductID: "p1", Quantity: qty("1"), WarehouseID: whA},
		{ProductID: "p2", Quantity: qty("2"), WarehouseID: whB, LocationID: loc("B-7")},
	}
	f.receipt(t, "r1", entity.StatusDraft, lines...)
	_, err := f.ledger.ApplyReceipt(context.Background(), inventory.ApplyReceiptInput{DocumentID: "r1", Lines: lines})
	require.NoError(t, err)

	moves := f.moves(t, entity.KindReceipt, "r1")
	require.Len(t, moves, 3)
	for i, m := range moves {
		assert.Equal(t, lines[i].ProductID, m.ProductID)
	}
	assert.Equal(t, "B-7", *moves[2].ToLocationID)

	hist, total, err := f.store.Moves().History(context.Background(), repository.MoveFilter{DocumentType: entity.KindReceipt, Ascending: true})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, "p3", hist[0].ProductID)
	assert.Equal(t, "p2", hist[2].ProductID)
}

func TestApply_SumaDeMovimientosIgualAlSaldo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rl := []entity.ReceiptLine{
		{ProductID: prod1, Quantity: qty("12.5"), WarehouseID: whA},
		{ProductID: prod1, Quantity: qty("4"), WarehouseID: whA, LocationID: loc("A-1")},
	}
	f.receipt(t, "r1", entity.StatusDraft, rl...)
	_, err := f.ledger.ApplyReceipt(ctx, inventory.ApplyReceiptInput{DocumentID: "r1", Lines: rl})
	require.NoError(t, err)

	tl := []entity.TransferLine{{ProductID: prod1, Quantity: qty("2.25"), FromLocationID: loc("A-1")}}
	f.transfer(t, "t1", whA, whB, tl...)
	_, err = f.ledger.ApplyTransfer(ctx, inventory.ApplyTransferInput{DocumentID: "t1", Lines: tl, FromWarehouseID: whA, ToWarehouseID: whB})
	require.NoError(t, err)

	dl := []entity.DeliveryLine{{ProductID: prod1, Quantity: qty("0.5"), WarehouseID: whA}}
	f.delivery(t, "d1", dl...)
	_, err = f.ledger.ApplyDelivery(ctx, inventory.ApplyDeliveryInput{DocumentID: "d1", Lines: dl})
	require.NoError(t, err)

	al := []entity.AdjustmentLine{{ProductID: prod1, Quantity: qty("-1"), WarehouseID: whB}}
	f.adjustment(t, "a1", al...)
	_, err = f.ledger.ApplyAdjustment(ctx, inventory.ApplyAdjustmentInput{DocumentID: "a1", Lines: al})
	require.NoError(t, err)

	moves, _, err := f.store.Moves().History(ctx, repository.MoveFilter{Limit: repository.MaxMoveLimit})
	require.NoError(t, err)

	sums := map[string]decimal.Decimal{}
	for _, m := range moves {
		switch {
		case m.FromWarehouseID != nil && m.ToWarehouseID != nil:
			from := entity.QuantKey{ProductID: m.ProductID, WarehouseID: *m.FromWarehouseID, LocationID: m.FromLocationID}
			to := entity.QuantKey{ProductID: m.ProductID, WarehouseID: *m.ToWarehouseID, LocationID: m.ToLocationID}
			sums[from.String()] = sums[from.String()].Sub(m.Quantity)
			sums[to.String()] = sums[to.String()].Add(m.Quantity)
		case m.FromWarehouseID != nil:
			k := entity.QuantKey{ProductID: m.ProductID, WarehouseID: *m.FromWarehouseID, LocationID: m.FromLocationID}
			sums[k.String()] = sums[k.String()].Add(m.Quantity)
		default:
			k := entity.QuantKey{ProductID: m.ProductID, WarehouseID: *m.ToWarehouseID, LocationID: m.ToLocationID}
			sums[k.String()] = sums[k.String()].Add(m.Quantity)
		}
	}

	quants, err := f.store.Quants().List(ctx, repository.QuantFilter{})
	require.NoError(t, err)
	require.Len(t, quants, 3)
	for _, q := range quants {
		assert.True(t, q.Quantity.Equal(sums[q.Key().String()]), "cuenta %s: saldo %s, movimientos %s", q.Key(), q.Quantity, sums[q.Key().String()])
		assert.False(t, q.Quantity.IsNegative())
	}
	assertQty(t, "12", f.balance(t, prod1, whA, nil))
	assertQty(t, "1.75", f.balance(t, prod1, whA, loc("A-1")))
	assertQty(t, "1.25", f.balance(t, prod1, whB, nil))
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_ConcurrenteMismoDocumento(t *testing.T) {
	f := newFixture(t)
	lines := []entity.ReceiptLine{{ProductID: prod1, Quantity: qty("7"), WarehouseID: whA}}
	f.receipt(t, "r1", entity.StatusDraft, lines...)

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.ApplyReceipt(context.Background(), inventory.ApplyReceiptInput{DocumentID: "r1", Lines: lines})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok, rejected := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInvalidTransition):
			rejected++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, rejected)
	assertQty(t, "7", f.balance(t, prod1, whA, nil))
	assert.Len(t, f.moves(t, entity.KindReceipt, "r1"), 1)
}

func TestApply_ConcurrenteDistintosDocumentosMismaCuenta(t *testing.T) {
	f := newFixture(t)
	f.seed(t, prod1, whA, "50")

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		id := "d" + string(rune('a'+i))
		lines := []entity.DeliveryLine{{ProductID: prod1, Quantity: qty("3"), WarehouseID: whA}}
		f.delivery(t, id, lines...)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.ledger.ApplyDelivery(context.Background(), inventory.ApplyDeliveryInput{DocumentID: id, Lines: lines})
		}()
	}
	wg.Wait()

	// 16 entregas de 3 caben en 50; el resto debe fallar sin dejar el saldo negativo.
	assertQty(t, "2", f.balance(t, prod1, whA, nil))
	hist, total, err := f.store.Moves().History(context.Background(), repository.MoveFilter{DocumentType: entity.KindDelivery})
	require.NoError(t, err)
	assert.Equal(t, 16, total)
	assert.Len(t, hist, 16)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fallos de almacenamiento
// ──────────────────────────────────────────────────────────────────────────────

type brokenRunner struct{ err error }

func (b brokenRunner) Run(context.Context, func(context.Context, inventory.TxRepos) error) error {
	return b.err
}

func TestApply_FalloDeInfraestructuraEsStoreFailure(t *testing.T) {
	infra := errors.New("commit transaction: connection reset")
	ledger := inventory.NewLedger(brokenRunner{err: infra}, nil)
	_, err := ledger.ApplyReceipt(context.Background(), inventory.ApplyReceiptInput{
		DocumentID: "r1",
		Lines:      []entity.ReceiptLine{{ProductID: prod1, Quantity: qty("1"), WarehouseID: whA}},
	})
	assert.ErrorIs(t, err, domain.ErrStoreFailure)
	assert.ErrorIs(t, err, infra)
}
