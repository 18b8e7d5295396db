package inventory_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

type catalog struct {
	store    *memory.Store
	docs     *inventory.DocumentUseCase
	query    *inventory.QueryUseCase
	slips    *captureSlips
	widget   *entity.Product
	gadget   *entity.Product
	main     *entity.Warehouse
	backup   *entity.Warehouse
	mainBin  *entity.Location
	otherBin *entity.Location
}

type captureSlips struct{ last inventory.DocumentSlip }

func (c *captureSlips) GenerateSlip(_ context.Context, slip inventory.DocumentSlip) ([]byte, error) {
	c.last = slip
	return []byte("%PDF-fake"), nil
}

func newCatalog(t *testing.T) *catalog {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Now()
	c := &catalog{
		store:  store,
		slips:  &captureSlips{},
		widget: &entity.Product{ID: uuid.NewString(), SKU: "WID-1", Name: "Widget", UnitMeasure: "und", DefaultPrice: qty("2.5"), CreatedAt: now, UpdatedAt: now},
		gadget: &entity.Product{ID: uuid.NewString(), SKU: "GAD-1", Name: "Gadget", UnitMeasure: "kg", DefaultPrice: qty("10"), CreatedAt: now, UpdatedAt: now},
		main:   &entity.Warehouse{ID: uuid.NewString(), Code: "WH01", Name: "Principal", CreatedAt: now, UpdatedAt: now},
		backup: &entity.Warehouse{ID: uuid.NewString(), Code: "WH02", Name: "Respaldo", CreatedAt: now, UpdatedAt: now},
	}
	c.mainBin = &entity.Location{ID: uuid.NewString(), WarehouseID: c.main.ID, Code: "A-1", CreatedAt: now}
	c.otherBin = &entity.Location{ID: uuid.NewString(), WarehouseID: c.backup.ID, Code: "B-1", CreatedAt: now}

	require.NoError(t, store.Products().Create(ctx, c.widget))
	require.NoError(t, store.Products().Create(ctx, c.gadget))
	require.NoError(t, store.Warehouses().Create(ctx, c.main))
	require.NoError(t, store.Warehouses().Create(ctx, c.backup))
	require.NoError(t, store.Warehouses().CreateLocation(ctx, c.mainBin))
	require.NoError(t, store.Warehouses().CreateLocation(ctx, c.otherBin))

	ledger := inventory.NewLedger(store, nil)
	c.docs = inventory.NewDocumentUseCase(store, store.Documents(), store.Products(), store.Warehouses(), ledger, c.slips, nil)
	c.query = inventory.NewQueryUseCase(store.Quants(), store.Moves(), store.ReorderRules(), store.Documents())
	return c
}

func (c *catalog) receive(t *testing.T, productID string, q string) *dto.DocumentResponse {
	t.Helper()
	doc, err := c.docs.CreateReceipt(context.Background(), userID, dto.CreateReceiptRequest{
		WarehouseID: c.main.ID,
		Lines:       []dto.StockLineRequest{{ProductID: productID, Quantity: qty(q)}},
	})
	require.NoError(t, err)
	applied, err := c.docs.ValidateReceipt(context.Background(), doc.ID, userID)
	require.NoError(t, err)
	return applied
}

func TestDocumentUseCase_CreateReceipt_Borrador(t *testing.T) {
	c := newCatalog(t)
	doc, err := c.docs.CreateReceipt(context.Background(), userID, dto.CreateReceiptRequest{
		WarehouseID: c.main.ID,
		Partner:     "Proveedor S.A.",
		Lines: []dto.StockLineRequest{
			{ProductID: c.widget.ID, Quantity: qty("5")},
			{ProductID: c.gadget.ID, Quantity: qty("1.5"), LocationID: &c.mainBin.ID},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, string(entity.StatusDraft), doc.Status)
	assert.True(t, strings.HasPrefix(doc.Number, "REC/"))
	require.Len(t, doc.Lines, 2)
	assert.Equal(t, c.main.ID, doc.Lines[0].WarehouseID, "la línea hereda la bodega de la cabecera")
	require.NotNil(t, doc.CreatedBy)
	assert.Equal(t, userID, *doc.CreatedBy)

	// crear no mueve stock
	bal, err := c.query.GetBalance(context.Background(), entity.QuantKey{ProductID: c.widget.ID, WarehouseID: c.main.ID})
	require.NoError(t, err)
	assert.True(t, bal.IsZero())
}

func TestDocumentUseCase_CreateReceipt_ReferenciasInexistentes(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	_, err := c.docs.CreateReceipt(ctx, userID, dto.CreateReceiptRequest{
		WarehouseID: c.main.ID,
		Lines:       []dto.StockLineRequest{{ProductID: uuid.NewString(), Quantity: qty("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = c.docs.CreateReceipt(ctx, userID, dto.CreateReceiptRequest{
		WarehouseID: uuid.NewString(),
		Lines:       []dto.StockLineRequest{{ProductID: c.widget.ID, Quantity: qty("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = c.docs.CreateReceipt(ctx, userID, dto.CreateReceiptRequest{
		WarehouseID: c.main.ID,
		Lines:       []dto.StockLineRequest{{ProductID: c.widget.ID, Quantity: qty("1"), LocationID: &c.otherBin.ID}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := c.docs.List(ctx, entity.KindReceipt, dto.DocumentListRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestDocumentUseCase_CantidadesFueraDeEscala(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	tiny := qty("0.00004")

	_, err := c.docs.CreateAdjustment(ctx, userID, dto.CreateAdjustmentRequest{
		WarehouseID: c.main.ID,
		Lines:       []dto.AdjustmentLineRequest{{ProductID: c.widget.ID, Quantity: tiny}},
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantity", ve.Field)

	_, err = c.docs.CreateReceipt(ctx, userID, dto.CreateReceiptRequest{
		WarehouseID: c.main.ID,
		Lines:       []dto.StockLineRequest{{ProductID: c.widget.ID, Quantity: tiny}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = c.docs.CreateDelivery(ctx, userID, dto.CreateDeliveryRequest{
		WarehouseID: c.main.ID,
		Lines:       []dto.StockLineRequest{{ProductID: c.widget.ID, Quantity: qty("1.00001")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// cuatro decimales es lo máximo que se persiste
	doc, err := c.docs.CreateReceipt(ctx, userID, dto.CreateReceiptRequest{
		WarehouseID: c.main.ID,
		Lines:       []dto.StockLineRequest{{ProductID: c.widget.ID, Quantity: qty("0.0001")}},
	})
	require.NoError(t, err)
	_, err = c.docs.ValidateReceipt(ctx, doc.ID, userID)
	require.NoError(t, err)
}

func TestDocumentUseCase_CreateTransfer_MismaCuentaRechazada(t *testing.T) {
	c := newCatalog(t)
	_, err := c.docs.CreateTransfer(context.Background(), userID, dto.CreateTransferRequest{
		FromWarehouseID: c.main.ID,
		ToWarehouseID:   c.main.ID,
		Lines:           []dto.TransferLineRequest{{ProductID: c.widget.ID, Quantity: qty("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentUseCase_ValidarFlujoCompleto(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	rec := c.receive(t, c.widget.ID, "20")
	assert.Equal(t, string(entity.StatusDone), rec.Status)

	_, err := c.docs.ValidateReceipt(ctx, rec.ID, userID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	tr, err := c.docs.CreateTransfer(ctx, userID, dto.CreateTransferRequest{
		FromWarehouseID: c.main.ID,
		ToWarehouseID:   c.backup.ID,
		Lines:           []dto.TransferLineRequest{{ProductID: c.widget.ID, Quantity: qty("8"), ToLocationID: &c.otherBin.ID}},
	})
	require.NoError(t, err)
	_, err = c.docs.Validate(ctx, entity.KindTransfer, tr.ID, userID)
	require.NoError(t, err)

	del, err := c.docs.CreateDelivery(ctx, userID, dto.CreateDeliveryRequest{
		WarehouseID: c.main.ID,
		Lines:       []dto.StockLineRequest{{ProductID: c.widget.ID, Quantity: qty("13")}},
	})
	require.NoError(t, err)
	_, err = c.docs.ValidateDelivery(ctx, del.ID, userID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := c.docs.GetDelivery(ctx, del.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.StatusDraft), got.Status)

	bal, err := c.query.GetBalance(ctx, entity.QuantKey{ProductID: c.widget.ID, WarehouseID: c.main.ID})
	require.NoError(t, err)
	assertQty(t, "12", bal)
	bal, err = c.query.GetBalance(ctx, entity.QuantKey{ProductID: c.widget.ID, WarehouseID: c.backup.ID, LocationID: &c.otherBin.ID})
	require.NoError(t, err)
	assertQty(t, "8", bal)

	totals, err := c.query.Totals(ctx, dto.QuantFilterRequest{})
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assertQty(t, "20", totals[0].Quantity)
}

func TestDocumentUseCase_ValidarInexistente(t *testing.T) {
	c := newCatalog(t)
	_, err := c.docs.ValidateAdjustment(context.Background(), uuid.NewString(), userID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentUseCase_BookInitialStock(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	require.NoError(t, c.docs.BookInitialStock(ctx, userID, c.gadget.ID, c.main.ID, nil, qty("7"), ""))

	bal, err := c.query.GetBalance(ctx, entity.QuantKey{ProductID: c.gadget.ID, WarehouseID: c.main.ID})
	require.NoError(t, err)
	assertQty(t, "7", bal)

	list, err := c.docs.List(ctx, entity.KindAdjustment, dto.DocumentListRequest{Status: string(entity.StatusDone)})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	err = c.docs.BookInitialStock(ctx, userID, c.gadget.ID, c.main.ID, nil, decimal.Zero, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentUseCase_Slip(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	c.receive(t, c.widget.ID, "4")

	tr, err := c.docs.CreateTransfer(ctx, userID, dto.CreateTransferRequest{
		FromWarehouseID: c.main.ID,
		ToWarehouseID:   c.main.ID,
		Lines:           []dto.TransferLineRequest{{ProductID: c.widget.ID, Quantity: qty("1"), ToLocationID: &c.mainBin.ID}},
	})
	require.NoError(t, err)

	pdf, err := c.docs.Slip(ctx, entity.KindTransfer, tr.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)

	slip := c.slips.last
	assert.Equal(t, tr.Number, slip.Header.Number)
	assert.Equal(t, userID, slip.CreatedBy)
	assert.Equal(t, "WH01", slip.Source)
	require.Len(t, slip.Lines, 1)
	assert.Equal(t, "WID-1", slip.Lines[0].SKU)
	assert.Equal(t, "Widget", slip.Lines[0].ProductName)
	assert.Equal(t, "und", slip.Lines[0].UnitMeasure)
	assert.Equal(t, "WH01", slip.Lines[0].From)
	assert.Equal(t, "WH01 / A-1", slip.Lines[0].To)

	_, err = c.docs.Slip(ctx, entity.KindReceipt, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQueryUseCase_HistorialAlertasYTablero(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	c.receive(t, c.widget.ID, "3")
	c.receive(t, c.gadget.ID, "2")
	_, err := c.docs.CreateDelivery(ctx, userID, dto.CreateDeliveryRequest{
		WarehouseID: c.main.ID,
		Lines:       []dto.StockLineRequest{{ProductID: c.widget.ID, Quantity: qty("1")}},
	})
	require.NoError(t, err)

	maxQty := qty("10")
	require.NoError(t, c.store.ReorderRules().Create(ctx, &entity.ReorderRule{
		ID: uuid.NewString(), ProductID: c.widget.ID, WarehouseID: c.main.ID, MinQty: qty("5"), MaxQty: &maxQty, CreatedAt: time.Now(),
	}))
	require.NoError(t, c.store.ReorderRules().Create(ctx, &entity.ReorderRule{
		ID: uuid.NewString(), ProductID: c.gadget.ID, WarehouseID: c.main.ID, MinQty: qty("1"), CreatedAt: time.Now(),
	}))

	hist, err := c.query.MoveHistory(ctx, dto.MoveHistoryRequest{Sort: "asc", Limit: 1, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, hist.Meta.Total)
	assert.Equal(t, 2, hist.Meta.Pages)
	require.Len(t, hist.Data, 1)
	assert.Equal(t, c.gadget.ID, hist.Data[0].ProductID)

	hist, err = c.query.MoveHistory(ctx, dto.MoveHistoryRequest{ProductID: c.widget.ID})
	require.NoError(t, err)
	assert.Equal(t, repository.DefaultMoveLimit, hist.Meta.Limit)
	assert.Equal(t, 1, hist.Meta.Page)
	assert.Len(t, hist.Data, 1)

	_, err = c.query.MoveHistory(ctx, dto.MoveHistoryRequest{From: "ayer"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	alerts, err := c.query.LowStockAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "WID-1", alerts[0].SKU)
	assert.Equal(t, "WH01", alerts[0].WarehouseCode)
	assertQty(t, "3", alerts[0].CurrentQty)
	assertQty(t, "7", alerts[0].SuggestedOrderQty)

	dash, err := c.query.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, dash.TotalProductsInStock)
	assertQty(t, "27.5", dash.TotalStockValue) // 3 × 2.5 + 2 × 10
	assert.Equal(t, 1, dash.LowStockCount)
	assert.Equal(t, 1, dash.PendingDeliveries)
	assert.Equal(t, 0, dash.PendingReceipts)
}

func TestQueryUseCase_AlertaSumaTodasLasUbicaciones(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	require.NoError(t, c.store.ReorderRules().Create(ctx, &entity.ReorderRule{
		ID: uuid.NewString(), ProductID: c.widget.ID, WarehouseID: c.main.ID, MinQty: qty("5"),
	}))

	c.receive(t, c.widget.ID, "3")
	alerts, err := c.query.LowStockAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].CurrentQty.Equal(qty("3")))

	// 3 a nivel bodega + 3 en A-1: la última cuenta tocada tiene 3, pero la bodega tiene 6
	doc, err := c.docs.CreateReceipt(ctx, userID, dto.CreateReceiptRequest{
		WarehouseID: c.main.ID,
		Lines:       []dto.StockLineRequest{{ProductID: c.widget.ID, Quantity: qty("3"), LocationID: &c.mainBin.ID}},
	})
	require.NoError(t, err)
	_, err = c.docs.ValidateReceipt(ctx, doc.ID, userID)
	require.NoError(t, err)

	alerts, err = c.query.LowStockAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}
