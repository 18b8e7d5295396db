package usecase_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

type setup struct {
	store      *memory.Store
	products   *usecase.ProductUseCase
	warehouses *usecase.WarehouseUseCase
	categories *usecase.CategoryUseCase
	rules      *usecase.ReorderRuleUseCase
}

func newSetup() *setup {
	store := memory.NewStore()
	ledger := inventory.NewLedger(store, nil)
	docs := inventory.NewDocumentUseCase(store, store.Documents(), store.Products(), store.Warehouses(), ledger, nil, nil)
	return &setup{
		store:      store,
		products:   usecase.NewProductUseCase(store.Products(), store.Categories(), docs),
		warehouses: usecase.NewWarehouseUseCase(store.Warehouses()),
		categories: usecase.NewCategoryUseCase(store.Categories()),
		rules:      usecase.NewReorderRuleUseCase(store.ReorderRules(), store.Products(), store.Warehouses()),
	}
}

func TestWarehouseUseCase_CodigoUnicoYUbicaciones(t *testing.T) {
	s := newSetup()
	ctx := context.Background()

	wh, err := s.warehouses.Create(ctx, dto.CreateWarehouseRequest{Code: "wh01", Name: "Principal"})
	require.NoError(t, err)
	assert.Equal(t, "WH01", wh.Code)

	_, err = s.warehouses.Create(ctx, dto.CreateWarehouseRequest{Code: "WH01", Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = s.warehouses.AddLocation(ctx, wh.ID, dto.CreateLocationRequest{Code: "A-1"})
	require.NoError(t, err)
	_, err = s.warehouses.AddLocation(ctx, wh.ID, dto.CreateLocationRequest{Code: "A-1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = s.warehouses.AddLocation(ctx, uuid.NewString(), dto.CreateLocationRequest{Code: "A-1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := s.warehouses.GetByID(ctx, wh.ID)
	require.NoError(t, err)
	require.Len(t, got.Locations, 1)
	assert.Equal(t, "A-1", got.Locations[0].Code)

	list, err := s.warehouses.List(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 20, list.Page.Limit)
}

func TestProductUseCase_CreateConStockInicial(t *testing.T) {
	s := newSetup()
	ctx := context.Background()
	wh, err := s.warehouses.Create(ctx, dto.CreateWarehouseRequest{Code: "WH01", Name: "Principal"})
	require.NoError(t, err)

	p, err := s.products.Create(ctx, "u1", dto.CreateProductRequest{
		SKU:          "SKU-1",
		Name:         "Tornillo",
		DefaultPrice: decimal.RequireFromString("0.25"),
		InitialStock: &dto.InitialStockRequest{WarehouseID: wh.ID, Quantity: decimal.NewFromInt(40)},
	})
	require.NoError(t, err)
	assert.Equal(t, "und", p.UnitMeasure)

	q, err := s.store.Quants().Get(ctx, entity.QuantKey{ProductID: p.ID, WarehouseID: wh.ID})
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.True(t, q.Quantity.Equal(decimal.NewFromInt(40)))

	// el stock inicial deja su movimiento, igual que cualquier otro ajuste
	moves, total, err := s.store.Moves().History(ctx, repository.MoveFilter{ProductID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, entity.KindAdjustment, moves[0].DocumentType)

	_, err = s.products.Create(ctx, "u1", dto.CreateProductRequest{SKU: "sku-1", Name: "Duplicado"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestProductUseCase_CreateValidaReferencias(t *testing.T) {
	s := newSetup()
	ctx := context.Background()

	missing := uuid.NewString()
	_, err := s.products.Create(ctx, "u1", dto.CreateProductRequest{SKU: "X", Name: "X", CategoryID: &missing})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.products.Create(ctx, "u1", dto.CreateProductRequest{
		SKU: "Y", Name: "Y",
		InitialStock: &dto.InitialStockRequest{WarehouseID: uuid.NewString(), Quantity: decimal.NewFromInt(1)},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.products.Create(ctx, "u1", dto.CreateProductRequest{SKU: "Z", Name: "Z", DefaultPrice: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := s.products.List(ctx, dto.ProductFilterRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestProductUseCase_ListFiltros(t *testing.T) {
	s := newSetup()
	ctx := context.Background()
	cat, err := s.categories.Create(ctx, dto.CreateCategoryRequest{Name: "Ferretería"})
	require.NoError(t, err)

	_, err = s.products.Create(ctx, "u1", dto.CreateProductRequest{SKU: "T-1", Name: "Tuerca", CategoryID: &cat.ID})
	require.NoError(t, err)
	_, err = s.products.Create(ctx, "u1", dto.CreateProductRequest{SKU: "C-1", Name: "Cable"})
	require.NoError(t, err)

	byCat, err := s.products.List(ctx, dto.ProductFilterRequest{CategoryID: cat.ID})
	require.NoError(t, err)
	require.Len(t, byCat.Items, 1)
	assert.Equal(t, "T-1", byCat.Items[0].SKU)

	byText, err := s.products.List(ctx, dto.ProductFilterRequest{Query: "cab"})
	require.NoError(t, err)
	require.Len(t, byText.Items, 1)
	assert.Equal(t, "C-1", byText.Items[0].SKU)

	_, err = s.products.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReorderRuleUseCase_Create(t *testing.T) {
	s := newSetup()
	ctx := context.Background()
	wh, err := s.warehouses.Create(ctx, dto.CreateWarehouseRequest{Code: "WH01", Name: "Principal"})
	require.NoError(t, err)
	p, err := s.products.Create(ctx, "u1", dto.CreateProductRequest{SKU: "SKU-1", Name: "Tornillo"})
	require.NoError(t, err)

	maxQty := decimal.NewFromInt(3)
	_, err = s.rules.Create(ctx, dto.CreateReorderRuleRequest{ProductID: p.ID, WarehouseID: wh.ID, MinQty: decimal.NewFromInt(5), MaxQty: &maxQty})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	rule, err := s.rules.Create(ctx, dto.CreateReorderRuleRequest{ProductID: p.ID, WarehouseID: wh.ID, MinQty: decimal.NewFromInt(5)})
	require.NoError(t, err)
	assert.Nil(t, rule.MaxQty)

	_, err = s.rules.Create(ctx, dto.CreateReorderRuleRequest{ProductID: p.ID, WarehouseID: wh.ID, MinQty: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = s.rules.Create(ctx, dto.CreateReorderRuleRequest{ProductID: uuid.NewString(), WarehouseID: wh.ID, MinQty: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := s.rules.List(ctx, wh.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestProductUseCase_StockInicialInvalidoNoDejaProducto(t *testing.T) {
	s := newSetup()
	ctx := context.Background()
	w1, err := s.warehouses.Create(ctx, dto.CreateWarehouseRequest{Code: "W1", Name: "Uno"})
	require.NoError(t, err)
	w2, err := s.warehouses.Create(ctx, dto.CreateWarehouseRequest{Code: "W2", Name: "Dos"})
	require.NoError(t, err)
	binW2, err := s.warehouses.AddLocation(ctx, w2.ID, dto.CreateLocationRequest{Code: "B-1"})
	require.NoError(t, err)

	in := dto.CreateProductRequest{
		SKU:          "SKU-LOC",
		Name:         "Arandela",
		InitialStock: &dto.InitialStockRequest{WarehouseID: w1.ID, LocationID: &binW2.ID, Quantity: decimal.NewFromInt(3)},
	}
	_, err = s.products.Create(ctx, "u1", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	missing := uuid.NewString()
	in.InitialStock.LocationID = &missing
	_, err = s.products.Create(ctx, "u1", in)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	in.InitialStock.LocationID = nil
	in.InitialStock.Quantity = decimal.RequireFromString("0.00004")
	_, err = s.products.Create(ctx, "u1", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := s.products.List(ctx, dto.ProductFilterRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	// el reintento con el mismo SKU y datos corregidos funciona
	in.InitialStock.LocationID = &binW2.ID
	in.InitialStock.WarehouseID = w2.ID
	in.InitialStock.Quantity = decimal.NewFromInt(3)
	p, err := s.products.Create(ctx, "u1", in)
	require.NoError(t, err)

	q, err := s.store.Quants().Get(ctx, entity.QuantKey{ProductID: p.ID, WarehouseID: w2.ID, LocationID: &binW2.ID})
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.True(t, q.Quantity.Equal(decimal.NewFromInt(3)))
}

func TestProductUseCase_PrecioConMasDeCuatroDecimales(t *testing.T) {
	s := newSetup()
	_, err := s.products.Create(context.Background(), "u1", dto.CreateProductRequest{
		SKU: "P-1", Name: "Clavo", DefaultPrice: decimal.RequireFromString("0.12345"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
