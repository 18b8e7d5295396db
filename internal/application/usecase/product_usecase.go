package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// InitialStockBooker registra la existencia de apertura de un producto a través del libro de stock.
type InitialStockBooker interface {
	CheckInitialStock(ctx context.Context, warehouseID string, locationID *string, qty decimal.Decimal) error
	BookInitialStock(ctx context.Context, userID, productID, warehouseID string, locationID *string, qty decimal.Decimal, uom string) error
}

// ProductUseCase alta y consulta de productos. El stock nunca se edita aquí: vive en los saldos.
type ProductUseCase struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	stock      InitialStockBooker
}

// NewProductUseCase construye el caso de uso. stock puede ser nil si no se admite stock inicial.
func NewProductUseCase(
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	stock InitialStockBooker,
) *ProductUseCase {
	return &ProductUseCase{repo: repo, categories: categories, stock: stock}
}

// Create crea un producto. Con InitialStock, además registra y aplica un ajuste de apertura.
func (uc *ProductUseCase) Create(ctx context.Context, userID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	if in.SKU == "" {
		return nil, domain.NewFieldError("sku", "requerido")
	}
	if in.DefaultPrice.IsNegative() {
		return nil, domain.NewFieldError("default_price", "no puede ser negativo")
	}
	if !inventory.FitsScale(in.DefaultPrice) {
		return nil, domain.NewFieldError("default_price", fmt.Sprintf("admite como máximo %d decimales", inventory.QuantityScale))
	}
	existing, err := uc.repo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if in.CategoryID != nil {
		c, err := uc.categories.GetByID(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, domain.ErrNotFound
		}
	}
	if in.InitialStock != nil {
		if uc.stock == nil {
			return nil, domain.NewFieldError("initial_stock", "no disponible")
		}
		s := in.InitialStock
		if err := uc.stock.CheckInitialStock(ctx, s.WarehouseID, s.LocationID, s.Quantity); err != nil {
			return nil, err
		}
	}
	if in.UnitMeasure == "" {
		in.UnitMeasure = "und"
	}

	now := time.Now().UTC()
	product := &entity.Product{
		ID:           uuid.New().String(),
		SKU:          in.SKU,
		Name:         in.Name,
		Description:  in.Description,
		UnitMeasure:  in.UnitMeasure,
		DefaultPrice: in.DefaultPrice,
		CategoryID:   in.CategoryID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	if s := in.InitialStock; s != nil {
		if err := uc.stock.BookInitialStock(ctx, userID, product.ID, s.WarehouseID, s.LocationID, s.Quantity, product.UnitMeasure); err != nil {
			return nil, err
		}
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// List lista productos con filtros de texto, SKU y categoría.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductFilterRequest) (*dto.ProductListResponse, error) {
	in.DefaultPage()
	list, err := uc.repo.List(ctx, repository.ProductFilter{
		Query:      in.Query,
		SKU:        in.SKU,
		CategoryID: in.CategoryID,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		UnitMeasure:  p.UnitMeasure,
		DefaultPrice: p.DefaultPrice,
		CategoryID:   p.CategoryID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
