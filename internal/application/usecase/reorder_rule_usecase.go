package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReorderRuleUseCase reglas de mínimo/máximo por producto y bodega.
type ReorderRuleUseCase struct {
	repo       repository.ReorderRuleRepository
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
}

func NewReorderRuleUseCase(
	repo repository.ReorderRuleRepository,
	products repository.ProductRepository,
	warehouses repository.WarehouseRepository,
) *ReorderRuleUseCase {
	return &ReorderRuleUseCase{repo: repo, products: products, warehouses: warehouses}
}

// Create crea la regla. Una sola regla por (producto, bodega).
func (uc *ReorderRuleUseCase) Create(ctx context.Context, in dto.CreateReorderRuleRequest) (*dto.ReorderRuleResponse, error) {
	if in.MinQty.IsNegative() {
		return nil, domain.NewFieldError("min_qty", "no puede ser negativo")
	}
	if in.MaxQty != nil && in.MaxQty.LessThan(in.MinQty) {
		return nil, domain.NewFieldError("max_qty", "debe ser mayor o igual que min_qty")
	}
	p, err := uc.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	w, err := uc.warehouses.GetByID(ctx, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.ErrNotFound
	}

	rule := &entity.ReorderRule{
		ID:          uuid.New().String(),
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		MinQty:      in.MinQty,
		MaxQty:      in.MaxQty,
		CreatedAt:   time.Now().UTC(),
	}
	if err := uc.repo.Create(ctx, rule); err != nil {
		return nil, err
	}
	out := toReorderRuleResponse(rule)
	return &out, nil
}

// List reglas, opcionalmente de una bodega.
func (uc *ReorderRuleUseCase) List(ctx context.Context, warehouseID string) ([]dto.ReorderRuleResponse, error) {
	list, err := uc.repo.List(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReorderRuleResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toReorderRuleResponse(r))
	}
	return out, nil
}

func toReorderRuleResponse(r *entity.ReorderRule) dto.ReorderRuleResponse {
	return dto.ReorderRuleResponse{
		ID:          r.ID,
		ProductID:   r.ProductID,
		WarehouseID: r.WarehouseID,
		MinQty:      r.MinQty,
		MaxQty:      r.MaxQty,
		CreatedAt:   r.CreatedAt,
	}
}
