package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// WarehouseUseCase alta y consulta de bodegas y sus ubicaciones.
type WarehouseUseCase struct {
	repo repository.WarehouseRepository
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(repo repository.WarehouseRepository) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo}
}

// Create crea una nueva bodega. El código es único.
func (uc *WarehouseUseCase) Create(ctx context.Context, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return nil, domain.NewFieldError("code", "requerido")
	}
	now := time.Now().UTC()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		Code:      code,
		Name:      in.Name,
		Address:   in.Address,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse, nil), nil
}

// GetByID obtiene una bodega con sus ubicaciones.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, id string) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}
	locations, err := uc.repo.ListLocations(ctx, id)
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse, locations), nil
}

// List lista bodegas con paginación.
func (uc *WarehouseUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.WarehouseListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w, nil))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// AddLocation crea una ubicación en la bodega. El código es único dentro de la bodega.
func (uc *WarehouseUseCase) AddLocation(ctx context.Context, warehouseID string, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	warehouse, err := uc.repo.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, domain.NewFieldError("code", "requerido")
	}
	loc := &entity.Location{
		ID:          uuid.New().String(),
		WarehouseID: warehouseID,
		Code:        code,
		Name:        in.Name,
		CreatedAt:   time.Now().UTC(),
	}
	if err := uc.repo.CreateLocation(ctx, loc); err != nil {
		return nil, err
	}
	out := toLocationResponse(loc)
	return &out, nil
}

func toWarehouseResponse(w *entity.Warehouse, locations []*entity.Location) *dto.WarehouseResponse {
	out := &dto.WarehouseResponse{
		ID:        w.ID,
		Code:      w.Code,
		Name:      w.Name,
		Address:   w.Address,
		Phone:     w.Phone,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
	for _, l := range locations {
		out.Locations = append(out.Locations, toLocationResponse(l))
	}
	return out
}

func toLocationResponse(l *entity.Location) dto.LocationResponse {
	return dto.LocationResponse{
		ID:          l.ID,
		WarehouseID: l.WarehouseID,
		Code:        l.Code,
		Name:        l.Name,
		CreatedAt:   l.CreatedAt,
	}
}
