package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// QueryUseCase lecturas sobre saldos, historial, alertas y tablero. No modifica estado.
type QueryUseCase struct {
	quants repository.QuantRepository
	moves  repository.MoveRepository
	rules  repository.ReorderRuleRepository
	docs   repository.DocumentRepository
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(
	quants repository.QuantRepository,
	moves repository.MoveRepository,
	rules repository.ReorderRuleRepository,
	docs repository.DocumentRepository,
) *QueryUseCase {
	return &QueryUseCase{quants: quants, moves: moves, rules: rules, docs: docs}
}

// GetBalance saldo de una cuenta; cero si la cuenta todavía no existe.
func (uc *QueryUseCase) GetBalance(ctx context.Context, key entity.QuantKey) (decimal.Decimal, error) {
	q, err := uc.quants.Get(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	if q == nil {
		return decimal.Zero, nil
	}
	return q.Quantity, nil
}

// ListQuants saldos por cuenta con filtros opcionales.
func (uc *QueryUseCase) ListQuants(ctx context.Context, in dto.QuantFilterRequest) ([]dto.QuantResponse, error) {
	list, err := uc.quants.List(ctx, quantFilter(in))
	if err != nil {
		return nil, err
	}
	out := make([]dto.QuantResponse, 0, len(list))
	for _, q := range list {
		out = append(out, toQuantResponse(q))
	}
	return out, nil
}

// Totals saldos agregados por producto (por defecto) o por bodega.
func (uc *QueryUseCase) Totals(ctx context.Context, in dto.QuantFilterRequest) ([]dto.QuantTotalResponse, error) {
	groupBy := repository.GroupByProduct
	switch in.GroupBy {
	case "", string(repository.GroupByProduct):
	case string(repository.GroupByWarehouse):
		groupBy = repository.GroupByWarehouse
	default:
		return nil, domain.NewFieldError("group_by", "debe ser product o warehouse")
	}
	totals, err := uc.quants.Totals(ctx, groupBy, quantFilter(in))
	if err != nil {
		return nil, err
	}
	out := make([]dto.QuantTotalResponse, 0, len(totals))
	for _, t := range totals {
		out = append(out, dto.QuantTotalResponse{GroupBy: string(groupBy), ID: t.GroupID, Quantity: t.Quantity})
	}
	return out, nil
}

func quantFilter(in dto.QuantFilterRequest) repository.QuantFilter {
	return repository.QuantFilter{ProductID: in.ProductID, WarehouseID: in.WarehouseID, LocationID: in.LocationID}
}

// MoveHistory historial de movimientos filtrado y paginado. Orden por fecha de creación,
// descendente salvo sort=asc.
func (uc *QueryUseCase) MoveHistory(ctx context.Context, in dto.MoveHistoryRequest) (*dto.MoveHistoryResponse, error) {
	f := repository.MoveFilter{
		ProductID:    in.ProductID,
		WarehouseID:  in.WarehouseID,
		LocationID:   in.LocationID,
		DocumentType: entity.DocumentKind(in.DocumentType),
		Status:       in.Status,
		CategoryID:   in.CategoryID,
		Ascending:    in.Sort == "asc",
		Limit:        in.Limit,
		Page:         in.Page,
	}
	if f.DocumentType != "" && !f.DocumentType.Valid() {
		return nil, domain.NewFieldError("document_type", "tipo de documento desconocido")
	}
	var err error
	if f.From, err = parseTime("from", in.From); err != nil {
		return nil, err
	}
	if f.To, err = parseTime("to", in.To); err != nil {
		return nil, err
	}
	f.Normalize()

	moves, total, err := uc.moves.History(ctx, f)
	if err != nil {
		return nil, err
	}
	data := make([]dto.MoveResponse, 0, len(moves))
	for _, m := range moves {
		data = append(data, toMoveResponse(m))
	}
	return &dto.MoveHistoryResponse{
		Data: data,
		Meta: dto.MoveHistoryMeta{
			Total: total,
			Page:  f.Page,
			Limit: f.Limit,
			Pages: (total + f.Limit - 1) / f.Limit,
		},
	}, nil
}

func parseTime(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, domain.NewFieldError(field, "fecha RFC3339 inválida")
	}
	return &t, nil
}

// LowStockAlerts reglas cuyo saldo en bodega está bajo el mínimo, con la cantidad sugerida a pedir.
// El saldo se recalcula en cada llamada.
func (uc *QueryUseCase) LowStockAlerts(ctx context.Context) ([]dto.LowStockAlertDTO, error) {
	alerts, err := uc.rules.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockAlertDTO, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, dto.LowStockAlertDTO{
			RuleID:            a.RuleID,
			ProductID:         a.ProductID,
			SKU:               a.SKU,
			ProductName:       a.ProductName,
			WarehouseID:       a.WarehouseID,
			WarehouseCode:     a.WarehouseCode,
			CurrentQty:        a.CurrentQty,
			MinQty:            a.MinQty,
			MaxQty:            a.MaxQty,
			SuggestedOrderQty: inventory.SuggestedOrderQty(a.CurrentQty, a.MinQty, a.MaxQty),
		})
	}
	return out, nil
}

// Dashboard indicadores del tablero. Las lecturas son independientes y corren en paralelo.
func (uc *QueryUseCase) Dashboard(ctx context.Context) (*dto.DashboardDTO, error) {
	var (
		out     dto.DashboardDTO
		pending map[entity.DocumentKind]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TotalProductsInStock, err = uc.quants.CountProductsInStock(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.TotalStockValue, err = uc.quants.StockValue(gctx)
		return err
	})
	g.Go(func() error {
		alerts, err := uc.rules.LowStock(gctx)
		out.LowStockCount = len(alerts)
		return err
	})
	g.Go(func() (err error) {
		pending, err = uc.docs.CountPending(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out.PendingReceipts = pending[entity.KindReceipt]
	out.PendingDeliveries = pending[entity.KindDelivery]
	out.PendingTransfers = pending[entity.KindTransfer]
	out.PendingAdjustments = pending[entity.KindAdjustment]
	return &out, nil
}
