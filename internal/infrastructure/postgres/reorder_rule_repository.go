package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ReorderRuleRepository = (*ReorderRuleRepo)(nil)

// ReorderRuleRepo reglas de reposición; una por (producto, bodega).
type ReorderRuleRepo struct {
	q Querier
}

func NewReorderRuleRepository(q Querier) *ReorderRuleRepo {
	return &ReorderRuleRepo{q: q}
}

type reorderRuleRow struct {
	ID          string           `db:"id"`
	ProductID   string           `db:"product_id"`
	WarehouseID string           `db:"warehouse_id"`
	MinQty      decimal.Decimal  `db:"min_qty"`
	MaxQty      *decimal.Decimal `db:"max_qty"`
	CreatedAt   time.Time        `db:"created_at"`
}

func (r *ReorderRuleRepo) Create(ctx context.Context, rule *entity.ReorderRule) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO reorder_rules (id, product_id, warehouse_id, min_qty, max_qty, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rule.ID, rule.ProductID, rule.WarehouseID, rule.MinQty, rule.MaxQty, rule.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: producto o bodega", domain.ErrNotFound)
		}
		return fmt.Errorf("insert reorder rule: %w", err)
	}
	return nil
}

// List reglas de una bodega, o todas si warehouseID es vacío.
func (r *ReorderRuleRepo) List(ctx context.Context, warehouseID string) ([]*entity.ReorderRule, error) {
	q := psql.Select("id, product_id, warehouse_id, min_qty, max_qty, created_at").
		From("reorder_rules").OrderBy("created_at")
	if warehouseID != "" {
		q = q.Where(squirrel.Eq{"warehouse_id": warehouseID})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	var rows []reorderRuleRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list reorder rules: %w", err)
	}
	out := make([]*entity.ReorderRule, 0, len(rows))
	for _, row := range rows {
		out = append(out, &entity.ReorderRule{
			ID:          row.ID,
			ProductID:   row.ProductID,
			WarehouseID: row.WarehouseID,
			MinQty:      row.MinQty,
			MaxQty:      row.MaxQty,
			CreatedAt:   row.CreatedAt,
		})
	}
	return out, nil
}

// lowStockQuery compara MinQty con la suma de todas las cuentas del producto en la bodega
// (nivel bodega y cada ubicación), no con una sola cuenta: una regla es por bodega y el stock
// repartido en ubicaciones cuenta entero. Sin cuentas el saldo es 0.
const lowStockQuery = `
	SELECT r.id AS rule_id, r.product_id, p.sku, p.name AS product_name,
	       r.warehouse_id, w.code AS warehouse_code,
	       COALESCE(s.qty, 0) AS current_qty, r.min_qty, r.max_qty
	FROM reorder_rules r
	JOIN products p ON p.id = r.product_id
	JOIN warehouses w ON w.id = r.warehouse_id
	LEFT JOIN (
		SELECT product_id, warehouse_id, SUM(quantity) AS qty
		FROM stock_quants
		GROUP BY product_id, warehouse_id
	) s ON s.product_id = r.product_id AND s.warehouse_id = r.warehouse_id
	WHERE COALESCE(s.qty, 0) < r.min_qty
	ORDER BY r.min_qty - COALESCE(s.qty, 0) DESC, p.sku`

// LowStock ver lowStockQuery. La memoria aplica la misma suma por bodega.
func (r *ReorderRuleRepo) LowStock(ctx context.Context) ([]entity.LowStockAlert, error) {
	var rows []struct {
		RuleID        string           `db:"rule_id"`
		ProductID     string           `db:"product_id"`
		SKU           string           `db:"sku"`
		ProductName   string           `db:"product_name"`
		WarehouseID   string           `db:"warehouse_id"`
		WarehouseCode string           `db:"warehouse_code"`
		CurrentQty    decimal.Decimal  `db:"current_qty"`
		MinQty        decimal.Decimal  `db:"min_qty"`
		MaxQty        *decimal.Decimal `db:"max_qty"`
	}
	if err := pgxscan.Select(ctx, r.q, &rows, lowStockQuery); err != nil {
		return nil, fmt.Errorf("low stock alerts: %w", err)
	}
	out := make([]entity.LowStockAlert, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.LowStockAlert(row))
	}
	return out, nil
}
