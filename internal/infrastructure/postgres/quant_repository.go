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

var _ repository.QuantRepository = (*QuantRepo)(nil)

// QuantRepo saldos por (producto, bodega, ubicación). La ubicación nula es el nivel bodega;
// el índice único usa NULLS NOT DISTINCT para que exista una sola fila por clave.
type QuantRepo struct {
	q Querier
}

// NewQuantRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewQuantRepository(q Querier) *QuantRepo {
	return &QuantRepo{q: q}
}

type quantRow struct {
	ID          string          `db:"id"`
	ProductID   string          `db:"product_id"`
	WarehouseID string          `db:"warehouse_id"`
	LocationID  *string         `db:"location_id"`
	Quantity    decimal.Decimal `db:"quantity"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (r quantRow) entity() *entity.StockQuant {
	return &entity.StockQuant{
		ID:          r.ID,
		ProductID:   r.ProductID,
		WarehouseID: r.WarehouseID,
		LocationID:  r.LocationID,
		Quantity:    r.Quantity,
		UpdatedAt:   r.UpdatedAt,
	}
}

const quantColumns = "id, product_id, warehouse_id, location_id, quantity, updated_at"

const quantByKey = `
	SELECT ` + quantColumns + `
	FROM stock_quants
	WHERE product_id = $1 AND warehouse_id = $2 AND location_id IS NOT DISTINCT FROM $3`

func (r *QuantRepo) byKey(ctx context.Context, key entity.QuantKey, suffix string) (*entity.StockQuant, error) {
	var row quantRow
	if err := pgxscan.Get(ctx, r.q, &row, quantByKey+suffix, key.ProductID, key.WarehouseID, key.LocationID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get quant: %w", err)
	}
	return row.entity(), nil
}

// GetForUpdate bloquea la fila de la cuenta hasta el fin de la transacción. (nil, nil) si no existe.
func (r *QuantRepo) GetForUpdate(ctx context.Context, key entity.QuantKey) (*entity.StockQuant, error) {
	return r.byKey(ctx, key, " FOR UPDATE")
}

// Get lectura sin bloqueo.
func (r *QuantRepo) Get(ctx context.Context, key entity.QuantKey) (*entity.StockQuant, error) {
	return r.byKey(ctx, key, "")
}

// Create inserta la cuenta. Si otra transacción la creó entre el SELECT y el INSERT, la fila
// existente queda bloqueada por el ON CONFLICT y la cantidad se suma sobre ella.
func (r *QuantRepo) Create(ctx context.Context, quant *entity.StockQuant) (*entity.StockQuant, error) {
	query := `
		INSERT INTO stock_quants (id, product_id, warehouse_id, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (product_id, warehouse_id, location_id)
		DO UPDATE SET quantity = stock_quants.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
		RETURNING ` + quantColumns
	var row quantRow
	err := pgxscan.Get(ctx, r.q, &row, query,
		quant.ID, quant.ProductID, quant.WarehouseID, quant.LocationID, quant.Quantity, quant.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: producto, bodega o ubicación de la cuenta", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("insert quant: %w", err)
	}
	return row.entity(), nil
}

// Update persiste la cantidad de una cuenta ya bloqueada con GetForUpdate.
func (r *QuantRepo) Update(ctx context.Context, quant *entity.StockQuant) error {
	_, err := r.q.Exec(ctx,
		`UPDATE stock_quants SET quantity = $2, updated_at = $3 WHERE id = $1`,
		quant.ID, quant.Quantity, quant.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update quant: %w", err)
	}
	return nil
}

func applyQuantFilter(q squirrel.SelectBuilder, f repository.QuantFilter) squirrel.SelectBuilder {
	if f.ProductID != "" {
		q = q.Where(squirrel.Eq{"product_id": f.ProductID})
	}
	if f.WarehouseID != "" {
		q = q.Where(squirrel.Eq{"warehouse_id": f.WarehouseID})
	}
	if f.LocationID != "" {
		q = q.Where(squirrel.Eq{"location_id": f.LocationID})
	}
	return q
}

func (r *QuantRepo) List(ctx context.Context, f repository.QuantFilter) ([]*entity.StockQuant, error) {
	query, args, err := applyQuantFilter(
		psql.Select(quantColumns).From("stock_quants").OrderBy("product_id", "warehouse_id", "location_id NULLS FIRST"), f,
	).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build quant list: %w", err)
	}
	var rows []quantRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list quants: %w", err)
	}
	out := make([]*entity.StockQuant, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.entity())
	}
	return out, nil
}

// Totals suma por producto o por bodega.
func (r *QuantRepo) Totals(ctx context.Context, groupBy repository.QuantGroupBy, f repository.QuantFilter) ([]repository.QuantTotal, error) {
	query, args, err := quantTotalsQuery(groupBy, f).ToSql()
	if err != nil {
		return nil, err
	}
	var rows []struct {
		GroupID  string          `db:"group_id"`
		Quantity decimal.Decimal `db:"quantity"`
	}
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("quant totals: %w", err)
	}
	out := make([]repository.QuantTotal, 0, len(rows))
	for _, row := range rows {
		out = append(out, repository.QuantTotal{GroupID: row.GroupID, Quantity: row.Quantity})
	}
	return out, nil
}

func quantTotalsQuery(groupBy repository.QuantGroupBy, f repository.QuantFilter) squirrel.SelectBuilder {
	col := "product_id"
	if groupBy == repository.GroupByWarehouse {
		col = "warehouse_id"
	}
	return applyQuantFilter(
		psql.Select(col+" AS group_id", "SUM(quantity) AS quantity").From("stock_quants").GroupBy(col).OrderBy(col), f,
	)
}

func (r *QuantRepo) CountProductsInStock(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(DISTINCT product_id) FROM stock_quants WHERE quantity > 0`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products in stock: %w", err)
	}
	return n, nil
}

func (r *QuantRepo) StockValue(ctx context.Context) (decimal.Decimal, error) {
	var v decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(q.quantity * p.default_price), 0)
		FROM stock_quants q
		JOIN products p ON p.id = q.product_id
		WHERE q.quantity > 0`).Scan(&v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("stock value: %w", err)
	}
	return v, nil
}
