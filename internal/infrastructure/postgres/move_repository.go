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

var _ repository.MoveRepository = (*MoveRepo)(nil)

// MoveRepo historial inmutable de movimientos. seq desempata movimientos con el mismo created_at.
type MoveRepo struct {
	q Querier
}

// NewMoveRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMoveRepository(q Querier) *MoveRepo {
	return &MoveRepo{q: q}
}

type moveRow struct {
	ID              string          `db:"id"`
	ProductID       string          `db:"product_id"`
	Quantity        decimal.Decimal `db:"quantity"`
	UnitMeasure     string          `db:"unit_measure"`
	FromWarehouseID *string         `db:"from_warehouse_id"`
	FromLocationID  *string         `db:"from_location_id"`
	ToWarehouseID   *string         `db:"to_warehouse_id"`
	ToLocationID    *string         `db:"to_location_id"`
	Reason          string          `db:"reason"`
	Reference       string          `db:"reference"`
	DocumentType    string          `db:"document_type"`
	DocumentID      string          `db:"document_id"`
	CreatedBy       *string         `db:"created_by"`
	Status          string          `db:"status"`
	CreatedAt       time.Time       `db:"created_at"`
}

func (r moveRow) entity() *entity.StockMove {
	return &entity.StockMove{
		ID:              r.ID,
		ProductID:       r.ProductID,
		Quantity:        r.Quantity,
		UnitMeasure:     r.UnitMeasure,
		FromWarehouseID: r.FromWarehouseID,
		FromLocationID:  r.FromLocationID,
		ToWarehouseID:   r.ToWarehouseID,
		ToLocationID:    r.ToLocationID,
		Reason:          r.Reason,
		Reference:       r.Reference,
		DocumentType:    entity.DocumentKind(r.DocumentType),
		DocumentID:      r.DocumentID,
		CreatedBy:       r.CreatedBy,
		Status:          r.Status,
		CreatedAt:       r.CreatedAt,
	}
}

var moveColumns = []string{
	"m.id", "m.product_id", "m.quantity", "m.unit_measure",
	"m.from_warehouse_id", "m.from_location_id", "m.to_warehouse_id", "m.to_location_id",
	"m.reason", "m.reference", "m.document_type", "m.document_id", "m.created_by", "m.status", "m.created_at",
}

// Create inserta el movimiento. No hay camino de actualización ni borrado.
func (r *MoveRepo) Create(ctx context.Context, m *entity.StockMove) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_moves (
			id, product_id, quantity, unit_measure,
			from_warehouse_id, from_location_id, to_warehouse_id, to_location_id,
			reason, reference, document_type, document_id, created_by, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		m.ID, m.ProductID, m.Quantity, m.UnitMeasure,
		m.FromWarehouseID, m.FromLocationID, m.ToWarehouseID, m.ToLocationID,
		m.Reason, m.Reference, string(m.DocumentType), m.DocumentID, m.CreatedBy, m.Status, m.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: referencia del movimiento", domain.ErrNotFound)
		}
		return fmt.Errorf("insert stock move: %w", err)
	}
	return nil
}

// ListByDocument movimientos de un documento en el orden de sus líneas.
func (r *MoveRepo) ListByDocument(ctx context.Context, kind entity.DocumentKind, documentID string) ([]*entity.StockMove, error) {
	query, args, err := psql.Select(moveColumns...).From("stock_moves m").
		Where(squirrel.Eq{"m.document_type": string(kind), "m.document_id": documentID}).
		OrderBy("m.seq").
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.selectMoves(ctx, query, args)
}

// History historial filtrado y paginado; devuelve también el total sin paginar.
func (r *MoveRepo) History(ctx context.Context, f repository.MoveFilter) ([]*entity.StockMove, int, error) {
	f.Normalize()
	list, count := moveHistoryQueries(f)

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build move count: %w", err)
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock moves: %w", err)
	}

	listSQL, listArgs, err := list.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build move history: %w", err)
	}
	moves, err := r.selectMoves(ctx, listSQL, listArgs)
	if err != nil {
		return nil, 0, err
	}
	return moves, total, nil
}

func (r *MoveRepo) selectMoves(ctx context.Context, query string, args []any) ([]*entity.StockMove, error) {
	var rows []moveRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select stock moves: %w", err)
	}
	out := make([]*entity.StockMove, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.entity())
	}
	return out, nil
}

// moveHistoryQueries arma la consulta paginada y su COUNT con los mismos filtros.
func moveHistoryQueries(f repository.MoveFilter) (list, count squirrel.SelectBuilder) {
	where := squirrel.And{}
	if f.ProductID != "" {
		where = append(where, squirrel.Eq{"m.product_id": f.ProductID})
	}
	if f.WarehouseID != "" {
		where = append(where, squirrel.Or{
			squirrel.Eq{"m.from_warehouse_id": f.WarehouseID},
			squirrel.Eq{"m.to_warehouse_id": f.WarehouseID},
		})
	}
	if f.LocationID != "" {
		where = append(where, squirrel.Or{
			squirrel.Eq{"m.from_location_id": f.LocationID},
			squirrel.Eq{"m.to_location_id": f.LocationID},
		})
	}
	if f.DocumentType != "" {
		where = append(where, squirrel.Eq{"m.document_type": string(f.DocumentType)})
	}
	if f.Status != "" {
		where = append(where, squirrel.Eq{"m.status": f.Status})
	}
	if f.CategoryID != "" {
		where = append(where, squirrel.Eq{"p.category_id": f.CategoryID})
	}
	if f.From != nil {
		where = append(where, squirrel.GtOrEq{"m.created_at": *f.From})
	}
	if f.To != nil {
		where = append(where, squirrel.LtOrEq{"m.created_at": *f.To})
	}

	from := func(b squirrel.SelectBuilder) squirrel.SelectBuilder {
		b = b.From("stock_moves m")
		if f.CategoryID != "" {
			b = b.Join("products p ON p.id = m.product_id")
		}
		if len(where) > 0 {
			b = b.Where(where)
		}
		return b
	}

	dir := "DESC"
	if f.Ascending {
		dir = "ASC"
	}
	list = from(psql.Select(moveColumns...)).
		OrderBy("m.created_at "+dir, "m.seq "+dir).
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset()))
	count = from(psql.Select("COUNT(*)"))
	return list, count
}
