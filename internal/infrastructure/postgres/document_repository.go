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

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// headerTables tabla de cabecera de cada tipo; las líneas viven en <tipo>_lines.
var headerTables = map[entity.DocumentKind]string{
	entity.KindReceipt:    "receipts",
	entity.KindDelivery:   "deliveries",
	entity.KindTransfer:   "transfers",
	entity.KindAdjustment: "adjustments",
}

func headerTable(kind entity.DocumentKind) (string, error) {
	t, ok := headerTables[kind]
	if !ok {
		return "", domain.NewFieldError("document_type", "tipo de documento desconocido")
	}
	return t, nil
}

// DocumentRepo documentos de stock. Cabecera y líneas se insertan con el mismo Querier;
// dentro de TxRunner quedan en la misma transacción.
type DocumentRepo struct {
	q Querier
}

func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

const headerColumns = "id, number, reference, status, created_by, created_at, updated_at"

type headerRow struct {
	ID        string    `db:"id"`
	Number    string    `db:"number"`
	Reference string    `db:"reference"`
	Status    string    `db:"status"`
	CreatedBy *string   `db:"created_by"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r headerRow) header(kind entity.DocumentKind) entity.DocumentHeader {
	return entity.DocumentHeader{
		ID:        r.ID,
		Kind:      kind,
		Number:    r.Number,
		Reference: r.Reference,
		Status:    entity.DocumentStatus(r.Status),
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func headerMap(h *entity.DocumentHeader) map[string]any {
	return map[string]any{
		"id":         h.ID,
		"number":     h.Number,
		"reference":  h.Reference,
		"status":     string(h.Status),
		"created_by": h.CreatedBy,
		"created_at": h.CreatedAt,
		"updated_at": h.UpdatedAt,
	}
}

func (r *DocumentRepo) exec(ctx context.Context, b squirrel.Sqlizer, what string) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build %s: %w", what, err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
		}
		return fmt.Errorf("insert %s: %w", what, err)
	}
	return nil
}

// insert cabecera y luego todas las líneas en un solo INSERT multi-fila.
func (r *DocumentRepo) insert(ctx context.Context, header squirrel.InsertBuilder, lines squirrel.InsertBuilder, n int, what string) error {
	if err := r.exec(ctx, header, what); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	return r.exec(ctx, lines, what+" lines")
}

func (r *DocumentRepo) CreateReceipt(ctx context.Context, doc *entity.Receipt) error {
	m := headerMap(&doc.DocumentHeader)
	m["warehouse_id"], m["partner"] = doc.WarehouseID, doc.Partner
	lines := psql.Insert("receipt_lines").
		Columns("document_id", "line_no", "product_id", "quantity", "unit_measure", "unit_price", "warehouse_id", "location_id")
	for i, l := range doc.Lines {
		lines = lines.Values(doc.ID, i, l.ProductID, l.Quantity, l.UnitMeasure, l.UnitPrice, l.WarehouseID, l.LocationID)
	}
	return r.insert(ctx, psql.Insert("receipts").SetMap(m), lines, len(doc.Lines), "receipt")
}

func (r *DocumentRepo) CreateDelivery(ctx context.Context, doc *entity.Delivery) error {
	m := headerMap(&doc.DocumentHeader)
	m["warehouse_id"], m["partner"] = doc.WarehouseID, doc.Partner
	lines := psql.Insert("delivery_lines").
		Columns("document_id", "line_no", "product_id", "quantity", "unit_measure", "unit_price", "warehouse_id", "location_id")
	for i, l := range doc.Lines {
		lines = lines.Values(doc.ID, i, l.ProductID, l.Quantity, l.UnitMeasure, l.UnitPrice, l.WarehouseID, l.LocationID)
	}
	return r.insert(ctx, psql.Insert("deliveries").SetMap(m), lines, len(doc.Lines), "delivery")
}

func (r *DocumentRepo) CreateTransfer(ctx context.Context, doc *entity.Transfer) error {
	m := headerMap(&doc.DocumentHeader)
	m["from_warehouse_id"], m["to_warehouse_id"] = doc.FromWarehouseID, doc.ToWarehouseID
	lines := psql.Insert("transfer_lines").
		Columns("document_id", "line_no", "product_id", "quantity", "unit_measure", "from_location_id", "to_location_id")
	for i, l := range doc.Lines {
		lines = lines.Values(doc.ID, i, l.ProductID, l.Quantity, l.UnitMeasure, l.FromLocationID, l.ToLocationID)
	}
	return r.insert(ctx, psql.Insert("transfers").SetMap(m), lines, len(doc.Lines), "transfer")
}

func (r *DocumentRepo) CreateAdjustment(ctx context.Context, doc *entity.Adjustment) error {
	m := headerMap(&doc.DocumentHeader)
	m["warehouse_id"], m["reason"] = doc.WarehouseID, doc.Reason
	lines := psql.Insert("adjustment_lines").
		Columns("document_id", "line_no", "product_id", "quantity", "unit_measure", "note", "warehouse_id", "location_id")
	for i, l := range doc.Lines {
		lines = lines.Values(doc.ID, i, l.ProductID, l.Quantity, l.UnitMeasure, l.Note, l.WarehouseID, l.LocationID)
	}
	return r.insert(ctx, psql.Insert("adjustments").SetMap(m), lines, len(doc.Lines), "adjustment")
}

// get carga cabecera (con columnas propias del tipo en dst) y líneas ordenadas por line_no.
func (r *DocumentRepo) get(ctx context.Context, table, extra, id string, dst any, linesTable, lineCols string, lines any) error {
	err := pgxscan.Get(ctx, r.q, dst,
		"SELECT "+headerColumns+", "+extra+" FROM "+table+" WHERE id = $1", id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get %s: %w", table, err)
	}
	err = pgxscan.Select(ctx, r.q, lines,
		"SELECT "+lineCols+" FROM "+linesTable+" WHERE document_id = $1 ORDER BY line_no", id)
	if err != nil {
		return fmt.Errorf("get %s: %w", linesTable, err)
	}
	return nil
}

type stockLineRow struct {
	ProductID   string           `db:"product_id"`
	Quantity    decimal.Decimal  `db:"quantity"`
	UnitMeasure string           `db:"unit_measure"`
	UnitPrice   *decimal.Decimal `db:"unit_price"`
	WarehouseID string           `db:"warehouse_id"`
	LocationID  *string          `db:"location_id"`
}

const stockLineColumns = "product_id, quantity, unit_measure, unit_price, warehouse_id, location_id"

type partnerHeaderRow struct {
	headerRow
	WarehouseID string `db:"warehouse_id"`
	Partner     string `db:"partner"`
}

func (r *DocumentRepo) GetReceipt(ctx context.Context, id string) (*entity.Receipt, error) {
	var (
		h     partnerHeaderRow
		lines []stockLineRow
	)
	if err := r.get(ctx, "receipts", "warehouse_id, partner", id, &h, "receipt_lines", stockLineColumns, &lines); err != nil {
		return nil, err
	}
	doc := &entity.Receipt{DocumentHeader: h.header(entity.KindReceipt), WarehouseID: h.WarehouseID, Partner: h.Partner}
	for _, l := range lines {
		doc.Lines = append(doc.Lines, entity.ReceiptLine(l))
	}
	return doc, nil
}

func (r *DocumentRepo) GetDelivery(ctx context.Context, id string) (*entity.Delivery, error) {
	var (
		h     partnerHeaderRow
		lines []stockLineRow
	)
	if err := r.get(ctx, "deliveries", "warehouse_id, partner", id, &h, "delivery_lines", stockLineColumns, &lines); err != nil {
		return nil, err
	}
	doc := &entity.Delivery{DocumentHeader: h.header(entity.KindDelivery), WarehouseID: h.WarehouseID, Partner: h.Partner}
	for _, l := range lines {
		doc.Lines = append(doc.Lines, entity.DeliveryLine(l))
	}
	return doc, nil
}

func (r *DocumentRepo) GetTransfer(ctx context.Context, id string) (*entity.Transfer, error) {
	var (
		h struct {
			headerRow
			FromWarehouseID string `db:"from_warehouse_id"`
			ToWarehouseID   string `db:"to_warehouse_id"`
		}
		lines []struct {
			ProductID      string          `db:"product_id"`
			Quantity       decimal.Decimal `db:"quantity"`
			UnitMeasure    string          `db:"unit_measure"`
			FromLocationID *string         `db:"from_location_id"`
			ToLocationID   *string         `db:"to_location_id"`
		}
	)
	err := r.get(ctx, "transfers", "from_warehouse_id, to_warehouse_id", id, &h,
		"transfer_lines", "product_id, quantity, unit_measure, from_location_id, to_location_id", &lines)
	if err != nil {
		return nil, err
	}
	doc := &entity.Transfer{
		DocumentHeader:  h.header(entity.KindTransfer),
		FromWarehouseID: h.FromWarehouseID,
		ToWarehouseID:   h.ToWarehouseID,
	}
	for _, l := range lines {
		doc.Lines = append(doc.Lines, entity.TransferLine(l))
	}
	return doc, nil
}

func (r *DocumentRepo) GetAdjustment(ctx context.Context, id string) (*entity.Adjustment, error) {
	var (
		h struct {
			headerRow
			WarehouseID string `db:"warehouse_id"`
			Reason      string `db:"reason"`
		}
		lines []struct {
			ProductID   string          `db:"product_id"`
			Quantity    decimal.Decimal `db:"quantity"`
			UnitMeasure string          `db:"unit_measure"`
			Note        string          `db:"note"`
			WarehouseID string          `db:"warehouse_id"`
			LocationID  *string         `db:"location_id"`
		}
	)
	err := r.get(ctx, "adjustments", "warehouse_id, reason", id, &h,
		"adjustment_lines", "product_id, quantity, unit_measure, note, warehouse_id, location_id", &lines)
	if err != nil {
		return nil, err
	}
	doc := &entity.Adjustment{DocumentHeader: h.header(entity.KindAdjustment), WarehouseID: h.WarehouseID, Reason: h.Reason}
	for _, l := range lines {
		doc.Lines = append(doc.Lines, entity.AdjustmentLine(l))
	}
	return doc, nil
}

// LockStatus SELECT ... FOR UPDATE sobre la cabecera. Dos validaciones concurrentes del mismo
// documento se serializan aquí; la segunda ve done y falla con transición inválida.
func (r *DocumentRepo) LockStatus(ctx context.Context, kind entity.DocumentKind, id string) (entity.DocumentStatus, error) {
	table, err := headerTable(kind)
	if err != nil {
		return "", err
	}
	var status string
	if err := pgxscan.Get(ctx, r.q, &status, "SELECT status FROM "+table+" WHERE id = $1 FOR UPDATE", id); err != nil {
		if pgxscan.NotFound(err) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("lock %s: %w", table, err)
	}
	return entity.DocumentStatus(status), nil
}

func (r *DocumentRepo) SetStatus(ctx context.Context, kind entity.DocumentKind, id string, status entity.DocumentStatus) error {
	table, err := headerTable(kind)
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, "UPDATE "+table+" SET status = $2, updated_at = now() WHERE id = $1", id, string(status))
	if err != nil {
		return fmt.Errorf("update %s status: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List cabeceras de un tipo, más recientes primero.
func (r *DocumentRepo) List(ctx context.Context, kind entity.DocumentKind, f repository.DocumentFilter) ([]entity.DocumentHeader, error) {
	table, err := headerTable(kind)
	if err != nil {
		return nil, err
	}
	q := psql.Select(headerColumns).From(table).OrderBy("created_at DESC", "id")
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": string(f.Status)})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s list: %w", table, err)
	}
	var rows []headerRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	out := make([]entity.DocumentHeader, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.header(kind))
	}
	return out, nil
}

const countPendingQuery = `
	SELECT 'receipt' AS kind, COUNT(*) AS n FROM receipts WHERE status IN ('draft', 'waiting', 'ready')
	UNION ALL
	SELECT 'delivery', COUNT(*) FROM deliveries WHERE status IN ('draft', 'waiting', 'ready')
	UNION ALL
	SELECT 'transfer', COUNT(*) FROM transfers WHERE status IN ('draft', 'waiting', 'ready')
	UNION ALL
	SELECT 'adjustment', COUNT(*) FROM adjustments WHERE status IN ('draft', 'waiting', 'ready')`

func (r *DocumentRepo) CountPending(ctx context.Context) (map[entity.DocumentKind]int, error) {
	var rows []struct {
		Kind string `db:"kind"`
		N    int    `db:"n"`
	}
	if err := pgxscan.Select(ctx, r.q, &rows, countPendingQuery); err != nil {
		return nil, fmt.Errorf("count pending documents: %w", err)
	}
	out := make(map[entity.DocumentKind]int, len(rows))
	for _, row := range rows {
		out[entity.DocumentKind(row.Kind)] = row.N
	}
	return out, nil
}
