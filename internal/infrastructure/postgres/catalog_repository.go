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

var (
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.CategoryRepository  = (*CategoryRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
)

// psql constructor de SQL con placeholders $n.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

type productRow struct {
	ID           string          `db:"id"`
	SKU          string          `db:"sku"`
	Name         string          `db:"name"`
	Description  string          `db:"description"`
	UnitMeasure  string          `db:"unit_measure"`
	DefaultPrice decimal.Decimal `db:"default_price"`
	CategoryID   *string         `db:"category_id"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func (r productRow) entity() *entity.Product {
	return &entity.Product{
		ID:           r.ID,
		SKU:          r.SKU,
		Name:         r.Name,
		Description:  r.Description,
		UnitMeasure:  r.UnitMeasure,
		DefaultPrice: r.DefaultPrice,
		CategoryID:   r.CategoryID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

const productColumns = "id, sku, name, description, unit_measure, default_price, category_id, created_at, updated_at"

// Create persiste un nuevo producto. SKU duplicado → ErrDuplicate.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, sku, name, description, unit_measure, default_price, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.SKU, p.Name, p.Description, p.UnitMeasure, p.DefaultPrice, p.CategoryID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: categoría", domain.ErrNotFound)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepo) getOne(ctx context.Context, where string, arg any) (*entity.Product, error) {
	var row productRow
	err := pgxscan.Get(ctx, r.q, &row, "SELECT "+productColumns+" FROM products WHERE "+where, arg)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return row.entity(), nil
}

// GetByID obtiene un producto por ID. (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetBySKU búsqueda sin distinguir mayúsculas. (nil, nil) si no existe.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getOne(ctx, "lower(sku) = lower($1)", sku)
}

// List productos filtrados, ordenados por SKU.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	query, args, err := productListQuery(f).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build product list: %w", err)
	}
	var rows []productRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]*entity.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.entity())
	}
	return out, nil
}

func productListQuery(f repository.ProductFilter) squirrel.SelectBuilder {
	q := psql.Select(productColumns).From("products").OrderBy("sku")
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		q = q.Where(squirrel.Or{squirrel.ILike{"name": pattern}, squirrel.ILike{"sku": pattern}})
	}
	if f.SKU != "" {
		q = q.Where("lower(sku) = lower(?)", f.SKU)
	}
	if f.CategoryID != "" {
		q = q.Where(squirrel.Eq{"category_id": f.CategoryID})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return q
}

// CategoryRepo categorías sobre PostgreSQL.
type CategoryRepo struct {
	q Querier
}

func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

type categoryRow struct {
	ID        string    `db:"id"`
	ParentID  *string   `db:"parent_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r categoryRow) entity() *entity.Category {
	return &entity.Category{ID: r.ID, ParentID: r.ParentID, Name: r.Name, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO categories (id, parent_id, name, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.ParentID, c.Name, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: categoría padre", domain.ErrNotFound)
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	var row categoryRow
	err := pgxscan.Get(ctx, r.q, &row, `SELECT id, parent_id, name, created_at, updated_at FROM categories WHERE id = $1`, id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return row.entity(), nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]*entity.Category, error) {
	var rows []categoryRow
	if err := pgxscan.Select(ctx, r.q, &rows, `SELECT id, parent_id, name, created_at, updated_at FROM categories ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]*entity.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.entity())
	}
	return out, nil
}

// WarehouseRepo bodegas y ubicaciones sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

type warehouseRow struct {
	ID        string    `db:"id"`
	Code      string    `db:"code"`
	Name      string    `db:"name"`
	Address   string    `db:"address"`
	Phone     string    `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r warehouseRow) entity() *entity.Warehouse {
	return &entity.Warehouse{
		ID: r.ID, Code: r.Code, Name: r.Name, Address: r.Address, Phone: r.Phone,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const warehouseColumns = "id, code, name, address, phone, created_at, updated_at"

// Create persiste una bodega. Código duplicado → ErrDuplicate.
func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO warehouses (id, code, name, address, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		w.ID, w.Code, w.Name, w.Address, w.Phone, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	var row warehouseRow
	err := pgxscan.Get(ctx, r.q, &row, "SELECT "+warehouseColumns+" FROM warehouses WHERE id = $1", id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return row.entity(), nil
}

func (r *WarehouseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	var rows []warehouseRow
	err := pgxscan.Select(ctx, r.q, &rows,
		"SELECT "+warehouseColumns+" FROM warehouses ORDER BY code LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	out := make([]*entity.Warehouse, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.entity())
	}
	return out, nil
}

type locationRow struct {
	ID          string    `db:"id"`
	WarehouseID string    `db:"warehouse_id"`
	Code        string    `db:"code"`
	Name        string    `db:"name"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r locationRow) entity() *entity.Location {
	return &entity.Location{ID: r.ID, WarehouseID: r.WarehouseID, Code: r.Code, Name: r.Name, CreatedAt: r.CreatedAt}
}

// CreateLocation código único dentro de la bodega.
func (r *WarehouseRepo) CreateLocation(ctx context.Context, l *entity.Location) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO locations (id, warehouse_id, code, name, created_at) VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.WarehouseID, l.Code, l.Name, l.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: bodega", domain.ErrNotFound)
		}
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

func (r *WarehouseRepo) GetLocation(ctx context.Context, id string) (*entity.Location, error) {
	var row locationRow
	err := pgxscan.Get(ctx, r.q, &row, `SELECT id, warehouse_id, code, name, created_at FROM locations WHERE id = $1`, id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return row.entity(), nil
}

func (r *WarehouseRepo) ListLocations(ctx context.Context, warehouseID string) ([]*entity.Location, error) {
	var rows []locationRow
	err := pgxscan.Select(ctx, r.q, &rows,
		`SELECT id, warehouse_id, code, name, created_at FROM locations WHERE warehouse_id = $1 ORDER BY code`, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	out := make([]*entity.Location, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.entity())
	}
	return out, nil
}
