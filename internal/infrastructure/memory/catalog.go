package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.ProductRepository     = (*ProductRepo)(nil)
	_ repository.CategoryRepository    = (*CategoryRepo)(nil)
	_ repository.WarehouseRepository   = (*WarehouseRepo)(nil)
	_ repository.ReorderRuleRepository = (*ReorderRuleRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct{ a access }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.a.with(func(st *state) error {
		for _, existing := range st.products {
			if strings.EqualFold(existing.SKU, p.SKU) {
				return domain.ErrDuplicate
			}
		}
		cp := *p
		st.products[p.ID] = &cp
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.a.with(func(st *state) error {
		if p, ok := st.products[id]; ok {
			cp := *p
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.a.with(func(st *state) error {
		for _, p := range st.products {
			if strings.EqualFold(p.SKU, sku) {
				cp := *p
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.a.with(func(st *state) error {
		q := strings.ToLower(f.Query)
		for _, p := range st.products {
			if f.SKU != "" && !strings.EqualFold(p.SKU, f.SKU) {
				continue
			}
			if f.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != f.CategoryID) {
				continue
			}
			if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.SKU), q) {
				continue
			}
			cp := *p
			out = append(out, &cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return paginate(out, f.Limit, f.Offset), err
}

// CategoryRepo categorías en memoria.
type CategoryRepo struct{ a access }

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	return r.a.with(func(st *state) error {
		cp := *c
		st.categories[c.ID] = &cp
		return nil
	})
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	var out *entity.Category
	err := r.a.with(func(st *state) error {
		if c, ok := st.categories[id]; ok {
			cp := *c
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	var out []*entity.Category
	err := r.a.with(func(st *state) error {
		for _, c := range st.categories {
			cp := *c
			out = append(out, &cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

// WarehouseRepo bodegas y ubicaciones en memoria.
type WarehouseRepo struct{ a access }

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	return r.a.with(func(st *state) error {
		for _, existing := range st.warehouses {
			if strings.EqualFold(existing.Code, w.Code) {
				return domain.ErrDuplicate
			}
		}
		cp := *w
		st.warehouses[w.ID] = &cp
		return nil
	})
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	err := r.a.with(func(st *state) error {
		if w, ok := st.warehouses[id]; ok {
			cp := *w
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *WarehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	err := r.a.with(func(st *state) error {
		for _, w := range st.warehouses {
			cp := *w
			out = append(out, &cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return paginate(out, limit, offset), err
}

func (r *WarehouseRepo) CreateLocation(_ context.Context, loc *entity.Location) error {
	return r.a.with(func(st *state) error {
		for _, existing := range st.locations {
			if existing.WarehouseID == loc.WarehouseID && strings.EqualFold(existing.Code, loc.Code) {
				return domain.ErrDuplicate
			}
		}
		cp := *loc
		st.locations[loc.ID] = &cp
		return nil
	})
}

func (r *WarehouseRepo) GetLocation(_ context.Context, id string) (*entity.Location, error) {
	var out *entity.Location
	err := r.a.with(func(st *state) error {
		if l, ok := st.locations[id]; ok {
			cp := *l
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *WarehouseRepo) ListLocations(_ context.Context, warehouseID string) ([]*entity.Location, error) {
	var out []*entity.Location
	err := r.a.with(func(st *state) error {
		for _, l := range st.locations {
			if l.WarehouseID == warehouseID {
				cp := *l
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, err
}

// ReorderRuleRepo reglas de reposición en memoria.
type ReorderRuleRepo struct{ a access }

func (r *ReorderRuleRepo) Create(_ context.Context, rule *entity.ReorderRule) error {
	return r.a.with(func(st *state) error {
		for _, existing := range st.rules {
			if existing.ProductID == rule.ProductID && existing.WarehouseID == rule.WarehouseID {
				return domain.ErrDuplicate
			}
		}
		cp := *rule
		st.rules[rule.ID] = &cp
		return nil
	})
}

func (r *ReorderRuleRepo) List(_ context.Context, warehouseID string) ([]*entity.ReorderRule, error) {
	var out []*entity.ReorderRule
	err := r.a.with(func(st *state) error {
		for _, rule := range st.rules {
			if warehouseID != "" && rule.WarehouseID != warehouseID {
				continue
			}
			cp := *rule
			out = append(out, &cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}

func (r *ReorderRuleRepo) LowStock(_ context.Context) ([]entity.LowStockAlert, error) {
	var out []entity.LowStockAlert
	err := r.a.with(func(st *state) error {
		for _, rule := range st.rules {
			current := decimal.Zero
			for _, q := range st.quants {
				if q.ProductID == rule.ProductID && q.WarehouseID == rule.WarehouseID {
					current = current.Add(q.Quantity)
				}
			}
			if !current.LessThan(rule.MinQty) {
				continue
			}
			alert := entity.LowStockAlert{
				RuleID:      rule.ID,
				ProductID:   rule.ProductID,
				WarehouseID: rule.WarehouseID,
				CurrentQty:  current,
				MinQty:      rule.MinQty,
				MaxQty:      rule.MaxQty,
			}
			if p, ok := st.products[rule.ProductID]; ok {
				alert.SKU, alert.ProductName = p.SKU, p.Name
			}
			if w, ok := st.warehouses[rule.WarehouseID]; ok {
				alert.WarehouseCode = w.Code
			}
			out = append(out, alert)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].MinQty.Sub(out[i].CurrentQty).GreaterThan(out[j].MinQty.Sub(out[j].CurrentQty))
	})
	return out, err
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
