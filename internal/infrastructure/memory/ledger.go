package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.QuantRepository    = (*QuantRepo)(nil)
	_ repository.MoveRepository     = (*MoveRepo)(nil)
	_ repository.DocumentRepository = (*DocumentRepo)(nil)
)

// QuantRepo saldos en memoria.
type QuantRepo struct{ a access }

func (r *QuantRepo) GetForUpdate(ctx context.Context, key entity.QuantKey) (*entity.StockQuant, error) {
	return r.Get(ctx, key)
}

func (r *QuantRepo) Create(_ context.Context, q *entity.StockQuant) (*entity.StockQuant, error) {
	var out *entity.StockQuant
	err := r.a.with(func(st *state) error {
		k := q.Key().String()
		if existing, ok := st.quants[k]; ok {
			existing.Quantity = existing.Quantity.Add(q.Quantity)
			existing.UpdatedAt = q.UpdatedAt
			cp := *existing
			out = &cp
			return nil
		}
		if err := checkQuantRefs(st, q.Key()); err != nil {
			return err
		}
		cp := *q
		st.quants[k] = &cp
		ret := cp
		out = &ret
		return nil
	})
	return out, err
}

// checkQuantRefs replica las claves foráneas de stock_quants.
func checkQuantRefs(st *state, key entity.QuantKey) error {
	if _, ok := st.products[key.ProductID]; !ok {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, key.ProductID)
	}
	if _, ok := st.warehouses[key.WarehouseID]; !ok {
		return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, key.WarehouseID)
	}
	if key.LocationID != nil {
		if _, ok := st.locations[*key.LocationID]; !ok {
			return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, *key.LocationID)
		}
	}
	return nil
}

func (r *QuantRepo) Update(_ context.Context, q *entity.StockQuant) error {
	return r.a.with(func(st *state) error {
		existing, ok := st.quants[q.Key().String()]
		if !ok {
			return domain.ErrNotFound
		}
		existing.Quantity = q.Quantity
		existing.UpdatedAt = q.UpdatedAt
		return nil
	})
}

func (r *QuantRepo) Get(_ context.Context, key entity.QuantKey) (*entity.StockQuant, error) {
	var out *entity.StockQuant
	err := r.a.with(func(st *state) error {
		if q, ok := st.quants[key.String()]; ok {
			cp := *q
			out = &cp
		}
		return nil
	})
	return out, err
}

func matchQuant(q *entity.StockQuant, f repository.QuantFilter) bool {
	if f.ProductID != "" && q.ProductID != f.ProductID {
		return false
	}
	if f.WarehouseID != "" && q.WarehouseID != f.WarehouseID {
		return false
	}
	if f.LocationID != "" && (q.LocationID == nil || *q.LocationID != f.LocationID) {
		return false
	}
	return true
}

func (r *QuantRepo) List(_ context.Context, f repository.QuantFilter) ([]*entity.StockQuant, error) {
	var out []*entity.StockQuant
	err := r.a.with(func(st *state) error {
		for _, q := range st.quants {
			if matchQuant(q, f) {
				cp := *q
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Key().String() < out[j].Key().String() })
	return out, err
}

func (r *QuantRepo) Totals(_ context.Context, groupBy repository.QuantGroupBy, f repository.QuantFilter) ([]repository.QuantTotal, error) {
	sums := map[string]decimal.Decimal{}
	err := r.a.with(func(st *state) error {
		for _, q := range st.quants {
			if !matchQuant(q, f) {
				continue
			}
			id := q.ProductID
			if groupBy == repository.GroupByWarehouse {
				id = q.WarehouseID
			}
			sums[id] = sums[id].Add(q.Quantity)
		}
		return nil
	})
	out := make([]repository.QuantTotal, 0, len(sums))
	for id, qty := range sums {
		out = append(out, repository.QuantTotal{GroupID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupID < out[j].GroupID })
	return out, err
}

func (r *QuantRepo) CountProductsInStock(_ context.Context) (int, error) {
	seen := map[string]struct{}{}
	err := r.a.with(func(st *state) error {
		for _, q := range st.quants {
			if q.Quantity.IsPositive() {
				seen[q.ProductID] = struct{}{}
			}
		}
		return nil
	})
	return len(seen), err
}

func (r *QuantRepo) StockValue(_ context.Context) (decimal.Decimal, error) {
	var items []inventory.ValuedQuantity
	err := r.a.with(func(st *state) error {
		for _, q := range st.quants {
			if p, ok := st.products[q.ProductID]; ok {
				items = append(items, inventory.ValuedQuantity{Quantity: q.Quantity, Price: p.DefaultPrice})
			}
		}
		return nil
	})
	return inventory.StockValue(items), err
}

// MoveRepo movimientos en memoria (solo inserción).
type MoveRepo struct{ a access }

func (r *MoveRepo) Create(_ context.Context, m *entity.StockMove) error {
	return r.a.with(func(st *state) error {
		cp := *m
		st.moves = append(st.moves, &cp)
		return nil
	})
}

func (r *MoveRepo) ListByDocument(_ context.Context, kind entity.DocumentKind, documentID string) ([]*entity.StockMove, error) {
	var out []*entity.StockMove
	err := r.a.with(func(st *state) error {
		for _, m := range st.moves {
			if m.DocumentType == kind && m.DocumentID == documentID {
				cp := *m
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

func eqPtr(p *string, v string) bool { return p != nil && *p == v }

func (r *MoveRepo) History(_ context.Context, f repository.MoveFilter) ([]*entity.StockMove, int, error) {
	f.Normalize()
	var matched []*entity.StockMove
	err := r.a.with(func(st *state) error {
		for _, m := range st.moves {
			if f.ProductID != "" && m.ProductID != f.ProductID {
				continue
			}
			if f.WarehouseID != "" && !eqPtr(m.FromWarehouseID, f.WarehouseID) && !eqPtr(m.ToWarehouseID, f.WarehouseID) {
				continue
			}
			if f.LocationID != "" && !eqPtr(m.FromLocationID, f.LocationID) && !eqPtr(m.ToLocationID, f.LocationID) {
				continue
			}
			if f.DocumentType != "" && m.DocumentType != f.DocumentType {
				continue
			}
			if f.Status != "" && m.Status != f.Status {
				continue
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && m.CreatedAt.After(*f.To) {
				continue
			}
			if f.CategoryID != "" {
				p, ok := st.products[m.ProductID]
				if !ok || !eqPtr(p.CategoryID, f.CategoryID) {
					continue
				}
			}
			cp := *m
			matched = append(matched, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	// El orden de inserción desempata movimientos con la misma marca de tiempo.
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.Before(matched[j].CreatedAt) })
	if !f.Ascending {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}
	return paginate(matched, f.Limit, f.Offset()), len(matched), nil
}

// DocumentRepo documentos en memoria.
type DocumentRepo struct{ a access }

func (r *DocumentRepo) CreateReceipt(_ context.Context, doc *entity.Receipt) error {
	return r.a.with(func(st *state) error {
		cp := *doc
		cp.Lines = append([]entity.ReceiptLine(nil), doc.Lines...)
		st.receipts[doc.ID] = &cp
		return nil
	})
}

func (r *DocumentRepo) CreateDelivery(_ context.Context, doc *entity.Delivery) error {
	return r.a.with(func(st *state) error {
		cp := *doc
		cp.Lines = append([]entity.DeliveryLine(nil), doc.Lines...)
		st.deliveries[doc.ID] = &cp
		return nil
	})
}

func (r *DocumentRepo) CreateTransfer(_ context.Context, doc *entity.Transfer) error {
	return r.a.with(func(st *state) error {
		cp := *doc
		cp.Lines = append([]entity.TransferLine(nil), doc.Lines...)
		st.transfers[doc.ID] = &cp
		return nil
	})
}

func (r *DocumentRepo) CreateAdjustment(_ context.Context, doc *entity.Adjustment) error {
	return r.a.with(func(st *state) error {
		cp := *doc
		cp.Lines = append([]entity.AdjustmentLine(nil), doc.Lines...)
		st.adjustments[doc.ID] = &cp
		return nil
	})
}

func (r *DocumentRepo) GetReceipt(_ context.Context, id string) (*entity.Receipt, error) {
	var out *entity.Receipt
	err := r.a.with(func(st *state) error {
		d, ok := st.receipts[id]
		if !ok {
			return domain.ErrNotFound
		}
		cp := *d
		cp.Lines = append([]entity.ReceiptLine(nil), d.Lines...)
		out = &cp
		return nil
	})
	return out, err
}

func (r *DocumentRepo) GetDelivery(_ context.Context, id string) (*entity.Delivery, error) {
	var out *entity.Delivery
	err := r.a.with(func(st *state) error {
		d, ok := st.deliveries[id]
		if !ok {
			return domain.ErrNotFound
		}
		cp := *d
		cp.Lines = append([]entity.DeliveryLine(nil), d.Lines...)
		out = &cp
		return nil
	})
	return out, err
}

func (r *DocumentRepo) GetTransfer(_ context.Context, id string) (*entity.Transfer, error) {
	var out *entity.Transfer
	err := r.a.with(func(st *state) error {
		d, ok := st.transfers[id]
		if !ok {
			return domain.ErrNotFound
		}
		cp := *d
		cp.Lines = append([]entity.TransferLine(nil), d.Lines...)
		out = &cp
		return nil
	})
	return out, err
}

func (r *DocumentRepo) GetAdjustment(_ context.Context, id string) (*entity.Adjustment, error) {
	var out *entity.Adjustment
	err := r.a.with(func(st *state) error {
		d, ok := st.adjustments[id]
		if !ok {
			return domain.ErrNotFound
		}
		cp := *d
		cp.Lines = append([]entity.AdjustmentLine(nil), d.Lines...)
		out = &cp
		return nil
	})
	return out, err
}

// header localiza la cabecera mutable de un documento dentro del estado.
func header(st *state, kind entity.DocumentKind, id string) *entity.DocumentHeader {
	switch kind {
	case entity.KindReceipt:
		if d, ok := st.receipts[id]; ok {
			return &d.DocumentHeader
		}
	case entity.KindDelivery:
		if d, ok := st.deliveries[id]; ok {
			return &d.DocumentHeader
		}
	case entity.KindTransfer:
		if d, ok := st.transfers[id]; ok {
			return &d.DocumentHeader
		}
	case entity.KindAdjustment:
		if d, ok := st.adjustments[id]; ok {
			return &d.DocumentHeader
		}
	}
	return nil
}

func (r *DocumentRepo) LockStatus(_ context.Context, kind entity.DocumentKind, id string) (entity.DocumentStatus, error) {
	var status entity.DocumentStatus
	err := r.a.with(func(st *state) error {
		h := header(st, kind, id)
		if h == nil {
			return domain.ErrNotFound
		}
		status = h.Status
		return nil
	})
	return status, err
}

func (r *DocumentRepo) SetStatus(_ context.Context, kind entity.DocumentKind, id string, status entity.DocumentStatus) error {
	return r.a.with(func(st *state) error {
		h := header(st, kind, id)
		if h == nil {
			return domain.ErrNotFound
		}
		h.Status = status
		h.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func headers(st *state, kind entity.DocumentKind) []entity.DocumentHeader {
	var out []entity.DocumentHeader
	switch kind {
	case entity.KindReceipt:
		for _, d := range st.receipts {
			out = append(out, d.DocumentHeader)
		}
	case entity.KindDelivery:
		for _, d := range st.deliveries {
			out = append(out, d.DocumentHeader)
		}
	case entity.KindTransfer:
		for _, d := range st.transfers {
			out = append(out, d.DocumentHeader)
		}
	case entity.KindAdjustment:
		for _, d := range st.adjustments {
			out = append(out, d.DocumentHeader)
		}
	}
	return out
}

func (r *DocumentRepo) List(_ context.Context, kind entity.DocumentKind, f repository.DocumentFilter) ([]entity.DocumentHeader, error) {
	var out []entity.DocumentHeader
	err := r.a.with(func(st *state) error {
		for _, h := range headers(st, kind) {
			if f.Status != "" && h.Status != f.Status {
				continue
			}
			out = append(out, h)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, f.Limit, f.Offset), err
}

func (r *DocumentRepo) CountPending(_ context.Context) (map[entity.DocumentKind]int, error) {
	out := make(map[entity.DocumentKind]int, len(entity.Kinds))
	err := r.a.with(func(st *state) error {
		for _, kind := range entity.Kinds {
			n := 0
			for _, h := range headers(st, kind) {
				if h.Status.Pending() {
					n++
				}
			}
			out[kind] = n
		}
		return nil
	})
	return out, err
}
