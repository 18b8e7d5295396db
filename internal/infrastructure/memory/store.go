// Package memory implementa los puertos de persistencia en memoria. Sirve para tests y
// para levantar la API sin PostgreSQL (STORAGE_DRIVER=memory).
//
// Las transacciones trabajan sobre una copia privada del estado y la publican solo si fn
// termina sin error, de modo que un fallo a mitad de documento no deja rastro.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	products    map[string]*entity.Product
	categories  map[string]*entity.Category
	warehouses  map[string]*entity.Warehouse
	locations   map[string]*entity.Location
	rules       map[string]*entity.ReorderRule
	quants      map[string]*entity.StockQuant // por QuantKey.String()
	moves       []*entity.StockMove
	receipts    map[string]*entity.Receipt
	deliveries  map[string]*entity.Delivery
	transfers   map[string]*entity.Transfer
	adjustments map[string]*entity.Adjustment
}

func newState() *state {
	return &state{
		products:    map[string]*entity.Product{},
		categories:  map[string]*entity.Category{},
		warehouses:  map[string]*entity.Warehouse{},
		locations:   map[string]*entity.Location{},
		rules:       map[string]*entity.ReorderRule{},
		quants:      map[string]*entity.StockQuant{},
		receipts:    map[string]*entity.Receipt{},
		deliveries:  map[string]*entity.Delivery{},
		transfers:   map[string]*entity.Transfer{},
		adjustments: map[string]*entity.Adjustment{},
	}
}

// clone copia lo que una transacción puede mutar (saldos y cabeceras de documentos).
// Catálogo y movimientos son inmutables una vez creados y se comparten.
func (s *state) clone() *state {
	c := &state{
		products:    copyMap(s.products),
		categories:  copyMap(s.categories),
		warehouses:  copyMap(s.warehouses),
		locations:   copyMap(s.locations),
		rules:       copyMap(s.rules),
		quants:      make(map[string]*entity.StockQuant, len(s.quants)),
		moves:       append([]*entity.StockMove(nil), s.moves...),
		receipts:    make(map[string]*entity.Receipt, len(s.receipts)),
		deliveries:  make(map[string]*entity.Delivery, len(s.deliveries)),
		transfers:   make(map[string]*entity.Transfer, len(s.transfers)),
		adjustments: make(map[string]*entity.Adjustment, len(s.adjustments)),
	}
	for k, q := range s.quants {
		cp := *q
		c.quants[k] = &cp
	}
	for k, d := range s.receipts {
		cp := *d
		c.receipts[k] = &cp
	}
	for k, d := range s.deliveries {
		cp := *d
		c.deliveries[k] = &cp
	}
	for k, d := range s.transfers {
		cp := *d
		c.transfers[k] = &cp
	}
	for k, d := range s.adjustments {
		cp := *d
		c.adjustments[k] = &cp
	}
	return c
}

func copyMap[V any](m map[string]*V) map[string]*V {
	out := make(map[string]*V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// access da acceso exclusivo al estado: con el mutex del Store o, dentro de Run, al estado de la tx.
type access interface {
	with(fn func(st *state) error) error
}

// Store almacén en memoria seguro para uso concurrente.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) with(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// Run ejecuta fn sobre una copia del estado y la publica si fn no devuelve error.
// Las transacciones se serializan entre sí.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	tx := txAccess{st: work}
	repos := inventory.TxRepos{
		Quants:    &QuantRepo{a: tx},
		Moves:     &MoveRepo{a: tx},
		Documents: &DocumentRepo{a: tx},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

type txAccess struct{ st *state }

func (t txAccess) with(fn func(st *state) error) error { return fn(t.st) }

// Repositorios fuera de transacción, atados al Store.

func (s *Store) Products() *ProductRepo         { return &ProductRepo{a: s} }
func (s *Store) Categories() *CategoryRepo      { return &CategoryRepo{a: s} }
func (s *Store) Warehouses() *WarehouseRepo     { return &WarehouseRepo{a: s} }
func (s *Store) ReorderRules() *ReorderRuleRepo { return &ReorderRuleRepo{a: s} }
func (s *Store) Quants() *QuantRepo             { return &QuantRepo{a: s} }
func (s *Store) Moves() *MoveRepo               { return &MoveRepo{a: s} }
func (s *Store) Documents() *DocumentRepo       { return &DocumentRepo{a: s} }
