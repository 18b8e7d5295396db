// seed prepara una base de desarrollo: aplica las migraciones, crea bodegas, ubicaciones,
// una categoría y productos con stock inicial, e imprime tokens JWT de prueba por rol.
//
// Uso: go run ./cmd/seed [productos.csv]
// El CSV (sku;nombre;unidad;precio;stock) puede venir en ISO-8859-1, como lo exportan las hojas
// de cálculo en Windows; sin archivo se usa un catálogo de ejemplo.
package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const seedUser = "seed"

type seedProduct struct {
	SKU, Name, UoM string
	Price, Stock   decimal.Decimal
}

var demoProducts = []seedProduct{
	{"TOR-001", "Tornillo hexagonal 1/4", "und", decimal.RequireFromString("0.35"), decimal.NewFromInt(500)},
	{"TUE-001", "Tuerca 1/4", "und", decimal.RequireFromString("0.12"), decimal.NewFromInt(800)},
	{"CAB-002", "Cable THHN 12 AWG", "m", decimal.RequireFromString("1.90"), decimal.NewFromInt(250)},
	{"PIN-010", "Pintura blanca galón", "gal", decimal.RequireFromString("18.50"), decimal.NewFromInt(12)},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	products := demoProducts
	if len(os.Args) > 1 {
		products, err = readProducts(os.Args[1])
		if err != nil {
			log.Fatal().Err(err).Str("file", os.Args[1]).Msg("leer catálogo")
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	warehouseRepo := postgres.NewWarehouseRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.DB.StatementTimeout)
	ledger := inventory.NewLedger(txRunner, log)
	docs := inventory.NewDocumentUseCase(txRunner, postgres.NewDocumentRepository(pool), productRepo, warehouseRepo, ledger, nil, log)

	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo)
	productUC := usecase.NewProductUseCase(productRepo, categoryRepo, docs)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo)

	main01, err := ensureWarehouse(ctx, warehouseUC, "WH01", "Bodega principal", "A-1", "A-2")
	if err != nil {
		log.Fatal().Err(err).Msg("bodega WH01")
	}
	if _, err := ensureWarehouse(ctx, warehouseUC, "WH02", "Bodega secundaria", "B-1"); err != nil {
		log.Fatal().Err(err).Msg("bodega WH02")
	}

	categoryID, err := ensureCategory(ctx, categoryUC, "Ferretería")
	if err != nil {
		log.Fatal().Err(err).Msg("categoría")
	}

	created := 0
	for _, p := range products {
		in := dto.CreateProductRequest{
			SKU:          p.SKU,
			Name:         p.Name,
			UnitMeasure:  p.UoM,
			DefaultPrice: p.Price,
			CategoryID:   &categoryID,
		}
		if p.Stock.IsPositive() {
			in.InitialStock = &dto.InitialStockRequest{WarehouseID: main01, Quantity: p.Stock}
		}
		_, err := productUC.Create(ctx, seedUser, in)
		if errors.Is(err, domain.ErrDuplicate) {
			continue
		}
		if err != nil {
			log.Fatal().Err(err).Str("sku", p.SKU).Msg("producto")
		}
		created++
	}
	log.Info().Int("products", created).Msg("datos de ejemplo cargados")

	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: no se generan tokens de desarrollo")
		return
	}
	for _, role := range []string{jwt.RoleInventoryManager, jwt.RoleWarehouseStaff} {
		tok, err := jwt.Generate(cfg.JWT.Secret, "dev-"+role, role, cfg.JWT.Issuer, cfg.JWT.Expiration)
		if err != nil {
			log.Fatal().Err(err).Msg("token de desarrollo")
		}
		fmt.Printf("%s:\n  Bearer %s\n", role, tok)
	}
}

// ensureWarehouse crea la bodega y sus ubicaciones, o reutiliza la existente con ese código.
func ensureWarehouse(ctx context.Context, uc *usecase.WarehouseUseCase, code, name string, locations ...string) (string, error) {
	wh, err := uc.Create(ctx, dto.CreateWarehouseRequest{Code: code, Name: name})
	if errors.Is(err, domain.ErrDuplicate) {
		list, err := uc.List(ctx, dto.PageRequest{Limit: 100})
		if err != nil {
			return "", err
		}
		for _, w := range list.Items {
			if w.Code == code {
				return w.ID, nil
			}
		}
		return "", fmt.Errorf("bodega %s duplicada pero no encontrada", code)
	}
	if err != nil {
		return "", err
	}
	for _, loc := range locations {
		if _, err := uc.AddLocation(ctx, wh.ID, dto.CreateLocationRequest{Code: loc}); err != nil {
			return "", err
		}
	}
	return wh.ID, nil
}

func ensureCategory(ctx context.Context, uc *usecase.CategoryUseCase, name string) (string, error) {
	list, err := uc.List(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range list {
		if c.Name == name {
			return c.ID, nil
		}
	}
	c, err := uc.Create(ctx, dto.CreateCategoryRequest{Name: name})
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// readProducts lee sku;nombre;unidad;precio;stock. Si el archivo no es UTF-8 válido se decodifica como ISO-8859-1.
func readProducts(path string) ([]seedProduct, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var src io.Reader = strings.NewReader(string(raw))
	if !utf8.Valid(raw) {
		src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	}

	r := csv.NewReader(bufio.NewReader(src))
	r.Comma = ';'
	r.FieldsPerRecord = 5
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	var out []seedProduct
	for i, rec := range records {
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "sku") {
			continue
		}
		price, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(rec[3]), ",", "."))
		if err != nil {
			return nil, fmt.Errorf("fila %d: precio %q: %w", i+1, rec[3], err)
		}
		stock, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(rec[4]), ",", "."))
		if err != nil {
			return nil, fmt.Errorf("fila %d: stock %q: %w", i+1, rec[4], err)
		}
		out = append(out, seedProduct{
			SKU:   strings.TrimSpace(rec[0]),
			Name:  strings.TrimSpace(rec[1]),
			UoM:   strings.TrimSpace(rec[2]),
			Price: price,
			Stock: stock,
		})
	}
	return out, nil
}
