package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ErrSlipUnavailable no hay generador de comprobantes configurado.
var ErrSlipUnavailable = errors.New("generador de comprobantes no configurado")

var numberPrefix = map[entity.DocumentKind]string{
	entity.KindReceipt:    "REC",
	entity.KindDelivery:   "DEL",
	entity.KindTransfer:   "TRF",
	entity.KindAdjustment: "ADJ",
}

// DocumentUseCase crea, consulta y valida documentos de stock. La validación delega en el Ledger.
type DocumentUseCase struct {
	tx         TxRunner
	docs       repository.DocumentRepository
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	ledger     *Ledger
	slips      SlipGenerator
	log        *logger.Logger
	now        func() time.Time
}

// NewDocumentUseCase construye el caso de uso. slips puede ser nil si no se exponen comprobantes.
func NewDocumentUseCase(
	tx TxRunner,
	docs repository.DocumentRepository,
	products repository.ProductRepository,
	warehouses repository.WarehouseRepository,
	ledger *Ledger,
	slips SlipGenerator,
	log *logger.Logger,
) *DocumentUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &DocumentUseCase{
		tx:         tx,
		docs:       docs,
		products:   products,
		warehouses: warehouses,
		ledger:     ledger,
		slips:      slips,
		log:        log.Named("documents"),
		now:        time.Now,
	}
}

func (uc *DocumentUseCase) newHeader(kind entity.DocumentKind, userID, reference string) entity.DocumentHeader {
	id := uuid.New().String()
	now := uc.now().UTC()
	return entity.DocumentHeader{
		ID:        id,
		Kind:      kind,
		Number:    numberPrefix[kind] + "/" + strings.ToUpper(id[:8]),
		Reference: reference,
		Status:    entity.StatusDraft,
		CreatedBy: strPtr(userID),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateReceipt registra una recepción en borrador.
func (uc *DocumentUseCase) CreateReceipt(ctx context.Context, userID string, in dto.CreateReceiptRequest) (*dto.DocumentResponse, error) {
	lines := make([]entity.ReceiptLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, entity.ReceiptLine{
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			UnitMeasure: l.UnitMeasure,
			UnitPrice:   l.UnitPrice,
			WarehouseID: firstNonEmpty(l.WarehouseID, in.WarehouseID),
			LocationID:  l.LocationID,
		})
	}
	if in.WarehouseID == "" {
		return nil, domain.NewFieldError("warehouse_id", "requerido")
	}
	if err := validateReceiptLines(lines); err != nil {
		return nil, err
	}
	ref := uc.refs()
	if err := ref.warehouse(ctx, -1, in.WarehouseID); err != nil {
		return nil, err
	}
	for i, ln := range lines {
		if err := ref.stockLine(ctx, i, ln.ProductID, ln.WarehouseID, ln.LocationID); err != nil {
			return nil, err
		}
	}

	doc := &entity.Receipt{
		DocumentHeader: uc.newHeader(entity.KindReceipt, userID, in.Reference),
		WarehouseID:    in.WarehouseID,
		Partner:        in.Partner,
		Lines:          lines,
	}
	if err := uc.tx.Run(ctx, func(ctx context.Context, r TxRepos) error {
		return r.Documents.CreateReceipt(ctx, doc)
	}); err != nil {
		return nil, domain.StoreFailure(err)
	}
	uc.logCreated(doc.DocumentHeader, len(lines))
	return toReceiptResponse(doc), nil
}

// CreateDelivery registra una entrega en borrador. El stock no se comprueba hasta validarla.
func (uc *DocumentUseCase) CreateDelivery(ctx context.Context, userID string, in dto.CreateDeliveryRequest) (*dto.DocumentResponse, error) {
	lines := make([]entity.DeliveryLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, entity.DeliveryLine{
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			UnitMeasure: l.UnitMeasure,
			UnitPrice:   l.UnitPrice,
			WarehouseID: firstNonEmpty(l.WarehouseID, in.WarehouseID),
			LocationID:  l.LocationID,
		})
	}
	if in.WarehouseID == "" {
		return nil, domain.NewFieldError("warehouse_id", "requerido")
	}
	if err := validateDeliveryLines(lines); err != nil {
		return nil, err
	}
	ref := uc.refs()
	if err := ref.warehouse(ctx, -1, in.WarehouseID); err != nil {
		return nil, err
	}
	for i, ln := range lines {
		if err := ref.stockLine(ctx, i, ln.ProductID, ln.WarehouseID, ln.LocationID); err != nil {
			return nil, err
		}
	}

	doc := &entity.Delivery{
		DocumentHeader: uc.newHeader(entity.KindDelivery, userID, in.Reference),
		WarehouseID:    in.WarehouseID,
		Partner:        in.Partner,
		Lines:          lines,
	}
	if err := uc.tx.Run(ctx, func(ctx context.Context, r TxRepos) error {
		return r.Documents.CreateDelivery(ctx, doc)
	}); err != nil {
		return nil, domain.StoreFailure(err)
	}
	uc.logCreated(doc.DocumentHeader, len(lines))
	return toDeliveryResponse(doc), nil
}

// CreateTransfer registra un traslado en borrador.
func (uc *DocumentUseCase) CreateTransfer(ctx context.Context, userID string, in dto.CreateTransferRequest) (*dto.DocumentResponse, error) {
	lines := make([]entity.TransferLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, entity.TransferLine{
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			UnitMeasure:    l.UnitMeasure,
			FromLocationID: l.FromLocationID,
			ToLocationID:   l.ToLocationID,
		})
	}
	if err := validateTransferLines(in.FromWarehouseID, in.ToWarehouseID, lines); err != nil {
		return nil, err
	}
	ref := uc.refs()
	if err := ref.warehouse(ctx, -1, in.FromWarehouseID); err != nil {
		return nil, err
	}
	if err := ref.warehouse(ctx, -1, in.ToWarehouseID); err != nil {
		return nil, err
	}
	for i, ln := range lines {
		if err := ref.product(ctx, i, ln.ProductID); err != nil {
			return nil, err
		}
		if err := ref.location(ctx, i, in.FromWarehouseID, ln.FromLocationID); err != nil {
			return nil, err
		}
		if err := ref.location(ctx, i, in.ToWarehouseID, ln.ToLocationID); err != nil {
			return nil, err
		}
	}

	doc := &entity.Transfer{
		DocumentHeader:  uc.newHeader(entity.KindTransfer, userID, in.Reference),
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Lines:           lines,
	}
	if err := uc.tx.Run(ctx, func(ctx context.Context, r TxRepos) error {
		return r.Documents.CreateTransfer(ctx, doc)
	}); err != nil {
		return nil, domain.StoreFailure(err)
	}
	uc.logCreated(doc.DocumentHeader, len(lines))
	return toTransferResponse(doc), nil
}

// CreateAdjustment registra un ajuste en borrador; las cantidades llevan signo.
func (uc *DocumentUseCase) CreateAdjustment(ctx context.Context, userID string, in dto.CreateAdjustmentRequest) (*dto.DocumentResponse, error) {
	doc, err := uc.draftAdjustment(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	return toAdjustmentResponse(doc), nil
}

func (uc *DocumentUseCase) draftAdjustment(ctx context.Context, userID string, in dto.CreateAdjustmentRequest) (*entity.Adjustment, error) {
	lines := make([]entity.AdjustmentLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, entity.AdjustmentLine{
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			UnitMeasure: l.UnitMeasure,
			Note:        l.Note,
			WarehouseID: firstNonEmpty(l.WarehouseID, in.WarehouseID),
			LocationID:  l.LocationID,
		})
	}
	if in.WarehouseID == "" {
		return nil, domain.NewFieldError("warehouse_id", "requerido")
	}
	if err := validateAdjustmentLines(lines); err != nil {
		return nil, err
	}
	ref := uc.refs()
	if err := ref.warehouse(ctx, -1, in.WarehouseID); err != nil {
		return nil, err
	}
	for i, ln := range lines {
		if err := ref.stockLine(ctx, i, ln.ProductID, ln.WarehouseID, ln.LocationID); err != nil {
			return nil, err
		}
	}

	doc := &entity.Adjustment{
		DocumentHeader: uc.newHeader(entity.KindAdjustment, userID, in.Reference),
		WarehouseID:    in.WarehouseID,
		Reason:         in.Reason,
		Lines:          lines,
	}
	if err := uc.tx.Run(ctx, func(ctx context.Context, r TxRepos) error {
		return r.Documents.CreateAdjustment(ctx, doc)
	}); err != nil {
		return nil, domain.StoreFailure(err)
	}
	uc.logCreated(doc.DocumentHeader, len(lines))
	return doc, nil
}

// CheckInitialStock valida el stock de apertura de un producto que aún no existe, de modo que
// después de crear el producto BookInitialStock solo pueda fallar por el almacenamiento.
func (uc *DocumentUseCase) CheckInitialStock(ctx context.Context, warehouseID string, locationID *string, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return domain.NewFieldError("initial_stock.quantity", "debe ser mayor que cero")
	}
	if !inventory.FitsScale(qty) {
		return domain.NewFieldError("initial_stock.quantity", scaleReason)
	}
	if warehouseID == "" {
		return domain.NewFieldError("initial_stock.warehouse_id", "requerido")
	}
	ref := uc.refs()
	if err := ref.warehouse(ctx, -1, warehouseID); err != nil {
		return err
	}
	if err := ref.location(ctx, -1, warehouseID, locationID); err != nil {
		return err
	}
	return nil
}

// BookInitialStock registra y aplica de inmediato un ajuste de apertura para un producto nuevo.
func (uc *DocumentUseCase) BookInitialStock(ctx context.Context, userID, productID, warehouseID string, locationID *string, qty decimal.Decimal, uom string) error {
	doc, err := uc.draftAdjustment(ctx, userID, dto.CreateAdjustmentRequest{
		WarehouseID: warehouseID,
		Reason:      "Initial stock",
		Lines: []dto.AdjustmentLineRequest{{
			ProductID:   productID,
			Quantity:    qty,
			UnitMeasure: uom,
			LocationID:  locationID,
		}},
	})
	if err != nil {
		return err
	}
	_, err = uc.ledger.ApplyAdjustment(ctx, ApplyAdjustmentInput{DocumentID: doc.ID, Lines: doc.Lines, ActingUserID: userID})
	return err
}

func (uc *DocumentUseCase) logCreated(h entity.DocumentHeader, lines int) {
	uc.log.Info().
		Str("kind", string(h.Kind)).
		Str("document_id", h.ID).
		Str("number", h.Number).
		Int("lines", lines).
		Msg("documento creado")
}

// GetReceipt obtiene una recepción con sus líneas.
func (uc *DocumentUseCase) GetReceipt(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	doc, err := uc.docs.GetReceipt(ctx, id)
	if err != nil {
		return nil, err
	}
	return toReceiptResponse(doc), nil
}

// GetDelivery obtiene una entrega con sus líneas.
func (uc *DocumentUseCase) GetDelivery(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	doc, err := uc.docs.GetDelivery(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDeliveryResponse(doc), nil
}

// GetTransfer obtiene un traslado con sus líneas.
func (uc *DocumentUseCase) GetTransfer(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	doc, err := uc.docs.GetTransfer(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTransferResponse(doc), nil
}

// GetAdjustment obtiene un ajuste con sus líneas.
func (uc *DocumentUseCase) GetAdjustment(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	doc, err := uc.docs.GetAdjustment(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAdjustmentResponse(doc), nil
}

// Get despacha por tipo.
func (uc *DocumentUseCase) Get(ctx context.Context, kind entity.DocumentKind, id string) (*dto.DocumentResponse, error) {
	switch kind {
	case entity.KindReceipt:
		return uc.GetReceipt(ctx, id)
	case entity.KindDelivery:
		return uc.GetDelivery(ctx, id)
	case entity.KindTransfer:
		return uc.GetTransfer(ctx, id)
	case entity.KindAdjustment:
		return uc.GetAdjustment(ctx, id)
	}
	return nil, domain.NewFieldError("kind", "tipo de documento desconocido")
}

// List cabeceras de un tipo, más recientes primero.
func (uc *DocumentUseCase) List(ctx context.Context, kind entity.DocumentKind, in dto.DocumentListRequest) (*dto.DocumentListResponse, error) {
	if !kind.Valid() {
		return nil, domain.NewFieldError("kind", "tipo de documento desconocido")
	}
	status := entity.DocumentStatus(in.Status)
	if status != "" && !status.Valid() {
		return nil, domain.NewFieldError("status", "estado desconocido")
	}
	in.DefaultPage()
	headers, err := uc.docs.List(ctx, kind, repository.DocumentFilter{Status: status, Limit: in.Limit, Offset: in.Offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.DocumentResponse, 0, len(headers))
	for _, h := range headers {
		items = append(items, headerResponse(h))
	}
	return &dto.DocumentListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

// ValidateReceipt aplica una recepción pendiente con sus líneas almacenadas.
func (uc *DocumentUseCase) ValidateReceipt(ctx context.Context, id, userID string) (*dto.DocumentResponse, error) {
	doc, err := uc.docs.GetReceipt(ctx, id)
	if err != nil {
		return nil, err
	}
	applied, err := uc.ledger.ApplyReceipt(ctx, ApplyReceiptInput{DocumentID: id, Lines: doc.Lines, ActingUserID: userID})
	if err != nil {
		return nil, err
	}
	return toReceiptResponse(applied), nil
}

// ValidateDelivery aplica una entrega pendiente.
func (uc *DocumentUseCase) ValidateDelivery(ctx context.Context, id, userID string) (*dto.DocumentResponse, error) {
	doc, err := uc.docs.GetDelivery(ctx, id)
	if err != nil {
		return nil, err
	}
	applied, err := uc.ledger.ApplyDelivery(ctx, ApplyDeliveryInput{DocumentID: id, Lines: doc.Lines, ActingUserID: userID})
	if err != nil {
		return nil, err
	}
	return toDeliveryResponse(applied), nil
}

// ValidateTransfer aplica un traslado pendiente.
func (uc *DocumentUseCase) ValidateTransfer(ctx context.Context, id, userID string) (*dto.DocumentResponse, error) {
	doc, err := uc.docs.GetTransfer(ctx, id)
	if err != nil {
		return nil, err
	}
	applied, err := uc.ledger.ApplyTransfer(ctx, ApplyTransferInput{
		DocumentID:      id,
		Lines:           doc.Lines,
		FromWarehouseID: doc.FromWarehouseID,
		ToWarehouseID:   doc.ToWarehouseID,
		ActingUserID:    userID,
	})
	if err != nil {
		return nil, err
	}
	return toTransferResponse(applied), nil
}

// ValidateAdjustment aplica un ajuste pendiente.
func (uc *DocumentUseCase) ValidateAdjustment(ctx context.Context, id, userID string) (*dto.DocumentResponse, error) {
	doc, err := uc.docs.GetAdjustment(ctx, id)
	if err != nil {
		return nil, err
	}
	applied, err := uc.ledger.ApplyAdjustment(ctx, ApplyAdjustmentInput{DocumentID: id, Lines: doc.Lines, ActingUserID: userID})
	if err != nil {
		return nil, err
	}
	return toAdjustmentResponse(applied), nil
}

// Validate despacha por tipo.
func (uc *DocumentUseCase) Validate(ctx context.Context, kind entity.DocumentKind, id, userID string) (*dto.DocumentResponse, error) {
	switch kind {
	case entity.KindReceipt:
		return uc.ValidateReceipt(ctx, id, userID)
	case entity.KindDelivery:
		return uc.ValidateDelivery(ctx, id, userID)
	case entity.KindTransfer:
		return uc.ValidateTransfer(ctx, id, userID)
	case entity.KindAdjustment:
		return uc.ValidateAdjustment(ctx, id, userID)
	}
	return nil, domain.NewFieldError("kind", "tipo de documento desconocido")
}

// Slip genera el comprobante PDF del documento con nombres de producto y códigos de bodega resueltos.
func (uc *DocumentUseCase) Slip(ctx context.Context, kind entity.DocumentKind, id string) ([]byte, error) {
	if uc.slips == nil {
		return nil, ErrSlipUnavailable
	}
	ref := uc.refs()
	slip := DocumentSlip{}
	switch kind {
	case entity.KindReceipt:
		doc, err := uc.docs.GetReceipt(ctx, id)
		if err != nil {
			return nil, err
		}
		slip.Header, slip.Partner = doc.DocumentHeader, doc.Partner
		slip.Target = ref.place(ctx, doc.WarehouseID, nil)
		for _, ln := range doc.Lines {
			slip.Lines = append(slip.Lines, ref.slipLine(ctx, ln.ProductID, ln.Quantity, ln.UnitMeasure, "", ref.place(ctx, ln.WarehouseID, ln.LocationID)))
		}
	case entity.KindDelivery:
		doc, err := uc.docs.GetDelivery(ctx, id)
		if err != nil {
			return nil, err
		}
		slip.Header, slip.Partner = doc.DocumentHeader, doc.Partner
		slip.Source = ref.place(ctx, doc.WarehouseID, nil)
		for _, ln := range doc.Lines {
			slip.Lines = append(slip.Lines, ref.slipLine(ctx, ln.ProductID, ln.Quantity, ln.UnitMeasure, ref.place(ctx, ln.WarehouseID, ln.LocationID), ""))
		}
	case entity.KindTransfer:
		doc, err := uc.docs.GetTransfer(ctx, id)
		if err != nil {
			return nil, err
		}
		slip.Header = doc.DocumentHeader
		slip.Source = ref.place(ctx, doc.FromWarehouseID, nil)
		slip.Target = ref.place(ctx, doc.ToWarehouseID, nil)
		for _, ln := range doc.Lines {
			slip.Lines = append(slip.Lines, ref.slipLine(ctx, ln.ProductID, ln.Quantity, ln.UnitMeasure,
				ref.place(ctx, doc.FromWarehouseID, ln.FromLocationID), ref.place(ctx, doc.ToWarehouseID, ln.ToLocationID)))
		}
	case entity.KindAdjustment:
		doc, err := uc.docs.GetAdjustment(ctx, id)
		if err != nil {
			return nil, err
		}
		slip.Header, slip.Partner = doc.DocumentHeader, doc.Reason
		slip.Target = ref.place(ctx, doc.WarehouseID, nil)
		for _, ln := range doc.Lines {
			slip.Lines = append(slip.Lines, ref.slipLine(ctx, ln.ProductID, ln.Quantity, ln.UnitMeasure, "", ref.place(ctx, ln.WarehouseID, ln.LocationID)))
		}
	default:
		return nil, domain.NewFieldError("kind", "tipo de documento desconocido")
	}
	if slip.Header.CreatedBy != nil {
		slip.CreatedBy = *slip.Header.CreatedBy
	}
	return uc.slips.GenerateSlip(ctx, slip)
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// refResolver comprueba y resuelve referencias de catálogo con caché por llamada.
type refResolver struct {
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	prodCache  map[string]*entity.Product
	whCache    map[string]*entity.Warehouse
	locCache   map[string]*entity.Location
}

func (uc *DocumentUseCase) refs() *refResolver {
	return &refResolver{
		products:   uc.products,
		warehouses: uc.warehouses,
		prodCache:  map[string]*entity.Product{},
		whCache:    map[string]*entity.Warehouse{},
		locCache:   map[string]*entity.Location{},
	}
}

func notFound(line int, what, id string) error {
	if line < 0 {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, what, id)
	}
	return fmt.Errorf("%w: línea %d: %s %s", domain.ErrNotFound, line, what, id)
}

func (r *refResolver) getProduct(ctx context.Context, id string) (*entity.Product, error) {
	if p, ok := r.prodCache[id]; ok {
		return p, nil
	}
	p, err := r.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.prodCache[id] = p
	return p, nil
}

func (r *refResolver) getWarehouse(ctx context.Context, id string) (*entity.Warehouse, error) {
	if w, ok := r.whCache[id]; ok {
		return w, nil
	}
	w, err := r.warehouses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.whCache[id] = w
	return w, nil
}

func (r *refResolver) getLocation(ctx context.Context, id string) (*entity.Location, error) {
	if l, ok := r.locCache[id]; ok {
		return l, nil
	}
	l, err := r.warehouses.GetLocation(ctx, id)
	if err != nil {
		return nil, err
	}
	r.locCache[id] = l
	return l, nil
}

func (r *refResolver) product(ctx context.Context, line int, id string) error {
	p, err := r.getProduct(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return notFound(line, "producto", id)
	}
	return nil
}

func (r *refResolver) warehouse(ctx context.Context, line int, id string) error {
	w, err := r.getWarehouse(ctx, id)
	if err != nil {
		return err
	}
	if w == nil {
		return notFound(line, "bodega", id)
	}
	return nil
}

// location comprueba que la ubicación exista y pertenezca a la bodega. nil no se comprueba.
func (r *refResolver) location(ctx context.Context, line int, warehouseID string, id *string) error {
	if id == nil {
		return nil
	}
	l, err := r.getLocation(ctx, *id)
	if err != nil {
		return err
	}
	if l == nil {
		return notFound(line, "ubicación", *id)
	}
	if l.WarehouseID != warehouseID {
		return lineError(line, "location_id", "la ubicación no pertenece a la bodega de la línea")
	}
	return nil
}

func (r *refResolver) stockLine(ctx context.Context, line int, productID, warehouseID string, locationID *string) error {
	if err := r.product(ctx, line, productID); err != nil {
		return err
	}
	if err := r.warehouse(ctx, line, warehouseID); err != nil {
		return err
	}
	return r.location(ctx, line, warehouseID, locationID)
}

// place texto "WH01" o "WH01 / A-1"; cae al ID si no se puede resolver.
func (r *refResolver) place(ctx context.Context, warehouseID string, locationID *string) string {
	out := warehouseID
	if w, err := r.getWarehouse(ctx, warehouseID); err == nil && w != nil {
		out = w.Code
	}
	if locationID != nil {
		code := *locationID
		if l, err := r.getLocation(ctx, *locationID); err == nil && l != nil {
			code = l.Code
		}
		out += " / " + code
	}
	return out
}

func (r *refResolver) slipLine(ctx context.Context, productID string, qty decimal.Decimal, uom, from, to string) SlipLine {
	line := SlipLine{SKU: productID, Quantity: qty, UnitMeasure: uom, From: from, To: to}
	if p, err := r.getProduct(ctx, productID); err == nil && p != nil {
		line.SKU, line.ProductName = p.SKU, p.Name
		if line.UnitMeasure == "" {
			line.UnitMeasure = p.UnitMeasure
		}
	}
	return line
}
