package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

var scaleReason = fmt.Sprintf("admite como máximo %d decimales", inventory.QuantityScale)

func lineError(i int, field, reason string) error {
	return &domain.ValidationError{Line: i, Field: field, Reason: reason}
}

func requireLines(n int) error {
	if n == 0 {
		return domain.NewFieldError("lines", "se requiere al menos una línea")
	}
	return nil
}

func checkPositive(i int, productID string, qty decimal.Decimal) error {
	if productID == "" {
		return lineError(i, "product_id", "requerido")
	}
	if !qty.IsPositive() {
		return lineError(i, "quantity", "debe ser mayor que cero")
	}
	if !inventory.FitsScale(qty) {
		return lineError(i, "quantity", scaleReason)
	}
	return nil
}

func validateReceiptLines(lines []entity.ReceiptLine) error {
	if err := requireLines(len(lines)); err != nil {
		return err
	}
	for i, ln := range lines {
		if err := checkPositive(i, ln.ProductID, ln.Quantity); err != nil {
			return err
		}
		if ln.WarehouseID == "" {
			return lineError(i, "warehouse_id", "requerido")
		}
	}
	return nil
}

func validateDeliveryLines(lines []entity.DeliveryLine) error {
	if err := requireLines(len(lines)); err != nil {
		return err
	}
	for i, ln := range lines {
		if err := checkPositive(i, ln.ProductID, ln.Quantity); err != nil {
			return err
		}
		if ln.WarehouseID == "" {
			return lineError(i, "warehouse_id", "requerido")
		}
	}
	return nil
}

func validateTransferLines(fromWarehouseID, toWarehouseID string, lines []entity.TransferLine) error {
	if fromWarehouseID == "" {
		return domain.NewFieldError("from_warehouse_id", "requerido")
	}
	if toWarehouseID == "" {
		return domain.NewFieldError("to_warehouse_id", "requerido")
	}
	if err := requireLines(len(lines)); err != nil {
		return err
	}
	for i, ln := range lines {
		if err := checkPositive(i, ln.ProductID, ln.Quantity); err != nil {
			return err
		}
		src := entity.QuantKey{ProductID: ln.ProductID, WarehouseID: fromWarehouseID, LocationID: ln.FromLocationID}
		dst := entity.QuantKey{ProductID: ln.ProductID, WarehouseID: toWarehouseID, LocationID: ln.ToLocationID}
		if src.String() == dst.String() {
			return lineError(i, "to_location_id", "origen y destino son la misma cuenta")
		}
	}
	return nil
}

func validateAdjustmentLines(lines []entity.AdjustmentLine) error {
	if err := requireLines(len(lines)); err != nil {
		return err
	}
	for i, ln := range lines {
		if ln.ProductID == "" {
			return lineError(i, "product_id", "requerido")
		}
		if ln.Quantity.IsZero() {
			return lineError(i, "quantity", "no puede ser cero")
		}
		if !inventory.FitsScale(ln.Quantity) {
			return lineError(i, "quantity", scaleReason)
		}
		if ln.WarehouseID == "" {
			return lineError(i, "warehouse_id", "requerido")
		}
	}
	return nil
}
