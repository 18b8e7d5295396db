package inventory

import (
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func toQuantResponse(q *entity.StockQuant) dto.QuantResponse {
	return dto.QuantResponse{
		ProductID:   q.ProductID,
		WarehouseID: q.WarehouseID,
		LocationID:  q.LocationID,
		Quantity:    q.Quantity,
		UpdatedAt:   q.UpdatedAt,
	}
}

func toMoveResponse(m *entity.StockMove) dto.MoveResponse {
	return dto.MoveResponse{
		ID:              m.ID,
		ProductID:       m.ProductID,
		Quantity:        m.Quantity,
		UnitMeasure:     m.UnitMeasure,
		FromWarehouseID: m.FromWarehouseID,
		FromLocationID:  m.FromLocationID,
		ToWarehouseID:   m.ToWarehouseID,
		ToLocationID:    m.ToLocationID,
		Reason:          m.Reason,
		Reference:       m.Reference,
		DocumentType:    string(m.DocumentType),
		DocumentID:      m.DocumentID,
		CreatedBy:       m.CreatedBy,
		Status:          m.Status,
		CreatedAt:       m.CreatedAt,
	}
}

func headerResponse(h entity.DocumentHeader) dto.DocumentResponse {
	return dto.DocumentResponse{
		ID:        h.ID,
		Kind:      string(h.Kind),
		Number:    h.Number,
		Reference: h.Reference,
		Status:    string(h.Status),
		CreatedBy: h.CreatedBy,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

func toReceiptResponse(d *entity.Receipt) *dto.DocumentResponse {
	out := headerResponse(d.DocumentHeader)
	out.WarehouseID = d.WarehouseID
	out.Partner = d.Partner
	for _, ln := range d.Lines {
		out.Lines = append(out.Lines, dto.DocumentLineResponse{
			ProductID:   ln.ProductID,
			Quantity:    ln.Quantity,
			UnitMeasure: ln.UnitMeasure,
			UnitPrice:   ln.UnitPrice,
			WarehouseID: ln.WarehouseID,
			LocationID:  ln.LocationID,
		})
	}
	return &out
}

func toDeliveryResponse(d *entity.Delivery) *dto.DocumentResponse {
	out := headerResponse(d.DocumentHeader)
	out.WarehouseID = d.WarehouseID
	out.Partner = d.Partner
	for _, ln := range d.Lines {
		out.Lines = append(out.Lines, dto.DocumentLineResponse{
			ProductID:   ln.ProductID,
			Quantity:    ln.Quantity,
			UnitMeasure: ln.UnitMeasure,
			UnitPrice:   ln.UnitPrice,
			WarehouseID: ln.WarehouseID,
			LocationID:  ln.LocationID,
		})
	}
	return &out
}

func toTransferResponse(d *entity.Transfer) *dto.DocumentResponse {
	out := headerResponse(d.DocumentHeader)
	out.FromWarehouseID = d.FromWarehouseID
	out.ToWarehouseID = d.ToWarehouseID
	for _, ln := range d.Lines {
		out.Lines = append(out.Lines, dto.DocumentLineResponse{
			ProductID:      ln.ProductID,
			Quantity:       ln.Quantity,
			UnitMeasure:    ln.UnitMeasure,
			FromLocationID: ln.FromLocationID,
			ToLocationID:   ln.ToLocationID,
		})
	}
	return &out
}

func toAdjustmentResponse(d *entity.Adjustment) *dto.DocumentResponse {
	out := headerResponse(d.DocumentHeader)
	out.WarehouseID = d.WarehouseID
	out.Reason = d.Reason
	for _, ln := range d.Lines {
		out.Lines = append(out.Lines, dto.DocumentLineResponse{
			ProductID:   ln.ProductID,
			Quantity:    ln.Quantity,
			UnitMeasure: ln.UnitMeasure,
			Note:        ln.Note,
			WarehouseID: ln.WarehouseID,
			LocationID:  ln.LocationID,
		})
	}
	return &out
}
