package billing

import (
	"github.com/samber/lo"

	"github.com/StantonMatt/coab-platform/internal/application/dto"
	domainbilling "github.com/StantonMatt/coab-platform/internal/domain/billing"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
)

// ToBoletaResponse boleta con su monto adeudado según el cálculo de saldo.
func ToBoletaResponse(b *entity.Boleta, r domainbilling.Result) dto.BoletaResponse {
	owed := r.Owed[b.ID]
	return dto.BoletaResponse{
		ID:                 b.ID,
		Periodo:            b.Periodo,
		FechaEmision:       b.FechaEmision,
		FechaVencimiento:   b.FechaVencimiento,
		ConsumoM3:          b.ConsumoM3,
		MontoTotal:         b.MontoTotal,
		Monto:              b.MontoBoleta(),
		Estado:             b.Estado,
		MontoAdeudado:      r.AmountOwed(b.ID),
		ParcialmentePagada: owed.IsPartiallyPaid,
		TienePDF:           b.PDFKey != "",
	}
}

// ToBoletaDetalle detalle con desglose de cargos.
func ToBoletaDetalle(b *entity.Boleta, r domainbilling.Result) dto.BoletaDetalleResponse {
	return dto.BoletaDetalleResponse{
		BoletaResponse:      ToBoletaResponse(b, r),
		CargoFijo:           b.CargoFijo,
		CargoAgua:           b.CargoAgua,
		CargoAlcantarillado: b.CargoAlcantarillado,
		CargoTratamiento:    b.CargoTratamiento,
	}
}

// ToBoletaResponses mapea una lista de boletas.
func ToBoletaResponses(boletas []*entity.Boleta, r domainbilling.Result) []dto.BoletaResponse {
	return lo.Map(boletas, func(b *entity.Boleta, _ int) dto.BoletaResponse {
		return ToBoletaResponse(b, r)
	})
}

// ToPagoResponse mapea un pago.
func ToPagoResponse(p *entity.Pago) dto.PagoResponse {
	return dto.PagoResponse{
		ID:                    p.ID,
		Monto:                 p.Monto,
		FechaPago:             p.FechaPago,
		TipoPago:              p.TipoPago,
		Estado:                p.Estado,
		ReferenciaTransaccion: p.ReferenciaTransaccion,
		Observaciones:         p.Observaciones,
	}
}
