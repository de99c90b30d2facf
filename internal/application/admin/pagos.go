package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	appbilling "github.com/StantonMatt/coab-platform/internal/application/billing"
	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/application/pagination"
	"github.com/StantonMatt/coab-platform/internal/application/ports"
	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
	"github.com/StantonMatt/coab-platform/pkg/logger"
)

// PagoUseCase registro y anulación de pagos manuales.
type PagoUseCase struct {
	tx       ports.TxRunner
	pagoRepo repository.PagoRepository
	saldo    *appbilling.Service
	log      *logger.Logger
	now      func() time.Time
}

// NewPagoUseCase construye el caso de uso.
func NewPagoUseCase(tx ports.TxRunner, pagoRepo repository.PagoRepository, saldo *appbilling.Service, log *logger.Logger) *PagoUseCase {
	return &PagoUseCase{tx: tx, pagoRepo: pagoRepo, saldo: saldo, log: log.Named("admin.pagos"), now: time.Now}
}

// Registrar inserta el pago y, en la misma transacción, actualiza el estado de
// las boletas y el estado de cuenta del cliente.
func (uc *PagoUseCase) Registrar(ctx context.Context, operadorID string, in dto.RegistrarPagoRequest) (*dto.RegistrarPagoResponse, error) {
	if !in.Monto.IsPositive() {
		return nil, fmt.Errorf("monto debe ser positivo: %w", domain.ErrInvalidInput)
	}
	now := uc.now()
	fecha := now
	if in.FechaPago != nil {
		if in.FechaPago.After(now) {
			return nil, fmt.Errorf("fechaPago no puede ser futura: %w", domain.ErrInvalidInput)
		}
		fecha = *in.FechaPago
	}
	p := &entity.Pago{
		ID:                    uuid.New().String(),
		ClienteID:             in.ClienteID,
		Monto:                 in.Monto.Round(0),
		FechaPago:             fecha,
		TipoPago:              in.TipoPago,
		Estado:                entity.PagoAprobado,
		ReferenciaTransaccion: strings.TrimSpace(in.ReferenciaTransaccion),
		Observaciones:         strings.TrimSpace(in.Observaciones),
		OperadorID:            &operadorID,
		CreatedAt:             now,
	}

	err := uc.tx.RunInTx(ctx, func(r ports.TxRepos) error {
		cli, err := r.Clientes.LockByID(ctx, in.ClienteID)
		if err != nil {
			return err
		}
		if cli == nil {
			return domain.ErrNotFound
		}
		if err := r.Pagos.Create(ctx, p); err != nil {
			return err
		}
		_, err = appbilling.Reconcile(ctx, r, in.ClienteID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("pago_id", p.ID).
		Str("cliente_id", p.ClienteID).
		Str("monto", p.Monto.String()).
		Str("operador_id", operadorID).
		Msg("pago registrado")

	saldo, err := uc.saldo.GetCustomerBalance(ctx, in.ClienteID)
	if err != nil {
		return nil, err
	}
	return &dto.RegistrarPagoResponse{Pago: appbilling.ToPagoResponse(p), Saldo: *saldo}, nil
}

// Anular marca el pago como anulado y revierte su imputación.
func (uc *PagoUseCase) Anular(ctx context.Context, pagoID, operadorID string, in dto.AnularPagoRequest) (*dto.RegistrarPagoResponse, error) {
	var pago *entity.Pago
	err := uc.tx.RunInTx(ctx, func(r ports.TxRepos) error {
		p, err := r.Pagos.GetByID(ctx, pagoID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if p.Estado != entity.PagoAprobado {
			return fmt.Errorf("pago en estado %s: %w", p.Estado, domain.ErrInvalidTransition)
		}
		obs := strings.TrimSpace(strings.TrimSpace(p.Observaciones) + "\nAnulado: " + strings.TrimSpace(in.Motivo))
		if err := r.Pagos.UpdateEstado(ctx, p.ID, entity.PagoAnulado, obs); err != nil {
			return err
		}
		p.Estado = entity.PagoAnulado
		p.Observaciones = obs
		if _, err := appbilling.Revert(ctx, r, p, uc.now()); err != nil {
			return err
		}
		pago = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Warn().Str("pago_id", pagoID).Str("operador_id", operadorID).Msg("pago anulado")

	saldo, err := uc.saldo.GetCustomerBalance(ctx, pago.ClienteID)
	if err != nil {
		return nil, err
	}
	return &dto.RegistrarPagoResponse{Pago: appbilling.ToPagoResponse(pago), Saldo: *saldo}, nil
}

// ListByCliente historial de pagos de un cliente.
func (uc *PagoUseCase) ListByCliente(ctx context.Context, clienteID string, req dto.PageRequest) (*dto.Page[dto.PagoResponse], error) {
	q, err := pagination.Query(req)
	if err != nil {
		return nil, err
	}
	rows, err := uc.pagoRepo.ListByCliente(ctx, clienteID, q)
	if err != nil {
		return nil, err
	}
	page := pagination.Build(rows, q.Limit, pagination.PagoKey, appbilling.ToPagoResponse)
	return &page, nil
}
