// Package cliente contiene los casos de uso del portal de autoatención (/clientes/me).
package cliente

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/theplant/luhn"

	appbilling "github.com/StantonMatt/coab-platform/internal/application/billing"
	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/application/pagination"
	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
	"github.com/StantonMatt/coab-platform/pkg/logger"
)

// Repos repositorios usados por el portal del cliente.
type Repos struct {
	Clientes    repository.ClienteRepository
	Boletas     repository.BoletaRepository
	Pagos       repository.PagoRepository
	Medidores   repository.MedidorRepository
	Autopagos   repository.AutopagoRepository
	Solicitudes repository.SolicitudRepository
}

// UseCase casos de uso del cliente autenticado.
type UseCase struct {
	repos Repos
	saldo *appbilling.Service
	pdf   *appbilling.PDFUseCase
	log   *logger.Logger
	now   func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(repos Repos, saldo *appbilling.Service, pdf *appbilling.PDFUseCase, log *logger.Logger) *UseCase {
	return &UseCase{repos: repos, saldo: saldo, pdf: pdf, log: log.Named("cliente"), now: time.Now}
}

// ── Perfil ──

// Perfil datos del cliente con direcciones y medidores.
func (uc *UseCase) Perfil(ctx context.Context, clienteID string) (*dto.PerfilResponse, error) {
	cli, err := uc.repos.Clientes.GetByID(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	if cli == nil {
		return nil, domain.ErrNotFound
	}
	direcciones, err := uc.repos.Clientes.ListDirecciones(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	medidores, err := uc.repos.Medidores.ListByCliente(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	p := ToPerfil(cli, direcciones, medidores)
	return &p, nil
}

// UpdateContacto actualiza email y teléfono.
func (uc *UseCase) UpdateContacto(ctx context.Context, clienteID string, in dto.UpdateContactoRequest) (*dto.PerfilResponse, error) {
	cli, err := uc.repos.Clientes.GetByID(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	if cli == nil {
		return nil, domain.ErrNotFound
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	telefono := strings.TrimSpace(in.Telefono)
	if err := uc.repos.Clientes.UpdateContacto(ctx, clienteID, email, telefono, uc.now()); err != nil {
		return nil, err
	}
	return uc.Perfil(ctx, clienteID)
}

// ── Saldo, pagos y boletas ──

// Saldo saldo actual del cliente.
func (uc *UseCase) Saldo(ctx context.Context, clienteID string) (*dto.SaldoResponse, error) {
	return uc.saldo.GetCustomerBalance(ctx, clienteID)
}

// Pagos historial de pagos, más recientes primero.
func (uc *UseCase) Pagos(ctx context.Context, clienteID string, req dto.PageRequest) (*dto.Page[dto.PagoResponse], error) {
	q, err := pagination.Query(req)
	if err != nil {
		return nil, err
	}
	rows, err := uc.repos.Pagos.ListByCliente(ctx, clienteID, q)
	if err != nil {
		return nil, err
	}
	page := pagination.Build(rows, q.Limit, pagination.PagoKey, appbilling.ToPagoResponse)
	return &page, nil
}

// Boletas página de boletas con el monto adeudado de cada una.
func (uc *UseCase) Boletas(ctx context.Context, clienteID string, req dto.PageRequest) (*dto.Page[dto.BoletaResponse], error) {
	q, err := pagination.Query(req)
	if err != nil {
		return nil, err
	}
	detail, err := uc.saldo.GetBalanceDetail(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	rows, err := uc.repos.Boletas.ListByCliente(ctx, clienteID, q)
	if err != nil {
		return nil, err
	}
	page := pagination.Build(rows, q.Limit, pagination.BoletaKey, func(b *entity.Boleta) dto.BoletaResponse {
		return appbilling.ToBoletaResponse(b, detail.Result)
	})
	return &page, nil
}

// Boleta detalle de una boleta del cliente.
func (uc *UseCase) Boleta(ctx context.Context, clienteID, boletaID string) (*dto.BoletaDetalleResponse, error) {
	detail, err := uc.saldo.GetBalanceDetail(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	b, found := lo.Find(detail.Boletas, func(b *entity.Boleta) bool { return b.ID == boletaID })
	if !found {
		return nil, domain.ErrNotFound
	}
	d := appbilling.ToBoletaDetalle(b, detail.Result)
	return &d, nil
}

// BoletaPDF PDF de una boleta del cliente.
func (uc *UseCase) BoletaPDF(ctx context.Context, clienteID, boletaID string) ([]byte, string, error) {
	return uc.pdf.Download(ctx, clienteID, boletaID)
}

// ── Autopago ──

// Autopago estado de la inscripción.
func (uc *UseCase) Autopago(ctx context.Context, clienteID string) (*dto.AutopagoResponse, error) {
	a, err := uc.repos.Autopagos.Get(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	return toAutopagoResponse(a), nil
}

// InscribirAutopago valida la tarjeta y guarda solo marca, últimos 4 dígitos y un token.
func (uc *UseCase) InscribirAutopago(ctx context.Context, clienteID string, in dto.AutopagoRequest) (*dto.AutopagoResponse, error) {
	numero := strings.ReplaceAll(strings.TrimSpace(in.NumeroTarjeta), " ", "")
	if !TarjetaValida(numero) {
		return nil, domain.ErrTarjetaInvalida
	}
	if in.DiaCobro < 1 || in.DiaCobro > 28 {
		return nil, fmt.Errorf("diaCobro debe estar entre 1 y 28: %w", domain.ErrInvalidInput)
	}
	a := &entity.Autopago{
		ClienteID:    clienteID,
		Activo:       true,
		MarcaTarjeta: MarcaTarjeta(numero),
		Ultimos4:     numero[len(numero)-4:],
		TokenTarjeta: uuid.New().String(),
		DiaCobro:     in.DiaCobro,
		UpdatedAt:    uc.now(),
	}
	if err := uc.repos.Autopagos.Upsert(ctx, a); err != nil {
		return nil, err
	}
	uc.log.Info().Str("cliente_id", clienteID).Str("marca", a.MarcaTarjeta).Msg("autopago inscrito")
	return toAutopagoResponse(a), nil
}

// DesactivarAutopago deja la inscripción inactiva.
func (uc *UseCase) DesactivarAutopago(ctx context.Context, clienteID string) (*dto.AutopagoResponse, error) {
	a, err := uc.repos.Autopagos.Get(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	if a == nil || !a.Activo {
		return nil, domain.ErrNotFound
	}
	a.Activo = false
	a.UpdatedAt = uc.now()
	if err := uc.repos.Autopagos.Upsert(ctx, a); err != nil {
		return nil, err
	}
	return toAutopagoResponse(a), nil
}

// TarjetaValida número de 13 a 18 dígitos con dígito verificador Luhn correcto.
func TarjetaValida(numero string) bool {
	if len(numero) < 13 || len(numero) > 18 {
		return false
	}
	n, err := strconv.Atoi(numero)
	if err != nil || n <= 0 {
		return false
	}
	return luhn.Valid(n)
}

// MarcaTarjeta identifica la marca por el prefijo del número.
func MarcaTarjeta(numero string) string {
	switch {
	case strings.HasPrefix(numero, "4"):
		return "visa"
	case strings.HasPrefix(numero, "34"), strings.HasPrefix(numero, "37"):
		return "amex"
	case len(numero) >= 2 && numero[:2] >= "51" && numero[:2] <= "55":
		return "mastercard"
	case len(numero) >= 4 && numero[:4] >= "2221" && numero[:4] <= "2720":
		return "mastercard"
	default:
		return "otra"
	}
}

func toAutopagoResponse(a *entity.Autopago) *dto.AutopagoResponse {
	if a == nil {
		return &dto.AutopagoResponse{Activo: false}
	}
	updated := a.UpdatedAt
	return &dto.AutopagoResponse{
		Activo:       a.Activo,
		MarcaTarjeta: a.MarcaTarjeta,
		Ultimos4:     a.Ultimos4,
		DiaCobro:     a.DiaCobro,
		UpdatedAt:    &updated,
	}
}

// ── Repactación ──

// CrearSolicitud registra una solicitud de repactación por la deuda actual.
// Rechaza con ErrSolicitudPendiente si ya hay una pendiente.
func (uc *UseCase) CrearSolicitud(ctx context.Context, clienteID string, in dto.CreateSolicitudRequest) (*dto.SolicitudResponse, error) {
	pendiente, err := uc.repos.Solicitudes.ExistsPendiente(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	if pendiente {
		return nil, domain.ErrSolicitudPendiente
	}
	saldo, err := uc.saldo.GetCustomerBalance(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	if !saldo.Saldo.IsPositive() {
		return nil, fmt.Errorf("el cliente no tiene deuda: %w", domain.ErrConflict)
	}
	s := &entity.SolicitudRepactacion{
		ID:                uuid.New().String(),
		ClienteID:         clienteID,
		MontoDeuda:        saldo.Saldo,
		CuotasSolicitadas: in.CuotasSolicitadas,
		Motivo:            strings.TrimSpace(in.Motivo),
		Estado:            entity.SolicitudPendiente,
		CreatedAt:         uc.now(),
	}
	if err := uc.repos.Solicitudes.Create(ctx, s); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrSolicitudPendiente
		}
		return nil, err
	}
	resp := ToSolicitudResponse(s)
	return &resp, nil
}

// Solicitudes solicitudes del cliente, más recientes primero.
func (uc *UseCase) Solicitudes(ctx context.Context, clienteID string) ([]dto.SolicitudResponse, error) {
	list, err := uc.repos.Solicitudes.ListByCliente(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	return lo.Map(list, func(s *entity.SolicitudRepactacion, _ int) dto.SolicitudResponse {
		return ToSolicitudResponse(s)
	}), nil
}
