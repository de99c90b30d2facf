// Package admin contiene los casos de uso del panel de administración (/admin).
package admin

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/StantonMatt/coab-platform/internal/application/auth"
	appbilling "github.com/StantonMatt/coab-platform/internal/application/billing"
	"github.com/StantonMatt/coab-platform/internal/application/cliente"
	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/application/pagination"
	"github.com/StantonMatt/coab-platform/internal/application/ports"
	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
	"github.com/StantonMatt/coab-platform/pkg/logger"
	"github.com/StantonMatt/coab-platform/pkg/rut"
	"github.com/StantonMatt/coab-platform/pkg/textnorm"
)

const fichaUltimasBoletas = 6

// ClienteUseCase gestión de clientes desde el panel.
type ClienteUseCase struct {
	clienteRepo repository.ClienteRepository
	medidorRepo repository.MedidorRepository
	saldo       *appbilling.Service
	auth        *auth.AuthUseCase
	sms         ports.SMSSender // nil si no hay gateway configurado
	portalURL   string
	log         *logger.Logger
	now         func() time.Time
}

// NewClienteUseCase construye el caso de uso.
func NewClienteUseCase(
	clienteRepo repository.ClienteRepository,
	medidorRepo repository.MedidorRepository,
	saldo *appbilling.Service,
	authUC *auth.AuthUseCase,
	sms ports.SMSSender,
	portalURL string,
	log *logger.Logger,
) *ClienteUseCase {
	return &ClienteUseCase{
		clienteRepo: clienteRepo,
		medidorRepo: medidorRepo,
		saldo:       saldo,
		auth:        authUC,
		sms:         sms,
		portalURL:   strings.TrimRight(portalURL, "/"),
		log:         log.Named("admin.clientes"),
		now:         time.Now,
	}
}

// Search busca clientes por RUT, nombre o número de cliente sin distinguir acentos.
func (uc *ClienteUseCase) Search(ctx context.Context, query, estadoCuenta string, req dto.PageRequest) (*dto.Page[dto.ClienteListItem], error) {
	q, err := pagination.Query(req)
	if err != nil {
		return nil, err
	}
	f := repository.ClienteFilter{Query: NormalizarBusqueda(query), EstadoCuenta: estadoCuenta}
	rows, err := uc.clienteRepo.Search(ctx, f, q)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	page := pagination.Build(rows, q.Limit, pagination.ClienteKey, func(c *entity.Cliente) dto.ClienteListItem {
		return toClienteListItem(c, now)
	})
	return &page, nil
}

// NormalizarBusqueda deja el texto comparable con las columnas normalizadas de la base.
// Un RUT se reduce a dígitos y K, sin puntos ni guion, para buscar por prefijo.
func NormalizarBusqueda(query string) string {
	q := strings.TrimSpace(query)
	if q == "" {
		return ""
	}
	if looksLikeRUT(q) {
		return strings.ToLower(strings.NewReplacer(".", "", "-", "", " ", "").Replace(q))
	}
	return textnorm.Fold(q)
}

func looksLikeRUT(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.' || r == '-' || r == 'k' || r == 'K' || r == ' ':
		default:
			return false
		}
	}
	return digits >= 6
}

// Ficha perfil del cliente con saldo y últimas boletas.
func (uc *ClienteUseCase) Ficha(ctx context.Context, clienteID string) (*dto.ClienteFichaResponse, error) {
	detail, err := uc.saldo.GetBalanceDetail(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	direcciones, err := uc.clienteRepo.ListDirecciones(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	medidores, err := uc.medidorRepo.ListByCliente(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	cli := detail.Cliente
	boletas := lo.Subset(ordenarRecientes(detail.Boletas), 0, fichaUltimasBoletas)
	return &dto.ClienteFichaResponse{
		PerfilResponse:  cliente.ToPerfil(cli, direcciones, medidores),
		CuentaBloqueada: cli.Bloqueado(uc.now()),
		BloqueadoHasta:  cli.BloqueadoHasta,
		Activado:        cli.PasswordHash != "",
		Saldo:           appbilling.ToSaldoResponse(detail.Result),
		UltimasBoletas:  appbilling.ToBoletaResponses(boletas, detail.Result),
	}, nil
}

func ordenarRecientes(boletas []*entity.Boleta) []*entity.Boleta {
	out := append([]*entity.Boleta(nil), boletas...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].FechaEmision.After(out[j].FechaEmision) })
	return out
}

// Update edita los datos del cliente.
func (uc *ClienteUseCase) Update(ctx context.Context, clienteID string, in dto.UpdateClienteRequest) (*dto.ClienteFichaResponse, error) {
	cli, err := uc.getCliente(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	cli.Nombre = strings.TrimSpace(in.Nombre)
	cli.Apellido = strings.TrimSpace(in.Apellido)
	cli.Email = strings.ToLower(strings.TrimSpace(in.Email))
	cli.Telefono = strings.TrimSpace(in.Telefono)
	cli.UpdatedAt = uc.now()
	if err := uc.clienteRepo.Update(ctx, cli); err != nil {
		return nil, err
	}
	return uc.Ficha(ctx, clienteID)
}

// Desbloquear quita el bloqueo manual o por intentos fallidos.
func (uc *ClienteUseCase) Desbloquear(ctx context.Context, clienteID, adminID string) error {
	if err := uc.clienteRepo.Desbloquear(ctx, clienteID); err != nil {
		return err
	}
	uc.log.Info().Str("cliente_id", clienteID).Str("admin_id", adminID).Msg("cuenta desbloqueada")
	return nil
}

// EnviarLinkSetup genera un link de activación y lo envía por SMS.
// Si el cliente no tiene teléfono devuelve el link junto con domain.ErrNoPhone
// para que el operador lo copie y lo entregue por otro medio.
func (uc *ClienteUseCase) EnviarLinkSetup(ctx context.Context, clienteID string) (*dto.SetupLinkResponse, error) {
	cli, err := uc.getCliente(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	token, exp, err := uc.auth.IssueSetupToken(ctx, cli)
	if err != nil {
		return nil, err
	}
	resp := &dto.SetupLinkResponse{Link: uc.portalURL + "/activar/" + token, ExpiresAt: exp}

	if strings.TrimSpace(cli.Telefono) == "" {
		return resp, domain.ErrNoPhone
	}
	if uc.sms == nil {
		return resp, nil
	}
	msg := fmt.Sprintf("COAB: Hola %s, activa tu cuenta del portal de clientes en %s", cli.Nombre, resp.Link)
	if err := uc.sms.Send(ctx, cli.Telefono, msg); err != nil {
		uc.log.Warn().Err(err).Str("cliente_id", clienteID).Msg("envío de SMS fallido")
		return resp, nil
	}
	resp.Enviado = true
	return resp, nil
}

func (uc *ClienteUseCase) getCliente(ctx context.Context, id string) (*entity.Cliente, error) {
	cli, err := uc.clienteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cli == nil {
		return nil, domain.ErrNotFound
	}
	return cli, nil
}

func toClienteListItem(c *entity.Cliente, now time.Time) dto.ClienteListItem {
	return dto.ClienteListItem{
		ID:              c.ID,
		RUT:             rut.Format(c.RUT),
		NumeroCliente:   c.NumeroCliente,
		Nombre:          c.NombreCompleto(),
		Email:           c.Email,
		Telefono:        c.Telefono,
		EstadoCuenta:    c.EstadoCuenta,
		CuentaBloqueada: c.Bloqueado(now),
		Activado:        c.PasswordHash != "",
	}
}
