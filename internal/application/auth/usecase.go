package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/application/ports"
	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
	"github.com/StantonMatt/coab-platform/pkg/jwt"
	"github.com/StantonMatt/coab-platform/pkg/logger"
	"github.com/StantonMatt/coab-platform/pkg/rut"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// LockConfig bloqueo por intentos fallidos y vigencia de los links de activación.
type LockConfig struct {
	MaxIntentos   int
	Bloqueo       time.Duration
	SetupTokenTTL time.Duration
}

// AuthUseCase casos de uso de autenticación de clientes y usuarios del panel.
type AuthUseCase struct {
	clienteRepo repository.ClienteRepository
	adminRepo   repository.UsuarioAdminRepository
	blacklist   ports.TokenBlacklist
	jwtCfg      JWTConfig
	lockCfg     LockConfig
	log         *logger.Logger
	now         func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	clienteRepo repository.ClienteRepository,
	adminRepo repository.UsuarioAdminRepository,
	blacklist ports.TokenBlacklist,
	jwtCfg JWTConfig,
	lockCfg LockConfig,
	log *logger.Logger,
) *AuthUseCase {
	if lockCfg.MaxIntentos <= 0 {
		lockCfg.MaxIntentos = 5
	}
	if lockCfg.Bloqueo <= 0 {
		lockCfg.Bloqueo = 30 * time.Minute
	}
	if lockCfg.SetupTokenTTL <= 0 {
		lockCfg.SetupTokenTTL = 72 * time.Hour
	}
	return &AuthUseCase{
		clienteRepo: clienteRepo,
		adminRepo:   adminRepo,
		blacklist:   blacklist,
		jwtCfg:      jwtCfg,
		lockCfg:     lockCfg,
		log:         log.Named("auth"),
		now:         time.Now,
	}
}

// ── Clientes ──

// Login verifica RUT/password del cliente, aplica el bloqueo por intentos y genera el JWT.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	normalized, err := rut.Validate(in.RUT)
	if err != nil {
		return nil, fmt.Errorf("rut: %w", domain.ErrInvalidInput)
	}
	cli, err := uc.clienteRepo.GetByRUT(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if cli == nil {
		return nil, domain.ErrUnauthorized
	}
	now := uc.now()
	if cli.Bloqueado(now) {
		return nil, domain.ErrAccountLocked
	}
	if cli.PasswordHash == "" {
		return nil, domain.ErrSetupRequired
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cli.PasswordHash), []byte(in.Password)); err != nil {
		return nil, uc.registrarFallo(ctx, cli, now)
	}

	primerLogin := cli.PrimerLogin
	if cli.IntentosFallidos > 0 || cli.BloqueadoHasta != nil || cli.PrimerLogin {
		if err := uc.clienteRepo.RegistrarIngreso(ctx, cli.ID); err != nil {
			return nil, err
		}
	}

	issued, err := jwt.Generate(uc.jwtCfg.Secret, cli.ID, entity.RoleCliente, jwt.TipoCliente, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
		Tipo:      jwt.TipoCliente,
		Cliente: &dto.ClienteRef{
			ID:            cli.ID,
			RUT:           rut.Format(cli.RUT),
			NumeroCliente: cli.NumeroCliente,
			Nombre:        cli.NombreCompleto(),
			PrimerLogin:   primerLogin,
		},
	}, nil
}

// registrarFallo cuenta el fallo con un único UPDATE atómico en el repositorio.
func (uc *AuthUseCase) registrarFallo(ctx context.Context, cli *entity.Cliente, now time.Time) error {
	hasta := now.Add(uc.lockCfg.Bloqueo)
	bloqueada, err := uc.clienteRepo.RegistrarFallo(ctx, cli.ID, uc.lockCfg.MaxIntentos, hasta)
	if err != nil {
		return err
	}
	if bloqueada {
		uc.log.Warn().Str("cliente_id", cli.ID).Time("hasta", hasta).Msg("cuenta bloqueada por intentos fallidos")
		return domain.ErrAccountLocked
	}
	return domain.ErrUnauthorized
}

// ── Usuarios del panel ──

// AdminLogin verifica email/password del usuario interno y genera el JWT.
func (uc *AuthUseCase) AdminLogin(ctx context.Context, in dto.AdminLoginRequest) (*dto.LoginResponse, error) {
	u, err := uc.adminRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !u.Activo {
		return nil, domain.ErrForbidden
	}
	issued, err := jwt.Generate(uc.jwtCfg.Secret, u.ID, u.Role, jwt.TipoAdmin, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
		Tipo:      jwt.TipoAdmin,
		Admin:     &dto.AdminRef{ID: u.ID, Email: u.Email, Nombre: u.Nombre, Role: u.Role},
	}, nil
}

// Logout revoca el token hasta su expiración.
func (uc *AuthUseCase) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return domain.ErrUnauthorized
	}
	ttl := expiresAt.Sub(uc.now())
	if ttl <= 0 {
		return nil
	}
	return uc.blacklist.Revoke(ctx, jti, ttl)
}

// IsRevoked indica si el token fue revocado por logout.
func (uc *AuthUseCase) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return uc.blacklist.IsRevoked(ctx, jti)
}

// ── Activación de cuenta ──

// IssueSetupToken genera un token de activación nuevo para el cliente (invalida el anterior).
// Devuelve el token en claro; en la base solo se guarda su hash.
func (uc *AuthUseCase) IssueSetupToken(ctx context.Context, cli *entity.Cliente) (string, time.Time, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", time.Time{}, fmt.Errorf("generar token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)
	now := uc.now()
	exp := now.Add(uc.lockCfg.SetupTokenTTL)
	if err := uc.clienteRepo.GuardarSetupToken(ctx, cli.ID, hashToken(token), exp); err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// ValidateSetupToken verifica que el token exista y esté vigente.
func (uc *AuthUseCase) ValidateSetupToken(ctx context.Context, token string) (*dto.SetupInfoResponse, error) {
	cli, err := uc.clientePorToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return &dto.SetupInfoResponse{Valido: true, Nombre: cli.NombreCompleto(), RUT: rut.Format(cli.RUT)}, nil
}

// CompleteSetup define la contraseña, consume el token y deja la sesión iniciada.
func (uc *AuthUseCase) CompleteSetup(ctx context.Context, token string, in dto.SetupPasswordRequest) (*dto.LoginResponse, error) {
	cli, err := uc.clientePorToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("password debe tener al menos 8 caracteres: %w", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if err := uc.clienteRepo.DefinirPassword(ctx, cli.ID, cli.SetupTokenHash, string(hash)); err != nil {
		return nil, err
	}
	uc.log.Info().Str("cliente_id", cli.ID).Msg("cuenta activada")

	issued, err := jwt.Generate(uc.jwtCfg.Secret, cli.ID, entity.RoleCliente, jwt.TipoCliente, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
		Tipo:      jwt.TipoCliente,
		Cliente: &dto.ClienteRef{
			ID:            cli.ID,
			RUT:           rut.Format(cli.RUT),
			NumeroCliente: cli.NumeroCliente,
			Nombre:        cli.NombreCompleto(),
			PrimerLogin:   true,
		},
	}, nil
}

func (uc *AuthUseCase) clientePorToken(ctx context.Context, token string) (*entity.Cliente, error) {
	if token == "" {
		return nil, domain.ErrSetupTokenInvalid
	}
	cli, err := uc.clienteRepo.GetBySetupTokenHash(ctx, hashToken(token))
	if err != nil {
		return nil, err
	}
	if cli == nil || cli.SetupTokenExpira == nil || uc.now().After(*cli.SetupTokenExpira) {
		return nil, domain.ErrSetupTokenInvalid
	}
	return cli, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
