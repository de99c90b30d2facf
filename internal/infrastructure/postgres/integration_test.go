//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/StantonMatt/coab-platform/internal/application/admin"
	appbilling "github.com/StantonMatt/coab-platform/internal/application/billing"
	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/application/pagination"
	"github.com/StantonMatt/coab-platform/internal/application/ports"
	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
	"github.com/StantonMatt/coab-platform/internal/infrastructure/postgres"
	"github.com/StantonMatt/coab-platform/pkg/config"
	"github.com/StantonMatt/coab-platform/pkg/logger"
)

// Ejecutar con: go test -tags integration ./internal/infrastructure/postgres/...
// Requiere Docker.

var (
	pool *pgxpool.Pool
	dsn  string
)

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("coab_test"),
		tcpostgres.WithUsername("coab"),
		tcpostgres.WithPassword("coab"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "levantar postgres:", err)
		return 1
	}
	defer func() { _ = ctr.Terminate(ctx) }()

	dsn, err = ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintln(os.Stderr, "dsn:", err)
		return 1
	}

	mg, err := postgres.NewMigrator(dsn, logger.Nop())
	if err != nil {
		fmt.Fprintln(os.Stderr, "migrador:", err)
		return 1
	}
	if err := mg.Up(); err != nil {
		fmt.Fprintln(os.Stderr, "migraciones:", err)
		return 1
	}
	_ = mg.Close()

	pool, err = postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	if err != nil {
		fmt.Fprintln(os.Stderr, "pool:", err)
		return 1
	}
	defer pool.Close()

	return m.Run()
}

// ── Helpers ──

func insertCliente(t *testing.T, rut, numero, nombre, apellido string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO clientes (id, rut, numero_cliente, nombre, apellido)
		VALUES ($1, $2, $3, $4, $5)`, id, rut, numero, nombre, apellido)
	require.NoError(t, err)
	return id
}

func insertBoleta(t *testing.T, clienteID, periodo string, emision time.Time, monto int64) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO boletas (id, cliente_id, periodo, fecha_emision, fecha_vencimiento, monto_total_mes, monto_total)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		id, clienteID, periodo, emision, emision.AddDate(0, 0, 20), decimal.NewFromInt(monto))
	require.NoError(t, err)
	return id
}

func insertAdmin(t *testing.T) string {
	t.Helper()
	var id string
	err := pool.QueryRow(context.Background(), `
		INSERT INTO usuarios_admin (email, nombre, password_hash, rol)
		VALUES ($1, 'Operador', 'x', 'operador') RETURNING id`, uuid.NewString()+"@coab.cl").Scan(&id)
	require.NoError(t, err)
	return id
}

// ── Tests ──

func TestMigrator_Version(t *testing.T) {
	mg, err := postgres.NewMigrator(dsn, logger.Nop())
	require.NoError(t, err)
	defer mg.Close()

	v, dirty, err := mg.Version()
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)
	assert.False(t, dirty)
	assert.NoError(t, mg.Up(), "sin cambios no es error")
}

func TestClienteRepo_BusquedaSinAcentos(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewClienteRepository(pool)
	id := insertCliente(t, "11111111-1", "900001", "José", "Muñoz Pérez")

	got, err := repo.GetByRUT(ctx, "11111111-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.Empty(t, got.PasswordHash)

	missing, err := repo.GetByID(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)

	q := repository.PageQuery{Limit: 10}
	for _, term := range []string{"munoz", "jose mu", "11111", "900001"} {
		rows, err := repo.Search(ctx, repository.ClienteFilter{Query: admin.NormalizarBusqueda(term)}, q)
		require.NoError(t, err, term)
		assert.NotEmpty(t, rows, term)
	}
}

func TestClienteRepo_SetupTokenYPassword(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewClienteRepository(pool)
	id := insertCliente(t, "22222222-2", "900002", "Ana", "Rojas")

	expira := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.GuardarSetupToken(ctx, id, "abc123", expira))

	byToken, err := repo.GetBySetupTokenHash(ctx, "abc123")
	require.NoError(t, err)
	require.NotNil(t, byToken)
	assert.Equal(t, id, byToken.ID)
	require.NotNil(t, byToken.SetupTokenExpira)
	assert.True(t, expira.Equal(*byToken.SetupTokenExpira))

	require.NoError(t, repo.DefinirPassword(ctx, id, "abc123", "hash-1"))
	assert.ErrorIs(t, repo.DefinirPassword(ctx, id, "abc123", "hash-2"), domain.ErrSetupTokenInvalid)

	cli, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hash-1", cli.PasswordHash)
	assert.Empty(t, cli.SetupTokenHash)
	assert.True(t, cli.PrimerLogin)

	assert.ErrorIs(t, repo.GuardarSetupToken(ctx, uuid.NewString(), "x", expira), domain.ErrNotFound)
}

func TestClienteRepo_FallosParalelosBloquean(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewClienteRepository(pool)
	id := insertCliente(t, "20202020-2", "900020", "Luis", "Mora")
	require.NoError(t, repo.GuardarSetupToken(ctx, id, "token-vigente", time.Now().Add(time.Hour)))

	hasta := time.Now().Add(30 * time.Minute).UTC().Truncate(time.Microsecond)
	const n = 5
	var (
		wg         sync.WaitGroup
		bloqueos   atomic.Int32
		conErrores atomic.Int32
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bloqueada, err := repo.RegistrarFallo(ctx, id, n, hasta)
			if err != nil {
				conErrores.Add(1)
				return
			}
			if bloqueada {
				bloqueos.Add(1)
			}
		}()
	}
	wg.Wait()
	require.Zero(t, conErrores.Load())
	assert.EqualValues(t, 1, bloqueos.Load(), "exactamente el quinto fallo bloquea")

	cli, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, cli.IntentosFallidos)
	require.NotNil(t, cli.BloqueadoHasta)
	assert.True(t, hasta.Equal(*cli.BloqueadoHasta))
	assert.Equal(t, "token-vigente", cli.SetupTokenHash, "los fallos no tocan el token de activación")

	require.NoError(t, repo.Desbloquear(ctx, id))
	cli, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, cli.BloqueadoHasta)

	_, err = repo.RegistrarFallo(ctx, uuid.NewString(), n, hasta)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBoletaRepo_PaginacionKeyset(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewBoletaRepository(pool)
	clienteID := insertCliente(t, "33333333-3", "900003", "Pedro", "Soto")
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		emision := base.AddDate(0, i, 0)
		insertBoleta(t, clienteID, emision.Format("2006-01"), emision, 10000)
	}

	q := repository.PageQuery{Limit: 2}
	var periodos []string
	for {
		rows, err := repo.ListByCliente(ctx, clienteID, q)
		require.NoError(t, err)
		page := pagination.Build(rows, q.Limit, pagination.BoletaKey, func(b *entity.Boleta) string { return b.Periodo })
		periodos = append(periodos, page.Data...)
		if !page.Pagination.HasNextPage {
			break
		}
		from, err := pagination.Decode(page.Pagination.NextCursor)
		require.NoError(t, err)
		q.From = from
	}
	assert.Equal(t, []string{"2026-05", "2026-04", "2026-03", "2026-02", "2026-01"}, periodos)
}

func TestTxRunner_RollbackAnteError(t *testing.T) {
	ctx := context.Background()
	clienteID := insertCliente(t, "44444444-4", "900004", "Luis", "Vera")
	tx := postgres.NewTxRunner(pool)
	pagoID := uuid.NewString()

	err := tx.RunInTx(ctx, func(r ports.TxRepos) error {
		if err := r.Pagos.Create(ctx, &entity.Pago{
			ID: pagoID, ClienteID: clienteID, Monto: decimal.NewFromInt(500),
			FechaPago: time.Now(), TipoPago: entity.PagoEfectivo, Estado: entity.PagoAprobado, CreatedAt: time.Now(),
		}); err != nil {
			return err
		}
		return domain.ErrConflict
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	p, err := postgres.NewPagoRepository(pool).GetByID(ctx, pagoID)
	require.NoError(t, err)
	assert.Nil(t, p, "el pago no debe persistir tras el rollback")
}

func TestRegistrarPago_PersisteEstadoDeBoletas(t *testing.T) {
	ctx := context.Background()
	clienteID := insertCliente(t, "55555555-5", "900005", "Carmen", "Díaz")
	operador := insertAdmin(t)
	b1 := insertBoleta(t, clienteID, "2026-01", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), 10000)
	b2 := insertBoleta(t, clienteID, "2026-02", time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC), 10000)

	clientes := postgres.NewClienteRepository(pool)
	boletas := postgres.NewBoletaRepository(pool)
	pagos := postgres.NewPagoRepository(pool)
	saldo := appbilling.NewService(clientes, boletas, pagos)
	uc := admin.NewPagoUseCase(postgres.NewTxRunner(pool), pagos, saldo, logger.Nop())

	out, err := uc.Registrar(ctx, operador, dto.RegistrarPagoRequest{
		ClienteID: clienteID, Monto: decimal.NewFromInt(15000), TipoPago: entity.PagoTransferencia,
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5000).Equal(out.Saldo.Saldo))

	got1, err := boletas.GetByID(ctx, b1)
	require.NoError(t, err)
	got2, err := boletas.GetByID(ctx, b2)
	require.NoError(t, err)
	assert.Equal(t, entity.BoletaPagada, got1.Estado)
	assert.Equal(t, entity.BoletaParcial, got2.Estado)

	cli, err := clientes.GetByID(ctx, clienteID)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoCuentaMoroso, cli.EstadoCuenta)
	require.NotNil(t, cli.SaldoCorteAt)
	assert.True(t, decimal.NewFromInt(5000).Equal(cli.SaldoCredito))

	anulado, err := uc.Anular(ctx, out.Pago.ID, operador, dto.AnularPagoRequest{Motivo: "error de digitación"})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(20000).Equal(anulado.Saldo.Saldo))
}

func TestSolicitudRepo_UnaPendientePorCliente(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewSolicitudRepository(pool)
	clienteID := insertCliente(t, "66666666-6", "900006", "Rosa", "Lagos")

	nueva := func() *entity.SolicitudRepactacion {
		return &entity.SolicitudRepactacion{
			ID: uuid.NewString(), ClienteID: clienteID, MontoDeuda: decimal.NewFromInt(30000),
			CuotasSolicitadas: 3, Motivo: "cesantía", Estado: entity.SolicitudPendiente, CreatedAt: time.Now(),
		}
	}
	require.NoError(t, repo.Create(ctx, nueva()))
	assert.ErrorIs(t, repo.Create(ctx, nueva()), domain.ErrDuplicate)

	pendiente, err := repo.ExistsPendiente(ctx, clienteID)
	require.NoError(t, err)
	assert.True(t, pendiente)
}

func TestSolicitudRepo_RevisionSoloDesdePendiente(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewSolicitudRepository(pool)
	clienteID := insertCliente(t, "21212121-2", "900021", "Jorge", "Vidal")
	adm := insertAdmin(t)

	s := &entity.SolicitudRepactacion{
		ID: uuid.NewString(), ClienteID: clienteID, MontoDeuda: decimal.NewFromInt(30000),
		CuotasSolicitadas: 3, Motivo: "enfermedad", Estado: entity.SolicitudPendiente, CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(ctx, s))

	// Dos revisores leen la misma solicitud pendiente.
	primera, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	segunda, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)

	now := time.Now()
	primera.Estado, primera.RevisadoPor, primera.RevisadoAt = entity.SolicitudAprobada, &adm, &now
	require.NoError(t, repo.UpdateRevision(ctx, primera))

	segunda.Estado, segunda.RevisadoPor, segunda.RevisadoAt = entity.SolicitudRechazada, &adm, &now
	assert.ErrorIs(t, repo.UpdateRevision(ctx, segunda), domain.ErrInvalidTransition)

	final, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SolicitudAprobada, final.Estado)
}

func TestJobRepo_UnJobActivoPorPeriodo(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewJobRepository(pool)
	adm := insertAdmin(t)

	job := &entity.JobPDF{ID: uuid.NewString(), Periodo: "2030-01", Estado: entity.JobPendiente, IniciadoPor: adm, CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, job))

	otro := &entity.JobPDF{ID: uuid.NewString(), Periodo: "2030-01", Estado: entity.JobPendiente, IniciadoPor: adm, CreatedAt: time.Now()}
	assert.ErrorIs(t, repo.Create(ctx, otro), domain.ErrDuplicate)

	require.NoError(t, repo.RequestCancel(ctx, job.ID))
	cancelar, err := repo.IsCancelRequested(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, cancelar)

	job.Estado = entity.JobCancelado
	require.NoError(t, repo.Update(ctx, job))
	activo, err := repo.ExistsActivo(ctx, "2030-01")
	require.NoError(t, err)
	assert.False(t, activo)
}

func TestJobRepo_FailActivosLiberaElPeriodo(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewJobRepository(pool)
	adm := insertAdmin(t)

	job := &entity.JobPDF{ID: uuid.NewString(), Periodo: "2031-05", Estado: entity.JobPendiente, IniciadoPor: adm, CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, job))

	n, err := repo.FailActivos(ctx, "proceso interrumpido por reinicio del servidor")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	got, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobError, got.Estado)
	assert.NotNil(t, got.FinishedAt)

	otro := &entity.JobPDF{ID: uuid.NewString(), Periodo: "2031-05", Estado: entity.JobPendiente, IniciadoPor: adm, CreatedAt: time.Now()}
	assert.NoError(t, repo.Create(ctx, otro))
}
