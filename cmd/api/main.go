// @title           COAB Portal API
// @version         1.0
// @description     Portal de clientes y panel de administración del comité de agua potable.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/StantonMatt/coab-platform/docs"
	"github.com/StantonMatt/coab-platform/internal/application/admin"
	"github.com/StantonMatt/coab-platform/internal/application/auth"
	"github.com/StantonMatt/coab-platform/internal/application/billing"
	"github.com/StantonMatt/coab-platform/internal/application/cliente"
	"github.com/StantonMatt/coab-platform/internal/application/jobs"
	"github.com/StantonMatt/coab-platform/internal/application/ports"
	infrapdf "github.com/StantonMatt/coab-platform/internal/infrastructure/pdf"
	"github.com/StantonMatt/coab-platform/internal/infrastructure/postgres"
	"github.com/StantonMatt/coab-platform/internal/infrastructure/session"
	"github.com/StantonMatt/coab-platform/internal/infrastructure/sms"
	"github.com/StantonMatt/coab-platform/internal/infrastructure/storage"
	httpRouter "github.com/StantonMatt/coab-platform/internal/interfaces/http"
	"github.com/StantonMatt/coab-platform/pkg/config"
	"github.com/StantonMatt/coab-platform/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.App.Timezone).Msg("zona horaria inválida")
	}

	ctx := context.Background()

	if cfg.DB.AutoMigrate {
		mg, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
		if err != nil {
			log.Fatal().Err(err).Msg("migrador")
		}
		if err := mg.Up(); err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		_ = mg.Close()
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Lista de tokens revocados: Redis si está configurado, memoria en otro caso.
	var blacklist ports.TokenBlacklist
	if cfg.Redis.Enabled() {
		rdb, err := session.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		blacklist = session.NewRedisBlacklist(rdb)
	} else {
		log.Warn().Msg("REDIS_HOST no configurado: tokens revocados en memoria")
		blacklist = session.NewMemoryBlacklist()
	}

	var objectStorage ports.ObjectStorage
	if cfg.Storage.Enabled() {
		s3, err := storage.NewS3Storage(ctx, cfg.Storage, log)
		if err != nil {
			log.Fatal().Err(err).Msg("almacenamiento S3")
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Fatal().Err(err).Str("bucket", cfg.Storage.Bucket).Msg("bucket S3")
		}
		objectStorage = s3
	} else {
		log.Warn().Msg("S3_BUCKET no configurado: los PDF se generan bajo demanda")
	}

	var smsSender ports.SMSSender
	if cfg.SMS.Enabled() {
		smsSender = sms.NewClient(cfg.SMS)
	}

	clienteRepo := postgres.NewClienteRepository(pool)
	boletaRepo := postgres.NewBoletaRepository(pool)
	pagoRepo := postgres.NewPagoRepository(pool)
	medidorRepo := postgres.NewMedidorRepository(pool)
	lecturaRepo := postgres.NewLecturaRepository(pool)
	autopagoRepo := postgres.NewAutopagoRepository(pool)
	solicitudRepo := postgres.NewSolicitudRepository(pool)
	repactacionRepo := postgres.NewRepactacionRepository(pool)
	multaRepo := postgres.NewMultaRepository(pool)
	subsidioRepo := postgres.NewSubsidioRepository(pool)
	rutaRepo := postgres.NewRutaRepository(pool)
	adminRepo := postgres.NewUsuarioAdminRepository(pool)
	jobRepo := postgres.NewJobRepository(pool)
	dashboardRepo := postgres.NewDashboardRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	saldoSvc := billing.NewService(clienteRepo, boletaRepo, pagoRepo)

	renderer := infrapdf.NewBoletaRenderer(infrapdf.Empresa{
		Nombre:    cfg.Empresa.Nombre,
		RUT:       cfg.Empresa.RUT,
		Direccion: cfg.Empresa.Direccion,
		Telefono:  cfg.Empresa.Telefono,
		PortalURL: cfg.App.PortalBaseURL,
	})
	pdfUC := billing.NewPDFUseCase(boletaRepo, clienteRepo, saldoSvc, renderer, objectStorage)

	authUC := auth.NewAuthUseCase(clienteRepo, adminRepo, blacklist,
		auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		},
		auth.LockConfig{
			MaxIntentos:   cfg.Auth.MaxIntentos,
			Bloqueo:       time.Duration(cfg.Auth.BloqueoMinutos) * time.Minute,
			SetupTokenTTL: cfg.Auth.SetupTokenTTL,
		},
		log,
	)

	clienteUC := cliente.NewUseCase(cliente.Repos{
		Clientes:    clienteRepo,
		Boletas:     boletaRepo,
		Pagos:       pagoRepo,
		Medidores:   medidorRepo,
		Autopagos:   autopagoRepo,
		Solicitudes: solicitudRepo,
	}, saldoSvc, pdfUC, log)

	jobSvc := jobs.NewPDFJobService(jobRepo, boletaRepo, pdfUC, objectStorage,
		jobs.Config{Timeout: cfg.Jobs.Timeout}, log)
	if _, err := jobSvc.RecoverOrphans(ctx); err != nil {
		log.Fatal().Err(err).Msg("no se pudieron cerrar los jobs huérfanos")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "COAB Portal API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		ClienteUC: clienteUC,
		AdminClientes: admin.NewClienteUseCase(clienteRepo, medidorRepo, saldoSvc, authUC,
			smsSender, cfg.App.PortalBaseURL, log),
		Pagos:         admin.NewPagoUseCase(txRunner, pagoRepo, saldoSvc, log),
		Medidores:     admin.NewMedidorUseCase(medidorRepo, lecturaRepo),
		Rutas:         admin.NewRutaUseCase(rutaRepo),
		Multas:        admin.NewMultaUseCase(multaRepo, clienteRepo),
		Subsidios:     admin.NewSubsidioUseCase(subsidioRepo, clienteRepo),
		Repactaciones: admin.NewRepactacionUseCase(txRunner, solicitudRepo, repactacionRepo, log),
		DashboardUC:   admin.NewDashboardUseCase(dashboardRepo, loc),
		Jobs:          jobSvc,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	// Los jobs en curso se interrumpen y quedan en error; no sobreviven al proceso.
	log.Info().Msg("deteniendo procesos batch en curso...")
	jobSvc.Shutdown()

	log.Info().Msg("aplicación detenida")
}
