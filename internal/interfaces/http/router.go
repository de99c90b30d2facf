package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/StantonMatt/coab-platform/internal/application/admin"
	"github.com/StantonMatt/coab-platform/internal/application/auth"
	"github.com/StantonMatt/coab-platform/internal/application/cliente"
	"github.com/StantonMatt/coab-platform/internal/application/jobs"
	"github.com/StantonMatt/coab-platform/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	ClienteUC     *cliente.UseCase
	AdminClientes *admin.ClienteUseCase
	Pagos         *admin.PagoUseCase
	Medidores     *admin.MedidorUseCase
	Rutas         *admin.RutaUseCase
	Multas        *admin.MultaUseCase
	Subsidios     *admin.SubsidioUseCase
	Repactaciones *admin.RepactacionUseCase
	DashboardUC   *admin.DashboardUseCase
	Jobs          *jobs.PDFJobService
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	authMW := AuthMiddleware(deps.JWTSecret, deps.AuthUC)

	// Auth (público salvo logout)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/admin/login", authHandler.AdminLogin)
	authGroup.Get("/setup/:token", authHandler.SetupInfo)
	authGroup.Post("/setup/:token", authHandler.CompleteSetup)
	authGroup.Post("/logout", authMW, authHandler.Logout)

	// Portal del cliente
	me := api.Group("/clientes/me", authMW, RequireTipo(jwt.TipoCliente), RequireRole(RoleCliente))
	clienteHandler := NewClienteHandler(deps.ClienteUC)
	me.Get("/", clienteHandler.Perfil)
	me.Patch("/contacto", clienteHandler.UpdateContacto)
	me.Get("/saldo", clienteHandler.Saldo)
	me.Get("/boletas", clienteHandler.Boletas)
	me.Get("/boletas/:id", clienteHandler.Boleta)
	me.Get("/boletas/:id/pdf", clienteHandler.BoletaPDF)
	me.Get("/pagos", clienteHandler.Pagos)
	me.Get("/autopago", clienteHandler.Autopago)
	me.Post("/autopago", clienteHandler.InscribirAutopago)
	me.Delete("/autopago", clienteHandler.DesactivarAutopago)
	me.Get("/solicitudes-repactacion", clienteHandler.Solicitudes)
	me.Post("/solicitudes-repactacion", clienteHandler.CrearSolicitud)

	// Panel: lectura para todo el personal; operaciones destructivas solo admin/supervisor.
	adm := api.Group("/admin", authMW, RequireTipo(jwt.TipoAdmin), RequireRole(RoleAdmin, RoleSupervisor, RoleOperador))
	supervisor := RequireRole(RoleAdmin, RoleSupervisor)

	clientesHandler := NewAdminClienteHandler(deps.AdminClientes, deps.Pagos)
	adm.Get("/clientes", clientesHandler.Search)
	adm.Get("/clientes/:id", clientesHandler.Ficha)
	adm.Put("/clientes/:id", clientesHandler.Update)
	adm.Post("/clientes/:id/desbloquear", supervisor, clientesHandler.Desbloquear)
	adm.Post("/clientes/:id/enviar-link", clientesHandler.EnviarLinkSetup)
	adm.Get("/clientes/:id/pagos", clientesHandler.PagosCliente)
	adm.Post("/pagos", clientesHandler.RegistrarPago)
	adm.Post("/pagos/:id/anular", supervisor, clientesHandler.AnularPago)

	catastro := NewCatastroHandler(deps.Medidores, deps.Rutas)
	adm.Get("/medidores", catastro.ListMedidores)
	adm.Post("/medidores", catastro.CreateMedidor)
	adm.Put("/medidores/:id", catastro.UpdateMedidor)
	adm.Patch("/medidores/:id/estado", supervisor, catastro.CambiarEstadoMedidor)
	adm.Get("/medidores/:id/lecturas", catastro.Lecturas)
	adm.Post("/medidores/:id/lecturas", catastro.RegistrarLectura)
	adm.Get("/rutas", catastro.ListRutas)
	adm.Post("/rutas", catastro.CreateRuta)
	adm.Put("/rutas/:id", catastro.UpdateRuta)
	adm.Put("/rutas/:id/direcciones", catastro.AsignarDirecciones)

	cargos := NewCargosHandler(deps.Multas, deps.Subsidios)
	adm.Get("/multas", cargos.ListMultas)
	adm.Post("/multas", cargos.CreateMulta)
	adm.Post("/multas/:id/aplicar", supervisor, cargos.AplicarMulta)
	adm.Post("/multas/:id/cancelar", supervisor, cargos.CancelarMulta)
	adm.Get("/subsidios", cargos.ListSubsidios)
	adm.Post("/subsidios", supervisor, cargos.CreateSubsidio)
	adm.Post("/subsidios/:id/desactivar", supervisor, cargos.DesactivarSubsidio)

	repactaciones := NewRepactacionHandler(deps.Repactaciones)
	adm.Get("/repactaciones/solicitudes", repactaciones.ListSolicitudes)
	adm.Post("/repactaciones/solicitudes/:id/aprobar", supervisor, repactaciones.Aprobar)
	adm.Post("/repactaciones/solicitudes/:id/rechazar", supervisor, repactaciones.Rechazar)
	adm.Get("/repactaciones", repactaciones.ListRepactaciones)
	adm.Post("/repactaciones/:id/completar", supervisor, repactaciones.Completar)
	adm.Post("/repactaciones/:id/cancelar", supervisor, repactaciones.Cancelar)

	adm.Get("/dashboard", NewDashboardHandler(deps.DashboardUC).Stats)

	jobHandler := NewJobHandler(deps.Jobs)
	adm.Post("/boletas/generar-pdfs", supervisor, jobHandler.GenerarPDFs)
	adm.Get("/jobs/:id", jobHandler.Get)
	adm.Post("/jobs/:id/cancel", supervisor, jobHandler.Cancel)
}
