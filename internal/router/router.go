package router

import (
	"time"

	"github.com/BistroPdv/bistro-api/internal/config"
	"github.com/BistroPdv/bistro-api/internal/handler"
	"github.com/BistroPdv/bistro-api/internal/infra"
	"github.com/BistroPdv/bistro-api/internal/middleware"
	"github.com/BistroPdv/bistro-api/internal/repository"
	"github.com/BistroPdv/bistro-api/internal/service"
	"github.com/BistroPdv/bistro-api/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, omieCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	pedidoRepo := repository.NewPedidoRepository(db)
	caixaRepo := repository.NewCaixaRepository(db)
	catalogoRepo := repository.NewCatalogoRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	syncRepo := repository.NewSyncIntentRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	pedidoSvc := service.NewPedidoService(pedidoRepo, caixaRepo, catalogoRepo, paymentRepo, syncRepo, dispatcher)
	caixaSvc := service.NewCaixaService(caixaRepo, pedidoRepo)
	relatorioSvc := service.NewRelatorioService(caixaRepo, pedidoRepo)
	paymentSvc := service.NewPaymentService(paymentRepo, pedidoRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	pedidosH := handler.NewPedidoHandler(pedidoSvc)
	caixaH := handler.NewCaixaHandler(caixaSvc, relatorioSvc)
	paymentsH := handler.NewPaymentHandler(paymentSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, omieCB))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		pedidos := v1.Group("/pedidos")
		{
			pedidos.POST("", pedidosH.Create)
			pedidos.GET("", pedidosH.FindAll)
			pedidos.GET("/:id", pedidosH.FindOne)
			pedidos.PUT("/:id", pedidosH.Update)
			pedidos.PATCH("/:id/finalizar", pedidosH.Finalizar)
			pedidos.DELETE("/:id", pedidosH.Delete)
			pedidos.GET("/mesa/:mesaId", pedidosH.FindByMesa)
		}

		caixas := v1.Group("/caixas")
		{
			caixas.POST("", caixaH.Abrir)
			caixas.GET("", caixaH.FindAll)
			caixas.GET("/aberto", caixaH.FindOpen)
			caixas.GET("/:id", caixaH.FindOne)
			caixas.POST("/:id/movimentacoes", caixaH.RegistrarMovimentacao)
			caixas.PATCH("/:id/movimentacoes/:movId", caixaH.AtualizarMovimentacao)
			caixas.POST("/:id/fechar", caixaH.Fechar)
			caixas.GET("/:id/relatorio", caixaH.Relatorio)
			caixas.DELETE("/:id", caixaH.Delete)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("", paymentsH.Create)
			payments.GET("", paymentsH.FindAll)
			payments.GET("/:id", paymentsH.FindOne)
			payments.PATCH("/:id", paymentsH.Update)
		}
	}

	return r
}
