package router

import (
	"time"

	"vitalexa/internal/config"
	"vitalexa/internal/handler"
	"vitalexa/internal/identity"
	"vitalexa/internal/infra"
	"vitalexa/internal/middleware"
	"vitalexa/internal/model"
	"vitalexa/internal/repository"
	"vitalexa/internal/service"
	"vitalexa/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
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

	// ── Infrastructure ───────────────────────────────────────────────────────
	pdfGen := infra.NewPDFGenerator(cfg.PDFStoragePath)
	resolver := identity.Parse(cfg.IdentityGroups)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	productRepo := repository.NewProductRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	promotionRepo := repository.NewPromotionRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	discountRepo := repository.NewDiscountRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	transferRepo := repository.NewTransferRepository(db)
	payrollRepo := repository.NewPayrollRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, clientRepo, cfg)
	inventorySvc := service.NewInventoryService(movementRepo, productRepo, orderRepo, rdb)
	productSvc := service.NewProductService(productRepo, userRepo, inventorySvc, rdb)
	promotionSvc := service.NewPromotionService(promotionRepo, productRepo, userRepo)
	orderSvc := service.NewOrderService(orderRepo, productRepo, clientRepo, userRepo,
		paymentRepo, payrollRepo, promotionSvc, inventorySvc, dispatcher, cfg.FreightPrice)
	discountSvc := service.NewDiscountService(discountRepo, orderRepo, promotionRepo)
	paymentSvc := service.NewPaymentService(paymentRepo, transferRepo, orderRepo, userRepo)
	payrollSvc := service.NewPayrollService(payrollRepo, orderRepo, paymentRepo, transferRepo,
		userRepo, resolver, pdfGen, dispatcher)
	goalSvc := service.NewSaleGoalService(payrollRepo, orderRepo, userRepo)
	clientSvc := service.NewClientService(clientRepo, userRepo, orderRepo, paymentRepo)
	customerSvc := service.NewCustomerOrderService(clientRepo, orderRepo, orderSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc, pdfGen)
	promotionsH := handler.NewPromotionsHandler(promotionSvc)
	ordersH := handler.NewOrdersHandler(orderSvc)
	discountsH := handler.NewDiscountsHandler(discountSvc)
	paymentsH := handler.NewPaymentsHandler(paymentSvc)
	payrollH := handler.NewPayrollHandler(payrollSvc, goalSvc)
	clientsH := handler.NewClientsHandler(clientSvc)
	portalH := handler.NewClientPortalHandler(customerSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole(model.RoleVendedor, model.RoleAdmin, model.RoleOwner)
	adminUp := middleware.RequireRole(model.RoleAdmin, model.RoleOwner)
	ownerOnly := middleware.RequireRole(model.RoleOwner)

	v1 := r.Group("/v1", jwtMW)
	{
		// Usuarios — administracion
		usuarios := v1.Group("/usuarios", adminUp)
		{
			usuarios.POST("", usersH.Create)
			usuarios.GET("/vendedores", usersH.ListVendors)
			usuarios.DELETE("/:id", usersH.Deactivate)
		}

		// Catalogo
		v1.GET("/productos", anyRole, productsH.List)
		v1.GET("/productos/:id", anyRole, productsH.Get)
		v1.PATCH("/productos/:id/stock", adminUp, productsH.AdjustStock)
		v1.POST("/productos/:id/restock", adminUp, productsH.Restock)
		prods := v1.Group("/productos", adminUp)
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Deactivate)
		}
		v1.GET("/etiquetas", anyRole, productsH.ListTags)
		v1.POST("/etiquetas", adminUp, productsH.CreateTag)
		v1.GET("/productos-especiales", anyRole, productsH.ListSpecial)
		v1.GET("/productos-especiales/:id", anyRole, productsH.GetSpecial)
		v1.POST("/productos-especiales", adminUp, productsH.CreateSpecial)
		v1.PUT("/productos-especiales/:id", adminUp, productsH.UpdateSpecial)
		v1.DELETE("/productos-especiales/:id", adminUp, productsH.DeactivateSpecial)

		// Inventario
		inv := v1.Group("/inventario", adminUp)
		{
			inv.GET("/movimientos", inventoryH.ListMovements)
			inv.GET("/movimientos/pdf", inventoryH.ExportMovementsPDF)
			inv.GET("/productos/:id/resumen", inventoryH.StockSummary)
			inv.GET("/alertas", inventoryH.LowStock)
		}

		// Promociones
		v1.GET("/promociones", anyRole, promotionsH.List)
		v1.GET("/promociones/:id", anyRole, promotionsH.Get)
		v1.POST("/promociones", adminUp, promotionsH.Create)
		v1.DELETE("/promociones/:id", adminUp, promotionsH.Deactivate)
		v1.GET("/promociones-especiales", anyRole, promotionsH.ListSpecial)
		v1.POST("/promociones-especiales", adminUp, promotionsH.CreateSpecial)

		// Ordenes
		v1.POST("/ordenes", anyRole, ordersH.Create)
		v1.GET("/ordenes", anyRole, ordersH.List)
		v1.GET("/ordenes/:id", anyRole, ordersH.Get)
		v1.PATCH("/ordenes/:id/estado", anyRole, ordersH.ChangeStatus)
		v1.POST("/ordenes/:id/cancelar", anyRole, ordersH.Cancel)
		v1.POST("/ordenes/:id/anular", adminUp, ordersH.Annul)
		v1.POST("/ordenes/:id/surtido", anyRole, ordersH.CompleteAssortment)
		v1.PATCH("/ordenes/:id/items/:itemId/eta", anyRole, ordersH.UpdateItemETA)
		v1.DELETE("/ordenes/:id/items/:itemId", adminUp, ordersH.RemoveItem)

		// Facturas historicas — solo el duenio
		v1.POST("/ordenes/historicas", ownerOnly, ordersH.CreateHistorical)
		v1.PUT("/ordenes/historicas/:id", ownerOnly, ordersH.EditHistorical)

		// Descuentos
		v1.GET("/ordenes/:id/descuentos", anyRole, discountsH.ListByOrder)
		v1.POST("/ordenes/:id/descuentos", adminUp, discountsH.Apply)
		v1.DELETE("/ordenes/:id/descuentos/:discountId", adminUp, discountsH.Revoke)

		// Pagos
		v1.GET("/ordenes/:id/pagos", anyRole, paymentsH.ListByOrder)
		v1.GET("/ordenes/:id/saldo", anyRole, paymentsH.Balance)
		v1.POST("/ordenes/:id/pagos", adminUp, paymentsH.Register)
		v1.POST("/pagos/:paymentId/cancelar", adminUp, paymentsH.Cancel)
		v1.POST("/pagos/:paymentId/restaurar", adminUp, paymentsH.Restore)
		v1.GET("/pagos/:paymentId/transferencias", adminUp, paymentsH.ListTransfers)
		v1.GET("/pagos/:paymentId/disponible", adminUp, paymentsH.TransferAvailability)
		v1.POST("/pagos/:paymentId/transferencias", adminUp, paymentsH.CreateTransfer)
		v1.POST("/transferencias/:transferId/revocar", adminUp, paymentsH.RevokeTransfer)

		// Nomina y metas
		nomina := v1.Group("/nomina", adminUp)
		{
			nomina.PUT("/:vendorId/config", payrollH.SaveConfig)
			nomina.GET("/:vendorId/config", payrollH.GetConfig)
			nomina.POST("/:vendorId/calcular", payrollH.Calculate)
			nomina.POST("/calcular-todas", payrollH.CalculateAll)
			nomina.GET("/:vendorId", payrollH.Get)
			nomina.GET("/:vendorId/pdf", payrollH.ExportPDF)
			nomina.GET("", payrollH.ListMonth)
		}
		v1.GET("/metas", anyRole, payrollH.ListGoals)
		v1.GET("/metas/:vendorId", anyRole, payrollH.GetGoal)
		v1.POST("/metas", adminUp, payrollH.CreateGoal)

		// Clientes
		v1.GET("/clientes", anyRole, clientsH.List)
		v1.GET("/clientes/:id", anyRole, clientsH.Get)
		v1.POST("/clientes", anyRole, clientsH.Create)
		v1.PUT("/clientes/:id", adminUp, clientsH.Update)
		v1.DELETE("/clientes/:id", adminUp, clientsH.Deactivate)

		// Saldos de clientes — el saldo inicial y el tope son del duenio
		v1.GET("/saldos", anyRole, clientsH.ListBalances)
		v1.GET("/clientes/:id/saldo", anyRole, clientsH.Balance)
		v1.PUT("/clientes/:id/saldo-inicial", ownerOnly, clientsH.SetInitialBalance)
		v1.PUT("/clientes/:id/tope-credito", ownerOnly, clientsH.SetCreditLimit)
		v1.DELETE("/clientes/:id/tope-credito", ownerOnly, clientsH.RemoveCreditLimit)

		// Portal de clientes — el token CLIENTE solo ve su propio registro
		portal := v1.Group("/cliente", middleware.RequireRole(model.RoleCliente))
		{
			portal.GET("/me", portalH.Me)
			portal.PATCH("/me", portalH.UpdateMe)
			portal.POST("/ordenes", portalH.CreateOrder)
			portal.GET("/ordenes", portalH.MyOrders)
			portal.GET("/ordenes/:id", portalH.MyOrderDetail)
			portal.POST("/ordenes/:id/cancelar", portalH.CancelOrder)
			portal.POST("/ordenes/:id/reordenar", portalH.Reorder)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
