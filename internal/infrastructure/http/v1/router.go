package v1

import (
	"github.com/gin-gonic/gin"

	"inventario/internal/domain/documents"
	"inventario/internal/domain/documents/dispatch"
	"inventario/internal/domain/documents/order"
	"inventario/internal/domain/documents/quotation"
	"inventario/internal/domain/documents/reception"
	"inventario/internal/domain/documents/returns"
	"inventario/internal/infrastructure/http/v1/dto"
	"inventario/internal/infrastructure/http/v1/handlers"
	"inventario/internal/infrastructure/http/v1/middleware"
	"inventario/pkg/logger"
)

// Services are the domain services behind the API.
type Services struct {
	Products      handlers.ProductService
	Stock         handlers.StockService
	Replenishment handlers.Replenisher

	Orders     handlers.DocumentService[*order.Order]
	Quotations handlers.DocumentService[*quotation.Quotation]
	Dispatches handlers.DocumentService[*dispatch.DispatchNote]
	Receptions handlers.DocumentService[*reception.ReceptionNote]
	Returns    handlers.DocumentService[*returns.ReturnNote]
	Converter  handlers.QuotationConverter

	Dashboard handlers.SummaryProvider

	// History is optional; without it document history is empty.
	History handlers.HistoryReader

	// HealthChecks are pinged by /health/ready.
	HealthChecks map[string]handlers.Pinger
}

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Mode is the gin mode (debug, release, test)
	Mode string

	// Logger for request logging
	Logger *logger.Logger

	// TokenValidator enables bearer authentication; nil trusts X-User-ID
	TokenValidator middleware.TokenValidator

	Services Services
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Services.HealthChecks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	api := router.Group("/api/v1")
	api.Use(middleware.Identity(cfg.TokenValidator))

	base := handlers.NewBaseHandler()
	registerProductRoutes(api, base, cfg.Services)
	registerDocumentRoutes(api, base, cfg.Services)

	dashboardHandler := handlers.NewDashboardHandler(base, cfg.Services.Dashboard)
	api.GET("/dashboard", dashboardHandler.Summary)

	return router
}

func registerProductRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, s Services) {
	h := handlers.NewProductHandler(base, s.Products, s.Stock, s.Replenishment)

	products := rg.Group("/products")
	products.GET("", h.List)
	products.POST("", h.Create)
	products.GET("/low-stock", h.LowStock)
	products.GET("/:id", h.Get)
	products.PUT("/:id", h.Update)
	products.GET("/:id/price", h.Price)
	products.GET("/:id/movements", h.Movements)
	products.POST("/:id/replenishment", h.Replenish)
}

func registerDocumentRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, s Services) {
	// --- ORDERS ---
	RegisterDocumentRoutes(rg.Group("/orders"),
		handlers.NewBaseDocumentHandler[*order.Order, dto.OrderRequest](base, handlers.BaseDocumentHandlerConfig[*order.Order]{
			Service: s.Orders,
			New:     order.New,
			Type:    documents.TypeOrder,
			History: s.History,
		}))

	// --- QUOTATIONS ---
	quotations := rg.Group("/quotations")
	RegisterDocumentRoutes(quotations,
		handlers.NewBaseDocumentHandler[*quotation.Quotation, dto.QuotationRequest](base, handlers.BaseDocumentHandlerConfig[*quotation.Quotation]{
			Service: s.Quotations,
			New:     quotation.New,
			Type:    documents.TypeQuotation,
			History: s.History,
		}))
	conversion := handlers.NewConversionHandler(base, s.Converter)
	quotations.GET("/:id/can-convert", conversion.CanConvert)
	quotations.POST("/:id/convert", conversion.Convert)

	// --- DISPATCH NOTES ---
	RegisterDocumentRoutes(rg.Group("/dispatch-notes"),
		handlers.NewBaseDocumentHandler[*dispatch.DispatchNote, dto.DispatchNoteRequest](base, handlers.BaseDocumentHandlerConfig[*dispatch.DispatchNote]{
			Service: s.Dispatches,
			New:     dispatch.New,
			Type:    documents.TypeDispatchNote,
			History: s.History,
		}))

	// --- RECEPTION NOTES ---
	RegisterDocumentRoutes(rg.Group("/reception-notes"),
		handlers.NewBaseDocumentHandler[*reception.ReceptionNote, dto.ReceptionNoteRequest](base, handlers.BaseDocumentHandlerConfig[*reception.ReceptionNote]{
			Service: s.Receptions,
			New:     reception.New,
			Type:    documents.TypeReceptionNote,
			History: s.History,
		}))

	// --- RETURN NOTES ---
	RegisterDocumentRoutes(rg.Group("/return-notes"),
		handlers.NewBaseDocumentHandler[*returns.ReturnNote, dto.ReturnNoteRequest](base, handlers.BaseDocumentHandlerConfig[*returns.ReturnNote]{
			Service: s.Returns,
			New:     returns.New,
			Type:    documents.TypeReturnNote,
			History: s.History,
		}))
}
