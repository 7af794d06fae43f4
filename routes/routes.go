package routes

import (
	"time"

	"erpbackend/controllers"
	"erpbackend/handlers"
	"erpbackend/middleware"
	"erpbackend/storage"
	"erpbackend/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Controllers bundles everything the router dispatches to.
type Controllers struct {
	Auth     *controllers.AuthController
	Admin    *controllers.AdminController
	Client   *controllers.ClientController
	Invoice  *controllers.InvoiceController
	Quote    *controllers.QuoteController
	Payment  *controllers.PaymentController
	Setting  *controllers.SettingController
	Generics map[string]*controllers.CRUD
}

// DownloadEntities are the documents served as PDFs under /download.
var DownloadEntities = []string{"invoice", "quote", "payment"}

type Deps struct {
	Controllers Controllers
	// Registry resolves /download directories; see DownloadEntities.
	Registry    *store.Registry
	Storage     storage.Storage
	Admins      store.Collection
	Passwords   store.Collection
	SecretName  string
	Limiter     middleware.Limiter
	RateLimit   int
	RateWindow  time.Duration
	MetricsFrom []string
	Log         *zap.Logger
}

// entity is the generic set of operations every routed entity answers.
type entity interface {
	Create(c *gin.Context) error
	Read(c *gin.Context) error
	Update(c *gin.Context) error
	Remove(c *gin.Context) error
	Search(c *gin.Context) error
	PaginatedList(c *gin.Context) error
	ListAll(c *gin.Context) error
	Filter(c *gin.Context) error
}

type summarizer interface {
	Summary(c *gin.Context) error
}

func entityRoutes(api *gin.RouterGroup, name string, e entity) {
	g := api.Group("/" + name)
	g.POST("/create", handlers.CatchErrors("create", e.Create))
	g.GET("/read/:id", handlers.CatchErrors("read", e.Read))
	g.PATCH("/update/:id", handlers.CatchErrors("update", e.Update))
	g.DELETE("/delete/:id", handlers.CatchErrors("delete", e.Remove))
	g.GET("/search", handlers.CatchErrors("search", e.Search))
	g.GET("/list", handlers.CatchErrors("list", e.PaginatedList))
	g.GET("/listAll", handlers.CatchErrors("listAll", e.ListAll))
	g.GET("/filter", handlers.CatchErrors("filter", e.Filter))
	if s, ok := e.(summarizer); ok {
		g.GET("/summary", handlers.CatchErrors("summary", s.Summary))
	}
}

func InitializeRoutes(router *gin.Engine, d Deps) {
	ctl := d.Controllers
	limit := middleware.RateLimit(d.Limiter, d.RateLimit, d.RateWindow, d.Log)

	router.GET("/metrics", middleware.MetricsHandler(d.MetricsFrom))
	router.GET("/download/:directory/:file", handlers.DownloadPDF(d.Registry, d.Storage))

	public := router.Group("/api")
	{
		public.POST("/login", limit, handlers.CatchErrors("login", ctl.Auth.Login))
		public.POST("/forgetpassword", limit, handlers.CatchErrors("forgetPassword", ctl.Auth.ForgetPassword))
		public.POST("/resetpassword", limit, handlers.CatchErrors("resetPassword", ctl.Auth.ResetPassword))
	}

	api := router.Group("/api")
	api.Use(middleware.IsValidAuthToken(d.Admins, d.Passwords, d.SecretName))
	{
		api.POST("/logout", handlers.CatchErrors("logout", ctl.Auth.Logout))

		admin := api.Group("/admin")
		admin.GET("/profile", handlers.CatchErrors("profile", ctl.Admin.Profile))
		admin.PATCH("/profile/update",
			middleware.SingleUpload(d.Storage, "admin", "image", "photo"),
			handlers.CatchErrors("updateProfile", ctl.Admin.UpdateProfile))
		admin.PATCH("/profile/password", handlers.CatchErrors("updateProfilePassword", ctl.Admin.UpdateProfilePassword))
		admin.PATCH("/password-update/:id", handlers.CatchErrors("updatePassword", ctl.Admin.UpdatePassword))

		setting := api.Group("/setting")
		setting.GET("/listBySettingKey", handlers.CatchErrors("listBySettingKey", ctl.Setting.ListBySettingKey))
		setting.GET("/readBySettingKey/:settingKey", handlers.CatchErrors("readBySettingKey", ctl.Setting.ReadBySettingKey))
		setting.PATCH("/updateBySettingKey/:settingKey", handlers.CatchErrors("updateBySettingKey", ctl.Setting.UpdateBySettingKey))
		setting.PATCH("/upload/:settingKey",
			middleware.SingleUpload(d.Storage, "setting", "default", "settingValue"),
			handlers.CatchErrors("uploadSetting", ctl.Setting.Upload))
		setting.PATCH("/updateManySetting", handlers.CatchErrors("updateManySetting", ctl.Setting.UpdateManySetting))

		quote := api.Group("/quote")
		quote.GET("/convert/:id", handlers.CatchErrors("convert", ctl.Quote.Convert))
		quote.POST("/mail", handlers.CatchErrors("mail", ctl.Quote.Mail))

		entityRoutes(api, "admin", ctl.Admin)
		entityRoutes(api, "client", ctl.Client)
		entityRoutes(api, "invoice", ctl.Invoice)
		entityRoutes(api, "quote", ctl.Quote)
		entityRoutes(api, "payment", ctl.Payment)
		entityRoutes(api, "setting", ctl.Setting)
		for name, crud := range ctl.Generics {
			entityRoutes(api, name, crud)
		}
	}

	router.NoRoute(handlers.NotFound)
}
