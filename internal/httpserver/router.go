package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/pharmacy/pkg/middleware/auth"
)

type Deps struct {
	Auth          *AuthHTTP
	Users         *UserHTTP
	Brands        *BrandHTTP
	Categories    *CategoryHTTP
	Products      *ProductHTTP
	Cart          *CartHTTP
	Wishlist      *WishlistHTTP
	Orders        *OrderHTTP
	Prescriptions *PrescriptionHTTP
	Media         *MediaHTTP

	JWTSecret []byte
	// AuthLimiter guards the /auth group; nil disables it.
	AuthLimiter echo.MiddlewareFunc
	// Ready reports whether dependencies (the database) are reachable.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
		}
		return c.NoContent(http.StatusOK)
	})

	jwtAuth := middleware.NewJWTAuth(d.JWTSecret)
	requireAuth := jwtAuth.RequireAuth()

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	if d.AuthLimiter != nil {
		auth.Use(d.AuthLimiter)
	}
	auth.POST("/register", d.Auth.Register)
	auth.POST("/verify", d.Auth.Verify)
	auth.POST("/otp", d.Auth.RequestCode)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)
	auth.POST("/password/forgot", d.Auth.ForgotPassword)
	auth.POST("/password/reset", d.Auth.ResetPassword)

	me := api.Group("/users/me", requireAuth)
	me.GET("", d.Users.Me)
	me.PATCH("", d.Users.UpdateMe)
	me.POST("/password", d.Users.ChangePassword)

	adminOnly := []echo.MiddlewareFunc{requireAuth, middleware.RequireAdmin}

	// :id accepts a uuid or a slug on public reads and a uuid on admin writes.
	api.GET("/brands", d.Brands.List)
	api.GET("/brands/:id", d.Brands.Get)
	api.POST("/brands", d.Brands.Create, adminOnly...)
	api.PATCH("/brands/:id", d.Brands.Patch, adminOnly...)
	api.DELETE("/brands/:id", d.Brands.Delete, adminOnly...)

	api.GET("/categories", d.Categories.List)
	api.GET("/categories/tree", d.Categories.Tree)
	api.GET("/categories/:id", d.Categories.Get)
	api.POST("/categories", d.Categories.Create, adminOnly...)
	api.PATCH("/categories/:id", d.Categories.Patch, adminOnly...)
	api.DELETE("/categories/:id", d.Categories.Delete, adminOnly...)

	api.GET("/products", d.Products.List)
	api.GET("/products/search", d.Products.Search)
	api.GET("/products/:id", d.Products.Get)
	api.POST("/products", d.Products.Create, adminOnly...)
	api.PATCH("/products/:id", d.Products.Patch, adminOnly...)
	api.DELETE("/products/:id", d.Products.Delete, adminOnly...)
	api.PATCH("/products/:id/stock", d.Products.AdjustStock, adminOnly...)

	cart := api.Group("/cart", requireAuth)
	cart.GET("", d.Cart.Get)
	cart.POST("", d.Cart.Add)
	cart.DELETE("", d.Cart.Clear)
	cart.PATCH("/:productId", d.Cart.Update)
	cart.DELETE("/:productId", d.Cart.Remove)

	wishlist := api.Group("/wishlist", requireAuth)
	wishlist.GET("", d.Wishlist.List)
	wishlist.POST("", d.Wishlist.Add)
	wishlist.DELETE("/:productId", d.Wishlist.Remove)

	orders := api.Group("/orders", requireAuth)
	orders.POST("/checkout", d.Orders.Checkout)
	orders.GET("", d.Orders.List)
	orders.GET("/:id", d.Orders.Get)
	orders.POST("/:id/cancel", d.Orders.Cancel)

	rx := api.Group("/prescriptions", requireAuth)
	rx.POST("", d.Prescriptions.Upload)
	rx.GET("", d.Prescriptions.List)
	rx.GET("/:id", d.Prescriptions.Get)
	rx.DELETE("/:id", d.Prescriptions.Delete)

	admin := api.Group("/admin", adminOnly...)
	admin.GET("/users", d.Users.List)
	admin.PATCH("/users/:id/role", d.Users.SetRole)
	admin.GET("/orders", d.Orders.ListAll)
	admin.PATCH("/orders/:id/status", d.Orders.UpdateStatus)
	admin.PATCH("/orders/:id/payment", d.Orders.UpdatePayment)
	admin.GET("/prescriptions", d.Prescriptions.ListAll)
	admin.PATCH("/prescriptions/:id/review", d.Prescriptions.Review)
	admin.POST("/uploads", d.Media.Upload)
	admin.DELETE("/uploads", d.Media.Delete)
}
