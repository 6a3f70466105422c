package routes

import (
	"hampr/admin"
	"hampr/auth"
	"hampr/cart"
	"hampr/catalog"
	"hampr/giftbuilder"
	"hampr/invoice"
	"hampr/middleware"
	"hampr/orders"
	"hampr/profile"
	"hampr/ratelim"
	"hampr/ratingprompt"
	"hampr/ratings"
	"hampr/realtime"
	"hampr/wishlist"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/productpic/*filepath", http.Dir("static/productpic"))
}

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(auth.Register))
	router.POST("/api/auth/login", rl.Limit(auth.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.Logout))
	router.POST("/api/auth/token/refresh", rl.Limit(auth.RefreshToken))
}

func AddProfileRoutes(router *httprouter.Router) {
	router.GET("/api/profile", middleware.Authenticate(profile.GetProfile))
	router.PUT("/api/profile", middleware.Authenticate(profile.UpdateProfile))
}

func AddCatalogRoutes(router *httprouter.Router, h *catalog.Handlers) {
	router.GET("/api/products", h.GetProducts)
	router.GET("/api/products/:productid", h.GetProduct)
	router.GET("/api/giftboxes", h.GetGiftBoxes)
	router.POST("/api/quickview", middleware.Authenticate(h.OpenQuickView))
	router.GET("/api/quickview", middleware.Authenticate(h.GetQuickView))
	router.DELETE("/api/quickview", middleware.Authenticate(h.CloseQuickView))
}

func AddCartRoutes(router *httprouter.Router, h *cart.Handlers) {
	router.GET("/api/cart", middleware.Authenticate(h.GetCart))
	router.POST("/api/cart", middleware.Authenticate(h.AddToCart))
	router.PUT("/api/cart/:itemid", middleware.Authenticate(h.UpdateQuantity))
	router.DELETE("/api/cart/:itemid", middleware.Authenticate(h.RemoveFromCart))
	router.POST("/api/cart/clear", middleware.Authenticate(h.ClearCart))
	router.POST("/api/cart/toggle", middleware.Authenticate(h.TogglePanel))
}

func AddWishlistRoutes(router *httprouter.Router, h *wishlist.Handlers) {
	router.GET("/api/wishlist", middleware.Authenticate(h.GetWishlist))
	router.POST("/api/wishlist", middleware.Authenticate(h.AddItem))
	router.DELETE("/api/wishlist/:productid", middleware.Authenticate(h.RemoveItem))
}

func AddGiftBuilderRoutes(router *httprouter.Router, h *giftbuilder.Handlers) {
	router.GET("/api/giftbuilder/state", middleware.Authenticate(h.State))
	router.POST("/api/giftbuilder/start", middleware.Authenticate(h.Start))
	router.POST("/api/giftbuilder/box", middleware.Authenticate(h.ChooseBox))
	router.POST("/api/giftbuilder/item", middleware.Authenticate(h.SetItem))
	router.POST("/api/giftbuilder/next", middleware.Authenticate(h.Next))
	router.POST("/api/giftbuilder/back", middleware.Authenticate(h.Back))
	router.POST("/api/giftbuilder/details", middleware.Authenticate(h.SetDetails))
	router.POST("/api/giftbuilder/confirm", middleware.Authenticate(h.Confirm))
}

func AddOrderRoutes(router *httprouter.Router, h *orders.Handlers, inv *invoice.Handlers, rl *ratelim.RateLimiter) {
	router.POST("/api/orders/checkout", rl.Limit(middleware.Authenticate(h.Checkout)))
	router.GET("/api/orders", middleware.Authenticate(h.GetOrders))
	router.GET("/api/orders/:orderid", middleware.Authenticate(h.GetOrder))
	router.GET("/api/orders/:orderid/invoice", middleware.Authenticate(inv.PrintInvoice))
}

func AddRatingRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/ratings/:productid", middleware.OptionalAuth(ratings.GetRatings))
	router.GET("/api/ratings/:productid/mine", middleware.Authenticate(ratings.GetMyRating))
	router.POST("/api/ratings", rl.Limit(middleware.Authenticate(ratings.SubmitRating)))
}

func AddRatingPromptRoutes(router *httprouter.Router, h *ratingprompt.Handlers) {
	router.GET("/api/rating-prompts", middleware.Authenticate(h.GetState))
	router.POST("/api/rating-prompts/close", middleware.Authenticate(h.ClosePrompt))
}

func AddRealtimeRoutes(router *httprouter.Router, hub *realtime.Hub) {
	router.GET("/ws/updates", middleware.Authenticate(realtime.WebSocketHandler(hub)))
}

func AddAdminRoutes(router *httprouter.Router, h *admin.Handlers) {
	router.POST("/api/admin/products", middleware.RequireAdmin(h.CreateProduct))
	router.PUT("/api/admin/products/:productid", middleware.RequireAdmin(h.UpdateProduct))
	router.DELETE("/api/admin/products/:productid", middleware.RequireAdmin(h.DeleteProduct))
	router.POST("/api/admin/products/:productid/image", middleware.RequireAdmin(h.UploadProductImage))
	router.GET("/api/admin/orders", middleware.RequireAdmin(h.ListOrders))
	router.PUT("/api/admin/orders/:orderid/status", middleware.RequireAdmin(h.UpdateOrderStatus))
	router.GET("/api/admin/ratings", middleware.RequireAdmin(h.ListRatings))
	router.DELETE("/api/admin/ratings/:ratingid", middleware.RequireAdmin(h.DeleteRating))
}
