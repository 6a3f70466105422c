package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"hampr/admin"
	"hampr/auth"
	"hampr/cart"
	"hampr/catalog"
	"hampr/giftbuilder"
	"hampr/invoice"
	"hampr/models"
	"hampr/orders"
	"hampr/outbox"
	"hampr/ratelim"
	"hampr/ratingprompt"
	"hampr/realtime"
	"hampr/routes"
	"hampr/wishlist"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		duration := time.Since(start)
		log.Printf("%s %s from %s – %v", r.Method, r.RequestURI, r.RemoteAddr, duration)
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func promptOptions() ratingprompt.Options {
	opts := ratingprompt.Options{Authenticated: auth.IsAuthenticated}

	if v, err := strconv.Atoi(os.Getenv("PROMPT_DEBOUNCE_MS")); err == nil && v > 0 {
		opts.Debounce = time.Duration(v) * time.Millisecond
	}
	if v, err := strconv.Atoi(os.Getenv("PROMPT_MAX_IDS")); err == nil && v > 0 {
		opts.MaxResolvedIDs = v
	}
	if v := os.Getenv("PROMPT_TRIGGER_STATUS"); v != "" {
		opts.TriggerStatuses = map[models.OrderStatus]bool{models.OrderStatus(v): true}
	}
	return opts
}

func main() {
	// load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	} else if port[0] != ':' {
		port = ":" + port
	}

	rateLimiter := ratelim.NewRateLimiter()

	hub := realtime.NewHub()
	go hub.Run()

	// stores
	catalogStore := catalog.NewStore()
	cartStore := cart.NewStore()
	wishlistStore := wishlist.NewStore()
	orderStore := orders.NewStore(func(ev models.OrderEvent) {
		orders.PublishEvent(ev)
		hub.Push(ev.New.UserID, realtime.Event{
			Type:    "order-status",
			OrderID: ev.New.OrderID,
			Status:  string(ev.New.Status),
		})
	})
	builderFlow := giftbuilder.NewFlow()

	// rating prompt pipeline, fed by the local checkout event and the
	// order change feed
	pipeline := ratingprompt.New(hub, ratingprompt.NewMongoResolver(), promptOptions())
	feedCtx, cancelFeed := context.WithCancel(context.Background())
	go pipeline.Subscribe(feedCtx)

	go outbox.StartMirrorWorker()

	// handlers
	catalogH := catalog.NewHandlers(catalogStore)
	cartH := cart.NewHandlers(cartStore)
	wishlistH := wishlist.NewHandlers(wishlistStore)
	builderH := giftbuilder.NewHandlers(builderFlow, cartStore)
	orderH := orders.NewHandlers(orderStore, cartStore)
	orderH.OnConfirmed = pipeline.OrderConfirmed
	invoiceH := invoice.NewHandlers(orderStore)
	adminH := admin.NewHandlers(orderH)
	promptH := ratingprompt.NewHandlers(pipeline)

	router := httprouter.New()
	router.GET("/health", Index)

	routes.AddAuthRoutes(router, rateLimiter)
	routes.AddProfileRoutes(router)
	routes.AddCatalogRoutes(router, catalogH)
	routes.AddCartRoutes(router, cartH)
	routes.AddWishlistRoutes(router, wishlistH)
	routes.AddGiftBuilderRoutes(router, builderH)
	routes.AddOrderRoutes(router, orderH, invoiceH, rateLimiter)
	routes.AddRatingRoutes(router, rateLimiter)
	routes.AddRatingPromptRoutes(router, promptH)
	routes.AddRealtimeRoutes(router, hub)
	routes.AddAdminRoutes(router, adminH)
	routes.AddStaticRoutes(router)

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		log.Println("Shutting down realtime hub...")
		cancelFeed()
		hub.Stop()
	})

	go func() {
		log.Printf("Server listening on %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutdown signal received; shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Graceful shutdown failed: %v", err)
	}

	log.Println("Server stopped cleanly")
}
