package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skillwave/skillwave-backend/api/controllers"
	"github.com/skillwave/skillwave-backend/api/middleware"
	"github.com/skillwave/skillwave-backend/internal/auth"
	"github.com/skillwave/skillwave-backend/internal/cart"
	"github.com/skillwave/skillwave-backend/internal/courses"
	"github.com/skillwave/skillwave-backend/pkg/auth/session"
	"github.com/skillwave/skillwave-backend/pkg/config"
	"github.com/skillwave/skillwave-backend/pkg/logger"
	"github.com/skillwave/skillwave-backend/pkg/redis"
)

// NewRouter wires every HTTP surface: health probes, the public catalog,
// the guest-capable cart, and the authenticated checkout path.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	deps map[string]controllers.Pinger,
	redisClient *redis.Client,
	sessionManager session.AccessSessionChecker,
	authService auth.Service,
	registerService auth.RegisterService,
	cartService cart.Service,
	courseRepo courses.CourseRepository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	// A nil *redis.Client must stay nil once it becomes an interface, or
	// the middleware nil checks stop working.
	var idemStore redis.IdempotencyStore
	var rlStore middleware.RateLimiterStore
	if redisClient != nil {
		idemStore = redisClient
		rlStore = redisClient
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(middleware.GuestSession(logg))
		r.With(middleware.AuthRateLimit(loginPolicy, rlStore, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, rlStore, logg),
			middleware.Idempotency(idemStore, logg),
		).Post("/register", controllers.AuthRegister(registerService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api/v1/courses", func(r chi.Router) {
		r.Get("/", controllers.CoursesList(courseRepo, logg))
		r.Get("/{courseID}", controllers.CourseGet(courseRepo, logg))
	})

	r.Get("/api/v1/coupons", controllers.CouponsAvailable(cartService, logg))

	// The cart is reachable by guests and users alike. OptionalAuth
	// resolves a bearer token when present; the guest session middleware
	// guarantees every request still has an owner.
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.GuestSession(logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/", controllers.CartGet(cartService, logg))
		r.Delete("/", controllers.CartClear(cartService, logg))
		r.Post("/items", controllers.CartAddItem(cartService, logg))
		r.Delete("/items/{itemID}", controllers.CartRemoveItem(cartService, logg))
		r.Post("/coupon", controllers.CartApplyCoupon(cartService, logg))
		r.Delete("/coupon", controllers.CartRemoveCoupon(cartService, logg))

		// Merge and checkout need a real user behind the token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
			r.Post("/merge", controllers.CartMerge(cartService, logg))
			r.Post("/checkout", controllers.CartCheckout(cartService, logg))
		})
	})

	return r
}
