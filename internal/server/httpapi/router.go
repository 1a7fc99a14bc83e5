package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/magiclink/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// NewRouter wires the handler into a chi router:
//
//	GET /healthz
//	GET /{endpoint}/{publicKey}
//
// Everything else, and every rejected redemption, gets http.NotFound.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.logger))
	r.Use(noStore)

	r.NotFound(http.NotFound)

	r.Get("/healthz", h.Healthz)

	redeem := r.With()
	if h.opts.RedeemRateLimit > 0 {
		redeem = r.With(httprate.LimitByIP(h.opts.RedeemRateLimit, time.Minute))
	}
	redeem.Get("/{endpoint}/{publicKey}", h.Redeem)

	return r
}

// noStore keeps magic URLs out of caches and Referer headers.
func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request. It logs the matched route
// pattern, never the raw path, which carries the endpoint secret.
func requestLogger(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			logger.Info(r.Context(), "http request",
				"method", r.Method,
				"route", route,
				"status", ww.Status(),
				"duration", time.Since(start).String(),
				"remote", r.RemoteAddr,
			)
		})
	}
}
