// Package httpapi exposes magic link redemption over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/magiclink/internal/common"
	"github.com/dmitrijs2005/magiclink/internal/logging"
	"github.com/dmitrijs2005/magiclink/internal/netx"
	"github.com/dmitrijs2005/magiclink/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// Redeemer is the part of services.MagicLinkService the handler needs.
type Redeemer interface {
	Redeem(ctx context.Context, endpoint, publicKey string) (*services.Session, error)
}

// Pinger reports backend reachability for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configure the handler.
type Options struct {
	HomeURL         string
	AfterLoginPath  string
	RedeemRateLimit int
}

// Handler serves redemption and health requests.
type Handler struct {
	links  Redeemer
	health Pinger
	opts   Options
	logger logging.Logger
}

func NewHandler(links Redeemer, health Pinger, opts Options, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Handler{links: links, health: health, opts: opts, logger: logger.With("module", "http")}
}

// Redeem handles GET /{endpoint}/{publicKey}. A rejected redemption is
// answered exactly like an unknown route.
func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	endpoint := chi.URLParam(r, "endpoint")
	publicKey := chi.URLParam(r, "publicKey")

	sess, err := h.links.Redeem(r.Context(), endpoint, publicKey)
	if err != nil {
		if errors.Is(err, common.ErrRedemptionRejected) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error(r.Context(), "redemption failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(sess.TTL.Seconds()),
		HttpOnly: true,
		Secure:   netx.IsHTTPS(h.opts.HomeURL),
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.afterLoginURL(), http.StatusFound)
}

// Healthz answers 200 when the token store is reachable and 503 otherwise.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Ping(r.Context()); err != nil {
			h.logger.Warn(r.Context(), "health check failed", "error", err)
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) afterLoginURL() string {
	path := h.opts.AfterLoginPath
	if path == "" {
		path = "/"
	}
	return strings.TrimRight(h.opts.HomeURL, "/") + path
}
