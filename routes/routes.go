package routes

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sidhant-sriv/db-auth/db"
	"github.com/sidhant-sriv/db-auth/middleware"
	"github.com/sidhant-sriv/db-auth/session"
	"github.com/sidhant-sriv/db-auth/upload"
)

// serverError is the only detail a client sees when the store fails.
const serverError = "Erreur serveur"

// Deps are the process-lifetime collaborators shared by every handler.
type Deps struct {
	Store     *db.Store
	Sessions  *session.Manager
	Uploads   *upload.Uploader
	PublicDir string
	Metrics   http.Handler // optional, served at /metrics
	Log       *slog.Logger
}

// Handler owns the route handlers.
type Handler struct {
	store    *db.Store
	sessions *session.Manager
	uploads  *upload.Uploader
	pages    string
	metrics  http.Handler
	log      *slog.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		store:    d.Store,
		sessions: d.Sessions,
		uploads:  d.Uploads,
		pages:    d.PublicDir,
		metrics:  d.Metrics,
		log:      d.Log,
	}
}

// Mount registers every route on router.
func (h *Handler) Mount(router *gin.Engine) {
	router.GET("/health", h.Health())
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics))
	}

	h.PageRoutes(router)
	h.AuthRoutes(router)
	h.ProfileRoutes(router)
	h.ObjetRoutes(router)
}

// requireLogin guards handlers that need a session.
func (h *Handler) requireLogin() gin.HandlerFunc {
	return middleware.RequireLogin(h.sessions, h.log)
}

// Health reports whether the database answers.
func (h *Handler) Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.store.Ping(c.Request.Context()); err != nil {
			h.log.ErrorContext(c.Request.Context(), "health: ping failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
