package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sidhant-sriv/db-auth/db/dbtest"
	"github.com/sidhant-sriv/db-auth/logging"
	"github.com/sidhant-sriv/db-auth/middleware"
	"github.com/sidhant-sriv/db-auth/routes"
	"github.com/sidhant-sriv/db-auth/session"
	"github.com/sidhant-sriv/db-auth/upload"
	"github.com/stretchr/testify/assert"
)

func TestSetupRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := dbtest.NewStore(t)
	reg := prometheus.NewRegistry()

	h := routes.New(routes.Deps{
		Store:     store,
		Sessions:  session.NewManager(store, session.Options{Secret: "s"}),
		Uploads:   upload.New(t.TempDir(), upload.DefaultMaxBytes),
		PublicDir: t.TempDir(),
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Log:       logging.Discard(),
	})
	router := setupRouter(h, middleware.NewMetrics(reg), logging.Discard())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "dbauth_http_requests_total")

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/get-profile", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
