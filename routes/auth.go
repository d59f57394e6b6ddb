// routes/auth.go
package routes

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/sidhant-sriv/db-auth/db"
	"github.com/sidhant-sriv/db-auth/models"
	"github.com/sidhant-sriv/db-auth/session"
	"github.com/sidhant-sriv/db-auth/validate"
)

// AuthRoutes sets up /register, /login and /logout.
func (h *Handler) AuthRoutes(router *gin.Engine) {
	router.POST("/register", h.Register())
	router.POST("/login", h.Login())
	router.GET("/logout", h.Logout())
}

// Register creates a client account and sends the browser to the login page.
func (h *Handler) Register() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := readFields(c)
		if err != nil {
			c.String(http.StatusBadRequest, "Invalid request body")
			return
		}

		nom, prenom := f.get("nom"), f.get("prenom")
		email, password := f.get("email"), f.get("password")
		if nom == "" || prenom == "" || email == "" || password == "" {
			c.String(http.StatusBadRequest, "Missing required fields")
			return
		}
		if !validate.LettersOnly(nom) || !validate.LettersOnly(prenom) {
			c.String(http.StatusBadRequest, "Name contains invalid characters")
			return
		}

		client := models.Client{Nom: nom, Prenom: prenom, Email: email, Password: password}
		if err := h.store.CreateClient(c.Request.Context(), &client); err != nil {
			h.log.ErrorContext(c.Request.Context(), "register: insert failed", "err", err)
			c.String(http.StatusInternalServerError, serverError)
			return
		}

		c.Redirect(http.StatusFound, "/login")
	}
}

// Login checks the credentials, opens a session and serves the landing page.
func (h *Handler) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := readFields(c)
		if err != nil {
			c.String(http.StatusBadRequest, "Invalid request body")
			return
		}

		email := f.get("email", "username")
		password := f.get("password")
		if email == "" || password == "" {
			c.String(http.StatusBadRequest, "Missing email or password")
			return
		}
		if !validate.PasswordCharset(password) {
			c.String(http.StatusBadRequest, "Password contains invalid characters")
			return
		}

		ctx := c.Request.Context()
		client, err := h.store.FindClientByCredentials(ctx, email, password)
		if errors.Is(err, db.ErrNotFound) {
			c.String(http.StatusUnauthorized, "Invalid username or password")
			return
		}
		if err != nil {
			h.log.ErrorContext(ctx, "login: lookup failed", "err", err)
			c.String(http.StatusInternalServerError, serverError)
			return
		}

		if _, err := h.sessions.Create(c, session.UserFromClient(client)); err != nil {
			h.log.ErrorContext(ctx, "login: session create failed", "err", err)
			c.String(http.StatusInternalServerError, serverError)
			return
		}

		h.log.InfoContext(ctx, "login", "email", client.Email)
		c.File(filepath.Join(h.pages, "accueil.html"))
	}
}

// Logout drops the session, if there is one, and goes back to login.
func (h *Handler) Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.sessions.Destroy(c); err != nil {
			h.log.ErrorContext(c.Request.Context(), "logout: destroy failed", "err", err)
		}
		c.Redirect(http.StatusFound, "/login")
	}
}
