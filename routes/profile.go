package routes

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sidhant-sriv/db-auth/middleware"
	"github.com/sidhant-sriv/db-auth/upload"
	"github.com/sidhant-sriv/db-auth/validate"
)

// ProfileRoutes sets up the routes that act on the logged-in client.
func (h *Handler) ProfileRoutes(router *gin.Engine) {
	profile := router.Group("/")
	profile.Use(h.requireLogin())
	{
		profile.GET("/get-profile", h.GetProfile())
		profile.POST("/update", h.UpdateProfile())
		profile.POST("/upload-profile-image", h.UploadProfileImage())
	}
}

// GetProfile returns the session's user snapshot.
func (h *Handler) GetProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.CurrentSession(c)
		c.JSON(http.StatusOK, sess.User)
	}
}

// UpdateProfile renames the logged-in client.
func (h *Handler) UpdateProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.CurrentSession(c)

		f, err := readFields(c)
		if err != nil {
			c.String(http.StatusBadRequest, "Invalid request body")
			return
		}
		nom, prenom := f.get("nom"), f.get("prenom")
		if nom == "" || prenom == "" {
			c.String(http.StatusBadRequest, "Missing required fields")
			return
		}
		if !validate.LettersOnly(nom) || !validate.LettersOnly(prenom) {
			c.String(http.StatusBadRequest, "Name contains invalid characters")
			return
		}

		ctx := c.Request.Context()
		if err := h.store.UpdateClientNames(ctx, sess.User.Email, nom, prenom); err != nil {
			h.log.ErrorContext(ctx, "update: store failed", "err", err)
			c.String(http.StatusInternalServerError, serverError)
			return
		}

		sess.User.Nom, sess.User.Prenom = nom, prenom
		if err := h.sessions.Save(ctx, sess); err != nil {
			h.log.ErrorContext(ctx, "update: session save failed", "err", err)
			c.String(http.StatusInternalServerError, serverError)
			return
		}

		c.Redirect(http.StatusFound, "/profil")
	}
}

// UploadProfileImage replaces the client's profile image. The previous
// file is removed only once the new reference is stored.
func (h *Handler) UploadProfileImage() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.CurrentSession(c)
		ctx := c.Request.Context()

		fh, err := h.uploads.FormFile(c)
		switch {
		case errors.Is(err, upload.ErrNoFile):
			c.String(http.StatusBadRequest, "No file uploaded")
			return
		case errors.Is(err, upload.ErrInvalidType):
			c.String(http.StatusBadRequest, "Only image files are allowed (jpeg, jpg, png, gif)")
			return
		case errors.Is(err, upload.ErrTooLarge):
			c.String(http.StatusBadRequest, fmt.Sprintf("File too large (max %d bytes)", h.uploads.MaxBytes()))
			return
		case err != nil:
			h.log.ErrorContext(ctx, "upload: read failed", "err", err)
			c.String(http.StatusInternalServerError, serverError)
			return
		}

		ref, err := h.uploads.Save(fh)
		if err != nil {
			h.log.ErrorContext(ctx, "upload: write failed", "err", err)
			c.String(http.StatusInternalServerError, serverError)
			return
		}

		if err := h.store.UpdateClientImage(ctx, sess.User.Email, ref); err != nil {
			h.log.ErrorContext(ctx, "upload: store failed", "err", err)
			if rmErr := h.uploads.Remove(ref); rmErr != nil {
				h.log.WarnContext(ctx, "upload: orphan file left", "file", ref, "err", rmErr)
			}
			c.String(http.StatusInternalServerError, serverError)
			return
		}

		if old := sess.ImagePath(); old != "" && old != ref {
			if err := h.uploads.Remove(old); err != nil {
				h.log.WarnContext(ctx, "upload: could not delete previous image", "file", old, "err", err)
			}
		}

		sess.User.ProfileImage = &ref
		if err := h.sessions.Save(ctx, sess); err != nil {
			h.log.ErrorContext(ctx, "upload: session save failed", "err", err)
			c.String(http.StatusInternalServerError, serverError)
			return
		}

		c.Redirect(http.StatusFound, "/profil")
	}
}
