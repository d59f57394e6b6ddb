package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sidhant-sriv/db-auth/models"
	"github.com/sidhant-sriv/db-auth/validate"
)

// ObjetRoutes sets up the catalog routes.
func (h *Handler) ObjetRoutes(router *gin.Engine) {
	router.POST("/objet", h.CreateObjet())
	router.GET("/objets", h.ListObjets())
	router.DELETE("/delete_objet", h.DeleteObjet())
}

// CreateObjet adds a catalog entry.
func (h *Handler) CreateObjet() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := readFields(c)
		if err != nil {
			c.String(http.StatusBadRequest, "Invalid request body")
			return
		}

		objet := f.get("objet", "name", "nom")
		prix := f.get("price", "prix")
		if objet == "" || prix == "" {
			c.String(http.StatusBadRequest, "Missing objet or prix")
			return
		}
		if !validate.IsNumeric(prix) {
			c.String(http.StatusBadRequest, "Prix must be a number")
			return
		}
		if !validate.LettersOnly(objet) {
			c.String(http.StatusBadRequest, "Objet contains invalid characters")
			return
		}
		if !validate.PriceFormat(prix) {
			c.String(http.StatusBadRequest, "Prix format is invalid")
			return
		}

		if err := h.store.CreateObjet(c.Request.Context(), &models.Objet{Objet: objet, Prix: prix}); err != nil {
			h.log.ErrorContext(c.Request.Context(), "objet: insert failed", "err", err)
			c.String(http.StatusInternalServerError, serverError)
			return
		}

		c.String(http.StatusOK, "Objet ajouté avec succès")
	}
}

// ListObjets returns the whole catalog.
func (h *Handler) ListObjets() gin.HandlerFunc {
	return func(c *gin.Context) {
		objets, err := h.store.ListObjets(c.Request.Context())
		if err != nil {
			h.log.ErrorContext(c.Request.Context(), "objets: select failed", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": serverError})
			return
		}
		c.JSON(http.StatusOK, objets)
	}
}

// DeleteObjet removes every entry with exactly this name and price.
func (h *Handler) DeleteObjet() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := readFields(c)
		if err != nil {
			c.String(http.StatusBadRequest, "Invalid request body")
			return
		}

		objet := f.get("objet")
		if objet == "" || !f.has("prix") {
			c.String(http.StatusBadRequest, "Missing objet or prix")
			return
		}
		prix := f["prix"]

		ctx := c.Request.Context()
		if !validate.IsDecimal(prix) {
			// a numeric column cannot hold it, so nothing matches
			h.log.DebugContext(ctx, "objet delete skipped, prix is not a decimal", "objet", objet, "prix", prix)
			c.Status(http.StatusNoContent)
			return
		}
		h.log.InfoContext(ctx, "deleting objet", "objet", objet, "prix", prix)
		n, err := h.store.DeleteObjets(ctx, objet, prix)
		if err != nil {
			h.log.ErrorContext(ctx, "objet: delete failed", "err", err)
			c.String(http.StatusInternalServerError, serverError)
			return
		}
		h.log.DebugContext(ctx, "objet deleted", "rows", n)

		c.Status(http.StatusNoContent)
	}
}
