package routes

import (
	"net/http"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// PageRoutes serves the HTML pages, the uploads directory and, for any
// other GET, files from the public directory.
func (h *Handler) PageRoutes(router *gin.Engine) {
	router.GET("/", h.page("index.html"))
	router.GET("/register", h.page("register.html"))
	// the login form lives on the index page
	router.GET("/login", h.page("index.html"))
	router.GET("/profil", h.requireLogin(), h.page("profil.html"))

	router.Static("/uploads", h.uploads.Dir())
	router.NoRoute(h.publicFiles())
}

func (h *Handler) page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.File(filepath.Join(h.pages, name))
	}
}

func (h *Handler) publicFiles() gin.HandlerFunc {
	fs := gin.Dir(h.pages, false)
	files := http.FileServer(fs)
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.String(http.StatusNotFound, "Not Found")
			return
		}
		f, err := fs.Open(path.Clean("/" + c.Request.URL.Path))
		if err != nil {
			c.String(http.StatusNotFound, "Not Found")
			return
		}
		_ = f.Close()
		files.ServeHTTP(c.Writer, c.Request)
	}
}
