// Package http exposes the account and chat-profile services over a gin
// router.
package http

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/gin-gonic/gin"
)

// TokenVerifier resolves a bearer token to the account id it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterOptions tunes the router. A non-empty UploadsDir is served as static
// files under /uploads.
type RouterOptions struct {
	MaxUploadBytes int64
	UploadsDir     string
}

// NewRouter wires routes and middleware.
func NewRouter(h *Handler, tokens TokenVerifier, log logging.Logger, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(CORS())

	if opts.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = opts.MaxUploadBytes
		r.Use(BodyLimit(opts.MaxUploadBytes))
	}

	bearer := Bearer(tokens)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", h.Signup)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/profile", bearer, h.Profile)
		authGroup.POST("/upload-photo", bearer, h.UploadPhoto)
		authGroup.POST("/update-profile-photo", bearer, h.UploadPhoto)
		authGroup.POST("/save-user-data", h.SaveUserData)
	}

	r.GET("/healthz", h.Health)

	if opts.UploadsDir != "" {
		r.Static("/uploads", opts.UploadsDir)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return r
}
