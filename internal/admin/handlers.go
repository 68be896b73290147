// Package admin contains handlers for the internal admin API. It manages
// API keys and users through the credential store so the cache never holds
// stale credential state.
package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gateline/gateline/internal/contract"
	"github.com/gateline/gateline/internal/credential"
	"github.com/gateline/gateline/internal/storage"
)

// Handlers contains handlers for internal admin API endpoints
type Handlers struct {
	creds    *credential.Store
	registry *contract.Registry
	logger   *zap.Logger
}

// NewHandlers creates a new admin Handlers instance
func NewHandlers(creds *credential.Store, registry *contract.Registry, logger *zap.Logger) *Handlers {
	return &Handlers{
		creds:    creds,
		registry: registry,
		logger:   logger,
	}
}

// Name identifies the provider in server logs.
func (h *Handlers) Name() string { return "admin" }

// RegisterAdminRoutes binds the admin API routes.
func (h *Handlers) RegisterAdminRoutes(router gin.IRouter) {
	router.POST("/admin/keys", h.CreateKey)
	router.POST("/admin/keys/:key/enable", h.EnableKey)
	router.POST("/admin/keys/:key/disable", h.DisableKey)
	router.DELETE("/admin/keys/:key", h.DeleteKey)
	router.POST("/admin/users", h.CreateUser)
	router.GET("/admin/contracts", h.ListContracts)
}

// UserRequest represents the request body for creating a user
type UserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateKey generates a new API key pair
// POST /admin/keys
func (h *Handlers) CreateKey(c *gin.Context) {
	pair, err := h.creds.CreateKeyPair(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to create key pair", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create key pair"})
		return
	}
	c.JSON(http.StatusCreated, pair)
}

// EnableKey re-enables a disabled API key
// POST /admin/keys/:key/enable
func (h *Handlers) EnableKey(c *gin.Context) {
	h.setKeyEnabled(c, true)
}

// DisableKey disables an API key and evicts it from the cache
// POST /admin/keys/:key/disable
func (h *Handlers) DisableKey(c *gin.Context) {
	h.setKeyEnabled(c, false)
}

func (h *Handlers) setKeyEnabled(c *gin.Context, enabled bool) {
	key := c.Param("key")

	var err error
	if enabled {
		err = h.creds.EnableKey(c.Request.Context(), key)
	} else {
		err = h.creds.DisableKey(c.Request.Context(), key)
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
			return
		}
		h.logger.Error("Failed to update key", zap.String("key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "enabled": enabled})
}

// DeleteKey removes an API key entirely
// DELETE /admin/keys/:key
func (h *Handlers) DeleteKey(c *gin.Context) {
	key := c.Param("key")
	if err := h.creds.DeleteKey(c.Request.Context(), key); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
			return
		}
		h.logger.Error("Failed to delete key", zap.String("key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "deleted": true})
}

// CreateUser creates a user account
// POST /admin/users
func (h *Handlers) CreateUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	user, err := h.creds.CreateUser(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
			return
		}
		h.logger.Error("Failed to create user", zap.String("username", req.Username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username})
}

// ListContracts returns every registered contract
// GET /admin/contracts
func (h *Handlers) ListContracts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"contracts": h.registry.All()})
}
