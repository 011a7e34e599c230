package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rolechat/internal/auth"
	"rolechat/internal/chat"
)

// Handler wires HTTP routes to the reply service and the auth service.
// When auth is disabled every request shares the global history scope and
// the user routes are not registered.
type Handler struct {
	chat        *chat.Service
	auth        *auth.Service
	authEnabled bool
}

// NewHandler constructs a Handler instance. authService may be nil when
// authEnabled is false.
func NewHandler(chatService *chat.Service, authService *auth.Service, authEnabled bool) *Handler {
	return &Handler{
		chat:        chatService,
		auth:        authService,
		authEnabled: authEnabled,
	}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.health)

	api := router.Group("/api")
	chatRoutes := api.Group("/chat")
	if h.authEnabled {
		api.POST("/users/register", h.registerUser)
		api.POST("/users/login", h.loginUser)
		api.POST("/users/logout", h.auth.Middleware(), h.logoutUser)
		chatRoutes.Use(h.auth.Middleware())
	} else {
		chatRoutes.Use(auth.GlobalScopeMiddleware())
	}
	chatRoutes.POST("", h.sendMessage)
	chatRoutes.GET("/history", h.getHistory)
	chatRoutes.DELETE("/history", h.clearHistory)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) registerUser(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"created_at": user.CreatedAt,
	})
}

func (h *Handler) loginUser(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	token, err := h.auth.IssueToken(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"auth_token": token,
	})
}

func (h *Handler) logoutUser(c *gin.Context) {
	if token, ok := auth.TokenFromContext(c); ok {
		_ = h.auth.RevokeToken(c.Request.Context(), token)
	}
	c.Status(http.StatusNoContent)
}

type chatRequest struct {
	Message string `json:"message"`
	Role    string `json:"role"`
}

func (h *Handler) sendMessage(c *gin.Context) {
	scope, ok := h.requestScope(c)
	if !ok {
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	reply, err := h.chat.SendMessage(c.Request.Context(), scope, req.Message, req.Role)
	if err != nil {
		h.writeChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func (h *Handler) getHistory(c *gin.Context) {
	scope, ok := h.requestScope(c)
	if !ok {
		return
	}
	messages, err := h.chat.History(c.Request.Context(), scope)
	if err != nil {
		h.writeChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": messages})
}

func (h *Handler) clearHistory(c *gin.Context) {
	scope, ok := h.requestScope(c)
	if !ok {
		return
	}
	if err := h.chat.ClearHistory(c.Request.Context(), scope); err != nil {
		h.writeChatError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) health(c *gin.Context) {
	mode := "production"
	if h.chat.Development() {
		mode = "development"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "Server is running!",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"mode":      mode,
	})
}

func (h *Handler) requestScope(c *gin.Context) (string, bool) {
	scope, ok := auth.ScopeFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return "", false
	}
	return scope, true
}

// writeChatError maps the service taxonomy onto the stable error body
// shape. Causes are attached only in development mode.
func (h *Handler) writeChatError(c *gin.Context, err error) {
	var cerr *chat.Error
	if !errors.As(err, &cerr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	body := gin.H{"error": cerr.SafeMessage()}
	if h.chat.Development() && cerr.Err != nil {
		body["details"] = cerr.Err.Error()
	}
	c.JSON(cerr.HTTPStatus(), body)
}
