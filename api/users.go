package api

import (
	"net/http"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	sessions *Sessions
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required,max=20"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	credentialsRequest
	Balance *int64 `json:"balance" binding:"required"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func NewUserHandler(sessions *Sessions) *UserHandler {
	return &UserHandler{sessions: sessions}
}

func (h *UserHandler) Register(router *gin.RouterGroup) {
	router.POST("/users", h.register)
	router.POST("/sessions", h.login)
	router.DELETE("/sessions", h.logout)
}

func (h *UserHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.sessions.New().Register(c.Request.Context(), req.Username, req.Password, *req.Balance); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"username": req.Username})
}

// login opens a new session and returns its token. Each token is bound to
// exactly one principal for its lifetime.
func (h *UserHandler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if _, ok := h.sessions.Get(c.GetHeader(SessionHeader)); ok {
		writeError(c, domain.ErrAlreadyAuthenticated)
		return
	}

	session := h.sessions.New()
	if err := session.Login(c.Request.Context(), req.Username, req.Password); err != nil {
		writeError(c, err)
		return
	}
	token := h.sessions.Add(session)
	c.JSON(http.StatusCreated, loginResponse{Token: token, Username: session.Username()})
}

// logout discards the session behind the token. The principal itself is
// untouched; a later login starts a fresh session.
func (h *UserHandler) logout(c *gin.Context) {
	h.sessions.Remove(c.GetHeader(SessionHeader))
	c.Status(http.StatusNoContent)
}
