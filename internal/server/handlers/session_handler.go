package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
	"github.com/mamadbah2/stockdesk/internal/service/inventory"
	"github.com/mamadbah2/stockdesk/internal/service/session"
)

// SessionHeader carries the token returned by Login.
const SessionHeader = "X-Session-Token"

const sessionKey = "session"

type loginRequest struct {
	UserID string `json:"userId" binding:"required"`
	PIN    string `json:"pin" binding:"required"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// SessionHandler issues and checks staff sessions.
type SessionHandler struct {
	inv      *inventory.Service
	sessions *session.Manager
	logger   *zap.Logger
}

// NewSessionHandler constructs the session HTTP adapter.
func NewSessionHandler(inv *inventory.Service, sessions *session.Manager, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{inv: inv, sessions: sessions, logger: logger}
}

// Login checks the user id and pin against the current snapshot.
func (h *SessionHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	user, err := h.inv.Authenticate(req.UserID, req.PIN)
	if err != nil {
		respondError(c, h.logger, "login rejected", err)
		return
	}

	s := h.sessions.Open(user)
	h.logger.Info("session opened", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	c.JSON(http.StatusOK, sessionResponse{Token: s.Token, User: s.User})
}

// Logout drops the session and its stocktake rows.
func (h *SessionHandler) Logout(c *gin.Context) {
	s := currentSession(c)
	h.sessions.Close(s.Token)
	h.logger.Info("session closed", zap.String("user_id", s.User.ID))
	c.Status(http.StatusNoContent)
}

// Me returns the user behind the session.
func (h *SessionHandler) Me(c *gin.Context) {
	s := currentSession(c)
	c.JSON(http.StatusOK, sessionResponse{Token: s.Token, User: s.User})
}

// RequireSession rejects requests without a known token. The token is read
// from the session header, or from the token query parameter for clients
// such as EventSource that cannot set headers.
func (h *SessionHandler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(SessionHeader))
		if token == "" {
			token = c.Query("token")
		}

		s, ok := h.sessions.Get(token)
		if token == "" || !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}

		c.Set(sessionKey, s)
		c.Next()
	}
}

// RequireAdmin must run after RequireSession.
func (h *SessionHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentSession(c).User.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}
