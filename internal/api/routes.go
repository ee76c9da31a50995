package api

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/domain/repositories"
	"github.com/Naimurthedang/bondly-main/internal/auth"
	"github.com/Naimurthedang/bondly-main/internal/websocket"
	"github.com/Naimurthedang/bondly-main/usecase"
)

const sessionIDKey = "sessionID"

// Server serves the companion's HTTP API.
type Server struct {
	shell   *usecase.ShellService
	media   repositories.MediaStore
	catalog *entities.Catalog
	logger  *zap.Logger
}

// NewServer creates a new API server
func NewServer(shell *usecase.ShellService, media repositories.MediaStore, catalog *entities.Catalog, logger *zap.Logger) *Server {
	return &Server{
		shell:   shell,
		media:   media,
		catalog: catalog,
		logger:  logger,
	}
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, s *Server, hub *websocket.Hub, logger *zap.Logger) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "bondly-server",
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/media/:id", s.getMedia)

	// API v1 routes
	v1 := e.Group("/api/v1")
	v1.POST("/sessions", s.createSession)
	v1.GET("/friends", s.getFriends)
	v1.GET("/dashboard", s.getDashboard, requireSession(logger))

	session := v1.Group("/session", requireSession(logger))
	session.GET("", s.getSession)
	session.DELETE("", s.endSession)
	session.PUT("/profile", s.setProfile)
	session.POST("/navigate", s.navigate)
	session.GET("/views/:route", s.getView)

	session.POST("/stories", s.createStory)
	session.POST("/songs", s.createSong)
	session.POST("/songs/play", s.playSong)
	session.POST("/songs/stop", s.stopSong)
	session.POST("/toys", s.createToy)
	session.POST("/toys/interact", s.interactToy)
	session.POST("/friends/:id/messages", s.sendFriendMessage)
	session.POST("/guide", s.askGuide)
	session.POST("/shop", s.searchShop)
	session.POST("/videos", s.generateVideo)
	session.POST("/camera/filter", s.setCameraFilter)
	session.POST("/game", s.startGame)
	session.POST("/game/find", s.findMonkey)

	// Capture streams authenticate with a query token; browsers cannot set
	// headers on WebSocket requests.
	e.GET("/ws/capture", func(c echo.Context) error {
		return websocket.HandleWebSocketWithAuth(hub, c, sessionID(c), logger)
	}, requireSession(logger))
}

// requireSession validates the session token from the Authorization header
// or the "token" query parameter.
func requireSession(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := auth.BearerToken(c.Request().Header.Get("Authorization"))
			if err != nil {
				token = c.QueryParam("token")
			}
			if token == "" {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "missing_token",
					Message: "Session token is required",
				})
			}

			claims, err := auth.ValidateToken(token)
			if err != nil {
				logger.Warn("Request rejected: invalid token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "invalid_token",
					Message: "Invalid or expired session token",
				})
			}
			if claims.Role != auth.RoleSession {
				return c.JSON(http.StatusForbidden, ErrorResponse{
					Error:   "invalid_role",
					Message: "Only session tokens are accepted",
				})
			}

			c.Set(sessionIDKey, claims.SessionID)
			return next(c)
		}
	}
}

func sessionID(c echo.Context) string {
	id, _ := c.Get(sessionIDKey).(string)
	return id
}

func (s *Server) getMedia(c echo.Context) error {
	blob, err := s.media.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.fail(c, err, nil)
	}
	c.Response().Header().Set(echo.HeaderContentType, blob.MIMEType)
	c.Response().Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeContent(c.Response(), c.Request(), blob.ID, blob.CreatedAt, bytes.NewReader(blob.Data))
	return nil
}

func (s *Server) getFriends(c echo.Context) error {
	return c.JSON(http.StatusOK, s.catalog.Friends)
}
