package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/domain/repositories"
	"github.com/Naimurthedang/bondly-main/internal/auth"
	"github.com/Naimurthedang/bondly-main/internal/views"
	"github.com/Naimurthedang/bondly-main/usecase"
)

var errBadRequest = errors.New("invalid request")

func badRequest(err error) error {
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

func (s *Server) createSession(c echo.Context) error {
	session, err := s.shell.CreateSession(c.Request().Context())
	if err != nil {
		return s.fail(c, err, nil)
	}

	token, err := auth.GenerateSessionToken(session.ID)
	if err != nil {
		s.logger.Error("Failed to generate session token",
			zap.String("sessionID", session.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate session token",
		})
	}

	expiresAt := time.Now().Add(auth.SessionTokenTTL)
	return c.JSON(http.StatusCreated, SessionResponse{
		Token:     token,
		ExpiresAt: &expiresAt,
		Session:   session,
	})
}

func (s *Server) getSession(c echo.Context) error {
	session, err := s.shell.Session(c.Request().Context(), sessionID(c))
	if err != nil {
		return s.fail(c, err, nil)
	}
	return c.JSON(http.StatusOK, SessionResponse{Session: session})
}

func (s *Server) endSession(c echo.Context) error {
	if err := s.shell.EndSession(c.Request().Context(), sessionID(c)); err != nil {
		return s.fail(c, err, nil)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) setProfile(c echo.Context) error {
	var profile entities.Profile
	if err := c.Bind(&profile); err != nil {
		return s.fail(c, badRequest(err), nil)
	}
	if err := profile.Validate(); err != nil {
		return s.fail(c, badRequest(err), nil)
	}

	session, err := s.shell.SetProfile(c.Request().Context(), sessionID(c), profile)
	if err != nil {
		return s.fail(c, err, nil)
	}
	return c.JSON(http.StatusOK, SessionResponse{Session: session})
}

func (s *Server) navigate(c echo.Context) error {
	var req NavigateRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, badRequest(err), nil)
	}
	route, err := entities.ParseRoute(req.Route)
	if err != nil {
		return s.fail(c, badRequest(err), nil)
	}

	session, err := s.shell.Navigate(c.Request().Context(), sessionID(c), route)
	if err != nil {
		return s.fail(c, err, nil)
	}
	return c.JSON(http.StatusOK, SessionResponse{Session: session})
}

func (s *Server) getView(c echo.Context) error {
	route, err := entities.ParseRoute(c.Param("route"))
	if err != nil {
		return s.fail(c, badRequest(err), nil)
	}
	snap, err := s.shell.ViewState(c.Request().Context(), sessionID(c), route)
	if err != nil {
		return s.fail(c, err, nil)
	}
	return c.JSON(http.StatusOK, snap)
}

func (s *Server) getDashboard(c echo.Context) error {
	session, set, err := s.shell.Views(c.Request().Context(), sessionID(c))
	if err != nil {
		return s.fail(c, err, nil)
	}
	return c.JSON(http.StatusOK, set.Dashboard.Dashboard(session.Profile))
}

// act runs an action on the view at route r and replies with the view's
// snapshot. The view must be the one the session shows.
func (s *Server) act(c echo.Context, r entities.Route, action func(ctx context.Context, profile entities.Profile, set *views.Set) error) error {
	ctx := c.Request().Context()
	session, set, err := s.shell.Views(ctx, sessionID(c))
	if err != nil {
		return s.fail(c, err, nil)
	}
	if session.Route != r {
		return s.fail(c, fmt.Errorf("%w: %s", usecase.ErrViewNotShown, r), nil)
	}

	err = action(ctx, session.Profile, set)
	snap := set.View(r).Snapshot(session.Profile)
	if err != nil {
		s.logger.Info("View action failed",
			zap.String("sessionID", session.ID),
			zap.String("view", string(r)),
			zap.Error(err))
		return s.fail(c, err, snap)
	}
	return c.JSON(http.StatusOK, snap)
}

func (s *Server) createStory(c echo.Context) error {
	var req StoryRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, badRequest(err), nil)
	}
	return s.act(c, entities.RouteStories, func(ctx context.Context, profile entities.Profile, set *views.Set) error {
		_, err := set.Story.Create(ctx, profile, req.Theme, req.Moral)
		return err
	})
}

func (s *Server) createSong(c echo.Context) error {
	return s.act(c, entities.RouteSongs, func(ctx context.Context, profile entities.Profile, set *views.Set) error {
		_, err := set.Song.Create(ctx, profile)
		return err
	})
}

func (s *Server) playSong(c echo.Context) error {
	return s.act(c, entities.RouteSongs, func(ctx context.Context, _ entities.Profile, set *views.Set) error {
		_, err := set.Song.Play(ctx)
		return err
	})
}

func (s *Server) stopSong(c echo.Context) error {
	return s.act(c, entities.RouteSongs, func(_ context.Context, _ entities.Profile, set *views.Set) error {
		set.Song.Stop()
		return nil
	})
}

func (s *Server) createToy(c echo.Context) error {
	var req ToyRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, badRequest(err), nil)
	}
	toyType, err := entities.ParseToyType(req.Type)
	if err != nil {
		return s.fail(c, badRequest(err), nil)
	}
	return s.act(c, entities.RouteToys, func(ctx context.Context, profile entities.Profile, set *views.Set) error {
		_, err := set.Toy.Create(ctx, profile, toyType, req.Prompt)
		return err
	})
}

func (s *Server) interactToy(c echo.Context) error {
	var req ToyInteractRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, badRequest(err), nil)
	}
	return s.act(c, entities.RouteToys, func(ctx context.Context, profile entities.Profile, set *views.Set) error {
		_, err := set.Toy.Interact(ctx, profile, req.Action)
		return err
	})
}

func (s *Server) sendFriendMessage(c echo.Context) error {
	var req MessageRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, badRequest(err), nil)
	}
	friendID := c.Param("id")
	return s.act(c, entities.RouteFriends, func(ctx context.Context, profile entities.Profile, set *views.Set) error {
		_, err := set.Friend.Send(ctx, profile, friendID, req.Text)
		return err
	})
}

func (s *Server) askGuide(c echo.Context) error {
	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, badRequest(err), nil)
	}
	return s.act(c, entities.RouteGuide, func(ctx context.Context, profile entities.Profile, set *views.Set) error {
		_, err := set.Guide.Ask(ctx, profile, req.Query)
		return err
	})
}

func (s *Server) searchShop(c echo.Context) error {
	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, badRequest(err), nil)
	}
	return s.act(c, entities.RouteShop, func(ctx context.Context, profile entities.Profile, set *views.Set) error {
		_, err := set.Shop.Search(ctx, profile, req.Query)
		return err
	})
}

func (s *Server) generateVideo(c echo.Context) error {
	var req VideoRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, badRequest(err), nil)
	}
	return s.act(c, entities.RouteVideos, func(ctx context.Context, profile entities.Profile, set *views.Set) error {
		_, err := set.Video.Generate(ctx, profile, req.Fruit)
		return err
	})
}

func (s *Server) setCameraFilter(c echo.Context) error {
	var req FilterRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, badRequest(err), nil)
	}
	filter, err := entities.ParseCameraFilter(req.Filter)
	if err != nil {
		return s.fail(c, badRequest(err), nil)
	}
	return s.act(c, entities.RouteBabyCam, func(_ context.Context, _ entities.Profile, set *views.Set) error {
		set.Camera.SetFilter(filter)
		return nil
	})
}

func (s *Server) startGame(c echo.Context) error {
	return s.act(c, entities.RouteMonkeyGame, func(ctx context.Context, _ entities.Profile, set *views.Set) error {
		_, err := set.Game.Start(ctx)
		return err
	})
}

func (s *Server) findMonkey(c echo.Context) error {
	var req FindRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, badRequest(err), nil)
	}
	return s.act(c, entities.RouteMonkeyGame, func(_ context.Context, _ entities.Profile, set *views.Set) error {
		_, err := set.Game.Find(req.MonkeyID)
		return err
	})
}

// fail renders err as an ErrorResponse. state, when set, is the snapshot of
// the view whose action failed.
func (s *Server) fail(c echo.Context, err error, state any) error {
	status, code := statusFor(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "The request could not be completed"
		s.logger.Warn("Request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.JSON(status, ErrorResponse{
		Error:   code,
		Message: message,
		State:   state,
	})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, views.ErrEmptyQuery),
		errors.Is(err, views.ErrEmptyMessage),
		errors.Is(err, views.ErrEmptyPrompt),
		errors.Is(err, views.ErrUnknownFriend),
		errors.Is(err, views.ErrUnknownFruit),
		errors.Is(err, entities.ErrUnknownMonkey):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, views.ErrNoToy),
		errors.Is(err, views.ErrNoLullaby),
		errors.Is(err, views.ErrNoResult),
		errors.Is(err, entities.ErrToyBroken):
		return http.StatusUnprocessableEntity, "invalid_state"
	case errors.Is(err, views.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, views.ErrDiscarded):
		return http.StatusConflict, "discarded"
	case errors.Is(err, usecase.ErrViewNotShown):
		return http.StatusConflict, "view_not_shown"
	case errors.Is(err, usecase.ErrSessionExpired):
		return http.StatusUnauthorized, "session_expired"
	case errors.Is(err, repositories.ErrSessionNotFound):
		return http.StatusUnauthorized, "session_not_found"
	case errors.Is(err, repositories.ErrMediaNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repositories.ErrUnauthorized):
		return http.StatusBadGateway, "gateway_unauthorized"
	case errors.Is(err, repositories.ErrMalformedResponse):
		return http.StatusBadGateway, "gateway_malformed_response"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "gateway_timeout"
	case errors.Is(err, views.ErrActionPanicked):
		return http.StatusInternalServerError, "internal_error"
	default:
		return http.StatusBadGateway, "gateway_error"
	}
}
