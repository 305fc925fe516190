package httpserver

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pscheid92/founderswall/internal/app"
	"github.com/pscheid92/founderswall/internal/domain"
	"github.com/pscheid92/founderswall/internal/period"
	apperrors "github.com/pscheid92/founderswall/internal/platform/errors"
)

const maxPinLimit = 200

func (s *Server) registerAPIRoutes(csrfMiddleware, rateLimiter echo.MiddlewareFunc) {
	api := s.echo.Group("/api", rateLimiter)

	api.GET("/period", s.handleGetPeriod)
	api.GET("/stats", s.handleGetStats)
	api.GET("/launches", s.handleGetLaunchBoard)
	api.GET("/makers/:handle", s.handleGetMaker)
	api.GET("/products/:slug", s.handleGetProduct)
	api.GET("/products/:slug/pins", s.handleListPins)
	api.GET("/stories/:slug", s.handleGetStory)

	auth := func(extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
		return append([]echo.MiddlewareFunc{s.requireAPIAuth, csrfMiddleware}, extra...)
	}
	api.GET("/me", s.handleGetMe, auth()...)
	api.POST("/mugshot", s.handleUpdateProfile, auth()...)
	api.POST("/products", s.handleCreateProduct, auth(s.idempotent)...)
	api.POST("/products/:slug/pins", s.handleAddPin, auth(s.idempotent)...)
	api.POST("/launches", s.handleSubmitLaunch, auth(s.idempotent)...)
	api.POST("/launches/:id/upvote", s.handleToggleUpvote, auth(s.idempotent)...)
	api.PUT("/launches/:id/pledge", s.handleSetPledges, auth(s.idempotent)...)
	api.POST("/stories", s.handleCreateStory, auth(s.idempotent)...)
	api.POST("/stories/:slug/react", s.handleReactToStory, auth(s.idempotent)...)
	api.POST("/makers/:handle/connect", s.handleToggleConnection, auth(s.idempotent)...)
}

func respondJSON(c echo.Context, status int, body any) error {
	if err := c.JSON(status, body); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleGetPeriod(c echo.Context) error {
	now := s.app.Now()
	window := s.app.CurrentPeriod()

	if raw := c.QueryParam("at"); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return apperrors.ValidationError("at must be an RFC 3339 timestamp").WithField("at", raw)
		}
		now = at
		window = period.Current(at)
	}

	return respondJSON(c, http.StatusOK, newPeriodResponse(window, now))
}

func (s *Server) handleGetStats(c echo.Context) error {
	stats, err := s.app.WallStats(c.Request().Context())
	if err != nil {
		return err
	}
	return respondJSON(c, http.StatusOK, stats)
}

func (s *Server) handleGetLaunchBoard(c echo.Context) error {
	board, err := s.app.LaunchBoard(c.Request().Context())
	if err != nil {
		return err
	}
	return respondJSON(c, http.StatusOK, newBoardResponse(board, s.app.Now()))
}

func (s *Server) handleGetMaker(c echo.Context) error {
	mugshot, err := s.app.GetMugshot(c.Request().Context(), c.Param("handle"))
	if err != nil {
		return err
	}
	return respondJSON(c, http.StatusOK, newMugshotResponse(mugshot))
}

func (s *Server) handleGetMe(c echo.Context) error {
	maker, ok := c.Get(contextKeyMaker).(*domain.Maker)
	if !ok {
		return apperrors.InternalError("invalid maker in context", nil)
	}
	return respondJSON(c, http.StatusOK, map[string]any{
		"maker":      newMakerResponse(maker),
		"csrf_token": csrfToken(c),
	})
}

func (s *Server) handleUpdateProfile(c echo.Context) error {
	makerID, err := currentMakerID(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return err
	}

	maker, err := s.app.UpdateProfile(c.Request().Context(), makerID, domain.ProfileUpdate{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		AvatarURL:   req.AvatarURL,
		WebsiteURL:  req.WebsiteURL,
	})
	if err != nil {
		return err
	}
	return respondJSON(c, http.StatusOK, newMakerResponse(maker))
}

func (s *Server) handleToggleConnection(c echo.Context) error {
	makerID, err := currentMakerID(c)
	if err != nil {
		return err
	}

	result, err := s.app.ToggleConnection(c.Request().Context(), makerID, c.Param("handle"))
	if err != nil {
		return err
	}
	return respondJSON(c, http.StatusOK, newToggleResponse(result))
}

func (s *Server) handleCreateProduct(c echo.Context) error {
	makerID, err := currentMakerID(c)
	if err != nil {
		return err
	}

	var req createProductRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := s.app.CreateProduct(c.Request().Context(), makerID, app.NewProduct{
		Name:    req.Name,
		Tagline: req.Tagline,
		URL:     req.URL,
	})
	if err != nil {
		return err
	}
	return respondJSON(c, http.StatusCreated, newProductResponse(product))
}

func (s *Server) handleGetProduct(c echo.Context) error {
	product, err := s.app.GetProduct(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return respondJSON(c, http.StatusOK, newProductResponse(product))
}

func (s *Server) handleListPins(c echo.Context) error {
	limit := app.DefaultPinLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPinLimit {
			return apperrors.ValidationError(fmt.Sprintf("limit must be between 1 and %d", maxPinLimit)).WithField("limit", raw)
		}
		limit = n
	}

	pins, err := s.app.ListPins(c.Request().Context(), c.Param("slug"), limit)
	if err != nil {
		return err
	}

	resp := make([]pinResponse, 0, len(pins))
	for i := range pins {
		resp = append(resp, newPinResponse(&pins[i]))
	}
	return respondJSON(c, http.StatusOK, map[string]any{"pins": resp})
}

func (s *Server) handleAddPin(c echo.Context) error {
	makerID, err := currentMakerID(c)
	if err != nil {
		return err
	}

	var req addPinRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return err
	}

	pin, err := s.app.AddPin(c.Request().Context(), makerID, c.Param("slug"), req.Body)
	if err != nil {
		return err
	}
	return respondJSON(c, http.StatusCreated, newPinResponse(pin))
}

func (s *Server) handleSubmitLaunch(c echo.Context) error {
	makerID, err := currentMakerID(c)
	if err != nil {
		return err
	}

	var req submitLaunchRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return err
	}

	launch, err := s.app.SubmitLaunch(c.Request().Context(), makerID, req.ProductSlug)
	if err != nil {
		return err
	}
	return respondJSON(c, http.StatusCreated, newLaunchResponse(launch))
}

func parseLaunchID(c echo.Context) (uuid.UUID, error) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("invalid launch ID").WithField("id", raw)
	}
	return id, nil
}

func (s *Server) handleToggleUpvote(c echo.Context) error {
	makerID, err := currentMakerID(c)
	if err != nil {
		return err
	}
	launchID, err := parseLaunchID(c)
	if err != nil {
		return err
	}

	result, err := s.app.ToggleUpvote(c.Request().Context(), makerID, launchID)
	if err != nil {
		return err
	}
	return respondJSON(c, http.StatusOK, newToggleResponse(result))
}

func (s *Server) handleSetPledges(c echo.Context) error {
	makerID, err := currentMakerID(c)
	if err != nil {
		return err
	}
	launchID, err := parseLaunchID(c)
	if err != nil {
		return err
	}

	var req pledgeRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := s.app.SetPledges(c.Request().Context(), makerID, launchID, req.SupportTypes)
	if err != nil {
		return err
	}
	return respondJSON(c, http.StatusOK, newToggleResponse(result))
}

func (s *Server) handleCreateStory(c echo.Context) error {
	makerID, err := currentMakerID(c)
	if err != nil {
		return err
	}

	var req createStoryRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return err
	}

	story, err := s.app.CreateStory(c.Request().Context(), makerID, app.NewStory{Title: req.Title, Body: req.Body})
	if err != nil {
		return err
	}
	return respondJSON(c, http.StatusCreated, newStoryResponse(story, nil))
}

func (s *Server) handleGetStory(c echo.Context) error {
	page, err := s.app.GetStory(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return respondJSON(c, http.StatusOK, newStoryResponse(page.Story, page.Author))
}

func (s *Server) handleReactToStory(c echo.Context) error {
	makerID, err := currentMakerID(c)
	if err != nil {
		return err
	}

	var req reactRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := s.app.ReactToStory(c.Request().Context(), makerID, c.Param("slug"), req.Emoji)
	if err != nil {
		return err
	}
	return respondJSON(c, http.StatusOK, newToggleResponse(result))
}
