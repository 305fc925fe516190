package httpserver

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/founderswall/internal/domain"
)

func (s *Server) registerPageRoutes(csrfMiddleware, rateLimiter echo.MiddlewareFunc) {
	s.echo.GET("/", s.handleWall, rateLimiter, csrfMiddleware)
	s.echo.GET("/m/:handle", s.handleMugshotPage, rateLimiter, csrfMiddleware)
	s.echo.GET("/s/:slug", s.handleStoryPage, rateLimiter, csrfMiddleware)
	s.echo.GET("/new", s.handleComposePage, rateLimiter, s.requirePageAuth, csrfMiddleware)
}

type reactionCount struct {
	Emoji string
	Count int
}

func (s *Server) handleWall(c echo.Context) error {
	ctx := c.Request().Context()

	board, err := s.app.LaunchBoard(ctx)
	if err != nil {
		return err
	}
	stats, err := s.app.WallStats(ctx)
	if err != nil {
		return err
	}

	data := map[string]any{
		"Viewer":    s.viewer(c),
		"CSRFToken": csrfToken(c),
		"PeriodKey": board.Window.Key(),
		"PeriodEnd": board.Window.End,
		"Remaining": formatRemaining(board.Window.Remaining(s.app.Now())),
		"Entries":   board.Entries,
		"Stats":     stats,
	}
	return s.renderTemplate(c, "wall.html", data)
}

func (s *Server) handleMugshotPage(c echo.Context) error {
	mugshot, err := s.app.GetMugshot(c.Request().Context(), c.Param("handle"))
	if err != nil {
		return err
	}

	viewer := s.viewer(c)
	data := map[string]any{
		"Viewer":    viewer,
		"CSRFToken": csrfToken(c),
		"Maker":     mugshot.Maker,
		"Products":  mugshot.Products,
		"IsSelf":    viewer != nil && viewer.ID == mugshot.Maker.ID,
	}
	return s.renderTemplate(c, "mugshot.html", data)
}

func (s *Server) handleStoryPage(c echo.Context) error {
	page, err := s.app.GetStory(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}

	data := map[string]any{
		"Viewer":    s.viewer(c),
		"CSRFToken": csrfToken(c),
		"Story":     page.Story,
		"Author":    page.Author,
		"Reactions": orderedReactions(page.Story.ReactionCounts),
	}
	return s.renderTemplate(c, "story.html", data)
}

func (s *Server) handleComposePage(c echo.Context) error {
	data := map[string]any{
		"Viewer":       c.Get(contextKeyMaker),
		"CSRFToken":    csrfToken(c),
		"SupportTypes": domain.SupportTypes,
	}
	return s.renderTemplate(c, "compose.html", data)
}

// orderedReactions lists every allowed emoji in display order, including zero counts.
func orderedReactions(counts map[string]int) []reactionCount {
	out := make([]reactionCount, 0, len(domain.Reactions))
	for _, emoji := range domain.Reactions {
		out = append(out, reactionCount{Emoji: emoji, Count: counts[emoji]})
	}
	return out
}

// formatRemaining renders a countdown such as "2d 5h 13m".
func formatRemaining(d time.Duration) string {
	if d <= 0 {
		return "closed"
	}
	d = d.Truncate(time.Minute)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
