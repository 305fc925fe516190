package httpserver

import (
	"time"

	"github.com/pscheid92/founderswall/internal/app"
	"github.com/pscheid92/founderswall/internal/domain"
	"github.com/pscheid92/founderswall/internal/period"
)

type makerResponse struct {
	ID             string    `json:"id"`
	Handle         string    `json:"handle"`
	DisplayName    string    `json:"display_name"`
	Bio            string    `json:"bio,omitempty"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	WebsiteURL     string    `json:"website_url,omitempty"`
	LifetimeAccess bool      `json:"lifetime_access"`
	FollowerCount  int       `json:"follower_count"`
	CreatedAt      time.Time `json:"created_at"`
}

func newMakerResponse(m *domain.Maker) makerResponse {
	return makerResponse{
		ID:             m.ID.String(),
		Handle:         m.Handle,
		DisplayName:    m.DisplayName,
		Bio:            m.Bio,
		AvatarURL:      m.AvatarURL,
		WebsiteURL:     m.WebsiteURL,
		LifetimeAccess: m.LifetimeAccess,
		FollowerCount:  m.FollowerCount,
		CreatedAt:      m.CreatedAt,
	}
}

type productResponse struct {
	ID        string    `json:"id"`
	MakerID   string    `json:"maker_id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Tagline   string    `json:"tagline,omitempty"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:        p.ID.String(),
		MakerID:   p.MakerID.String(),
		Slug:      p.Slug,
		Name:      p.Name,
		Tagline:   p.Tagline,
		URL:       p.URL,
		CreatedAt: p.CreatedAt,
	}
}

type mugshotResponse struct {
	Maker    makerResponse     `json:"maker"`
	Products []productResponse `json:"products"`
}

func newMugshotResponse(m *app.Mugshot) mugshotResponse {
	products := make([]productResponse, 0, len(m.Products))
	for i := range m.Products {
		products = append(products, newProductResponse(&m.Products[i]))
	}
	return mugshotResponse{Maker: newMakerResponse(m.Maker), Products: products}
}

type pinResponse struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func newPinResponse(p *domain.Pin) pinResponse {
	return pinResponse{ID: p.ID.String(), Body: p.Body, CreatedAt: p.CreatedAt}
}

type launchResponse struct {
	ID           string         `json:"id"`
	CaseID       string         `json:"case_id"`
	ProductID    string         `json:"product_id"`
	MakerID      string         `json:"maker_id"`
	PeriodKey    string         `json:"period_key"`
	PeriodStart  time.Time      `json:"period_start"`
	PeriodEnd    time.Time      `json:"period_end"`
	UpvoteCount  int            `json:"upvote_count"`
	PledgeCounts map[string]int `json:"pledge_counts"`
	CreatedAt    time.Time      `json:"created_at"`
}

func newLaunchResponse(l *domain.Launch) launchResponse {
	pledges := l.PledgeCounts
	if pledges == nil {
		pledges = map[string]int{}
	}
	return launchResponse{
		ID:           l.ID.String(),
		CaseID:       l.CaseID,
		ProductID:    l.ProductID.String(),
		MakerID:      l.MakerID.String(),
		PeriodKey:    l.PeriodKey,
		PeriodStart:  l.PeriodStart,
		PeriodEnd:    l.PeriodEnd,
		UpvoteCount:  l.UpvoteCount,
		PledgeCounts: pledges,
		CreatedAt:    l.CreatedAt,
	}
}

type boardEntryResponse struct {
	launchResponse
	ProductSlug string `json:"product_slug"`
	ProductName string `json:"product_name"`
	Tagline     string `json:"tagline,omitempty"`
	MakerHandle string `json:"maker_handle"`
}

type boardResponse struct {
	Period  periodResponse       `json:"period"`
	Entries []boardEntryResponse `json:"entries"`
}

func newBoardResponse(b app.Board, now time.Time) boardResponse {
	entries := make([]boardEntryResponse, 0, len(b.Entries))
	for i := range b.Entries {
		e := &b.Entries[i]
		entries = append(entries, boardEntryResponse{
			launchResponse: newLaunchResponse(&e.Launch),
			ProductSlug:    e.ProductSlug,
			ProductName:    e.ProductName,
			Tagline:        e.Tagline,
			MakerHandle:    e.MakerHandle,
		})
	}
	return boardResponse{Period: newPeriodResponse(b.Window, now), Entries: entries}
}

type storyResponse struct {
	ID             string         `json:"id"`
	Slug           string         `json:"slug"`
	Title          string         `json:"title"`
	Body           string         `json:"body"`
	ReactionCounts map[string]int `json:"reaction_counts"`
	Author         *makerResponse `json:"author,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

func newStoryResponse(s *domain.Story, author *domain.Maker) storyResponse {
	counts := s.ReactionCounts
	if counts == nil {
		counts = map[string]int{}
	}
	resp := storyResponse{
		ID:             s.ID.String(),
		Slug:           s.Slug,
		Title:          s.Title,
		Body:           s.Body,
		ReactionCounts: counts,
		CreatedAt:      s.CreatedAt,
	}
	if author != nil {
		a := newMakerResponse(author)
		resp.Author = &a
	}
	return resp
}

type toggleResponse struct {
	Kind      string         `json:"kind"`
	Target    string         `json:"target"`
	Active    bool           `json:"active"`
	Choices   []string       `json:"choices"`
	Aggregate map[string]int `json:"aggregate"`
}

func newToggleResponse(r domain.ToggleResult) toggleResponse {
	choices := r.Choices
	if choices == nil {
		choices = []string{}
	}
	aggregate := r.Aggregate
	if aggregate == nil {
		aggregate = map[string]int{}
	}
	return toggleResponse{
		Kind:      string(r.Kind),
		Target:    r.Target.String(),
		Active:    r.Active(),
		Choices:   choices,
		Aggregate: aggregate,
	}
}

type periodResponse struct {
	Key              string    `json:"key"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	RemainingSeconds int64     `json:"remaining_seconds"`
}

func newPeriodResponse(w period.Window, now time.Time) periodResponse {
	return periodResponse{
		Key:              w.Key(),
		Start:            w.Start,
		End:              w.End,
		RemainingSeconds: int64(w.Remaining(now).Seconds()),
	}
}
