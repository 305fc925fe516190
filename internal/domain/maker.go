package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Maker is a member of the wall. Their public profile is the "mugshot".
type Maker struct {
	ID             uuid.UUID
	ProviderID     string
	Handle         string
	DisplayName    string
	Bio            string
	AvatarURL      string
	WebsiteURL     string
	LifetimeAccess bool
	FollowerCount  int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ProfileUpdate struct {
	DisplayName string
	Bio         string
	AvatarURL   string
	WebsiteURL  string
}

// Identity is what the login provider tells us about a maker.
type Identity struct {
	ProviderID  string
	Login       string
	DisplayName string
	AvatarURL   string
}

type MakerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Maker, error)
	GetByHandle(ctx context.Context, handle string) (*Maker, error)
	GetByProviderID(ctx context.Context, providerID string) (*Maker, error)
	HandleExists(ctx context.Context, handle string) (bool, error)
	Create(ctx context.Context, m *Maker) (*Maker, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*Maker, error)
}
