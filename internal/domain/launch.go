package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Launch struct {
	ID           uuid.UUID
	CaseID       string
	ProductID    uuid.UUID
	MakerID      uuid.UUID
	PeriodKey    string
	PeriodStart  time.Time
	PeriodEnd    time.Time
	UpvoteCount  int
	PledgeCounts map[string]int
	CreatedAt    time.Time
}

// LaunchEntry is a row of the launch board: the launch joined with its product and maker.
type LaunchEntry struct {
	Launch
	ProductSlug string
	ProductName string
	Tagline     string
	MakerHandle string
}

type SupportType string

const (
	SupportFeedback      SupportType = "FEEDBACK"
	SupportSocialSupport SupportType = "SOCIAL_SUPPORT"
	SupportFirstTesters  SupportType = "FIRST_TESTERS"
)

var SupportTypes = []SupportType{SupportFeedback, SupportSocialSupport, SupportFirstTesters}

func ParseSupportType(s string) (SupportType, error) {
	for _, st := range SupportTypes {
		if string(st) == s {
			return st, nil
		}
	}
	return "", Invalid("unknown support type %q", s)
}

type LaunchRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Launch, error)
	// MaxCaseID returns the highest well-formed case ID, or "" when there are no launches.
	MaxCaseID(ctx context.Context) (string, error)
	// Create fails with ErrAlreadyLaunched when the product already has a launch in the
	// period, and with ErrConflict when the case ID is taken.
	Create(ctx context.Context, l *Launch) (*Launch, error)
	ListByPeriod(ctx context.Context, periodKey string) ([]LaunchEntry, error)
}
