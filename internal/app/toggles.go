package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pscheid92/founderswall/internal/domain"
	"github.com/pscheid92/founderswall/internal/toggle"
)

// toggleSingle applies a single-choice toggle and recounts the target's aggregate in
// one transaction.
func (s *Service) toggleSingle(ctx context.Context, kind domain.ChoiceKind, actor, target uuid.UUID, choice string) (domain.ToggleResult, error) {
	var result domain.ToggleResult
	var mutation toggle.Mutation

	err := s.choices.WithChoiceTx(ctx, kind, func(tx domain.ChoiceTx) error {
		if err := tx.LockTarget(ctx, target); err != nil {
			return err
		}

		held, err := tx.Current(ctx, actor, target)
		if err != nil {
			return fmt.Errorf("failed to read current choice: %w", err)
		}
		var current *string
		if len(held) > 0 {
			current = &held[0]
		}

		out, err := toggle.Single(current, choice)
		if err != nil {
			return err
		}
		mutation = out.Mutation

		switch out.Mutation {
		case toggle.Insert:
			err = tx.Insert(ctx, actor, target, *out.Next)
		case toggle.Update:
			err = tx.Update(ctx, actor, target, *out.Next)
		case toggle.Delete:
			err = tx.DeleteAll(ctx, actor, target)
		}
		if err != nil {
			return fmt.Errorf("failed to %s %s: %w", out.Mutation, kind, err)
		}

		aggregate, err := s.recount(ctx, tx, kind, target)
		if err != nil {
			return err
		}

		result = domain.ToggleResult{Kind: kind, Target: target, Aggregate: aggregate}
		if out.Next != nil {
			result.Choices = []string{*out.Next}
		}
		return nil
	})
	if err != nil {
		return domain.ToggleResult{}, err
	}

	s.observeToggle(kind, mutation.String())
	return result, nil
}

// toggleMulti replaces the actor's choice set on target and recounts in one transaction.
func (s *Service) toggleMulti(ctx context.Context, kind domain.ChoiceKind, actor, target uuid.UUID, requested []string) (domain.ToggleResult, error) {
	var result domain.ToggleResult

	err := s.choices.WithChoiceTx(ctx, kind, func(tx domain.ChoiceTx) error {
		if err := tx.LockTarget(ctx, target); err != nil {
			return err
		}

		held, err := tx.Current(ctx, actor, target)
		if err != nil {
			return fmt.Errorf("failed to read current choices: %w", err)
		}

		out, err := toggle.Multi(held, requested)
		if err != nil {
			return err
		}

		if err := tx.DeleteAll(ctx, actor, target); err != nil {
			return fmt.Errorf("failed to clear %s: %w", kind, err)
		}
		for _, choice := range out.Next {
			if err := tx.Insert(ctx, actor, target, choice); err != nil {
				return fmt.Errorf("failed to insert %s %q: %w", kind, choice, err)
			}
		}

		aggregate, err := s.recount(ctx, tx, kind, target)
		if err != nil {
			return err
		}

		result = domain.ToggleResult{Kind: kind, Target: target, Choices: out.Next, Aggregate: aggregate}
		return nil
	})
	if err != nil {
		return domain.ToggleResult{}, err
	}

	s.observeToggle(kind, "replace")
	return result, nil
}

// recount rewrites the aggregate and checks it against the record count. A mismatch
// gets one more recount before the toggle fails as inconsistent.
func (s *Service) recount(ctx context.Context, tx domain.ChoiceTx, kind domain.ChoiceKind, target uuid.UUID) (map[string]int, error) {
	for attempt := 1; ; attempt++ {
		aggregate, err := tx.Recount(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("failed to recount %s: %w", kind, err)
		}
		if s.toggles != nil {
			s.toggles.AggregateRecounted(kind)
		}

		records, err := tx.CountRecords(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s records: %w", kind, err)
		}

		total := toggle.Total(aggregate)
		if total == records {
			return aggregate, nil
		}

		slog.WarnContext(ctx, "Aggregate disagrees with records",
			"kind", string(kind), "target", target.String(), "aggregate_total", total, "records", records, "attempt", attempt)
		if attempt == 2 {
			return nil, fmt.Errorf("%w: %s on %s", domain.ErrInconsistent, kind, target)
		}
	}
}

func (s *Service) observeToggle(kind domain.ChoiceKind, mutation string) {
	if s.toggles != nil {
		s.toggles.ToggleApplied(kind, mutation)
	}
}
