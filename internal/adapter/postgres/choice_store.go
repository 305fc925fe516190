package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/founderswall/internal/domain"
)

// choiceTable describes where one choice kind keeps its records and its aggregate.
// All names are compile-time constants; nothing user-supplied reaches the SQL text.
type choiceTable struct {
	records   string
	actorCol  string
	targetCol string
	// choiceCol is empty for presence kinds, where a row is the choice.
	choiceCol string
	presence  string

	targets      string
	aggregateCol string
	// aggregateJSON stores the full tally as jsonb; otherwise the presence count is stored.
	aggregateJSON bool
	notFound      error
}

var choiceTables = map[domain.ChoiceKind]choiceTable{
	domain.KindReaction: {
		records: "story_reactions", actorCol: "actor_id", targetCol: "story_id", choiceCol: "emoji",
		targets: "stories", aggregateCol: "reaction_counts", aggregateJSON: true,
		notFound: domain.ErrStoryNotFound,
	},
	domain.KindUpvote: {
		records: "launch_upvotes", actorCol: "actor_id", targetCol: "launch_id", presence: domain.ChoiceUp,
		targets: "launches", aggregateCol: "upvote_count",
		notFound: domain.ErrLaunchNotFound,
	},
	domain.KindConnection: {
		records: "connections", actorCol: "follower_id", targetCol: "followee_id", presence: domain.ChoiceFollow,
		targets: "makers", aggregateCol: "follower_count",
		notFound: domain.ErrMakerNotFound,
	},
	domain.KindPledge: {
		records: "launch_pledges", actorCol: "actor_id", targetCol: "launch_id", choiceCol: "support_type",
		targets: "launches", aggregateCol: "pledge_counts", aggregateJSON: true,
		notFound: domain.ErrLaunchNotFound,
	},
}

// ChoiceStore runs toggles as single transactions. LockTarget takes a row lock on the
// target, so concurrent toggles on one target serialise and every recount sees the
// records committed before it.
type ChoiceStore struct {
	pool *pgxpool.Pool
}

func NewChoiceStore(pool *pgxpool.Pool) *ChoiceStore {
	return &ChoiceStore{pool: pool}
}

func (s *ChoiceStore) WithChoiceTx(ctx context.Context, kind domain.ChoiceKind, fn func(tx domain.ChoiceTx) error) error {
	table, ok := choiceTables[kind]
	if !ok {
		return fmt.Errorf("unknown choice kind %q", kind)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return mapError(err, "begin transaction", nil)
	}
	defer tx.Rollback(ctx)

	if err := fn(&choiceTx{tx: tx, t: table}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return mapError(err, "commit "+string(kind), nil)
	}
	return nil
}

type choiceTx struct {
	tx pgx.Tx
	t  choiceTable
}

func (c *choiceTx) LockTarget(ctx context.Context, target uuid.UUID) error {
	var one int
	err := c.tx.QueryRow(ctx, fmt.Sprintf(`SELECT 1 FROM %s WHERE id = $1 FOR UPDATE`, c.t.targets), target).Scan(&one)
	return mapError(err, "lock "+c.t.targets, c.t.notFound)
}

func (c *choiceTx) Current(ctx context.Context, actor, target uuid.UUID) ([]string, error) {
	if c.t.choiceCol == "" {
		var n int
		err := c.tx.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1 AND %s = $2`,
			c.t.records, c.t.actorCol, c.t.targetCol), actor, target).Scan(&n)
		if err != nil {
			return nil, mapError(err, "read "+c.t.records, nil)
		}
		if n == 0 {
			return nil, nil
		}
		return []string{c.t.presence}, nil
	}

	rows, err := c.tx.Query(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 ORDER BY %s`,
		c.t.choiceCol, c.t.records, c.t.actorCol, c.t.targetCol, c.t.choiceCol), actor, target)
	if err != nil {
		return nil, mapError(err, "read "+c.t.records, nil)
	}
	choices, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, mapError(err, "scan "+c.t.records, nil)
	}
	return choices, nil
}

func (c *choiceTx) Insert(ctx context.Context, actor, target uuid.UUID, choice string) error {
	var err error
	if c.t.choiceCol == "" {
		_, err = c.tx.Exec(ctx, fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2)`,
			c.t.records, c.t.actorCol, c.t.targetCol), actor, target)
	} else {
		_, err = c.tx.Exec(ctx, fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)`,
			c.t.records, c.t.actorCol, c.t.targetCol, c.t.choiceCol), actor, target, choice)
	}
	return mapError(err, "insert into "+c.t.records, nil)
}

// Update changes the choice in place, keeping the record's identity and created_at.
func (c *choiceTx) Update(ctx context.Context, actor, target uuid.UUID, choice string) error {
	if c.t.choiceCol == "" {
		return fmt.Errorf("%s records carry no choice to update", c.t.records)
	}
	_, err := c.tx.Exec(ctx, fmt.Sprintf(`UPDATE %s SET %s = $3, updated_at = now() WHERE %s = $1 AND %s = $2`,
		c.t.records, c.t.choiceCol, c.t.actorCol, c.t.targetCol), actor, target, choice)
	return mapError(err, "update "+c.t.records, nil)
}

func (c *choiceTx) DeleteAll(ctx context.Context, actor, target uuid.UUID) error {
	_, err := c.tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		c.t.records, c.t.actorCol, c.t.targetCol), actor, target)
	return mapError(err, "delete from "+c.t.records, nil)
}

func (c *choiceTx) Recount(ctx context.Context, target uuid.UUID) (map[string]int, error) {
	counts, err := c.tally(ctx, target)
	if err != nil {
		return nil, err
	}

	var aggregate any = counts
	if !c.t.aggregateJSON {
		aggregate = counts[c.t.presence]
	}

	_, err = c.tx.Exec(ctx, fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE id = $1`, c.t.targets, c.t.aggregateCol), target, aggregate)
	if err != nil {
		return nil, mapError(err, "store "+c.t.aggregateCol, nil)
	}
	return counts, nil
}

func (c *choiceTx) tally(ctx context.Context, target uuid.UUID) (map[string]int, error) {
	counts := make(map[string]int)

	if c.t.choiceCol == "" {
		n, err := c.CountRecords(ctx, target)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			counts[c.t.presence] = n
		}
		return counts, nil
	}

	rows, err := c.tx.Query(ctx, fmt.Sprintf(`SELECT %s, count(*) FROM %s WHERE %s = $1 GROUP BY %s`,
		c.t.choiceCol, c.t.records, c.t.targetCol, c.t.choiceCol), target)
	if err != nil {
		return nil, mapError(err, "tally "+c.t.records, nil)
	}
	defer rows.Close()

	for rows.Next() {
		var choice string
		var n int
		if err := rows.Scan(&choice, &n); err != nil {
			return nil, mapError(err, "scan tally", nil)
		}
		counts[choice] = n
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "tally "+c.t.records, nil)
	}
	return counts, nil
}

func (c *choiceTx) CountRecords(ctx context.Context, target uuid.UUID) (int, error) {
	var n int
	err := c.tx.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1`, c.t.records, c.t.targetCol), target).Scan(&n)
	if err != nil {
		return 0, mapError(err, "count "+c.t.records, nil)
	}
	return n, nil
}
