package reputation

import (
	"context"
	"log"
	"time"

	"backend-trailator/internal/db"

	"github.com/jackc/pgx/v5"
)

type Action string

const (
	ActionAddObject     Action = "ADD_OBJECT"
	ActionRateObject    Action = "RATE_OBJECT"
	ActionComment       Action = "COMMENT"
	ActionVisitLocation Action = "VISIT_LOCATION"
)

var actionPoints = map[Action]int64{
	ActionAddObject:     50,
	ActionRateObject:    5,
	ActionComment:       10,
	ActionVisitLocation: 15,
}

// Points returns the award value of the action, 0 for unknown actions.
func (a Action) Points() int64 {
	return actionPoints[a]
}

const awardTimeout = 10 * time.Second

// Engine applies gamified actions to a user's aggregate record. Every
// award runs as a single transaction holding a row lock on the user, so
// concurrent awards for the same user cannot lose increments.
type Engine struct {
	db db.TxQuerier
}

func NewEngine(db db.TxQuerier) *Engine {
	return &Engine{db: db}
}

// AwardPoints adds the action's points to the user, bumps the matching
// counter, and recomputes rank and badges atomically.
func (e *Engine) AwardPoints(ctx context.Context, userID string, action Action) error {
	return db.InTx(ctx, e.db, func(tx pgx.Tx) error {
		return applyAward(ctx, tx, userID, action)
	})
}

// AwardVisitPoints credits a visit to objectID exactly once per user. A
// repeated call for the same pair is a no-op. The membership check and the
// award share one transaction, so two concurrent detections cannot both
// pass the not-yet-visited check.
func (e *Engine) AwardVisitPoints(ctx context.Context, userID, objectID string) error {
	return db.InTx(ctx, e.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO visited_objects (user_id, object_id)
			VALUES ($1,$2)
			ON CONFLICT DO NOTHING
		`, userID, objectID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		return applyAward(ctx, tx, userID, ActionVisitLocation)
	})
}

// BestEffortAward awards points in the background without blocking the
// caller. The primary action is never rolled back when the award fails;
// failures are only logged.
func (e *Engine) BestEffortAward(userID string, action Action) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), awardTimeout)
		defer cancel()
		if err := e.AwardPoints(ctx, userID, action); err != nil {
			log.Printf("award %s for user %s failed: %v", action, userID, err)
		}
	}()
}

func applyAward(ctx context.Context, tx pgx.Tx, userID string, action Action) error {
	var points, objectsAdded, commentsPosted, locationsVisited int64
	var achievedBadges []string
	row := tx.QueryRow(ctx, `
		SELECT points, objects_added, comments_posted, locations_visited, achieved_badges
		FROM users WHERE id=$1
		FOR UPDATE
	`, userID)
	if err := row.Scan(&points, &objectsAdded, &commentsPosted, &locationsVisited, &achievedBadges); err != nil {
		return err
	}

	points += action.Points()
	switch action {
	case ActionAddObject:
		objectsAdded++
	case ActionComment:
		commentsPosted++
	case ActionVisitLocation:
		locationsVisited++
	}

	rank := RankFromPoints(points)
	badges := mergeBadges(achievedBadges, unlockedBadges(objectsAdded, commentsPosted, locationsVisited))

	_, err := tx.Exec(ctx, `
		UPDATE users
		SET points=$2, objects_added=$3, comments_posted=$4, locations_visited=$5,
		    rank=$6, achieved_badges=$7
		WHERE id=$1
	`, userID, points, objectsAdded, commentsPosted, locationsVisited, string(rank), badges)
	return err
}
