package user

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"backend-trailator/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrUnauthorized = errors.New("unauthorized")
)

const (
	leaderboardKey = "leaderboard"
	leaderboardTTL = 30 * time.Second
)

type Service struct {
	db    db.Querier
	redis *redis.Client
}

func NewService(db db.Querier, redisClient *redis.Client) *Service {
	return &Service{db: db, redis: redisClient}
}

const selectUserColumns = `
	SELECT id, email, name, last_name, COALESCE(image_url,''),
	       points, objects_added, comments_posted, locations_visited,
	       rank, achieved_badges,
	       COALESCE(ST_Y(location::geometry),0), COALESCE(ST_X(location::geometry),0),
	       created_at
	FROM users`

func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	row := s.db.QueryRow(ctx, selectUserColumns+` WHERE id=$1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// UpdateProfile changes the editable profile fields. Author names already
// denormalized onto existing trail objects deliberately stay as they were
// at object creation time.
func (s *Service) UpdateProfile(ctx context.Context, id, name, lastName, imageURL string) error {
	query := `UPDATE users SET name=$2, last_name=$3 WHERE id=$1`
	args := []any{id, name, lastName}
	if imageURL != "" {
		query = `UPDATE users SET name=$2, last_name=$3, image_url=$4 WHERE id=$1`
		args = append(args, imageURL)
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateLocation stores the user's last known position.
func (s *Service) UpdateLocation(ctx context.Context, id string, lat, lng float64) error {
	_, err := s.db.Exec(ctx, `
		UPDATE users
		SET location=ST_SetSRID(ST_MakePoint($2,$3), 4326)::geography
		WHERE id=$1
	`, id, lng, lat)
	return err
}

// Leaderboard returns users ordered by points, highest first. The result
// is cached briefly in redis since the rankings screen polls it.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]User, error) {
	if limit <= 0 {
		limit = 50
	}

	if s.redis != nil {
		cached, err := s.redis.Get(ctx, leaderboardKey).Bytes()
		if err == nil {
			var users []User
			if err := json.Unmarshal(cached, &users); err == nil {
				return users, nil
			}
		}
	}

	rows, err := s.db.Query(ctx, selectUserColumns+` ORDER BY points DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	if s.redis != nil {
		if payload, err := json.Marshal(users); err == nil {
			if err := s.redis.Set(ctx, leaderboardKey, payload, leaderboardTTL).Err(); err != nil {
				log.Printf("leaderboard cache set failed: %v", err)
			}
		}
	}
	return users, nil
}

// DeleteAccount removes the user and everything hanging off the row via
// foreign keys (visited objects, ratings, comments, refresh tokens).
// Only the account owner may delete it.
func (s *Service) DeleteAccount(ctx context.Context, id, requesterID string) error {
	if id != requesterID {
		return ErrUnauthorized
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.LastName, &u.ImageURL,
		&u.Points, &u.ObjectsAdded, &u.CommentsPosted, &u.LocationsVisited,
		&u.Rank, &u.AchievedBadges, &u.Lat, &u.Lng, &u.CreatedAt)
	return u, err
}
