package trailobject

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"backend-trailator/internal/db"
	"backend-trailator/internal/reputation"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

// changeChannel carries object ids of mutated trail objects so watchers
// can re-query.
const changeChannel = "trail_objects:changed"

// Awarder is the reputation side effect hook. Awards are best effort: the
// primary write never waits for them and never fails because of them.
type Awarder interface {
	BestEffortAward(userID string, action reputation.Action)
}

type Service struct {
	db     db.TxQuerier
	redis  *redis.Client
	awards Awarder
}

func NewService(db db.TxQuerier, redisClient *redis.Client, awards Awarder) *Service {
	return &Service{db: db, redis: redisClient, awards: awards}
}

// NewObject carries the author-supplied fields of a trail object.
type NewObject struct {
	AuthorID    string  `json:"author_id"`
	Type        Type    `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`

	PhotoURLs    []string     `json:"photo_urls"`
	Difficulty   Difficulty   `json:"difficulty,omitempty"`
	WaterQuality WaterQuality `json:"water_quality,omitempty"`
	Capacity     int          `json:"capacity,omitempty"`
	ElevationM   float64      `json:"elevation_m,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
}

func (in NewObject) validate() error {
	if in.AuthorID == "" {
		return fmt.Errorf("%w: author_id required", ErrInvalid)
	}
	if in.Title == "" {
		return fmt.Errorf("%w: title required", ErrInvalid)
	}
	if _, ok := knownTypes[in.Type]; !ok {
		return fmt.Errorf("%w: unknown object type %q", ErrInvalid, in.Type)
	}
	if in.Lat < -90 || in.Lat > 90 || in.Lng < -180 || in.Lng > 180 {
		return fmt.Errorf("%w: location out of range", ErrInvalid)
	}
	if len(in.PhotoURLs) > 5 {
		return fmt.Errorf("%w: at most 5 photos per object", ErrInvalid)
	}
	return nil
}

// AddTrailObject creates a trail object. The author name is resolved once
// at creation time and frozen on the object; later profile edits do not
// rewrite it.
func (s *Service) AddTrailObject(ctx context.Context, input NewObject) (TrailObject, error) {
	if err := input.validate(); err != nil {
		return TrailObject{}, err
	}

	authorName := s.lookupUserName(ctx, input.AuthorID)

	obj := TrailObject{
		ID:           uuid.NewString(),
		AuthorID:     input.AuthorID,
		AuthorName:   authorName,
		Type:         input.Type,
		Title:        input.Title,
		Description:  input.Description,
		Lat:          input.Lat,
		Lng:          input.Lng,
		PhotoURLs:    input.PhotoURLs,
		Ratings:      map[string]int{},
		Difficulty:   input.Difficulty,
		WaterQuality: input.WaterQuality,
		Capacity:     input.Capacity,
		ElevationM:   input.ElevationM,
		Tags:         input.Tags,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO trail_objects (id, author_id, author_name, type, title, description, location,
		                           photo_urls, difficulty, water_quality, capacity, elevation_m, tags)
		VALUES ($1,$2,$3,$4,$5,$6, ST_SetSRID(ST_MakePoint($7,$8), 4326)::geography, $9,$10,$11,$12,$13,$14)
		RETURNING created_at, last_interaction_at
	`, obj.ID, obj.AuthorID, obj.AuthorName, string(obj.Type), obj.Title, obj.Description,
		obj.Lng, obj.Lat, obj.PhotoURLs, string(obj.Difficulty), string(obj.WaterQuality),
		obj.Capacity, obj.ElevationM, obj.Tags)
	if err := row.Scan(&obj.CreatedAt, &obj.LastInteractionAt); err != nil {
		return TrailObject{}, err
	}

	s.awards.BestEffortAward(obj.AuthorID, reputation.ActionAddObject)
	s.publishChanged(ctx, obj.ID)
	return obj, nil
}

const selectObjectColumns = `
	SELECT id, author_id, author_name, type, title, description,
	       ST_Y(location::geometry), ST_X(location::geometry),
	       photo_urls, COALESCE(difficulty,''), COALESCE(water_quality,''),
	       COALESCE(capacity,0), COALESCE(elevation_m,0), tags,
	       created_at, last_interaction_at
	FROM trail_objects`

func (s *Service) GetTrailObject(ctx context.Context, id string) (TrailObject, error) {
	row := s.db.QueryRow(ctx, selectObjectColumns+` WHERE id=$1`, id)
	obj, err := scanObject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TrailObject{}, ErrNotFound
		}
		return TrailObject{}, err
	}

	ratings, err := s.loadRatings(ctx, []string{obj.ID})
	if err != nil {
		return TrailObject{}, err
	}
	obj.Ratings = ratings[obj.ID]
	if obj.Ratings == nil {
		obj.Ratings = map[string]int{}
	}

	comments, err := s.loadComments(ctx, obj.ID)
	if err != nil {
		return TrailObject{}, err
	}
	obj.Comments = comments
	return obj, nil
}

// QueryTrailObjects runs a filtered query. The author and createdAt range
// predicates are pushed into SQL, the remaining predicates run in-process.
// An empty filter returns every object.
func (s *Service) QueryTrailObjects(ctx context.Context, filter Filter) ([]TrailObject, error) {
	query := selectObjectColumns
	var where []string
	var args []any

	if filter.AuthorID != "" {
		args = append(args, filter.AuthorID)
		where = append(where, fmt.Sprintf("author_id=$%d", len(args)))
	}
	if !filter.DateFrom.IsZero() {
		args = append(args, filter.DateFrom)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !filter.DateTo.IsZero() {
		args = append(args, filter.DateTo)
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var objects []TrailObject
	var ids []string
	for rows.Next() {
		obj, err := scanObject(rows)
		if err != nil {
			return nil, err
		}
		ids = append(ids, obj.ID)
		objects = append(objects, obj)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	ratings, err := s.loadRatings(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range objects {
		objects[i].Ratings = ratings[objects[i].ID]
		if objects[i].Ratings == nil {
			objects[i].Ratings = map[string]int{}
		}
	}

	return applyFilters(objects, filter), nil
}

// WatchTrailObjects emits the current filtered snapshot immediately and
// re-emits on every change notification until ctx is cancelled. Without a
// redis client it degrades to single-shot semantics: one snapshot, then
// the channel closes.
func (s *Service) WatchTrailObjects(ctx context.Context, filter Filter) (<-chan []TrailObject, error) {
	snapshot, err := s.QueryTrailObjects(ctx, filter)
	if err != nil {
		return nil, err
	}

	ch := make(chan []TrailObject, 1)
	ch <- snapshot

	if s.redis == nil {
		close(ch)
		return ch, nil
	}

	pubsub := s.redis.Subscribe(ctx, changeChannel)
	go func() {
		defer close(ch)
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				objects, err := s.QueryTrailObjects(ctx, filter)
				if err != nil {
					log.Printf("watch re-query failed: %v", err)
					continue
				}
				select {
				case ch <- objects:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

// AddRating records or replaces a user's 1-5 rating of an object. Each
// user keeps at most one rating, last write wins.
func (s *Service) AddRating(ctx context.Context, objectID, userID string, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalid)
	}

	err := db.InTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := lockObject(ctx, tx, objectID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO object_ratings (object_id, user_id, rating)
			VALUES ($1,$2,$3)
			ON CONFLICT (object_id, user_id) DO UPDATE SET rating=EXCLUDED.rating
		`, objectID, userID, rating); err != nil {
			return err
		}
		return touchObject(ctx, tx, objectID)
	})
	if err != nil {
		return err
	}

	s.awards.BestEffortAward(userID, reputation.ActionRateObject)
	s.publishChanged(ctx, objectID)
	return nil
}

// AddComment appends a comment. Concurrent comments from different users
// both survive: the append happens inside a transaction holding the
// object's row lock.
func (s *Service) AddComment(ctx context.Context, objectID, userID, text string) (Comment, error) {
	if text == "" {
		return Comment{}, fmt.Errorf("%w: text required", ErrInvalid)
	}

	comment := Comment{
		ID:       uuid.NewString(),
		UserID:   userID,
		UserName: s.lookupUserName(ctx, userID),
		Text:     text,
	}

	err := db.InTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := lockObject(ctx, tx, objectID); err != nil {
			return err
		}
		row := tx.QueryRow(ctx, `
			INSERT INTO object_comments (id, object_id, user_id, user_name, text)
			VALUES ($1,$2,$3,$4,$5)
			RETURNING created_at
		`, comment.ID, objectID, comment.UserID, comment.UserName, comment.Text)
		if err := row.Scan(&comment.CreatedAt); err != nil {
			return err
		}
		return touchObject(ctx, tx, objectID)
	})
	if err != nil {
		return Comment{}, err
	}

	s.awards.BestEffortAward(userID, reputation.ActionComment)
	s.publishChanged(ctx, objectID)
	return comment, nil
}

// DeleteTrailObject removes an object. Only the author may delete it.
func (s *Service) DeleteTrailObject(ctx context.Context, objectID, requesterID string) error {
	var authorID string
	err := s.db.QueryRow(ctx, `SELECT author_id FROM trail_objects WHERE id=$1`, objectID).Scan(&authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if authorID != requesterID {
		return ErrUnauthorized
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM trail_objects WHERE id=$1`, objectID); err != nil {
		return err
	}
	s.publishChanged(ctx, objectID)
	return nil
}

func (s *Service) lookupUserName(ctx context.Context, userID string) string {
	var name string
	err := s.db.QueryRow(ctx, `SELECT name FROM users WHERE id=$1`, userID).Scan(&name)
	if err != nil || name == "" {
		return "Anonymous"
	}
	return name
}

func (s *Service) loadRatings(ctx context.Context, objectIDs []string) (map[string]map[string]int, error) {
	ratings := map[string]map[string]int{}
	if len(objectIDs) == 0 {
		return ratings, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT object_id, user_id, rating
		FROM object_ratings WHERE object_id = ANY($1)
	`, objectIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var objectID, userID string
		var rating int
		if err := rows.Scan(&objectID, &userID, &rating); err != nil {
			return nil, err
		}
		if ratings[objectID] == nil {
			ratings[objectID] = map[string]int{}
		}
		ratings[objectID][userID] = rating
	}
	return ratings, rows.Err()
}

func (s *Service) loadComments(ctx context.Context, objectID string) ([]Comment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, user_name, text, created_at
		FROM object_comments WHERE object_id=$1
		ORDER BY created_at
	`, objectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.UserID, &c.UserName, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *Service) publishChanged(ctx context.Context, objectID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Publish(ctx, changeChannel, objectID).Err(); err != nil {
		log.Printf("redis publish error: %v", err)
	}
}

func lockObject(ctx context.Context, tx pgx.Tx, objectID string) error {
	var id string
	err := tx.QueryRow(ctx, `SELECT id FROM trail_objects WHERE id=$1 FOR UPDATE`, objectID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func touchObject(ctx context.Context, tx pgx.Tx, objectID string) error {
	_, err := tx.Exec(ctx, `UPDATE trail_objects SET last_interaction_at=now() WHERE id=$1`, objectID)
	return err
}

func scanObject(row pgx.Row) (TrailObject, error) {
	var obj TrailObject
	var objType, difficulty, waterQuality string
	err := row.Scan(&obj.ID, &obj.AuthorID, &obj.AuthorName, &objType, &obj.Title, &obj.Description,
		&obj.Lat, &obj.Lng, &obj.PhotoURLs, &difficulty, &waterQuality,
		&obj.Capacity, &obj.ElevationM, &obj.Tags, &obj.CreatedAt, &obj.LastInteractionAt)
	if err != nil {
		return TrailObject{}, err
	}
	obj.Type = Type(objType)
	obj.Difficulty = Difficulty(difficulty)
	obj.WaterQuality = WaterQuality(waterQuality)
	return obj, nil
}
