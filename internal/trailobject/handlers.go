package trailobject

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req NewObject
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.AuthorID == "" {
			req.AuthorID = userIDFromLocals(c)
		}
		obj, err := svc.AddTrailObject(c.Context(), req)
		if err != nil {
			return errorToHTTP(err)
		}
		return c.Status(fiber.StatusCreated).JSON(obj)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		filter, err := filterFromQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		objects, err := svc.QueryTrailObjects(c.Context(), filter)
		if err != nil {
			return errorToHTTP(err)
		}
		if objects == nil {
			objects = []TrailObject{}
		}
		return c.JSON(objects)
	})

	r.Get("/watch", websocket.New(func(conn *websocket.Conn) {
		watchSocket(conn, svc)
	}))

	r.Get("/:id", func(c *fiber.Ctx) error {
		obj, err := svc.GetTrailObject(c.Context(), c.Params("id"))
		if err != nil {
			return errorToHTTP(err)
		}
		return c.JSON(obj)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeleteTrailObject(c.Context(), c.Params("id"), userIDFromLocals(c)); err != nil {
			return errorToHTTP(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/ratings", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Rating int `json:"rating"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := svc.AddRating(c.Context(), c.Params("id"), userIDFromLocals(c), body.Rating); err != nil {
			return errorToHTTP(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/comments", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Text string `json:"text"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		comment, err := svc.AddComment(c.Context(), c.Params("id"), userIDFromLocals(c), body.Text)
		if err != nil {
			return errorToHTTP(err)
		}
		return c.Status(fiber.StatusCreated).JSON(comment)
	})
}

// watchSocket streams filtered snapshots over a websocket until the client
// disconnects.
func watchSocket(conn *websocket.Conn, svc *Service) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	filter := filterFromWatchQuery(conn)
	snapshots, err := svc.WatchTrailObjects(ctx, filter)
	if err != nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"watch failed"}`))
		return
	}

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for objects := range snapshots {
		payload, err := json.Marshal(objects)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func userIDFromLocals(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func errorToHTTP(err error) *fiber.Error {
	switch {
	case errors.Is(err, ErrInvalid):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrUnauthorized):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

func filterFromQuery(c *fiber.Ctx) (Filter, error) {
	var filter Filter
	filter.AuthorID = c.Query("author_id")
	filter.SearchQuery = c.Query("q")
	filter.Difficulty = Difficulty(c.Query("difficulty"))

	if v := c.Query("types"); v != "" {
		for _, t := range strings.Split(v, ",") {
			filter.Types = append(filter.Types, Type(t))
		}
	}
	if v := c.Query("tags"); v != "" {
		filter.Tags = strings.Split(v, ",")
	}
	if v := c.Query("min_rating"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Filter{}, err
		}
		filter.MinRating = r
	}
	if v := c.Query("date_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return Filter{}, err
		}
		filter.DateFrom = t
	}
	if v := c.Query("date_to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return Filter{}, err
		}
		filter.DateTo = t
	}

	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr != "" && lngStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return Filter{}, err
		}
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			return Filter{}, err
		}
		filter.Center = &LatLng{Lat: lat, Lng: lng}
		if v := c.Query("radius_m"); v != "" {
			radius, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return Filter{}, err
			}
			filter.RadiusM = radius
		}
	}

	return filter, nil
}

func filterFromWatchQuery(conn *websocket.Conn) Filter {
	var filter Filter
	filter.AuthorID = conn.Query("author_id")
	filter.SearchQuery = conn.Query("q")
	if v := conn.Query("types"); v != "" {
		for _, t := range strings.Split(v, ",") {
			filter.Types = append(filter.Types, Type(t))
		}
	}
	if v := conn.Query("min_rating"); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinRating = r
		}
	}
	latStr, lngStr := conn.Query("lat"), conn.Query("lng")
	if latStr != "" && lngStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lng, errLng := strconv.ParseFloat(lngStr, 64)
		if errLat == nil && errLng == nil {
			filter.Center = &LatLng{Lat: lat, Lng: lng}
			if r, err := strconv.ParseFloat(conn.Query("radius_m"), 64); err == nil {
				filter.RadiusM = r
			}
		}
	}
	return filter
}
