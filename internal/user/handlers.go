package user

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/leaderboard", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit"))
		users, err := svc.Leaderboard(c.Context(), limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if users == nil {
			users = []User{}
		}
		return c.JSON(users)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		u, err := svc.GetUser(c.Context(), c.Params("id"))
		if err != nil {
			return errorToHTTP(err)
		}
		return c.JSON(u)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if c.Params("id") != requesterID(c) {
			return fiber.NewError(fiber.StatusForbidden, "unauthorized")
		}
		var body struct {
			Name     string `json:"name"`
			LastName string `json:"last_name"`
			ImageURL string `json:"image_url"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name required")
		}
		if err := svc.UpdateProfile(c.Context(), c.Params("id"), body.Name, body.LastName, body.ImageURL); err != nil {
			return errorToHTTP(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Put("/:id/location", authMiddleware, func(c *fiber.Ctx) error {
		if c.Params("id") != requesterID(c) {
			return fiber.NewError(fiber.StatusForbidden, "unauthorized")
		}
		var body struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := svc.UpdateLocation(c.Context(), c.Params("id"), body.Lat, body.Lng); err != nil {
			return errorToHTTP(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeleteAccount(c.Context(), c.Params("id"), requesterID(c)); err != nil {
			return errorToHTTP(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func requesterID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func errorToHTTP(err error) *fiber.Error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrUnauthorized):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
