package upload

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)

		header, err := c.FormFile("image")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "image file is required")
		}

		file, err := header.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "cannot read image file")
		}
		defer file.Close()

		img, err := svc.UploadImage(c.Context(), userID, file, c.FormValue("folder"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(img)
	})
}
