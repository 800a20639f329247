package controller

import (
	"errors"

	"chat-service/database"
	"chat-service/model"
	"chat-service/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// requester resolves the authenticated external subject to its user
// directory row.
func requester(c *fiber.Ctx) (*model.User, error) {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	subject, _ := claims["sub"].(string)

	user := new(model.User)
	if err := database.Postgres.Where("external_id = ?", subject).First(&user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data":    data,
	})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"data":    nil,
	})
}

// serviceError maps the service error taxonomy onto HTTP statuses.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSelfConversation),
		errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrInvalidEmoji),
		errors.Is(err, service.ErrInsufficientMembers),
		errors.Is(err, service.ErrNotAGroup):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotAuthorized),
		errors.Is(err, service.ErrNotAMember):
		return fail(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrConversationNotFound),
		errors.Is(err, service.ErrMessageNotFound):
		return fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrMessageDeleted):
		return fail(c, fiber.StatusConflict, err.Error())
	}
	return fail(c, fiber.StatusInternalServerError, "Internal server error")
}
