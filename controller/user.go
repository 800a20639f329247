package controller

import (
	"chat-service/database"
	"chat-service/event"
	"chat-service/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

type UserSyncInput struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// UserSync upserts the directory row for the authenticated subject.
// Called by the client on every sign-in.
func UserSync(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	subject, _ := claims["sub"].(string)

	input := new(UserSyncInput)
	if err := c.BodyParser(input); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	users := service.NewUserService(database.Postgres)
	id, err := users.Upsert(subject, input.Name, input.Avatar)
	if err != nil {
		return serviceError(c, err)
	}

	event.EmitJSON(event.ActionUserOnline, map[string]uint{"user_id": id})

	return ok(c, fiber.Map{"id": id})
}

func UserOffline(c *fiber.Ctx) error {
	user, err := requester(c)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "Unknown user")
	}

	users := service.NewUserService(database.Postgres)
	if err := users.SetOffline(user.ID); err != nil {
		return serviceError(c, err)
	}

	event.EmitJSON(event.ActionUserOffline, map[string]uint{"user_id": user.ID})

	return ok(c, nil)
}

func UserList(c *fiber.Ctx) error {
	users := service.NewUserService(database.Postgres)
	list, err := users.GetUsers()
	if err != nil {
		return serviceError(c, err)
	}
	return ok(c, list)
}

func UserSearch(c *fiber.Ctx) error {
	user, err := requester(c)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "Unknown user")
	}

	users := service.NewUserService(database.Postgres)
	list, err := users.SearchUsers(c.Query("q"), user.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return ok(c, list)
}

// UserProfile returns the authenticated user's own directory row.
func UserProfile(c *fiber.Ctx) error {
	user, err := requester(c)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "Unknown user")
	}

	return ok(c, fiber.Map{
		"id":          user.ID,
		"created":     user.CreatedAt.Unix(),
		"external_id": user.ExternalID,
		"name":        user.Name,
		"avatar":      user.Avatar,
		"online":      user.Online,
		"last_seen":   user.LastSeen.Unix(),
	})
}
