package controller

import (
	"strconv"
	"time"

	"chat-service/database"
	"chat-service/event"
	"chat-service/model"
	"chat-service/service"

	"github.com/gofiber/fiber/v2"
)

type ConversationCreateInput struct {
	UserID uint `json:"user_id"`
}

type GroupCreateInput struct {
	Name    string `json:"name"`
	Members []uint `json:"members"`
}

type GroupUpdateInput struct {
	Name    *string `json:"name"`
	Members []uint  `json:"members"`
}

type ConversationView struct {
	Id         uint       `json:"id"`
	IsGroup    bool       `json:"is_group"`
	Name       string     `json:"name,omitempty"`
	CreatedBy  *uint      `json:"created_by,omitempty"`
	Members    []UserRef  `json:"members"`
	UpdatedAt  time.Time  `json:"updated_at"`
	TypingUser *uint      `json:"typing_user,omitempty"`
}

type UserRef struct {
	Id     uint   `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Online bool   `json:"online"`
}

func conversationView(conversation *model.Conversation) ConversationView {
	members := make([]UserRef, 0, len(conversation.Members))
	for _, member := range conversation.Members {
		members = append(members, UserRef{
			Id:     member.User.ID,
			Name:   member.User.Name,
			Avatar: member.User.Avatar,
			Online: member.User.Online,
		})
	}
	return ConversationView{
		Id:         conversation.ID,
		IsGroup:    conversation.IsGroup,
		Name:       conversation.Name,
		CreatedBy:  conversation.CreatedByID,
		Members:    members,
		UpdatedAt:  conversation.UpdatedAt,
		TypingUser: conversation.ActiveTypist(time.Now(), service.TypingTTL),
	}
}

// ConversationCreate is the idempotent get-or-create for a direct
// conversation with another user.
func ConversationCreate(c *fiber.Ctx) error {
	user, err := requester(c)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "Unknown user")
	}

	input := new(ConversationCreateInput)
	if err := c.BodyParser(input); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	conversations := service.NewConversationService(database.Postgres)
	id, err := conversations.GetOrCreate(user.ID, input.UserID)
	if err != nil {
		return serviceError(c, err)
	}

	event.EmitJSON(event.ActionConversationCreated, map[string]uint{"conversation_id": id})

	return ok(c, fiber.Map{"id": id})
}

// ConversationBetween resolves the direct conversation with another
// user, if one exists.
func ConversationBetween(c *fiber.Ctx) error {
	user, err := requester(c)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "Unknown user")
	}

	otherID, err := strconv.ParseUint(c.Params("userId"), 10, 64)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid user id")
	}

	conversations := service.NewConversationService(database.Postgres)
	conversation, err := conversations.GetBetweenUsers(user.ID, uint(otherID))
	if err != nil {
		return serviceError(c, err)
	}
	if conversation == nil {
		return ok(c, nil)
	}
	return ok(c, conversationView(conversation))
}

func ConversationGet(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid conversation id")
	}

	conversations := service.NewConversationService(database.Postgres)
	conversation, err := conversations.Get(uint(id))
	if err != nil {
		return serviceError(c, err)
	}
	return ok(c, conversationView(conversation))
}

func GroupCreate(c *fiber.Ctx) error {
	user, err := requester(c)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "Unknown user")
	}

	input := new(GroupCreateInput)
	if err := c.BodyParser(input); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	conversations := service.NewConversationService(database.Postgres)
	id, err := conversations.CreateGroup(input.Name, input.Members, user.ID)
	if err != nil {
		return serviceError(c, err)
	}

	event.EmitJSON(event.ActionConversationCreated, map[string]uint{"conversation_id": id})

	return ok(c, fiber.Map{"id": id})
}

func GroupUpdate(c *fiber.Ctx) error {
	user, err := requester(c)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "Unknown user")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid conversation id")
	}

	input := new(GroupUpdateInput)
	if err := c.BodyParser(input); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	conversations := service.NewConversationService(database.Postgres)
	if err := conversations.UpdateGroup(uint(id), user.ID, input.Name, input.Members); err != nil {
		return serviceError(c, err)
	}

	event.EmitJSON(event.ActionGroupUpdated, map[string]uint{"conversation_id": uint(id)})

	return ok(c, nil)
}

// ConversationsUnread serves the conversations-with-unread read for
// the requester, newest first.
func ConversationsUnread(c *fiber.Ctx) error {
	user, err := requester(c)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "Unknown user")
	}

	messages := service.NewMessageService(database.Postgres)
	summaries, err := messages.GetConversationsWithUnread(user.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return ok(c, summaries)
}
