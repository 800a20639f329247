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

type MessageSendInput struct {
	ConversationID uint   `json:"conversation_id"`
	Content        string `json:"content"`
}

type ReactionInput struct {
	Emoji string `json:"emoji"`
}

type MessageViewOut struct {
	Id           uint      `json:"id"`
	Created      time.Time `json:"created"`
	Conversation uint      `json:"conversation"`
	Sender       uint      `json:"sender"`
	Content      string    `json:"content"`
	Deleted      bool      `json:"deleted"`
	SeenBy       []uint    `json:"seen_by"`
	Reactions    []struct {
		User  uint   `json:"user"`
		Emoji string `json:"emoji"`
	} `json:"reactions"`
}

func messageViewOut(message *model.Message) MessageViewOut {
	view := MessageViewOut{
		Id:           message.ID,
		Created:      message.CreatedAt,
		Conversation: message.ConversationID,
		Sender:       message.SenderID,
		Content:      message.Content,
		Deleted:      message.IsDeleted,
		SeenBy:       make([]uint, 0, len(message.SeenBy)),
	}
	for _, seen := range message.SeenBy {
		view.SeenBy = append(view.SeenBy, seen.UserID)
	}
	for _, reaction := range message.Reactions {
		view.Reactions = append(view.Reactions, struct {
			User  uint   `json:"user"`
			Emoji string `json:"emoji"`
		}{User: reaction.UserID, Emoji: reaction.Emoji})
	}
	return view
}

func MessageSend(c *fiber.Ctx) error {
	user, err := requester(c)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "Unknown user")
	}

	input := new(MessageSendInput)
	if err := c.BodyParser(input); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	messages := service.NewMessageService(database.Postgres)
	message, err := messages.Send(input.ConversationID, user.ID, input.Content)
	if err != nil {
		return serviceError(c, err)
	}

	event.EmitJSON(event.ActionMessageSent, map[string]uint{
		"conversation_id": input.ConversationID,
		"message_id":      message.ID,
		"sender_id":       user.ID,
	})

	return ok(c, fiber.Map{"id": message.ID})
}

func MessageList(c *fiber.Ctx) error {
	conversationID, err := strconv.ParseUint(c.Params("conversationId"), 10, 64)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid conversation id")
	}

	messages := service.NewMessageService(database.Postgres)
	list, err := messages.GetMessages(uint(conversationID))
	if err != nil {
		return serviceError(c, err)
	}

	views := make([]MessageViewOut, 0, len(list))
	for i := range list {
		views = append(views, messageViewOut(&list[i]))
	}
	return ok(c, views)
}

// MessageSeen marks every message of a conversation seen by the
// requester. Idempotent.
func MessageSeen(c *fiber.Ctx) error {
	user, err := requester(c)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "Unknown user")
	}

	conversationID, err := strconv.ParseUint(c.Params("conversationId"), 10, 64)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid conversation id")
	}

	messages := service.NewMessageService(database.Postgres)
	if err := messages.MarkSeen(uint(conversationID), user.ID); err != nil {
		return serviceError(c, err)
	}
	return ok(c, nil)
}

func TypingStart(c *fiber.Ctx) error {
	user, err := requester(c)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "Unknown user")
	}

	conversationID, err := strconv.ParseUint(c.Params("conversationId"), 10, 64)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid conversation id")
	}

	messages := service.NewMessageService(database.Postgres)
	if err := messages.SetTyping(uint(conversationID), user.ID); err != nil {
		return serviceError(c, err)
	}
	return ok(c, nil)
}

func TypingStop(c *fiber.Ctx) error {
	conversationID, err := strconv.ParseUint(c.Params("conversationId"), 10, 64)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid conversation id")
	}

	messages := service.NewMessageService(database.Postgres)
	if err := messages.ClearTyping(uint(conversationID)); err != nil {
		return serviceError(c, err)
	}
	return ok(c, nil)
}

func ReactionToggle(c *fiber.Ctx) error {
	user, err := requester(c)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "Unknown user")
	}

	messageID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid message id")
	}

	input := new(ReactionInput)
	if err := c.BodyParser(input); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	messages := service.NewMessageService(database.Postgres)
	if err := messages.ToggleReaction(uint(messageID), user.ID, input.Emoji); err != nil {
		return serviceError(c, err)
	}
	return ok(c, nil)
}

func MessageDelete(c *fiber.Ctx) error {
	user, err := requester(c)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "Unknown user")
	}

	messageID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid message id")
	}

	messages := service.NewMessageService(database.Postgres)
	if err := messages.Delete(uint(messageID), user.ID); err != nil {
		return serviceError(c, err)
	}

	event.EmitJSON(event.ActionMessageDeleted, map[string]uint{"message_id": uint(messageID)})

	return ok(c, nil)
}
