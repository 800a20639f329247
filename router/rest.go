package router

import (
	"chat-service/controller"
	"chat-service/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func Rest(app *fiber.App) {
	api := app.Group("/v1", logger.New())

	// User
	user := api.Group("/user", middleware.JWT())
	user.Post("/sync", controller.UserSync)
	user.Post("/offline", controller.UserOffline)
	user.Get("/profile", controller.UserProfile)
	user.Get("/list", controller.UserList)
	user.Get("/search", controller.UserSearch)

	// Conversation
	conversation := api.Group("/conversation", middleware.JWT())
	conversation.Post("/direct", controller.ConversationCreate)
	conversation.Get("/direct/:userId", controller.ConversationBetween)
	conversation.Post("/group", controller.GroupCreate)
	conversation.Put("/group/:id", controller.GroupUpdate)
	conversation.Get("/unread", controller.ConversationsUnread)
	conversation.Get("/:id", controller.ConversationGet)

	// Message
	message := api.Group("/message", middleware.JWT())
	message.Post("/send", controller.MessageSend)
	message.Get("/list/:conversationId", controller.MessageList)
	message.Post("/seen/:conversationId", controller.MessageSeen)
	message.Post("/typing/:conversationId", controller.TypingStart)
	message.Delete("/typing/:conversationId", controller.TypingStop)
	message.Post("/reaction/:id", controller.ReactionToggle)
	message.Delete("/:id", controller.MessageDelete)
}
