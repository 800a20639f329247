package router

import (
	"strconv"
	"time"

	"chat-service/database"
	"chat-service/event"
	"chat-service/model"
	"chat-service/service"
	"chat-service/socketio"

	"github.com/zishang520/socket.io/v2/socket"
)

type InitConnection struct {
	Users         []UserView                    `json:"users"`
	Conversations []service.ConversationSummary `json:"conversations"`
	UserStatus    []UserStatus                  `json:"userStatus"`
}

type UserView struct {
	Id     uint   `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Online bool   `json:"online"`
}

type UserStatus struct {
	Id     uint `json:"id"`
	Status bool `json:"status"`
}

type MessageView struct {
	Id           uint           `json:"id"`
	Created      time.Time      `json:"created"`
	Conversation uint           `json:"conversation"`
	Sender       uint           `json:"sender"`
	Content      string         `json:"content"`
	Deleted      bool           `json:"deleted"`
	SeenBy       []uint         `json:"seenBy"`
	Reactions    []ReactionView `json:"reactions"`
}

type ReactionView struct {
	User  uint   `json:"user"`
	Emoji string `json:"emoji"`
}

type TypingView struct {
	Conversation uint `json:"conversation"`
	User         uint `json:"user"`
}

func messageView(message *model.Message) MessageView {
	seenBy := make([]uint, 0, len(message.SeenBy))
	for _, seen := range message.SeenBy {
		seenBy = append(seenBy, seen.UserID)
	}
	reactions := make([]ReactionView, 0, len(message.Reactions))
	for _, reaction := range message.Reactions {
		reactions = append(reactions, ReactionView{
			User:  reaction.UserID,
			Emoji: reaction.Emoji,
		})
	}
	return MessageView{
		Id:           message.ID,
		Created:      message.CreatedAt,
		Conversation: message.ConversationID,
		Sender:       message.SenderID,
		Content:      message.Content,
		Deleted:      message.IsDeleted,
		SeenBy:       seenBy,
		Reactions:    reactions,
	}
}

// argUint parses a socket.io argument that may arrive as a string or a
// JSON number.
func argUint(arg interface{}) uint {
	switch v := arg.(type) {
	case string:
		id, _ := strconv.ParseUint(v, 10, 64)
		return uint(id)
	case float64:
		return uint(v)
	}
	return 0
}

func Socket(server *socket.Server) {
	users := service.NewUserService(database.Postgres)
	conversations := service.NewConversationService(database.Postgres)
	messages := service.NewMessageService(database.Postgres)

	// pushConversations re-delivers the conversations-with-unread
	// snapshot to every member room. This is the push half of the live
	// query the notification reconciler consumes.
	pushConversations := func(conversationID uint) {
		conversation, err := conversations.Get(conversationID)
		if err != nil {
			return
		}
		for _, member := range conversation.Members {
			summaries, err := messages.GetConversationsWithUnread(member.UserID)
			if err != nil {
				continue
			}
			socketio.Emit(member.UserID, "conversations", summaries)
		}
	}

	emitToMembers := func(conversationID uint, eventName string, payload any) {
		conversation, err := conversations.Get(conversationID)
		if err != nil {
			return
		}
		for _, member := range conversation.Members {
			socketio.Emit(member.UserID, eventName, payload)
		}
	}

	server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		session := func() *socketio.Session {
			if client.Data() == nil {
				return nil
			}
			return client.Data().(*socketio.Session)
		}

		if s := session(); s != nil {
			socketio.Broadcast("chat_user_status", UserStatus{Id: s.UserID, Status: true})
			event.EmitJSON(event.ActionUserOnline, map[string]uint{"user_id": s.UserID})
		}

		client.On("disconnect", func(args ...interface{}) {
			s := session()
			if s == nil {
				return
			}
			users.SetOffline(s.UserID)
			socketio.Broadcast("chat_user_status", UserStatus{Id: s.UserID, Status: false})
			event.EmitJSON(event.ActionUserOffline, map[string]uint{"user_id": s.UserID})
		})

		client.On("init", func(args ...interface{}) {
			rooms := server.Sockets().Adapter().Rooms().Keys()

			userViews := []UserView{}
			summaries := []service.ConversationSummary{}
			userStatus := []UserStatus{}

			if s := session(); s != nil {
				allUsers, _ := users.GetUsers()
				for _, user := range allUsers {
					userViews = append(userViews, UserView{
						Id:     user.ID,
						Name:   user.Name,
						Avatar: user.Avatar,
						Online: user.Online,
					})

					online := false
					for i := range rooms {
						if rooms[i] == socketio.Room(user.ID) {
							online = true
							break
						}
					}
					userStatus = append(userStatus, UserStatus{
						Id:     user.ID,
						Status: online,
					})
				}

				summaries, _ = messages.GetConversationsWithUnread(s.UserID)
			}

			client.Emit(
				"init",
				InitConnection{
					Users:         userViews,
					Conversations: summaries,
					UserStatus:    userStatus,
				},
			)
		})

		client.On("chat_conversation_create", func(args ...interface{}) {
			s := session()
			if s == nil || len(args) < 1 {
				return
			}
			other := argUint(args[0])

			conversationID, err := conversations.GetOrCreate(s.UserID, other)
			if err != nil {
				client.Emit("chat_error", err.Error())
				return
			}

			event.EmitJSON(event.ActionConversationCreated, map[string]uint{
				"conversation_id": conversationID,
			})
			client.Emit("chat_conversation_create", conversationID)
			pushConversations(conversationID)
		})

		client.On("chat_messages", func(args ...interface{}) {
			if len(args) < 1 {
				return
			}
			conversationID := argUint(args[0])

			list, err := messages.GetMessages(conversationID)
			if err != nil {
				client.Emit("chat_error", err.Error())
				return
			}
			views := make([]MessageView, 0, len(list))
			for i := range list {
				views = append(views, messageView(&list[i]))
			}
			client.Emit("chat_messages", views)
		})

		client.On("chat_send_message", func(args ...interface{}) {
			s := session()
			if s == nil || len(args) < 2 {
				return
			}
			conversationID := argUint(args[0])
			content, _ := args[1].(string)

			message, err := messages.Send(conversationID, s.UserID, content)
			if err != nil {
				client.Emit("chat_error", err.Error())
				return
			}

			event.EmitJSON(event.ActionMessageSent, map[string]uint{
				"conversation_id": conversationID,
				"message_id":      message.ID,
				"sender_id":       s.UserID,
			})

			view := messageView(message)
			view.SeenBy = []uint{s.UserID}
			emitToMembers(conversationID, "chat_message", view)
			pushConversations(conversationID)
		})

		client.On("chat_seen", func(args ...interface{}) {
			s := session()
			if s == nil || len(args) < 1 {
				return
			}
			conversationID := argUint(args[0])

			if err := messages.MarkSeen(conversationID, s.UserID); err != nil {
				client.Emit("chat_error", err.Error())
				return
			}
			emitToMembers(conversationID, "chat_seen", TypingView{
				Conversation: conversationID,
				User:         s.UserID,
			})
			pushConversations(conversationID)
		})

		client.On("chat_typing", func(args ...interface{}) {
			s := session()
			if s == nil || len(args) < 1 {
				return
			}
			conversationID := argUint(args[0])

			if err := messages.SetTyping(conversationID, s.UserID); err != nil {
				return
			}
			emitToMembers(conversationID, "chat_typing", TypingView{
				Conversation: conversationID,
				User:         s.UserID,
			})
		})

		client.On("chat_stop_typing", func(args ...interface{}) {
			s := session()
			if s == nil || len(args) < 1 {
				return
			}
			conversationID := argUint(args[0])

			messages.ClearTyping(conversationID)
			emitToMembers(conversationID, "chat_stop_typing", TypingView{
				Conversation: conversationID,
				User:         s.UserID,
			})
		})

		client.On("chat_reaction", func(args ...interface{}) {
			s := session()
			if s == nil || len(args) < 2 {
				return
			}
			messageID := argUint(args[0])
			emoji, _ := args[1].(string)

			if err := messages.ToggleReaction(messageID, s.UserID, emoji); err != nil {
				client.Emit("chat_error", err.Error())
				return
			}

			message := new(model.Message)
			if err := database.Postgres.First(&message, messageID).Error; err != nil {
				return
			}
			emitToMembers(message.ConversationID, "chat_reaction", map[string]interface{}{
				"message": messageID,
				"user":    s.UserID,
				"emoji":   emoji,
			})
		})

		client.On("chat_delete_message", func(args ...interface{}) {
			s := session()
			if s == nil || len(args) < 1 {
				return
			}
			messageID := argUint(args[0])

			if err := messages.Delete(messageID, s.UserID); err != nil {
				client.Emit("chat_error", err.Error())
				return
			}

			event.EmitJSON(event.ActionMessageDeleted, map[string]uint{
				"message_id": messageID,
			})

			message := new(model.Message)
			if err := database.Postgres.First(&message, messageID).Error; err != nil {
				return
			}
			emitToMembers(message.ConversationID, "chat_delete_message", map[string]uint{
				"message": messageID,
			})
		})

		client.On("chat_user_status", func(args ...interface{}) {
			rooms := server.Sockets().Adapter().Rooms().Keys()

			userStatus := []UserStatus{}
			if session() != nil {
				allUsers, _ := users.GetUsers()
				for _, user := range allUsers {
					online := false
					for i := range rooms {
						if rooms[i] == socketio.Room(user.ID) {
							online = true
							break
						}
					}
					userStatus = append(userStatus, UserStatus{
						Id:     user.ID,
						Status: online,
					})
				}
			}

			client.Emit(
				"chat_user_status",
				userStatus,
			)
		})
	})
}
