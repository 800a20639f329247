package service

import (
	"errors"
	"time"

	"chat-service/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllowedEmojis is the fixed reaction set.
var AllowedEmojis = []string{"👍", "❤️", "😂", "😮", "😢"}

// TypingTTL is the staleness window for the single-slot typing
// indicator. Marks older than this read as cleared.
const TypingTTL = 5 * time.Second

func emojiAllowed(emoji string) bool {
	for _, allowed := range AllowedEmojis {
		if emoji == allowed {
			return true
		}
	}
	return false
}

// ConversationSummary is one row of the conversations-with-unread
// read, the snapshot shape the notification reconciler consumes.
type ConversationSummary struct {
	ConversationID uint      `json:"conversation_id"`
	Members        []uint    `json:"members"`
	UpdatedAt      time.Time `json:"updated_at"`
	UnreadCount    int       `json:"unread_count"`
	IsGroup        bool      `json:"is_group"`
	Name           string    `json:"name"`
}

type MessageService interface {
	Send(conversationID uint, senderID uint, content string) (*model.Message, error)
	GetMessages(conversationID uint) ([]model.Message, error)
	MarkSeen(conversationID uint, userID uint) error
	SetTyping(conversationID uint, userID uint) error
	ClearTyping(conversationID uint) error
	ToggleReaction(messageID uint, userID uint, emoji string) error
	Delete(messageID uint, userID uint) error
	GetConversationsWithUnread(userID uint) ([]ConversationSummary, error)
}

type messageService struct {
	db *gorm.DB
}

func NewMessageService(db *gorm.DB) MessageService {
	return &messageService{db: db}
}

// Send appends a message, seeds its seen set with the sender and bumps
// the conversation so recency sorts work without scanning messages.
func (s *messageService) Send(conversationID uint, senderID uint, content string) (*model.Message, error) {
	var message model.Message
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var conversation model.Conversation
		err := tx.First(&conversation, conversationID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConversationNotFound
		}
		if err != nil {
			return err
		}

		message = model.Message{
			ConversationID: conversationID,
			SenderID:       senderID,
			Content:        content,
		}
		if err := tx.Create(&message).Error; err != nil {
			return err
		}

		seen := model.MessageSeen{
			MessageID: message.ID,
			UserID:    senderID,
			SeenAt:    time.Now(),
		}
		if err := tx.Create(&seen).Error; err != nil {
			return err
		}

		return tx.Model(&model.Conversation{}).
			Where("id = ?", conversationID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (s *messageService) GetMessages(conversationID uint) ([]model.Message, error) {
	var messages []model.Message
	if err := s.db.
		Where("conversation_id = ?", conversationID).
		Preload("SeenBy").
		Preload("Reactions").
		Order("created_at asc, id asc").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkSeen appends the user to every message of the conversation that
// does not already carry them. Idempotent, safe to call on every
// inbound-message observation.
func (s *messageService) MarkSeen(conversationID uint, userID uint) error {
	var ids []uint
	if err := s.db.Model(&model.Message{}).
		Where("conversation_id = ?", conversationID).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]model.MessageSeen, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, model.MessageSeen{MessageID: id, UserID: userID, SeenAt: now})
	}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (s *messageService) SetTyping(conversationID uint, userID uint) error {
	now := time.Now()
	result := s.db.Model(&model.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"typing_user_id": userID,
			"typing_at":      now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (s *messageService) ClearTyping(conversationID uint) error {
	return s.db.Model(&model.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"typing_user_id": nil,
			"typing_at":      nil,
		}).Error
}

// ToggleReaction enforces the one-reaction-per-user slot: no entry
// appends, same emoji removes, different emoji replaces in place.
func (s *messageService) ToggleReaction(messageID uint, userID uint, emoji string) error {
	if !emojiAllowed(emoji) {
		return ErrInvalidEmoji
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var message model.Message
		err := tx.First(&message, messageID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		if err != nil {
			return err
		}
		if message.IsDeleted {
			return ErrMessageDeleted
		}

		var existing model.MessageReaction
		err = tx.Where("message_id = ? AND user_id = ?", messageID, userID).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&model.MessageReaction{
				MessageID: messageID,
				UserID:    userID,
				Emoji:     emoji,
				CreatedAt: time.Now(),
			}).Error
		}
		if err != nil {
			return err
		}

		if existing.Emoji == emoji {
			return tx.Where("message_id = ? AND user_id = ?", messageID, userID).
				Delete(&model.MessageReaction{}).Error
		}
		return tx.Model(&model.MessageReaction{}).
			Where("message_id = ? AND user_id = ?", messageID, userID).
			Update("emoji", emoji).Error
	})
}

// Delete is the sender-only soft delete: content cleared, tombstone
// flag set, one-way. Attached reactions are kept.
func (s *messageService) Delete(messageID uint, userID uint) error {
	var message model.Message
	err := s.db.First(&message, messageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrMessageNotFound
	}
	if err != nil {
		return err
	}
	if message.SenderID != userID {
		return ErrNotAuthorized
	}

	return s.db.Model(&message).Updates(map[string]interface{}{
		"content":    "",
		"is_deleted": true,
	}).Error
}

// GetConversationsWithUnread returns, newest first, every conversation
// the user belongs to with the count of messages they neither sent nor
// have seen.
func (s *messageService) GetConversationsWithUnread(userID uint) ([]ConversationSummary, error) {
	var conversations []model.Conversation
	if err := s.db.
		Joins("JOIN conversation_members cm ON cm.conversation_id = conversations.id AND cm.user_id = ?", userID).
		Preload("Members").
		Order("conversations.updated_at desc").
		Find(&conversations).Error; err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conversation := range conversations {
		var unread int64
		if err := s.db.Model(&model.Message{}).
			Where("conversation_id = ? AND sender_id <> ?", conversation.ID, userID).
			Where("NOT EXISTS (SELECT 1 FROM message_seens ms WHERE ms.message_id = messages.id AND ms.user_id = ?)", userID).
			Count(&unread).Error; err != nil {
			return nil, err
		}

		members := make([]uint, 0, len(conversation.Members))
		for _, member := range conversation.Members {
			members = append(members, member.UserID)
		}

		summaries = append(summaries, ConversationSummary{
			ConversationID: conversation.ID,
			Members:        members,
			UpdatedAt:      conversation.UpdatedAt,
			UnreadCount:    int(unread),
			IsGroup:        conversation.IsGroup,
			Name:           conversation.Name,
		})
	}
	return summaries, nil
}
