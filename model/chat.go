package model

import (
	"time"

	"gorm.io/gorm"
)

type Conversation struct {
	gorm.Model
	IsGroup     bool    `gorm:"not null;default:false" json:"is_group"`
	Name        string  `json:"name"`
	CreatedByID *uint   `json:"created_by"`
	// Canonical sorted member pair for direct conversations. NULL for
	// groups, so the unique index only binds DM pairs.
	MemberKey    *string              `gorm:"uniqueIndex"`
	TypingUserID *uint                `json:"typing_user_id"`
	TypingAt     *time.Time           `json:"typing_at"`
	Members      []ConversationMember `gorm:"foreignKey:ConversationID" json:"members"`
}

// ActiveTypist returns the typing user id while the mark is fresh.
// Stale marks read as cleared, so a client that disconnects mid-type
// cannot pin the indicator.
func (c *Conversation) ActiveTypist(now time.Time, ttl time.Duration) *uint {
	if c.TypingUserID == nil || c.TypingAt == nil {
		return nil
	}
	if now.Sub(*c.TypingAt) > ttl {
		return nil
	}
	return c.TypingUserID
}

type ConversationMember struct {
	ConversationID uint `gorm:"primaryKey" json:"conversation_id"`
	UserID         uint `gorm:"primaryKey" json:"user_id"`
	User           User `gorm:"foreignKey:UserID" json:"user"`
}

type Message struct {
	gorm.Model
	ConversationID uint              `gorm:"not null;index" json:"conversation_id"`
	SenderID       uint              `gorm:"not null" json:"sender_id"`
	Content        string            `json:"content"`
	IsDeleted      bool              `gorm:"not null;default:false" json:"is_deleted"`
	SeenBy         []MessageSeen     `gorm:"foreignKey:MessageID" json:"seen_by"`
	Reactions      []MessageReaction `gorm:"foreignKey:MessageID" json:"reactions"`
}

type MessageSeen struct {
	MessageID uint      `gorm:"primaryKey" json:"message_id"`
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	SeenAt    time.Time `json:"seen_at"`
}

type MessageReaction struct {
	MessageID uint      `gorm:"primaryKey" json:"message_id"`
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	Emoji     string    `gorm:"not null" json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}
