package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"chat-service/model"

	"gorm.io/gorm"
)

type ConversationService interface {
	GetOrCreate(user1 uint, user2 uint) (uint, error)
	CreateGroup(name string, memberIDs []uint, createdBy uint) (uint, error)
	UpdateGroup(conversationID uint, requesterID uint, name *string, memberIDs []uint) error
	Get(conversationID uint) (*model.Conversation, error)
	GetBetweenUsers(user1 uint, user2 uint) (*model.Conversation, error)
}

type conversationService struct {
	db *gorm.DB
}

func NewConversationService(db *gorm.DB) ConversationService {
	return &conversationService{db: db}
}

// memberKey is the canonical identity of an unordered DM pair. The
// conversations table carries a unique index over it, so at most one
// direct conversation can exist per pair.
func memberKey(user1, user2 uint) string {
	if user2 < user1 {
		user1, user2 = user2, user1
	}
	return fmt.Sprintf("%d:%d", user1, user2)
}

func dedupeSorted(ids []uint) []uint {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	out := make([]uint, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *conversationService) GetOrCreate(user1 uint, user2 uint) (uint, error) {
	if user1 == user2 {
		return 0, ErrSelfConversation
	}

	key := memberKey(user1, user2)

	var id uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing model.Conversation
		err := tx.Where("member_key = ?", key).First(&existing).Error
		if err == nil {
			id = existing.ID
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		conversation := model.Conversation{MemberKey: &key}
		if err := tx.Create(&conversation).Error; err != nil {
			return err
		}
		members := []model.ConversationMember{
			{ConversationID: conversation.ID, UserID: user1},
			{ConversationID: conversation.ID, UserID: user2},
		}
		if err := tx.Create(&members).Error; err != nil {
			return err
		}
		id = conversation.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *conversationService) CreateGroup(name string, memberIDs []uint, createdBy uint) (uint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrInvalidName
	}
	if len(memberIDs) == 0 {
		return 0, ErrInsufficientMembers
	}

	final := dedupeSorted(append(memberIDs, createdBy))
	if len(final) < 2 {
		return 0, ErrInsufficientMembers
	}

	var id uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		conversation := model.Conversation{
			IsGroup:     true,
			Name:        name,
			CreatedByID: &createdBy,
		}
		if err := tx.Create(&conversation).Error; err != nil {
			return err
		}
		members := make([]model.ConversationMember, 0, len(final))
		for _, userID := range final {
			members = append(members, model.ConversationMember{
				ConversationID: conversation.ID,
				UserID:         userID,
			})
		}
		if err := tx.Create(&members).Error; err != nil {
			return err
		}
		id = conversation.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateGroup applies a partial edit (rename, membership change, or
// both). The requester is always kept in the final member set.
func (s *conversationService) UpdateGroup(conversationID uint, requesterID uint, name *string, memberIDs []uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var conversation model.Conversation
		err := tx.Preload("Members").First(&conversation, conversationID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConversationNotFound
		}
		if err != nil {
			return err
		}
		if !conversation.IsGroup {
			return ErrNotAGroup
		}

		isMember := false
		for _, member := range conversation.Members {
			if member.UserID == requesterID {
				isMember = true
				break
			}
		}
		if !isMember {
			return ErrNotAMember
		}

		updates := map[string]interface{}{"updated_at": time.Now()}
		if name != nil {
			trimmed := strings.TrimSpace(*name)
			if trimmed == "" {
				return ErrInvalidName
			}
			updates["name"] = trimmed
		}

		if memberIDs != nil {
			final := dedupeSorted(append(memberIDs, requesterID))
			if len(final) < 2 {
				return ErrInsufficientMembers
			}
			if err := tx.Where("conversation_id = ?", conversationID).
				Delete(&model.ConversationMember{}).Error; err != nil {
				return err
			}
			members := make([]model.ConversationMember, 0, len(final))
			for _, userID := range final {
				members = append(members, model.ConversationMember{
					ConversationID: conversationID,
					UserID:         userID,
				})
			}
			if err := tx.Create(&members).Error; err != nil {
				return err
			}
		}

		return tx.Model(&model.Conversation{}).
			Where("id = ?", conversationID).
			Updates(updates).Error
	})
}

func (s *conversationService) Get(conversationID uint) (*model.Conversation, error) {
	var conversation model.Conversation
	err := s.db.Preload("Members.User").First(&conversation, conversationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// GetBetweenUsers resolves the direct conversation for a pair. A nil
// conversation with nil error means none exists yet.
func (s *conversationService) GetBetweenUsers(user1 uint, user2 uint) (*model.Conversation, error) {
	var conversation model.Conversation
	err := s.db.Preload("Members.User").
		Where("member_key = ?", memberKey(user1, user2)).
		First(&conversation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}
