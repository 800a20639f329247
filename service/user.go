package service

import (
	"errors"
	"strings"
	"time"

	"chat-service/model"

	"gorm.io/gorm"
)

type UserService interface {
	Upsert(externalID string, name string, avatar string) (uint, error)
	SetOffline(userID uint) error
	GetUsers() ([]model.User, error)
	SearchUsers(query string, excludingID uint) ([]model.User, error)
}

type userService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

// Upsert creates or refreshes the row for an external auth subject and
// marks it online. Called on every sign-in.
func (s *userService) Upsert(externalID string, name string, avatar string) (uint, error) {
	var user model.User
	err := s.db.Where("external_id = ?", externalID).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = model.User{
			ExternalID: externalID,
			Name:       name,
			Avatar:     avatar,
			Online:     true,
			LastSeen:   time.Now(),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return 0, err
		}
		return user.ID, nil
	}
	if err != nil {
		return 0, err
	}

	if err := s.db.Model(&user).Updates(map[string]interface{}{
		"name":      name,
		"avatar":    avatar,
		"online":    true,
		"last_seen": time.Now(),
	}).Error; err != nil {
		return 0, err
	}
	return user.ID, nil
}

func (s *userService) SetOffline(userID uint) error {
	return s.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"online":    false,
		"last_seen": time.Now(),
	}).Error
}

func (s *userService) GetUsers() ([]model.User, error) {
	var users []model.User
	if err := s.db.Order("name asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *userService) SearchUsers(query string, excludingID uint) ([]model.User, error) {
	var users []model.User
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	if err := s.db.
		Where("LOWER(name) LIKE ? AND id <> ?", pattern, excludingID).
		Order("name asc").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
