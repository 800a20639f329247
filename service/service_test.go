package service

import (
	"fmt"
	"path/filepath"
	"testing"

	"chat-service/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "chat.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Conversation{},
		&model.ConversationMember{},
		&model.Message{},
		&model.MessageSeen{},
		&model.MessageReaction{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	id, err := NewUserService(db).Upsert("ext-"+name, name, fmt.Sprintf("https://avatars.test/%s.png", name))
	if err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return id
}
