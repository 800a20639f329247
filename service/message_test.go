package service

import (
	"errors"
	"testing"
	"time"

	"chat-service/model"

	"gorm.io/gorm"
)

func TestSendMessageSeedsSeenAndBumpsConversation(t *testing.T) {
	db := openTestDB(t)
	conversations := NewConversationService(db)
	messages := NewMessageService(db)
	a := seedUser(t, db, "a")
	b := seedUser(t, db, "b")

	conversationID, _ := conversations.GetOrCreate(a, b)

	var before model.Conversation
	db.First(&before, conversationID)

	message, err := messages.Send(conversationID, a, "hi")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	list, err := messages.GetMessages(conversationID)
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 message, got %d", len(list))
	}
	if len(list[0].SeenBy) != 1 || list[0].SeenBy[0].UserID != a {
		t.Fatalf("seenBy must be seeded with the sender: %+v", list[0].SeenBy)
	}
	if list[0].ID != message.ID || list[0].Content != "hi" {
		t.Fatalf("unexpected message: %+v", list[0])
	}

	var after model.Conversation
	db.First(&after, conversationID)
	if after.UpdatedAt.Before(before.UpdatedAt) {
		t.Fatalf("send must bump the conversation")
	}

	summaries, err := messages.GetConversationsWithUnread(b)
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if len(summaries) != 1 || summaries[0].UnreadCount != 1 {
		t.Fatalf("expected unread=1 for b, got %+v", summaries)
	}
}

func TestSendMessageToMissingConversation(t *testing.T) {
	db := openTestDB(t)
	messages := NewMessageService(db)
	a := seedUser(t, db, "a")

	if _, err := messages.Send(9999, a, "hi"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestGetMessagesOrder(t *testing.T) {
	db := openTestDB(t)
	conversations := NewConversationService(db)
	messages := NewMessageService(db)
	a := seedUser(t, db, "a")
	b := seedUser(t, db, "b")

	conversationID, _ := conversations.GetOrCreate(a, b)
	for _, content := range []string{"one", "two", "three"} {
		if _, err := messages.Send(conversationID, a, content); err != nil {
			t.Fatalf("send %q: %v", content, err)
		}
	}

	list, _ := messages.GetMessages(conversationID)
	if len(list) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(list))
	}
	for i, want := range []string{"one", "two", "three"} {
		if list[i].Content != want {
			t.Fatalf("position %d: got %q, want %q", i, list[i].Content, want)
		}
	}
}

func TestMarkSeenIsIdempotentAndMonotonic(t *testing.T) {
	db := openTestDB(t)
	conversations := NewConversationService(db)
	messages := NewMessageService(db)
	a := seedUser(t, db, "a")
	b := seedUser(t, db, "b")

	conversationID, _ := conversations.GetOrCreate(a, b)
	messages.Send(conversationID, a, "one")
	messages.Send(conversationID, a, "two")

	if err := messages.MarkSeen(conversationID, b); err != nil {
		t.Fatalf("mark seen: %v", err)
	}
	if err := messages.MarkSeen(conversationID, b); err != nil {
		t.Fatalf("repeat mark seen: %v", err)
	}

	list, _ := messages.GetMessages(conversationID)
	for _, message := range list {
		if len(message.SeenBy) != 2 {
			t.Fatalf("message %d: expected seenBy of 2, got %d", message.ID, len(message.SeenBy))
		}
	}

	summaries, _ := messages.GetConversationsWithUnread(b)
	if summaries[0].UnreadCount != 0 {
		t.Fatalf("expected unread=0 after mark seen, got %d", summaries[0].UnreadCount)
	}
}

func TestUnreadCountFormula(t *testing.T) {
	db := openTestDB(t)
	conversations := NewConversationService(db)
	messages := NewMessageService(db)
	a := seedUser(t, db, "a")
	b := seedUser(t, db, "b")

	conversationID, _ := conversations.GetOrCreate(a, b)

	// N = 5 total, S = 2 sent by b, K = 1 of a's messages seen by b.
	var fromA []uint
	for i := 0; i < 3; i++ {
		message, _ := messages.Send(conversationID, a, "from a")
		fromA = append(fromA, message.ID)
	}
	messages.Send(conversationID, b, "from b")
	messages.Send(conversationID, b, "from b")

	db.Create(&model.MessageSeen{MessageID: fromA[0], UserID: b, SeenAt: time.Now()})

	summaries, err := messages.GetConversationsWithUnread(b)
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	// (N - S) - K = (5 - 2) - 1 = 2
	if summaries[0].UnreadCount != 2 {
		t.Fatalf("expected unread=2, got %d", summaries[0].UnreadCount)
	}
}

func TestGetConversationsWithUnreadSortsByRecency(t *testing.T) {
	db := openTestDB(t)
	conversations := NewConversationService(db)
	messages := NewMessageService(db)
	a := seedUser(t, db, "a")
	b := seedUser(t, db, "b")
	c := seedUser(t, db, "c")

	withB, _ := conversations.GetOrCreate(a, b)
	withC, _ := conversations.GetOrCreate(a, c)

	messages.Send(withB, b, "early")
	time.Sleep(10 * time.Millisecond)
	messages.Send(withC, c, "late")

	summaries, _ := messages.GetConversationsWithUnread(a)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].ConversationID != withC || summaries[1].ConversationID != withB {
		t.Fatalf("expected most recent first, got %+v", summaries)
	}
	if len(summaries[0].Members) != 2 {
		t.Fatalf("summary must carry members, got %+v", summaries[0].Members)
	}
}

func TestToggleReaction(t *testing.T) {
	db := openTestDB(t)
	conversations := NewConversationService(db)
	messages := NewMessageService(db)
	a := seedUser(t, db, "a")
	b := seedUser(t, db, "b")

	conversationID, _ := conversations.GetOrCreate(a, b)
	message, _ := messages.Send(conversationID, a, "hi")

	if err := messages.ToggleReaction(message.ID, b, "🔥"); !errors.Is(err, ErrInvalidEmoji) {
		t.Fatalf("expected ErrInvalidEmoji, got %v", err)
	}
	if err := messages.ToggleReaction(9999, b, "👍"); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}

	// Add.
	if err := messages.ToggleReaction(message.ID, b, "👍"); err != nil {
		t.Fatalf("add reaction: %v", err)
	}
	reactions := reactionsFor(t, db, message.ID, b)
	if len(reactions) != 1 || reactions[0].Emoji != "👍" {
		t.Fatalf("expected single 👍, got %+v", reactions)
	}

	// Replace enforces one reaction per user.
	if err := messages.ToggleReaction(message.ID, b, "❤️"); err != nil {
		t.Fatalf("replace reaction: %v", err)
	}
	reactions = reactionsFor(t, db, message.ID, b)
	if len(reactions) != 1 || reactions[0].Emoji != "❤️" {
		t.Fatalf("expected single ❤️ after replace, got %+v", reactions)
	}

	// Toggle-off is an involution.
	if err := messages.ToggleReaction(message.ID, b, "❤️"); err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if reactions = reactionsFor(t, db, message.ID, b); len(reactions) != 0 {
		t.Fatalf("expected no reaction after toggle off, got %+v", reactions)
	}

	// Independent users keep independent slots.
	messages.ToggleReaction(message.ID, a, "😂")
	messages.ToggleReaction(message.ID, b, "😮")
	var all []model.MessageReaction
	db.Where("message_id = ?", message.ID).Find(&all)
	if len(all) != 2 {
		t.Fatalf("expected 2 reactions from 2 users, got %d", len(all))
	}
}

func reactionsFor(t *testing.T, db *gorm.DB, messageID uint, userID uint) []model.MessageReaction {
	t.Helper()
	var reactions []model.MessageReaction
	if err := db.Where("message_id = ? AND user_id = ?", messageID, userID).Find(&reactions).Error; err != nil {
		t.Fatalf("load reactions: %v", err)
	}
	return reactions
}

func TestDeleteMessage(t *testing.T) {
	db := openTestDB(t)
	conversations := NewConversationService(db)
	messages := NewMessageService(db)
	a := seedUser(t, db, "a")
	b := seedUser(t, db, "b")

	conversationID, _ := conversations.GetOrCreate(a, b)
	message, _ := messages.Send(conversationID, a, "delete me")
	messages.ToggleReaction(message.ID, b, "👍")

	if err := messages.Delete(9999, a); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
	if err := messages.Delete(message.ID, b); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for non-sender, got %v", err)
	}

	if err := messages.Delete(message.ID, a); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var got model.Message
	db.First(&got, message.ID)
	if !got.IsDeleted || got.Content != "" {
		t.Fatalf("expected tombstone, got %+v", got)
	}

	// Reactions survive the soft delete, but no new ones are accepted.
	var reactions []model.MessageReaction
	db.Where("message_id = ?", message.ID).Find(&reactions)
	if len(reactions) != 1 {
		t.Fatalf("delete must not purge reactions, got %d", len(reactions))
	}
	if err := messages.ToggleReaction(message.ID, b, "😢"); !errors.Is(err, ErrMessageDeleted) {
		t.Fatalf("expected ErrMessageDeleted, got %v", err)
	}

	// Deleting again by the sender is a no-op on the same state.
	if err := messages.Delete(message.ID, a); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	db.First(&got, message.ID)
	if !got.IsDeleted || got.Content != "" {
		t.Fatalf("second delete changed state: %+v", got)
	}
}

func TestTypingSlot(t *testing.T) {
	db := openTestDB(t)
	conversations := NewConversationService(db)
	messages := NewMessageService(db)
	a := seedUser(t, db, "a")
	b := seedUser(t, db, "b")

	conversationID, _ := conversations.GetOrCreate(a, b)

	if err := messages.SetTyping(9999, a); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}

	if err := messages.SetTyping(conversationID, a); err != nil {
		t.Fatalf("set typing: %v", err)
	}

	// Last write wins on the single slot.
	if err := messages.SetTyping(conversationID, b); err != nil {
		t.Fatalf("second typist: %v", err)
	}

	var conversation model.Conversation
	db.First(&conversation, conversationID)
	now := time.Now()
	if typist := conversation.ActiveTypist(now, TypingTTL); typist == nil || *typist != b {
		t.Fatalf("expected active typist b, got %v", typist)
	}

	// Stale marks read as cleared.
	if typist := conversation.ActiveTypist(now.Add(10*time.Second), TypingTTL); typist != nil {
		t.Fatalf("stale typing mark must read as cleared, got %v", typist)
	}

	if err := messages.ClearTyping(conversationID); err != nil {
		t.Fatalf("clear typing: %v", err)
	}
	db.First(&conversation, conversationID)
	if conversation.TypingUserID != nil {
		t.Fatalf("typing slot not cleared")
	}
}
