package service

import (
	"errors"
	"testing"

	"chat-service/model"
)

func TestGetOrCreateIsIdempotentPerPair(t *testing.T) {
	db := openTestDB(t)
	conversations := NewConversationService(db)
	a := seedUser(t, db, "a")
	b := seedUser(t, db, "b")

	first, err := conversations.GetOrCreate(a, b)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := conversations.GetOrCreate(a, b)
	if err != nil {
		t.Fatalf("repeat: %v", err)
	}
	reversed, err := conversations.GetOrCreate(b, a)
	if err != nil {
		t.Fatalf("reversed: %v", err)
	}
	if first != second || first != reversed {
		t.Fatalf("pair must map to one conversation: %d %d %d", first, second, reversed)
	}

	var count int64
	db.Model(&model.Conversation{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one conversation for the pair, got %d", count)
	}
}

func TestGetOrCreateRejectsSelf(t *testing.T) {
	db := openTestDB(t)
	conversations := NewConversationService(db)
	a := seedUser(t, db, "a")

	if _, err := conversations.GetOrCreate(a, a); !errors.Is(err, ErrSelfConversation) {
		t.Fatalf("expected ErrSelfConversation, got %v", err)
	}
}

func TestGetBetweenUsers(t *testing.T) {
	db := openTestDB(t)
	conversations := NewConversationService(db)
	a := seedUser(t, db, "a")
	b := seedUser(t, db, "b")
	c := seedUser(t, db, "c")

	id, _ := conversations.GetOrCreate(a, b)

	found, err := conversations.GetBetweenUsers(b, a)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found == nil || found.ID != id {
		t.Fatalf("expected conversation %d, got %+v", id, found)
	}

	absent, err := conversations.GetBetweenUsers(a, c)
	if err != nil {
		t.Fatalf("absent lookup: %v", err)
	}
	if absent != nil {
		t.Fatalf("expected no conversation between a and c, got %+v", absent)
	}
}

func TestCreateGroupValidation(t *testing.T) {
	db := openTestDB(t)
	conversations := NewConversationService(db)
	creator := seedUser(t, db, "creator")
	other := seedUser(t, db, "other")

	if _, err := conversations.CreateGroup("  ", []uint{other}, creator); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("blank name: expected ErrInvalidName, got %v", err)
	}
	if _, err := conversations.CreateGroup("Team", []uint{}, creator); !errors.Is(err, ErrInsufficientMembers) {
		t.Fatalf("no members: expected ErrInsufficientMembers, got %v", err)
	}
	if _, err := conversations.CreateGroup("Team", []uint{creator}, creator); !errors.Is(err, ErrInsufficientMembers) {
		t.Fatalf("creator only: expected ErrInsufficientMembers, got %v", err)
	}
}

func TestCreateGroupDeduplicatesMembers(t *testing.T) {
	db := openTestDB(t)
	conversations := NewConversationService(db)
	creator := seedUser(t, db, "creator")
	other := seedUser(t, db, "other")

	id, err := conversations.CreateGroup(" Team ", []uint{other, other, creator}, creator)
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	conversation, err := conversations.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !conversation.IsGroup {
		t.Fatalf("group flag not set")
	}
	if conversation.Name != "Team" {
		t.Fatalf("name not trimmed: %q", conversation.Name)
	}
	if len(conversation.Members) != 2 {
		t.Fatalf("expected 2 members after dedupe, got %d", len(conversation.Members))
	}
	if conversation.CreatedByID == nil || *conversation.CreatedByID != creator {
		t.Fatalf("createdBy not recorded")
	}
}

func TestUpdateGroup(t *testing.T) {
	db := openTestDB(t)
	conversations := NewConversationService(db)
	creator := seedUser(t, db, "creator")
	other := seedUser(t, db, "other")
	third := seedUser(t, db, "third")
	outsider := seedUser(t, db, "outsider")

	groupID, _ := conversations.CreateGroup("Team", []uint{other}, creator)
	dmID, _ := conversations.GetOrCreate(creator, other)

	name := "Renamed"
	blank := "   "

	if err := conversations.UpdateGroup(9999, creator, &name, nil); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("missing: expected ErrConversationNotFound, got %v", err)
	}
	if err := conversations.UpdateGroup(dmID, creator, &name, nil); !errors.Is(err, ErrNotAGroup) {
		t.Fatalf("dm: expected ErrNotAGroup, got %v", err)
	}
	if err := conversations.UpdateGroup(groupID, outsider, &name, nil); !errors.Is(err, ErrNotAMember) {
		t.Fatalf("outsider: expected ErrNotAMember, got %v", err)
	}
	if err := conversations.UpdateGroup(groupID, creator, &blank, nil); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("blank rename: expected ErrInvalidName, got %v", err)
	}
	if err := conversations.UpdateGroup(groupID, creator, nil, []uint{creator}); !errors.Is(err, ErrInsufficientMembers) {
		t.Fatalf("shrink below minimum: expected ErrInsufficientMembers, got %v", err)
	}

	// Name-only update.
	if err := conversations.UpdateGroup(groupID, creator, &name, nil); err != nil {
		t.Fatalf("rename: %v", err)
	}
	conversation, _ := conversations.Get(groupID)
	if conversation.Name != "Renamed" {
		t.Fatalf("rename not applied: %q", conversation.Name)
	}
	if len(conversation.Members) != 2 {
		t.Fatalf("name-only update changed members: %d", len(conversation.Members))
	}

	// Members-only update keeps the requester in the set.
	if err := conversations.UpdateGroup(groupID, creator, nil, []uint{third}); err != nil {
		t.Fatalf("members update: %v", err)
	}
	conversation, _ = conversations.Get(groupID)
	memberIDs := map[uint]bool{}
	for _, member := range conversation.Members {
		memberIDs[member.UserID] = true
	}
	if !memberIDs[creator] || !memberIDs[third] || len(memberIDs) != 2 {
		t.Fatalf("unexpected member set: %v", memberIDs)
	}
}
