package service

import (
	"testing"

	"chat-service/model"
)

func TestUpsertIsIdempotentPerSubject(t *testing.T) {
	db := openTestDB(t)
	users := NewUserService(db)

	first, err := users.Upsert("clerk-1", "Ada", "a.png")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := users.Upsert("clerk-1", "Ada Lovelace", "b.png")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if first != second {
		t.Fatalf("expected same id for same subject, got %d and %d", first, second)
	}

	var count int64
	db.Model(&model.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 user row, got %d", count)
	}

	var user model.User
	db.First(&user, first)
	if user.Name != "Ada Lovelace" || user.Avatar != "b.png" {
		t.Fatalf("profile fields not refreshed: %+v", user)
	}
	if !user.Online {
		t.Fatalf("upsert must mark user online")
	}
}

func TestSetOffline(t *testing.T) {
	db := openTestDB(t)
	users := NewUserService(db)

	id, _ := users.Upsert("clerk-1", "Ada", "")
	if err := users.SetOffline(id); err != nil {
		t.Fatalf("set offline: %v", err)
	}

	var user model.User
	db.First(&user, id)
	if user.Online {
		t.Fatalf("user still online after SetOffline")
	}
}

func TestSearchUsers(t *testing.T) {
	db := openTestDB(t)
	users := NewUserService(db)

	users.Upsert("clerk-1", "Ada Lovelace", "")
	alan, _ := users.Upsert("clerk-2", "Alan Turing", "")
	users.Upsert("clerk-3", "Grace Hopper", "")

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "case insensitive substring", query: "LACE", want: []string{"Ada Lovelace"}},
		{name: "excludes the requester", query: "a", want: []string{"Ada Lovelace", "Grace Hopper"}},
		{name: "no match", query: "zzz", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := users.SearchUsers(tt.query, alan)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			names := make([]string, 0, len(got))
			for _, user := range got {
				if user.ID == alan {
					t.Fatalf("search returned the excluded requester")
				}
				names = append(names, user.Name)
			}
			if len(names) != len(tt.want) {
				t.Fatalf("query %q: got %v, want %v", tt.query, names, tt.want)
			}
			for i := range tt.want {
				if names[i] != tt.want[i] {
					t.Fatalf("query %q: got %v, want %v", tt.query, names, tt.want)
				}
			}
		})
	}
}
