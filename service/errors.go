package service

import "errors"

// Validation errors
var (
	ErrSelfConversation = errors.New("cannot create conversation with yourself")
	ErrInvalidName      = errors.New("group name must not be empty")
	ErrInvalidEmoji     = errors.New("emoji is not allowed")
)

// Invariant violations
var ErrInsufficientMembers = errors.New("group needs the creator plus at least one other member")

// Authorization errors
var (
	ErrNotAuthorized = errors.New("only the sender may delete a message")
	ErrNotAMember    = errors.New("requester is not a member of this conversation")
)

// Not-found and state errors
var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrNotAGroup            = errors.New("conversation is not a group")
	ErrMessageDeleted       = errors.New("message has been deleted")
)
