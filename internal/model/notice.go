package model

import "time"

type NoticeKind string

const (
	NoticeAuthFailure     NoticeKind = "auth_failure"
	NoticeLoadFailure     NoticeKind = "load_failure"
	NoticeMutationFailure NoticeKind = "mutation_failure"
)

// Notice is a message the page must show and the user must dismiss.
type Notice struct {
	ID        string     `json:"id"`
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	SweetID   int64      `json:"sweet_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
