package api

import "time"

// User mirrors the server's user payload.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// FileRecord mirrors the server's file payload.
type FileRecord struct {
	ID         string      `json:"id"`
	FileName   string      `json:"fileName"`
	Caption    string      `json:"caption"`
	MimeType   string      `json:"mimeType"`
	Size       int64       `json:"size"`
	UploadedBy string      `json:"uploadedBy"`
	UploadedAt time.Time   `json:"uploadedAt"`
	IsRead     bool        `json:"isRead"`
	Recipients []Recipient `json:"recipients,omitempty"`
}

type Recipient struct {
	Username string `json:"username"`
}

// Conversation is one sender's thread in the inbox view.
type Conversation struct {
	Counterparty string       `json:"counterparty"`
	Files        []FileRecord `json:"files"`
	UnreadCount  int          `json:"unreadCount"`
	LatestAt     time.Time    `json:"latestAt"`
}

// AuthResult is the register/login payload.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
