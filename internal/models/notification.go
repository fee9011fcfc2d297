package models

import "github.com/google/uuid"

// Notification tells a recipient that a new file has been addressed to them.
// Rows are created once per recipient at upload time.
type Notification struct {
	BaseModel
	UserID  uuid.UUID `json:"userID" gorm:"type:uuid;not null;index"`
	ActorID uuid.UUID `json:"actorID" gorm:"type:uuid;not null;index"`
	Action  string    `json:"action" gorm:"type:varchar(50);not null"`
	FileID  uuid.UUID `json:"fileID" gorm:"type:uuid;not null;index"`
	IsRead  bool      `json:"isRead" gorm:"not null;default:false;index"`

	Actor User       `json:"actor,omitempty" gorm:"foreignKey:ActorID;references:ID"`
	File  FileRecord `json:"file,omitempty" gorm:"foreignKey:FileID;references:ID"`
}

func (Notification) TableName() string {
	return "notifications"
}
