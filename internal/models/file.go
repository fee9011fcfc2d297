package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxRecipients caps how many usernames a single record may be addressed to.
const MaxRecipients = 3

type FileRecord struct {
	BaseModel
	FileName    string    `json:"fileName" gorm:"type:varchar(255);not null"`
	Caption     string    `json:"caption" gorm:"type:text;not null"`
	MimeType    string    `json:"mimeType" gorm:"type:varchar(255);not null"`
	Size        int64     `json:"size" gorm:"not null;default:0"`
	StoragePath string    `json:"-" gorm:"type:text;not null"`
	UploaderID  uuid.UUID `json:"uploaderID" gorm:"type:uuid;not null;index"`
	UploadedBy  string    `json:"uploadedBy" gorm:"type:varchar(100);not null;index"`
	UploadedAt  time.Time `json:"uploadedAt" gorm:"not null;index"`
	IsRead      bool      `json:"isRead" gorm:"not null;default:false"`

	Uploader   User            `json:"uploader,omitempty" gorm:"foreignKey:UploaderID;references:ID"`
	Recipients []FileRecipient `json:"recipients,omitempty" gorm:"foreignKey:FileID"`
}

func (FileRecord) TableName() string {
	return "file_records"
}

// AddressedTo reports whether username is among the record's recipients.
// Recipients must be loaded alongside the record.
func (f *FileRecord) AddressedTo(username string) bool {
	for _, r := range f.Recipients {
		if r.Username == username {
			return true
		}
	}
	return false
}

// RecipientUsernames returns the recipient usernames in creation order.
func (f *FileRecord) RecipientUsernames() []string {
	names := make([]string, 0, len(f.Recipients))
	for _, r := range f.Recipients {
		names = append(names, r.Username)
	}
	return names
}

// FileRecipient pins one recipient to a record. Rows are written once at
// upload time and never updated; the set is fixed for the record's lifetime.
type FileRecipient struct {
	ID       uuid.UUID `json:"-" gorm:"type:uuid;primaryKey"`
	FileID   uuid.UUID `json:"-" gorm:"type:uuid;not null;index:idx_file_recipient,unique"`
	UserID   uuid.UUID `json:"userID" gorm:"type:uuid;not null;index:idx_file_recipient,unique"`
	Username string    `json:"username" gorm:"type:varchar(100);not null;index"`
}

func (r *FileRecipient) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (FileRecipient) TableName() string {
	return "file_recipients"
}
