package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labshare/server/internal/directory"
	"github.com/labshare/server/internal/models"
	"github.com/labshare/server/internal/storage"
	"github.com/labshare/server/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrForbidden         = errors.New("operation not permitted for this role")
	ErrInvalidRecipients = errors.New("between 1 and 3 recipients are required")
	ErrUnknownRecipient  = errors.New("recipient does not exist or cannot receive files")
	ErrInvalidCaption    = errors.New("caption must not be empty")
	ErrFileNotFound      = errors.New("file not found")
)

// SharingService owns the file store mutations: the researcher upload that
// appends a record, and the recipient read acknowledgement that flips IsRead.
// Reads go through the mailbox package after loading records here.
type SharingService struct {
	DB        *gorm.DB
	Storage   storage.Client
	Directory *directory.Directory
}

func NewSharingService(db *gorm.DB, storageClient storage.Client, dir *directory.Directory) *SharingService {
	return &SharingService{DB: db, Storage: storageClient, Directory: dir}
}

type UploadInput struct {
	FileName   string
	Caption    string
	MimeType   string
	Size       int64
	Recipients []string
	Content    io.Reader
}

// Upload validates the preconditions in order, streams the bytes to
// object storage, then appends the record, its recipient rows and one
// notification per recipient in a single transaction. No existing row is
// touched.
func (s *SharingService) Upload(ctx context.Context, uploader *models.User, in UploadInput) (*models.FileRecord, error) {
	if !uploader.Role.CanUpload() {
		return nil, ErrForbidden
	}

	recipients := dedupeUsernames(in.Recipients)
	if len(recipients) == 0 || len(recipients) > models.MaxRecipients {
		return nil, ErrInvalidRecipients
	}

	if strings.TrimSpace(in.Caption) == "" {
		return nil, ErrInvalidCaption
	}

	resolved := make([]*models.User, 0, len(recipients))
	for _, username := range recipients {
		user, err := s.Directory.ByUsername(username)
		if err != nil {
			if errors.Is(err, directory.ErrNotFound) {
				return nil, ErrUnknownRecipient
			}
			return nil, err
		}
		if !user.Role.CanReceive() {
			return nil, ErrUnknownRecipient
		}
		resolved = append(resolved, user)
	}

	objectName := fmt.Sprintf("%s/%s/%s", uploader.ID, uuid.New(), in.FileName)
	if err := s.Storage.Upload(ctx, objectName, in.Content, in.Size, in.MimeType); err != nil {
		return nil, err
	}

	record := models.FileRecord{
		FileName:    in.FileName,
		Caption:     strings.TrimSpace(in.Caption),
		MimeType:    in.MimeType,
		Size:        in.Size,
		StoragePath: objectName,
		UploaderID:  uploader.ID,
		UploadedBy:  uploader.Username,
		UploadedAt:  time.Now().UTC(),
		IsRead:      false,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		for _, user := range resolved {
			recipient := models.FileRecipient{
				FileID:   record.ID,
				UserID:   user.ID,
				Username: user.Username,
			}
			if err := tx.Create(&recipient).Error; err != nil {
				return err
			}
			record.Recipients = append(record.Recipients, recipient)

			notification := models.Notification{
				UserID:  user.ID,
				ActorID: uploader.ID,
				Action:  "file.received",
				FileID:  record.ID,
			}
			if err := tx.Create(&notification).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = s.Storage.Delete(ctx, objectName)
		return nil, err
	}

	return &record, nil
}

// MarkRead flips the record's IsRead flag to true. A second call is a no-op,
// not an error; the flag never reverses. Only a recipient of the record may
// acknowledge it.
func (s *SharingService) MarkRead(ctx context.Context, viewer *models.User, fileID uuid.UUID) (*models.FileRecord, error) {
	record, err := s.byID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if !record.AddressedTo(viewer.Username) {
		return nil, ErrForbidden
	}

	if record.IsRead {
		return record, nil
	}

	if err := s.DB.WithContext(ctx).Model(&models.FileRecord{}).
		Where("id = ?", record.ID).
		Update("is_read", true).Error; err != nil {
		return nil, err
	}
	record.IsRead = true

	logger.InfoWithUser(viewer.ID.String(), "file_read", map[string]interface{}{
		"file_id":   record.ID.String(),
		"file_name": record.FileName,
	})

	return record, nil
}

// Open streams a record's bytes for a recipient and acknowledges the read;
// downloading a file marks it read in the same step.
func (s *SharingService) Open(ctx context.Context, viewer *models.User, fileID uuid.UUID) (*models.FileRecord, io.ReadCloser, error) {
	record, err := s.MarkRead(ctx, viewer, fileID)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.Storage.Download(ctx, record.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return record, stream, nil
}

// InboxRecords loads every record addressed to viewer, recipients and uploader
// included, for the mailbox derivations.
func (s *SharingService) InboxRecords(ctx context.Context, viewer string) ([]models.FileRecord, error) {
	var records []models.FileRecord
	err := s.DB.WithContext(ctx).
		Preload("Recipients").
		Joins("JOIN file_recipients ON file_recipients.file_id = file_records.id").
		Where("file_recipients.username = ?", viewer).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// OutboxRecords loads the records viewer uploaded, newest first.
func (s *SharingService) OutboxRecords(ctx context.Context, viewer string) ([]models.FileRecord, error) {
	var records []models.FileRecord
	err := s.DB.WithContext(ctx).
		Preload("Recipients").
		Where("uploaded_by = ?", viewer).
		Order("uploaded_at DESC, created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *SharingService) byID(ctx context.Context, fileID uuid.UUID) (*models.FileRecord, error) {
	var record models.FileRecord
	err := s.DB.WithContext(ctx).Preload("Recipients").First(&record, "id = ?", fileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func dedupeUsernames(usernames []string) []string {
	seen := make(map[string]struct{}, len(usernames))
	out := make([]string, 0, len(usernames))
	for _, name := range usernames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
