package handlers

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/labshare/server/internal/mailbox"
	"github.com/labshare/server/internal/middleware"
	"github.com/labshare/server/internal/models"
	"github.com/labshare/server/internal/services"
	"github.com/labshare/server/pkg/logger"
	"github.com/labshare/server/pkg/utils"
)

type FilesHandler struct {
	Sharing *services.SharingService
	Audit   *services.AuditService
}

func NewFilesHandler(sharing *services.SharingService, audit *services.AuditService) *FilesHandler {
	return &FilesHandler{Sharing: sharing, Audit: audit}
}

// Upload accepts a multipart form (file, caption, recipients) from a
// researcher and appends a new record to the store.
func (h *FilesHandler) Upload(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "file is required")
	}

	filename := filepath.Base(strings.TrimSpace(fileHeader.Filename))
	if filename == "" || filename == "." {
		return utils.Error(c, fiber.StatusBadRequest, "invalid filename")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	recipients := formRecipients(c)

	stream, err := fileHeader.Open()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed opening uploaded file")
	}
	defer stream.Close()

	record, err := h.Sharing.Upload(c.Context(), currentUser, services.UploadInput{
		FileName:   filename,
		Caption:    c.FormValue("caption"),
		MimeType:   contentType,
		Size:       fileHeader.Size,
		Recipients: recipients,
		Content:    stream,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrForbidden):
			return utils.Error(c, fiber.StatusForbidden, "only researchers can upload files")
		case errors.Is(err, services.ErrInvalidRecipients):
			return utils.Error(c, fiber.StatusBadRequest, fmt.Sprintf("between 1 and %d recipients are required", models.MaxRecipients))
		case errors.Is(err, services.ErrUnknownRecipient):
			return utils.Error(c, fiber.StatusBadRequest, "recipient does not exist or cannot receive files")
		case errors.Is(err, services.ErrInvalidCaption):
			return utils.Error(c, fiber.StatusBadRequest, "caption is required")
		default:
			return utils.Error(c, fiber.StatusInternalServerError, "failed uploading file")
		}
	}

	logger.InfoWithUser(currentUser.ID.String(), "file_uploaded", map[string]interface{}{
		"file_id":    record.ID.String(),
		"file_name":  record.FileName,
		"file_size":  record.Size,
		"recipients": record.RecipientUsernames(),
	})

	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &currentUser.ID,
		Action:       "file.upload",
		ResourceType: "file",
		ResourceID:   &record.ID,
		Details: map[string]interface{}{
			"file_name":  record.FileName,
			"file_size":  record.Size,
			"recipients": record.RecipientUsernames(),
		},
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	})

	return utils.Success(c, fiber.StatusCreated, record)
}

// Outbox returns the researcher's sent records, newest first, recipients
// listed per record.
func (h *FilesHandler) Outbox(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	records, err := h.Sharing.OutboxRecords(c.Context(), currentUser.Username)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading outbox")
	}

	return utils.Success(c, fiber.StatusOK, mailbox.OrderMessages(records))
}

// Inbox returns the grouped conversation view: one entry per sender, ordered
// by most recent upload, messages newest first within each.
func (h *FilesHandler) Inbox(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	records, err := h.Sharing.InboxRecords(c.Context(), currentUser.Username)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading inbox")
	}

	return utils.Success(c, fiber.StatusOK, mailbox.Conversations(records, currentUser.Username))
}

// Conversation returns one sender's messages to the viewer, newest first.
func (h *FilesHandler) Conversation(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	sender := strings.TrimSpace(c.Params("sender"))
	if sender == "" {
		return utils.Error(c, fiber.StatusBadRequest, "sender is required")
	}

	records, err := h.Sharing.InboxRecords(c.Context(), currentUser.Username)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading inbox")
	}

	groups := mailbox.GroupBySender(records)
	files, ok := groups[sender]
	if !ok {
		return utils.Error(c, fiber.StatusNotFound, "no conversation with this sender")
	}

	ordered := mailbox.OrderMessages(files)
	return utils.Success(c, fiber.StatusOK, mailbox.Conversation{
		Counterparty: sender,
		Files:        ordered,
		UnreadCount:  mailbox.UnreadCount(ordered),
		LatestAt:     ordered[0].UploadedAt,
	})
}

// UnreadCount returns how many received records await acknowledgement.
func (h *FilesHandler) UnreadCount(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	records, err := h.Sharing.InboxRecords(c.Context(), currentUser.Username)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading inbox")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"count": mailbox.UnreadCount(records)})
}

// MarkRead acknowledges a received record. Acknowledging twice is a no-op.
func (h *FilesHandler) MarkRead(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	record, err := h.Sharing.MarkRead(c.Context(), currentUser, fileID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFileNotFound):
			return utils.Error(c, fiber.StatusNotFound, "file not found")
		case errors.Is(err, services.ErrForbidden):
			return utils.Error(c, fiber.StatusForbidden, "file is not addressed to you")
		default:
			return utils.Error(c, fiber.StatusInternalServerError, "failed marking file as read")
		}
	}

	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &currentUser.ID,
		Action:       "file.read",
		ResourceType: "file",
		ResourceID:   &record.ID,
		Details: map[string]interface{}{
			"file_name": record.FileName,
		},
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	})

	return utils.Success(c, fiber.StatusOK, record)
}

// Download streams the record's bytes to a recipient and acknowledges the
// read in the same step.
func (h *FilesHandler) Download(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	record, stream, err := h.Sharing.Open(c.Context(), currentUser, fileID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFileNotFound):
			return utils.Error(c, fiber.StatusNotFound, "file not found")
		case errors.Is(err, services.ErrForbidden):
			return utils.Error(c, fiber.StatusForbidden, "file is not addressed to you")
		default:
			return utils.Error(c, fiber.StatusInternalServerError, "failed downloading file")
		}
	}

	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &currentUser.ID,
		Action:       "file.download",
		ResourceType: "file",
		ResourceID:   &record.ID,
		Details: map[string]interface{}{
			"file_name": record.FileName,
		},
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	})

	c.Set(fiber.HeaderContentType, record.MimeType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", record.FileName))
	return c.SendStream(stream)
}

// formRecipients collects recipients from repeated form fields, falling back
// to a comma-separated single value.
func formRecipients(c *fiber.Ctx) []string {
	if form, err := c.MultipartForm(); err == nil {
		if values, ok := form.Value["recipients"]; ok && len(values) > 1 {
			return values
		}
	}

	raw := c.FormValue("recipients")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
