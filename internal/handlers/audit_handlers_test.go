package handlers

import (
	"io"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/labshare/server/internal/models"
)

func TestExportMyLog(t *testing.T) {
	t.Run("exports own entries as CSV", func(t *testing.T) {
		env := setupTestEnv(t)
		user, token := createTestUser(t, env.db, "researcher1", models.UserRoleResearcher)
		other, _ := createTestUser(t, env.db, "researcher2", models.UserRoleResearcher)

		entries := []models.AuditLog{
			{UserID: &user.ID, Action: "file.upload", ResourceType: "file", IPAddress: "127.0.0.1"},
			{UserID: &other.ID, Action: "user.login", ResourceType: "user", IPAddress: "127.0.0.1"},
		}
		for i := range entries {
			if err := env.db.Create(&entries[i]).Error; err != nil {
				t.Fatalf("failed creating audit entry: %v", err)
			}
		}

		resp := performRequest(t, env.app, fiber.MethodGet, "/api/audit-log/export", nil, authHeaders(token))
		assertStatus(t, resp, fiber.StatusOK)

		if ct := resp.Header.Get(fiber.HeaderContentType); !strings.HasPrefix(ct, "text/csv") {
			t.Errorf("expected a CSV content type, got %q", ct)
		}

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("failed reading export body: %v", err)
		}
		body := string(raw)
		if !strings.Contains(body, "file.upload") {
			t.Error("export is missing the caller's entry")
		}
		if strings.Contains(body, "user.login") {
			t.Error("export leaked another user's entry")
		}
	})

	t.Run("supports JSON format", func(t *testing.T) {
		env := setupTestEnv(t)
		user, token := createTestUser(t, env.db, "researcher1", models.UserRoleResearcher)

		entry := models.AuditLog{UserID: &user.ID, Action: "file.upload", ResourceType: "file", IPAddress: "127.0.0.1"}
		if err := env.db.Create(&entry).Error; err != nil {
			t.Fatalf("failed creating audit entry: %v", err)
		}

		resp := performRequest(t, env.app, fiber.MethodGet, "/api/audit-log/export?format=json", nil, authHeaders(token))
		assertStatus(t, resp, fiber.StatusOK)

		body := decodeJSONMap(t, resp)
		data, _ := body["data"].([]any)
		if len(data) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(data))
		}
	})

	t.Run("rejects unknown formats", func(t *testing.T) {
		env := setupTestEnv(t)
		_, token := createTestUser(t, env.db, "researcher1", models.UserRoleResearcher)

		resp := performRequest(t, env.app, fiber.MethodGet, "/api/audit-log/export?format=xml", nil, authHeaders(token))
		assertStatus(t, resp, fiber.StatusBadRequest)
	})
}
