package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/labshare/server/internal/models"
)

func TestRecipients(t *testing.T) {
	t.Run("lists doctors and patients only, ordered by username", func(t *testing.T) {
		env := setupTestEnv(t)
		_, researcherToken := createTestUser(t, env.db, "researcher1", models.UserRoleResearcher)
		createTestUser(t, env.db, "researcher2", models.UserRoleResearcher)
		createTestUser(t, env.db, "patient_jane", models.UserRolePatient)
		createTestUser(t, env.db, "dr_smith", models.UserRoleDoctor)

		resp := performRequest(t, env.app, fiber.MethodGet, "/api/users/recipients", nil, authHeaders(researcherToken))
		assertStatus(t, resp, fiber.StatusOK)

		body := decodeJSONMap(t, resp)
		users, _ := body["data"].([]any)
		if len(users) != 2 {
			t.Fatalf("expected 2 recipients, got %d", len(users))
		}

		first, _ := users[0].(map[string]any)
		second, _ := users[1].(map[string]any)
		if first["username"] != "dr_smith" || second["username"] != "patient_jane" {
			t.Errorf("expected [dr_smith patient_jane], got [%v %v]", first["username"], second["username"])
		}
	})

	t.Run("search narrows by username or email", func(t *testing.T) {
		env := setupTestEnv(t)
		_, researcherToken := createTestUser(t, env.db, "researcher1", models.UserRoleResearcher)
		createTestUser(t, env.db, "patient_jane", models.UserRolePatient)
		createTestUser(t, env.db, "dr_smith", models.UserRoleDoctor)

		resp := performRequest(t, env.app, fiber.MethodGet, "/api/users/recipients?search=jane", nil, authHeaders(researcherToken))
		assertStatus(t, resp, fiber.StatusOK)

		body := decodeJSONMap(t, resp)
		users, _ := body["data"].([]any)
		if len(users) != 1 {
			t.Fatalf("expected 1 recipient for search, got %d", len(users))
		}
		match, _ := users[0].(map[string]any)
		if match["username"] != "patient_jane" {
			t.Errorf("expected patient_jane, got %v", match["username"])
		}
	})

	t.Run("recipient roles cannot browse the directory", func(t *testing.T) {
		env := setupTestEnv(t)
		_, doctorToken := createTestUser(t, env.db, "dr_smith", models.UserRoleDoctor)

		resp := performRequest(t, env.app, fiber.MethodGet, "/api/users/recipients", nil, authHeaders(doctorToken))
		assertStatus(t, resp, fiber.StatusForbidden)
	})
}
