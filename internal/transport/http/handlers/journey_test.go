package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"appraisal/internal/app/server"
	"appraisal/internal/domain/auth"
	"appraisal/internal/platform/config"
	"appraisal/internal/platform/db"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   any             `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		Environment:        "test",
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		SeedCriteria:       true,
		EmailFrom:          "no-reply@test.local",
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
		CreationInterval:   24 * time.Hour,
	}
}

func startApp(t *testing.T) (*server.App, *httptest.Server) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool, "../../../../migrations"); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := db.Seed(ctx, pool, cfg); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	app := server.New(cfg, pool)
	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return app, ts
}

func TestEvaluationLifecycleJourney(t *testing.T) {
	app, ts := startApp(t)
	client := ts.Client()
	ctx := context.Background()

	adminToken := login(t, client, ts.URL, "admin@test.local", "ChangeMe123!")

	suffix := time.Now().UnixNano()
	employeeID := createUser(t, app, fmt.Sprintf("employee-%d@example.com", suffix), auth.RoleUser, "Employee123!")
	managerID := createUser(t, app, fmt.Sprintf("manager-%d@example.com", suffix), auth.RoleManager, "Manager123!")

	periodID := createPeriod(t, client, ts.URL, adminToken)
	postJSON(t, client, ts.URL+"/api/v1/eligibility", adminToken, map[string]any{"userId": employeeID})
	postJSON(t, client, ts.URL+"/api/v1/eligibility/mappings", adminToken, map[string]any{
		"employeeId": employeeID,
		"managerId":  managerID,
	})

	created := runScheduler(t, client, ts.URL, adminToken, periodID)
	if created != 1 {
		t.Fatalf("expected 1 evaluation created, got %d", created)
	}
	if again := runScheduler(t, client, ts.URL, adminToken, periodID); again != 0 {
		t.Fatalf("second run must create nothing, got %d", again)
	}

	var count int
	if err := app.DB.QueryRow(ctx,
		"SELECT count(*) FROM evaluations WHERE period_id = $1 AND deleted_at IS NULL", periodID,
	).Scan(&count); err != nil {
		t.Fatalf("failed to count evaluations: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 evaluation row, got %d", count)
	}

	evaluationID, status := firstEvaluation(t, client, ts.URL, adminToken, periodID)
	if status != "pending_self_assessment" {
		t.Fatalf("expected initial status pending_self_assessment, got %s", status)
	}

	employeeToken := login(t, client, ts.URL, fmt.Sprintf("employee-%d@example.com", suffix), "Employee123!")
	managerToken := login(t, client, ts.URL, fmt.Sprintf("manager-%d@example.com", suffix), "Manager123!")

	selfAnswers := map[string]any{
		"answers": []map[string]any{
			{"questionId": 1, "text": "Delivered the quarterly migration on time."},
			{"questionId": 2, "text": "Want to grow toward tech lead responsibilities."},
		},
	}
	status = putJSONStatusField(t, client, ts.URL+"/api/v1/evaluations/"+evaluationID+"/self-assessment", employeeToken, selfAnswers)
	if status != "awaiting_manager_review" {
		t.Fatalf("expected awaiting_manager_review after submission, got %s", status)
	}

	status = putJSONStatusField(t, client, ts.URL+"/api/v1/evaluations/"+evaluationID+"/review", managerToken, map[string]any{
		"decision":     "return",
		"returnReason": "Please add concrete goals for next cycle.",
	})
	if status != "returned_for_adjustment" {
		t.Fatalf("expected returned_for_adjustment, got %s", status)
	}

	status = putJSONStatusField(t, client, ts.URL+"/api/v1/evaluations/"+evaluationID+"/self-assessment", employeeToken, selfAnswers)
	if status != "awaiting_manager_review" {
		t.Fatalf("expected awaiting_manager_review after resubmission, got %s", status)
	}

	answers := scoreAllCriteria(t, client, ts.URL, managerToken)
	resp := putJSON(t, client, ts.URL+"/api/v1/evaluations/"+evaluationID+"/review", managerToken, map[string]any{
		"answers":  answers,
		"decision": "approve",
		"comment":  "Strong quarter across the board.",
	})
	var approved map[string]any
	if err := json.Unmarshal(resp.Data, &approved); err != nil {
		t.Fatalf("failed to decode approval response: %v", err)
	}
	if approved["status"] != "approved" {
		t.Fatalf("expected approved, got %v", approved["status"])
	}
	if approved["totalScore"] == nil {
		t.Fatal("expected totalScore to be set on approval")
	}

	// Soft delete hides the row from the active list but keeps it, status and
	// score intact, in the trash; restore brings it back unchanged.
	doJSON(t, client, http.MethodDelete, ts.URL+"/api/v1/evaluations/"+evaluationID, adminToken, nil)

	if active := getList(t, client, ts.URL+"/api/v1/evaluations?periodId="+periodID, adminToken); len(active) != 0 {
		t.Fatalf("expected active list to be empty after soft delete, got %d rows", len(active))
	}
	trash := getList(t, client, ts.URL+"/api/v1/evaluations/trash?periodId="+periodID, adminToken)
	if len(trash) != 1 {
		t.Fatalf("expected 1 trashed evaluation, got %d", len(trash))
	}
	if trash[0]["status"] != "approved" {
		t.Fatalf("expected trashed row to keep status approved, got %v", trash[0]["status"])
	}
	if trash[0]["deletedAt"] == nil {
		t.Fatal("expected deletedAt on trashed row")
	}

	postJSON(t, client, ts.URL+"/api/v1/evaluations/"+evaluationID+"/restore", adminToken, map[string]any{})

	restored := getList(t, client, ts.URL+"/api/v1/evaluations?periodId="+periodID, adminToken)
	if len(restored) != 1 {
		t.Fatalf("expected 1 active evaluation after restore, got %d", len(restored))
	}
	if restored[0]["status"] != "approved" || restored[0]["totalScore"] == nil {
		t.Fatalf("expected restore to preserve status and score, got %v / %v", restored[0]["status"], restored[0]["totalScore"])
	}
	if restored[0]["deletedAt"] != nil {
		t.Fatal("expected deletedAt cleared after restore")
	}

	trail := getList(t, client, ts.URL+"/api/v1/evaluations/"+evaluationID+"/audit", adminToken)
	if len(trail) == 0 {
		t.Fatal("expected audit events for the evaluation")
	}
	actions := make(map[string]bool, len(trail))
	for _, event := range trail {
		action, _ := event["action"].(string)
		actions[action] = true
	}
	for _, want := range []string{"evaluation.submit_self_assessment", "evaluation.approve", "evaluation.soft_delete", "evaluation.restore"} {
		if !actions[want] {
			t.Fatalf("expected audit action %s, recorded: %v", want, actions)
		}
	}
}

func getList(t *testing.T, client *http.Client, url, token string) []map[string]any {
	t.Helper()
	resp := getJSON(t, client, url, token)
	var payload []map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode list from %s: %v", url, err)
	}
	return payload
}

func TestEmployeeCannotListOthersEvaluations(t *testing.T) {
	app, ts := startApp(t)
	client := ts.Client()

	email := fmt.Sprintf("lone-%d@example.com", time.Now().UnixNano())
	otherID := createUser(t, app, fmt.Sprintf("other-%d@example.com", time.Now().UnixNano()), auth.RoleUser, "Other123!")
	createUser(t, app, email, auth.RoleUser, "Employee123!")
	employeeToken := login(t, client, ts.URL, email, "Employee123!")

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/evaluations?employeeId="+otherID, nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+employeeToken)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 listing another user's evaluations, got %d", resp.StatusCode)
	}
}

func createUser(t *testing.T, app *server.App, email, role, password string) string {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	var id string
	if err := app.DB.QueryRow(context.Background(), `
    INSERT INTO users (first_name, last_name, email, password_hash, role, position, department)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING id
  `, "Journey", "Tester", email, hash, role, "Engineer", "Engineering").Scan(&id); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return id
}

func createPeriod(t *testing.T, client *http.Client, baseURL, token string) string {
	t.Helper()
	today := time.Now().UTC()
	resp := postJSON(t, client, baseURL+"/api/v1/periods", token, map[string]any{
		"name":                   fmt.Sprintf("Journey-%d", today.UnixNano()),
		"year":                   today.Year(),
		"startDate":              today.Format("2006-01-02"),
		"endDate":                today.AddDate(0, 3, 0).Format("2006-01-02"),
		"selfAssessmentDeadline": today.AddDate(0, 1, 0).Format("2006-01-02"),
		"approvalDeadline":       today.AddDate(0, 2, 0).Format("2006-01-02"),
		"status":                 "open",
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode period response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected period id")
	}
	return id
}

func runScheduler(t *testing.T, client *http.Client, baseURL, token, periodID string) int {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/scheduler/run?periodId="+periodID, token, map[string]any{})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode scheduler response: %v", err)
	}
	created, _ := payload["totalCreated"].(float64)
	return int(created)
}

func firstEvaluation(t *testing.T, client *http.Client, baseURL, token, periodID string) (string, string) {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/evaluations?periodId="+periodID, token)
	var payload []map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode evaluation list: %v", err)
	}
	if len(payload) != 1 {
		t.Fatalf("expected 1 evaluation, got %d", len(payload))
	}
	id, _ := payload[0]["id"].(string)
	status, _ := payload[0]["status"].(string)
	return id, status
}

// scoreAllCriteria answers every manager-audience criterion applicable to a
// non-leader with the same score.
func scoreAllCriteria(t *testing.T, client *http.Client, baseURL, token string) []map[string]any {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/criteria?audience=manager", token)
	var payload []map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode criteria list: %v", err)
	}
	var answers []map[string]any
	for _, c := range payload {
		if leadersOnly, _ := c["leadersOnly"].(bool); leadersOnly {
			continue
		}
		id, _ := c["id"].(string)
		answers = append(answers, map[string]any{"criterionId": id, "score": 4})
	}
	if len(answers) == 0 {
		t.Fatal("expected seeded criteria to score")
	}
	return answers
}

func putJSONStatusField(t *testing.T, client *http.Client, url, token string, body any) string {
	t.Helper()
	resp := putJSON(t, client, url, token, body)
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode response from %s: %v", url, err)
	}
	status, _ := payload["status"].(string)
	return status
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	return doJSON(t, client, http.MethodPost, url, token, body)
}

func putJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	return doJSON(t, client, http.MethodPut, url, token, body)
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	return doJSON(t, client, http.MethodGet, url, token, nil)
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request to %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response from %s: %v", url, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		t.Fatalf("%s %s returned %d: %s", method, url, resp.StatusCode, raw)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode envelope from %s: %v", url, err)
	}
	return env
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}
