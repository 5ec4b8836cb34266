package server_test

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

	"staffreview/internal/app/server"
	"staffreview/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		Addr:                 ":0",
		DatabaseURL:          dbURL,
		JWTSecret:            "test-secret",
		FrontendDir:          "frontend/dist",
		Environment:          "test",
		SeedAdminName:        "Test HR Admin",
		SeedAdminEmail:       "admin@test.local",
		SeedAdminPassword:    "ChangeMe123!",
		SeedStarterTemplates: true,
		RunMigrations:        true,
		MigrationsDir:        "../../../migrations",
		RunSeed:              true,
		MaxBodyBytes:         1048576,
		RateLimitPerMinute:   1000,
		AllowResubmission:    true,
		EmailFrom:            "no-reply@test.local",
	}
}

func startApp(t *testing.T) (*httptest.Server, config.Config) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return ts, cfg
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, payload any) (int, envelope) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode response: %v", method, url, err)
	}
	return resp.StatusCode, env
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	status, env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d (%+v)", email, status, env.Error)
	}
	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil || result.Token == "" {
		t.Fatalf("login %s: no token in response", email)
	}
	return result.Token
}

func createdID(t *testing.T, env envelope) int64 {
	t.Helper()
	var result struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil || result.ID == 0 {
		t.Fatalf("expected created id, got %s", string(env.Data))
	}
	return result.ID
}

func TestReviewCycleWorkflow(t *testing.T) {
	ts, cfg := startApp(t)
	client := ts.Client()
	baseURL := ts.URL

	hrToken := login(t, client, baseURL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	suffix := time.Now().UnixNano()

	// Department plus one head and one staff member.
	status, env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/departments", hrToken, map[string]any{
		"name": fmt.Sprintf("Cardiology %d", suffix),
	})
	if status != http.StatusCreated {
		t.Fatalf("create department: expected 201, got %d (%+v)", status, env.Error)
	}
	deptID := createdID(t, env)

	headEmail := fmt.Sprintf("head-%d@test.local", suffix)
	status, env = doJSON(t, client, http.MethodPost, baseURL+"/api/v1/users", hrToken, map[string]any{
		"fullName":     "Dr. Amit Patel",
		"email":        headEmail,
		"role":         "Dept Head",
		"departmentId": deptID,
	})
	if status != http.StatusCreated {
		t.Fatalf("create head: expected 201, got %d (%+v)", status, env.Error)
	}
	headID := createdID(t, env)

	staffEmail := fmt.Sprintf("staff-%d@test.local", suffix)
	status, env = doJSON(t, client, http.MethodPost, baseURL+"/api/v1/users", hrToken, map[string]any{
		"fullName":     "Nurse Joy Kimani",
		"email":        staffEmail,
		"role":         "Staff",
		"departmentId": deptID,
	})
	if status != http.StatusCreated {
		t.Fatalf("create staff: expected 201, got %d (%+v)", status, env.Error)
	}
	staffID := createdID(t, env)

	status, env = doJSON(t, client, http.MethodPut, fmt.Sprintf("%s/api/v1/departments/%d", baseURL, deptID), hrToken, map[string]any{
		"name":       fmt.Sprintf("Cardiology %d", suffix),
		"headUserId": headID,
	})
	if status != http.StatusOK {
		t.Fatalf("assign head: expected 200, got %d (%+v)", status, env.Error)
	}

	// Invited accounts activate through signup.
	for _, email := range []string{headEmail, staffEmail} {
		status, env = doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/signup", "", map[string]string{
			"email":    email,
			"password": "Secret123",
		})
		if status != http.StatusOK {
			t.Fatalf("signup %s: expected 200, got %d (%+v)", email, status, env.Error)
		}
	}
	headToken := login(t, client, baseURL, headEmail, "Secret123")
	staffToken := login(t, client, baseURL, staffEmail, "Secret123")

	// Seeded starter templates.
	status, env = doJSON(t, client, http.MethodGet, baseURL+"/api/v1/templates", hrToken, nil)
	if status != http.StatusOK {
		t.Fatalf("list templates: expected 200, got %d", status)
	}
	var templateList []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(env.Data, &templateList); err != nil {
		t.Fatalf("decode templates: %v", err)
	}
	var staffTemplateID, headTemplateID int64
	for _, tpl := range templateList {
		switch tpl.Name {
		case "Staff Annual Review":
			staffTemplateID = tpl.ID
		case "Department Head Annual Review":
			headTemplateID = tpl.ID
		}
	}
	if staffTemplateID == 0 || headTemplateID == 0 {
		t.Fatalf("expected seeded templates, got %+v", templateList)
	}

	// Cycle fan-out: one head review plus one staff review.
	status, env = doJSON(t, client, http.MethodPost, baseURL+"/api/v1/cycles", hrToken, map[string]any{
		"cycleName":          fmt.Sprintf("Annual %d", suffix),
		"startDate":          "2026-01-01",
		"endDate":            "2026-12-31",
		"templateId":         staffTemplateID,
		"deptHeadTemplateId": headTemplateID,
		"departmentIds":      []int64{deptID},
	})
	if status != http.StatusCreated {
		t.Fatalf("create cycle: expected 201, got %d (%+v)", status, env.Error)
	}
	var cycleResult struct {
		CycleID        int64 `json:"cycleId"`
		ReviewsCreated int   `json:"reviewsCreated"`
	}
	if err := json.Unmarshal(env.Data, &cycleResult); err != nil {
		t.Fatalf("decode cycle response: %v", err)
	}
	if cycleResult.ReviewsCreated != 2 {
		t.Fatalf("expected 2 reviews (head + staff), got %d", cycleResult.ReviewsCreated)
	}

	// The head's queue holds the staff review, pending.
	status, env = doJSON(t, client, http.MethodGet, fmt.Sprintf("%s/api/v1/cycles/reviewer/%d", baseURL, headID), headToken, nil)
	if status != http.StatusOK {
		t.Fatalf("reviewer queue: expected 200, got %d", status)
	}
	var reviewerQueue []struct {
		ReviewID     int64  `json:"reviewId"`
		Status       string `json:"status"`
		RevieweeName string `json:"revieweeName"`
	}
	if err := json.Unmarshal(env.Data, &reviewerQueue); err != nil {
		t.Fatalf("decode reviewer queue: %v", err)
	}
	if len(reviewerQueue) != 1 || reviewerQueue[0].Status != "Pending" {
		t.Fatalf("expected one pending review in head queue, got %+v", reviewerQueue)
	}
	reviewID := reviewerQueue[0].ReviewID

	// Build answers from the template's own questions.
	status, env = doJSON(t, client, http.MethodGet, fmt.Sprintf("%s/api/v1/cycles/review/%d", baseURL, reviewID), headToken, nil)
	if status != http.StatusOK {
		t.Fatalf("review detail: expected 200, got %d", status)
	}
	var detail struct {
		Questions []struct {
			QuestionID   int64  `json:"questionId"`
			QuestionType string `json:"questionType"`
		} `json:"questions"`
	}
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		t.Fatalf("decode review detail: %v", err)
	}
	if len(detail.Questions) == 0 {
		t.Fatal("expected template questions on review detail")
	}
	answers := make([]map[string]any, 0, len(detail.Questions))
	for _, q := range detail.Questions {
		answer := map[string]any{"QuestionID": q.QuestionID}
		if q.QuestionType == "RatingScale1-5" {
			answer["AnswerRating"] = 4
		} else {
			answer["AnswerText"] = "Handled the busiest rotation of the year without a single incident report."
		}
		answers = append(answers, answer)
	}

	// Staff cannot submit someone else's review.
	status, env = doJSON(t, client, http.MethodPut, fmt.Sprintf("%s/api/v1/cycles/review/submit/%d", baseURL, reviewID), staffToken, map[string]any{
		"answers":         answers,
		"overallComments": "should be rejected",
	})
	if status != http.StatusForbidden {
		t.Fatalf("submit as reviewee: expected 403, got %d", status)
	}

	status, env = doJSON(t, client, http.MethodPut, fmt.Sprintf("%s/api/v1/cycles/review/submit/%d", baseURL, reviewID), headToken, map[string]any{
		"answers":         answers,
		"overallComments": "Joy has been dependable all year. Patients mention her by name in feedback forms. She trains new hires without being asked.",
	})
	if status != http.StatusOK {
		t.Fatalf("submit review: expected 200, got %d (%+v)", status, env.Error)
	}
	var submitResult struct {
		AISummary string `json:"aiSummary"`
	}
	if err := json.Unmarshal(env.Data, &submitResult); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}
	if submitResult.AISummary == "" {
		t.Fatal("expected a summary on submission")
	}

	// Acknowledge as the reviewee, then verify the state guard on a repeat.
	status, env = doJSON(t, client, http.MethodPut, fmt.Sprintf("%s/api/v1/cycles/review/acknowledge/%d", baseURL, reviewID), staffToken, map[string]any{
		"acknowledgementComments": "Thanks for the detailed feedback.",
	})
	if status != http.StatusOK {
		t.Fatalf("acknowledge: expected 200, got %d (%+v)", status, env.Error)
	}
	status, env = doJSON(t, client, http.MethodPut, fmt.Sprintf("%s/api/v1/cycles/review/acknowledge/%d", baseURL, reviewID), staffToken, map[string]any{
		"acknowledgementComments": "again",
	})
	if status != http.StatusConflict {
		t.Fatalf("second acknowledge: expected 409, got %d", status)
	}

	// Reviewee queue reflects the acknowledged state.
	status, env = doJSON(t, client, http.MethodGet, fmt.Sprintf("%s/api/v1/cycles/reviewee/%d", baseURL, staffID), staffToken, nil)
	if status != http.StatusOK {
		t.Fatalf("reviewee queue: expected 200, got %d", status)
	}
	var revieweeQueue []struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &revieweeQueue); err != nil {
		t.Fatalf("decode reviewee queue: %v", err)
	}
	if len(revieweeQueue) != 1 || revieweeQueue[0].Status != "Acknowledged" {
		t.Fatalf("expected one acknowledged review, got %+v", revieweeQueue)
	}

	// Dashboard counts include the completed review.
	status, env = doJSON(t, client, http.MethodGet, baseURL+"/api/v1/hr/dashboard-metrics", hrToken, nil)
	if status != http.StatusOK {
		t.Fatalf("dashboard metrics: expected 200, got %d", status)
	}
	var metrics struct {
		TotalReviews     int `json:"totalReviews"`
		CompletedReviews int `json:"completedReviews"`
	}
	if err := json.Unmarshal(env.Data, &metrics); err != nil {
		t.Fatalf("decode metrics: %v", err)
	}
	if metrics.TotalReviews < 2 || metrics.CompletedReviews < 1 {
		t.Fatalf("unexpected metrics: %+v", metrics)
	}
}

func TestCycleCreationRequiresHRRole(t *testing.T) {
	ts, cfg := startApp(t)
	client := ts.Client()
	baseURL := ts.URL

	payload := map[string]any{
		"cycleName":          "Unauthorized",
		"startDate":          "2026-01-01",
		"endDate":            "2026-12-31",
		"templateId":         1,
		"deptHeadTemplateId": 2,
		"departmentIds":      []int64{1},
	}

	status, _ := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/cycles", "", payload)
	if status != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", status)
	}

	hrToken := login(t, client, baseURL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	suffix := time.Now().UnixNano()
	staffEmail := fmt.Sprintf("gate-%d@test.local", suffix)
	status, env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/users", hrToken, map[string]any{
		"fullName": "Gate Check",
		"email":    staffEmail,
		"role":     "Staff",
	})
	if status != http.StatusCreated {
		t.Fatalf("create staff: expected 201, got %d (%+v)", status, env.Error)
	}
	status, _ = doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/signup", "", map[string]string{
		"email":    staffEmail,
		"password": "Secret123",
	})
	if status != http.StatusOK {
		t.Fatalf("signup: expected 200, got %d", status)
	}
	staffToken := login(t, client, baseURL, staffEmail, "Secret123")

	status, _ = doJSON(t, client, http.MethodPost, baseURL+"/api/v1/cycles", staffToken, payload)
	if status != http.StatusForbidden {
		t.Fatalf("staff role: expected 403, got %d", status)
	}
}
