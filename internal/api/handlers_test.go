// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/sentinelshield/sentinelshield/internal/auth"
	"github.com/sentinelshield/sentinelshield/internal/config"
	"github.com/sentinelshield/sentinelshield/internal/feedback"
	"github.com/sentinelshield/sentinelshield/internal/logging"
	"github.com/sentinelshield/sentinelshield/internal/models"
	"github.com/sentinelshield/sentinelshield/internal/realtime"
)

func init() {
	logging.Init(logging.Config{Level: "error", Format: "json", Output: io.Discard})
}

// stubTransport satisfies realtime.Transport for connections registered
// directly, bypassing the WebSocket upgrade.
type stubTransport struct {
	mu     sync.Mutex
	sent   []models.Envelope
	closed bool
}

func (s *stubTransport) Send(env models.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, env)
	return nil
}

func (s *stubTransport) Close(code int, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubTransport) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// testEnv wires a full handler stack against in-memory stores.
type testEnv struct {
	routes       http.Handler
	jwt          *auth.JWTManager
	registry     *realtime.Registry
	queue        *realtime.QueueStore
	buffer       *feedback.Buffer
	orchestrator *feedback.Orchestrator
}

func newTestEnv(t *testing.T, threshold int) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   0, // disabled in tests
			RateLimitWindow: time.Minute,
		},
		Security: config.SecurityConfig{
			JWTSecret:      strings.Repeat("k", 32),
			SessionTimeout: time.Hour,
			AdminRole:      "admin",
		},
		Realtime: config.RealtimeConfig{
			HeartbeatInterval: time.Hour,
			QueueCapacity:     10,
			SendBuffer:        8,
			WriteWait:         time.Second,
			PongWait:          time.Second,
			MaxMessageSize:    1024,
			HandshakeTimeout:  time.Second,
		},
		Feedback: config.FeedbackConfig{RetrainThreshold: threshold},
	}

	queue := realtime.NewQueueStore(cfg.Realtime.QueueCapacity)
	registry := realtime.NewRegistry(queue, realtime.WithHeartbeatInterval(time.Hour))
	router := realtime.NewRouter(registry, cfg.Security.AdminRole)

	buffer, err := feedback.NewBuffer(threshold, nil)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	orchestrator, err := feedback.NewOrchestrator(buffer, nil, nil)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	jwtManager, err := auth.NewJWTManager(cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	h := NewHandler(cfg, registry, router, buffer, orchestrator, jwtManager)
	return &testEnv{
		routes:       h.Routes(),
		jwt:          jwtManager,
		registry:     registry,
		queue:        queue,
		buffer:       buffer,
		orchestrator: orchestrator,
	}
}

func (e *testEnv) token(t *testing.T, orgID, userID, role string) string {
	t.Helper()
	token, err := e.jwt.GenerateToken(orgID, userID, role)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

// apiEnvelope mirrors models.APIResponse with Data left as raw JSON so
// tests can decode it into the shape they expect.
type apiEnvelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.routes.ServeHTTP(rec, req)

	var env apiEnvelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func decodeData(t *testing.T, env apiEnvelope, v any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %q: %v", string(env.Data), err)
	}
}

func TestHealthUnauthenticated(t *testing.T) {
	env := newTestEnv(t, 100)

	rec, resp := env.do(t, http.MethodGet, "/api/v1/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Status != "success" {
		t.Errorf("envelope status = %q", resp.Status)
	}

	var data struct {
		Status string `json:"status"`
	}
	decodeData(t, resp, &data)
	if data.Status != "healthy" {
		t.Errorf("health status = %q", data.Status)
	}
}

func TestMetricsUnauthenticated(t *testing.T) {
	env := newTestEnv(t, 100)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	env.routes.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("prometheus exposition missing runtime metrics")
	}
}

func TestAuthentication(t *testing.T) {
	env := newTestEnv(t, 100)

	tests := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"garbage token", "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := env.do(t, http.MethodGet, "/api/v1/connections", tt.token, nil)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if resp.Error == nil || resp.Error.Code != "UNAUTHORIZED" {
				t.Errorf("error = %+v, want UNAUTHORIZED", resp.Error)
			}
		})
	}
}

func TestQueryParamTokenAccepted(t *testing.T) {
	env := newTestEnv(t, 100)
	token := env.token(t, "org-1", "user-1", "analyst")

	rec, _ := env.do(t, http.MethodGet, "/api/v1/connections?token="+token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAdminEndpointsRequireRole(t *testing.T) {
	env := newTestEnv(t, 100)
	analyst := env.token(t, "org-1", "user-1", "analyst")

	paths := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/api/v1/retraining/trigger", nil},
		{http.MethodPost, "/api/v1/admin/sessions/revoke", RevokeSessionsRequest{UserID: "u", Reason: "r"}},
		{http.MethodPost, "/api/v1/admin/notify", NotifyUserRequest{UserID: "u", MessageType: "m"}},
	}
	for _, p := range paths {
		rec, resp := env.do(t, p.method, p.path, analyst, p.body)
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s %s: status = %d, want 403", p.method, p.path, rec.Code)
		}
		if resp.Error == nil || resp.Error.Code != "FORBIDDEN" {
			t.Errorf("%s %s: error = %+v, want FORBIDDEN", p.method, p.path, resp.Error)
		}
	}
}

func TestConnections(t *testing.T) {
	env := newTestEnv(t, 100)
	token := env.token(t, "org-1", "user-1", "analyst")

	env.registry.Connect(&stubTransport{}, "org-1", "user-1", "conn-1", "analyst")
	env.registry.Connect(&stubTransport{}, "org-1", "user-2", "conn-2", "analyst")
	env.registry.Connect(&stubTransport{}, "org-2", "user-1", "conn-3", "analyst")

	rec, resp := env.do(t, http.MethodGet, "/api/v1/connections", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var data struct {
		OrganizationID  string `json:"organization_id"`
		Connections     int    `json:"connections"`
		UserConnections int    `json:"user_connections"`
	}
	decodeData(t, resp, &data)
	if data.OrganizationID != "org-1" {
		t.Errorf("organization_id = %q", data.OrganizationID)
	}
	if data.Connections != 2 {
		t.Errorf("connections = %d, want 2 (other org must not count)", data.Connections)
	}
	if data.UserConnections != 1 {
		t.Errorf("user_connections = %d, want 1", data.UserConnections)
	}
}

func TestSubmitFeedback(t *testing.T) {
	env := newTestEnv(t, 100)
	token := env.token(t, "org-1", "analyst-1", "analyst")

	rec, resp := env.do(t, http.MethodPost, "/api/v1/feedback", token, SubmitFeedbackRequest{
		ThreatLogID:             "log-1",
		OriginalClassification:  "normal",
		CorrectedClassification: "threat",
		ConfidenceScore:         0.9,
		Reason:                  "lateral movement",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var data struct {
		Accepted             bool `json:"accepted"`
		RetrainingTriggered  bool `json:"retraining_triggered"`
		UnprocessedCount     int  `json:"unprocessed_count"`
		FeedbackUntilRetrain int  `json:"feedback_until_retrain"`
	}
	decodeData(t, resp, &data)
	if !data.Accepted {
		t.Error("accepted = false")
	}
	if data.RetrainingTriggered {
		t.Error("retraining triggered below threshold")
	}
	if data.UnprocessedCount != 1 || data.FeedbackUntilRetrain != 99 {
		t.Errorf("counts = %d/%d, want 1/99", data.UnprocessedCount, data.FeedbackUntilRetrain)
	}

	// The analyst identity comes from the token, not the body.
	stats := env.buffer.Statistics()
	if stats.Total != 1 {
		t.Errorf("buffer total = %d, want 1", stats.Total)
	}
}

func TestSubmitFeedbackTriggersRetraining(t *testing.T) {
	env := newTestEnv(t, 2)
	token := env.token(t, "org-1", "analyst-1", "analyst")

	body := SubmitFeedbackRequest{
		ThreatLogID:             "log-1",
		OriginalClassification:  "normal",
		CorrectedClassification: "anomaly",
	}
	env.do(t, http.MethodPost, "/api/v1/feedback", token, body)

	body.ThreatLogID = "log-2"
	rec, resp := env.do(t, http.MethodPost, "/api/v1/feedback", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var data struct {
		RetrainingTriggered bool `json:"retraining_triggered"`
	}
	decodeData(t, resp, &data)
	if !data.RetrainingTriggered {
		t.Fatal("threshold submission did not trigger retraining")
	}
	if got := len(env.orchestrator.Jobs()); got != 1 {
		t.Errorf("job count = %d, want 1", got)
	}
}

func TestSubmitFeedbackValidation(t *testing.T) {
	env := newTestEnv(t, 100)
	token := env.token(t, "org-1", "analyst-1", "analyst")

	tests := []struct {
		name string
		body SubmitFeedbackRequest
	}{
		{
			name: "missing threat log id",
			body: SubmitFeedbackRequest{
				OriginalClassification:  "normal",
				CorrectedClassification: "threat",
			},
		},
		{
			name: "unknown classification",
			body: SubmitFeedbackRequest{
				ThreatLogID:             "log-1",
				OriginalClassification:  "normal",
				CorrectedClassification: "benign",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := env.do(t, http.MethodPost, "/api/v1/feedback", token, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("error = %+v, want VALIDATION_ERROR", resp.Error)
			}
		})
	}

	if got := env.buffer.Statistics().Total; got != 0 {
		t.Errorf("rejected submissions reached the buffer: total = %d", got)
	}
}

func TestSubmitFeedbackMalformedBody(t *testing.T) {
	env := newTestEnv(t, 100)
	token := env.token(t, "org-1", "analyst-1", "analyst")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTriggerRetrainingEndpoint(t *testing.T) {
	env := newTestEnv(t, 2)
	admin := env.token(t, "org-1", "admin-1", "admin")
	analyst := env.token(t, "org-1", "analyst-1", "analyst")

	// Below threshold: 200 with triggered=false.
	rec, resp := env.do(t, http.MethodPost, "/api/v1/retraining/trigger", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var miss struct {
		Triggered bool `json:"triggered"`
	}
	decodeData(t, resp, &miss)
	if miss.Triggered {
		t.Error("triggered below threshold")
	}

	// One item through the endpoint, one straight into the buffer so the
	// submission path does not auto-trigger before the manual call.
	env.do(t, http.MethodPost, "/api/v1/feedback", analyst, SubmitFeedbackRequest{
		ThreatLogID:             "log-1",
		OriginalClassification:  "normal",
		CorrectedClassification: "threat",
	})
	if err := env.buffer.AddFeedback(models.FeedbackItem{
		ThreatLogID:             "log-2",
		OriginalClassification:  models.ClassificationNormal,
		CorrectedClassification: models.ClassificationThreat,
	}); err != nil {
		t.Fatal(err)
	}

	rec, resp = env.do(t, http.MethodPost, "/api/v1/retraining/trigger", admin, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	var hit struct {
		Triggered bool                 `json:"triggered"`
		Job       models.RetrainingJob `json:"job"`
	}
	decodeData(t, resp, &hit)
	if !hit.Triggered {
		t.Fatal("triggered = false at threshold")
	}
	if hit.Job.Status != models.JobStatusPending {
		t.Errorf("job status = %q, want pending", hit.Job.Status)
	}
	if hit.Job.FeedbackCount != 2 {
		t.Errorf("job feedback count = %d, want 2", hit.Job.FeedbackCount)
	}
}

func TestRetrainingJobLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t, 1)
	admin := env.token(t, "org-1", "admin-1", "admin")

	if err := env.buffer.AddFeedback(models.FeedbackItem{
		ThreatLogID:             "log-1",
		OriginalClassification:  models.ClassificationNormal,
		CorrectedClassification: models.ClassificationThreat,
	}); err != nil {
		t.Fatal(err)
	}
	env.do(t, http.MethodPost, "/api/v1/retraining/trigger", admin, nil)

	jobs := env.orchestrator.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("job count = %d, want 1", len(jobs))
	}
	jobID := jobs[0].JobID

	// Job is visible to non-admin callers.
	analyst := env.token(t, "org-1", "analyst-1", "analyst")
	rec, resp := env.do(t, http.MethodGet, "/api/v1/retraining/jobs/"+jobID, analyst, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get job status = %d, want 200", rec.Code)
	}

	// Worker reports running, then completed with metrics.
	rec, resp = env.do(t, http.MethodPatch, "/api/v1/retraining/jobs/"+jobID, admin,
		UpdateRetrainingJobRequest{Status: "running"})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch running status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	rec, resp = env.do(t, http.MethodPatch, "/api/v1/retraining/jobs/"+jobID, admin,
		UpdateRetrainingJobRequest{
			Status:  "completed",
			Metrics: &models.TrainingMetrics{Accuracy: 0.97},
		})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch completed status = %d, want 200", rec.Code)
	}
	var updated models.RetrainingJob
	decodeData(t, resp, &updated)
	if updated.Status != models.JobStatusCompleted {
		t.Errorf("status = %q, want completed", updated.Status)
	}
	if updated.Metrics == nil || updated.Metrics.Accuracy != 0.97 {
		t.Error("metrics not recorded")
	}

	// Aggregate reflects the terminal state.
	rec, resp = env.do(t, http.MethodGet, "/api/v1/retraining/status", analyst, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status endpoint = %d, want 200", rec.Code)
	}
	var status models.RetrainingStatus
	decodeData(t, resp, &status)
	if status.TotalJobs != 1 || status.Completed != 1 {
		t.Errorf("aggregate = %+v, want 1 total / 1 completed", status)
	}
}

func TestRetrainingJobErrors(t *testing.T) {
	env := newTestEnv(t, 100)
	admin := env.token(t, "org-1", "admin-1", "admin")

	rec, resp := env.do(t, http.MethodGet, "/api/v1/retraining/jobs/job-missing", admin, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get unknown job = %d, want 404", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "NOT_FOUND" {
		t.Errorf("error = %+v, want NOT_FOUND", resp.Error)
	}

	rec, _ = env.do(t, http.MethodPatch, "/api/v1/retraining/jobs/job-missing", admin,
		UpdateRetrainingJobRequest{Status: "running"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("patch unknown job = %d, want 404", rec.Code)
	}

	// The validator rejects statuses outside the worker's vocabulary.
	rec, resp = env.do(t, http.MethodPatch, "/api/v1/retraining/jobs/job-missing", admin,
		UpdateRetrainingJobRequest{Status: "pending"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("patch pending = %d, want 400", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v, want VALIDATION_ERROR", resp.Error)
	}
}

func TestRevokeSessions(t *testing.T) {
	env := newTestEnv(t, 100)
	admin := env.token(t, "org-1", "admin-1", "admin")

	target1 := &stubTransport{}
	target2 := &stubTransport{}
	bystander := &stubTransport{}
	otherOrg := &stubTransport{}
	env.registry.Connect(target1, "org-1", "user-7", "conn-1", "analyst")
	env.registry.Connect(target2, "org-1", "user-7", "conn-2", "analyst")
	env.registry.Connect(bystander, "org-1", "user-8", "conn-3", "analyst")
	env.registry.Connect(otherOrg, "org-2", "user-7", "conn-4", "analyst")

	rec, resp := env.do(t, http.MethodPost, "/api/v1/admin/sessions/revoke", admin,
		RevokeSessionsRequest{UserID: "user-7", Reason: "credential compromise"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var data struct {
		UserID            string `json:"user_id"`
		ConnectionsClosed int    `json:"connections_closed"`
	}
	decodeData(t, resp, &data)
	if data.ConnectionsClosed != 2 {
		t.Errorf("connections_closed = %d, want 2", data.ConnectionsClosed)
	}
	if !target1.isClosed() || !target2.isClosed() {
		t.Error("target connections not closed")
	}
	if bystander.isClosed() {
		t.Error("bystander connection closed")
	}
	if otherOrg.isClosed() {
		t.Error("revocation crossed the organization boundary")
	}
}

func TestRevokeSessionsValidation(t *testing.T) {
	env := newTestEnv(t, 100)
	admin := env.token(t, "org-1", "admin-1", "admin")

	rec, _ := env.do(t, http.MethodPost, "/api/v1/admin/sessions/revoke", admin,
		RevokeSessionsRequest{UserID: "user-7"}) // no reason
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestNotifyUserQueuesForOffline(t *testing.T) {
	env := newTestEnv(t, 100)
	admin := env.token(t, "org-1", "admin-1", "admin")

	rec, resp := env.do(t, http.MethodPost, "/api/v1/admin/notify", admin,
		NotifyUserRequest{
			UserID:      "user-9",
			MessageType: "maintenance_notice",
			Data:        map[string]interface{}{"window": "02:00Z"},
		})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}

	var data struct {
		Delivered int `json:"delivered"`
	}
	decodeData(t, resp, &data)
	if data.Delivered != 0 {
		t.Errorf("delivered = %d, want 0 for an offline user", data.Delivered)
	}
	if got := env.queue.Len("org-1", "user-9"); got != 1 {
		t.Errorf("queue depth = %d, want 1", got)
	}
}

func TestNotifyUserDeliversWhenOnline(t *testing.T) {
	env := newTestEnv(t, 100)
	admin := env.token(t, "org-1", "admin-1", "admin")

	target := &stubTransport{}
	env.registry.Connect(target, "org-1", "user-9", "conn-1", "analyst")

	rec, resp := env.do(t, http.MethodPost, "/api/v1/admin/notify", admin,
		NotifyUserRequest{UserID: "user-9", MessageType: "maintenance_notice"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}

	var data struct {
		Delivered int `json:"delivered"`
	}
	decodeData(t, resp, &data)
	if data.Delivered != 1 {
		t.Errorf("delivered = %d, want 1", data.Delivered)
	}

	target.mu.Lock()
	sent := len(target.sent)
	target.mu.Unlock()
	if sent != 1 {
		t.Errorf("target received %d envelopes, want 1", sent)
	}
	if got := env.queue.Len("org-1", "user-9"); got != 0 {
		t.Errorf("queue depth = %d for an online user, want 0", got)
	}
}

func TestCheckWebSocketOrigin(t *testing.T) {
	h := &Handler{cfg: &config.Config{
		Server: config.ServerConfig{CORSOrigins: []string{"https://console.example.com"}},
	}}
	wildcard := &Handler{cfg: &config.Config{
		Server: config.ServerConfig{CORSOrigins: []string{"*"}},
	}}

	tests := []struct {
		name    string
		handler *Handler
		origin  string
		want    bool
	}{
		{"no origin header", h, "", true},
		{"allowed origin", h, "https://console.example.com", true},
		{"unknown origin", h, "https://evil.example.com", false},
		{"wildcard", wildcard, "https://anything.example.com", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := tt.handler.checkWebSocketOrigin(req); got != tt.want {
				t.Errorf("checkWebSocketOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}
