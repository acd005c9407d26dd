package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/plantdocs/formflow/internal/application/port"
	"github.com/plantdocs/formflow/internal/application/service"
	"github.com/plantdocs/formflow/internal/domain/authz"
	"github.com/plantdocs/formflow/internal/domain/entity"
	"github.com/plantdocs/formflow/internal/domain/workflow"
	"github.com/plantdocs/formflow/internal/export"
	"github.com/plantdocs/formflow/internal/infrastructure/audit"
)

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

// mockEngine implements service.WorkflowEngine with overridable functions
type mockEngine struct {
	createFunc func(ctx context.Context, templateID, department, submittedBy, fieldData string) (*entity.Submission, error)
	applyFunc  func(ctx context.Context, id string, actor entity.Actor, action workflow.Action, comment string) (*entity.Submission, error)
	cloneFunc  func(ctx context.Context, id string, actor entity.Actor) (*entity.Submission, error)
	getFunc    func(ctx context.Context, id string) (*entity.Submission, error)
	listFunc   func(ctx context.Context, limit, offset int) ([]*entity.Submission, error)
}

func (m *mockEngine) CreateSubmission(ctx context.Context, templateID, department, submittedBy, fieldData string) (*entity.Submission, error) {
	return m.createFunc(ctx, templateID, department, submittedBy, fieldData)
}

func (m *mockEngine) ApplyTransition(ctx context.Context, id string, actor entity.Actor, action workflow.Action, comment string) (*entity.Submission, error) {
	return m.applyFunc(ctx, id, actor, action, comment)
}

func (m *mockEngine) Submit(ctx context.Context, id string, actor entity.Actor) (*entity.Submission, error) {
	return m.applyFunc(ctx, id, actor, workflow.ActionSubmit, "")
}

func (m *mockEngine) StartVerification(ctx context.Context, id string, actor entity.Actor) (*entity.Submission, error) {
	return m.applyFunc(ctx, id, actor, workflow.ActionStartVerification, "")
}

func (m *mockEngine) CompleteVerification(ctx context.Context, id string, actor entity.Actor, comment string) (*entity.Submission, error) {
	return m.applyFunc(ctx, id, actor, workflow.ActionCompleteVerification, comment)
}

func (m *mockEngine) Approve(ctx context.Context, id string, actor entity.Actor, comment string) (*entity.Submission, error) {
	return m.applyFunc(ctx, id, actor, workflow.ActionApprove, comment)
}

func (m *mockEngine) Reject(ctx context.Context, id string, actor entity.Actor, comment string) (*entity.Submission, error) {
	return m.applyFunc(ctx, id, actor, workflow.ActionReject, comment)
}

func (m *mockEngine) CloneRejected(ctx context.Context, id string, actor entity.Actor) (*entity.Submission, error) {
	return m.cloneFunc(ctx, id, actor)
}

func (m *mockEngine) GetSubmission(ctx context.Context, id string) (*entity.Submission, error) {
	return m.getFunc(ctx, id)
}

func (m *mockEngine) ListSubmissions(ctx context.Context, limit, offset int) ([]*entity.Submission, error) {
	return m.listFunc(ctx, limit, offset)
}

type mockAuditReader struct {
	entries []*audit.Entry
	err     error
}

func (m *mockAuditReader) ListByResource(context.Context, string) ([]*audit.Entry, error) {
	return m.entries, m.err
}

type stubExporter struct{}

func (stubExporter) WriteRegister([]*entity.Submission, io.Writer) error  { return nil }
func (stubExporter) WriteCertificate(*entity.Submission, io.Writer) error { return nil }

func testSubmission(id string, status workflow.State) *entity.Submission {
	now := time.Now().UTC()
	return &entity.Submission{
		ID:          id,
		TemplateID:  "T1",
		Department:  "QC",
		Status:      status,
		SubmittedBy: "operator-1",
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func newTestServer(engine *mockEngine, auditTrail AuditReader) *Server {
	if auditTrail == nil {
		auditTrail = &mockAuditReader{}
	}
	return NewServer(DefaultServerConfig(), engine, auditTrail, stubExporter{}, stubExporter{}, noopLogger{})
}

func doRequest(srv *Server, method, path string, body interface{}, actor *entity.Actor) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != nil {
		req.Header.Set(headerActorID, actor.ID)
		req.Header.Set(headerActorRole, actor.Role)
		req.Header.Set(headerActorDepartment, actor.Department)
	}

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(&mockEngine{}, nil)

	w := doRequest(srv, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if resp := decodeResponse(t, w); !resp.Success {
		t.Error("expected success response")
	}
}

func TestCreateSubmission(t *testing.T) {
	engine := &mockEngine{
		createFunc: func(_ context.Context, templateID, department, submittedBy, _ string) (*entity.Submission, error) {
			if templateID != "T1" || department != "QC" || submittedBy != "operator-1" {
				t.Errorf("unexpected arguments: %s %s %s", templateID, department, submittedBy)
			}
			return testSubmission("S1", workflow.StateDraft), nil
		},
	}
	srv := newTestServer(engine, nil)

	actor := &entity.Actor{ID: "operator-1", Role: entity.RoleOperator, Department: "QC"}
	body := CreateSubmissionRequest{TemplateID: "T1", Department: "QC", FieldData: "{}"}
	w := doRequest(srv, http.MethodPost, "/api/submissions", body, actor)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateSubmissionMissingActor(t *testing.T) {
	srv := newTestServer(&mockEngine{}, nil)

	w := doRequest(srv, http.MethodPost, "/api/submissions", CreateSubmissionRequest{}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestCreateSubmissionUnknownRole(t *testing.T) {
	srv := newTestServer(&mockEngine{}, nil)

	actor := &entity.Actor{ID: "x", Role: "INTERN", Department: "QC"}
	w := doRequest(srv, http.MethodPost, "/api/submissions", CreateSubmissionRequest{}, actor)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestGetSubmissionNotFound(t *testing.T) {
	engine := &mockEngine{
		getFunc: func(context.Context, string) (*entity.Submission, error) {
			return nil, fmt.Errorf("%w: submission missing", port.ErrNotFound)
		},
	}
	srv := newTestServer(engine, nil)

	w := doRequest(srv, http.MethodGet, "/api/submissions/missing", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestActionStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid transition", workflow.ErrInvalidTransition, http.StatusConflict},
		{"unauthorized", authz.ErrUnauthorized, http.StatusForbidden},
		{"comment required", service.ErrCommentRequired, http.StatusUnprocessableEntity},
		{"version conflict", port.ErrConcurrentModification, http.StatusConflict},
		{"not found", port.ErrNotFound, http.StatusNotFound},
		{"storage down", port.ErrRepositoryUnavailable, http.StatusServiceUnavailable},
	}

	actor := &entity.Actor{ID: "sup-1", Role: entity.RoleSupervisor, Department: "QC"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockEngine{
				applyFunc: func(context.Context, string, entity.Actor, workflow.Action, string) (*entity.Submission, error) {
					return nil, fmt.Errorf("wrapped: %w", tt.err)
				},
			}
			srv := newTestServer(engine, nil)

			w := doRequest(srv, http.MethodPost, "/api/submissions/S1/reject", ActionRequest{Comment: "no"}, actor)
			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestRejectPassesComment(t *testing.T) {
	var gotAction workflow.Action
	var gotComment string
	engine := &mockEngine{
		applyFunc: func(_ context.Context, _ string, _ entity.Actor, action workflow.Action, comment string) (*entity.Submission, error) {
			gotAction = action
			gotComment = comment
			return testSubmission("S1", workflow.StateRejected), nil
		},
	}
	srv := newTestServer(engine, nil)

	actor := &entity.Actor{ID: "sup-1", Role: entity.RoleSupervisor, Department: "QC"}
	w := doRequest(srv, http.MethodPost, "/api/submissions/S1/reject", ActionRequest{Comment: "missing batch record"}, actor)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotAction != workflow.ActionReject {
		t.Errorf("expected REJECT, got %s", gotAction)
	}
	if gotComment != "missing batch record" {
		t.Errorf("comment not forwarded, got %q", gotComment)
	}
}

func TestSubmitWithoutBody(t *testing.T) {
	engine := &mockEngine{
		applyFunc: func(_ context.Context, _ string, _ entity.Actor, action workflow.Action, _ string) (*entity.Submission, error) {
			if action != workflow.ActionSubmit {
				t.Errorf("expected SUBMIT, got %s", action)
			}
			return testSubmission("S1", workflow.StateSubmitted), nil
		},
	}
	srv := newTestServer(engine, nil)

	actor := &entity.Actor{ID: "operator-1", Role: entity.RoleOperator, Department: "QC"}
	w := doRequest(srv, http.MethodPost, "/api/submissions/S1/submit", nil, actor)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCloneRejected(t *testing.T) {
	engine := &mockEngine{
		cloneFunc: func(context.Context, string, entity.Actor) (*entity.Submission, error) {
			return testSubmission("S2", workflow.StateDraft), nil
		},
	}
	srv := newTestServer(engine, nil)

	actor := &entity.Actor{ID: "operator-1", Role: entity.RoleOperator, Department: "QC"}
	w := doRequest(srv, http.MethodPost, "/api/submissions/S1/clone", nil, actor)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetHistory(t *testing.T) {
	sub := testSubmission("S1", workflow.StateSubmitted)
	sub.Steps = []*entity.WorkflowStep{
		{
			ID: 1, Kind: workflow.StepKindSubmission, Outcome: workflow.OutcomePending,
			Action: workflow.ActionSubmit, FromStatus: workflow.StateDraft,
			ToStatus: workflow.StateSubmitted, ActorID: "operator-1",
			OccurredAt: time.Now().UTC(),
		},
	}
	engine := &mockEngine{
		getFunc: func(context.Context, string) (*entity.Submission, error) { return sub, nil },
	}
	srv := newTestServer(engine, nil)

	w := doRequest(srv, http.MethodGet, "/api/submissions/S1/history", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	resp := decodeResponse(t, w)
	steps, ok := resp.Data.([]interface{})
	if !ok || len(steps) != 1 {
		t.Errorf("expected one history step, got %v", resp.Data)
	}
}

func TestGetAuditTrail(t *testing.T) {
	reader := &mockAuditReader{
		entries: []*audit.Entry{{ID: 1, EventID: "evt-1", ResourceID: "S1", Action: "SUBMIT"}},
	}
	srv := newTestServer(&mockEngine{}, reader)

	w := doRequest(srv, http.MethodGet, "/api/submissions/S1/audit", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestActionForwardsActorIdentity(t *testing.T) {
	var got entity.Actor
	engine := &mockEngine{
		applyFunc: func(_ context.Context, _ string, actor entity.Actor, _ workflow.Action, _ string) (*entity.Submission, error) {
			got = actor
			return testSubmission("S1", workflow.StateSubmitted), nil
		},
	}
	srv := newTestServer(engine, nil)

	actor := &entity.Actor{ID: "auditor-2", Role: entity.RoleAuditor, Department: "QA"}
	w := doRequest(srv, http.MethodPost, "/api/submissions/S1/submit", nil, actor)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got != *actor {
		t.Errorf("actor headers not carried into the engine call: got %+v, want %+v", got, *actor)
	}
}

type failingCertificate struct{ err error }

func (f failingCertificate) WriteCertificate(*entity.Submission, io.Writer) error { return f.err }

func TestExportCertificateNotApproved(t *testing.T) {
	engine := &mockEngine{
		getFunc: func(context.Context, string) (*entity.Submission, error) {
			return testSubmission("S1", workflow.StateVerified), nil
		},
	}
	srv := NewServer(DefaultServerConfig(), engine, &mockAuditReader{},
		stubExporter{}, failingCertificate{err: export.ErrNotApproved}, noopLogger{})

	w := doRequest(srv, http.MethodGet, "/api/submissions/S1/certificate", nil, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct == "application/pdf" {
		t.Errorf("error response must not carry the pdf content type")
	}
	if resp := decodeResponse(t, w); resp.Success {
		t.Error("expected error envelope")
	}
}

type captureRegister struct {
	rows int
}

func (c *captureRegister) WriteRegister(subs []*entity.Submission, w io.Writer) error {
	c.rows = len(subs)
	_, err := w.Write([]byte("workbook"))
	return err
}

func TestExportRegisterPagesThroughAll(t *testing.T) {
	var offsets []int
	engine := &mockEngine{
		listFunc: func(_ context.Context, limit, offset int) ([]*entity.Submission, error) {
			offsets = append(offsets, offset)
			n := limit
			if offset >= 100 {
				n = 30
			}
			page := make([]*entity.Submission, n)
			for i := range page {
				page[i] = testSubmission(fmt.Sprintf("S%d", offset+i), workflow.StateSubmitted)
			}
			return page, nil
		},
	}
	register := &captureRegister{}
	srv := NewServer(DefaultServerConfig(), engine, &mockAuditReader{},
		register, stubExporter{}, noopLogger{})

	w := doRequest(srv, http.MethodGet, "/api/submissions/export", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if register.rows != 130 {
		t.Errorf("register rows = %d, want all 130 submissions", register.rows)
	}
	if len(offsets) != 2 || offsets[0] != 0 || offsets[1] != 100 {
		t.Errorf("expected offsets [0 100], got %v", offsets)
	}
}

func TestListSubmissionsClampsLimit(t *testing.T) {
	engine := &mockEngine{
		listFunc: func(_ context.Context, limit, offset int) ([]*entity.Submission, error) {
			if limit != 20 || offset != 0 {
				t.Errorf("expected clamped limit 20 offset 0, got %d %d", limit, offset)
			}
			return nil, nil
		},
	}
	srv := newTestServer(engine, nil)

	w := doRequest(srv, http.MethodGet, "/api/submissions?limit=500&offset=-3", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
