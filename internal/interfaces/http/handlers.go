package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/plantdocs/formflow/internal/application/port"
	"github.com/plantdocs/formflow/internal/application/service"
	"github.com/plantdocs/formflow/internal/domain/authz"
	"github.com/plantdocs/formflow/internal/domain/entity"
	"github.com/plantdocs/formflow/internal/domain/workflow"
	"github.com/plantdocs/formflow/internal/export"
)

// Actor identity headers. The gateway in front of this service
// authenticates the caller and forwards their identity.
const (
	headerActorID         = "X-Actor-ID"
	headerActorRole       = "X-Actor-Role"
	headerActorDepartment = "X-Actor-Department"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	engine     service.WorkflowEngine
	auditTrail AuditReader
	register   RegisterExporter
	certified  CertificateExporter
	logger     Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	engine service.WorkflowEngine,
	auditTrail AuditReader,
	register RegisterExporter,
	certified CertificateExporter,
	logger Logger,
) *Handlers {
	return &Handlers{
		engine:     engine,
		auditTrail: auditTrail,
		register:   register,
		certified:  certified,
		logger:     logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// SubmissionResponse represents a submission in API responses
type SubmissionResponse struct {
	ID          string `json:"id"`
	TemplateID  string `json:"template_id"`
	Department  string `json:"department"`
	Status      string `json:"status"`
	SubmittedBy string `json:"submitted_by"`
	Version     int64  `json:"version"`
	FieldData   string `json:"field_data,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// StepResponse represents one workflow step in API responses
type StepResponse struct {
	ID         int64  `json:"id"`
	Kind       string `json:"kind"`
	Outcome    string `json:"outcome"`
	Action     string `json:"action"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	ActorID    string `json:"actor_id"`
	Comment    string `json:"comment,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// CreateSubmissionRequest is the body of POST /api/submissions
type CreateSubmissionRequest struct {
	TemplateID string `json:"template_id"`
	Department string `json:"department"`
	FieldData  string `json:"field_data"`
}

// ActionRequest is the optional body of workflow action endpoints
type ActionRequest struct {
	Comment string `json:"comment"`
}

// ListSubmissionsRequest represents query parameters for listing submissions
type ListSubmissionsRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// CreateSubmission handles POST /api/submissions
func (h *Handlers) CreateSubmission(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	var req CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	sub, err := h.engine.CreateSubmission(c.Request.Context(), req.TemplateID, req.Department, actor.ID, req.FieldData)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: toSubmissionResponse(sub)})
}

// ListSubmissions handles GET /api/submissions
func (h *Handlers) ListSubmissions(c *gin.Context) {
	var req ListSubmissionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	subs, err := h.engine.ListSubmissions(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}

	responses := make([]SubmissionResponse, 0, len(subs))
	for _, sub := range subs {
		responses = append(responses, toSubmissionResponse(sub))
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: responses})
}

// GetSubmission handles GET /api/submissions/:id
func (h *Handlers) GetSubmission(c *gin.Context) {
	sub, err := h.engine.GetSubmission(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toSubmissionResponse(sub)})
}

// GetHistory handles GET /api/submissions/:id/history
func (h *Handlers) GetHistory(c *gin.Context) {
	sub, err := h.engine.GetSubmission(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	steps := make([]StepResponse, 0, len(sub.Steps))
	for _, step := range sub.Steps {
		steps = append(steps, toStepResponse(step))
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: steps})
}

// GetAuditTrail handles GET /api/submissions/:id/audit
func (h *Handlers) GetAuditTrail(c *gin.Context) {
	entries, err := h.auditTrail.ListByResource(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: entries})
}

// Submit handles POST /api/submissions/:id/submit
func (h *Handlers) Submit(c *gin.Context) {
	h.action(c, workflow.ActionSubmit)
}

// StartVerification handles POST /api/submissions/:id/start-verification
func (h *Handlers) StartVerification(c *gin.Context) {
	h.action(c, workflow.ActionStartVerification)
}

// CompleteVerification handles POST /api/submissions/:id/complete-verification
func (h *Handlers) CompleteVerification(c *gin.Context) {
	h.action(c, workflow.ActionCompleteVerification)
}

// Approve handles POST /api/submissions/:id/approve
func (h *Handlers) Approve(c *gin.Context) {
	h.action(c, workflow.ActionApprove)
}

// Reject handles POST /api/submissions/:id/reject
func (h *Handlers) Reject(c *gin.Context) {
	h.action(c, workflow.ActionReject)
}

// action runs one workflow action against a submission
func (h *Handlers) action(c *gin.Context, act workflow.Action) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	var req ActionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
			return
		}
	}

	sub, err := h.engine.ApplyTransition(c.Request.Context(), c.Param("id"), actor, act, req.Comment)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toSubmissionResponse(sub)})
}

// CloneRejected handles POST /api/submissions/:id/clone
func (h *Handlers) CloneRejected(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	sub, err := h.engine.CloneRejected(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: toSubmissionResponse(sub)})
}

// exportPageSize is the repository page size used when assembling the
// full register.
const exportPageSize = 100

// ExportRegister handles GET /api/submissions/export.
// The workbook covers every submission, paged out of the repository, and is
// rendered before any response byte is written so failures still map to an
// error status.
func (h *Handlers) ExportRegister(c *gin.Context) {
	var subs []*entity.Submission
	for offset := 0; ; offset += exportPageSize {
		page, err := h.engine.ListSubmissions(c.Request.Context(), exportPageSize, offset)
		if err != nil {
			h.writeError(c, err)
			return
		}
		subs = append(subs, page...)
		if len(page) < exportPageSize {
			break
		}
	}

	var buf bytes.Buffer
	if err := h.register.WriteRegister(subs, &buf); err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="submissions.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportCertificate handles GET /api/submissions/:id/certificate
func (h *Handlers) ExportCertificate(c *gin.Context) {
	id := c.Param("id")

	sub, err := h.engine.GetSubmission(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.certified.WriteCertificate(sub, &buf); err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="submission-%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// actorFrom builds the acting identity from the gateway headers.
// Requests without a complete identity are rejected before they reach
// the application layer.
func (h *Handlers) actorFrom(c *gin.Context) (entity.Actor, bool) {
	actor := entity.Actor{
		ID:         c.GetHeader(headerActorID),
		Role:       c.GetHeader(headerActorRole),
		Department: c.GetHeader(headerActorDepartment),
	}

	if actor.ID == "" || actor.Role == "" {
		c.JSON(http.StatusUnauthorized, Response{Success: false, Error: "missing actor identity"})
		return entity.Actor{}, false
	}
	if !actor.HasValidRole() {
		c.JSON(http.StatusForbidden, Response{Success: false, Error: "unknown actor role"})
		return entity.Actor{}, false
	}

	return actor, true
}

// writeError maps application errors to HTTP status codes
func (h *Handlers) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, port.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, authz.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrGuardFailed),
		errors.Is(err, service.ErrNotCloneable),
		errors.Is(err, export.ErrNotApproved),
		errors.Is(err, port.ErrConcurrentModification):
		status = http.StatusConflict
	case errors.Is(err, service.ErrCommentRequired),
		errors.Is(err, service.ErrMissingField):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, port.ErrRepositoryUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Unhandled request error", "error", err)
	}

	c.JSON(status, Response{Success: false, Error: err.Error()})
}

func toSubmissionResponse(sub *entity.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:          sub.ID,
		TemplateID:  sub.TemplateID,
		Department:  sub.Department,
		Status:      sub.Status.String(),
		SubmittedBy: sub.SubmittedBy,
		Version:     sub.Version,
		FieldData:   sub.FieldData,
		CreatedAt:   sub.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   sub.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toStepResponse(step *entity.WorkflowStep) StepResponse {
	return StepResponse{
		ID:         step.ID,
		Kind:       string(step.Kind),
		Outcome:    string(step.Outcome),
		Action:     string(step.Action),
		FromStatus: string(step.FromStatus),
		ToStatus:   string(step.ToStatus),
		ActorID:    step.ActorID,
		Comment:    step.Comment,
		OccurredAt: step.OccurredAt.UTC().Format(time.RFC3339),
	}
}
