package api

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/RaidOuahioune/dms/internal/services"
	"github.com/RaidOuahioune/dms/pkg/models"
)

// WorkflowServer holds the dependencies for the workflow API.
type WorkflowServer struct {
	Workflows *services.WorkflowService
}

// NewWorkflowServer creates a WorkflowServer.
func NewWorkflowServer(wf *services.WorkflowService) *WorkflowServer {
	return &WorkflowServer{Workflows: wf}
}

// Register mounts the workflow routes on the given group.
func (s *WorkflowServer) Register(g *echo.Group) {
	g.GET("/workflows/document/:documentId", s.GetByDocument)
	g.GET("/workflows/document/:documentId/info", s.GetWorkflowInfo)
	g.GET("/workflows/status/:status", s.ListByStatus)
	g.POST("/workflows/document/:documentId/next", s.AdvanceWorkflow)
	g.PUT("/workflows/:id/validate", s.ValidateWorkflow)
	g.PUT("/workflows/:id/publish", s.PublishWorkflow)
	g.PUT("/workflows/:id/reject", s.RejectWorkflow)
}

// GetByDocument returns the workflow instance tracking a document
// (GET /api/v1/workflows/document/:documentId)
func (s *WorkflowServer) GetByDocument(c echo.Context) error {
	documentID, err := uuid.Parse(c.Param("documentId"))
	if err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "invalid document id")
	}
	wf, err := s.Workflows.ByDocument(c.Request().Context(), documentID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, wf)
}

// ListByStatus returns the instances in a given status
// (GET /api/v1/workflows/status/:status)
func (s *WorkflowServer) ListByStatus(c echo.Context) error {
	status, err := models.ParseWorkflowStatus(c.Param("status"))
	if err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", err.Error())
	}
	wfs, err := s.Workflows.ByStatus(c.Request().Context(), status)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, wfs)
}

// AdvanceWorkflow moves a document's workflow one step forward. The
// optional request body is passed through as action data
// (POST /api/v1/workflows/document/:documentId/next)
func (s *WorkflowServer) AdvanceWorkflow(c echo.Context) error {
	documentID, err := uuid.Parse(c.Param("documentId"))
	if err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "invalid document id")
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "unreadable request body")
	}
	wf, err := s.Workflows.Advance(c.Request().Context(), documentID, string(body))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, wf)
}

// ValidateWorkflow overrides the workflow status to VALIDATED
// (PUT /api/v1/workflows/:id/validate)
func (s *WorkflowServer) ValidateWorkflow(c echo.Context) error {
	return s.setStatus(c, models.StatusValidated)
}

// PublishWorkflow overrides the workflow status to PUBLISHED
// (PUT /api/v1/workflows/:id/publish)
func (s *WorkflowServer) PublishWorkflow(c echo.Context) error {
	return s.setStatus(c, models.StatusPublished)
}

// RejectWorkflow overrides the workflow status to REJECTED
// (PUT /api/v1/workflows/:id/reject)
func (s *WorkflowServer) RejectWorkflow(c echo.Context) error {
	return s.setStatus(c, models.StatusRejected)
}

func (s *WorkflowServer) setStatus(c echo.Context, status models.WorkflowStatus) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "invalid workflow id")
	}
	wf, err := s.Workflows.SetStatus(c.Request().Context(), id, status)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, wf)
}

// WorkflowInfo describes the current stage and what comes next.
type WorkflowInfo struct {
	DocumentID uuid.UUID             `json:"documentId"`
	Status     models.WorkflowStatus `json:"currentStatus"`
	NextAction string                `json:"nextActionDescription"`
	Complete   bool                  `json:"isComplete"`
}

// GetWorkflowInfo returns the current step and next action for a document
// (GET /api/v1/workflows/document/:documentId/info)
func (s *WorkflowServer) GetWorkflowInfo(c echo.Context) error {
	documentID, err := uuid.Parse(c.Param("documentId"))
	if err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "invalid document id")
	}
	wf, err := s.Workflows.ByDocument(c.Request().Context(), documentID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, WorkflowInfo{
		DocumentID: wf.DocumentID,
		Status:     wf.CurrentStatus,
		NextAction: nextActionDescription(wf.CurrentStatus),
		Complete:   wf.CurrentStatus == models.StatusPublished,
	})
}

func nextActionDescription(status models.WorkflowStatus) string {
	switch status {
	case models.StatusSubmitted:
		return "Publish the document"
	case models.StatusFieldExtractionPending:
		return "Extract document fields with AI"
	case models.StatusValidationPending:
		return "Validate extracted fields"
	case models.StatusValidated:
		return "Publish the document"
	case models.StatusPublished:
		return "No further actions needed"
	case models.StatusRejected:
		return "Document rejected - no further actions available"
	}
	return "Unknown status"
}
