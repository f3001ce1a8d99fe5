// Package api contains the HTTP handlers for the document management suite.
package api

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/RaidOuahioune/dms/internal/services"
	"github.com/RaidOuahioune/dms/pkg/models"
)

// DocumentServer holds the dependencies for the documents API.
type DocumentServer struct {
	Docs *services.DocumentService
}

// NewDocumentServer creates a DocumentServer.
func NewDocumentServer(docs *services.DocumentService) *DocumentServer {
	return &DocumentServer{Docs: docs}
}

// Register mounts the documents routes on the given group.
func (s *DocumentServer) Register(g *echo.Group) {
	g.GET("/documents", s.ListDocuments)
	g.GET("/documents/:id", s.GetDocument)
	g.POST("/documents", s.CreateDocument)
	g.POST("/documents/upload", s.UploadDocument)
	g.PUT("/documents/:id", s.UpdateDocument)
	g.PUT("/documents/:id/status/:status", s.UpdateDocumentStatus)
	g.DELETE("/documents/:id", s.DeleteDocument)
	g.GET("/documents/patient/:patientId", s.ListByPatient)
	g.GET("/documents/doctor/:doctorId", s.ListByDoctor)
	g.GET("/documents/status/:status", s.ListByStatus)
}

// ListDocuments returns all documents
// (GET /api/v1/documents)
func (s *DocumentServer) ListDocuments(c echo.Context) error {
	docs, err := s.Docs.List(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, docs)
}

// GetDocument returns one document
// (GET /api/v1/documents/:id)
func (s *DocumentServer) GetDocument(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "invalid document id")
	}
	doc, err := s.Docs.Get(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// CreateDocument stores a new document and starts its workflow
// (POST /api/v1/documents)
func (s *DocumentServer) CreateDocument(c echo.Context) error {
	var req services.DocumentRequest
	if err := c.Bind(&req); err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "invalid request body: "+err.Error())
	}
	if req.Title == "" {
		return problem(c, http.StatusBadRequest, "Bad Request", "title is required")
	}
	doc, err := s.Docs.Create(c.Request().Context(), req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, doc)
}

// UploadDocument accepts a multipart file whose text becomes the document
// content, then follows the upload lifecycle
// (POST /api/v1/documents/upload)
func (s *DocumentServer) UploadDocument(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return serviceError(c, err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return serviceError(c, err)
	}

	doc, err := s.Docs.Upload(c.Request().Context(),
		fh.Filename,
		string(content),
		c.FormValue("patientId"),
		c.FormValue("doctorId"),
		c.FormValue("diagnosis"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, doc)
}

// UpdateDocument edits a document
// (PUT /api/v1/documents/:id)
func (s *DocumentServer) UpdateDocument(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "invalid document id")
	}
	var req services.DocumentRequest
	if err := c.Bind(&req); err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "invalid request body: "+err.Error())
	}
	doc, err := s.Docs.Update(c.Request().Context(), id, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// UpdateDocumentStatus applies a manual status change
// (PUT /api/v1/documents/:id/status/:status)
func (s *DocumentServer) UpdateDocumentStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "invalid document id")
	}
	status, err := models.ParseDocumentStatus(c.Param("status"))
	if err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", err.Error())
	}
	doc, err := s.Docs.UpdateStatus(c.Request().Context(), id, status)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// DeleteDocument removes a document
// (DELETE /api/v1/documents/:id)
func (s *DocumentServer) DeleteDocument(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "invalid document id")
	}
	if err := s.Docs.Delete(c.Request().Context(), id); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListByPatient returns a patient's documents
// (GET /api/v1/documents/patient/:patientId)
func (s *DocumentServer) ListByPatient(c echo.Context) error {
	docs, err := s.Docs.ListByPatient(c.Request().Context(), c.Param("patientId"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, docs)
}

// ListByDoctor returns a doctor's documents
// (GET /api/v1/documents/doctor/:doctorId)
func (s *DocumentServer) ListByDoctor(c echo.Context) error {
	docs, err := s.Docs.ListByDoctor(c.Request().Context(), c.Param("doctorId"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, docs)
}

// ListByStatus returns the documents in a given status
// (GET /api/v1/documents/status/:status)
func (s *DocumentServer) ListByStatus(c echo.Context) error {
	status, err := models.ParseDocumentStatus(c.Param("status"))
	if err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", err.Error())
	}
	docs, err := s.Docs.ListByStatus(c.Request().Context(), status)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, docs)
}
