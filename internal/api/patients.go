package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/RaidOuahioune/dms/internal/services"
)

// PatientServer holds the dependencies for the patients API.
type PatientServer struct {
	Patients *services.PatientService
}

// NewPatientServer creates a PatientServer.
func NewPatientServer(patients *services.PatientService) *PatientServer {
	return &PatientServer{Patients: patients}
}

// Register mounts the patients routes on the given group.
func (s *PatientServer) Register(g *echo.Group) {
	g.GET("/patients", s.ListPatients)
	g.GET("/patients/:id", s.GetPatient)
	g.POST("/patients", s.CreatePatient)
	g.PUT("/patients/:id", s.UpdatePatient)
	g.DELETE("/patients/:id", s.DeletePatient)
}

type patientRequest struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func (s *PatientServer) ListPatients(c echo.Context) error {
	patients, err := s.Patients.List(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, patients)
}

func (s *PatientServer) GetPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "invalid patient id")
	}
	p, err := s.Patients.Get(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *PatientServer) CreatePatient(c echo.Context) error {
	var req patientRequest
	if err := c.Bind(&req); err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "invalid request body: "+err.Error())
	}
	if req.Name == "" {
		return problem(c, http.StatusBadRequest, "Bad Request", "name is required")
	}
	p, err := s.Patients.Create(c.Request().Context(), req.Name, req.Age)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (s *PatientServer) UpdatePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "invalid patient id")
	}
	var req patientRequest
	if err := c.Bind(&req); err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "invalid request body: "+err.Error())
	}
	p, err := s.Patients.Update(c.Request().Context(), id, req.Name, req.Age)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *PatientServer) DeletePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "invalid patient id")
	}
	if err := s.Patients.Delete(c.Request().Context(), id); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
