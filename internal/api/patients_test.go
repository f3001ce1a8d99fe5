package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaidOuahioune/dms/pkg/models"
)

func TestPatientCRUD(t *testing.T) {
	a := newTestAPI(t)

	rec := a.request(http.MethodPost, "/api/v1/patients", map[string]interface{}{
		"name": "Amina Benali",
		"age":  54,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var p models.Patient
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "Amina Benali", p.Name)
	assert.Equal(t, 54, p.Age)

	rec = a.request(http.MethodGet, "/api/v1/patients/"+p.ID.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.request(http.MethodPut, "/api/v1/patients/"+p.ID.String(), map[string]interface{}{
		"name": "Amina Benali",
		"age":  55,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, 55, p.Age)

	rec = a.request(http.MethodGet, "/api/v1/patients", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var patients []models.Patient
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &patients))
	assert.Len(t, patients, 1)

	rec = a.request(http.MethodDelete, "/api/v1/patients/"+p.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.request(http.MethodGet, "/api/v1/patients/"+p.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePatientRequiresName(t *testing.T) {
	a := newTestAPI(t)

	rec := a.request(http.MethodPost, "/api/v1/patients", map[string]interface{}{"age": 40})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPatientInvalidID(t *testing.T) {
	a := newTestAPI(t)

	rec := a.request(http.MethodGet, "/api/v1/patients/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.request(http.MethodDelete, "/api/v1/patients/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
