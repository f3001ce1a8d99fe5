package models

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a minimal patient record referenced by documents.
type Patient struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
