// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, service, and storage can all import types without depending
// on each other.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Student is the internal entity and the source of truth for a record.
// Only storage and the service layer work with it directly; the HTTP layer
// sees StudentDTO.
type Student struct {
	ID             uuid.UUID
	Name           string
	IDNumber       string
	Email          string
	EnrollmentDate time.Time
}

// StudentDTO is the wire representation used at the API boundary.
//
// Struct tags serve two purposes:
//
//  1. json:"...": the camelCase names clients send and receive.
//  2. validate:"...": rules checked by go-playground/validator before the
//     request reaches the service. "notblank" and "studentemail" are custom
//     tags registered in internal/utils/validate.
//
// ID is ignored on input: create assigns a fresh one, update takes it from
// the URL path.
type StudentDTO struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"           validate:"required,notblank,max=100"`
	IDNumber       string    `json:"idNumber"       validate:"required,notblank,max=20"`
	Email          string    `json:"email"          validate:"required,email,studentemail"`
	EnrollmentDate time.Time `json:"enrollmentDate" validate:"required"`
}
