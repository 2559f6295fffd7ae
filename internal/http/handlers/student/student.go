// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN (CLOSURE / FACTORY):
// ─────────────────────────────────────
// Each exported function accepts its dependency (the student service) once,
// at route registration, and returns the http.HandlerFunc the router calls
// on every request:
//
//	r.Post("/", student.New(svc))
//
// Every handler answers with a types.Result envelope. The status code
// follows the outcome:
//
//	200  the operation succeeded
//	400  validation failed, or a business rule was violated (not found,
//	     duplicate ID number)
//	500  anything unexpected, including a panic inside the handler
package student

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-records/internal/service"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
	"github.com/aanand-mishra/student-records/internal/utils/validate"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// IDPattern constrains the {id} route parameter. Paths whose id is not a
// UUID never match a route, so they are rejected by the router (404)
// before any handler runs.
const IDPattern = `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`

// statusFor picks the HTTP status for a service result.
func statusFor[T any](result types.Result[T]) int {
	switch {
	case result.Success:
		return http.StatusOK
	case result.Err == nil, storage.IsBusinessError(result.Err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func write[T any](w http.ResponseWriter, r *http.Request, result types.Result[T]) {
	status := statusFor(result)
	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", result.Err.Error()))
	}
	response.Write(w, status, result)
}

// guard turns a panic in h into a 500 envelope:
//
//	{ "success": false, "message": "Internal Server Error: <panic>", "data": null }
func guard(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.Error("handler panic",
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec))
				response.Write(w, http.StatusInternalServerError, response.InternalError(fmt.Sprint(rec)))
			}
		}()
		h(w, r)
	}
}

// pathID reads the {id} route parameter.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errors.New("invalid id: must be a UUID")
	}
	return id, nil
}

// decode reads and validates the request body. The returned error is
// ready to be written with response.ValidationError.
func decode(r *http.Request) (*types.StudentDTO, error) {
	var dto types.StudentDTO

	err := json.NewDecoder(r.Body).Decode(&dto)
	if errors.Is(err, io.EOF) {
		return nil, errors.New("request body is empty")
	}
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students
//
//	{ "success": true, "message": "Students retrieved successfully",
//	  "data": [ { "id": "…", "name": "…", "idNumber": "…", … } ] }
//
// data is [] (not null) when there are no students.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(svc service.Students) http.HandlerFunc {
	return guard(func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")
		write(w, r, svc.GetAll())
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
//
// 400 with "Student not found" if nobody has the id.
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(svc service.Students) http.HandlerFunc {
	return guard(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			response.Write(w, http.StatusBadRequest, response.Failure(err.Error(), err))
			return
		}
		slog.Info("getting a student", slog.String("id", id.String()))

		write(w, r, svc.GetByID(id))
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
//
// Request body (JSON), id is ignored:
//
//	{ "name": "Rakesh", "idNumber": "S100", "email": "rakesh@test.com",
//	  "enrollmentDate": "2024-09-01T00:00:00Z" }
//
// Success (200) returns the stored student, id included.
// 400 on an empty, malformed, or invalid body, or a duplicate idNumber.
// ─────────────────────────────────────────────────────────────────────────────
func New(svc service.Students) http.HandlerFunc {
	return guard(func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		dto, err := decode(r)
		if err != nil {
			response.Write(w, http.StatusBadRequest, response.ValidationError(err))
			return
		}

		write(w, r, svc.Create(dto))
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
// Replaces ALL mutable fields of an existing student; the body has the same
// shape and rules as for New.
// ─────────────────────────────────────────────────────────────────────────────
func Update(svc service.Students) http.HandlerFunc {
	return guard(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			response.Write(w, http.StatusBadRequest, response.Failure(err.Error(), err))
			return
		}
		slog.Info("updating a student", slog.String("id", id.String()))

		dto, err := decode(r)
		if err != nil {
			response.Write(w, http.StatusBadRequest, response.ValidationError(err))
			return
		}

		write(w, r, svc.Update(id, dto))
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
//
//	{ "success": true, "message": "Student deleted successfully", "data": true }
// ─────────────────────────────────────────────────────────────────────────────
func Delete(svc service.Students) http.HandlerFunc {
	return guard(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			response.Write(w, http.StatusBadRequest, response.Failure(err.Error(), err))
			return
		}
		slog.Info("deleting a student", slog.String("id", id.String()))

		write(w, r, svc.Delete(id))
	})
}
