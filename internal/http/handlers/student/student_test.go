package student_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aanand-mishra/student-records/internal/http/handlers/student"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService returns canned results and records whether it was called.
type stubService struct {
	called bool
	list   types.Result[[]types.StudentDTO]
	one    types.Result[*types.StudentDTO]
	del    types.Result[bool]
	panics bool
}

func (s *stubService) touch() {
	s.called = true
	if s.panics {
		panic("service exploded")
	}
}

func (s *stubService) GetAll() types.Result[[]types.StudentDTO] { s.touch(); return s.list }
func (s *stubService) GetByID(uuid.UUID) types.Result[*types.StudentDTO] {
	s.touch()
	return s.one
}
func (s *stubService) Create(*types.StudentDTO) types.Result[*types.StudentDTO] {
	s.touch()
	return s.one
}
func (s *stubService) Update(uuid.UUID, *types.StudentDTO) types.Result[*types.StudentDTO] {
	s.touch()
	return s.one
}
func (s *stubService) Delete(uuid.UUID) types.Result[bool] { s.touch(); return s.del }

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func serve(t *testing.T, h http.HandlerFunc, method, target, body string) (int, envelope) {
	t.Helper()

	r := chi.NewRouter()
	r.Method(method, "/students/{id}", h)
	r.Method(method, "/students", h)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	return rec.Code, env
}

const validBody = `{"name":"Alice","idNumber":"S100","email":"alice@example.com","enrollmentDate":"2024-09-01T00:00:00Z"}`

func TestStatusMapping(t *testing.T) {
	id := uuid.New()
	dto := &types.StudentDTO{ID: id, Name: "Alice"}

	tests := []struct {
		name       string
		result     types.Result[*types.StudentDTO]
		wantStatus int
	}{
		{"success", types.Ok("Student retrieved successfully", dto), http.StatusOK},
		{"not found", types.Fail[*types.StudentDTO]("Student not found", nil, storage.ErrStudentNotFound), http.StatusBadRequest},
		{"duplicate", types.Fail[*types.StudentDTO]("dup", nil, storage.ErrIDNumberExists), http.StatusBadRequest},
		{"failure without cause", types.Fail[*types.StudentDTO]("nope", nil, nil), http.StatusBadRequest},
		{"unexpected fault", types.Fail[*types.StudentDTO]("Service error retrieving student: boom", nil, errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubService{one: tc.result}

			status, env := serve(t, student.GetByID(svc), http.MethodGet, "/students/"+id.String(), "")

			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.result.Success, env.Success)
			assert.Equal(t, tc.result.Message, env.Message)
		})
	}
}

func TestNew_ValidationDoesNotReachService(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
	}{
		{"empty body", "", "Validation failed: request body is empty"},
		{"malformed json", `{"name":`, "Validation failed:"},
		{"wrong type", `{"name":42}`, "Validation failed:"},
		{"missing fields", `{}`, "Validation failed: field name is required; field idNumber is required; field email is required; field enrollmentDate is required"},
		{"blank name", `{"name":"   ","idNumber":"S100","email":"a@example.com","enrollmentDate":"2024-09-01T00:00:00Z"}`, "field name must not be blank"},
		{"name too long", `{"name":"` + strings.Repeat("a", 101) + `","idNumber":"S100","email":"a@example.com","enrollmentDate":"2024-09-01T00:00:00Z"}`, "field name must be at most 100 characters long"},
		{"id number too long", `{"name":"Alice","idNumber":"` + strings.Repeat("1", 21) + `","email":"a@example.com","enrollmentDate":"2024-09-01T00:00:00Z"}`, "field idNumber must be at most 20 characters long"},
		{"bad email", `{"name":"Alice","idNumber":"S100","email":"alice","enrollmentDate":"2024-09-01T00:00:00Z"}`, "field email must be a valid email address"},
		{"email without tld", `{"name":"Alice","idNumber":"S100","email":"alice@localhost","enrollmentDate":"2024-09-01T00:00:00Z"}`, "field email must be a valid email address"},
		{"bad date", `{"name":"Alice","idNumber":"S100","email":"a@example.com","enrollmentDate":"yesterday"}`, "Validation failed:"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubService{}

			status, env := serve(t, student.New(svc), http.MethodPost, "/students", tc.body)

			assert.Equal(t, http.StatusBadRequest, status)
			assert.False(t, env.Success)
			assert.Contains(t, env.Message, tc.wantMessage)
			assert.Equal(t, "null", string(env.Data))
			assert.False(t, svc.called, "service must not be consulted")
		})
	}
}

func TestNew_PassesValidBodyToService(t *testing.T) {
	created := &types.StudentDTO{ID: uuid.New(), Name: "Alice", IDNumber: "S100"}
	svc := &stubService{one: types.Ok("Student created successfully", created)}

	status, env := serve(t, student.New(svc), http.MethodPost, "/students", validBody)

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.True(t, svc.called)

	var got types.StudentDTO
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, created.ID, got.ID)
}

func TestUpdate_ValidatesBody(t *testing.T) {
	svc := &stubService{}

	status, env := serve(t, student.Update(svc), http.MethodPut, "/students/"+uuid.NewString(), `{"name":"Alice"}`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.False(t, svc.called)
}

func TestDelete_ReportsData(t *testing.T) {
	svc := &stubService{del: types.Fail("Student not found", false, storage.ErrStudentNotFound)}

	status, env := serve(t, student.Delete(svc), http.MethodDelete, "/students/"+uuid.NewString(), "")

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "false", string(env.Data))
}

func TestInvalidPathID(t *testing.T) {
	svc := &stubService{}

	status, env := serve(t, student.GetByID(svc), http.MethodGet, "/students/not-a-uuid", "")

	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.False(t, svc.called)
}

func TestPanicBecomesServerError(t *testing.T) {
	svc := &stubService{panics: true}

	status, env := serve(t, student.GetList(svc), http.MethodGet, "/students", "")

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.False(t, env.Success)
	assert.Equal(t, "Internal Server Error: service exploded", env.Message)
	assert.Equal(t, "null", string(env.Data))
}
