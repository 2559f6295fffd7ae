// Package service implements the business rules for student records.
//
// It sits between the HTTP handlers and storage.Repository: it maps between
// the wire StudentDTO and the internal types.Student, checks ID-number
// uniqueness and record existence before delegating, and turns every
// outcome into a types.Result. Nothing leaves this package as a panic or a
// bare error.
package service

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/google/uuid"
)

// maxIDAttempts bounds how many random ids Create draws before giving up.
// With 122 random bits a second draw is already never needed in practice.
const maxIDAttempts = 3

var (
	// ErrNilStudent is reported by Create and Update when no data is given.
	ErrNilStudent = fmt.Errorf("%w: Student data cannot be null", storage.ErrInvalid)

	// ErrNoFreeID is reported when every generated id was already taken.
	ErrNoFreeID = errors.New("could not generate a unique student id")
)

// Students is the contract the HTTP layer depends on.
type Students interface {
	GetAll() types.Result[[]types.StudentDTO]
	GetByID(id uuid.UUID) types.Result[*types.StudentDTO]
	Create(dto *types.StudentDTO) types.Result[*types.StudentDTO]
	Update(id uuid.UUID, dto *types.StudentDTO) types.Result[*types.StudentDTO]
	Delete(id uuid.UUID) types.Result[bool]
}

// StudentService is the Students implementation backed by a
// storage.Repository.
type StudentService struct {
	repo   storage.Repository
	logger *slog.Logger
	newID  func() uuid.UUID
}

var _ Students = (*StudentService)(nil)

// Option customizes a StudentService.
type Option func(*StudentService)

// WithIDGenerator replaces uuid.New as the source of new student ids.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(s *StudentService) {
		s.newID = newID
	}
}

// NewStudentService creates a StudentService. A nil logger discards output.
func NewStudentService(repo storage.Repository, logger *slog.Logger, opts ...Option) *StudentService {
	if repo == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("repository cannot be nil for StudentService")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &StudentService{
		repo:   repo,
		logger: logger.With(slog.String("component", "student_service")),
		newID:  uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func toDTO(s types.Student) types.StudentDTO {
	return types.StudentDTO{
		ID:             s.ID,
		Name:           s.Name,
		IDNumber:       s.IDNumber,
		Email:          s.Email,
		EnrollmentDate: s.EnrollmentDate,
	}
}

// apply copies every mutable field of dto onto student. The id is kept.
func apply(student *types.Student, dto *types.StudentDTO) {
	student.Name = dto.Name
	student.IDNumber = dto.IDNumber
	student.Email = dto.Email
	student.EnrollmentDate = dto.EnrollmentDate
}

// recoverInto is deferred by every operation. It replaces the named result
// with a failure if the operation panicked.
func recoverInto[T any](log *slog.Logger, action string, result *types.Result[T]) {
	if r := recover(); r != nil {
		err := fmt.Errorf("panic %s: %v", action, r)
		log.Error("recovered from panic", slog.String("action", action), slog.Any("panic", r))

		var zero T
		*result = types.Fail(fmt.Sprintf("Service error %s: %v", action, r), zero, err)
	}
}

// describe is the client-facing message for a failed repository call.
// Business rule violations keep their own message; anything else is
// reported as a service error.
func describe(action string, err error) string {
	if storage.IsBusinessError(err) {
		return storage.Message(err)
	}
	return fmt.Sprintf("Service error %s: %s", action, err.Error())
}

func (s *StudentService) logFailure(action string, err error) {
	if storage.IsBusinessError(err) {
		s.logger.Debug("request rejected", slog.String("action", action), slog.String("reason", err.Error()))
		return
	}
	s.logger.Error("operation failed", slog.String("action", action), slog.String("error", err.Error()))
}

func (s *StudentService) GetAll() (result types.Result[[]types.StudentDTO]) {
	const action = "retrieving students"
	defer recoverInto(s.logger, action, &result)

	students, err := s.repo.GetAll()
	if err != nil {
		s.logFailure(action, err)
		return types.Fail[[]types.StudentDTO](describe(action, err), nil, err)
	}

	dtos := make([]types.StudentDTO, 0, len(students))
	for _, student := range students {
		dtos = append(dtos, toDTO(student))
	}
	return types.Ok("Students retrieved successfully", dtos)
}

func (s *StudentService) GetByID(id uuid.UUID) (result types.Result[*types.StudentDTO]) {
	const action = "retrieving student"
	defer recoverInto(s.logger, action, &result)

	student, err := s.repo.GetByID(id)
	if err != nil {
		s.logFailure(action, err)
		return types.Fail[*types.StudentDTO](describe(action, err), nil, err)
	}

	dto := toDTO(student)
	return types.Ok("Student retrieved successfully", &dto)
}

func (s *StudentService) Create(dto *types.StudentDTO) (result types.Result[*types.StudentDTO]) {
	const action = "creating student"
	defer recoverInto(s.logger, action, &result)

	if dto == nil {
		return types.Fail[*types.StudentDTO](storage.Message(ErrNilStudent), nil, ErrNilStudent)
	}

	exists, err := s.repo.ExistsByIDNumber(dto.IDNumber)
	if err != nil {
		s.logFailure(action, err)
		return types.Fail[*types.StudentDTO](
			"Error checking student existence: "+storage.Message(err), nil, err)
	}
	if exists {
		s.logFailure(action, storage.ErrIDNumberExists)
		return types.Fail[*types.StudentDTO](
			storage.Message(storage.ErrIDNumberExists), nil, storage.ErrIDNumberExists)
	}

	id, err := s.freshID()
	if err != nil {
		s.logFailure(action, err)
		return types.Fail[*types.StudentDTO](describe(action, err), nil, err)
	}

	student := types.Student{ID: id}
	apply(&student, dto)

	// Add re-checks the ID number under the store lock, so a concurrent
	// create that slipped in after ExistsByIDNumber is still rejected.
	stored, err := s.repo.Add(student)
	if err != nil {
		s.logFailure(action, err)
		return types.Fail[*types.StudentDTO](describe(action, err), nil, err)
	}

	s.logger.Info("student created",
		slog.String("id", stored.ID.String()),
		slog.String("id_number", stored.IDNumber))

	created := toDTO(stored)
	return types.Ok("Student created successfully", &created)
}

// freshID draws ids until one is not in use.
func (s *StudentService) freshID() (uuid.UUID, error) {
	for range maxIDAttempts {
		id := s.newID()
		if id == uuid.Nil {
			continue
		}

		taken, err := s.repo.ExistsByID(id)
		if err != nil {
			return uuid.Nil, err
		}
		if !taken {
			return id, nil
		}

		s.logger.Warn("generated student id already in use, drawing another",
			slog.String("id", id.String()))
	}
	return uuid.Nil, ErrNoFreeID
}

func (s *StudentService) Update(id uuid.UUID, dto *types.StudentDTO) (result types.Result[*types.StudentDTO]) {
	const action = "updating student"
	defer recoverInto(s.logger, action, &result)

	if dto == nil {
		return types.Fail[*types.StudentDTO](storage.Message(ErrNilStudent), nil, ErrNilStudent)
	}

	existing, err := s.repo.GetByID(id)
	if err != nil {
		s.logFailure(action, err)
		return types.Fail[*types.StudentDTO](describe(action, err), nil, err)
	}

	// Only a real change of ID number needs the uniqueness check; a change
	// of letter case still names the same number, which this student holds.
	if storage.IDNumberKey(existing.IDNumber) != storage.IDNumberKey(dto.IDNumber) {
		taken, err := s.repo.ExistsByIDNumber(dto.IDNumber)
		if err != nil {
			s.logFailure(action, err)
			return types.Fail[*types.StudentDTO](
				"Error checking ID number existence: "+storage.Message(err), nil, err)
		}
		if taken {
			s.logFailure(action, storage.ErrIDNumberTaken)
			return types.Fail[*types.StudentDTO](
				storage.Message(storage.ErrIDNumberTaken), nil, storage.ErrIDNumberTaken)
		}
	}

	apply(&existing, dto)
	stored, err := s.repo.Update(existing)
	if err != nil {
		s.logFailure(action, err)
		return types.Fail[*types.StudentDTO](describe(action, err), nil, err)
	}

	s.logger.Info("student updated", slog.String("id", stored.ID.String()))

	updated := toDTO(stored)
	return types.Ok("Student updated successfully", &updated)
}

func (s *StudentService) Delete(id uuid.UUID) (result types.Result[bool]) {
	const action = "deleting student"
	defer recoverInto(s.logger, action, &result)

	exists, err := s.repo.ExistsByID(id)
	if err != nil {
		s.logFailure(action, err)
		return types.Fail("Error checking student existence: "+storage.Message(err), false, err)
	}
	if !exists {
		s.logFailure(action, storage.ErrStudentNotFound)
		return types.Fail(storage.Message(storage.ErrStudentNotFound), false, storage.ErrStudentNotFound)
	}

	if err := s.repo.Delete(id); err != nil {
		s.logFailure(action, err)
		return types.Fail(describe(action, err), false, err)
	}

	s.logger.Info("student deleted", slog.String("id", id.String()))
	return types.Ok("Student deleted successfully", true)
}
