package validate_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/validate"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valid() types.StudentDTO {
	return types.StudentDTO{
		Name:           "Alice",
		IDNumber:       "S100",
		Email:          "alice@example.com",
		EnrollmentDate: time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC),
	}
}

// failedTag returns "field:tag" of the single failing rule.
func failedTag(t *testing.T, err error) string {
	t.Helper()

	var errs validator.ValidationErrors
	require.True(t, errors.As(err, &errs), "expected validation errors, got %v", err)
	require.Len(t, errs, 1)
	return errs[0].Field() + ":" + errs[0].ActualTag()
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, validate.Struct(valid()))

	edge := valid()
	edge.Name = strings.Repeat("n", 100)
	edge.IDNumber = strings.Repeat("1", 20)
	edge.Email = "first.last+tag@mail.example.co"
	assert.NoError(t, validate.Struct(edge))
}

func TestStruct_Rules(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*types.StudentDTO)
		want   string
	}{
		{"missing name", func(d *types.StudentDTO) { d.Name = "" }, "name:required"},
		{"blank name", func(d *types.StudentDTO) { d.Name = " \t " }, "name:notblank"},
		{"long name", func(d *types.StudentDTO) { d.Name = strings.Repeat("n", 101) }, "name:max"},
		{"missing id number", func(d *types.StudentDTO) { d.IDNumber = "" }, "idNumber:required"},
		{"blank id number", func(d *types.StudentDTO) { d.IDNumber = "   " }, "idNumber:notblank"},
		{"long id number", func(d *types.StudentDTO) { d.IDNumber = strings.Repeat("1", 21) }, "idNumber:max"},
		{"missing email", func(d *types.StudentDTO) { d.Email = "" }, "email:required"},
		{"not an email", func(d *types.StudentDTO) { d.Email = "alice.example.com" }, "email:email"},
		{"single letter tld", func(d *types.StudentDTO) { d.Email = "alice@example.c" }, "email:studentemail"},
		{"missing date", func(d *types.StudentDTO) { d.EnrollmentDate = time.Time{} }, "enrollmentDate:required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dto := valid()
			tc.modify(&dto)

			assert.Equal(t, tc.want, failedTag(t, validate.Struct(dto)))
		})
	}
}
