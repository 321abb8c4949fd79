package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mirrors the shape of the storefront's create requests.
type createUserFixture struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
}

type createOrderFixture struct {
	UserID    int64 `validate:"required,gte=1"`
	ProductID int64 `validate:"required,gte=1"`
	Quantity  int   `validate:"required,gte=1"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		input      any
		wantField  string
		wantDetail string
	}{
		{
			name:  "valid user passes",
			input: createUserFixture{Name: "Jean Dupont", Email: "jean@example.com"},
		},
		{
			name:  "valid order passes",
			input: createOrderFixture{UserID: 1, ProductID: 2, Quantity: 3},
		},
		{
			name:       "missing name",
			input:      createUserFixture{Email: "jean@example.com"},
			wantField:  "Name",
			wantDetail: "is required",
		},
		{
			name:       "malformed email",
			input:      createUserFixture{Name: "Jean Dupont", Email: "not-an-email"},
			wantField:  "Email",
			wantDetail: "must be a valid email address",
		},
		{
			name:       "quantity below one",
			input:      createOrderFixture{UserID: 1, ProductID: 2, Quantity: -3},
			wantField:  "Quantity",
			wantDetail: "greater than or equal to 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr)
			fields := valErr.Fields()
			require.Contains(t, fields, tt.wantField)
			assert.Contains(t, fields[tt.wantField], tt.wantDetail)
		})
	}
}

func TestValidate_ReportsEveryViolatedField(t *testing.T) {
	err := Validate(createOrderFixture{})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Len(t, fields, 3)
	assert.Contains(t, fields, "UserID")
	assert.Contains(t, fields, "ProductID")
	assert.Contains(t, fields, "Quantity")
}

func TestValidationError_MessageNamesTheField(t *testing.T) {
	err := Validate(createUserFixture{Name: "Jean Dupont", Email: "nope"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'Email'")
	assert.Contains(t, err.Error(), "must be a valid email address")
}

type lengthFixture struct {
	Name string `validate:"min=3,max=60"`
}

func TestValidate_LengthBounds(t *testing.T) {
	var valErr *ValidationError

	require.ErrorAs(t, Validate(lengthFixture{Name: "ab"}), &valErr)
	assert.Contains(t, valErr.Fields()["Name"], "at least 3")

	long := make([]byte, 61)
	for i := range long {
		long[i] = 'a'
	}
	require.ErrorAs(t, Validate(lengthFixture{Name: string(long)}), &valErr)
	assert.Contains(t, valErr.Fields()["Name"], "at most 60")
}
