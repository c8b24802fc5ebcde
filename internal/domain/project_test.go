package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateShortID_Valid(t *testing.T) {
	cases := []string{"WEB01", "MATH02", "ABC1234", "ABCDEF01", "XYZ99"}
	for _, id := range cases {
		p := &Project{ShortID: id}
		assert.NoError(t, p.ValidateShortID(), "should accept %q", id)
	}
}

func TestValidateShortID_Invalid(t *testing.T) {
	cases := []string{"web01", "AB1", "PHYSICS", "ABCDEFG01", "ABC12345"}
	for _, id := range cases {
		p := &Project{ShortID: id}
		err := p.ValidateShortID()
		require.Error(t, err, "should reject %q", id)
		assert.True(t, errors.Is(err, ErrValidation))
	}
}

func TestProjectValidate_RequiresName(t *testing.T) {
	p := &Project{Name: "   "}
	err := p.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "name")
}

func TestProjectValidate_ShortIDOptional(t *testing.T) {
	assert.NoError(t, (&Project{Name: "Launch"}).Validate())
	assert.Error(t, (&Project{Name: "Launch", ShortID: "bad"}).Validate())
}

func TestDisplayID(t *testing.T) {
	assert.Equal(t, "WEB01", (&Project{ID: "0123456789", ShortID: "WEB01"}).DisplayID())
	assert.Equal(t, "01234567", (&Project{ID: "0123456789"}).DisplayID())
	assert.Equal(t, "abc", (&Project{ID: "abc"}).DisplayID())
}
