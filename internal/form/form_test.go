package form

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spot struct {
	Lat float64
}

type testFields struct {
	Title       string  `form:"title,blur" validate:"required"`
	Description string  `form:"description,blur" validate:"required,max=180"`
	Price       float64 `form:"price,blur" validate:"required,min=1"`
	Spot        *spot   `form:"spot" validate:"required"`
	Note        string  `form:"note"`
	Internal    string
}

func filled() testFields {
	return testFields{Title: "Loft", Description: "Bright", Price: 10, Spot: &spot{Lat: 1}}
}

func TestInputWaitsForBlur(t *testing.T) {
	fs := New(testFields{})

	require.NoError(t, fs.Input("title", "Loft"))
	assert.Empty(t, fs.Values().Title)

	require.NoError(t, fs.Blur("title"))
	assert.Equal(t, "Loft", fs.Values().Title)
	assert.NotContains(t, fs.Errors(), "title")
}

func TestInputCommitsNonBlurFields(t *testing.T) {
	fs := New(testFields{})

	require.NoError(t, fs.Input("note", "hello"))
	assert.Equal(t, "hello", fs.Values().Note)
}

func TestBlurValidatesRequired(t *testing.T) {
	fs := New(testFields{})

	require.NoError(t, fs.Input("title", ""))
	require.NoError(t, fs.Blur("title"))

	assert.Equal(t, "required", fs.Errors()["title"])
}

func TestDescriptionMaxLength(t *testing.T) {
	fs := New(filled())
	require.True(t, fs.Valid())

	require.NoError(t, fs.Patch("description", strings.Repeat("x", 181)))

	assert.False(t, fs.Valid())
	assert.Equal(t, "max", fs.Errors()["description"])

	require.NoError(t, fs.Patch("description", strings.Repeat("ž", 180)))
	assert.True(t, fs.Valid())
}

func TestPriceMinimum(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "one", input: "1", valid: true},
		{name: "large", input: "250.5", valid: true},
		{name: "zero", input: "0", valid: false},
		{name: "negative", input: "-3", valid: false},
		{name: "fraction below one", input: "0.5", valid: false},
		{name: "blank", input: " ", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := New(filled())
			require.NoError(t, fs.Input("price", tt.input))
			require.NoError(t, fs.Blur("price"))
			assert.Equal(t, tt.valid, fs.Valid())
		})
	}
}

func TestNonNumericPriceIsRejected(t *testing.T) {
	fs := New(filled())

	require.NoError(t, fs.Input("price", "cheap"))
	err := fs.Blur("price")

	assert.Error(t, err)
	assert.Equal(t, "type", fs.Errors()["price"])
	assert.Equal(t, float64(10), fs.Values().Price)
}

func TestUnparsedInputKeepsFormInvalid(t *testing.T) {
	fs := New(filled())

	require.NoError(t, fs.Input("price", "abc"))
	require.Error(t, fs.Blur("price"))

	assert.False(t, fs.Valid())
	assert.Equal(t, "type", fs.Errors()["price"])

	require.NoError(t, fs.Blur("price"))
	assert.False(t, fs.Valid())

	require.NoError(t, fs.Input("price", "12"))
	require.NoError(t, fs.Blur("price"))
	assert.True(t, fs.Valid())
	assert.Empty(t, fs.Errors())
}

func TestResetClearsUnparsedInput(t *testing.T) {
	fs := New(filled())
	require.Error(t, fs.Patch("price", "abc"))

	fs.Reset()
	require.NoError(t, fs.Patch("title", "Loft"))
	require.NoError(t, fs.Patch("description", "Bright"))
	require.NoError(t, fs.Patch("price", 10.0))
	require.NoError(t, fs.Patch("spot", &spot{Lat: 1}))

	assert.True(t, fs.Valid())
}

func TestRequiredPointerField(t *testing.T) {
	fs := New(testFields{Title: "a", Description: "b", Price: 2})
	assert.False(t, fs.Valid())
	assert.Equal(t, "required", fs.Errors()["spot"])

	require.NoError(t, fs.Patch("spot", &spot{Lat: 4}))
	assert.True(t, fs.Valid())
}

func TestUnknownField(t *testing.T) {
	fs := New(testFields{})

	assert.ErrorIs(t, fs.Input("Internal", "x"), ErrUnknownField)
	assert.ErrorIs(t, fs.Blur("missing"), ErrUnknownField)
	assert.ErrorIs(t, fs.Patch("missing", 1), ErrUnknownField)
	_, err := fs.Value("missing")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestResetClearsEverything(t *testing.T) {
	fs := New(filled())
	require.NoError(t, fs.Input("title", "pending"))
	require.NoError(t, fs.Patch("description", ""))
	require.NotEmpty(t, fs.Errors())

	fs.Reset()

	assert.Equal(t, testFields{}, fs.Values())
	assert.Empty(t, fs.Errors())
	require.NoError(t, fs.Blur("title"))
	assert.Empty(t, fs.Values().Title)
}

func TestValue(t *testing.T) {
	fs := New(filled())

	v, err := fs.Value("price")
	require.NoError(t, err)
	assert.Equal(t, float64(10), v)
}

func TestNewPanicsOnNonStruct(t *testing.T) {
	assert.Panics(t, func() { New(42) })
}
