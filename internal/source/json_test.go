package source

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jittakal/xesgen/internal/errors"
)

func TestReadJSON(t *testing.T) {
	input := `[
		{"method": "main", "line": 42, "amount": 12.5, "flag": true, "note": null},
		{"line": 43, "method": "run", "amount": "novalue", "flag": false, "note": "x"}
	]`

	table, err := ReadJSON(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"method", "line", "amount", "flag", "note"}, table.Header)
	assert.Equal(t, [][]string{
		{"main", "42", "12.5", "true", ""},
		{"run", "43", "novalue", "false", "x"},
	}, table.Rows)
}

func TestReadJSON_NestedValuesStayRaw(t *testing.T) {
	table, err := ReadJSON(strings.NewReader(`[{"params": [1, "a"], "ctx": {"k": "v"}}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{`[1,"a"]`, `{"k":"v"}`}, table.Rows[0])
}

func TestReadJSON_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, err error)
	}{
		{"empty array", `[]`, func(t *testing.T, err error) {
			assert.True(t, stderrors.Is(err, errors.ErrEmptyInput))
		}},
		{"not an array", `{"a": 1}`, func(t *testing.T, err error) {
			assert.True(t, stderrors.Is(err, errors.ErrMalformedInput))
		}},
		{"invalid json", `[{"a": }]`, func(t *testing.T, err error) {
			assert.True(t, stderrors.Is(err, errors.ErrMalformedInput))
		}},
		{"extra field", `[{"a": 1}, {"a": 2, "b": 3}]`, func(t *testing.T, err error) {
			var arity *errors.ArityError
			require.True(t, stderrors.As(err, &arity))
			assert.Equal(t, 2, arity.Row)
			assert.Equal(t, 1, arity.Expected)
			assert.Equal(t, 2, arity.Actual)
		}},
		{"renamed field", `[{"a": 1}, {"b": 2}]`, func(t *testing.T, err error) {
			assert.True(t, stderrors.Is(err, errors.ErrMalformedInput))
			assert.True(t, errors.IsInputError(err))
		}},
		{"record is not an object", `[{"a": 1}, 5]`, func(t *testing.T, err error) {
			assert.True(t, stderrors.Is(err, errors.ErrMalformedInput))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
