package spec

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOverrides(t *testing.T) {
	table, err := ParseOverrides([]byte(`
/admin/realms/{realm}/events: EventRepresentation
"/admin/realms/{realm}/users:briefRepresentation:string": boolean
`), "inline")
	require.NoError(t, err)

	item, ok := table.StreamItem("/admin/realms/{realm}/events")
	assert.True(t, ok)
	assert.Equal(t, "EventRepresentation", item)

	_, ok = table.StreamItem("/admin/realms/{realm}/missing")
	assert.False(t, ok)

	assert.Equal(t, "boolean", table.ParameterType("/admin/realms/{realm}/users", "briefRepresentation", "string"))
	assert.Equal(t, "integer(int32)", table.ParameterType("/admin/realms/{realm}/users", "first", "integer(int32)"))
}

func TestParseOverrides_RejectsNonScalar(t *testing.T) {
	_, err := ParseOverrides([]byte(`/x: [a, b]`), "inline")
	var se *SpecError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, ValidationError, se.Code)
}

func TestLoadOverrides_EmptyInput(t *testing.T) {
	table, err := LoadOverrides(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, table)
}

func TestLoadOverrides_File(t *testing.T) {
	path := writeTemp(t, "overrides.yaml", `/admin/realms/{realm}/events: EventRepresentation`)
	table, err := LoadOverrides(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, Overrides{"/admin/realms/{realm}/events": "EventRepresentation"}, table)
}
