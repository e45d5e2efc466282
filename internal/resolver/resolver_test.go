package resolver

import (
	"testing"

	"github.com/mark3labs/restgen/internal/generr"
	"github.com/mark3labs/restgen/internal/model"
	"github.com/mark3labs/restgen/internal/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(name, typ string) spec.FieldRecord {
	return spec.FieldRecord{Name: name, Type: typ, Optionality: "optional"}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		raw   string
		ref   model.TypeRef
		array bool
	}{
		{"string", model.LifetimeRef(model.String), false},
		{"< string > array(csv)", model.LifetimeRef(model.String), false},
		{"integer(int32)", model.SimpleRef(model.Int32), false},
		{"integer(int64)", model.SimpleRef(model.Int64), false},
		{"number(float)", model.SimpleRef(model.Float32), false},
		{"number(double)", model.SimpleRef(model.Float64), false},
		{"boolean", model.SimpleRef(model.Bool), false},
		{"Map", model.LifetimeRef(model.Map), false},
		{"MultivaluedHashMap", model.SimpleRef(model.MultiMap), false},
		{"Object", model.SimpleRef(model.JSON), false},
		{"No Content", model.SimpleRef(model.Unit), false},
		{"Response", model.SimpleRef(model.Unit), false},
		{"file", model.SimpleRef(model.Bytes), false},
		{"string(byte)", model.SimpleRef(model.Byte), false},
		{"< string(byte) > array", model.SimpleRef(model.Byte), true},
		{"< string > array", model.LifetimeRef(model.String), true},
		{"UserRepresentation", model.RegistryRef("UserRepresentation"), false},
		{"< Group-Representation > array", model.RegistryRef("GroupRepresentation"), true},
		{"Stream", model.RegistryRef("Stream"), false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			shape, err := Classify(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.ref, shape.Ref)
			assert.Equal(t, tt.array, shape.Array)
			assert.False(t, shape.IsEnum())
		})
	}
}

func TestClassify_Enum(t *testing.T) {
	shape, err := Classify("< enum (READ, WRITE) > array")
	require.NoError(t, err)
	assert.True(t, shape.Array)
	assert.Equal(t, []string{"READ", "WRITE"}, shape.Enum)

	shape, err = Classify("< enum (client-credentials, password) > array")
	require.NoError(t, err)
	assert.Equal(t, []string{"client-credentials", "password"}, shape.Enum)
}

func TestClassify_Unknown(t *testing.T) {
	for _, raw := range []string{"uuid", "integer", "< < string > array > array", "enum ()", "some thing"} {
		t.Run(raw, func(t *testing.T) {
			_, err := Classify(raw)
			assert.ErrorIs(t, err, generr.ErrUnknownType)
		})
	}
}

func TestResolve_CamelCaseStruct(t *testing.T) {
	reg, err := Build([]spec.ResourceRecord{{
		Name:   "ClientRepresentation",
		Fields: []spec.FieldRecord{field("clientId", "string"), field("realmId", "string")},
	}})
	require.NoError(t, err)

	st, ok := reg.Struct("ClientRepresentation")
	require.True(t, ok)
	assert.True(t, st.CamelCase)
	for _, f := range st.Fields {
		assert.Equal(t, model.CaseCamel, f.Case)
		assert.False(t, f.NeedsRename(st.CamelCase), f.WireName)
	}
	assert.Equal(t, "client_id", st.Fields[0].Name)
	assert.Equal(t, "realm_id", st.Fields[1].Name)
}

func TestResolve_ReservedFieldIsCustom(t *testing.T) {
	reg, err := Build([]spec.ResourceRecord{{
		Name: "Link",
		Fields: []spec.FieldRecord{
			field("self", "string"),
			field("created_timestamp", "integer(int64)"),
			field("id", "string"),
		},
	}})
	require.NoError(t, err)

	st, _ := reg.Struct("Link")
	assert.False(t, st.CamelCase)

	var renames []string
	for _, f := range st.Fields {
		if f.NeedsRename(st.CamelCase) {
			renames = append(renames, f.WireName)
		}
	}
	assert.Equal(t, []string{"self"}, renames)
	assert.Equal(t, "self_", st.Fields[0].Name)
	assert.Equal(t, model.CaseCustom, st.Fields[0].Case)
	assert.Equal(t, model.CaseSnake, st.Fields[1].Case)
	assert.Equal(t, model.CaseUnknown, st.Fields[2].Case)
}

func TestResolve_MixedConventions(t *testing.T) {
	reg, err := Build([]spec.ResourceRecord{{
		Name: "Mixed",
		Fields: []spec.FieldRecord{
			field("clientId", "string"),
			field("not_before", "integer(int32)"),
			field("X509Thumbprint", "string"),
		},
	}})
	require.NoError(t, err)

	st, _ := reg.Struct("Mixed")
	require.True(t, st.CamelCase)
	// Snake fields of a camelCase struct and custom names keep their own renames.
	assert.False(t, st.Fields[0].NeedsRename(true))
	assert.True(t, st.Fields[1].NeedsRename(true))
	assert.Equal(t, model.CaseCustom, st.Fields[2].Case)
	assert.True(t, st.Fields[2].NeedsRename(true))
}

func TestResolve_InlineEnum(t *testing.T) {
	r := New()
	_, err := r.Resolve(spec.ResourceRecord{
		Name: "Policy",
		Fields: []spec.FieldRecord{
			field("status", "enum (ACTIVE, DISABLED)"),
			field("scope", "enum (openid, userinfo)"),
		},
	})
	require.NoError(t, err)

	enums := r.Registry().Enums()
	require.Len(t, enums, 2)
	assert.Equal(t, &model.EnumType{
		Name:      "PolicyStatus",
		UpperCase: true,
		Variants:  []string{"Active", "Disabled"},
		Values:    []string{"ACTIVE", "DISABLED"},
	}, enums[0])
	assert.Equal(t, &model.EnumType{
		Name:      "PolicyScope",
		UpperCase: false,
		Variants:  []string{"Openid", "UserInfo"},
		Values:    []string{"openid", "userinfo"},
	}, enums[1])
	assert.Equal(t, "openid", enums[1].WireValue(0))

	st, _ := r.Registry().Struct("Policy")
	assert.Equal(t, model.SimpleRef("PolicyStatus"), st.Fields[0].Type)
	assert.True(t, st.Fields[0].Type.IsEnum())
}

func TestResolve_EnumSynthesizedOnce(t *testing.T) {
	r := New()
	_, err := r.Resolve(spec.ResourceRecord{Name: "Policy", Fields: []spec.FieldRecord{field("status", "enum (ACTIVE, DISABLED)")}})
	require.NoError(t, err)
	_, err = r.Resolve(spec.ResourceRecord{Name: "Policy-Copy", Fields: []spec.FieldRecord{field("status", "enum (ACTIVE)")}})
	require.NoError(t, err)
	assert.Len(t, r.Registry().Enums(), 2)

	_, ok := r.Registry().Struct("PolicyCopy")
	assert.True(t, ok, "dashes are removed from type names")
}

func TestResolve_UnknownTypeIsFatal(t *testing.T) {
	_, err := Build([]spec.ResourceRecord{{
		Name:   "Policy",
		Fields: []spec.FieldRecord{field("id", "string"), field("weird", "uuid")},
	}})
	require.ErrorIs(t, err, generr.ErrUnknownType)

	var typeErr *generr.UnknownTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "uuid", typeErr.Raw)
	assert.Equal(t, "Policy.weird", typeErr.Context)
}

func TestResolve_DuplicateType(t *testing.T) {
	_, err := Build([]spec.ResourceRecord{{Name: "A"}, {Name: "A"}})
	assert.ErrorIs(t, err, generr.ErrDuplicateType)
}

func TestResolve_EnumNameClashes(t *testing.T) {
	policy := spec.ResourceRecord{Name: "Policy", Fields: []spec.FieldRecord{field("status", "enum (ACTIVE, DISABLED)")}}
	status := spec.ResourceRecord{Name: "PolicyStatus", Fields: []spec.FieldRecord{field("id", "string")}}

	tests := map[string][]spec.ResourceRecord{
		"struct then enum": {status, policy},
		"enum then struct": {policy, status},
		// "status" and "Status" both synthesize PolicyStatus.
		"enums disagree": {{Name: "Policy", Fields: []spec.FieldRecord{
			field("status", "enum (ACTIVE, DISABLED)"),
			field("Status", "enum (ON)"),
		}}},
	}
	for name, resources := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Build(resources)
			require.ErrorIs(t, err, generr.ErrDuplicateType)
			var dup *generr.DuplicateTypeError
			require.ErrorAs(t, err, &dup)
			assert.Equal(t, "PolicyStatus", dup.Name)
		})
	}
}

func TestResolve_IdenticalEnumsShareOneType(t *testing.T) {
	reg, err := Build([]spec.ResourceRecord{{Name: "Policy", Fields: []spec.FieldRecord{
		field("status", "enum (ON, OFF)"),
		field("Status", "enum (ON, OFF)"),
	}}})
	require.NoError(t, err)
	assert.Len(t, reg.Enums(), 1)
}

func TestLifetimes_Cycle(t *testing.T) {
	resources := []spec.ResourceRecord{
		{Name: "A", Fields: []spec.FieldRecord{field("b", "B")}},
		{Name: "B", Fields: []spec.FieldRecord{field("a", "A"), field("note", "string")}},
	}
	reg, err := Build(resources)
	require.NoError(t, err)

	for _, order := range [][]string{{"A", "B"}, {"B", "A"}} {
		lt := NewLifetimes(reg)
		for _, name := range order {
			assert.True(t, lt.NeedsLifetime(name), "order %v: %s", order, name)
		}
	}
}

func TestLifetimes_NoBorrow(t *testing.T) {
	reg, err := Build([]spec.ResourceRecord{
		{Name: "A", Fields: []spec.FieldRecord{field("b", "B"), field("count", "integer(int32)")}},
		{Name: "B", Fields: []spec.FieldRecord{field("a", "< A > array"), field("status", "enum (ON, OFF)")}},
		{Name: "C", Fields: []spec.FieldRecord{field("a", "A"), field("attrs", "Map")}},
		{Name: "D", Fields: []spec.FieldRecord{field("c", "C")}},
	})
	require.NoError(t, err)

	lt := NewLifetimes(reg)
	assert.False(t, lt.NeedsLifetime("A"))
	assert.False(t, lt.NeedsLifetime("B"))
	assert.True(t, lt.NeedsLifetime("D"))
	assert.True(t, lt.NeedsLifetime("C"))
	assert.False(t, lt.NeedsLifetime("Missing"))
}
