package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadGoTypes(t *testing.T) {
	m := New()
	require.NoError(t, m.LoadGoTypes("testdata/types", "/Game/Types"))

	t.Run("named integer types with constants become enums", func(t *testing.T) {
		e := m.Enum("Phase")
		require.NotNil(t, e)
		require.Equal(t, []string{"PhaseIdle", "PhaseOpening", "PhaseOpen"}, e.Values)
		require.Equal(t, "/Game/Types", e.Package.Name)
	})

	t.Run("structs are converted with mapped fields", func(t *testing.T) {
		s := m.Struct("Hinge")
		require.NotNil(t, s)
		require.True(t, s.Converted())

		kinds := map[string]Kind{}
		for _, p := range s.AllProps() {
			kinds[p.Name] = p.Kind
		}
		require.Equal(t, map[string]Kind{
			"Angle":   KindFloat,
			"bStiff":  KindBool,
			"Phase":   KindEnum,
			"Offsets": KindFloat,
			"Tags":    KindArray,
			"Weights": KindMap,
			"Labels":  KindSet,
			"Note":    KindString,
			"Mesh":    KindObject,
		}, kinds)
		require.Equal(t, 3, s.FindProp("Offsets").Dim())
		require.True(t, s.FindProp("Note").Flags.Has(PropTransient))
		require.Equal(t, "UStaticMesh", s.FindProp("Mesh").Class.Name)
	})

	t.Run("struct fields may reference other declared structs", func(t *testing.T) {
		p := m.Struct("Panel").FindProp("Hinges")
		require.Equal(t, KindArray, p.Kind)
		require.Equal(t, m.Struct("Hinge"), p.Elem.Struct)
		require.Equal(t, KindFloat, m.Struct("Panel").FindProp("Scale").Kind)
	})

	t.Run("types shadowing runtime classes are not structs", func(t *testing.T) {
		require.Nil(t, m.Struct("UStaticMesh"))
	})
}

func TestFieldTag(t *testing.T) {
	t.Run("empty tag keeps the Go name", func(t *testing.T) {
		name, flags, err := fieldTag("Speed", "")
		require.NoError(t, err)
		require.Equal(t, "Speed", name)
		require.Zero(t, flags)
	})

	t.Run("flags are case insensitive", func(t *testing.T) {
		name, flags, err := fieldTag("Speed", "bFast, Config ,private")
		require.NoError(t, err)
		require.Equal(t, "bFast", name)
		require.True(t, flags.Has(PropConfig|PropPrivate))
	})

	t.Run("unknown flag", func(t *testing.T) {
		_, _, err := fieldTag("Speed", ",loud")
		require.ErrorContains(t, err, "loud")
	})
}
