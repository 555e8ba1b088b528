package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const doorModel = `
packages:
  - name: /Game/Door
  - name: /Game/Editor
    flags: [editoronly]
enums:
  - name: EDoorMode
    package: /Game/Door
    values: [Closed, Open]
structs:
  - name: FDoorState
    package: /Game/Door
    flags: [userdefined, converted]
    fields:
      - {name: Speed, type: float}
      - {name: Mode, type: EDoorMode}
      - {name: Slots, type: int, dim: 2}
    default: {Speed: 1.5}
classes:
  - name: ADoor_C
    package: /Game/Door
    super: AActor
    flags: [userdefined, converted]
    fields:
      - {name: State, type: FDoorState}
      - {name: Body, type: object<UStaticMeshComponent>, flags: [instanced]}
      - {name: Names, type: set<name>}
      - {name: Weights, type: "map<name, float>"}
      - {name: Offsets, type: "map<FVector, int>"}
      - {name: Kind, type: class<UObject>}
    components:
      - variable: Body
        template: /Game/Door.ADoor_C:Body_GEN_VARIABLE
    timelines: [/Game/Door.ADoor_C:Swing_Template]
    overrides:
      - {name: Body, class: UBoxComponent}
objects:
  - name: Body_GEN_VARIABLE
    class: UStaticMeshComponent
    outer: ADoor_C
    flags: [archetype, public]
  - name: Swing_Template
    class: UTimelineTemplate
    outer: ADoor_C
    values: {TimelineLength: 2}
  - name: Default__ADoor_C
    class: ADoor_C
    outer: /Game/Door
    flags: [CDO, archetype]
    values:
      State: {Mode: Open, Slots: [3, 4]}
      Body: /Game/Door.ADoor_C:Body_GEN_VARIABLE
      Names: [a, b]
      Weights: {a: 0.5}
      Offsets:
        - key: {X: 1}
          value: 7
      Kind: UStaticMesh
`

func loadDoor(t *testing.T) *Model {
	t.Helper()
	m := New()
	require.NoError(t, m.Load([]byte(doorModel)))
	return m
}

func TestLoad(t *testing.T) {
	t.Run("declarations are linked", func(t *testing.T) {
		m := loadDoor(t)
		door := m.Class("ADoor_C")
		require.NotNil(t, door)
		require.Equal(t, m.Class(ClassActor), door.Parent())
		require.True(t, m.Package("/Game/Editor", 0).Flags.Has(PkgEditorOnly))
		require.Equal(t, m.Object("/Game/Door.Default__ADoor_C"), door.CDO)
		require.Len(t, door.Components, 1)
		require.Equal(t, "/Game/Door.ADoor_C:Body_GEN_VARIABLE", PathName(door.Components[0].Template))
		require.Equal(t, []*Object{m.Object("/Game/Door.ADoor_C:Swing_Template")}, door.Timelines)
		require.Equal(t, m.Class("UBoxComponent"), door.ComponentOverrides[0].Class)
	})

	t.Run("values decode by field kind", func(t *testing.T) {
		m := loadDoor(t)
		door := m.Class("ADoor_C")
		cdo := door.CDO

		state := cdo.Value(door.FindProp("State"), 0).(*StructValue)
		s := m.Struct("FDoorState")
		require.Equal(t, int64(1), state.Value(s.FindProp("Mode"), 0))
		require.Equal(t, float32(1.5), state.Value(s.FindProp("Speed"), 0))
		require.Equal(t, int64(4), state.Value(s.FindProp("Slots"), 1))

		require.Equal(t, m.Object("/Game/Door.ADoor_C:Body_GEN_VARIABLE"), cdo.Value(door.FindProp("Body"), 0))
		require.Equal(t, 2, Len(cdo.Value(door.FindProp("Names"), 0)))
		require.Equal(t, 1, Len(cdo.Value(door.FindProp("Offsets"), 0)))
		require.Equal(t, m.Class("UStaticMesh"), cdo.Value(door.FindProp("Kind"), 0))

		weights := cdo.Value(door.FindProp("Weights"), 0).(*MapValue)
		require.Equal(t, float32(0.5), weights.Slots[0].Val)
	})

	t.Run("unset values fall back to the parent default object", func(t *testing.T) {
		m := loadDoor(t)
		door := m.Class("ADoor_C")
		require.Equal(t, false, door.CDO.Value(door.FindProp("bReplicates"), 0))
		tl := m.Object("/Game/Door.ADoor_C:Swing_Template")
		require.Equal(t, float32(2), tl.Value(tl.Class.FindProp("TimelineLength"), 0))
	})

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown super", "classes: [{name: A, super: AMissing}]", "AMissing"},
		{"unknown field type", "structs: [{name: S, fields: [{name: X, type: widget}]}]", "widget"},
		{"unknown flag", "structs: [{name: S, flags: [shiny]}]", "shiny"},
		{"unknown package flag", "packages: [{name: /Game/P, flags: [shiny]}]", "shiny"},
		{"unresolved outer", "objects: [{name: O, class: UObject, outer: Nowhere}]", "unresolved outer"},
		{"unknown field", "objects: [{name: O, class: UObject, outer: /Game/P, values: {Height: 1}}]", "no field Height"},
		{"bad number", "objects: [{name: O, class: AActor, outer: /Game/P, values: {InitialLifeSpan: tall}}]", "InitialLifeSpan"},
		{"unknown object reference", "objects: [{name: O, class: AActor, outer: /Game/P, values: {RootComponent: /Game/P.Missing}}]", "Missing"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorContains(t, New().Load([]byte(tc.doc)), tc.want)
		})
	}

	t.Run("unknown types wrap the sentinel", func(t *testing.T) {
		err := New().Load([]byte("classes: [{name: A, super: AMissing}]"))
		require.ErrorIs(t, err, ErrUnknownType)
	})

	t.Run("objects may be declared before their outer", func(t *testing.T) {
		m := New()
		require.NoError(t, m.Load([]byte(`
objects:
  - {name: Inner, class: UObject, outer: /Game/P.Outer}
  - {name: Outer, class: UObject, outer: /Game/P}
`)))
		require.NotNil(t, m.Object("/Game/P.Outer:Inner"))
	})
}
