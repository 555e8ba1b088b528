package emit

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calumari/nativize/internal/model"
)

func array(elems ...model.Value) *model.ArrayValue { return &model.ArrayValue{Elems: elems} }

func (f *fixture) body(damping float32) *model.StructValue {
	return model.NewStruct(f.m.Struct(model.StructBodyInstance), map[string]model.Value{"LinearDamping": damping})
}

func TestEmitContainers(t *testing.T) {
	t.Run("empty containers emit nothing", func(t *testing.T) {
		f := newFixture(t)
		props := []*model.Prop{f.add("Labels", "array<name>"), f.add("Names", "set<name>"), f.add("Counts", "map<name, int>")}
		c := f.context()
		w := c.Begin(CodeRegular)
		for _, p := range props {
			require.NoError(t, c.EmitField(p, "", values(nil), nil, AccessNone, 0))
			require.NoError(t, c.EmitField(p, "", values(nil), values(nil), AccessNone, 0))
		}
		require.Empty(t, w.String())
	})

	t.Run("array elements are added in order", func(t *testing.T) {
		f := newFixture(t)
		p := f.add("Labels", "array<name>")
		c := f.context()
		w := c.Begin(CodeRegular)
		require.NoError(t, c.EmitField(p, "", values(map[string]model.Value{"Labels": array("A", "B")}), nil, AccessNone, 0))
		require.Equal(t, []string{
			"Labels.Reserve(2);",
			`Labels.Add(FName(TEXT("A")));`,
			`Labels.Add(FName(TEXT("B")));`,
		}, lines(w.String()))
	})

	t.Run("equal length arrays assign only changed elements", func(t *testing.T) {
		f := newFixture(t)
		p := f.add("Weights", "array<float>")
		c := f.context()
		w := c.Begin(CodeRegular)
		src := values(map[string]model.Value{"Weights": array(float32(1), float32(5), float32(3))})
		def := values(map[string]model.Value{"Weights": array(float32(1), float32(2), float32(3))})
		require.NoError(t, c.EmitField(p, "", src, def, AccessNone, 0))
		require.Equal(t, []string{"Weights[1] = 5.0f;"}, lines(w.String()))
	})

	t.Run("arrays differing in length are rebuilt", func(t *testing.T) {
		f := newFixture(t)
		p := f.add("Weights", "array<float>")
		c := f.context()
		w := c.Begin(CodeRegular)
		src := values(map[string]model.Value{"Weights": array(float32(1))})
		def := values(map[string]model.Value{"Weights": array(float32(1), float32(2))})
		require.NoError(t, c.EmitField(p, "", src, def, AccessNone, 0))
		require.Equal(t, []string{"Weights.Reset();", "Weights.Reserve(1);", "Weights.Add(1.0f);"}, lines(w.String()))
	})

	t.Run("emptied array is reset", func(t *testing.T) {
		f := newFixture(t)
		p := f.add("Weights", "array<float>")
		c := f.context()
		w := c.Begin(CodeRegular)
		def := values(map[string]model.Value{"Weights": array(float32(1))})
		require.NoError(t, c.EmitField(p, "", values(nil), def, AccessNone, 0))
		require.Equal(t, []string{"Weights.Reset();"}, lines(w.String()))
	})

	t.Run("native struct arrays are initialized in place", func(t *testing.T) {
		f := newFixture(t)
		p := f.add("Bodies", "array<FBodyInstance>")
		c := f.context()
		w := c.Begin(CodeRegular)
		require.NoError(t, c.EmitField(p, "", values(map[string]model.Value{"Bodies": array(f.body(0.5))}), nil, AccessNone, 0))
		require.Equal(t, []string{
			"Bodies.AddUninitialized(1);",
			"FBodyInstance::StaticStruct()->InitializeStruct(Bodies.GetData(), 1);",
			"auto& __Local__1 = Bodies[0];",
			"__Local__1.LinearDamping = 0.5f;",
		}, lines(w.String()))
	})

	t.Run("converted struct arrays add a default then fill it", func(t *testing.T) {
		f := newFixture(t)
		p := f.add("States", "array<FDoorState>")
		c := f.context()
		w := c.Begin(CodeRegular)
		elem := model.NewStruct(f.state, map[string]model.Value{"Speed": float32(2)})
		require.NoError(t, c.EmitField(p, "", values(map[string]model.Value{"States": array(elem)}), nil, AccessNone, 0))
		require.Equal(t, []string{"States.Reserve(1);", "States.Add(FDoorState());", "States[0].Speed = 2.0f;"}, lines(w.String()))
	})

	t.Run("wrapper structs are initialized in place", func(t *testing.T) {
		f := newFixture(t)
		p := f.add("States", "array<FDoorState>")
		c := NewContext(f.door, nil, Options{Log: slog.New(slog.DiscardHandler), Wrappers: map[string]bool{"FDoorState": true}})
		w := c.Begin(CodeRegular)
		elem := model.NewStruct(f.state, map[string]model.Value{"Speed": float32(2)})
		require.NoError(t, c.EmitField(p, "", values(map[string]model.Value{"States": array(elem)}), nil, AccessNone, 0))
		ls := lines(w.String())
		require.Equal(t, "States.AddUninitialized(1);", ls[0])
		require.Equal(t, "FDoorState::StaticStruct()->InitializeStruct(States.GetData(), 1);", ls[1])
	})

	t.Run("sparse set adds only valid slots", func(t *testing.T) {
		f := newFixture(t)
		p := f.add("Names", "set<name>")
		c := f.context()
		w := c.Begin(CodeRegular)
		set := &model.SetValue{Slots: []model.SetSlot{{Valid: true, Elem: "A"}, {}, {Valid: true, Elem: "B"}}}
		require.NoError(t, c.EmitField(p, "", values(map[string]model.Value{"Names": set}), nil, AccessNone, 0))
		require.Equal(t, []string{"Names.Reserve(2);", `Names.Add(FName(TEXT("A")));`, `Names.Add(FName(TEXT("B")));`}, lines(w.String()))
	})

	t.Run("native struct sets go through the set helper", func(t *testing.T) {
		f := newFixture(t)
		p := f.add("BodySet", "set<FBodyInstance>")
		c := f.context()
		w := c.Begin(CodeRegular)
		require.NoError(t, c.EmitField(p, "", values(map[string]model.Value{"BodySet": model.NewSet(f.body(0.5))}), nil, AccessNone, 0))
		require.Equal(t, []string{
			"BodySet.Reserve(1);",
			`auto __Local__1 = ADoor_C::StaticClass()->FindPropertyByName(FName(TEXT("BodySet")));`,
			"FScriptSetHelper __Local__2(CastFieldChecked<FSetProperty>(__Local__1), &BodySet);",
			"FBodyInstance& __Local__3 = *(FBodyInstance*)__Local__2.GetElementPtr(__Local__2.AddDefaultValue_Invalid_NeedsRehash());",
			"__Local__3.LinearDamping = 0.5f;",
			"__Local__2.Rehash();",
		}, lines(w.String()))
	})

	t.Run("map pairs are added", func(t *testing.T) {
		f := newFixture(t)
		p := f.add("Counts", "map<name, int>")
		c := f.context()
		w := c.Begin(CodeRegular)
		require.NoError(t, c.EmitField(p, "", values(map[string]model.Value{"Counts": model.NewMap("A", int64(3))}), nil, AccessNone, 0))
		require.Equal(t, []string{"Counts.Reserve(1);", `Counts.Add(FName(TEXT("A")), 3);`}, lines(w.String()))
	})

	t.Run("maps with native struct values go through the map helper", func(t *testing.T) {
		f := newFixture(t)
		p := f.add("BodyMap", "map<name, FBodyInstance>")
		c := f.context()
		w := c.Begin(CodeRegular)
		require.NoError(t, c.EmitField(p, "", values(map[string]model.Value{"BodyMap": model.NewMap("Left", f.body(0.5))}), nil, AccessNone, 0))
		require.Equal(t, []string{
			"BodyMap.Reserve(1);",
			`auto __Local__1 = ADoor_C::StaticClass()->FindPropertyByName(FName(TEXT("BodyMap")));`,
			"FScriptMapHelper __Local__2(CastFieldChecked<FMapProperty>(__Local__1), &BodyMap);",
			"TMap<FName, FBodyInstance>::ElementType& __Local__3 = *(TMap<FName, FBodyInstance>::ElementType*)__Local__2.GetPairPtr(__Local__2.AddDefaultValue_Invalid_NeedsRehash());",
			`__Local__3.Key = FName(TEXT("Left"));`,
			"__Local__3.Value.LinearDamping = 0.5f;",
			"__Local__2.Rehash();",
		}, lines(w.String()))
	})

	t.Run("maps with native struct keys go through the map helper", func(t *testing.T) {
		f := newFixture(t)
		p := f.add("BodyCounts", "map<FBodyInstance, int>")
		c := f.context()
		w := c.Begin(CodeRegular)
		require.NoError(t, c.EmitField(p, "", values(map[string]model.Value{"BodyCounts": model.NewMap(f.body(0.5), int64(3))}), nil, AccessNone, 0))
		require.Equal(t, []string{
			"BodyCounts.Reserve(1);",
			`auto __Local__1 = ADoor_C::StaticClass()->FindPropertyByName(FName(TEXT("BodyCounts")));`,
			"FScriptMapHelper __Local__2(CastFieldChecked<FMapProperty>(__Local__1), &BodyCounts);",
			"TMap<FBodyInstance, int32>::ElementType& __Local__3 = *(TMap<FBodyInstance, int32>::ElementType*)__Local__2.GetPairPtr(__Local__2.AddDefaultValue_Invalid_NeedsRehash());",
			"__Local__3.Key.LinearDamping = 0.5f;",
			"__Local__3.Value = 3;",
			"__Local__2.Rehash();",
		}, lines(w.String()))
	})

	t.Run("nested arrays build a local per element", func(t *testing.T) {
		f := newFixture(t)
		p := f.add("Grid", "array<array<int>>")
		c := f.context()
		w := c.Begin(CodeRegular)
		require.NoError(t, c.EmitField(p, "", values(map[string]model.Value{"Grid": array(array(int64(1)))}), nil, AccessNone, 0))
		require.Equal(t, []string{
			"Grid.Reserve(1);",
			"TArray<int32> __Local__1;",
			"__Local__1.Reserve(1);",
			"__Local__1.Add(1);",
			"Grid.Add(__Local__1);",
		}, lines(w.String()))
	})
}
