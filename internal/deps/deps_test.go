package deps

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calumari/nativize/internal/model"
)

type fixture struct {
	m        *model.Model
	door     *model.Class
	lock     *model.Class
	state    *model.Struct
	mode     *model.Enum
	mesh     *model.Object
	preview  *model.Object
	dedicate *model.Object
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := model.New()
	game := m.Package("/Game/Door", 0)
	meshes := m.Package("/Game/Meshes", 0)
	f := &fixture{m: m}
	f.mode = m.AddEnum(&model.Enum{Name: "EDoorMode", Package: game, Values: []string{"Closed", "Open"}, Flags: model.StructUserDefined})
	f.state = m.AddStruct(&model.Struct{Name: "FDoorState", Package: game, Flags: model.StructUserDefined | model.StructConverted})
	f.state.Add(m.MustProp("Mode", "EDoorMode"))
	f.state.Add(m.MustProp("Offset", "FVector"))

	f.lock = m.AddClass(model.NewClass("ALock_C", game, m.Class(model.ClassActor), model.StructUserDefined|model.StructConverted))
	m.NewCDO(f.lock)
	f.door = m.AddClass(model.NewClass("ADoor_C", game, m.Class(model.ClassActor), model.StructUserDefined|model.StructConverted))
	f.door.Add(m.MustProp("State", "FDoorState"))
	f.door.Add(m.MustProp("Mesh", "object<UStaticMesh>"))
	f.door.Add(m.MustProp("LockClass", "class<ALock_C>"))
	cdo := m.NewCDO(f.door)

	f.mesh = m.AddObject(&model.Object{Name: "SM_Door", Class: m.Class("UStaticMesh"), Outer: meshes})
	f.preview = m.AddObject(&model.Object{Name: "SM_Preview", Class: m.Class("UStaticMesh"), Outer: meshes, Flags: model.ObjEditorOnly})
	f.dedicate = m.AddObject(&model.Object{Name: "SM_Cosmetic", Class: m.Class("UStaticMesh"), Outer: meshes, Flags: model.ObjNotForServer})
	cdo.Set("Mesh", f.mesh).Set("LockClass", f.lock)

	comp := m.AddObject(&model.Object{Name: "Frame", Class: m.Class("UStaticMeshComponent"), Outer: cdo, Flags: model.ObjDefaultSubobject})
	cdo.Set(model.PropRootComponent, comp)
	return f
}

func (f *fixture) record(ord *Ordering, e model.Entity) (Record, bool) {
	for _, r := range ord.Records {
		if r.Entity == e {
			return r, true
		}
	}
	return Record{}, false
}

func TestCompute(t *testing.T) {
	t.Run("records are mutually exclusive on both axes", func(t *testing.T) {
		f := newFixture(t)
		used := []model.Entity{f.mesh, f.preview, f.dedicate, f.lock}
		for _, opts := range []Options{{}, {AsyncLoad: true}, {Server: true}, {CallChain: true}} {
			ord := Compute(f.door, used, NewIndex(), opts)
			require.NotEmpty(t, ord.Records)
			for _, r := range ord.Records {
				require.True(t, r.Struct.Valid(), "%s: %s", model.FullName(r.Entity), r.Struct)
				require.True(t, r.CDO.Valid(), "%s: %s", model.FullName(r.Entity), r.CDO)
			}
		}
	})

	t.Run("signature types are needed before linking", func(t *testing.T) {
		f := newFixture(t)
		ord := Compute(f.door, nil, NewIndex(), Options{})
		r, ok := f.record(ord, f.state)
		require.True(t, ok)
		require.True(t, r.Struct.SerializeBeforeSerialize)
		require.False(t, r.Struct.CreateBeforeSerialize)
	})

	t.Run("used assets are only created before serializing", func(t *testing.T) {
		f := newFixture(t)
		ord := Compute(f.door, []model.Entity{f.mesh}, NewIndex(), Options{})
		r, ok := f.record(ord, f.mesh)
		require.True(t, ok)
		require.False(t, r.Struct.SerializeBeforeSerialize)
		require.True(t, r.Struct.CreateBeforeSerialize)
		require.False(t, r.CDO.SerializeBeforeCreate)
	})

	t.Run("core and native entries are excluded without async loading", func(t *testing.T) {
		f := newFixture(t)
		ord := Compute(f.door, []model.Entity{f.mesh}, NewIndex(), Options{})
		_, ok := f.record(ord, f.m.Class(model.ClassActor))
		require.False(t, ok)
		_, ok = f.record(ord, f.m.Struct("FVector"))
		require.False(t, ok)
		_, ok = f.record(ord, f.m.Class(model.ClassActor).CDO)
		require.False(t, ok)
	})

	t.Run("async loading keeps native entries but never core ones", func(t *testing.T) {
		f := newFixture(t)
		ord := Compute(f.door, []model.Entity{f.m.Class(model.ClassObject)}, NewIndex(), Options{AsyncLoad: true})
		require.True(t, ord.AllowDuplicates)
		r, ok := f.record(ord, f.m.Class(model.ClassActor))
		require.True(t, ok)
		require.True(t, r.Struct.SerializeBeforeSerialize)
		cdo, ok := f.record(ord, f.m.Class(model.ClassActor).CDO)
		require.True(t, ok)
		require.True(t, cdo.CDO.SerializeBeforeCreate)
		_, ok = f.record(ord, f.m.Class("UStaticMeshComponent").CDO)
		require.True(t, ok)
		_, ok = f.record(ord, f.m.Class(model.ClassObject))
		require.False(t, ok)
	})

	t.Run("editor only and platform excluded entries are dropped with a reason", func(t *testing.T) {
		f := newFixture(t)
		ord := Compute(f.door, []model.Entity{f.preview, f.dedicate, f.mesh}, NewIndex(), Options{Server: true})
		require.Equal(t, []Dropped{
			{Entity: f.preview, Reason: ReasonEditorOnly},
			{Entity: f.dedicate, Reason: ReasonNotForServer},
		}, ord.Dropped)
		_, ok := f.record(ord, f.preview)
		require.False(t, ok)

		client := Compute(f.door, []model.Entity{f.dedicate}, NewIndex(), Options{Client: true})
		require.Empty(t, client.Dropped)
		_, ok = f.record(client, f.dedicate)
		require.True(t, ok)
	})

	t.Run("owned subobjects and the target are never dependencies", func(t *testing.T) {
		f := newFixture(t)
		frame := f.door.CDO.Vals[model.PropRootComponent]
		ord := Compute(f.door, []model.Entity{frame.(model.Entity), f.door, f.door.CDO}, NewIndex(), Options{AsyncLoad: true})
		for _, r := range ord.Records {
			require.NotEqual(t, frame, r.Entity)
			require.NotEqual(t, model.Entity(f.door), r.Entity)
		}
	})

	t.Run("call chain also calls converted siblings", func(t *testing.T) {
		f := newFixture(t)
		ord := Compute(f.door, []model.Entity{f.lock, f.mesh}, NewIndex(), Options{CallChain: true})
		require.Equal(t, []*model.Class{f.lock}, ord.Siblings)
		r, ok := f.record(ord, f.lock)
		require.True(t, ok)
		require.True(t, r.Struct.CreateBeforeSerialize)

		flat := Compute(f.door, []model.Entity{f.lock, f.mesh}, NewIndex(), Options{CallChain: true, AsyncLoad: true})
		require.Empty(t, flat.Siblings)
		_, ok = f.record(flat, f.lock)
		require.True(t, ok)
	})

	t.Run("a converted super class stays needed before linking under call chain", func(t *testing.T) {
		f := newFixture(t)
		sliding := f.m.AddClass(model.NewClass("ASlidingDoor_C", f.door.Package, f.door, model.StructUserDefined|model.StructConverted))
		f.m.NewCDO(sliding)
		ord := Compute(sliding, nil, NewIndex(), Options{CallChain: true})
		require.Contains(t, ord.Siblings, f.door)
		r, ok := f.record(ord, f.door)
		require.True(t, ok)
		require.True(t, r.Struct.SerializeBeforeSerialize)
		require.False(t, r.Struct.CreateBeforeSerialize)
		parent, ok := f.record(ord, f.door.CDO)
		require.True(t, ok)
		require.True(t, parent.CDO.SerializeBeforeCreate)
	})

	t.Run("classes named by reference fields are not needed before linking", func(t *testing.T) {
		f := newFixture(t)
		ord := Compute(f.door, nil, NewIndex(), Options{})
		r, ok := f.record(ord, f.lock)
		require.True(t, ok)
		require.Equal(t, "FBlueprintDependencyType(false, true, false, false)", r.Struct.String())
		require.False(t, r.CDO.SerializeBeforeCreate)
	})

	t.Run("directly used assets keep discovery order at the head of the table", func(t *testing.T) {
		f := newFixture(t)
		other := f.m.AddObject(&model.Object{Name: "SM_Handle", Class: f.m.Class("UStaticMesh"), Outer: f.mesh.Outer})
		used := []model.Entity{other, f.mesh}
		ord := Compute(f.door, used, NewIndex(), Options{})
		require.Equal(t, used, ord.Used)
		require.GreaterOrEqual(t, len(ord.Records), 2)
		require.Equal(t, model.Entity(other), ord.Records[0].Entity)
		require.Equal(t, model.Entity(f.mesh), ord.Records[1].Entity)
	})

	t.Run("converted subobject classes pull their assets before the default object", func(t *testing.T) {
		f := newFixture(t)
		knob := f.m.AddClass(model.NewClass("UKnob_C", f.door.Package, f.m.Class("UStaticMeshComponent"), model.StructConverted))
		knobCDO := f.m.NewCDO(knob)
		knobMesh := f.m.AddObject(&model.Object{Name: "SM_Knob", Class: f.m.Class("UStaticMesh"), Outer: f.mesh.Outer})
		knobCDO.Set("StaticMesh", knobMesh)
		sub := f.m.AddObject(&model.Object{Name: "Knob", Class: knob, Outer: f.door.CDO, Flags: model.ObjDefaultSubobject})
		f.door.Components = []*model.ComponentNode{{Variable: "Knob", Template: sub}}

		ord := Compute(f.door, nil, NewIndex(), Options{})
		r, ok := f.record(ord, knobMesh)
		require.True(t, ok)
		require.True(t, r.CDO.SerializeBeforeCreate)
		r, ok = f.record(ord, knobCDO)
		require.True(t, ok)
		require.True(t, r.CDO.SerializeBeforeCreate)
		r, ok = f.record(ord, knob)
		require.True(t, ok)
		require.True(t, r.Struct.SerializeBeforeSerialize)
	})
}

func TestIndex(t *testing.T) {
	t.Run("concurrent inserts agree on a single index per entity", func(t *testing.T) {
		m := model.New()
		pkg := m.Package("/Game/Shared", 0)
		var objs []*model.Object
		for i := range 40 {
			objs = append(objs, m.AddObject(&model.Object{Name: fmt.Sprintf("Asset%d", i), Class: m.Class("UStaticMesh"), Outer: pkg}))
		}
		idx := NewIndex()
		results := make([][]Entry, 16)
		var wg sync.WaitGroup
		for w := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range objs {
					o := objs[(i+w)%len(objs)]
					results[w] = append(results[w], idx.Ensure(o))
				}
			}()
		}
		wg.Wait()

		require.Equal(t, len(objs), idx.Len())
		byEntity := map[model.Entity]int{}
		for _, e := range idx.Entries() {
			byEntity[e.Entity] = e.Index
		}
		require.Len(t, byEntity, len(objs))
		for _, rs := range results {
			for _, e := range rs {
				require.Equal(t, byEntity[e.Entity], e.Index)
			}
		}
		for i, e := range idx.Entries() {
			require.Equal(t, i, e.Index)
		}
	})

	t.Run("native line describes package, name and type", func(t *testing.T) {
		m := model.New()
		mesh := m.AddObject(&model.Object{Name: "SM_Door", Class: m.Class("UStaticMesh"), Outer: m.Package("/Game/Meshes", 0)})
		require.Equal(t,
			`FBlueprintDependencyObjectRef(TEXT("/Game/Meshes"), TEXT("Meshes"), TEXT("SM_Door"), TEXT("/Script/Engine"), TEXT("StaticMesh"), TEXT("")),`,
			NativeLine(mesh))
		entry := NewIndex().Ensure(mesh)
		require.Equal(t, NativeLine(mesh), entry.Line)
	})
}
