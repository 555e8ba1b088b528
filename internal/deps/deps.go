// Package deps computes the load and construction ordering of everything an
// emitted type depends on.
package deps

import (
	"fmt"

	"github.com/calumari/nativize/internal/model"
)

// DependencyType holds the ordering relations of one dependency on one axis.
// Serialize-before and create-before are exclusive on each side.
type DependencyType struct {
	SerializeBeforeSerialize bool
	CreateBeforeSerialize    bool
	SerializeBeforeCreate    bool
	CreateBeforeCreate       bool
}

// Valid reports whether the relation flags are mutually consistent.
func (d DependencyType) Valid() bool {
	return !(d.SerializeBeforeSerialize && d.CreateBeforeSerialize) &&
		!(d.SerializeBeforeCreate && d.CreateBeforeCreate)
}

func (d DependencyType) String() string {
	return fmt.Sprintf("FBlueprintDependencyType(%t, %t, %t, %t)",
		d.SerializeBeforeSerialize, d.CreateBeforeSerialize, d.SerializeBeforeCreate, d.CreateBeforeCreate)
}

// Record is one row of a type's ordering table.
type Record struct {
	Entity model.Entity
	Index  int
	// Struct relates the dependency to the emitted type itself.
	Struct DependencyType
	// CDO relates the dependency to the emitted type's default object.
	CDO DependencyType
}

// Dropped is a dependency left out of the table.
type Dropped struct {
	Entity model.Entity
	Reason string
}

// Reasons for dropping a dependency.
const (
	ReasonEditorOnly   = "Editor Only asset"
	ReasonNotForServer = "Not for server"
	ReasonNotForClient = "Not for client"
)

// Options controls exclusions.
type Options struct {
	// AsyncLoad enables the ahead-of-time async loading optimization. Native
	// types stay in the table and duplicate rows are allowed.
	AsyncLoad bool
	// Server and Client describe the target build.
	Server bool
	Client bool
	// CallChain defers shared dependencies of converted sibling classes to
	// their own dependency functions. Ignored when AsyncLoad is set.
	CallChain bool
}

// Ordering is the computed dependency table of one type.
type Ordering struct {
	Target  model.Entity
	Records []Record
	Dropped []Dropped
	// Siblings are converted classes whose dependency functions are chained.
	// They keep their own rows in Records.
	Siblings []*model.Class
	// Used are the directly used assets in discovery order.
	Used []model.Entity
	// AllowDuplicates is set when rows are appended without deduplication.
	AllowDuplicates bool
}

// Compute builds the ordering table of target. used lists the assets touched
// while emitting target, in discovery order.
func Compute(target model.Entity, used []model.Entity, idx *Index, opts Options) *Ordering {
	g := gather(target, used)
	ord := &Ordering{Target: target, Used: used, AllowDuplicates: opts.AsyncLoad}
	chain := opts.CallChain && !opts.AsyncLoad
	for _, e := range g.all {
		if reason, drop := dropReason(e, opts); drop {
			ord.Dropped = append(ord.Dropped, Dropped{Entity: e, Reason: reason})
			continue
		}
		if excluded(e, opts) {
			continue
		}
		if c, ok := e.(*model.Class); ok && chain && c.Converted() && !c.IsInterface() {
			ord.Siblings = append(ord.Siblings, c)
		}
		ord.Records = append(ord.Records, Record{
			Entity: e,
			Index:  idx.Ensure(e).Index,
			Struct: structRelation(g.serializeBeforeSerialize[e]),
			CDO:    DependencyType{SerializeBeforeCreate: g.serializeBeforeCreateCDO[e]},
		})
	}
	return ord
}

// structRelation classifies a dependency on the emitted type's axis: needed
// before linking, or only created before serializing.
func structRelation(linking bool) DependencyType {
	return DependencyType{SerializeBeforeSerialize: linking, CreateBeforeSerialize: !linking}
}

func dropReason(e model.Entity, opts Options) (string, bool) {
	switch {
	case model.IsEditorOnly(e):
		return ReasonEditorOnly, true
	case opts.Server && model.NotForServer(e):
		return ReasonNotForServer, true
	case opts.Client && model.NotForClient(e):
		return ReasonNotForClient, true
	}
	return "", false
}

// excluded reports whether e never needs a runtime load step.
func excluded(e model.Entity, opts Options) bool {
	pkg := model.Outermost(e)
	if pkg != nil && pkg.Flags.Has(model.PkgCore) {
		return true
	}
	if opts.AsyncLoad {
		return false
	}
	switch v := e.(type) {
	case *model.Class:
		return v.IsNative()
	case *model.Struct:
		return v.IsNative() || !v.Flags.Has(model.StructUserDefined)
	case *model.Enum:
		return !v.Flags.Has(model.StructUserDefined)
	}
	return pkg != nil && pkg.Flags.Has(model.PkgNative)
}
