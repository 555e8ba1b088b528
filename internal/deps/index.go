package deps

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/calumari/nativize/internal/literal"
	"github.com/calumari/nativize/internal/model"
)

// Entry is the global record of one dependency.
type Entry struct {
	Entity model.Entity
	Index  int
	// Line is the descriptor row of the native dependency side table.
	Line string
}

// Index assigns stable indices to dependencies across concurrently emitted
// types. It is append-only; the first writer of an entity wins.
type Index struct {
	mu      sync.RWMutex
	entries map[model.Entity]Entry
	order   []model.Entity
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{entries: make(map[model.Entity]Entry)}
}

// Ensure returns the entry of e, inserting it when absent.
func (x *Index) Ensure(e model.Entity) Entry {
	x.mu.RLock()
	entry, ok := x.entries[e]
	x.mu.RUnlock()
	if ok {
		return entry
	}
	line := NativeLine(e)
	x.mu.Lock()
	defer x.mu.Unlock()
	if entry, ok := x.entries[e]; ok {
		return entry
	}
	entry = Entry{Entity: e, Index: len(x.order), Line: line}
	x.entries[e] = entry
	x.order = append(x.order, e)
	return entry
}

// Lookup returns the entry of e if present.
func (x *Index) Lookup(e model.Entity) (Entry, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	entry, ok := x.entries[e]
	return entry, ok
}

// Len returns the number of indexed entities.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.order)
}

// Entries returns a snapshot of every entry ordered by index.
func (x *Index) Entries() []Entry {
	x.mu.RLock()
	out := make([]Entry, 0, len(x.order))
	for _, e := range x.order {
		out = append(out, x.entries[e])
	}
	x.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// NativeLine renders the side-table descriptor of e.
func NativeLine(e model.Entity) string {
	pkg := model.Outermost(e)
	var pkgName, short string
	if pkg != nil {
		pkgName, short = pkg.Name, pkg.ShortName()
	}
	var outer string
	if o := e.EntityOuter(); o != nil {
		if _, isPkg := o.(*model.Package); !isPkg {
			outer = o.EntityName()
		}
	}
	args := []string{
		literal.Text(pkgName), literal.Text(short), literal.Text(e.EntityName()),
		literal.Text(model.TypePackage(e)), literal.Text(model.TypeName(e)), literal.Text(outer),
	}
	return fmt.Sprintf("FBlueprintDependencyObjectRef(%s),", strings.Join(args, ", "))
}
