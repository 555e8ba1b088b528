package deps

import "github.com/calumari/nativize/internal/model"

// graph collects the dependency sets of one emitted type.
type graph struct {
	target model.Entity
	self   map[model.Entity]bool
	all    []model.Entity
	seen   map[model.Entity]bool

	// entities that must be serialized before the target can be linked
	serializeBeforeSerialize map[model.Entity]bool
	// entities that must be serialized before the target's default object is created
	serializeBeforeCreateCDO map[model.Entity]bool
}

func gather(target model.Entity, used []model.Entity) *graph {
	g := &graph{
		target:                   target,
		self:                     map[model.Entity]bool{target: true},
		seen:                     make(map[model.Entity]bool),
		serializeBeforeSerialize: make(map[model.Entity]bool),
		serializeBeforeCreateCDO: make(map[model.Entity]bool),
	}
	for _, e := range used {
		g.add(e)
	}
	switch t := target.(type) {
	case *model.Class:
		if t.CDO != nil {
			g.self[t.CDO] = true
		}
		g.gatherStruct(&t.Struct)
		for _, in := range t.Interfaces {
			g.link(in)
		}
		for _, o := range t.Subobjects() {
			g.link(o.Class)
		}
		g.gatherCDO(t)
	case *model.Struct:
		g.gatherStruct(t)
	}
	return g
}

func (g *graph) add(e model.Entity) {
	if e == nil || g.seen[e] || g.self[e] || g.owned(e) {
		return
	}
	g.seen[e] = true
	g.all = append(g.all, e)
}

// owned reports whether e is created by the target itself.
func (g *graph) owned(e model.Entity) bool {
	for s := range g.self {
		if model.IsIn(e, s) {
			return true
		}
	}
	return false
}

func (g *graph) link(e model.Entity) {
	g.add(e)
	if g.seen[e] {
		g.serializeBeforeSerialize[e] = true
	}
}

func (g *graph) cdo(e model.Entity) {
	g.add(e)
	if g.seen[e] {
		g.serializeBeforeCreateCDO[e] = true
	}
}

func (g *graph) gatherStruct(s *model.Struct) {
	if s.Super != nil {
		g.link(entityOf(s.Super))
	}
	for _, p := range s.Props {
		forEachType(p, g.link)
		forEachClass(p, g.add)
	}
}

// gatherCDO collects default objects needed before the target's default
// object can be constructed, recursing through converted subobject classes.
func (g *graph) gatherCDO(c *model.Class) {
	if p := c.Parent(); p != nil && p.CDO != nil {
		g.cdo(p.CDO)
	}
	visited := map[*model.Class]bool{c: true}
	classes := []*model.Class{c}
	for i := 0; i < len(classes); i++ {
		for _, o := range classes[i].Subobjects() {
			sc := o.Class
			if sc.CDO != nil {
				g.cdo(sc.CDO)
			}
			if !sc.Converted() || visited[sc] {
				continue
			}
			visited[sc] = true
			classes = append(classes, sc)
			for _, e := range model.ObjectRefs(sc.CDO) {
				if isAsset(e) {
					g.cdo(e)
				}
			}
		}
	}
}

// forEachType calls fn for the struct and enum types a field's value layout
// depends on.
func forEachType(p *model.Prop, fn func(model.Entity)) {
	if t := p.ReferencedType(); t != nil {
		fn(t)
	}
	for _, inner := range p.Inner() {
		forEachType(inner, fn)
	}
}

// forEachClass calls fn for the classes named by a field's reference types.
func forEachClass(p *model.Prop, fn func(model.Entity)) {
	if p.Kind.IsReference() && p.Class != nil {
		fn(p.Class)
	}
	for _, inner := range p.Inner() {
		forEachClass(inner, fn)
	}
}

func entityOf(s *model.Struct) model.Entity {
	if c := s.Class(); c != nil {
		return c
	}
	return s
}

// isAsset reports whether e is loaded on its own rather than created by an owner.
func isAsset(e model.Entity) bool {
	switch v := e.(type) {
	case *model.Object:
		_, top := v.Outer.(*model.Package)
		return top
	case *model.Class, *model.Struct, *model.Enum:
		return true
	}
	return false
}
