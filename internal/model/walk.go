package model

// WalkRefs calls fn for every object or class referenced by v, descending
// into structs and containers.
func WalkRefs(p *Prop, v Value, fn func(Entity)) {
	switch p.Kind {
	case KindObject, KindWeakObject, KindInterface, KindClass:
		switch r := refOf(v).(type) {
		case *Object:
			fn(r)
		case *Class:
			fn(r)
		}
	case KindStruct:
		sv, _ := v.(*StructValue)
		if sv == nil {
			return
		}
		for _, sp := range p.Struct.AllProps() {
			for i := range sp.Dim() {
				WalkRefs(sp, sv.Value(sp, i), fn)
			}
		}
	case KindArray:
		if av, _ := v.(*ArrayValue); av != nil {
			for _, e := range av.Elems {
				WalkRefs(p.Elem, e, fn)
			}
		}
	case KindSet:
		for _, e := range validSet(asSet(v)) {
			WalkRefs(p.Elem, e, fn)
		}
	case KindMap:
		for _, sl := range validMap(asMap(v)) {
			WalkRefs(p.Key, sl.Key, fn)
			WalkRefs(p.Val, sl.Val, fn)
		}
	}
}

func asSet(v Value) *SetValue {
	s, _ := v.(*SetValue)
	return s
}

func asMap(v Value) *MapValue {
	m, _ := v.(*MapValue)
	return m
}

// ObjectRefs returns the entities referenced by o's own field values, in field order.
func ObjectRefs(o *Object) []Entity {
	if o == nil || o.Class == nil {
		return nil
	}
	var out []Entity
	seen := map[Entity]bool{}
	for _, p := range o.Class.AllProps() {
		for i := range p.Dim() {
			WalkRefs(p, o.Value(p, i), func(e Entity) {
				if !seen[e] {
					seen[e] = true
					out = append(out, e)
				}
			})
		}
	}
	return out
}

// AllNodes returns the component hierarchy of c in depth-first order.
func (c *Class) AllNodes() []*ComponentNode {
	var out []*ComponentNode
	var visit func([]*ComponentNode)
	visit = func(ns []*ComponentNode) {
		for _, n := range ns {
			out = append(out, n)
			visit(n.Children)
		}
	}
	visit(c.Components)
	return out
}

// Subobjects returns the instances owned by c: subobjects reachable from its
// default object, component templates and other class-owned subobjects.
func (c *Class) Subobjects() []*Object {
	var out []*Object
	seen := map[*Object]bool{}
	add := func(o *Object) {
		if o != nil && !seen[o] {
			seen[o] = true
			out = append(out, o)
		}
	}
	if c.CDO != nil {
		var visit func(o *Object)
		visit = func(o *Object) {
			for _, e := range ObjectRefs(o) {
				sub, ok := e.(*Object)
				if !ok || seen[sub] || !IsIn(sub, c.CDO) {
					continue
				}
				add(sub)
				visit(sub)
			}
		}
		visit(c.CDO)
	}
	for _, n := range c.AllNodes() {
		add(n.Template)
	}
	for _, list := range [][]*Object{c.ComponentTemplates, c.Timelines, c.DynamicBindings, c.MiscSubobjects, c.InheritedTemplates} {
		for _, o := range list {
			add(o)
		}
	}
	return out
}
