package model

import (
	"errors"
	"sort"
)

// ErrUnknownType is returned when a type expression names an unregistered type.
var ErrUnknownType = errors.New("unknown type")

// Model is the read-only reflection registry consumed by the emitter.
type Model struct {
	packages map[string]*Package
	structs  map[string]*Struct
	classes  map[string]*Class
	enums    map[string]*Enum
	objects  map[string]*Object
}

// New returns a model with the built-in core and engine types registered.
func New() *Model {
	m := &Model{
		packages: make(map[string]*Package),
		structs:  make(map[string]*Struct),
		classes:  make(map[string]*Class),
		enums:    make(map[string]*Enum),
		objects:  make(map[string]*Object),
	}
	registerCore(m)
	return m
}

// Package returns the named package, creating it with flags if absent.
func (m *Model) Package(name string, flags PackageFlags) *Package {
	if p, ok := m.packages[name]; ok {
		return p
	}
	p := &Package{Name: name, Flags: flags}
	m.packages[name] = p
	return p
}

// AddStruct registers a plain struct.
func (m *Model) AddStruct(s *Struct) *Struct {
	m.structs[s.Name] = s
	return s
}

// AddClass registers a class.
func (m *Model) AddClass(c *Class) *Class {
	m.classes[c.Name] = c
	return c
}

// AddEnum registers an enum.
func (m *Model) AddEnum(e *Enum) *Enum {
	m.enums[e.Name] = e
	return e
}

// AddObject registers an instance under its path name. Class default objects
// are linked to their class.
func (m *Model) AddObject(o *Object) *Object {
	m.objects[PathName(o)] = o
	if outer, ok := o.Outer.(*Object); ok {
		outer.children = append(outer.children, o)
	}
	if o.IsCDO() && o.Class != nil {
		o.Class.CDO = o
	}
	return o
}

// NewCDO creates and registers the default object of c.
func (m *Model) NewCDO(c *Class) *Object {
	return m.AddObject(&Object{Name: "Default__" + c.Name, Class: c, Outer: c.Package, Flags: ObjClassDefault | ObjArchetype | ObjPublic})
}

func (m *Model) Struct(name string) *Struct { return m.structs[name] }
func (m *Model) Class(name string) *Class   { return m.classes[name] }
func (m *Model) Enum(name string) *Enum     { return m.enums[name] }

// Object returns the instance registered under path.
func (m *Model) Object(path string) *Object { return m.objects[path] }

// Classes returns every registered class sorted by name.
func (m *Model) Classes() []*Class {
	out := make([]*Class, 0, len(m.classes))
	for _, c := range m.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Structs returns every registered plain struct sorted by name.
func (m *Model) Structs() []*Struct {
	out := make([]*Struct, 0, len(m.structs))
	for _, s := range m.structs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Converted returns the classes and structs emitted by this batch.
func (m *Model) Converted() ([]*Class, []*Struct) {
	var cs []*Class
	for _, c := range m.Classes() {
		if c.Converted() {
			cs = append(cs, c)
		}
	}
	var ss []*Struct
	for _, s := range m.Structs() {
		if s.Converted() {
			ss = append(ss, s)
		}
	}
	return cs, ss
}
