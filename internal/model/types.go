package model

import (
	"strings"
)

// Entity is anything that can be referenced from an object graph: packages,
// types and object instances.
type Entity interface {
	EntityName() string
	EntityOuter() Entity
}

// PackageFlags describes package attributes.
type PackageFlags uint32

const (
	PkgNative PackageFlags = 1 << iota
	// PkgCore marks the universally available base module.
	PkgCore
	PkgEditorOnly
	PkgNotForClient
	PkgNotForServer
)

func (f PackageFlags) Has(o PackageFlags) bool { return f&o == o }

// Package is the outermost container of types and assets.
type Package struct {
	Name  string
	Flags PackageFlags
}

func (p *Package) EntityName() string  { return p.Name }
func (p *Package) EntityOuter() Entity { return nil }

// ShortName returns the last path element of the package name.
func (p *Package) ShortName() string {
	if i := strings.LastIndexByte(p.Name, '/'); i >= 0 {
		return p.Name[i+1:]
	}
	return p.Name
}

// Struct is an ordered record type. Classes embed a Struct.
type Struct struct {
	Name    string
	Package *Package
	Super   *Struct
	Props   []*Prop
	Flags   StructFlags
	// Default is the type's default instance; nil means every field is zero.
	Default *StructValue

	class *Class
}

func (s *Struct) EntityName() string  { return s.Name }
func (s *Struct) EntityOuter() Entity { return s.Package }

// Class returns the class wrapping s, or nil for plain structs.
func (s *Struct) Class() *Class { return s.class }

// Add appends a declared field and returns it.
func (s *Struct) Add(p *Prop) *Prop {
	p.Owner = s
	s.Props = append(s.Props, p)
	return p
}

// AllProps returns inherited fields first, then the struct's own, in declaration order.
func (s *Struct) AllProps() []*Prop {
	if s.Super == nil {
		return s.Props
	}
	inherited := s.Super.AllProps()
	out := make([]*Prop, 0, len(inherited)+len(s.Props))
	out = append(out, inherited...)
	return append(out, s.Props...)
}

// FindProp looks a field up by name, including inherited ones.
func (s *Struct) FindProp(name string) *Prop {
	for t := s; t != nil; t = t.Super {
		for _, p := range t.Props {
			if p.Name == name {
				return p
			}
		}
	}
	return nil
}

// IsChildOf reports whether s is o or derives from it.
func (s *Struct) IsChildOf(o *Struct) bool {
	for t := s; t != nil; t = t.Super {
		if t == o {
			return true
		}
	}
	return false
}

// IsNative reports whether the type is compiled into the runtime.
func (s *Struct) IsNative() bool { return s.Flags.Has(StructNative) }

// DefaultValue returns the default instance, creating an empty one on demand.
func (s *Struct) DefaultValue() *StructValue {
	if s.Default == nil {
		return &StructValue{Type: s}
	}
	return s.Default
}

// ComponentNode is one node of a class's component hierarchy.
type ComponentNode struct {
	Variable string
	Template *Object
	// Socket is the attachment socket on the parent, if any.
	Socket   string
	Children []*ComponentNode
	// Parent names an inherited component variable for root nodes attached
	// to a component declared by a base class.
	Parent string
}

// ComponentOverride replaces the class of an inherited component.
type ComponentOverride struct {
	Name  string
	Class *Class
}

// Class is a struct that has instances with identity.
type Class struct {
	Struct
	Interfaces []*Class
	// CDO is the class default object.
	CDO *Object
	// Components holds root nodes of the component hierarchy.
	Components []*ComponentNode

	// Class-owned subobjects.
	ComponentTemplates []*Object
	Timelines          []*Object
	DynamicBindings    []*Object
	MiscSubobjects     []*Object
	// InheritedTemplates override component templates declared by base
	// classes; they carry ObjInheritableTemplate.
	InheritedTemplates []*Object

	ComponentOverrides []ComponentOverride
}

// NewClass creates a class deriving from super (nil for a root class).
func NewClass(name string, pkg *Package, super *Class, flags StructFlags) *Class {
	c := &Class{Struct: Struct{Name: name, Package: pkg, Flags: flags}}
	c.class = c
	if super != nil {
		c.Super = &super.Struct
	}
	return c
}

// Parent returns the base class or nil.
func (c *Class) Parent() *Class {
	if c.Super == nil {
		return nil
	}
	return c.Super.Class()
}

// ActualTemplate returns the template n is instantiated from in c: the
// nearest override along c's class chain, else the declared template.
func (c *Class) ActualTemplate(n *ComponentNode) *Object {
	for k := c; k != nil; k = k.Parent() {
		for _, o := range k.InheritedTemplates {
			if o.Name == n.Template.Name {
				return o
			}
		}
		if n.Template.Outer == Entity(k) {
			break
		}
	}
	return n.Template
}

// IsChildOfClass reports whether c is o or derives from it.
func (c *Class) IsChildOfClass(o *Class) bool {
	if o == nil {
		return false
	}
	return c.IsChildOf(&o.Struct)
}

// IsInterface reports whether the class only declares a contract.
func (c *Class) IsInterface() bool { return c.Flags.Has(StructInterface) }

// Converted reports whether code for the type is emitted by this batch.
func (s *Struct) Converted() bool { return s.Flags.Has(StructConverted) }

// Enum is a named set of values.
type Enum struct {
	Name    string
	Package *Package
	Values  []string
	Flags   StructFlags
}

func (e *Enum) EntityName() string  { return e.Name }
func (e *Enum) EntityOuter() Entity { return e.Package }

// ValueName returns the name of the i-th value or "" when out of range.
func (e *Enum) ValueName(i int64) string {
	if i < 0 || i >= int64(len(e.Values)) {
		return ""
	}
	return e.Values[i]
}

// Object is a live instance: a class default object, an asset, or a subobject.
type Object struct {
	Name  string
	Class *Class
	Outer Entity
	Flags ObjectFlags
	// Archetype supplies default values for fields not set in Vals.
	Archetype *Object
	Vals      map[string]Value
	// CreationMethod applies to components: Native, SimpleConstructionScript, UserConstructionScript or Instance.
	CreationMethod string
	// AttachParent applies to scene components.
	AttachParent *Object

	children []*Object
}

// Children returns the objects directly inside o, in registration order.
func (o *Object) Children() []*Object { return o.children }

func (o *Object) EntityName() string  { return o.Name }
func (o *Object) EntityOuter() Entity { return o.Outer }

// IsCDO reports whether o is its class's default object.
func (o *Object) IsCDO() bool { return o.Flags.Has(ObjClassDefault) }

// Set assigns a field value and returns o.
func (o *Object) Set(name string, v Value) *Object {
	if o.Vals == nil {
		o.Vals = make(map[string]Value)
	}
	o.Vals[name] = v
	return o
}

// Baseline returns the object whose values o inherits: its archetype, its
// class default object, or for a class default object the parent's one.
func (o *Object) Baseline() *Object {
	if o.Archetype != nil {
		return o.Archetype
	}
	if o.Class == nil {
		return nil
	}
	if !o.IsCDO() {
		if o.Class.CDO != o {
			return o.Class.CDO
		}
		return nil
	}
	if p := o.Class.Parent(); p != nil {
		return p.CDO
	}
	return nil
}

// Outermost returns the package containing e.
func Outermost(e Entity) *Package {
	for cur := e; cur != nil; cur = cur.EntityOuter() {
		if p, ok := cur.(*Package); ok {
			return p
		}
	}
	return nil
}

// IsIn reports whether outer appears in e's outer chain (e itself excluded).
func IsIn(e, outer Entity) bool {
	if e == nil || outer == nil {
		return false
	}
	for cur := e.EntityOuter(); cur != nil; cur = cur.EntityOuter() {
		if cur == outer {
			return true
		}
	}
	return false
}

// PathName returns the package-qualified path of e: Package.Outer:Inner.
func PathName(e Entity) string {
	var names []string
	for cur := e; cur != nil; cur = cur.EntityOuter() {
		names = append(names, cur.EntityName())
	}
	var b strings.Builder
	for i := len(names) - 1; i >= 0; i-- {
		b.WriteString(names[i])
		switch {
		case i == 0:
		case i == len(names)-1:
			b.WriteByte('.')
		default:
			b.WriteByte(':')
		}
	}
	return b.String()
}

// TypeName returns the reflection type name of e as shown in full names.
func TypeName(e Entity) string {
	switch v := e.(type) {
	case *Package:
		return "Package"
	case *Class:
		return "Class"
	case *Struct:
		return "ScriptStruct"
	case *Enum:
		return "Enum"
	case *Object:
		if v.Class != nil {
			return trimPrefix(v.Class.Name)
		}
	}
	return "Object"
}

// TypePackage returns the package defining e's type.
func TypePackage(e Entity) string {
	switch v := e.(type) {
	case *Object:
		if v.Class != nil && v.Class.Package != nil {
			return v.Class.Package.Name
		}
	}
	return coreScriptPackage
}

// FullName returns "Type Path" for diagnostics and table comments.
func FullName(e Entity) string {
	return TypeName(e) + " " + PathName(e)
}

// trimPrefix drops the C++ type prefix letter from a reflection name.
func trimPrefix(name string) string {
	if len(name) > 1 && strings.ContainsRune("UAFE", rune(name[0])) && name[1] >= 'A' && name[1] <= 'Z' {
		return name[1:]
	}
	return name
}

// IsEditorOnly reports whether e only exists in editor builds.
func IsEditorOnly(e Entity) bool {
	if o, ok := e.(*Object); ok && o.Flags.Has(ObjEditorOnly) {
		return true
	}
	if p := Outermost(e); p != nil && p.Flags.Has(PkgEditorOnly) {
		return true
	}
	return false
}

// NotForClient reports whether e is stripped from client builds.
func NotForClient(e Entity) bool {
	if o, ok := e.(*Object); ok && o.Flags.Has(ObjNotForClient) {
		return true
	}
	p := Outermost(e)
	return p != nil && p.Flags.Has(PkgNotForClient)
}

// NotForServer reports whether e is stripped from server builds.
func NotForServer(e Entity) bool {
	if o, ok := e.(*Object); ok && o.Flags.Has(ObjNotForServer) {
		return true
	}
	p := Outermost(e)
	return p != nil && p.Flags.Has(PkgNotForServer)
}
