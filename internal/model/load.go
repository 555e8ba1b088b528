package model

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of an object-model document.
type File struct {
	Packages []PackageDecl `yaml:"packages"`
	Enums    []EnumDecl    `yaml:"enums"`
	Structs  []StructDecl  `yaml:"structs"`
	Classes  []ClassDecl   `yaml:"classes"`
	Objects  []ObjectDecl  `yaml:"objects"`
}

type PackageDecl struct {
	Name  string   `yaml:"name"`
	Flags []string `yaml:"flags"`
}

type EnumDecl struct {
	Name    string   `yaml:"name"`
	Package string   `yaml:"package"`
	Values  []string `yaml:"values"`
	Flags   []string `yaml:"flags"`
}

type FieldDecl struct {
	Name  string   `yaml:"name"`
	Type  string   `yaml:"type"`
	Dim   int      `yaml:"dim"`
	Flags []string `yaml:"flags"`
}

type StructDecl struct {
	Name    string      `yaml:"name"`
	Package string      `yaml:"package"`
	Super   string      `yaml:"super"`
	Flags   []string    `yaml:"flags"`
	Fields  []FieldDecl `yaml:"fields"`
	Default yaml.Node   `yaml:"default"`
}

type NodeDecl struct {
	Variable string     `yaml:"variable"`
	Template string     `yaml:"template"`
	Socket   string     `yaml:"socket"`
	Parent   string     `yaml:"parent"`
	Children []NodeDecl `yaml:"children"`
}

type OverrideDecl struct {
	Name  string `yaml:"name"`
	Class string `yaml:"class"`
}

type ClassDecl struct {
	Name       string         `yaml:"name"`
	Package    string         `yaml:"package"`
	Super      string         `yaml:"super"`
	Flags      []string       `yaml:"flags"`
	Interfaces []string       `yaml:"interfaces"`
	Fields     []FieldDecl    `yaml:"fields"`
	Components []NodeDecl     `yaml:"components"`
	Templates  []string       `yaml:"templates"`
	Timelines  []string       `yaml:"timelines"`
	Bindings   []string       `yaml:"bindings"`
	Misc       []string       `yaml:"misc"`
	Inherited  []string       `yaml:"inherited"`
	Overrides  []OverrideDecl `yaml:"overrides"`
}

type ObjectDecl struct {
	Name      string               `yaml:"name"`
	Class     string               `yaml:"class"`
	Outer     string               `yaml:"outer"`
	Flags     []string             `yaml:"flags"`
	Archetype string               `yaml:"archetype"`
	Creation  string               `yaml:"creation"`
	Attach    string               `yaml:"attach"`
	Values    map[string]yaml.Node `yaml:"values"`
}

// LoadFile reads an object-model document into m.
func (m *Model) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := m.Load(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Load decodes an object-model document into m. Declarations are resolved
// in phases so that any declaration may reference any other.
func (m *Model) Load(data []byte) error {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}
	for _, d := range f.Packages {
		var flags PackageFlags
		for _, s := range d.Flags {
			switch strings.ToLower(s) {
			case "native":
				flags |= PkgNative
			case "core":
				flags |= PkgCore
			case "editoronly":
				flags |= PkgEditorOnly
			case "notforclient":
				flags |= PkgNotForClient
			case "notforserver":
				flags |= PkgNotForServer
			default:
				return fmt.Errorf("package %s: unknown flag %q", d.Name, s)
			}
		}
		m.Package(d.Name, 0).Flags |= flags
	}
	for _, d := range f.Enums {
		flags, err := structFlags(d.Flags)
		if err != nil {
			return fmt.Errorf("enum %s: %w", d.Name, err)
		}
		m.AddEnum(&Enum{Name: d.Name, Package: m.Package(d.Package, 0), Values: d.Values, Flags: flags})
	}

	// declare every type before resolving fields
	structs := make([]*Struct, len(f.Structs))
	for i, d := range f.Structs {
		flags, err := structFlags(d.Flags)
		if err != nil {
			return fmt.Errorf("struct %s: %w", d.Name, err)
		}
		structs[i] = m.AddStruct(&Struct{Name: d.Name, Package: m.Package(d.Package, 0), Flags: flags})
	}
	classes := make([]*Class, len(f.Classes))
	for i, d := range f.Classes {
		flags, err := structFlags(d.Flags)
		if err != nil {
			return fmt.Errorf("class %s: %w", d.Name, err)
		}
		classes[i] = m.AddClass(NewClass(d.Name, m.Package(d.Package, 0), nil, flags))
	}
	for i, d := range f.Structs {
		s := structs[i]
		if d.Super != "" {
			if s.Super = m.Struct(d.Super); s.Super == nil {
				return fmt.Errorf("struct %s: %w: %s", d.Name, ErrUnknownType, d.Super)
			}
		}
		if err := m.addFields(s, d.Fields); err != nil {
			return err
		}
	}
	for i, d := range f.Classes {
		c := classes[i]
		if d.Super != "" {
			super := m.Class(d.Super)
			if super == nil {
				return fmt.Errorf("class %s: %w: %s", d.Name, ErrUnknownType, d.Super)
			}
			c.Super = &super.Struct
		}
		for _, in := range d.Interfaces {
			ic := m.Class(in)
			if ic == nil {
				return fmt.Errorf("class %s: %w: %s", d.Name, ErrUnknownType, in)
			}
			c.Interfaces = append(c.Interfaces, ic)
		}
		if err := m.addFields(&c.Struct, d.Fields); err != nil {
			return err
		}
	}

	// objects are created before values so references may point anywhere
	objects := make([]*Object, len(f.Objects))
	pending := make([]int, 0, len(f.Objects))
	for i := range f.Objects {
		pending = append(pending, i)
	}
	for len(pending) > 0 {
		var next []int
		for _, i := range pending {
			d := f.Objects[i]
			outer := m.resolveOuter(d.Outer)
			if outer == nil {
				next = append(next, i)
				continue
			}
			objects[i] = m.AddObject(&Object{Name: d.Name, Outer: outer})
		}
		if len(next) == len(pending) {
			return fmt.Errorf("object %s: unresolved outer %q", f.Objects[next[0]].Name, f.Objects[next[0]].Outer)
		}
		pending = next
	}
	for i, d := range f.Objects {
		o := objects[i]
		if o.Class = m.Class(d.Class); o.Class == nil {
			return fmt.Errorf("object %s: %w: %s", d.Name, ErrUnknownType, d.Class)
		}
		for _, s := range d.Flags {
			fl, ok := ParseObjectFlag(strings.ToLower(s))
			if !ok {
				return fmt.Errorf("object %s: unknown flag %q", d.Name, s)
			}
			o.Flags |= fl
		}
		if o.IsCDO() {
			o.Class.CDO = o
		}
		o.CreationMethod = d.Creation
		if d.Archetype != "" {
			if o.Archetype = m.Object(d.Archetype); o.Archetype == nil {
				return fmt.Errorf("object %s: unknown archetype %q", d.Name, d.Archetype)
			}
		}
		if d.Attach != "" {
			if o.AttachParent = m.Object(d.Attach); o.AttachParent == nil {
				return fmt.Errorf("object %s: unknown attach parent %q", d.Name, d.Attach)
			}
		}
	}
	for i, d := range f.Objects {
		o := objects[i]
		for name, node := range d.Values {
			p := o.Class.FindProp(name)
			if p == nil {
				return fmt.Errorf("object %s: class %s has no field %s", d.Name, o.Class.Name, name)
			}
			v, err := m.decodeField(p, &node)
			if err != nil {
				return fmt.Errorf("object %s: %w", d.Name, err)
			}
			o.Set(name, v)
		}
	}
	for i, d := range f.Structs {
		if d.Default.Kind == 0 {
			continue
		}
		v, err := m.decodeValue(&Prop{Name: d.Name, Kind: KindStruct, Struct: structs[i]}, &d.Default)
		if err != nil {
			return fmt.Errorf("struct %s default: %w", d.Name, err)
		}
		structs[i].Default = v.(*StructValue)
	}
	for i, d := range f.Classes {
		if err := m.linkClass(classes[i], d); err != nil {
			return fmt.Errorf("class %s: %w", d.Name, err)
		}
	}
	return nil
}

func (m *Model) linkClass(c *Class, d ClassDecl) error {
	objs := func(paths []string) ([]*Object, error) {
		var out []*Object
		for _, p := range paths {
			o := m.Object(p)
			if o == nil {
				return nil, fmt.Errorf("unknown object %q", p)
			}
			out = append(out, o)
		}
		return out, nil
	}
	var err error
	if c.ComponentTemplates, err = objs(d.Templates); err != nil {
		return err
	}
	if c.Timelines, err = objs(d.Timelines); err != nil {
		return err
	}
	if c.DynamicBindings, err = objs(d.Bindings); err != nil {
		return err
	}
	if c.MiscSubobjects, err = objs(d.Misc); err != nil {
		return err
	}
	if c.InheritedTemplates, err = objs(d.Inherited); err != nil {
		return err
	}
	for _, od := range d.Overrides {
		oc := m.Class(od.Class)
		if oc == nil {
			return fmt.Errorf("override %s: %w: %s", od.Name, ErrUnknownType, od.Class)
		}
		c.ComponentOverrides = append(c.ComponentOverrides, ComponentOverride{Name: od.Name, Class: oc})
	}
	var nodes func([]NodeDecl) ([]*ComponentNode, error)
	nodes = func(ds []NodeDecl) ([]*ComponentNode, error) {
		var out []*ComponentNode
		for _, nd := range ds {
			n := &ComponentNode{Variable: nd.Variable, Socket: nd.Socket, Parent: nd.Parent}
			if n.Template = m.Object(nd.Template); n.Template == nil {
				return nil, fmt.Errorf("component %s: unknown template %q", nd.Variable, nd.Template)
			}
			children, err := nodes(nd.Children)
			if err != nil {
				return nil, err
			}
			n.Children = children
			out = append(out, n)
		}
		return out, nil
	}
	c.Components, err = nodes(d.Components)
	return err
}

func (m *Model) addFields(s *Struct, decls []FieldDecl) error {
	for _, fd := range decls {
		p, err := m.ParseType(fd.Name, fd.Type)
		if err != nil {
			return fmt.Errorf("%s.%w", s.Name, err)
		}
		p.ArrayDim = fd.Dim
		for _, fl := range fd.Flags {
			bit, ok := ParsePropFlag(strings.ToLower(fl))
			if !ok {
				return fmt.Errorf("%s.%s: unknown flag %q", s.Name, fd.Name, fl)
			}
			p.Flags |= bit
		}
		s.Add(p)
	}
	return nil
}

func structFlags(names []string) (StructFlags, error) {
	var flags StructFlags
	for _, s := range names {
		f, ok := ParseStructFlag(strings.ToLower(s))
		if !ok {
			return 0, fmt.Errorf("unknown flag %q", s)
		}
		flags |= f
	}
	return flags, nil
}

// resolveOuter maps an outer reference to a package or an already created object.
func (m *Model) resolveOuter(ref string) Entity {
	if o := m.Object(ref); o != nil {
		return o
	}
	if c := m.Class(ref); c != nil {
		return c
	}
	if p, ok := m.packages[ref]; ok {
		return p
	}
	if strings.HasPrefix(ref, "/") && !strings.ContainsAny(ref, ".:") {
		return m.Package(ref, 0)
	}
	return nil
}

func (m *Model) decodeField(p *Prop, n *yaml.Node) (Value, error) {
	if p.Dim() == 1 {
		return m.decodeValue(p, n)
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%s: fixed array expects a sequence", p.Name)
	}
	out := make([]Value, len(n.Content))
	for i, c := range n.Content {
		v, err := m.decodeValue(p, c)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *Model) decodeValue(p *Prop, n *yaml.Node) (Value, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	isNull := n.Kind == yaml.ScalarNode && n.Tag == "!!null"
	switch p.Kind {
	case KindBool:
		b, err := strconv.ParseBool(n.Value)
		return b, wrapValueErr(p, err)
	case KindByte, KindInt, KindInt64, KindEnum:
		if p.Enum != nil {
			for i, name := range p.Enum.Values {
				if name == n.Value {
					return int64(i), nil
				}
			}
		}
		i, err := strconv.ParseInt(n.Value, 0, 64)
		return i, wrapValueErr(p, err)
	case KindFloat:
		f, err := strconv.ParseFloat(n.Value, 32)
		return float32(f), wrapValueErr(p, err)
	case KindDouble:
		f, err := strconv.ParseFloat(n.Value, 64)
		return f, wrapValueErr(p, err)
	case KindString, KindName, KindText:
		return n.Value, nil
	case KindStruct:
		if n.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%s: struct %s expects a mapping", p.Name, p.Struct.Name)
		}
		sv := &StructValue{Type: p.Struct, Vals: make(map[string]Value)}
		for i := 0; i+1 < len(n.Content); i += 2 {
			name := n.Content[i].Value
			sp := p.Struct.FindProp(name)
			if sp == nil {
				return nil, fmt.Errorf("%s: struct %s has no field %s", p.Name, p.Struct.Name, name)
			}
			v, err := m.decodeField(sp, n.Content[i+1])
			if err != nil {
				return nil, err
			}
			sv.Vals[name] = v
		}
		return sv, nil
	case KindObject, KindWeakObject, KindInterface:
		if isNull {
			return nil, nil
		}
		o := m.Object(n.Value)
		if o == nil {
			return nil, fmt.Errorf("%s: unknown object %q", p.Name, n.Value)
		}
		return o, nil
	case KindClass:
		if isNull {
			return nil, nil
		}
		c := m.Class(n.Value)
		if c == nil {
			return nil, fmt.Errorf("%s: %w: %s", p.Name, ErrUnknownType, n.Value)
		}
		return c, nil
	case KindArray, KindSet:
		if n.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("%s: %s expects a sequence", p.Name, p.Kind)
		}
		elems := make([]Value, len(n.Content))
		for i, c := range n.Content {
			v, err := m.decodeValue(p.Elem, c)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		if p.Kind == KindSet {
			return NewSet(elems...), nil
		}
		return &ArrayValue{Elems: elems}, nil
	case KindMap:
		mv := &MapValue{}
		switch n.Kind {
		case yaml.MappingNode:
			for i := 0; i+1 < len(n.Content); i += 2 {
				k, err := m.decodeValue(p.Key, n.Content[i])
				if err != nil {
					return nil, err
				}
				v, err := m.decodeValue(p.Val, n.Content[i+1])
				if err != nil {
					return nil, err
				}
				mv.Slots = append(mv.Slots, MapSlot{Valid: true, Key: k, Val: v})
			}
		case yaml.SequenceNode:
			// pairs with non-scalar keys: [{key: ..., value: ...}]
			for _, pair := range n.Content {
				var kn, vn *yaml.Node
				for i := 0; i+1 < len(pair.Content); i += 2 {
					switch pair.Content[i].Value {
					case "key":
						kn = pair.Content[i+1]
					case "value":
						vn = pair.Content[i+1]
					}
				}
				if kn == nil || vn == nil {
					return nil, fmt.Errorf("%s: map pair needs key and value", p.Name)
				}
				k, err := m.decodeValue(p.Key, kn)
				if err != nil {
					return nil, err
				}
				v, err := m.decodeValue(p.Val, vn)
				if err != nil {
					return nil, err
				}
				mv.Slots = append(mv.Slots, MapSlot{Valid: true, Key: k, Val: v})
			}
		default:
			return nil, fmt.Errorf("%s: map expects a mapping or a sequence of pairs", p.Name)
		}
		return mv, nil
	}
	return nil, nil
}

func wrapValueErr(p *Prop, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: invalid %s value: %w", p.Name, p.Kind, err)
}
