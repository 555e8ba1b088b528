package model

import (
	"fmt"
	"strings"
)

// Prop describes one named, typed slot of a struct or class.
type Prop struct {
	Name     string
	Kind     Kind
	Flags    PropFlags
	ArrayDim int
	Owner    *Struct

	// Struct is the value type of KindStruct fields.
	Struct *Struct
	// Enum is the value type of KindEnum fields and of enum-backed KindByte fields.
	Enum *Enum
	// Class is the referenced class of reference kinds.
	Class *Class
	// Elem is the element of arrays and sets.
	Elem *Prop
	// Key and Val describe map pairs.
	Key, Val *Prop
	// Parent is the container field of an element, key or value descriptor.
	Parent *Prop
}

// Dim returns the fixed array size, at least 1.
func (p *Prop) Dim() int {
	if p.ArrayDim < 1 {
		return 1
	}
	return p.ArrayDim
}

// IsEditorOnly reports whether the field only exists in editor builds.
func (p *Prop) IsEditorOnly() bool { return p.Flags.Has(PropEditorOnly) }

// ReferencedType returns the struct or enum the field's value type depends on, or nil.
func (p *Prop) ReferencedType() Entity {
	switch {
	case p.Kind == KindStruct && p.Struct != nil:
		return p.Struct
	case p.Enum != nil:
		return p.Enum
	}
	return nil
}

// Inner returns the nested element descriptors of container fields.
func (p *Prop) Inner() []*Prop {
	switch p.Kind {
	case KindArray, KindSet:
		return []*Prop{p.Elem}
	case KindMap:
		return []*Prop{p.Key, p.Val}
	}
	return nil
}

// CppType renders the field's value type as generated code spells it.
func (p *Prop) CppType() string {
	switch p.Kind {
	case KindBool:
		return "bool"
	case KindByte:
		if p.Enum != nil {
			return "TEnumAsByte<" + p.Enum.Name + ">"
		}
		return "uint8"
	case KindInt:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindString:
		return "FString"
	case KindName:
		return "FName"
	case KindText:
		return "FText"
	case KindEnum:
		return p.Enum.Name
	case KindStruct:
		return p.Struct.Name
	case KindObject:
		return p.className() + "*"
	case KindWeakObject:
		return "TWeakObjectPtr<" + p.className() + ">"
	case KindClass:
		return "TSubclassOf<" + p.className() + ">"
	case KindInterface:
		return "TScriptInterface<" + p.className() + ">"
	case KindArray:
		return "TArray<" + p.Elem.CppType() + ">"
	case KindSet:
		return "TSet<" + p.Elem.CppType() + ">"
	case KindMap:
		return "TMap<" + p.Key.CppType() + ", " + p.Val.CppType() + ">"
	case KindDelegate:
		return "FScriptDelegate"
	case KindMulticastDelegate:
		return "FMulticastScriptDelegate"
	}
	return fmt.Sprintf("/* %s */", p.Kind)
}

func (p *Prop) className() string {
	if p.Class == nil {
		return "UObject"
	}
	return p.Class.Name
}

// ParseType builds a field descriptor from a type expression such as
// "float", "FVector", "array<FVector>", "map<name, object<UTexture>>" or "byte<EMode>".
func (m *Model) ParseType(name, expr string) (*Prop, error) {
	expr = strings.TrimSpace(expr)
	p := &Prop{Name: name}
	head, args, generic := splitGeneric(expr)
	if generic {
		switch head {
		case "array", "set":
			if len(args) != 1 {
				return nil, fmt.Errorf("%s: %s takes one type argument", name, head)
			}
			elem, err := m.ParseType(name, args[0])
			if err != nil {
				return nil, err
			}
			p.Kind, p.Elem = KindArray, elem
			elem.Parent = p
			if head == "set" {
				p.Kind = KindSet
			}
			return p, nil
		case "map":
			if len(args) != 2 {
				return nil, fmt.Errorf("%s: map takes two type arguments", name)
			}
			k, err := m.ParseType(name+"_Key", args[0])
			if err != nil {
				return nil, err
			}
			v, err := m.ParseType(name, args[1])
			if err != nil {
				return nil, err
			}
			p.Kind, p.Key, p.Val = KindMap, k, v
			k.Parent, v.Parent = p, p
			return p, nil
		case "object", "weak", "class", "interface":
			if len(args) != 1 {
				return nil, fmt.Errorf("%s: %s takes one class argument", name, head)
			}
			c := m.Class(args[0])
			if c == nil {
				return nil, fmt.Errorf("%s: %w: class %s", name, ErrUnknownType, args[0])
			}
			p.Class = c
			p.Kind = map[string]Kind{"object": KindObject, "weak": KindWeakObject, "class": KindClass, "interface": KindInterface}[head]
			return p, nil
		case "byte":
			e := m.Enum(args[0])
			if e == nil {
				return nil, fmt.Errorf("%s: %w: enum %s", name, ErrUnknownType, args[0])
			}
			p.Kind, p.Enum = KindByte, e
			return p, nil
		}
		return nil, fmt.Errorf("%s: %w: %s", name, ErrUnknownType, expr)
	}
	for k, kn := range kindNames {
		if kn == expr && !Kind(k).IsContainer() && Kind(k) != KindStruct && Kind(k) != KindEnum && !Kind(k).IsReference() {
			p.Kind = Kind(k)
			return p, nil
		}
	}
	if e := m.Enum(expr); e != nil {
		p.Kind, p.Enum = KindEnum, e
		return p, nil
	}
	if s := m.Struct(expr); s != nil {
		p.Kind, p.Struct = KindStruct, s
		return p, nil
	}
	return nil, fmt.Errorf("%s: %w: %s", name, ErrUnknownType, expr)
}

// MustProp is ParseType that panics on error, for built-in tables and tests.
func (m *Model) MustProp(name, expr string, flags ...PropFlags) *Prop {
	p, err := m.ParseType(name, expr)
	if err != nil {
		panic(err)
	}
	for _, f := range flags {
		p.Flags |= f
	}
	return p
}

// splitGeneric splits "head<a, b<c, d>>" into head and top-level arguments.
func splitGeneric(expr string) (string, []string, bool) {
	open := strings.IndexByte(expr, '<')
	if open < 0 || !strings.HasSuffix(expr, ">") {
		return expr, nil, false
	}
	head := strings.TrimSpace(expr[:open])
	inner := expr[open+1 : len(expr)-1]
	var args []string
	depth, start := 0, 0
	for i, r := range inner {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	args = append(args, strings.TrimSpace(inner[start:]))
	return head, args, true
}
