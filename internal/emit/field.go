package emit

import (
	"fmt"
	"strconv"

	"github.com/calumari/nativize/internal/model"
)

// Access is how a field's container is reached from generated code.
type Access int

const (
	// AccessNone addresses members of this.
	AccessNone Access = iota
	// AccessDot addresses members of a value.
	AccessDot
	// AccessPointer addresses members through a pointer.
	AccessPointer
)

func (a Access) op() string {
	switch a {
	case AccessDot:
		return "."
	case AccessPointer:
		return "->"
	}
	return ""
}

// Flags alter field and value emission.
type Flags uint8

const (
	// FlagAllowTransient emits transient fields.
	FlagAllowTransient Flags = 1 << iota
	// FlagAllowProtected treats protected fields as accessible.
	FlagAllowProtected
	// FlagFirstLine emits the assignment of the one-line form before any follow-up statements.
	FlagFirstLine
	// FlagGenerateEmpty renders structs without a literal form as a default construction.
	FlagGenerateEmpty
)

func (f Flags) has(o Flags) bool { return f&o != 0 }

// EmitField emits the statements that make field p of src, reached through
// outer, equal to its value. When def is non-nil only elements that differ
// from def are emitted, except config fields which are always written.
func (c *Context) EmitField(p *model.Prop, outer string, src, def model.Container, access Access, flags Flags) error {
	switch {
	case p.IsEditorOnly():
		c.log.Debug("skip editor-only field", "type", c.Name(), "field", p.Name)
		return nil
	case p.Flags.Has(model.PropTransient) && !flags.has(FlagAllowTransient):
		return nil
	case p.Kind.IsDelegate():
		// bindings are restored by the owner at runtime
		return nil
	}
	for i := range p.Dim() {
		v := src.Value(p, i)
		var dv model.Value
		if def != nil {
			dv = def.Value(p, i)
			if !p.Flags.Has(model.PropConfig) && model.Identical(p, v, dv) {
				continue
			}
		}
		path, done, err := c.fieldPath(p, i, outer, access, flags, v)
		if err != nil {
			return err
		}
		if done {
			continue
		}
		if err := c.EmitValue(p, path, v, dv, FlagFirstLine); err != nil {
			return err
		}
	}
	return nil
}

// fieldPath resolves the expression addressing element i of p. done is set
// when the value was already written by a setter call.
func (c *Context) fieldPath(p *model.Prop, i int, outer string, access Access, flags Flags, v model.Value) (string, bool, error) {
	owner := p.Owner
	if owner != nil {
		if cls := owner.Class(); cls != nil && !willExist(cls) {
			c.Unconverted[cls] = true
			path := fmt.Sprintf("FUnconvertedWrapper__%s(%s).GetRef__%s()", cls.Name, containerExpr(outer, access), p.Name)
			if p.Dim() > 1 {
				path += "[" + strconv.Itoa(i) + "]"
			}
			return path, false, nil
		}
	}
	if inaccessible(p, access, flags) {
		prop := c.PropertyLocal(p)
		if p.Flags.Has(model.PropBitfield) && p.Kind == model.KindBool {
			c.Line("(((FBoolProperty*)%s)->SetPropertyValue_InContainer(%s, %t, %d));",
				prop, containerExpr(outer, access), model.AsBool(v), i)
			return "", true, nil
		}
		local := c.NewLocal()
		c.Line("auto& %s = *(%s->ContainerPtrToValuePtr<%s>(%s, %d));", local, prop, p.CppType(), containerExpr(outer, access), i)
		return local, false, nil
	}
	path := p.Name
	if outer != "" {
		path = outer + access.op() + p.Name
	}
	if p.Dim() > 1 {
		path += "[" + strconv.Itoa(i) + "]"
	}
	return path, false, nil
}

// inaccessible reports whether generated code must reach p through reflection.
func inaccessible(p *model.Prop, access Access, flags Flags) bool {
	switch {
	case p.Flags.Has(model.PropPrivate):
		return true
	case p.Flags.Has(model.PropProtected) && !flags.has(FlagAllowProtected):
		return true
	case p.Owner != nil && p.Owner.Flags.Has(model.StructRestrictedAccess) && access == AccessDot:
		return true
	case p.Flags.Has(model.PropBitfield) && p.Kind == model.KindBool && p.Owner != nil && p.Owner.IsNative():
		return true
	}
	return false
}

func containerExpr(outer string, access Access) string {
	switch access {
	case AccessDot:
		return "&(" + outer + ")"
	case AccessPointer:
		return "(" + outer + ")"
	}
	return "this"
}
