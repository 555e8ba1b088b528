package emit

import (
	"fmt"

	"github.com/calumari/nativize/internal/literal"
	"github.com/calumari/nativize/internal/model"
)

// subobjectInit is a discovered subobject whose properties are still to be
// emitted. Implementations: *defaultSubobject and *componentNode.
type subobjectInit interface {
	emitInit(c *Context) error
}

// defaultSubobject initializes one instanced or default subobject.
type defaultSubobject struct {
	object *model.Object
	// class is the class the generated code instantiates; it differs from
	// object.Class for editor-only stand-ins.
	class     *model.Class
	archetype *model.Object
	variable  string
	created   bool
	scoped    bool
}

func (d *defaultSubobject) emitInit(c *Context) error {
	if d.scoped && !d.created {
		c.Line("if(%s)", d.variable)
	}
	if d.scoped {
		c.Open()
	}
	c.Line("// --- Default subobject '%s' //", d.object.Name)
	if err := c.emitSubobjectFields(d); err != nil {
		return err
	}
	c.Line("// --- END default subobject '%s' //", d.object.Name)
	if d.scoped {
		c.Close()
	}
	return nil
}

// componentNode initializes a component declared by the class's component hierarchy.
type componentNode struct {
	defaultSubobject
	parent string
	socket string
}

func (n *componentNode) emitInit(c *Context) error {
	if n.created {
		c.Line("%s->CreationMethod = EComponentCreationMethod::Native;", n.variable)
	}
	if n.parent != "" {
		socket := "NAME_None"
		if n.socket != "" {
			socket = literal.Text(n.socket)
		}
		c.Line("%s->AttachToComponent(%s, FAttachmentTransformRules::KeepRelativeTransform , %s);", n.variable, n.parent, socket)
	}
	return n.defaultSubobject.emitInit(c)
}

// emitSubobjectFields discovers nested default subobjects, initializes them,
// then emits the subobject's own differing fields.
func (c *Context) emitSubobjectFields(d *defaultSubobject) error {
	var nested []subobjectInit
	for _, child := range d.object.Children() {
		if !child.Flags.Has(model.ObjDefaultSubobject) || model.IsEditorOnly(child) {
			continue
		}
		if _, err := c.handleInstanced(child, false, true, &nested); err != nil {
			return err
		}
	}
	for _, n := range nested {
		if err := n.emitInit(c); err != nil {
			return err
		}
	}
	for _, p := range d.class.AllProps() {
		handled, err := c.emitBodyInstance(p, d)
		if err != nil {
			return err
		}
		if handled {
			continue
		}
		if err := c.EmitField(p, d.variable, d.object, container(d.archetype), AccessPointer, 0); err != nil {
			return err
		}
	}
	return nil
}

// emitBodyInstance initializes the collision body of primitive components:
// a diff against the archetype with the profile applied, then a profile reload.
func (c *Context) emitBodyInstance(p *model.Prop, d *defaultSubobject) (bool, error) {
	if p.Name != model.PropBodyInstance || p.Owner == nil || p.Owner.Name != model.ClassPrimitiveComponent || p.Kind != model.KindStruct {
		return false, nil
	}
	profile := p.Struct.FindProp(model.PropCollisionProfile)
	if profile == nil {
		return false, nil
	}
	value, _ := d.object.Value(p, 0).(*model.StructValue)
	if value == nil {
		value = p.Struct.DefaultValue()
	}
	arch := p.Struct.DefaultValue()
	if d.archetype != nil {
		if av, ok := d.archetype.Value(p, 0).(*model.StructValue); ok {
			arch = av
		}
	}
	name := model.AsString(value.Value(profile, 0))
	archName := model.AsString(arch.Value(profile, 0))
	changed := name != archName
	custom := archName == model.CustomCollisionProfile
	compare := arch
	if changed || custom {
		vals := make(map[string]model.Value, len(arch.Vals)+1)
		for k, v := range arch.Vals {
			vals[k] = v
		}
		vals[model.PropCollisionProfile] = name
		compare = model.NewStruct(p.Struct, vals)
	}
	if err := c.EmitValue(p, d.variable+"->"+p.Name, value, compare, FlagFirstLine); err != nil {
		return true, err
	}
	switch {
	case changed:
		c.Line("%s->SetCollisionProfileName(FName(%s));", d.variable, literal.Text(name))
	case custom:
		c.Line("%s->%s.LoadProfileData(false);", d.variable, p.Name)
	}
	return true, nil
}

// objectValue resolves a reference field value to an expression, creating
// owned subobjects on first encounter.
func (c *Context) objectValue(p *model.Prop, v model.Value) (string, error) {
	switch r := v.(type) {
	case nil:
		return "nullptr", nil
	case *model.Class:
		if r == nil {
			return "nullptr", nil
		}
		return c.FindMapped(r), nil
	case *model.Object:
		if r == nil {
			return "nullptr", nil
		}
		if name, ok := c.local(r); ok {
			return name, nil
		}
		if c.Class != nil && c.CodeType == CodeSubobjectsOfClass && model.IsIn(r, c.Class) && !model.IsIn(r, c.Class.CDO) {
			if r.Outer == model.Entity(c.Class) {
				return c.handleClassSubobject(r, passCreate)
			}
			return c.handleInstanced(r, true, false, nil)
		}
		if c.Class != nil && c.Class.CDO != nil && model.IsIn(r, c.Class.CDO) && c.instanced(p, r) {
			dso := r.Flags.Has(model.ObjDefaultSubobject)
			return c.handleInstanced(r, !dso, dso, nil)
		}
		if mapped := c.FindMapped(r); mapped != "" {
			return mapped, nil
		}
		c.log.Error("unresolved object reference", "type", c.Name(), "field", p.Name, "object", model.PathName(r))
		return "", nil
	}
	return "", nil
}

// instanced reports whether a reference through p owns its target.
func (c *Context) instanced(p *model.Prop, o *model.Object) bool {
	return p.Flags.Has(model.PropInstanced) || o.Class.Flags.Has(model.StructDefaultToInstanced) ||
		o.Flags.Has(model.ObjDefaultSubobject)
}

// handleInstanced declares the variable for subobject o. With create it is
// constructed, otherwise looked up from the already constructed owner. The
// subobject is initialized immediately, or queued on pending when given.
func (c *Context) handleInstanced(o *model.Object, create, skipEditorOnly bool, pending *[]subobjectInit) (string, error) {
	if name, ok := c.local(o); ok {
		return name, nil
	}
	cls := o.Class
	archetype := o.Baseline()
	dso := o.Flags.Has(model.ObjDefaultSubobject)
	if !skipEditorOnly && model.IsEditorOnly(o) {
		stand, ok := c.standIn(o.Class)
		if !ok {
			c.log.Debug("skip editor-only subobject", "type", c.Name(), "object", model.PathName(o))
			return "nullptr", nil
		}
		cls, archetype, create, dso = stand, stand.CDO, true, false
	}
	outer, ok := c.local(o.Outer)
	if !ok || outer == "" {
		return "", fmt.Errorf("%w: %s in %s", ErrUnresolvedOuter, model.PathName(o), c.Name())
	}
	name := c.NewLocal()
	c.mapObject(o, name)
	receiver := outer + "->"
	if outer == "this" {
		receiver = ""
	}
	switch {
	case create && dso:
		c.Line("auto %s = %sCreateDefaultSubobject<%s>(%s);", name, receiver, cls.Name, literal.Text(o.Name))
	case create:
		c.Line("auto %s = NewObject<%s>(%s, %s, (EObjectFlags)0x%08x);", name, cls.Name, outer, literal.Text(o.Name), o.Flags.Runtime())
	default:
		c.Line("auto %s = CastChecked<%s>(%sGetDefaultSubobjectByName(%s), ECastCheckedType::NullAllowed);", name, cls.Name, receiver, literal.Text(o.Name))
	}
	d := &defaultSubobject{object: o, class: cls, archetype: archetype, variable: name, created: create, scoped: true}
	if pending != nil {
		*pending = append(*pending, d)
		return name, nil
	}
	return name, d.emitInit(c)
}

// standIn returns a runtime class replacing an editor-only component class.
func (c *Context) standIn(cls *model.Class) (*model.Class, bool) {
	for cur := cls; cur != nil; cur = cur.Parent() {
		switch cur.Name {
		case model.ClassSceneComponent, model.ClassActorComponent:
			if cur.IsNative() {
				return cur, true
			}
		}
	}
	return nil, false
}

type classPass int

const (
	passCreate classPass = iota
	passInitialize
)

// handleClassSubobject emits a subobject owned by the class itself. The
// create pass declares it and registers it on the class; the initialize
// pass writes its fields once every class subobject exists.
func (c *Context) handleClassSubobject(o *model.Object, pass classPass) (string, error) {
	if pass == passInitialize {
		name, ok := c.ofClass[o]
		if !ok {
			return "", fmt.Errorf("%w: %s not created", ErrUnresolvedOuter, model.PathName(o))
		}
		return name, c.emitClassSubobjectFields(o, name)
	}
	if name, ok := c.ofClass[o]; ok {
		return name, nil
	}
	var outer string
	switch out := o.Outer.(type) {
	case *model.Class:
		if out != c.Class {
			return "", fmt.Errorf("%w: %s owned by foreign class %s", ErrUnresolvedOuter, model.PathName(o), out.Name)
		}
		outer = "InDynamicClass"
	case *model.Object:
		if name, ok := c.ofClass[out]; ok {
			outer = name
		} else if model.IsIn(out, c.Class) {
			name, err := c.handleClassSubobject(out, passCreate)
			if err != nil {
				return "", err
			}
			outer = name
		}
	}
	if outer == "" {
		return "", fmt.Errorf("%w: %s", ErrUnresolvedOuter, model.PathName(o))
	}
	name := c.NewLocal()
	c.ofClass[o] = name
	if !o.Class.IsNative() {
		c.Line("%s::StaticClass()->GetDefaultObject();", o.Class.Name)
	}
	c.Line("auto %s = NewObject<%s>(%s, %s, %s, (EObjectFlags)0x%08x);",
		name, o.Class.Name, outer, c.FindMapped(o.Class), literal.Text(o.Name), o.Flags.Runtime())
	c.Line("InDynamicClass->%s.Add(%s);", c.classList(o), name)
	return name, nil
}

// emitClassSubobjectFields writes every field of a class subobject that differs from its class default.
func (c *Context) emitClassSubobjectFields(o *model.Object, name string) error {
	for _, p := range o.Class.AllProps() {
		if err := c.EmitField(p, name, o, container(o.Class.CDO), AccessPointer, 0); err != nil {
			return err
		}
	}
	return nil
}

// classList names the class array that keeps o alive.
func (c *Context) classList(o *model.Object) string {
	contains := func(list []*model.Object) bool {
		for _, x := range list {
			if x == o {
				return true
			}
		}
		return false
	}
	switch {
	case contains(c.Class.ComponentTemplates):
		return "ComponentTemplates"
	case contains(c.Class.Timelines):
		return "Timelines"
	case contains(c.Class.DynamicBindings):
		return "DynamicBindingObjects"
	}
	return "MiscConvertedSubobjects"
}

// container converts an optional object into an optional value source.
func container(o *model.Object) model.Container {
	if o == nil {
		return nil
	}
	return o
}
