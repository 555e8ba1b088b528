package emit

import (
	"fmt"

	"github.com/calumari/nativize/internal/literal"
	"github.com/calumari/nativize/internal/model"
)

// Target returns the emitted class or struct.
func (c *Context) Target() model.Entity {
	if c.Class != nil {
		return c.Class
	}
	return c.Struct
}

// GenerateConstructor emits the class constructor: native default subobject
// lookups, component hierarchy creation, then every class field that differs
// from the parent's default object.
func (c *Context) GenerateConstructor() (string, error) {
	cls := c.Class
	if cls == nil || cls.CDO == nil {
		return "", fmt.Errorf("%s: class has no default object", c.Name())
	}
	w := c.Begin(CodeCommonConstructor)
	c.Line("%s::%s(const FObjectInitializer& ObjectInitializer) : Super(ObjectInitializer)", cls.Name, cls.Name)
	c.Open()
	cdo := cls.CDO
	var parentCDO *model.Object
	if p := cls.Parent(); p != nil {
		parentCDO = p.CDO
	}
	handled := map[*model.Prop]bool{}

	// default subobjects already constructed by native base constructors
	var pending []subobjectInit
	for _, child := range cdo.Children() {
		if !child.Flags.Has(model.ObjDefaultSubobject) || model.IsEditorOnly(child) {
			continue
		}
		if _, err := c.handleInstanced(child, false, true, &pending); err != nil {
			return "", err
		}
	}

	rootProp := cls.FindProp(model.PropRootComponent)
	var root string
	needRoot := false
	if rootProp != nil {
		handled[rootProp] = true
		if r, ok := cdo.Value(rootProp, 0).(*model.Object); ok && r != nil {
			root, _ = c.local(r)
		} else if root = c.fallbackRoot(pending); root != "" {
			c.Line("RootComponent = %s;", root)
		} else {
			needRoot = true
		}
	}

	nodes, err := c.createComponents(cls, &root, needRoot, rootProp != nil, handled)
	if err != nil {
		return "", err
	}
	for _, n := range append(pending, nodes...) {
		if err := n.emitInit(c); err != nil {
			return "", err
		}
	}

	for _, p := range cls.AllProps() {
		if handled[p] {
			continue
		}
		var def model.Container
		if p.Owner != &cls.Struct {
			def = container(parentCDO)
		}
		if err := c.EmitField(p, "", cdo, def, AccessNone, FlagAllowProtected); err != nil {
			return "", err
		}
	}
	c.Close()
	return w.String(), nil
}

// fallbackRoot picks the first unparented native scene component.
func (c *Context) fallbackRoot(pending []subobjectInit) string {
	for _, p := range pending {
		d, ok := p.(*defaultSubobject)
		if !ok || d.object.AttachParent != nil || !isA(d.class, model.ClassSceneComponent) {
			continue
		}
		if d.object.CreationMethod == "" || d.object.CreationMethod == model.CreationNative {
			return d.variable
		}
	}
	return ""
}

func isA(cls *model.Class, name string) bool {
	for k := cls; k != nil; k = k.Parent() {
		if k.Name == name {
			return true
		}
	}
	return false
}

// createComponents walks the component hierarchy from the topmost converted
// base class down to cls and returns the pending initializations. Nodes
// declared by cls are created; inherited nodes are reached through their
// member, and overridden ones are diffed against the parent's template.
// With needRoot, the first root scene node becomes the actor root, assigned
// here only when cls declares it.
func (c *Context) createComponents(cls *model.Class, root *string, needRoot, isActor bool, handled map[*model.Prop]bool) ([]subobjectInit, error) {
	var chain []*model.Class
	for cur := cls; cur != nil; cur = cur.Parent() {
		if !cur.IsNative() && len(cur.Components) > 0 {
			chain = append([]*model.Class{cur}, chain...)
		}
	}
	var out []subobjectInit
	var visit func(n *model.ComponentNode, parent string, top bool) error
	visit = func(n *model.ComponentNode, parent string, top bool) error {
		tmpl := cls.ActualTemplate(n)
		kind := tmpl.Class
		if model.IsEditorOnly(tmpl) {
			stand, ok := c.standIn(kind)
			if !ok {
				return nil
			}
			kind = stand
		}
		member := false
		if p := cls.FindProp(n.Variable); p != nil && p.Kind == model.KindObject {
			member = true
			handled[p] = true
		}
		owned := n.Template.Outer == model.Entity(cls)
		if top && parent == "" && n.Parent != "" {
			parent = c.inherited(n.Parent)
		}

		var name string
		switch {
		case !owned:
			name = n.Variable
			c.mapObject(n.Template, name)
			if tmpl != n.Template {
				c.mapObject(tmpl, name)
			}
			if tmpl.Outer == model.Entity(cls) {
				out = append(out, &componentNode{defaultSubobject: defaultSubobject{
					object: tmpl, class: kind, archetype: cls.Parent().ActualTemplate(n), variable: name,
				}})
			}
		default:
			name = c.NewLocal()
			c.mapObject(tmpl, name)
			c.Line("auto %s = CreateDefaultSubobject<%s>(%s);", name, kind.Name, literal.Text(n.Variable))
			if member {
				c.Line("%s = %s;", n.Variable, name)
				c.nodeMembers = append(c.nodeMembers, n.Variable)
			}
		}
		c.variable[n.Variable] = name

		rooted := false
		if top && parent == "" && needRoot && isA(kind, model.ClassSceneComponent) {
			needRoot, rooted = false, true
			*root = name
			if owned {
				c.Line("RootComponent = %s;", name)
			}
		}
		if owned {
			if parent == "" && isActor && !rooted && *root != "" {
				parent = *root
			}
			out = append(out, &componentNode{
				defaultSubobject: defaultSubobject{object: tmpl, class: kind, archetype: kind.CDO, variable: name, created: true},
				parent:           parent,
				socket:           n.Socket,
			})
		}
		for _, child := range n.Children {
			if err := visit(child, name, false); err != nil {
				return err
			}
		}
		return nil
	}
	for _, k := range chain {
		for _, n := range k.Components {
			if err := visit(n, "", true); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// inherited resolves a component variable declared by a base class.
func (c *Context) inherited(variable string) string {
	if name, ok := c.variable[variable]; ok {
		return name
	}
	for _, child := range c.Class.CDO.Children() {
		if child.Name == variable {
			if name, ok := c.local(child); ok {
				return name
			}
		}
	}
	return ""
}

// GeneratePostLoadSubobjects emits the fixup restoring the creation method
// of hierarchy components after load.
func (c *Context) GeneratePostLoadSubobjects() string {
	w := c.Begin(CodeRegular)
	c.Line("void %s::PostLoadSubobjects(FObjectInstancingGraph* OuterInstanceGraph)", c.Name())
	c.Open()
	c.Line("Super::PostLoadSubobjects(OuterInstanceGraph);")
	for _, m := range c.nodeMembers {
		c.Line("if(%s)", m)
		c.Open()
		c.Line("%s->CreationMethod = EComponentCreationMethod::Native;", m)
		c.Close()
	}
	c.Close()
	return w.String()
}

// GenerateClassInitialization emits the class initialization function:
// referenced converted types, used assets and the class-owned subobjects in
// two passes, creation first.
func (c *Context) GenerateClassInitialization() (string, error) {
	cls := c.Class
	if cls == nil {
		return "", fmt.Errorf("%s: not a class", c.Name())
	}
	w := c.Begin(CodeSubobjectsOfClass)
	c.Line("void %s::__CustomDynamicClassInitialization(UDynamicClass* InDynamicClass)", cls.Name)
	c.Open()
	for _, list := range []string{"ReferencedConvertedFields", "MiscConvertedSubobjects", "DynamicBindingObjects", "ComponentTemplates", "Timelines"} {
		c.Line("ensure(0 == InDynamicClass->%s.Num());", list)
	}
	c.Line("ensure(nullptr == InDynamicClass->AnimClassImplementation);")
	c.Line("InDynamicClass->AssembleReferenceTokenStreams();")
	for _, e := range c.referencedConverted() {
		c.Line("InDynamicClass->ReferencedConvertedFields.Add(%s);", c.FindMapped(e))
	}
	c.Line("FConvertedBlueprintsDependencies::FillUsedAssetsInDynamicClass(InDynamicClass, &__StaticDependencies_DirectlyUsedAssets);")

	var owned []*model.Object
	for _, list := range [][]*model.Object{cls.ComponentTemplates, cls.Timelines, cls.DynamicBindings, cls.MiscSubobjects} {
		owned = append(owned, list...)
	}
	for _, o := range owned {
		if _, err := c.handleClassSubobject(o, passCreate); err != nil {
			return "", err
		}
	}
	for _, o := range owned {
		if _, err := c.handleClassSubobject(o, passInitialize); err != nil {
			return "", err
		}
	}
	for _, ov := range cls.ComponentOverrides {
		c.Line("InDynamicClass->ComponentClassOverrides.Emplace(FBPComponentClassOverride{FName(%s), %s});", literal.Text(ov.Name), c.FindMapped(ov.Class))
	}
	c.Close()
	return w.String(), nil
}

// referencedConverted lists converted structs, enums and classes the class's
// own fields refer to, in field order.
func (c *Context) referencedConverted() []model.Entity {
	var out []model.Entity
	seen := map[model.Entity]bool{c.Class: true}
	add := func(e model.Entity) {
		if e == nil || seen[e] {
			return
		}
		seen[e] = true
		switch v := e.(type) {
		case *model.Struct:
			if v.Converted() {
				out = append(out, e)
			}
		case *model.Class:
			if v.Converted() {
				out = append(out, e)
			}
		case *model.Enum:
			if v.Flags.Has(model.StructConverted) {
				out = append(out, e)
			}
		}
	}
	var visit func(p *model.Prop)
	visit = func(p *model.Prop) {
		if t := p.ReferencedType(); t != nil {
			add(t)
		}
		if p.Class != nil {
			add(p.Class)
		}
		for _, in := range p.Inner() {
			visit(in)
		}
	}
	for _, p := range c.Class.Props {
		visit(p)
	}
	return out
}

// GenerateStructConstructor emits the default constructor of a converted
// struct. Plain-old-data fields are always initialized; others only when
// they differ from zero.
func (c *Context) GenerateStructConstructor() (string, error) {
	s := c.Struct
	w := c.Begin(CodeRegular)
	c.Line("%s::%s()", s.Name, s.Name)
	c.Open()
	src := s.DefaultValue()
	zero := &model.StructValue{}
	for _, p := range s.AllProps() {
		var def model.Container = zero
		if p.Flags.Has(model.PropPOD) {
			def = nil
		}
		if err := c.EmitField(p, "", src, def, AccessNone, FlagAllowProtected|FlagAllowTransient); err != nil {
			return "", err
		}
	}
	c.Close()
	return w.String(), nil
}
