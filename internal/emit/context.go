// Package emit turns object graphs into construction statements.
package emit

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/calumari/nativize/internal/deps"
	"github.com/calumari/nativize/internal/model"
)

// ErrUnresolvedOuter is returned when a subobject's owner has no identifier
// in the generated code. Emission of the current type cannot continue.
var ErrUnresolvedOuter = errors.New("unresolved subobject outer")

// CodeType is the code section being generated.
type CodeType int

const (
	// CodeRegular is any function body without object creation context.
	CodeRegular CodeType = iota
	// CodeCommonConstructor is the class constructor.
	CodeCommonConstructor
	// CodeSubobjectsOfClass is the class initialization function creating class-owned subobjects.
	CodeSubobjectsOfClass
)

// Options configures emission of one type.
type Options struct {
	Log *slog.Logger
	// Wrappers names native wrapper-template structs whose elements need raw re-initialization.
	Wrappers map[string]bool
	Deps     deps.Options
}

// Context is the mutable state of one type's emission. It is not safe for
// concurrent use; the shared dependency index is.
type Context struct {
	Body     *Writer
	Class    *model.Class
	Struct   *model.Struct
	CodeType CodeType
	Index    *deps.Index

	// Unconverted collects classes accessed through wrappers.
	Unconverted map[*model.Class]bool

	opts     Options
	log      *slog.Logger
	localID  int
	mapped   map[model.Entity]string
	common   map[model.Entity]string
	ofClass  map[model.Entity]string
	used     []model.Entity
	usedIdx  map[model.Entity]int
	scopes   []map[*model.Prop]string
	variable map[string]string
	// members holding hierarchy components, for the post-load fixup
	nodeMembers []string
}

// NewContext returns a context for emitting target, a *model.Class or *model.Struct.
func NewContext(target model.Entity, idx *deps.Index, opts Options) *Context {
	c := &Context{
		Body:        &Writer{},
		Index:       idx,
		Unconverted: make(map[*model.Class]bool),
		opts:        opts,
		log:         opts.Log,
		mapped:      make(map[model.Entity]string),
		common:      make(map[model.Entity]string),
		ofClass:     make(map[model.Entity]string),
		usedIdx:     make(map[model.Entity]int),
		scopes:      []map[*model.Prop]string{{}},
		variable:    make(map[string]string),
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	switch t := target.(type) {
	case *model.Class:
		c.Class, c.Struct = t, &t.Struct
		if t.CDO != nil {
			c.mapped[t.CDO] = "this"
		}
	case *model.Struct:
		c.Struct = t
	}
	if idx == nil {
		c.Index = deps.NewIndex()
	}
	return c
}

// Name returns the emitted type's name.
func (c *Context) Name() string { return c.Struct.Name }

// NewLocal returns a fresh local identifier.
func (c *Context) NewLocal() string {
	c.localID++
	return fmt.Sprintf("__Local__%d", c.localID)
}

// Line appends a statement to the current body.
func (c *Context) Line(format string, args ...any) { c.Body.Line(format, args...) }

// Open starts a block; property locals declared inside are forgotten on Close.
func (c *Context) Open() {
	c.Body.Open()
	c.scopes = append(c.scopes, map[*model.Prop]string{})
}

// Close ends the innermost block.
func (c *Context) Close() { c.closeWith("") }

func (c *Context) closeWith(suffix string) {
	c.Body.CloseWith(suffix)
	if len(c.scopes) > 1 {
		c.scopes = c.scopes[:len(c.scopes)-1]
	}
}

// Begin starts a new section body of the given code type and returns it.
func (c *Context) Begin(code CodeType) *Writer {
	c.Body = &Writer{}
	c.CodeType = code
	c.scopes = []map[*model.Prop]string{{}}
	return c.Body
}

// mapObject records the identifier of an emitted subobject in the table of the current section.
func (c *Context) mapObject(e model.Entity, name string) {
	if c.CodeType == CodeSubobjectsOfClass {
		c.ofClass[e] = name
		return
	}
	c.common[e] = name
}

// local returns the identifier of an entity emitted in a visible section.
func (c *Context) local(e model.Entity) (string, bool) {
	if name, ok := c.mapped[e]; ok && c.CodeType != CodeSubobjectsOfClass {
		return name, true
	}
	if c.CodeType == CodeSubobjectsOfClass {
		name, ok := c.ofClass[e]
		return name, ok
	}
	name, ok := c.common[e]
	return name, ok
}

// UseAsset registers e as directly used and returns its position.
func (c *Context) UseAsset(e model.Entity) int {
	if i, ok := c.usedIdx[e]; ok {
		return i
	}
	i := len(c.used)
	c.usedIdx[e] = i
	c.used = append(c.used, e)
	return i
}

// Used returns directly used assets in discovery order.
func (c *Context) Used() []model.Entity { return c.used }

// FindMapped returns an expression referring to e in generated code, or ""
// when e is neither emitted here nor loadable.
func (c *Context) FindMapped(e model.Entity) string {
	if e == nil {
		return "nullptr"
	}
	if name, ok := c.local(e); ok {
		return name
	}
	switch v := e.(type) {
	case *model.Class:
		if v.IsNative() || v.Converted() {
			return v.Name + "::StaticClass()"
		}
		return c.usedAsset(e, "UClass")
	case *model.Struct:
		return v.Name + "::StaticStruct()"
	case *model.Enum:
		if v.Flags.Has(model.StructUserDefined) {
			return c.usedAsset(e, "UEnum")
		}
		return "StaticEnum<" + v.Name + ">()"
	case *model.Object:
		if v.IsCDO() && v.Class != nil {
			return "GetMutableDefault<" + v.Class.Name + ">()"
		}
		if _, top := v.Outer.(*model.Package); top {
			return c.usedAsset(e, v.Class.Name)
		}
	}
	return ""
}

func (c *Context) usedAsset(e model.Entity, typ string) string {
	i := c.UseAsset(e)
	owner := "CastChecked<UDynamicClass>(GetClass())"
	if c.CodeType == CodeSubobjectsOfClass {
		owner = "InDynamicClass"
	}
	return fmt.Sprintf("CastChecked<%s>(%s->UsedAssets[%d], ECastCheckedType::NullAllowed)", typ, owner, i)
}

// PropertyLocal returns an expression for the reflected property p,
// declaring a cached local on first use in the current block.
func (c *Context) PropertyLocal(p *model.Prop) string {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if name, ok := c.scopes[i][p]; ok {
			return name
		}
	}
	var expr string
	switch {
	case p.Owner != nil:
		owner := p.Owner.Name + "::StaticStruct()"
		if p.Owner.Class() != nil {
			owner = p.Owner.Name + "::StaticClass()"
		}
		expr = fmt.Sprintf("%s->FindPropertyByName(FName(TEXT(\"%s\")))", owner, p.Name)
	case p.Parent != nil:
		parent := c.PropertyLocal(p.Parent)
		switch {
		case p.Parent.Kind == model.KindArray:
			expr = fmt.Sprintf("CastFieldChecked<FArrayProperty>(%s)->Inner", parent)
		case p.Parent.Kind == model.KindSet:
			expr = fmt.Sprintf("CastFieldChecked<FSetProperty>(%s)->ElementProp", parent)
		case p.Parent.Key == p:
			expr = fmt.Sprintf("CastFieldChecked<FMapProperty>(%s)->KeyProp", parent)
		default:
			expr = fmt.Sprintf("CastFieldChecked<FMapProperty>(%s)->ValueProp", parent)
		}
	default:
		return "nullptr"
	}
	name := c.NewLocal()
	c.Line("auto %s = %s;", name, expr)
	c.scopes[len(c.scopes)-1][p] = name
	return name
}

// willExist reports whether generated code can access members of c directly.
func willExist(c *model.Class) bool {
	return c.IsNative() || c.Converted()
}
