package emit

import (
	"fmt"

	"github.com/calumari/nativize/internal/literal"
	"github.com/calumari/nativize/internal/model"
)

// structConstruction is how elements of a struct type come into existence.
type structConstruction int

const (
	// constructCustom builds elements from a one-line expression.
	constructCustom structConstruction = iota
	// constructInitialize obtains raw storage and runs the type's initializer.
	constructInitialize
)

// construction returns how s is built inside containers. Raw
// re-initialization is needed for native, non-exported or wrapper-template
// structs without a literal form.
func (c *Context) construction(s *model.Struct) structConstruction {
	if s == nil || literal.Recognized(s) {
		return constructCustom
	}
	if s.IsNative() || s.Flags.Has(model.StructNoExport) || c.opts.Wrappers[s.Name] {
		return constructInitialize
	}
	return constructCustom
}

func (c *Context) needsInitialize(p *model.Prop) bool {
	return p.Kind == model.KindStruct && c.construction(p.Struct) == constructInitialize
}

// EmitValue emits statements making path equal to v. def is the value path
// already holds, nil when unknown or freshly constructed.
func (c *Context) EmitValue(p *model.Prop, path string, v, def model.Value, flags Flags) error {
	if p.Kind.IsContainer() {
		return c.emitContainer(p, path, v, def)
	}
	expr, complete, ok, err := c.oneLine(p, v, flags)
	if err != nil {
		return err
	}
	if !ok {
		c.log.Error("cannot generate initialization", "type", c.Name(), "path", path, "kind", p.Kind.String())
		return nil
	}
	if flags.has(FlagFirstLine) && expr != "" {
		c.Line("%s = %s;", path, expr)
	}
	if complete || p.Kind != model.KindStruct {
		return nil
	}
	sv, _ := v.(*model.StructValue)
	base, _ := def.(*model.StructValue)
	if base == nil || expr != "" {
		base = p.Struct.DefaultValue()
	}
	if sv == nil {
		sv = &model.StructValue{Type: p.Struct}
	}
	for _, sp := range p.Struct.AllProps() {
		if err := c.EmitField(sp, path, sv, base, AccessDot, 0); err != nil {
			return err
		}
	}
	return nil
}

// oneLine renders v as a single expression. complete reports whether the
// expression fully reproduces v; ok is false when v cannot be expressed.
func (c *Context) oneLine(p *model.Prop, v model.Value, flags Flags) (expr string, complete, ok bool, err error) {
	switch p.Kind {
	case model.KindBool, model.KindInt, model.KindInt64, model.KindFloat, model.KindDouble:
		expr, ok = literal.Scalar(p.Kind, v)
		return expr, true, ok, nil
	case model.KindByte:
		if p.Enum != nil {
			return fmt.Sprintf("TEnumAsByte<%s>(%s)", p.Enum.Name, enumValue(p.Enum, v)), true, true, nil
		}
		expr, ok = literal.Scalar(p.Kind, v)
		return expr, true, ok, nil
	case model.KindEnum:
		return enumValue(p.Enum, v), true, true, nil
	case model.KindString:
		return "FString(" + literal.Text(model.AsString(v)) + ")", true, true, nil
	case model.KindName:
		return "FName(" + literal.Text(model.AsString(v)) + ")", true, true, nil
	case model.KindText:
		return "FText::FromString(" + literal.Text(model.AsString(v)) + ")", true, true, nil
	case model.KindStruct:
		sv, _ := v.(*model.StructValue)
		if out, ok := literal.TryConstruct(p.Struct, sv); ok {
			return out, true, true, nil
		}
		if flags.has(FlagGenerateEmpty) {
			return p.Struct.Name + "()", false, true, nil
		}
		return "", false, true, nil
	case model.KindObject, model.KindWeakObject, model.KindInterface, model.KindClass:
		expr, err := c.objectValue(p, v)
		if err != nil {
			return "", false, false, err
		}
		return expr, true, expr != "", nil
	case model.KindArray, model.KindSet, model.KindMap:
		return p.CppType() + "()", false, true, nil
	}
	return "", false, false, nil
}

func enumValue(e *model.Enum, v model.Value) string {
	i := model.AsInt(v)
	if name := e.ValueName(i); name != "" {
		return e.Name + "::" + name
	}
	return fmt.Sprintf("(%s)(%d)", e.Name, i)
}

// createElement returns an expression for a new container element, declaring
// and initializing a local when the one-line form is incomplete.
func (c *Context) createElement(p *model.Prop, v model.Value) (string, error) {
	if p.Kind.IsContainer() {
		local := c.NewLocal()
		c.Line("%s %s;", p.CppType(), local)
		if err := c.emitContainer(p, local, v, nil); err != nil {
			return "", err
		}
		return local, nil
	}
	expr, complete, ok, err := c.oneLine(p, v, FlagGenerateEmpty)
	if err != nil {
		return "", err
	}
	if !ok {
		c.log.Error("cannot generate element", "type", c.Name(), "kind", p.Kind.String())
		return p.CppType() + "()", nil
	}
	if complete {
		return expr, nil
	}
	local := c.NewLocal()
	c.Line("auto %s = %s;", local, expr)
	if err := c.EmitValue(p, local, v, nil, 0); err != nil {
		return "", err
	}
	return local, nil
}

func (c *Context) emitContainer(p *model.Prop, path string, v, def model.Value) error {
	if model.Len(def) > 0 {
		if done, err := c.emitArrayDelta(p, path, v, def); done || err != nil {
			return err
		}
		c.Line("%s.Reset();", path)
	}
	switch p.Kind {
	case model.KindArray:
		av, _ := v.(*model.ArrayValue)
		return c.emitArray(p, path, av)
	case model.KindSet:
		sv, _ := v.(*model.SetValue)
		return c.emitSet(p, path, sv)
	case model.KindMap:
		mv, _ := v.(*model.MapValue)
		return c.emitMap(p, path, mv)
	}
	return nil
}

// emitArrayDelta assigns only the differing elements when v and def are
// arrays of equal length whose elements have complete one-line forms.
func (c *Context) emitArrayDelta(p *model.Prop, path string, v, def model.Value) (bool, error) {
	av, _ := v.(*model.ArrayValue)
	dv, _ := def.(*model.ArrayValue)
	if p.Kind != model.KindArray || av == nil || dv == nil || len(av.Elems) != len(dv.Elems) {
		return false, nil
	}
	exprs := make([]string, len(av.Elems))
	for i, e := range av.Elems {
		if model.Identical(p.Elem, e, dv.Elems[i]) {
			continue
		}
		if p.Elem.Kind.IsReference() {
			return false, nil
		}
		expr, complete, ok, err := c.oneLine(p.Elem, e, 0)
		if err != nil || !ok || !complete {
			return false, err
		}
		exprs[i] = expr
	}
	for i, expr := range exprs {
		if expr != "" {
			c.Line("%s[%d] = %s;", path, i, expr)
		}
	}
	return true, nil
}

func (c *Context) emitArray(p *model.Prop, path string, av *model.ArrayValue) error {
	n := model.Len(av)
	if n == 0 {
		return nil
	}
	if c.needsInitialize(p.Elem) {
		c.Line("%s.AddUninitialized(%d);", path, n)
		c.Line("%s->InitializeStruct(%s.GetData(), %d);", c.FindMapped(p.Elem.Struct), path, n)
		for i, e := range av.Elems {
			local := c.NewLocal()
			c.Line("auto& %s = %s[%d];", local, path, i)
			if err := c.EmitValue(p.Elem, local, e, nil, 0); err != nil {
				return err
			}
		}
		return nil
	}
	c.Line("%s.Reserve(%d);", path, n)
	for i, e := range av.Elems {
		if p.Elem.Kind.IsContainer() {
			elem, err := c.createElement(p.Elem, e)
			if err != nil {
				return err
			}
			c.Line("%s.Add(%s);", path, elem)
			continue
		}
		expr, complete, ok, err := c.oneLine(p.Elem, e, FlagGenerateEmpty)
		if err != nil {
			return err
		}
		if !ok {
			c.log.Error("cannot generate element", "type", c.Name(), "path", path, "index", i)
			continue
		}
		c.Line("%s.Add(%s);", path, expr)
		if !complete {
			if err := c.EmitValue(p.Elem, fmt.Sprintf("%s[%d]", path, i), e, nil, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// forEachValid calls fn with the index of each valid slot of sparse storage.
func forEachValid(valid []bool, fn func(int) error) error {
	size := 0
	for _, ok := range valid {
		if ok {
			size++
		}
	}
	for i := 0; size > 0; i++ {
		if valid[i] {
			size--
			if err := fn(i); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Context) emitSet(p *model.Prop, path string, sv *model.SetValue) error {
	n := sv.Num()
	if n == 0 {
		return nil
	}
	c.Line("%s.Reserve(%d);", path, n)
	valid := make([]bool, len(sv.Slots))
	for i, sl := range sv.Slots {
		valid[i] = sl.Valid
	}
	if c.needsInitialize(p.Elem) {
		prop := c.PropertyLocal(p)
		helper := c.NewLocal()
		c.Line("FScriptSetHelper %s(CastFieldChecked<FSetProperty>(%s), &%s);", helper, prop, path)
		err := forEachValid(valid, func(i int) error {
			local := c.NewLocal()
			typ := p.Elem.CppType()
			c.Line("%s& %s = *(%s*)%s.GetElementPtr(%s.AddDefaultValue_Invalid_NeedsRehash());", typ, local, typ, helper, helper)
			return c.EmitValue(p.Elem, local, sv.Slots[i].Elem, nil, 0)
		})
		if err != nil {
			return err
		}
		c.Line("%s.Rehash();", helper)
		return nil
	}
	return forEachValid(valid, func(i int) error {
		elem, err := c.createElement(p.Elem, sv.Slots[i].Elem)
		if err != nil {
			return err
		}
		c.Line("%s.Add(%s);", path, elem)
		return nil
	})
}

func (c *Context) emitMap(p *model.Prop, path string, mv *model.MapValue) error {
	n := mv.Num()
	if n == 0 {
		return nil
	}
	c.Line("%s.Reserve(%d);", path, n)
	valid := make([]bool, len(mv.Slots))
	for i, sl := range mv.Slots {
		valid[i] = sl.Valid
	}
	keyInit, valInit := c.needsInitialize(p.Key), c.needsInitialize(p.Val)
	if keyInit || valInit {
		prop := c.PropertyLocal(p)
		helper := c.NewLocal()
		c.Line("FScriptMapHelper %s(CastFieldChecked<FMapProperty>(%s), &%s);", helper, prop, path)
		pair := p.CppType() + "::ElementType"
		err := forEachValid(valid, func(i int) error {
			local := c.NewLocal()
			c.Line("%s& %s = *(%s*)%s.GetPairPtr(%s.AddDefaultValue_Invalid_NeedsRehash());", pair, local, pair, helper, helper)
			if err := c.emitPairPart(p.Key, local+".Key", mv.Slots[i].Key, keyInit); err != nil {
				return err
			}
			return c.emitPairPart(p.Val, local+".Value", mv.Slots[i].Val, valInit)
		})
		if err != nil {
			return err
		}
		c.Line("%s.Rehash();", helper)
		return nil
	}
	return forEachValid(valid, func(i int) error {
		k, err := c.createElement(p.Key, mv.Slots[i].Key)
		if err != nil {
			return err
		}
		v, err := c.createElement(p.Val, mv.Slots[i].Val)
		if err != nil {
			return err
		}
		c.Line("%s.Add(%s, %s);", path, k, v)
		return nil
	})
}

// emitPairPart writes one side of a map pair obtained from raw storage.
func (c *Context) emitPairPart(p *model.Prop, path string, v model.Value, initialized bool) error {
	if initialized || p.Kind.IsContainer() {
		return c.EmitValue(p, path, v, nil, 0)
	}
	return c.EmitValue(p, path, v, nil, FlagFirstLine|FlagGenerateEmpty)
}
