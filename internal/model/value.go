package model

import (
	"math"
)

// Value is a field value. Its dynamic type depends on the field kind:
//
//	bool                                    KindBool
//	int64                                   KindByte, KindInt, KindInt64, KindEnum
//	float32                                 KindFloat
//	float64                                 KindDouble
//	string                                  KindString, KindName, KindText
//	*StructValue                            KindStruct
//	*ArrayValue, *SetValue, *MapValue       containers
//	*Object, *Class or nil                  reference kinds
//
// Fixed-size array fields store a []Value with one entry per element.
type Value = any

// Container yields field values of one instance.
type Container interface {
	Value(p *Prop, idx int) Value
}

// StructValue is an instance of a plain struct.
type StructValue struct {
	Type *Struct
	Vals map[string]Value
}

// NewStruct returns an instance of s with the given values set.
func NewStruct(s *Struct, vals map[string]Value) *StructValue {
	return &StructValue{Type: s, Vals: vals}
}

// Value returns the field value, falling back to the type's default instance.
func (v *StructValue) Value(p *Prop, idx int) Value {
	if v != nil {
		if x, ok := lookup(v.Vals, p, idx); ok {
			return x
		}
		if v.Type != nil && v.Type.Default != nil && v.Type.Default != v {
			return v.Type.Default.Value(p, idx)
		}
	}
	return Zero(p)
}

// Value returns the field value, falling back through the object's baseline chain.
func (o *Object) Value(p *Prop, idx int) Value {
	for cur, hops := o, 0; cur != nil && hops < 64; cur, hops = cur.Baseline(), hops+1 {
		if x, ok := lookup(cur.Vals, p, idx); ok {
			return x
		}
	}
	return Zero(p)
}

func lookup(vals map[string]Value, p *Prop, idx int) (Value, bool) {
	x, ok := vals[p.Name]
	if !ok {
		return nil, false
	}
	if p.Dim() > 1 {
		elems, isSlice := x.([]Value)
		if !isSlice || idx >= len(elems) {
			return nil, false
		}
		return elems[idx], true
	}
	return x, true
}

// ArrayValue is a dynamic array.
type ArrayValue struct {
	Elems []Value
}

// SetSlot is one storage slot of a sparse set.
type SetSlot struct {
	Valid bool
	Elem  Value
}

// SetValue is a hash set with sparse storage.
type SetValue struct {
	Slots []SetSlot
}

// NewSet returns a set with every element in a valid slot.
func NewSet(elems ...Value) *SetValue {
	s := &SetValue{Slots: make([]SetSlot, len(elems))}
	for i, e := range elems {
		s.Slots[i] = SetSlot{Valid: true, Elem: e}
	}
	return s
}

// Num returns the number of valid slots.
func (s *SetValue) Num() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, sl := range s.Slots {
		if sl.Valid {
			n++
		}
	}
	return n
}

// MapSlot is one storage slot of a sparse map.
type MapSlot struct {
	Valid    bool
	Key, Val Value
}

// MapValue is a hash map with sparse storage.
type MapValue struct {
	Slots []MapSlot
}

// NewMap returns a map from alternating key, value arguments.
func NewMap(kv ...Value) *MapValue {
	m := &MapValue{}
	for i := 0; i+1 < len(kv); i += 2 {
		m.Slots = append(m.Slots, MapSlot{Valid: true, Key: kv[i], Val: kv[i+1]})
	}
	return m
}

// Num returns the number of valid slots.
func (m *MapValue) Num() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, sl := range m.Slots {
		if sl.Valid {
			n++
		}
	}
	return n
}

// Zero returns the zero value of the field's kind.
func Zero(p *Prop) Value {
	switch p.Kind {
	case KindBool:
		return false
	case KindByte, KindInt, KindInt64, KindEnum:
		return int64(0)
	case KindFloat:
		return float32(0)
	case KindDouble:
		return float64(0)
	case KindString, KindName, KindText:
		return ""
	case KindStruct:
		return &StructValue{Type: p.Struct}
	case KindArray:
		return &ArrayValue{}
	case KindSet:
		return &SetValue{}
	case KindMap:
		return &MapValue{}
	}
	return nil
}

// Len returns the element count of a container value.
func Len(v Value) int {
	switch c := v.(type) {
	case *ArrayValue:
		if c == nil {
			return 0
		}
		return len(c.Elems)
	case *SetValue:
		return c.Num()
	case *MapValue:
		return c.Num()
	}
	return 0
}

// AsInt converts any integer representation to int64.
func AsInt(v Value) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case uint8:
		return int64(n)
	case uint32:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

// AsFloat converts any numeric representation to float64.
func AsFloat(v Value) float64 {
	switch n := v.(type) {
	case float32:
		return float64(n)
	case float64:
		return n
	case int64, int, int32, uint8, uint32:
		return float64(AsInt(n))
	}
	return 0
}

// AsBool converts a value to bool.
func AsBool(v Value) bool {
	b, _ := v.(bool)
	return b
}

// AsString converts a value to string.
func AsString(v Value) string {
	s, _ := v.(string)
	return s
}

// Identical reports whether a and b are equivalent values of field p. Floats
// compare bitwise, sets and maps ignore storage order, references compare by identity.
func Identical(p *Prop, a, b Value) bool {
	if a == nil {
		a = Zero(p)
	}
	if b == nil {
		b = Zero(p)
	}
	switch p.Kind {
	case KindBool:
		return AsBool(a) == AsBool(b)
	case KindByte, KindInt, KindInt64, KindEnum:
		return AsInt(a) == AsInt(b)
	case KindFloat:
		return math.Float32bits(float32(AsFloat(a))) == math.Float32bits(float32(AsFloat(b)))
	case KindDouble:
		return math.Float64bits(AsFloat(a)) == math.Float64bits(AsFloat(b))
	case KindString, KindName, KindText:
		return AsString(a) == AsString(b)
	case KindStruct:
		av, _ := a.(*StructValue)
		bv, _ := b.(*StructValue)
		if av == bv {
			return true
		}
		for _, sp := range p.Struct.AllProps() {
			for i := range sp.Dim() {
				if !Identical(sp, av.Value(sp, i), bv.Value(sp, i)) {
					return false
				}
			}
		}
		return true
	case KindArray:
		av, _ := a.(*ArrayValue)
		bv, _ := b.(*ArrayValue)
		if Len(av) != Len(bv) {
			return false
		}
		for i := range Len(av) {
			if !Identical(p.Elem, av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case KindSet:
		av, _ := a.(*SetValue)
		bv, _ := b.(*SetValue)
		if av.Num() != bv.Num() {
			return false
		}
		for _, as := range validSet(av) {
			found := false
			for _, bs := range validSet(bv) {
				if Identical(p.Elem, as, bs) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	case KindMap:
		av, _ := a.(*MapValue)
		bv, _ := b.(*MapValue)
		if av.Num() != bv.Num() {
			return false
		}
		for _, as := range validMap(av) {
			found := false
			for _, bs := range validMap(bv) {
				if Identical(p.Key, as.Key, bs.Key) {
					found = Identical(p.Val, as.Val, bs.Val)
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	case KindDelegate, KindMulticastDelegate:
		return true
	}
	if sameSubobject(refOf(a), refOf(b)) {
		return true
	}
	return refOf(a) == refOf(b)
}

// sameSubobject reports whether a and b are default subobjects standing for
// the same slot of related owners.
func sameSubobject(a, b Value) bool {
	ao, ok := a.(*Object)
	if !ok {
		return false
	}
	bo, ok := b.(*Object)
	if !ok {
		return false
	}
	return ao.Flags.Has(ObjDefaultSubobject) && bo.Flags.Has(ObjDefaultSubobject) && ao.Name == bo.Name && ao.Class == bo.Class
}

// refOf normalizes typed nil references to an untyped nil.
func refOf(v Value) Value {
	switch r := v.(type) {
	case *Object:
		if r == nil {
			return nil
		}
	case *Class:
		if r == nil {
			return nil
		}
	}
	return v
}

func validSet(s *SetValue) []Value {
	if s == nil {
		return nil
	}
	var out []Value
	for _, sl := range s.Slots {
		if sl.Valid {
			out = append(out, sl.Elem)
		}
	}
	return out
}

func validMap(m *MapValue) []MapSlot {
	if m == nil {
		return nil
	}
	var out []MapSlot
	for _, sl := range m.Slots {
		if sl.Valid {
			out = append(out, sl)
		}
	}
	return out
}
