// Package literal renders well-known value structs as single constructor
// expressions.
package literal

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/calumari/nativize/internal/model"
)

type constructor func(s *model.Struct, v *model.StructValue) string

var constructors map[string]constructor

func init() {
	constructors = map[string]constructor{
		"FVector":           vectorLike("FVector", "X", "Y", "Z"),
		"FVector2D":         vectorLike("FVector2D", "X", "Y"),
		"FRotator":          vectorLike("FRotator", "Pitch", "Yaw", "Roll"),
		"FQuat":             vectorLike("FQuat", "X", "Y", "Z", "W"),
		"FLinearColor":      vectorLike("FLinearColor", "R", "G", "B", "A"),
		"FColor":            vectorLike("FColor", "R", "G", "B", "A"),
		"FTwoVectors":       vectorLike("FTwoVectors", "v1", "v2"),
		"FTransform":        vectorLike("FTransform", "Rotation", "Translation", "Scale3D"),
		"FFloatInterval":    vectorLike("FFloatInterval", "Min", "Max"),
		"FInt32Interval":    vectorLike("FInt32Interval", "Min", "Max"),
		"FGuid":             guid,
		"FBox2D":            box2D,
		"FFloatRangeBound":  rangeBound,
		"FInt32RangeBound":  rangeBound,
		"FFloatRange":       vectorLike("FFloatRange", "LowerBound", "UpperBound"),
		"FInt32Range":       vectorLike("FInt32Range", "LowerBound", "UpperBound"),
		"FSoftObjectPath":   softPath,
		"FSoftClassPath":    softPath,
		"FLatentActionInfo": latentAction,
	}
	for _, suffix := range []string{"Float", "Vector2D", "Vector", "Quat", "TwoVectors", "LinearColor"} {
		constructors["FInterpCurvePoint"+suffix] = curvePoint(suffix)
	}
}

// Recognized reports whether values of s have a dedicated literal form.
func Recognized(s *model.Struct) bool {
	if s == nil {
		return false
	}
	_, ok := constructors[s.Name]
	return ok
}

// TryConstruct renders v as one constructor expression. It returns false when
// s has no dedicated literal form.
func TryConstruct(s *model.Struct, v *model.StructValue) (string, bool) {
	if s == nil {
		return "", false
	}
	c, ok := constructors[s.Name]
	if !ok {
		return "", false
	}
	if v == nil {
		v = &model.StructValue{Type: s}
	}
	return c(s, v), true
}

// Scalar renders a non-struct numeric or boolean value of kind k.
func Scalar(k model.Kind, v model.Value) (string, bool) {
	switch k {
	case model.KindBool:
		return strconv.FormatBool(model.AsBool(v)), true
	case model.KindByte, model.KindInt, model.KindInt64:
		return strconv.FormatInt(model.AsInt(v), 10), true
	case model.KindFloat:
		return Float32(float32(model.AsFloat(v))), true
	case model.KindDouble:
		return Float64(model.AsFloat(v)), true
	}
	return "", false
}

// Float32 formats f as the shortest float literal that parses back to f.
func Float32(f float32) string {
	switch {
	case math.IsNaN(float64(f)):
		return "NAN"
	case math.IsInf(float64(f), 1):
		return "INFINITY"
	case math.IsInf(float64(f), -1):
		return "-INFINITY"
	}
	return withPoint(strconv.FormatFloat(float64(f), 'g', -1, 32)) + "f"
}

// Float64 formats f as the shortest double literal that parses back to f.
func Float64(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NAN"
	case math.IsInf(f, 1):
		return "INFINITY"
	case math.IsInf(f, -1):
		return "-INFINITY"
	}
	return withPoint(strconv.FormatFloat(f, 'g', -1, 64))
}

func withPoint(s string) string {
	if strings.ContainsAny(s, ".e") {
		return s
	}
	return s + ".0"
}

// Text renders s as a wide string literal.
func Text(s string) string {
	var b strings.Builder
	b.WriteString(`TEXT("`)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteString(`")`)
	return b.String()
}

func field(s *model.Struct, v *model.StructValue, name string) model.Value {
	p := s.FindProp(name)
	if p == nil {
		return nil
	}
	return v.Value(p, 0)
}

// arg renders one field of v, recursing into recognized nested structs.
func arg(s *model.Struct, v *model.StructValue, name string) string {
	p := s.FindProp(name)
	if p == nil {
		return "0"
	}
	x := v.Value(p, 0)
	if p.Kind == model.KindStruct {
		sv, _ := x.(*model.StructValue)
		if out, ok := TryConstruct(p.Struct, sv); ok {
			return out
		}
		return p.Struct.Name + "()"
	}
	if out, ok := Scalar(p.Kind, x); ok {
		return out
	}
	return "0"
}

func vectorLike(ctor string, names ...string) constructor {
	return func(s *model.Struct, v *model.StructValue) string {
		args := make([]string, len(names))
		for i, n := range names {
			args[i] = arg(s, v, n)
		}
		return ctor + "(" + strings.Join(args, ", ") + ")"
	}
}

func latentAction(s *model.Struct, v *model.StructValue) string {
	return fmt.Sprintf("FLatentActionInfo(%d, %d, %s, this)",
		model.AsInt(field(s, v, "Linkage")), model.AsInt(field(s, v, "UUID")),
		Text(model.AsString(field(s, v, "ExecutionFunction"))))
}

func guid(s *model.Struct, v *model.StructValue) string {
	part := func(n string) uint32 { return uint32(model.AsInt(field(s, v, n))) }
	return fmt.Sprintf("FGuid(0x%08X, 0x%08X, 0x%08X, 0x%08X)", part("A"), part("B"), part("C"), part("D"))
}

func box2D(s *model.Struct, v *model.StructValue) string {
	return fmt.Sprintf("CreateFBox2D(%s, %s, %s)", arg(s, v, "Min"), arg(s, v, "Max"), arg(s, v, "bIsValid"))
}

// Range bound types in declaration order of ERangeBoundTypes.
const (
	boundExclusive = iota
	boundInclusive
	boundOpen
)

func rangeBound(s *model.Struct, v *model.StructValue) string {
	switch model.AsInt(field(s, v, "Type")) {
	case boundExclusive:
		return s.Name + "::Exclusive(" + arg(s, v, "Value") + ")"
	case boundInclusive:
		return s.Name + "::Inclusive(" + arg(s, v, "Value") + ")"
	}
	return s.Name + "::Open()"
}

func softPath(s *model.Struct, v *model.StructValue) string {
	path := model.AsString(field(s, v, "AssetPathName"))
	if sub := model.AsString(field(s, v, "SubPathString")); sub != "" {
		path += ":" + sub
	}
	return s.Name + "(" + Text(path) + ")"
}

func curvePoint(suffix string) constructor {
	return func(s *model.Struct, v *model.StructValue) string {
		return fmt.Sprintf("CreateFInterpCurvePoint%s(%s, %s, %s, %s, TEnumAsByte<EInterpCurveMode>(%d))", suffix,
			arg(s, v, "InVal"), arg(s, v, "OutVal"), arg(s, v, "ArriveTangent"), arg(s, v, "LeaveTangent"),
			model.AsInt(field(s, v, "InterpMode")))
	}
}
