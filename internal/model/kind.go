package model

import "fmt"

// Kind is the closed set of property value shapes understood by the emitter.
type Kind int

const (
	KindBool Kind = iota
	KindByte
	KindInt
	KindInt64
	KindFloat
	KindDouble
	KindString
	KindName
	KindText
	KindEnum
	KindStruct
	KindObject
	KindWeakObject
	KindClass
	KindInterface
	KindArray
	KindSet
	KindMap
	KindDelegate
	KindMulticastDelegate
)

var kindNames = [...]string{
	KindBool:              "bool",
	KindByte:              "byte",
	KindInt:               "int",
	KindInt64:             "int64",
	KindFloat:             "float",
	KindDouble:            "double",
	KindString:            "string",
	KindName:              "name",
	KindText:              "text",
	KindEnum:              "enum",
	KindStruct:            "struct",
	KindObject:            "object",
	KindWeakObject:        "weak",
	KindClass:             "class",
	KindInterface:         "interface",
	KindArray:             "array",
	KindSet:               "set",
	KindMap:               "map",
	KindDelegate:          "delegate",
	KindMulticastDelegate: "mcdelegate",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsContainer reports whether values of this kind hold a variable number of elements.
func (k Kind) IsContainer() bool {
	return k == KindArray || k == KindSet || k == KindMap
}

// IsDelegate reports whether the kind is a bound function reference.
func (k Kind) IsDelegate() bool {
	return k == KindDelegate || k == KindMulticastDelegate
}

// IsReference reports whether values of this kind point at an entity.
func (k Kind) IsReference() bool {
	switch k {
	case KindObject, KindWeakObject, KindClass, KindInterface:
		return true
	}
	return false
}

// PropFlags describes field attributes relevant to emission.
type PropFlags uint32

const (
	PropTransient PropFlags = 1 << iota
	PropEditorOnly
	PropConfig
	PropPrivate
	PropProtected
	PropPOD
	PropParam
	PropInstanced
	PropBitfield
)

var propFlagNames = map[string]PropFlags{
	"transient":  PropTransient,
	"editoronly": PropEditorOnly,
	"config":     PropConfig,
	"private":    PropPrivate,
	"protected":  PropProtected,
	"pod":        PropPOD,
	"param":      PropParam,
	"instanced":  PropInstanced,
	"bitfield":   PropBitfield,
}

// ParsePropFlag maps a lower-case flag name to its bit.
func ParsePropFlag(s string) (PropFlags, bool) {
	f, ok := propFlagNames[s]
	return f, ok
}

func (f PropFlags) Has(o PropFlags) bool { return f&o == o }

// StructFlags describes struct and class attributes.
type StructFlags uint32

const (
	// StructNative marks types compiled into the runtime.
	StructNative StructFlags = 1 << iota
	// StructNoExport marks native types whose layout is not visible to generated code.
	StructNoExport
	// StructUserDefined marks types authored as assets.
	StructUserDefined
	// StructRestrictedAccess forbids direct member access on values of the type.
	StructRestrictedAccess
	// StructInterface marks class types that only declare a contract.
	StructInterface
	// StructDefaultToInstanced marks classes whose instances are owned by their referencer.
	StructDefaultToInstanced
	// StructConverted marks types emitted by this batch.
	StructConverted
)

var structFlagNames = map[string]StructFlags{
	"native":             StructNative,
	"noexport":           StructNoExport,
	"userdefined":        StructUserDefined,
	"restricted":         StructRestrictedAccess,
	"interface":          StructInterface,
	"defaulttoinstanced": StructDefaultToInstanced,
	"converted":          StructConverted,
}

// ParseStructFlag maps a lower-case flag name to its bit.
func ParseStructFlag(s string) (StructFlags, bool) {
	f, ok := structFlagNames[s]
	return f, ok
}

func (f StructFlags) Has(o StructFlags) bool { return f&o == o }

// ObjectFlags describes instance attributes.
type ObjectFlags uint32

const (
	ObjDefaultSubobject ObjectFlags = 1 << iota
	ObjArchetype
	ObjEditorOnly
	ObjNotForClient
	ObjNotForServer
	ObjTransactional
	ObjPublic
	ObjClassDefault
	ObjInheritableTemplate
)

var objectFlagNames = map[string]ObjectFlags{
	"dso":           ObjDefaultSubobject,
	"archetype":     ObjArchetype,
	"editoronly":    ObjEditorOnly,
	"notforclient":  ObjNotForClient,
	"notforserver":  ObjNotForServer,
	"transactional": ObjTransactional,
	"public":        ObjPublic,
	"cdo":           ObjClassDefault,
	"template":      ObjInheritableTemplate,
}

// ParseObjectFlag maps a lower-case flag name to its bit.
func ParseObjectFlag(s string) (ObjectFlags, bool) {
	f, ok := objectFlagNames[s]
	return f, ok
}

func (f ObjectFlags) Has(o ObjectFlags) bool { return f&o == o }

// Runtime object flag bits as written into generated NewObject calls.
const (
	rfPublic                       = 0x00000001
	rfTransactional                = 0x00000008
	rfArchetypeObject              = 0x00000020
	rfInheritableComponentTemplate = 0x00080000
)

// Runtime returns the subset of flags that survive into generated creation calls.
func (f ObjectFlags) Runtime() uint32 {
	var out uint32
	if f.Has(ObjPublic) {
		out |= rfPublic
	}
	if f.Has(ObjTransactional) {
		out |= rfTransactional
	}
	if f.Has(ObjArchetype) {
		out |= rfArchetypeObject
	}
	if f.Has(ObjInheritableTemplate) {
		out |= rfInheritableComponentTemplate
	}
	return out
}
