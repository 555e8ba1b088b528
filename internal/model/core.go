package model

const (
	coreScriptPackage   = "/Script/CoreUObject"
	engineScriptPackage = "/Script/Engine"
)

// Built-in names referenced by the emitter.
const (
	ClassObject             = "UObject"
	ClassActor              = "AActor"
	ClassActorComponent     = "UActorComponent"
	ClassSceneComponent     = "USceneComponent"
	ClassPrimitiveComponent = "UPrimitiveComponent"
	ClassTimelineTemplate   = "UTimelineTemplate"
	ClassChildActorComp     = "UChildActorComponent"

	StructBodyInstance = "FBodyInstance"

	PropRootComponent       = "RootComponent"
	PropBodyInstance        = "BodyInstance"
	PropCollisionProfile    = "CollisionProfileName"
	CustomCollisionProfile  = "Custom"
	EnumComponentCreation   = "EComponentCreationMethod"
	CreationNative          = "Native"
	CreationConstructScript = "SimpleConstructionScript"
)

func registerCore(m *Model) {
	core := m.Package(coreScriptPackage, PkgNative|PkgCore)
	engine := m.Package(engineScriptPackage, PkgNative)

	m.AddEnum(&Enum{Name: "ERangeBoundTypes", Package: core, Values: []string{"Exclusive", "Inclusive", "Open"}})
	m.AddEnum(&Enum{Name: "EInterpCurveMode", Package: core, Values: []string{"CIM_Linear", "CIM_CurveAuto", "CIM_Constant", "CIM_CurveUser", "CIM_CurveBreak", "CIM_CurveAutoClamped"}})
	m.AddEnum(&Enum{Name: EnumComponentCreation, Package: engine, Values: []string{CreationNative, CreationConstructScript, "UserConstructionScript", "Instance"}})
	m.AddEnum(&Enum{Name: "ECollisionEnabled", Package: engine, Values: []string{"NoCollision", "QueryOnly", "PhysicsOnly", "QueryAndPhysics"}})

	type field struct{ name, typ string }
	addStruct := func(pkg *Package, name string, flags StructFlags, fields ...field) *Struct {
		s := m.AddStruct(&Struct{Name: name, Package: pkg, Flags: StructNative | flags})
		for _, f := range fields {
			s.Add(m.MustProp(f.name, f.typ))
		}
		return s
	}

	addStruct(core, "FVector", 0, field{"X", "float"}, field{"Y", "float"}, field{"Z", "float"})
	addStruct(core, "FVector2D", 0, field{"X", "float"}, field{"Y", "float"})
	addStruct(core, "FRotator", 0, field{"Pitch", "float"}, field{"Yaw", "float"}, field{"Roll", "float"})
	quat := addStruct(core, "FQuat", 0, field{"X", "float"}, field{"Y", "float"}, field{"Z", "float"}, field{"W", "float"})
	quat.Default = NewStruct(quat, map[string]Value{"W": float32(1)})
	xf := addStruct(core, "FTransform", 0, field{"Rotation", "FQuat"}, field{"Translation", "FVector"}, field{"Scale3D", "FVector"})
	xf.Default = NewStruct(xf, map[string]Value{"Scale3D": NewStruct(m.Struct("FVector"), map[string]Value{"X": float32(1), "Y": float32(1), "Z": float32(1)})})
	addStruct(core, "FLinearColor", 0, field{"R", "float"}, field{"G", "float"}, field{"B", "float"}, field{"A", "float"})
	addStruct(core, "FColor", 0, field{"B", "byte"}, field{"G", "byte"}, field{"R", "byte"}, field{"A", "byte"})
	addStruct(core, "FBox2D", 0, field{"Min", "FVector2D"}, field{"Max", "FVector2D"}, field{"bIsValid", "bool"})
	addStruct(core, "FGuid", 0, field{"A", "int"}, field{"B", "int"}, field{"C", "int"}, field{"D", "int"})
	addStruct(core, "FFloatRangeBound", 0, field{"Type", "byte<ERangeBoundTypes>"}, field{"Value", "float"})
	addStruct(core, "FFloatRange", 0, field{"LowerBound", "FFloatRangeBound"}, field{"UpperBound", "FFloatRangeBound"})
	addStruct(core, "FInt32RangeBound", 0, field{"Type", "byte<ERangeBoundTypes>"}, field{"Value", "int"})
	addStruct(core, "FInt32Range", 0, field{"LowerBound", "FInt32RangeBound"}, field{"UpperBound", "FInt32RangeBound"})
	addStruct(core, "FFloatInterval", 0, field{"Min", "float"}, field{"Max", "float"})
	addStruct(core, "FInt32Interval", 0, field{"Min", "int"}, field{"Max", "int"})
	addStruct(core, "FSoftObjectPath", 0, field{"AssetPathName", "name"}, field{"SubPathString", "string"})
	softClass := addStruct(core, "FSoftClassPath", 0)
	softClass.Super = m.Struct("FSoftObjectPath")
	addStruct(core, "FTwoVectors", 0, field{"v1", "FVector"}, field{"v2", "FVector"})

	curve := func(suffix, typ string) {
		addStruct(core, "FInterpCurvePoint"+suffix, 0,
			field{"InVal", "float"}, field{"OutVal", typ}, field{"ArriveTangent", typ}, field{"LeaveTangent", typ},
			field{"InterpMode", "byte<EInterpCurveMode>"})
	}
	curve("Float", "float")
	curve("Vector2D", "FVector2D")
	curve("Vector", "FVector")
	curve("Quat", "FQuat")
	curve("TwoVectors", "FTwoVectors")
	curve("LinearColor", "FLinearColor")

	object := m.AddClass(NewClass(ClassObject, core, nil, StructNative))
	m.NewCDO(object)
	addStruct(engine, "FLatentActionInfo", 0, field{"Linkage", "int"}, field{"UUID", "int"}, field{"ExecutionFunction", "name"}, field{"CallbackTarget", "object<UObject>"})
	addStruct(engine, StructBodyInstance, 0,
		field{PropCollisionProfile, "name"}, field{"CollisionEnabled", "byte<ECollisionEnabled>"},
		field{"bSimulatePhysics", "bool"}, field{"bNotifyRigidBodyCollision", "bool"},
		field{"MassInKgOverride", "float"}, field{"LinearDamping", "float"}, field{"AngularDamping", "float"})
	body := m.Struct(StructBodyInstance)
	body.Default = NewStruct(body, map[string]Value{PropCollisionProfile: "Default", "LinearDamping": float32(0.01), "AngularDamping": float32(0)})

	addClass := func(name string, super *Class, flags StructFlags, fields ...field) *Class {
		c := m.AddClass(NewClass(name, engine, super, StructNative|flags))
		for _, f := range fields {
			c.Add(m.MustProp(f.name, f.typ))
		}
		m.NewCDO(c)
		return c
	}
	comp := addClass(ClassActorComponent, object, StructDefaultToInstanced,
		field{"bAutoActivate", "bool"}, field{"ComponentTags", "array<name>"})
	scene := addClass(ClassSceneComponent, comp, 0,
		field{"RelativeLocation", "FVector"}, field{"RelativeRotation", "FRotator"}, field{"RelativeScale3D", "FVector"},
		field{"bVisible", "bool"}, field{"bHiddenInGame", "bool"})
	scene.CDO.Set("RelativeScale3D", NewStruct(m.Struct("FVector"), map[string]Value{"X": float32(1), "Y": float32(1), "Z": float32(1)})).Set("bVisible", true)
	prim := addClass(ClassPrimitiveComponent, scene, 0,
		field{PropBodyInstance, StructBodyInstance}, field{"CastShadow", "bool"})
	prim.CDO.Set("CastShadow", true)
	addClass("UStaticMesh", object, 0)
	addClass("UMaterialInterface", object, 0)
	addClass("UStaticMeshComponent", prim, 0, field{"StaticMesh", "object<UStaticMesh>"}, field{"OverrideMaterials", "array<object<UMaterialInterface>>"})
	addClass("UBoxComponent", prim, 0, field{"BoxExtent", "FVector"})
	addClass(ClassChildActorComp, scene, 0)
	actor := addClass(ClassActor, object, 0,
		field{PropRootComponent, "object<USceneComponent>"}, field{"Tags", "array<name>"},
		field{"bReplicates", "bool"}, field{"InitialLifeSpan", "float"})
	actor.FindProp(PropRootComponent).Flags |= PropInstanced
	addClass(ClassTimelineTemplate, object, 0, field{"TimelineLength", "float"}, field{"bAutoPlay", "bool"}, field{"bLoop", "bool"})
	addClass("UDynamicBlueprintBinding", object, 0)
}
