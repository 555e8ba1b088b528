package model

import (
	"fmt"
	"go/constant"
	"go/types"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

// loadDir loads the Go package(s) for a directory.
func loadDir(dir string) ([]*packages.Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedSyntax | packages.NeedFiles,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, "./")
	if err != nil {
		return nil, err
	}
	for _, p := range pkgs {
		if len(p.Errors) > 0 {
			return nil, p.Errors[0]
		}
	}
	return pkgs, nil
}

// LoadGoTypes registers the exported struct and enum declarations of the Go
// package in dir as user-defined types of package pkgName.
//
// Named integer types with constants become enums, values ordered by constant
// value. Struct fields may carry an `nz:"Name,flag,flag"` tag to rename the
// field or set flags and an `nztype:"name"` tag to override the mapped type.
func (m *Model) LoadGoTypes(dir, pkgName string) error {
	pkgs, err := loadDir(dir)
	if err != nil {
		return err
	}
	if len(pkgs) == 0 {
		return fmt.Errorf("no packages found in %s", dir)
	}
	owner := m.Package(pkgName, 0)
	for _, p := range pkgs {
		if err := m.loadGoPackage(p, owner); err != nil {
			return fmt.Errorf("%s: %w", p.PkgPath, err)
		}
	}
	return nil
}

func (m *Model) loadGoPackage(p *packages.Package, owner *Package) error {
	scope := p.Types.Scope()
	names := scope.Names()

	enumConsts := map[*types.TypeName][]*types.Const{}
	var structNames []*types.TypeName
	for _, name := range names {
		switch obj := scope.Lookup(name).(type) {
		case *types.Const:
			if named, ok := obj.Type().(*types.Named); ok && named.Obj().Pkg() == p.Types && named.Obj().Exported() {
				enumConsts[named.Obj()] = append(enumConsts[named.Obj()], obj)
			}
		case *types.TypeName:
			// declarations standing in for runtime classes are only pointer targets
			if !obj.Exported() || m.Class(obj.Name()) != nil {
				continue
			}
			if _, ok := obj.Type().Underlying().(*types.Struct); ok {
				structNames = append(structNames, obj)
			}
		}
	}
	for tn, consts := range enumConsts {
		sort.Slice(consts, func(i, j int) bool {
			a, _ := constant.Int64Val(consts[i].Val())
			b, _ := constant.Int64Val(consts[j].Val())
			return a < b
		})
		e := &Enum{Name: tn.Name(), Package: owner, Flags: StructUserDefined}
		for _, c := range consts {
			e.Values = append(e.Values, c.Name())
		}
		m.AddEnum(e)
	}
	structs := make([]*Struct, len(structNames))
	for i, tn := range structNames {
		structs[i] = m.AddStruct(&Struct{Name: tn.Name(), Package: owner, Flags: StructUserDefined | StructConverted})
	}
	for i, tn := range structNames {
		st := tn.Type().Underlying().(*types.Struct)
		for fi := 0; fi < st.NumFields(); fi++ {
			f := st.Field(fi)
			if !f.Exported() || f.Embedded() {
				continue
			}
			tags := parseTag(st.Tag(fi))
			name, flags, err := fieldTag(f.Name(), tags["nz"])
			if err != nil {
				return fmt.Errorf("%s.%s: %w", tn.Name(), f.Name(), err)
			}
			expr, dim, err := m.goTypeExpr(f.Type())
			if err != nil {
				return fmt.Errorf("%s.%s: %w", tn.Name(), f.Name(), err)
			}
			if override := tags["nztype"]; override != "" {
				expr = override
			}
			prop, err := m.ParseType(name, expr)
			if err != nil {
				return fmt.Errorf("%s.%w", tn.Name(), err)
			}
			prop.ArrayDim = dim
			prop.Flags |= flags
			structs[i].Add(prop)
		}
	}
	return nil
}

// goTypeExpr maps a Go type to a type expression and a fixed array size.
func (m *Model) goTypeExpr(t types.Type) (string, int, error) {
	switch tt := t.(type) {
	case *types.Basic:
		switch tt.Kind() {
		case types.Bool:
			return "bool", 0, nil
		case types.Uint8:
			return "byte", 0, nil
		case types.Int, types.Int32, types.Uint32, types.Int16, types.Uint16:
			return "int", 0, nil
		case types.Int64, types.Uint64:
			return "int64", 0, nil
		case types.Float32:
			return "float", 0, nil
		case types.Float64:
			return "double", 0, nil
		case types.String:
			return "string", 0, nil
		}
	case *types.Named:
		name := tt.Obj().Name()
		if m.Enum(name) != nil || m.Struct(name) != nil {
			return name, 0, nil
		}
		return m.goTypeExpr(tt.Underlying())
	case *types.Pointer:
		if named, ok := tt.Elem().(*types.Named); ok && m.Class(named.Obj().Name()) != nil {
			return "object<" + named.Obj().Name() + ">", 0, nil
		}
	case *types.Slice:
		elem, _, err := m.goTypeExpr(tt.Elem())
		if err != nil {
			return "", 0, err
		}
		return "array<" + elem + ">", 0, nil
	case *types.Array:
		elem, _, err := m.goTypeExpr(tt.Elem())
		if err != nil {
			return "", 0, err
		}
		return elem, int(tt.Len()), nil
	case *types.Map:
		key, _, err := m.goTypeExpr(tt.Key())
		if err != nil {
			return "", 0, err
		}
		if st, ok := tt.Elem().Underlying().(*types.Struct); ok && st.NumFields() == 0 {
			return "set<" + key + ">", 0, nil
		}
		val, _, err := m.goTypeExpr(tt.Elem())
		if err != nil {
			return "", 0, err
		}
		return "map<" + key + ", " + val + ">", 0, nil
	}
	return "", 0, fmt.Errorf("%w: unsupported Go type %s", ErrUnknownType, t)
}

// fieldTag splits an nz tag value into the field name and flags.
func fieldTag(goName, tag string) (string, PropFlags, error) {
	if tag == "" {
		return goName, 0, nil
	}
	parts := strings.Split(tag, ",")
	name := strings.TrimSpace(parts[0])
	if name == "" {
		name = goName
	}
	var flags PropFlags
	for _, p := range parts[1:] {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		f, ok := ParsePropFlag(p)
		if !ok {
			return "", 0, fmt.Errorf("unknown flag %q", p)
		}
		flags |= f
	}
	return name, flags, nil
}

func parseTag(tag string) map[string]string {
	res := map[string]string{}
	tag = strings.Trim(tag, "`")
	for _, p := range strings.Split(tag, " ") {
		p = strings.TrimSpace(p)
		if p == "" || !strings.Contains(p, ":") {
			continue
		}
		kv := strings.SplitN(p, ":", 2)
		res[kv[0]] = strings.Trim(kv[1], "\"")
	}
	return res
}
