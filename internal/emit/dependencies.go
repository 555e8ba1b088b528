package emit

import (
	"github.com/calumari/nativize/internal/deps"
	"github.com/calumari/nativize/internal/model"
)

const (
	compactRowType = "FCompactBlueprintDependencyData"
	tableName      = "LocCompactBlueprintDependencyData"
)

// ComputeDependencies orders everything the emitted type depends on, using
// the assets touched by the sections generated so far.
func (c *Context) ComputeDependencies() *deps.Ordering {
	ord := deps.Compute(c.Target(), c.Used(), c.Index, c.opts.Deps)
	for _, d := range ord.Dropped {
		c.log.Warn("dependency dropped", "type", c.Name(), "dependency", model.FullName(d.Entity), "reason", d.Reason)
	}
	return ord
}

// GenerateStaticDependencies emits the directly used assets function and the
// full dependency function of the type. Directly used rows keep their
// positions so that UsedAssets indices stay valid even when a row is dropped.
func (c *Context) GenerateStaticDependencies(ord *deps.Ordering) string {
	w := c.Begin(CodeRegular)
	records := make(map[model.Entity]deps.Record, len(ord.Records))
	for _, r := range ord.Records {
		records[r.Entity] = r
	}
	dropped := make(map[model.Entity]string, len(ord.Dropped))
	for _, d := range ord.Dropped {
		dropped[d.Entity] = d.Reason
	}
	used := make(map[model.Entity]bool, len(ord.Used))

	c.Line("void %s::__StaticDependencies_DirectlyUsedAssets(TArray<FBlueprintDependencyData>& AssetsToLoad)", c.Name())
	c.Open()
	var rows []func()
	for i, e := range ord.Used {
		used[e] = true
		if reason, ok := dropped[e]; ok {
			rows = append(rows, func() {
				c.Line("{-1, FBlueprintDependencyType(), FBlueprintDependencyType()},  // %d %s: %s", i, reason, model.FullName(e))
			})
			continue
		}
		r, ok := records[e]
		if !ok {
			r = deps.Record{Entity: e, Index: c.Index.Ensure(e).Index}
		}
		rows = append(rows, func() { c.row(r) })
	}
	c.table(rows, "Add")
	c.Close()

	c.Line("void %s::__StaticDependenciesAssets(TArray<FBlueprintDependencyData>& AssetsToLoad)", c.Name())
	c.Open()
	chained := len(ord.Siblings) > 0
	if chained {
		own := c.Index.Ensure(ord.Target).Index
		c.Line("const int16 __OwnIndex = %d;", own)
		c.Line("if (FBlueprintDependencyData::ContainsDependencyData(AssetsToLoad, __OwnIndex))")
		c.Open()
		c.Line("return;")
		c.Close()
		c.Line("const bool __FirstFunctionCall = !AssetsToLoad.Num();")
		c.Line("if (__FirstFunctionCall)")
		c.Open()
		c.Line("__StaticDependencies_DirectlyUsedAssets(AssetsToLoad);")
		c.Close()
		c.Line("else")
		c.Open()
		c.Line("TArray<FBlueprintDependencyData> ArrayUnaffectedByDirectlyUsedAssets;")
		c.Line("__StaticDependencies_DirectlyUsedAssets(ArrayUnaffectedByDirectlyUsedAssets);")
		c.Line("FBlueprintDependencyData::AppendUniquely(AssetsToLoad, ArrayUnaffectedByDirectlyUsedAssets);")
		c.Close()
		c.Line("AssetsToLoad.Add(FBlueprintDependencyData(F__NativeDependencies::Get(__OwnIndex), FBlueprintDependencyType(), FBlueprintDependencyType(), __OwnIndex));")
	} else {
		c.Line("__StaticDependencies_DirectlyUsedAssets(AssetsToLoad);")
	}
	rows = rows[:0]
	for _, d := range ord.Dropped {
		if used[d.Entity] {
			continue
		}
		rows = append(rows, func() { c.Line("// %s: %s", d.Reason, model.FullName(d.Entity)) })
	}
	for _, r := range ord.Records {
		if used[r.Entity] {
			continue
		}
		rows = append(rows, func() { c.row(r) })
	}
	add := "AddUnique"
	if ord.AllowDuplicates {
		add = "Add"
	}
	c.table(rows, add)
	for _, s := range ord.Siblings {
		c.Open()
		c.Line("TArray<FBlueprintDependencyData> Temp;")
		c.Line("%s::__StaticDependenciesAssets(Temp);", s.Name)
		c.Line("FBlueprintDependencyData::AppendUniquely(AssetsToLoad, Temp);")
		c.Close()
	}
	c.Close()
	return w.String()
}

func (c *Context) row(r deps.Record) {
	c.Line("{%d, %s, %s},  // %s", r.Index, r.Struct, r.CDO, model.FullName(r.Entity))
}

// table writes a compact dependency array and the loop appending it. An
// empty array is omitted entirely.
func (c *Context) table(rows []func(), add string) {
	if len(rows) == 0 {
		return
	}
	c.Line("const %s %s[] =", compactRowType, tableName)
	c.Open()
	for _, row := range rows {
		row()
	}
	c.closeWith(";")
	c.Line("for (const %s& CompactData : %s)", compactRowType, tableName)
	c.Open()
	c.Line("AssetsToLoad.%s(FBlueprintDependencyData(F__NativeDependencies::Get(CompactData.ObjectRefIndex), CompactData));", add)
	c.Close()
}

// GenerateRegisterHelper emits the static registration of the dependency
// function under the type's package path.
func (c *Context) GenerateRegisterHelper() string {
	w := c.Begin(CodeRegular)
	helper := "FRegisterHelper__" + c.Name()
	pkg := ""
	if p := model.Outermost(c.Target()); p != nil {
		pkg = p.Name
	}
	c.Line("struct %s", helper)
	c.Open()
	c.Line("%s()", helper)
	c.Open()
	c.Line("FConvertedBlueprintsDependencies::Get().RegisterConvertedClass(TEXT(\"%s\"), &%s::__StaticDependenciesAssets);", pkg, c.Name())
	c.Close()
	c.Line("static %s Instance;", helper)
	c.closeWith(";")
	c.Line("%s %s::Instance;", helper, helper)
	return w.String()
}
