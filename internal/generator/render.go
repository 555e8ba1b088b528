package generator

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/calumari/nativize/internal/emit"
)

// unit is one converted type in flight through a batch.
type unit struct {
	name     string
	ctx      *emit.Context
	debug    bool
	sections []sectionModel
	err      error
}

func (u *unit) add(title, code string) {
	if code == "" {
		return
	}
	u.sections = append(u.sections, sectionModel{Title: title, Code: code, Debug: u.debug})
}

// emitBody emits every section that does not touch the shared dependency
// index. It runs concurrently with other units.
func (u *unit) emitBody() error {
	c := u.ctx
	if c.Class == nil {
		code, err := c.GenerateStructConstructor()
		if err != nil {
			return err
		}
		u.add("struct constructor", code)
		return nil
	}
	ctor, err := c.GenerateConstructor()
	if err != nil {
		return err
	}
	u.add("constructor", ctor)
	u.add("post load subobjects", c.GeneratePostLoadSubobjects())
	classInit, err := c.GenerateClassInitialization()
	if err != nil {
		return err
	}
	u.add("class initialization", classInit)
	return nil
}

// write computes the dependency tables of u and writes its file. Units are
// written one at a time.
func (g *generator) write(u *unit) error {
	c := u.ctx
	ord := c.ComputeDependencies()
	u.add("static dependencies", c.GenerateStaticDependencies(ord))
	if c.Class != nil {
		u.add("register helper", c.GenerateRegisterHelper())
	}
	var unconverted []string
	for cls := range c.Unconverted {
		unconverted = append(unconverted, cls.Name)
	}
	sort.Strings(unconverted)
	m := fileModel{
		Name:        u.name,
		Sections:    u.sections,
		Unconverted: unconverted,
		Debug:       u.debug,
		Command:     g.cfg.Command,
		Version:     g.cfg.Version,
	}
	return g.render(tmplFile, u.name+".cpp", m)
}

// writeNative writes the side table of every dependency indexed by the batch.
func (g *generator) writeNative() error {
	m := nativeModel{Entries: g.index.Entries(), Command: g.cfg.Command, Version: g.cfg.Version}
	return g.render(tmplNative, NativeDependenciesFile, m)
}

func (g *generator) render(tmpl, name string, data any) error {
	var buf bytes.Buffer
	if err := fileTmpl.ExecuteTemplate(&buf, tmpl, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	path := filepath.Join(g.cfg.Output, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	g.log.Debug("wrote", "path", path, "bytes", buf.Len())
	return nil
}
