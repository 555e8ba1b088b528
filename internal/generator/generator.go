package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/calumari/nativize/internal/deps"
	"github.com/calumari/nativize/internal/emit"
	"github.com/calumari/nativize/internal/model"
)

// ErrNoTypes is returned when a batch selects no converted class or struct.
var ErrNoTypes = errors.New("no converted types to emit")

// NativeDependenciesFile is the name of the side table written once per batch.
const NativeDependenciesFile = "NativeDependencies.cpp"

// generator holds the state of one batch.
type generator struct {
	cfg   Config
	log   *slog.Logger
	index *deps.Index
}

// Run loads the object model, emits every selected converted type and writes
// one file per type plus the native dependency table. A failing type does not
// stop the others; all failures are returned joined.
func Run(ctx context.Context, cfg Config) error {
	if err := ensureTemplates(); err != nil {
		return err
	}
	g := &generator{cfg: cfg, log: cfg.Log, index: deps.NewIndex()}
	if g.log == nil {
		g.log = slog.Default()
	}
	return g.run(ctx)
}

func (g *generator) run(ctx context.Context) error {
	m, err := g.loadModel()
	if err != nil {
		return err
	}
	units := g.selectUnits(m)
	if len(units) == 0 {
		return ErrNoTypes
	}
	if err := os.MkdirAll(g.cfg.Output, 0o755); err != nil {
		return err
	}

	jobs := g.cfg.Options.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)
	for _, u := range units {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			u.err = u.emitBody()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	// dependency indices are assigned in type order so output is stable
	var errs []error
	for _, u := range units {
		if u.err == nil {
			u.err = g.write(u)
		}
		if u.err != nil {
			g.log.Error("type failed", "type", u.name, "err", u.err)
			errs = append(errs, fmt.Errorf("%s: %w", u.name, u.err))
			continue
		}
		g.log.Info("emitted", "type", u.name, "sections", len(u.sections))
	}
	if err := g.writeNative(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (g *generator) loadModel() (*model.Model, error) {
	m := model.New()
	if g.cfg.TypesDir != "" {
		pkg := g.cfg.TypesPackage
		if pkg == "" {
			pkg = "/Game/Types"
		}
		dir, err := filepath.Abs(g.cfg.TypesDir)
		if err != nil {
			return nil, err
		}
		if err := m.LoadGoTypes(dir, pkg); err != nil {
			return nil, err
		}
	}
	for _, path := range g.cfg.Models {
		if err := m.LoadFile(path); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// selectUnits returns the converted structs then classes, each sorted by
// name, restricted to Options.Only when set.
func (g *generator) selectUnits(m *model.Model) []*unit {
	classes, structs := m.Converted()
	only := g.cfg.Options.Only
	keep := func(name string) bool { return len(only) == 0 || slices.Contains(only, name) }
	opts := emit.Options{Wrappers: g.cfg.Options.wrappers(), Deps: g.cfg.Options.deps()}
	var out []*unit
	add := func(target model.Entity, name string) {
		if !keep(name) {
			return
		}
		o := opts
		o.Log = g.log.With("type", name)
		out = append(out, &unit{name: name, ctx: emit.NewContext(target, g.index, o), debug: g.cfg.Debug})
	}
	for _, s := range structs {
		add(s, s.Name)
	}
	for _, c := range classes {
		add(c, c.Name)
	}
	return out
}
