// # internal/manager/manager.go
package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"docgraph/internal/config"
	"docgraph/internal/corpus"
	"docgraph/internal/graph"
	"docgraph/internal/registry"
	"docgraph/internal/render"
	"docgraph/internal/shared/observability"
)

// EntityGraphs bundles the graph variants built for one corpus entity; only
// the variants relevant to the entity's kind are set.
type EntityGraphs struct {
	Entity      *corpus.Entity
	Uses        *graph.Graph
	UsedBy      *graph.Graph
	Calls       *graph.Graph
	CalledBy    *graph.Graph
	Inherits    *graph.Graph
	InheritedBy *graph.Graph
	Afferent    *graph.Graph
	Efferent    *graph.Graph
}

func (eg *EntityGraphs) all() []*graph.Graph {
	var graphs []*graph.Graph
	for _, g := range []*graph.Graph{
		eg.Uses, eg.UsedBy, eg.Calls, eg.CalledBy,
		eg.Inherits, eg.InheritedBy, eg.Afferent, eg.Efferent,
	} {
		if g != nil {
			graphs = append(graphs, g)
		}
	}
	return graphs
}

// Manager owns the single registry for a documentation run, builds every
// entity's graph variants plus the four overview graphs, and exports the
// rendered images. Construction is single-threaded; only export may run in
// parallel.
type Manager struct {
	cfg      *config.Config
	reg      *registry.Registry
	renderer render.Renderer
	runID    string

	excludeDirs     []glob.Glob
	excludeEntities []glob.Glob

	entities []*corpus.Entity
	results  map[*corpus.Entity]*EntityGraphs

	modules     []*corpus.Entity
	types       []*corpus.Entity
	procedures  []*corpus.Entity
	programs    []*corpus.Entity
	sourcefiles []*corpus.Entity
	blockdata   []*corpus.Entity

	ModuleOverview *graph.Graph
	TypeOverview   *graph.Graph
	CallOverview   *graph.Graph
	FileOverview   *graph.Graph
}

func New(cfg *config.Config, renderer render.Renderer) (*Manager, error) {
	m := &Manager{
		cfg:      cfg,
		reg:      registry.New(registry.Options{ParentDir: cfg.ParentDir}),
		renderer: renderer,
		runID:    uuid.NewString(),
		results:  make(map[*corpus.Entity]*EntityGraphs),
	}
	for _, pattern := range cfg.Exclude.Dirs {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("exclude dir pattern %q: %w", pattern, err)
		}
		m.excludeDirs = append(m.excludeDirs, g)
	}
	for _, pattern := range cfg.Exclude.Entities {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("exclude entity pattern %q: %w", pattern, err)
		}
		m.excludeEntities = append(m.excludeEntities, g)
	}
	return m, nil
}

// RunID identifies this documentation run in logs and spans.
func (m *Manager) RunID() string { return m.runID }

// Register adds a corpus entity to the graph pass. Entities flagged out of
// the pass or matching an exclude pattern are skipped; everything else is
// materialised in the registry immediately, relations included.
func (m *Manager) Register(e *corpus.Entity) error {
	if !e.Settings.Graph {
		return nil
	}
	if m.excluded(e) {
		slog.Debug("entity excluded from graphs", "entity", e.ID, "dir", e.Dir)
		return nil
	}
	if _, err := m.reg.Get(e, nil); err != nil {
		return err
	}
	m.entities = append(m.entities, e)
	return nil
}

func (m *Manager) excluded(e *corpus.Entity) bool {
	for _, g := range m.excludeDirs {
		if e.Dir != "" && g.Match(e.Dir) {
			return true
		}
	}
	for _, g := range m.excludeEntities {
		if g.Match(e.Name) || g.Match(e.ID) {
			return true
		}
	}
	return false
}

// Graphs returns the graphs built for an entity, nil before BuildAll or for
// unregistered entities.
func (m *Manager) Graphs(e *corpus.Entity) *EntityGraphs { return m.results[e] }

// BuildAll constructs the per-entity graph variants for every registered
// entity, then the four aggregate overview graphs. Must be called from a
// single goroutine: the registry is mutated in place throughout.
func (m *Manager) BuildAll(ctx context.Context) error {
	ctx, span := observability.Tracer.Start(ctx, "manager.BuildAll",
		trace.WithAttributes(attribute.String("run_id", m.runID)))
	defer span.End()

	legends, err := graph.BuildLegends(ctx, m.renderer)
	if err != nil {
		return err
	}
	opts := graph.Options{
		ColouredEdges: m.cfg.ColouredEdges,
		Renderer:      m.renderer,
		Legends:       legends,
	}

	sortEntities(m.entities)

	for _, e := range m.entities {
		eg := &EntityGraphs{Entity: e}
		roots := []*corpus.Entity{e}

		build := func(v graph.Variant) (*graph.Graph, error) {
			return graph.Build(ctx, v, roots, m.reg, opts, "")
		}

		switch e.Kind {
		case corpus.KindModule, corpus.KindSubmodule:
			if eg.Uses, err = build(graph.VariantUses); err != nil {
				return err
			}
			if eg.UsedBy, err = build(graph.VariantUsedBy); err != nil {
				return err
			}
			m.modules = append(m.modules, e)

		case corpus.KindType:
			if eg.Inherits, err = build(graph.VariantInherits); err != nil {
				return err
			}
			if eg.InheritedBy, err = build(graph.VariantInheritedBy); err != nil {
				return err
			}
			m.types = append(m.types, e)

		case corpus.KindProcedure:
			if eg.Calls, err = build(graph.VariantCalls); err != nil {
				return err
			}
			if eg.CalledBy, err = build(graph.VariantCalledBy); err != nil {
				return err
			}
			if eg.Uses, err = build(graph.VariantUses); err != nil {
				return err
			}
			m.procedures = append(m.procedures, e)

		case corpus.KindProgram:
			if eg.Uses, err = build(graph.VariantUses); err != nil {
				return err
			}
			if eg.Calls, err = build(graph.VariantCalls); err != nil {
				return err
			}
			m.programs = append(m.programs, e)

		case corpus.KindSourceFile:
			if eg.Afferent, err = build(graph.VariantAfferent); err != nil {
				return err
			}
			if eg.Efferent, err = build(graph.VariantEfferent); err != nil {
				return err
			}
			m.sourcefiles = append(m.sourcefiles, e)

		case corpus.KindBlockData:
			if eg.Uses, err = build(graph.VariantUses); err != nil {
				return err
			}
			m.blockdata = append(m.blockdata, e)
		}

		m.results[e] = eg
	}

	return m.buildOverviews(ctx, opts)
}

// buildOverviews assembles the four aggregate graphs. Programs and
// procedures join the module overview only when their own uses graph grew
// beyond its root, mirroring for the call overview.
func (m *Manager) buildOverviews(ctx context.Context, opts graph.Options) error {
	useRoots := append([]*corpus.Entity(nil), m.modules...)
	callRoots := append([]*corpus.Entity(nil), m.procedures...)
	for _, p := range m.programs {
		if m.results[p].Uses.NonTrivial() {
			useRoots = append(useRoots, p)
		}
		if m.results[p].Calls.NonTrivial() {
			callRoots = append(callRoots, p)
		}
	}
	for _, p := range m.procedures {
		if m.results[p].Uses.NonTrivial() {
			useRoots = append(useRoots, p)
		}
	}
	for _, b := range m.blockdata {
		if m.results[b].Uses.NonTrivial() {
			useRoots = append(useRoots, b)
		}
	}

	var err error
	if m.ModuleOverview, err = graph.Build(ctx, graph.VariantModuleOverview,
		useRoots, m.reg, opts, "module~~graph"); err != nil {
		return err
	}
	if m.TypeOverview, err = graph.Build(ctx, graph.VariantTypeOverview,
		m.types, m.reg, opts, "type~~graph"); err != nil {
		return err
	}
	if m.CallOverview, err = graph.Build(ctx, graph.VariantCallOverview,
		callRoots, m.reg, opts, "call~~graph"); err != nil {
		return err
	}
	if m.FileOverview, err = graph.Build(ctx, graph.VariantFileOverview,
		m.sourcefiles, m.reg, opts, "file~~graph"); err != nil {
		return err
	}
	return nil
}

func sortEntities(entities []*corpus.Entity) {
	sort.Slice(entities, func(i, j int) bool {
		if entities[i].Dir != entities[j].Dir {
			return entities[i].Dir < entities[j].Dir
		}
		return entities[i].ID < entities[j].ID
	})
}
