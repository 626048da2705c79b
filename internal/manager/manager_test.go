// # internal/manager/manager_test.go
package manager

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"docgraph/internal/config"
	"docgraph/internal/corpus"
	"docgraph/internal/render"
	"docgraph/internal/shared/util"
)

type stubRenderer struct {
	mu     sync.Mutex
	writes []string
}

func (s *stubRenderer) Available() bool { return true }

func (s *stubRenderer) Render(_ context.Context, _, _ string) (render.Rendered, error) {
	return render.Rendered{SVG: `<svg width="100pt"><g/></svg>`, WidthPt: 100}, nil
}

func (s *stubRenderer) WriteFiles(_ context.Context, source, basePath string) error {
	s.mu.Lock()
	s.writes = append(s.writes, basePath)
	s.mu.Unlock()
	return util.WriteStringWithDirs(basePath+".gv", source, 0o644)
}

func ent(kind corpus.Kind, id string) *corpus.Entity {
	return &corpus.Entity{
		Kind: kind, ID: id, Name: id, Visible: true,
		Settings: corpus.Settings{Graph: true, MaxDepth: 10000, MaxNodes: 1000000000},
	}
}

// testCorpus assembles a small project touching every entity kind.
func testCorpus() []*corpus.Entity {
	modA := ent(corpus.KindModule, "mod_a")
	modB := ent(corpus.KindModule, "mod_b")
	modA.Uses = []corpus.Ref{{Entity: modB}}
	modB.Uses = []corpus.Ref{{Name: "iso_fortran_env"}}

	subA := ent(corpus.KindSubmodule, "sub_a")
	subA.AncestorModule = modA

	vec := ent(corpus.KindType, "t_vec")
	point := ent(corpus.KindType, "t_point")
	point.Components = []corpus.Component{{Name: "pos", Type: corpus.Ref{Entity: vec}}}

	callee := ent(corpus.KindProcedure, "p_callee")
	callee.ProcType = "function"
	caller := ent(corpus.KindProcedure, "p_caller")
	caller.ProcType = "subroutine"
	caller.Calls = []corpus.Ref{{Entity: callee}, {Name: "c_qsort"}}

	main := ent(corpus.KindProgram, "main")
	main.Uses = []corpus.Ref{{Entity: modA}}
	main.Calls = []corpus.Ref{{Entity: caller}}

	fileA := ent(corpus.KindSourceFile, "f_a")
	fileB := ent(corpus.KindSourceFile, "f_b")
	modA.DefinedIn = fileA
	modB.DefinedIn = fileB
	modA.Deps = []*corpus.Entity{modB}
	fileA.Members = []*corpus.Entity{modA}
	fileB.Members = []*corpus.Entity{modB}

	return []*corpus.Entity{modA, modB, subA, vec, point, callee, caller, main, fileA, fileB}
}

func newTestManager(t *testing.T, cfg *config.Config) (*Manager, *stubRenderer) {
	t.Helper()
	renderer := &stubRenderer{}
	m, err := New(cfg, renderer)
	require.NoError(t, err)
	return m, renderer
}

func TestBuildAll(t *testing.T) {
	cfg := config.Default()
	m, _ := newTestManager(t, cfg)

	entities := testCorpus()
	for _, e := range entities {
		require.NoError(t, m.Register(e))
	}
	require.NoError(t, m.BuildAll(context.Background()))

	byID := make(map[string]*corpus.Entity)
	for _, e := range entities {
		byID[e.ID] = e
	}

	modA := m.Graphs(byID["mod_a"])
	require.NotNil(t, modA)
	if modA.Uses == nil || !modA.Uses.NonTrivial() {
		t.Error("mod_a uses graph should be non-trivial")
	}
	if modA.UsedBy == nil || !modA.UsedBy.NonTrivial() {
		t.Error("mod_a used-by graph should be non-trivial")
	}

	caller := m.Graphs(byID["p_caller"])
	require.NotNil(t, caller)
	if !caller.Calls.NonTrivial() {
		t.Error("p_caller calls graph should be non-trivial")
	}
	if caller.Uses.NonTrivial() {
		t.Error("p_caller has no uses and its uses graph should be trivial")
	}

	point := m.Graphs(byID["t_point"])
	require.NotNil(t, point)
	if !point.Inherits.NonTrivial() {
		t.Error("t_point inherits graph should be non-trivial")
	}

	fileA := m.Graphs(byID["f_a"])
	require.NotNil(t, fileA)
	if !fileA.Efferent.NonTrivial() {
		t.Error("f_a efferent graph should be non-trivial")
	}

	require.NotNil(t, m.ModuleOverview)
	if !m.ModuleOverview.NonTrivial() {
		t.Error("module overview should span the corpus")
	}
	if m.ModuleOverview.Ident != "module~~graph~~ModuleGraph" {
		t.Errorf("unexpected overview ident %q", m.ModuleOverview.Ident)
	}
	require.NotNil(t, m.CallOverview)
	if !m.CallOverview.NonTrivial() {
		t.Error("call overview should span the callers")
	}
}

func TestRegisterFiltering(t *testing.T) {
	cfg := config.Default()
	cfg.Exclude.Entities = []string{"legacy_*"}
	m, _ := newTestManager(t, cfg)

	excluded := ent(corpus.KindModule, "legacy_old")
	require.NoError(t, m.Register(excluded))

	skipped := ent(corpus.KindModule, "mod_plain")
	skipped.Settings.Graph = false
	require.NoError(t, m.Register(skipped))

	kept := ent(corpus.KindModule, "mod_kept")
	require.NoError(t, m.Register(kept))
	require.NoError(t, m.BuildAll(context.Background()))

	if m.Graphs(excluded) != nil {
		t.Error("excluded entity must not get graphs")
	}
	if m.Graphs(skipped) != nil {
		t.Error("graph-disabled entity must not get graphs")
	}
	if m.Graphs(kept) == nil {
		t.Error("registered entity should get graphs")
	}
}

func TestRegisterExcludeByDir(t *testing.T) {
	cfg := config.Default()
	cfg.Exclude.Dirs = []string{"vendor/*"}
	m, _ := newTestManager(t, cfg)

	e := ent(corpus.KindModule, "mod_vendored")
	e.Dir = "vendor/thirdparty"
	require.NoError(t, m.Register(e))
	require.NoError(t, m.BuildAll(context.Background()))

	if m.Graphs(e) != nil {
		t.Error("dir-excluded entity must not get graphs")
	}
}

func TestNewBadPattern(t *testing.T) {
	cfg := config.Default()
	cfg.Exclude.Entities = []string{"["}
	if _, err := New(cfg, &stubRenderer{}); err == nil {
		t.Error("expected error for malformed exclude pattern")
	}
}

func TestExport(t *testing.T) {
	for _, workers := range []int{0, 3} {
		cfg := config.Default()
		cfg.OutputDir = t.TempDir()
		cfg.Export.Workers = workers

		m, renderer := newTestManager(t, cfg)
		for _, e := range testCorpus() {
			require.NoError(t, m.Register(e))
		}
		require.NoError(t, m.BuildAll(context.Background()))
		require.NoError(t, m.Export(context.Background()))

		graphDir := filepath.Join(cfg.OutputDir, "graphs")
		for _, name := range []string{
			"none~~mod_a~~UsesGraph.gv",
			"none~~p_caller~~CallsGraph.gv",
			"none~~t_point~~InheritsGraph.gv",
			"none~~f_a~~EfferentGraph.gv",
			"module~~graph~~ModuleGraph.gv",
			"call~~graph~~CallGraph.gv",
		} {
			if _, err := os.Stat(filepath.Join(graphDir, name)); err != nil {
				t.Errorf("workers=%d: expected %s to be exported: %v", workers, name, err)
			}
		}

		// Trivial graphs are never written.
		if _, err := os.Stat(filepath.Join(graphDir, "none~~p_caller~~UsesGraph.gv")); err == nil {
			t.Errorf("workers=%d: trivial graph should not be exported", workers)
		}
		if len(renderer.writes) == 0 {
			t.Errorf("workers=%d: renderer never invoked", workers)
		}
	}
}

func TestExportDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.SaveGraphs = false

	m, renderer := newTestManager(t, cfg)
	for _, e := range testCorpus() {
		require.NoError(t, m.Register(e))
	}
	require.NoError(t, m.BuildAll(context.Background()))
	require.NoError(t, m.Export(context.Background()))

	if len(renderer.writes) != 0 {
		t.Error("save_graphs=false must write nothing")
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "graphs")); !os.IsNotExist(err) {
		t.Error("graph directory should not be created when export is disabled")
	}
}
