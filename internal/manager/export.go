// # internal/manager/export.go
package manager

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"docgraph/internal/graph"
	"docgraph/internal/shared/observability"
)

// exportJob is one unit of parallel export work: a single entity's bundle of
// graph variants. Bundling per entity keeps every output path owned by
// exactly one worker.
type exportJob struct {
	ident  string
	graphs []*graph.Graph
}

// Export writes the standalone image and DOT files for every built graph
// into the configured graph directory. With workers > 0 the per-entity jobs
// run on a bounded pool; the four overview graphs are written afterwards by
// the calling goroutine. A failed job never aborts its siblings.
func (m *Manager) Export(ctx context.Context) error {
	if !m.cfg.SaveGraphs {
		return nil
	}

	ctx, span := observability.Tracer.Start(ctx, "manager.Export",
		trace.WithAttributes(attribute.String("run_id", m.runID)))
	defer span.End()

	dir := filepath.Join(m.cfg.OutputDir, m.cfg.GraphDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create graph dir: %w", err)
	}

	jobs := make([]exportJob, 0, len(m.entities))
	for _, e := range m.entities {
		eg := m.results[e]
		if eg == nil {
			continue
		}
		graphs := eg.all()
		if len(graphs) == 0 {
			continue
		}
		jobs = append(jobs, exportJob{ident: e.ID, graphs: graphs})
	}

	workers := m.cfg.Export.Workers
	if workers <= 0 {
		for _, job := range jobs {
			m.runExportJob(ctx, dir, job)
		}
	} else {
		ch := make(chan exportJob)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for job := range ch {
					m.runExportJob(ctx, dir, job)
				}
			}()
		}
		for _, job := range jobs {
			ch <- job
		}
		close(ch)
		wg.Wait()
	}

	for _, og := range []*graph.Graph{
		m.ModuleOverview, m.TypeOverview, m.CallOverview, m.FileOverview,
	} {
		if og == nil {
			continue
		}
		if err := og.Export(ctx, dir); err != nil {
			observability.ExportFailures.Inc()
			slog.Error("overview graph export failed", "graph", og.Ident, "error", err)
		}
	}
	return nil
}

// runExportJob writes one entity's graphs. Failures are logged and counted;
// export jobs are independent and idempotent, so siblings keep going.
func (m *Manager) runExportJob(ctx context.Context, dir string, job exportJob) {
	timer := prometheus.NewTimer(observability.ExportDuration)
	defer timer.ObserveDuration()

	for _, g := range job.graphs {
		if err := g.Export(ctx, dir); err != nil {
			observability.ExportFailures.Inc()
			slog.Error("graph export failed",
				"entity", job.ident, "graph", g.Ident, "error", err)
		}
	}
}
