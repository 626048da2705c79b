// # internal/render/graphviz.go
package render

import (
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"docgraph/internal/core/errors"
	"docgraph/internal/shared/observability"
	"docgraph/internal/shared/util"
)

// Rendered is one diagram produced by the external renderer.
type Rendered struct {
	// SVG is the vector payload; empty when the renderer is unavailable.
	SVG string
	// WidthPt is the rendered width in points, used to decide whether the
	// embed needs client-side pan/zoom.
	WidthPt int
}

// Renderer is the output boundary: an opaque drawing engine that accepts DOT
// source and returns a rendered image, or writes it straight to disk. An
// unavailable renderer degrades to empty payloads instead of failing the run.
type Renderer interface {
	Available() bool
	Render(ctx context.Context, ident, source string) (Rendered, error)
	WriteFiles(ctx context.Context, source, basePath string) error
}

var widthRE = regexp.MustCompile(`width="([0-9]+)(?:\.[0-9]+)?pt"`)

// GraphvizOptions tunes the dot executor.
type GraphvizOptions struct {
	// Binary names the layout engine; defaults to "dot".
	Binary string
	// RatePerSec bounds renderer process spawns; non-positive is
	// unlimited.
	RatePerSec float64
	Burst      int
	// CacheSize is the rendered-payload LRU capacity; graphs may be
	// stringified several times per run. Non-positive disables caching.
	CacheSize int
}

// Graphviz shells out to the dot executable. Safe for concurrent use: each
// render is an independent process and the cache is internally locked.
type Graphviz struct {
	bin     string
	limiter *util.Limiter
	cache   *Cache
}

// NewGraphviz probes for the layout engine. A missing executable is not an
// error: the renderer reports unavailable and every render degrades to an
// empty payload.
func NewGraphviz(opts GraphvizOptions) *Graphviz {
	binary := opts.Binary
	if binary == "" {
		binary = "dot"
	}
	g := &Graphviz{limiter: util.NewLimiter(opts.RatePerSec, opts.Burst)}
	if path, err := exec.LookPath(binary); err == nil {
		g.bin = path
	}
	if opts.CacheSize > 0 {
		g.cache = NewCache(opts.CacheSize)
	}
	return g
}

func (g *Graphviz) Available() bool { return g.bin != "" }

// Render pipes DOT source through the layout engine and returns the SVG
// payload with its rendered width.
func (g *Graphviz) Render(ctx context.Context, ident, source string) (Rendered, error) {
	if g.bin == "" {
		return Rendered{}, nil
	}
	if g.cache != nil {
		if hit, ok := g.cache.Get(ident); ok {
			return hit, nil
		}
	}
	if err := g.limiter.Wait(ctx, 1); err != nil {
		return Rendered{}, err
	}

	timer := prometheus.NewTimer(observability.RenderDuration)
	defer timer.ObserveDuration()

	var out, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, g.bin, "-Tsvg")
	cmd.Stdin = strings.NewReader(source)
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Rendered{}, errors.Wrap(err, errors.CodeRenderer,
			"dot failed: "+strings.TrimSpace(stderr.String()))
	}

	rendered := Rendered{SVG: out.String()}
	if m := widthRE.FindStringSubmatch(rendered.SVG); m != nil {
		rendered.WidthPt, _ = strconv.Atoi(m[1])
	}
	if g.cache != nil {
		g.cache.Add(ident, rendered)
	}
	return rendered, nil
}

// WriteFiles renders the graph to <basePath>.svg and keeps the DOT source
// next to it as <basePath>.gv. A degraded renderer writes nothing.
func (g *Graphviz) WriteFiles(ctx context.Context, source, basePath string) error {
	if g.bin == "" {
		return nil
	}
	if err := g.limiter.Wait(ctx, 1); err != nil {
		return err
	}

	timer := prometheus.NewTimer(observability.RenderDuration)
	defer timer.ObserveDuration()

	var out, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, g.bin, "-Tsvg")
	cmd.Stdin = strings.NewReader(source)
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrap(err, errors.CodeRenderer,
			"dot failed: "+strings.TrimSpace(stderr.String()))
	}

	if err := util.WriteFileWithDirs(basePath+".svg", out.Bytes(), 0o644); err != nil {
		return err
	}
	return util.WriteStringWithDirs(basePath+".gv", source, 0o644)
}
