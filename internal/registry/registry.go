// # internal/registry/registry.go
package registry

import (
	"fmt"

	"docgraph/internal/core/errors"
	"docgraph/internal/corpus"
	"docgraph/internal/shared/observability"
)

// Options is the configuration injected once per documentation run.
type Options struct {
	// ParentDir is prepended to internal entities' documentation URLs so
	// links resolve relative to the page embedding the graph.
	ParentDir string
}

// Registry is the deduplicating store of graph nodes for one documentation
// run, partitioned by entity kind. It grows monotonically while graphs are
// constructed and is not safe for concurrent mutation: graph construction is
// single-threaded by design, only export runs in parallel.
type Registry struct {
	opts        Options
	collections map[corpus.Kind]map[string]*Node
}

// New creates an empty registry.
func New(opts Options) *Registry {
	collections := make(map[corpus.Kind]map[string]*Node, 7)
	for _, k := range []corpus.Kind{
		corpus.KindModule, corpus.KindSubmodule, corpus.KindType,
		corpus.KindProcedure, corpus.KindProgram, corpus.KindSourceFile,
		corpus.KindBlockData,
	} {
		collections[k] = make(map[string]*Node)
	}
	return &Registry{opts: opts, collections: collections}
}

// Visit is the construction-chain map used to break relation cycles: every
// node currently under construction along the recursive chain is present,
// keyed by its entity. It is extended copy-on-write as the chain deepens and
// is never stored beyond the chain.
type Visit map[*corpus.Entity]*Node

// With returns a copy of the chain extended by one entry.
func (v Visit) With(e *corpus.Entity, n *Node) Visit {
	next := make(Visit, len(v)+1)
	for k, val := range v {
		next[k] = val
	}
	next[e] = n
	return next
}

// Len reports the total number of registered nodes.
func (r *Registry) Len() int {
	total := 0
	for _, coll := range r.collections {
		total += len(coll)
	}
	return total
}

// Get returns the node for an entity, constructing it (and, recursively,
// the nodes for every entity it directly relates to) on first sight.
// Registration is idempotent: the same entity always yields the same node.
//
// The node is recorded under its identity key before its relations are
// populated, so lookups that cycle back to an entity already under
// construction terminate; the visit chain covers the same ground for
// entities reached through relation references.
func (r *Registry) Get(e *corpus.Entity, visit Visit) (*Node, error) {
	if n, ok := visit[e]; ok {
		return n, nil
	}
	kind, err := corpus.Classify(e)
	if err != nil {
		return nil, err
	}
	if e.External {
		return r.external(kind, e.Name, e.ProcType), nil
	}

	coll := r.collections[kind]
	ident := identFor(e)
	if n, ok := coll[ident]; ok {
		return n, nil
	}

	n := newNode(kind, e, r.opts)
	coll[ident] = n
	observability.NodesRegistered.WithLabelValues(kind.String()).Inc()

	if err := r.populate(n, e, visit.With(e, n)); err != nil {
		return nil, errors.AddContext(err, errors.CtxEntity, e.ID)
	}
	return n, nil
}

// GetRef resolves a relation reference: known entities go through Get,
// external names become terminal placeholder nodes of the contextual kind.
func (r *Registry) GetRef(kind corpus.Kind, ref corpus.Ref, visit Visit) (*Node, error) {
	if ref.External() {
		return r.external(kind, ref.Name, ""), nil
	}
	return r.Get(ref.Entity, visit)
}

// external returns the terminal node for a display-name-only entity.
// External nodes carry no relations and construction never recurses past
// them.
func (r *Registry) external(kind corpus.Kind, name, procType string) *Node {
	coll := r.collections[kind]
	n := newExternalNode(kind, name, procType)
	if existing, ok := coll[n.Ident]; ok {
		return existing
	}
	coll[n.Ident] = n
	observability.NodesRegistered.WithLabelValues(kind.String()).Inc()
	return n
}

func (r *Registry) populate(n *Node, e *corpus.Entity, visit Visit) error {
	switch n.Kind {
	case corpus.KindModule:
		return r.populateModule(n, e, visit)
	case corpus.KindSubmodule:
		return r.populateSubmodule(n, e, visit)
	case corpus.KindType:
		return r.populateType(n, e, visit)
	case corpus.KindProcedure:
		return r.populateProcedure(n, e, visit)
	case corpus.KindProgram:
		return r.populateProgram(n, e, visit)
	case corpus.KindSourceFile:
		return r.populateSourceFile(n, e, visit)
	case corpus.KindBlockData:
		return r.populateBlockData(n, e, visit)
	}
	return errors.New(errors.CodeBadType, fmt.Sprintf("no relation rules for kind %s", n.Kind))
}

func (r *Registry) populateModule(n *Node, e *corpus.Entity, visit Visit) error {
	for _, ref := range e.Uses {
		u, err := r.GetRef(corpus.KindModule, ref, visit)
		if err != nil {
			return err
		}
		u.UsedBy.Add(n)
		u.Afferent++
		n.Uses.Add(u)
		n.Efferent += u.Efferent
	}
	return nil
}

func (r *Registry) populateSubmodule(n *Node, e *corpus.Entity, visit Visit) error {
	if err := r.populateModule(n, e, visit); err != nil {
		return err
	}
	ancestor := e.ParentSubmodule
	if ancestor == nil {
		ancestor = e.AncestorModule
	}
	if ancestor == nil {
		return nil
	}
	a, err := r.Get(ancestor, visit)
	if err != nil {
		return err
	}
	n.Ancestor = a
	a.Children.Add(n)
	n.Efferent++
	a.Afferent++
	return nil
}

func (r *Registry) populateType(n *Node, e *corpus.Entity, visit Visit) error {
	// Entities in an external project terminate the chain.
	if e.ExternalURL != "" {
		return nil
	}

	if e.Extends != nil {
		a, err := r.GetRef(corpus.KindType, *e.Extends, visit)
		if err != nil {
			return err
		}
		n.Ancestor = a
		a.Children.Add(n)
		a.Visible = refVisible(*e.Extends)
	}

	for _, comp := range e.Components {
		if comp.Polymorphic {
			continue
		}
		node, err := r.GetRef(corpus.KindType, comp.Type, visit)
		if err != nil {
			return err
		}
		node.Visible = refVisible(comp.Type)
		appendLabel(node.CompOf, n, comp.Name)
		appendLabel(n.CompTypes, node, comp.Name)
	}
	return nil
}

func (r *Registry) populateProcedure(n *Node, e *corpus.Entity, visit Visit) error {
	for _, ref := range e.Uses {
		u, err := r.GetRef(corpus.KindModule, ref, visit)
		if err != nil {
			return err
		}
		u.UsedBy.Add(n)
		n.Uses.Add(u)
	}
	for _, ref := range e.Calls {
		// Invisible call targets are excluded from the relation set
		// entirely, not merely hidden at render time.
		if !refVisible(ref) {
			continue
		}
		c, err := r.GetRef(corpus.KindProcedure, ref, visit)
		if err != nil {
			return err
		}
		c.CalledBy.Add(n)
		n.Calls.Add(c)
	}

	if e.ProcType != corpus.ProcTypeInterface {
		return nil
	}
	for _, p := range e.ModProcs {
		if p == nil || !p.Visible {
			continue
		}
		m, err := r.Get(p, visit)
		if err != nil {
			return err
		}
		m.InterfacedBy.Add(n)
		n.Interfaces.Add(m)
	}
	if e.ImplModule != nil && e.ImplModule.Visible {
		m, err := r.Get(e.ImplModule, visit)
		if err != nil {
			return err
		}
		m.InterfacedBy.Add(n)
		n.Interfaces.Add(m)
	}
	return nil
}

func (r *Registry) populateProgram(n *Node, e *corpus.Entity, visit Visit) error {
	for _, ref := range e.Uses {
		u, err := r.GetRef(corpus.KindModule, ref, visit)
		if err != nil {
			return err
		}
		u.UsedBy.Add(n)
		n.Uses.Add(u)
	}
	for _, ref := range e.Calls {
		if !refVisible(ref) {
			continue
		}
		c, err := r.GetRef(corpus.KindProcedure, ref, visit)
		if err != nil {
			return err
		}
		c.CalledBy.Add(n)
		n.Calls.Add(c)
	}
	return nil
}

func (r *Registry) populateBlockData(n *Node, e *corpus.Entity, visit Visit) error {
	for _, ref := range e.Uses {
		u, err := r.GetRef(corpus.KindModule, ref, visit)
		if err != nil {
			return err
		}
		u.UsedBy.Add(n)
		n.Uses.Add(u)
	}
	return nil
}

// populateSourceFile records compiles-before relations: for every entity
// defined in this file, each dependency resolves to the file owning it,
// deduplicated by that file and excluding self-dependencies.
func (r *Registry) populateSourceFile(n *Node, e *corpus.Entity, visit Visit) error {
	for _, member := range e.Members {
		if member == nil {
			continue
		}
		for _, dep := range member.Deps {
			root := dep.DefinedIn
			if root == nil || root == e {
				continue
			}
			fn, err := r.Get(root, visit)
			if err != nil {
				return err
			}
			fn.AfferentFiles.Add(n)
			n.EfferentFiles.Add(fn)
		}
	}
	return nil
}

// refVisible reports whether a relation target is visible; external targets
// always are.
func refVisible(ref corpus.Ref) bool {
	return ref.Entity == nil || ref.Entity.Visible
}

// appendLabel records a component-field name against a node, concatenating
// when several fields share the same type.
func appendLabel(m map[*Node]string, key *Node, name string) {
	if existing, ok := m[key]; ok {
		m[key] = existing + ", " + name
		return
	}
	m[key] = name
}
