// # internal/corpus/corpus.go
package corpus

// Kind enumerates the seven entity kinds that can appear in a corpus.
// The set is closed: anything else is rejected by Classify.
type Kind int

const (
	KindModule Kind = iota
	KindSubmodule
	KindType
	KindProcedure
	KindProgram
	KindSourceFile
	KindBlockData

	kindCount
)

var kindNames = [...]string{
	KindModule:     "module",
	KindSubmodule:  "submodule",
	KindType:       "type",
	KindProcedure:  "procedure",
	KindProgram:    "program",
	KindSourceFile: "sourcefile",
	KindBlockData:  "blockdata",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// Settings is the per-entity graph configuration bundle supplied by the
// documentation layer alongside each entity.
type Settings struct {
	// Graph marks the entity as participating in the graph pass at all.
	Graph bool
	// MaxDepth is the maximum number of hops expanded from this root.
	MaxDepth int
	// MaxNodes is the node budget for graphs rooted at this entity.
	MaxNodes int
	// WarnOnTruncation logs a warning when a graph rooted here is
	// truncated, suppressed for size, or suppressed as incomplete.
	WarnOnTruncation bool
}

// Ref is a relation target: either a known corpus entity or an external
// placeholder known only by a display name. External names may carry an
// embedded hyperlink (<a href="...">name</a>).
type Ref struct {
	Entity *Entity
	Name   string
}

// External reports whether the target is outside the corpus.
func (r Ref) External() bool { return r.Entity == nil }

// Component is one typed field of a derived type.
type Component struct {
	Name string
	Type Ref
	// Polymorphic marks an unlimited polymorphic field (declared type
	// "*"); such fields never contribute a relation.
	Polymorphic bool
}

// Entity is one program entity of the documented corpus. Entities are
// produced by the (external) parsing layer and are read-only here; only the
// fields matching the entity's Kind are populated.
type Entity struct {
	Kind Kind
	// ID is the stable unique identifier within the corpus.
	ID   string
	Name string
	// Dir is the containing-directory hint, empty when none.
	Dir string
	// URL is the documentation page target, relative for internal
	// entities.
	URL string
	// ExternalURL is set when the entity belongs to an external project;
	// relation capture stops at such entities.
	ExternalURL string
	// External marks a placeholder entity known only by name.
	External bool
	Visible  bool
	Settings Settings

	// Modules, submodules, programs, block data and procedures.
	Uses []Ref

	// Procedures and programs.
	Calls []Ref

	// Submodules: exactly one of the two ancestors is set.
	ParentSubmodule *Entity
	AncestorModule  *Entity

	// Derived types.
	Extends    *Ref
	Components []Component

	// Procedures.
	ProcType string // "subroutine", "function" or "interface"
	ModProcs []*Entity
	// ImplModule is the module or submodule implementing a module
	// interface's deferred binding.
	ImplModule *Entity

	// Source files.
	Members []*Entity

	// Deps lists the entities this entity depends on, used for
	// file-level compiles-before edges.
	Deps []*Entity
	// DefinedIn is the source file owning this entity (its hierarchy
	// root).
	DefinedIn *Entity
}

// ProcTypeInterface is the procedure subkind that carries implementation
// relations.
const ProcTypeInterface = "interface"
