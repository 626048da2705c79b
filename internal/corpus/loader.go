// # internal/corpus/loader.go
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
)

// The parsing layer is out of scope: a corpus arrives as a JSON document of
// pre-parsed entities whose relations name other entities by identifier.
// Relation values that match no corpus identifier are treated as external
// display names (which may embed a hyperlink).

const (
	defaultMaxDepth = 10000
	defaultMaxNodes = 1000000000
)

type document struct {
	Entities []record `json:"entities"`
}

type record struct {
	Kind        string            `json:"kind"`
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Dir         string            `json:"dir"`
	URL         string            `json:"url"`
	ExternalURL string            `json:"external_url"`
	External    bool              `json:"external"`
	Visible     *bool             `json:"visible"`
	Graph       *bool             `json:"graph"`
	MaxDepth    int               `json:"graph_max_depth"`
	MaxNodes    int               `json:"graph_max_nodes"`
	Warn        bool              `json:"warn"`
	ProcType    string            `json:"proc_type"`
	Uses        []string          `json:"uses"`
	Calls       []string          `json:"calls"`
	ParentSub   string            `json:"parent_submodule"`
	AncestorMod string            `json:"ancestor_module"`
	Extends     string            `json:"extends"`
	Components  []componentRecord `json:"components"`
	ModProcs    []string          `json:"mod_procs"`
	ImplModule  string            `json:"impl_module"`
	Members     []string          `json:"members"`
	Deps        []string          `json:"deps"`
	DefinedIn   string            `json:"defined_in"`
}

type componentRecord struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

var kindsByName = map[string]Kind{
	"module":     KindModule,
	"submodule":  KindSubmodule,
	"type":       KindType,
	"procedure":  KindProcedure,
	"program":    KindProgram,
	"sourcefile": KindSourceFile,
	"blockdata":  KindBlockData,
}

// Load reads a corpus document and links its relation references.
func Load(path string) ([]*Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses a corpus document from raw JSON.
func Decode(data []byte) ([]*Entity, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}

	entities := make([]*Entity, 0, len(doc.Entities))
	byID := make(map[string]*Entity, len(doc.Entities))

	for _, rec := range doc.Entities {
		kind, ok := kindsByName[rec.Kind]
		if !ok {
			return nil, fmt.Errorf("corpus entity %q: unknown kind %q", rec.ID, rec.Kind)
		}
		if rec.ID == "" {
			return nil, fmt.Errorf("corpus entity of kind %q is missing an id", rec.Kind)
		}
		if _, dup := byID[rec.ID]; dup {
			return nil, fmt.Errorf("corpus entity %q: duplicate id", rec.ID)
		}
		e := &Entity{
			Kind:        kind,
			ID:          rec.ID,
			Name:        rec.Name,
			Dir:         rec.Dir,
			URL:         rec.URL,
			ExternalURL: rec.ExternalURL,
			External:    rec.External,
			Visible:     rec.Visible == nil || *rec.Visible,
			ProcType:    rec.ProcType,
			Settings: Settings{
				Graph:            rec.Graph == nil || *rec.Graph,
				MaxDepth:         rec.MaxDepth,
				MaxNodes:         rec.MaxNodes,
				WarnOnTruncation: rec.Warn,
			},
		}
		if e.Settings.MaxDepth <= 0 {
			e.Settings.MaxDepth = defaultMaxDepth
		}
		if e.Settings.MaxNodes <= 0 {
			e.Settings.MaxNodes = defaultMaxNodes
		}
		entities = append(entities, e)
		byID[rec.ID] = e
	}

	// Second pass: link relations now that every entity exists.
	for i, rec := range doc.Entities {
		e := entities[i]
		e.Uses = linkRefs(byID, rec.Uses)
		e.Calls = linkRefs(byID, rec.Calls)

		if rec.Extends != "" {
			ref := linkRef(byID, rec.Extends)
			e.Extends = &ref
		}
		for _, c := range rec.Components {
			comp := Component{Name: c.Name}
			if c.Type == "*" {
				comp.Polymorphic = true
			} else {
				comp.Type = linkRef(byID, c.Type)
			}
			e.Components = append(e.Components, comp)
		}

		var err error
		if e.ParentSubmodule, err = linkEntity(byID, e, rec.ParentSub, "parent_submodule"); err != nil {
			return nil, err
		}
		if e.AncestorModule, err = linkEntity(byID, e, rec.AncestorMod, "ancestor_module"); err != nil {
			return nil, err
		}
		if e.ImplModule, err = linkEntity(byID, e, rec.ImplModule, "impl_module"); err != nil {
			return nil, err
		}
		if e.DefinedIn, err = linkEntity(byID, e, rec.DefinedIn, "defined_in"); err != nil {
			return nil, err
		}
		if e.ModProcs, err = linkEntities(byID, e, rec.ModProcs, "mod_procs"); err != nil {
			return nil, err
		}
		if e.Members, err = linkEntities(byID, e, rec.Members, "members"); err != nil {
			return nil, err
		}
		if e.Deps, err = linkEntities(byID, e, rec.Deps, "deps"); err != nil {
			return nil, err
		}
	}

	return entities, nil
}

func linkRef(byID map[string]*Entity, value string) Ref {
	if target, ok := byID[value]; ok {
		return Ref{Entity: target}
	}
	return Ref{Name: value}
}

func linkRefs(byID map[string]*Entity, values []string) []Ref {
	if len(values) == 0 {
		return nil
	}
	refs := make([]Ref, 0, len(values))
	for _, v := range values {
		refs = append(refs, linkRef(byID, v))
	}
	return refs
}

func linkEntity(byID map[string]*Entity, owner *Entity, id, field string) (*Entity, error) {
	if id == "" {
		return nil, nil
	}
	target, ok := byID[id]
	if !ok {
		return nil, fmt.Errorf("corpus entity %q: %s references unknown id %q", owner.ID, field, id)
	}
	return target, nil
}

func linkEntities(byID map[string]*Entity, owner *Entity, ids []string, field string) ([]*Entity, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	targets := make([]*Entity, 0, len(ids))
	for _, id := range ids {
		target, err := linkEntity(byID, owner, id, field)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, nil
}
