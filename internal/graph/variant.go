// # internal/graph/variant.go
package graph

// Variant identifies which relation a graph expresses and whether it is a
// per-entity graph or one of the four aggregate overviews.
type Variant int

const (
	// Per-entity variants; these expand transitively hop by hop.
	VariantUses Variant = iota
	VariantUsedBy
	VariantCalls
	VariantCalledBy
	VariantInherits
	VariantInheritedBy
	VariantAfferent
	VariantEfferent

	// Aggregate overview variants; single hop over many roots.
	VariantModuleOverview
	VariantTypeOverview
	VariantCallOverview
	VariantFileOverview
)

var variantNames = [...]string{
	VariantUses:           "UsesGraph",
	VariantUsedBy:         "UsedByGraph",
	VariantCalls:          "CallsGraph",
	VariantCalledBy:       "CalledByGraph",
	VariantInherits:       "InheritsGraph",
	VariantInheritedBy:    "InheritedByGraph",
	VariantAfferent:       "AfferentGraph",
	VariantEfferent:       "EfferentGraph",
	VariantModuleOverview: "ModuleGraph",
	VariantTypeOverview:   "TypeGraph",
	VariantCallOverview:   "CallGraph",
	VariantFileOverview:   "FileGraph",
}

// Name is the variant's identifier suffix in graph and image names.
func (v Variant) Name() string { return variantNames[v] }

// RankDir is the layout direction: call trees run left to right, everything
// else right to left.
func (v Variant) RankDir() string {
	switch v {
	case VariantCalls, VariantCalledBy, VariantCallOverview:
		return "LR"
	}
	return "RL"
}

// Expandable reports whether the variant recurses beyond the first hop.
func (v Variant) Expandable() bool { return v < VariantModuleOverview }

// Overview reports whether the variant is one of the four aggregates.
func (v Variant) Overview() bool { return v >= VariantModuleOverview }

// wide overview graphs get a larger layout size and a higher pan/zoom
// threshold than per-entity diagrams.
func (v Variant) wideSize() bool {
	switch v {
	case VariantModuleOverview, VariantTypeOverview, VariantCallOverview:
		return true
	}
	return false
}

// concentrate reports whether the layout may merge parallel edges; call
// graphs keep them apart.
func (v Variant) concentrate() bool {
	switch v {
	case VariantCalls, VariantCalledBy, VariantCallOverview:
		return false
	}
	return true
}

// scaledThreshold is the rendered width (pt) beyond which the embed is
// flagged for client-side pan/zoom.
func (v Variant) scaledThreshold() int {
	if v.wideSize() {
		return 855
	}
	return 641
}

// Family groups variants for legend selection.
type Family int

const (
	FamilyModule Family = iota
	FamilyType
	FamilyCall
	FamilyFile
)

func (v Variant) Fam() Family {
	switch v {
	case VariantInherits, VariantInheritedBy, VariantTypeOverview:
		return FamilyType
	case VariantCalls, VariantCalledBy, VariantCallOverview:
		return FamilyCall
	case VariantAfferent, VariantEfferent, VariantFileOverview:
		return FamilyFile
	}
	return FamilyModule
}
