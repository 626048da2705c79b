package corpus

import (
	"fmt"

	"docgraph/internal/core/errors"
)

// Classify maps an entity to its kind. Any value outside the seven known
// kinds is a hard CodeBadType error: silent misclassification would corrupt
// every graph built from the registry, so callers must fail loudly.
func Classify(e *Entity) (Kind, error) {
	if e == nil {
		return 0, errors.New(errors.CodeBadType, "cannot classify nil entity")
	}
	if e.Kind < 0 || e.Kind >= kindCount {
		return 0, errors.New(errors.CodeBadType,
			fmt.Sprintf("unrecognised entity kind %d when constructing graphs", int(e.Kind)))
	}
	return e.Kind, nil
}
