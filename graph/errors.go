package graph

import (
	"errors"
	"fmt"

	"github.com/streamingfast/dexpath/asset"
)

var ErrDuplicateEdge = errors.New("duplicate edge")
var ErrInvalidOffer = errors.New("invalid offer")

type DuplicateEdgeError struct {
	From asset.ID
	To   asset.ID
}

func (e *DuplicateEdgeError) Error() string {
	return fmt.Sprintf("edge between %s and %s already exists, use UpdateEdge to overwrite", e.From, e.To)
}

func (e *DuplicateEdgeError) Is(target error) bool {
	return target == ErrDuplicateEdge
}
