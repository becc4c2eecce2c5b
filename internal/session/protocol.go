package session

import (
	"encoding/json"

	"github.com/inamate/heraldry/internal/document"
	"github.com/inamate/heraldry/internal/engine"
	"github.com/inamate/heraldry/internal/geom"
)

// Operation types accepted by Session.Apply.
const (
	TypeLoad  = "coa.load"
	TypeUndo  = "history.undo"
	TypeRedo  = "history.redo"
	TypeBatch = "batch"

	TypePatternSet   = "pattern.set"
	TypePatternColor = "pattern.color"

	TypeLayerAdd        = "layer.add"
	TypeLayerRemove     = "layer.remove"
	TypeLayerDuplicate  = "layer.duplicate"
	TypeLayerPaste      = "layer.paste"
	TypeLayerMove       = "layer.move"
	TypeLayerVisibility = "layer.visibility"
	TypeLayerRename     = "layer.rename"
	TypeLayerTexture    = "layer.texture"
	TypeLayerColor      = "layer.color"
	TypeLayerMask       = "layer.mask"
	TypeLayerSymmetry   = "layer.symmetry"
	TypeLayerPosition   = "layer.position"
	TypeLayerTranslate  = "layer.translate"
	TypeLayerScale      = "layer.scale"
	TypeLayerRotate     = "layer.rotate"
	TypeLayerFlip       = "layer.flip"
	TypeLayerAlign      = "layer.align"
	TypeLayerPlace      = "layer.place"
	TypeLayerMerge      = "layer.merge"
	TypeLayerSplit      = "layer.split"

	TypeInstanceAdd    = "instance.add"
	TypeInstanceRemove = "instance.remove"
	TypeInstanceSelect = "instance.select"

	TypeRotationBegin = "rotation.begin"
	TypeRotationApply = "rotation.apply"
	TypeRotationEnd   = "rotation.end"

	TypeContainerCreate    = "container.create"
	TypeContainerSet       = "container.set"
	TypeContainerDuplicate = "container.duplicate"
	TypeContainerRepair    = "container.repair"
)

// Placements for layer.move.
const (
	PlaceTop    = "top"
	PlaceBottom = "bottom"
	PlaceAfter  = "after"
	PlaceBefore = "before"
	PlaceUp     = "up"
	PlaceDown   = "down"
)

// Operation represents one composition mutation. Only the fields used by
// its Type are read.
type Operation struct {
	ID     string   `json:"id,omitempty"`
	Type   string   `json:"type"`
	Layers []string `json:"layers,omitempty"`
	Target string   `json:"target,omitempty"`

	// For coa.load and layer.paste
	Text string `json:"text,omitempty"`

	// For layer.add, layer.texture and pattern.set
	Filename string `json:"filename,omitempty"`
	Colors   int    `json:"colors,omitempty"`

	// For layer.move and layer.place
	Placement string `json:"placement,omitempty"`

	// For layer.visibility
	Visible *bool `json:"visible,omitempty"`

	// For layer.rename and container.create
	Name string `json:"name,omitempty"`

	// For layer.color and pattern.color
	Slot  int             `json:"slot,omitempty"`
	Color *document.Color `json:"color,omitempty"`

	// For layer.mask
	Mask []int `json:"mask,omitempty"`

	// For layer.symmetry
	Symmetry *document.Symmetry `json:"symmetry,omitempty"`

	// For layer.position and layer.translate
	Position *geom.Vec2 `json:"position,omitempty"`
	Offset   *geom.Vec2 `json:"offset,omitempty"`

	// For layer.scale
	Factor       float64 `json:"factor,omitempty"`
	AroundCenter bool    `json:"aroundCenter,omitempty"`

	// For layer.rotate and rotation.*
	Delta float64 `json:"delta,omitempty"`
	Mode  string  `json:"mode,omitempty"`

	// For layer.flip
	FlipX bool `json:"flipX,omitempty"`
	FlipY bool `json:"flipY,omitempty"`

	// For layer.align
	Edge string `json:"edge,omitempty"`

	// For layer.merge
	Force bool `json:"force,omitempty"`

	// For instance.*
	Index int `json:"index,omitempty"`

	// For container.set and container.duplicate
	Container string `json:"container,omitempty"`

	// For batch
	Operations []Operation `json:"operations,omitempty"`
}

// Result reports what an applied operation produced.
type Result struct {
	OperationID string                  `json:"operationId"`
	Seq         int64                   `json:"seq"`
	Layers      []string                `json:"layers,omitempty"`
	Container   string                  `json:"container,omitempty"`
	Index       int                     `json:"index,omitempty"`
	Review      *engine.MergeReview     `json:"review,omitempty"`
	Splits      []engine.ContainerSplit `json:"splits,omitempty"`
	Snapshot    string                  `json:"snapshot,omitempty"`
}

// DecodeOperations accepts either a single operation object or an array.
func DecodeOperations(data []byte) ([]Operation, error) {
	var ops []Operation
	if err := json.Unmarshal(data, &ops); err == nil {
		return ops, nil
	}
	var op Operation
	if err := json.Unmarshal(data, &op); err != nil {
		return nil, err
	}
	return []Operation{op}, nil
}
