package session

import (
	"fmt"

	"github.com/inamate/heraldry/internal/engine"
	"github.com/inamate/heraldry/internal/geom"
)

// applyOperationLocked applies the operation without locking (caller must hold lock)
func (s *Session) applyOperationLocked(op Operation, res *Result) error {
	switch op.Type {
	case TypeBatch:
		return s.applyBatch(op, res)
	case TypeLoad:
		ids, err := s.codec.Parse(s.comp, op.Text)
		res.Layers = ids
		return err
	case TypePatternSet:
		if op.Filename == "" {
			return fmt.Errorf("%w: pattern filename is empty", engine.ErrInvalid)
		}
		s.comp.SetPattern(op.Filename)
		return nil
	case TypePatternColor:
		if op.Color == nil {
			return missing("color")
		}
		return s.comp.SetBaseColor(op.Slot, *op.Color)
	case TypeLayerAdd:
		id, err := s.comp.AddLayer(op.Filename, op.Colors, op.Target)
		res.Layers = []string{id}
		return err
	case TypeLayerRemove:
		return s.comp.RemoveLayers(op.Layers...)
	case TypeLayerDuplicate:
		return s.applyDuplicate(op, res)
	case TypeLayerPaste:
		return s.applyPaste(op, res)
	case TypeLayerMove:
		return s.applyMove(op, res)
	case TypeLayerVisibility:
		if op.Visible == nil {
			return missing("visible")
		}
		return s.eachLayer(op, func(id string) error { return s.comp.SetLayerVisible(id, *op.Visible) })
	case TypeLayerRename:
		return s.eachLayer(op, func(id string) error { return s.comp.SetLayerName(id, op.Name) })
	case TypeLayerTexture:
		return s.eachLayer(op, func(id string) error { return s.comp.SetLayerTexture(id, op.Filename, op.Colors) })
	case TypeLayerColor:
		if op.Color == nil {
			return missing("color")
		}
		return s.eachLayer(op, func(id string) error { return s.comp.SetLayerColor(id, op.Slot, *op.Color) })
	case TypeLayerMask:
		return s.eachLayer(op, func(id string) error { return s.comp.SetLayerMask(id, op.Mask) })
	case TypeLayerSymmetry:
		if op.Symmetry == nil {
			return missing("symmetry")
		}
		return s.eachLayer(op, func(id string) error { return s.comp.SetLayerSymmetry(id, *op.Symmetry) })
	case TypeLayerPosition:
		if op.Position == nil {
			return missing("position")
		}
		return s.eachLayer(op, func(id string) error { return s.comp.SetLayerPosition(id, *op.Position) })
	case TypeLayerTranslate:
		if op.Offset == nil {
			return missing("offset")
		}
		return s.comp.TranslateLayers(op.Layers, *op.Offset)
	case TypeLayerScale:
		return s.comp.ScaleLayers(op.Layers, op.Factor, op.AroundCenter)
	case TypeLayerRotate:
		mode, err := s.mode(op.Mode)
		if err != nil {
			return err
		}
		return s.comp.RotateSelection(op.Layers, op.Delta, mode)
	case TypeLayerFlip:
		return s.comp.FlipLayers(op.Layers, op.FlipX, op.FlipY)
	case TypeLayerAlign:
		return s.comp.AlignLayers(op.Layers, op.Edge)
	case TypeLayerPlace:
		return s.comp.MoveLayersTo(op.Layers, op.Placement)
	case TypeLayerMerge:
		return s.applyMerge(op, res)
	case TypeLayerSplit:
		return s.applySplit(op, res)
	case TypeInstanceAdd:
		id, err := s.single(op)
		if err != nil {
			return err
		}
		res.Index, err = s.comp.AddInstance(id)
		res.Layers = []string{id}
		return err
	case TypeInstanceRemove:
		id, err := s.single(op)
		if err != nil {
			return err
		}
		return s.comp.RemoveInstance(id, op.Index)
	case TypeInstanceSelect:
		id, err := s.single(op)
		if err != nil {
			return err
		}
		return s.comp.SelectInstance(id, op.Index)
	case TypeRotationBegin:
		mode, err := s.mode(op.Mode)
		if err != nil {
			return err
		}
		return s.comp.BeginRotationTransform(op.Layers, mode)
	case TypeRotationApply:
		return s.comp.ApplyRotationTransform(op.Delta)
	case TypeRotationEnd:
		s.comp.EndRotationTransform()
		return nil
	case TypeContainerCreate:
		id, err := s.comp.CreateContainer(op.Layers, op.Name)
		res.Container = id
		return err
	case TypeContainerSet:
		return s.eachLayer(op, func(id string) error { return s.comp.SetLayerContainer(id, op.Container) })
	case TypeContainerDuplicate:
		id, err := s.comp.DuplicateContainer(op.Container)
		res.Container = id
		res.Layers = s.comp.LayersInContainer(id)
		return err
	case TypeContainerRepair:
		res.Splits = s.comp.ValidateContiguity()
		return nil
	default:
		return fmt.Errorf("unknown operation type: %s", op.Type)
	}
}

func missing(field string) error {
	return fmt.Errorf("%w: %s is required", engine.ErrInvalid, field)
}

func (s *Session) mode(name string) (engine.RotationMode, error) {
	if name == "" {
		return s.rotationMode, nil
	}
	return engine.ParseRotationMode(name)
}

func (s *Session) single(op Operation) (string, error) {
	if len(op.Layers) != 1 {
		return "", fmt.Errorf("%w: %s takes exactly one layer, got %d", engine.ErrInvalid, op.Type, len(op.Layers))
	}
	return op.Layers[0], nil
}

// eachLayer validates every id before applying fn so an unknown layer
// leaves the composition untouched.
func (s *Session) eachLayer(op Operation, fn func(id string) error) error {
	if len(op.Layers) == 0 {
		return missing("layers")
	}
	for _, id := range op.Layers {
		if _, err := s.comp.Layer(id); err != nil {
			return err
		}
	}
	for _, id := range op.Layers {
		if err := fn(id); err != nil {
			return err
		}
	}
	return nil
}

// applyBatch applies nested operations as one step. On failure the
// composition is restored to its state before the batch.
func (s *Session) applyBatch(op Operation, res *Result) error {
	before := s.comp.Snapshot()
	for i, sub := range op.Operations {
		if sub.Type == TypeBatch || sub.Type == TypeUndo || sub.Type == TypeRedo {
			return fmt.Errorf("%w: %s cannot be nested in a batch", engine.ErrInvalid, sub.Type)
		}
		var r Result
		if err := s.applyOperationLocked(sub, &r); err != nil {
			if rerr := s.comp.SetSnapshot(before); rerr != nil {
				s.logger.Error("batch rollback failed", "err", rerr)
			}
			return fmt.Errorf("batch step %d (%s): %w", i, sub.Type, err)
		}
		res.Layers = append(res.Layers, r.Layers...)
	}
	return nil
}

func (s *Session) applyDuplicate(op Operation, res *Result) error {
	id, err := s.single(op)
	if err != nil {
		return err
	}
	var dup string
	if op.Placement == PlaceBefore {
		dup, err = s.comp.DuplicateLayerBelow(id)
	} else {
		dup, err = s.comp.DuplicateLayer(id)
	}
	if err != nil {
		return err
	}
	res.Layers = []string{dup}
	return nil
}

// applyPaste inserts layers from text in front of the target and nudges
// them by the paste offset.
func (s *Session) applyPaste(op Operation, res *Result) error {
	ids, err := s.codec.ParseLayers(s.comp, op.Text, op.Target)
	if err != nil {
		return err
	}
	res.Layers = ids
	if len(ids) == 0 || s.pasteOffset == 0 {
		return nil
	}
	return s.comp.TranslateLayers(ids, geom.V(s.pasteOffset, s.pasteOffset))
}

// applyMove reorders layers and then splits any container the move broke
// apart, so container runs stay contiguous between operations.
func (s *Session) applyMove(op Operation, res *Result) error {
	if err := s.moveLayers(op); err != nil {
		return err
	}
	res.Splits = s.comp.ValidateContiguity()
	for _, sp := range res.Splits {
		s.logger.Info("split fragmented container",
			"container", sp.OldContainer, "new", sp.NewContainer, "layers", sp.LayerCount)
	}
	return nil
}

func (s *Session) moveLayers(op Operation) error {
	switch op.Placement {
	case PlaceTop:
		return s.comp.MoveLayersToTop(op.Layers)
	case PlaceBottom:
		return s.comp.MoveLayersToBottom(op.Layers)
	case PlaceAfter:
		return s.comp.MoveLayersAfter(op.Layers, op.Target)
	case PlaceBefore:
		return s.comp.MoveLayersBefore(op.Layers, op.Target)
	case PlaceUp, PlaceDown:
		id, err := s.single(op)
		if err != nil {
			return err
		}
		if op.Placement == PlaceUp {
			_, err = s.comp.ShiftLayerUp(id)
		} else {
			_, err = s.comp.ShiftLayerDown(id)
		}
		return err
	default:
		return fmt.Errorf("%w: unknown placement %q", engine.ErrInvalid, op.Placement)
	}
}

func (s *Session) applyMerge(op Operation, res *Result) error {
	review := s.comp.ReviewMerge(op.Layers)
	res.Review = &review
	var (
		id  string
		err error
	)
	if op.Force {
		id, err = s.comp.MergeIntoFirst(op.Layers)
	} else {
		id, err = s.comp.Merge(op.Layers)
	}
	if err != nil {
		return err
	}
	res.Layers = []string{id}
	return nil
}

func (s *Session) applySplit(op Operation, res *Result) error {
	id, err := s.single(op)
	if err != nil {
		return err
	}
	ids, err := s.comp.Split(id)
	if err != nil {
		return err
	}
	res.Layers = ids
	return nil
}
