package engine

// Mutation describes one successful state change.
type Mutation struct {
	Op     string
	Layers []string
}

// Observer is notified after every successful mutation. Implementations
// must not call back into the composition.
type Observer interface {
	OnMutation(m Mutation)
}

// NoopObserver ignores every notification.
type NoopObserver struct{}

func (NoopObserver) OnMutation(Mutation) {}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Mutation)

func (f ObserverFunc) OnMutation(m Mutation) { f(m) }

// Operation names reported to observers.
const (
	OpPatternSet         = "pattern.set"
	OpBaseColorSet       = "pattern.color"
	OpLayerAdd           = "layer.add"
	OpLayerRemove        = "layer.remove"
	OpLayerDuplicate     = "layer.duplicate"
	OpLayerMove          = "layer.move"
	OpLayerInsert        = "layer.insert"
	OpLayerUpdate        = "layer.update"
	OpInstanceAdd        = "instance.add"
	OpInstanceRemove     = "instance.remove"
	OpInstanceSelect     = "instance.select"
	OpTransform          = "layer.transform"
	OpGroupTransform     = "layer.group_transform"
	OpRotate             = "selection.rotate"
	OpFlip               = "selection.flip"
	OpAlign              = "selection.align"
	OpContainerCreate    = "container.create"
	OpContainerSet       = "container.set"
	OpContainerRepair    = "container.repair"
	OpContainerDuplicate = "container.duplicate"
	OpMerge              = "layer.merge"
	OpSplit              = "layer.split"
	OpSnapshotRestore    = "snapshot.restore"
)
