package typeid

import (
	"fmt"
	"strings"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixContainer = "container"
	PrefixSnapshot  = "snap"
	PrefixOp        = "op"
)

// DefaultContainerName is used when a container id carries no readable name.
const DefaultContainerName = "Container"

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewSnapshotID() string { return New(PrefixSnapshot) }
func NewOpID() string       { return New(PrefixOp) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}

// NewContainerID returns a grouping token of the form
// container_<suffix>_<name>. The suffix never contains an underscore, so
// the name can be recovered by splitting on the first two.
func NewContainerID(name string) string {
	if name == "" {
		name = DefaultContainerName
	}
	return New(PrefixContainer) + "_" + name
}

// ContainerName extracts the readable name from a container id.
func ContainerName(id string) (string, error) {
	token, name, err := splitContainerID(id)
	if err != nil {
		return "", err
	}
	if err := Validate(PrefixContainer+"_"+token, PrefixContainer); err != nil {
		return "", err
	}
	return name, nil
}

// RegenerateContainerID mints a fresh token carrying the same name. Ids
// that do not parse fall back to the default name.
func RegenerateContainerID(id string) string {
	_, name, err := splitContainerID(id)
	if err != nil || name == "" {
		name = DefaultContainerName
	}
	return NewContainerID(name)
}

func splitContainerID(id string) (token, name string, err error) {
	rest, ok := strings.CutPrefix(id, PrefixContainer+"_")
	if !ok {
		return "", "", fmt.Errorf("container id %q lacks %q prefix", id, PrefixContainer)
	}
	token, name, ok = strings.Cut(rest, "_")
	if !ok || token == "" {
		return "", "", fmt.Errorf("container id %q has no name", id)
	}
	return token, name, nil
}
