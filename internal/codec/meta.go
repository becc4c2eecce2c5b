package codec

import "strings"

// MetaMarker prefixes key = value lines that only this codec reads. Other
// readers of the format see them as comments.
const MetaMarker = "##META##"

// Hidden keys carried behind MetaMarker.
const (
	metaContainerUUID      = "container_uuid"
	metaContainerSymmetry  = "container_symmetry"
	metaName               = "name"
	metaVisible            = "visible"
	metaSymmetryType       = "symmetry_type"
	metaSymmetryProperties = "symmetry_properties"
	metaIsMirror           = "is_mirror"
)

// stripMeta removes every marker so hidden lines parse as ordinary entries.
func stripMeta(text string) string {
	return strings.ReplaceAll(text, MetaMarker, "")
}
