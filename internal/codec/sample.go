package codec

import _ "embed"

// Sample is a small composition exercising containers, symmetry, masks
// and custom colors.
//
//go:embed sample.txt
var Sample string
