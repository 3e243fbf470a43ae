package forge

import "fmt"

// Error types for Forge handling.
var (
	ErrUnknownForgeVersion = fmt.Errorf("unknown forge version")
	ErrNoForgeModule       = fmt.Errorf("server has no forge module")
)
