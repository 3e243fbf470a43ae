package minecraft

import "fmt"

// Error types for version metadata operations.
var (
	ErrVersionNotFound   = fmt.Errorf("version not found in manifest")
	ErrNoAssetIndex      = fmt.Errorf("version data has no asset index")
	ErrInvalidAssetEntry = fmt.Errorf("invalid asset index entry")
)
