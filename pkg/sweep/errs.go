package sweep

import "errors"

var (
	// ErrNoFiles indicates that discovery found no result files under the root.
	ErrNoFiles = errors.New("sweep: no .sca files found")

	// ErrNoRoot indicates that the discovery root does not exist.
	ErrNoRoot = errors.New("sweep: result root not found")
)
