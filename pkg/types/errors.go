package types

import "errors"

var (
	// ErrConfiguration marks constants that cannot produce valid geometry,
	// such as a crop factor too large for the raw size or a zero-width
	// calibration interval.
	ErrConfiguration = errors.New("configuration error")
	// ErrMissingResource marks an image file that does not exist.
	ErrMissingResource = errors.New("missing resource")
	// ErrGeometryDegenerate marks lines that cannot be represented, such as
	// vertical lines or ill-conditioned refits after rotation.
	ErrGeometryDegenerate = errors.New("degenerate geometry")
	// ErrIndexOutOfRange marks a dataset index outside [0, Len()).
	ErrIndexOutOfRange = errors.New("index out of range")
)
