package region

import "fmt"

// ChunkError reports a failure confined to one chunk slot.
//
// Other slots of the same region remain readable; Chunks keeps iterating
// after yielding a ChunkError.
type ChunkError struct {
	X, Z int
	Err  error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("region: chunk (%d, %d): %v", e.X, e.Z, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

func chunkErr(slot int, err error) error {
	x, z := SlotCoords(slot)
	return &ChunkError{X: x, Z: z, Err: err}
}
