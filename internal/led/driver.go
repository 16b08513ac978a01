// Package led holds the output sinks a rendered frame can be committed to.
package led

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes one frame to hardware. len(rgb) must be channels*N.
	Write(rgb []byte) error
	// Close releases resources.
	Close() error
}
