package persist

import "path/filepath"

// Persister handles I/O for a specific state type under a fixed basename.
type Persister[T any] struct {
	basename string
	codec    Codec
}

// NewPersister creates a persister with the given basename and codec.
func NewPersister[T any](basename string, codec Codec) *Persister[T] {
	return &Persister[T]{
		basename: basename,
		codec:    codec,
	}
}

// Path returns the file the persister uses inside dir.
func (p *Persister[T]) Path(dir string) string {
	return filepath.Join(dir, p.basename+p.codec.Extension())
}

// Save atomically writes state into dir.
func (p *Persister[T]) Save(dir string, state *T) error {
	return Save(p.Path(dir), p.codec, state)
}

// Load reads the state stored in dir.
func (p *Persister[T]) Load(dir string) (*T, error) {
	var state T

	err := Load(p.Path(dir), p.codec, &state)
	if err != nil {
		return nil, err
	}

	return &state, nil
}
