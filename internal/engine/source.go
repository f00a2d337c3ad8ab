package engine

// Source yields floats in [0, 1) that a room engine draws its hidden working
// data from. Production code uses the HMAC stream; tests substitute canned
// sequences to pin outcomes.
type Source interface {
	Float() float64
}

// Factory builds a fresh Source for one attempt at a room. The attempt number
// increments on every room init, so a retry sees a new but still reproducible
// draw sequence.
type Factory func(roomSeed string, attempt uint64) Source

// Stream is a Source backed by the HMAC-SHA256 byte stream.
type Stream struct {
	bg *ByteGenerator
}

// NewStream creates a stream positioned at cursor zero.
func NewStream(sessionSeed, roomSeed string, attempt uint64) *Stream {
	return &Stream{bg: NewByteGenerator(sessionSeed, roomSeed, attempt, 0)}
}

// Float returns the next float from the stream.
func (s *Stream) Float() float64 {
	return s.bg.NextFloat()
}

// NewFactory returns a Factory keyed to one session seed.
func NewFactory(sessionSeed string) Factory {
	return func(roomSeed string, attempt uint64) Source {
		return NewStream(sessionSeed, roomSeed, attempt)
	}
}
