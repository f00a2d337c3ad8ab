package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"math"
)

// ByteGenerator produces a deterministic byte stream using HMAC-SHA256.
// Every "random" quantity in the game (biased die faces, measurement noise,
// detector correlations, tunneling attempts) is drawn from this stream so a
// whole playthrough can be replayed from its seeds.
type ByteGenerator struct {
	sessionSeed  string
	roomSeed     string
	attempt      uint64
	currentRound uint64
	currentPos   int
	buffer       [32]byte
}

// NewByteGenerator creates a generator positioned at the given cursor.
func NewByteGenerator(sessionSeed, roomSeed string, attempt uint64, cursor uint64) *ByteGenerator {
	bg := &ByteGenerator{
		sessionSeed:  sessionSeed,
		roomSeed:     roomSeed,
		attempt:      attempt,
		currentRound: cursor / 32,
		currentPos:   int(cursor % 32),
	}

	bg.generateRound()

	return bg
}

// Next returns the next byte from the generator.
func (bg *ByteGenerator) Next() byte {
	if bg.currentPos >= 32 {
		bg.currentRound++
		bg.currentPos = 0
		bg.generateRound()
	}

	b := bg.buffer[bg.currentPos]
	bg.currentPos++
	return b
}

// NextFloat generates the next float in [0, 1) using exactly 4 bytes.
func (bg *ByteGenerator) NextFloat() float64 {
	b0 := bg.Next()
	b1 := bg.Next()
	b2 := bg.Next()
	b3 := bg.Next()

	return bytesToFloat([4]byte{b0, b1, b2, b3})
}

func (bg *ByteGenerator) generateRound() {
	h := hmac.New(sha256.New, []byte(bg.sessionSeed))
	message := fmt.Sprintf("%s:%d:%d", bg.roomSeed, bg.attempt, bg.currentRound)
	h.Write([]byte(message))
	copy(bg.buffer[:], h.Sum(nil))
}

// bytesToFloat converts exactly 4 bytes to a float64 in [0, 1).
func bytesToFloat(bytes [4]byte) float64 {
	result := 0.0
	for i, b := range bytes {
		divider := math.Pow(256, float64(i+1))
		result += float64(b) / divider
	}
	return result
}

// Floats generates count floats for the given room attempt starting at cursor.
func Floats(sessionSeed, roomSeed string, attempt uint64, cursor uint64, count int) []float64 {
	bg := NewByteGenerator(sessionSeed, roomSeed, attempt, cursor)
	floats := make([]float64, count)

	for i := 0; i < count; i++ {
		floats[i] = bg.NextFloat()
	}

	return floats
}
