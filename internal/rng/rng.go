package rng

// Generator provides a simple random number
type Generator interface {
	// Intn will return a random number up to but not including n
	Intn(n int) int
}

// Fixed always returns the same value, for deterministic tests
type Fixed int

// Intn returns the fixed value
func (f Fixed) Intn(int) int {
	return int(f)
}
