package models

const (
	// Epsilon is the relative tolerance for split sums and the per-participant
	// tolerance for balance conservation.
	Epsilon = 0.01

	// NoiseFloor is the smallest amount the settlement planner will transfer.
	// Anything at or below it is treated as settled.
	NoiseFloor = 0.01
)
