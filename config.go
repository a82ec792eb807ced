package signdict

import "go.uber.org/zap"

// Config controls the layout heuristics. All distances are in PDF
// points; the defaults were tuned against the LSCh dictionary layout.
type Config struct {
	// SeparatorMinLength is the minimum horizontal extent for a path
	// object to qualify as an entry separator (default: 100).
	SeparatorMinLength float64

	// LineEpsilon is the maximum vertical extent of a stroked path
	// still considered a horizontal line (default: 2).
	LineEpsilon float64

	// BarEpsilon is the maximum vertical extent of a thin filled
	// rectangle still considered a separator bar (default: 5).
	BarEpsilon float64

	// PositionGap is the vertical gap that opens a new image cluster
	// in the position-only attribution strategy (default: 80).
	PositionGap float64

	// ClusterGap is the vertical gap that opens a new image cluster
	// in the text-region attribution strategy (default: 30).
	ClusterGap float64

	// LineOverlap is the minimum vertical overlap ratio for two
	// characters to share a text line (default: 0.5).
	LineOverlap float64

	// BlockGap is the vertical gap between lines that closes a text
	// block, as a multiple of the median line height (default: 1.8).
	BlockGap float64

	// ExcludeWords are upper-case tokens that never open an entry:
	// section markers, known running-header words.
	ExcludeWords map[string]struct{}

	// Logger receives per-page diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultConfig returns the configuration for the standard dictionary
// layout.
func DefaultConfig() Config {
	return Config{
		SeparatorMinLength: 100,
		LineEpsilon:        2,
		BarEpsilon:         5,
		PositionGap:        80,
		ClusterGap:         30,
		LineOverlap:        0.5,
		BlockGap:           1.8,
		ExcludeWords:       defaultExcludeWords(),
		Logger:             zap.NewNop(),
	}
}

func defaultExcludeWords() map[string]struct{} {
	words := []string{
		"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
		"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
		"DICCIONARIO", "LSCH", "TABLA", "ABREVIATURAS", "SIMBOLOGÍA",
		"DE", "LA", "EL", "LAS", "LOS", "EN", "CON", "POR",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// excluded reports whether the token may not open an entry.
func (c Config) excluded(token string) bool {
	_, ok := c.ExcludeWords[token]
	return ok
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
