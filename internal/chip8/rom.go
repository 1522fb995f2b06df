package chip8

import (
	"fmt"
	"os"
)

// LoadROM reads a ROM file from disk and validates it against MaxProgramLen
// (spec §6). Both failures here are construction-time Config/IO errors
// (spec §7): the caller must never build a Chip8 core from a ROM that
// failed to load.
func LoadROM(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("chip8: could not read ROM: %w", err)
	}
	if len(data) > MaxProgramLen {
		return nil, fmt.Errorf("chip8: ROM too large: %d bytes (max %d)", len(data), MaxProgramLen)
	}
	return data, nil
}
