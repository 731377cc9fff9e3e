package input

import (
	"fmt"
	"os"
	"os/exec"
)

// LoadKeymap produces the keyboard layout description offered to
// peers. A configured file wins; otherwise `xkbcomp` dumps the layout
// of the running X/XWayland display when available.
func LoadKeymap(path string) ([]byte, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read keymap file: %w", err)
		}
		return data, nil
	}

	if os.Getenv("DISPLAY") == "" {
		return nil, fmt.Errorf("no keymap file configured and no display to dump one from")
	}

	out, err := exec.Command("xkbcomp", "-xkb", os.Getenv("DISPLAY"), "-").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to dump keymap via xkbcomp: %w", err)
	}
	return out, nil
}
