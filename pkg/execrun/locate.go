package execrun

import (
	"fmt"
	"os"
	"os/exec"
)

// Locate resolves the executable to run. An explicit path wins and must exist;
// an empty path means auto-detect fallback on PATH.
func Locate(explicitPath string, fallback string) (string, error) {
	if explicitPath != "" {
		info, err := os.Stat(explicitPath)
		if err != nil {
			return "", fmt.Errorf("configured %s path %q: %w", fallback, explicitPath, err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("configured %s path %q is a directory", fallback, explicitPath)
		}
		return explicitPath, nil
	}
	path, err := exec.LookPath(fallback)
	if err != nil {
		return "", fmt.Errorf("%s not found on PATH: %w", fallback, err)
	}
	return path, nil
}
