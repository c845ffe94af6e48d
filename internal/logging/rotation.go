package logging

import (
	"fmt"
	"os"
	"strconv"
)

// defaultKeep is how many rotated generations of a log file are retained.
const defaultKeep = 5

// generation names the nth rotated copy of path. Generation 0 is the live
// file.
func generation(path string, n int) string {
	if n == 0 {
		return path
	}
	return path + "." + strconv.Itoa(n)
}

// rotate moves path to generation 1, ages every older generation by one and
// drops whatever falls past keep. Missing generations are skipped. The
// caller reopens the live file afterwards.
func rotate(path string, keep int) error {
	if keep < 1 {
		keep = 1
	}

	if err := os.Remove(generation(path, keep)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("logging: drop generation %d of %s: %w", keep, path, err)
	}

	for n := keep - 1; n >= 0; n-- {
		from, to := generation(path, n), generation(path, n+1)
		if err := os.Rename(from, to); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("logging: age %s: %w", from, err)
		}
	}
	return nil
}
