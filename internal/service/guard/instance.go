package guard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning is returned when another door-guard process drives the same peripherals.
var ErrAlreadyRunning = errors.New("another door-guard instance is running")

// ensureSingleInstance refuses to start next to a process with the same executable name.
func ensureSingleInstance() error {
	processes, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	self := os.Getpid()
	name := filepath.Base(os.Args[0])

	for _, p := range processes {
		if p.Pid() == self {
			name = p.Executable()
			break
		}
	}

	if pid, found := findOtherInstance(processes, self, name); found {
		return fmt.Errorf("%w: pid %d", ErrAlreadyRunning, pid)
	}

	return nil
}

// findOtherInstance returns the pid of a process named name that is not self.
func findOtherInstance(processes []ps.Process, self int, name string) (int, bool) {
	if name == "" {
		return 0, false
	}

	for _, p := range processes {
		if p.Pid() != self && p.Executable() == name {
			return p.Pid(), true
		}
	}

	return 0, false
}
