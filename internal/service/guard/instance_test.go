package guard

import (
	"testing"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"
)

type fakeProcess struct {
	pid  int
	name string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.name }

// TestFindOtherInstance ignores the current process and other executables.
func TestFindOtherInstance(t *testing.T) {
	t.Parallel()

	processes := []ps.Process{
		fakeProcess{pid: 1, name: "init"},
		fakeProcess{pid: 100, name: "door-guard"},
		fakeProcess{pid: 200, name: "sshd"},
	}

	_, found := findOtherInstance(processes, 100, "door-guard")
	require.False(t, found)

	processes = append(processes, fakeProcess{pid: 300, name: "door-guard"})

	pid, found := findOtherInstance(processes, 100, "door-guard")
	require.True(t, found)
	require.Equal(t, 300, pid)

	_, found = findOtherInstance(processes, 100, "")
	require.False(t, found)
}

// TestEnsureSingleInstance passes for the test binary itself.
func TestEnsureSingleInstance(t *testing.T) {
	t.Parallel()

	require.NoError(t, ensureSingleInstance())
}
