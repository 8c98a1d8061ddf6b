// Package lock guards a data directory against concurrent writers with a
// lockfile validated against the live process table.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/habitchain/internal/constants"
	"github.com/julianstephens/habitchain/internal/logger"
	"github.com/julianstephens/habitchain/internal/utils"
)

// ErrLocked is returned when a live habitchain process holds the lock.
var ErrLocked = errors.New("another habitchain process is using this data directory")

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
	nowFunc         = time.Now
)

// Lock is a held lockfile.
type Lock struct {
	path string
}

// Path returns the lockfile location inside dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, constants.LockfileName)
}

// Acquire takes the lock for dataDir. A lockfile left behind by a process
// that is no longer running is taken over.
func Acquire(dataDir string) (*Lock, error) {
	path := Path(dataDir)
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if err == nil {
			content := fmt.Sprintf("%d|%s", getpidFunc(), utils.FormatTimestamp(nowFunc()))
			_, werr := f.WriteString(content)
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(path)
				return nil, fmt.Errorf("failed to write lockfile: %w", errors.Join(werr, cerr))
			}
			return &Lock{path: path}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("failed to create lockfile: %w", err)
		}

		holder, err := readHolder(path)
		if err == nil {
			return nil, fmt.Errorf("%w (pid %d since %s)", ErrLocked, holder.pid, holder.startedAt)
		}
		logger.Warn("Removing stale lockfile", "path", path, "reason", err)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	}
	return nil, ErrLocked
}

// Release removes the lockfile. It is safe to call on a nil Lock.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

type holder struct {
	pid       int
	startedAt string
}

// readHolder parses the lockfile and returns its holder if that process is
// still a running habitchain. Any error means the lock is stale.
func readHolder(path string) (holder, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return holder{}, err
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 2 {
		return holder{}, errors.New("lockfile is malformed")
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return holder{}, errors.New("invalid process ID in lockfile")
	}
	if pid == getpidFunc() {
		return holder{}, errors.New("lockfile belongs to this process")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return holder{}, fmt.Errorf("process %d is not running", pid)
	}
	if !strings.HasPrefix(process.Executable(), constants.AppName) {
		return holder{}, fmt.Errorf("process with PID %d is not %s (is %s)", pid, constants.AppName, process.Executable())
	}
	return holder{pid: pid, startedAt: parts[1]}, nil
}
