// Package idgen generates and validates the identifiers used for chains and
// habits.
package idgen

import (
	"crypto/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habitchain/internal/constants"
	"github.com/julianstephens/habitchain/internal/logger"
)

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ExistsFunc reports whether id is already in use.
type ExistsFunc func(id string) bool

type Generator struct {
	exists ExistsFunc
	now    func() time.Time
}

// New returns a generator that checks candidates against exists. A nil
// probe disables collision checks.
func New(exists ExistsFunc) *Generator {
	return &Generator{exists: exists, now: time.Now}
}

// randomID renders each random byte in base36 and keeps the first
// IDTargetLength characters.
func randomID() string {
	buf := make([]byte, constants.IDRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	var sb strings.Builder
	for _, b := range buf {
		sb.WriteString(strconv.FormatInt(int64(b), 36))
	}
	id := sb.String()
	if len(id) > constants.IDTargetLength {
		id = id[:constants.IDTargetLength]
	}
	return id
}

// Generate returns a fresh id. After IDMaxAttempts collisions it appends the
// base36 unix-millis timestamp to a new random id.
func (g *Generator) Generate() string {
	id := randomID()
	if g.exists == nil {
		return id
	}
	for attempt := 0; attempt < constants.IDMaxAttempts; attempt++ {
		if !g.exists(id) {
			return id
		}
		id = randomID()
	}
	logger.Warn("ID collision retries exhausted, falling back to timestamp suffix")
	return randomID() + strconv.FormatInt(g.now().UnixMilli(), 36)
}

// Valid reports whether id has an acceptable length and charset.
func Valid(id string) bool {
	if len(id) < constants.IDMinLength || len(id) > constants.IDMaxLength {
		return false
	}
	return idPattern.MatchString(id)
}
