package idx

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID is a correlation identifier of the form "<kind>_<ulid>". It is never
// sent to the Directory Store as an entity id; entity ids are issued by the
// store itself.
type ID string

// Kind prefixes an ID so log lines show what is being correlated.
type Kind string

const (
	KindRequest Kind = "req"
	KindSession Kind = "ses"
)

// Zero is the empty ID.
const Zero ID = ""

const sep = "_"

// ErrInvalid reports a malformed ID string.
var ErrInvalid = errors.New("idx: invalid id")

var (
	globalOnce sync.Once
	global     *generator
)

// generator hands out ULIDs from a monotonic source so ids minted within the
// same millisecond still sort in creation order.
type generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func (g *generator) newAt(t time.Time) ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(t), g.entropy)
}

func initGlobal() {
	global = &generator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns a fresh ID of the given kind stamped with the current UTC time.
func New(kind Kind) ID {
	return NewAt(kind, time.Now().UTC())
}

// NewAt returns an ID of the given kind stamped with t.
func NewAt(kind Kind, t time.Time) ID {
	globalOnce.Do(initGlobal)
	u := global.newAt(t)
	return ID(string(kind) + sep + u.String())
}

// Parse validates s and returns it as an ID.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	kind, raw, ok := strings.Cut(s, sep)
	if !ok || kind == "" {
		return Zero, ErrInvalid
	}
	if _, err := ulid.ParseStrict(raw); err != nil {
		return Zero, ErrInvalid
	}
	return ID(s), nil
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool { return id == Zero }

// String returns the canonical string form.
func (id ID) String() string { return string(id) }

// Kind returns the prefix of id, or "" when id is malformed.
func (id ID) Kind() Kind {
	kind, _, ok := strings.Cut(string(id), sep)
	if !ok {
		return ""
	}
	return Kind(kind)
}

// Time extracts the embedded UTC timestamp. Malformed ids yield the zero time.
func (id ID) Time() time.Time {
	_, raw, ok := strings.Cut(string(id), sep)
	if !ok {
		return time.Time{}
	}
	u, err := ulid.ParseStrict(raw)
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}
