package results

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrClosed is returned by a recorder after Close.
var ErrClosed = errors.New("results: recorder closed")

// Category grades a finding.
type Category int

const (
	// Warning marks a suspicious value the modeller should review.
	Warning Category = iota + 1
	// Error marks a value that breaks a hard rule.
	Error
)

func (c Category) String() string {
	switch c {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ParseCategory is the inverse of Category.String.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "warning":
		return Warning, nil
	case "error":
		return Error, nil
	}
	return 0, fmt.Errorf("results: unknown category %q", s)
}

// Record is one finding at one location.
type Record struct {
	Check    string
	Category Category
	// Layer names the dataset the finding belongs to, usually a file path.
	Layer   string
	X, Y    float64
	Value   float64
	Message string
}

// Recorder receives detail records. Implementations are safe for concurrent use.
type Recorder interface {
	Record(ctx context.Context, recs ...Record) error
	Records(ctx context.Context, check string) ([]Record, error)
}

// Counts tallies records per category.
func Counts(recs []Record) map[Category]int {
	out := make(map[Category]int, 2)
	for _, r := range recs {
		out[r.Category]++
	}
	return out
}

// Memory keeps records in insertion order.
type Memory struct {
	mu   sync.RWMutex
	recs []Record
}

// NewMemory returns an empty in-memory recorder.
func NewMemory() *Memory { return &Memory{} }

// Record appends recs.
func (m *Memory) Record(ctx context.Context, recs ...Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.recs = append(m.recs, recs...)
	m.mu.Unlock()
	return nil
}

// Records returns the records of check in insertion order; an empty check
// returns all of them.
func (m *Memory) Records(ctx context.Context, check string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Record
	for _, r := range m.recs {
		if check == "" || r.Check == check {
			out = append(out, r)
		}
	}
	return out, nil
}

// Checks lists the distinct check names seen, sorted.
func (m *Memory) Checks() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for _, r := range m.recs {
		if !seen[r.Check] {
			seen[r.Check] = true
			out = append(out, r.Check)
		}
	}
	sort.Strings(out)
	return out
}
