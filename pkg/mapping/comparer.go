package mapping

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dotnet/arcade-sub016/pkg/models"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Side selects one operand of a comparison.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Comparer produces the identity keys declarations are paired by. Two
// declarations of opposite sides pair when their keys are equal.
type Comparer interface {
	NamespaceKey(name string, side Side) string
	TypeKey(t *models.Type, side Side) string
	MemberKey(m *models.Member, side Side) string
	// TypeRefKey normalises a type reference such as a base type, a return
	// type or a parameter type.
	TypeRefKey(name string, side Side) string
}

// DefaultComparer pairs by full name and by name plus signature.
type DefaultComparer struct{}

func (DefaultComparer) NamespaceKey(name string, _ Side) string { return name }
func (DefaultComparer) TypeKey(t *models.Type, _ Side) string   { return t.FullName() }
func (DefaultComparer) MemberKey(m *models.Member, _ Side) string {
	return m.Signature()
}
func (DefaultComparer) TypeRefKey(name string, _ Side) string { return name }

const remapCacheSize = 4096

type remapRule struct {
	from string
	to   string
}

// RemapComparer renames left side namespaces and types before keying so
// declarations that moved between versions still pair.
type RemapComparer struct {
	rules []remapRule
	cache *lru.Cache[string, string]
}

// NewRemapComparer reads a remap file. Each line is "old -> new" where both
// sides are namespaces or full type names; '#' starts a comment.
func NewRemapComparer(path string) (*RemapComparer, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.NewAppError(models.ErrMissingFile, err)
		}
		return nil, err
	}
	defer f.Close()
	c, err := ParseRemap(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse remap file %s: %w", path, err)
	}
	return c, nil
}

func ParseRemap(r io.Reader) (*RemapComparer, error) {
	cache, err := lru.New[string, string](remapCacheSize)
	if err != nil {
		return nil, err
	}
	c := &RemapComparer{cache: cache}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		from, to, ok := strings.Cut(line, "->")
		from, to = strings.TrimSpace(from), strings.TrimSpace(to)
		if !ok || from == "" || to == "" {
			return nil, fmt.Errorf("line %d: expected 'old -> new', got %q", lineNo, line)
		}
		c.rules = append(c.rules, remapRule{from: from, to: to})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	// the most specific rule wins
	sort.SliceStable(c.rules, func(i, j int) bool {
		return len(c.rules[i].from) > len(c.rules[j].from)
	})
	return c, nil
}

// Len returns the number of remap rules.
func (c *RemapComparer) Len() int {
	return len(c.rules)
}

// Remap rewrites one dotted name. Only the left side is ever remapped.
func (c *RemapComparer) Remap(name string) string {
	if v, ok := c.cache.Get(name); ok {
		return v
	}
	out := name
	for _, r := range c.rules {
		if name == r.from {
			out = r.to
			break
		}
		if strings.HasPrefix(name, r.from) {
			if next := name[len(r.from)]; next == '.' || next == '+' || next == '`' {
				out = r.to + name[len(r.from):]
				break
			}
		}
	}
	c.cache.Add(name, out)
	return out
}

// remapRef rewrites every dotted name inside a type reference, so generic
// instantiations and arrays of moved types are remapped as well.
func (c *RemapComparer) remapRef(ref string) string {
	var b strings.Builder
	start := -1
	flush := func(end int) {
		if start >= 0 {
			b.WriteString(c.Remap(ref[start:end]))
			start = -1
		}
	}
	for i := 0; i < len(ref); i++ {
		switch ref[i] {
		case '<', '>', ',', '[', ']', '&', '*', ' ', '(', ')':
			flush(i)
			b.WriteByte(ref[i])
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(ref))
	return b.String()
}

func (c *RemapComparer) NamespaceKey(name string, side Side) string {
	if side == Right {
		return name
	}
	return c.Remap(name)
}

func (c *RemapComparer) TypeKey(t *models.Type, side Side) string {
	if side == Right {
		return t.FullName()
	}
	return c.Remap(t.FullName())
}

func (c *RemapComparer) MemberKey(m *models.Member, side Side) string {
	if side == Right {
		return m.Signature()
	}
	return m.SignatureWith(c.remapRef)
}

func (c *RemapComparer) TypeRefKey(name string, side Side) string {
	if side == Right || name == "" {
		return name
	}
	return c.remapRef(name)
}
