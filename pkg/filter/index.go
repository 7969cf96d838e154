package filter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dotnet/arcade-sub016/pkg/models"
)

// TypeIndex resolves full type names across every loaded surface. The first
// assembly to define a name wins.
type TypeIndex struct {
	types map[string]*models.Type
}

func NewTypeIndex(sets ...[]*models.Assembly) *TypeIndex {
	idx := &TypeIndex{types: make(map[string]*models.Type)}
	for _, set := range sets {
		for _, asm := range set {
			idx.Add(asm)
		}
	}
	return idx
}

// Add indexes every type of asm that is not already known.
func (idx *TypeIndex) Add(asm *models.Assembly) {
	for _, t := range asm.AllTypes() {
		if t.Forwarded {
			continue
		}
		name := t.FullName()
		if _, ok := idx.types[name]; !ok {
			idx.types[name] = t
		}
	}
}

// Lookup is safe on a nil index and then never finds anything.
func (idx *TypeIndex) Lookup(fullName string) (*models.Type, bool) {
	if idx == nil {
		return nil, false
	}
	t, ok := idx.types[fullName]
	return t, ok
}

func (idx *TypeIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.types)
}

// AttributeIgnoreList holds attribute types, in DocId form, whose differences
// are not reported.
type AttributeIgnoreList struct {
	ids map[string]struct{}
}

func NewAttributeIgnoreList() *AttributeIgnoreList {
	return &AttributeIgnoreList{ids: make(map[string]struct{})}
}

// AddFile reads one DocId per line. Lines starting with '#' and blank lines
// are skipped.
func (l *AttributeIgnoreList) AddFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.NewAppError(models.ErrMissingFile, err)
		}
		return err
	}
	defer f.Close()
	if err := l.Read(f); err != nil {
		return fmt.Errorf("failed to read attribute exclusions from %s: %w", path, err)
	}
	return nil
}

func (l *AttributeIgnoreList) Read(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		l.ids[line] = struct{}{}
	}
	return sc.Err()
}

// ShouldExclude reports whether the attribute type, given by its full name,
// is on the list.
func (l *AttributeIgnoreList) ShouldExclude(typeName string) bool {
	if l == nil {
		return false
	}
	_, ok := l.ids["T:"+typeName]
	return ok
}

func (l *AttributeIgnoreList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.ids)
}
