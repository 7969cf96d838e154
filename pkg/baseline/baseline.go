// Package baseline suppresses differences that were accepted before and keeps
// track of which accepted entries still match something.
package baseline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dotnet/arcade-sub016/pkg/models"
	"go.uber.org/zap"
)

// reportPrefixes are lines a report writes around differences. They are
// skipped so a previous report can be fed back verbatim.
var reportPrefixes = []string{
	models.AssemblyHeaderPrefix,
	models.SetHeaderPrefix,
	models.TotalIssuesPrefix,
	models.UnusedBaselineHeader,
}

// Entry is one accepted difference, either a rule id or the exact string
// form of a difference.
type Entry struct {
	Text   string
	Source string
	Line   int
}

func (e Entry) String() string {
	return e.Text
}

// Suppressor removes baselined differences. It is not safe for concurrent
// use; the writer drives it from a single goroutine.
type Suppressor struct {
	logger  *zap.Logger
	entries []Entry
	index   map[string]int
	used    []bool
}

func New(logger *zap.Logger) *Suppressor {
	return &Suppressor{logger: logger, index: make(map[string]int)}
}

// AddFile loads every entry of a baseline file. A missing file is a fatal
// setup error.
func (s *Suppressor) AddFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.NewAppError(models.ErrMissingFile, fmt.Errorf("baseline file %s: %w", path, err))
		}
		return err
	}
	defer f.Close()
	before := len(s.entries)
	if err := s.Read(f, path); err != nil {
		return fmt.Errorf("failed to read baseline file %s: %w", path, err)
	}
	s.logger.Debug("loaded baseline", zap.String("path", path), zap.Int("entries", len(s.entries)-before))
	return nil
}

// Read parses baseline entries from r. source names r in unused entry reports.
func (s *Suppressor) Read(r io.Reader, source string) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := normalize(sc.Text())
		if text == "" {
			continue
		}
		s.add(Entry{Text: text, Source: source, Line: line})
	}
	return sc.Err()
}

// normalize drops the comment and report decoration of one baseline line.
func normalize(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	for _, p := range reportPrefixes {
		if strings.HasPrefix(line, p) {
			return ""
		}
	}
	return line
}

func (s *Suppressor) add(e Entry) {
	if _, ok := s.index[e.Text]; ok {
		return
	}
	s.index[e.Text] = len(s.entries)
	s.entries = append(s.entries, e)
	s.used = append(s.used, false)
}

// Len returns the number of distinct entries.
func (s *Suppressor) Len() int {
	return len(s.entries)
}

// Include reports whether d survives the baseline. The rule id is looked up
// first, then the exact string form; a hit marks that entry as used.
func (s *Suppressor) Include(d models.Difference) bool {
	if i, ok := s.index[d.ID]; ok {
		s.used[i] = true
		return false
	}
	if i, ok := s.index[d.String()]; ok {
		s.used[i] = true
		return false
	}
	return true
}

// Unused returns the entries no difference matched, in load order.
func (s *Suppressor) Unused() []Entry {
	var out []Entry
	for i, e := range s.entries {
		if !s.used[i] {
			out = append(out, e)
		}
	}
	return out
}

// Reset forgets which entries were used.
func (s *Suppressor) Reset() {
	for i := range s.used {
		s.used[i] = false
	}
}
