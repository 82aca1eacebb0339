// Package names resolves dense vertex ids to external identifiers.
//
// Snapshots store vertices as dense uint32 ids. Exported edges are written
// using the identifiers the ids were assigned from (URL hashes in the daily
// web-graph collection), looked up through a [Resolver]. Three resolvers
// are provided:
//
//   - [Map]: an in-memory table loaded from a "<id> <name>" file
//   - [Identity]: the decimal id itself
//   - [Redis]: a hash in Redis, one field per id
package names

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/edgepersist/pkg/errors"
)

// Resolver maps a vertex id to its external name.
//
// A missing id returns ok == false with a nil error. A non-nil error means
// the backend itself failed and the lookup cannot be trusted.
type Resolver interface {
	Name(ctx context.Context, id uint32) (name string, ok bool, err error)
}

// Identity resolves every id to its decimal form.
type Identity struct{}

// Name implements Resolver.
func (Identity) Name(_ context.Context, id uint32) (string, bool, error) {
	return strconv.FormatUint(uint64(id), 10), true, nil
}

// Map is an in-memory id to name table.
type Map map[uint32]string

// Name implements Resolver.
func (m Map) Name(_ context.Context, id uint32) (string, bool, error) {
	s, ok := m[id]
	return s, ok, nil
}

// Parse reads "<id> <name>" lines. Blank lines and lines starting with '#'
// are ignored. The name is the rest of the line after the first run of
// whitespace; later entries for the same id replace earlier ones.
func Parse(r io.Reader) (Map, error) {
	m := make(Map)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		idText, name, ok := strings.Cut(text, " ")
		if !ok {
			idText, name, ok = strings.Cut(text, "\t")
		}
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: expected \"<id> <name>\"", line)
		}
		id, err := strconv.ParseUint(idText, 10, 32)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d: bad id %q", line, idText)
		}
		m[uint32(id)] = name
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read names: %w", err)
	}
	return m, nil
}

// LoadFile reads a name table from path, gunzipping when it ends in ".gz".
func LoadFile(path string) (Map, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "names file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "names file %s", path)
		}
		defer zr.Close()
		r = zr
	}
	m, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
