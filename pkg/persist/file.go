package persist

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
)

// WriteCounters writes values as little-endian uint32s in offset order.
func WriteCounters(w io.Writer, values []uint32) error {
	bw := bufio.NewWriterSize(w, 1<<16)
	if err := binary.Write(bw, binary.LittleEndian, values); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteCountersFile writes values to path.
func WriteCountersFile(path string, values []uint32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCounters(f, values); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// CountersFile is a read-only, memory-mapped counters file.
type CountersFile struct {
	f *os.File
	m mmap.MMap
}

// OpenCountersFile maps path. The file size must be a multiple of 4.
func OpenCountersFile(path string) (*CountersFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size()%4 != 0 {
		f.Close()
		return nil, fmt.Errorf("%s: size %d is not a whole number of counters", path, info.Size())
	}
	// Zero-length files cannot be mapped.
	if info.Size() == 0 {
		return &CountersFile{f: f}, nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	return &CountersFile{f: f, m: m}, nil
}

// Len returns the number of counters in the file.
func (cf *CountersFile) Len() int { return len(cf.m) / 4 }

// Get returns the counter at offset k.
func (cf *CountersFile) Get(k int) uint32 {
	return binary.LittleEndian.Uint32(cf.m[4*k:])
}

// Values copies all counters out of the mapping.
func (cf *CountersFile) Values() []uint32 {
	out := make([]uint32, cf.Len())
	for i := range out {
		out[i] = cf.Get(i)
	}
	return out
}

// Close unmaps and closes the file.
func (cf *CountersFile) Close() error {
	if cf.m != nil {
		if err := cf.m.Unmap(); err != nil {
			cf.f.Close()
			return err
		}
	}
	return cf.f.Close()
}
