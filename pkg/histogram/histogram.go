// Package histogram reduces persistence counters into buckets covering [0, N].
//
// The value range [0, N] holds N+1 possible counts. When B >= N+1 every
// count gets its own bucket (with N = 28 and the default 29 buckets, one
// bucket per day) and the trailing buckets lie above N and stay empty.
// Otherwise the range is split proportionally: value v falls into bucket
// v*B/(N+1), so all B buckets are non-empty and N always lands in the last
// one. Values above N, which a well-formed run never produces, are clamped
// into the last bucket so the bucket counts always sum to the number of
// input values.
package histogram

import (
	"bufio"
	"fmt"
	"io"

	"github.com/matzehuels/edgepersist/pkg/errors"
)

// DefaultBuckets matches the original daily-snapshot analysis (28
// comparison days plus zero).
const DefaultBuckets = 29

// Bucket is one histogram bin covering the inclusive range [Lo, Hi].
type Bucket struct {
	Lo    uint32 `json:"lo"`
	Hi    uint32 `json:"hi"`
	Count uint64 `json:"count"`
}

// Empty reports whether the bucket lies entirely above N.
func (b Bucket) Empty() bool { return b.Lo > b.Hi }

// Histogram is the distribution of persistence counts. Width is the span of
// the widest bucket.
type Histogram struct {
	N       uint32   `json:"n"`
	Width   uint32   `json:"width"`
	Buckets []Bucket `json:"buckets"`
}

// Build distributes values over buckets bins covering [0, n].
func Build(values []uint32, n uint32, buckets int) (Histogram, error) {
	if buckets <= 0 {
		return Histogram{}, errors.New(errors.ErrCodeInvalidInput, "bucket count must be positive, got %d", buckets)
	}
	span, b := uint64(n)+1, uint64(buckets)

	h := Histogram{N: n, Width: uint32((span + b - 1) / b), Buckets: make([]Bucket, buckets)}
	for i := range h.Buckets {
		if uint64(i) >= span {
			h.Buckets[i] = Bucket{Lo: uint32(min(uint64(i), uint64(^uint32(0)))), Hi: n}
			continue
		}
		h.Buckets[i] = Bucket{Lo: uint32(lowerBound(uint64(i), span, b)), Hi: uint32(lowerBound(uint64(i)+1, span, b) - 1)}
	}

	last := buckets - 1
	for _, v := range values {
		h.Buckets[min(bucketOf(uint64(v), span, b), last)].Count++
	}
	return h, nil
}

// bucketOf returns the bucket index of v.
func bucketOf(v, span, b uint64) int {
	if span <= b {
		return int(min(v, b-1))
	}
	return int(min(v*b/span, b-1))
}

// lowerBound returns the smallest value that falls into bucket i, or span
// when i == b.
func lowerBound(i, span, b uint64) uint64 {
	if span <= b {
		return min(i, span)
	}
	return (i*span + b - 1) / b
}

// Total returns the sum of all bucket counts.
func (h Histogram) Total() uint64 {
	var t uint64
	for _, b := range h.Buckets {
		t += b.Count
	}
	return t
}

// WriteTo writes one "lo hi count" line per bucket. Buckets above N are
// written with a "-" range.
func (h Histogram) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, b := range h.Buckets {
		var k int
		var err error
		if b.Empty() {
			k, err = fmt.Fprintf(bw, "- - %d\n", b.Count)
		} else {
			k, err = fmt.Fprintf(bw, "%d %d %d\n", b.Lo, b.Hi, b.Count)
		}
		n += int64(k)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}
