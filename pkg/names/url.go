package names

import (
	"context"
	"io"
	"net/url"
	"strings"
)

// Open returns a resolver for loc: "" selects [Identity], a redis:// or
// rediss:// URL selects [Redis], anything else is read as a names file.
// The returned closer releases the backend and is never nil.
func Open(ctx context.Context, loc string) (Resolver, io.Closer, error) {
	switch {
	case loc == "":
		return Identity{}, nopCloser{}, nil
	case strings.HasPrefix(loc, "redis://"), strings.HasPrefix(loc, "rediss://"):
		r, err := DialRedis(ctx, loc)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	default:
		m, err := LoadFile(loc)
		if err != nil {
			return nil, nil, err
		}
		return m, nopCloser{}, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func splitKey(rawURL string) (string, string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, ""
	}
	q := u.Query()
	key := q.Get("key")
	q.Del("key")
	u.RawQuery = q.Encode()
	return u.String(), key
}
