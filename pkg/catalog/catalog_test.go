package catalog

import (
	"context"
	stderrors "errors"
	"slices"
	"testing"

	"github.com/matzehuels/edgepersist/pkg/errors"
)

func staticLister(names ...string) Lister {
	return ListerFunc(func(context.Context) ([]string, error) { return names, nil })
}

func TestResolve(t *testing.T) {
	listing := []string{"day03", "day01", ".hidden", "other", "day02", "day01", "day04"}

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "EmptyFilterMatchesAll",
			opts: Options{},
			want: []string{"day01", "day02", "day03", "day04", "other"},
		},
		{
			name: "PrefixFilter",
			opts: Options{Prefix: "day"},
			want: []string{"day01", "day02", "day03", "day04"},
		},
		{
			name: "Capped",
			opts: Options{Prefix: "day", Max: 2},
			want: []string{"day01", "day02"},
		},
		{
			name: "Unlimited",
			opts: Options{Max: -1},
			want: []string{"day01", "day02", "day03", "day04", "other"},
		},
		{
			name: "NoMatch",
			opts: Options{Prefix: "zzz"},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Resolve(context.Background(), staticLister(listing...), tt.opts)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got := c.IDs(); !slices.Equal(got, tt.want) {
				t.Errorf("IDs = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveUnreadableListing(t *testing.T) {
	l := ListerFunc(func(context.Context) ([]string, error) {
		return nil, stderrors.New("permission denied")
	})
	_, err := Resolve(context.Background(), l, Options{})
	if !errors.Is(err, errors.ErrCodeCatalog) {
		t.Fatalf("err = %v, want CATALOG_ERROR", err)
	}
}

func TestResolveRejectsBadPrefix(t *testing.T) {
	_, err := Resolve(context.Background(), staticLister("a"), Options{Prefix: "../"})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("err = %v, want INVALID_INPUT", err)
	}
}

func TestReferenceAndComparisons(t *testing.T) {
	c := New("a", "b", "a", "c")
	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}

	ref, err := c.Reference(1)
	if err != nil || ref != "b" {
		t.Errorf("Reference(1) = %q, %v", ref, err)
	}
	if got := c.Comparisons(1); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("Comparisons(1) = %v", got)
	}

	if _, err := c.Reference(3); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Reference(3) err = %v, want INVALID_INPUT", err)
	}
	if _, err := c.Reference(-1); err == nil {
		t.Error("Reference(-1) should fail")
	}
}
