package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/edgepersist/pkg/errors"
	"github.com/matzehuels/edgepersist/pkg/graph"
	"github.com/matzehuels/edgepersist/pkg/histogram"
	"github.com/matzehuels/edgepersist/pkg/pipeline"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func writeTestSnapshot(t *testing.T, path string, edges ...[2]uint32) {
	t.Helper()
	b := graph.NewBuilder(4)
	for _, e := range edges {
		b.AddEdge(e[0], e[1])
	}
	if err := graph.WriteFile(path, b.Build()); err != nil {
		t.Fatal(err)
	}
}

func TestRunCommand(t *testing.T) {
	dir, out := t.TempDir(), t.TempDir()
	writeTestSnapshot(t, filepath.Join(dir, "day01.epg"), [2]uint32{1, 2}, [2]uint32{2, 3})
	writeTestSnapshot(t, filepath.Join(dir, "day02.epg.zst"), [2]uint32{1, 2})
	namesFile := filepath.Join(t.TempDir(), "names.txt")
	if err := os.WriteFile(namesFile, []byte("1 a\n2 b\n3 c\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := execute(t, "run", "--list-dir", dir, "--out-dir", out, "--names", namesFile, "--gzip=false", "--workers", "2")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "day01.epg"+pipeline.SuffixPersistent))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a b\n" {
		t.Errorf("persistent edges = %q, want %q", data, "a b\n")
	}
	for _, suffix := range []string{pipeline.SuffixCounters, pipeline.SuffixHistogram, pipeline.SuffixReport} {
		if _, err := os.Stat(filepath.Join(out, "day01.epg"+suffix)); err != nil {
			t.Errorf("missing output %s: %v", suffix, err)
		}
	}

	if err := execute(t, "hist", filepath.Join(out, "day01.epg"+pipeline.SuffixCounters)); err != nil {
		t.Errorf("hist: %v", err)
	}
	if err := execute(t, "hist", "--plain", "--n", "1", "--buckets", "2", filepath.Join(out, "day01.epg"+pipeline.SuffixCounters)); err != nil {
		t.Errorf("hist --plain: %v", err)
	}
}

func TestRunCommandRequiresListDir(t *testing.T) {
	err := execute(t, "run")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("err = %v, want INVALID_INPUT", err)
	}
}

func TestRunConfigLayering(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "edgepersist.toml")
	cfg := `list_dir = "/data/daily"

[run]
filter = "2024-"
buckets = 10
gzip = false
`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, rc runConfig)
	}{
		{
			name: "FileOverridesDefaults",
			check: func(t *testing.T, rc runConfig) {
				if rc.ListDir != "/data/daily" || rc.Dir != "/data/daily" {
					t.Errorf("dirs = %q/%q", rc.ListDir, rc.Dir)
				}
				if rc.Run.Filter != "2024-" || rc.Run.Buckets != 10 || rc.Run.Gzip {
					t.Errorf("run options = %+v", rc.Run)
				}
				if rc.Run.MaxGraphs != pipeline.DefaultMaxGraphs {
					t.Errorf("MaxGraphs = %d, want flag default", rc.Run.MaxGraphs)
				}
			},
		},
		{
			name: "ExplicitFlagsWin",
			args: []string{"--buckets", "5", "--dir", "s3://graphs/daily"},
			check: func(t *testing.T, rc runConfig) {
				if rc.Run.Buckets != 5 {
					t.Errorf("Buckets = %d, want 5", rc.Run.Buckets)
				}
				if rc.Dir != "s3://graphs/daily" || rc.ListDir != "/data/daily" {
					t.Errorf("dirs = %q/%q", rc.ListDir, rc.Dir)
				}
				if rc.Run.Filter != "2024-" {
					t.Errorf("Filter = %q, want file value", rc.Run.Filter)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var flags fileConfig
			fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
			fs.StringVar(&flags.Dir, "dir", "", "")
			fs.StringVar(&flags.ListDir, "list-dir", "", "")
			fs.IntVar(&flags.Run.Buckets, "buckets", pipeline.DefaultBuckets, "")
			fs.IntVar(&flags.Run.MaxGraphs, "max-graphs", pipeline.DefaultMaxGraphs, "")
			fs.BoolVar(&flags.Run.Gzip, "gzip", true, "")
			if err := fs.Parse(tt.args); err != nil {
				t.Fatal(err)
			}

			rc := runConfig{configPath: cfgPath}
			if err := rc.resolve(fs, flags); err != nil {
				t.Fatalf("resolve: %v", err)
			}
			tt.check(t, rc)
		})
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[run]\nbuckts = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var cfg fileConfig
	if err := loadConfig(path, &cfg); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("err = %v, want INVALID_INPUT", err)
	}

	if err := os.WriteFile(path, []byte("[run\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := loadConfig(path, &cfg); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Fatalf("err = %v, want INVALID_FORMAT", err)
	}
}

func TestConvertAndStats(t *testing.T) {
	dir := t.TempDir()
	mtx := filepath.Join(dir, "day01.mtx")
	if err := os.WriteFile(mtx, []byte("%%MatrixMarket matrix coordinate pattern general\n3 3 2\n1 2\n2 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	bin := filepath.Join(dir, "day01.epg.zst")
	if err := execute(t, "convert", mtx, bin, "--nodes", "8"); err != nil {
		t.Fatalf("convert: %v", err)
	}
	g, err := graph.ReadFile(bin)
	if err != nil {
		t.Fatal(err)
	}
	if g.NumVertices() != 8 || g.NumEdges() != 2 {
		t.Errorf("converted graph = %d vertices, %d edges", g.NumVertices(), g.NumEdges())
	}

	txt := filepath.Join(dir, "day01.txt.gz")
	if err := execute(t, "convert", bin, txt, "--format", graph.FormatEdgeList); err != nil {
		t.Fatalf("convert back: %v", err)
	}
	back, err := readSnapshot(txt, graph.FormatEdgeList, 8)
	if err != nil {
		t.Fatal(err)
	}
	if back.NumEdges() != 2 {
		t.Errorf("round trip edges = %d, want 2", back.NumEdges())
	}

	if err := execute(t, "stats", "--no-spinner", bin); err != nil {
		t.Errorf("stats: %v", err)
	}
	if err := execute(t, "stats", "--json", "--dir", dir, "day01.epg.zst"); err != nil {
		t.Errorf("stats --json: %v", err)
	}
	if err := execute(t, "stats", "--no-spinner", filepath.Join(dir, "missing.epg")); !errors.Is(err, errors.ErrCodeLoad) {
		t.Errorf("stats missing: err = %v, want LOAD_ERROR", err)
	}
}

func TestConvertRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.epg")
	writeTestSnapshot(t, in, [2]uint32{0, 1})

	err := execute(t, "convert", in, filepath.Join(dir, "out.txt"), "--format", "graphml")
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Fatalf("err = %v, want UNSUPPORTED", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out.txt")); !os.IsNotExist(err) {
		t.Errorf("output written despite unknown format: %v", err)
	}
}

func TestCompletion(t *testing.T) {
	complete := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		root := New(io.Discard, log.InfoLevel).RootCommand()
		root.SetArgs(args)
		root.SetOut(&out)
		root.SetErr(io.Discard)
		if err := root.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		return out.String()
	}

	got := complete(cobra.ShellCompRequestCmd, "convert", "in.mtx", "out.epg", "--format", "")
	for _, want := range []string{graph.FormatMatrixMarket, graph.FormatEdgeList} {
		if !strings.Contains(got, want) {
			t.Errorf("--format completions %q missing %q", got, want)
		}
	}

	if script := complete("completion", "bash"); !strings.Contains(script, "edgepersist") {
		t.Errorf("bash completion script does not mention the program")
	}
}

func TestCatalogCommand(t *testing.T) {
	dir := t.TempDir()
	writeTestSnapshot(t, filepath.Join(dir, "a.epg"))
	writeTestSnapshot(t, filepath.Join(dir, "b.epg"))

	if err := execute(t, "catalog", dir, "--reference", "1"); err != nil {
		t.Errorf("catalog: %v", err)
	}
	if err := execute(t, "catalog", filepath.Join(dir, "missing")); !errors.Is(err, errors.ErrCodeCatalog) {
		t.Errorf("err = %v, want CATALOG_ERROR", err)
	}
}

func TestIsText(t *testing.T) {
	tests := map[string]bool{
		"day01.mtx":     true,
		"day01.txt.gz":  true,
		"edges.edges":   true,
		"day01.epg":     false,
		"day01.epg.zst": false,
		"day01.lz4":     false,
	}
	for path, want := range tests {
		if got := isText(path); got != want {
			t.Errorf("isText(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestRenderHistogram(t *testing.T) {
	h, err := histogram.Build([]uint32{0, 1, 1, 3}, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	out := renderHistogram(h)
	for _, want := range []string{"Count", "0-1", "2-3", "75.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered histogram missing %q:\n%s", want, out)
		}
	}
}
