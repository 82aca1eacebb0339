package cli

import (
	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"github.com/matzehuels/edgepersist/pkg/errors"
	"github.com/matzehuels/edgepersist/pkg/pipeline"
	"github.com/matzehuels/edgepersist/pkg/store"
)

// fileConfig is the TOML config file layout:
//
//	list_dir = "s3://graphs/daily"
//	names    = "redis://localhost:6379/0?key=urls"
//
//	[run]
//	filter    = "2024-"
//	buckets   = 29
//	out_dir   = "results"
//
//	[minio]
//	endpoint   = "localhost:9000"
//	access_key = "minioadmin"
type fileConfig struct {
	ListDir string            `toml:"list_dir"`
	Dir     string            `toml:"dir"`
	Names   string            `toml:"names"`
	NoCache bool              `toml:"no_cache"`
	Run     pipeline.Options  `toml:"run"`
	MinIO   store.MinIOConfig `toml:"minio"`
}

// runConfig is the effective configuration of the run command.
type runConfig struct {
	fileConfig
	configPath string
}

// loadConfig decodes path into cfg. Keys absent from the file keep the
// values already in cfg.
func loadConfig(path string, cfg *fileConfig) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "config file %s: unknown key %q", path, undecoded[0].String())
	}
	return nil
}

// resolve layers flag defaults, then the config file, then the flags set
// on the command line.
func (rc *runConfig) resolve(flags *pflag.FlagSet, fromFlags fileConfig) error {
	rc.fileConfig = fromFlags
	path := rc.configPath
	if path == "" {
		path = defaultConfigPath()
	}
	if path != "" {
		if err := loadConfig(path, &rc.fileConfig); err != nil {
			return err
		}
	}

	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("list-dir", func() { rc.ListDir = fromFlags.ListDir })
	set("dir", func() { rc.Dir = fromFlags.Dir })
	set("names", func() { rc.Names = fromFlags.Names })
	set("no-cache", func() { rc.NoCache = fromFlags.NoCache })
	set("filter", func() { rc.Run.Filter = fromFlags.Run.Filter })
	set("max-graphs", func() { rc.Run.MaxGraphs = fromFlags.Run.MaxGraphs })
	set("reference", func() { rc.Run.Reference = fromFlags.Run.Reference })
	set("buckets", func() { rc.Run.Buckets = fromFlags.Run.Buckets })
	set("threshold", func() { rc.Run.Threshold = fromFlags.Run.Threshold })
	set("out-dir", func() { rc.Run.OutDir = fromFlags.Run.OutDir })
	set("gzip", func() { rc.Run.Gzip = fromFlags.Run.Gzip })
	set("workers", func() { rc.Run.Workers = fromFlags.Run.Workers })

	if rc.ListDir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "--list-dir is required")
	}
	if rc.Dir == "" {
		rc.Dir = rc.ListDir
	}
	rc.MinIO = rc.MinIO.WithEnv()
	return nil
}
