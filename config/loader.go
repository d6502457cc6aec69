package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/datakit-go/datakit/logger"
)

// FileSystem abstracts the file probes the loader performs, so tests can
// run against a fake tree.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// osFileSystem probes the real filesystem.
type osFileSystem struct{}

func (osFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (osFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// loaderConfig collects the loader options.
type loaderConfig struct {
	fs         FileSystem
	configFile string
	envFile    string
}

// LoaderOption customizes LoadConfig.
type LoaderOption func(*loaderConfig)

// WithFileSystem routes file probes through fs.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *loaderConfig) { lc.fs = fs }
}

// WithConfigFile pins the YAML config file instead of searching for it.
func WithConfigFile(path string) LoaderOption {
	return func(lc *loaderConfig) { lc.configFile = path }
}

// WithEnvFile pins the .env file instead of searching for it.
func WithEnvFile(path string) LoaderOption {
	return func(lc *loaderConfig) { lc.envFile = path }
}

// LoadConfig fills cfg for the named service. Values merge in rising
// precedence: the service config.yml, then environment variables,
// including any exported from a .env file. Both files are optional;
// when no explicit path is pinned the loader searches the usual
// locations relative to the working directory.
func LoadConfig(service string, cfg interface{}, opts ...LoaderOption) error {
	lc := loaderConfig{}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.fs == nil {
		lc.fs = osFileSystem{}
	}

	if lc.envFile == "" {
		lc.envFile = findFirst(lc.fs, envSearchPaths(service))
	}
	if lc.envFile != "" && lc.fs.Exists(lc.envFile) {
		if err := lc.fs.LoadEnv(lc.envFile); err != nil {
			logger.Warn("env file not loaded",
				logger.Fields("path", lc.envFile, logger.FieldError, err.Error()))
		}
	}

	v := viper.New()

	if lc.configFile == "" {
		lc.configFile = findFirst(lc.fs, configSearchPaths(service))
	}
	if lc.configFile != "" && lc.fs.Exists(lc.configFile) {
		v.SetConfigFile(lc.configFile)
		if err := v.ReadInConfig(); err != nil {
			logger.Warn("config file not loaded",
				logger.Fields("path", lc.configFile, logger.FieldError, err.Error()))
		}
	}

	v.AutomaticEnv()
	bindEnvironment(v)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: unmarshal for %s: %w", service, err)
	}
	return nil
}

// searchRoots lists the directories probed for config and env files:
// the service command directory, the config tree, and the root, each
// tried from the working directory and its two parents.
func searchRoots(service string) []string {
	rels := []string{
		filepath.Join("cmd", service),
		filepath.Join("config", service),
		"config",
		".",
	}
	ups := []string{".", "..", filepath.Join("..", "..")}

	roots := make([]string, 0, len(rels)*len(ups))
	for _, rel := range rels {
		for _, up := range ups {
			roots = append(roots, filepath.Clean(filepath.Join(up, rel)))
		}
	}
	return roots
}

func configSearchPaths(service string) []string {
	roots := searchRoots(service)
	paths := make([]string, 0, len(roots))
	for _, root := range roots {
		paths = append(paths, filepath.Join(root, "config.yml"))
	}
	return paths
}

// envSearchPaths prefers a service-scoped .env.<service> over a plain
// .env at every root.
func envSearchPaths(service string) []string {
	roots := searchRoots(service)
	paths := make([]string, 0, 2*len(roots))
	for _, name := range []string{".env." + service, ".env"} {
		for _, root := range roots {
			paths = append(paths, filepath.Join(root, name))
		}
	}
	return paths
}

func findFirst(fs FileSystem, paths []string) string {
	for _, path := range paths {
		if fs.Exists(path) {
			return path
		}
	}
	return ""
}

// bindEnvironment makes every current environment variable visible to
// Unmarshal under each nested key it may address. FOO_BAR_BAZ can stand
// for foo.bar.baz, foo.bar_baz, or foo_bar_baz depending on the target
// struct, so all splits are bound; Unmarshal picks the ones the struct
// declares.
func bindEnvironment(v *viper.Viper) {
	for _, entry := range os.Environ() {
		name, _, ok := strings.Cut(entry, "=")
		if !ok || name == "" {
			continue
		}
		for _, key := range envKeys(name) {
			_ = v.BindEnv(key, name)
		}
	}
}

// envKeys lists the viper keys an environment variable may address.
func envKeys(name string) []string {
	lower := strings.ToLower(name)
	parts := strings.Split(lower, "_")
	keys := []string{lower}
	for i := 1; i < len(parts); i++ {
		key := strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_")
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	if key := strings.ReplaceAll(lower, "_", "."); !slices.Contains(keys, key) {
		keys = append(keys, key)
	}
	return keys
}
