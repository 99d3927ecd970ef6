package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/reviewlens/internal/aggregate"
	"github.com/dshills/reviewlens/internal/output"
)

// Config represents the reviewlens configuration.
type Config struct {
	Provider    string  `json:"provider" yaml:"provider"`
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
	MaxTokens   int     `json:"maxTokens" yaml:"maxTokens"`
	// Retries is the transport retry count for rate limiting and 5xx
	// responses inside one backend call. Zero disables them.
	Retries        int `json:"retries" yaml:"retries"`
	TimeoutSeconds int `json:"timeoutSeconds" yaml:"timeoutSeconds"`
	// MaxAttempts bounds classification attempts per review when the model
	// returns an invalid response.
	MaxAttempts int `json:"maxAttempts" yaml:"maxAttempts"`

	DataDir     string `json:"dataDir" yaml:"dataDir"`
	Category    string `json:"category" yaml:"category"`
	NumReviews  int    `json:"numReviews" yaml:"numReviews"`
	ScanReviews int    `json:"scanReviews" yaml:"scanReviews"`
	MinReviews  int    `json:"minReviews" yaml:"minReviews"`
	MaxWords    int    `json:"maxWords" yaml:"maxWords"`
	MixedPolicy string `json:"mixedPolicy" yaml:"mixedPolicy"`
	SeedVocab   string `json:"seedVocab,omitempty" yaml:"seedVocab,omitempty"`
	Cleanup     bool   `json:"cleanup" yaml:"cleanup"`

	// OutputDir is a local directory or an s3://bucket/prefix URL.
	OutputDir  string   `json:"outputDir" yaml:"outputDir"`
	OutputName string   `json:"outputName,omitempty" yaml:"outputName,omitempty"`
	Format     string   `json:"format" yaml:"format"`
	Artifacts  []string `json:"artifacts" yaml:"artifacts"`
	SQLitePath string   `json:"sqlitePath,omitempty" yaml:"sqlitePath,omitempty"`

	S3    S3Config    `json:"s3" yaml:"s3"`
	Cache CacheConfig `json:"cache" yaml:"cache"`
}

// S3Config configures uploads when OutputDir is an S3 URL.
type S3Config struct {
	Region       string `json:"region,omitempty" yaml:"region,omitempty"`
	Profile      string `json:"profile,omitempty" yaml:"profile,omitempty"`
	UsePathStyle bool   `json:"usePathStyle,omitempty" yaml:"usePathStyle,omitempty"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled    bool        `json:"enabled" yaml:"enabled"`
	Backend    string      `json:"backend" yaml:"backend"`
	Dir        string      `json:"dir,omitempty" yaml:"dir,omitempty"`
	TTLSeconds int         `json:"ttlSeconds" yaml:"ttlSeconds"`
	Redis      RedisConfig `json:"redis" yaml:"redis"`
}

// RedisConfig locates the Redis server for the redis cache backend.
type RedisConfig struct {
	Addr     string `json:"addr,omitempty" yaml:"addr,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db,omitempty" yaml:"db,omitempty"`
}

// FieldError reports an invalid configuration value.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid config %s %q: %s", e.Field, e.Value, e.Reason)
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:       "huggingface",
		Model:          "mistralai/Mistral-7B-Instruct-v0.2",
		MaxTokens:      2048,
		Retries:        3,
		TimeoutSeconds: 120,
		MaxAttempts:    3,
		DataDir:        "data",
		Category:       "Clothing_Shoes_and_Jewelry",
		NumReviews:     5,
		ScanReviews:    100000,
		MinReviews:     100,
		MaxWords:       100,
		MixedPolicy:    string(aggregate.MixedBoth),
		OutputDir:      "Results",
		Format:         output.FormatText,
		Artifacts:      []string{output.ArtifactCSV},
		Cache: CacheConfig{
			Enabled:    true,
			Backend:    "file",
			TTLSeconds: 86400,
			Redis:      RedisConfig{Addr: "localhost:6379"},
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for reviewlens.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "reviewlens"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "reviewlens"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "reviewlens"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "reviewlens"), nil
	default:
		return filepath.Join(home, ".config", "reviewlens"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the default config file. Returns zero Config
// and nil error if the file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return loadPath(path, false)
}

// loadPath decodes a JSON or YAML (.yaml/.yml) file. A missing file is an
// error only when required is set.
func loadPath(path string, required bool) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags and uses SetField keys; empty values
// are ignored.
func Load(overrides map[string]string) (Config, error) {
	return LoadFrom("", overrides)
}

// LoadFrom is Load with an explicit config file. An empty path means the
// default config file, which may be absent.
func LoadFrom(path string, overrides map[string]string) (Config, error) {
	cfg := Default()

	var (
		fileCfg Config
		err     error
	)
	if path != "" {
		fileCfg, err = loadPath(path, true)
	} else {
		fileCfg, err = LoadFile()
	}
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate rejects values the pipeline cannot run with.
func (c Config) Validate() error {
	if _, err := aggregate.ParseMixedPolicy(c.MixedPolicy); err != nil {
		return &FieldError{Field: "mixedPolicy", Value: c.MixedPolicy, Reason: "must be one of both, neither, positive, negative"}
	}
	if !slices.Contains(output.Formats, c.Format) {
		return &FieldError{Field: "format", Value: c.Format, Reason: "must be one of " + strings.Join(output.Formats, ", ")}
	}
	for _, a := range c.Artifacts {
		if !slices.Contains(output.ArtifactFormats, a) {
			return &FieldError{Field: "artifacts", Value: a, Reason: "must be one of " + strings.Join(output.ArtifactFormats, ", ")}
		}
	}
	positive := []struct {
		field string
		value int
	}{
		{"maxAttempts", c.MaxAttempts},
		{"numReviews", c.NumReviews},
		{"maxWords", c.MaxWords},
		{"minReviews", c.MinReviews},
		{"scanReviews", c.ScanReviews},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return &FieldError{Field: p.field, Value: strconv.Itoa(p.value), Reason: "must be positive"}
		}
	}
	if c.Retries < 0 {
		return &FieldError{Field: "retries", Value: strconv.Itoa(c.Retries), Reason: "must not be negative"}
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return &FieldError{Field: "temperature", Value: strconv.FormatFloat(c.Temperature, 'g', -1, 64), Reason: "must be between 0 and 2"}
	}
	if c.Category == "" {
		return &FieldError{Field: "category", Reason: "must not be empty"}
	}
	if c.Cache.Backend != "file" && c.Cache.Backend != "redis" {
		return &FieldError{Field: "cache.backend", Value: c.Cache.Backend, Reason: "must be file or redis"}
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Cache.Redis.Password != "" {
		c.Cache.Redis.Password = "********"
	}
	c.Artifacts = slices.Clone(c.Artifacts)
	return c
}

func mergeFile(dst *Config, src Config) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}

	setString(&dst.Provider, src.Provider)
	setString(&dst.Model, src.Model)
	if src.Temperature > 0 {
		dst.Temperature = src.Temperature
	}
	setInt(&dst.MaxTokens, src.MaxTokens)
	setInt(&dst.Retries, src.Retries)
	setInt(&dst.TimeoutSeconds, src.TimeoutSeconds)
	setInt(&dst.MaxAttempts, src.MaxAttempts)
	setString(&dst.DataDir, src.DataDir)
	setString(&dst.Category, src.Category)
	setInt(&dst.NumReviews, src.NumReviews)
	setInt(&dst.ScanReviews, src.ScanReviews)
	setInt(&dst.MinReviews, src.MinReviews)
	setInt(&dst.MaxWords, src.MaxWords)
	setString(&dst.MixedPolicy, src.MixedPolicy)
	setString(&dst.SeedVocab, src.SeedVocab)
	dst.Cleanup = src.Cleanup || dst.Cleanup
	setString(&dst.OutputDir, src.OutputDir)
	setString(&dst.OutputName, src.OutputName)
	setString(&dst.Format, src.Format)
	if len(src.Artifacts) > 0 {
		dst.Artifacts = src.Artifacts
	}
	setString(&dst.SQLitePath, src.SQLitePath)

	setString(&dst.S3.Region, src.S3.Region)
	setString(&dst.S3.Profile, src.S3.Profile)
	dst.S3.UsePathStyle = src.S3.UsePathStyle || dst.S3.UsePathStyle

	setString(&dst.Cache.Backend, src.Cache.Backend)
	setString(&dst.Cache.Dir, src.Cache.Dir)
	setInt(&dst.Cache.TTLSeconds, src.Cache.TTLSeconds)
	setString(&dst.Cache.Redis.Addr, src.Cache.Redis.Addr)
	setString(&dst.Cache.Redis.Password, src.Cache.Redis.Password)
	setInt(&dst.Cache.Redis.DB, src.Cache.Redis.DB)
	// A file that sets anything is trusted for the cache switch; JSON cannot
	// tell an unset bool from false.
	if src.Provider != "" || src.Model != "" || src.Cache.Backend != "" {
		dst.Cache.Enabled = src.Cache.Enabled
	}
}

// envKeys maps environment variables to SetField keys.
var envKeys = []struct {
	env string
	key string
}{
	{"REVIEWLENS_PROVIDER", "provider"},
	{"REVIEWLENS_MODEL", "model"},
	{"REVIEWLENS_TEMPERATURE", "temperature"},
	{"REVIEWLENS_RETRIES", "retries"},
	{"REVIEWLENS_MAX_ATTEMPTS", "maxAttempts"},
	{"REVIEWLENS_DATA_DIR", "dataDir"},
	{"REVIEWLENS_CATEGORY", "category"},
	{"REVIEWLENS_NUM_REVIEWS", "numReviews"},
	{"REVIEWLENS_MIXED_POLICY", "mixedPolicy"},
	{"REVIEWLENS_OUTPUT_DIR", "outputDir"},
	{"REVIEWLENS_FORMAT", "format"},
	{"REVIEWLENS_SQLITE", "sqlitePath"},
	{"REVIEWLENS_CACHE_BACKEND", "cache.backend"},
	{"REVIEWLENS_REDIS_ADDR", "cache.redis.addr"},
	{"REVIEWLENS_REDIS_PASSWORD", "cache.redis.password"},
}

func mergeEnv(cfg *Config) error {
	for _, e := range envKeys {
		v := os.Getenv(e.env)
		if v == "" {
			continue
		}
		if err := SetField(cfg, e.key, v); err != nil {
			return fmt.Errorf("%s: %w", e.env, err)
		}
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, v := range overrides {
		if v == "" {
			continue
		}
		if err := SetField(cfg, key, v); err != nil {
			return err
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	intField := map[string]*int{
		"maxTokens":        &cfg.MaxTokens,
		"retries":          &cfg.Retries,
		"timeoutSeconds":   &cfg.TimeoutSeconds,
		"maxAttempts":      &cfg.MaxAttempts,
		"numReviews":       &cfg.NumReviews,
		"scanReviews":      &cfg.ScanReviews,
		"minReviews":       &cfg.MinReviews,
		"maxWords":         &cfg.MaxWords,
		"cache.ttlSeconds": &cfg.Cache.TTLSeconds,
		"cache.redis.db":   &cfg.Cache.Redis.DB,
	}
	stringField := map[string]*string{
		"provider":             &cfg.Provider,
		"model":                &cfg.Model,
		"dataDir":              &cfg.DataDir,
		"category":             &cfg.Category,
		"mixedPolicy":          &cfg.MixedPolicy,
		"seedVocab":            &cfg.SeedVocab,
		"outputDir":            &cfg.OutputDir,
		"outputName":           &cfg.OutputName,
		"format":               &cfg.Format,
		"sqlitePath":           &cfg.SQLitePath,
		"s3.region":            &cfg.S3.Region,
		"s3.profile":           &cfg.S3.Profile,
		"cache.backend":        &cfg.Cache.Backend,
		"cache.dir":            &cfg.Cache.Dir,
		"cache.redis.addr":     &cfg.Cache.Redis.Addr,
		"cache.redis.password": &cfg.Cache.Redis.Password,
	}
	boolField := map[string]*bool{
		"cleanup":         &cfg.Cleanup,
		"s3.usePathStyle": &cfg.S3.UsePathStyle,
		"cache.enabled":   &cfg.Cache.Enabled,
	}

	if p, ok := intField[key]; ok {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", key, err)
		}
		*p = n
		return nil
	}
	if p, ok := stringField[key]; ok {
		*p = value
		return nil
	}
	if p, ok := boolField[key]; ok {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false: %w", key, err)
		}
		*p = b
		return nil
	}
	switch key {
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature must be a number: %w", err)
		}
		cfg.Temperature = f
	case "artifacts":
		var list []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				list = append(list, part)
			}
		}
		cfg.Artifacts = list
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
