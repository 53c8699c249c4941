// Package config loads cache configuration from YAML with environment
// variable expansion and decodes free-form driver options into typed configs.
package config

import (
	"io"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"
)

// Config describes one cache: which driver, how keys are prefixed and how
// values are serialized. Options are driver specific.
type Config struct {
	Driver           string         `yaml:"driver"`
	Prefix           string         `yaml:"prefix"`     // empty => none
	Serializer       string         `yaml:"serializer"` // empty => native
	DefaultTTL       Duration       `yaml:"default_ttl"`
	MaxDecode        int            `yaml:"max_decode"`        // bytes; 0 => unlimited
	MultiConcurrency int            `yaml:"multi_concurrency"` // <= 1 => sequential
	Disabled         bool           `yaml:"disabled"`
	Options          map[string]any `yaml:"options"`
}

// Duration accepts Go durations plus days and weeks ("1d", "2w3d"); a bare
// integer is seconds. "never" and "-1" mean no expiry.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	v := strings.TrimSpace(node.Value)
	switch strings.ToLower(v) {
	case "", "0":
		*d = 0
		return nil
	case "never", "-1":
		*d = Duration(-1)
		return nil
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		*d = Duration(time.Duration(n) * time.Second)
		return nil
	}
	parsed, err := str2duration.ParseDuration(v)
	if err != nil {
		return errors.Wrapf(err, "line %d: invalid duration %q", node.Line, v)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	if d < 0 {
		return "never", nil
	}
	return str2duration.String(time.Duration(d)), nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnv replaces ${VAR} patterns with environment variable values.
// Unset variables are left as-is.
func expandEnv(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := string(match[2 : len(match)-1])
		if val, ok := os.LookupEnv(varName); ok {
			return []byte(val)
		}
		return match
	})
}

// Load reads and parses a YAML config file, expanding environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return Parse(data)
}

// Parse parses YAML config bytes, expanding environment variables.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(expandEnv(data), cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	cfg.Driver = strings.ToLower(strings.TrimSpace(cfg.Driver))
	return cfg, nil
}

// Merge overlays src onto dst recursively and returns a new map. Nested maps
// are merged key by key; any other value in src replaces the one in dst.
// Neither input is modified.
func Merge(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		sm, sok := v.(map[string]any)
		dm, dok := out[k].(map[string]any)
		if sok && dok {
			out[k] = Merge(dm, sm)
			continue
		}
		out[k] = v
	}
	return out
}

var durationType = reflect.TypeOf(time.Duration(0))

// Decode fills out (a pointer to a struct with yaml tags) from opts.
// Unknown keys are rejected. String values for time.Duration fields may use
// day/week units.
func Decode(opts map[string]any, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return errors.Newf("decode target must be a struct pointer, got %T", out)
	}
	opts, err := normalizeDurations(opts, rv.Elem().Type())
	if err != nil {
		return err
	}
	raw, err := yaml.Marshal(opts)
	if err != nil {
		return errors.Wrap(err, "encode options")
	}
	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrap(err, "decode options")
	}
	return nil
}

// normalizeDurations rewrites values of time.Duration fields into the
// string form yaml.v3 accepts. Strings may use day/week units; bare numbers
// are seconds.
func normalizeDurations(opts map[string]any, t reflect.Type) (map[string]any, error) {
	var out map[string]any
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Type != durationType {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			continue
		}
		v, ok := opts[name]
		if !ok {
			continue
		}
		d, err := toDuration(v)
		if err != nil {
			return nil, errors.Wrapf(err, "option %q", name)
		}
		if out == nil {
			out = Merge(opts, nil)
		}
		out[name] = d.String()
	}
	if out == nil {
		return opts, nil
	}
	return out, nil
}

func toDuration(v any) (time.Duration, error) {
	switch x := v.(type) {
	case time.Duration:
		return x, nil
	case Duration:
		return time.Duration(x), nil
	case string:
		return str2duration.ParseDuration(strings.TrimSpace(x))
	case int:
		return time.Duration(x) * time.Second, nil
	case int64:
		return time.Duration(x) * time.Second, nil
	case uint64:
		return time.Duration(x) * time.Second, nil
	case float64:
		return time.Duration(x * float64(time.Second)), nil
	}
	return 0, errors.Newf("unsupported duration value %v (%T)", v, v)
}
