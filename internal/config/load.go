package config

import (
	"path/filepath"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. REFITGEN_NAMESPACE or
// REFITGEN_NAMING_INTERFACENAME.
const EnvPrefix = "REFITGEN"

// Load reads settings from path (YAML, JSON, TOML or a JSON ".refitter" file) on
// top of Defaults, then applies environment overrides. An empty path yields the
// defaults plus environment overrides. Unknown keys are rejected.
func Load(path string) (Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range settingKeys(reflect.TypeOf(Settings{}), "") {
		if err := v.BindEnv(key); err != nil {
			return Settings{}, errors.Wrapf(err, "bind env for %s", key)
		}
	}

	path = strings.TrimSpace(path)
	if path != "" {
		v.SetConfigFile(path)
		if strings.EqualFold(filepath.Ext(path), ".refitter") {
			v.SetConfigType("json")
		}
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, errors.WithHint(
				errors.Wrapf(err, "read config file %q", path),
				"config files may be YAML, JSON or TOML",
			)
		}
	}

	setDefaults(v, reflect.ValueOf(Defaults()), "")

	// Decode into a zero value: mapstructure reuses non-nil slices and would
	// keep the tail of a longer default list.
	var s Settings
	if err := v.UnmarshalExact(&s); err != nil {
		return Settings{}, errors.Wrapf(err, "decode config %q", path)
	}
	s.Normalize()
	if err := s.Validate(); err != nil {
		return Settings{}, errors.Wrapf(err, "config %q", path)
	}
	return s, nil
}

func setDefaults(v *viper.Viper, val reflect.Value, prefix string) {
	t := val.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct {
			setDefaults(v, val.Field(i), key)
			continue
		}
		v.SetDefault(key, val.Field(i).Interface())
	}
}

// settingKeys lists the dotted mapstructure keys of every leaf field.
func settingKeys(t reflect.Type, prefix string) []string {
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct {
			keys = append(keys, settingKeys(f.Type, key)...)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}
