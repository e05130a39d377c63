// Package sysprop reads static system properties such as
// ro.product.first_api_level.
//
// Properties come from a build.prop style file (one name=value per line)
// and may be overridden by environment variables: the name upper-cased,
// dots replaced by underscores and prefixed with OVS_PROP_, so
// ro.product.first_api_level is read from OVS_PROP_RO_PRODUCT_FIRST_API_LEVEL.
package sysprop

import (
	"fmt"
	"strings"

	"github.com/magiconair/properties"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "OVS_PROP"

// Source is a synchronous read-only property lookup.
type Source interface {
	// Get returns the named property, or def when it is not set.
	Get(name, def string) string
}

// FileSource is a Source backed by a properties file and the environment.
type FileSource struct {
	props *properties.Properties
	env   *viper.Viper
}

// Open loads the properties file at path. A missing file leaves only the
// environment overrides in effect.
func Open(path string) (*FileSource, error) {
	env := viper.New()
	env.SetEnvPrefix(EnvPrefix)
	env.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	env.AutomaticEnv()

	props := properties.NewProperties()
	if path != "" {
		l := &properties.Loader{
			Encoding:         properties.UTF8,
			DisableExpansion: true,
			IgnoreMissing:    true,
		}
		p, err := l.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("parsing properties %s: %w", path, err)
		}
		props = p
	}
	return &FileSource{props: props, env: env}, nil
}

// Get returns the property value or def. The environment wins over the
// file; blank values count as unset.
func (s *FileSource) Get(name, def string) string {
	if val := strings.TrimSpace(s.env.GetString(name)); val != "" {
		return val
	}
	if val, ok := s.props.Get(name); ok {
		if val = strings.TrimSpace(val); val != "" {
			return val
		}
	}
	return def
}

// Map is a fixed in-memory Source.
type Map map[string]string

// Get returns the property value or def.
func (m Map) Get(name, def string) string {
	if v, ok := m[name]; ok {
		return v
	}
	return def
}

var (
	_ Source = (*FileSource)(nil)
	_ Source = Map(nil)
)
