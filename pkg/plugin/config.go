package plugin

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/gnana997/observing-components/pkg/transform"
)

// payload is the wire form of the host configuration.
type payload struct {
	ImportName           *string  `json:"import_name"`
	ImportPath           string   `json:"import_path"`
	Exclude              []string `json:"exclude"`
	WrapObjectProperties bool     `json:"wrap_object_properties"`
}

// ParseConfig decodes and validates a host configuration payload:
//
//	{"import_name": "observer", "import_path": "mobx-react-lite", "exclude": ["src/legacy/**"]}
//
// import_name defaults to "observer"; import_path is required. Any error
// here is fatal and must stop the host before a file is processed.
func ParseConfig(data []byte) (transform.Config, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return transform.Config{}, fmt.Errorf("%w: empty configuration", transform.ErrInvalidConfig)
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return transform.Config{}, fmt.Errorf("%w: %v", transform.ErrInvalidConfig, err)
	}

	cfg := transform.Config{
		ImportSource:         p.ImportPath,
		ExcludePatterns:      p.Exclude,
		WrapObjectProperties: p.WrapObjectProperties,
	}
	if p.ImportName != nil {
		cfg.WrapperName = *p.ImportName
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return transform.Config{}, err
	}
	return cfg, nil
}

// MarshalConfig is the inverse of ParseConfig.
func MarshalConfig(cfg transform.Config) ([]byte, error) {
	name := cfg.WrapperName
	exclude := cfg.ExcludePatterns
	if exclude == nil {
		exclude = []string{}
	}
	return json.Marshal(payload{
		ImportName:           &name,
		ImportPath:           cfg.ImportSource,
		Exclude:              exclude,
		WrapObjectProperties: cfg.WrapObjectProperties,
	})
}
