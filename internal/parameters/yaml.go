package parameters

import (
	"fmt"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"os"
)

// NewFromYAMLFile reads params from a YAML file holding a flat mapping of keys to scalar values, e.g.:
//
//	COLUMNS: 60
//	ANTS: 40
//	SEED: 7
func NewFromYAMLFile(path string) (Params, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read configuration file %q", path)
	}
	params, err := NewFromYAML(raw)
	if err != nil {
		return nil, errors.WithMessagef(err, "configuration file %q", path)
	}
	return params, nil
}

// NewFromYAML parses params from YAML contents. See NewFromYAMLFile.
//
// Values are kept as strings, to be parsed with GetParamOr. A key without a value is
// stored with an empty value.
func NewFromYAML(raw []byte) (Params, error) {
	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, errors.Wrap(err, "failed to parse YAML configuration")
	}
	params := make(Params, len(values))
	for key, value := range values {
		switch v := value.(type) {
		case nil:
			params[key] = ""
		case map[string]any, []any:
			return nil, errors.Errorf("configuration %q must be a scalar value, got %T", key, value)
		default:
			params[key] = fmt.Sprint(v)
		}
	}
	return params, nil
}
