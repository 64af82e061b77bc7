// Package parameters handles generic configuration Params, a map[string]string that the
// user can set, either from a configuration string, from environment variables or from
// positional command-line arguments.
package parameters

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"os"
	"strconv"
	"strings"
)

// Params represent generic configuration parameters.
type Params map[string]string

// NewFromConfigString create params from user's configuration string.
// See GetParamOr and PopParamOr to parse values from this map.
func NewFromConfigString(config string) Params {
	params := make(Params)
	if config == "" {
		return params
	}
	parts := strings.Split(config, ",")
	for _, part := range parts {
		subParts := strings.SplitN(part, "=", 2) // Split into up to 2 parts to handle '=' in values
		if len(subParts) == 1 {
			params[subParts[0]] = ""
		} else if len(subParts) == 2 {
			params[subParts[0]] = subParts[1]
		}
	}
	return params
}

// NewFromEnv creates params from the environment variables with the given names.
// Variables not set are not included.
func NewFromEnv(names ...string) Params {
	params := make(Params, len(names))
	for _, name := range names {
		if value, found := os.LookupEnv(name); found {
			params[name] = value
		}
	}
	return params
}

// SetPositional sets the parameters named in keys to the positional args, in order.
// Extra args are ignored, and missing ones leave the parameters untouched.
func (params Params) SetPositional(args []string, keys ...string) {
	for ii, key := range keys {
		if ii >= len(args) {
			return
		}
		params[key] = args[ii]
	}
}

// PopParamOr is like GetParamOr, but it also deletes from the params map the retrieved parameter.
func PopParamOr[T interface {
	bool | int | uint64 | float32 | float64 | string
}](params Params, key string, defaultValue T) (T, error) {
	value, err := GetParamOr(params, key, defaultValue)
	if err != nil {
		return value, err
	}
	delete(params, key)
	return value, nil
}

// GetParamOr attempts to parse a parameter to the given type if the key is present, or returns the defaultValue
// if not.
//
// For bool types, a key without a value is interpreted as true.
func GetParamOr[T interface {
	bool | int | uint64 | float32 | float64 | string
}](params Params, key string, defaultValue T) (T, error) {
	vAny := (any)(defaultValue)
	toT := func(v any) T { return v.(T) }
	value, exists := params[key]
	value = strings.TrimSpace(value)
	switch vAny.(type) {
	case string:
		if exists {
			return toT(value), nil
		}
	case int:
		if exists && value != "" {
			parsedValue, err := strconv.Atoi(value)
			if err != nil {
				return defaultValue, errors.Wrapf(err, "failed to parse configuration %s=%q to int", key, value)
			}
			return toT(parsedValue), nil
		}
	case uint64:
		if exists && value != "" {
			parsedValue, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return defaultValue, errors.Wrapf(err, "failed to parse configuration %s=%q to uint64", key, value)
			}
			return toT(parsedValue), nil
		}
	case float32:
		if exists && value != "" {
			parsedValue, err := strconv.ParseFloat(value, 32)
			if err != nil {
				return defaultValue, errors.Wrapf(err, "failed to parse configuration %s=%q to float", key, value)
			}
			return toT(float32(parsedValue)), nil
		}
	case float64:
		if exists && value != "" {
			parsedValue, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return defaultValue, errors.Wrapf(err, "failed to parse configuration %s=%q to float", key, value)
			}
			return toT(parsedValue), nil
		}
	case bool:
		if exists {
			if value == "" || strings.ToLower(value) == "true" || value == "1" { // Empty value is considered "true"
				return toT(true), nil
			}
			if strings.ToLower(value) == "false" || value == "0" {
				return toT(false), nil
			}
			return defaultValue, errors.Errorf("failed to parse configuration %s=%q to bool", key, value)
		}
	}
	return defaultValue, nil
}

// GetOrDefault is like GetParamOr, but parsing errors are not returned: the default value
// is silently used instead (the error is only logged at verbosity level 1).
func GetOrDefault[T interface {
	bool | int | uint64 | float32 | float64 | string
}](params Params, key string, defaultValue T) T {
	value, err := GetParamOr(params, key, defaultValue)
	if err != nil {
		klog.V(1).Infof("Using default %s=%v: %v", key, defaultValue, err)
		return defaultValue
	}
	return value
}
