package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/brettbedarf/mailfs/service"
)

var (
	ErrMissingProperty = errors.New("missing required property")
	ErrBadProperty     = errors.New("malformed property value")
)

// Values are resolved service properties keyed by their name relative to the
// descriptor prefix. Every value has already been checked against its type.
type Values map[string]string

func (v Values) String(name string) string {
	return v[name]
}

func (v Values) Int(name string) int {
	n, _ := strconv.Atoi(v[name])
	return n
}

func (v Values) Bool(name string) bool {
	b, _ := strconv.ParseBool(v[name])
	return b
}

// ServiceValues resolves every property d declares: the configured value
// under d's prefix wins, then the declared default. Missing required
// properties and values that do not parse as the declared type are reported
// together.
func (c *Config) ServiceValues(d service.Descriptor) (Values, error) {
	vals := Values{}
	var errs []error
	for _, p := range d.AvailableProperties() {
		key := service.Key(d, p)
		v, ok := c.Properties[key]
		if !ok {
			v = p.Default
		}
		if v == "" {
			if p.Required() {
				errs = append(errs, fmt.Errorf("%s: %w", key, ErrMissingProperty))
			}
			continue
		}
		if err := checkValue(p.Type, v); err != nil {
			if p.Hidden() {
				// the parse error would echo the secret
				errs = append(errs, fmt.Errorf("%s: %w: want %s", key, ErrBadProperty, p.Type))
			} else {
				errs = append(errs, fmt.Errorf("%s=%q: %w: %w", key, v, ErrBadProperty, err))
			}
			continue
		}
		vals[p.Name] = v
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return vals, nil
}

func checkValue(t service.Type, v string) error {
	switch t {
	case service.Integer:
		_, err := strconv.Atoi(v)
		return err
	case service.Boolean:
		_, err := strconv.ParseBool(v)
		return err
	case service.Port:
		n, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return err
		}
		if n == 0 {
			return errors.New("port must be in 1..65535")
		}
	}
	return nil
}
