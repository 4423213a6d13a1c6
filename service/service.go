// Package service declares the configuration surface of pluggable mail
// backends. A Descriptor lists the properties a backend recognises under a
// common prefix; reading and applying values is left to the caller (see the
// config package).
package service

import (
	"slices"
	"sort"
)

// Type is the expected shape of a property value.
type Type uint8

const (
	String Type = iota
	Integer
	Boolean
	Port // integer in 1..65535
)

func (t Type) String() string {
	switch t {
	case String:
		return "string"
	case Integer:
		return "integer"
	case Boolean:
		return "boolean"
	case Port:
		return "port"
	}
	return "unknown"
}

// Flag modifies how a property is treated by configuration front ends.
type Flag uint8

const (
	Required Flag = 1 << iota // must have a value, from config or default
	Hidden                    // secret; never echoed back or logged
)

// Property is one configurable setting. Name is relative to the descriptor
// prefix, e.g. "server.port".
type Property struct {
	Name    string
	Type    Type
	Default string // empty when there is no default
	Flags   Flag
}

func (p Property) Required() bool {
	return p.Flags&Required != 0
}

func (p Property) Hidden() bool {
	return p.Flags&Hidden != 0
}

// Descriptor describes the properties of one backend.
type Descriptor interface {
	// PropertyPrefix is prepended to every property name, e.g.
	// "transport.sendmail.".
	PropertyPrefix() string
	// AvailableProperties returns the properties in declaration order.
	AvailableProperties() []Property
}

// Key returns the fully qualified name of p under d.
func Key(d Descriptor, p Property) string {
	return d.PropertyPrefix() + p.Name
}

// Info is a static Descriptor.
type Info struct {
	Name       string
	Prefix     string
	Properties []Property
}

func (i *Info) PropertyPrefix() string {
	return i.Prefix
}

// AvailableProperties returns a copy; callers may not modify the declaration.
func (i *Info) AvailableProperties() []Property {
	return slices.Clone(i.Properties)
}

// Property finds a property by its relative name.
func (i *Info) Property(name string) (Property, bool) {
	idx := slices.IndexFunc(i.Properties, func(p Property) bool { return p.Name == name })
	if idx < 0 {
		return Property{}, false
	}
	return i.Properties[idx], true
}

var _ Descriptor = (*Info)(nil)

var builtins = map[string]*Info{}

func register(i *Info) *Info {
	builtins[i.Name] = i
	return i
}

// Lookup returns the built-in descriptor for a protocol name such as
// "smtp" or "sendmail".
func Lookup(name string) (*Info, bool) {
	i, ok := builtins[name]
	return i, ok
}

// Names lists the built-in protocol names, sorted.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
