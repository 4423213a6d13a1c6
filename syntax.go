package mailfs

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Syntax describes how a backend spells paths natively and which component
// names it accepts. Factories embed a Syntax to provide StringToPath,
// PathToString, IsValidPathComponent and IsValidPath.
type Syntax struct {
	Name      string // for logs and errors
	Separator byte
	// Reserved characters that may not appear in a component. The separator
	// and control characters are always reserved.
	Reserved string
	// ReservedNames are rejected case-insensitively, with or without an
	// extension (e.g. "CON" and "con.txt").
	ReservedNames []string
	// NoTrailingDotOrSpace rejects components ending in '.' or ' '.
	NoTrailingDotOrSpace bool
	// MaxComponentLen in bytes; 0 means unlimited.
	MaxComponentLen int
}

var windowsDeviceNames = []string{
	"CON", "PRN", "AUX", "NUL",
	"COM1", "COM2", "COM3", "COM4", "COM5", "COM6", "COM7", "COM8", "COM9",
	"LPT1", "LPT2", "LPT3", "LPT4", "LPT5", "LPT6", "LPT7", "LPT8", "LPT9",
}

// Built-in syntaxes.
var (
	PosixSyntax = Syntax{
		Name:            "posix",
		Separator:       '/',
		MaxComponentLen: 255,
	}
	WindowsSyntax = Syntax{
		Name:                 "windows",
		Separator:            '\\',
		Reserved:             `<>:"/\|?*`,
		ReservedNames:        windowsDeviceNames,
		NoTrailingDotOrSpace: true,
		MaxComponentLen:      255,
	}
	// VirtualSyntax is used by in-memory stores; it has no length limit.
	VirtualSyntax = Syntax{
		Name:      "virtual",
		Separator: '/',
	}
)

// IsValidPathComponent reports whether comp is non-empty, is not "." or "..",
// and contains no reserved or control character.
func (s Syntax) IsValidPathComponent(comp string) bool {
	if comp == "" || comp == "." || comp == ".." {
		return false
	}
	if !utf8.ValidString(comp) {
		return false
	}
	if s.MaxComponentLen > 0 && len(comp) > s.MaxComponentLen {
		return false
	}
	for i := 0; i < len(comp); i++ {
		c := comp[i]
		if c < 0x20 || c == 0x7f || c == s.Separator {
			return false
		}
	}
	if s.Reserved != "" && strings.ContainsAny(comp, s.Reserved) {
		return false
	}
	if s.NoTrailingDotOrSpace {
		if last := comp[len(comp)-1]; last == '.' || last == ' ' {
			return false
		}
	}
	if len(s.ReservedNames) > 0 {
		base, _, _ := strings.Cut(comp, ".")
		for _, name := range s.ReservedNames {
			if strings.EqualFold(base, name) {
				return false
			}
		}
	}
	return true
}

// IsValidPath reports whether every component of p is valid.
func (s Syntax) IsValidPath(p Path) bool {
	for _, c := range p.comps {
		if !s.IsValidPathComponent(c) {
			return false
		}
	}
	return true
}

// PathToString returns the native form of p: the separator followed by the
// components joined with the separator. The root is a lone separator.
func (s Syntax) PathToString(p Path) string {
	sep := string(s.Separator)
	return sep + strings.Join(p.comps, sep)
}

// StringToPath parses a native path. The string must start with the
// separator; one trailing separator is tolerated. Empty, "." and ".."
// components, as well as components rejected by IsValidPathComponent, make
// the string ambiguous and fail with an InvalidPath error.
func (s Syntax) StringToPath(str string) (Path, error) {
	const op = "parse path"
	if str == "" || str[0] != s.Separator {
		return Path{}, E(op, str, InvalidPath, fmt.Errorf("must start with %q", s.Separator))
	}
	rest := str[1:]
	if rest == "" {
		return Path{}, nil
	}
	rest = strings.TrimSuffix(rest, string(s.Separator))
	parts := strings.Split(rest, string(s.Separator))
	p := NewPath(parts...)
	for _, c := range p.comps {
		if !s.IsValidPathComponent(c) {
			return Path{}, E(op, str, InvalidPath, fmt.Errorf("bad component %q for %s syntax", c, s.Name))
		}
	}
	return p, nil
}
