package actor

import (
	"fmt"
	"strings"
)

// Scheme prefixes host-qualified addresses.
const Scheme = "idmesh"

// Address locates a unit. Host is empty for local-only systems.
type Address struct {
	Host string
	Path string
}

// String returns idmesh://host:port/path, or the bare path when Host is empty.
func (a Address) String() string {
	if a.Host == "" {
		return a.Path
	}
	return Scheme + "://" + a.Host + a.Path
}

// IsZero reports whether a carries no path.
func (a Address) IsZero() bool {
	return a.Path == ""
}

// Child returns the address of the named child of a.
func (a Address) Child(name string) Address {
	return Address{Host: a.Host, Path: strings.TrimSuffix(a.Path, "/") + "/" + name}
}

// Name returns the last path element.
func (a Address) Name() string {
	if i := strings.LastIndexByte(a.Path, '/'); i >= 0 {
		return a.Path[i+1:]
	}
	return a.Path
}

// ParseAddress parses either form produced by Address.String.
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return Address{}, fmt.Errorf("actor: empty address")
	}
	if strings.HasPrefix(s, "/") {
		return Address{Path: s}, nil
	}

	rest, ok := strings.CutPrefix(s, Scheme+"://")
	if !ok {
		return Address{}, fmt.Errorf("actor: address %q: unknown scheme", s)
	}
	i := strings.IndexByte(rest, '/')
	if i <= 0 {
		return Address{}, fmt.Errorf("actor: address %q: missing host or path", s)
	}
	return Address{Host: rest[:i], Path: rest[i:]}, nil
}

// MustParseAddress is like ParseAddress but panics on error.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}
