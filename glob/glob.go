// Package glob matches device addresses and other names against patterns.
package glob

import (
	"net/netip"
	"strings"

	"github.com/gobwas/glob"
)

type Glob interface {
	Match(name string) bool
}

type globber struct {
	glob glob.Glob
}

func (g *globber) Match(name string) bool {
	return g.glob.Match(name)
}

// Compile compiles a glob pattern. A * doesn't match any of the separators.
func Compile(pattern string, separators ...rune) (Glob, error) {
	g, err := glob.Compile(pattern, separators...)
	if err != nil {
		return nil, err
	}

	return &globber{glob: g}, nil
}

type prefix struct {
	prefix netip.Prefix
}

func (p *prefix) Match(name string) bool {
	addr, err := netip.ParseAddr(name)
	if err != nil {
		return false
	}

	return p.prefix.Contains(addr)
}

// CompileAddress compiles a pattern for IPv4 addresses. The pattern is
// either a subnet in CIDR notation ("10.0.1.0/24") or a glob where * matches
// within one octet and ** across octets ("10.0.*.5").
func CompileAddress(pattern string) (Glob, error) {
	if strings.Contains(pattern, "/") {
		p, err := netip.ParsePrefix(pattern)
		if err != nil {
			return nil, err
		}

		return &prefix{prefix: p.Masked()}, nil
	}

	return Compile(pattern, '.')
}

// Match returns whether the name matches the glob pattern. An error is only
// returned if the pattern is invalid.
func Match(pattern, name string, separators ...rune) (bool, error) {
	g, err := Compile(pattern, separators...)
	if err != nil {
		return false, err
	}

	return g.Match(name), nil
}
