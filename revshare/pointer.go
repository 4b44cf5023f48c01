package revshare

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// DefaultPointerPath is the path a payment pointer without one resolves to.
const DefaultPointerPath = "/.well-known/pay"

// Pointer is a parsed payment pointer such as $wallet.example/alice.
type Pointer struct {
	Host string
	Path string // Path component with leading slash, empty if absent
	Raw  string
}

// ParsePointer parses a $host[/path] payment pointer.
func ParsePointer(s string) (*Pointer, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty pointer", ErrInvalidPointer)
	}
	if !strings.HasPrefix(s, "$") {
		return nil, fmt.Errorf("%w: %q must start with $", ErrInvalidPointer, s)
	}

	rest := s[1:]
	host, path := rest, ""
	if idx := strings.Index(rest, "/"); idx >= 0 {
		host, path = rest[:idx], rest[idx:]
	}

	if host == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidPointer, s)
	}
	// Ports and userinfo are not part of a payment pointer.
	if strings.ContainsAny(host, ":@") {
		return nil, fmt.Errorf("%w: %q host must be a bare domain", ErrInvalidPointer, s)
	}
	if _, ok := dns.IsDomainName(host); !ok {
		return nil, fmt.Errorf("%w: %q is not a domain name", ErrInvalidPointer, host)
	}
	if strings.ContainsAny(path, "?#") {
		return nil, fmt.Errorf("%w: %q must not carry a query or fragment", ErrInvalidPointer, s)
	}
	if path == "/" {
		path = ""
	}

	return &Pointer{Host: strings.ToLower(strings.TrimSuffix(host, ".")), Path: path, Raw: s}, nil
}

// URL returns the https URL the pointer resolves to.
func (p *Pointer) URL() string {
	path := p.Path
	if path == "" {
		path = DefaultPointerPath
	}
	return "https://" + p.Host + path
}

// String returns the pointer in canonical $host/path form.
func (p *Pointer) String() string {
	return "$" + p.Host + p.Path
}
