// Package session persists the browser session (a cookie set) so an
// automation run can skip the panel's interactive login.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// Cookie is one persisted cookie record. The field set mirrors what the
// browser needs to restore a login.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"http_only,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
}

// Store reads and writes the session file. Only one automation run is
// ever in flight, so no locking is needed around the file.
type Store struct {
	path string
	log  *zap.SugaredLogger
}

// NewStore creates a store backed by the given path.
func NewStore(path string, log *zap.SugaredLogger) *Store {
	return &Store{path: path, log: log}
}

// Load returns the persisted cookie set. An absent or unparsable file
// means "no session": callers start unauthenticated.
func (s *Store) Load() ([]Cookie, bool) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Debugf("session file unreadable, starting unauthenticated: %v", err)
		}
		return nil, false
	}
	var cookies []Cookie
	if err := json.Unmarshal(b, &cookies); err != nil {
		s.log.Debugf("session file unparsable, starting unauthenticated: %v", err)
		return nil, false
	}
	if len(cookies) == 0 {
		return nil, false
	}
	return cookies, true
}

// Save overwrites the session file with the captured cookie set.
func (s *Store) Save(cookies []Cookie) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(s.path, b, 0o600)
}

// Params converts stored cookies into the browser's cookie-set shape.
func Params(cookies []Cookie) []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  proto.TimeSinceEpoch(c.Expires),
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		})
	}
	return params
}

// FromNetwork converts captured browser cookies into storable records.
func FromNetwork(cookies []*proto.NetworkCookie) []Cookie {
	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  float64(c.Expires),
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		})
	}
	return out
}
