// Package registry holds the subscriber list: who can be notified and
// whether they currently want to be. The notifier consumes it
// read-only; mutation happens through the CLI.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"
)

// Subscriber is one notification target.
type Subscriber struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Enabled bool   `json:"enabled"`
}

// Registry is a file-backed subscriber list.
type Registry struct {
	path string
}

// New creates a registry backed by the given path.
func New(path string) *Registry {
	return &Registry{path: path}
}

// Load returns all subscribers. An absent file is an empty registry.
func (r *Registry) Load() ([]Subscriber, error) {
	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var subs []Subscriber
	if err := json.Unmarshal(b, &subs); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return subs, nil
}

// Enabled returns the subscribers with notifications switched on.
func (r *Registry) Enabled() ([]Subscriber, error) {
	subs, err := r.Load()
	if err != nil {
		return nil, err
	}
	return lo.Filter(subs, func(s Subscriber, _ int) bool { return s.Enabled }), nil
}

// Add inserts a subscriber with notifications enabled. Adding an
// existing ID re-enables it.
func (r *Registry) Add(id, name string) error {
	subs, err := r.Load()
	if err != nil {
		return err
	}
	if i := indexOf(subs, id); i >= 0 {
		subs[i].Enabled = true
		if name != "" {
			subs[i].Name = name
		}
		return r.save(subs)
	}
	subs = append(subs, Subscriber{ID: id, Name: name, Enabled: true})
	return r.save(subs)
}

// Remove deletes a subscriber.
func (r *Registry) Remove(id string) error {
	subs, err := r.Load()
	if err != nil {
		return err
	}
	if indexOf(subs, id) < 0 {
		return fmt.Errorf("unknown subscriber %q", id)
	}
	subs = lo.Reject(subs, func(s Subscriber, _ int) bool { return s.ID == id })
	return r.save(subs)
}

// SetEnabled flips one subscriber's notification preference.
func (r *Registry) SetEnabled(id string, enabled bool) error {
	subs, err := r.Load()
	if err != nil {
		return err
	}
	i := indexOf(subs, id)
	if i < 0 {
		return fmt.Errorf("unknown subscriber %q", id)
	}
	subs[i].Enabled = enabled
	return r.save(subs)
}

func (r *Registry) save(subs []Subscriber) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(r.path, b, 0o644)
}

func indexOf(subs []Subscriber, id string) int {
	_, i, _ := lo.FindIndexOf(subs, func(s Subscriber) bool { return s.ID == id })
	return i
}
