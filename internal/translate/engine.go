package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/michaelzh/mnews/internal/logger"
)

// Engine is the machine-translation boundary. The pipeline depends on
// this contract only, never on a specific engine's installation
// mechanics.
type Engine interface {
	// HasPair reports whether a model for from->to is available.
	HasPair(from, to string) bool
	// Translate converts text from one language to another. An empty
	// result with a nil error means the engine legitimately produced
	// nothing.
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// Pair identifies one directed translation model.
type Pair struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (p Pair) String() string {
	return p.From + "->" + p.To
}

// Registry records which translation models are installed locally.
// The registry file is written by the install-models command; a missing
// or corrupt file means no models, which the bridge degrades around.
type Registry struct {
	path  string
	pairs map[string]struct{}
}

// LoadRegistry reads the model registry. Never fails.
func LoadRegistry(path string) *Registry {
	r := &Registry{path: path, pairs: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("model registry unreadable, engine will be unavailable", "path", path, "error", err)
		}
		return r
	}

	var stored []Pair
	if err := json.Unmarshal(data, &stored); err != nil {
		logger.Warn("model registry corrupt, engine will be unavailable", "path", path, "error", err)
		return r
	}
	for _, pair := range stored {
		r.pairs[pair.String()] = struct{}{}
	}
	return r
}

func (r *Registry) Has(from, to string) bool {
	_, ok := r.pairs[Pair{From: from, To: to}.String()]
	return ok
}

// Empty reports whether no models are installed at all.
func (r *Registry) Empty() bool {
	return len(r.pairs) == 0
}

// Add records pairs as installed and persists the registry.
func (r *Registry) Add(pairs []Pair) error {
	for _, pair := range pairs {
		r.pairs[pair.String()] = struct{}{}
	}
	return r.persist()
}

func splitPairKey(key string) (Pair, bool) {
	idx := strings.Index(key, "->")
	if idx <= 0 || idx+2 >= len(key) {
		return Pair{}, false
	}
	return Pair{From: key[:idx], To: key[idx+2:]}, true
}

func (r *Registry) persist() error {
	out := make([]Pair, 0, len(r.pairs))
	for key := range r.pairs {
		p, ok := splitPairKey(key)
		if !ok {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal model registry: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("write model registry: %w", err)
	}
	return nil
}
