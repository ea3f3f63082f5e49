// Package roster loads the player population from a file or URL and
// normalizes each record into a model.Player.
package roster

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/okian/legend/internal/domain/model"
	"github.com/okian/legend/pkg/logger"
)

const defaultCacheTTL = time.Hour

// Loader reads and normalizes a roster source.
type Loader struct {
	source    string
	cacheTTL  time.Duration
	transport http.RoundTripper
	client    *http.Client
	log       logger.Logger
	validate  *validator.Validate
}

// New creates a Loader for a file path or http(s) URL.
func New(source string, opts ...Option) *Loader {
	l := &Loader{
		source:    source,
		cacheTTL:  defaultCacheTTL,
		transport: http.DefaultTransport,
		log:       logger.Nop(),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.client = newCachedClient(l.transport, l.cacheTTL)
	return l
}

// Source returns the configured location.
func (l *Loader) Source() string { return l.source }

// Load fetches the source and returns the normalized players in source order.
func (l *Loader) Load(ctx context.Context) ([]model.Player, error) {
	var (
		data []byte
		f    format
		err  error
	)
	if isRemote(l.source) {
		data, f, err = l.fetch(ctx, l.source)
	} else {
		data, f, err = readFile(l.source)
	}
	if err != nil {
		return nil, err
	}

	players, err := l.decode(ctx, data, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.source, err)
	}
	l.log.Info(ctx, "roster loaded", logger.String("source", l.source), logger.Int("players", len(players)))
	return players, nil
}

// entry is one raw record keyed by its position or object key.
type entry struct {
	key string
	raw func(*record) error
}

func (l *Loader) decode(ctx context.Context, data []byte, f format) ([]model.Player, error) {
	var (
		entries []entry
		err     error
	)
	switch f {
	case formatYAML:
		entries, err = yamlEntries(data)
	default:
		entries, err = jsonEntries(data)
	}
	if err != nil {
		return nil, err
	}

	players := make([]model.Player, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		var r record
		if err := e.raw(&r); err != nil {
			l.log.Warn(ctx, "skipping unreadable roster record", logger.String("key", e.key), logger.Error(err))
			continue
		}
		if err := l.validate.Struct(r); err != nil {
			l.log.Warn(ctx, "skipping invalid roster record", logger.String("key", e.key), logger.Error(err))
			continue
		}
		p := r.player()
		if p.Name == "" {
			l.log.Warn(ctx, "skipping roster record without a name", logger.String("key", e.key))
			continue
		}
		if _, dup := seen[p.Name]; dup {
			l.log.Warn(ctx, "skipping duplicate player", logger.String("name", p.Name))
			continue
		}
		seen[p.Name] = struct{}{}
		players = append(players, p)
	}
	if len(players) == 0 {
		return nil, ErrEmptyRoster
	}
	return players, nil
}

func jsonEntries(data []byte) ([]entry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyRoster
	}
	wrap := func(raw json.RawMessage) func(*record) error {
		return func(r *record) error { return json.Unmarshal(raw, r) }
	}

	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		out := make([]entry, 0, len(items))
		for i, raw := range items {
			if isJSONObject(raw) {
				out = append(out, entry{key: strconv.Itoa(i), raw: wrap(raw)})
			}
		}
		return out, nil
	case '{':
		var items map[string]json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		keys := make([]string, 0, len(items))
		for k, raw := range items {
			if isJSONObject(raw) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		orderKeys(keys)
		out := make([]entry, 0, len(keys))
		for _, k := range keys {
			out = append(out, entry{key: k, raw: wrap(items[k])})
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: expected an array or object of players", ErrDecode)
}

func isJSONObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func yamlEntries(data []byte) ([]entry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrEmptyRoster
	}
	wrap := func(n *yaml.Node) func(*record) error {
		return func(r *record) error { return n.Decode(r) }
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		out := make([]entry, 0, len(root.Content))
		for i, n := range root.Content {
			if n.Kind == yaml.MappingNode {
				out = append(out, entry{key: strconv.Itoa(i), raw: wrap(n)})
			}
		}
		return out, nil
	case yaml.MappingNode:
		nodes := make(map[string]*yaml.Node, len(root.Content)/2)
		keys := make([]string, 0, len(root.Content)/2)
		for i := 0; i+1 < len(root.Content); i += 2 {
			k, v := root.Content[i].Value, root.Content[i+1]
			if _, dup := nodes[k]; dup || v.Kind != yaml.MappingNode {
				continue
			}
			nodes[k] = v
			keys = append(keys, k)
		}
		orderKeys(keys)
		out := make([]entry, 0, len(keys))
		for _, k := range keys {
			out = append(out, entry{key: k, raw: wrap(nodes[k])})
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: expected a sequence or mapping of players", ErrDecode)
}

// orderKeys moves array-index keys ("0", "1", ...) to the front in numeric
// order and keeps every other key in its current relative order.
func orderKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		ni, iok := indexKey(keys[i])
		nj, jok := indexKey(keys[j])
		switch {
		case iok && jok:
			return ni < nj
		case iok != jok:
			return iok
		}
		return false
	})
}

func indexKey(k string) (uint64, bool) {
	if k == "" || (len(k) > 1 && k[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(k, 10, 32)
	return n, err == nil
}
