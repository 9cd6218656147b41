// Package localhub is a file-backed stand-in for the home-automation
// platform: entity records live as JSON files under a diskv tree, and a
// filesystem watch turns writes into push-updates. It implements every
// collaborator interface the client consumes, so the tool runs end to end
// without a network and tests exercise the full loop.
package localhub

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv/v3"

	"alarmdeck/pkg/ha"
)

const rulesSpace = "rules"

// Hub is the local platform. It satisfies ha.States, ha.ServiceCaller,
// ha.Catalog, ha.AutomationStore, and ha.Navigator.
type Hub struct {
	d        *diskv.Diskv
	basePath string

	// Guards read-modify-write sequences; diskv itself only locks single
	// file operations.
	mu sync.Mutex
}

var (
	_ ha.States          = (*Hub)(nil)
	_ ha.ServiceCaller   = (*Hub)(nil)
	_ ha.Catalog         = (*Hub)(nil)
	_ ha.AutomationStore = (*Hub)(nil)
	_ ha.Navigator       = (*Hub)(nil)
)

// Open creates a hub rooted at the configured base path.
func Open(cfg Config) (*Hub, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	basePath := cfg.BasePath()
	return &Hub{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		basePath: basePath,
	}, nil
}

// Current reads every entity record and returns them as one snapshot,
// enumerated in sorted id order so the view layers get a stable order.
func (h *Hub) Current(ctx context.Context) (ha.Snapshot, error) {
	records, err := h.readAll(ctx)
	if err != nil {
		return ha.Snapshot{}, err
	}
	return ha.NewSnapshot(records...), nil
}

// Entities implements the capability catalog over the same record tree.
func (h *Hub) Entities(ctx context.Context, domainPrefix string) ([]ha.EntityRecord, error) {
	records, err := h.readAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ha.EntityRecord, 0, len(records))
	for _, r := range records {
		if strings.HasPrefix(r.EntityID, domainPrefix) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Services lists the operations the hub understands per domain.
func (h *Hub) Services(ctx context.Context) (map[string][]string, error) {
	return map[string][]string{
		"alarm_clock": {"add_alarm", "remove_alarm", "toggle_alarm", "set_time", "set_days", "set_repeat"},
		"automation":  {"toggle", "reload"},
	}, nil
}

func (h *Hub) readAll(ctx context.Context) ([]ha.EntityRecord, error) {
	var records []ha.EntityRecord
	for key := range h.d.Keys(ctx.Done()) {
		if strings.HasPrefix(key, rulesSpace+".") {
			continue
		}
		r, err := h.readRecord(key)
		if err != nil {
			// A half-written or foreign file must not take the whole
			// snapshot down.
			continue
		}
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].EntityID < records[j].EntityID })
	return records, nil
}

func (h *Hub) readRecord(key string) (ha.EntityRecord, error) {
	val, err := h.d.Read(key)
	if err != nil {
		return ha.EntityRecord{}, err
	}
	var r ha.EntityRecord
	if err := json.Unmarshal(val, &r); err != nil {
		return ha.EntityRecord{}, err
	}
	if r.EntityID == "" {
		r.EntityID = key
	}
	return r, nil
}

func (h *Hub) writeRecord(r ha.EntityRecord) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return h.d.Write(r.EntityID, data)
}

func (h *Hub) eraseRecord(id string) error {
	if err := h.d.Erase(id); err != nil && !strings.Contains(err.Error(), "no such file") {
		return err
	}
	return nil
}

// keyToPathTransform maps `domain.object` keys onto a directory per domain.
func keyToPathTransform(s string) *diskv.PathKey {
	domain, rest, found := strings.Cut(s, ".")
	if !found {
		return &diskv.PathKey{Path: []string{}, FileName: s}
	}
	return &diskv.PathKey{Path: []string{domain}, FileName: rest}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return fmt.Sprintf("%s.%s", strings.Join(pathKey.Path, "."), pathKey.FileName)
}
