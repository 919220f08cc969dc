package service

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/smartcity/calo/internal/domain"
)

// ProtocolCatalog is the load-once knowledge base of operational protocols.
// It is immutable after construction and safe for concurrent reads.
type ProtocolCatalog struct {
	protocols []domain.Protocol
}

// LoadProtocolCatalog reads a catalog file shaped as {"protocols": [...]}.
// YAML is used for .yaml/.yml files, JSON otherwise. A missing or malformed
// file yields an empty catalog and a warning, never an error.
func LoadProtocolCatalog(path string, logger *slog.Logger) *ProtocolCatalog {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("protocol catalog unavailable, continuing with empty catalog", "path", path, "error", err)
		return &ProtocolCatalog{}
	}

	var entries []entryDecoder
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		entries, err = yamlEntries(data)
	default:
		entries, err = jsonEntries(data)
	}
	if err != nil {
		logger.Warn("protocol catalog malformed, continuing with empty catalog", "path", path, "error", err)
		return &ProtocolCatalog{}
	}

	protocols := make([]domain.Protocol, 0, len(entries))
	for i, decode := range entries {
		var p domain.Protocol
		if err := decode(&p); err != nil {
			logger.Warn("skipping malformed protocol entry", "index", i, "error", err)
			continue
		}
		protocols = append(protocols, p)
	}

	catalog := NewProtocolCatalog(protocols, logger)
	logger.Info("protocol catalog loaded", "path", path, "protocols", catalog.Len())
	return catalog
}

// NewProtocolCatalog builds a catalog from already-decoded entries, skipping
// entries without an id and later duplicates of an id. Entries without actions
// are kept so they still show up as matched protocols.
func NewProtocolCatalog(protocols []domain.Protocol, logger *slog.Logger) *ProtocolCatalog {
	seen := make(map[string]struct{}, len(protocols))
	valid := make([]domain.Protocol, 0, len(protocols))

	for i, p := range protocols {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			logger.Warn("skipping protocol without id", "index", i)
			continue
		}
		if _, dup := seen[p.ID]; dup {
			logger.Warn("skipping duplicate protocol id", "id", p.ID)
			continue
		}
		seen[p.ID] = struct{}{}
		if len(p.MatchesRiskIDs) == 0 {
			logger.Debug("protocol has no risk tags and will never be selected", "id", p.ID)
		}
		if len(p.Actions) == 0 {
			logger.Debug("protocol has no actions", "id", p.ID)
		}

		p.MatchesRiskIDs = append([]string(nil), p.MatchesRiskIDs...)
		p.Actions = append([]string(nil), p.Actions...)
		valid = append(valid, p)
	}

	return &ProtocolCatalog{protocols: valid}
}

// Len returns the number of loaded protocols.
func (c *ProtocolCatalog) Len() int {
	return len(c.protocols)
}

// Match selects the protocols tagged with any active risk id, in catalog
// declaration order, each at most once.
func (c *ProtocolCatalog) Match(activeRisks []domain.RiskRecord) []domain.Protocol {
	if len(activeRisks) == 0 {
		return nil
	}

	ids := make(map[string]struct{}, len(activeRisks))
	for _, r := range activeRisks {
		ids[r.ID] = struct{}{}
	}

	var matched []domain.Protocol
	for _, p := range c.protocols {
		if p.RespondsTo(ids) {
			matched = append(matched, p)
		}
	}
	return matched
}

type entryDecoder func(*domain.Protocol) error

func jsonEntries(data []byte) ([]entryDecoder, error) {
	var doc struct {
		Protocols []json.RawMessage `json:"protocols"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode json: %w", err)
	}
	out := make([]entryDecoder, 0, len(doc.Protocols))
	for _, raw := range doc.Protocols {
		raw := raw
		out = append(out, func(p *domain.Protocol) error { return json.Unmarshal(raw, p) })
	}
	return out, nil
}

func yamlEntries(data []byte) ([]entryDecoder, error) {
	var doc struct {
		Protocols []yaml.Node `yaml:"protocols"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode yaml: %w", err)
	}
	out := make([]entryDecoder, 0, len(doc.Protocols))
	for i := range doc.Protocols {
		node := &doc.Protocols[i]
		out = append(out, func(p *domain.Protocol) error { return node.Decode(p) })
	}
	return out, nil
}
