// Package metricpack provides the metric-pack catalog that health sources
// expand their pack references against.
package metricpack

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"healthsync/internal/cvconfig"
	"healthsync/pkg/logging"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Service returns the metric packs available to a scope for one data
// source type.
type Service interface {
	GetMetricPacks(ctx context.Context, scope cvconfig.Scope, t cvconfig.DataSourceType) ([]cvconfig.MetricPack, error)
}

type scopedKey struct {
	scope cvconfig.Scope
	t     cvconfig.DataSourceType
}

// Catalog is an in-memory Service. Packs registered for a scope replace the
// default packs of that type with the same identifier.
type Catalog struct {
	mu       sync.RWMutex
	defaults map[cvconfig.DataSourceType][]cvconfig.MetricPack
	scoped   map[scopedKey][]cvconfig.MetricPack
}

// NewCatalog returns a catalog seeded with the built-in default packs.
func NewCatalog() (*Catalog, error) {
	packs, err := Parse(defaultsYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse default metric packs: %w", err)
	}
	c := &Catalog{
		defaults: make(map[cvconfig.DataSourceType][]cvconfig.MetricPack),
		scoped:   make(map[scopedKey][]cvconfig.MetricPack),
	}
	for _, p := range packs {
		c.defaults[p.DataSourceType] = append(c.defaults[p.DataSourceType], p)
	}
	return c, nil
}

// LoadFile adds the default packs defined in a catalog file. Packs with the
// identifier of an existing default replace it.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read metric pack catalog %s: %w", path, err)
	}
	packs, err := Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse metric pack catalog %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range packs {
		c.defaults[p.DataSourceType] = upsert(c.defaults[p.DataSourceType], p)
	}
	logging.Debug("MetricPacks", "Loaded %d metric packs from %s", len(packs), path)
	return nil
}

// Register adds packs visible only to scope.
func (c *Catalog) Register(scope cvconfig.Scope, packs ...cvconfig.MetricPack) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range packs {
		k := scopedKey{scope: scope, t: p.DataSourceType}
		c.scoped[k] = upsert(c.scoped[k], p)
	}
}

func upsert(packs []cvconfig.MetricPack, p cvconfig.MetricPack) []cvconfig.MetricPack {
	for i := range packs {
		if packs[i].Identifier == p.Identifier {
			packs[i] = p
			return packs
		}
	}
	return append(packs, p)
}

// GetMetricPacks returns copies of the packs for scope and t. Scoped packs
// take precedence over defaults with the same identifier.
func (c *Catalog) GetMetricPacks(ctx context.Context, scope cvconfig.Scope, t cvconfig.DataSourceType) ([]cvconfig.MetricPack, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]cvconfig.MetricPack, 0, len(c.defaults[t]))
	for _, p := range c.defaults[t] {
		result = append(result, clonePack(p))
	}
	for _, p := range c.scoped[scopedKey{scope: scope, t: t}] {
		result = upsert(result, clonePack(p))
	}
	return result, nil
}

func clonePack(p cvconfig.MetricPack) cvconfig.MetricPack {
	p.Metrics = slices.Clone(p.Metrics)
	for i := range p.Metrics {
		p.Metrics[i].Thresholds = slices.Clone(p.Metrics[i].Thresholds)
	}
	return p
}

// FindPack returns the pack with the given identifier.
func FindPack(packs []cvconfig.MetricPack, identifier string) (cvconfig.MetricPack, bool) {
	for _, p := range packs {
		if p.Identifier == identifier {
			return p, true
		}
	}
	return cvconfig.MetricPack{}, false
}

type catalogFile struct {
	Packs []rawPack `yaml:"packs"`
}

type rawPack struct {
	DataSourceType string      `yaml:"dataSourceType"`
	Identifier     string      `yaml:"identifier"`
	Category       string      `yaml:"category"`
	Metrics        []rawMetric `yaml:"metrics"`
}

type rawMetric struct {
	Name       string         `yaml:"name"`
	Identifier string         `yaml:"identifier"`
	Type       string         `yaml:"type"`
	Path       string         `yaml:"path"`
	Included   any            `yaml:"included"`
	Thresholds []rawThreshold `yaml:"thresholds"`
}

type rawThreshold struct {
	Action       string `yaml:"action"`
	CriteriaType string `yaml:"criteriaType"`
	Value        any    `yaml:"value"`
}

// Parse decodes a catalog document.
func Parse(data []byte) ([]cvconfig.MetricPack, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	packs := make([]cvconfig.MetricPack, 0, len(file.Packs))
	for i, raw := range file.Packs {
		pack, err := raw.toPack()
		if err != nil {
			return nil, fmt.Errorf("pack %d (%s): %w", i, raw.Identifier, err)
		}
		packs = append(packs, pack)
	}
	return packs, nil
}

func (r rawPack) toPack() (cvconfig.MetricPack, error) {
	t := cvconfig.DataSourceType(r.DataSourceType)
	if !t.Known() {
		return cvconfig.MetricPack{}, fmt.Errorf("unknown data source type %q", r.DataSourceType)
	}
	if r.Identifier == "" {
		return cvconfig.MetricPack{}, fmt.Errorf("identifier is required")
	}
	category, err := cvconfig.ParseCategory(r.Category)
	if err != nil {
		return cvconfig.MetricPack{}, err
	}

	pack := cvconfig.MetricPack{
		Identifier:     r.Identifier,
		Category:       category,
		DataSourceType: t,
		Metrics:        make([]cvconfig.MetricDefinition, 0, len(r.Metrics)),
	}
	for _, m := range r.Metrics {
		def, err := m.toDefinition()
		if err != nil {
			return cvconfig.MetricPack{}, fmt.Errorf("metric %q: %w", m.Identifier, err)
		}
		pack.Metrics = append(pack.Metrics, def)
	}
	return pack, nil
}

func (m rawMetric) toDefinition() (cvconfig.MetricDefinition, error) {
	included := true
	if m.Included != nil {
		v, err := cast.ToBoolE(m.Included)
		if err != nil {
			return cvconfig.MetricDefinition{}, fmt.Errorf("invalid included flag: %w", err)
		}
		included = v
	}

	def := cvconfig.MetricDefinition{
		Identifier: m.Identifier,
		Name:       m.Name,
		Type:       cvconfig.TimeSeriesMetricType(m.Type),
		Path:       m.Path,
		Included:   included,
	}
	for _, th := range m.Thresholds {
		value, err := cast.ToFloat64E(th.Value)
		if err != nil {
			return cvconfig.MetricDefinition{}, fmt.Errorf("invalid threshold value: %w", err)
		}
		def.Thresholds = append(def.Thresholds, cvconfig.Threshold{
			Action:       th.Action,
			CriteriaType: th.CriteriaType,
			Value:        value,
		})
	}
	return def, nil
}
