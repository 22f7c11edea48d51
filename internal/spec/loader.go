package spec

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"compliancegen/internal/logging"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// NotFoundError reports a missing specification record. Callers surface it
// directly (404-equivalent); specification records are static, so retrying
// never helps.
type NotFoundError struct {
	ModuleID string
	Code     string
}

func (e *NotFoundError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("specification not found: module %q", e.ModuleID)
	}
	return fmt.Sprintf("specification not found: module %q submodule %q", e.ModuleID, e.Code)
}

// IsNotFound reports whether err is a specification lookup miss.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

type moduleRecord struct {
	ModuleSpec `yaml:",inline"`
	Submodules []SubmoduleSpec `yaml:"submodules"`
}

type catalog struct {
	Modules []moduleRecord `yaml:"modules"`
}

// Loader resolves module and submodule specifications from the parsed
// catalog. Resolved submodules are cached for the process lifetime; the
// catalog is static, so the cache is never invalidated.
type Loader struct {
	cat catalog
	log *zap.Logger

	mu    sync.RWMutex
	cache map[string]*SubmoduleSpec
}

// NewLoader parses the embedded catalog.
func NewLoader() (*Loader, error) {
	return NewLoaderFromBytes(embeddedCatalog)
}

// NewLoaderFromBytes parses a catalog from raw YAML. Tests use this to
// supply fixture catalogs.
func NewLoaderFromBytes(data []byte) (*Loader, error) {
	var cat catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse specification catalog: %w", err)
	}
	if len(cat.Modules) == 0 {
		return nil, fmt.Errorf("specification catalog contains no modules")
	}
	return &Loader{
		cat:   cat,
		log:   logging.Named("spec"),
		cache: make(map[string]*SubmoduleSpec),
	}, nil
}

// ModuleSpec returns the module record for moduleID.
func (l *Loader) ModuleSpec(moduleID string) (*ModuleSpec, error) {
	for i := range l.cat.Modules {
		if l.cat.Modules[i].Module == moduleID {
			return &l.cat.Modules[i].ModuleSpec, nil
		}
	}
	return nil, &NotFoundError{ModuleID: moduleID}
}

// SubmoduleSpec returns the submodule with the exact code under moduleID.
func (l *Loader) SubmoduleSpec(moduleID, code string) (*SubmoduleSpec, error) {
	key := moduleID + "/" + code

	l.mu.RLock()
	if sub, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return sub, nil
	}
	l.mu.RUnlock()

	mod, err := l.moduleRecord(moduleID)
	if err != nil {
		return nil, err
	}
	for i := range mod.Submodules {
		if mod.Submodules[i].Code == code {
			sub := &mod.Submodules[i]
			l.mu.Lock()
			l.cache[key] = sub
			l.mu.Unlock()
			return sub, nil
		}
	}
	return nil, &NotFoundError{ModuleID: moduleID, Code: code}
}

// FindSubmoduleByName resolves a submodule from a free-text document name
// and/or an explicit code. Resolution order: exact code, declared alias,
// keyword substring against the free-text name. First match wins; ties break
// by declaration order in the catalog.
func (l *Loader) FindSubmoduleByName(moduleID, freeText, explicitCode string) (*SubmoduleSpec, error) {
	mod, err := l.moduleRecord(moduleID)
	if err != nil {
		return nil, err
	}

	if explicitCode != "" {
		if sub, err := l.SubmoduleSpec(moduleID, explicitCode); err == nil {
			return sub, nil
		}
	}

	lowerName := strings.ToLower(freeText)
	lowerCode := strings.ToLower(explicitCode)

	for i := range mod.Submodules {
		for _, alias := range mod.Submodules[i].Aliases {
			la := strings.ToLower(alias)
			if (lowerCode != "" && la == lowerCode) || (lowerName != "" && la == lowerName) {
				return l.cacheHit(moduleID, &mod.Submodules[i]), nil
			}
		}
	}

	if lowerName != "" {
		for i := range mod.Submodules {
			for _, kw := range mod.Submodules[i].Keywords {
				if strings.Contains(lowerName, strings.ToLower(kw)) {
					l.log.Debug("resolved submodule by keyword",
						zap.String("name", freeText),
						zap.String("keyword", kw),
						zap.String("code", mod.Submodules[i].Code))
					return l.cacheHit(moduleID, &mod.Submodules[i]), nil
				}
			}
		}
	}

	return nil, &NotFoundError{ModuleID: moduleID, Code: firstNonEmpty(explicitCode, freeText)}
}

// Submodules returns all submodule specs under moduleID in declaration order.
func (l *Loader) Submodules(moduleID string) ([]SubmoduleSpec, error) {
	mod, err := l.moduleRecord(moduleID)
	if err != nil {
		return nil, err
	}
	return mod.Submodules, nil
}

// MicroRules resolves a rule category from the module's supplementary rule
// sets. Missing categories return an empty map, not an error: an unknown
// category in micro_inject is a catalog authoring gap, not a runtime failure.
func (l *Loader) MicroRules(moduleID, category string) (map[string]string, error) {
	mod, err := l.ModuleSpec(moduleID)
	if err != nil {
		return nil, err
	}
	rules, ok := mod.MicroRules[category]
	if !ok {
		l.log.Warn("unknown micro-rule category", zap.String("category", category))
		return map[string]string{}, nil
	}
	return rules, nil
}

func (l *Loader) moduleRecord(moduleID string) (*moduleRecord, error) {
	for i := range l.cat.Modules {
		if l.cat.Modules[i].Module == moduleID {
			return &l.cat.Modules[i], nil
		}
	}
	return nil, &NotFoundError{ModuleID: moduleID}
}

func (l *Loader) cacheHit(moduleID string, sub *SubmoduleSpec) *SubmoduleSpec {
	l.mu.Lock()
	l.cache[moduleID+"/"+sub.Code] = sub
	l.mu.Unlock()
	return sub
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
