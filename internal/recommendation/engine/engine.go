package engine

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vibestack/vibestack-backend/internal/recommendation/domain"
)

//go:embed bundles.yaml
var defaultBundles []byte

type bundleFile struct {
	Bundles []domain.StackRecommendation `yaml:"bundles"`
}

// Engine maps quiz answers to one bundle of an immutable table.
type Engine struct {
	bundles map[string]domain.StackRecommendation
	order   []string
}

// New builds an engine from a bundle table. Every bundle the decision table can
// select must be present and list at least one tool.
func New(bundles []domain.StackRecommendation) (*Engine, error) {
	e := &Engine{
		bundles: make(map[string]domain.StackRecommendation, len(bundles)),
		order:   make([]string, 0, len(bundles)),
	}
	for _, b := range bundles {
		if b.ID == "" {
			return nil, fmt.Errorf("bundle %q has no id", b.Name)
		}
		if _, dup := e.bundles[b.ID]; dup {
			return nil, fmt.Errorf("duplicate bundle id %q", b.ID)
		}
		if len(b.Tools) == 0 {
			return nil, fmt.Errorf("bundle %q has no tools", b.ID)
		}
		e.bundles[b.ID] = b.Clone()
		e.order = append(e.order, b.ID)
	}
	for _, id := range domain.RequiredBundles {
		if _, ok := e.bundles[id]; !ok {
			return nil, fmt.Errorf("bundle table is missing %q", id)
		}
	}
	return e, nil
}

// NewFromYAML parses a bundle table in the bundles.yaml format.
func NewFromYAML(b []byte) (*Engine, error) {
	var f bundleFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse bundle table: %w", err)
	}
	return New(f.Bundles)
}

func NewFromFile(path string) (*Engine, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewFromYAML(b)
}

// Default returns an engine over the embedded bundle table.
func Default() *Engine {
	e, err := NewFromYAML(defaultBundles)
	if err != nil {
		panic(fmt.Sprintf("embedded bundle table is invalid: %v", err))
	}
	return e
}

// Load returns the engine for an optional override path, falling back to the embedded table.
func Load(path string) (*Engine, error) {
	if path == "" {
		return Default(), nil
	}
	return NewFromFile(path)
}

// Recommend picks exactly one bundle. It never fails: absent or unknown answers
// fall through to the branch's else case, and unmatched goals get the universal bundle.
func (e *Engine) Recommend(answers domain.QuizAnswers) domain.StackRecommendation {
	return e.bundles[Select(answers)].Clone()
}

// Select runs the decision table and returns the chosen bundle id.
// First match wins; branches never chain into each other.
func Select(answers domain.QuizAnswers) string {
	experience := answers.Get(domain.KeyExperience)
	budget := answers.Get(domain.KeyBudget)

	switch answers.Get(domain.KeyGoal) {
	case domain.GoalUI:
		if experience == domain.ExperienceBeginner {
			return domain.BundleMagicWand
		}
		return domain.BundleDesignSystem

	case domain.GoalLogic:
		if experience == domain.ExperienceBeginner {
			return domain.BundleLearner
		}
		if budget == domain.BudgetPaid || answers.Get(domain.KeyWorkflow) == domain.WorkflowAutonomy {
			return domain.BundleTenX
		}
		return domain.BundleEfficiency

	case domain.GoalFullstack:
		if budget == domain.BudgetPaid {
			return domain.BundleFullstackPro
		}
		return domain.BundleIndieHacker

	case domain.GoalResearch:
		return domain.BundleResearch
	}

	// partner, unknown and unanswered goals
	return domain.BundleUniversal
}

// Bundle returns a copy of the bundle with the given id.
func (e *Engine) Bundle(id string) (domain.StackRecommendation, bool) {
	b, ok := e.bundles[id]
	if !ok {
		return domain.StackRecommendation{}, false
	}
	return b.Clone(), true
}

// Bundles returns copies of every bundle in table order.
func (e *Engine) Bundles() []domain.StackRecommendation {
	out := make([]domain.StackRecommendation, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.bundles[id].Clone())
	}
	return out
}
