package domain

// Quiz question keys.
const (
	KeyGoal        = "goal"
	KeyExperience  = "experience"
	KeyEnvironment = "environment"
	KeyTeam        = "team"
	KeyBudget      = "budget"
	KeyWorkflow    = "workflow"
)

// Option ids the decision table branches on.
const (
	GoalUI        = "ui"
	GoalLogic     = "logic"
	GoalFullstack = "fullstack"
	GoalResearch  = "research"
	GoalPartner   = "partner"

	ExperienceBeginner = "beginner"
	BudgetPaid         = "paid"
	WorkflowAutonomy   = "autonomy"
)

// Bundle ids. Every id here must exist in the bundle table.
const (
	BundleUniversal    = "universal"
	BundleMagicWand    = "magic-wand"
	BundleDesignSystem = "design-system"
	BundleLearner      = "learner"
	BundleTenX         = "10x-engineer"
	BundleEfficiency   = "efficiency"
	BundleFullstackPro = "fullstack-pro"
	BundleIndieHacker  = "indie-hacker"
	BundleResearch     = "research"
)

// RequiredBundles lists every bundle the decision table can select.
var RequiredBundles = []string{
	BundleUniversal,
	BundleMagicWand,
	BundleDesignSystem,
	BundleLearner,
	BundleTenX,
	BundleEfficiency,
	BundleFullstackPro,
	BundleIndieHacker,
	BundleResearch,
}

var questionKeys = map[string]struct{}{
	KeyGoal:        {},
	KeyExperience:  {},
	KeyEnvironment: {},
	KeyTeam:        {},
	KeyBudget:      {},
	KeyWorkflow:    {},
}

// IsQuestionKey reports whether key is one of the six quiz questions.
func IsQuestionKey(key string) bool {
	_, ok := questionKeys[key]
	return ok
}

// QuizAnswers maps a question key to the chosen option id. Any key may be absent.
type QuizAnswers map[string]string

// Get returns the answer for key exactly as given, or "" when it was not
// answered. Option ids are matched verbatim.
func (a QuizAnswers) Get(key string) string {
	return a[key]
}

// StackRecommendation is one pre-authored bundle from the recommendation table.
type StackRecommendation struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Description   string   `json:"description" yaml:"description"`
	TotalPrice    string   `json:"total_price" yaml:"total_price"`
	Tools         []string `json:"tools" yaml:"tools"`
	Rationale     string   `json:"rationale" yaml:"rationale"`
	Compatibility string   `json:"compatibility" yaml:"compatibility"`
	BestFor       []string `json:"best_for" yaml:"best_for"`
	UserCount     int      `json:"user_count" yaml:"user_count"`
	Rating        float64  `json:"rating" yaml:"rating"`
}

// Clone returns a deep copy so callers cannot mutate the shared table.
func (r StackRecommendation) Clone() StackRecommendation {
	out := r
	out.Tools = append([]string(nil), r.Tools...)
	out.BestFor = append([]string(nil), r.BestFor...)
	return out
}
