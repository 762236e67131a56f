package domain

// Feature identifiers permitted through the text-generation proxy. The set
// is fixed server-side; requests carrying anything else are rejected before
// any upstream work happens.
const (
	FeatureChefCopilot         = "chef_copilot"
	FeatureHACCPCoach          = "haccp_coach"
	FeatureCosting             = "costing"
	FeatureMenuGenerator       = "menu_generator"
	FeatureInventoryInsights   = "inventory_insights"
	FeatureShoppingSuggestions = "shopping_suggestions"
	FeatureWasteAnalysis       = "waste_analysis"
	FeatureOpsCoach            = "ops_coach"
	FeatureHACCPAutofill       = "haccp_autofill"
	FeatureImageGeneration     = "image_generation"
)

// DefaultFeatures returns the canonical allowlist in a stable order. Callers
// get a fresh slice and may trim it through configuration, but never extend
// it past this set in production deployments.
func DefaultFeatures() []string {
	return []string{
		FeatureChefCopilot,
		FeatureHACCPCoach,
		FeatureCosting,
		FeatureMenuGenerator,
		FeatureInventoryInsights,
		FeatureShoppingSuggestions,
		FeatureWasteAnalysis,
		FeatureOpsCoach,
		FeatureHACCPAutofill,
		FeatureImageGeneration,
	}
}

// FeatureSet is an exact-membership allowlist of feature identifiers.
type FeatureSet map[string]struct{}

// NewFeatureSet builds a FeatureSet from a list of identifiers.
func NewFeatureSet(features []string) FeatureSet {
	set := make(FeatureSet, len(features))
	for _, f := range features {
		set[f] = struct{}{}
	}
	return set
}

// Contains reports whether the feature is a member of the allowlist.
func (s FeatureSet) Contains(feature string) bool {
	_, ok := s[feature]
	return ok
}
