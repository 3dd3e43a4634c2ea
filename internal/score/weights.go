package score

// Weights holds every constant of the relevance formula. The default
// values are empirically tuned and part of the observable scoring
// contract; deployments may override them through configuration rather
// than editing code.
type Weights struct {
	// Final blend shares.
	Semantic   float64 `yaml:"semantic"`
	Patterns   float64 `yaml:"patterns"`
	Clustering float64 `yaml:"clustering"`
	Reasoning  float64 `yaml:"reasoning"`

	// Semantic base composition.
	BodyShare      float64 `yaml:"body_share"`
	TitleShare     float64 `yaml:"title_share"`
	BestMatchShare float64 `yaml:"best_match_share"`
	MeanMatchShare float64 `yaml:"mean_match_share"`

	// Bonus caps and scales.
	PatternCap      float64 `yaml:"pattern_cap"`
	ClusteringScale float64 `yaml:"clustering_scale"`
	ReasoningScale  float64 `yaml:"reasoning_scale"`
	LengthBonusCap  float64 `yaml:"length_bonus_cap"`
	LengthDivisor   float64 `yaml:"length_divisor"`

	// Contradiction handling.
	ContradictionThreshold float64 `yaml:"contradiction_threshold"`
	ContradictionPenalty   float64 `yaml:"contradiction_penalty"`

	// Title quality adjustments.
	GenericTitlePenalty   float64 `yaml:"generic_title_penalty"`
	DescriptiveTitleBonus float64 `yaml:"descriptive_title_bonus"`

	// Blend share of the external judge score; the semantic validation
	// score receives the complement.
	JudgeShare float64 `yaml:"judge_share"`
}

func DefaultWeights() Weights {
	return Weights{
		Semantic:   0.7,
		Patterns:   0.1,
		Clustering: 0.05,
		Reasoning:  0.05,

		BodyShare:      0.8,
		TitleShare:     0.2,
		BestMatchShare: 0.7,
		MeanMatchShare: 0.3,

		PatternCap:      0.5,
		ClusteringScale: 0.3,
		ReasoningScale:  0.5,
		LengthBonusCap:  0.1,
		LengthDivisor:   10000,

		ContradictionThreshold: 0.5,
		ContradictionPenalty:   0.4,

		GenericTitlePenalty:   0.5,
		DescriptiveTitleBonus: 0.3,

		JudgeShare: 0.8,
	}
}
