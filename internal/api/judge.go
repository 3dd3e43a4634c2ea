package api

// JudgeRequest asks an external judging service how well a piece of
// section content serves the intent.
type JudgeRequest struct {
	// Required params
	Title   string
	Content string
	Intent  IntentContext

	// Optional params
	ModelName string
}

// JudgeResponse carries the judged relevance plus the service's
// structured reasoning. Score is in [0,1].
type JudgeResponse struct {
	Score     float64
	Reasoning string
}

// RefineRequest asks a generative service for a task-oriented
// description of a single paragraph.
type RefineRequest struct {
	// Required params
	Paragraph string
	Intent    IntentContext

	// Optional params
	ModelName string
}
