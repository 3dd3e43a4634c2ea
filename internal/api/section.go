package api

// Section is a titled chunk of document content located on a single page.
type Section struct {
	Document string
	Page     int
	Title    string
	Content  string

	// RawText is the header line followed by the body, exactly as
	// it appeared on the page.
	RawText string
}

// ScoredSection is a Section with its relevance against the intent.
// ImportanceRank is assigned only after the full ranked set has been
// sorted by score descending; 1 is most important.
type ScoredSection struct {
	Section

	RelevanceScore float64
	ImportanceRank int
}

// Subsection is a paragraph-level refined excerpt from a selected
// section. ParentRank and ParagraphIndex only exist to order
// subsections across sections and are dropped from the final output.
type Subsection struct {
	Document    string
	Page        int
	RefinedText string

	ParentRank     int
	ParagraphIndex int
}
