package api

// ResultMetadata describes a single pipeline run.
type ResultMetadata struct {
	InputDocuments      []string `json:"input_documents"`
	Persona             string   `json:"persona"`
	JobToBeDone         string   `json:"job_to_be_done"`
	ProcessingTimestamp string   `json:"processing_timestamp"`
	ProcessingSeconds   float64  `json:"processing_time_seconds"`
	Warning             string   `json:"warning,omitempty"`
}

// RankedSectionView is the external view of a selected section.
type RankedSectionView struct {
	Document       string `json:"document"`
	PageNumber     int    `json:"page_number"`
	SectionTitle   string `json:"section_title"`
	ImportanceRank int    `json:"importance_rank"`
}

// SubsectionView is the external view of a refined subsection.
type SubsectionView struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// PipelineResult is the complete outcome of one pipeline invocation.
// Callers always receive a well-formed result; empty and degraded runs
// are signalled through the metadata warning, never through an error.
type PipelineResult struct {
	Metadata          ResultMetadata      `json:"metadata"`
	ExtractedSections []RankedSectionView `json:"extracted_sections"`
	Subsections       []SubsectionView    `json:"subsection_analysis"`
}

// ViewOf returns the external view of a scored section.
func ViewOf(s ScoredSection) RankedSectionView {
	return RankedSectionView{
		Document:       s.Document,
		PageNumber:     s.Page,
		SectionTitle:   s.Title,
		ImportanceRank: s.ImportanceRank,
	}
}

// ViewOfSubsection returns the external view of a subsection,
// dropping the transient ordering fields.
func ViewOfSubsection(s Subsection) SubsectionView {
	return SubsectionView{
		Document:    s.Document,
		RefinedText: s.RefinedText,
		PageNumber:  s.Page,
	}
}
