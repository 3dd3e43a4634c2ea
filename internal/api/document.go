package api

// DocumentPage holds the raw extracted text of a single page.
// Page numbers are 1-based.
type DocumentPage struct {
	Number int
	Text   string
}

// Document is an identified, immutable sequence of page texts.
// Parsing the source format (PDF or otherwise) happens upstream;
// the pipeline only ever sees plain page text.
type Document struct {
	Name  string
	Pages []DocumentPage
}

func (d Document) Text() string {
	text := ""
	for _, page := range d.Pages {
		text += page.Text
	}
	return text
}

// IntentContext carries the user intent a run is evaluated against.
// It is read-only input shared by the scorer and the refiner.
type IntentContext struct {
	// Persona is the role of the person asking, e.g. "Investment Analyst".
	Persona string

	// Job is the concrete task the persona needs to accomplish.
	Job string
}
