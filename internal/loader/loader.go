// Package loader reads run inputs from the file collaborator: a JSON
// description of the documents plus the persona and job strings.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/doclens/doclens/internal/api"
	"github.com/doclens/doclens/internal/pipeline"
)

var ErrNoDocuments = errors.New("input must list at least one document")

// inputFile is the on-disk input format. A document carries its page
// texts inline, or points at a directory of per-page .txt files
// (page-1.txt, page-2.txt, ...) produced by an upstream text extractor.
type inputFile struct {
	Persona string `json:"persona"`
	Job     string `json:"job"`

	Documents []inputDocument `json:"documents"`
}

type inputDocument struct {
	Name  string   `json:"name"`
	Pages []string `json:"pages,omitempty"`

	// PagesDir points at extracted page-text files for the document.
	PagesDir string `json:"pages_dir,omitempty"`
}

// Load reads an input JSON and assembles the pipeline request.
// A document that cannot be read is skipped with a warning; one bad
// input never aborts the run.
func Load(path string) (*pipeline.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	var input inputFile
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse input file: %w", err)
	}

	if len(input.Documents) == 0 {
		return nil, ErrNoDocuments
	}

	baseDir := filepath.Dir(path)

	docs := make([]api.Document, 0, len(input.Documents))
	for _, in := range input.Documents {
		doc, err := loadDocument(baseDir, in)
		if err != nil {
			slog.Warn("skipping unreadable document", "document", in.Name, "err", err)
			continue
		}
		docs = append(docs, doc)
	}

	return &pipeline.Request{
		Documents: docs,
		Persona:   input.Persona,
		Job:       input.Job,
	}, nil
}

func loadDocument(baseDir string, in inputDocument) (api.Document, error) {
	if len(in.Pages) > 0 {
		pages := make([]api.DocumentPage, 0, len(in.Pages))
		for i, text := range in.Pages {
			pages = append(pages, api.DocumentPage{Number: i + 1, Text: text})
		}
		return api.Document{Name: in.Name, Pages: pages}, nil
	}

	if in.PagesDir == "" {
		return api.Document{}, fmt.Errorf("document '%s' has neither pages nor a pages_dir", in.Name)
	}

	dir := in.PagesDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(baseDir, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return api.Document{}, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return api.Document{}, fmt.Errorf("no page files in '%s'", dir)
	}

	// order by the numeric page index in the file name, not lexically:
	// "page-10.txt" must follow "page-2.txt"
	sort.Slice(names, func(i, j int) bool {
		ni, iok := pageIndex(names[i])
		nj, jok := pageIndex(names[j])
		if iok && jok && ni != nj {
			return ni < nj
		}
		if iok != jok {
			return iok
		}
		return names[i] < names[j]
	})

	pages := make([]api.DocumentPage, 0, len(names))
	for i, name := range names {
		text, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return api.Document{}, err
		}
		pages = append(pages, api.DocumentPage{Number: i + 1, Text: string(text)})
	}

	return api.Document{Name: in.Name, Pages: pages}, nil
}

// pageIndex extracts the trailing page number from a file name such as
// "page-12.txt".
func pageIndex(name string) (int, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	i := len(base)
	for i > 0 && base[i-1] >= '0' && base[i-1] <= '9' {
		i--
	}
	if i == len(base) {
		return 0, false
	}
	n, err := strconv.Atoi(base[i:])
	if err != nil {
		return 0, false
	}
	return n, true
}
