package loader_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/doclens/doclens/internal/loader"
)

func writeInput(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "input.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write input file: %v", err)
	}
	return path
}

func TestLoadInlinePages(t *testing.T) {
	path := writeInput(t, t.TempDir(), `{
		"persona": "Financial Analyst",
		"job": "review the annual budget",
		"documents": [
			{"name": "report.pdf", "pages": ["page one text", "page two text"]}
		]
	}`)

	req, err := loader.Load(path)
	if err != nil {
		t.Fatalf("expected nil error, got '%v'", err)
	}

	if req.Persona != "Financial Analyst" {
		t.Errorf("invalid persona, got '%s'", req.Persona)
	}
	if req.Job != "review the annual budget" {
		t.Errorf("invalid job, got '%s'", req.Job)
	}
	if len(req.Documents) != 1 {
		t.Fatalf("expected 1 document, got %d", len(req.Documents))
	}

	doc := req.Documents[0]
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}
	if doc.Pages[0].Number != 1 || doc.Pages[1].Number != 2 {
		t.Errorf("expected 1-based page numbers, got %d and %d", doc.Pages[0].Number, doc.Pages[1].Number)
	}
	if doc.Pages[1].Text != "page two text" {
		t.Errorf("invalid page text, got '%s'", doc.Pages[1].Text)
	}
}

func TestLoadPagesDir(t *testing.T) {
	dir := t.TempDir()

	pagesDir := filepath.Join(dir, "report-pages")
	if err := os.Mkdir(pagesDir, 0755); err != nil {
		t.Fatalf("failed to create pages dir: %v", err)
	}
	for name, text := range map[string]string{
		"page-1.txt": "first page",
		"page-2.txt": "second page",
		"notes.md":   "ignored, not a page file",
	} {
		if err := os.WriteFile(filepath.Join(pagesDir, name), []byte(text), 0644); err != nil {
			t.Fatalf("failed to write page file: %v", err)
		}
	}

	path := writeInput(t, dir, `{
		"persona": "Analyst",
		"job": "review",
		"documents": [
			{"name": "report.pdf", "pages_dir": "report-pages"}
		]
	}`)

	req, err := loader.Load(path)
	if err != nil {
		t.Fatalf("expected nil error, got '%v'", err)
	}
	if len(req.Documents) != 1 {
		t.Fatalf("expected 1 document, got %d", len(req.Documents))
	}

	doc := req.Documents[0]
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}
	if doc.Pages[0].Text != "first page" || doc.Pages[1].Text != "second page" {
		t.Errorf("pages loaded out of order: %+v", doc.Pages)
	}
}

func TestLoadPagesDirNumericOrder(t *testing.T) {
	dir := t.TempDir()

	pagesDir := filepath.Join(dir, "report-pages")
	if err := os.Mkdir(pagesDir, 0755); err != nil {
		t.Fatalf("failed to create pages dir: %v", err)
	}
	for n := 1; n <= 11; n++ {
		name := fmt.Sprintf("page-%d.txt", n)
		text := fmt.Sprintf("text of page %d", n)
		if err := os.WriteFile(filepath.Join(pagesDir, name), []byte(text), 0644); err != nil {
			t.Fatalf("failed to write page file: %v", err)
		}
	}

	path := writeInput(t, dir, `{
		"persona": "Analyst",
		"job": "review",
		"documents": [
			{"name": "report.pdf", "pages_dir": "report-pages"}
		]
	}`)

	req, err := loader.Load(path)
	if err != nil {
		t.Fatalf("expected nil error, got '%v'", err)
	}

	doc := req.Documents[0]
	if len(doc.Pages) != 11 {
		t.Fatalf("expected 11 pages, got %d", len(doc.Pages))
	}
	for i, page := range doc.Pages {
		if page.Number != i+1 {
			t.Errorf("expected page number %d, got %d", i+1, page.Number)
		}
		want := fmt.Sprintf("text of page %d", i+1)
		if page.Text != want {
			t.Errorf("page %d holds '%s', expected '%s'", page.Number, page.Text, want)
		}
	}
}

func TestLoadSkipsUnreadableDocuments(t *testing.T) {
	path := writeInput(t, t.TempDir(), `{
		"persona": "Analyst",
		"job": "review",
		"documents": [
			{"name": "missing.pdf", "pages_dir": "does-not-exist"},
			{"name": "ok.pdf", "pages": ["some page text"]}
		]
	}`)

	req, err := loader.Load(path)
	if err != nil {
		t.Fatalf("expected nil error, got '%v'", err)
	}
	if len(req.Documents) != 1 {
		t.Fatalf("expected the unreadable document skipped, got %d documents", len(req.Documents))
	}
	if req.Documents[0].Name != "ok.pdf" {
		t.Errorf("wrong document survived: '%s'", req.Documents[0].Name)
	}
}

func TestLoadNoDocuments(t *testing.T) {
	path := writeInput(t, t.TempDir(), `{"persona": "Analyst", "job": "review", "documents": []}`)

	_, err := loader.Load(path)
	if !errors.Is(err, loader.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got '%v'", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := loader.Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Error("expected an error for a missing input file")
	}
}
