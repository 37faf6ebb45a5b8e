package document

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/redlinehq/redline/internal/progress"
)

// sectionHeadingLevel is the deepest heading level that starts a new
// section. Deeper headings stay inside the enclosing section's text.
const sectionHeadingLevel = 2

// ParseMarkdown splits markdown source into plain-text sections at
// headings of level <= sectionHeadingLevel. Content before the first
// heading becomes an "introduction" section. Only the plain text survives;
// annotations anchor to rune offsets into it, so the split must be
// deterministic for a given source.
func ParseMarkdown(source []byte, title string) Document {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	root := md.Parser().Parse(text.NewReader(source))

	doc := Document{Title: title}
	current := Section{ID: "introduction", Title: "Introduction"}
	seen := map[string]int{}
	var blocks []string

	flush := func() {
		current.Content = strings.Join(blocks, "\n\n")
		blocks = nil
		if strings.TrimSpace(current.Content) != "" {
			doc.Sections = append(doc.Sections, current)
		}
	}

	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		if h, ok := node.(*ast.Heading); ok && h.Level <= sectionHeadingLevel {
			flush()
			headingTitle := string(h.Text(source))
			if doc.Title == "" && h.Level == 1 {
				doc.Title = headingTitle
			}
			current = Section{ID: uniqueSlug(headingTitle, seen), Title: headingTitle}
			continue
		}
		if t := string(node.Text(source)); strings.TrimSpace(t) != "" {
			blocks = append(blocks, t)
		}
	}
	flush()

	if doc.Title == "" {
		doc.Title = "Untitled"
	}
	return doc
}

// uniqueSlug turns a heading title into a section id, suffixing a counter
// when the same title appears more than once.
func uniqueSlug(title string, seen map[string]int) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "section"
	}
	seen[slug]++
	if n := seen[slug]; n > 1 {
		return fmt.Sprintf("%s-%d", slug, n)
	}
	return slug
}

// ImportFile parses one markdown file and persists it as a document.
func ImportFile(ctx context.Context, store *Store, path string) (*Document, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	doc := ParseMarkdown(source, "")
	if doc.Title == "Untitled" {
		doc.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if len(doc.Sections) == 0 {
		return nil, fmt.Errorf("no sections found in %s", path)
	}
	doc.SourcePath = path

	return store.Create(ctx, doc)
}

// ImportDir imports every markdown file under root that passes the
// include/exclude glob filters, reporting progress along the way.
func ImportDir(ctx context.Context, store *Store, root string, include, exclude []string, reporter progress.Reporter) ([]Document, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if !MatchesInclude(rel, include) || MatchesExclude(rel, exclude) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	reporter.Start(len(paths))
	defer reporter.Finish()

	var docs []Document
	for i, path := range paths {
		reporter.Update(i+1, filepath.Base(path))
		doc, err := ImportFile(ctx, store, path)
		if err != nil {
			return docs, fmt.Errorf("importing %s: %w", path, err)
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}
