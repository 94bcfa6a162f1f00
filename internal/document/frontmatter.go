package document

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingFrontMatter indicates the document did not start with a YAML fence.
	ErrMissingFrontMatter = errors.New("document: missing frontmatter")
	// ErrMalformedFrontMatter indicates the YAML block could not be parsed.
	ErrMalformedFrontMatter = errors.New("document: malformed frontmatter")
)

// ParseFrontMatter extracts the metadata block and body from a document that
// starts with `---` YAML fences. Callers that treat frontmatter as optional
// branch on ErrMissingFrontMatter.
func ParseFrontMatter(content []byte) (Meta, []byte, error) {
	if len(content) == 0 {
		return Meta{}, nil, ErrMissingFrontMatter
	}
	normalized := normalizeNewlines(content)
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return Meta{}, nil, ErrMissingFrontMatter
	}
	rest := normalized[4:]
	parts := bytes.SplitN(rest, []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return Meta{}, nil, ErrMalformedFrontMatter
	}
	var meta Meta
	if err := yaml.Unmarshal(parts[0], &meta); err != nil {
		return Meta{}, nil, fmt.Errorf("%w: %v", ErrMalformedFrontMatter, err)
	}
	return meta.Normalized(), parts[1], nil
}

// WriteFrontMatter renders metadata + body with YAML fences.
func WriteFrontMatter(meta Meta, body []byte) ([]byte, error) {
	prepared := meta.Normalized()
	if prepared.Name == "" {
		return nil, fmt.Errorf("document: frontmatter requires name")
	}
	data, err := yaml.Marshal(prepared)
	if err != nil {
		return nil, fmt.Errorf("document: encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(bytes.TrimRight(data, "\n"))
	buf.WriteString("\n---\n\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

func normalizeNewlines(content []byte) []byte {
	return bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
}
