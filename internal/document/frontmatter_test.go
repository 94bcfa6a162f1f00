package document

import (
	"bytes"
	"errors"
	"testing"
)

const sampleSkill = `---
name: code-review
description: Structured review of a change set.
kind: skill
version: 1.0.0
triggers:
  - review
  - check my code
---

# Code Review

Walk the checklist top to bottom.
`

func TestParseFrontMatter(t *testing.T) {
	meta, body, err := ParseFrontMatter([]byte(sampleSkill))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if meta.Name != "code-review" || meta.Kind != KindSkill {
		t.Fatalf("unexpected meta: %+v", meta)
	}
	if len(meta.Triggers) != 2 || meta.Triggers[1] != "check my code" {
		t.Fatalf("unexpected triggers: %v", meta.Triggers)
	}
	if !bytes.Contains(body, []byte("# Code Review")) {
		t.Fatalf("body lost: %q", body)
	}
}

func TestParseFrontMatterMissing(t *testing.T) {
	_, _, err := ParseFrontMatter([]byte("# Just markdown\n"))
	if !errors.Is(err, ErrMissingFrontMatter) {
		t.Fatalf("expected ErrMissingFrontMatter, got %v", err)
	}
}

func TestParseFrontMatterUnterminated(t *testing.T) {
	_, _, err := ParseFrontMatter([]byte("---\nname: x\n"))
	if !errors.Is(err, ErrMalformedFrontMatter) {
		t.Fatalf("expected ErrMalformedFrontMatter, got %v", err)
	}
}

func TestParseFrontMatterCRLF(t *testing.T) {
	crlf := bytes.ReplaceAll([]byte(sampleSkill), []byte("\n"), []byte("\r\n"))
	meta, _, err := ParseFrontMatter(crlf)
	if err != nil {
		t.Fatalf("parse crlf: %v", err)
	}
	if meta.Name != "code-review" {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}

func TestWriteFrontMatterRoundTrip(t *testing.T) {
	in := Meta{Name: "blueprint", Kind: KindTemplate, Fields: []string{"Title", "Summary"}}
	rendered, err := WriteFrontMatter(in, []byte("# {{.Title}}\n"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	out, body, err := ParseFrontMatter(rendered)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if out.Name != "blueprint" || len(out.Fields) != 2 {
		t.Fatalf("round trip lost meta: %+v", out)
	}
	if !bytes.Contains(body, []byte("{{.Title}}")) {
		t.Fatalf("round trip lost body: %q", body)
	}
}

func TestWriteFrontMatterRequiresName(t *testing.T) {
	if _, err := WriteFrontMatter(Meta{}, nil); err == nil {
		t.Fatalf("expected unnamed frontmatter to fail")
	}
}

func TestValidateFor(t *testing.T) {
	cases := []struct {
		name    string
		meta    Meta
		kind    Kind
		wantErr bool
	}{
		{"skill ok", Meta{Name: "s", Description: "d"}, KindSkill, false},
		{"skill missing description", Meta{Name: "s"}, KindSkill, true},
		{"template missing fields", Meta{Name: "t"}, KindTemplate, true},
		{"agents empty meta", Meta{}, KindAgents, false},
		{"kind mismatch", Meta{Name: "s", Description: "d", Kind: KindGuide}, KindSkill, true},
	}
	for _, tc := range cases {
		err := tc.meta.ValidateFor(tc.kind)
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
	}
}
