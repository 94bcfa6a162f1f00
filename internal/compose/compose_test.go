package compose

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sota-codex/codex/internal/config"
	"github.com/sota-codex/codex/internal/corpus"
	"github.com/sota-codex/codex/internal/document"
	"github.com/sota-codex/codex/internal/skills"
)

func fixtureBuilder(t *testing.T) *Builder {
	t.Helper()
	root := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("AGENTS.md", "# House rules\n\nPrefer small diffs.\n")
	write("web/AGENTS.md", "# Frontend rules\n\nUse the tiering table.\n")
	write(".codex/skills/code-review/SKILL.md",
		"---\nname: code-review\ndescription: review skill\nkind: skill\ntriggers:\n  - review\n---\n\nWalk the checklist.\n")
	write(".codex/skills/blueprint-planning/SKILL.md",
		"---\nname: blueprint-planning\ndescription: planning skill\nkind: skill\ntriggers:\n  - blueprint\n---\n\nFill the template first.\n")

	cfg, err := config.NewConfig(root)
	require.NoError(t, err)
	idx, err := corpus.Scan(cfg)
	require.NoError(t, err)
	reg, err := skills.FromIndex(idx)
	require.NoError(t, err)
	return NewBuilder(cfg, idx, reg)
}

func TestBuildOrdersAgentsBeforeSkills(t *testing.T) {
	builder := fixtureBuilder(t)
	ctx, err := builder.Build("review the navbar change", "web/Navbar.tsx")
	require.NoError(t, err)

	require.Len(t, ctx.Sections, 3)
	assert.Equal(t, "AGENTS.md", ctx.Sections[0].Source)
	assert.Equal(t, "web/AGENTS.md", ctx.Sections[1].Source)
	assert.Equal(t, ".codex/skills/code-review/SKILL.md", ctx.Sections[2].Source)
	assert.Equal(t, "review", ctx.Sections[2].Trigger)
	assert.Equal(t, document.KindSkill, ctx.Sections[2].Kind)
}

func TestBuildWithoutPathUsesRootChain(t *testing.T) {
	builder := fixtureBuilder(t)
	ctx, err := builder.Build("draft a blueprint for search", "")
	require.NoError(t, err)

	require.NotEmpty(t, ctx.Sections)
	assert.Equal(t, "AGENTS.md", ctx.Sections[0].Source)
	assert.Contains(t, ctx.Sources(), ".codex/skills/blueprint-planning/SKILL.md")
	assert.NotContains(t, ctx.Sources(), "web/AGENTS.md")
}

func TestBuildSkipsInvalidAgents(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("AGENTS.md", "# House rules\n")
	write("web/AGENTS.md", "---\nname: [unterminated\n---\n\n# Frontend rules\n")

	cfg, err := config.NewConfig(root)
	require.NoError(t, err)
	idx, err := corpus.Scan(cfg)
	require.NoError(t, err)
	reg, err := skills.FromIndex(idx)
	require.NoError(t, err)

	ctx, err := NewBuilder(cfg, idx, reg).Build("touch the navbar", "web/Navbar.tsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"AGENTS.md"}, ctx.Sources())
}

func TestBuildRequiresTask(t *testing.T) {
	builder := fixtureBuilder(t)
	_, err := builder.Build("   ", "")
	require.Error(t, err)
}

func TestMarkdownLabelsSources(t *testing.T) {
	builder := fixtureBuilder(t)
	ctx, err := builder.Build("review this", "")
	require.NoError(t, err)

	rendered := ctx.Markdown()
	assert.Contains(t, rendered, "Task: review this")
	assert.Contains(t, rendered, "<!-- source: AGENTS.md -->")
	assert.Contains(t, rendered, "Walk the checklist.")
	assert.Equal(t, len(rendered), ctx.Size())
}

func TestJSONRoundTrip(t *testing.T) {
	builder := fixtureBuilder(t)
	ctx, err := builder.Build("review this", "")
	require.NoError(t, err)

	data, err := ctx.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"task": "review this"`)
}
