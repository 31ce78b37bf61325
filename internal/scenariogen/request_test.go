package scenariogen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRequest_JSON(t *testing.T) {
	r, err := DecodeRequest([]byte(`{
		"theme": "Space Station",
		"key_concepts": ["Orbits", {"name": "Life Support", "points": 40}],
		"default_points": 15,
		"passing_threshold": 60,
		"decision_nodes": 2
	}`))
	require.NoError(t, err)

	l, err := r.Ledger()
	require.NoError(t, err)
	assert.Equal(t, 55, l.TotalPoints())
	assert.Equal(t, 15, l.Points("Orbits"))
	assert.Equal(t, 60, l.PassingThreshold())
	assert.Equal(t, 2, r.decisionNodes())
	assert.Equal(t, DefaultBranchesPerNode, r.branchesPerNode())
}

func TestRequestLedger_DefaultThreshold(t *testing.T) {
	r, err := DecodeRequest([]byte("theme: x\nkey_concepts: [A]\n"))
	require.NoError(t, err)
	l, err := r.Ledger()
	require.NoError(t, err)
	assert.Equal(t, 70, l.PassingThreshold())
	assert.Equal(t, 10, l.TotalPoints())
}

func TestLoadRequest_FileSources(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("Triage first."), 0o644))
	path := filepath.Join(dir, "req.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`theme: Clinical
key_concepts: [Triage]
source_content: Intro text.
content_sources:
  - type: file
    path: notes.md
  - type: text
    title: Memo
    content: Wash hands.
  - type: text
    title: Empty
`), 0o644))

	r, err := LoadRequest(path)
	require.NoError(t, err)
	assert.Equal(t, "Intro text.\n\n--- SOURCE: notes.md ---\nTriage first.\n\n--- SOURCE: Memo ---\nWash hands.", r.SourceText())
}

func TestLoadRequest_MissingSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "req.yaml")
	require.NoError(t, os.WriteFile(path, []byte("content_sources: [{type: file, path: nope.txt}]\n"), 0o644))

	_, err := LoadRequest(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.txt")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3, "..."))
	assert.Equal(t, "ab...", truncate("abc", 2, "..."))
	assert.Equal(t, "żó!", truncate("żółw", 2, "!"))
}

func TestBuildUserMessage_TruncatesSources(t *testing.T) {
	r := testRequest()
	r.SourceContent = strings.Repeat("x", maxSourceRunes+10)
	r.CaseStudy = &CaseStudy{Content: strings.Repeat("y", maxCaseStudyRunes+1)}
	l, err := r.Ledger()
	require.NoError(t, err)

	msg := buildUserMessage(r, l)
	assert.Contains(t, msg, "[Content truncated...]")
	assert.Contains(t, msg, "[Truncated...]")
	assert.Contains(t, msg, "Case study (primary source, build the scenario inside it): Case Study")
	assert.NotContains(t, msg, strings.Repeat("x", maxSourceRunes+1))
}

func TestThemeFor(t *testing.T) {
	tests := []struct {
		theme   string
		setting string
	}{
		{"Deep Space Mission", "aboard a deep space research vessel or space station"},
		{"A Murder MYSTERY", "crime scenes, interrogation rooms, and investigation sites"},
		{"NGO field work", "community centers, field operations, or organizational headquarters"},
		{"Healthcare/Clinical Setting", "hospital wards, clinics, or medical facilities"},
		{"gardening", "a professional environment"},
		{"", "a professional environment"},
	}
	for _, tt := range tests {
		t.Run(tt.theme, func(t *testing.T) {
			assert.Equal(t, tt.setting, ThemeFor(tt.theme).Setting)
		})
	}
}

func TestThemeTable(t *testing.T) {
	require.Len(t, themes, 12)
	for _, th := range themes {
		assert.NotEmpty(t, th.Keys)
		assert.Len(t, th.NPCs, 5, th.Keys)
		assert.Len(t, th.Elements, 5, th.Keys)
	}
	assert.Equal(t, "Supervisor", genericTheme.NPC(5))
}
