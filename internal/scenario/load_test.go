package scenario

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const treeYAML = `
title: Harbor inspection
introduction:
  situation: A container ship has docked.
  role: You are the duty inspector.
  stakes: Port safety.
chapters:
  - concept: Risk assessment
    setup: The manifest is incomplete.
    tree:
      root: start
      nodes:
        - id: start
          situation: The captain is impatient.
          choices:
            - text: Inspect every container
              leads_to: good
              transition: It takes all night, but you find the problem.
            - text: Wave it through
              leads_to: bad
        - id: good
          is_ending: true
          score_percent: 100
          title: Thorough
        - id: bad
          is_ending: true
          score_percent: 0
conclusion:
  high_score: Well done.
`

func TestDecode_Tree(t *testing.T) {
	d, err := Decode([]byte(treeYAML))
	require.NoError(t, err)

	assert.Equal(t, "Harbor inspection", d.Title)
	require.Len(t, d.Chapters, 1)
	ch := d.Chapters[0]
	require.True(t, ch.HasTree())
	assert.Equal(t, "start", ch.Tree.Root)
	require.Len(t, ch.Tree.Nodes, 3)
	assert.Equal(t, "good", ch.Tree.Nodes[0].Choices[0].LeadsTo)
	assert.True(t, ch.Tree.Nodes[1].IsEnding)
	assert.Equal(t, 100, ch.Tree.Nodes[1].ScorePercent)
	assert.Equal(t, "Well done.", d.Conclusion.High)
}

func TestDecode_LinearChainJSON(t *testing.T) {
	src := `{"chapters":[{"concept":"X","decisions":[{"situation":"s","prompt":"p","choices":[` +
		`{"text":"a","quality":"best","consequence":"c","feedback":"f"},` +
		`{"text":"b","quality":"POOR"}]}]}]}`
	d, err := Decode([]byte(src))
	require.NoError(t, err)

	ch, ok := d.ChapterFor("X")
	require.True(t, ok)
	assert.False(t, ch.HasTree())
	require.Len(t, ch.Steps, 1)
	assert.Equal(t, QualityPoor, ch.Steps[0].Choices[1].Quality.Normalize())
}

func TestDecode_RejectsUnknownField(t *testing.T) {
	_, err := Decode([]byte("title: x\nchapterz: []\n"))
	require.Error(t, err)
}

func TestQuality_ScorePercent(t *testing.T) {
	tests := []struct {
		q     Quality
		score int
		known bool
	}{
		{"best", 100, true},
		{"Optimal", 100, true},
		{"partial", 50, true},
		{" adequate ", 50, true},
		{"poor", 0, true},
		{"excellent", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		score, known := tt.q.ScorePercent()
		assert.Equal(t, tt.score, score, "quality %q", tt.q)
		assert.Equal(t, tt.known, known, "quality %q", tt.q)
	}
}

func TestWriteThenLoad(t *testing.T) {
	d, err := Decode([]byte(treeYAML))
	require.NoError(t, err)

	for _, name := range []string{"s.yaml", "s.json"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, Write(path, d))
		got, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, d, got, name)
	}
}
