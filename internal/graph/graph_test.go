package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSample(t *testing.T) *Graph {
	t.Helper()
	b := NewBuilder()
	require.NoError(t, b.Add(StartAddress, &Situation{Text: "intro", Choices: []Choice{{Label: "Begin", Target: "C1"}}}))
	require.NoError(t, b.Add("C1", &Transition{Text: "chapter 1", Target: "C1:root"}))
	require.NoError(t, b.Add("C1:root", &Situation{Text: "decide", Choices: []Choice{
		{Label: "good", Target: "C1:good"},
		{Label: "bad", Target: "C1:bad"},
	}}))
	require.NoError(t, b.Add("C1:good", &Outcome{ConceptIndex: 1, Concept: "A", ScorePercent: 100, Next: ResultsAddress}))
	require.NoError(t, b.Add("C1:bad", &Outcome{ConceptIndex: 1, Concept: "A", ScorePercent: 0, Next: ResultsAddress}))
	require.NoError(t, b.Add(ResultsAddress, &Situation{Title: "Results"}))
	g, err := b.Build(StartAddress)
	require.NoError(t, err)
	return g
}

func TestBuild_Valid(t *testing.T) {
	g := buildSample(t)

	assert.Equal(t, StartAddress, g.Start())
	assert.Equal(t, 6, g.Len())
	assert.Equal(t, []string{StartAddress, "C1", "C1:root", "C1:good", "C1:bad", ResultsAddress}, g.Addresses())
	assert.Len(t, g.Outcomes(1), 2)
	assert.Empty(t, g.Outcomes(2))
	require.NoError(t, g.Validate([]string{"A"}))
}

func TestValidate_MissingConceptOutcome(t *testing.T) {
	g := buildSample(t)
	err := g.Validate([]string{"A", "B"})

	var gerr *GraphError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, NoEndingsForConcept, gerr.Kind)
	assert.Equal(t, "B", gerr.Concept)
}

func TestBuilder_DuplicateAddress(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add("x", &Transition{Target: "y"}))
	err := b.Add("x", &Transition{Target: "y"})

	var gerr *GraphError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, DuplicateAddress, gerr.Kind)
	assert.Equal(t, "x", gerr.Address)
}

func TestBuild_DanglingReference(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add(StartAddress, &Transition{Target: "nowhere"}))
	_, err := b.Build(StartAddress)

	var gerr *GraphError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, DanglingReference, gerr.Kind)
	assert.Equal(t, "nowhere", gerr.Ref)
}

func TestBuild_MissingStart(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add(ResultsAddress, &Situation{}))
	_, err := b.Build(StartAddress)

	var gerr *GraphError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, DanglingReference, gerr.Kind)
}

func TestBuild_DeadEnd(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add(StartAddress, &Situation{Text: "stuck"}))
	_, err := b.Build(StartAddress)

	var gerr *GraphError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, DeadEnd, gerr.Kind)
}

func TestUnreachableOutcomeDoesNotCount(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add(StartAddress, &Situation{Choices: []Choice{{Label: "go", Target: ResultsAddress}}}))
	require.NoError(t, b.Add("orphan", &Outcome{ConceptIndex: 1, Next: ResultsAddress}))
	require.NoError(t, b.Add(ResultsAddress, &Situation{}))
	g, err := b.Build(StartAddress)
	require.NoError(t, err)

	assert.False(t, g.Reachable()["orphan"])
	assert.Empty(t, g.Outcomes(1))
}

func TestClampPercent(t *testing.T) {
	assert.Equal(t, 0, ClampPercent(-20))
	assert.Equal(t, 55, ClampPercent(55))
	assert.Equal(t, 100, ClampPercent(140))
}

func TestNode_ReturnsCopies(t *testing.T) {
	g := buildSample(t)

	n, ok := g.Node("C1:root")
	require.True(t, ok)
	s := n.(*Situation)
	s.Choices[0].Target = "elsewhere"
	s.Choices = nil

	tr, _ := g.Node("C1")
	tr.(*Transition).Target = "elsewhere"

	g.Outcomes(1)[0].ScorePercent = 5

	again, _ := g.Node("C1:root")
	assert.Equal(t, []string{"C1:good", "C1:bad"}, again.Targets())
	tr, _ = g.Node("C1")
	assert.Equal(t, []string{"C1:root"}, tr.Targets())
	assert.Equal(t, 100, g.Outcomes(1)[0].ScorePercent)
	require.NoError(t, g.Validate([]string{"A"}))
}
