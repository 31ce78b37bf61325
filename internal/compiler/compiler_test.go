package compiler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/edquest/internal/graph"
	"github.com/abhisek/edquest/internal/ledger"
	"github.com/abhisek/edquest/internal/scenario"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func testLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l, err := ledger.New([]ledger.Concept{{Name: "A", Points: 10}, {Name: "B", Points: 20}}, 70)
	require.NoError(t, err)
	return l
}

// branching returns a two-level tree: root -> (mid | bad), mid -> (good | ok).
func branching(concept string) scenario.Chapter {
	return scenario.Chapter{
		Concept: concept,
		Title:   concept + " chapter",
		Setup:   "setup " + concept,
		Tree: &scenario.BranchTree{
			Root: "root",
			Nodes: []scenario.TreeNode{
				{ID: "root", Situation: "first", Choices: []scenario.TreeChoice{
					{Text: "careful", LeadsTo: "mid", Transition: "you slow down"},
					{Text: "reckless", LeadsTo: "bad"},
				}},
				{ID: "mid", Situation: "second", Choices: []scenario.TreeChoice{
					{Text: "best", LeadsTo: "good"},
					{Text: "fine", LeadsTo: "ok"},
					{Text: "meh", LeadsTo: "bad", Transition: "it goes wrong"},
				}},
				{ID: "good", IsEnding: true, ScorePercent: 100, Title: "Great"},
				{ID: "ok", IsEnding: true, ScorePercent: 50},
				{ID: "bad", IsEnding: true, ScorePercent: 0, Narrative: "oops"},
			},
		},
		Resolution: "the end of " + concept,
	}
}

func twoChapters() *scenario.Description {
	return &scenario.Description{
		Title:        "Test",
		Introduction: scenario.Introduction{Situation: "intro", Role: "you", Stakes: "high"},
		Chapters:     []scenario.Chapter{branching("A"), branching("B")},
	}
}

func snapshot(g *graph.Graph) map[string]graph.Node {
	out := make(map[string]graph.Node, g.Len())
	for _, addr := range g.Addresses() {
		n, _ := g.Node(addr)
		out[addr] = n
	}
	return out
}

func TestCompile_BranchTree(t *testing.T) {
	c := New(WithShuffler(Identity), WithLogger(quiet))
	res, err := c.Compile(testLedger(t), twoChapters())
	require.NoError(t, err)
	g := res.Graph

	assert.Equal(t, graph.StartAddress, g.Start())
	assert.Equal(t, []string{
		"Start",
		"C1", "C1:root", "T1:root>1", "C1:mid", "T1:mid>3", "C1:good", "C1:ok", "C1:bad",
		"C2", "C2:root", "T2:root>1", "C2:mid", "T2:mid>3", "C2:good", "C2:ok", "C2:bad",
		"Results",
	}, g.Addresses())

	start, _ := g.Node("Start")
	assert.Equal(t, []string{"C1"}, start.Targets())
	assert.Contains(t, start.(*graph.Situation).Text, "A (10 pts)")

	entry, _ := g.Node("C1")
	require.IsType(t, &graph.Transition{}, entry)
	assert.Equal(t, "C1:root", entry.(*graph.Transition).Target)
	assert.Equal(t, "Chapter 1: A chapter", entry.(*graph.Transition).Title)

	root, _ := g.Node("C1:root")
	assert.Equal(t, []string{"T1:root>1", "C1:bad"}, root.Targets())

	wp, _ := g.Node("T1:root>1")
	assert.Equal(t, &graph.Transition{Text: "you slow down", Target: "C1:mid"}, wp)

	good, _ := g.Node("C1:good")
	assert.Equal(t, &graph.Outcome{
		ConceptIndex: 1, Concept: "A", ScorePercent: 100, Title: "Great",
		Narrative: "the end of A", Next: "C2",
	}, good)

	bad, _ := g.Node("C2:bad")
	o := bad.(*graph.Outcome)
	assert.Equal(t, 2, o.ConceptIndex)
	assert.Equal(t, "Results", o.Next)
	assert.Equal(t, "Not quite right.", o.Title)
	assert.Equal(t, "oops\n\nthe end of B", o.Narrative)

	results, ok := g.Node("Results")
	require.True(t, ok)
	assert.Empty(t, results.Targets())
}

func TestCompile_NoDanglingEdgesAndEveryConceptScored(t *testing.T) {
	l := testLedger(t)
	res, err := New(WithLogger(quiet)).Compile(l, twoChapters())
	require.NoError(t, err)
	g := res.Graph

	for _, addr := range g.Addresses() {
		n, _ := g.Node(addr)
		for _, target := range n.Targets() {
			_, ok := g.Node(target)
			assert.True(t, ok, "%s -> %s", addr, target)
		}
	}
	for i := 1; i <= l.Len(); i++ {
		assert.NotEmpty(t, g.Outcomes(i), "concept %d", i)
	}
}

func TestCompile_ShuffleOnlyChangesDisplayOrder(t *testing.T) {
	reverse := ShufflerFunc(func(n int) []int {
		p := Identity.Perm(n)
		slices.Reverse(p)
		return p
	})

	l := testLedger(t)
	a, err := New(WithShuffler(Identity), WithLogger(quiet)).Compile(l, twoChapters())
	require.NoError(t, err)
	b, err := New(WithShuffler(reverse), WithLogger(quiet)).Compile(l, twoChapters())
	require.NoError(t, err)

	assert.Equal(t, a.Graph.Addresses(), b.Graph.Addresses())

	rootB, _ := b.Graph.Node("C1:mid")
	labels := make([]string, 0, 3)
	for _, ch := range rootB.(*graph.Situation).Choices {
		labels = append(labels, ch.Label)
	}
	assert.Equal(t, []string{"meh", "fine", "best"}, labels)

	sortChoices := cmpopts.SortSlices(func(x, y graph.Choice) bool { return x.Label < y.Label })
	if diff := cmp.Diff(snapshot(a.Graph), snapshot(b.Graph), sortChoices); diff != "" {
		t.Errorf("graphs differ beyond choice order (-identity +reversed):\n%s", diff)
	}
}

func TestCompile_SeededIsReproducible(t *testing.T) {
	l := testLedger(t)
	a, err := New(WithShuffler(NewSeededShuffler(7)), WithLogger(quiet)).Compile(l, twoChapters())
	require.NoError(t, err)
	b, err := New(WithShuffler(NewSeededShuffler(7)), WithLogger(quiet)).Compile(l, twoChapters())
	require.NoError(t, err)

	if diff := cmp.Diff(snapshot(a.Graph), snapshot(b.Graph)); diff != "" {
		t.Errorf("same seed produced different graphs:\n%s", diff)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *scenario.Description)
		kind   graph.ErrorKind
	}{
		{
			name:   "missing chapter",
			mutate: func(d *scenario.Description) { d.Chapters = d.Chapters[:1] },
			kind:   graph.NoEndingsForConcept,
		},
		{
			name: "dangling leads_to",
			mutate: func(d *scenario.Description) {
				d.Chapters[0].Tree.Nodes[0].Choices[1].LeadsTo = "nowhere"
			},
			kind: graph.DanglingReference,
		},
		{
			name:   "missing root",
			mutate: func(d *scenario.Description) { d.Chapters[1].Tree.Root = "gone" },
			kind:   graph.DanglingReference,
		},
		{
			name: "duplicate node id",
			mutate: func(d *scenario.Description) {
				d.Chapters[0].Tree.Nodes[4].ID = "ok"
			},
			kind: graph.DuplicateAddress,
		},
		{
			name: "duplicate chapter",
			mutate: func(d *scenario.Description) {
				d.Chapters = append(d.Chapters, branching("A"))
			},
			kind: graph.DuplicateAddress,
		},
		{
			name: "decision without choices",
			mutate: func(d *scenario.Description) {
				d.Chapters[0].Tree.Nodes[1].Choices = nil
			},
			kind: graph.DeadEnd,
		},
		{
			name: "no reachable ending",
			mutate: func(d *scenario.Description) {
				d.Chapters[1].Tree = &scenario.BranchTree{Root: "a", Nodes: []scenario.TreeNode{
					{ID: "a", Situation: "loop", Choices: []scenario.TreeChoice{{Text: "again", LeadsTo: "b"}}},
					{ID: "b", Situation: "loop", Choices: []scenario.TreeChoice{{Text: "again", LeadsTo: "a"}}},
				}}
			},
			kind: graph.NoEndingsForConcept,
		},
		{
			name: "empty chapter",
			mutate: func(d *scenario.Description) {
				d.Chapters[0].Tree = nil
			},
			kind: graph.NoEndingsForConcept,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := twoChapters()
			tt.mutate(d)
			res, err := New(WithLogger(quiet)).Compile(testLedger(t), d)
			assert.Nil(t, res)

			var gerr *graph.GraphError
			require.True(t, errors.As(err, &gerr), "expected GraphError, got %v", err)
			assert.Equal(t, tt.kind, gerr.Kind)
		})
	}
}

func TestCompile_NilLedger(t *testing.T) {
	_, err := New(WithLogger(quiet)).Compile(nil, twoChapters())
	var cfgErr *ledger.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ledger.EmptyLedger, cfgErr.Kind)
}

func TestCompile_BadShuffler(t *testing.T) {
	broken := ShufflerFunc(func(n int) []int { return make([]int, n) })
	_, err := New(WithShuffler(broken), WithLogger(quiet)).Compile(testLedger(t), twoChapters())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a permutation")
}

func TestCompile_Warnings(t *testing.T) {
	d := twoChapters()
	tree := d.Chapters[1].Tree
	// B: only "good" is reachable, plus an orphan ending with an out-of-range score.
	tree.Nodes[0].Choices = []scenario.TreeChoice{{Text: "only", LeadsTo: "good"}}
	tree.Nodes[2].ScorePercent = 150
	d.Chapters = append(d.Chapters, scenario.Chapter{Concept: "Z"})

	res, err := New(WithShuffler(Identity), WithLogger(quiet)).Compile(testLedger(t), d)
	require.NoError(t, err)

	kinds := make(map[WarningKind][]string)
	for _, w := range res.Warnings {
		kinds[w.Kind] = append(kinds[w.Kind], w.Concept+":"+w.Ref)
	}
	assert.Equal(t, []string{"Z:"}, kinds[ExtraChapter])
	assert.ElementsMatch(t, []string{"B:ok", "B:bad"}, kinds[UnreachableEnding])
	assert.Equal(t, []string{"B:mid"}, kinds[UnreachableNode])
	assert.Equal(t, []string{"B:good"}, kinds[ScoreClamped])
	assert.Equal(t, []string{"B:"}, kinds[UniformOutcomes])

	good, _ := res.Graph.Node("C2:good")
	assert.Equal(t, 100, good.(*graph.Outcome).ScorePercent)
	_, ok := res.Graph.Node("C2:mid")
	assert.False(t, ok, "unreachable nodes are not compiled")
}

func TestCompile_LinearChain(t *testing.T) {
	l, err := ledger.New([]ledger.Concept{{Name: "Triage", Points: 10}}, 70)
	require.NoError(t, err)
	d := &scenario.Description{Chapters: []scenario.Chapter{{
		Concept:    "Triage",
		Resolution: "Shift over.",
		Steps: []scenario.Step{
			{Situation: "s1", Choices: []scenario.StepChoice{
				{Text: "a", Quality: "best", Consequence: "calm"},
				{Text: "b", Quality: "poor"},
			}},
			{Situation: "s2", Prompt: "p2", Choices: []scenario.StepChoice{
				{Text: "x", Quality: "optimal", Feedback: "because"},
				{Text: "y", Quality: "adequate", Consequence: "meh"},
				{Text: "z", Quality: "poor", Feedback: "no"},
			}},
		},
	}}}

	res, err := New(WithShuffler(Identity), WithLogger(quiet)).Compile(l, d)
	require.NoError(t, err)
	g := res.Graph

	step1, _ := g.Node("C1:step1")
	assert.Equal(t, []string{"T1:step1>1", "T1:step1>2"}, step1.Targets())
	calm, _ := g.Node("T1:step1>1")
	assert.Equal(t, &graph.Transition{Text: "calm", Target: "C1:step2"}, calm)
	fallback, _ := g.Node("T1:step1>2")
	assert.Equal(t, "This creates issues.", fallback.(*graph.Transition).Text)

	step2, _ := g.Node("C1:step2")
	assert.Equal(t, "p2", step2.(*graph.Situation).Prompt)
	assert.Equal(t, []string{"C1:step2-end1", "C1:step2-end2", "C1:step2-end3"}, step2.Targets())

	outcomes := g.Outcomes(1)
	require.Len(t, outcomes, 3)
	assert.Equal(t, []int{100, 50, 0}, []int{outcomes[0].ScorePercent, outcomes[1].ScorePercent, outcomes[2].ScorePercent})
	assert.Equal(t, "Success.\n\nShift over.", outcomes[0].Narrative)
	assert.Equal(t, "because", outcomes[0].Feedback)
	assert.Equal(t, "no\n\nBetter approach: because", outcomes[2].Feedback)
	assert.Empty(t, res.Warnings)
}

func TestCompile_LinearChainPromotesFirstChoice(t *testing.T) {
	l, err := ledger.New([]ledger.Concept{{Name: "X", Points: 5}}, 50)
	require.NoError(t, err)
	d := &scenario.Description{Chapters: []scenario.Chapter{{
		Concept: "X",
		Steps: []scenario.Step{{Situation: "s", Choices: []scenario.StepChoice{
			{Text: "a", Quality: "meh"},
			{Text: "b", Quality: "poor"},
		}}},
	}}}

	res, err := New(WithShuffler(Identity), WithLogger(quiet)).Compile(l, d)
	require.NoError(t, err)

	outcomes := res.Graph.Outcomes(1)
	require.Len(t, outcomes, 2)
	assert.Equal(t, 100, outcomes[0].ScorePercent)
	assert.Equal(t, 0, outcomes[1].ScorePercent)

	var kinds []WarningKind
	for _, w := range res.Warnings {
		kinds = append(kinds, w.Kind)
	}
	assert.Equal(t, []WarningKind{UnknownQuality, NoBestChoice}, kinds)
}

func TestCompileAll(t *testing.T) {
	l := testLedger(t)
	c := New(WithLogger(quiet))

	jobs := []Job{{Ledger: l, Description: twoChapters()}, {Ledger: l, Description: twoChapters()}, {Ledger: l, Description: twoChapters()}}
	results, err := c.CompileAll(context.Background(), jobs, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, 18, r.Graph.Len())
	}

	broken := twoChapters()
	broken.Chapters = broken.Chapters[:1]
	_, err = c.CompileAll(context.Background(), []Job{{Ledger: l, Description: twoChapters()}, {Ledger: l, Description: broken}}, 0)
	var gerr *graph.GraphError
	require.ErrorAs(t, err, &gerr)
	assert.Contains(t, err.Error(), "job 2")
}

func TestCompile_WaypointsNeverCollideWithNodeIDs(t *testing.T) {
	d := twoChapters()
	d.Chapters[0] = scenario.Chapter{
		Concept: "A",
		Tree: &scenario.BranchTree{
			Root: "root",
			Nodes: []scenario.TreeNode{
				{ID: "root", Situation: "first", Choices: []scenario.TreeChoice{
					{Text: "walk", LeadsTo: "root>1", Transition: "you walk on"},
					{Text: "stop", LeadsTo: "end"},
				}},
				{ID: "root>1", IsEnding: true, ScorePercent: 100},
				{ID: "end", IsEnding: true, ScorePercent: 0},
			},
		},
	}

	res, err := New(WithShuffler(Identity), WithLogger(quiet)).Compile(testLedger(t), d)
	require.NoError(t, err)

	ending, ok := res.Graph.Node("C1:root>1")
	require.True(t, ok)
	assert.Equal(t, graph.KindOutcome, ending.Kind())

	wp, ok := res.Graph.Node("T1:root>1")
	require.True(t, ok)
	assert.Equal(t, []string{"C1:root>1"}, wp.Targets())

	root, _ := res.Graph.Node("C1:root")
	assert.Equal(t, []string{"T1:root>1", "C1:end"}, root.Targets())
}

func TestCompileAll_SeededJobsAreReproducible(t *testing.T) {
	l := testLedger(t)
	c := New(WithLogger(quiet))

	run := func() []*Result {
		jobs := make([]Job, 16)
		for i := range jobs {
			jobs[i] = Job{Ledger: l, Description: twoChapters()}
		}
		SeededJobs(jobs, 42)
		results, err := c.CompileAll(context.Background(), jobs, 4)
		require.NoError(t, err)
		return results
	}

	first := run()
	for range 5 {
		again := run()
		for i := range first {
			if diff := cmp.Diff(snapshot(first[i].Graph), snapshot(again[i].Graph)); diff != "" {
				t.Fatalf("job %d differs between seeded runs:\n%s", i+1, diff)
			}
		}
	}
}
