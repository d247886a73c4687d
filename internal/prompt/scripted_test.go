package prompt

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptedConsumesInOrder(t *testing.T) {
	s := NewScripted(map[string][]Answer{
		"entity": {{Selected: []string{"Foo"}}, {Selected: []string{"Bar"}}},
	})
	ctx := context.Background()
	q := Question{Key: "entity", Kind: Select}

	a, err := s.Ask(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"Foo"}, a.Selected)

	a, err = s.Ask(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bar"}, a.Selected)

	_, err = s.Ask(ctx, q)
	assert.True(t, errors.Is(err, ErrScriptExhausted))
	assert.Len(t, s.Asked(), 3)
}

func TestScriptedFallsBackToDefault(t *testing.T) {
	s := NewScripted(nil)
	ctx := context.Background()

	a, err := s.Ask(ctx, Question{Key: "mode", Kind: Select, Default: "incremental"})
	require.NoError(t, err)
	assert.Equal(t, []string{"incremental"}, a.Selected)

	a, err = s.Ask(ctx, Question{Key: "timeout", Kind: Number, Default: "10000"})
	require.NoError(t, err)
	assert.Equal(t, "10000", a.Text)

	a, err = s.Ask(ctx, Question{Key: "continue", Kind: Confirm, Default: "false"})
	require.NoError(t, err)
	assert.False(t, a.Yes)

	_, err = s.Ask(ctx, Question{Key: "components", Kind: MultiSelect, Default: "consumer"})
	assert.True(t, errors.Is(err, ErrScriptExhausted), "multi-select has no default")
}

func TestScriptedHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewScripted(map[string][]Answer{"x": {{Yes: true}}})
	_, err := s.Ask(ctx, Question{Key: "x", Kind: Confirm})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.yml")
	require.NoError(t, os.WriteFile(path, []byte(`mode: incremental
entity: [Foo, Bar]
components: [[consumer], [consumer, producer]]
consumers: [Foo, Bar]
producers: ~
pollingTimeout: 10000
offsetReset: latest
continue: [true, false]
`), 0o644))

	s, err := LoadScript(path)
	require.NoError(t, err)
	ctx := context.Background()

	ask := func(q Question) Answer {
		t.Helper()
		a, err := s.Ask(ctx, q)
		require.NoError(t, err)
		return a
	}

	assert.Equal(t, []string{"incremental"}, ask(Question{Key: "mode", Kind: Select}).Selected)
	assert.Equal(t, []string{"Foo"}, ask(Question{Key: "entity", Kind: Select}).Selected)
	assert.Equal(t, []string{"Bar"}, ask(Question{Key: "entity", Kind: Select}).Selected)
	assert.Equal(t, []string{"consumer"}, ask(Question{Key: "components", Kind: MultiSelect}).Selected)
	assert.Equal(t, []string{"consumer", "producer"}, ask(Question{Key: "components", Kind: MultiSelect}).Selected)
	assert.Equal(t, []string{"Foo", "Bar"}, ask(Question{Key: "consumers", Kind: MultiSelect}).Selected, "flat list is one answer")
	assert.Equal(t, []string{}, ask(Question{Key: "producers", Kind: MultiSelect}).Selected)
	assert.Equal(t, "10000", ask(Question{Key: "pollingTimeout", Kind: Number}).Text)
	assert.Equal(t, []string{"latest"}, ask(Question{Key: "offsetReset", Kind: Select}).Selected)
	assert.True(t, ask(Question{Key: "continue", Kind: Confirm}).Yes)
	assert.False(t, ask(Question{Key: "continue", Kind: Confirm}).Yes)
}

func TestLoadScriptErrors(t *testing.T) {
	_, err := LoadScript(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("mode: {a: 1}\n"), 0o644))
	s, err := LoadScript(path)
	require.NoError(t, err, "answers are decoded lazily")
	_, err = s.Ask(context.Background(), Question{Key: "mode", Kind: Select})
	assert.Error(t, err)
}

func TestQuestionLabel(t *testing.T) {
	q := Question{Choices: []Choice{{Value: "none", Label: "None, I am done"}, {Value: "Foo"}}}
	assert.Equal(t, "None, I am done", q.Label("none"))
	assert.Equal(t, "Foo", q.Label("Foo"))
	assert.Equal(t, "Bar", q.Label("Bar"))
	assert.True(t, q.HasChoice("Foo"))
	assert.False(t, q.HasChoice("Bar"))
}
