package prompt

import (
	"context"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Scripted answers questions from a fixed script keyed by question key.
// Answers for the same key are consumed in order, so a key asked once per
// incremental round carries one answer per round.
//
// A question with no scripted answer falls back to its Default when it has
// one; otherwise Ask returns ErrScriptExhausted.
type Scripted struct {
	answers map[string][]Answer
	// raw holds answers loaded from a file. They are decoded on first use,
	// once the question kind is known.
	raw   map[string]*yaml.Node
	asked []Question
}

// NewScripted returns a Scripted asker over answers.
func NewScripted(answers map[string][]Answer) *Scripted {
	cp := make(map[string][]Answer, len(answers))
	for k, v := range answers {
		cp[k] = append([]Answer(nil), v...)
	}
	return &Scripted{answers: cp, raw: map[string]*yaml.Node{}}
}

// Ask implements Asker.
func (s *Scripted) Ask(ctx context.Context, q Question) (Answer, error) {
	if err := ctx.Err(); err != nil {
		return Answer{}, err
	}
	s.asked = append(s.asked, q)
	if n, ok := s.raw[q.Key]; ok {
		delete(s.raw, q.Key)
		list, err := decodeAnswers(q.Kind, n)
		if err != nil {
			return Answer{}, errors.Wrapf(err, "scripted answer %q", q.Key)
		}
		s.answers[q.Key] = list
	}
	queue := s.answers[q.Key]
	if len(queue) == 0 {
		if a, ok := defaultAnswer(q); ok {
			return a, nil
		}
		return Answer{}, errors.Wrapf(ErrScriptExhausted, "question %q", q.Key)
	}
	s.answers[q.Key] = queue[1:]
	return queue[0], nil
}

// Asked returns every question asked so far, in order.
func (s *Scripted) Asked() []Question {
	return append([]Question(nil), s.asked...)
}

func defaultAnswer(q Question) (Answer, bool) {
	if q.Default == "" {
		return Answer{}, false
	}
	switch q.Kind {
	case Select:
		return Answer{Selected: []string{q.Default}}, true
	case Number:
		return Answer{Text: q.Default}, true
	case Confirm:
		yes, err := strconv.ParseBool(q.Default)
		if err != nil {
			return Answer{}, false
		}
		return Answer{Yes: yes}, true
	}
	return Answer{}, false
}

// LoadScript reads an answers file. Each key maps to one answer or to a list
// of per-round answers. Multi-select answers are lists, so per-round
// multi-select answers are lists of lists:
//
//	mode: incremental
//	entity: [Foo, Bar]
//	components: [[consumer], [consumer, producer]]
//	pollingTimeout: 10000
//	continue: [true, false]
func LoadScript(path string) (*Scripted, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read answers %s", path)
	}
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "parse answers %s", path)
	}
	s := NewScripted(nil)
	for k := range raw {
		n := raw[k]
		s.raw[k] = &n
	}
	return s, nil
}

func decodeAnswers(kind Kind, n *yaml.Node) ([]Answer, error) {
	if kind == MultiSelect {
		switch {
		case n.Kind == yaml.SequenceNode && len(n.Content) > 0 && n.Content[0].Kind == yaml.SequenceNode:
			out := make([]Answer, 0, len(n.Content))
			for _, item := range n.Content {
				a, err := decodeList(item)
				if err != nil {
					return nil, err
				}
				out = append(out, a)
			}
			return out, nil
		default:
			a, err := decodeList(n)
			if err != nil {
				return nil, err
			}
			return []Answer{a}, nil
		}
	}
	if n.Kind == yaml.SequenceNode {
		out := make([]Answer, 0, len(n.Content))
		for _, item := range n.Content {
			a, err := decodeScalar(item)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		}
		return out, nil
	}
	a, err := decodeScalar(n)
	if err != nil {
		return nil, err
	}
	return []Answer{a}, nil
}

func decodeList(n *yaml.Node) (Answer, error) {
	if n.Kind == yaml.ScalarNode {
		if n.Tag == "!!null" {
			return Answer{Selected: []string{}}, nil
		}
		return Answer{Selected: []string{n.Value}}, nil
	}
	var vals []string
	if err := n.Decode(&vals); err != nil {
		return Answer{}, errors.Wrapf(err, "line %d", n.Line)
	}
	if vals == nil {
		vals = []string{}
	}
	return Answer{Selected: vals}, nil
}

func decodeScalar(n *yaml.Node) (Answer, error) {
	if n.Kind != yaml.ScalarNode {
		return Answer{}, errors.Newf("line %d: answer must be a scalar", n.Line)
	}
	a := Answer{Selected: []string{n.Value}, Text: n.Value}
	if b, err := strconv.ParseBool(n.Value); err == nil {
		a.Yes = b
	}
	return a, nil
}
