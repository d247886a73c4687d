// Package planner drives one generation session: it asks the operator which
// components to generate for which entities and turns the answers into a
// deduplicated Plan.
//
// The planner never offers a component an entity already holds, neither
// from the existing config nor from an earlier round of the same session.
package planner

import (
	"context"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"kafkagen/internal/kafkaconf"
	"kafkagen/internal/logger"
	"kafkagen/internal/prompt"
)

// Question keys. Answers files use these as top-level keys.
const (
	KeyMode           = "mode"
	KeyEntity         = "entity"
	KeyComponents     = "components"
	KeyConsumers      = "consumers"
	KeyProducers      = "producers"
	KeyPollingTimeout = "pollingTimeout"
	KeyOffsetReset    = "offsetReset"
	KeyContinue       = "continue"
)

// NoneEntity is the entity choice that ends an incremental session.
const NoneEntity = "none"

// DefaultPollingTimeoutMs is offered as the polling timeout default.
const DefaultPollingTimeoutMs = 10000

// maxAttempts bounds how often one question is re-asked after invalid input.
const maxAttempts = 5

// Input is what a session starts from.
type Input struct {
	// Candidates are the entity names the operator may pick from.
	Candidates []string
	// Index holds the components already present in the config.
	Index kafkaconf.Index
	// Mode skips the mode question when set.
	Mode Mode
}

// Plan is the outcome of a session.
type Plan struct {
	Mode     Mode
	Requests []Request
	// PollingTimeoutMs is nil when it was never asked.
	PollingTimeoutMs *int
	// OffsetReset is empty when the plan has no consumer.
	OffsetReset kafkaconf.OffsetReset
}

// Empty reports whether the plan generates nothing.
func (p Plan) Empty() bool { return len(p.Requests) == 0 }

// Run drives a session to Done.
func Run(ctx context.Context, asker prompt.Asker, in Input) (Plan, error) {
	s := NewSession(in.Index)
	for s.State() != Done {
		if err := ctx.Err(); err != nil {
			return Plan{}, err
		}
		next, err := Step(ctx, asker, in, s)
		if err != nil {
			return Plan{}, errors.Wrapf(err, "planner %s", s.State())
		}
		logger.Logger.Debugw("planner transition",
			"from", s.State().String(),
			"to", next.State().String())
		s = next
	}
	return s.Plan(), nil
}

// Step performs one transition.
func Step(ctx context.Context, asker prompt.Asker, in Input, s Session) (Session, error) {
	switch s.State() {
	case ChoosingMode:
		return chooseMode(ctx, asker, in, s)
	case BigBang:
		return bigBang(ctx, asker, in, s)
	case SelectingEntity:
		return selectEntity(ctx, asker, in, s)
	case SelectingComponents:
		return selectComponents(ctx, asker, s)
	case CollectingSettings:
		return collectSettings(ctx, asker, s)
	case AskContinue:
		return askContinue(ctx, asker, in, s)
	case Done:
		return s, nil
	}
	return s, errors.Newf("unknown planner state %d", int(s.State()))
}

// Plan returns the session outcome. OffsetReset defaults to earliest when
// consumers were requested but no policy was collected.
func (s Session) Plan() Plan {
	p := Plan{
		Mode:        s.mode,
		Requests:    s.Requests(),
		OffsetReset: s.offsetReset,
	}
	if s.pollingTimeout != nil {
		v := *s.pollingTimeout
		p.PollingTimeoutMs = &v
	}
	if s.hasConsumerRequest() && p.OffsetReset == "" {
		p.OffsetReset = kafkaconf.OffsetEarliest
	}
	if !s.hasConsumerRequest() {
		p.OffsetReset = ""
	}
	return p
}

func chooseMode(ctx context.Context, asker prompt.Asker, in Input, s Session) (Session, error) {
	if in.Mode != "" {
		return enterMode(s, in.Mode), nil
	}
	def := ModeBigBang
	if in.Index.Len() > 0 {
		def = ModeIncremental
	}
	q := prompt.Question{
		Key:    KeyMode,
		Prompt: "How do you want to add broker components?",
		Kind:   prompt.Select,
		Choices: []prompt.Choice{
			{Value: string(ModeBigBang), Label: "Big bang: pick every entity and component at once"},
			{Value: string(ModeIncremental), Label: "Incremental: one entity at a time"},
		},
		Default: string(def),
	}
	var mode Mode
	_, err := askValid(ctx, asker, q, func(a prompt.Answer) error {
		m, ok := ParseMode(first(a.Selected))
		if !ok {
			return errors.Newf("unknown mode %q", first(a.Selected))
		}
		mode = m
		return nil
	})
	if err != nil {
		return s, err
	}
	return enterMode(s, mode), nil
}

func enterMode(s Session, m Mode) Session {
	s = s.withMode(m)
	if m == ModeBigBang {
		return s.to(BigBang)
	}
	return s.to(SelectingEntity)
}

func bigBang(ctx context.Context, asker prompt.Asker, in Input, s Session) (Session, error) {
	for _, c := range kafkaconf.Components {
		var choices []prompt.Choice
		for _, name := range in.Candidates {
			if !s.Index().Has(kafkaconf.EntityKey(name), c) {
				choices = append(choices, prompt.Choice{Value: name})
			}
		}
		if len(choices) == 0 {
			continue
		}
		q := prompt.Question{
			Key:     bigBangKey(c),
			Prompt:  "Which entities need a " + c.String() + "?",
			Kind:    prompt.MultiSelect,
			Choices: choices,
		}
		var picked []string
		_, err := askValid(ctx, asker, q, func(a prompt.Answer) error {
			picked = nil
			byKey := make(map[string]string, len(a.Selected))
			for _, v := range a.Selected {
				if !q.HasChoice(v) {
					return errors.Newf("%q cannot take a %s", v, c)
				}
				key := kafkaconf.EntityKey(v)
				if prev, ok := byKey[key]; ok && prev != v {
					return errors.Newf("%q and %q share the key %q; pick one", prev, v, key)
				}
				byKey[key] = v
				picked = append(picked, v)
			}
			return nil
		})
		if err != nil {
			return s, err
		}
		for _, name := range dedupe(picked) {
			s = s.withRequests(name, []kafkaconf.Component{c})
		}
	}
	if s.hasConsumerRequest() {
		return s.to(CollectingSettings), nil
	}
	return s.to(Done), nil
}

func bigBangKey(c kafkaconf.Component) string {
	switch c {
	case kafkaconf.Consumer:
		return KeyConsumers
	case kafkaconf.Producer:
		return KeyProducers
	}
	return c.String()
}

// offerable returns the candidates that still miss at least one component.
func offerable(in Input, s Session) []string {
	var out []string
	for _, name := range in.Candidates {
		if !s.Index().Complete(kafkaconf.EntityKey(name)) {
			out = append(out, name)
		}
	}
	return out
}

func selectEntity(ctx context.Context, asker prompt.Asker, in Input, s Session) (Session, error) {
	names := offerable(in, s)
	if len(names) == 0 {
		logger.Logger.Infow("every entity already has a consumer and a producer")
		return s.to(Done), nil
	}
	choices := make([]prompt.Choice, 0, len(names)+1)
	for _, name := range names {
		choices = append(choices, prompt.Choice{Value: name})
	}
	choices = append(choices, prompt.Choice{Value: NoneEntity, Label: "None, I am done"})
	q := prompt.Question{
		Key:     KeyEntity,
		Prompt:  "For which entity do you want to generate broker components?",
		Kind:    prompt.Select,
		Choices: choices,
		Default: NoneEntity,
	}
	var entity string
	_, err := askValid(ctx, asker, q, func(a prompt.Answer) error {
		v := first(a.Selected)
		if v == NoneEntity {
			entity = v
			return nil
		}
		if !q.HasChoice(v) {
			if containsFold(in.Candidates, v) {
				return errors.Newf("%q already has every component", v)
			}
			return errors.Newf("unknown entity %q", v)
		}
		if len(s.Index().Available(kafkaconf.EntityKey(v))) == 0 {
			return errors.Newf("%q has no component left to generate", v)
		}
		entity = v
		return nil
	})
	if err != nil {
		return s, err
	}
	if entity == NoneEntity {
		return s.to(Done), nil
	}
	return s.withEntity(entity).to(SelectingComponents), nil
}

func selectComponents(ctx context.Context, asker prompt.Asker, s Session) (Session, error) {
	available := s.Index().Available(kafkaconf.EntityKey(s.Entity()))
	if len(available) == 0 {
		// The entity guard makes this unreachable; reject the round.
		logger.Logger.Warnw("entity has no component left, re-prompting",
			logger.FieldEntity, s.Entity())
		return s.withEntity("").to(SelectingEntity), nil
	}
	choices := make([]prompt.Choice, len(available))
	for i, c := range available {
		choices[i] = prompt.Choice{Value: c.String()}
	}
	q := prompt.Question{
		Key:     KeyComponents,
		Prompt:  "Which components do you want for " + s.Entity() + "?",
		Kind:    prompt.MultiSelect,
		Choices: choices,
	}
	var picked []kafkaconf.Component
	_, err := askValid(ctx, asker, q, func(a prompt.Answer) error {
		picked = nil
		if len(a.Selected) == 0 {
			return errors.New("select at least one component")
		}
		for _, v := range dedupe(a.Selected) {
			if !q.HasChoice(v) {
				return errors.Newf("%s is not available for %s", v, s.Entity())
			}
			c, err := kafkaconf.ParseComponent(v)
			if err != nil {
				return err
			}
			picked = append(picked, c)
		}
		return nil
	})
	if err != nil {
		return s, err
	}
	return s.withRequests(s.Entity(), picked).to(CollectingSettings), nil
}

func collectSettings(ctx context.Context, asker prompt.Asker, s Session) (Session, error) {
	next := AskContinue
	if s.Mode() == ModeBigBang {
		next = Done
	}
	consumers := s.RoundHas(kafkaconf.Consumer)
	if !consumers {
		return s.to(next), nil
	}

	if s.PollingTimeout() == nil {
		q := prompt.Question{
			Key:     KeyPollingTimeout,
			Prompt:  "What is the consumer polling timeout (in ms)?",
			Kind:    prompt.Number,
			Default: strconv.Itoa(DefaultPollingTimeoutMs),
		}
		var ms int
		_, err := askValid(ctx, asker, q, func(a prompt.Answer) error {
			n, err := strconv.Atoi(strings.TrimSpace(a.Text))
			if err != nil {
				return errors.Newf("%q is not a number", a.Text)
			}
			if n <= 0 {
				return errors.Newf("polling timeout must be positive, got %d", n)
			}
			ms = n
			return nil
		})
		if err != nil {
			return s, err
		}
		s = s.withPollingTimeout(ms)
	}

	if s.OffsetReset() == "" {
		choices := make([]prompt.Choice, len(kafkaconf.OffsetResets))
		for i, o := range kafkaconf.OffsetResets {
			choices[i] = prompt.Choice{Value: string(o)}
		}
		q := prompt.Question{
			Key:     KeyOffsetReset,
			Prompt:  "Where should a new consumer group start reading?",
			Kind:    prompt.Select,
			Choices: choices,
			Default: string(kafkaconf.OffsetEarliest),
		}
		var policy kafkaconf.OffsetReset
		_, err := askValid(ctx, asker, q, func(a prompt.Answer) error {
			o, err := kafkaconf.ParseOffsetReset(first(a.Selected))
			if err != nil {
				return err
			}
			policy = o
			return nil
		})
		if err != nil {
			return s, err
		}
		s = s.withOffsetReset(policy)
	}
	return s.to(next), nil
}

func askContinue(ctx context.Context, asker prompt.Asker, in Input, s Session) (Session, error) {
	if len(offerable(in, s)) == 0 {
		return s.to(Done), nil
	}
	a, err := asker.Ask(ctx, prompt.Question{
		Key:     KeyContinue,
		Prompt:  "Do you want to add broker components to another entity?",
		Kind:    prompt.Confirm,
		Default: "false",
	})
	if err != nil {
		return s, err
	}
	if a.Yes {
		return s.withEntity("").to(SelectingEntity), nil
	}
	return s.to(Done), nil
}

// askValid asks q until validate accepts the answer. A rejected answer is
// shown to the operator as the hint of the next attempt.
func askValid(ctx context.Context, asker prompt.Asker, q prompt.Question, validate func(prompt.Answer) error) (prompt.Answer, error) {
	for attempt := 1; ; attempt++ {
		a, err := asker.Ask(ctx, q)
		if err != nil {
			return prompt.Answer{}, err
		}
		verr := validate(a)
		if verr == nil {
			return a, nil
		}
		logger.Logger.Warnw("answer rejected",
			"question", q.Key,
			logger.FieldError, verr)
		if attempt >= maxAttempts {
			return prompt.Answer{}, errors.Wrapf(verr, "question %q: too many invalid answers", q.Key)
		}
		q.Hint = verr.Error()
	}
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func dedupe(vals []string) []string {
	seen := make(map[string]bool, len(vals))
	var out []string
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func containsFold(vals []string, v string) bool {
	for _, x := range vals {
		if strings.EqualFold(x, v) {
			return true
		}
	}
	return false
}
