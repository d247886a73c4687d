package planner

import (
	"kafkagen/internal/kafkaconf"
)

// Mode is how a session collects its requests.
type Mode string

const (
	// ModeBigBang asks for every entity/component combination in one pass.
	ModeBigBang Mode = "big-bang"
	// ModeIncremental asks one entity per round until the operator stops.
	ModeIncremental Mode = "incremental"
)

// ParseMode validates s as a Mode.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeBigBang, ModeIncremental:
		return Mode(s), true
	}
	return "", false
}

// State is a planner state.
type State int

const (
	ChoosingMode State = iota
	BigBang
	SelectingEntity
	SelectingComponents
	CollectingSettings
	AskContinue
	Done
)

func (s State) String() string {
	switch s {
	case ChoosingMode:
		return "choosing-mode"
	case BigBang:
		return "big-bang"
	case SelectingEntity:
		return "selecting-entity"
	case SelectingComponents:
		return "selecting-components"
	case CollectingSettings:
		return "collecting-settings"
	case AskContinue:
		return "ask-continue"
	case Done:
		return "done"
	}
	return "unknown"
}

// Request is one (entity, component) the session decided to generate.
type Request struct {
	Entity    string
	Component kafkaconf.Component
}

// EntityKey returns the config map key of the request's entity.
func (r Request) EntityKey() string {
	return kafkaconf.EntityKey(r.Entity)
}

// Session is the planner's context. It is a value: every transition returns
// a new Session and leaves the receiver unchanged.
type Session struct {
	state    State
	mode     Mode
	index    kafkaconf.Index
	requests []Request

	// Current incremental round.
	entity string
	round  []kafkaconf.Component

	// Session-wide settings. The first value set wins.
	pollingTimeout *int
	offsetReset    kafkaconf.OffsetReset
}

// NewSession starts a session over the existing components in index.
func NewSession(index kafkaconf.Index) Session {
	return Session{state: ChoosingMode, index: index}
}

func (s Session) State() State { return s.state }

func (s Session) Mode() Mode { return s.mode }

// Index is the existing index extended with this session's requests.
func (s Session) Index() kafkaconf.Index { return s.index }

// Entity is the entity of the current incremental round.
func (s Session) Entity() string { return s.entity }

func (s Session) PollingTimeout() *int { return s.pollingTimeout }

func (s Session) OffsetReset() kafkaconf.OffsetReset { return s.offsetReset }

// Requests returns a copy of the requests collected so far.
func (s Session) Requests() []Request {
	return append([]Request(nil), s.requests...)
}

// Round returns a copy of the components chosen in the current round.
func (s Session) Round() []kafkaconf.Component {
	return append([]kafkaconf.Component(nil), s.round...)
}

// RoundHas reports whether the current round includes c.
func (s Session) RoundHas(c kafkaconf.Component) bool {
	for _, rc := range s.round {
		if rc == c {
			return true
		}
	}
	return false
}

func (s Session) to(state State) Session {
	s.state = state
	return s
}

func (s Session) withMode(m Mode) Session {
	s.mode = m
	return s
}

func (s Session) withEntity(entity string) Session {
	s.entity = entity
	s.round = nil
	return s
}

// withRequests appends one request per component for entity and records
// them in the index, so later rounds do not offer them again.
func (s Session) withRequests(entity string, components []kafkaconf.Component) Session {
	key := kafkaconf.EntityKey(entity)
	reqs := append([]Request(nil), s.requests...)
	ix := s.index
	for _, c := range components {
		reqs = append(reqs, Request{Entity: entity, Component: c})
		ix = ix.With(key, c)
	}
	s.requests = reqs
	s.index = ix
	s.round = append(append([]kafkaconf.Component(nil), s.round...), components...)
	return s
}

func (s Session) withPollingTimeout(ms int) Session {
	if s.pollingTimeout != nil {
		return s
	}
	s.pollingTimeout = &ms
	return s
}

func (s Session) withOffsetReset(o kafkaconf.OffsetReset) Session {
	if s.offsetReset != "" {
		return s
	}
	s.offsetReset = o
	return s
}

func (s Session) hasConsumerRequest() bool {
	for _, r := range s.requests {
		if r.Component == kafkaconf.Consumer {
			return true
		}
	}
	return false
}
