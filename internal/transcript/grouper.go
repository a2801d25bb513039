package transcript

import "github.com/Zuo-Peng/aichatmd/internal/parse"

// reasoningState tracks whether Claude thinking output is currently being
// collected under one "Thinking Process" heading.
type reasoningState int

const (
	stateNormal reasoningState = iota
	stateInReasoning
)

func (s reasoningState) String() string {
	if s == stateInReasoning {
		return "in-reasoning"
	}
	return "normal"
}

// groupAction is what the renderer must emit on a transition.
type groupAction int

const (
	actionNone  groupAction = iota
	actionEnter             // header at the thinking timestamp + "Thinking Process"
	actionExit              // rule, then the message's normal header
	actionSplit             // rule + fresh header at the segment timestamp
)

// onMessage is evaluated once per rendered message, before its header.
// leadsWithThinking reports whether the message's first visible segment
// is thinking.
//
//	normal        + thinking first    -> in-reasoning (enter)
//	in-reasoning  + anything else     -> normal       (exit)
//	in-reasoning  + thinking first    -> in-reasoning (merge into open block)
//	normal        + anything else     -> normal
func (s reasoningState) onMessage(leadsWithThinking bool) (reasoningState, groupAction) {
	switch {
	case s == stateNormal && leadsWithThinking:
		return stateInReasoning, actionEnter
	case s == stateInReasoning && !leadsWithThinking:
		return stateNormal, actionExit
	default:
		return s, actionNone
	}
}

// onSegment is evaluated for every segment that will produce output inside
// a message. prevThinking reports whether the previous such segment of the
// same message was thinking.
//
//	thinking -> text (or any visible non-thinking) : normal (split)
//	normal   + thinking                            : in-reasoning (enter, preceded by a rule)
func (s reasoningState) onSegment(prevThinking bool, cur parse.Kind) (reasoningState, groupAction) {
	switch {
	case prevThinking && cur != parse.KindThinking:
		return stateNormal, actionSplit
	case s == stateNormal && cur == parse.KindThinking:
		return stateInReasoning, actionEnter
	default:
		return s, actionNone
	}
}
