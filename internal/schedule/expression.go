// Package schedule implements the schedule template resolution engine: it
// parses schedule documents containing symbolic time expressions, merges
// variable bindings and expands them into concrete per-zone activation plans.
package schedule

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// An Expression is a set-point time as written in a schedule document. It is
// either a fixed time ("08:00"), a variable reference ("{wake}"), or a
// variable reference with a signed offset ("{wake|-00:30}").
type Expression struct {
	kind     expressionKind
	literal  TimeOfDay
	variable string
	offset   time.Duration
}

type expressionKind int

const (
	literalExpression expressionKind = iota
	variableExpression
	offsetExpression
)

var variablePattern = regexp.MustCompile(`^{([A-Za-z0-9_]+)(?:\|([+-])([0-9]{2}:[0-9]{2}))?}$`)

// ParseExpression parses a time expression string. It fails with
// ErrMalformedExpression if the string matches none of the three grammars.
func ParseExpression(raw string) (Expression, error) {
	if !strings.HasPrefix(raw, "{") {
		literal, err := ParseTimeOfDay(raw)
		if err != nil {
			return Expression{}, fmt.Errorf("%w: %q", ErrMalformedExpression, raw)
		}
		return Expression{kind: literalExpression, literal: literal}, nil
	}

	m := variablePattern.FindStringSubmatch(raw)
	if m == nil {
		return Expression{}, fmt.Errorf("%w: %q", ErrMalformedExpression, raw)
	}
	if m[2] == "" {
		return Expression{kind: variableExpression, variable: m[1]}, nil
	}

	// the offset reuses the HH:MM grammar, so it can't fail after the regexp matched
	duration, _ := ParseTimeOfDay(m[3])
	offset := time.Duration(duration) * time.Minute
	if m[2] == "-" {
		offset = -offset
	}
	return Expression{kind: offsetExpression, variable: m[1], offset: offset}, nil
}

// Resolve evaluates the expression against bindings, returning a concrete
// time of day. Offsets wrap around midnight in either direction: the result
// is always a time of day, never a day delta.
func (e Expression) Resolve(bindings Bindings) (TimeOfDay, error) {
	if e.kind == literalExpression {
		return e.literal, nil
	}
	value, ok := bindings[e.variable]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnboundVariable, e.variable)
	}
	return value.Add(e.offset), nil
}

func (e Expression) String() string {
	switch e.kind {
	case variableExpression:
		return "{" + e.variable + "}"
	case offsetExpression:
		sign := "+"
		offset := e.offset
		if offset < 0 {
			sign = "-"
			offset = -offset
		}
		return fmt.Sprintf("{%s|%s%02d:%02d}", e.variable, sign, int(offset.Hours()), int(offset.Minutes())%60)
	default:
		return e.literal.String()
	}
}
