package schedule

import "errors"

var (
	ErrMalformedExpression = errors.New("malformed time expression")
	ErrUnboundVariable     = errors.New("unbound variable")
	ErrUnknownVariable     = errors.New("unknown variable")
	ErrMissingZone         = errors.New("missing zone")
	ErrUnknownZone         = errors.New("unknown zone")
	ErrDuplicateVariant    = errors.New("duplicate variant name")
	ErrDuplicateSchedule   = errors.New("duplicate schedule name")
	ErrVariantNotFound     = errors.New("variant not found")
	ErrScheduleNotFound    = errors.New("schedule not found")
)
