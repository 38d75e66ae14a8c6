package channel

import "errors"

var (
	ErrInvalidRateLimit = errors.New("invalid rate limit")
	ErrInvalidSendTime  = errors.New("invalid send time")
)
