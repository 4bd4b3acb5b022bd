package watermark

import "errors"

var (
	ErrInvalidBody  = errors.New("invalid request body")
	ErrInvalidJobID = errors.New("invalid job id")
)
