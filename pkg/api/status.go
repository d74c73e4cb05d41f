package api

import "fmt"

type StatusCodeRange int

const (
	StatusUnknown StatusCodeRange = iota
	Status1xx
	Status2xx
	Status3xx
	Status4xx
	Status5xx
)

func (sc StatusCodeRange) String() string {
	switch sc {
	case Status1xx:
		return "informational response"
	case Status2xx:
		return "success"
	case Status3xx:
		return "redirect"
	case Status4xx:
		return "client error"
	case Status5xx:
		return "server error"
	default:
		return fmt.Sprintf("unknown (%d)", int(sc))
	}
}

func StatusCodeRangeOf(code int) StatusCodeRange {
	switch {
	case 100 <= code && code < 200:
		return Status1xx
	case 200 <= code && code < 300:
		return Status2xx
	case 300 <= code && code < 400:
		return Status3xx
	case 400 <= code && code < 500:
		return Status4xx
	case 500 <= code && code < 600:
		return Status5xx
	default:
		return StatusUnknown
	}
}
