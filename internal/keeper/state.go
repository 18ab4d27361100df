package keeper

import "time"

// ConnState is the client's view of its connection to the duck server.
type ConnState int

const (
	Disconnected ConnState = iota
	Connecting
	Synced
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "offline"
	case Connecting:
		return "connecting"
	case Synced:
		return "synced"
	default:
		return "unknown"
	}
}

// Reconnect backoff bounds.
const (
	BaseBackoff = 30 * time.Second
	MaxBackoff  = 15 * time.Minute
)

// backoff returns the wait before the next reconnect after n consecutive failures.
func backoff(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	d := BaseBackoff
	for i := 1; i < n; i++ {
		d *= 2
		if d >= MaxBackoff {
			return MaxBackoff
		}
	}
	return d
}
