package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
)

// Watch subscribes to server pushes for code and calls fn for every update
// until ctx is cancelled or the connection drops.
func (c *Client) Watch(ctx context.Context, code string, fn func(*Duck)) error {
	u, err := url.Parse(c.BaseURL + "/api/ducks/" + url.PathEscape(code) + "/watch")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			return statusError(resp)
		}
		return fmt.Errorf("%w: watch: %v", ErrTransport, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		var p duckPayload
		if err := conn.ReadJSON(&p); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("%w: watch: %v", ErrTransport, err)
		}
		fn(c.toDuck(p))
	}
}
