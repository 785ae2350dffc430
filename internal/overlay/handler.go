package overlay

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/igm/sockjs-go/sockjs"
)

// Handler serves the sockjs endpoint overlay widgets connect to. Each
// session gets a hub client; a session that names a queue id in its URL
// query starts filtered to that queue and receives its current state
// immediately.
func Handler(prefix string, h *Hub) http.Handler {
	return sockjs.NewHandler(prefix, sockjs.DefaultOptions, func(session sockjs.Session) {
		client := &Client{ID: uuid.NewString(), Send: make(chan []byte, 16)}
		if req := session.Request(); req != nil {
			client.QueueID = strings.TrimSpace(req.URL.Query().Get("queue"))
		}
		h.Register(client)
		defer h.Unregister(client)

		go func() {
			for msg := range client.Send {
				_ = session.Send(string(msg))
			}
		}()

		h.RequestState(client.QueueID)

		for {
			msg, err := session.Recv()
			if err != nil {
				return
			}
			parsed, ok := ParseMessage([]byte(msg))
			if !ok {
				continue
			}
			switch parsed.Action {
			case ActionSubscribe:
				h.SetFilter(client, parsed.ID)
				h.RequestState(parsed.ID)
			case ActionRequestState:
				h.RequestState(parsed.ID)
			}
		}
	})
}
