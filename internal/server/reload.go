package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/livetemplate/docpage/internal/logging"
)

const reloadPath = "/_docpage/reload"

// reloadScript reconnects to the reload endpoint and refreshes the page when
// its own path changes.
const reloadScript = `<script>
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "` + reloadPath + `");
  ws.onmessage = function (ev) {
    try {
      var msg = JSON.parse(ev.data);
      if (msg.action === "reload" && (msg.path === location.pathname || msg.path === "*")) {
        location.reload();
      }
    } catch (e) {}
  };
})();
</script>
`

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Preview server is a local development tool
	},
}

// reloadMessage is sent to browsers when a page changes.
type reloadMessage struct {
	Action string `json:"action"`
	Path   string `json:"path"`
}

// reloadHub tracks connected preview tabs.
type reloadHub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]bool
	log   logging.Logger
}

func newReloadHub(log logging.Logger) *reloadHub {
	return &reloadHub{
		conns: make(map[*websocket.Conn]bool),
		log:   logging.OrNoOp(log),
	}
}

// ServeHTTP upgrades the request and holds the connection until the client leaves.
func (h *reloadHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = true
	count := len(h.conns)
	h.mu.Unlock()
	h.log.Debug("reload client connected", "active", count)

	defer func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// Drain until the browser goes away; clients never send anything useful.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast tells every client that the page at path changed.
func (h *reloadHub) Broadcast(path string) {
	data, err := json.Marshal(reloadMessage{Action: "reload", Path: path})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.conns) == 0 {
		return
	}
	h.log.Debug("broadcasting reload", "path", path, "clients", len(h.conns))

	for conn := range h.conns {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Warn("failed to send reload", "error", err)
		}
	}
}

// Clients returns the number of connected clients.
func (h *reloadHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close disconnects every client.
func (h *reloadHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		conn.Close()
		delete(h.conns, conn)
	}
}
