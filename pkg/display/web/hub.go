// Package web streams the background of the running machine to
// browsers over websockets.
package web

import (
	"context"
	"encoding/binary"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/thelolagemann/dmgcore/internal/types"
	"github.com/thelolagemann/dmgcore/pkg/log"
)

var errNoTCPInfo = errors.New("web: tcp info unavailable")

// directed is a message for a single client.
type directed struct {
	c   *Client
	msg []byte
}

// Hub tracks connected clients and fans messages out to them. All
// client bookkeeping happens on the goroutine running Run.
type Hub struct {
	clients map[*Client]bool
	player  *Player

	broadcast            chan []byte
	direct               chan directed
	register, unregister chan *Client
	done                 chan struct{}

	compression      bool
	compressionLevel int
	frameSkipping    bool
	currentID        uint8

	log log.Logger
	mu  sync.Mutex
}

// HubOpt configures a Hub.
type HubOpt func(h *Hub)

// WithLogger sets the logger of the hub and of any player attached
// to it.
func WithLogger(l log.Logger) HubOpt {
	return func(h *Hub) {
		h.log = l
	}
}

// WithCompression sets whether frames are brotli compressed, and at
// which quality (0-11).
func WithCompression(enabled bool, level int) HubOpt {
	return func(h *Hub) {
		h.compression = enabled
		h.compressionLevel = level
	}
}

// WithFrameSkipping sets whether unchanged frames are replaced by a
// skip count.
func WithFrameSkipping(enabled bool) HubOpt {
	return func(h *Hub) {
		h.frameSkipping = enabled
	}
}

// NewHub returns a hub with compression and frame skipping enabled.
func NewHub(opts ...HubOpt) *Hub {
	h := &Hub{
		clients:          make(map[*Client]bool),
		broadcast:        make(chan []byte, 64),
		direct:           make(chan directed, 64),
		register:         make(chan *Client),
		unregister:       make(chan *Client),
		done:             make(chan struct{}),
		compression:      true,
		compressionLevel: 7,
		frameSkipping:    true,
		log:              log.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 16,
	WriteBufferSize: 1024 * 16,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeHTTP upgrades the request to a websocket and registers the
// client. Run must be running.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("web: upgrading %s: %v", r.RemoteAddr, err)
		return
	}

	c := h.newClient(conn, r)
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.readPump()
	go c.writePump()

	compression, level, _ := h.settings()
	if !compression {
		level = 0
	}
	h.sendTo(c, []byte{ClientInfo, h.info(), uint8(level)})
}

// Run services client registration and message fan out until ctx is
// cancelled. Every client is disconnected when it returns.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	t := time.NewTicker(time.Second)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.remove(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			h.log.Infof("web: client %d connected from %s", c.ID, c.remoteAddr)
			if h.player != nil {
				select {
				case h.player.clientSync <- c:
				default:
				}
			}
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.remove(c)
				h.log.Infof("web: client %d disconnected", c.ID)
				for other := range h.clients {
					h.deliver(other, []byte{ClientClosing, c.ID})
				}
			}
		case d := <-h.direct:
			if h.clients[d.c] {
				h.deliver(d.c, d.msg)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				h.deliver(c, msg)
			}
		case <-t.C:
			// ID, then round trip in milliseconds
			data := []byte{ServerInfo}
			for c := range h.clients {
				data = append(data, c.ID)
				data = binary.LittleEndian.AppendUint16(data, c.latency())
			}
			for c := range h.clients {
				h.deliver(c, data)
			}
		}
	}
}

// deliver queues msg for c, dropping c if it cannot keep up.
func (h *Hub) deliver(c *Client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		h.log.Warnf("web: client %d is not keeping up, disconnecting", c.ID)
		h.remove(c)
	}
}

func (h *Hub) remove(c *Client) {
	delete(h.clients, c)
	close(c.send)
}

// send broadcasts msg to every client.
func (h *Hub) send(msg []byte) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// sendTo queues msg for a single client.
func (h *Hub) sendTo(c *Client, msg []byte) {
	select {
	case h.direct <- directed{c: c, msg: msg}:
	case <-h.done:
	}
}

// settings returns the current stream settings.
func (h *Hub) settings() (compression bool, level int, frameSkipping bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.compression, h.compressionLevel, h.frameSkipping
}

// apply changes a stream setting on behalf of a client.
func (h *Hub) apply(setting Setting, value uint8) {
	h.mu.Lock()
	switch setting {
	case Compression:
		h.compression = value == 1
	case CompressionLevel:
		if value > 11 {
			value = 11
		}
		h.compressionLevel = int(value)
	case FrameSkipping:
		h.frameSkipping = value == 1
	default:
		h.mu.Unlock()
		h.log.Debugf("web: unknown setting %d", setting)
		return
	}
	h.mu.Unlock()
	h.send([]byte{ClientInfo, h.info(), value})
}

// info returns a byte of information containing the various
// hub settings. The byte is constructed as follows:
//
//	Bit 0: Player attached
//	Bit 2: Compression enabled
//	Bit 4: Frame skipping enabled
func (h *Hub) info() byte {
	h.mu.Lock()
	defer h.mu.Unlock()

	info := uint8(0)
	if h.player != nil {
		info |= types.Bit0
	}
	if h.compression {
		info |= types.Bit2
	}
	if h.frameSkipping {
		info |= types.Bit4
	}
	return info
}

// newClient creates a new client with the next free ID.
func (h *Hub) newClient(conn *websocket.Conn, r *http.Request) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.currentID++
	return &Client{
		hub:         h,
		conn:        conn,
		send:        make(chan []byte, 256),
		ID:          h.currentID,
		remoteAddr:  r.RemoteAddr,
		userAgent:   r.Header.Get("User-Agent"),
		connectedAt: time.Now(),
	}
}

// ListenAndServe serves h on addr until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, h *Hub) error {
	srv := &http.Server{Addr: addr, Handler: h}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	h.log.Infof("web: listening on %s", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
