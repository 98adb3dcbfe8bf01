package web

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gorilla/websocket"
	"github.com/thelolagemann/dmgcore/internal/ppu"
)

type fakeSource struct {
	mu    sync.Mutex
	frame uint64
	bgp   uint8
}

func (f *fakeSource) Snapshot() (*ppu.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frame++
	return &ppu.Snapshot{LCDC: 0x91, BGP: f.bgp, Frame: f.frame}, nil
}

func (f *fakeSource) setBGP(v uint8) {
	f.mu.Lock()
	f.bgp = v
	f.mu.Unlock()
}

func TestCache(t *testing.T) {
	c := newCache(2)
	if c.index(1) != -1 {
		t.Errorf("expected -1 for an empty cache")
	}
	if i := c.add(1, []byte{1}); i != 0 {
		t.Errorf("expected index 0, got %d", i)
	}
	if i := c.add(2, []byte{2}); i != 1 {
		t.Errorf("expected index 1, got %d", i)
	}
	if c.index(2) != 1 {
		t.Errorf("expected index 1, got %d", c.index(2))
	}
	c.add(3, []byte{3})
	if c.index(1) != -1 {
		t.Errorf("expected the oldest entry to be evicted")
	}
	if c.index(3) != 0 {
		t.Errorf("expected index 0, got %d", c.index(3))
	}
}

// readUntil reads messages until one of the wanted types arrives.
func readUntil(t *testing.T, conn *websocket.Conn, want ...Type) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("expected message type %v, got %v", want, err)
		}
		for _, w := range want {
			if len(msg) > 0 && msg[0] == w {
				return msg
			}
		}
	}
}

// collect reads messages until every wanted type has arrived once.
func collect(t *testing.T, conn *websocket.Conn, want ...Type) map[Type][]byte {
	t.Helper()
	got := make(map[Type][]byte)
	for len(got) < len(want) {
		msg := readUntil(t, conn, want...)
		if _, ok := got[msg[0]]; !ok {
			got[msg[0]] = msg
		}
	}
	return got
}

func decode(t *testing.T, b []byte) []byte {
	t.Helper()
	raw, err := io.ReadAll(brotli.NewReader(bytes.NewReader(b)))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(raw) != ppu.ScreenWidth*ppu.ScreenHeight*4 {
		t.Fatalf("expected %d bytes, got %d", ppu.ScreenWidth*ppu.ScreenHeight*4, len(raw))
	}
	return raw
}

func startHub(t *testing.T, src Source, opts ...HubOpt) (*Hub, *websocket.Conn) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := NewHub(opts...)
	p := NewPlayer(h, src, WithInterval(time.Millisecond))
	go h.Run(ctx)
	go p.Run(ctx)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return h, conn
}

func TestHub_Stream(t *testing.T) {
	src := &fakeSource{bgp: 0xE4}
	_, conn := startHub(t, src)

	got := collect(t, conn, ClientInfo, FrameSync)
	if info := got[ClientInfo]; info[1]&0x01 == 0 || info[1]&0x04 == 0 {
		t.Errorf("expected player and compression bits, got %08b", info[1])
	}
	decode(t, got[FrameSync][1:])

	// colour 0 through BGP 0xE7 is black
	src.setBGP(0xE7)
	var blackIdx uint16
	for {
		frame := readUntil(t, conn, Frame)
		if raw := decode(t, frame[3:]); raw[0] == 0x00 && raw[3] == 0xFF {
			blackIdx = binary.LittleEndian.Uint16(frame[1:])
			break
		}
	}

	// the black frame is skipped until the picture changes
	time.Sleep(20 * time.Millisecond)
	src.setBGP(0xE4)
	skip := readUntil(t, conn, FrameSkip)
	if n := binary.LittleEndian.Uint32(skip[1:]); n == 0 {
		t.Errorf("expected a non-zero skip count")
	}
	readUntil(t, conn, Frame, FrameCache)

	// going back to a sent frame only sends its index
	time.Sleep(20 * time.Millisecond)
	src.setBGP(0xE7)
	readUntil(t, conn, FrameSkip)
	cached := readUntil(t, conn, Frame, FrameCache)
	if cached[0] != FrameCache {
		t.Fatalf("expected a cached frame, got message type %d", cached[0])
	}
	if idx := binary.LittleEndian.Uint16(cached[1:]); idx != blackIdx {
		t.Errorf("expected cache index %d, got %d", blackIdx, idx)
	}
}

func TestHub_Settings(t *testing.T) {
	h, conn := startHub(t, &fakeSource{bgp: 0xE4})
	readUntil(t, conn, ClientInfo)

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{SettingsMessage, Compression, 0}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	info := readUntil(t, conn, ClientInfo)
	if info[1]&0x04 != 0 {
		t.Errorf("expected compression to be disabled, got %08b", info[1])
	}
	if compression, _, _ := h.settings(); compression {
		t.Errorf("expected compression to be disabled")
	}
}
