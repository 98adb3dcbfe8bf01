package web

import (
	"bytes"
	"context"
	"encoding/binary"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/cespare/xxhash"
	"github.com/thelolagemann/dmgcore/internal/ppu"
	"github.com/thelolagemann/dmgcore/internal/ppu/palette"
	"github.com/thelolagemann/dmgcore/pkg/render"
)

// frameCacheSize is the number of frames clients are expected to
// keep.
const frameCacheSize = 64

// Source provides render-ready snapshots. *ppu.PPU implements it.
type Source interface {
	Snapshot() (*ppu.Snapshot, error)
}

// Player samples a Source on its own goroutine and streams every new
// frame through its hub.
type Player struct {
	hub        *Hub
	src        Source
	palette    palette.Palette
	interval   time.Duration
	clientSync chan *Client

	frameCache    *cache
	currentFrame  []byte
	lastFrame     uint64
	sampled       bool
	framesSkipped uint32
}

// PlayerOpt configures a Player.
type PlayerOpt func(p *Player)

// WithPalette sets the colours frames are rendered with.
func WithPalette(pal palette.Palette) PlayerOpt {
	return func(p *Player) {
		p.palette = pal
	}
}

// WithInterval sets how often the source is sampled.
func WithInterval(d time.Duration) PlayerOpt {
	return func(p *Player) {
		if d > 0 {
			p.interval = d
		}
	}
}

// NewPlayer attaches a player for src to h.
func NewPlayer(h *Hub, src Source, opts ...PlayerOpt) *Player {
	greyscale, _ := palette.Lookup(palette.Greyscale)
	p := &Player{
		hub:          h,
		src:          src,
		palette:      greyscale,
		interval:     time.Second / 60,
		clientSync:   make(chan *Client, 16),
		frameCache:   newCache(frameCacheSize),
		currentFrame: make([]byte, ppu.ScreenWidth*ppu.ScreenHeight*4),
	}
	for _, opt := range opts {
		opt(p)
	}

	h.mu.Lock()
	h.player = p
	h.mu.Unlock()
	return p
}

// Run streams frames until ctx is cancelled or the source fails.
func (p *Player) Run(ctx context.Context) error {
	t := time.NewTicker(p.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-p.clientSync:
			p.sync(c)
		case <-t.C:
			if err := p.stream(); err != nil {
				return err
			}
		}
	}
}

// stream renders the latest snapshot and sends it if the machine has
// completed a frame since the last one.
func (p *Player) stream() error {
	snap, err := p.src.Snapshot()
	if err != nil {
		return err
	}
	if p.sampled && snap.Frame == p.lastFrame {
		return nil
	}
	p.sampled = true
	p.lastFrame = snap.Frame

	compression, level, frameSkipping := p.hub.settings()

	img := render.Background(snap, p.palette)
	if frameSkipping && bytes.Equal(img.Pix, p.currentFrame) {
		p.framesSkipped++
		return nil
	}
	copy(p.currentFrame, img.Pix)

	if p.framesSkipped > 0 {
		p.hub.send(binary.LittleEndian.AppendUint32([]byte{FrameSkip}, p.framesSkipped))
		p.framesSkipped = 0
	}

	output := p.currentFrame
	if compression {
		if output, err = encode(p.currentFrame, level); err != nil {
			return err
		}
	} else {
		output = append([]byte(nil), output...)
	}

	hash := xxhash.Sum64(output)
	if idx := p.frameCache.index(hash); idx != -1 {
		p.hub.send(binary.LittleEndian.AppendUint16([]byte{FrameCache}, uint16(idx)))
		return nil
	}
	idx := p.frameCache.add(hash, output)
	msg := binary.LittleEndian.AppendUint16([]byte{Frame}, uint16(idx))
	p.hub.send(append(msg, output...))
	return nil
}

// sync sends the current frame and the frame cache to a client that
// has just connected.
func (p *Player) sync(c *Client) {
	frameData, err := encode(p.currentFrame, 9)
	if err != nil {
		p.hub.log.Errorf("web: encoding sync frame: %v", err)
		return
	}
	p.hub.sendTo(c, append([]byte{FrameSync}, frameData...))

	data := []byte{FrameCacheSync}
	for i, e := range p.frameCache.entries {
		if e.data == nil {
			continue
		}
		data = binary.LittleEndian.AppendUint32(data, uint32(len(e.data)))
		data = binary.LittleEndian.AppendUint16(data, uint16(i))
		data = append(data, e.data...)
	}
	p.hub.sendTo(c, data)
}

// encode brotli compresses b at quality level.
func encode(b []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, level)
	if _, err := w.Write(b); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
