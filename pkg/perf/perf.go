// Package perf records how long frames take and plots the result.
package perf

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"sync"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// DefaultSize is the number of samples kept by default.
const DefaultSize = 600

// ErrNoSamples is returned when plotting an empty recorder.
var ErrNoSamples = errors.New("perf: no samples recorded")

// Recorder keeps the most recent frame times in a ring. It is safe
// for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	samples []time.Duration
	next    int
	full    bool
	last    time.Time
	frames  uint64
	now     func() time.Time
}

// NewRecorder returns a recorder keeping size samples.
func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = DefaultSize
	}
	return &Recorder{samples: make([]time.Duration, size), now: time.Now}
}

// Mark records the time since the previous Mark. The first call only
// starts the clock.
func (r *Recorder) Mark() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if !r.last.IsZero() {
		r.add(now.Sub(r.last))
	}
	r.last = now
}

// Add records a single frame time.
func (r *Recorder) Add(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(d)
}

func (r *Recorder) add(d time.Duration) {
	r.samples[r.next] = d
	r.next = (r.next + 1) % len(r.samples)
	if r.next == 0 {
		r.full = true
	}
	r.frames++
}

// Samples returns the recorded frame times, oldest first.
func (r *Recorder) Samples() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.full {
		return append([]time.Duration(nil), r.samples[:r.next]...)
	}
	out := make([]time.Duration, 0, len(r.samples))
	out = append(out, r.samples[r.next:]...)
	return append(out, r.samples[:r.next]...)
}

// Stats summarises the samples currently held.
type Stats struct {
	Frames         uint64
	Mean, Min, Max time.Duration
}

// FPS returns the frame rate implied by the mean frame time.
func (s Stats) FPS() float64 {
	if s.Mean == 0 {
		return 0
	}
	return float64(time.Second) / float64(s.Mean)
}

func (s Stats) String() string {
	return fmt.Sprintf("%d frames | mean %v | min %v | max %v | %.2f fps", s.Frames, s.Mean, s.Min, s.Max, s.FPS())
}

// Stats returns a summary of the samples.
func (r *Recorder) Stats() Stats {
	samples := r.Samples()
	r.mu.Lock()
	s := Stats{Frames: r.frames}
	r.mu.Unlock()
	if len(samples) == 0 {
		return s
	}

	var total time.Duration
	s.Min = samples[0]
	for _, d := range samples {
		total += d
		if d < s.Min {
			s.Min = d
		}
		if d > s.Max {
			s.Max = d
		}
	}
	s.Mean = total / time.Duration(len(samples))
	return s
}

// Plot draws the frame times in milliseconds as a PNG of the given
// size.
func (r *Recorder) Plot(w io.Writer, width, height int) error {
	samples := r.Samples()
	if len(samples) == 0 {
		return ErrNoSamples
	}

	frameTimePlot := plot.New()
	frameTimePlot.Title.Text = "Frame Time"
	frameTimePlot.X.Label.Text = "frame"
	frameTimePlot.Y.Label.Text = "ms"

	xys := make(plotter.XYs, len(samples))
	for i, d := range samples {
		xys[i].X = float64(i)
		xys[i].Y = float64(d) / float64(time.Millisecond)
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	frameTimePlot.Add(line)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	c := vgimg.NewWith(vgimg.UseImage(img))
	frameTimePlot.Draw(draw.New(c))

	return png.Encode(w, c.Image())
}

// SavePlot writes a 640x480 plot to filename.
func (r *Recorder) SavePlot(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := r.Plot(f, 640, 480); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
