// Package render draws training frames with gonum/plot and encodes them
// as an animated GIF. Dump writes the same frames as raw matrices.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	imagedraw "image/draw"
	"image/gif"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/born-ml/mlpviz/internal/trainer"
)

// ErrClosed is returned when rendering into a closed renderer.
var ErrClosed = errors.New("render: renderer already closed")

// Options controls the size and speed of the animation.
type Options struct {
	Width  vg.Length // Width of one frame (all three panels)
	Height vg.Length // Height of one frame
	FPS    int       // Frames per second
}

// DefaultOptions returns a 3:1 layout at 10 frames per second.
func DefaultOptions() Options {
	return Options{
		Width:  12 * vg.Inch,
		Height: 4 * vg.Inch,
		FPS:    10,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	if o.FPS <= 0 {
		o.FPS = def.FPS
	}
	return o
}

// GIF renders frames into an animated GIF file.
//
// Frames are kept in memory and the file is written by Close. Nothing
// is written to path before then. GIF implements trainer.Renderer.
type GIF struct {
	path   string
	opts   Options
	delay  int // centiseconds per frame
	anim   gif.GIF
	closed bool
}

var _ trainer.Renderer = (*GIF)(nil)

// NewGIF creates the parent directory of path.
//
// The caller must call Close to write the animation, or Discard to drop it.
func NewGIF(path string, opts Options) (*GIF, error) {
	opts = opts.withDefaults()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("render: create output dir: %w", err)
	}

	return &GIF{
		path:  path,
		opts:  opts,
		delay: max(100/opts.FPS, 1),
	}, nil
}

// Path returns the output file path.
func (g *GIF) Path() string {
	return g.path
}

// Frames returns the number of frames rendered so far.
func (g *GIF) Frames() int {
	return len(g.anim.Image)
}

// RenderFrame draws the hidden space, decision boundary and gradient
// panels side by side and appends them as one animation frame.
func (g *GIF) RenderFrame(f trainer.Frame) error {
	if g.closed {
		return ErrClosed
	}

	img, err := g.draw(f)
	if err != nil {
		return fmt.Errorf("render: frame %d: %w", f.Index, err)
	}

	bounds := img.Bounds()
	paletted := image.NewPaletted(bounds, palette.Plan9)
	imagedraw.FloydSteinberg.Draw(paletted, bounds, img, bounds.Min)

	g.anim.Image = append(g.anim.Image, paletted)
	g.anim.Delay = append(g.anim.Delay, g.delay)
	return nil
}

func (g *GIF) draw(f trainer.Frame) (image.Image, error) {
	hidden, err := hiddenPlot(f)
	if err != nil {
		return nil, err
	}
	boundary, err := boundaryPlot(f)
	if err != nil {
		return nil, err
	}
	grads, err := gradientPlot(f)
	if err != nil {
		return nil, err
	}

	canvas := vgimg.NewWith(
		vgimg.UseWH(g.opts.Width, g.opts.Height),
		vgimg.UseBackgroundColor(color.White),
	)
	dc := draw.New(canvas)

	plots := [][]*plot.Plot{{hidden, boundary, grads}}
	tiles := draw.Tiles{
		Rows:      1,
		Cols:      3,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 2,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for j, p := range plots[0] {
		p.Draw(canvases[0][j])
	}
	return canvas.Image(), nil
}

// Close encodes all frames and writes the file.
//
// The animation goes to a temporary file in the same directory that is
// renamed to path once complete, so path never holds a partial GIF.
// Calling Close more than once, or after Discard, is a no-op.
func (g *GIF) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true

	if len(g.anim.Image) == 0 {
		return fmt.Errorf("render: %s: no frames to encode", g.path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(g.path), "."+filepath.Base(g.path)+".*")
	if err != nil {
		return fmt.Errorf("render: create output file: %w", err)
	}
	// CreateTemp uses 0600.
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("render: create output file: %w", err)
	}
	if err := gif.EncodeAll(tmp, &g.anim); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("render: encode %s: %w", g.path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("render: close %s: %w", g.path, err)
	}
	if err := os.Rename(tmp.Name(), g.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("render: write %s: %w", g.path, err)
	}
	return nil
}

// Discard drops the rendered frames without writing anything.
//
// Use it when the run that fed the renderer failed.
func (g *GIF) Discard() {
	g.closed = true
	g.anim = gif.GIF{}
}
