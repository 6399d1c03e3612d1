package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
)

// Recorder collects canvas frames for an animated GIF. Each Braille cell is
// drawn as an 8x16 pixel block.
type Recorder struct {
	frames []*image.Paletted
	delay  int
}

// NewRecorder uses delay hundredths of a second between frames.
func NewRecorder(delay int) *Recorder {
	return &Recorder{delay: max(delay, 1)}
}

func (r *Recorder) Frames() int { return len(r.frames) }

func (r *Recorder) Capture(c *Canvas) {
	const charW, charH = 8, 16
	const dotW, dotH = charW / 2, charH / 4

	img := image.NewPaletted(
		image.Rect(0, 0, c.Width*charW, c.Height*charH),
		color.Palette{color.Black, color.White},
	)
	for y := range c.PixelHeight() {
		for x := range c.PixelWidth() {
			if !c.IsSet(x, y) {
				continue
			}
			for py := range dotH {
				for px := range dotW {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

// Save writes the captured frames to path and clears the recorder.
func (r *Recorder) Save(path string) error {
	if len(r.frames) == 0 {
		return fmt.Errorf("no frames captured")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.delay)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	r.frames = r.frames[:0]
	return f.Close()
}
