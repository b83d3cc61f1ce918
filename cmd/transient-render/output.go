package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"

	"github.com/df07/go-transient-raytracer/pkg/core"
	"github.com/df07/go-transient-raytracer/pkg/film"
)

// outputWriter turns a developed film into image files
type outputWriter struct {
	dir       string
	upscale   int
	exposure  float64
	frameStep int
}

// toImage tone maps a pixel buffer into an 8 bit image
func (w outputWriter) toImage(pixels []core.Vec3, width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := pixels[y*width+x].
				Multiply(w.exposure).
				Clamp(0, 1).
				GammaCorrect(2.0)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(v.X * 255.999),
				G: uint8(v.Y * 255.999),
				B: uint8(v.Z * 255.999),
				A: 255,
			})
		}
	}
	if w.upscale <= 1 {
		return img
	}
	scaled := image.NewRGBA(image.Rect(0, 0, width*w.upscale, height*w.upscale))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
	return scaled
}

// writeSteady writes the steady state image as PNG
func (w outputWriter) writeSteady(result *film.Result) error {
	f, err := os.Create(filepath.Join(w.dir, "steady.png"))
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, w.toImage(result.Steady, result.Width, result.Height))
}

// writeTransientFrames writes one WebP frame per bin group, scaled so the
// brightest transient cell maps to full white
func (w outputWriter) writeTransientFrames(result *film.Result) (int, error) {
	step := w.frameStep
	if step < 1 {
		step = 1
	}

	peak := 0.0
	for _, v := range result.Transient {
		if m := v.MaxComponent(); m > peak {
			peak = m
		}
	}
	if peak <= 0 {
		peak = 1
	}

	pixels := make([]core.Vec3, result.Width*result.Height)
	written := 0
	for bin := 0; bin < result.Bins; bin += step {
		for p := range pixels {
			pixels[p] = result.Transient[p*result.Bins+bin].Multiply(1.0 / peak)
		}

		path := filepath.Join(w.dir, fmt.Sprintf("transient_%04d.webp", bin))
		f, err := os.Create(path)
		if err != nil {
			return written, err
		}
		if err := nativewebp.Encode(f, w.toImage(pixels, result.Width, result.Height), nil); err != nil {
			f.Close()
			return written, err
		}
		if err := f.Close(); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}
