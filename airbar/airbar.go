// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package airbar draws sen5x readings as a row of bar gauges on a terminal
// using ANSI color codes.
//
// Each channel gets Width blocks, filled in proportion to the value and
// colored by how it compares to the channel thresholds. The line is redrawn
// in place on every update.
package airbar

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"

	"github.com/GermanBionicSystems/airquality/sen5x"
)

// Channel describes one gauge.
type Channel struct {
	Name string
	// Value selects the channel from a reading.
	Value func(r *sen5x.Reading) sen5x.Value
	// Max is the value that fills the whole gauge.
	Max float64
	// Values at or above Warn are drawn in ColorWarn, at or above Alarm in
	// ColorAlarm.
	Warn, Alarm float64
}

// Gauge colors.
var (
	ColorOK    = color.NRGBA{0, 200, 0, 255}
	ColorWarn  = color.NRGBA{230, 180, 0, 255}
	ColorAlarm = color.NRGBA{220, 0, 0, 255}
	ColorOff   = color.NRGBA{48, 48, 48, 255}
)

// DefaultChannels shows the particulate matter thresholds from the WHO 2021
// air quality guidelines (24h means) and the index levels Sensirion calls
// elevated.
var DefaultChannels = []Channel{
	{"PM1.0", func(r *sen5x.Reading) sen5x.Value { return r.PM1_0 }, 100, 15, 35},
	{"PM2.5", func(r *sen5x.Reading) sen5x.Value { return r.PM2_5 }, 100, 15, 35},
	{"PM4.0", func(r *sen5x.Reading) sen5x.Value { return r.PM4_0 }, 150, 30, 75},
	{"PM10", func(r *sen5x.Reading) sen5x.Value { return r.PM10_0 }, 150, 45, 100},
	{"RH", func(r *sen5x.Reading) sen5x.Value { return r.Humidity }, 100, 60, 70},
	{"VOC", func(r *sen5x.Reading) sen5x.Value { return r.VOCIndex }, 500, 150, 250},
	{"NOx", func(r *sen5x.Reading) sen5x.Value { return r.NOxIndex }, 500, 20, 150},
}

// Opts represents the options available for this display.
type Opts struct {
	// Width is the number of blocks per channel. 0 defaults to 8.
	Width int
	// Channels defaults to DefaultChannels.
	Channels []Channel
	Palette  *ansi256.Palette

	_ struct{}
}

// Dev is a terminal gauge row.
type Dev struct {
	w        io.Writer
	width    int
	channels []Channel
	palette  ansi256.Palette

	labels []string
	pixels []byte
	buf    bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	if opts == nil {
		opts = &Opts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	width := opts.Width
	if width <= 0 {
		width = 8
	}
	channels := opts.Channels
	if len(channels) == 0 {
		channels = DefaultChannels
	}
	d := &Dev{
		w:        colorable.NewColorableStdout(),
		width:    width,
		channels: channels,
		palette:  *p,
		labels:   make([]string, len(channels)),
		pixels:   make([]byte, 3*width*len(channels)),
	}
	for i := range d.labels {
		d.labels[i] = "n/a"
	}
	return d
}

func (d *Dev) String() string {
	return "AirBar"
}

// Halt implements conn.Resource.
//
// It resets the terminal colors and ends the line.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Show draws r.
func (d *Dev) Show(r *sen5x.Reading) error {
	for i, ch := range d.channels {
		v := ch.Value(r)
		d.labels[i] = v.String()
		filled, c := d.level(&ch, v)
		for x := 0; x < d.width; x++ {
			px := ColorOff
			if x < filled {
				px = c
			}
			o := 3 * (i*d.width + x)
			d.pixels[o] = px.R
			d.pixels[o+1] = px.G
			d.pixels[o+2] = px.B
		}
	}
	_, err := d.refresh()
	return err
}

// level returns the number of filled blocks and their color.
func (d *Dev) level(ch *Channel, v sen5x.Value) (int, color.NRGBA) {
	if !v.Valid || v.V <= 0 {
		return 0, ColorOff
	}
	c := ColorOK
	switch {
	case v.V >= ch.Alarm:
		c = ColorAlarm
	case v.V >= ch.Warn:
		c = ColorWarn
	}
	n := int(math.Ceil(v.V / ch.Max * float64(d.width)))
	return min(n, d.width), c
}

// Write accepts a stream of raw RGB pixels, Width per channel, and writes it
// to the console. The labels keep the last values shown.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels)%3 != 0 {
		return 0, errors.New("airbar: invalid RGB stream length")
	}
	copy(d.pixels, pixels)
	return d.refresh()
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rectangle{Max: image.Point{X: d.width * len(d.channels), Y: 1}}
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	srcR := src.Bounds()
	srcR.Min = srcR.Min.Add(sp)
	if dX := r.Dx(); dX < srcR.Dx() {
		srcR.Max.X = srcR.Min.X + dX
	}
	if dY := r.Dy(); dY < srcR.Dy() {
		srcR.Max.Y = srcR.Min.Y + dY
	}
	deltaX3 := 3 * (r.Min.X - srcR.Min.X)
	for sX := srcR.Min.X; sX < srcR.Max.X; sX++ {
		r16, g16, b16, _ := src.At(sX, srcR.Min.Y).RGBA()
		dX3 := 3*sX + deltaX3
		d.pixels[dX3] = byte(r16 >> 8)
		d.pixels[dX3+1] = byte(g16 >> 8)
		d.pixels[dX3+2] = byte(b16 >> 8)
	}
	_, err := d.refresh()
	return err
}

func (d *Dev) refresh() (int, error) {
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for i, ch := range d.channels {
		fmt.Fprintf(&d.buf, "%s ", ch.Name)
		for x := 0; x < d.width; x++ {
			o := 3 * (i*d.width + x)
			c := color.NRGBA{d.pixels[o], d.pixels[o+1], d.pixels[o+2], 255}
			_, _ = io.WriteString(&d.buf, d.palette.Block(c))
		}
		fmt.Fprintf(&d.buf, "\033[0m %-5s ", d.labels[i])
	}
	_, err := d.buf.WriteTo(d.w)
	return len(d.pixels), err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
