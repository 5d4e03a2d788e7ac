package main

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// clicker plays a short sine tone. Clicks that arrive while one is still
// sounding are dropped so a burst of bounces stays a single click.
type clicker struct {
	freq     float64
	samples  int
	lastPlay time.Time
	length   time.Duration
}

func newClicker(freq float64, length time.Duration) (*clicker, error) {
	if freq <= 0 {
		freq = 880
	}
	if length <= 0 {
		length = 15 * time.Millisecond
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &clicker{
		freq:    freq,
		samples: sampleRate.N(length),
		length:  length,
	}, nil
}

// Play starts a click unless one is already sounding.
func (c *clicker) Play() {
	now := time.Now()
	if now.Sub(c.lastPlay) < c.length {
		return
	}
	sine, err := generators.SineTone(sampleRate, c.freq)
	if err != nil {
		return
	}
	c.lastPlay = now
	speaker.Play(beep.Take(c.samples, sine))
}
