// Package locator renders batch resolver URLs as scannable QR images.
package locator

import (
	"fmt"
	"image/color"
	"strings"

	"HerbPass/domain"

	qrcode "github.com/skip2/go-qrcode"
)

type Options struct {
	Recovery   qrcode.RecoveryLevel
	Foreground color.Color
	Background color.Color
	// ModulePixels is the edge length of one QR module in the PNG.
	ModulePixels int
	// DisableBorder drops the four-module quiet zone.
	DisableBorder bool
}

func DefaultOptions() Options {
	return Options{
		Recovery:     qrcode.Medium,
		Foreground:   color.Black,
		Background:   color.White,
		ModulePixels: 10,
	}
}

// Codec encodes URLs. The output depends only on the URL and Options.
type Codec struct {
	opts Options
}

func NewCodec(opts Options) *Codec {
	if opts.ModulePixels <= 0 {
		opts.ModulePixels = DefaultOptions().ModulePixels
	}
	if opts.Foreground == nil {
		opts.Foreground = color.Black
	}
	if opts.Background == nil {
		opts.Background = color.White
	}
	return &Codec{opts: opts}
}

// Encode returns the PNG image of url.
func (c *Codec) Encode(url string) ([]byte, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: locator url is empty", domain.ErrValidation)
	}

	q, err := qrcode.New(url, c.opts.Recovery)
	if err != nil {
		return nil, fmt.Errorf("encode locator: %w", err)
	}
	q.ForegroundColor = c.opts.Foreground
	q.BackgroundColor = c.opts.Background
	q.DisableBorder = c.opts.DisableBorder

	// A negative size makes every module exactly ModulePixels wide.
	png, err := q.PNG(-c.opts.ModulePixels)
	if err != nil {
		return nil, fmt.Errorf("render locator: %w", err)
	}
	return png, nil
}
