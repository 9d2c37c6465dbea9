package stats

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
)

// HSL is a color with hue in degrees [0, 359], saturation and lightness in percent [0, 100]
type HSL struct {
	H int
	S int
	L int
}

// RGB converts the color, see https://en.wikipedia.org/wiki/HSL_and_HSV#HSL_to_RGB
func (c HSL) RGB() (uint8, uint8, uint8) {
	h := float64(c.H) / 360
	s := float64(c.S) / 100
	l := float64(c.L) / 100

	if s == 0 {
		v := channel(l)
		return v, v, v
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	return channel(hueToRGB(p, q, h+1.0/3)), channel(hueToRGB(p, q, h)), channel(hueToRGB(p, q, h-1.0/3))
}

// Hex returns the #rrggbb notation
func (c HSL) Hex() string {
	r, g, b := c.RGB()
	return RGBToHex(r, g, b)
}

func RGBToHex(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}

	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// ColorRange bounds saturation and lightness of generated colors, in percent
type ColorRange struct {
	SaturationMin int
	SaturationMax int
	LightnessMin  int
	LightnessMax  int
}

func (r ColorRange) normalized() ColorRange {
	clamp := func(v int) int {
		return max(0, min(100, v))
	}

	out := ColorRange{
		SaturationMin: clamp(r.SaturationMin),
		SaturationMax: clamp(r.SaturationMax),
		LightnessMin:  clamp(r.LightnessMin),
		LightnessMax:  clamp(r.LightnessMax),
	}

	if out.SaturationMax < out.SaturationMin {
		out.SaturationMin, out.SaturationMax = out.SaturationMax, out.SaturationMin
	}
	if out.LightnessMax < out.LightnessMin {
		out.LightnessMin, out.LightnessMax = out.LightnessMax, out.LightnessMin
	}

	return out
}

// pick maps seed into [lo, hi]
func pick(seed uint32, lo, hi int) int {
	return lo + int(seed%uint32(hi-lo+1))
}

// StablePalette derives the color from a hash of the language name, so a language keeps its color across runs
type StablePalette struct {
	Range ColorRange
}

func (p StablePalette) HSL(language string) HSL {
	h := fnv.New32a()
	_, _ = h.Write([]byte(language))
	sum := h.Sum32()

	r := p.Range.normalized()
	return HSL{
		H: int(sum % 360),
		S: pick(sum>>9, r.SaturationMin, r.SaturationMax),
		L: pick(sum>>17, r.LightnessMin, r.LightnessMax),
	}
}

func (p StablePalette) Color(language string) string {
	return p.HSL(language).Hex()
}

// RandomPalette draws a new random hue on every call
type RandomPalette struct {
	Range ColorRange
}

func (p RandomPalette) HSL(string) HSL {
	r := p.Range.normalized()
	return HSL{
		H: rand.Intn(360),
		S: r.SaturationMin + rand.Intn(r.SaturationMax-r.SaturationMin+1),
		L: r.LightnessMin + rand.Intn(r.LightnessMax-r.LightnessMin+1),
	}
}

func (p RandomPalette) Color(language string) string {
	return p.HSL(language).Hex()
}

// NewPalette returns the stable palette, or the random one when stable is false
func NewPalette(stable bool, colorRange ColorRange) Palette {
	if stable {
		return StablePalette{Range: colorRange}
	}

	return RandomPalette{Range: colorRange}
}
