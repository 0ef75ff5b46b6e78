package main

import (
	"image"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/jdillenkofer/proteus/internal/sim"
)

const (
	screenWidth  = 1280
	screenHeight = 720
)

// Game runs the simulation locally and renders it, useful for development
// without the server and as the reference for what viewers should see.
type Game struct {
	manager *sim.Manager
	canvas  *ebitenCanvas
}

func NewGame() *Game {
	m := sim.New()
	m.Init(screenWidth, screenHeight)
	return &Game{manager: m, canvas: &ebitenCanvas{}}
}

func (g *Game) Update() error {
	g.manager.Update(1.0 / float64(ebiten.TPS()))

	// R rebuilds the scene with a fresh chamber shuffle.
	if ebiten.IsKeyPressed(ebiten.KeyR) {
		g.manager.Reset()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 0x10, G: 0x10, B: 0x18, A: 0xff})
	g.canvas.screen = screen
	g.canvas.clips = g.canvas.clips[:0]
	g.manager.Draw(g.canvas)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// ebitenCanvas renders sim.Canvas calls onto an ebiten image. Clipping uses
// SubImage, which shares pixels with the parent, so pushing and popping is
// just a stack of targets.
type ebitenCanvas struct {
	screen *ebiten.Image
	clips  []*ebiten.Image
}

func (c *ebitenCanvas) target() *ebiten.Image {
	if n := len(c.clips); n > 0 {
		return c.clips[n-1]
	}
	return c.screen
}

func (c *ebitenCanvas) PushClip(x, y, w, h float64) {
	r := image.Rect(int(x), int(y), int(x+w), int(y+h))
	c.clips = append(c.clips, c.screen.SubImage(r).(*ebiten.Image))
}

func (c *ebitenCanvas) PopClip() {
	if len(c.clips) > 0 {
		c.clips = c.clips[:len(c.clips)-1]
	}
}

func (c *ebitenCanvas) FillCircle(x, y, r float64, col string, alpha float64) {
	vector.DrawFilledCircle(c.target(), float32(x), float32(y), float32(r), parseColor(col, alpha), true)
}

func (c *ebitenCanvas) StrokeCircle(x, y, r, width float64, col string, alpha float64) {
	vector.StrokeCircle(c.target(), float32(x), float32(y), float32(r), float32(width), parseColor(col, alpha), true)
}

func (c *ebitenCanvas) FillRect(x, y, w, h float64, col string, alpha float64) {
	vector.DrawFilledRect(c.target(), float32(x), float32(y), float32(w), float32(h), parseColor(col, alpha), true)
}

func (c *ebitenCanvas) Line(x1, y1, x2, y2, width float64, col string, alpha float64) {
	vector.StrokeLine(c.target(), float32(x1), float32(y1), float32(x2), float32(y2), float32(width), parseColor(col, alpha), true)
}

// parseColor turns "#rrggbb" into a premultiplied RGBA with the given alpha.
func parseColor(s string, alpha float64) color.RGBA {
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	r, g, b := uint8(0xcc), uint8(0xcc), uint8(0xcc)
	if len(s) == 7 && s[0] == '#' {
		r = hexByte(s[1], s[2])
		g = hexByte(s[3], s[4])
		b = hexByte(s[5], s[6])
	}
	a := float64(0xff) * alpha
	return color.RGBA{
		R: uint8(float64(r) * alpha),
		G: uint8(float64(g) * alpha),
		B: uint8(float64(b) * alpha),
		A: uint8(a),
	}
}

func hexByte(hi, lo byte) uint8 {
	return hexNibble(hi)<<4 | hexNibble(lo)
}

func hexNibble(b byte) uint8 {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}

func main() {
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Proteus")
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(NewGame()); err != nil {
		log.Fatal(err)
	}
}
