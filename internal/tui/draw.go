package tui

import (
	"math"
	"strings"
)

type trailPoint struct {
	theta1, theta2 float64
	velocity       float64
}

func newCanvas(w, h int) [][]rune {
	canvas := make([][]rune, h)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", w))
	}
	return canvas
}

// drawPendulum draws both arms hanging from the pivot at the top centre,
// shifted sideways by the pivot displacement, with a velocity-shaded
// trail of the tip.
func drawPendulum(canvas [][]rune, w, h int, theta1, theta2, pivot float64, trail []trailPoint) {
	length := float64(h) * 0.45
	px := w/2 + int(pivot*length)
	py := 0

	maxV := 0.0
	for _, pt := range trail {
		maxV = math.Max(maxV, pt.velocity)
	}
	for _, pt := range trail {
		tx := px + int(length*math.Sin(pt.theta1)) + int(length*math.Sin(pt.theta2))
		ty := py + int(length*math.Cos(pt.theta1)) + int(length*math.Cos(pt.theta2))
		set(canvas, tx, ty, trailChar(pt.velocity, maxV), w, h)
	}

	b1x := px + int(length*math.Sin(theta1))
	b1y := py + int(length*math.Cos(theta1))
	b2x := b1x + int(length*math.Sin(theta2))
	b2y := b1y + int(length*math.Cos(theta2))

	drawLine(canvas, w, h, px, py, b1x, b1y, '│')
	drawLine(canvas, w, h, b1x, b1y, b2x, b2y, '│')
	set(canvas, px, py, '▼', w, h)
	set(canvas, b1x, b1y, '●', w, h)
	set(canvas, b2x, b2y, '⬤', w, h)
}

func trailChar(velocity, maxVel float64) rune {
	if maxVel == 0 {
		return '·'
	}
	ratio := velocity / maxVel
	switch {
	case ratio < 0.25:
		return '·'
	case ratio < 0.5:
		return '∘'
	case ratio < 0.75:
		return '○'
	}
	return '●'
}

func set(canvas [][]rune, x, y int, c rune, w, h int) {
	if x >= 0 && x < w && y >= 0 && y < h {
		canvas[y][x] = c
	}
}

func drawLine(canvas [][]rune, w, h, x1, y1, x2, y2 int, c rune) {
	dx := intAbs(x2 - x1)
	dy := intAbs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		set(canvas, x1, y1, c, w, h)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func intAbs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	rang := maxVal - minVal
	if rang == 0 || math.IsNaN(rang) || math.IsInf(rang, 0) {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		idx := int((data[i*step] - minVal) / rang * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}
