package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/drivenpend/internal/dynamo"
)

type Point struct{ X, Y float64 }

// PhaseRecorder is a dynamo.Observer collecting (θ, ω) of one arm.
type PhaseRecorder struct {
	Arm    int
	Every  int
	Points []Point
}

// NewPhaseRecorder records arm 1 or 2 every `every` steps.
func NewPhaseRecorder(arm, every int) *PhaseRecorder {
	if arm != 2 {
		arm = 1
	}
	if every <= 0 {
		every = 1
	}
	return &PhaseRecorder{Arm: arm, Every: every}
}

func (p *PhaseRecorder) OnStep(step int, x dynamo.State, signal, noise float64) {
	if step%p.Every != 0 {
		return
	}
	if p.Arm == 2 {
		p.Points = append(p.Points, Point{X: x.Theta2, Y: x.Omega2})
		return
	}
	p.Points = append(p.Points, Point{X: x.Theta1, Y: x.Omega1})
}

// PoincareRecorder records (θ2, ω2) each time θ1 crosses zero upwards.
type PoincareRecorder struct {
	Points  []Point
	prev    float64
	started bool
}

func (p *PoincareRecorder) OnStep(step int, x dynamo.State, signal, noise float64) {
	if p.started && p.prev < 0 && x.Theta1 >= 0 {
		p.Points = append(p.Points, Point{X: x.Theta2, Y: x.Omega2})
	}
	p.prev = x.Theta1
	p.started = true
}

// ToASCII draws points on a width×height character grid with axes where
// they cross the visible area. Non-finite points are skipped.
func ToASCII(points []Point, width, height int) string {
	pts := make([]Point, 0, len(points))
	for _, p := range points {
		if isFinite(p.X) && isFinite(p.Y) {
			pts = append(pts, p)
		}
	}
	if len(pts) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := pts[0].X, pts[0].X
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range pts {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
