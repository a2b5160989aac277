package emath

// Some basic affine transformations, used to place a target mask onto
// the simulated frame.

import(
	"math"

	"golang.org/x/image/math/f64"
)

// Use a local type so we can hang methods off it
type Aff3 f64.Aff3

func (p Aff3)Mult(q Aff3) Aff3 {
	return Aff3{
		p[3*0+0]*q[3*0+0] + p[3*0+1]*q[3*1+0],
		p[3*0+0]*q[3*0+1] + p[3*0+1]*q[3*1+1],
		p[3*0+0]*q[3*0+2] + p[3*0+1]*q[3*1+2] + p[3*0+2],
		p[3*1+0]*q[3*0+0] + p[3*1+1]*q[3*1+0],
		p[3*1+0]*q[3*0+1] + p[3*1+1]*q[3*1+1],
		p[3*1+0]*q[3*0+2] + p[3*1+1]*q[3*1+2] + p[3*1+2],
	}
}

func Identity() Aff3 {
	return Aff3{1, 0, 0,   0, 1, 0}
}

func (m1 Aff3)Translate(tx, ty float64) Aff3 {
	return m1.Mult(Aff3{1, 0, tx,   0, 1, ty})
}

func (m1 Aff3)Scale(sx, sy float64) Aff3 {
	return m1.Mult(Aff3{sx, 0, 0,   0, sy, 0})
}

func (m1 Aff3)Rotate(thetaDeg float64) Aff3 {
	cosTheta := math.Cos(thetaDeg * math.Pi / 180.0)
	sinTheta := math.Sin(thetaDeg * math.Pi / 180.0)
	return m1.Mult(Aff3{cosTheta, -1*sinTheta, 0,    sinTheta, cosTheta, 0})
}

// Apply maps a point through the transform.
func (m Aff3)Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

// Placement describes where a mask image lands on the simulated frame.
// The zero value stretches the mask to fill the frame.
type Placement struct {
	Scale    float64 // relative to fit-to-frame; 0 means 1
	Rotate   float64 // degrees, about the mask centre
	OffsetX  float64 // pixels, from the frame centre
	OffsetY  float64
}

// MaskToFrame builds the src->dst transform for a mask of size (sw,sh)
// drawn into a frame of size (dw,dh).
func (p Placement)MaskToFrame(sw, sh, dw, dh int) Aff3 {
	scale := p.Scale
	if scale == 0 { scale = 1 }

	sx := scale * float64(dw) / float64(sw)
	sy := scale * float64(dh) / float64(sh)

	// Remember they compose back to front - rightmost operations performed first
	return Identity().
		Translate(float64(dw)/2 + p.OffsetX, float64(dh)/2 + p.OffsetY).
		Rotate(p.Rotate).
		Scale(sx, sy).
		Translate(-float64(sw)/2, -float64(sh)/2)
}
