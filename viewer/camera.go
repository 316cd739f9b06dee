package viewer

import (
	"math"

	remath "raybvh/math"
)

// FlyCamera is a free-look debug camera: WASD + mouse-look, no physics.
// Grounded on the same position/rotation/projection split as a conventional
// scene camera, but driven directly by raw yaw/pitch instead of a
// quaternion accumulated over time, since a debug viewer never needs to
// interpolate or blend camera orientations.
type FlyCamera struct {
	Position remath.Vec3
	Yaw      float32 // radians, around Y
	Pitch    float32 // radians, around local X, clamped to avoid gimbal flip

	FOV         float32
	AspectRatio float32
	Near        float32
	Far         float32

	MoveSpeed float32
	LookSpeed float32
}

// NewFlyCamera returns a camera positioned to look at the origin from a
// reasonable default distance.
func NewFlyCamera(aspect float32) *FlyCamera {
	return &FlyCamera{
		Position:    remath.Vec3{X: 0, Y: 0, Z: 10},
		Yaw:         math.Pi, // Forward() = (0,0,-1), toward the origin
		FOV:         60 * (3.14159265 / 180),
		AspectRatio: aspect,
		Near:        0.05,
		Far:         1000,
		MoveSpeed:   5,
		LookSpeed:   0.0025,
	}
}

// Forward, Right, and Up are derived from Yaw/Pitch on demand; nothing is
// cached since a debug viewer recomputes a handful of vectors per frame,
// not per draw call.
func (c *FlyCamera) Forward() remath.Vec3 {
	cp := cosf(c.Pitch)
	return remath.Vec3{
		X: sinf(c.Yaw) * cp,
		Y: sinf(c.Pitch),
		Z: cosf(c.Yaw) * cp,
	}.Normalize()
}

func (c *FlyCamera) Right() remath.Vec3 {
	return c.Forward().Cross(remath.Vec3Up).Normalize()
}

// Look applies a mouse-delta in pixels to yaw/pitch, clamping pitch to
// just short of straight up/down.
func (c *FlyCamera) Look(dx, dy float32) {
	c.Yaw += dx * c.LookSpeed
	c.Pitch -= dy * c.LookSpeed
	const limit = 1.5533 // ~89 degrees
	if c.Pitch > limit {
		c.Pitch = limit
	}
	if c.Pitch < -limit {
		c.Pitch = -limit
	}
}

// Move advances the camera by (forward, right, up) units along its own
// basis vectors, scaled by MoveSpeed * dt.
func (c *FlyCamera) Move(forward, right, up, dt float32) {
	f := c.Forward().Mul(forward)
	r := c.Right().Mul(right)
	u := remath.Vec3Up.Mul(up)
	delta := f.Add(r).Add(u).Mul(c.MoveSpeed * dt)
	c.Position = c.Position.Add(delta)
}

// ViewProjection returns the combined view-projection matrix for the
// current camera state.
func (c *FlyCamera) ViewProjection() remath.Mat4 {
	target := c.Position.Add(c.Forward())
	view := remath.Mat4LookAt(c.Position, target, remath.Vec3Up)
	proj := remath.Mat4Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
	return view.Mul(proj)
}

func sinf(x float32) float32 {
	return float32(math.Sin(float64(x)))
}

func cosf(x float32) float32 {
	return float32(math.Cos(float64(x)))
}
