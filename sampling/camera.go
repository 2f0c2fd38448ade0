package sampling

import (
	"fmt"

	"github.com/achilleasa/vmath/types"
)

// Stores the ray directions at the four corners of the camera frustum
// (top-left, top-right, bottom-left, bottom-right). Per pixel rays are
// generated by interpolating the corner rays.
type Frustum [4]types.Vec3

func (fr Frustum) String() string {
	return fmt.Sprintf(
		"Frustum Rays:\nTL : (%3.3f, %3.3f, %3.3f)\nTR : (%3.3f, %3.3f, %3.3f)\nBL : (%3.3f, %3.3f, %3.3f)\nBR : (%3.3f, %3.3f, %3.3f)",
		fr[0][0], fr[0][1], fr[0][2],
		fr[1][0], fr[1][1], fr[1][2],
		fr[2][0], fr[2][1], fr[2][2],
		fr[3][0], fr[3][1], fr[3][2],
	)
}

// A pinhole camera that generates primary rays.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3
	Pitch    float32
	Yaw      float32

	ViewMat types.Mat4
	ProjMat types.Mat4
	Frustum Frustum

	// Vertical field of view in radians.
	FOV float32
}

func NewCamera(fov float32) *Camera {
	return &Camera{
		ViewMat:  types.Ident4(),
		ProjMat:  types.Ident4(),
		Position: types.Vec3{0, 0, 0},
		LookAt:   types.Vec3{0, 0, -1},
		Up:       types.Vec3{0, 1, 0},
		FOV:      fov,
	}
}

// Setup camera projection matrix.
func (c *Camera) SetupProjection(aspect float32) error {
	c.ProjMat = types.Perspective4(c.FOV, aspect, 1, 1000)
	return c.Update()
}

// Point the camera so that it frames box b from the given direction.
func (c *Camera) Frame(b types.Box, from types.Vec3) error {
	center := b.Center()
	dist := b.Size().Len()
	if dist == 0 {
		dist = 1
	}
	c.LookAt = center
	c.Position = center.Add(from.Normalize().Mul(dist * 1.5))
	return c.Update()
}

// Apply pitch/yaw and recalculate the view matrix and frustum corners.
// Returns types.ErrSingularMatrix if the camera setup is degenerate (e.g.
// the view direction is parallel to the up vector).
func (c *Camera) Update() error {
	dir := c.LookAt.Sub(c.Position).Normalize()
	pitchAxis := dir.Cross(c.Up)
	pitchQuat := types.QuatFromAxisAngle(pitchAxis, c.Pitch)
	yawQuat := types.QuatFromAxisAngle(c.Up, c.Yaw)

	orientQuat := pitchQuat.Mul(yawQuat).Normalize()

	dir = orientQuat.Rotate(dir)
	c.LookAt = c.Position.Add(dir)
	c.Pitch, c.Yaw = 0, 0

	c.ViewMat = types.LookAt4(c.Position, c.LookAt, c.Up)
	return c.updateFrustum()
}

// Generate a ray vector for each corner of the camera frustum by
// multiplying clip space vectors for each corner with the inverse proj/view
// matrix, applying perspective and subtracting the camera eye position.
func (c *Camera) updateFrustum() error {
	invProjViewMat, err := c.ProjMat.Mul(c.ViewMat).Inv()
	if err != nil {
		return err
	}

	corners := [4]types.Vec4{
		types.XYZW(-1, 1, -1, 1),
		types.XYZW(1, 1, -1, 1),
		types.XYZW(-1, -1, -1, 1),
		types.XYZW(1, -1, -1, 1),
	}
	for i, clip := range corners {
		v := invProjViewMat.MulVec(clip)
		c.Frustum[i] = v.Mul(1.0 / v[3]).Vec3().Sub(c.Position)
	}
	return nil
}

// Get the primary ray through the normalized image coordinates (x, y);
// (0, 0) is the top-left corner.
func (c *Camera) Ray(x, y float32) types.Ray {
	top := c.Frustum[0].Lerp(c.Frustum[1], x)
	bottom := c.Frustum[2].Lerp(c.Frustum[3], x)
	return types.NewRay(c.Position, top.Lerp(bottom, y))
}

// Generate one ray per pixel for a w x h image in row-major order. If g is
// not nil each ray is jittered inside its pixel; otherwise rays go through
// pixel centers.
func (c *Camera) Rays(w, h int, g *Generator) []types.Ray {
	rays := make([]types.Ray, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			jx, jy := float32(0.5), float32(0.5)
			if g != nil {
				jx, jy = g.Float32(), g.Float32()
			}
			rays = append(rays, c.Ray((float32(x)+jx)/float32(w), (float32(y)+jy)/float32(h)))
		}
	}
	return rays
}
