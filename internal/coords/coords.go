// Package coords converts between the host's right-handed convention and
// the tracer's left-handed one. Nothing else in the module flips axes.
//
// Positions and normals negate Z. Rotations negate the X and Y parts of the
// quaternion and keep W. Scale is convention independent. Every conversion
// is an involution, so the To and From variants are the same operation
// under two names to keep call sites readable.
package coords

import "github.com/go-gl/mathgl/mgl32"

func PositionToWire(p mgl32.Vec3) mgl32.Vec3 { return mgl32.Vec3{p[0], p[1], -p[2]} }

func PositionFromWire(p mgl32.Vec3) mgl32.Vec3 { return mgl32.Vec3{p[0], p[1], -p[2]} }

func NormalToWire(n mgl32.Vec3) mgl32.Vec3 { return mgl32.Vec3{n[0], n[1], -n[2]} }

func RotationToWire(q mgl32.Quat) mgl32.Quat {
	return mgl32.Quat{W: q.W, V: mgl32.Vec3{-q.V[0], -q.V[1], q.V[2]}}
}

func RotationFromWire(q mgl32.Quat) mgl32.Quat {
	return mgl32.Quat{W: q.W, V: mgl32.Vec3{-q.V[0], -q.V[1], q.V[2]}}
}

// PositionsToWire converts a whole vertex array into a new slice.
func PositionsToWire(in []mgl32.Vec3) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(in))
	for i, p := range in {
		out[i] = PositionToWire(p)
	}
	return out
}

// NormalsToWire converts a whole normal array into a new slice.
func NormalsToWire(in []mgl32.Vec3) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(in))
	for i, n := range in {
		out[i] = NormalToWire(n)
	}
	return out
}

// ReverseWinding returns the index array back to front. Mirroring Z flips
// triangle orientation; reversing the array restores front faces.
func ReverseWinding(indices []uint32) []uint32 {
	out := make([]uint32, len(indices))
	for i, idx := range indices {
		out[len(indices)-1-i] = idx
	}
	return out
}
