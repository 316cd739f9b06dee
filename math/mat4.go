package math

import "math"

type Mat4 [4][4]float32

func Mat4Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

func Mat4Zero() Mat4 {
	return Mat4{
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
}

func (m Mat4) Mul(other Mat4) Mat4 {
	result := Mat4Zero()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				result[i][j] += m[i][k] * other[k][j]
			}
		}
	}
	return result
}

func (m Mat4) MulVec(v Vec4) Vec4 {
	return v.MulMat(m)
}

func (m Mat4) MulVec3(v Vec3) Vec3 {
	v4 := v.ToVec4(1.0)
	result := m.MulVec(v4)
	return result.ToVec3DivW()
}

func Mat4Translation(translation Vec3) Mat4 {
	m := Mat4Identity()
	m[3][0] = translation.X
	m[3][1] = translation.Y
	m[3][2] = translation.Z
	return m
}

func Mat4Scale(scale Vec3) Mat4 {
	m := Mat4Identity()
	m[0][0] = scale.X
	m[1][1] = scale.Y
	m[2][2] = scale.Z
	return m
}

func Mat4Perspective(fovY, aspect, near, far float32) Mat4 {
	tanHalfFovy := float32(math.Tan(float64(fovY) / 2))

	m := Mat4Zero()
	m[0][0] = 1 / (aspect * tanHalfFovy)
	m[1][1] = 1 / tanHalfFovy
	m[2][2] = -(far + near) / (far - near)
	m[2][3] = -1
	m[3][2] = -(2 * far * near) / (far - near)
	return m
}

func Mat4LookAt(eye, target, up Vec3) Mat4 {
	zAxis := eye.Sub(target).Normalize()
	xAxis := up.Cross(zAxis).Normalize()
	yAxis := zAxis.Cross(xAxis)

	return Mat4{
		{xAxis.X, yAxis.X, zAxis.X, 0},
		{xAxis.Y, yAxis.Y, zAxis.Y, 0},
		{xAxis.Z, yAxis.Z, zAxis.Z, 0},
		{-xAxis.Dot(eye), -yAxis.Dot(eye), -zAxis.Dot(eye), 1},
	}
}

// cofactor3x3 returns the determinant of the 3x3 minor of m obtained by
// deleting row r and column c, signed by (-1)^(r+c).
func (m Mat4) cofactor3x3(r, c int) float32 {
	var rows, cols [3]int
	ri, ci := 0, 0
	for k := 0; k < 4; k++ {
		if k != r {
			rows[ri] = k
			ri++
		}
		if k != c {
			cols[ci] = k
			ci++
		}
	}

	a, b, cc := m[rows[0]][cols[0]], m[rows[0]][cols[1]], m[rows[0]][cols[2]]
	d, e, f := m[rows[1]][cols[0]], m[rows[1]][cols[1]], m[rows[1]][cols[2]]
	g, h, i := m[rows[2]][cols[0]], m[rows[2]][cols[1]], m[rows[2]][cols[2]]

	minor := a*(e*i-f*h) - b*(d*i-f*g) + cc*(d*h-e*g)
	if (r+c)%2 != 0 {
		minor = -minor
	}
	return minor
}

// Inverse returns the inverse of m via its full adjugate, or the identity
// if m is singular. adj[i][j] is the cofactor of m with row j and column i
// removed, so the whole 4x4 adjugate (not just the column needed to expand
// the determinant) gets filled in before the 1/det scale.
func (m Mat4) Inverse() Mat4 {
	var adj Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			adj[i][j] = m.cofactor3x3(j, i)
		}
	}

	det := m[0][0]*adj[0][0] + m[0][1]*adj[1][0] + m[0][2]*adj[2][0] + m[0][3]*adj[3][0]
	if det == 0 {
		return Mat4Identity()
	}

	invDet := 1 / det
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			adj[i][j] *= invDet
		}
	}
	return adj
}
