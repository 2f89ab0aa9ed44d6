package ppx

import (
	"math"
)

const Pi = math.Pi

const MaxFloat = math.MaxFloat64

const Epsilon = 1.19209290e-07

/// This function is used to ensure that a floating point number is not a NaN or infinity.
func IsValidFloat(x float64) bool {
	if math.IsNaN(x) {
		return false
	}

	return !math.IsInf(x, 0)
}

/// A 2D column vector.
type Vec2 struct {
	X, Y float64
}

func MakeVec2(xIn, yIn float64) Vec2 {
	return Vec2{
		X: xIn,
		Y: yIn,
	}
}

func NewVec2(xIn, yIn float64) *Vec2 {
	res := MakeVec2(xIn, yIn)
	return &res
}

/// Set this vector to all zeros.
func (v *Vec2) SetZero() {
	v.X = 0.0
	v.Y = 0.0
}

/// Set this vector to some specified coordinates.
func (v *Vec2) Set(x, y float64) {
	v.X = x
	v.Y = y
}

/// Negate this vector.
func (v Vec2) OperatorNegate() Vec2 {
	return MakeVec2(-v.X, -v.Y)
}

/// Read from an indexed element.
func (v Vec2) OperatorIndexGet(i int) float64 {
	if i == 0 {
		return v.X
	}

	return v.Y
}

/// Write to an indexed element.
func (v *Vec2) OperatorIndexSet(i int, value float64) {
	if i == 0 {
		v.X = value
		return
	}

	v.Y = value
}

/// Add a vector to this vector.
func (v *Vec2) OperatorPlusInplace(other Vec2) {
	v.X += other.X
	v.Y += other.Y
}

/// Subtract a vector from this vector.
func (v *Vec2) OperatorMinusInplace(other Vec2) {
	v.X -= other.X
	v.Y -= other.Y
}

/// Multiply this vector by a scalar.
func (v *Vec2) OperatorScalarMulInplace(a float64) {
	v.X *= a
	v.Y *= a
}

/// Get the length of this vector (the norm).
func (v Vec2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

/// Get the length squared. For performance, use this instead of
/// Length (if possible).
func (v Vec2) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

/// Convert this vector into a unit vector. Returns the length.
func (v *Vec2) Normalize() float64 {
	length := v.Length()
	if length < Epsilon {
		return 0.0
	}

	invLength := 1.0 / length
	v.X *= invLength
	v.Y *= invLength

	return length
}

/// Does this vector contain finite coordinates?
func (v Vec2) IsValid() bool {
	return IsValidFloat(v.X) && IsValidFloat(v.Y)
}

/// Get the skew vector such that dot(skew_vec, other) == cross(vec, other)
func (v Vec2) Skew() Vec2 {
	return MakeVec2(-v.Y, v.X)
}

/// A 2D column vector with 3 elements.
type Vec3 struct {
	X, Y, Z float64
}

/// Construct using coordinates.
func MakeVec3(xIn, yIn, zIn float64) Vec3 {
	return Vec3{
		X: xIn,
		Y: yIn,
		Z: zIn,
	}
}

/// Set this vector to all zeros.
func (v *Vec3) SetZero() {
	v.X = 0.0
	v.Y = 0.0
	v.Z = 0.0
}

/// Set this vector to some specified coordinates.
func (v *Vec3) Set(x, y, z float64) {
	v.X = x
	v.Y = y
	v.Z = z
}

/// Negate this vector.
func (v Vec3) OperatorNegate() Vec3 {
	return MakeVec3(-v.X, -v.Y, -v.Z)
}

/// Add a vector to this vector.
func (v *Vec3) OperatorPlusInplace(other Vec3) {
	v.X += other.X
	v.Y += other.Y
	v.Z += other.Z
}

/// Subtract a vector from this vector.
func (v *Vec3) OperatorMinusInplace(other Vec3) {
	v.X -= other.X
	v.Y -= other.Y
	v.Z -= other.Z
}

/// A 2-by-2 matrix. Stored in column-major order.
type Mat22 struct {
	Ex, Ey Vec2
}

/// Construct this matrix using columns.
func MakeMat22FromColumns(c1, c2 Vec2) Mat22 {
	return Mat22{
		Ex: c1,
		Ey: c2,
	}
}

/// Construct this matrix using scalars.
func MakeMat22FromScalars(a11, a12, a21, a22 float64) Mat22 {
	return Mat22{
		Ex: MakeVec2(a11, a21),
		Ey: MakeVec2(a12, a22),
	}
}

/// Initialize this matrix using columns.
func (m *Mat22) Set(c1, c2 Vec2) {
	m.Ex = c1
	m.Ey = c2
}

/// Set this matrix to all zeros.
func (m *Mat22) SetZero() {
	m.Ex.X = 0.0
	m.Ey.X = 0.0
	m.Ex.Y = 0.0
	m.Ey.Y = 0.0
}

func (m Mat22) GetInverse() Mat22 {
	a := m.Ex.X
	b := m.Ey.X
	c := m.Ex.Y
	d := m.Ey.Y

	res := Mat22{}

	det := a*d - b*c
	if det != 0.0 {
		det = 1.0 / det
	}

	res.Ex.X = det * d
	res.Ey.X = -det * b
	res.Ex.Y = -det * c
	res.Ey.Y = det * a

	return res
}

/// Solve A * x = b, where b is a column vector. This is more efficient
/// than computing the inverse in one-shot cases.
func (m Mat22) Solve(b Vec2) Vec2 {
	a11 := m.Ex.X
	a12 := m.Ey.X
	a21 := m.Ex.Y
	a22 := m.Ey.Y
	det := a11*a22 - a12*a21

	if det != 0.0 {
		det = 1.0 / det
	}

	return MakeVec2(
		det*(a22*b.X-a12*b.Y),
		det*(a11*b.Y-a21*b.X),
	)
}

/// A 3-by-3 matrix. Stored in column-major order.
type Mat33 struct {
	Ex, Ey, Ez Vec3
}

/// Set this matrix to all zeros.
func (m *Mat33) SetZero() {
	m.Ex.SetZero()
	m.Ey.SetZero()
	m.Ez.SetZero()
}

/// Solve A * x = b, where b is a column vector. This is more efficient
/// than computing the inverse in one-shot cases.
func (m Mat33) Solve33(b Vec3) Vec3 {
	det := Vec3Dot(m.Ex, Vec3Cross(m.Ey, m.Ez))
	if det != 0.0 {
		det = 1.0 / det
	}

	x := det * Vec3Dot(b, Vec3Cross(m.Ey, m.Ez))
	y := det * Vec3Dot(m.Ex, Vec3Cross(b, m.Ez))
	z := det * Vec3Dot(m.Ex, Vec3Cross(m.Ey, b))

	return MakeVec3(x, y, z)
}

/// Solve A * x = b, where b is a column vector, using only the upper
/// 2-by-2 block.
func (m Mat33) Solve22(b Vec2) Vec2 {
	a11 := m.Ex.X
	a12 := m.Ey.X
	a21 := m.Ex.Y
	a22 := m.Ey.Y

	det := a11*a22 - a12*a21
	if det != 0.0 {
		det = 1.0 / det
	}

	x := det * (a22*b.X - a12*b.Y)
	y := det * (a11*b.Y - a21*b.X)

	return MakeVec2(x, y)
}

/// Returns the zero matrix if singular.
func (m Mat33) GetSymInverse33(res *Mat33) {
	det := Vec3Dot(m.Ex, Vec3Cross(m.Ey, m.Ez))

	if det != 0.0 {
		det = 1.0 / det
	}

	a11 := m.Ex.X
	a12 := m.Ey.X
	a13 := m.Ez.X
	a22 := m.Ey.Y
	a23 := m.Ez.Y
	a33 := m.Ez.Z

	res.Ex.X = det * (a22*a33 - a23*a23)
	res.Ex.Y = det * (a13*a23 - a12*a33)
	res.Ex.Z = det * (a12*a23 - a13*a22)

	res.Ey.X = res.Ex.Y
	res.Ey.Y = det * (a11*a33 - a13*a13)
	res.Ey.Z = det * (a13*a12 - a11*a23)

	res.Ez.X = res.Ex.Z
	res.Ez.Y = res.Ey.Z
	res.Ez.Z = det * (a11*a22 - a12*a12)
}

/// Rotation expressed as the sine/cosine pair of an angle.
type Rot struct {
	/// Sine and cosine
	S, C float64
}

func MakeRot() Rot {
	return Rot{S: 0.0, C: 1.0}
}

/// Initialize from an angle in radians.
func MakeRotFromAngle(angle float64) Rot {
	return Rot{
		S: math.Sin(angle),
		C: math.Cos(angle),
	}
}

/// Set using an angle in radians.
func (r *Rot) Set(angle float64) {
	r.S = math.Sin(angle)
	r.C = math.Cos(angle)
}

/// Set to the identity rotation.
func (r *Rot) SetIdentity() {
	r.S = 0.0
	r.C = 1.0
}

/// Get the angle in radians.
func (r Rot) GetAngle() float64 {
	return math.Atan2(r.S, r.C)
}

/// Get the x-axis.
func (r Rot) GetXAxis() Vec2 {
	return MakeVec2(r.C, r.S)
}

/// Get the u-axis.
func (r Rot) GetYAxis() Vec2 {
	return MakeVec2(-r.S, r.C)
}

/// A transform contains translation and rotation. It is used to represent
/// the position and orientation of rigid frames.
type Transform2D struct {
	P Vec2
	Q Rot
}

func MakeTransform2D() Transform2D {
	return Transform2D{
		P: MakeVec2(0.0, 0.0),
		Q: MakeRot(),
	}
}

/// Initialize using a position vector and a rotation.
func MakeTransform2DByPositionAndRotation(position Vec2, rotation Rot) Transform2D {
	return Transform2D{
		P: position,
		Q: rotation,
	}
}

func MakeTransform2DByPositionAndAngle(position Vec2, angle float64) Transform2D {
	return Transform2D{
		P: position,
		Q: MakeRotFromAngle(angle),
	}
}

/// Set this to the identity transform.
func (t *Transform2D) SetIdentity() {
	t.P.SetZero()
	t.Q.SetIdentity()
}

/// Set this based on the position and angle.
func (t *Transform2D) Set(position Vec2, angle float64) {
	t.P = position
	t.Q.Set(angle)
}

///////////////////////////////////////////////////////////////////////////////

/// Perform the dot product on two vectors.
func Vec2Dot(a, b Vec2) float64 {
	return a.X*b.X + a.Y*b.Y
}

/// Perform the dot product on two 3-vectors.
func Vec3Dot(a, b Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

/// Perform the cross product on two 3-vectors.
func Vec3Cross(a, b Vec3) Vec3 {
	return MakeVec3(
		a.Y*b.Z-a.Z*b.Y,
		a.Z*b.X-a.X*b.Z,
		a.X*b.Y-a.Y*b.X,
	)
}

/// Perform the cross product on two vectors. In 2D this produces a scalar.
func Vec2Cross(a, b Vec2) float64 {
	return a.X*b.Y - a.Y*b.X
}

/// Perform the cross product on a vector and a scalar. In 2D this produces
/// a vector.
func Vec2CrossVectorScalar(a Vec2, s float64) Vec2 {
	return MakeVec2(s*a.Y, -s*a.X)
}

/// Perform the cross product on a scalar and a vector. In 2D this produces
/// a vector.
func Vec2CrossScalarVector(s float64, a Vec2) Vec2 {
	return MakeVec2(-s*a.Y, s*a.X)
}

/// Add two vectors component-wise.
func Vec2Add(a, b Vec2) Vec2 {
	return MakeVec2(a.X+b.X, a.Y+b.Y)
}

/// Subtract two vectors component-wise.
func Vec2Sub(a, b Vec2) Vec2 {
	return MakeVec2(a.X-b.X, a.Y-b.Y)
}

func Vec2MulScalar(s float64, a Vec2) Vec2 {
	return MakeVec2(s*a.X, s*a.Y)
}

func Vec2Equals(a, b Vec2) bool {
	return a.X == b.X && a.Y == b.Y
}

func Vec2Distance(a, b Vec2) float64 {
	c := Vec2Sub(a, b)
	return c.Length()
}

func Vec2DistanceSquared(a, b Vec2) float64 {
	c := Vec2Sub(a, b)
	return Vec2Dot(c, c)
}

/// Multiply a rotation times a vector.
func RotVec2Mul(q Rot, v Vec2) Vec2 {
	return MakeVec2(q.C*v.X-q.S*v.Y, q.S*v.X+q.C*v.Y)
}

/// Inverse rotate a vector.
func RotVec2MulT(q Rot, v Vec2) Vec2 {
	return MakeVec2(q.C*v.X+q.S*v.Y, -q.S*v.X+q.C*v.Y)
}

/// Multiply two rotations: q * r.
func RotMul(q, r Rot) Rot {
	// [qc -qs] * [rc -rs] = [qc*rc-qs*rs -qc*rs-qs*rc]
	// [qs  qc]   [rs  rc]   [qs*rc+qc*rs -qs*rs+qc*rc]
	// s = qs * rc + qc * rs
	// c = qc * rc - qs * rs
	var res Rot
	res.S = q.S*r.C + q.C*r.S
	res.C = q.C*r.C - q.S*r.S
	return res
}

/// Transpose multiply two rotations: qT * r.
func RotMulT(q, r Rot) Rot {
	// [ qc qs] * [rc -rs] = [qc*rc+qs*rs -qc*rs+qs*rc]
	// [-qs qc]   [rs  rc]   [-qs*rc+qc*rs qs*rs+qc*rc]
	// s = qc * rs - qs * rc
	// c = qc * rc + qs * rs
	var res Rot
	res.S = q.C*r.S - q.S*r.C
	res.C = q.C*r.C + q.S*r.S
	return res
}

func TransformVec2Mul(t Transform2D, v Vec2) Vec2 {
	return MakeVec2(
		(t.Q.C*v.X-t.Q.S*v.Y)+t.P.X,
		(t.Q.S*v.X+t.Q.C*v.Y)+t.P.Y,
	)
}

func TransformVec2MulT(t Transform2D, v Vec2) Vec2 {
	px := v.X - t.P.X
	py := v.Y - t.P.Y
	return MakeVec2(
		t.Q.C*px+t.Q.S*py,
		-t.Q.S*px+t.Q.C*py,
	)
}

// v2 = A.q.Rot(B.q.Rot(v1) + B.p) + A.p
//    = (A.q * B.q).Rot(v1) + A.q.Rot(B.p) + A.p
func TransformMul(a, b Transform2D) Transform2D {
	var res Transform2D
	res.Q = RotMul(a.Q, b.Q)
	res.P = Vec2Add(RotVec2Mul(a.Q, b.P), a.P)
	return res
}

// v2 = A.q' * (B.q * v1 + B.p - A.p)
//    = A.q' * B.q * v1 + A.q' * (B.p - A.p)
func TransformMulT(a, b Transform2D) Transform2D {
	var res Transform2D
	res.Q = RotMulT(a.Q, b.Q)
	res.P = RotVec2MulT(a.Q, Vec2Sub(b.P, a.P))
	return res
}

func Vec2Abs(a Vec2) Vec2 {
	return MakeVec2(math.Abs(a.X), math.Abs(a.Y))
}

func Vec2Min(a, b Vec2) Vec2 {
	return MakeVec2(math.Min(a.X, b.X), math.Min(a.Y, b.Y))
}

func Vec2Max(a, b Vec2) Vec2 {
	return MakeVec2(math.Max(a.X, b.X), math.Max(a.Y, b.Y))
}

func Vec2Clamp(a, low, high Vec2) Vec2 {
	return Vec2Max(low, Vec2Min(a, high))
}

func FloatClamp(a, low, high float64) float64 {
	var b, c float64
	if IsValidFloat(high) {
		b = math.Min(a, high)
	} else {
		b = a
	}
	if IsValidFloat(low) {
		c = math.Max(b, low)
	} else {
		c = b
	}
	return c
}

/// "Next Largest Power of 2
/// Given a binary integer value x, the next largest power of 2 can be computed by a SWAR algorithm
/// that recursively "folds" the upper bits into the lower bits. This process yields a bit vector with
/// the same most significant 1 as x, but all 1's below it. Adding 1 to that value yields the next
/// largest power of 2. For a 32-bit value:"
func NextPowerOfTwo(x uint32) uint32 {
	x |= (x >> 1)
	x |= (x >> 2)
	x |= (x >> 4)
	x |= (x >> 8)
	x |= (x >> 16)
	return x + 1
}

func IsPowerOfTwo(x uint32) bool {
	return x > 0 && (x&(x-1)) == 0
}
