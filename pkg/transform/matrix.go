package transform

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrSingularMatrix is returned when a matrix has no inverse
var ErrSingularMatrix = errors.New("singular matrix")

// Matrix4x4 is a row-major 4x4 matrix
type Matrix4x4 [4][4]float64

// Identity returns the identity matrix
func Identity() Matrix4x4 {
	return Matrix4x4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// NewMatrix4x4 creates a matrix from its entries in row order
func NewMatrix4x4(t00, t01, t02, t03, t10, t11, t12, t13,
	t20, t21, t22, t23, t30, t31, t32, t33 float64) Matrix4x4 {
	return Matrix4x4{
		{t00, t01, t02, t03},
		{t10, t11, t12, t13},
		{t20, t21, t22, t23},
		{t30, t31, t32, t33},
	}
}

// Mul returns m * o
func (m Matrix4x4) Mul(o Matrix4x4) Matrix4x4 {
	var r Matrix4x4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j] + m[i][2]*o[2][j] + m[i][3]*o[3][j]
		}
	}
	return r
}

// Transpose returns the transposed matrix
func (m Matrix4x4) Transpose() Matrix4x4 {
	var r Matrix4x4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

// Inverse computes the inverse with Gauss-Jordan elimination and full pivoting.
// A singular matrix is reported to the global logger and returns ErrSingularMatrix.
func (m Matrix4x4) Inverse() (Matrix4x4, error) {
	var indxc, indxr [4]int
	var ipiv [4]int
	minv := m

	for i := 0; i < 4; i++ {
		irow, icol := 0, 0
		big := 0.0
		// choose pivot
		for j := 0; j < 4; j++ {
			if ipiv[j] == 1 {
				continue
			}
			for k := 0; k < 4; k++ {
				switch {
				case ipiv[k] == 0:
					if math.Abs(minv[j][k]) >= big {
						big = math.Abs(minv[j][k])
						irow, icol = j, k
					}
				case ipiv[k] > 1:
					return Matrix4x4{}, singular(m)
				}
			}
		}
		ipiv[icol]++

		if irow != icol {
			minv[irow], minv[icol] = minv[icol], minv[irow]
		}
		indxr[i], indxc[i] = irow, icol
		if minv[icol][icol] == 0 {
			return Matrix4x4{}, singular(m)
		}

		pivinv := 1 / minv[icol][icol]
		minv[icol][icol] = 1
		for j := 0; j < 4; j++ {
			minv[icol][j] *= pivinv
		}

		// subtract this row from the others to zero out their columns
		for j := 0; j < 4; j++ {
			if j == icol {
				continue
			}
			save := minv[j][icol]
			minv[j][icol] = 0
			for k := 0; k < 4; k++ {
				minv[j][k] -= minv[icol][k] * save
			}
		}
	}

	// swap columns to undo the pivoting
	for j := 3; j >= 0; j-- {
		if indxr[j] == indxc[j] {
			continue
		}
		for k := 0; k < 4; k++ {
			minv[k][indxr[j]], minv[k][indxc[j]] = minv[k][indxc[j]], minv[k][indxr[j]]
		}
	}
	return minv, nil
}

func singular(m Matrix4x4) error {
	zap.L().Error("cannot invert singular matrix", zap.Stringer("matrix", m))
	return errors.Wrapf(ErrSingularMatrix, "invert %v", m)
}

// IsIdentity reports whether m is exactly the identity
func (m Matrix4x4) IsIdentity() bool {
	return m == Identity()
}

// Equal reports whether every entry of m is within eps of o
func (m Matrix4x4) Equal(o Matrix4x4, eps float64) bool {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math.Abs(m[i][j]-o[i][j]) > eps {
				return false
			}
		}
	}
	return true
}

func (m Matrix4x4) String() string {
	rows := make([]string, 4)
	for i, r := range m {
		rows[i] = fmt.Sprintf("[ %g %g %g %g ]", r[0], r[1], r[2], r[3])
	}
	return "[ " + strings.Join(rows, " ") + " ]"
}
