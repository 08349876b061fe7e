// 指示: miu200521358
package surface

import (
	"github.com/miu200521358/mlib_go/pkg/domain/mmath"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// degenerateEpsilon は退化三角形判定の下限を表す。
	degenerateEpsilon = 1e-12
)

// ClosestPointOnTriangle は点pに最も近い三角形abc上の点と重心座標を返す。
// 戻り値の重心座標は頂点a,b,cの順に対応し、合計は1.0になる。
func ClosestPointOnTriangle(p mmath.Vec3, a mmath.Vec3, b mmath.Vec3, c mmath.Vec3) (mmath.Vec3, [3]float64) {
	ab := b.Subed(a)
	ac := c.Subed(a)
	ap := p.Subed(a)

	d1 := r3.Dot(ab.Vec, ap.Vec)
	d2 := r3.Dot(ac.Vec, ap.Vec)
	if d1 <= 0 && d2 <= 0 {
		// 頂点a領域
		return a, [3]float64{1, 0, 0}
	}

	bp := p.Subed(b)
	d3 := r3.Dot(ab.Vec, bp.Vec)
	d4 := r3.Dot(ac.Vec, bp.Vec)
	if d3 >= 0 && d4 <= d3 {
		// 頂点b領域
		return b, [3]float64{0, 1, 0}
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		// 辺ab領域
		denominator := d1 - d3
		if absValue(denominator) <= degenerateEpsilon {
			return a, [3]float64{1, 0, 0}
		}
		v := d1 / denominator
		return a.Added(ab.MuledScalar(v)), [3]float64{1 - v, v, 0}
	}

	cp := p.Subed(c)
	d5 := r3.Dot(ab.Vec, cp.Vec)
	d6 := r3.Dot(ac.Vec, cp.Vec)
	if d6 >= 0 && d5 <= d6 {
		// 頂点c領域
		return c, [3]float64{0, 0, 1}
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		// 辺ac領域
		denominator := d2 - d6
		if absValue(denominator) <= degenerateEpsilon {
			return a, [3]float64{1, 0, 0}
		}
		w := d2 / denominator
		return a.Added(ac.MuledScalar(w)), [3]float64{1 - w, 0, w}
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		// 辺bc領域
		denominator := (d4 - d3) + (d5 - d6)
		if absValue(denominator) <= degenerateEpsilon {
			return b, [3]float64{0, 1, 0}
		}
		w := (d4 - d3) / denominator
		return b.Added(c.Subed(b).MuledScalar(w)), [3]float64{0, 1 - w, w}
	}

	// 内部領域
	denominator := va + vb + vc
	if absValue(denominator) <= degenerateEpsilon {
		return a, [3]float64{1, 0, 0}
	}
	v := vb / denominator
	w := vc / denominator
	return a.Added(ab.MuledScalar(v)).Added(ac.MuledScalar(w)), [3]float64{1 - v - w, v, w}
}

// absValue は絶対値を返す。
func absValue(value float64) float64 {
	if value < 0 {
		return -value
	}
	return value
}
