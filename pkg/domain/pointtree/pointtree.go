// 指示: miu200521358
package pointtree

import (
	"math"
	"sort"

	"github.com/miu200521358/mlib_go/pkg/domain/mmath"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// treePoint はkd-tree格納用の点を表す。ordinalは構築時の点列indexを保持する。
type treePoint struct {
	position mmath.Vec3
	ordinal  int
}

// Compare は次元dに垂直な平面に対する符号付き距離を返す。
func (p treePoint) Compare(comparable kdtree.Comparable, dim kdtree.Dim) float64 {
	q := comparable.(treePoint)
	switch dim {
	case 0:
		return p.position.X - q.position.X
	case 1:
		return p.position.Y - q.position.Y
	default:
		return p.position.Z - q.position.Z
	}
}

// Dims は次元数を返す。
func (p treePoint) Dims() int {
	return 3
}

// Distance はユークリッド距離の2乗を返す。
func (p treePoint) Distance(comparable kdtree.Comparable) float64 {
	q := comparable.(treePoint)
	dx := p.position.X - q.position.X
	dy := p.position.Y - q.position.Y
	dz := p.position.Z - q.position.Z
	return dx*dx + dy*dy + dz*dz
}

// treePoints はkd-tree構築用の点列を表す。
type treePoints []treePoint

// Index はi番目の点を返す。
func (p treePoints) Index(i int) kdtree.Comparable {
	return p[i]
}

// Len は点数を返す。
func (p treePoints) Len() int {
	return len(p)
}

// Pivot は次元dでの分割位置を返す。
func (p treePoints) Pivot(dim kdtree.Dim) int {
	return treePlane{Dim: dim, treePoints: p}.Pivot()
}

// Slice は部分列を返す。
func (p treePoints) Slice(start int, end int) kdtree.Interface {
	return p[start:end]
}

// treePlane は次元固定の分割操作を表す。
type treePlane struct {
	kdtree.Dim
	treePoints
}

// Less はi番目がj番目より分割次元で小さいか判定する。
func (p treePlane) Less(i int, j int) bool {
	switch p.Dim {
	case 0:
		return p.treePoints[i].position.X < p.treePoints[j].position.X
	case 1:
		return p.treePoints[i].position.Y < p.treePoints[j].position.Y
	default:
		return p.treePoints[i].position.Z < p.treePoints[j].position.Z
	}
}

// Pivot は中央値分割位置を返す。
func (p treePlane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice は部分列の分割操作を返す。
func (p treePlane) Slice(start int, end int) kdtree.SortSlicer {
	p.treePoints = p.treePoints[start:end]
	return p
}

// Swap はi番目とj番目を入れ替える。
func (p treePlane) Swap(i int, j int) {
	p.treePoints[i], p.treePoints[j] = p.treePoints[j], p.treePoints[i]
}

// PointTree は3D点列に対する最近傍・半径検索構造を表す。
type PointTree struct {
	tree      *kdtree.Tree
	pointSize int
}

// NewPointTree は点列からPointTreeを構築する。点列は構築時点で複製される。
func NewPointTree(points []mmath.Vec3) *PointTree {
	if len(points) == 0 {
		return &PointTree{}
	}
	data := make(treePoints, len(points))
	for i, point := range points {
		data[i] = treePoint{position: point, ordinal: i}
	}
	return &PointTree{
		tree:      kdtree.New(data, false),
		pointSize: len(points),
	}
}

// Len は格納点数を返す。
func (t *PointTree) Len() int {
	if t == nil {
		return 0
	}
	return t.pointSize
}

// Nearest は最近傍点の構築時indexと距離を返す。空ツリーの場合はokがfalseになる。
func (t *PointTree) Nearest(query mmath.Vec3) (int, float64, bool) {
	if t == nil || t.tree == nil || t.pointSize == 0 {
		return -1, 0, false
	}
	nearest, squaredDistance := t.tree.Nearest(treePoint{position: query})
	found, ok := nearest.(treePoint)
	if !ok {
		return -1, 0, false
	}
	return found.ordinal, math.Sqrt(squaredDistance), true
}

// NearestAll は各クエリ点の最近傍indexと距離をまとめて返す。
func (t *PointTree) NearestAll(queries []mmath.Vec3) ([]int, []float64) {
	indexes := make([]int, len(queries))
	distances := make([]float64, len(queries))
	for i, query := range queries {
		index, distance, ok := t.Nearest(query)
		if !ok {
			indexes[i] = -1
			continue
		}
		indexes[i] = index
		distances[i] = distance
	}
	return indexes, distances
}

// BallQuery は中心から半径以内の点の構築時indexを昇順で返す。
func (t *PointTree) BallQuery(center mmath.Vec3, radius float64) []int {
	if t == nil || t.tree == nil || t.pointSize == 0 || radius < 0 {
		return []int{}
	}
	keeper := kdtree.NewDistKeeper(radius * radius)
	t.tree.NearestSet(keeper, treePoint{position: center})

	indexes := make([]int, 0, len(keeper.Heap))
	for _, item := range keeper.Heap {
		found, ok := item.Comparable.(treePoint)
		if !ok {
			continue
		}
		indexes = append(indexes, found.ordinal)
	}
	sort.Ints(indexes)
	return indexes
}
