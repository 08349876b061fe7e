// 指示: miu200521358
package wtransfer

import (
	"fmt"
	"math"
	"sort"

	"github.com/miu200521358/mlib_go/pkg/domain/mmath"
	"github.com/miu200521358/mu_weight_transfer/pkg/domain/skinmath"
	"github.com/miu200521358/mu_weight_transfer/pkg/domain/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// newTransferTestVec3 はテスト用のワールド座標を生成する。
func newTransferTestVec3(x, y, z float64) mmath.Vec3 {
	return mmath.Vec3{Vec: r3.Vec{X: x, Y: y, Z: z}}
}

// fakeMesh はテスト用のメッシュアクセサを表す。3頂点面と4頂点面、多角形面を混在できる。
type fakeMesh struct {
	positions []mmath.Vec3
	faces     [][]int

	vertexFaces map[int][]int
	edges       [][2]int
	faceEdges   map[int][]int
}

// newFakeMesh は面リストから接続情報を構築してテスト用メッシュを生成する。
func newFakeMesh(positions []mmath.Vec3, faces [][]int) *fakeMesh {
	mesh := &fakeMesh{
		positions:   positions,
		faces:       faces,
		vertexFaces: map[int][]int{},
		faceEdges:   map[int][]int{},
	}

	edgeIndexes := map[[2]int]int{}
	for faceIndex, face := range faces {
		for i, vertexIndex := range face {
			mesh.vertexFaces[vertexIndex] = append(mesh.vertexFaces[vertexIndex], faceIndex)

			nextIndex := face[(i+1)%len(face)]
			key := [2]int{vertexIndex, nextIndex}
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			edgeIndex, exists := edgeIndexes[key]
			if !exists {
				edgeIndex = len(mesh.edges)
				edgeIndexes[key] = edgeIndex
				mesh.edges = append(mesh.edges, key)
			}
			mesh.faceEdges[faceIndex] = append(mesh.faceEdges[faceIndex], edgeIndex)
		}
	}
	return mesh
}

func (m *fakeMesh) NumVertices() int {
	return len(m.positions)
}

func (m *fakeMesh) VertexPositions(vertexIndexes []int) ([]mmath.Vec3, error) {
	if vertexIndexes == nil {
		return append([]mmath.Vec3{}, m.positions...), nil
	}
	positions := make([]mmath.Vec3, len(vertexIndexes))
	for i, vertexIndex := range vertexIndexes {
		if vertexIndex < 0 || vertexIndex >= len(m.positions) {
			return nil, fmt.Errorf("頂点indexが範囲外です: %d", vertexIndex)
		}
		positions[i] = m.positions[vertexIndex]
	}
	return positions, nil
}

func (m *fakeMesh) ConnectedFacesByVertex(vertexIndex int) []int {
	return append([]int{}, m.vertexFaces[vertexIndex]...)
}

func (m *fakeMesh) ConnectedFacesByFaces(faceIndexes []int) []int {
	connected := map[int]struct{}{}
	for _, faceIndex := range faceIndexes {
		if faceIndex < 0 || faceIndex >= len(m.faces) {
			continue
		}
		for _, vertexIndex := range m.faces[faceIndex] {
			for _, neighborIndex := range m.vertexFaces[vertexIndex] {
				connected[neighborIndex] = struct{}{}
			}
		}
	}
	results := make([]int, 0, len(connected))
	for faceIndex := range connected {
		results = append(results, faceIndex)
	}
	sort.Ints(results)
	return results
}

func (m *fakeMesh) ConnectedEdgesByFaces(faceIndexes []int) []int {
	connected := map[int]struct{}{}
	for _, faceIndex := range faceIndexes {
		for _, edgeIndex := range m.faceEdges[faceIndex] {
			connected[edgeIndex] = struct{}{}
		}
	}
	results := make([]int, 0, len(connected))
	for edgeIndex := range connected {
		results = append(results, edgeIndex)
	}
	sort.Ints(results)
	return results
}

func (m *fakeMesh) ConnectedVerticesByFaces(faceIndexes []int) []int {
	connected := map[int]struct{}{}
	for _, faceIndex := range faceIndexes {
		if faceIndex < 0 || faceIndex >= len(m.faces) {
			continue
		}
		for _, vertexIndex := range m.faces[faceIndex] {
			connected[vertexIndex] = struct{}{}
		}
	}
	results := make([]int, 0, len(connected))
	for vertexIndex := range connected {
		results = append(results, vertexIndex)
	}
	sort.Ints(results)
	return results
}

func (m *fakeMesh) EdgeVertexIndexes(edgeIndex int) (int, int, error) {
	if edgeIndex < 0 || edgeIndex >= len(m.edges) {
		return 0, 0, fmt.Errorf("辺indexが範囲外です: %d", edgeIndex)
	}
	return m.edges[edgeIndex][0], m.edges[edgeIndex][1], nil
}

func (m *fakeMesh) FaceVertexIndexes(faceIndex int) []int {
	if faceIndex < 0 || faceIndex >= len(m.faces) {
		return nil
	}
	return append([]int{}, m.faces[faceIndex]...)
}

func (m *fakeMesh) ClosestPointOnSurface(points []mmath.Vec3, faceIndexes []int) ([]SurfaceHit, error) {
	if faceIndexes == nil {
		faceIndexes = make([]int, len(m.faces))
		for i := range faceIndexes {
			faceIndexes[i] = i
		}
	}

	hits := make([]SurfaceHit, len(points))
	for i, point := range points {
		bestDistance := math.Inf(1)
		var bestHit SurfaceHit
		for _, faceIndex := range faceIndexes {
			hit := m.closestPointOnFace(point, faceIndex)
			distance := point.Distance(hit.Point)
			if distance < bestDistance {
				bestDistance = distance
				bestHit = hit
			}
		}
		hits[i] = bestHit
	}
	return hits, nil
}

// closestPointOnFace は面1つに対する最近点を求める。
// 4頂点面はXY平面上の軸平行矩形、多角形面は最近頂点で近似する前提のテスト実装。
func (m *fakeMesh) closestPointOnFace(point mmath.Vec3, faceIndex int) SurfaceHit {
	face := m.faces[faceIndex]
	switch len(face) {
	case 3:
		closest, coords := surface.ClosestPointOnTriangle(
			point, m.positions[face[0]], m.positions[face[1]], m.positions[face[2]])
		return SurfaceHit{
			FaceIndex:     faceIndex,
			Point:         closest,
			Coordinates:   []float64{coords[0], coords[1], coords[2]},
			VertexIndexes: append([]int{}, face...),
		}
	case 4:
		p0 := m.positions[face[0]]
		p1 := m.positions[face[1]]
		p3 := m.positions[face[3]]
		u := clampUnit((point.X - p0.X) / (p1.X - p0.X))
		v := clampUnit((point.Y - p0.Y) / (p3.Y - p0.Y))
		closest := newTransferTestVec3(p0.X+u*(p1.X-p0.X), p0.Y+v*(p3.Y-p0.Y), p0.Z)
		return SurfaceHit{
			FaceIndex:     faceIndex,
			Point:         closest,
			Coordinates:   []float64{(1 - u) * (1 - v), u * (1 - v), u * v, (1 - u) * v},
			VertexIndexes: append([]int{}, face...),
		}
	default:
		bestDistance := math.Inf(1)
		closest := m.positions[face[0]]
		for _, vertexIndex := range face {
			distance := point.Distance(m.positions[vertexIndex])
			if distance < bestDistance {
				bestDistance = distance
				closest = m.positions[vertexIndex]
			}
		}
		return SurfaceHit{
			FaceIndex:     faceIndex,
			Point:         closest,
			VertexIndexes: append([]int{}, face...),
		}
	}
}

func clampUnit(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

// fakeSkin はテスト用のスキンアクセサを表す。ApplyVertexWeightsの更新内容を記録する。
type fakeSkin struct {
	mesh           *fakeMesh
	weights        map[int]skinmath.WeightMap
	influenceNames []string
	maxInfluences  int
	applied        map[int]skinmath.WeightMap
}

// newFakeSkin はメッシュとウェイトからテスト用スキンを生成する。
func newFakeSkin(mesh *fakeMesh, weights map[int]skinmath.WeightMap, influenceNames []string) *fakeSkin {
	return &fakeSkin{
		mesh:           mesh,
		weights:        weights,
		influenceNames: influenceNames,
		maxInfluences:  4,
	}
}

func (s *fakeSkin) NumVertices() int {
	return s.mesh.NumVertices()
}

func (s *fakeSkin) ControlPoints(vertexIndexes []int) ([]mmath.Vec3, error) {
	return s.mesh.VertexPositions(vertexIndexes)
}

func (s *fakeSkin) VertexWeights(vertexIndexes []int) (map[int]skinmath.WeightMap, error) {
	results := make(map[int]skinmath.WeightMap, len(vertexIndexes))
	for _, vertexIndex := range vertexIndexes {
		weights, exists := s.weights[vertexIndex]
		if !exists {
			weights = skinmath.WeightMap{}
		}
		results[vertexIndex] = weights.Clone()
	}
	return results, nil
}

func (s *fakeSkin) MaxInfluences() int {
	return s.maxInfluences
}

func (s *fakeSkin) InfluenceName(influenceIndex int) (string, bool) {
	if influenceIndex < 0 || influenceIndex >= len(s.influenceNames) {
		return "", false
	}
	return s.influenceNames[influenceIndex], true
}

func (s *fakeSkin) InfluenceIndexByName(name string) (int, bool) {
	for i, influenceName := range s.influenceNames {
		if influenceName == name {
			return i, true
		}
	}
	return 0, false
}

func (s *fakeSkin) ApplyVertexWeights(updates map[int]skinmath.WeightMap) error {
	s.applied = updates
	return nil
}

func (s *fakeSkin) Mesh() IMesh {
	return s.mesh
}

// newTriangleSourceSkin は単一三角形(各頂点が別インフルエンス100%)の転送元スキンを生成する。
func newTriangleSourceSkin() *fakeSkin {
	mesh := newFakeMesh(
		[]mmath.Vec3{
			newTransferTestVec3(0, 0, 0),
			newTransferTestVec3(1, 0, 0),
			newTransferTestVec3(0, 1, 0),
		},
		[][]int{{0, 1, 2}},
	)
	weights := map[int]skinmath.WeightMap{
		0: {0: 1.0},
		1: {1: 1.0},
		2: {2: 1.0},
	}
	return newFakeSkin(mesh, weights, []string{"腰", "右足", "左足"})
}

// newPointTargetSkin は面を持たない点群の転送先スキンを生成する。
func newPointTargetSkin(positions []mmath.Vec3, influenceNames []string) *fakeSkin {
	return newFakeSkin(newFakeMesh(positions, nil), map[int]skinmath.WeightMap{}, influenceNames)
}

// assertWeightNear はウェイト値の近似一致を検証する。
func assertWeightNear(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}
