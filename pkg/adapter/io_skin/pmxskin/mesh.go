// 指示: miu200521358
package pmxskin

import (
	"fmt"
	"math"
	"sort"

	"github.com/miu200521358/mlib_go/pkg/domain/mmath"
	"github.com/miu200521358/mlib_go/pkg/domain/model"
	"github.com/miu200521358/mu_weight_transfer/pkg/domain/surface"
	"github.com/miu200521358/mu_weight_transfer/pkg/usecase/wtransfer"
)

// faceVertexCount はPMX面の頂点数を表す。PMXの面は常に三角形。
const faceVertexCount = 3

// MeshAccessor はPMXモデルの形状を wtransfer.IMesh として公開する。
// 頂点-面-辺の接続情報は生成時に1度だけ構築し、以後モデルの面構成は不変である前提。
type MeshAccessor struct {
	modelData   *model.PmxModel
	vertexFaces map[int][]int
	edges       [][2]int
	faceEdges   [][]int
}

var _ wtransfer.IMesh = (*MeshAccessor)(nil)

// NewMeshAccessor はPMXモデルから接続情報を構築してメッシュアクセサを生成する。
func NewMeshAccessor(modelData *model.PmxModel) (*MeshAccessor, error) {
	if modelData == nil {
		return nil, fmt.Errorf("PMXモデルが未設定です")
	}

	accessor := &MeshAccessor{
		modelData:   modelData,
		vertexFaces: map[int][]int{},
		faceEdges:   make([][]int, modelData.Faces.Len()),
	}

	edgeIndexes := map[[2]int]int{}
	for faceIndex := 0; faceIndex < modelData.Faces.Len(); faceIndex++ {
		face, err := modelData.Faces.Get(faceIndex)
		if err != nil || face == nil {
			return nil, fmt.Errorf("面%dを取得できません: %w", faceIndex, err)
		}
		for i := 0; i < faceVertexCount; i++ {
			vertexIndex := face.VertexIndexes[i]
			accessor.vertexFaces[vertexIndex] = append(accessor.vertexFaces[vertexIndex], faceIndex)

			nextIndex := face.VertexIndexes[(i+1)%faceVertexCount]
			key := [2]int{vertexIndex, nextIndex}
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			edgeIndex, exists := edgeIndexes[key]
			if !exists {
				edgeIndex = len(accessor.edges)
				edgeIndexes[key] = edgeIndex
				accessor.edges = append(accessor.edges, key)
			}
			accessor.faceEdges[faceIndex] = append(accessor.faceEdges[faceIndex], edgeIndex)
		}
	}

	return accessor, nil
}

// NumVertices は頂点数を返す。
func (m *MeshAccessor) NumVertices() int {
	return m.modelData.Vertices.Len()
}

// VertexPositions は指定頂点のワールド座標を返す。nilは全頂点を表す。
func (m *MeshAccessor) VertexPositions(vertexIndexes []int) ([]mmath.Vec3, error) {
	if vertexIndexes == nil {
		vertexIndexes = make([]int, m.modelData.Vertices.Len())
		for i := range vertexIndexes {
			vertexIndexes[i] = i
		}
	}

	positions := make([]mmath.Vec3, len(vertexIndexes))
	for i, vertexIndex := range vertexIndexes {
		vertex, err := m.modelData.Vertices.Get(vertexIndex)
		if err != nil || vertex == nil {
			return nil, fmt.Errorf("頂点%dを取得できません: %w", vertexIndex, err)
		}
		positions[i] = vertex.Position
	}
	return positions, nil
}

// ConnectedFacesByVertex は頂点に接続する面indexを返す。
func (m *MeshAccessor) ConnectedFacesByVertex(vertexIndex int) []int {
	return append([]int{}, m.vertexFaces[vertexIndex]...)
}

// ConnectedFacesByFaces は面集合と頂点を共有する面indexを昇順で返す。入力面自身も含む。
func (m *MeshAccessor) ConnectedFacesByFaces(faceIndexes []int) []int {
	connected := map[int]struct{}{}
	for _, faceIndex := range faceIndexes {
		face, err := m.modelData.Faces.Get(faceIndex)
		if err != nil || face == nil {
			continue
		}
		for _, vertexIndex := range face.VertexIndexes {
			for _, neighborIndex := range m.vertexFaces[vertexIndex] {
				connected[neighborIndex] = struct{}{}
			}
		}
	}
	return sortedKeys(connected)
}

// ConnectedEdgesByFaces は面集合を構成する辺indexを昇順で返す。
func (m *MeshAccessor) ConnectedEdgesByFaces(faceIndexes []int) []int {
	connected := map[int]struct{}{}
	for _, faceIndex := range faceIndexes {
		if faceIndex < 0 || faceIndex >= len(m.faceEdges) {
			continue
		}
		for _, edgeIndex := range m.faceEdges[faceIndex] {
			connected[edgeIndex] = struct{}{}
		}
	}
	return sortedKeys(connected)
}

// ConnectedVerticesByFaces は面集合を構成する頂点indexを昇順で返す。
func (m *MeshAccessor) ConnectedVerticesByFaces(faceIndexes []int) []int {
	connected := map[int]struct{}{}
	for _, faceIndex := range faceIndexes {
		face, err := m.modelData.Faces.Get(faceIndex)
		if err != nil || face == nil {
			continue
		}
		for _, vertexIndex := range face.VertexIndexes {
			connected[vertexIndex] = struct{}{}
		}
	}
	return sortedKeys(connected)
}

// EdgeVertexIndexes は辺の両端頂点indexを返す。
func (m *MeshAccessor) EdgeVertexIndexes(edgeIndex int) (int, int, error) {
	if edgeIndex < 0 || edgeIndex >= len(m.edges) {
		return 0, 0, fmt.Errorf("辺indexが範囲外です: %d (辺数=%d)", edgeIndex, len(m.edges))
	}
	return m.edges[edgeIndex][0], m.edges[edgeIndex][1], nil
}

// FaceVertexIndexes は面の頂点indexを返す。
func (m *MeshAccessor) FaceVertexIndexes(faceIndex int) []int {
	face, err := m.modelData.Faces.Get(faceIndex)
	if err != nil || face == nil {
		return nil
	}
	return []int{face.VertexIndexes[0], face.VertexIndexes[1], face.VertexIndexes[2]}
}

// ClosestPointOnSurface は各点に最も近い面上の点を面集合の範囲で求める。
// nilの面集合は全面を表す。ヒットの補間座標は重心座標で返す。
func (m *MeshAccessor) ClosestPointOnSurface(points []mmath.Vec3, faceIndexes []int) ([]wtransfer.SurfaceHit, error) {
	if faceIndexes == nil {
		faceIndexes = make([]int, m.modelData.Faces.Len())
		for i := range faceIndexes {
			faceIndexes[i] = i
		}
	}
	if len(faceIndexes) == 0 {
		return nil, fmt.Errorf("面集合が空です")
	}

	type facePositions struct {
		faceIndex     int
		vertexIndexes [3]int
		positions     [3]mmath.Vec3
	}
	candidates := make([]facePositions, 0, len(faceIndexes))
	for _, faceIndex := range faceIndexes {
		face, err := m.modelData.Faces.Get(faceIndex)
		if err != nil || face == nil {
			return nil, fmt.Errorf("面%dを取得できません: %w", faceIndex, err)
		}
		candidate := facePositions{faceIndex: faceIndex, vertexIndexes: face.VertexIndexes}
		for i, vertexIndex := range face.VertexIndexes {
			vertex, err := m.modelData.Vertices.Get(vertexIndex)
			if err != nil || vertex == nil {
				return nil, fmt.Errorf("面%dの頂点%dを取得できません: %w", faceIndex, vertexIndex, err)
			}
			candidate.positions[i] = vertex.Position
		}
		candidates = append(candidates, candidate)
	}

	hits := make([]wtransfer.SurfaceHit, len(points))
	for i, point := range points {
		bestDistance := math.Inf(1)
		for _, candidate := range candidates {
			closest, coords := surface.ClosestPointOnTriangle(
				point, candidate.positions[0], candidate.positions[1], candidate.positions[2])
			distance := point.Distance(closest)
			if distance >= bestDistance {
				continue
			}
			bestDistance = distance
			hits[i] = wtransfer.SurfaceHit{
				FaceIndex:   candidate.faceIndex,
				Point:       closest,
				Coordinates: []float64{coords[0], coords[1], coords[2]},
				VertexIndexes: []int{
					candidate.vertexIndexes[0], candidate.vertexIndexes[1], candidate.vertexIndexes[2]},
			}
		}
	}
	return hits, nil
}

// sortedKeys は集合を昇順index配列へ変換する。
func sortedKeys(set map[int]struct{}) []int {
	keys := make([]int, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Ints(keys)
	return keys
}
