// 指示: miu200521358
package wtransfer

import (
	"fmt"

	"github.com/miu200521358/mu_weight_transfer/pkg/domain/skinmath"
)

const (
	// pointOnSurfaceTriangleVertexCount は重心座標補間対象の頂点数を表す。
	pointOnSurfaceTriangleVertexCount = 3
	// pointOnSurfaceQuadVertexCount は双線形補間対象の頂点数を表す。
	pointOnSurfaceQuadVertexCount = 4
	// pointOnSurfaceFallbackPower は多角形フォールバックの距離指数を表す。
	pointOnSurfaceFallbackPower = 2.0
)

// PointOnSurfaceTransfer は転送元サーフェス上の最近点で補間する転送方式を表す。
type PointOnSurfaceTransfer struct {
	transferSource
	faceIndexes []int
}

// NewPointOnSurfaceTransfer は転送元頂点に接続する面集合をキャッシュして転送方式を生成する。
// 面集合は転送元のみに依存するため生成時に1度だけ求める。
func NewPointOnSurfaceTransfer(sourceSkin ISkin, vertexIndexes []int) (*PointOnSurfaceTransfer, error) {
	source, err := newTransferSource(sourceSkin, vertexIndexes)
	if err != nil {
		return nil, err
	}

	connected := make([]int, 0)
	for _, vertexIndex := range source.vertexIndexes {
		connected = append(connected, source.mesh.ConnectedFacesByVertex(vertexIndex)...)
	}
	faceIndexes := uniqueSortedInts(connected)
	if len(faceIndexes) == 0 {
		return nil, fmt.Errorf("転送元頂点に接続面がありません: %w", ErrUnsupportedTopology)
	}

	return &PointOnSurfaceTransfer{
		transferSource: source,
		faceIndexes:    faceIndexes,
	}, nil
}

// Method は転送方式識別子を返す。
func (t *PointOnSurfaceTransfer) Method() Method {
	return MethodPointOnSurface
}

// FaceIndexes はキャッシュ済みの転送元面集合を返す。
func (t *PointOnSurfaceTransfer) FaceIndexes() []int {
	return t.faceIndexes
}

// Transfer は転送先の各頂点を転送元サーフェスへ射影し、ヒット面の頂点ウェイトを補間する。
// 3頂点面は重心座標、4頂点面は双線形座標、それ以外は面内頂点の距離逆数加重で補間する。
func (t *PointOnSurfaceTransfer) Transfer(targetSkin ISkin, vertexIndexes []int, notify ProgressFunc) error {
	targetIndexes, err := resolveTargetVertexIndexes(targetSkin, vertexIndexes)
	if err != nil {
		return err
	}
	targetPoints, err := targetSkin.ControlPoints(targetIndexes)
	if err != nil {
		return fmt.Errorf("転送先頂点位置の取得に失敗しました: %w", err)
	}

	hits, err := t.mesh.ClosestPointOnSurface(targetPoints, t.faceIndexes)
	if err != nil {
		return fmt.Errorf("面上最近点クエリに失敗しました: %w", err)
	}
	if len(hits) != len(targetIndexes) {
		return fmt.Errorf("面上最近点クエリの結果数が一致しません: got=%d want=%d", len(hits), len(targetIndexes))
	}

	weightsByVertex, err := t.skin.VertexWeights(collectHitVertexIndexes(hits))
	if err != nil {
		return fmt.Errorf("転送元ウェイトの取得に失敗しました: %w", err)
	}

	maxInfluences := targetSkin.MaxInfluences()
	updates := make(map[int]skinmath.WeightMap, len(targetIndexes))

	for i, targetIndex := range targetIndexes {
		combined, err := t.interpolateHit(hits[i], weightsByVertex)
		if err != nil {
			return fmt.Errorf("頂点%dの補間に失敗しました: %w", targetIndex, err)
		}
		normalized, err := skinmath.NormalizeWeights(combined, maxInfluences)
		if err != nil {
			return fmt.Errorf("頂点%dのウェイト正規化に失敗しました: %w", targetIndex, err)
		}

		updates[targetIndex] = normalized
		notifyProgress(notify, i+1, len(targetIndexes), 0, 100)
	}

	if err := t.remapAndApply(targetSkin, updates); err != nil {
		return err
	}

	logTransferInfo("面上最近点方式のウェイト転送が完了しました: 対象頂点数=%d", len(targetIndexes))
	return nil
}

// interpolateHit はヒット面の頂点数に応じた補間でウェイトマップを合成する。
func (t *PointOnSurfaceTransfer) interpolateHit(hit SurfaceHit, weightsByVertex map[int]skinmath.WeightMap) (skinmath.WeightMap, error) {
	numFaceVertices := len(hit.VertexIndexes)
	if numFaceVertices == 0 {
		return nil, fmt.Errorf("ヒット面%dに頂点がありません: %w", hit.FaceIndex, ErrUnsupportedTopology)
	}

	weightMaps := make([]skinmath.WeightMap, numFaceVertices)
	for i, vertexIndex := range hit.VertexIndexes {
		weights, exists := weightsByVertex[vertexIndex]
		if !exists {
			return nil, fmt.Errorf("ヒット面%dの頂点%dのウェイトを取得できません", hit.FaceIndex, vertexIndex)
		}
		weightMaps[i] = weights
	}

	switch numFaceVertices {
	case pointOnSurfaceTriangleVertexCount, pointOnSurfaceQuadVertexCount:
		if len(hit.Coordinates) != numFaceVertices {
			return nil, fmt.Errorf("ヒット面%dの補間座標数が不正です: got=%d want=%d: %w",
				hit.FaceIndex, len(hit.Coordinates), numFaceVertices, ErrUnsupportedTopology)
		}
		return skinmath.WeightedAverage(weightMaps, hit.Coordinates)
	default:
		// 多角形は重心/双線形補間できないため、ヒット点から各面頂点への距離逆数加重で代替する。
		positions, err := t.mesh.VertexPositions(hit.VertexIndexes)
		if err != nil {
			return nil, fmt.Errorf("ヒット面%dの頂点位置を取得できません: %w", hit.FaceIndex, err)
		}
		distances := make([]float64, len(positions))
		for i, position := range positions {
			distances[i] = hit.Point.Distance(position)
		}
		return skinmath.InverseDistanceWeights(weightMaps, distances, pointOnSurfaceFallbackPower)
	}
}

// collectHitVertexIndexes は全ヒット面の頂点indexを重複なく昇順で返す。
func collectHitVertexIndexes(hits []SurfaceHit) []int {
	collected := make([]int, 0, len(hits)*pointOnSurfaceQuadVertexCount)
	for _, hit := range hits {
		collected = append(collected, hit.VertexIndexes...)
	}
	return uniqueSortedInts(collected)
}
