// 指示: miu200521358
package wtransfer

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/miu200521358/mlib_go/pkg/domain/mmath"
	"github.com/miu200521358/mu_weight_transfer/pkg/domain/pointtree"
	"github.com/miu200521358/mu_weight_transfer/pkg/domain/skinmath"
)

const (
	// skinWrapSetupProgressSpan は設定フェーズの進捗帯域(0-50%)を表す。
	skinWrapSetupProgressSpan = 50
	// skinWrapAccumulateProgressBase は累積フェーズの進捗起点(50%)を表す。
	skinWrapAccumulateProgressBase = 50
)

// controlPoint は転送元頂点1つ分の影響球と対象転送先頂点を表す。
// 設定フェーズで生成された後は不変で、Transfer呼び出し終了時に破棄される。
type controlPoint struct {
	sourceVertexIndex   int
	point               mmath.Vec3
	radius              float64
	targetVertexIndexes []int
	falloffWeights      []float64
}

// SkinWrapTransfer は転送元頂点の影響球で転送先へウェイトを散布する転送方式を表す。
// 転送先1頂点へ複数の影響球が届いた場合は全寄与を加算合成するため、滑らかな結果になる。
type SkinWrapTransfer struct {
	transferSource
	falloff           float64
	distanceInfluence float64
	faceLimit         int
	sourcePoints      []mmath.Vec3
	sourceWeights     map[int]skinmath.WeightMap
	sourceTree        *pointtree.PointTree
}

// NewSkinWrapTransfer は転送元キャッシュを構築してスキンラップ転送方式を生成する。
// falloffは0以上、distanceInfluenceは正の値、faceLimitは1以上が必要。
func NewSkinWrapTransfer(
	sourceSkin ISkin,
	vertexIndexes []int,
	falloff float64,
	distanceInfluence float64,
	faceLimit int,
) (*SkinWrapTransfer, error) {
	if falloff < 0 {
		return nil, fmt.Errorf("減衰係数は0以上が必要です: %f: %w", falloff, ErrInvalidOption)
	}
	if distanceInfluence <= 0 {
		return nil, fmt.Errorf("影響半径倍率は正の値が必要です: %f: %w", distanceInfluence, ErrInvalidOption)
	}
	if faceLimit < 1 {
		return nil, fmt.Errorf("近傍面リング数は1以上が必要です: %d: %w", faceLimit, ErrInvalidOption)
	}

	source, err := newTransferSource(sourceSkin, vertexIndexes)
	if err != nil {
		return nil, err
	}

	sourcePoints, err := source.skin.ControlPoints(source.vertexIndexes)
	if err != nil {
		return nil, fmt.Errorf("転送元頂点位置の取得に失敗しました: %w", err)
	}
	sourceWeights, err := source.skin.VertexWeights(source.vertexIndexes)
	if err != nil {
		return nil, fmt.Errorf("転送元ウェイトの取得に失敗しました: %w", err)
	}

	return &SkinWrapTransfer{
		transferSource:    source,
		falloff:           falloff,
		distanceInfluence: distanceInfluence,
		faceLimit:         faceLimit,
		sourcePoints:      sourcePoints,
		sourceWeights:     sourceWeights,
		sourceTree:        pointtree.NewPointTree(sourcePoints),
	}, nil
}

// Method は転送方式識別子を返す。
func (t *SkinWrapTransfer) Method() Method {
	return MethodSkinWrap
}

// computeFalloffWeight は距離と半径から減衰ウェイトを計算する。
// 曲線は(0,1)と(radius,0)を通り、falloffが大きいほど中心寄りに減衰する。
// falloff=0のとき線形になる。
func (t *SkinWrapTransfer) computeFalloffWeight(distance float64, radius float64) float64 {
	if radius <= 0 || distance < 0 || distance > radius {
		return 0.0
	}
	weight := distance / radius
	return 1.0 - weight/((math.Pow(2.0, -t.falloff)-1.0)*(1.0-weight)+1.0)
}

// estimateInfluenceRadius は転送元頂点周辺の面リングから局所辺長平均を求め、影響半径を返す。
// リング成長はトポロジのみに依存し、メッシュ密度の高い領域ほど半径が小さくなる。
func (t *SkinWrapTransfer) estimateInfluenceRadius(vertexIndex int) (float64, error) {
	faceSet := map[int]struct{}{}
	for _, faceIndex := range t.mesh.ConnectedFacesByVertex(vertexIndex) {
		faceSet[faceIndex] = struct{}{}
	}
	for ring := 1; ring < t.faceLimit; ring++ {
		for _, faceIndex := range t.mesh.ConnectedFacesByFaces(sortedFaceIndexes(faceSet)) {
			faceSet[faceIndex] = struct{}{}
		}
	}

	edgeIndexes := t.mesh.ConnectedEdgesByFaces(sortedFaceIndexes(faceSet))
	if len(edgeIndexes) == 0 {
		return 0.0, nil
	}

	totalLength := 0.0
	for _, edgeIndex := range edgeIndexes {
		startIndex, endIndex, err := t.mesh.EdgeVertexIndexes(edgeIndex)
		if err != nil {
			return 0, fmt.Errorf("辺%dの頂点解決に失敗しました: %w", edgeIndex, err)
		}
		positions, err := t.mesh.VertexPositions([]int{startIndex, endIndex})
		if err != nil {
			return 0, fmt.Errorf("辺%dの頂点位置取得に失敗しました: %w", edgeIndex, err)
		}
		totalLength += positions[0].Distance(positions[1])
	}

	return (totalLength / float64(len(edgeIndexes))) * t.distanceInfluence, nil
}

// initializeControlPoint は転送元頂点1つ分の影響球と対象転送先頂点を確定する。
func (t *SkinWrapTransfer) initializeControlPoint(
	localIndex int,
	targetTree *pointtree.PointTree,
	targetPoints []mmath.Vec3,
	targetIndexes []int,
) (controlPoint, error) {
	vertexIndex := t.vertexIndexes[localIndex]
	vertexPoint := t.sourcePoints[localIndex]

	radius, err := t.estimateInfluenceRadius(vertexIndex)
	if err != nil {
		return controlPoint{}, err
	}

	localHits := targetTree.BallQuery(vertexPoint, radius)
	targetVertexIndexes := make([]int, len(localHits))
	falloffWeights := make([]float64, len(localHits))
	for i, localHit := range localHits {
		targetVertexIndexes[i] = targetIndexes[localHit]
		falloffWeights[i] = t.computeFalloffWeight(vertexPoint.Distance(targetPoints[localHit]), radius)
	}

	return controlPoint{
		sourceVertexIndex:   vertexIndex,
		point:               vertexPoint,
		radius:              radius,
		targetVertexIndexes: targetVertexIndexes,
		falloffWeights:      falloffWeights,
	}, nil
}

// Transfer は全転送元頂点の影響球で転送先ウェイトを累積し、未カバー頂点を最近傍で補完する。
// 進捗は設定フェーズで0-50%、累積フェーズで50-100%を通知する。
func (t *SkinWrapTransfer) Transfer(targetSkin ISkin, vertexIndexes []int, notify ProgressFunc) error {
	targetIndexes, err := resolveTargetVertexIndexes(targetSkin, vertexIndexes)
	if err != nil {
		return err
	}
	targetPoints, err := targetSkin.ControlPoints(targetIndexes)
	if err != nil {
		return fmt.Errorf("転送先頂点位置の取得に失敗しました: %w", err)
	}
	targetTree := pointtree.NewPointTree(targetPoints)

	// 設定フェーズ: 転送元頂点ごとに影響球を確定する
	controlPoints := make([]controlPoint, len(t.vertexIndexes))
	for i := range t.vertexIndexes {
		cp, err := t.initializeControlPoint(i, targetTree, targetPoints, targetIndexes)
		if err != nil {
			return err
		}
		controlPoints[i] = cp
		notifyProgress(notify, i+1, len(controlPoints), 0, skinWrapSetupProgressSpan)
	}

	// 累積フェーズ: 影響球内の転送先頂点へ減衰ウェイト×インフルエンスウェイトを加算する
	accumulated := map[int]skinmath.WeightMap{}
	for i, cp := range controlPoints {
		sourceWeights, exists := t.sourceWeights[cp.sourceVertexIndex]
		if !exists {
			return fmt.Errorf("転送元頂点%dのウェイトを取得できません", cp.sourceVertexIndex)
		}
		for pairIndex, targetVertexIndex := range cp.targetVertexIndexes {
			falloffWeight := cp.falloffWeights[pairIndex]
			if falloffWeight <= 0 {
				continue
			}
			weights, exists := accumulated[targetVertexIndex]
			if !exists {
				weights = skinmath.WeightMap{}
				accumulated[targetVertexIndex] = weights
			}
			for influenceIndex, influenceWeight := range sourceWeights {
				weights[influenceIndex] += influenceWeight * falloffWeight
			}
		}
		notifyProgress(notify, i+1, len(controlPoints), skinWrapAccumulateProgressBase, skinWrapSetupProgressSpan)
	}

	// 正規化: 合計ゼロの頂点は未カバー扱いにして後段のフォールバックへ回す
	maxInfluences := targetSkin.MaxInfluences()
	updates := make(map[int]skinmath.WeightMap, len(targetIndexes))
	for _, targetIndex := range targetIndexes {
		weights, exists := accumulated[targetIndex]
		if !exists {
			continue
		}
		normalized, err := skinmath.NormalizeWeights(weights, maxInfluences)
		if err != nil {
			if errors.Is(err, skinmath.ErrNoWeights) {
				continue
			}
			return fmt.Errorf("頂点%dのウェイト正規化に失敗しました: %w", targetIndex, err)
		}
		updates[targetIndex] = normalized
	}

	// どの影響球にも入らなかった転送先頂点は最近傍転送元頂点のウェイト複製で補完する
	missingIndexes := make([]int, 0)
	for _, targetIndex := range targetIndexes {
		if _, exists := updates[targetIndex]; !exists {
			missingIndexes = append(missingIndexes, targetIndex)
		}
	}
	if len(missingIndexes) > 0 {
		fallbackUpdates, err := closestWeightUpdates(t.skin, t.vertexIndexes, t.sourceTree, targetSkin, missingIndexes, nil)
		if err != nil {
			return fmt.Errorf("未カバー頂点の最近傍補完に失敗しました: %w", err)
		}
		for targetIndex, weights := range fallbackUpdates {
			updates[targetIndex] = weights
		}
	}

	if err := t.remapAndApply(targetSkin, updates); err != nil {
		return err
	}

	logTransferInfo("スキンラップ方式のウェイト転送が完了しました: 対象頂点数=%d 未カバー補完数=%d", len(targetIndexes), len(missingIndexes))
	return nil
}

// sortedFaceIndexes は面集合を昇順index配列へ変換する。
func sortedFaceIndexes(faceSet map[int]struct{}) []int {
	faceIndexes := make([]int, 0, len(faceSet))
	for faceIndex := range faceSet {
		faceIndexes = append(faceIndexes, faceIndex)
	}
	sort.Ints(faceIndexes)
	return faceIndexes
}
