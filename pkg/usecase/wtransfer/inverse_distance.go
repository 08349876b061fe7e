// 指示: miu200521358
package wtransfer

import (
	"fmt"

	"github.com/miu200521358/mlib_go/pkg/domain/mmath"
	"github.com/miu200521358/mu_weight_transfer/pkg/domain/skinmath"
)

// InverseDistanceTransfer は全転送元頂点の距離逆数加重平均でウェイトを合成する転送方式を表す。
// 全転送元頂点が毎回平均へ参加するため空間indexは使わない。計算量はO(転送先頂点数×転送元頂点数)。
type InverseDistanceTransfer struct {
	transferSource
	vertexPoints  []mmath.Vec3
	vertexWeights []skinmath.WeightMap
	power         float64
}

// NewInverseDistanceTransfer は転送元頂点位置とウェイトをキャッシュして転送方式を生成する。
// powerは正の値が必要で、既定は2.0。
func NewInverseDistanceTransfer(sourceSkin ISkin, vertexIndexes []int, power float64) (*InverseDistanceTransfer, error) {
	if power <= 0 {
		return nil, fmt.Errorf("距離指数は正の値が必要です: %f: %w", power, ErrInvalidOption)
	}

	source, err := newTransferSource(sourceSkin, vertexIndexes)
	if err != nil {
		return nil, err
	}

	vertexPoints, err := source.skin.ControlPoints(source.vertexIndexes)
	if err != nil {
		return nil, fmt.Errorf("転送元頂点位置の取得に失敗しました: %w", err)
	}
	weightsByVertex, err := source.skin.VertexWeights(source.vertexIndexes)
	if err != nil {
		return nil, fmt.Errorf("転送元ウェイトの取得に失敗しました: %w", err)
	}

	vertexWeights := make([]skinmath.WeightMap, len(source.vertexIndexes))
	for i, vertexIndex := range source.vertexIndexes {
		weights, exists := weightsByVertex[vertexIndex]
		if !exists {
			return nil, fmt.Errorf("転送元頂点%dのウェイトを取得できません", vertexIndex)
		}
		vertexWeights[i] = weights
	}

	return &InverseDistanceTransfer{
		transferSource: source,
		vertexPoints:   vertexPoints,
		vertexWeights:  vertexWeights,
		power:          power,
	}, nil
}

// Method は転送方式識別子を返す。
func (t *InverseDistanceTransfer) Method() Method {
	return MethodInverseDistance
}

// Power は距離指数を返す。
func (t *InverseDistanceTransfer) Power() float64 {
	return t.power
}

// Transfer は転送先の各頂点へ距離逆数加重平均ウェイトを割り当てる。
func (t *InverseDistanceTransfer) Transfer(targetSkin ISkin, vertexIndexes []int, notify ProgressFunc) error {
	targetIndexes, err := resolveTargetVertexIndexes(targetSkin, vertexIndexes)
	if err != nil {
		return err
	}
	targetPoints, err := targetSkin.ControlPoints(targetIndexes)
	if err != nil {
		return fmt.Errorf("転送先頂点位置の取得に失敗しました: %w", err)
	}

	maxInfluences := targetSkin.MaxInfluences()
	distances := make([]float64, len(t.vertexPoints))
	updates := make(map[int]skinmath.WeightMap, len(targetIndexes))

	for i, targetIndex := range targetIndexes {
		targetPoint := targetPoints[i]
		for j, vertexPoint := range t.vertexPoints {
			distances[j] = targetPoint.Distance(vertexPoint)
		}

		combined, err := skinmath.InverseDistanceWeights(t.vertexWeights, distances, t.power)
		if err != nil {
			return fmt.Errorf("頂点%dの距離逆数加重に失敗しました: %w", targetIndex, err)
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

	logTransferInfo("距離逆数加重方式のウェイト転送が完了しました: 対象頂点数=%d", len(targetIndexes))
	return nil
}
