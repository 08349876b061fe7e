// 指示: miu200521358
package wtransfer

import (
	"fmt"
	"sort"

	"github.com/miu200521358/mlib_go/pkg/domain/mmath"
	"github.com/miu200521358/mu_weight_transfer/pkg/domain/pointtree"
	"github.com/miu200521358/mu_weight_transfer/pkg/domain/skinmath"
)

// ClosestPointTransfer は最近傍の転送元頂点ウェイトをそのまま複製する転送方式を表す。
type ClosestPointTransfer struct {
	transferSource
	vertexPoints []mmath.Vec3
	pointTree    *pointtree.PointTree
}

// NewClosestPointTransfer は転送元頂点位置のkd-treeを構築して転送方式を生成する。
func NewClosestPointTransfer(sourceSkin ISkin, vertexIndexes []int) (*ClosestPointTransfer, error) {
	source, err := newTransferSource(sourceSkin, vertexIndexes)
	if err != nil {
		return nil, err
	}

	vertexPoints, err := source.skin.ControlPoints(source.vertexIndexes)
	if err != nil {
		return nil, fmt.Errorf("転送元頂点位置の取得に失敗しました: %w", err)
	}

	return &ClosestPointTransfer{
		transferSource: source,
		vertexPoints:   vertexPoints,
		pointTree:      pointtree.NewPointTree(vertexPoints),
	}, nil
}

// Method は転送方式識別子を返す。
func (t *ClosestPointTransfer) Method() Method {
	return MethodClosestPoint
}

// Transfer は転送先の各頂点へ最近傍転送元頂点のウェイトを複製する。
func (t *ClosestPointTransfer) Transfer(targetSkin ISkin, vertexIndexes []int, notify ProgressFunc) error {
	targetIndexes, err := resolveTargetVertexIndexes(targetSkin, vertexIndexes)
	if err != nil {
		return err
	}

	updates, err := closestWeightUpdates(t.skin, t.vertexIndexes, t.pointTree, targetSkin, targetIndexes, notify)
	if err != nil {
		return err
	}
	if err := t.remapAndApply(targetSkin, updates); err != nil {
		return err
	}

	logTransferInfo("最近傍点方式のウェイト転送が完了しました: 対象頂点数=%d", len(targetIndexes))
	return nil
}

// closestWeightUpdates は各転送先頂点に最近傍転送元頂点のウェイト複製を割り当てる。
// スキンラップ方式の未カバー頂点フォールバックからも利用される。
func closestWeightUpdates(
	sourceSkin ISkin,
	sourceVertexIndexes []int,
	sourceTree *pointtree.PointTree,
	targetSkin ISkin,
	targetVertexIndexes []int,
	notify ProgressFunc,
) (map[int]skinmath.WeightMap, error) {
	targetPoints, err := targetSkin.ControlPoints(targetVertexIndexes)
	if err != nil {
		return nil, fmt.Errorf("転送先頂点位置の取得に失敗しました: %w", err)
	}

	closestVertexIndexes := make([]int, len(targetPoints))
	for i, targetPoint := range targetPoints {
		localIndex, _, ok := sourceTree.Nearest(targetPoint)
		if !ok {
			return nil, fmt.Errorf("最近傍検索に失敗しました: %w", ErrEmptySourceSet)
		}
		closestVertexIndexes[i] = sourceVertexIndexes[localIndex]
	}

	weightsByVertex, err := sourceSkin.VertexWeights(uniqueSortedInts(closestVertexIndexes))
	if err != nil {
		return nil, fmt.Errorf("転送元ウェイトの取得に失敗しました: %w", err)
	}

	updates := make(map[int]skinmath.WeightMap, len(targetVertexIndexes))
	for i, targetIndex := range targetVertexIndexes {
		weights, exists := weightsByVertex[closestVertexIndexes[i]]
		if !exists {
			return nil, fmt.Errorf("転送元頂点%dのウェイトを取得できません", closestVertexIndexes[i])
		}
		updates[targetIndex] = weights.Clone()
		notifyProgress(notify, i+1, len(targetVertexIndexes), 0, 100)
	}
	return updates, nil
}

// uniqueSortedInts は重複を除いた昇順配列を返す。
func uniqueSortedInts(values []int) []int {
	seen := map[int]struct{}{}
	unique := make([]int, 0, len(values))
	for _, value := range values {
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		unique = append(unique, value)
	}
	sort.Ints(unique)
	return unique
}
