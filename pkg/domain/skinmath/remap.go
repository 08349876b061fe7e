// 指示: miu200521358
package skinmath

import (
	"fmt"
	"sort"
)

// InfluenceMap は転送元インフルエンスindexから転送先indexへの対応を表す。
type InfluenceMap map[int]int

// RemapWeights はウェイトマップのindexをInfluenceMapで書き換える。
// 書き換え後に同一indexへ衝突したウェイトは合算する。
func RemapWeights(weights WeightMap, influenceMap InfluenceMap) (WeightMap, error) {
	remapped := make(WeightMap, len(weights))
	for _, influenceIndex := range sortedInfluenceIndexes(weights) {
		targetIndex, ok := influenceMap[influenceIndex]
		if !ok {
			return nil, fmt.Errorf("インフルエンス対応が未解決です: %d", influenceIndex)
		}
		remapped[targetIndex] += weights[influenceIndex]
	}
	return remapped, nil
}

// RemapAllWeights は頂点index単位の更新集合全体をInfluenceMapで書き換える。
func RemapAllWeights(updates map[int]WeightMap, influenceMap InfluenceMap) (map[int]WeightMap, error) {
	remappedUpdates := make(map[int]WeightMap, len(updates))
	for vertexIndex, weights := range updates {
		remapped, err := RemapWeights(weights, influenceMap)
		if err != nil {
			return nil, fmt.Errorf("頂点%dのウェイト書き換えに失敗しました: %w", vertexIndex, err)
		}
		remappedUpdates[vertexIndex] = remapped
	}
	return remappedUpdates, nil
}

// ReferencedInfluenceIndexes は更新集合が参照する全インフルエンスindexを昇順で返す。
func ReferencedInfluenceIndexes(updates map[int]WeightMap) []int {
	referenced := map[int]struct{}{}
	for _, weights := range updates {
		for influenceIndex := range weights {
			referenced[influenceIndex] = struct{}{}
		}
	}
	indexes := make([]int, 0, len(referenced))
	for influenceIndex := range referenced {
		indexes = append(indexes, influenceIndex)
	}
	sort.Ints(indexes)
	return indexes
}
