// 指示: miu200521358
package skinmath

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

const (
	// weightEpsilon は有効ウェイト判定の下限を表す。
	weightEpsilon = 1e-12
)

// ErrNoWeights は合計ゼロのウェイトマップを正規化しようとした場合のエラーを表す。
var ErrNoWeights = errors.New("ウェイト合計がゼロのため正規化できません")

// WeightMap はインフルエンスindexからウェイト値への対応を表す。
type WeightMap map[int]float64

// Clone はウェイトマップの複製を返す。
func (weights WeightMap) Clone() WeightMap {
	cloned := make(WeightMap, len(weights))
	for influenceIndex, weight := range weights {
		cloned[influenceIndex] = weight
	}
	return cloned
}

// Sum はウェイト合計を返す。合算順はindex昇順で固定する。
func (weights WeightMap) Sum() float64 {
	total := 0.0
	for _, influenceIndex := range sortedInfluenceIndexes(weights) {
		total += weights[influenceIndex]
	}
	return total
}

// InfluenceCount は有効(非ゼロ)インフルエンス数を返す。
func (weights WeightMap) InfluenceCount() int {
	count := 0
	for _, weight := range weights {
		if weight > weightEpsilon {
			count++
		}
	}
	return count
}

// NormalizeWeights はウェイトマップを合計1.0へ正規化する。
// 有効インフルエンス数がmaxInfluencesを超える場合は小さい順に切り詰めてから正規化する。
// 合計がゼロの場合は ErrNoWeights を返す。
func NormalizeWeights(weights WeightMap, maxInfluences int) (WeightMap, error) {
	pruned := pruneWeights(weights, maxInfluences)
	total := pruned.Sum()
	if total <= weightEpsilon {
		return nil, ErrNoWeights
	}

	normalized := make(WeightMap, len(pruned))
	for influenceIndex, weight := range pruned {
		normalized[influenceIndex] = weight / total
	}
	return normalized, nil
}

// pruneWeights は非ゼロウェイトをmaxInfluences件まで大きい順に残す。
func pruneWeights(weights WeightMap, maxInfluences int) WeightMap {
	effective := make(WeightMap, len(weights))
	for influenceIndex, weight := range weights {
		if weight > weightEpsilon {
			effective[influenceIndex] = weight
		}
	}
	if maxInfluences < 1 || len(effective) <= maxInfluences {
		return effective
	}

	influenceIndexes := sortedInfluenceIndexes(effective)
	sort.SliceStable(influenceIndexes, func(i int, j int) bool {
		return effective[influenceIndexes[i]] > effective[influenceIndexes[j]]
	})

	pruned := make(WeightMap, maxInfluences)
	for _, influenceIndex := range influenceIndexes[:maxInfluences] {
		pruned[influenceIndex] = effective[influenceIndex]
	}
	return pruned
}

// WeightedAverage は複数ウェイトマップを係数付きで合算する。正規化は行わない。
func WeightedAverage(weightMaps []WeightMap, coefficients []float64) (WeightMap, error) {
	if len(weightMaps) != len(coefficients) {
		return nil, fmt.Errorf("ウェイトマップ数(%d)と係数数(%d)が一致しません", len(weightMaps), len(coefficients))
	}

	combined := WeightMap{}
	for i, weights := range weightMaps {
		coefficient := coefficients[i]
		if coefficient <= 0 {
			continue
		}
		for _, influenceIndex := range sortedInfluenceIndexes(weights) {
			combined[influenceIndex] += weights[influenceIndex] * coefficient
		}
	}
	return combined, nil
}

// InverseDistanceWeights は距離の逆数乗を係数としたウェイト平均を返す。
// 距離ゼロの頂点が存在する場合は、その頂点のウェイトをそのまま複製して返す。
func InverseDistanceWeights(weightMaps []WeightMap, distances []float64, power float64) (WeightMap, error) {
	if len(weightMaps) == 0 {
		return nil, fmt.Errorf("ウェイトマップが空です")
	}
	if len(weightMaps) != len(distances) {
		return nil, fmt.Errorf("ウェイトマップ数(%d)と距離数(%d)が一致しません", len(weightMaps), len(distances))
	}
	if power <= 0 {
		return nil, fmt.Errorf("距離指数は正の値が必要です: %f", power)
	}

	for i, distance := range distances {
		if distance <= weightEpsilon {
			return weightMaps[i].Clone(), nil
		}
	}

	coefficients := make([]float64, len(distances))
	for i, distance := range distances {
		coefficients[i] = 1.0 / math.Pow(distance, power)
	}
	return WeightedAverage(weightMaps, coefficients)
}

// sortedInfluenceIndexes はウェイトマップのindexを昇順配列で返す。
func sortedInfluenceIndexes(weights WeightMap) []int {
	influenceIndexes := make([]int, 0, len(weights))
	for influenceIndex := range weights {
		influenceIndexes = append(influenceIndexes, influenceIndex)
	}
	sort.Ints(influenceIndexes)
	return influenceIndexes
}
