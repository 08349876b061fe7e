// 指示: miu200521358
package wtransfer

import (
	"fmt"

	"github.com/miu200521358/mu_weight_transfer/pkg/domain/skinmath"
)

// buildInfluenceMap は転送元インフルエンスindexを名前一致で転送先indexへ対応付ける。
// 名前一致しないインフルエンスが1件でもあれば ErrMissingInfluence で中断する。
func buildInfluenceMap(sourceSkin ISkin, targetSkin ISkin, influenceIndexes []int) (skinmath.InfluenceMap, error) {
	if sourceSkin == nil || targetSkin == nil {
		return nil, fmt.Errorf("インフルエンス対応の構築にはスキンが必要です")
	}

	influenceMap := make(skinmath.InfluenceMap, len(influenceIndexes))
	for _, influenceIndex := range influenceIndexes {
		name, ok := sourceSkin.InfluenceName(influenceIndex)
		if !ok {
			return nil, fmt.Errorf("転送元インフルエンス%dの名前を解決できません: %w", influenceIndex, ErrMissingInfluence)
		}
		targetIndex, ok := targetSkin.InfluenceIndexByName(name)
		if !ok {
			return nil, fmt.Errorf("転送先にインフルエンス「%s」が存在しません: %w", name, ErrMissingInfluence)
		}
		influenceMap[influenceIndex] = targetIndex
	}
	return influenceMap, nil
}
