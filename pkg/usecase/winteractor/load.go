// 指示: miu200521358
package winteractor

import (
	"fmt"

	"github.com/miu200521358/mlib_go/pkg/usecase"
	"github.com/miu200521358/mu_weight_transfer/pkg/usecase/port/moutput"
)

// LoadModel はPMXモデルを読み込む。
func (uc *WeightTransferUsecase) LoadModel(rep moutput.IFileReader, path string) (*ModelData, error) {
	repo := rep
	if repo == nil {
		repo = uc.modelReader
	}
	if repo == nil {
		return nil, fmt.Errorf("モデル読み込みリポジトリが設定されていません")
	}
	return usecase.LoadModel(repo, path)
}

// resolveModelData は転送対象モデルを解決する。設定済みモデルを優先し、なければパスから読み込む。
func (uc *WeightTransferUsecase) resolveModelData(
	rep moutput.IFileReader,
	path string,
	modelData *ModelData,
	role string,
) (*ModelData, error) {
	resolved := modelData
	if resolved == nil {
		loaded, err := uc.LoadModel(rep, path)
		if err != nil {
			return nil, fmt.Errorf("%sモデルの読み込みに失敗しました: %w", role, err)
		}
		resolved = loaded
	}
	if resolved == nil {
		return nil, fmt.Errorf("%sモデルの読み込み結果が空です", role)
	}
	if resolved.Vertices == nil || resolved.Vertices.Len() == 0 {
		return nil, fmt.Errorf("%sモデルに頂点がありません", role)
	}
	if resolved.Bones == nil || resolved.Bones.Len() == 0 {
		return nil, fmt.Errorf("%sモデルにボーンがありません", role)
	}
	return resolved, nil
}
