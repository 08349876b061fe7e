// 指示: miu200521358
package winteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_weight_transfer/pkg/adapter/io_skin/pmxskin"
	"github.com/miu200521358/mu_weight_transfer/pkg/usecase/wtransfer"
)

// PrepareTransfer は転送元と転送先を読み込み、ウェイト転送を適用した転送先モデルを返す。
// PMX本体ファイルは保存しない。
func (uc *WeightTransferUsecase) PrepareTransfer(request TransferRequest) (*TransferResult, error) {
	if request.SourceModel == nil && strings.TrimSpace(request.SourcePath) == "" {
		return nil, fmt.Errorf("転送元PMXパスが未指定です")
	}
	if request.TargetModel == nil && strings.TrimSpace(request.TargetPath) == "" {
		return nil, fmt.Errorf("転送先PMXパスが未指定です")
	}

	outputPath, err := resolvePmxOutputPath(request.TargetPath, request.OutputPath)
	if err != nil {
		return nil, err
	}

	sourceModel, err := uc.resolveModelData(request.Reader, request.SourcePath, request.SourceModel, "転送元")
	if err != nil {
		return nil, err
	}
	targetModel, err := uc.resolveModelData(request.Reader, request.TargetPath, request.TargetModel, "転送先")
	if err != nil {
		return nil, err
	}

	sourceSkin, err := pmxskin.NewSkinAccessor(sourceModel)
	if err != nil {
		return nil, fmt.Errorf("転送元スキンの構築に失敗しました: %w", err)
	}
	targetSkin, err := pmxskin.NewSkinAccessor(targetModel)
	if err != nil {
		return nil, fmt.Errorf("転送先スキンの構築に失敗しました: %w", err)
	}

	transfer, err := wtransfer.NewTransfer(request.Method, sourceSkin, request.SourceVertexIndexes, request.Options)
	if err != nil {
		return nil, err
	}
	if err := transfer.Transfer(targetSkin, request.TargetVertexIndexes, request.Progress); err != nil {
		return nil, err
	}

	// プレビュー時に相対テクスチャを解決できるよう、保存先候補をモデルパスへ反映する。
	targetModel.SetPath(outputPath)

	return &TransferResult{Model: targetModel, OutputPath: outputPath}, nil
}

// Transfer はウェイト転送を適用し、転送先モデルをPMXとして保存する。
func (uc *WeightTransferUsecase) Transfer(request TransferRequest) (*TransferResult, error) {
	result, err := uc.PrepareTransfer(request)
	if err != nil {
		return nil, err
	}
	if err := uc.SaveModel(request.Writer, result.OutputPath, result.Model, request.SaveOptions); err != nil {
		return nil, err
	}
	return result, nil
}
