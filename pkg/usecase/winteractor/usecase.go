// 指示: miu200521358
package winteractor

import "github.com/miu200521358/mu_weight_transfer/pkg/usecase/port/moutput"

// WeightTransferUsecaseDeps はウェイト転送ユースケースの依存を表す。
type WeightTransferUsecaseDeps struct {
	ModelReader moutput.IFileReader
	ModelWriter moutput.IFileWriter
}

// WeightTransferUsecase はPMXモデル間のウェイト転送処理をまとめたユースケースを表す。
type WeightTransferUsecase struct {
	modelReader moutput.IFileReader
	modelWriter moutput.IFileWriter
}

// NewWeightTransferUsecase はウェイト転送ユースケースを生成する。
func NewWeightTransferUsecase(deps WeightTransferUsecaseDeps) *WeightTransferUsecase {
	return &WeightTransferUsecase{
		modelReader: deps.ModelReader,
		modelWriter: deps.ModelWriter,
	}
}
