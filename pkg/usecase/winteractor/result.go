// 指示: miu200521358
package winteractor

import (
	"github.com/miu200521358/mlib_go/pkg/domain/model"
	"github.com/miu200521358/mu_weight_transfer/pkg/usecase/port/moutput"
	"github.com/miu200521358/mu_weight_transfer/pkg/usecase/wtransfer"
)

// ModelData は転送対象モデルを表す。
type ModelData = model.PmxModel

// SaveOptions は保存時オプションを表す。
type SaveOptions = moutput.SaveOptions

// TransferRequest はウェイト転送要求を表す。
// SourceModel/TargetModelが設定済みの場合はパスからの読み込みを行わない。
type TransferRequest struct {
	SourcePath          string
	TargetPath          string
	OutputPath          string
	Method              wtransfer.Method
	Options             wtransfer.Options
	SourceVertexIndexes []int
	TargetVertexIndexes []int
	SourceModel         *ModelData
	TargetModel         *ModelData
	Reader              moutput.IFileReader
	Writer              moutput.IFileWriter
	SaveOptions         SaveOptions
	Progress            wtransfer.ProgressFunc
}

// TransferResult はウェイト転送結果を表す。
type TransferResult struct {
	Model      *ModelData
	OutputPath string
}
