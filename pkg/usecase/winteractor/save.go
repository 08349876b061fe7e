// 指示: miu200521358
package winteractor

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/miu200521358/mu_weight_transfer/pkg/usecase/port/moutput"
)

// nowFunc は既定出力パス生成用の現在時刻取得関数。テストで差し替える。
var nowFunc = time.Now

// SaveModel はPMXモデルを保存する。
func (uc *WeightTransferUsecase) SaveModel(rep moutput.IFileWriter, path string, modelData *ModelData, opts SaveOptions) error {
	writer := rep
	if writer == nil {
		writer = uc.modelWriter
	}
	if writer == nil {
		return fmt.Errorf("モデル保存リポジトリが設定されていません")
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("保存先パスが未指定です")
	}
	if modelData == nil {
		return fmt.Errorf("保存対象モデルが未設定です")
	}
	return writer.Save(path, modelData, opts)
}

// BuildDefaultOutputPath は転送先PMXパスから既定の出力パスを生成する。
func BuildDefaultOutputPath(targetPath string) string {
	return buildDefaultOutputPathAt(targetPath, nowFunc())
}

// buildDefaultOutputPathAt は指定時刻で既定の出力パスを生成する。
// 転送先と同じディレクトリに「元ファイル名_weights_タイムスタンプ.pmx」を置く。
func buildDefaultOutputPathAt(targetPath string, now time.Time) string {
	dir := filepath.Dir(targetPath)
	base := strings.TrimSuffix(filepath.Base(targetPath), filepath.Ext(targetPath))
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	stamp := now.Format("20060102150405")
	return filepath.Join(dir, fmt.Sprintf("%s_weights_%s.pmx", base, stamp))
}

// resolvePmxOutputPath は出力PMXパスを解決し、拡張子を検証する。
func resolvePmxOutputPath(targetPath string, outputPath string) (string, error) {
	resolved := strings.TrimSpace(outputPath)
	if resolved == "" {
		resolved = BuildDefaultOutputPath(targetPath)
	}
	if strings.TrimSpace(resolved) == "" {
		return "", fmt.Errorf("保存先PMXパスが未指定です")
	}
	if !strings.EqualFold(filepath.Ext(resolved), ".pmx") {
		return "", fmt.Errorf("保存先拡張子が .pmx ではありません: %s", resolved)
	}
	return resolved, nil
}
