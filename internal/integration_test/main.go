// 指示: miu200521358
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/miu200521358/mlib_go/pkg/adapter/io_model/pmx"
	"github.com/miu200521358/mu_weight_transfer/pkg/usecase/winteractor"
	"github.com/miu200521358/mu_weight_transfer/pkg/usecase/wtransfer"
)

const (
	batchOutputDirMode = 0o755
)

// targetModelPairs は転送元PMXと転送先PMXの組を表す。
var targetModelPairs = [][2]string{
	{
		"E:/MMD_E/201805_auto/Source/Source_weighted.pmx",
		"E:/MMD_E/201805_auto/Target/Target_cloth.pmx",
	},
	// {
	// 	"C:/Codex/mlib/mlib_go_t4/internal/test_resources/pmx/body_weighted.pmx",
	// 	"C:/Codex/mlib/mlib_go_t4/internal/test_resources/pmx/dress.pmx",
	// },
}

// batchConfig はバッチ転送の実行設定を表す。
type batchConfig struct {
	OutputRoot string
	Method     wtransfer.Method
	DryRun     bool
	FailFast   bool
}

// transferEntry は1組分の転送入力情報を表す。
type transferEntry struct {
	Index      int
	SourcePath string
	TargetPath string
	ModelName  string
	CaseDir    string
	OutputPath string
}

// transferResult は1組分の転送結果を表す。
type transferResult struct {
	Entry        transferEntry
	Status       string
	Duration     time.Duration
	Err          error
	ProgressInfo string
}

// progressCollector はウェイト転送の進捗通知を収集する。
type progressCollector struct {
	count       int
	lastPercent int
	monotonic   bool
}

// main は全転送方式の検証向けにPMX一括ウェイト転送を実行する。
func main() {
	os.Exit(run())
}

// run は実行設定を解決して一括転送を実行し、終了コードを返す。
func run() int {
	config, err := parseBatchConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定解析に失敗しました: %v\n", err)
		return 2
	}
	entries := buildTransferEntries(config.OutputRoot, config.Method, targetModelPairs)
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "転送対象モデルがありません")
		return 2
	}

	results := executeBatchTransfer(config, entries)
	printBatchSummary(results)

	hasFailed := false
	for _, result := range results {
		if result.Status == "failed" {
			hasFailed = true
			break
		}
	}
	if hasFailed {
		return 1
	}
	return 0
}

// parseBatchConfig はコマンドライン引数から実行設定を構築する。
func parseBatchConfig() (batchConfig, error) {
	defaultOutputRoot, err := resolveDefaultOutputRoot()
	if err != nil {
		return batchConfig{}, err
	}
	outputRoot := flag.String("output-root", defaultOutputRoot, "転送結果の出力ルートディレクトリ")
	methodName := flag.String("method", string(wtransfer.MethodClosestPoint), "転送方式")
	dryRun := flag.Bool("dry-run", false, "実転送せず、入力解決と出力先計画のみ表示する")
	failFast := flag.Bool("fail-fast", false, "失敗時に即時終了する")
	flag.Parse()

	trimmedOutputRoot := strings.TrimSpace(*outputRoot)
	if trimmedOutputRoot == "" {
		return batchConfig{}, errors.New("output-root が空です")
	}

	method := wtransfer.Method(strings.ToLower(strings.TrimSpace(*methodName)))
	found := false
	for _, candidate := range wtransfer.Methods() {
		if method == candidate {
			found = true
			break
		}
	}
	if !found {
		return batchConfig{}, fmt.Errorf("未対応の転送方式です: %s", *methodName)
	}

	return batchConfig{
		OutputRoot: filepath.Clean(trimmedOutputRoot),
		Method:     method,
		DryRun:     *dryRun,
		FailFast:   *failFast,
	}, nil
}

// resolveDefaultOutputRoot はスクリプト配置ディレクトリ基準の既定出力先を返す。
func resolveDefaultOutputRoot() (string, error) {
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("実行ファイル位置を取得できません")
	}
	currentDir := filepath.Dir(currentFilePath)
	return filepath.Join(currentDir, "output"), nil
}

// buildTransferEntries は入力パス組一覧から転送対象エントリを生成する。
func buildTransferEntries(outputRoot string, method wtransfer.Method, inputPairs [][2]string) []transferEntry {
	entries := make([]transferEntry, 0, len(inputPairs))
	for i, pair := range inputPairs {
		sourcePath := normalizeInputPath(pair[0])
		targetPath := normalizeInputPath(pair[1])
		modelName := resolveModelName(pair[1])
		safeModelName := sanitizePathComponent(modelName)
		caseDirName := fmt.Sprintf("%03d_%s_%s", i+1, safeModelName, method)
		caseDir := filepath.Join(outputRoot, caseDirName)
		outputPath := filepath.Join(caseDir, safeModelName+".pmx")
		entries = append(entries, transferEntry{
			Index:      i + 1,
			SourcePath: sourcePath,
			TargetPath: targetPath,
			ModelName:  modelName,
			CaseDir:    caseDir,
			OutputPath: outputPath,
		})
	}
	return entries
}

// executeBatchTransfer は全組の転送処理を順次実行する。
func executeBatchTransfer(config batchConfig, entries []transferEntry) []transferResult {
	results := make([]transferResult, 0, len(entries))
	usecase := winteractor.NewWeightTransferUsecase(winteractor.WeightTransferUsecaseDeps{
		ModelReader: pmx.NewPmxRepository(),
		ModelWriter: pmx.NewPmxRepository(),
	})

	total := len(entries)
	for _, entry := range entries {
		fmt.Printf("[%d/%d] 転送開始: model=%s method=%s\n", entry.Index, total, entry.ModelName, config.Method)
		result := transferModelEntry(usecase, config, entry)
		results = append(results, result)
		switch result.Status {
		case "succeeded":
			fmt.Printf("[%d/%d] 転送成功: model=%s output=%s elapsed=%s\n", entry.Index, total, entry.ModelName, entry.OutputPath, result.Duration.Round(time.Millisecond))
			if strings.TrimSpace(result.ProgressInfo) != "" {
				fmt.Printf("[%d/%d] 進捗検証: %s\n", entry.Index, total, result.ProgressInfo)
			}
		case "dry_run":
			fmt.Printf("[%d/%d] DRY-RUN: model=%s source=%s target=%s output=%s\n", entry.Index, total, entry.ModelName, entry.SourcePath, entry.TargetPath, entry.OutputPath)
		case "skipped_missing":
			fmt.Printf("[%d/%d] 入力不足でスキップ: model=%s reason=%v\n", entry.Index, total, entry.ModelName, result.Err)
		default:
			fmt.Printf("[%d/%d] 転送失敗: model=%s reason=%v\n", entry.Index, total, entry.ModelName, result.Err)
			if config.FailFast {
				return results
			}
		}
	}
	return results
}

// transferModelEntry は1組分の転送を実行する。
func transferModelEntry(usecase *winteractor.WeightTransferUsecase, config batchConfig, entry transferEntry) transferResult {
	result := transferResult{
		Entry:  entry,
		Status: "failed",
	}
	for _, path := range []string{entry.SourcePath, entry.TargetPath} {
		if _, err := os.Stat(path); err != nil {
			result.Status = "skipped_missing"
			result.Err = err
			return result
		}
	}
	if config.DryRun {
		result.Status = "dry_run"
		return result
	}
	if err := os.MkdirAll(entry.CaseDir, batchOutputDirMode); err != nil {
		result.Err = fmt.Errorf("出力ディレクトリ作成に失敗しました: %w", err)
		return result
	}

	startedAt := time.Now()
	collector := newProgressCollector()
	transferred, err := usecase.Transfer(winteractor.TransferRequest{
		SourcePath: entry.SourcePath,
		TargetPath: entry.TargetPath,
		OutputPath: entry.OutputPath,
		Method:     config.Method,
		Options:    wtransfer.NewOptions(),
		Progress:   collector.Notify,
	})
	if err != nil {
		result.Err = fmt.Errorf("Transferに失敗しました: %w", err)
		return result
	}
	if transferred == nil || transferred.Model == nil {
		result.Err = errors.New("Transfer結果が空です")
		return result
	}

	result.Status = "succeeded"
	result.Duration = time.Since(startedAt)
	result.ProgressInfo = collector.Summary()
	return result
}

// printBatchSummary は転送結果の集計を標準出力へ表示する。
func printBatchSummary(results []transferResult) {
	succeeded := 0
	failed := 0
	skipped := 0
	dryRun := 0
	for _, result := range results {
		switch result.Status {
		case "succeeded":
			succeeded++
		case "dry_run":
			dryRun++
		case "skipped_missing":
			skipped++
		default:
			failed++
		}
	}
	fmt.Printf(
		"バッチ転送サマリ: total=%d succeeded=%d failed=%d skipped_missing=%d dry_run=%d\n",
		len(results),
		succeeded,
		failed,
		skipped,
		dryRun,
	)
}

// resolveModelName は入力パスから拡張子を除いたモデル名を返す。
func resolveModelName(path string) string {
	base := strings.TrimSpace(filepath.Base(path))
	ext := filepath.Ext(base)
	name := strings.TrimSpace(strings.TrimSuffix(base, ext))
	if name == "" {
		return "model"
	}
	return name
}

// normalizeInputPath は入力パスを実行環境向けに正規化する。
func normalizeInputPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	return filepath.Clean(convertWindowsPathToWsl(path))
}

// convertWindowsPathToWsl は Linux 実行時に Windows パスを WSL パスへ変換する。
func convertWindowsPathToWsl(path string) string {
	trimmed := strings.TrimSpace(path)
	if runtime.GOOS != "linux" {
		return trimmed
	}
	if len(trimmed) < 2 || trimmed[1] != ':' {
		return trimmed
	}
	drive := strings.ToLower(trimmed[:1])
	rest := strings.ReplaceAll(trimmed[2:], "\\", "/")
	if rest == "" {
		return filepath.ToSlash(filepath.Join("/mnt", drive))
	}
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return filepath.ToSlash(filepath.Join("/mnt", drive) + rest)
}

// sanitizePathComponent は出力ディレクトリ/ファイル名に使えない文字を置換する。
func sanitizePathComponent(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "model"
	}
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		default:
			if r < 0x20 {
				return '_'
			}
			return r
		}
	}, trimmed)
	replaced = strings.Trim(replaced, " .")
	if replaced == "" {
		return "model"
	}
	return replaced
}

// newProgressCollector は転送進捗収集器を生成する。
func newProgressCollector() *progressCollector {
	return &progressCollector{lastPercent: -1, monotonic: true}
}

// Notify は進捗通知を収集する。
func (collector *progressCollector) Notify(percent int) {
	if collector == nil {
		return
	}
	collector.count++
	if percent < collector.lastPercent {
		collector.monotonic = false
	}
	collector.lastPercent = percent
}

// Summary は収集した進捗の要約文字列を返す。
func (collector *progressCollector) Summary() string {
	if collector == nil || collector.count == 0 {
		return ""
	}
	return fmt.Sprintf(
		"notifications=%d lastPercent=%d monotonic=%t",
		collector.count,
		collector.lastPercent,
		collector.monotonic,
	)
}
