//go:build !windows
// +build !windows

// 指示: miu200521358
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mlib_go/pkg/adapter/io_model/pmx"
	"github.com/miu200521358/mu_weight_transfer/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_weight_transfer/pkg/usecase/winteractor"
	"github.com/miu200521358/mu_weight_transfer/pkg/usecase/wtransfer"
)

// options はCLI引数を保持する。
type options struct {
	sourcePath        string
	targetPath        string
	outputPath        string
	method            wtransfer.Method
	power             float64
	falloff           float64
	distanceInfluence float64
	faceLimit         int
}

// main は転送元PMXから転送先PMXへのウェイト転送を実行する。
func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run はCLI処理全体を実行する。
func run(args []string, out io.Writer, errOut io.Writer) error {
	opts, err := parseOptions(args, errOut)
	if err != nil {
		return err
	}

	uc := winteractor.NewWeightTransferUsecase(winteractor.WeightTransferUsecaseDeps{
		ModelReader: pmx.NewPmxRepository(),
		ModelWriter: pmx.NewPmxRepository(),
	})

	outputPath, err := resolveOutputPath(opts.targetPath, opts.outputPath)
	if err != nil {
		return err
	}
	if err := ensureOutputDir(outputPath); err != nil {
		return err
	}

	transferOptions := wtransfer.NewOptions()
	transferOptions.Power = opts.power
	transferOptions.Falloff = opts.falloff
	transferOptions.DistanceInfluence = opts.distanceInfluence
	transferOptions.FaceLimit = opts.faceLimit

	fmt.Fprintf(out, messages.LogTransferStart, opts.method.Title(), opts.sourcePath, opts.targetPath)

	lastPercent := -1
	result, err := uc.Transfer(winteractor.TransferRequest{
		SourcePath: opts.sourcePath,
		TargetPath: opts.targetPath,
		OutputPath: outputPath,
		Method:     opts.method,
		Options:    transferOptions,
		Progress: func(percent int) {
			if percent == lastPercent {
				return
			}
			lastPercent = percent
			fmt.Fprintf(out, messages.LogTransferProgress, percent)
		},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", messages.MessageTransferFailed, err)
	}

	fmt.Fprintf(out, messages.LogTransferComplete, result.OutputPath)
	return nil
}

// parseOptions はCLI引数を解析する。
func parseOptions(args []string, errOut io.Writer) (options, error) {
	fs := flag.NewFlagSet("mu_weight_transfer", flag.ContinueOnError)
	fs.SetOutput(errOut)

	defaults := wtransfer.NewOptions()
	src := fs.String("src", "", "転送元PMXファイルパス")
	dest := fs.String("dest", "", "転送先PMXファイルパス")
	out := fs.String("out", "", "出力PMXファイルパス")
	method := fs.String("method", string(wtransfer.MethodClosestPoint), "転送方式 (closest_point/inverse_distance/point_on_surface/skin_wrap)")
	power := fs.Float64("power", defaults.Power, "距離逆数加重の距離指数")
	falloff := fs.Float64("falloff", defaults.Falloff, "スキンラップ減衰係数")
	distanceInfluence := fs.Float64("distance-influence", defaults.DistanceInfluence, "スキンラップ影響半径倍率")
	faceLimit := fs.Int("face-limit", defaults.FaceLimit, "スキンラップ近傍面リング数")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if *src == "" && fs.NArg() > 0 {
		*src = fs.Arg(0)
	}
	if *dest == "" && fs.NArg() > 1 {
		*dest = fs.Arg(1)
	}
	if *src == "" {
		return options{}, errors.New(messages.MessageSourceRequired)
	}
	if *dest == "" {
		return options{}, errors.New(messages.MessageTargetRequired)
	}
	if !strings.EqualFold(filepath.Ext(*src), ".pmx") {
		return options{}, fmt.Errorf(messages.MessageSourceExtInvalid, *src)
	}
	if !strings.EqualFold(filepath.Ext(*dest), ".pmx") {
		return options{}, fmt.Errorf(messages.MessageTargetExtInvalid, *dest)
	}

	resolvedMethod, err := resolveMethod(*method)
	if err != nil {
		return options{}, err
	}

	return options{
		sourcePath:        *src,
		targetPath:        *dest,
		outputPath:        *out,
		method:            resolvedMethod,
		power:             *power,
		falloff:           *falloff,
		distanceInfluence: *distanceInfluence,
		faceLimit:         *faceLimit,
	}, nil
}

// resolveMethod は方式名を検証付きで解決する。
func resolveMethod(name string) (wtransfer.Method, error) {
	candidate := wtransfer.Method(strings.ToLower(strings.TrimSpace(name)))
	for _, method := range wtransfer.Methods() {
		if candidate == method {
			return method, nil
		}
	}
	return "", fmt.Errorf(messages.MessageMethodUnsupported, name)
}

// resolveOutputPath は出力PMXパスを解決する。
func resolveOutputPath(targetPath string, outputPath string) (string, error) {
	if strings.TrimSpace(outputPath) == "" {
		resolved := winteractor.BuildDefaultOutputPath(targetPath)
		if resolved == "" {
			return "", fmt.Errorf("出力PMXパスを解決できません: %s", targetPath)
		}
		return resolved, nil
	}
	if !strings.EqualFold(filepath.Ext(outputPath), ".pmx") {
		return "", fmt.Errorf(messages.MessageOutputExtInvalid, outputPath)
	}
	return outputPath, nil
}

// ensureOutputDir は出力先ディレクトリを作成する。
func ensureOutputDir(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("出力先ディレクトリの作成に失敗しました: %w", err)
	}
	return nil
}
