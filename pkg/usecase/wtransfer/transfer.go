// 指示: miu200521358
package wtransfer

import (
	"errors"
	"fmt"
	"math"

	"github.com/miu200521358/mlib_go/pkg/domain/mmath"
	"github.com/miu200521358/mlib_go/pkg/shared/base/logging"
	"github.com/miu200521358/mu_weight_transfer/pkg/domain/skinmath"
)

var (
	// ErrInvalidSource は転送元スキンまたは頂点集合が不正な場合のエラーを表す。
	ErrInvalidSource = errors.New("転送元スキンが不正です")
	// ErrInvalidOption は転送オプションが範囲外の場合のエラーを表す。
	ErrInvalidOption = errors.New("転送オプションが不正です")
	// ErrEmptySourceSet は転送元頂点集合が空の場合のエラーを表す。
	ErrEmptySourceSet = errors.New("転送元頂点集合が空です")
	// ErrUnsupportedTopology は補間できない面トポロジに遭遇した場合のエラーを表す。
	ErrUnsupportedTopology = errors.New("補間できない面トポロジです")
	// ErrMissingInfluence は名前一致するインフルエンスが転送先に存在しない場合のエラーを表す。
	ErrMissingInfluence = errors.New("名前一致するインフルエンスが見つかりません")
)

// Method はウェイト転送方式を表す。
type Method string

const (
	// MethodClosestPoint は最近傍点方式を表す。
	MethodClosestPoint Method = "closest_point"
	// MethodInverseDistance は距離逆数加重方式を表す。
	MethodInverseDistance Method = "inverse_distance"
	// MethodPointOnSurface は面上最近点方式を表す。
	MethodPointOnSurface Method = "point_on_surface"
	// MethodSkinWrap はスキンラップ方式を表す。
	MethodSkinWrap Method = "skin_wrap"
)

// Methods は対応する全転送方式を返す。
func Methods() []Method {
	return []Method{MethodClosestPoint, MethodInverseDistance, MethodPointOnSurface, MethodSkinWrap}
}

// Title は転送方式の表示名を返す。
func (m Method) Title() string {
	switch m {
	case MethodClosestPoint:
		return "Closest Point"
	case MethodInverseDistance:
		return "Inverse Distance"
	case MethodPointOnSurface:
		return "Point on Surface"
	case MethodSkinWrap:
		return "Skin Wrap"
	default:
		return string(m)
	}
}

// Options は転送方式ごとの調整値を表す。
type Options struct {
	// Power は距離逆数加重の距離指数を表す。
	Power float64
	// Falloff はスキンラップ減衰曲線の鋭さを表す。
	Falloff float64
	// DistanceInfluence はスキンラップ影響半径の倍率を表す。
	DistanceInfluence float64
	// FaceLimit はスキンラップ近傍面の成長リング数を表す。
	FaceLimit int
}

// NewOptions は既定の転送オプションを返す。
func NewOptions() Options {
	return Options{
		Power:             2.0,
		Falloff:           0.0,
		DistanceInfluence: 1.2,
		FaceLimit:         3,
	}
}

// ProgressFunc は進捗百分率(0-100)の通知を受け取る。戻り値はない。
type ProgressFunc func(percent int)

// SurfaceHit は面上最近点クエリの結果を表す。
type SurfaceHit struct {
	// FaceIndex はヒットした面のindexを表す。
	FaceIndex int
	// Point はワールド空間のヒット位置を表す。
	Point mmath.Vec3
	// Coordinates は重心座標(3頂点面)または双線形座標(4頂点面)を表す。
	// VertexIndexesと同順で並ぶ。
	Coordinates []float64
	// VertexIndexes はヒット面の頂点indexを表す。
	VertexIndexes []int
}

// IMesh はメッシュ形状への読み取り契約を表す。
type IMesh interface {
	// NumVertices は頂点数を返す。
	NumVertices() int
	// VertexPositions は指定頂点のワールド座標を返す。nilは全頂点を表す。
	VertexPositions(vertexIndexes []int) ([]mmath.Vec3, error)
	// ConnectedFacesByVertex は頂点に接続する面indexを返す。
	ConnectedFacesByVertex(vertexIndex int) []int
	// ConnectedFacesByFaces は面集合と頂点を共有する面indexを返す。
	ConnectedFacesByFaces(faceIndexes []int) []int
	// ConnectedEdgesByFaces は面集合を構成する辺indexを返す。
	ConnectedEdgesByFaces(faceIndexes []int) []int
	// ConnectedVerticesByFaces は面集合を構成する頂点indexを返す。
	ConnectedVerticesByFaces(faceIndexes []int) []int
	// EdgeVertexIndexes は辺の両端頂点indexを返す。
	EdgeVertexIndexes(edgeIndex int) (int, int, error)
	// FaceVertexIndexes は面の頂点indexを返す。
	FaceVertexIndexes(faceIndex int) []int
	// ClosestPointOnSurface は各点に最も近い面上の点を面集合の範囲で求める。
	ClosestPointOnSurface(points []mmath.Vec3, faceIndexes []int) ([]SurfaceHit, error)
}

// ISkin は1メッシュ分のスキンウェイトへの読み書き契約を表す。
type ISkin interface {
	// NumVertices はスキン対象メッシュの頂点数を返す。
	NumVertices() int
	// ControlPoints は指定頂点のワールド座標を返す。nilは全頂点を表す。
	ControlPoints(vertexIndexes []int) ([]mmath.Vec3, error)
	// VertexWeights は頂点indexごとのウェイトマップを返す。
	VertexWeights(vertexIndexes []int) (map[int]skinmath.WeightMap, error)
	// MaxInfluences は1頂点あたりの有効インフルエンス上限を返す。
	MaxInfluences() int
	// InfluenceName はインフルエンスindexの名前を返す。
	InfluenceName(influenceIndex int) (string, bool)
	// InfluenceIndexByName は名前からインフルエンスindexを解決する。
	InfluenceIndexByName(name string) (int, bool)
	// ApplyVertexWeights はウェイト更新を一括適用する。部分適用は行わない。
	ApplyVertexWeights(updates map[int]skinmath.WeightMap) error
	// Mesh はスキン対象メッシュへのアクセサを返す。
	Mesh() IMesh
}

// ITransfer はウェイト転送方式の共通契約を表す。
type ITransfer interface {
	// Method は転送方式識別子を返す。
	Method() Method
	// Transfer は転送先スキンの指定頂点へウェイトを転送する。nilは全頂点を表す。
	Transfer(targetSkin ISkin, vertexIndexes []int, notify ProgressFunc) error
}

// NewTransfer は方式識別子から転送インスタンスを生成する。
// 転送元側のキャッシュは生成時に構築され、Transferは別ターゲットへ繰り返し呼び出せる。
func NewTransfer(method Method, sourceSkin ISkin, vertexIndexes []int, options Options) (ITransfer, error) {
	switch method {
	case MethodClosestPoint:
		return NewClosestPointTransfer(sourceSkin, vertexIndexes)
	case MethodInverseDistance:
		return NewInverseDistanceTransfer(sourceSkin, vertexIndexes, options.Power)
	case MethodPointOnSurface:
		return NewPointOnSurfaceTransfer(sourceSkin, vertexIndexes)
	case MethodSkinWrap:
		return NewSkinWrapTransfer(sourceSkin, vertexIndexes, options.Falloff, options.DistanceInfluence, options.FaceLimit)
	default:
		return nil, fmt.Errorf("未対応の転送方式です: %s", method)
	}
}

// transferSource は転送元スキンと対象頂点集合のスナップショットを表す。
type transferSource struct {
	skin          ISkin
	mesh          IMesh
	vertexIndexes []int
}

// newTransferSource は転送元を検証し、頂点集合を確定する。
// vertexIndexesがnilの場合は生成時点の全頂点をスナップショットする。
func newTransferSource(sourceSkin ISkin, vertexIndexes []int) (transferSource, error) {
	if sourceSkin == nil {
		return transferSource{}, fmt.Errorf("転送元スキンが未設定です: %w", ErrInvalidSource)
	}
	mesh := sourceSkin.Mesh()
	if mesh == nil {
		return transferSource{}, fmt.Errorf("転送元メッシュを取得できません: %w", ErrInvalidSource)
	}

	resolved, err := resolveVertexIndexes(sourceSkin, vertexIndexes)
	if err != nil {
		return transferSource{}, fmt.Errorf("転送元頂点集合が不正です: %w", err)
	}
	if len(resolved) == 0 {
		return transferSource{}, fmt.Errorf("転送元: %w", ErrEmptySourceSet)
	}

	return transferSource{
		skin:          sourceSkin,
		mesh:          mesh,
		vertexIndexes: resolved,
	}, nil
}

// remapAndApply は更新集合をインフルエンス対応で書き換え、転送先へ一括適用する。
func (s transferSource) remapAndApply(targetSkin ISkin, updates map[int]skinmath.WeightMap) error {
	influenceMap, err := buildInfluenceMap(s.skin, targetSkin, skinmath.ReferencedInfluenceIndexes(updates))
	if err != nil {
		return err
	}
	remapped, err := skinmath.RemapAllWeights(updates, influenceMap)
	if err != nil {
		return err
	}
	return targetSkin.ApplyVertexWeights(remapped)
}

// resolveVertexIndexes は頂点集合を検証付きで複製する。nilは全頂点を表す。
func resolveVertexIndexes(skin ISkin, vertexIndexes []int) ([]int, error) {
	numVertices := skin.NumVertices()
	if vertexIndexes == nil {
		resolved := make([]int, numVertices)
		for i := range resolved {
			resolved[i] = i
		}
		return resolved, nil
	}

	resolved := make([]int, len(vertexIndexes))
	for i, vertexIndex := range vertexIndexes {
		if vertexIndex < 0 || vertexIndex >= numVertices {
			return nil, fmt.Errorf("頂点indexが範囲外です: %d (頂点数=%d)", vertexIndex, numVertices)
		}
		resolved[i] = vertexIndex
	}
	return resolved, nil
}

// resolveTargetVertexIndexes は転送先スキンと頂点集合を検証する。
func resolveTargetVertexIndexes(targetSkin ISkin, vertexIndexes []int) ([]int, error) {
	if targetSkin == nil {
		return nil, fmt.Errorf("転送先スキンが未設定です")
	}
	resolved, err := resolveVertexIndexes(targetSkin, vertexIndexes)
	if err != nil {
		return nil, fmt.Errorf("転送先頂点集合が不正です: %w", err)
	}
	return resolved, nil
}

// notifyProgress は処理済み件数を百分率へ換算して通知する。
// basePercentからspanPercent分の帯域内で単調非減少になる。
func notifyProgress(notify ProgressFunc, processed int, total int, basePercent int, spanPercent int) {
	if notify == nil || total <= 0 {
		return
	}
	percent := basePercent + int(math.Ceil(float64(processed)*float64(spanPercent)/float64(total)))
	if percent > basePercent+spanPercent {
		percent = basePercent + spanPercent
	}
	notify(percent)
}

// logTransferInfo はウェイト転送のINFOログを出力する。
func logTransferInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}
