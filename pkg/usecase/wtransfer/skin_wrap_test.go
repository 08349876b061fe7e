// 指示: miu200521358
package wtransfer

import (
	"errors"
	"testing"

	"github.com/miu200521358/mlib_go/pkg/domain/mmath"
)

func TestSkinWrapTransfer(t *testing.T) {
	sourceSkin := newTriangleSourceSkin()
	targetSkin := newPointTargetSkin(
		[]mmath.Vec3{
			newTransferTestVec3(0.1, 0.1, 0.0), // 全影響球の内側
			newTransferTestVec3(10.0, 0.0, 0.0), // どの影響球にも入らない
		},
		[]string{"腰", "右足", "左足"},
	)

	options := NewOptions()
	transfer, err := NewSkinWrapTransfer(sourceSkin, nil, options.Falloff, options.DistanceInfluence, options.FaceLimit)
	if err != nil {
		t.Fatalf("転送生成に失敗しました: %v", err)
	}
	if err := transfer.Transfer(targetSkin, nil, nil); err != nil {
		t.Fatalf("転送に失敗しました: %v", err)
	}

	if len(targetSkin.applied) != 2 {
		t.Fatalf("適用頂点数が一致しません: got=%d want=2", len(targetSkin.applied))
	}

	// カバーされた頂点: 3つの影響球の寄与が混合され、合計1に正規化される
	covered := targetSkin.applied[0]
	if len(covered) != 3 {
		t.Fatalf("カバー頂点のインフルエンス数が一致しません: got=%v", covered)
	}
	if !assertWeightNear(covered.Sum(), 1.0) {
		t.Fatalf("カバー頂点のウェイト合計が1になりません: got=%f", covered.Sum())
	}
	// 最も近い頂点0(腰)の寄与が最大になる
	if covered[0] <= covered[1] || covered[0] <= covered[2] {
		t.Fatalf("最近傍インフルエンスの寄与が最大になっていません: got=%v", covered)
	}

	// 未カバー頂点: 最近傍転送元頂点(1)のウェイト複製で補完される
	fallback := targetSkin.applied[1]
	if len(fallback) != 1 || !assertWeightNear(fallback[1], 1.0) {
		t.Fatalf("未カバー頂点の最近傍補完が一致しません: got=%v want={1:1}", fallback)
	}
}

func TestSkinWrapTransferInvalidOptions(t *testing.T) {
	sourceSkin := newTriangleSourceSkin()

	if _, err := NewSkinWrapTransfer(sourceSkin, nil, -0.5, 1.2, 3); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("負の減衰係数で ErrInvalidOption になりません: err=%v", err)
	}
	if _, err := NewSkinWrapTransfer(sourceSkin, nil, 0.0, 0.0, 3); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("ゼロの影響半径倍率で ErrInvalidOption になりません: err=%v", err)
	}
	if _, err := NewSkinWrapTransfer(sourceSkin, nil, 0.0, 1.2, 0); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("ゼロの近傍面リング数で ErrInvalidOption になりません: err=%v", err)
	}
}

func TestSkinWrapComputeFalloffWeight(t *testing.T) {
	sourceSkin := newTriangleSourceSkin()

	linear, err := NewSkinWrapTransfer(sourceSkin, nil, 0.0, 1.2, 3)
	if err != nil {
		t.Fatalf("転送生成に失敗しました: %v", err)
	}

	// falloff=0は線形減衰
	if !assertWeightNear(linear.computeFalloffWeight(0.0, 2.0), 1.0) {
		t.Fatalf("距離0の減衰ウェイトが1になりません")
	}
	if !assertWeightNear(linear.computeFalloffWeight(1.0, 2.0), 0.5) {
		t.Fatalf("中間距離の線形減衰が0.5になりません: got=%f", linear.computeFalloffWeight(1.0, 2.0))
	}
	if !assertWeightNear(linear.computeFalloffWeight(2.0, 2.0), 0.0) {
		t.Fatalf("半径上の減衰ウェイトが0になりません")
	}
	if linear.computeFalloffWeight(3.0, 2.0) != 0.0 {
		t.Fatalf("半径外の減衰ウェイトが0になりません")
	}
	if linear.computeFalloffWeight(1.0, 0.0) != 0.0 {
		t.Fatalf("半径0の減衰ウェイトが0になりません")
	}

	// falloff>0は中間点が線形より下に沈む
	sharp, err := NewSkinWrapTransfer(sourceSkin, nil, 1.0, 1.2, 3)
	if err != nil {
		t.Fatalf("転送生成に失敗しました: %v", err)
	}
	midWeight := sharp.computeFalloffWeight(1.0, 2.0)
	if midWeight >= 0.5 || midWeight <= 0.0 {
		t.Fatalf("減衰係数1.0の中間ウェイトが線形より下になりません: got=%f", midWeight)
	}
	if !assertWeightNear(midWeight, 1.0/3.0) {
		t.Fatalf("減衰係数1.0の中間ウェイトが一致しません: got=%f want=%f", midWeight, 1.0/3.0)
	}
}

func TestSkinWrapTransferProgress(t *testing.T) {
	sourceSkin := newTriangleSourceSkin()
	targetSkin := newPointTargetSkin(
		[]mmath.Vec3{
			newTransferTestVec3(0.1, 0.1, 0.0),
			newTransferTestVec3(0.5, 0.2, 0.0),
		},
		[]string{"腰", "右足", "左足"},
	)

	options := NewOptions()
	transfer, err := NewSkinWrapTransfer(sourceSkin, nil, options.Falloff, options.DistanceInfluence, options.FaceLimit)
	if err != nil {
		t.Fatalf("転送生成に失敗しました: %v", err)
	}

	var percents []int
	if err := transfer.Transfer(targetSkin, nil, func(percent int) {
		percents = append(percents, percent)
	}); err != nil {
		t.Fatalf("転送に失敗しました: %v", err)
	}

	if len(percents) == 0 {
		t.Fatalf("進捗が通知されていません")
	}
	previous := 0
	for _, percent := range percents {
		if percent < previous || percent > 100 {
			t.Fatalf("進捗が単調非減少の0-100になっていません: %v", percents)
		}
		previous = percent
	}
	if percents[len(percents)-1] != 100 {
		t.Fatalf("最終進捗が100になりません: got=%d", percents[len(percents)-1])
	}
}
