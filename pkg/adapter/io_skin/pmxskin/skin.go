// 指示: miu200521358
package pmxskin

import (
	"fmt"
	"sort"

	"github.com/miu200521358/mlib_go/pkg/domain/mmath"
	"github.com/miu200521358/mlib_go/pkg/domain/model"
	"github.com/miu200521358/mu_weight_transfer/pkg/domain/skinmath"
	"github.com/miu200521358/mu_weight_transfer/pkg/usecase/wtransfer"
)

// pmxMaxInfluences はBDEF4の上限に合わせた1頂点あたりの有効ボーン数を表す。
const pmxMaxInfluences = 4

// SkinAccessor はPMXモデルのボーンウェイトを wtransfer.ISkin として公開する。
// インフルエンスはボーンに対応し、名前はボーン名をそのまま使う。
type SkinAccessor struct {
	modelData *model.PmxModel
	mesh      *MeshAccessor
}

var _ wtransfer.ISkin = (*SkinAccessor)(nil)

// NewSkinAccessor はPMXモデルからスキンアクセサを生成する。
func NewSkinAccessor(modelData *model.PmxModel) (*SkinAccessor, error) {
	mesh, err := NewMeshAccessor(modelData)
	if err != nil {
		return nil, err
	}
	return &SkinAccessor{
		modelData: modelData,
		mesh:      mesh,
	}, nil
}

// NumVertices はスキン対象メッシュの頂点数を返す。
func (s *SkinAccessor) NumVertices() int {
	return s.modelData.Vertices.Len()
}

// ControlPoints は指定頂点のワールド座標を返す。nilは全頂点を表す。
func (s *SkinAccessor) ControlPoints(vertexIndexes []int) ([]mmath.Vec3, error) {
	return s.mesh.VertexPositions(vertexIndexes)
}

// VertexWeights は頂点indexごとのウェイトマップを返す。
// デフォームの重複ボーンは合算し、ゼロ以下のウェイトと負のボーンindexは除外する。
func (s *SkinAccessor) VertexWeights(vertexIndexes []int) (map[int]skinmath.WeightMap, error) {
	results := make(map[int]skinmath.WeightMap, len(vertexIndexes))
	for _, vertexIndex := range vertexIndexes {
		vertex, err := s.modelData.Vertices.Get(vertexIndex)
		if err != nil || vertex == nil {
			return nil, fmt.Errorf("頂点%dを取得できません: %w", vertexIndex, err)
		}

		weights := skinmath.WeightMap{}
		if vertex.Deform != nil {
			joints := vertex.Deform.Indexes()
			values := vertex.Deform.Weights()
			maxCount := len(joints)
			if len(values) < maxCount {
				maxCount = len(values)
			}
			for i := 0; i < maxCount; i++ {
				if joints[i] < 0 || values[i] <= 0 {
					continue
				}
				weights[joints[i]] += values[i]
			}
		}
		results[vertexIndex] = weights
	}
	return results, nil
}

// MaxInfluences は1頂点あたりの有効インフルエンス上限を返す。
func (s *SkinAccessor) MaxInfluences() int {
	return pmxMaxInfluences
}

// InfluenceName はボーンindexの名前を返す。
func (s *SkinAccessor) InfluenceName(influenceIndex int) (string, bool) {
	bone, err := s.modelData.Bones.Get(influenceIndex)
	if err != nil || bone == nil {
		return "", false
	}
	return bone.Name(), true
}

// InfluenceIndexByName はボーン名からボーンindexを解決する。
func (s *SkinAccessor) InfluenceIndexByName(name string) (int, bool) {
	bone, err := s.modelData.Bones.GetByName(name)
	if err != nil || bone == nil {
		return 0, false
	}
	return bone.Index(), true
}

// ApplyVertexWeights はウェイト更新を一括適用する。
// 全頂点分のデフォーム構築に成功してから書き込むため、途中失敗で部分適用にはならない。
func (s *SkinAccessor) ApplyVertexWeights(updates map[int]skinmath.WeightMap) error {
	vertexIndexes := make([]int, 0, len(updates))
	for vertexIndex := range updates {
		vertexIndexes = append(vertexIndexes, vertexIndex)
	}
	sort.Ints(vertexIndexes)

	type vertexDeform struct {
		vertex *model.Vertex
		deform model.IDeform
	}
	deforms := make([]vertexDeform, 0, len(vertexIndexes))
	for _, vertexIndex := range vertexIndexes {
		vertex, err := s.modelData.Vertices.Get(vertexIndex)
		if err != nil || vertex == nil {
			return fmt.Errorf("頂点%dを取得できません: %w", vertexIndex, err)
		}
		deform, err := s.buildVertexDeform(updates[vertexIndex])
		if err != nil {
			return fmt.Errorf("頂点%dのデフォーム構築に失敗しました: %w", vertexIndex, err)
		}
		deforms = append(deforms, vertexDeform{vertex: vertex, deform: deform})
	}

	for _, entry := range deforms {
		entry.vertex.Deform = entry.deform
		entry.vertex.DeformType = entry.deform.DeformType()
	}
	return nil
}

// Mesh はスキン対象メッシュへのアクセサを返す。
func (s *SkinAccessor) Mesh() wtransfer.IMesh {
	return s.mesh
}

// weightedBone はデフォーム構築時のボーンindexとウェイトの組を表す。
type weightedBone struct {
	Index  int
	Weight float64
}

// buildVertexDeform はウェイトマップからBDEF1/BDEF2/BDEF4のデフォームを生成する。
// 上限超過時はウェイト降順の上位のみを残して再正規化する。
func (s *SkinAccessor) buildVertexDeform(weights skinmath.WeightMap) (model.IDeform, error) {
	numBones := s.modelData.Bones.Len()
	weightedBones := make([]weightedBone, 0, len(weights))
	totalWeight := 0.0
	for boneIndex, weight := range weights {
		if weight <= 0 {
			continue
		}
		if boneIndex < 0 || boneIndex >= numBones {
			return nil, fmt.Errorf("ボーンindexが範囲外です: %d (ボーン数=%d)", boneIndex, numBones)
		}
		weightedBones = append(weightedBones, weightedBone{Index: boneIndex, Weight: weight})
		totalWeight += weight
	}
	if len(weightedBones) == 0 || totalWeight <= 0 {
		return nil, fmt.Errorf("有効なウェイトがありません")
	}

	sort.Slice(weightedBones, func(i int, j int) bool {
		if weightedBones[i].Weight == weightedBones[j].Weight {
			return weightedBones[i].Index < weightedBones[j].Index
		}
		return weightedBones[i].Weight > weightedBones[j].Weight
	})
	if len(weightedBones) > pmxMaxInfluences {
		weightedBones = weightedBones[:pmxMaxInfluences]
		totalWeight = 0.0
		for _, weighted := range weightedBones {
			totalWeight += weighted.Weight
		}
	}

	if len(weightedBones) == 1 {
		return model.NewBdef1(weightedBones[0].Index), nil
	}
	if len(weightedBones) == 2 {
		weight0 := weightedBones[0].Weight / totalWeight
		return model.NewBdef2(weightedBones[0].Index, weightedBones[1].Index, weight0), nil
	}

	indexes := [4]int{weightedBones[0].Index, weightedBones[0].Index, weightedBones[0].Index, weightedBones[0].Index}
	values := [4]float64{0, 0, 0, 0}
	for i := 0; i < len(weightedBones); i++ {
		indexes[i] = weightedBones[i].Index
		values[i] = weightedBones[i].Weight / totalWeight
	}
	return model.NewBdef4(indexes, values), nil
}
