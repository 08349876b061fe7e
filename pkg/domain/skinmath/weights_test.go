// 指示: miu200521358
package skinmath

import (
	"errors"
	"math"
	"testing"
)

func TestNormalizeWeightsSumsToOne(t *testing.T) {
	weights := WeightMap{0: 2.0, 1: 1.0, 2: 1.0}

	normalized, err := NormalizeWeights(weights, 4)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if math.Abs(normalized.Sum()-1.0) > 1e-6 {
		t.Fatalf("expected sum 1.0: got=%f", normalized.Sum())
	}
	if math.Abs(normalized[0]-0.5) > 1e-6 {
		t.Fatalf("expected weight 0.5 for influence 0: got=%f", normalized[0])
	}
}

func TestNormalizeWeightsPrunesToMaxInfluences(t *testing.T) {
	weights := WeightMap{0: 0.4, 1: 0.3, 2: 0.2, 3: 0.06, 4: 0.04}

	normalized, err := NormalizeWeights(weights, 4)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if normalized.InfluenceCount() != 4 {
		t.Fatalf("expected 4 influences: got=%d", normalized.InfluenceCount())
	}
	if _, exists := normalized[4]; exists {
		t.Fatalf("expected smallest influence 4 to be pruned")
	}
	if math.Abs(normalized.Sum()-1.0) > 1e-6 {
		t.Fatalf("expected sum 1.0 after pruning: got=%f", normalized.Sum())
	}
}

func TestNormalizeWeightsReturnsErrNoWeights(t *testing.T) {
	if _, err := NormalizeWeights(WeightMap{}, 4); !errors.Is(err, ErrNoWeights) {
		t.Fatalf("expected ErrNoWeights for empty map: got=%v", err)
	}
	if _, err := NormalizeWeights(WeightMap{0: 0.0, 1: 0.0}, 4); !errors.Is(err, ErrNoWeights) {
		t.Fatalf("expected ErrNoWeights for zero weights: got=%v", err)
	}
}

func TestWeightedAverageCombinesMaps(t *testing.T) {
	maps := []WeightMap{
		{0: 1.0},
		{1: 1.0},
	}

	combined, err := WeightedAverage(maps, []float64{0.75, 0.25})
	if err != nil {
		t.Fatalf("weighted average failed: %v", err)
	}
	if math.Abs(combined[0]-0.75) > 1e-6 || math.Abs(combined[1]-0.25) > 1e-6 {
		t.Fatalf("unexpected combined weights: %v", combined)
	}
}

func TestWeightedAverageRejectsLengthMismatch(t *testing.T) {
	if _, err := WeightedAverage([]WeightMap{{0: 1.0}}, []float64{1.0, 2.0}); err == nil {
		t.Fatalf("expected length mismatch error")
	}
}

func TestInverseDistanceWeightsScenario(t *testing.T) {
	// 距離1と3の2頂点、power=2 → 係数 1 と 1/9 → 0.9 : 0.1
	maps := []WeightMap{
		{0: 1.0},
		{1: 1.0},
	}

	combined, err := InverseDistanceWeights(maps, []float64{1.0, 3.0}, 2.0)
	if err != nil {
		t.Fatalf("inverse distance failed: %v", err)
	}
	normalized, err := NormalizeWeights(combined, 4)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if math.Abs(normalized[0]-0.9) > 1e-6 {
		t.Fatalf("expected influence 0 weight 0.9: got=%f", normalized[0])
	}
	if math.Abs(normalized[1]-0.1) > 1e-6 {
		t.Fatalf("expected influence 1 weight 0.1: got=%f", normalized[1])
	}
}

func TestInverseDistanceWeightsZeroDistanceCopiesExactly(t *testing.T) {
	maps := []WeightMap{
		{0: 0.5, 1: 0.5},
		{2: 1.0},
	}

	combined, err := InverseDistanceWeights(maps, []float64{2.0, 0.0}, 2.0)
	if err != nil {
		t.Fatalf("inverse distance failed: %v", err)
	}
	if len(combined) != 1 || math.Abs(combined[2]-1.0) > 1e-6 {
		t.Fatalf("expected exact copy of zero-distance map: %v", combined)
	}
}

func TestInverseDistanceWeightsRejectsNonPositivePower(t *testing.T) {
	maps := []WeightMap{{0: 1.0}}
	if _, err := InverseDistanceWeights(maps, []float64{1.0}, 0.0); err == nil {
		t.Fatalf("expected error for power 0")
	}
	if _, err := InverseDistanceWeights(maps, []float64{1.0}, -1.0); err == nil {
		t.Fatalf("expected error for negative power")
	}
}

func TestInverseDistanceWeightsRejectsEmptyMaps(t *testing.T) {
	if _, err := InverseDistanceWeights(nil, nil, 2.0); err == nil {
		t.Fatalf("expected error for empty maps")
	}
}
