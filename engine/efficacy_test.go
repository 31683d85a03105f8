package engine

import (
	"testing"

	"github.com/carerx/drug-advisor-api/catalog/entities"
)

func efficacyTopics() (stubTopics, stubTopics) {
	vectors := map[string][]float64{
		"alpha relief": {1, 0},
		"beta relief":  {0, 1},
	}
	return stubTopics{vectors: vectors, dim: 2}, stubTopics{vectors: vectors, dim: 2}
}

func TestRankAlternativesOrdersBySimilarityThenCost(t *testing.T) {
	target := record("TARGET", "GEN1", "CLASS A", 50, 40)
	target.ClinicalEfficacy = "alpha relief"

	similar := record("SIMILAR", "GEN1", "CLASS A", 10, 40)
	similar.ClinicalEfficacy = "alpha relief"
	similarCheap := record("SIMILAR CHEAP", "GEN1", "CLASS A", 5, 40)
	similarCheap.ClinicalEfficacy = "alpha relief"
	dissimilar := record("DISSIMILAR", "GEN1", "CLASS A", 1, 40)
	dissimilar.ClinicalEfficacy = "beta relief"

	nmf, lda := efficacyTopics()
	eng := newTestEngine([]entities.DrugRecord{target, similar, similarCheap, dissimilar},
		Deps{NMF: nmf, LDA: lda})

	got := eng.RankAlternatives(target, 3)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	wantOrder := []string{"SIMILAR CHEAP", "SIMILAR", "DISSIMILAR"}
	for i, want := range wantOrder {
		if got[i].Drug.DrugName != want {
			t.Errorf("rank %d = %s, want %s", i, got[i].Drug.DrugName, want)
		}
	}
	if got[0].Similarity <= got[2].Similarity {
		t.Errorf("similarity not descending: %v vs %v", got[0].Similarity, got[2].Similarity)
	}
	if got[0].CostDifference != -45 {
		t.Errorf("cost difference = %v, want -45", got[0].CostDifference)
	}
}

func TestRankAlternativesTruncates(t *testing.T) {
	target := record("TARGET", "GEN1", "CLASS A", 50, 40)
	target.ClinicalEfficacy = "alpha relief"

	records := []entities.DrugRecord{target}
	for _, name := range []string{"P1", "P2", "P3", "P4", "P5"} {
		peer := record(name, "GEN1", "CLASS A", 10, 40)
		peer.ClinicalEfficacy = "alpha relief"
		records = append(records, peer)
	}

	nmf, lda := efficacyTopics()
	eng := newTestEngine(records, Deps{NMF: nmf, LDA: lda})

	if got := eng.RankAlternatives(target, 3); len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
	if got := eng.RankAlternatives(target, 2); len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestRankAlternativesExcludesOtherClassesAndSelf(t *testing.T) {
	target := record("TARGET", "GEN1", "CLASS A", 50, 40)
	target.ClinicalEfficacy = "alpha relief"
	otherClass := record("OTHER CLASS", "GEN1", "CLASS B", 10, 40)
	otherClass.ClinicalEfficacy = "alpha relief"
	otherGeneric := record("OTHER GENERIC", "GEN2", "CLASS A", 10, 40)
	otherGeneric.ClinicalEfficacy = "alpha relief"

	nmf, lda := efficacyTopics()
	eng := newTestEngine([]entities.DrugRecord{target, otherClass, otherGeneric},
		Deps{NMF: nmf, LDA: lda})

	if got := eng.RankAlternatives(target, 3); got != nil {
		t.Errorf("RankAlternatives = %v, want nil with no exact generic+class peers", got)
	}
}

func TestRankAlternativesWithoutModels(t *testing.T) {
	target := record("TARGET", "GEN1", "CLASS A", 50, 40)
	target.ClinicalEfficacy = "alpha relief"
	peer := record("PEER", "GEN1", "CLASS A", 10, 40)
	peer.ClinicalEfficacy = "alpha relief"

	eng := newTestEngine([]entities.DrugRecord{target, peer}, Deps{})

	if got := eng.RankAlternatives(target, 3); got != nil {
		t.Errorf("RankAlternatives = %v, want nil without topic models", got)
	}
}

func TestRankAlternativesWithoutEfficacyText(t *testing.T) {
	target := record("TARGET", "GEN1", "CLASS A", 50, 40)
	target.ClinicalEfficacy = ""
	peer := record("PEER", "GEN1", "CLASS A", 10, 40)

	nmf, lda := efficacyTopics()
	eng := newTestEngine([]entities.DrugRecord{target, peer}, Deps{NMF: nmf, LDA: lda})

	if got := eng.RankAlternatives(target, 3); got != nil {
		t.Errorf("RankAlternatives = %v, want nil without efficacy text", got)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 0}, []float64{1, 0}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 0}, 0},
		{"length mismatch", []float64{1}, []float64{1, 0}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cosineSimilarity(tt.a, tt.b); got != tt.want {
				t.Errorf("cosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}
