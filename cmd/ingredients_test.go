package cmd

import (
	"context"
	"testing"

	"github.com/vavi-recipes/vavi/internal/catalog"
	"github.com/vavi-recipes/vavi/internal/embeddings"
)

func TestSimilarIngredients(t *testing.T) {
	cat, err := catalog.Load()
	if err != nil {
		t.Fatal(err)
	}
	opts := embeddings.DefaultTrainOptions()
	opts.Dim = 16
	opts.Epochs = 1
	space, err := embeddings.Train(context.Background(), cat.Corpus(), opts)
	if err != nil {
		t.Fatal(err)
	}

	got, ok := similarIngredients(space, "garlic", 5)
	if !ok {
		t.Fatal("garlic should be known")
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 neighbors, got %d", len(got))
	}
	for i, s := range got {
		if s.token == "garlic" {
			t.Fatal("an ingredient is not its own neighbor")
		}
		if i > 0 && s.similarity > got[i-1].similarity {
			t.Fatalf("not sorted: %+v", got)
		}
	}

	if _, ok := similarIngredients(space, "unobtainium", 5); ok {
		t.Fatal("unknown ingredient should report false")
	}
	if all, _ := similarIngredients(space, "garlic", 1<<20); len(all) != space.Len()-1 {
		t.Fatalf("n should be capped at vocabulary size - 1, got %d", len(all))
	}
}
