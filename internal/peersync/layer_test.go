package peersync

import "testing"

func TestParseLayerKind(t *testing.T) {
	for _, s := range []string{"canonical", "embedding", "index-meta", "index-data"} {
		if _, err := ParseLayerKind(s); err != nil {
			t.Errorf("ParseLayerKind(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseLayerKind("l4"); err == nil {
		t.Error("ParseLayerKind accepted an unknown kind")
	}
}

func TestLayerSet(t *testing.T) {
	t.Run("set and get", func(t *testing.T) {
		s := NewLayerSet()
		layer := NewLayer(LayerCanonical, HashContent([]byte("data")), 1024)
		s.Set(layer)

		got, ok := s.Get(LayerCanonical)
		if !ok {
			t.Fatal("Get returned not found")
		}
		if got.Size != 1024 || !got.Hash.Equal(layer.Hash) {
			t.Errorf("Get = %+v, want %+v", got, layer)
		}
		if _, ok := s.Get(LayerEmbedding); ok {
			t.Error("Get found an absent kind")
		}
	})

	t.Run("set replaces", func(t *testing.T) {
		s := NewLayerSet()
		s.Set(NewLayer(LayerCanonical, HashContent([]byte("v1")), 10))
		s.Set(NewLayer(LayerCanonical, HashContent([]byte("v2")), 20))

		if s.Len() != 1 {
			t.Errorf("Len() = %d, want 1", s.Len())
		}
		got, _ := s.Get(LayerCanonical)
		if got.Size != 20 {
			t.Errorf("Size = %d, want 20", got.Size)
		}
	})

	t.Run("kinds in canonical order", func(t *testing.T) {
		s := NewLayerSet()
		s.Set(NewLayer(LayerIndexData, ContentHash{}, 1))
		s.Set(NewLayer(LayerCanonical, ContentHash{}, 1))
		s.Set(NewLayer(LayerEmbedding, ContentHash{}, 1))

		kinds := s.Kinds()
		want := []LayerKind{LayerCanonical, LayerEmbedding, LayerIndexData}
		if len(kinds) != len(want) {
			t.Fatalf("Kinds() = %v", kinds)
		}
		for i := range want {
			if kinds[i] != want[i] {
				t.Errorf("Kinds()[%d] = %s, want %s", i, kinds[i], want[i])
			}
		}
	})

	t.Run("total size", func(t *testing.T) {
		s := NewLayerSet()
		s.Set(NewLayer(LayerCanonical, ContentHash{}, 100))
		s.Set(NewLayer(LayerEmbedding, ContentHash{}, 200))

		if s.TotalSize() != 300 {
			t.Errorf("TotalSize() = %d, want 300", s.TotalSize())
		}
	})
}

func TestLayerDiff(t *testing.T) {
	t.Run("empty sets", func(t *testing.T) {
		if d := NewLayerSet().Diff(NewLayerSet()); !d.Empty() {
			t.Errorf("Diff = %+v, want empty", d)
		}
	})

	t.Run("added removed changed", func(t *testing.T) {
		old := NewLayerSet()
		old.Set(NewLayer(LayerCanonical, HashContent([]byte("v1")), 10))
		old.Set(NewLayer(LayerEmbedding, HashContent([]byte("emb")), 20))

		cur := NewLayerSet()
		cur.Set(NewLayer(LayerCanonical, HashContent([]byte("v2")), 12))
		cur.Set(NewLayer(LayerIndexData, HashContent([]byte("idx")), 30))

		d := cur.Diff(old)
		if len(d.Added) != 1 || d.Added[0] != LayerIndexData {
			t.Errorf("Added = %v", d.Added)
		}
		if len(d.Removed) != 1 || d.Removed[0] != LayerEmbedding {
			t.Errorf("Removed = %v", d.Removed)
		}
		if len(d.Changed) != 1 || d.Changed[0] != LayerCanonical {
			t.Errorf("Changed = %v", d.Changed)
		}
		if d.Empty() {
			t.Error("Empty() = true")
		}
	})

	t.Run("identical hashes are unchanged", func(t *testing.T) {
		h := HashContent([]byte("same"))
		old := NewLayerSet()
		old.Set(NewLayer(LayerCanonical, h, 10))
		cur := NewLayerSet()
		cur.Set(NewLayer(LayerCanonical, h, 10))

		if d := cur.Diff(old); !d.Empty() {
			t.Errorf("Diff = %+v, want empty", d)
		}
	})
}
