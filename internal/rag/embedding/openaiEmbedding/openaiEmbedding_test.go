package openaiEmbedding

import "testing"

func TestFirstVector(t *testing.T) {
	if _, err := firstVector(nil); err == nil {
		t.Error("an empty embedding response must error, not panic")
	}

	want := []float32{0.1, 0.2}
	got, err := firstVector([][]float32{want})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != want[0] {
		t.Errorf("wrong vector returned: %v", got)
	}
}
