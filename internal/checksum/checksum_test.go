package checksum

import "testing"

func TestSum(t *testing.T) {
	// sha256("")
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != empty {
		t.Errorf("Sum(nil) = %s", got)
	}
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Error("different inputs produced the same digest")
	}
}

func TestETag(t *testing.T) {
	data := []byte("# Hello")
	got := ETag(data)
	if want := `"` + Sum(data) + `"`; got != want {
		t.Errorf("ETag = %s, want %s", got, want)
	}
}
