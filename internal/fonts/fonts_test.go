package fonts

import "testing"

func TestFace(t *testing.T) {
	for _, w := range []Weight{Regular, Bold} {
		f, err := Face(w, 24, "")
		if err != nil {
			t.Fatalf("Face(%d) error = %v", w, err)
		}
		if f == nil {
			t.Fatalf("Face(%d) = nil", w)
		}
		if adv := f.Advance("Hello"); adv <= 0 {
			t.Errorf("Advance(Hello) = %v, want > 0", adv)
		}
	}
}

func TestSourceShared(t *testing.T) {
	a, err := Source(Regular)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Source(Regular)
	if a != b {
		t.Error("Source(Regular) returned different sources")
	}
}

func TestLanguage(t *testing.T) {
	tests := map[string]string{
		"":      "en",
		"en_US": "en-us",
		"DE":    "de",
	}
	for in, want := range tests {
		if got := Language(in); got != want {
			t.Errorf("Language(%q) = %q, want %q", in, got, want)
		}
	}
}
