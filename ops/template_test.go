package ops

import (
	"testing"

	"github.com/gogpu/recipe"
)

func TestResolve(t *testing.T) {
	rc := recipe.NewContext(nil, "IMG_0042.jpg")
	rc.Metadata["city"] = "new york"
	rc.Metadata["Date_Time_Original"] = "2023:07:04 18:05:09"
	rc.Metadata["ISO"] = 400.0

	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"{{filename}}", "IMG_0042.jpg"},
		{"Shot in {{city::TitleCase}}", "Shot in New York"},
		{"{{city::UpperCase}}!", "NEW YORK!"},
		{"{{city::lowercase}}", "new york"},
		{"{{Date_Time_Original:dateTime::YYYY-MM-DD}}", "2023-07-04"},
		{"{{Date_Time_Original:dateTime::DD/MM/YY HH:mm:ss}}", "04/07/23 18:05:09"},
		{"ISO {{ISO}}", "ISO 400"},
		{"{{missing}} stays", "{{missing}} stays"},
		{"{{city}} and {{filename}}", "new york and IMG_0042.jpg"},
	}
	for _, tt := range tests {
		if got := Resolve(tt.in, rc); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveUnparsableDate(t *testing.T) {
	rc := recipe.NewContext(nil, "x.jpg")
	rc.Metadata["when"] = "sometime"
	if got := Resolve("{{when:dateTime::YYYY}}", rc); got != "sometime" {
		t.Errorf("Resolve() = %q, want the raw value", got)
	}
}
