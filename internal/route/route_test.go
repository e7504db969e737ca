package route

import "testing"

func TestParse_Home(t *testing.T) {
	for _, p := range []string{"", "/", "  /  "} {
		if got := Parse(p); got.Kind != KindHome {
			t.Errorf("Parse(%q).Kind = %v, want home", p, got.Kind)
		}
	}
}

func TestParse_Section(t *testing.T) {
	got := Parse("/Project/")
	if got.Kind != KindSection || got.Section != "project" {
		t.Errorf("Parse = %+v, want section project", got)
	}
}

func TestParse_Post(t *testing.T) {
	got := Parse("/study/12")
	if got.Kind != KindPost || got.Section != "study" || got.ID != "12" {
		t.Errorf("Parse = %+v, want post study/12", got)
	}
}

func TestParse_PostKeepsRawID(t *testing.T) {
	got := Parse("/devlife/abc")
	if got.Kind != KindPost || got.ID != "abc" {
		t.Errorf("Parse = %+v, want raw id abc", got)
	}
}

func TestBuildPaths(t *testing.T) {
	if got := PostPath("project", 4); got != "/project/4" {
		t.Errorf("PostPath = %q", got)
	}
	if got := SectionPath("devlife"); got != "/devlife" {
		t.Errorf("SectionPath = %q", got)
	}
	if got := Parse(PostPath("study", 7)); got.Section != "study" || got.ID != "7" {
		t.Errorf("round trip = %+v", got)
	}
}

func TestParseID(t *testing.T) {
	cases := map[string]struct {
		id int
		ok bool
	}{
		"4":                    {4, true},
		" 12 ":                 {12, true},
		"04":                   {4, true},
		"-3":                   {0, false},
		"+4":                   {0, false},
		"4 4":                  {0, false},
		"99999999999999999999": {0, false},
		"4abc":                 {0, false},
		"abc":                  {0, false},
		"":                     {0, false},
		"1.5":                  {0, false},
	}
	for in, want := range cases {
		id, ok := ParseID(in)
		if ok != want.ok || id != want.id {
			t.Errorf("ParseID(%q) = (%d, %v), want (%d, %v)", in, id, ok, want.id, want.ok)
		}
	}
}
