package sanitize

import "testing"

func TestFileNameStripsDirectoriesAndMarkup(t *testing.T) {
	cases := map[string]string{
		"leads.xlsx":                  "leads.xlsx",
		"C:\\Users\\kim\\고객목록.xlsx": "고객목록.xlsx",
		"../../etc/<b>passwd</b>.csv": "passwd.csv",
		"":                            "",
	}
	for in, want := range cases {
		if got := FileName(in); got != want {
			t.Fatalf("FileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestObjectNameReplacesUnsafeCharacters(t *testing.T) {
	if got := ObjectName("고객 목록 (최종).xlsx"); got != "고객_목록_최종_.xlsx" {
		t.Fatalf("unexpected object name %q", got)
	}
	if got := ObjectName("///"); got != "upload" {
		t.Fatalf("expected fallback name, got %q", got)
	}
}
