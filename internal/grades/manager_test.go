package grades

import (
	"errors"
	"testing"

	"github.com/wzreports/zeugnis/internal/catalog"
	"github.com/wzreports/zeugnis/internal/diag"
	"github.com/wzreports/zeugnis/internal/scale"
)

func testCatalog(t *testing.T, class catalog.ClassLabel, entries []catalog.Entry) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(class, entries)
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

func all(sid, name string) catalog.Entry {
	return catalog.Entry{SID: sid, Name: name, Streams: []string{catalog.AllStreams}}
}

func TestKindFor(t *testing.T) {
	tests := []struct {
		class  catalog.ClassLabel
		stream string
		term   string
		want   scale.Kind
	}{
		{"13", "Gym", "A", scale.AbiturFinal},
		{"13", "Gym", "1", scale.Qualiphase},
		{"12.G", "Gym", "2", scale.Qualiphase},
		{"12", "RS", "2", scale.Standard},
		{"11", "Gym", "2", scale.Standard},
		{"10", "HS", "1", scale.Standard},
	}
	for _, tt := range tests {
		if got := KindFor(tt.class, tt.stream, tt.term); got != tt.want {
			t.Errorf("KindFor(%q, %q, %q) = %v, want %v", tt.class, tt.stream, tt.term, got, tt.want)
		}
	}
}

func TestBuildCompositeAverage(t *testing.T) {
	entries := []catalog.Entry{
		{SID: "Ku", Name: "Kunst", ComponentOf: "KuMu", Streams: []string{"*"}},
		{SID: "Mu", Name: "Musik", ComponentOf: "KuMu", Streams: []string{"*"}},
		{SID: "Ha", Name: "Handarbeit", ComponentOf: "KuMu", Streams: []string{"*"}},
		{SID: "KuMu", Name: "Künstlerischer Unterricht", Composite: true, Streams: []string{"*"}},
	}
	cat := testCatalog(t, "10", entries)
	rep := diag.NewReport()
	set, err := Build(scale.Standard, cat, "RS", "2",
		map[string]string{"Ku": "4", "Mu": "5", "Ha": "6"}, rep)
	if err != nil {
		t.Fatal(err)
	}
	// Mean 5.0 exactly, rounded half away from zero.
	if d, _ := set.Display("KuMu"); d != "5" {
		t.Errorf("composite display = %q, want %q", d, "5")
	}
	if v, ok := set.Numeric("KuMu"); !ok || v != 5 {
		t.Errorf("composite numeric = %d, %v", v, ok)
	}
	if got := set.Components("KuMu"); len(got) != 3 {
		t.Errorf("components = %v", got)
	}
}

func TestBuildCompositeWithoutComponents(t *testing.T) {
	entries := []catalog.Entry{
		{SID: "Ku", Name: "Kunst", ComponentOf: "KuMu", Optional: true, Streams: []string{"*"}},
		{SID: "KuMu", Name: "Künstlerischer Unterricht", Composite: true, Optional: true, Streams: []string{"*"}},
	}
	cat := testCatalog(t, "10", entries)
	set, err := Build(scale.Standard, cat, "RS", "2", map[string]string{"Ku": "/"}, diag.NewReport())
	if err != nil {
		t.Fatal(err)
	}
	if d, _ := set.Display("KuMu"); d != scale.NoGrade {
		t.Errorf("empty composite display = %q, want %q", d, scale.NoGrade)
	}
}

func TestBuildMissingCompulsoryGrade(t *testing.T) {
	cat := testCatalog(t, "10", []catalog.Entry{all("De", "Deutsch"), all("Ma", "Mathematik")})
	_, err := Build(scale.Standard, cat, "RS", "2", map[string]string{"De": "3"}, diag.NewReport())
	var gErr *Error
	if !errors.As(err, &gErr) {
		t.Fatalf("expected grade error, got %v", err)
	}
	if gErr.Message != "Keine Note im Fach Ma" {
		t.Errorf("message = %q", gErr.Message)
	}
}

func TestBuildUnchosenCompulsory(t *testing.T) {
	cat := testCatalog(t, "10", []catalog.Entry{all("De", "Deutsch")})
	_, err := Build(scale.Standard, cat, "RS", "2", map[string]string{"De": "/"}, diag.NewReport())
	if err == nil {
		t.Fatal("compulsory subject must not be unchosen")
	}
}

func TestBuildOptionalAbsentTreatedAsUnchosen(t *testing.T) {
	entries := []catalog.Entry{
		all("De", "Deutsch"),
		{SID: "Fr", Name: "Französisch", Optional: true, Streams: []string{"*"}},
	}
	cat := testCatalog(t, "10", entries)
	set, err := Build(scale.Standard, cat, "RS", "2", map[string]string{"De": "2"}, diag.NewReport())
	if err != nil {
		t.Fatal(err)
	}
	if d, _ := set.Display("Fr"); d != scale.Unchosen {
		t.Errorf("optional absent display = %q, want %q", d, scale.Unchosen)
	}
	if _, ok := set.Numeric("Fr"); ok {
		t.Error("unchosen subject must not have a numeric grade")
	}
}

func TestBuildBadGradeDegrades(t *testing.T) {
	cat := testCatalog(t, "10", []catalog.Entry{all("De", "Deutsch"), all("Ma", "Mathematik")})
	rep := diag.NewReport()
	set, err := Build(scale.Standard, cat, "RS", "2",
		map[string]string{"De": "7", "Ma": "2"}, rep)
	if err != nil {
		t.Fatalf("bad grade must not abort the build: %v", err)
	}
	if len(set.BadGrades) != 1 || set.BadGrades[0].SID != "De" {
		t.Errorf("BadGrades = %+v", set.BadGrades)
	}
	if !rep.HasErrors() {
		t.Error("bad grade should be reported")
	}
	if d, _ := set.Display("De"); d != "" {
		t.Errorf("bad grade display = %q, want empty", d)
	}
	if set.Print("De") != "?" {
		t.Errorf("bad grade print = %q, want ?", set.Print("De"))
	}
}

func TestBuildUnusedGrades(t *testing.T) {
	cat := testCatalog(t, "10", []catalog.Entry{all("De", "Deutsch")})
	set, err := Build(scale.Standard, cat, "RS", "2",
		map[string]string{"De": "2", "Xy": "1"}, diag.NewReport())
	if err != nil {
		t.Fatal(err)
	}
	if set.Unused["Xy"] != "1" {
		t.Errorf("Unused = %v", set.Unused)
	}
}

func TestBuildQualiphaseZeroPads(t *testing.T) {
	entries := []catalog.Entry{
		{SID: "Ku", Name: "Kunst", ComponentOf: "KuMu", Streams: []string{"*"}},
		{SID: "Mu", Name: "Musik", ComponentOf: "KuMu", Streams: []string{"*"}},
		{SID: "KuMu", Name: "Künstlerischer Unterricht", Composite: true, Streams: []string{"*"}},
	}
	cat := testCatalog(t, "12.G", entries)
	set, err := Build(scale.Qualiphase, cat, "Gym", "1",
		map[string]string{"Ku": "08", "Mu": "09"}, diag.NewReport())
	if err != nil {
		t.Fatal(err)
	}
	// Mean 8.5 rounds to 9, padded to two digits on the points scale.
	if d, _ := set.Display("KuMu"); d != "09" {
		t.Errorf("composite display = %q, want %q", d, "09")
	}
}

func TestBuildStreamFiltering(t *testing.T) {
	entries := []catalog.Entry{
		all("De", "Deutsch"),
		{SID: "La", Name: "Latein", Streams: []string{catalog.StreamGym}},
	}
	cat := testCatalog(t, "11", entries)
	// An RS pupil does not need a Latin grade.
	set, err := Build(scale.Standard, cat, "RS", "2", map[string]string{"De": "2"}, diag.NewReport())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := set.Display("La"); ok {
		t.Error("stream-foreign subject must not get an entry")
	}
}
