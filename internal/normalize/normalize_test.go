package normalize

import (
	"sort"
	"strings"
	"testing"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Steelheart", "steelheart"},
		{"Steelheart: A Reckoners Novel", "steelheart"},
		{"Steelheart: The Reckoners Book 1", "steelheart"},
		{"The Way of Kings (The Stormlight Archive, Book 1)", "way of kings"},
		{"Mistborn: The Final Empire", "mistborn"},
		{"Mitosis - A Reckoners Story", "mitosis"},
		{"Be Useful - Sieben einfache Regeln für ein besseres Leben", "be useful"},
		{"Be Useful (German edition)", "be useful"},
		{"Dune (Movie Tie-In Edition)", "dune"},
		{"Atomic Habits - An Easy & Proven Way to Build Good Habits", "atomic habits"},
		{"Harry Potter and the Philosopher’s Stone", "harry potter and the philosophers stone"},
		{"The Ghost Next Door - Goosebumps Series, Book 10", "ghost next door"},
		{"R.L. Stine - Goosebumps - The Haunted Mask II", "haunted mask ii"},
		{"Scars and Stripes\nAn Unapologetically American Story", "scars and stripes"},
		{"\n\nLeading Blank Lines\nsynopsis", "leading blank lines"},
		{"Harry Potter #3", "harry potter"},
		{"Red Rising (Unabridged Version)", "red rising"},
		{"Project Hail Mary", "project hail mary"},
		{"Café Society", "cafe society"},
		{"A Game of Thrones", "game of thrones"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Title(tt.input); got != tt.want {
				t.Errorf("Title(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTitle_SeriesNumberDoesNotJoinWords(t *testing.T) {
	got := Title("Harry Book 2 Potter")
	if got != "harry potter" {
		t.Errorf("Title() = %q, want %q", got, "harry potter")
	}
}

func TestTitle_DashSplitNeedsSubtitle(t *testing.T) {
	// A single-word second part with no subtitle keyword is kept.
	if got := Title("1984 - Orwell"); got != "1984 orwell" {
		t.Errorf("Title() = %q, want %q", got, "1984 orwell")
	}
}

func TestAuthor(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Brandon Sanderson", "brandon sanderson"},
		{"R. L. Stine", "r l stine"},
		{"R.L. Stine", "r l stine"},
		{"J. R. R. Tolkien", "j r r tolkien"},
		{"J.R.R. Tolkien", "j r r tolkien"},
		{"Tolkien, J.R.R.", "j r r tolkien"},
		{"Sanderson, Brandon", "brandon sanderson"},
		{"Martin Luther King Jr.", "martin luther king"},
		{"R. L. Stine/Emily Eiden", "r l stine"},
		{"Robert Louis Stevenson, Marty Ross - adaptation", "robert louis stevenson"},
		{"Chrissie Wellington, Lance Armstrong - foreward", "chrissie wellington"},
		{"Lance Armstrong, Chrissie Wellington", "chrissie wellington"},
		{"Spencer Johnson, Kenneth Blanchard", "spencer johnson"},
		{"Tim S. Grover, Shari Wenk", "tim s grover"},
		{"Douglas Preston, Lincoln Child, Jane Doe", "douglas preston"},
		{"Ken Liu - Translator Baoshu", "baoshu"},
		{"Stephen Fry - narrator", "stephen fry"},
		{"Goosebumps Audiobooks!", ""},
		{"Blackstone Audio", ""},
		{"Unknown Author", ""},
		{"unknown", ""},
		{"Brandon Sanderson", "brandon sanderson"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Author(tt.input); got != tt.want {
				t.Errorf("Author(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIdempotence(t *testing.T) {
	corpus := []string{
		"Steelheart: A Reckoners Novel",
		"The the End",
		"book book 1 1",
		"R.L. Stine - Goosebumps - The Haunted Mask II",
		"Sanderson, Brandon",
		"Smith Jr Jr",
		"A.B.C.D. Person",
		"Spencer Johnson, Kenneth Blanchard",
		"Chrissie Wellington, Lance Armstrong - foreward",
		"Ken Liu - Translator Baoshu",
		"Be Useful - Sieben einfache Regeln für ein besseres Leben",
		"Harry Potter (Illustrated Edition) (Book 1)",
		"  ‘Quoted’ — Title  ",
		"Vol. 2 Vol. 3",
		"",
	}

	for _, s := range corpus {
		if once, twice := Title(s), Title(Title(s)); once != twice {
			t.Errorf("Title not idempotent for %q: %q then %q", s, once, twice)
		}
		if once, twice := Author(s), Author(Author(s)); once != twice {
			t.Errorf("Author not idempotent for %q: %q then %q", s, once, twice)
		}
	}
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestAllAuthors(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{Unknown}},
		{"Brandon Sanderson", []string{"brandon sanderson"}},
		{"Sanderson, Brandon", []string{"brandon sanderson"}},
		{"Spencer Johnson, Kenneth Blanchard", []string{"kenneth blanchard", "spencer johnson"}},
		{"R. L. Stine/Emily Eiden", []string{"emily eiden", "r l stine"}},
		{"Chrissie Wellington, Lance Armstrong - foreward", []string{"chrissie wellington", "lance armstrong"}},
		{"Blackstone Audio", []string{Unknown}},
		{"Unknown Author", []string{Unknown}},
		{"Jo", []string{Unknown}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := sortedSet(AllAuthors(tt.input))
			if strings.Join(got, ";") != strings.Join(tt.want, ";") {
				t.Errorf("AllAuthors(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestOverlap(t *testing.T) {
	n := Default()
	if !n.AuthorsOverlap("Spencer Johnson", "Spencer Johnson, Kenneth Blanchard") {
		t.Error("expected overlap between single and co-authored credit")
	}
	if n.AuthorsOverlap("Brandon Sanderson", "Frank Herbert") {
		t.Error("unexpected overlap between different authors")
	}
	if n.AuthorsOverlap("", "Goosebumps Audiobooks!") {
		t.Error("two unknown credits must not overlap")
	}
	if n.AuthorsOverlap("Unknown Author", "Unknown Author") {
		t.Error("placeholder credits must not overlap")
	}
}

func TestCreditKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Spencer Johnson", "spencer johnson"},
		{"Spencer Johnson, Kenneth Blanchard", "kenneth blanchard & spencer johnson"},
		{"Kenneth Blanchard, Spencer Johnson", "kenneth blanchard & spencer johnson"},
		{"Chrissie Wellington, Lance Armstrong - foreward", "chrissie wellington"},
		{"Lance Armstrong, Chrissie Wellington", "chrissie wellington"},
		{"Robert Louis Stevenson, Marty Ross - adaptation", "robert louis stevenson"},
		{"Sanderson, Brandon", "brandon sanderson"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CreditKey(tt.input); got != tt.want {
				t.Errorf("CreditKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew_ExtraOverrides(t *testing.T) {
	n := New(map[string][]string{"Terry Pratchett": {"Neil Gaiman"}})

	if got := n.Author("Neil Gaiman, Terry Pratchett"); got != "terry pratchett" {
		t.Errorf("Author() with override = %q, want %q", got, "terry pratchett")
	}
	if got := Author("Neil Gaiman, Terry Pratchett"); got != "neil gaiman" {
		t.Errorf("Author() without override = %q, want %q", got, "neil gaiman")
	}
	if got := n.Author("Lance Armstrong, Chrissie Wellington"); got != "chrissie wellington" {
		t.Errorf("default override lost: Author() = %q", got)
	}
}

func TestTrace(t *testing.T) {
	trace := TraceTitle("Steelheart: A Reckoners Novel")
	if len(trace) != len(titleSteps) {
		t.Fatalf("len(TraceTitle) = %d, want %d", len(trace), len(titleSteps))
	}
	if last := trace[len(trace)-1]; last.Output != "steelheart" {
		t.Errorf("final trace output = %q, want %q", last.Output, "steelheart")
	}

	if got := Default().TraceAuthor("R.L. Stine"); got[len(got)-1].Output != "r l stine" {
		t.Errorf("final author trace output = %q", got[len(got)-1].Output)
	}
}
