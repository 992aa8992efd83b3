package match

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello world"},
		{"  PSV   wint met 3-0 ", "psv wint met 3 0"},
		{"Zelda: Tears of the Kingdom", "zelda tears of the kingdom"},
		{"#101", "101"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitlesMatchExact(t *testing.T) {
	if !TitlesMatch("Game Kast #42", "game kast 42") {
		t.Error("expected match after normalization")
	}
}

func TestTitlesMatchContainment(t *testing.T) {
	if !TitlesMatch("Game Kast Aflevering 12", "LIVE: Game Kast Aflevering 12 - met gasten") {
		t.Error("expected containment match")
	}
}

func TestTitlesMatchEpisodeNumber(t *testing.T) {
	// Episode number pairs even when the rest of the words differ.
	if !TitlesMatch("Podcast #101: Big News", "EP101 - Big News Recap") {
		t.Error("expected numeric-token match for #101 vs EP101")
	}
	if TitlesMatch("Podcast #101: Big News", "EP102 - Other Topic Entirely") {
		t.Error("expected no match for different episode numbers")
	}
}

func TestTitlesMatchOverlap(t *testing.T) {
	if !TitlesMatch("Nintendo Direct aangekondigd voor donderdag", "Nintendo Direct donderdag aangekondigd om 23:00") {
		t.Error("expected overlap match")
	}
	if TitlesMatch("Mario Kart review", "Silksong eindelijk uitgebracht") {
		t.Error("expected no match for unrelated titles")
	}
}

func TestTitlesMatchEmpty(t *testing.T) {
	if TitlesMatch("", "anything") {
		t.Error("expected no match for empty title")
	}
	if TitlesMatch("!!!", "???") {
		t.Error("expected no match when nothing survives normalization")
	}
}

func TestSimilarTitlesDuplicateStory(t *testing.T) {
	// The same match from two feeds, phrased differently.
	if !SimilarTitles("PSV wint met 3-0 van Ajax", "PSV verslaat Ajax met 3-0") {
		t.Error("expected rephrased duplicate to match")
	}
}

func TestSimilarTitlesDistinctStories(t *testing.T) {
	tests := [][2]string{
		{"Mario Kart 9 aangekondigd", "Zelda remake in ontwikkeling"},
		{"Sony verhoogt de prijs van de PS5", "Microsoft kondigt nieuwe Xbox-bundel aan"},
	}
	for _, tt := range tests {
		if SimilarTitles(tt[0], tt[1]) {
			t.Errorf("expected %q and %q to stay distinct", tt[0], tt[1])
		}
	}
}

func TestSimilarTitlesImportantTokenRule(t *testing.T) {
	// Low Jaccard because of extra words, but the long tokens of the
	// shorter title all appear in the other.
	a := "Hollow Knight Silksong releasedatum bekend"
	b := "Eindelijk: de releasedatum van Hollow Knight Silksong is bekend en fans reageren massaal"
	if !SimilarTitles(a, b) {
		t.Error("expected important-token overlap to match")
	}
}

func TestSimilarTitlesSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"PSV wint met 3-0 van Ajax", "PSV verslaat Ajax met 3-0"},
		{"Mario Kart 9 aangekondigd", "Zelda remake in ontwikkeling"},
		{"Silksong releasedatum bekend", "Silksong releasedatum eindelijk bekend gemaakt"},
		{"a b c", "c b a"},
	}
	for _, p := range pairs {
		if SimilarTitles(p[0], p[1]) != SimilarTitles(p[1], p[0]) {
			t.Errorf("SimilarTitles not symmetric for %q / %q", p[0], p[1])
		}
	}
}

func TestEpisodeNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"Podcast #101: Big News", "101", true},
		{"EP101 - Recap", "101", true},
		{"Aflevering #007", "7", true},
		{"No numbers here", "", false},
	}
	for _, tt := range tests {
		got, ok := episodeNumber(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("episodeNumber(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
