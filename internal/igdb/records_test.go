package igdb

import (
	"encoding/json"
	"testing"
	"time"
)

func TestGameDecodesUnixReleaseDate(t *testing.T) {
	raw := `{"id":71,"name":"Portal","slug":"portal","url":"https://www.igdb.com/games/portal","first_release_date":1191970800,"genres":[2,8],"cover":101}`

	var game Game
	if err := json.Unmarshal([]byte(raw), &game); err != nil {
		t.Fatalf("unmarshal game: %v", err)
	}
	if game.FirstReleaseDate == nil {
		t.Fatal("expected release date")
	}
	want := time.Unix(1191970800, 0).UTC()
	if !game.FirstReleaseDate.Equal(want) {
		t.Fatalf("expected release date %v, got %v", want, game.FirstReleaseDate.Time)
	}
	if len(game.Genres) != 2 || game.Cover != 101 {
		t.Fatalf("unexpected decode: %+v", game)
	}
}

func TestGameOmitsAbsentReleaseDate(t *testing.T) {
	var game Game
	if err := json.Unmarshal([]byte(`{"id":1,"name":"X","slug":"x","url":"u"}`), &game); err != nil {
		t.Fatalf("unmarshal game: %v", err)
	}
	if game.FirstReleaseDate != nil {
		t.Fatalf("expected nil release date, got %v", game.FirstReleaseDate)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := &Timestamp{Time: time.Unix(1518393600, 0).UTC()}
	game := Game{ID: 5, Name: "Celeste", Slug: "celeste", URL: "u", FirstReleaseDate: ts}

	payload, err := json.Marshal(game)
	if err != nil {
		t.Fatalf("marshal game: %v", err)
	}

	var decoded Game
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal game: %v", err)
	}
	if decoded.FirstReleaseDate == nil || !decoded.FirstReleaseDate.Equal(ts.Time) {
		t.Fatalf("expected release date %v, got %+v", ts.Time, decoded.FirstReleaseDate)
	}
}

func TestTimestampRejectsNonNumeric(t *testing.T) {
	var ts Timestamp
	if err := ts.UnmarshalJSON([]byte(`"2007-10-09"`)); err == nil {
		t.Fatal("expected error for non-numeric timestamp")
	}
}

func TestCoverNormalizeRewritesURL(t *testing.T) {
	cover := Cover{ID: 3, URL: "//images.example/t_thumb/abc.jpg"}
	cover.normalize()
	if cover.URL != "https://images.example/t_cover_med/abc.jpg" {
		t.Fatalf("unexpected normalized URL: %q", cover.URL)
	}
}

func TestCoverNormalizeLeavesAbsoluteURLs(t *testing.T) {
	cover := Cover{ID: 3, URL: "https://images.example/t_cover_med/abc.jpg"}
	cover.normalize()
	if cover.URL != "https://images.example/t_cover_med/abc.jpg" {
		t.Fatalf("unexpected URL: %q", cover.URL)
	}
}
