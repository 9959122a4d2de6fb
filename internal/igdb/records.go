package igdb

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is an IGDB record cacheable by its numeric id.
type Record interface {
	RecordID() int64
}

// normalizable records rewrite fields after a fetch, before the cache write.
type normalizable interface {
	normalize()
}

// Timestamp decodes the IGDB wire format for dates: unix seconds.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(t.Unix(), 10)), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	seconds, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return fmt.Errorf("parse unix timestamp %q: %w", data, err)
	}
	t.Time = time.Unix(seconds, 0).UTC()
	return nil
}

// Game is an IGDB games record.
type Game struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Slug             string     `json:"slug"`
	URL              string     `json:"url"`
	Summary          string     `json:"summary,omitempty"`
	FirstReleaseDate *Timestamp `json:"first_release_date,omitempty"`
	Genres           []int64    `json:"genres,omitempty"`
	Cover            int64      `json:"cover,omitempty"`
}

func (g Game) RecordID() int64 { return g.ID }

// Genre is an IGDB genres record.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (g Genre) RecordID() int64 { return g.ID }

// Cover is an IGDB covers record.
type Cover struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

func (c Cover) RecordID() int64 { return c.ID }

// normalize rewrites the protocol-relative thumbnail URL the API returns into
// an absolute medium-resolution one suitable for direct display.
func (c *Cover) normalize() {
	c.URL = strings.Replace(c.URL, "/t_thumb/", "/t_cover_med/", 1)
	if strings.HasPrefix(c.URL, "//") {
		c.URL = "https:" + c.URL
	}
}
