package core

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// LogKey is the identity of a stream session: one streamer, one date, one
// title. Keys are comparable with ==. Streamer and title are whitespace
// normalized; case is significant.
type LogKey struct {
	Date     string
	Streamer string
	Title    string
}

func NewLogKey(date Date, streamer, title string) LogKey {
	return LogKey{
		Date:     date.String(),
		Streamer: normalizeSpace(streamer),
		Title:    normalizeSpace(title),
	}
}

// ID derives the string identity used in URLs and persisted data.
// The slugs keep it readable; the hash suffix keeps keys whose parts
// contain separators from colliding.
func (k LogKey) ID() string {
	sum := xxhash.Sum64String(k.Date + "\x00" + k.Streamer + "\x00" + k.Title)
	return fmt.Sprintf("%s_%s_%s_%016x", k.Date, slug(k.Streamer), slug(k.Title), sum)
}

func (k LogKey) String() string {
	return k.Date + " " + k.Streamer + " / " + k.Title
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
