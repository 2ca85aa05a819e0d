package sentiment

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidVideoURL means no YouTube video id could be found in a URL.
var ErrInvalidVideoURL = errors.New("not a YouTube video URL")

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// VideoID extracts the video id from watch, youtu.be, shorts, embed and live
// URLs. A bare 11-character id is accepted as is.
func VideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if videoIDPattern.MatchString(raw) {
		return raw, nil
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidVideoURL
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	path := strings.Trim(u.Path, "/")

	var id string
	switch host {
	case "youtu.be":
		id, _, _ = strings.Cut(path, "/")
	case "youtube.com", "music.youtube.com", "youtube-nocookie.com":
		if path == "watch" {
			id = u.Query().Get("v")
			break
		}
		prefix, rest, ok := strings.Cut(path, "/")
		if !ok {
			break
		}
		switch prefix {
		case "shorts", "embed", "live", "v":
			id, _, _ = strings.Cut(rest, "/")
		}
	}

	if !videoIDPattern.MatchString(id) {
		return "", ErrInvalidVideoURL
	}
	return id, nil
}
