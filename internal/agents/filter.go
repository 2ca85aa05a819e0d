package agents

import (
	"strings"
	"unicode"

	"github.com/Saul-Punybz/radar/internal/models"
)

// isNoise reports whether a result is adult content, a bare homepage, or
// pirate streaming spam. Such results are dropped before they reach the
// store.
func isNoise(r models.SearchResult) bool {
	if isGenericHomepage(r.Link) {
		return true
	}
	lower := strings.ToLower(r.Content + " " + r.Link)
	for _, pat := range nsfwPatterns {
		if strings.Contains(lower, pat) {
			return true
		}
	}
	for _, pat := range spamPatterns {
		if strings.Contains(lower, pat) {
			return true
		}
	}
	for _, word := range strings.FieldsFunc(lower, isWordBreak) {
		if nsfwWords[word] {
			return true
		}
	}
	return false
}

func isWordBreak(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}

// isGenericHomepage detects site front pages with no specific path.
func isGenericHomepage(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, prefix := range []string{"https://", "http://", "www."} {
		lower = strings.TrimPrefix(lower, prefix)
	}
	if lower == "" {
		return true
	}
	parts := strings.SplitN(lower, "/", 2)
	return len(parts) < 2 || parts[1] == ""
}

// nsfwPatterns catch pornographic and adult content.
var nsfwPatterns = []string{
	"onlyfans", "porn", "nsfw", "xxx", "nude", "nudes", "leaks",
	"fansly", "chaturbate", "hentai", "rule34",
	"افلام اباحية",
}

// nsfwWords are short Arabic terms that occur inside ordinary names
// (مونيكا, دومينيك), so they only match as whole words.
var nsfwWords = map[string]bool{
	"سكس": true,
	"نيك": true,
}

// spamPatterns catch pirate streaming, betting and giveaway spam that
// piggybacks on popular series names.
var spamPatterns = []string{
	"free v-bucks", "free robux", "crypto pump",
	"watch free hd", "full movie free", "123movies", "fmovies",
	"telegram.me/joinchat", "t.me/+",
	"1xbet", "melbet",
	"مشاهدة مجانا بدون اعلانات", "تحميل مباشر",
}
