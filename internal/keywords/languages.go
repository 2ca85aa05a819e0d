package keywords

import "strings"

// iso6391 is the ISO 639-1 two-letter code list. It is the allow-list used
// to detect which axis of a sheet carries languages.
var iso6391 = toSet(`
aa ab ae af ak am an ar as av ay az ba be bg bh bi bm bn bo br bs ca ce ch
co cr cs cu cv cy da de dv dz ee el en eo es et eu fa ff fi fj fo fr fy ga
gd gl gn gu gv ha he hi ho hr ht hu hy hz ia id ie ig ii ik io is it iu ja
jv ka kg ki kj kk kl km kn ko kr ks ku kv kw ky la lb lg li ln lo lt lu lv
mg mh mi mk ml mn mr ms mt my na nb nd ne ng nl nn no nr nv ny oc oj om or
os pa pi pl ps pt qu rm rn ro ru rw sa sc sd se sg si sk sl sm sn so sq sr
ss st su sv sw ta te tg th ti tk tl tn to tr ts tt tw ty ug uk ur uz ve vi
vo wa wo xh yi yo za zh zu
`)

func toSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, code := range strings.Fields(list) {
		set[code] = true
	}
	return set
}

// IsLanguageCode reports whether s is an ISO 639-1 code, optionally followed
// by a region or script subtag ("pt-BR", "zh_Hant"). Case is ignored.
func IsLanguageCode(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	base, rest, hasRest := strings.Cut(strings.ReplaceAll(s, "_", "-"), "-")
	if !iso6391[base] {
		return false
	}
	if !hasRest {
		return true
	}
	// Region (2 letters or 3 digits) or script (4 letters).
	if n := len(rest); n < 2 || n > 4 {
		return false
	}
	for _, r := range rest {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
