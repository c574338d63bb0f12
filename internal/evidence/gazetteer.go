package evidence

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Place is one gazetteer entry. Places in the same region never conflict.
type Place struct {
	Canonical string
	Region    string
	Aliases   []string
}

// PlaceMatch is a place found in text
type PlaceMatch struct {
	Place Place
	Text  string // The alias as it appeared in the folded text
	Pos   int    // Byte offset in the folded text
}

type alias struct {
	text  string
	place int
	ascii bool
}

// Gazetteer finds place names in text. Multi-word names are matched as a
// whole and take precedence over the shorter names they contain.
type Gazetteer struct {
	places  []Place
	aliases []alias // longest first
}

// NewGazetteer builds a gazetteer from places
func NewGazetteer(places []Place) *Gazetteer {
	g := &Gazetteer{places: places}
	for i, p := range places {
		for _, a := range append([]string{p.Canonical}, p.Aliases...) {
			folded := Fold(a)
			if folded == "" {
				continue
			}
			g.aliases = append(g.aliases, alias{text: folded, place: i, ascii: isASCII(folded)})
		}
	}
	sort.SliceStable(g.aliases, func(i, j int) bool {
		return len(g.aliases[i].text) > len(g.aliases[j].text)
	})
	return g
}

// Fold normalizes text for matching: NFKC, lower case, 臺 → 台
func Fold(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "臺", "台")
}

// Find returns the places mentioned in text, in order of appearance,
// one match per canonical place
func (g *Gazetteer) Find(text string) []PlaceMatch {
	folded := []byte(Fold(text))
	var matches []PlaceMatch
	seen := make(map[int]bool)

	for _, a := range g.aliases {
		start := 0
		for {
			idx := strings.Index(string(folded[start:]), a.text)
			if idx < 0 {
				break
			}
			pos := start + idx
			end := pos + len(a.text)
			start = end
			if a.ascii && !wordBoundary(folded, pos, end) {
				continue
			}
			if !seen[a.place] {
				seen[a.place] = true
				matches = append(matches, PlaceMatch{Place: g.places[a.place], Text: a.text, Pos: pos})
			}
			// Mask the span so shorter aliases inside it do not match
			for i := pos; i < end; i++ {
				folded[i] = 0
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Pos < matches[j].Pos })
	return matches
}

func wordBoundary(b []byte, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRune(b[:start])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(b) {
		r, _ := utf8.DecodeRune(b[end:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// DefaultGazetteer covers Taiwan's cities and counties plus major foreign
// cities and countries
func DefaultGazetteer() *Gazetteer {
	return NewGazetteer(defaultPlaces)
}

var defaultPlaces = []Place{
	{"taiwan", "tw", []string{"台灣", "台湾", "中華民國"}},
	{"taipei", "tw", []string{"台北"}},
	{"new taipei", "tw", []string{"新北"}},
	{"taoyuan", "tw", []string{"桃園"}},
	{"taichung", "tw", []string{"台中"}},
	{"tainan", "tw", []string{"台南"}},
	{"kaohsiung", "tw", []string{"高雄"}},
	{"keelung", "tw", []string{"基隆"}},
	{"hsinchu", "tw", []string{"新竹"}},
	{"miaoli", "tw", []string{"苗栗"}},
	{"changhua", "tw", []string{"彰化"}},
	{"nantou", "tw", []string{"南投"}},
	{"yunlin", "tw", []string{"雲林"}},
	{"chiayi", "tw", []string{"嘉義"}},
	{"pingtung", "tw", []string{"屏東"}},
	{"yilan", "tw", []string{"宜蘭"}},
	{"hualien", "tw", []string{"花蓮"}},
	{"taitung", "tw", []string{"台東"}},
	{"penghu", "tw", []string{"澎湖"}},
	{"kinmen", "tw", []string{"金門"}},
	{"matsu", "tw", []string{"馬祖", "連江"}},

	{"china", "cn", []string{"中國", "中国", "中國大陸", "mainland china"}},
	{"beijing", "cn", []string{"北京"}},
	{"shanghai", "cn", []string{"上海"}},
	{"guangzhou", "cn", []string{"廣州"}},
	{"shenzhen", "cn", []string{"深圳"}},
	{"hong kong", "hk", []string{"香港"}},
	{"macau", "mo", []string{"澳門", "macao"}},
	{"japan", "jp", []string{"日本"}},
	{"tokyo", "jp", []string{"東京"}},
	{"osaka", "jp", []string{"大阪"}},
	{"tohoku", "jp", []string{"東北地方"}},
	{"south korea", "kr", []string{"韓國", "南韓", "korea"}},
	{"seoul", "kr", []string{"首爾"}},
	{"busan", "kr", []string{"釜山"}},
	{"singapore", "sg", []string{"新加坡"}},
	{"united states", "us", []string{"美國", "usa"}},
	{"new york", "us", []string{"紐約"}},
	{"washington", "us", []string{"華盛頓"}},
	{"san francisco", "us", []string{"舊金山"}},
	{"los angeles", "us", []string{"洛杉磯"}},
	{"san diego", "us", []string{"聖地牙哥"}},
	{"united kingdom", "gb", []string{"英國", "britain"}},
	{"london", "gb", []string{"倫敦"}},
	{"france", "fr", []string{"法國"}},
	{"paris", "fr", []string{"巴黎"}},
	{"germany", "de", []string{"德國"}},
	{"berlin", "de", []string{"柏林"}},
	{"thailand", "th", []string{"泰國"}},
	{"bangkok", "th", []string{"曼谷"}},
	{"philippines", "ph", []string{"菲律賓"}},
	{"manila", "ph", []string{"馬尼拉"}},
	{"vietnam", "vn", []string{"越南"}},
	{"hanoi", "vn", []string{"河內"}},
	{"australia", "au", []string{"澳洲"}},
	{"sydney", "au", []string{"雪梨"}},
	{"russia", "ru", []string{"俄羅斯"}},
	{"moscow", "ru", []string{"莫斯科"}},
}
