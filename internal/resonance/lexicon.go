package resonance

// The scoring lexicons are fixed. Changing a list changes every score
// downstream, so stored vectors would no longer match re-analysis of
// their own text; additions belong in a new signature version.

var emotionalWords = wordSet(
	"love", "hate", "fear", "joy", "anger", "sorrow", "hope",
	"despair", "passion", "grief", "rage", "bliss", "terror",
	"longing", "wonder", "anguish", "delight", "dread", "ecstasy",
	"tender", "ache", "fury", "yearning", "lonely",
)

var intensifierWords = wordSet(
	"very", "extremely", "deeply", "utterly", "absolutely",
	"completely", "intensely", "profoundly", "overwhelmingly",
	"fiercely", "truly", "so",
)

// comparisonWords is the closed set of figurative-language signals.
var comparisonWords = wordSet(
	"like", "as", "seems", "appears", "resembles",
)

var abstractWords = wordSet(
	"truth", "beauty", "justice", "freedom", "soul", "spirit",
	"consciousness", "infinity", "essence", "meaning", "existence",
	"eternity", "void", "harmony", "chaos", "destiny", "silence",
)

var timeWords = wordSet(
	"now", "then", "when", "while", "yesterday", "today", "tomorrow",
	"before", "after", "until", "during", "moment", "forever",
	"never", "always", "past", "present", "future", "soon",
)

var transitionWords = wordSet(
	"however", "therefore", "meanwhile", "suddenly", "finally",
	"moreover", "furthermore", "nevertheless", "consequently",
	"afterwards", "initially", "ultimately",
)

var themeGroups = []struct {
	label string
	words map[string]struct{}
}{
	{"nature", wordSet("tree", "river", "mountain", "ocean", "sky", "earth", "wind", "rain", "forest", "sea", "moon", "sun", "star", "stone", "leaf")},
	{"connection", wordSet("love", "heart", "together", "embrace", "touch", "bond", "friend", "beloved", "hand")},
	{"loss", wordSet("loss", "lost", "gone", "missing", "empty", "absence", "goodbye", "fade", "mourn")},
	{"time", wordSet("time", "memory", "past", "future", "moment", "remember", "forgotten", "clock", "age")},
	{"identity", wordSet("self", "myself", "identity", "mirror", "within", "becoming", "soul", "name")},
	{"mystery", wordSet("unknown", "mystery", "secret", "hidden", "shadow", "dream", "strange", "veil")},
}

// fallbackTheme keeps the signature grammatical when no theme group
// matches.
const fallbackTheme = "presence"

// moodGroups are checked in order; the first group with any match
// supplies the mood label.
var moodGroups = []struct {
	label string
	words map[string]struct{}
}{
	{"luminous", wordSet("joy", "bright", "light", "laugh", "hope", "warm", "shine")},
	{"melancholic", wordSet("sad", "loss", "grief", "tear", "lonely", "ache", "sorrow")},
	{"turbulent", wordSet("anger", "storm", "rage", "fight", "burn", "break", "fury")},
	{"serene", wordSet("calm", "peace", "quiet", "still", "gentle", "soft")},
	{"yearning", wordSet("want", "wish", "long", "desire", "dream", "reach")},
}

const defaultMood = "neutral"

var archetypes = [10]string{
	"Seeker", "Oracle", "Wanderer", "Architect", "Dreamer",
	"Guardian", "Alchemist", "Witness", "Weaver", "Catalyst",
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
