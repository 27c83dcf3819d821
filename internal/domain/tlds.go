package domain

import (
	"sort"
	"strings"
)

// DefaultTLDs is the selection used when no preference has been saved.
var DefaultTLDs = []string{".com", ".ai", ".co"}

var rawTLDs = []string{
	".com", ".net", ".org", ".info", ".biz", ".io", ".co", ".app", ".dev",
	".ai", ".tech", ".software", ".cloud", ".digital", ".systems", ".data", ".online",
	".site", ".website", ".space", ".pro", ".xyz", ".link", ".click", ".dev",
	".codes", ".tools", ".build", ".network",
	".company", ".business", ".inc", ".llc", ".ltd", ".financial", ".finance", ".money",
	".capital", ".investments", ".holdings", ".ventures", ".marketing", ".solutions",
	".services", ".exchange", ".trading",
	".store", ".shop", ".shopping", ".sale", ".deals", ".market", ".boutique", ".style",
	".fashion", ".clothing", ".shoes", ".jewelry", ".gifts", ".blackfriday",
	".art", ".design", ".studio", ".media", ".graphics", ".gallery", ".photo", ".photography",
	".pics", ".pictures", ".audio", ".video", ".film", ".show", ".tv", ".actor",
	".agency", ".press", ".news", ".blog", ".social", ".live",
	".life", ".style", ".world", ".community", ".group", ".club", ".family", ".fun",
	".cool", ".zone", ".today", ".expert", ".guru", ".ninja", ".monster",
	".cafe", ".bar", ".pub", ".restaurant", ".pizza", ".kitchen", ".recipes", ".coffee",
	".menu", ".wine", ".beer",
	".health", ".healthcare", ".care", ".clinic", ".dental", ".hospital", ".medical",
	".fit", ".fitness", ".yoga", ".diet",
	".house", ".home", ".homes", ".estate", ".properties", ".property", ".realty", ".apartments",
	".rent", ".lease", ".forsale",
	".travel", ".tours", ".holiday", ".vacations", ".flights", ".taxi", ".limo", ".car", ".cars",
	".edu", ".academy", ".college", ".university", ".school", ".study", ".courses", ".institute",
	".foundation", ".org", ".ong",
	".nyc", ".london", ".paris", ".tokyo", ".berlin", ".us", ".uk", ".ca", ".de", ".fr", ".se",
	".aero", ".asia", ".bet", ".bio", ".blue", ".cat", ".ceo", ".charity", ".chat", ".church",
	".city", ".computer", ".consulting", ".contact", ".contractors", ".cool", ".credit",
	".creditcard", ".cricket", ".dance", ".date", ".delivery", ".democrat", ".diamonds",
	".directory", ".doctor", ".dog", ".domains", ".earth", ".email", ".energy", ".engineer",
	".enterprises", ".equipment", ".events", ".exchange", ".fail", ".farm", ".fashion",
	".fish", ".florist", ".football", ".fyi", ".games", ".garden", ".glass", ".global",
	".gold", ".golf", ".guide", ".guitars", ".hockey", ".hosting", ".how", ".immo",
	".industries", ".ink", ".international", ".jetzt", ".jobs", ".land", ".lawyer", ".legal",
	".lighting", ".loan", ".loans", ".lol", ".luxe", ".maison", ".management", ".map",
	".memorial", ".men", ".menu", ".moda", ".mom", ".mortgage", ".movie", ".museum",
	".music", ".one", ".onl", ".page", ".partners", ".parts", ".party", ".pet", ".phone",
	".place", ".plumbing", ".plus", ".poker", ".porn", ".productions", ".promo", ".pub",
	".red", ".rehab", ".report", ".republican", ".rest", ".review", ".reviews", ".rip",
	".rocks", ".run", ".save", ".science", ".security", ".sexy", ".shiksha", ".singles",
	".soccer", ".solar", ".surf", ".surgery", ".tax", ".tattoo", ".team", ".theater", ".tips",
	".tires", ".tours", ".town", ".toys", ".trade", ".training", ".tube", ".vet", ".viajes",
	".villas", ".vision", ".vote", ".voyage", ".watch", ".webcam", ".wiki", ".win", ".work",
	".works", ".wtf", ".zone",
}

var allTLDs = buildUniverse(rawTLDs)

// AllTLDs returns the checkable TLD universe: deduplicated, every entry
// starting with ".", sorted ascending.
func AllTLDs() []string {
	out := make([]string, len(allTLDs))
	copy(out, allTLDs)
	return out
}

// IsKnownTLD reports whether tld is part of the universe.
func IsKnownTLD(tld string) bool {
	idx := sort.SearchStrings(allTLDs, tld)
	return idx < len(allTLDs) && allTLDs[idx] == tld
}

func buildUniverse(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, tld := range raw {
		tld = strings.ToLower(strings.TrimSpace(tld))
		if !strings.HasPrefix(tld, ".") || len(tld) < 2 {
			continue
		}
		if _, ok := seen[tld]; ok {
			continue
		}
		seen[tld] = struct{}{}
		out = append(out, tld)
	}
	sort.Strings(out)
	return out
}
