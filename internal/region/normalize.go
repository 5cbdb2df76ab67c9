package region

import "strings"

// aliases maps normalized spellings seen across the source datasets to
// their canonical display names.
var aliases = map[string]string{
	"aandn islands":                        "Andaman and Nicobar Islands",
	"andaman and nicobar islands islands":  "Andaman and Nicobar Islands",
	"jandk (ut)":                           "Jammu and Kashmir",
	"jammu and kashmir":                    "Jammu and Kashmir",
	"nandk":                                "Jammu and Kashmir",
	"dadra and nagar haveli and daman and diu": "Dadra and Nagar Haveli and Daman and Diu",
	"daman and diu":                            "Dadra and Nagar Haveli and Daman and Diu",
}

// CanonicalName normalizes a region name to the canonical form used across
// datasets and the API: ampersands expanded, whitespace collapsed, known
// aliases resolved, title case otherwise.
func CanonicalName(name string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		return ""
	}

	s = strings.ReplaceAll(s, "&", "and")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ToLower(s)

	if canonical, ok := aliases[s]; ok {
		return canonical
	}

	words := strings.Split(s, " ")
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// IDFor returns the slug identifier for a region name.
func IDFor(name string) string {
	canonical := CanonicalName(name)
	return strings.ReplaceAll(strings.ToLower(canonical), " ", "-")
}
