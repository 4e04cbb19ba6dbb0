package domain

import "strings"

// Language is one entry of the supported-language catalog.
type Language struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// LanguageCatalog is the fixed, ordered set of languages offered for translation.
type LanguageCatalog []Language

// DefaultLanguages returns the 20 supported languages in display order.
func DefaultLanguages() LanguageCatalog {
	return LanguageCatalog{
		{Name: "English", Code: "en"},
		{Name: "Spanish", Code: "es"},
		{Name: "French", Code: "fr"},
		{Name: "German", Code: "de"},
		{Name: "Italian", Code: "it"},
		{Name: "Portuguese", Code: "pt"},
		{Name: "Russian", Code: "ru"},
		{Name: "Chinese", Code: "zh"},
		{Name: "Japanese", Code: "ja"},
		{Name: "Korean", Code: "ko"},
		{Name: "Arabic", Code: "ar"},
		{Name: "Hindi", Code: "hi"},
		{Name: "Dutch", Code: "nl"},
		{Name: "Swedish", Code: "sv"},
		{Name: "Norwegian", Code: "no"},
		{Name: "Danish", Code: "da"},
		{Name: "Finnish", Code: "fi"},
		{Name: "Polish", Code: "pl"},
		{Name: "Turkish", Code: "tr"},
		{Name: "Greek", Code: "el"},
	}
}

// Lookup finds a language by display name or code, ignoring case.
func (c LanguageCatalog) Lookup(nameOrCode string) (Language, bool) {
	key := strings.TrimSpace(nameOrCode)
	if key == "" {
		return Language{}, false
	}
	for _, l := range c {
		if strings.EqualFold(l.Name, key) || strings.EqualFold(l.Code, key) {
			return l, true
		}
	}
	return Language{}, false
}

// Names returns the display names in catalog order.
func (c LanguageCatalog) Names() []string {
	out := make([]string, 0, len(c))
	for _, l := range c {
		out = append(out, l.Name)
	}
	return out
}
