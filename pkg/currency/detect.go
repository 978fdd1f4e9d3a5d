package currency

// Lookup is the outcome of one geolocation source. A nil *Lookup or an empty
// Country means the source failed or had nothing to say.
type Lookup struct {
	Country string `json:"country"`
	Source  string `json:"source"`
}

// Detect picks the display currency from the IP lookup first, then the
// reverse-geocoded browser position, then Base. It never fails.
func Detect(ip, geo *Lookup) Code {
	for _, l := range []*Lookup{ip, geo} {
		if l == nil || l.Country == "" {
			continue
		}
		if c, ok := ForCountry(l.Country); ok {
			return c
		}
	}
	return Base
}

// Preference is the viewer's currency choice. Manual choices pin Code until
// the viewer resets to automatic.
type Preference struct {
	Code   Code `json:"code"`
	Manual bool `json:"manual"`
}

// Choose records a manual selection.
func Choose(c Code) Preference {
	return Preference{Code: c, Manual: true}
}

// Automatic is the reset state.
func Automatic() Preference {
	return Preference{}
}

// Resolve returns the currency to display given a preference and the result
// of an automatic detection pass.
func Resolve(pref Preference, detected Code) Code {
	if pref.Manual && pref.Code.Valid() {
		return pref.Code
	}
	if detected.Valid() {
		return detected
	}
	return Base
}
