package prefs

// Preference keys.
const (
	KeyMatchCase      = "matchCase"
	KeyMatchWholeWord = "matchWholeWord"
	KeyMatchRegex     = "matchRegex"
	KeyHighlightAll   = "highlightAll"
	KeyCloseWithEsc   = "closeWithEsc"
	KeyHistory        = "history"
	KeyHistoryAutoAdd = "historyAutoAdd"
)

// Kind is the value type of a preference.
type Kind int

const (
	// KindBool is a boolean preference.
	KindBool Kind = iota
	// KindString is a string preference.
	KindString
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

type definition struct {
	key  string
	kind Kind
	def  any
}

// definitions lists every known key in a stable order.
var definitions = []definition{
	{KeyMatchCase, KindBool, false},
	{KeyMatchWholeWord, KindBool, false},
	{KeyMatchRegex, KindBool, false},
	{KeyHighlightAll, KindBool, true},
	{KeyCloseWithEsc, KindBool, false},
	{KeyHistory, KindString, ""},
	{KeyHistoryAutoAdd, KindBool, false},
}

// Keys returns every known preference key.
func Keys() []string {
	keys := make([]string, len(definitions))
	for i, d := range definitions {
		keys[i] = d.key
	}
	return keys
}

// KindOf returns the kind of key.
func KindOf(key string) (Kind, bool) {
	for _, d := range definitions {
		if d.key == key {
			return d.kind, true
		}
	}
	return 0, false
}

func kindMatches(kind Kind, v any) bool {
	switch v.(type) {
	case bool:
		return kind == KindBool
	case string:
		return kind == KindString
	default:
		return false
	}
}

// exclusive maps a boolean key to the key it switches off when enabled.
var exclusive = map[string]string{
	KeyMatchWholeWord: KeyMatchRegex,
	KeyMatchRegex:     KeyMatchWholeWord,
}
