package countries

import (
	"bytes"
	"encoding/json"
	"strings"
)

// RawCountry is one document as returned by the country-data service.
// No field is guaranteed to be present, and several fields change shape
// between records. Every field type below decodes leniently: an unexpected
// shape leaves the field empty instead of failing the whole document.
type RawCountry struct {
	Name       Name        `json:"name"`
	Capital    Strings     `json:"capital"`
	Region     Text        `json:"region"`
	Subregion  Text        `json:"subregion"`
	Area       Number      `json:"area"`
	Population Number      `json:"population"`
	Languages  Pairs       `json:"languages"`
	Currencies Currencies  `json:"currencies"`
	Timezones  Strings     `json:"timezones"`
	Borders    Strings     `json:"borders"`
	LatLng     Coordinates `json:"latlng"`
	TLD        Strings     `json:"tld"`
	IDD        Dialing     `json:"idd"`
	Flags      Images      `json:"flags"`
	CoatOfArms Images      `json:"coatOfArms"`
	CCA3       Text        `json:"cca3"`
}

// DecodeDocuments accepts either a single JSON object or an array of them
// and always returns a slice. Array elements that are not objects decode to
// an empty RawCountry. Only a body that is not JSON at all is an error.
func DecodeDocuments(body []byte) ([]RawCountry, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] != '[' {
		var one json.RawMessage
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, err
		}
		return []RawCountry{decodeDocument(one)}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, err
	}
	docs := make([]RawCountry, 0, len(items))
	for _, item := range items {
		docs = append(docs, decodeDocument(item))
	}
	return docs, nil
}

func decodeDocument(data json.RawMessage) RawCountry {
	var doc RawCountry
	if len(bytes.TrimSpace(data)) == 0 || bytes.TrimSpace(data)[0] != '{' {
		return doc
	}
	// data is a JSON object and every field type's UnmarshalJSON returns
	// nil, so Unmarshal cannot fail here.
	_ = json.Unmarshal(data, &doc)
	return doc
}

// Text is a string field; any other shape is treated as absent.
type Text struct {
	Value string
	Valid bool
}

func (t *Text) UnmarshalJSON(data []byte) error {
	*t = Text{}
	if s, ok := decodeAny(data).(string); ok {
		*t = Text{Value: s, Valid: strings.TrimSpace(s) != ""}
	}
	return nil
}

// Number is a numeric field.
type Number struct {
	Value float64
	Valid bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	if f, ok := decodeAny(data).(float64); ok {
		*n = Number{Value: f, Valid: true}
	}
	return nil
}

// Strings holds a field that may be a single string or a list of strings.
// Non-string and blank elements are dropped.
type Strings []string

func (s *Strings) UnmarshalJSON(data []byte) error {
	*s = nil
	switch v := decodeAny(data).(type) {
	case string:
		if strings.TrimSpace(v) != "" {
			*s = Strings{v}
		}
	case []any:
		out := make(Strings, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok && strings.TrimSpace(str) != "" {
				out = append(out, str)
			}
		}
		*s = out
	}
	return nil
}

// Pair is one key/value entry of a JSON object, kept in document order.
type Pair struct {
	Key   string
	Value string
}

// Pairs is a code→name object such as "languages". Entries whose value is
// not a string are skipped.
type Pairs []Pair

func (p *Pairs) UnmarshalJSON(data []byte) error {
	*p = nil
	fields, ok := orderedObject(data)
	if !ok {
		return nil
	}
	out := make(Pairs, 0, len(fields))
	for _, f := range fields {
		if s, ok := decodeAny(f.raw).(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, Pair{Key: f.key, Value: s})
		}
	}
	*p = out
	return nil
}

// Currency is one entry of the "currencies" object.
type Currency struct {
	Code   string
	Name   string
	Symbol string
}

type Currencies []Currency

func (c *Currencies) UnmarshalJSON(data []byte) error {
	*c = nil
	fields, ok := orderedObject(data)
	if !ok {
		return nil
	}
	out := make(Currencies, 0, len(fields))
	for _, f := range fields {
		m, ok := decodeAny(f.raw).(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Currency{
			Code:   f.key,
			Name:   stringAt(m, "name"),
			Symbol: stringAt(m, "symbol"),
		})
	}
	*c = out
	return nil
}

// NativeName is one entry of name.nativeName.
type NativeName struct {
	Lang     string
	Common   string
	Official string
}

// Name is either a plain string or an object with common/official/native
// names. Plain holds the string form; the other fields the object form.
type Name struct {
	Plain    string
	Common   string
	Official string
	Native   []NativeName
}

func (n *Name) UnmarshalJSON(data []byte) error {
	*n = Name{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '"' {
		if s, ok := decodeAny(trimmed).(string); ok {
			n.Plain = s
		}
		return nil
	}

	fields, ok := orderedObject(trimmed)
	if !ok {
		return nil
	}
	for _, f := range fields {
		switch f.key {
		case "common":
			n.Common, _ = decodeAny(f.raw).(string)
		case "official":
			n.Official, _ = decodeAny(f.raw).(string)
		case "nativeName":
			n.Native = decodeNativeNames(f.raw)
		}
	}
	return nil
}

func decodeNativeNames(data []byte) []NativeName {
	fields, ok := orderedObject(data)
	if !ok {
		return nil
	}
	out := make([]NativeName, 0, len(fields))
	for _, f := range fields {
		m, ok := decodeAny(f.raw).(map[string]any)
		if !ok {
			out = append(out, NativeName{Lang: f.key})
			continue
		}
		out = append(out, NativeName{
			Lang:     f.key,
			Common:   stringAt(m, "common"),
			Official: stringAt(m, "official"),
		})
	}
	return out
}

// Coordinates is a [lat, lng] pair. Valid only when both are numbers.
type Coordinates struct {
	Lat   float64
	Lng   float64
	Valid bool
}

func (c *Coordinates) UnmarshalJSON(data []byte) error {
	*c = Coordinates{}
	list, ok := decodeAny(data).([]any)
	if !ok || len(list) < 2 {
		return nil
	}
	lat, okLat := list[0].(float64)
	lng, okLng := list[1].(float64)
	if okLat && okLng {
		*c = Coordinates{Lat: lat, Lng: lng, Valid: true}
	}
	return nil
}

// Dialing is the "idd" object: a root such as "+3" plus suffixes like "3".
type Dialing struct {
	Root     string
	Suffixes []string
}

func (d *Dialing) UnmarshalJSON(data []byte) error {
	*d = Dialing{}
	m, ok := decodeAny(data).(map[string]any)
	if !ok {
		return nil
	}
	d.Root = stringAt(m, "root")
	if list, ok := m["suffixes"].([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				d.Suffixes = append(d.Suffixes, s)
			}
		}
	}
	return nil
}

// Images maps image formats to URLs for flags and coats of arms.
type Images struct {
	SVG string
	PNG string
}

func (i *Images) UnmarshalJSON(data []byte) error {
	*i = Images{}
	m, ok := decodeAny(data).(map[string]any)
	if !ok {
		return nil
	}
	i.SVG = stringAt(m, "svg")
	i.PNG = stringAt(m, "png")
	return nil
}

func decodeAny(data []byte) any {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	return v
}

func stringAt(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

type objectField struct {
	key string
	raw json.RawMessage
}

// orderedObject splits a JSON object into its fields in document order.
// encoding/json maps lose ordering, and "first native name" depends on it.
func orderedObject(data []byte) ([]objectField, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, false
	}

	var fields []objectField
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fields, len(fields) > 0
		}
		key, ok := tok.(string)
		if !ok {
			return fields, len(fields) > 0
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fields, len(fields) > 0
		}
		fields = append(fields, objectField{key: key, raw: raw})
	}
	return fields, true
}
