package countries

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const listSep = ", "

// Normalize maps a raw document onto a DisplayRecord. It never fails: each
// field is resolved independently and falls back to Placeholder.
func Normalize(doc RawCountry) DisplayRecord {
	return DisplayRecord{
		Name:           orPlaceholder(commonName(doc.Name)),
		OfficialName:   orPlaceholder(doc.Name.Official),
		Capital:        joinOrPlaceholder(doc.Capital),
		Region:         orPlaceholder(doc.Region.Value),
		Subregion:      orPlaceholder(doc.Subregion.Value),
		Area:           formatArea(doc.Area),
		Population:     formatPopulation(doc.Population),
		Languages:      joinOrPlaceholder(pairValues(doc.Languages)),
		Currencies:     joinOrPlaceholder(currencyLabels(doc.Currencies)),
		Timezones:      joinOrPlaceholder(doc.Timezones),
		Borders:        formatBorders(doc.Borders),
		LatLng:         formatLatLng(doc.LatLng),
		NativeName:     orPlaceholder(firstNativeName(doc.Name)),
		TopLevelDomain: joinOrPlaceholder(doc.TLD),
		Alpha3Code:     orPlaceholder(doc.CCA3.Value),
		CallingCodes:   orPlaceholder(callingCode(doc.IDD)),
		Flag:           preferredImage(doc.Flags),
		CoatOfArms:     preferredImage(doc.CoatOfArms),
	}
}

// NormalizeAll applies Normalize to every document, preserving order.
func NormalizeAll(docs []RawCountry) []DisplayRecord {
	out := make([]DisplayRecord, 0, len(docs))
	for _, doc := range docs {
		out = append(out, Normalize(doc))
	}
	return out
}

func orPlaceholder(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Placeholder
	}
	return s
}

func joinOrPlaceholder(items []string) string {
	return orPlaceholder(strings.Join(items, listSep))
}

func commonName(n Name) string {
	if strings.TrimSpace(n.Common) != "" {
		return n.Common
	}
	return n.Plain
}

func firstNativeName(n Name) string {
	if len(n.Native) == 0 {
		return ""
	}
	return n.Native[0].Common
}

func pairValues(p Pairs) []string {
	out := make([]string, 0, len(p))
	for _, kv := range p {
		out = append(out, kv.Value)
	}
	return out
}

func currencyLabels(cs Currencies) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		name := c.Name
		if name == "" {
			name = c.Code
		}
		symbol := c.Symbol
		if symbol == "" {
			symbol = c.Code
		}
		if name == "" {
			continue
		}
		if symbol == "" {
			out = append(out, name)
			continue
		}
		out = append(out, name+" ("+symbol+")")
	}
	return out
}

func formatBorders(borders Strings) string {
	if len(borders) == 0 {
		return NoBorders
	}
	return strings.Join(borders, listSep)
}

func formatLatLng(c Coordinates) string {
	if !c.Valid {
		return Placeholder
	}
	return formatCoord(c.Lat) + "°, " + formatCoord(c.Lng) + "°"
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func callingCode(d Dialing) string {
	root := strings.TrimSpace(d.Root)
	if root == "" {
		return ""
	}
	if len(d.Suffixes) == 0 {
		return root
	}
	return root + strings.TrimSpace(d.Suffixes[0])
}

func preferredImage(img Images) *string {
	switch {
	case img.SVG != "":
		u := img.SVG
		return &u
	case img.PNG != "":
		u := img.PNG
		return &u
	default:
		return nil
	}
}

// Zero is treated like a missing value for area and population.
func formatArea(n Number) string {
	if !n.Valid || n.Value == 0 {
		return Placeholder
	}
	return formatGrouped(n.Value) + " km²"
}

func formatPopulation(n Number) string {
	if !n.Valid || n.Value == 0 {
		return Placeholder
	}
	return formatGrouped(n.Value)
}

// formatGrouped renders v with English digit grouping, e.g. 67391582 as
// "67,391,582" and 0.44 as "0.44".
func formatGrouped(v float64) string {
	p := message.NewPrinter(language.English)
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return p.Sprintf("%d", int64(v))
	}
	return p.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(3)))
}
