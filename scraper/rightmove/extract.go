package rightmove

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"propertyedge/models"
)

const pageModelMarker = "window.PAGE_MODEL"

// Locations of the listing object inside __NEXT_DATA__, tried in order.
var nextDataPaths = [][]string{
	{"props", "pageProps", "propertyData"},
	{"props", "pageProps", "initialReduxState", "propertyDetails", "property"},
	{"props", "pageProps", "initialState", "property"},
}

var priceSelectors = []string{`[data-testid="price"]`, ".property-header-price"}

// Extract pulls a RawListing out of a listing page. Each source is read
// best-effort and the first value found for a field wins: JSON-LD, then
// the embedded page data, then visible price text.
func Extract(html, url string) (*models.RawListing, error) {
	id, err := ParsePropertyID(url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("rightmove: parse html: %w", err)
	}

	raw := &models.RawListing{URL: url, PropertyID: id}
	var typeHint string

	for _, item := range jsonLD(doc) {
		setFirst(&raw.Price, text(lookup(item, "offers", "price")))
		if addr, ok := item["address"].(map[string]any); ok {
			postal := text(addr["postalCode"])
			setFirst(&raw.Postcode, postal)
			setFirst(&raw.Address, joinNonEmpty(", ",
				text(addr["streetAddress"]), text(addr["addressLocality"]), text(addr["addressRegion"]), postal))
		}
		if typeHint == "" {
			typeHint = firstText(item, "@type", "name")
		}
	}

	for _, data := range pageData(doc) {
		applyPageData(raw, data)
	}

	if raw.Price == "" {
		for _, sel := range priceSelectors {
			if t := strings.TrimSpace(doc.Find(sel).First().Text()); t != "" {
				raw.Price = t
				break
			}
		}
	}

	setFirst(&raw.PropertyType, typeHint)
	return raw, nil
}

func applyPageData(raw *models.RawListing, d map[string]any) {
	setFirst(&raw.Price, firstText(d, "price"))
	setFirst(&raw.Price, text(lookup(d, "prices", "primaryPrice")))
	if addr, ok := d["address"].(map[string]any); ok {
		setFirst(&raw.Address, text(addr["displayAddress"]))
		setFirst(&raw.Postcode, joinNonEmpty(" ", text(addr["outcode"]), text(addr["incode"])))
	}

	setFirst(&raw.Bedrooms, firstText(d, "bedrooms", "bedroomCount"))
	setFirst(&raw.Bathrooms, firstText(d, "bathrooms", "bathroomCount"))
	setFirst(&raw.PropertyType, firstText(d, "propertyType", "propertySubType"))

	tenure := text(d["tenure"])
	if tenure == "" {
		tenure = text(lookup(d, "tenure", "tenureType"))
	}
	setFirst(&raw.Tenure, tenure)

	area := firstText(d, "floorArea", "floorAreaSqm")
	if area == "" {
		area = text(lookup(d, "floorArea", "value"))
	}
	if area == "" {
		area = sizingSqm(d["sizings"])
	}
	setFirst(&raw.FloorArea, area)

	epc := text(d["epcRating"])
	if epc == "" {
		epc = text(lookup(d, "epc", "rating"))
	}
	setFirst(&raw.EPCRating, epc)

	if len(raw.KeyFeatures) == 0 {
		features, _ := d["keyFeatures"].([]any)
		if len(features) == 0 {
			features, _ = d["features"].([]any)
		}
		for _, f := range features {
			if t := text(f); t != "" {
				raw.KeyFeatures = append(raw.KeyFeatures, t)
			}
		}
	}
}

// sizingSqm reads the largest square-metre figure from a Rightmove
// "sizings" list.
func sizingSqm(v any) string {
	list, _ := v.([]any)
	for _, s := range list {
		m, ok := s.(map[string]any)
		if !ok || !strings.EqualFold(text(m["unit"]), "sqm") {
			continue
		}
		if t := firstText(m, "maximumSize", "minimumSize"); t != "" {
			return t
		}
	}
	return ""
}

// jsonLD decodes every application/ld+json script. A script may hold one
// object or an array of them; malformed scripts are skipped.
func jsonLD(doc *goquery.Document) []map[string]any {
	var out []map[string]any
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		v, ok := decode(s.Text())
		if !ok {
			return
		}
		switch t := v.(type) {
		case map[string]any:
			out = append(out, t)
		case []any:
			for _, item := range t {
				if m, ok := item.(map[string]any); ok {
					out = append(out, m)
				}
			}
		}
	})
	return out
}

// pageData returns the listing objects embedded by the page's own
// scripts: __NEXT_DATA__ first, then window.PAGE_MODEL.
func pageData(doc *goquery.Document) []map[string]any {
	var out []map[string]any

	if v, ok := decode(doc.Find("script#__NEXT_DATA__").First().Text()); ok {
		for _, path := range nextDataPaths {
			if m, ok := lookup(v, path...).(map[string]any); ok {
				out = append(out, m)
				break
			}
		}
	}

	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		body := s.Text()
		i := strings.Index(body, pageModelMarker)
		if i < 0 {
			return true
		}
		body = body[i+len(pageModelMarker):]
		if j := strings.Index(body, "{"); j >= 0 {
			if v, ok := decode(body[j:]); ok {
				if m, ok := lookup(v, "propertyData").(map[string]any); ok {
					out = append(out, m)
				}
			}
		}
		return false
	})

	return out
}

// decode reads the first JSON value in s. Trailing script text is ignored.
func decode(s string) (any, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

func lookup(v any, path ...string) any {
	cur := v
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

// text renders a JSON scalar as a trimmed string; objects, arrays, bools
// and null become "".
func text(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func firstText(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if t := text(m[k]); t != "" {
			return t
		}
	}
	return ""
}

func setFirst(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
