package scrape

import (
	"encoding/json"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

// findJSONLDProducts collects every schema.org Product object embedded in
// ld+json script tags, including those nested under @graph.
func findJSONLDProducts(doc *goquery.Document) []map[string]interface{} {
	var products []map[string]interface{}

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var data interface{}
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return
		}

		var candidates []interface{}
		switch v := data.(type) {
		case map[string]interface{}:
			candidates = []interface{}{v}
		case []interface{}:
			candidates = v
		default:
			return
		}

		for _, c := range candidates {
			obj, ok := c.(map[string]interface{})
			if !ok {
				continue
			}
			if obj["@type"] == "Product" {
				products = append(products, obj)
			}
			if graph, ok := obj["@graph"].([]interface{}); ok {
				for _, g := range graph {
					gobj, ok := g.(map[string]interface{})
					if ok && gobj["@type"] == "Product" {
						products = append(products, gobj)
					}
				}
			}
		}
	})

	return products
}

// priceFromOffers extracts a price and currency from a schema.org offers
// value, which may be a single offer object or a list of them.
func priceFromOffers(offers interface{}) (float64, string, bool) {
	switch v := offers.(type) {
	case map[string]interface{}:
		currency, _ := v["priceCurrency"].(string)
		switch price := v["price"].(type) {
		case float64:
			return price, currency, true
		case string:
			if parsed, err := strconv.ParseFloat(price, 64); err == nil {
				return parsed, currency, true
			}
			if parsed, ok := ParsePrice(price); ok {
				return parsed, currency, true
			}
		}
	case []interface{}:
		for _, offer := range v {
			if price, currency, ok := priceFromOffers(offer); ok {
				return price, currency, ok
			}
		}
	}
	return 0, "", false
}
