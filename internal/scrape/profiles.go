package scrape

import "strings"

// Selectors is the per-site selector table. Listing markup drifts over time;
// keeping every selector here means a layout change touches one entry, not
// the pipeline.
type Selectors struct {
	// ProductMarker identifies a product detail page
	ProductMarker string
	// Cards locates item containers on a category page, CardsFallback is
	// tried when Cards matches nothing
	Cards         string
	CardsFallback string
	// CardLink, CardPrice are sub-selectors inside one card
	CardLink  string
	CardPrice string
	// PriceAmountAttr names an attribute carrying the numeric price directly
	PriceAmountAttr string
	// Title and Price are fallback chains for product detail pages, tried in
	// order until one matches
	Title []string
	Price []string
	// Gallery narrows the image search on a product page
	Gallery string
	// Image selectors are tried in order inside a card or gallery
	Image []string
	// NextPage locates the pagination link on a category page
	NextPage string
	// PageParam is the query parameter incremented when no next link exists
	PageParam string
}

// Profile binds a selector table to the hosts it applies to
type Profile struct {
	Name      string
	Hosts     []string
	Selectors Selectors
}

// defaultProfile covers Magento-style storefronts, the primary target markup
var defaultProfile = Profile{
	Name: "magento",
	Selectors: Selectors{
		ProductMarker:   "h1.page-title, h1.product",
		Cards:           "ul.product-listing li.item",
		CardsFallback:   "ol.products li.product-item, div.product-item-info, div.product-card, li.product",
		CardLink:        "a[href]",
		CardPrice:       ".price, .price-final_price .price, [class*='price']",
		PriceAmountAttr: "data-price-amount",
		Title: []string{
			"h1.page-title .base",
			`span[data-ui-id="page-title-wrapper"]`,
			"h1.product",
			"h1",
		},
		Price: []string{
			"span.price-final_price [data-price-amount]",
			"span.price-final_price span.price",
			"div.price-box [data-price-amount]",
			"div.price-box span.price",
			`span[id^="product-price-"] [data-price-amount]`,
			`span[id^="product-price-"] span.price`,
			"span.price",
			"[class*='price']",
			"[id*='price']",
		},
		Gallery:  ".gallery-placeholder, .product.media, .fotorama, .product-image",
		Image:    []string{"img[data-src]", "img[srcset]", "img[src]"},
		NextPage: `li.pages-item-next a, a.action.next, a[rel="next"]`,
		PageParam: "p",
	},
}

// profiles lists site-specific overrides, matched by host suffix
var profiles = []Profile{
	{
		Name:  "mobilesentrix",
		Hosts: []string{"mobilesentrix.com", "mobilesentrix.ca"},
		Selectors: Selectors{
			ProductMarker:   "h1.page-title, h1.product",
			Cards:           "ul.product-listing li.item",
			CardsFallback:   "ol.products li.product-item, div.product-item-info",
			CardLink:        "a[href]",
			CardPrice:       ".price, .price-final_price .price, [class*='price']",
			PriceAmountAttr: "data-price-amount",
			Title: []string{
				"h1.page-title .base",
				`span[data-ui-id="page-title-wrapper"]`,
				"h1",
			},
			Price: []string{
				"span.price-final_price [data-price-amount]",
				"span.price-final_price span.price",
				"div.price-box span.price",
				"span.price",
			},
			Gallery:   ".gallery-placeholder, .product.media, .fotorama",
			Image:     []string{"img[data-src]", "img[srcset]", "img[src]"},
			NextPage:  `li.pages-item-next a, a.action.next, a[rel="next"]`,
			PageParam: "p",
		},
	},
	{
		Name:  "shopify",
		Hosts: []string{"myshopify.com"},
		Selectors: Selectors{
			ProductMarker: "h1.product__title, h1.product-single__title",
			Cards:         "div.product-card, li.grid__item",
			CardLink:      "a[href]",
			CardPrice:     ".price, .price-item, [class*='price']",
			Title:         []string{"h1.product__title", "h1.product-single__title", "h1"},
			Price:         []string{"span.price-item--regular", ".price", "[class*='price']"},
			Image:         []string{"img[data-src]", "img[srcset]", "img[src]"},
			NextPage:      `a[rel="next"]`,
			PageParam:     "page",
		},
	},
}

// ProfileFor picks the selector profile for a hostname, falling back to the
// Magento defaults
func ProfileFor(host string) Profile {
	host = strings.ToLower(host)
	for _, p := range profiles {
		for _, h := range p.Hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return p
			}
		}
	}
	return defaultProfile
}
