package scrape

import (
	"io"

	"github.com/PuerkitoBio/goquery"

	"pricehound/helpers"
	"pricehound/pkg/errors"
)

// Parser extracts item records from a page using a site's selector profile
type Parser struct {
	profile Profile
}

// NewParser creates a parser bound to a selector profile
func NewParser(profile Profile) *Parser {
	return &Parser{profile: profile}
}

// ParserFor creates a parser with the profile registered for a host
func ParserFor(host string) *Parser {
	return NewParser(ProfileFor(host))
}

// NewDocument creates a goquery document from a reader
func NewDocument(reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, errors.NewParsing("", "failed to parse HTML", err)
	}
	return doc, nil
}

// IsProductPage reports whether the document looks like a product detail page
func (p *Parser) IsProductPage(doc *goquery.Document) bool {
	if doc.Find(p.profile.Selectors.ProductMarker).Length() > 0 {
		return true
	}
	return len(findJSONLDProducts(doc)) > 0
}

// IsCategoryPage reports whether the document contains recognizable item cards
func (p *Parser) IsCategoryPage(doc *goquery.Document) bool {
	return p.cards(doc).Length() > 0
}

// cards finds the item containers, trying the fallback selector set when the
// primary one matches nothing
func (p *Parser) cards(doc *goquery.Document) *goquery.Selection {
	sel := doc.Find(p.profile.Selectors.Cards)
	if sel.Length() == 0 && p.profile.Selectors.CardsFallback != "" {
		sel = doc.Find(p.profile.Selectors.CardsFallback)
	}
	return sel
}

// ParseCategory extracts one item per recognized card on a listing page.
// Cards with missing fields degrade to partially-filled items; only a card
// without a link is skipped, with a warning.
func (p *Parser) ParseCategory(doc *goquery.Document, finalURL string, rule DiscountRule) PageResult {
	var result PageResult
	host := helpers.HostOf(finalURL)
	sel := p.profile.Selectors

	p.cards(doc).Each(func(i int, card *goquery.Selection) {
		link := card.Find(sel.CardLink).First()
		href, exists := link.Attr("href")
		if !exists || href == "" {
			result.Warnf("%s: card %d has no product link, skipped", finalURL, i)
			return
		}

		title := helpers.CleanText(link.Text())
		prodURL := helpers.ResolveURL(finalURL, href)
		image := p.extractImage(card, finalURL)

		var priceVal *float64
		priceText := ""
		if sel.PriceAmountAttr != "" {
			if attr, ok := card.Find("[" + sel.PriceAmountAttr + "]").First().Attr(sel.PriceAmountAttr); ok {
				if v, ok := ParsePrice(attr); ok {
					priceVal = &v
				}
			}
		}
		if priceVal == nil {
			priceText = helpers.CleanText(card.Find(sel.CardPrice).First().Text())
			if v, ok := ParsePrice(priceText); ok {
				priceVal = &v
				priceText = ""
			} else if priceText != "" {
				result.Warnf("%s: unparseable price %q", prodURL, priceText)
			}
		}

		result.Items = append(result.Items, buildItem(itemFields{
			URL:      prodURL,
			Host:     host,
			Title:    title,
			Price:    priceVal,
			Currency: HostCurrency(host),
			Text:     priceText,
			Source:   SourceCategoryCard,
			Image:    image,
		}, rule))
	})

	return result
}

// ParseProduct extracts a single item from a product detail page. JSON-LD
// Product data wins over selector fallbacks; a page with no parseable price
// still yields an item, flagged through price_text.
func (p *Parser) ParseProduct(doc *goquery.Document, finalURL string, rule DiscountRule) PageResult {
	var result PageResult
	sel := p.profile.Selectors

	finalURL = p.canonicalURL(doc, finalURL)
	host := helpers.HostOf(finalURL)

	var title string
	var priceVal *float64
	currency := ""
	source := SourceProduct

	if products := findJSONLDProducts(doc); len(products) > 0 {
		obj := products[0]
		if name, ok := obj["name"].(string); ok {
			title = helpers.CleanText(name)
		}
		if v, cur, ok := priceFromOffers(obj["offers"]); ok {
			priceVal = &v
			currency = cur
			source = SourceJSONLD
		}
	}

	if title == "" {
		title = p.extractTitle(doc)
	}
	if priceVal == nil {
		if v, matched, ok := p.extractPrice(doc); ok {
			priceVal = &v
			source = matched
		}
	}

	image := ""
	if gallery := doc.Find(sel.Gallery).First(); gallery.Length() > 0 {
		image = p.extractImage(gallery, finalURL)
	}
	if image == "" {
		image = p.extractImage(doc.Selection, finalURL)
	}

	priceText := ""
	if priceVal == nil {
		priceText = "price_not_found_or_hidden"
		result.Warnf("%s: no parseable price found", finalURL)
	}
	if currency == "" {
		currency = HostCurrency(host)
	}

	result.Items = append(result.Items, buildItem(itemFields{
		URL:      finalURL,
		Host:     host,
		Title:    title,
		Price:    priceVal,
		Currency: currency,
		Text:     priceText,
		Source:   source,
		Image:    image,
	}, rule))

	return result
}

// NextPageURL resolves the pagination link on a category page, or "" when
// the page has none
func (p *Parser) NextPageURL(doc *goquery.Document, baseURL string) string {
	href, exists := doc.Find(p.profile.Selectors.NextPage).First().Attr("href")
	if !exists || href == "" {
		return ""
	}
	return helpers.ResolveURL(baseURL, href)
}

// PageParam returns the site's page query parameter convention
func (p *Parser) PageParam() string {
	return p.profile.Selectors.PageParam
}

// canonicalURL prefers the page's canonical or og:url link over the fetched URL
func (p *Parser) canonicalURL(doc *goquery.Document, fallback string) string {
	if href, ok := doc.Find(`link[rel="canonical"]`).Attr("href"); ok && href != "" {
		return href
	}
	if content, ok := doc.Find(`meta[property="og:url"]`).Attr("content"); ok && content != "" {
		return content
	}
	return fallback
}

// extractTitle walks the title fallback chain, then og:title
func (p *Parser) extractTitle(doc *goquery.Document) string {
	for _, s := range p.profile.Selectors.Title {
		if t := helpers.CleanText(doc.Find(s).First().Text()); t != "" {
			return t
		}
	}
	if content, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		return helpers.CleanText(content)
	}
	return ""
}

// extractPrice tries the numeric price attribute first, then walks the price
// selector chain. Returns the value, the matching source, and success.
func (p *Parser) extractPrice(doc *goquery.Document) (float64, string, bool) {
	sel := p.profile.Selectors

	if sel.PriceAmountAttr != "" {
		if attr, ok := doc.Find("[" + sel.PriceAmountAttr + "]").First().Attr(sel.PriceAmountAttr); ok {
			if v, ok := ParsePrice(attr); ok {
				return v, sel.PriceAmountAttr, true
			}
		}
	}

	for _, s := range sel.Price {
		found := 0.0
		matched := false
		doc.Find(s).EachWithBreak(func(_ int, e *goquery.Selection) bool {
			if attr, ok := e.Attr(sel.PriceAmountAttr); ok && sel.PriceAmountAttr != "" {
				if v, ok := ParsePrice(attr); ok {
					found, matched = v, true
					return false
				}
			}
			if v, ok := ParsePrice(helpers.CleanText(e.Text())); ok {
				found, matched = v, true
				return false
			}
			return true
		})
		if matched {
			return found, s, true
		}
	}
	return 0, "", false
}

// extractImage tries the image selector chain inside a container and resolves
// the result against the page URL
func (p *Parser) extractImage(container *goquery.Selection, baseURL string) string {
	for _, s := range p.profile.Selectors.Image {
		el := container.Find(s).First()
		if el.Length() == 0 {
			continue
		}
		src, ok := el.Attr("data-src")
		if !ok || src == "" {
			src, _ = el.Attr("src")
		}
		if src == "" {
			return ""
		}
		return helpers.ResolveURL(baseURL, src)
	}
	return ""
}

type itemFields struct {
	URL      string
	Host     string
	Title    string
	Price    *float64
	Currency string
	Text     string
	Source   string
	Image    string
}

// buildItem assembles an Item, applying the discount rule when the original
// price is known
func buildItem(f itemFields, rule DiscountRule) Item {
	item := Item{
		URL:           f.URL,
		Site:          f.Host,
		Title:         f.Title,
		PriceValue:    f.Price,
		PriceCurrency: f.Currency,
		PriceText:     f.Text,
		Source:        f.Source,
		ImageURL:      f.Image,
	}
	if f.Price != nil {
		discounted := rule.Apply(*f.Price)
		item.DiscountedValue = &discounted
		item.DiscountedFormatted = FormatPrice(&discounted, f.Currency, f.Host)
		item.OriginalFormatted = FormatPrice(f.Price, f.Currency, f.Host)
	}
	return item
}

// errorItem produces the placeholder row recorded when a URL cannot be
// fetched at all
func errorItem(url string, err error) Item {
	return Item{
		URL:       url,
		Site:      helpers.HostOf(url),
		PriceText: "fetch_failed: " + err.Error(),
		Source:    SourceError,
	}
}
