package detector

import (
	"regexp"
	"strings"

	"github.com/dtnitsch/llm-web-pruner/models"
)

type tier int

const (
	tierURL tier = iota
	tierMeta
	tierDOM
)

// signal is one named piece of evidence. Weights may be negative; a
// signal can help one page type while hurting another.
type signal struct {
	name    string
	tier    tier
	blocked bool
	match   func(p *page) bool
	weights map[models.PageType]int
}

const readableMinChars = 1500

var datedPathRe = regexp.MustCompile(`/(19|20)\d{2}/\d{1,2}/`)

var urlSignals = []signal{
	{name: "url_vp_products", match: func(p *page) bool { return p.urlHas("/vp/products/") },
		weights: map[models.PageType]int{models.PageProductDetail: 9}},
	{name: "url_products_path", match: func(p *page) bool { return p.urlHas("/products/", "/product/") },
		weights: map[models.PageType]int{models.PageProductDetail: 5}},
	{name: "url_item_path", match: func(p *page) bool { return p.urlHas("/dp/", "/gp/product/", "/itm/", "/item/") },
		weights: map[models.PageType]int{models.PageProductDetail: 4}},
	{name: "url_category_path", match: func(p *page) bool {
		return p.urlHas("/category/", "/categories/", "/collections/", "/shop/", "/browse/")
	}, weights: map[models.PageType]int{models.PageProductListing: 4, models.PageProductDetail: -1}},
	{name: "url_search", match: func(p *page) bool { return p.urlHas("/search", "?q=", "&q=", "query=", "?s=") },
		weights: map[models.PageType]int{models.PageSearchResults: 5, models.PageProductDetail: -2}},
	{name: "url_news", match: func(p *page) bool { return strings.Contains(p.host, "news") || p.urlHas("/news/") },
		weights: map[models.PageType]int{models.PageNewsArticle: 3}},
	{name: "url_dated_path", match: func(p *page) bool { return datedPathRe.MatchString(p.path) },
		weights: map[models.PageType]int{models.PageNewsArticle: 2, models.PageBlogPost: 2}},
	{name: "url_blog", match: func(p *page) bool { return strings.HasPrefix(p.host, "blog.") || p.urlHas("/blog/", "/posts/") },
		weights: map[models.PageType]int{models.PageBlogPost: 4}},
	{name: "url_wiki", match: func(p *page) bool { return strings.Contains(p.host, "wikipedia.org") || p.urlHas("/wiki/") },
		weights: map[models.PageType]int{models.PageWikiArticle: 5}},
	{name: "url_docs", match: func(p *page) bool {
		return strings.HasPrefix(p.host, "docs.") || strings.HasPrefix(p.host, "developer.") ||
			p.urlHas("/docs/", "/documentation/", "/reference/", "/api/")
	}, weights: map[models.PageType]int{models.PageDocumentation: 4}},
	{name: "url_faq", match: func(p *page) bool { return p.urlHas("/faq", "/help/", "/support/") },
		weights: map[models.PageType]int{models.PageFAQ: 4}},
	{name: "url_event", match: func(p *page) bool { return p.urlHas("/events/", "/event/", "/tickets/", "/concerts/") },
		weights: map[models.PageType]int{models.PageEvent: 4}},
	{name: "url_pricing", match: func(p *page) bool { return p.urlHas("/pricing", "/plans") },
		weights: map[models.PageType]int{models.PageSaaSPricing: 5}},
	{name: "url_gov_domain", match: func(p *page) bool { return hostKind(p.host) == "gov" },
		weights: map[models.PageType]int{models.PageGovernment: 4}},
	{name: "url_dashboard", match: func(p *page) bool { return p.urlHas("/dashboard", "/admin", "/console", "/account/") },
		weights: map[models.PageType]int{models.PageDashboard: 4}},
	{name: "url_login", match: func(p *page) bool { return p.urlHas("/login", "/signin", "/sign-in", "/auth/") },
		weights: map[models.PageType]int{models.PageLogin: 5}},
	{name: "url_checkout", match: func(p *page) bool { return p.urlHas("/checkout", "/cart", "/basket") },
		weights: map[models.PageType]int{models.PageCheckout: 5, models.PageProductDetail: -2}},
	{name: "url_forum", match: func(p *page) bool {
		return strings.HasPrefix(p.host, "forum.") || strings.HasPrefix(p.host, "community.") ||
			p.urlHas("/forum", "/thread", "/discussion", "/t/")
	}, weights: map[models.PageType]int{models.PageForum: 4}},
	{name: "url_store_locator", match: func(p *page) bool { return p.urlHas("/locations/", "/store-locator", "/stores/") },
		weights: map[models.PageType]int{models.PageLocalBusiness: 3}},
	{name: "url_error", match: func(p *page) bool { return p.urlHas("/404", "/error") },
		weights: map[models.PageType]int{models.PageError: 4}},
}

var metaSignals = []signal{
	{name: "meta_og_product", tier: tierMeta, match: func(p *page) bool { return strings.HasPrefix(p.ogTypeValue(), "product") },
		weights: map[models.PageType]int{models.PageProductDetail: 4}},
	{name: "meta_og_article", tier: tierMeta, match: func(p *page) bool { return p.ogTypeValue() == "article" },
		weights: map[models.PageType]int{models.PageNewsArticle: 3, models.PageBlogPost: 2}},
	{name: "meta_title_search", tier: tierMeta, match: func(p *page) bool { return p.titleHas("search results", "results for") },
		weights: map[models.PageType]int{models.PageSearchResults: 3}},
	{name: "meta_title_login", tier: tierMeta, match: func(p *page) bool { return p.titleHas("sign in", "log in", "login") },
		weights: map[models.PageType]int{models.PageLogin: 3}},
	{name: "meta_title_error", tier: tierMeta, match: func(p *page) bool { return p.titleHas("404", "not found", "server error") },
		weights: map[models.PageType]int{models.PageError: 5}},
	{name: "meta_title_checkout", tier: tierMeta, match: func(p *page) bool { return p.titleHas("checkout", "shopping cart", "your cart") },
		weights: map[models.PageType]int{models.PageCheckout: 3}},
	{name: "meta_title_pricing", tier: tierMeta, match: func(p *page) bool { return p.titleHas("pricing", "plans") },
		weights: map[models.PageType]int{models.PageSaaSPricing: 2}},
	{name: "meta_title_faq", tier: tierMeta, match: func(p *page) bool { return p.titleHas("faq", "frequently asked") },
		weights: map[models.PageType]int{models.PageFAQ: 3}},
	{name: "meta_title_wiki", tier: tierMeta, match: func(p *page) bool { return p.titleHas("wikipedia", " - wiki") },
		weights: map[models.PageType]int{models.PageWikiArticle: 3}},
	{name: "meta_title_challenge", tier: tierMeta, blocked: true, match: func(p *page) bool {
		return p.titleHas("just a moment", "attention required", "access denied", "are you a robot", "captcha")
	}, weights: map[models.PageType]int{models.PageBlocked: 8}},
}

// ldTypePages maps lower-cased linked-data @type values to page types.
var ldTypePages = map[string]models.PageType{
	"product":                models.PageProductDetail,
	"productgroup":           models.PageProductDetail,
	"itemlist":               models.PageProductListing,
	"offercatalog":           models.PageProductListing,
	"collectionpage":         models.PageProductListing,
	"searchresultspage":      models.PageSearchResults,
	"newsarticle":            models.PageNewsArticle,
	"reportagenews":          models.PageNewsArticle,
	"analysisnews":           models.PageNewsArticle,
	"blogposting":            models.PageBlogPost,
	"techarticle":            models.PageDocumentation,
	"apireference":           models.PageDocumentation,
	"faqpage":                models.PageFAQ,
	"event":                  models.PageEvent,
	"musicevent":             models.PageEvent,
	"sportsevent":            models.PageEvent,
	"theaterevent":           models.PageEvent,
	"festival":               models.PageEvent,
	"localbusiness":          models.PageLocalBusiness,
	"restaurant":             models.PageLocalBusiness,
	"store":                  models.PageLocalBusiness,
	"foodestablishment":      models.PageLocalBusiness,
	"hotel":                  models.PageLocalBusiness,
	"softwareapplication":    models.PageSaaSPricing,
	"webapplication":         models.PageSaaSPricing,
	"governmentorganization": models.PageGovernment,
	"governmentservice":      models.PageGovernment,
	"discussionforumposting": models.PageForum,
	"qapage":                 models.PageForum,
	"checkoutpage":           models.PageCheckout,
}

// ldWeights is the weight a linked-data type sniff adds per page type.
var ldWeights = map[models.PageType]int{
	models.PageProductDetail:  6,
	models.PageProductListing: 3,
	models.PageSearchResults:  5,
	models.PageNewsArticle:    5,
	models.PageBlogPost:       5,
	models.PageDocumentation:  4,
	models.PageFAQ:            6,
	models.PageEvent:          6,
	models.PageLocalBusiness:  6,
	models.PageSaaSPricing:    3,
	models.PageGovernment:     4,
	models.PageForum:          4,
	models.PageCheckout:       4,
}

// ldSignals derives one meta-tier signal per page type reachable from
// ldTypePages.
func ldSignals() []signal {
	byPage := make(map[models.PageType][]string)
	for typ, pt := range ldTypePages {
		byPage[pt] = append(byPage[pt], typ)
	}
	var out []signal
	for _, pt := range pageOrder {
		types, ok := byPage[pt]
		if !ok {
			continue
		}
		out = append(out, signal{
			name:    "meta_ld_" + string(pt),
			tier:    tierMeta,
			match:   func(p *page) bool { return p.hasLDType(types...) },
			weights: map[models.PageType]int{pt: ldWeights[pt]},
		})
	}
	return out
}

var domSignals = []signal{
	{name: "dom_add_to_cart", tier: tierDOM, match: func(p *page) bool {
		return p.has("add to cart", "add-to-cart", "addtocart", "add to basket", "buy now")
	}, weights: map[models.PageType]int{models.PageProductDetail: 3}},
	{name: "dom_price_microdata", tier: tierDOM, match: func(p *page) bool { return p.has(`itemprop="price"`, `itemprop='price'`) },
		weights: map[models.PageType]int{models.PageProductDetail: 2}},
	{name: "dom_product_grid", tier: tierDOM, match: func(p *page) bool {
		return p.count("product-card")+p.count("product-item")+p.count("product-tile") >= 4
	}, weights: map[models.PageType]int{models.PageProductListing: 4, models.PageProductDetail: -2}},
	{name: "dom_pagination", tier: tierDOM, match: func(p *page) bool { return p.has("pagination", `rel="next"`) },
		weights: map[models.PageType]int{models.PageProductListing: 1, models.PageSearchResults: 1, models.PageForum: 1}},
	{name: "dom_search_results", tier: tierDOM, match: func(p *page) bool { return p.count("search-result") >= 3 },
		weights: map[models.PageType]int{models.PageSearchResults: 4}},
	{name: "dom_single_article", tier: tierDOM, match: func(p *page) bool { return p.count("<article") == 1 },
		weights: map[models.PageType]int{models.PageNewsArticle: 1, models.PageBlogPost: 1}},
	{name: "dom_byline", tier: tierDOM, match: func(p *page) bool { return p.has("byline", `rel="author"`, `class="author`) },
		weights: map[models.PageType]int{models.PageNewsArticle: 2, models.PageBlogPost: 2}},
	{name: "dom_readable_article", tier: tierDOM, match: func(p *page) bool { return p.readableArticle() },
		weights: map[models.PageType]int{models.PageNewsArticle: 3, models.PageBlogPost: 2}},
	{name: "dom_time_published", tier: tierDOM, match: func(p *page) bool { return p.has("<time") && p.has("datetime=") },
		weights: map[models.PageType]int{models.PageNewsArticle: 1, models.PageBlogPost: 1, models.PageEvent: 1}},
	{name: "dom_toc", tier: tierDOM, match: func(p *page) bool { return p.has(`id="toc"`, `class="toc`, "mw-parser-output") },
		weights: map[models.PageType]int{models.PageWikiArticle: 3, models.PageDocumentation: 2}},
	{name: "dom_infobox", tier: tierDOM, match: func(p *page) bool { return p.has("infobox") },
		weights: map[models.PageType]int{models.PageWikiArticle: 3}},
	{name: "dom_code_blocks", tier: tierDOM, match: func(p *page) bool { return p.count("<pre") >= 3 || p.count("<code") >= 5 },
		weights: map[models.PageType]int{models.PageDocumentation: 3}},
	{name: "dom_faq_blocks", tier: tierDOM, match: func(p *page) bool { return p.count("<details") >= 3 || p.has(`class="faq`) },
		weights: map[models.PageType]int{models.PageFAQ: 3}},
	{name: "dom_pricing_tiers", tier: tierDOM, match: func(p *page) bool {
		return p.count("/mo")+p.count("per month")+p.count("/month") >= 2
	}, weights: map[models.PageType]int{models.PageSaaSPricing: 4}},
	{name: "dom_tables", tier: tierDOM, match: func(p *page) bool { return p.count("<table") >= 2 },
		weights: map[models.PageType]int{models.PageDashboard: 3}},
	{name: "dom_icons", tier: tierDOM, match: func(p *page) bool {
		return p.count("<svg")+p.count(`class="icon`)+p.count(`<i class="`) >= 3
	}, weights: map[models.PageType]int{models.PageDashboard: 2}},
	{name: "dom_sidebar", tier: tierDOM, match: func(p *page) bool { return p.has("sidebar", "<aside") },
		weights: map[models.PageType]int{models.PageDashboard: 2}},
	{name: "dom_password_field", tier: tierDOM, match: func(p *page) bool { return p.has(`type="password"`, `type='password'`) },
		weights: map[models.PageType]int{models.PageLogin: 5, models.PageCheckout: -1}},
	{name: "dom_payment_fields", tier: tierDOM, match: func(p *page) bool { return p.has("cc-number", "card number", "billing address") },
		weights: map[models.PageType]int{models.PageCheckout: 4}},
	{name: "dom_forum_posts", tier: tierDOM, match: func(p *page) bool { return p.count(`class="post`) >= 3 || p.count("reply") >= 5 },
		weights: map[models.PageType]int{models.PageForum: 3}},
	{name: "dom_address", tier: tierDOM, match: func(p *page) bool {
		return p.has(`itemprop="address"`, "openinghours", "opening hours", "<address")
	}, weights: map[models.PageType]int{models.PageLocalBusiness: 3}},
	{name: "dom_map_embed", tier: tierDOM, match: func(p *page) bool { return p.has("maps.google", "google.com/maps") },
		weights: map[models.PageType]int{models.PageLocalBusiness: 2, models.PageEvent: 1}},
	{name: "dom_event_venue", tier: tierDOM, match: func(p *page) bool { return p.has("tickets") && p.has("venue") },
		weights: map[models.PageType]int{models.PageEvent: 3}},
	{name: "dom_gov_banner", tier: tierDOM, match: func(p *page) bool {
		return p.has("official website of the", "usa-banner", ".gov website")
	}, weights: map[models.PageType]int{models.PageGovernment: 4}},
	{name: "dom_not_found_text", tier: tierDOM, match: func(p *page) bool { return p.has("page not found", "404 error") },
		weights: map[models.PageType]int{models.PageError: 4}},
	{name: "dom_thin_page", tier: tierDOM, match: func(p *page) bool { p.load(); return p.raw != "" && p.textLen < 300 },
		weights: map[models.PageType]int{models.PageError: 1, models.PageLogin: 1, models.PageNewsArticle: -2}},
	{name: "dom_captcha", tier: tierDOM, blocked: true, match: func(p *page) bool {
		return p.has("g-recaptcha", "h-captcha", "hcaptcha", "cf-challenge", "cf-browser-verification",
			"challenge-platform", "captcha-delivery", "px-captcha")
	}, weights: map[models.PageType]int{models.PageBlocked: 8}},
	{name: "dom_waf_text", tier: tierDOM, blocked: true, match: func(p *page) bool {
		return p.has("request unsuccessful. incapsula", "checking your browser", "verify you are human",
			"enable javascript and cookies to continue", "access to this page has been denied")
	}, weights: map[models.PageType]int{models.PageBlocked: 6}},
}

func (p *page) ogTypeValue() string {
	p.load()
	return p.ogType
}

// hostKind identifies the broad domain class of a host.
func hostKind(host string) string {
	host = strings.TrimSuffix(host, ".")
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}

	// Government domains, including country-level ones like gov.uk
	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".mil") || strings.Contains(host, ".gov.") {
		return "gov"
	}
	if strings.HasSuffix(host, ".edu") {
		return "edu"
	}
	if strings.Contains(host, "wikipedia.org") || strings.Contains(host, "wiki.") {
		return "wiki"
	}
	return "commercial"
}
