package models

// PageType is the classifier's label for a page.
type PageType string

const (
	PageUnknown        PageType = "unknown"
	PageProductDetail  PageType = "product_detail"
	PageProductListing PageType = "product_listing"
	PageSearchResults  PageType = "search_results"
	PageNewsArticle    PageType = "news_article"
	PageBlogPost       PageType = "blog_post"
	PageWikiArticle    PageType = "wiki_article"
	PageDocumentation  PageType = "documentation"
	PageFAQ            PageType = "faq"
	PageEvent          PageType = "event"
	PageLocalBusiness  PageType = "local_business"
	PageSaaSPricing    PageType = "saas_pricing"
	PageGovernment     PageType = "government"
	PageDashboard      PageType = "dashboard"
	PageLogin          PageType = "login"
	PageCheckout       PageType = "checkout"
	PageForum          PageType = "forum"
	PageError          PageType = "error_page"
	PageBlocked        PageType = "blocked"
)

// ClassificationResult is the outcome of one classifier call.
type ClassificationResult struct {
	PageType      PageType `json:"page_type" yaml:"page_type"`
	Confidence    float64  `json:"confidence" yaml:"confidence"`
	Score         int      `json:"score" yaml:"score"`
	Signals       []string `json:"signals" yaml:"signals"`
	RunnerUp      PageType `json:"runner_up,omitempty" yaml:"runner_up,omitempty"`
	RunnerUpScore int      `json:"runner_up_score" yaml:"runner_up_score"`
	// Schema is the schema name the page type maps to; "" when none applies.
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`
}
