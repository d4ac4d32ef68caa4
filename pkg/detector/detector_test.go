package detector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dtnitsch/llm-web-pruner/models"
)

const dashboardHeavy = `<html><head><title>Widget</title>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"Product","name":"Widget"}</script>
</head><body>
<div class="sidebar"><svg></svg><svg></svg><svg></svg></div>
<table><tr><td>Weight</td><td>2 kg</td></tr></table>
<table><tr><td>Colour</td><td>Red</td></tr></table>
</body></html>`

func TestClassify_URLShortCircuit(t *testing.T) {
	res := Classify("https://www.example.com/vp/products/123456?itemId=9", "")

	assert.Equal(t, models.PageProductDetail, res.PageType)
	assert.Greater(t, res.Score, ShortCircuitFactor*Threshold(models.PageProductDetail))
	assert.Contains(t, res.Signals, "url_vp_products")
	assert.Equal(t, 1.0, res.Confidence)
	assert.Equal(t, "Product", res.Schema)
}

func TestClassify_ShortCircuitStillChecksBlocked(t *testing.T) {
	markup := `<html><body><table></table><table></table><div class="g-recaptcha"></div></body></html>`
	res := Classify("https://www.example.com/vp/products/123456", markup)

	assert.Contains(t, res.Signals, "dom_captcha")
	assert.NotContains(t, res.Signals, "dom_tables", "non-blocked DOM signals are skipped after a short-circuit")
	assert.Equal(t, models.PageProductDetail, res.PageType, "one blocked signal does not beat a strong URL")
	assert.Equal(t, models.PageBlocked, res.RunnerUp)
}

func TestClassify_ChallengeBehindProductURL(t *testing.T) {
	markup := `<html><head><title>Just a moment...</title></head>` +
		`<body><div id="cf-challenge"></div><p>Checking your browser before accessing the site.</p></body></html>`
	res := Classify("https://x.com/vp/products/1", markup)

	assert.Equal(t, models.PageBlocked, res.PageType)
	assert.Equal(t, 22, res.Score, "blocked DOM weights are not capped")
	assert.Equal(t, models.PageProductDetail, res.RunnerUp)
	assert.Equal(t, 14, res.RunnerUpScore)
	assert.Contains(t, res.Signals, "meta_title_challenge")
	assert.Contains(t, res.Signals, "dom_captcha")
	assert.Contains(t, res.Signals, "dom_waf_text")

	res = Classify("https://x.com/vp/products/1",
		`<html><head><title>Just a moment...</title></head><body><div class="g-recaptcha"></div></body></html>`)
	assert.Equal(t, models.PageBlocked, res.PageType, "challenge title plus captcha markup wins")
}

func TestPage_BlockedChecksSkipFullLoad(t *testing.T) {
	p := newPage("https://x.com/vp/products/1",
		`<html><head><title>Just a Moment</title><script type="application/ld+json">{"@type":"Product"}</script></head></html>`)

	assert.True(t, p.titleHas("just a moment"))
	assert.True(t, p.has("ld+json"))
	assert.False(t, p.loaded)
	assert.Nil(t, p.ldTypes)

	assert.True(t, p.hasLDType("product"))
	assert.True(t, p.loaded)
}

func TestClassify_DOMCapKeepsStrongerSignal(t *testing.T) {
	res := Classify("https://shop.example.com/products/widget-2000", dashboardHeavy)

	assert.Equal(t, models.PageProductDetail, res.PageType)
	assert.Equal(t, models.PageDashboard, res.RunnerUp)
	assert.Equal(t, DOMCap, res.RunnerUpScore)
	assert.Contains(t, res.Signals, "meta_ld_product_detail")
	assert.Contains(t, res.Signals, "dom_tables")
	assert.Contains(t, res.Signals, "dom_icons")
	assert.Contains(t, res.Signals, "dom_sidebar")
}

func TestClassify_DashboardWithoutCompetingEvidence(t *testing.T) {
	markup := strings.Replace(dashboardHeavy, `"@type":"Product"`, `"@type":"WebPage"`, 1)
	res := Classify("https://app.example.com/dashboard/overview", markup)
	assert.Equal(t, models.PageDashboard, res.PageType)
	assert.Equal(t, "", res.Schema)
}

func TestClassify_Table(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		markup string
		want   models.PageType
		signal string
	}{
		{
			name: "government domain",
			url:  "https://www.cdc.gov/flu/index.html",
			want: models.PageGovernment, signal: "url_gov_domain",
		},
		{
			name: "graph wrapped news article",
			url:  "https://example.com/2024/05/01/story",
			markup: `<script type="application/ld+json">{"@context":"https://schema.org","@graph":[` +
				`{"@type":"WebPage"},{"@type":["NewsArticle","Article"],"headline":"Story"}]}</script><p>Short.</p>`,
			want: models.PageNewsArticle, signal: "meta_ld_news_article",
		},
		{
			name:   "challenge page",
			url:    "https://example.com/item",
			markup: `<html><head><title>Just a moment...</title></head><body><div id="challenge-platform"></div></body></html>`,
			want:   models.PageBlocked, signal: "meta_title_challenge",
		},
		{
			name:   "login form",
			url:    "https://example.com/login",
			markup: `<form><input name="user"><input type="password" name="pw"></form>`,
			want:   models.PageLogin, signal: "dom_password_field",
		},
		{
			name:   "pricing page",
			url:    "https://saas.example.com/pricing",
			markup: `<div>Starter $9/mo</div><div>Team $29/mo</div>`,
			want:   models.PageSaaSPricing, signal: "dom_pricing_tiers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(tt.url, tt.markup)
			assert.Equal(t, tt.want, res.PageType)
			assert.Contains(t, res.Signals, tt.signal)
			assert.Greater(t, res.Confidence, 0.0)
			assert.LessOrEqual(t, res.Confidence, 1.0)
		})
	}
}

func TestClassify_BelowThresholdIsUnknown(t *testing.T) {
	res := Classify("https://example.com/", "<p>hello</p>")

	assert.Equal(t, models.PageUnknown, res.PageType)
	assert.Equal(t, 0.0, res.Confidence)
	assert.Equal(t, "", res.Schema)
	assert.Less(t, res.Score, DefaultThreshold)
}

func TestClassify_NoEvidence(t *testing.T) {
	res := Classify("", "")
	assert.Equal(t, models.PageUnknown, res.PageType)
	assert.Equal(t, models.PageUnknown, res.RunnerUp)
	assert.Empty(t, res.Signals)
	assert.NotNil(t, res.Signals)
}

func TestCollectTypes_DepthBound(t *testing.T) {
	var v any = map[string]any{"@type": "Product"}
	for i := 0; i < ldTypeDepth+2; i++ {
		v = []any{v}
	}
	out := make(map[string]bool)
	collectTypes(v, 0, out)
	assert.Empty(t, out)

	shallow := map[string]any{
		"@type":      "WebPage",
		"mainEntity": map[string]any{"@type": []any{"FAQPage", "WebPageElement"}},
	}
	out = make(map[string]bool)
	collectTypes(shallow, 0, out)
	assert.True(t, out["faqpage"])
	assert.True(t, out["webpage"])
}

func TestHostKind(t *testing.T) {
	tests := map[string]string{
		"www.cdc.gov":        "gov",
		"www.gov.uk":         "gov",
		"army.mil":           "gov",
		"cs.stanford.edu":    "edu",
		"en.wikipedia.org":   "wiki",
		"shop.example.com":   "commercial",
		"www.example.gov:80": "gov",
	}
	for host, want := range tests {
		assert.Equal(t, want, hostKind(host), host)
	}
}
