package request

import (
	"fmt"
	"net/url"
	"strings"
)

// ScrapeOptions configures the HTML scraping endpoint.
type ScrapeOptions struct {
	Method                string
	Body                  string
	ContentType           string
	RenderJS              *bool
	JSScenario            string
	Wait                  int
	WaitFor               string
	WaitBrowser           string
	BlockAds              *bool
	BlockResources        *bool
	WindowWidth           int
	WindowHeight          int
	PremiumProxy          *bool
	StealthProxy          *bool
	CountryCode           string
	OwnProxy              string
	ForwardHeaders        *bool
	ForwardHeadersPure    *bool
	Headers               []string // "Key:Value"
	JSONResponse          *bool
	Screenshot            *bool
	ScreenshotSelector    string
	ScreenshotFullPage    *bool
	ReturnPageSource      *bool
	ReturnMarkdown        *bool
	ReturnText            *bool
	ExtractRules          string
	AIQuery               string
	AISelector            string
	AIExtractRules        string
	SessionID             int
	Timeout               int
	Cookies               string
	Device                string
	CustomGoogle          *bool
	TransparentStatusCode *bool
	ScrapingConfig        string
}

// Kind implements Options.
func (ScrapeOptions) Kind() Kind { return KindScrape }

func (o ScrapeOptions) method() string {
	if o.Method == "" {
		return "GET"
	}
	return strings.ToUpper(o.Method)
}

func (o ScrapeOptions) validate() error {
	switch o.method() {
	case "GET":
		if o.Body != "" {
			return fmt.Errorf("request body requires --method POST or PUT")
		}
	case "POST", "PUT":
	default:
		return fmt.Errorf("unsupported method %q (expected GET, POST or PUT)", o.Method)
	}
	_, err := parseHeaders(o.Headers)
	return err
}

// parseHeaders splits "Key:Value" pairs.
func parseHeaders(raw []string) ([][2]string, error) {
	out := make([][2]string, 0, len(raw))
	for _, h := range raw {
		k, v, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("invalid header format %q, expected Key:Value", h)
		}
		out = append(out, [2]string{strings.TrimSpace(k), strings.TrimSpace(v)})
	}
	return out, nil
}

func buildScrape(o ScrapeOptions, target string) (Descriptor, error) {
	if err := o.validate(); err != nil {
		return Descriptor{}, err
	}

	p := newParams()
	p.str("url", target)
	method := o.method()
	if method != "GET" {
		p.str("method", method)
	}
	p.flag("render_js", o.RenderJS)
	p.str("js_scenario", o.JSScenario)
	p.num("wait", o.Wait)
	p.str("wait_for", o.WaitFor)
	p.str("wait_browser", o.WaitBrowser)
	p.flag("block_ads", o.BlockAds)
	p.flag("block_resources", o.BlockResources)
	p.num("window_width", o.WindowWidth)
	p.num("window_height", o.WindowHeight)
	p.flag("premium_proxy", o.PremiumProxy)
	p.flag("stealth_proxy", o.StealthProxy)
	p.str("country_code", o.CountryCode)
	p.str("own_proxy", o.OwnProxy)
	p.flag("forward_headers", o.ForwardHeaders)
	p.flag("forward_headers_pure", o.ForwardHeadersPure)
	p.flag("json_response", o.JSONResponse)
	p.flag("screenshot", o.Screenshot)
	p.str("screenshot_selector", o.ScreenshotSelector)
	p.flag("screenshot_full_page", o.ScreenshotFullPage)
	p.flag("return_page_source", o.ReturnPageSource)
	p.flag("return_page_markdown", o.ReturnMarkdown)
	p.flag("return_page_text", o.ReturnText)
	p.str("extract_rules", o.ExtractRules)
	p.str("ai_query", o.AIQuery)
	p.str("ai_selector", o.AISelector)
	p.str("ai_extract_rules", o.AIExtractRules)
	p.num("session_id", o.SessionID)
	p.num("timeout", o.Timeout)
	p.str("cookies", o.Cookies)
	p.str("device", o.Device)
	p.flag("custom_google", o.CustomGoogle)
	p.flag("transparent_status_code", o.TransparentStatusCode)
	p.str("scraping_config", o.ScrapingConfig)

	headers, _ := parseHeaders(o.Headers)
	for _, h := range headers {
		p.str("Spb-"+h[0], h[1])
	}

	d := Descriptor{
		Kind:   KindScrape,
		Method: method,
		Path:   "",
		Params: p.values,
	}
	if method != "GET" {
		d.Body = o.Body
		d.ContentType = o.ContentType
	}
	return d, nil
}

// GoogleOptions configures the Google search endpoint.
type GoogleOptions struct {
	SearchType   string
	CountryCode  string
	Device       string
	Page         int
	Language     string
	NFPR         *bool
	ExtraParams  string
	AddHTML      *bool
	LightRequest *bool
}

// Kind implements Options.
func (GoogleOptions) Kind() Kind { return KindGoogle }

func (o GoogleOptions) params(query string) url.Values {
	p := newParams()
	p.str("search", query)
	p.str("search_type", o.SearchType)
	p.str("country_code", o.CountryCode)
	p.str("device", o.Device)
	p.num("page", o.Page)
	p.str("language", o.Language)
	p.flag("nfpr", o.NFPR)
	p.str("extra_params", o.ExtraParams)
	p.flag("add_html", o.AddHTML)
	p.flag("light_request", o.LightRequest)
	return p.values
}

// FastSearchOptions configures the fast search endpoint.
type FastSearchOptions struct {
	Page        int
	CountryCode string
	Language    string
}

// Kind implements Options.
func (FastSearchOptions) Kind() Kind { return KindFastSearch }

func (o FastSearchOptions) params(query string) url.Values {
	p := newParams()
	p.str("search", query)
	p.num("page", o.Page)
	p.str("country_code", o.CountryCode)
	p.str("language", o.Language)
	return p.values
}

// AmazonProductOptions configures the Amazon product endpoint. Input is an ASIN.
type AmazonProductOptions struct {
	Device       string
	Domain       string
	Country      string
	ZipCode      string
	Language     string
	Currency     string
	AddHTML      *bool
	LightRequest *bool
	Screenshot   *bool
}

// Kind implements Options.
func (AmazonProductOptions) Kind() Kind { return KindAmazonProduct }

func (o AmazonProductOptions) params(asin string) url.Values {
	p := newParams()
	p.str("query", asin)
	p.str("device", o.Device)
	p.str("domain", o.Domain)
	p.str("country", o.Country)
	p.str("zip_code", o.ZipCode)
	p.str("language", o.Language)
	p.str("currency", o.Currency)
	p.flag("add_html", o.AddHTML)
	p.flag("light_request", o.LightRequest)
	p.flag("screenshot", o.Screenshot)
	return p.values
}

// AmazonSearchOptions configures the Amazon search endpoint.
type AmazonSearchOptions struct {
	StartPage         int
	Pages             int
	SortBy            string
	Device            string
	Domain            string
	Country           string
	ZipCode           string
	Language          string
	Currency          string
	CategoryID        string
	MerchantID        string
	AutoselectVariant *bool
	AddHTML           *bool
	LightRequest      *bool
	Screenshot        *bool
}

// Kind implements Options.
func (AmazonSearchOptions) Kind() Kind { return KindAmazonSearch }

func (o AmazonSearchOptions) params(query string) url.Values {
	p := newParams()
	p.str("query", query)
	p.num("start_page", o.StartPage)
	p.num("pages", o.Pages)
	p.str("sort_by", o.SortBy)
	p.str("device", o.Device)
	p.str("domain", o.Domain)
	p.str("country", o.Country)
	p.str("zip_code", o.ZipCode)
	p.str("language", o.Language)
	p.str("currency", o.Currency)
	p.str("category_id", o.CategoryID)
	p.str("merchant_id", o.MerchantID)
	p.flag("autoselect_variant", o.AutoselectVariant)
	p.flag("add_html", o.AddHTML)
	p.flag("light_request", o.LightRequest)
	p.flag("screenshot", o.Screenshot)
	return p.values
}

// WalmartSearchOptions configures the Walmart search endpoint.
type WalmartSearchOptions struct {
	MinPrice         int
	MaxPrice         int
	SortBy           string
	Device           string
	Domain           string
	FulfillmentSpeed string
	FulfillmentType  string
	DeliveryZip      string
	StoreID          string
	AddHTML          *bool
	LightRequest     *bool
	Screenshot       *bool
}

// Kind implements Options.
func (WalmartSearchOptions) Kind() Kind { return KindWalmartSearch }

func (o WalmartSearchOptions) params(query string) url.Values {
	p := newParams()
	p.str("query", query)
	p.num("min_price", o.MinPrice)
	p.num("max_price", o.MaxPrice)
	p.str("sort_by", o.SortBy)
	p.str("device", o.Device)
	p.str("domain", o.Domain)
	p.str("fulfillment_speed", o.FulfillmentSpeed)
	p.str("fulfillment_type", o.FulfillmentType)
	p.str("delivery_zip", o.DeliveryZip)
	p.str("store_id", o.StoreID)
	p.flag("add_html", o.AddHTML)
	p.flag("light_request", o.LightRequest)
	p.flag("screenshot", o.Screenshot)
	return p.values
}

// WalmartProductOptions configures the Walmart product endpoint. Input is a product ID.
type WalmartProductOptions struct {
	Domain       string
	DeliveryZip  string
	StoreID      string
	AddHTML      *bool
	LightRequest *bool
	Screenshot   *bool
}

// Kind implements Options.
func (WalmartProductOptions) Kind() Kind { return KindWalmartProduct }

func (o WalmartProductOptions) params(productID string) url.Values {
	p := newParams()
	p.str("product_id", productID)
	p.str("domain", o.Domain)
	p.str("delivery_zip", o.DeliveryZip)
	p.str("store_id", o.StoreID)
	p.flag("add_html", o.AddHTML)
	p.flag("light_request", o.LightRequest)
	p.flag("screenshot", o.Screenshot)
	return p.values
}

// YouTubeSearchOptions configures the YouTube search endpoint.
type YouTubeSearchOptions struct {
	UploadDate      string
	Type            string
	Duration        string
	SortBy          string
	HD              *bool
	Is4K            *bool
	Subtitles       *bool
	CreativeCommons *bool
	Live            *bool
	Is360           *bool
	Is3D            *bool
	HDR             *bool
	Location        *bool
	VR180           *bool
}

// Kind implements Options.
func (YouTubeSearchOptions) Kind() Kind { return KindYouTubeSearch }

func (o YouTubeSearchOptions) params(query string) url.Values {
	p := newParams()
	p.str("search", query)
	p.str("upload_date", o.UploadDate)
	p.str("type", o.Type)
	p.str("duration", o.Duration)
	p.str("sort_by", o.SortBy)
	p.flag("hd", o.HD)
	p.flag("4k", o.Is4K)
	p.flag("subtitles", o.Subtitles)
	p.flag("creative_commons", o.CreativeCommons)
	p.flag("live", o.Live)
	p.flag("360", o.Is360)
	p.flag("3d", o.Is3D)
	p.flag("hdr", o.HDR)
	p.flag("location", o.Location)
	p.flag("vr180", o.VR180)
	return p.values
}

// YouTubeMetadataOptions has no settings; input is a video ID.
type YouTubeMetadataOptions struct{}

// Kind implements Options.
func (YouTubeMetadataOptions) Kind() Kind { return KindYouTubeMetadata }

// YouTubeTranscriptOptions configures the transcript endpoint; input is a video ID.
type YouTubeTranscriptOptions struct {
	Language         string
	TranscriptOrigin string
}

// Kind implements Options.
func (YouTubeTranscriptOptions) Kind() Kind { return KindYouTubeTranscript }

func (o YouTubeTranscriptOptions) params(videoID string) url.Values {
	p := newParams()
	p.str("video_id", videoID)
	p.str("language", o.Language)
	p.str("transcript_origin", o.TranscriptOrigin)
	return p.values
}

// YouTubeTrainabilityOptions has no settings; input is a video ID.
type YouTubeTrainabilityOptions struct{}

// Kind implements Options.
func (YouTubeTrainabilityOptions) Kind() Kind { return KindYouTubeTrainability }

// ChatGPTOptions has no settings; input is the prompt.
type ChatGPTOptions struct{}

// Kind implements Options.
func (ChatGPTOptions) Kind() Kind { return KindChatGPT }
