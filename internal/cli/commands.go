package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Sternrassler/scrapingbee-cli/pkg/client"
	"github.com/Sternrassler/scrapingbee-cli/pkg/logging"
	"github.com/Sternrassler/scrapingbee-cli/pkg/request"
	"github.com/Sternrassler/scrapingbee-cli/pkg/usage"
)

// boolFlags collects tri-state boolean flags. Unset flags are omitted from
// the request; set flags accept true/1/yes, anything else is false.
type boolFlags map[string]*string

func (b boolFlags) add(fs *pflag.FlagSet, names ...string) {
	for _, name := range names {
		v := new(string)
		fs.StringVar(v, name, "", "true or false")
		b[name] = v
	}
}

func (b boolFlags) get(name string) *bool {
	return request.ParseBool(*b[name])
}

func addInputFile(fs *pflag.FlagSet, target *string, noun string) {
	fs.StringVar(target, "input-file", "", "batch: one "+noun+" per line")
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func newUsageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Check API credit usage and concurrency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client.New(a.cfg)
			if err != nil {
				return err
			}

			body, err := usage.NewProber(c, logging.NewLogger("usage")).FetchRaw(cmd.Context())
			if err != nil {
				var apiErr *client.APIError
				if errors.As(err, &apiErr) {
					fmt.Fprintf(cmd.ErrOrStderr(), "API returned status %d: %s\n", apiErr.StatusCode, apiErr.Body)
					return &ExitError{Code: 1}
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), prettyJSON(body))
			return nil
		},
	}
}

func newScrapeCmd(a *app) *cobra.Command {
	var (
		inputFile string
		opts      request.ScrapeOptions
		bools     = boolFlags{}
	)

	cmd := &cobra.Command{
		Use:   "scrape [url]",
		Short: "Scrape a web page using the HTML API",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.RenderJS = bools.get("render-js")
			opts.BlockAds = bools.get("block-ads")
			opts.BlockResources = bools.get("block-resources")
			opts.PremiumProxy = bools.get("premium-proxy")
			opts.StealthProxy = bools.get("stealth-proxy")
			opts.ForwardHeaders = bools.get("forward-headers")
			opts.ForwardHeadersPure = bools.get("forward-headers-pure")
			opts.JSONResponse = bools.get("json-response")
			opts.Screenshot = bools.get("screenshot")
			opts.ScreenshotFullPage = bools.get("screenshot-full-page")
			opts.ReturnPageSource = bools.get("return-page-source")
			opts.ReturnMarkdown = bools.get("return-markdown")
			opts.ReturnText = bools.get("return-text")
			opts.CustomGoogle = bools.get("custom-google")
			opts.TransparentStatusCode = bools.get("transparent-status-code")
			return a.execute(cmd, firstArg(args), inputFile, "URL", opts)
		},
	}

	fs := cmd.Flags()
	addInputFile(fs, &inputFile, "URL")
	bools.add(fs, "render-js", "block-ads", "block-resources", "premium-proxy", "stealth-proxy",
		"forward-headers", "forward-headers-pure", "json-response", "screenshot", "screenshot-full-page",
		"return-page-source", "return-markdown", "return-text", "custom-google", "transparent-status-code")
	fs.StringVar(&opts.JSScenario, "js-scenario", "", "JavaScript scenario (JSON)")
	fs.IntVar(&opts.Wait, "wait", 0, "wait milliseconds before returning")
	fs.StringVar(&opts.WaitFor, "wait-for", "", "CSS selector to wait for")
	fs.StringVar(&opts.WaitBrowser, "wait-browser", "", "browser event to wait for")
	fs.IntVar(&opts.WindowWidth, "window-width", 0, "viewport width")
	fs.IntVar(&opts.WindowHeight, "window-height", 0, "viewport height")
	fs.StringVar(&opts.CountryCode, "country-code", "", "proxy country code")
	fs.StringVar(&opts.OwnProxy, "own-proxy", "", "use your own proxy")
	fs.StringArrayVarP(&opts.Headers, "header", "H", nil, "custom header Key:Value (repeatable)")
	fs.StringVar(&opts.ScreenshotSelector, "screenshot-selector", "", "CSS selector to screenshot")
	fs.StringVar(&opts.ExtractRules, "extract-rules", "", "extraction rules (JSON)")
	fs.StringVar(&opts.AIQuery, "ai-query", "", "AI extraction query")
	fs.StringVar(&opts.AISelector, "ai-selector", "", "CSS selector scoping the AI query")
	fs.StringVar(&opts.AIExtractRules, "ai-extract-rules", "", "AI extraction rules (JSON)")
	fs.IntVar(&opts.SessionID, "session-id", 0, "session ID for sticky proxies")
	fs.IntVar(&opts.Timeout, "timeout", 0, "ScrapingBee timeout in milliseconds")
	fs.StringVar(&opts.Cookies, "cookies", "", "cookies to send")
	fs.StringVar(&opts.Device, "device", "", "device type (desktop, mobile)")
	fs.StringVar(&opts.ScrapingConfig, "scraping-config", "", "saved scraping configuration name")
	fs.StringVarP(&opts.Method, "method", "X", "GET", "HTTP method (GET, POST, PUT)")
	fs.StringVarP(&opts.Body, "data", "d", "", "request body for POST/PUT")
	fs.StringVar(&opts.ContentType, "content-type", "", "Content-Type of the request body")

	return cmd
}

func newGoogleCmd(a *app) *cobra.Command {
	var (
		inputFile string
		opts      request.GoogleOptions
		bools     = boolFlags{}
	)

	cmd := &cobra.Command{
		Use:   "google [query]",
		Short: "Search Google",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.NFPR = bools.get("nfpr")
			opts.AddHTML = bools.get("add-html")
			opts.LightRequest = bools.get("light-request")
			return a.execute(cmd, firstArg(args), inputFile, "query", opts)
		},
	}

	fs := cmd.Flags()
	addInputFile(fs, &inputFile, "query")
	fs.StringVar(&opts.SearchType, "search-type", "", "search type (classic, news, maps, images, ...)")
	fs.StringVar(&opts.CountryCode, "country-code", "", "country code")
	fs.StringVar(&opts.Device, "device", "", "device type (desktop, mobile)")
	fs.IntVar(&opts.Page, "page", 0, "result page")
	fs.StringVar(&opts.Language, "language", "", "language code")
	fs.StringVar(&opts.ExtraParams, "extra-params", "", "extra Google URL parameters")
	bools.add(fs, "nfpr", "add-html", "light-request")

	return cmd
}

func newFastSearchCmd(a *app) *cobra.Command {
	var (
		inputFile string
		opts      request.FastSearchOptions
	)

	cmd := &cobra.Command{
		Use:   "fast-search [query]",
		Short: "Run a fast web search",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execute(cmd, firstArg(args), inputFile, "query", opts)
		},
	}

	fs := cmd.Flags()
	addInputFile(fs, &inputFile, "query")
	fs.IntVar(&opts.Page, "page", 0, "result page")
	fs.StringVar(&opts.CountryCode, "country-code", "", "country code")
	fs.StringVar(&opts.Language, "language", "", "language code")

	return cmd
}

func newAmazonProductCmd(a *app) *cobra.Command {
	var (
		inputFile string
		opts      request.AmazonProductOptions
		bools     = boolFlags{}
	)

	cmd := &cobra.Command{
		Use:   "amazon-product [asin]",
		Short: "Fetch an Amazon product by ASIN",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.AddHTML = bools.get("add-html")
			opts.LightRequest = bools.get("light-request")
			opts.Screenshot = bools.get("screenshot")
			return a.execute(cmd, firstArg(args), inputFile, "ASIN", opts)
		},
	}

	fs := cmd.Flags()
	addInputFile(fs, &inputFile, "ASIN")
	fs.StringVar(&opts.Device, "device", "", "device type")
	fs.StringVar(&opts.Domain, "domain", "", "Amazon domain (com, de, ...)")
	fs.StringVar(&opts.Country, "country", "", "country code")
	fs.StringVar(&opts.ZipCode, "zip-code", "", "delivery zip code")
	fs.StringVar(&opts.Language, "language", "", "language code")
	fs.StringVar(&opts.Currency, "currency", "", "currency code")
	bools.add(fs, "add-html", "light-request", "screenshot")

	return cmd
}

func newAmazonSearchCmd(a *app) *cobra.Command {
	var (
		inputFile string
		opts      request.AmazonSearchOptions
		bools     = boolFlags{}
	)

	cmd := &cobra.Command{
		Use:   "amazon-search [query]",
		Short: "Search Amazon",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.AutoselectVariant = bools.get("autoselect-variant")
			opts.AddHTML = bools.get("add-html")
			opts.LightRequest = bools.get("light-request")
			opts.Screenshot = bools.get("screenshot")
			return a.execute(cmd, firstArg(args), inputFile, "query", opts)
		},
	}

	fs := cmd.Flags()
	addInputFile(fs, &inputFile, "query")
	fs.IntVar(&opts.StartPage, "start-page", 0, "first result page")
	fs.IntVar(&opts.Pages, "pages", 0, "number of pages")
	fs.StringVar(&opts.SortBy, "sort-by", "", "sort order")
	fs.StringVar(&opts.Device, "device", "", "device type")
	fs.StringVar(&opts.Domain, "domain", "", "Amazon domain")
	fs.StringVar(&opts.Country, "country", "", "country code")
	fs.StringVar(&opts.ZipCode, "zip-code", "", "delivery zip code")
	fs.StringVar(&opts.Language, "language", "", "language code")
	fs.StringVar(&opts.Currency, "currency", "", "currency code")
	fs.StringVar(&opts.CategoryID, "category-id", "", "category ID")
	fs.StringVar(&opts.MerchantID, "merchant-id", "", "merchant ID")
	bools.add(fs, "autoselect-variant", "add-html", "light-request", "screenshot")

	return cmd
}

func newWalmartSearchCmd(a *app) *cobra.Command {
	var (
		inputFile string
		opts      request.WalmartSearchOptions
		bools     = boolFlags{}
	)

	cmd := &cobra.Command{
		Use:   "walmart-search [query]",
		Short: "Search Walmart",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.AddHTML = bools.get("add-html")
			opts.LightRequest = bools.get("light-request")
			opts.Screenshot = bools.get("screenshot")
			return a.execute(cmd, firstArg(args), inputFile, "query", opts)
		},
	}

	fs := cmd.Flags()
	addInputFile(fs, &inputFile, "query")
	fs.IntVar(&opts.MinPrice, "min-price", 0, "minimum price")
	fs.IntVar(&opts.MaxPrice, "max-price", 0, "maximum price")
	fs.StringVar(&opts.SortBy, "sort-by", "", "sort order")
	fs.StringVar(&opts.Device, "device", "", "device type")
	fs.StringVar(&opts.Domain, "domain", "", "Walmart domain")
	fs.StringVar(&opts.FulfillmentSpeed, "fulfillment-speed", "", "fulfillment speed")
	fs.StringVar(&opts.FulfillmentType, "fulfillment-type", "", "fulfillment type")
	fs.StringVar(&opts.DeliveryZip, "delivery-zip", "", "delivery zip code")
	fs.StringVar(&opts.StoreID, "store-id", "", "store ID")
	bools.add(fs, "add-html", "light-request", "screenshot")

	return cmd
}

func newWalmartProductCmd(a *app) *cobra.Command {
	var (
		inputFile string
		opts      request.WalmartProductOptions
		bools     = boolFlags{}
	)

	cmd := &cobra.Command{
		Use:   "walmart-product [product-id]",
		Short: "Fetch a Walmart product by ID",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.AddHTML = bools.get("add-html")
			opts.LightRequest = bools.get("light-request")
			opts.Screenshot = bools.get("screenshot")
			return a.execute(cmd, firstArg(args), inputFile, "product ID", opts)
		},
	}

	fs := cmd.Flags()
	addInputFile(fs, &inputFile, "product ID")
	fs.StringVar(&opts.Domain, "domain", "", "Walmart domain")
	fs.StringVar(&opts.DeliveryZip, "delivery-zip", "", "delivery zip code")
	fs.StringVar(&opts.StoreID, "store-id", "", "store ID")
	bools.add(fs, "add-html", "light-request", "screenshot")

	return cmd
}

func newYouTubeSearchCmd(a *app) *cobra.Command {
	var (
		inputFile string
		opts      request.YouTubeSearchOptions
		bools     = boolFlags{}
	)

	cmd := &cobra.Command{
		Use:   "youtube-search [query]",
		Short: "Search YouTube",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.HD = bools.get("hd")
			opts.Is4K = bools.get("4k")
			opts.Subtitles = bools.get("subtitles")
			opts.CreativeCommons = bools.get("creative-commons")
			opts.Live = bools.get("live")
			opts.Is360 = bools.get("360")
			opts.Is3D = bools.get("3d")
			opts.HDR = bools.get("hdr")
			opts.Location = bools.get("location")
			opts.VR180 = bools.get("vr180")
			return a.execute(cmd, firstArg(args), inputFile, "query", opts)
		},
	}

	fs := cmd.Flags()
	addInputFile(fs, &inputFile, "query")
	fs.StringVar(&opts.UploadDate, "upload-date", "", "upload date filter")
	fs.StringVar(&opts.Type, "type", "", "result type")
	fs.StringVar(&opts.Duration, "duration", "", "duration filter")
	fs.StringVar(&opts.SortBy, "sort-by", "", "sort order")
	bools.add(fs, "hd", "4k", "subtitles", "creative-commons", "live", "360", "3d", "hdr", "location", "vr180")

	return cmd
}

func newYouTubeMetadataCmd(a *app) *cobra.Command {
	var inputFile string

	cmd := &cobra.Command{
		Use:   "youtube-metadata [video-id]",
		Short: "Fetch YouTube video metadata",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execute(cmd, firstArg(args), inputFile, "video ID", request.YouTubeMetadataOptions{})
		},
	}
	addInputFile(cmd.Flags(), &inputFile, "video ID")

	return cmd
}

func newYouTubeTranscriptCmd(a *app) *cobra.Command {
	var (
		inputFile string
		opts      request.YouTubeTranscriptOptions
	)

	cmd := &cobra.Command{
		Use:   "youtube-transcript [video-id]",
		Short: "Fetch a YouTube video transcript",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execute(cmd, firstArg(args), inputFile, "video ID", opts)
		},
	}

	fs := cmd.Flags()
	addInputFile(fs, &inputFile, "video ID")
	fs.StringVar(&opts.Language, "language", "", "transcript language")
	fs.StringVar(&opts.TranscriptOrigin, "transcript-origin", "", "transcript origin (auto_generated, uploader_provided)")

	return cmd
}

func newYouTubeTrainabilityCmd(a *app) *cobra.Command {
	var inputFile string

	cmd := &cobra.Command{
		Use:   "youtube-trainability [video-id]",
		Short: "Check whether a YouTube video may be used for training",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execute(cmd, firstArg(args), inputFile, "video ID", request.YouTubeTrainabilityOptions{})
		},
	}
	addInputFile(cmd.Flags(), &inputFile, "video ID")

	return cmd
}

func newChatGPTCmd(a *app) *cobra.Command {
	var inputFile string

	cmd := &cobra.Command{
		Use:   "chatgpt [prompt...]",
		Short: "Send a prompt to the ChatGPT API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execute(cmd, strings.Join(args, " "), inputFile, "prompt", request.ChatGPTOptions{})
		},
	}
	addInputFile(cmd.Flags(), &inputFile, "prompt")

	return cmd
}
