// Package request turns one command input plus typed per-command options into
// an outbound API request descriptor.
//
// Every command kind has its own options struct implementing Options. Build
// dispatches on the concrete type; there is no string-keyed flag map.
package request

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Kind identifies an API command.
type Kind string

// Command kinds.
const (
	KindUsage               Kind = "usage"
	KindScrape              Kind = "scrape"
	KindGoogle              Kind = "google"
	KindFastSearch          Kind = "fast-search"
	KindAmazonProduct       Kind = "amazon-product"
	KindAmazonSearch        Kind = "amazon-search"
	KindWalmartSearch       Kind = "walmart-search"
	KindWalmartProduct      Kind = "walmart-product"
	KindYouTubeSearch       Kind = "youtube-search"
	KindYouTubeMetadata     Kind = "youtube-metadata"
	KindYouTubeTranscript   Kind = "youtube-transcript"
	KindYouTubeTrainability Kind = "youtube-trainability"
	KindChatGPT             Kind = "chatgpt"
)

// ErrEmptyInput is returned when the input value is blank.
var ErrEmptyInput = errors.New("input must not be empty")

// Descriptor is a fully-formed outbound request, minus credentials.
// The client adds the API key and base URL.
type Descriptor struct {
	Kind        Kind
	Method      string
	Path        string
	Params      url.Values
	Body        string
	ContentType string
}

// Options is implemented by the per-command option structs.
type Options interface {
	Kind() Kind
}

// Usage returns the descriptor for the account usage endpoint.
func Usage() Descriptor {
	return Descriptor{
		Kind:   KindUsage,
		Method: "GET",
		Path:   "/usage",
		Params: url.Values{},
	}
}

// Build produces the request descriptor for a single input.
func Build(opts Options, input string) (Descriptor, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Descriptor{}, ErrEmptyInput
	}

	switch o := opts.(type) {
	case ScrapeOptions:
		return buildScrape(o, input)
	case GoogleOptions:
		return get(KindGoogle, "/google", o.params(input)), nil
	case FastSearchOptions:
		return get(KindFastSearch, "/fast_search", o.params(input)), nil
	case AmazonProductOptions:
		return get(KindAmazonProduct, "/amazon/product", o.params(input)), nil
	case AmazonSearchOptions:
		return get(KindAmazonSearch, "/amazon/search", o.params(input)), nil
	case WalmartSearchOptions:
		return get(KindWalmartSearch, "/walmart/search", o.params(input)), nil
	case WalmartProductOptions:
		return get(KindWalmartProduct, "/walmart/product", o.params(input)), nil
	case YouTubeSearchOptions:
		return get(KindYouTubeSearch, "/youtube/search", o.params(input)), nil
	case YouTubeMetadataOptions:
		return get(KindYouTubeMetadata, "/youtube/metadata", videoParams(input)), nil
	case YouTubeTranscriptOptions:
		return get(KindYouTubeTranscript, "/youtube/transcript", o.params(input)), nil
	case YouTubeTrainabilityOptions:
		return get(KindYouTubeTrainability, "/youtube/trainability", videoParams(input)), nil
	case ChatGPTOptions:
		p := newParams()
		p.str("prompt", input)
		return get(KindChatGPT, "/chatgpt", p.values), nil
	case nil:
		return Descriptor{}, fmt.Errorf("build request: options are required")
	default:
		return Descriptor{}, fmt.Errorf("build request: unsupported options type %T", opts)
	}
}

// Validate checks options before any network call is made.
func Validate(opts Options) error {
	switch o := opts.(type) {
	case ScrapeOptions:
		return o.validate()
	case nil:
		return fmt.Errorf("options are required")
	default:
		return nil
	}
}

func get(kind Kind, path string, params url.Values) Descriptor {
	return Descriptor{Kind: kind, Method: "GET", Path: path, Params: params}
}

func videoParams(videoID string) url.Values {
	p := newParams()
	p.str("video_id", videoID)
	return p.values
}

// ParseBool interprets the tri-state boolean flag strings accepted by the CLI.
// Empty means unset; "true", "1" and "yes" (any case) mean true; anything else false.
func ParseBool(s string) *bool {
	if s == "" {
		return nil
	}
	v := false
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		v = true
	}
	return &v
}

// params accumulates query parameters, skipping unset values.
type params struct {
	values url.Values
}

func newParams() *params {
	return &params{values: url.Values{}}
}

func (p *params) str(key, value string) {
	if value != "" {
		p.values.Set(key, value)
	}
}

func (p *params) num(key string, value int) {
	if value != 0 {
		p.values.Set(key, strconv.Itoa(value))
	}
}

func (p *params) flag(key string, value *bool) {
	if value != nil {
		p.values.Set(key, strconv.FormatBool(*value))
	}
}
