package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/dan1sh0/Baseera-AI/internal/corpus"
)

const (
	defaultHadithBaseURL = "https://hadithapi.com/api"
	hadithPageSize       = 25
)

// HadithClient fetches narrations collection by collection from the
// hadithapi.com paginated listing endpoint.
type HadithClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewHadithClient creates a client for the given base URL and API key.
// baseURL defaults to the public hadithapi.com endpoint if empty.
func NewHadithClient(baseURL, apiKey string) *HadithClient {
	if baseURL == "" {
		baseURL = defaultHadithBaseURL
	}
	return &HadithClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
	}
}

// hadithListResponse is the hadithapi.com listing shape: a paginated
// envelope whose data entries nest book and chapter records.
type hadithListResponse struct {
	Hadiths struct {
		Data []hadithItem `json:"data"`
	} `json:"hadiths"`
}

type hadithItem struct {
	HadithNumber    json.Number `json:"hadithNumber"`
	EnglishNarrator string      `json:"englishNarrator"`
	HadithEnglish   string      `json:"hadithEnglish"`
	HadithArabic    string      `json:"hadithArabic"`
	Status          string      `json:"status"`
	Book            struct {
		BookName string `json:"bookName"`
		BookSlug string `json:"bookSlug"`
	} `json:"book"`
	Chapter struct {
		ChapterNumber json.Number `json:"chapterNumber"`
	} `json:"chapter"`
}

// FetchPage fetches one page of a collection. A page with zero items marks
// the normal end of pagination for that collection. Individual items that
// fail grading or normalization are skipped, not fatal.
func (c *HadithClient) FetchPage(ctx context.Context, book string, page int) ([]corpus.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("book", book)
	q.Set("paginate", strconv.Itoa(hadithPageSize))
	q.Set("page", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/hadiths?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s page %d: %w", book, page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode)
	}

	var body hadithListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataFormat, err)
	}

	var docs []corpus.Document
	for _, item := range body.Hadiths.Data {
		doc, ok := normalizeHadith(book, item)
		if !ok {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// normalizeHadith converts an upstream listing item into a Document.
// Narrations outside the accepted authenticity grades are excluded.
func normalizeHadith(book string, item hadithItem) (corpus.Document, bool) {
	grade, ok := corpus.ParseGrade(item.Status)
	if !ok {
		return corpus.Document{}, false
	}

	number, err := item.HadithNumber.Int64()
	if err != nil || number <= 0 {
		log.Printf("ingest: %s: skipping hadith with bad number %q", book, item.HadithNumber)
		return corpus.Document{}, false
	}
	if item.HadithEnglish == "" {
		log.Printf("ingest: %s: skipping hadith %d with empty text", book, number)
		return corpus.Document{}, false
	}

	name := item.Book.BookName
	if name == "" {
		name = book
	}

	loc := corpus.Locator{Collection: book, Number: int(number)}
	return corpus.Document{
		ID:         corpus.Key(corpus.SourceHadith, loc),
		Kind:       corpus.SourceHadith,
		Locator:    loc,
		SourceName: name,
		Arabic:     item.HadithArabic,
		English:    item.HadithEnglish,
		Grade:      grade,
		Narrator:   item.EnglishNarrator,
	}, true
}
