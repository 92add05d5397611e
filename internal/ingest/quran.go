package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/dan1sh0/Baseera-AI/internal/corpus"
)

const (
	defaultQuranBaseURL = "http://api.alquran.cloud/v1"

	// quranEditions selects the parallel Arabic/English editions fetched
	// per surah: Uthmani script alongside Muhammad Asad's translation.
	quranEditions = "quran-uthmani,en.asad"

	// TotalSurahs is the number of chapters in the Quran.
	TotalSurahs = 114
)

// QuranClient fetches verses chapter by chapter from the alquran.cloud API.
type QuranClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewQuranClient creates a client for the given base URL. baseURL defaults
// to the public alquran.cloud endpoint if empty. Requests are paced to one
// per second to respect upstream rate limits.
func NewQuranClient(baseURL string) *QuranClient {
	if baseURL == "" {
		baseURL = defaultQuranBaseURL
	}
	return &QuranClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
	}
}

// surahResponse is the alquran.cloud editions response: one entry per
// requested edition, each carrying the full ayah list for the chapter.
type surahResponse struct {
	Code int `json:"code"`
	Data []struct {
		Number         int    `json:"number"`
		Name           string `json:"name"`
		EnglishName    string `json:"englishName"`
		RevelationType string `json:"revelationType"`
		Ayahs          []struct {
			NumberInSurah int    `json:"numberInSurah"`
			Text          string `json:"text"`
		} `json:"ayahs"`
	} `json:"data"`
}

// FetchSurah fetches one chapter in both editions, normalizing each ayah
// pair into a verse Document plus the chapter's metadata.
func (c *QuranClient) FetchSurah(ctx context.Context, surah int) ([]corpus.Document, corpus.Surah, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, corpus.Surah{}, err
	}

	url := fmt.Sprintf("%s/surah/%d/editions/%s", c.baseURL, surah, quranEditions)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, corpus.Surah{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, corpus.Surah{}, fmt.Errorf("fetching surah %d: %w", surah, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, corpus.Surah{}, statusError(resp.StatusCode)
	}

	var body surahResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, corpus.Surah{}, fmt.Errorf("%w: %v", ErrDataFormat, err)
	}
	if len(body.Data) < 2 {
		return nil, corpus.Surah{}, fmt.Errorf("%w: expected 2 editions, got %d", ErrDataFormat, len(body.Data))
	}

	arabic, english := body.Data[0], body.Data[1]
	if len(arabic.Ayahs) != len(english.Ayahs) {
		return nil, corpus.Surah{}, fmt.Errorf("%w: edition ayah counts differ (%d vs %d)",
			ErrDataFormat, len(arabic.Ayahs), len(english.Ayahs))
	}

	meta := corpus.Surah{
		Number:         surah,
		Name:           english.EnglishName,
		ArabicName:     arabic.Name,
		RevelationType: english.RevelationType,
		VerseCount:     len(english.Ayahs),
	}

	docs := make([]corpus.Document, 0, len(arabic.Ayahs))
	for i, ayah := range arabic.Ayahs {
		loc := corpus.Locator{Chapter: surah, Verse: ayah.NumberInSurah}
		if loc.Verse == 0 {
			loc.Verse = i + 1
		}
		docs = append(docs, corpus.Document{
			ID:         corpus.Key(corpus.SourceVerse, loc),
			Kind:       corpus.SourceVerse,
			Locator:    loc,
			SourceName: english.EnglishName,
			Arabic:     ayah.Text,
			English:    english.Ayahs[i].Text,
		})
	}
	return docs, meta, nil
}
