package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"golang.org/x/time/rate"

	"github.com/dan1sh0/Baseera-AI/internal/corpus"
)

// Tests disable the client-side request pacing so they run fast.
func unpacedQuran(baseURL string) *QuranClient {
	c := NewQuranClient(baseURL)
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

func unpacedHadith(baseURL, apiKey string) *HadithClient {
	c := NewHadithClient(baseURL, apiKey)
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

func surahJSON(surah, ayahs int) string {
	type ayah struct {
		NumberInSurah int    `json:"numberInSurah"`
		Text          string `json:"text"`
	}
	type edition struct {
		Number      int    `json:"number"`
		EnglishName string `json:"englishName"`
		Ayahs       []ayah `json:"ayahs"`
	}

	arabic := edition{Number: surah, EnglishName: "Al-Baqara"}
	english := edition{Number: surah, EnglishName: "Al-Baqara"}
	for i := 1; i <= ayahs; i++ {
		arabic.Ayahs = append(arabic.Ayahs, ayah{NumberInSurah: i, Text: fmt.Sprintf("arabic %d:%d", surah, i)})
		english.Ayahs = append(english.Ayahs, ayah{NumberInSurah: i, Text: fmt.Sprintf("english %d:%d", surah, i)})
	}

	body, _ := json.Marshal(map[string]any{
		"code": 200,
		"data": []edition{arabic, english},
	})
	return string(body)
}

func TestFetchSurahNormalizesEditions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, surahJSON(2, 3))
	}))
	defer srv.Close()

	c := unpacedQuran(srv.URL)
	docs, meta, err := c.FetchSurah(context.Background(), 2)
	if err != nil {
		t.Fatalf("FetchSurah() error: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("got %d docs, want 3", len(docs))
	}

	d := docs[0]
	if d.ID != "verse:2:1" {
		t.Errorf("doc ID = %q", d.ID)
	}
	if d.Kind != corpus.SourceVerse {
		t.Errorf("kind = %q", d.Kind)
	}
	if d.Arabic != "arabic 2:1" || d.English != "english 2:1" {
		t.Errorf("texts not paired: arabic=%q english=%q", d.Arabic, d.English)
	}
	if d.SourceName != "Al-Baqara" {
		t.Errorf("source name = %q", d.SourceName)
	}
	if meta.Number != 2 || meta.Name != "Al-Baqara" || meta.VerseCount != 3 {
		t.Errorf("surah metadata = %+v", meta)
	}
}

func TestFetchSurahEditionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Editions with differing ayah counts cannot be paired.
		fmt.Fprint(w, `{"code":200,"data":[
			{"englishName":"X","ayahs":[{"numberInSurah":1,"text":"a"}]},
			{"englishName":"X","ayahs":[]}
		]}`)
	}))
	defer srv.Close()

	c := unpacedQuran(srv.URL)
	_, _, err := c.FetchSurah(context.Background(), 1)
	if !errors.Is(err, ErrDataFormat) {
		t.Errorf("err = %v, want ErrDataFormat", err)
	}
}

func TestFetchSurahServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := unpacedQuran(srv.URL)
	_, _, err := c.FetchSurah(context.Background(), 1)
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("err = %v, want ErrUpstream", err)
	}
	if !IsTransient(err) {
		t.Errorf("server error should be transient")
	}
}

func TestRetryTransientThenSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, surahJSON(1, 7))
	}))
	defer srv.Close()

	c := unpacedQuran(srv.URL)
	policy := RetryPolicy{MaxAttempts: 3}

	var docs []corpus.Document
	err := policy.Do(context.Background(), func() error {
		var ferr error
		docs, _, ferr = c.FetchSurah(context.Background(), 1)
		return ferr
	})
	if err != nil {
		t.Fatalf("expected success after retries, got: %v", err)
	}
	if len(docs) != 7 {
		t.Errorf("got %d docs, want 7", len(docs))
	}
	if calls.Load() != 3 {
		t.Errorf("server saw %d calls, want 3", calls.Load())
	}
}

func TestRetryExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := unpacedQuran(srv.URL)
	policy := RetryPolicy{MaxAttempts: 3}

	err := policy.Do(context.Background(), func() error {
		_, _, ferr := c.FetchSurah(context.Background(), 1)
		return ferr
	})
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("err = %v, want ErrUpstream", err)
	}
	if calls.Load() != 3 {
		t.Errorf("server saw %d calls, want exactly MaxAttempts", calls.Load())
	}
}

func TestRetryPermanentNoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := unpacedQuran(srv.URL)
	policy := RetryPolicy{MaxAttempts: 3}

	err := policy.Do(context.Background(), func() error {
		_, _, ferr := c.FetchSurah(context.Background(), 1)
		return ferr
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
	if calls.Load() != 1 {
		t.Errorf("server saw %d calls, permanent errors must not be retried", calls.Load())
	}
}

func TestIngestQuranSkipsFailingSurah(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var surah int
		fmt.Sscanf(r.URL.Path, "/surah/%d/", &surah)
		if surah == 5 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, surahJSON(surah, 2))
	}))
	defer srv.Close()

	in := &Ingestor{
		Quran: unpacedQuran(srv.URL),
		Retry: RetryPolicy{MaxAttempts: 2},
	}
	res, errs := in.Ingest(context.Background())

	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if errs[0].Source != "quran" || errs[0].Page != 5 {
		t.Errorf("error = %+v, want quran page 5", errs[0])
	}
	want := (TotalSurahs - 1) * 2
	if len(res.Documents) != want {
		t.Errorf("got %d docs, want %d (all surahs except the failing one)", len(res.Documents), want)
	}
	if len(res.Surahs) != TotalSurahs-1 {
		t.Errorf("got %d surah records, want %d", len(res.Surahs), TotalSurahs-1)
	}
}

func TestIngestQuranUnauthorizedAborts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	in := &Ingestor{
		Quran: unpacedQuran(srv.URL),
		Retry: RetryPolicy{MaxAttempts: 3},
	}
	res, errs := in.Ingest(context.Background())

	if len(res.Documents) != 0 {
		t.Errorf("got %d docs, want 0", len(res.Documents))
	}
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if !errors.Is(&errs[0], ErrUnauthorized) {
		t.Errorf("error does not wrap ErrUnauthorized: %v", errs[0])
	}
	// Abort means no request for surah 2 onward.
	if calls.Load() != 1 {
		t.Errorf("server saw %d calls, want 1", calls.Load())
	}
}

func hadithPageJSON(book string, numbers []int, status string) string {
	type item map[string]any
	var items []item
	for _, n := range numbers {
		items = append(items, item{
			"hadithNumber":    strconv.Itoa(n),
			"englishNarrator": "Abu Huraira",
			"hadithEnglish":   fmt.Sprintf("narration %d", n),
			"hadithArabic":    "نص",
			"status":          status,
			"book":            map[string]string{"bookName": "Sahih al-Bukhari", "bookSlug": book},
			"chapter":         map[string]string{"chapterNumber": "1"},
		})
	}
	body, _ := json.Marshal(map[string]any{
		"hadiths": map[string]any{"data": items},
	})
	return string(body)
}

func TestFetchPageFiltersGrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"hadiths":{"data":[
			{"hadithNumber":"1","hadithEnglish":"kept","status":"Sahih","book":{"bookName":"B","bookSlug":"b"},"chapter":{}},
			{"hadithNumber":"2","hadithEnglish":"kept too","status":"hasan","book":{"bookName":"B","bookSlug":"b"},"chapter":{}},
			{"hadithNumber":"3","hadithEnglish":"dropped","status":"Da`+"`"+`eef","book":{"bookName":"B","bookSlug":"b"},"chapter":{}}
		]}}`)
	}))
	defer srv.Close()

	c := unpacedHadith(srv.URL, "key")
	docs, err := c.FetchPage(context.Background(), "sahih-bukhari", 1)
	if err != nil {
		t.Fatalf("FetchPage() error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2 (weak narration excluded)", len(docs))
	}
	if docs[0].Grade != corpus.GradeSahih || docs[1].Grade != corpus.GradeHasan {
		t.Errorf("grades = %q, %q", docs[0].Grade, docs[1].Grade)
	}
}

func TestFetchPageSkipsBadItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"hadiths":{"data":[
			{"hadithNumber":"not-a-number","hadithEnglish":"x","status":"Sahih","book":{},"chapter":{}},
			{"hadithNumber":"7","hadithEnglish":"","status":"Sahih","book":{},"chapter":{}},
			{"hadithNumber":"8","hadithEnglish":"good","status":"Sahih","book":{},"chapter":{}}
		]}}`)
	}))
	defer srv.Close()

	c := unpacedHadith(srv.URL, "key")
	docs, err := c.FetchPage(context.Background(), "sahih-bukhari", 1)
	if err != nil {
		t.Fatalf("FetchPage() error: %v", err)
	}
	if len(docs) != 1 || docs[0].Locator.Number != 8 {
		t.Errorf("got %d docs, want only hadith 8", len(docs))
	}
}

func TestFetchPageSendsBookAndKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("book") != "sahih-muslim" {
			t.Errorf("book param = %q", q.Get("book"))
		}
		if q.Get("apiKey") != "secret" {
			t.Errorf("apiKey param = %q", q.Get("apiKey"))
		}
		if q.Get("paginate") != "25" {
			t.Errorf("paginate param = %q", q.Get("paginate"))
		}
		if q.Get("page") != "3" {
			t.Errorf("page param = %q", q.Get("page"))
		}
		fmt.Fprint(w, `{"hadiths":{"data":[]}}`)
	}))
	defer srv.Close()

	c := unpacedHadith(srv.URL, "secret")
	if _, err := c.FetchPage(context.Background(), "sahih-muslim", 3); err != nil {
		t.Fatalf("FetchPage() error: %v", err)
	}
}

func TestIngestBookStopsOnEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		switch page {
		case 1:
			fmt.Fprint(w, hadithPageJSON("sahih-bukhari", []int{1, 2}, "Sahih"))
		case 2:
			fmt.Fprint(w, hadithPageJSON("sahih-bukhari", []int{3}, "Sahih"))
		default:
			fmt.Fprint(w, `{"hadiths":{"data":[]}}`)
		}
	}))
	defer srv.Close()

	in := &Ingestor{
		Hadith: unpacedHadith(srv.URL, "key"),
		Books:  []string{"sahih-bukhari"},
		Retry:  RetryPolicy{MaxAttempts: 1},
	}
	res, errs := in.Ingest(context.Background())

	if len(errs) != 0 {
		t.Fatalf("got errors: %v", errs)
	}
	if len(res.Documents) != 3 {
		t.Errorf("got %d docs, want 3", len(res.Documents))
	}
}

func TestIngestBookSkipsMalformedPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		switch page {
		case 1:
			fmt.Fprint(w, hadithPageJSON("sahih-bukhari", []int{1}, "Sahih"))
		case 2:
			fmt.Fprint(w, `{"hadiths":{"data":`) // truncated body
		case 3:
			fmt.Fprint(w, hadithPageJSON("sahih-bukhari", []int{5}, "Sahih"))
		default:
			fmt.Fprint(w, `{"hadiths":{"data":[]}}`)
		}
	}))
	defer srv.Close()

	in := &Ingestor{
		Hadith: unpacedHadith(srv.URL, "key"),
		Books:  []string{"sahih-bukhari"},
		Retry:  RetryPolicy{MaxAttempts: 1},
	}
	res, errs := in.Ingest(context.Background())

	if len(res.Documents) != 2 {
		t.Errorf("got %d docs, want 2 (pages either side of the bad one)", len(res.Documents))
	}
	if len(errs) != 1 || !errors.Is(&errs[0], ErrDataFormat) {
		t.Errorf("errs = %v, want one ErrDataFormat", errs)
	}
}

func TestIngestBookAbandonsAfterExhaustedRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 1 {
			fmt.Fprint(w, hadithPageJSON("sahih-bukhari", []int{1, 2}, "Sahih"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	in := &Ingestor{
		Hadith: unpacedHadith(srv.URL, "key"),
		Books:  []string{"sahih-bukhari"},
		Retry:  RetryPolicy{MaxAttempts: 2},
	}
	res, errs := in.Ingest(context.Background())

	// Earlier pages survive the abandonment.
	if len(res.Documents) != 2 {
		t.Errorf("got %d docs, want 2", len(res.Documents))
	}
	if len(errs) != 1 || !errors.Is(&errs[0], ErrUpstream) {
		t.Errorf("errs = %v, want one ErrUpstream", errs)
	}
}

func TestIngestBook401Aborts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	in := &Ingestor{
		Hadith: unpacedHadith(srv.URL, "bad-key"),
		Books:  []string{"sahih-bukhari"},
		Retry:  RetryPolicy{MaxAttempts: 3},
	}
	res, errs := in.Ingest(context.Background())

	if len(res.Documents) != 0 {
		t.Errorf("got %d docs, want 0", len(res.Documents))
	}
	if len(errs) != 1 || !errors.Is(&errs[0], ErrUnauthorized) {
		t.Errorf("errs = %v, want one ErrUnauthorized", errs)
	}
	if calls.Load() != 1 {
		t.Errorf("server saw %d calls, want 1", calls.Load())
	}
}

func TestIngestReportsProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 1 {
			fmt.Fprint(w, hadithPageJSON("sahih-bukhari", []int{1}, "Sahih"))
			return
		}
		fmt.Fprint(w, `{"hadiths":{"data":[]}}`)
	}))
	defer srv.Close()

	var reports []string
	in := &Ingestor{
		Hadith: unpacedHadith(srv.URL, "key"),
		Books:  []string{"sahih-bukhari"},
		Retry:  RetryPolicy{MaxAttempts: 1},
		Progress: func(source string, page int) {
			reports = append(reports, fmt.Sprintf("%s/%d", source, page))
		},
	}
	in.Ingest(context.Background())

	if len(reports) != 1 || reports[0] != "sahih-bukhari/1" {
		t.Errorf("progress reports = %v", reports)
	}
}

func TestSourceErrorUnwrap(t *testing.T) {
	e := SourceError{Source: "quran", Page: 3, Err: ErrUpstream}
	if !errors.Is(&e, ErrUpstream) {
		t.Error("SourceError does not unwrap its cause")
	}
	if e.Error() == "" {
		t.Error("empty error string")
	}
}
