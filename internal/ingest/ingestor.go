// Package ingest assembles the searchable corpus from paginated upstream
// sources, tolerating transient failures without aborting the run.
package ingest

import (
	"context"
	"errors"
	"log"

	"github.com/dan1sh0/Baseera-AI/internal/corpus"
)

// Ingestor coordinates corpus assembly across all configured sources.
// Failures are accumulated as SourceErrors; ingestion is best-effort and
// always returns whatever documents were collected.
type Ingestor struct {
	Quran  *QuranClient
	Hadith *HadithClient
	Books  []string // hadith collection slugs to ingest
	Retry  RetryPolicy

	// Progress, when set, is invoked after each fetched page.
	Progress func(source string, page int)
}

// Result is the outcome of an ingestion run.
type Result struct {
	Documents []corpus.Document
	Surahs    []corpus.Surah
}

// Ingest fetches every configured source and returns the normalized corpus
// together with any per-source errors encountered along the way.
func (in *Ingestor) Ingest(ctx context.Context) (Result, []SourceError) {
	var res Result
	var errs []SourceError

	if in.Quran != nil {
		quranErrs := in.ingestQuran(ctx, &res)
		errs = append(errs, quranErrs...)
	}

	if in.Hadith != nil {
		for _, book := range in.Books {
			bookDocs, bookErrs := in.ingestBook(ctx, book)
			res.Documents = append(res.Documents, bookDocs...)
			errs = append(errs, bookErrs...)
		}
	}

	return res, errs
}

// ingestQuran fetches all 114 surahs sequentially, one page per chapter.
func (in *Ingestor) ingestQuran(ctx context.Context, res *Result) []SourceError {
	const source = "quran"

	var errs []SourceError

	for surah := 1; surah <= TotalSurahs; surah++ {
		if ctx.Err() != nil {
			return errs
		}

		var pageDocs []corpus.Document
		var meta corpus.Surah
		err := in.Retry.Do(ctx, func() error {
			var fetchErr error
			pageDocs, meta, fetchErr = in.Quran.FetchSurah(ctx, surah)
			return fetchErr
		})

		switch {
		case err == nil:
			res.Documents = append(res.Documents, pageDocs...)
			res.Surahs = append(res.Surahs, meta)
			in.report(source, surah)
		case IsPermanent(err):
			// A client error will repeat for every chapter; stop this
			// source and keep what was already collected.
			log.Printf("ingest: quran: aborting at surah %d: %v", surah, err)
			errs = append(errs, SourceError{Source: source, Page: surah, Err: err})
			return errs
		default:
			// Exhausted retries or a malformed chapter: skip it and
			// move on.
			log.Printf("ingest: quran: skipping surah %d: %v", surah, err)
			errs = append(errs, SourceError{Source: source, Page: surah, Err: err})
		}
	}

	return errs
}

// ingestBook paginates one hadith collection until a page comes back empty.
func (in *Ingestor) ingestBook(ctx context.Context, book string) ([]corpus.Document, []SourceError) {
	var docs []corpus.Document
	var errs []SourceError

	for page := 1; ; page++ {
		if ctx.Err() != nil {
			return docs, errs
		}

		var pageDocs []corpus.Document
		err := in.Retry.Do(ctx, func() error {
			var fetchErr error
			pageDocs, fetchErr = in.Hadith.FetchPage(ctx, book, page)
			return fetchErr
		})

		switch {
		case err == nil:
			if len(pageDocs) == 0 {
				// Normal end of pagination for this collection.
				return docs, errs
			}
			docs = append(docs, pageDocs...)
			in.report(book, page)
		case IsPermanent(err):
			log.Printf("ingest: %s: aborting at page %d: %v", book, page, err)
			errs = append(errs, SourceError{Source: book, Page: page, Err: err})
			return docs, errs
		case errors.Is(err, ErrDataFormat):
			// Malformed page body: skip just this page.
			log.Printf("ingest: %s: skipping malformed page %d: %v", book, page, err)
			errs = append(errs, SourceError{Source: book, Page: page, Err: err})
		default:
			// Retries exhausted for this collection. Documents from
			// earlier pages are kept.
			log.Printf("ingest: %s: abandoning after page %d: %v", book, page, err)
			errs = append(errs, SourceError{Source: book, Page: page, Err: err})
			return docs, errs
		}
	}
}

func (in *Ingestor) report(source string, page int) {
	if in.Progress != nil {
		in.Progress(source, page)
	}
}
