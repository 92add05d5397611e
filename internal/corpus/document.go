// Package corpus defines the normalized passage model shared by ingestion,
// indexing and retrieval.
package corpus

import (
	"fmt"
	"strings"
)

// SourceKind identifies the category of scripture a document comes from.
type SourceKind string

const (
	SourceVerse  SourceKind = "verse"
	SourceHadith SourceKind = "hadith"
)

// Grade is a hadith authenticity grading. Only Sahih and Hasan narrations
// are admitted into the corpus.
type Grade string

const (
	GradeSahih Grade = "Sahih"
	GradeHasan Grade = "Hasan"
)

// ParseGrade normalizes an upstream grading string. ok is false for
// gradings outside the accepted set (Da'eef, Maudu, etc.).
func ParseGrade(s string) (Grade, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sahih":
		return GradeSahih, true
	case "hasan":
		return GradeHasan, true
	default:
		return "", false
	}
}

// Locator identifies a passage within its source kind. Verses use
// Chapter/Verse (Surah:Ayah); hadith use Collection/Number.
type Locator struct {
	Chapter    int    `json:"chapter,omitempty"`
	Verse      int    `json:"verse,omitempty"`
	Collection string `json:"collection,omitempty"`
	Number     int    `json:"number,omitempty"`
}

// Less reports whether l sorts before other in natural locator order:
// chapter then verse for verses, collection name then number for hadith.
func (l Locator) Less(other Locator) bool {
	if l.Collection != other.Collection {
		return l.Collection < other.Collection
	}
	if l.Chapter != other.Chapter {
		return l.Chapter < other.Chapter
	}
	if l.Verse != other.Verse {
		return l.Verse < other.Verse
	}
	return l.Number < other.Number
}

// Surah is chapter-level metadata kept alongside verse documents.
type Surah struct {
	Number         int    `json:"number"`
	Name           string `json:"name"` // English name
	ArabicName     string `json:"arabic_name"`
	RevelationType string `json:"revelation_type"` // Meccan or Medinan
	VerseCount     int    `json:"verse_count"`
}

// Document is a single normalized passage: one Quran verse or one hadith
// narration. Documents are immutable once ingested.
type Document struct {
	ID         string     `json:"id"`
	Kind       SourceKind `json:"kind"`
	Locator    Locator    `json:"locator"`
	SourceName string     `json:"source_name"` // surah English name or hadith book name
	Arabic     string     `json:"arabic"`
	English    string     `json:"english"`
	Grade      Grade      `json:"grade,omitempty"`    // hadith only
	Narrator   string     `json:"narrator,omitempty"` // hadith only
}

// Key returns the unique corpus key for a (kind, locator) pair.
func Key(kind SourceKind, loc Locator) string {
	if kind == SourceHadith {
		return fmt.Sprintf("hadith:%s:%d", loc.Collection, loc.Number)
	}
	return fmt.Sprintf("verse:%d:%d", loc.Chapter, loc.Verse)
}

// Citation renders the document's canonical citation string.
func (d Document) Citation() string {
	if d.Kind == SourceHadith {
		return fmt.Sprintf("%s %d", d.SourceName, d.Locator.Number)
	}
	return fmt.Sprintf("Quran %d:%d", d.Locator.Chapter, d.Locator.Verse)
}

// Attribution renders the full reference line used in generation context:
// grade and narrator are included for hadith so the model can cite them.
func (d Document) Attribution() string {
	if d.Kind != SourceHadith {
		return d.Citation()
	}
	var b strings.Builder
	b.WriteString(d.Citation())
	if d.Grade != "" {
		fmt.Fprintf(&b, " [%s]", d.Grade)
	}
	if d.Narrator != "" {
		fmt.Fprintf(&b, ", narrated by %s", d.Narrator)
	}
	return b.String()
}
