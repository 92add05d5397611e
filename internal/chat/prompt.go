package chat

import (
	"fmt"
	"strings"

	"github.com/dan1sh0/Baseera-AI/internal/retriever"
)

// systemPrompt enumerates the output-format contract the generation backend
// must follow: grounding, citation and honorific rules.
const systemPrompt = `You are a knowledgeable Islamic assistant that provides accurate information from the Quran and authentic Hadith.

Guidelines:
1. Use ONLY the provided context to answer questions. Never cite a passage that is not in the context.
2. Present Arabic text and its English translation on separate lines, Arabic first. Arabic text is right-aligned.
3. Cite every Quranic verse as (Surah:Ayah), e.g. Quran (2:153).
4. Cite every hadith with its collection, number, authenticity grade and narrator, e.g. Sahih al-Bukhari 52 [Sahih], narrated by Abu Huraira.
5. For specific verse requests, provide up to 5 relevant passages with both Arabic and English.
6. If asked for "more" on a topic, consult the previous conversation and cite passages different from those already shown.
7. Be respectful and maintain Islamic etiquette in responses.
8. When mentioning Allah, add "Subhanahu wa Ta'ala (Glory be to Him)".
9. When mentioning Prophet Muhammad, add "ﷺ (peace be upon him)".`

// buildPrompt composes the user message: conversation history, retrieved
// passages as context, and the current question.
func buildPrompt(question string, retrieved []retriever.Result, turns []Turn) string {
	var b strings.Builder

	if len(turns) > 0 {
		b.WriteString("Previous conversation:\n")
		for _, t := range turns {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", t.Question, t.Answer)
		}
		b.WriteString("\n")
	}

	b.WriteString("Context:\n")
	if len(retrieved) == 0 {
		b.WriteString("(no passages retrieved)\n")
	}
	for _, res := range retrieved {
		d := res.Document
		fmt.Fprintf(&b, "--- %s ---\n", d.Attribution())
		if d.Arabic != "" {
			fmt.Fprintf(&b, "Arabic: %s\n", d.Arabic)
		}
		fmt.Fprintf(&b, "English: %s\n", d.English)
	}

	fmt.Fprintf(&b, "\nCurrent Question: %s\n", question)
	return b.String()
}

// citations collects the locator citations of the retrieved passages, in
// result order.
func citations(retrieved []retriever.Result) []string {
	cited := make([]string, 0, len(retrieved))
	for _, res := range retrieved {
		cited = append(cited, res.Document.Citation())
	}
	return cited
}
