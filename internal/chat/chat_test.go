package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dan1sh0/Baseera-AI/internal/corpus"
	"github.com/dan1sh0/Baseera-AI/internal/llm"
	"github.com/dan1sh0/Baseera-AI/internal/retriever"
)

type mockProvider struct {
	response string
	err      error
	calls    int
	lastReq  llm.CompletionRequest
}

func (m *mockProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &llm.CompletionResponse{Content: m.response}, nil
}

func (m *mockProvider) Name() string { return "mock" }

type mockRetriever struct {
	results []retriever.Result
	calls   int
}

func (m *mockRetriever) Retrieve(ctx context.Context, query string, mode retriever.Mode) ([]retriever.Result, error) {
	m.calls++
	return m.results, nil
}

func patienceResult() retriever.Result {
	loc := corpus.Locator{Chapter: 2, Verse: 153}
	return retriever.Result{
		Document: corpus.Document{
			ID:      corpus.Key(corpus.SourceVerse, loc),
			Kind:    corpus.SourceVerse,
			Locator: loc,
			Arabic:  "يَا أَيُّهَا الَّذِينَ آمَنُوا اسْتَعِينُوا بِالصَّبْرِ وَالصَّلَاةِ",
			English: "Seek aid in steadfast patience and prayer.",
		},
		Score:     1.0,
		MatchedBy: retriever.MatchBoth,
	}
}

func TestHistoryFIFOEviction(t *testing.T) {
	h := NewHistory()
	for i := 1; i <= MaxTurns+2; i++ {
		h.Append("s1", Turn{Question: fmt.Sprintf("q%d", i), Answer: fmt.Sprintf("a%d", i)})
	}

	turns := h.Turns("s1")
	if len(turns) != MaxTurns {
		t.Fatalf("window holds %d turns, want %d", len(turns), MaxTurns)
	}
	if turns[0].Question != "q3" {
		t.Errorf("oldest turn = %q, want q3 (q1 and q2 evicted)", turns[0].Question)
	}
	if turns[MaxTurns-1].Question != fmt.Sprintf("q%d", MaxTurns+2) {
		t.Errorf("newest turn = %q", turns[MaxTurns-1].Question)
	}
}

func TestHistorySessionIsolation(t *testing.T) {
	h := NewHistory()
	h.Append("alice", Turn{Question: "q", Answer: "a"})

	if h.Len("alice") != 1 {
		t.Errorf("alice has %d turns, want 1", h.Len("alice"))
	}
	if h.Len("bob") != 0 {
		t.Errorf("bob has %d turns, want 0", h.Len("bob"))
	}
}

func TestHistoryTurnsReturnsCopy(t *testing.T) {
	h := NewHistory()
	h.Append("s1", Turn{Question: "q", Answer: "a"})

	turns := h.Turns("s1")
	turns[0].Question = "mutated"

	if h.Turns("s1")[0].Question != "q" {
		t.Error("mutating the returned slice leaked into history")
	}
}

func TestAskBlankQuestionNoWork(t *testing.T) {
	prov := &mockProvider{response: "an answer long enough"}
	ret := &mockRetriever{}
	svc := NewService(ret, NewSynthesizer(prov, "test-model", NewHistory()))

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := svc.Ask(context.Background(), "s1", q)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("Ask(%q) err = %v, want ErrValidation", q, err)
		}
	}
	if ret.calls != 0 {
		t.Errorf("retriever called %d times for blank questions, want 0", ret.calls)
	}
	if prov.calls != 0 {
		t.Errorf("provider called %d times for blank questions, want 0", prov.calls)
	}
}

func TestAskSuccessAppendsHistory(t *testing.T) {
	prov := &mockProvider{response: "Indeed, Quran (2:153) teaches patience through prayer."}
	hist := NewHistory()
	svc := NewService(
		&mockRetriever{results: []retriever.Result{patienceResult()}},
		NewSynthesizer(prov, "test-model", hist),
	)

	answer, err := svc.Ask(context.Background(), "s1", "What does the Quran say about patience?")
	if err != nil {
		t.Fatalf("Ask() error: %v", err)
	}
	if answer != prov.response {
		t.Errorf("answer = %q", answer)
	}

	turns := hist.Turns("s1")
	if len(turns) != 1 {
		t.Fatalf("history holds %d turns, want 1", len(turns))
	}
	if len(turns[0].Cited) != 1 || turns[0].Cited[0] != "Quran 2:153" {
		t.Errorf("cited = %v", turns[0].Cited)
	}
}

func TestAskShortAnswerIsGenerationError(t *testing.T) {
	prov := &mockProvider{response: "ok"}
	hist := NewHistory()
	svc := NewService(
		&mockRetriever{results: []retriever.Result{patienceResult()}},
		NewSynthesizer(prov, "test-model", hist),
	)

	_, err := svc.Ask(context.Background(), "s1", "a question")
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("err = %v, want ErrGeneration", err)
	}
	if hist.Len("s1") != 0 {
		t.Error("failed turn must not be recorded in history")
	}

	// The question can be retried unchanged after the backend recovers.
	prov.response = "A proper answer citing Quran (2:153)."
	if _, err := svc.Ask(context.Background(), "s1", "a question"); err != nil {
		t.Fatalf("retry error: %v", err)
	}
	if hist.Len("s1") != 1 {
		t.Error("successful retry not recorded")
	}
}

func TestAskAuthErrorPassesThrough(t *testing.T) {
	prov := &mockProvider{err: fmt.Errorf("%w: bad key", llm.ErrAuth)}
	hist := NewHistory()
	svc := NewService(
		&mockRetriever{results: []retriever.Result{patienceResult()}},
		NewSynthesizer(prov, "test-model", hist),
	)

	_, err := svc.Ask(context.Background(), "s1", "a question")
	if !errors.Is(err, llm.ErrAuth) {
		t.Errorf("err = %v, want llm.ErrAuth", err)
	}
	if errors.Is(err, ErrGeneration) {
		t.Error("auth failures must not be classified as generation errors")
	}
	if hist.Len("s1") != 0 {
		t.Error("failed turn recorded in history")
	}
}

func TestAskBackendErrorWrapsGeneration(t *testing.T) {
	prov := &mockProvider{err: errors.New("connection reset")}
	svc := NewService(
		&mockRetriever{results: []retriever.Result{patienceResult()}},
		NewSynthesizer(prov, "test-model", NewHistory()),
	)

	_, err := svc.Ask(context.Background(), "s1", "a question")
	if !errors.Is(err, ErrGeneration) {
		t.Errorf("err = %v, want ErrGeneration", err)
	}
	if prov.calls != 1 {
		t.Errorf("provider called %d times, generation is invoked exactly once", prov.calls)
	}
}

func TestBuildPromptIncludesContextAndHistory(t *testing.T) {
	turns := []Turn{{Question: "earlier question", Answer: "earlier answer"}}
	prompt := buildPrompt("current question", []retriever.Result{patienceResult()}, turns)

	for _, want := range []string{
		"Previous conversation:",
		"Q: earlier question",
		"A: earlier answer",
		"--- Quran 2:153 ---",
		"Arabic:",
		"English: Seek aid in steadfast patience and prayer.",
		"Current Question: current question",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptHadithAttribution(t *testing.T) {
	loc := corpus.Locator{Collection: "sahih-bukhari", Number: 52}
	res := retriever.Result{Document: corpus.Document{
		ID:         corpus.Key(corpus.SourceHadith, loc),
		Kind:       corpus.SourceHadith,
		Locator:    loc,
		SourceName: "Sahih al-Bukhari",
		English:    "The lawful is clear.",
		Grade:      corpus.GradeSahih,
		Narrator:   "An-Nu'man bin Bashir",
	}}

	prompt := buildPrompt("q", []retriever.Result{res}, nil)
	if !strings.Contains(prompt, "Sahih al-Bukhari 52 [Sahih], narrated by An-Nu'man bin Bashir") {
		t.Errorf("prompt missing full hadith attribution:\n%s", prompt)
	}
}

func TestBuildPromptEmptyRetrieval(t *testing.T) {
	prompt := buildPrompt("q", nil, nil)
	if !strings.Contains(prompt, "(no passages retrieved)") {
		t.Errorf("prompt does not flag empty context:\n%s", prompt)
	}
}

func TestSynthesizerSendsSystemPrompt(t *testing.T) {
	prov := &mockProvider{response: "a sufficiently long answer"}
	synth := NewSynthesizer(prov, "test-model", NewHistory())

	if _, err := synth.Answer(context.Background(), "s1", "q", nil); err != nil {
		t.Fatalf("Answer() error: %v", err)
	}

	req := prov.lastReq
	if len(req.Messages) != 2 {
		t.Fatalf("got %d messages, want system + user", len(req.Messages))
	}
	if req.Messages[0].Role != llm.RoleSystem {
		t.Errorf("first message role = %q", req.Messages[0].Role)
	}
	if req.Temperature != 0.2 {
		t.Errorf("temperature = %v, want 0.2", req.Temperature)
	}
}
