package suggest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"curator/internal/breaker"
)

type fakeProvider struct {
	src   string
	reply string
	err   error
	calls int
}

func (f *fakeProvider) Source() string { return f.src }
func (f *fakeProvider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	f.calls++
	return f.reply, f.err
}

func testSettings() breaker.Settings {
	return breaker.Settings{MinRequests: 100, FailureRatio: 1, Interval: time.Minute, Timeout: time.Minute}
}

func TestTemplate(t *testing.T) {
	r := Template("Fireship", []string{"coding", "javascript"})
	if r.Text != "Semantic match with Fireship (vibe: coding, javascript)." || r.Source != SourceSystem {
		t.Fatalf("unexpected %+v", r)
	}
	if r := Template("Fireship", nil); r.Text != "Semantic match with Fireship." {
		t.Fatalf("unexpected %+v", r)
	}
}

func TestChainFallsThroughProviders(t *testing.T) {
	down := &fakeProvider{src: "A", err: errors.New("offline")}
	empty := &fakeProvider{src: "B", reply: "  "}
	ok := &fakeProvider{src: SourceOllama, reply: "<think>hmm</think> \"Both love clean code.\""}
	c := NewChain(testSettings(), down, empty, ok)

	r, err := c.GenerateReason(context.Background(), "@new", "Fireship", []string{"coding"})
	if err != nil {
		t.Fatal(err)
	}
	if r.Text != "Both love clean code." || r.Source != SourceOllama {
		t.Fatalf("unexpected %+v", r)
	}
	if down.calls != 1 || empty.calls != 1 {
		t.Fatalf("expected each provider tried once: %d %d", down.calls, empty.calls)
	}
}

func TestChainTemplateWhenAllFail(t *testing.T) {
	c := NewChain(testSettings(), &fakeProvider{src: "A", err: errors.New("x")})
	r, err := c.GenerateReason(context.Background(), "@new", "Fireship", []string{"ai"})
	if err != nil || r.Source != SourceSystem || !strings.HasPrefix(r.Text, "Semantic match with Fireship") {
		t.Fatalf("unexpected %+v %v", r, err)
	}
	if _, err := c.Summarize(context.Background(), "Fireship", "results"); !errors.Is(err, ErrNoSummary) {
		t.Fatalf("want ErrNoSummary, got %v", err)
	}
}

func TestOpenAIProviderParsesOutput(t *testing.T) {
	oldDo := httpDo
	t.Cleanup(func() { httpDo = oldDo })
	var sent string
	httpDo = func(req *http.Request) (*http.Response, error) {
		b, _ := io.ReadAll(req.Body)
		sent = string(b)
		body := `{"output":[{"content":[{"type":"output_text","text":"Great pick."}]}]}`
		return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(body))}, nil
	}
	p := OpenAIProvider{APIKey: "k", Model: "m"}
	text, err := p.Complete(context.Background(), `say "hi"`, 50)
	if err != nil || text != "Great pick." {
		t.Fatalf("unexpected %q %v", text, err)
	}
	if !strings.Contains(sent, `"max_output_tokens":50`) || !strings.Contains(sent, `say \"hi\"`) {
		t.Fatalf("payload not encoded properly: %s", sent)
	}
}

func TestOpenAIProviderNoKey(t *testing.T) {
	if _, err := (OpenAIProvider{}).Complete(context.Background(), "p", 1); err == nil {
		t.Fatal("expected error without key")
	}
}
