package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentic_ad_copy/generator"
)

// flakyLLM behaves like MockLLM but fails completions for one platform.
type flakyLLM struct {
	generator.MockLLM
	failOn string
}

func (f flakyLLM) Complete(ctx context.Context, p generator.Prompt) (string, error) {
	if strings.Contains(p.User, "ad copy for "+f.failOn+".") {
		return "", errors.New("quota exceeded")
	}
	return f.MockLLM.Complete(ctx, p)
}

// silentLLM answers directly and never calls a tool.
type silentLLM struct{ generator.MockLLM }

func (silentLLM) Converse(_ context.Context, conv generator.Conversation, _ []generator.ToolSpec) (generator.Reply, error) {
	return generator.Reply{Content: "Plain answer: " + conv.Messages[0].Content}, nil
}

func newTestServer(t *testing.T, llm generator.LLMClient) http.Handler {
	t.Helper()
	srv, err := New(llm, 0)
	require.NoError(t, err)
	return srv.Routes()
}

func validForm() url.Values {
	return url.Values{
		"product_name":        {"Acme Widget"},
		"product_description": {"A widget"},
		"problem":             {"slow manual work"},
		"usp":                 {""},
		"age_group":           {"25-34"},
		"gender":              {"All Genders"},
		"goal":                {"Sales"},
		"tone":                {"Friendly"},
	}
}

func postForm(h http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNew_RequiresLLM(t *testing.T) {
	_, err := New(nil, 0)
	assert.Error(t, err)
}

func TestIndex(t *testing.T) {
	h := newTestServer(t, generator.MockLLM{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Agentic Ad Copy Generator")
	for _, opt := range []string{"55+", "Non-binary", "Website Visits", "Professional"} {
		assert.Contains(t, body, opt)
	}
}

func TestGenerateForm_RendersResults(t *testing.T) {
	h := newTestServer(t, generator.MockLLM{})
	rec := postForm(h, validForm())

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "generate_ad was called 4 times!")
	assert.Equal(t, 4, strings.Count(body, "<details>"))
	for _, p := range generator.Platforms() {
		assert.Contains(t, body, p+" Ad Copy")
	}
	assert.Contains(t, body, "/ads.txt")
}

func TestGenerateForm_WarnsWhenToolUnused(t *testing.T) {
	h := newTestServer(t, silentLLM{})
	rec := postForm(h, validForm())

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "generate_ad was NOT called!")
	assert.Equal(t, 4, strings.Count(body, "<details>"))
}

func TestGenerateForm_InvalidOption(t *testing.T) {
	h := newTestServer(t, generator.MockLLM{})
	form := validForm()
	form.Set("goal", "World Domination")
	rec := postForm(h, form)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid goal")
}

func TestGenerateForm_FailureShowsNoResults(t *testing.T) {
	h := newTestServer(t, flakyLLM{failOn: "Instagram"})
	rec := postForm(h, validForm())

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "quota exceeded")
	assert.NotContains(t, body, "Facebook Ad Copy")
	assert.NotContains(t, body, "<details>")
}

func TestGenerateAPI_AndDownload(t *testing.T) {
	h := newTestServer(t, generator.MockLLM{})
	body := `{"product_name":"Acme Widget","product_description":"A widget","problem":"slow manual work","usp":"","age_group":"25-34","gender":"All Genders","goal":"Sales","tone":"Friendly"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp generateResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Len(t, resp.Calls, 4)
	assert.Equal(t, 4, resp.CallSummary.Count)
	require.Len(t, resp.Results, 4)
	for i, p := range generator.Platforms() {
		assert.Equal(t, p, resp.Results[i].Platform)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/"+resp.RunID+"/ads.txt", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="ads.txt"`, rec.Header().Get("Content-Disposition"))
	data, _ := io.ReadAll(rec.Body)
	assert.Equal(t, resp.Export, string(data))
	assert.True(t, strings.HasPrefix(string(data), "--- Facebook ---\n"))
}

func TestGenerateAPI_Errors(t *testing.T) {
	h := newTestServer(t, flakyLLM{failOn: "Instagram"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"age_group":"99+"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := `{"age_group":"18-24","gender":"Male","goal":"Sales","tone":"Fun"}`
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestDownload_UnknownRun(t *testing.T) {
	h := newTestServer(t, generator.MockLLM{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/nope/ads.txt", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOptions(t *testing.T) {
	h := newTestServer(t, generator.MockLLM{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/options", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var opts map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	assert.Equal(t, generator.Platforms(), opts["platforms"])
	assert.Equal(t, generator.Tones, opts["tones"])
}

func TestRunStore_Bounded(t *testing.T) {
	s := newStore()
	for i := 0; i < maxRuns+5; i++ {
		s.set(string(rune('a'+i)), storedRun{})
	}
	assert.Len(t, s.runs, maxRuns)
	_, ok := s.get("a")
	assert.False(t, ok)
	_, ok = s.get(string(rune('a' + maxRuns + 4)))
	assert.True(t, ok)
}
