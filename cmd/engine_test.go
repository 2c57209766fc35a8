package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nextlevelbuilder/topicbot/internal/classify"
	"github.com/nextlevelbuilder/topicbot/internal/config"
	"github.com/nextlevelbuilder/topicbot/internal/content"
	"github.com/nextlevelbuilder/topicbot/internal/router"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestNewArticleExtractor(t *testing.T) {
	if ex, err := newArticleExtractor(config.ArticleConfig{Backend: "mercury", Endpoint: "http://x"}); err != nil {
		t.Fatal(err)
	} else if _, ok := ex.(*content.MercuryClient); !ok {
		t.Errorf("mercury backend built %T", ex)
	}
	if ex, err := newArticleExtractor(config.ArticleConfig{Backend: "readability"}); err != nil {
		t.Fatal(err)
	} else if _, ok := ex.(*content.ReadabilityExtractor); !ok {
		t.Errorf("readability backend built %T", ex)
	}
	if _, err := newArticleExtractor(config.ArticleConfig{Backend: "lynx"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestNewClassificationService(t *testing.T) {
	if svc, err := newClassificationService(config.ClassifierConfig{Backend: "google"}, nil); err != nil || svc.Name() != "google" {
		t.Errorf("google: %v %v", svc, err)
	}
	if svc, err := newClassificationService(config.ClassifierConfig{Backend: "openai", Model: "m"}, []string{"/Sports"}); err != nil {
		t.Fatal(err)
	} else if _, ok := svc.(*classify.OpenAIClient); !ok {
		t.Errorf("openai backend built %T", svc)
	}
	if _, err := newClassificationService(config.ClassifierConfig{Backend: "magic"}, nil); err == nil {
		t.Error("expected error for unknown backend")
	}
}

// TestBuildEngine_DryRun wires the real clients against fake services.
func TestBuildEngine_DryRun(t *testing.T) {
	mercury := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"Big Game","content":"<p>The home side won in overtime.</p>","domain":"example.com"}`))
	}))
	defer mercury.Close()

	language := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"categories":[{"name":"/Sports","confidence":0.92}]}`))
	}))
	defer language.Close()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Routing.CategoryChannelFile = writeFile(t, dir, "routes.json", `{"/Sports": "sports-talk", "/News": "news"}`)
	cfg.Routing.ConfidenceCutoff = 0.8
	cfg.Routing.MinTextChars = 10
	cfg.Classifier.MaxUnits = 1
	cfg.Classifier.APIKey = "k"
	cfg.Classifier.APIBase = language.URL
	cfg.Article.Endpoint = mercury.URL
	cfg.Article.APIKey = "k"

	engine, err := buildEngine(cfg)
	if err != nil {
		t.Fatalf("buildEngine: %v", err)
	}

	d := engine.Route(context.Background(), router.Message{
		Content:     "check this out https://example.com/a",
		ChannelID:   staticChannelID("general"),
		ChannelName: "general",
	}, newStaticDirectory(engine.Table().Channels(), "general"))

	if d.State != router.StateResolved || d.Move.DestinationName != "sports-talk" {
		t.Fatalf("decision = %+v", d)
	}

	var buf bytes.Buffer
	printDecision(&buf, d)
	if !strings.Contains(buf.String(), "sports-talk (92% confident)") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestBuildEngine_BadRoutingTable(t *testing.T) {
	cfg := config.Default()
	cfg.Routing.CategoryChannelFile = writeFile(t, t.TempDir(), "routes.json", `{}`)
	if _, err := buildEngine(cfg); err == nil {
		t.Fatal("expected error for empty routing table")
	}
}

func TestStaticDirectory(t *testing.T) {
	d := newStaticDirectory([]string{"sports"}, "general")
	if id, ok := d.ChannelByName("", "general"); !ok || id != "#general" {
		t.Errorf("general = %q, %v", id, ok)
	}
	if _, ok := d.ChannelByName("", "missing"); ok {
		t.Error("missing channel resolved")
	}
}

func TestRunDoctor(t *testing.T) {
	for _, k := range []string{"DISCORD_TOKEN", "TOPICBOT_DISCORD_TOKEN", "MERCURY_API_KEY", "GOOGLE_API_KEY",
		"CATEGORY_CHANNEL_FILE", "CONFIDENCE_CUTOFF", "CHARS_NON_URL", "MAX_NL_UNITS"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	routes := writeFile(t, dir, "routes.json", `{"/Sports": "sports"}`)
	cfgPath := writeFile(t, dir, "config.json", `{
		discord: {token: "secret-token"},
		routing: {category_channel_file: "`+routes+`", confidence_cutoff: 0.7, min_text_chars: 12},
		classifier: {max_units: 2},
	}`)
	t.Setenv("MERCURY_API_KEY", "mkey")
	t.Setenv("GOOGLE_API_KEY", "gkey")

	var buf bytes.Buffer
	ok := runDoctor(&buf, cfgPath)
	out := buf.String()
	if !ok {
		t.Fatalf("doctor reported unhealthy:\n%s", out)
	}
	if strings.Contains(out, "secret-token") || strings.Contains(out, "gkey") {
		t.Errorf("doctor output leaks secrets:\n%s", out)
	}
	if !strings.Contains(out, "(1 categories)") {
		t.Errorf("routing table not reported:\n%s", out)
	}

	buf.Reset()
	if runDoctor(&buf, filepath.Join(dir, "missing.json")) {
		t.Errorf("doctor should fail without required settings:\n%s", buf.String())
	}
}
