package router

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/nextlevelbuilder/topicbot/internal/classify"
	"github.com/nextlevelbuilder/topicbot/internal/content"
)

type fakeResolver struct {
	mu    sync.Mutex
	calls []string
	pages map[string]*content.Extracted
	errs  map[string]error
}

func (f *fakeResolver) Resolve(_ context.Context, rawURL string) (*content.Extracted, error) {
	f.mu.Lock()
	f.calls = append(f.calls, rawURL)
	f.mu.Unlock()
	if err, ok := f.errs[rawURL]; ok {
		return nil, err
	}
	if x, ok := f.pages[rawURL]; ok {
		return x, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeResolver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeClassifier answers with the result whose key is contained in the text.
type fakeClassifier struct {
	mu      sync.Mutex
	calls   []string
	results map[string]classify.Result
	errs    map[string]error
}

func (f *fakeClassifier) Classify(_ context.Context, text string) (classify.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()
	for key, err := range f.errs {
		if strings.Contains(text, key) {
			return classify.Result{}, err
		}
	}
	for key, res := range f.results {
		if strings.Contains(text, key) {
			return res, nil
		}
	}
	return classify.Result{}, classify.ErrNoQualifyingCategory
}

func (f *fakeClassifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// staticDirectory maps channel names to IDs, regardless of guild.
type staticDirectory map[string]string

func (d staticDirectory) ChannelByName(_, name string) (string, bool) {
	id, ok := d[name]
	return id, ok
}

func page(title string) *content.Extracted {
	return &content.Extracted{Title: content.StringPtr(title), Content: content.StringPtr("...")}
}
