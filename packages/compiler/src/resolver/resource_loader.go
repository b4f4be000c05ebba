package resolver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResourceLoader fetches templates and stylesheets by URL.
type ResourceLoader interface {
	Get(ctx context.Context, url string) (string, error)
}

// StaticResourceLoader serves resources from memory.
type StaticResourceLoader map[string]string

func (l StaticResourceLoader) Get(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	content, ok := l[url]
	if !ok {
		return "", fmt.Errorf("resource %s not found", url)
	}
	return content, nil
}

// FileResourceLoader reads resources below Root. The package: and asset: schemes are stripped
// before the URL is joined to Root.
type FileResourceLoader struct {
	Root string
}

func (l FileResourceLoader) Get(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p := url
	for _, scheme := range []string{"package:", "asset:"} {
		p = strings.TrimPrefix(p, scheme)
	}
	b, err := os.ReadFile(filepath.Join(l.Root, filepath.FromSlash(p)))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
