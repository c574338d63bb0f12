package util

import (
	"net/http"
	"testing"
)

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.internal:3128", "", "no-proxy.example.com")

	tests := []struct {
		url  string
		want string
	}{
		{"http://news.example.com/a", "http://proxy.internal:3128"},
		{"https://news.example.com/a", "http://proxy.internal:3128"},
		{"https://no-proxy.example.com/a", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, tt.url, nil)
			got, err := proxy(req)
			if err != nil {
				t.Fatalf("proxy failed: %v", err)
			}
			if tt.want == "" {
				if got != nil {
					t.Errorf("Expected no proxy, got %s", got)
				}
				return
			}
			if got == nil || got.String() != tt.want {
				t.Errorf("Expected %s, got %v", tt.want, got)
			}
		})
	}
}
