package common

import (
	"testing"
)

func TestValidateLink(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "https link", raw: " https://kavyapath.in/story/madhushala ", want: "https://kavyapath.in/story/madhushala"},
		{name: "mailto", raw: "mailto:kavi@example.com", want: "mailto:kavi@example.com"},
		{name: "empty", raw: "", wantErr: true},
		{name: "javascript scheme", raw: "javascript:alert(1)", wantErr: true},
		{name: "no host", raw: "https:///path", wantErr: true},
		{name: "relative", raw: "/story/x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateLink(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateLink(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateLink(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestEmbedURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "watch url", raw: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", want: "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{name: "short host", raw: "https://youtu.be/dQw4w9WgXcQ", want: "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{name: "shorts path", raw: "https://youtube.com/shorts/abcDEF123", want: "https://www.youtube.com/embed/abcDEF123"},
		{name: "already embed", raw: "https://www.youtube.com/embed/abcDEF123", want: "https://www.youtube.com/embed/abcDEF123"},
		{name: "other host passes through", raw: "https://player.vimeo.com/video/1234", want: "https://player.vimeo.com/video/1234"},
		{name: "watch without id", raw: "https://www.youtube.com/watch", wantErr: true},
		{name: "data url", raw: "data:text/html;base64,PHNjcmlwdD4=", wantErr: true},
		{name: "garbage", raw: "not a url", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EmbedURL(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("EmbedURL(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("EmbedURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
