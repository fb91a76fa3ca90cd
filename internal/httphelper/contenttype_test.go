package httphelper

import "testing"

func TestContentType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"photo.png", "image/png"},
		{"photo.PNG", "image/png"},
		{"anim.gif", "image/gif"},
		{"img.jpg", "image/jpeg"},
		{"img.jpeg", DefaultImageContentType},
		{"img.webp", DefaultImageContentType},
		{"archive.zip", "image/jpeg"},
		{"noext", "image/jpeg"},
		{"dir.v2/file", "image/jpeg"},
		{"a.tar.png", "image/png"},
	}

	for _, tt := range tests {
		if got := ContentType(tt.name); got != tt.want {
			t.Errorf("ContentType(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
