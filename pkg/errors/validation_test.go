package errors

import (
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "linux", false},
		{"valid with dash", "linux-firmware", false},
		{"valid with plus", "gtk+", false},
		{"valid with dot", "python3.12", false},
		{"valid with at", "lib32-mesa@beta", false},
		{"valid digits first", "0ad", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"leading dash", "-linux", true},
		{"leading dot", ".hidden", true},
		{"uppercase", "Linux", true},
		{"slash", "core/linux", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateVersion(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"1.2.3-1", false},
		{"1:1.16.5-2", false},
		{"20250127.0-1", false},
		{"6.15.0.arch1-1", false},
		{"2.0-1.1", false},
		{"1.2.3", false},

		{"", true},
		{"1.2.3 -1", true},
		{"1.2/3-1", true},
		{"a:1.0-1", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateVersion(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVersion(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateProjectPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"owner repo", "curl/curl", false},
		{"nested group", "archlinux/packaging/packages/linux", false},
		{"cgit tree", "pub/scm/utils/kernel/kmod/kmod", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "foo/../bar", true},
		{"backslash", "foo\\bar", true},
		{"null byte", "foo\x00bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProjectPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProjectPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com/path", false},
		{"http", "http://example.com/path", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
		{"no host", "https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidURL) {
				t.Errorf("ValidateURL(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidURL)
			}
		})
	}
}
