package utils

import "testing"

func TestCleanFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name", "photo.jpg", "photo.jpg"},
		{"strips path", "../../etc/passwd", "passwd"},
		{"strips special characters", "my photo (1).jpg", "myphoto1.jpg"},
		{"keeps dots and hyphens", "step-2.final.png", "step-2.final.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanFilename(tt.input); got != tt.want {
				t.Errorf("cleanFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidatePhotoFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int
		wantErr  bool
	}{
		{"jpg accepted", "ritual.jpg", 1024, false},
		{"jpeg accepted", "ritual.jpeg", 1024, false},
		{"png accepted", "ritual.png", 1024, false},
		{"gif accepted", "ritual.gif", 1024, false},
		{"uppercase extension", "ritual.JPG", 1024, false},
		{"pdf rejected", "ritual.pdf", 1024, true},
		{"no extension", "ritual", 1024, true},
		{"oversized", "ritual.jpg", maxFileSize + 1, true},
		{"at the limit", "ritual.jpg", maxFileSize, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePhotoFile(tt.filename, tt.size)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePhotoFile(%q, %d) error = %v, wantErr %v", tt.filename, tt.size, err, tt.wantErr)
			}
		})
	}
}
