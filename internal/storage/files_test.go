package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name        string
		size        int64
		contentType string
		opts        Options
		wantErrs    int
	}{
		{"png within limit", 1024, "image/png", Options{}, 0},
		{"pdf within limit", 1024, "application/pdf", Options{}, 0},
		{"too large", DefaultMaxSize + 1, "image/jpeg", Options{}, 1},
		{"wrong type", 10, "text/plain; charset=utf-8", Options{}, 1},
		{"both", DefaultMaxSize + 1, "application/zip", Options{}, 2},
		{"custom exact type", 10, "text/csv", Options{AllowedTypes: []string{"text/csv"}}, 0},
		{"wildcard needs slash", 10, "imagefoo", Options{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFile(tt.size, tt.contentType, tt.opts)
			if tt.wantErrs == 0 {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Len(t, verr.Problems, tt.wantErrs)
		})
	}
}

func TestValidateFileMessages(t *testing.T) {
	err := ValidateFile(3*1024*1024, "application/zip", Options{MaxSize: 2 * 1024 * 1024})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "File size must be less than 2MB", verr.Problems[0])
	assert.Equal(t, "File type not allowed. Allowed types: image/*, application/pdf", verr.Problems[1])
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "image/png", DetectContentType(pngHeader))
	assert.Equal(t, "application/pdf", DetectContentType([]byte("%PDF-1.4\n%âãÏÓ\n")))
	assert.True(t, strings.HasPrefix(DetectContentType([]byte("plain words")), "text/plain"))
}

func TestGenerateFilePath(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	assert.Equal(t, "projects/p1/attachments/1700000000123_my_file_v2.pdf",
		GenerateFilePath("p1", "my file(v2).pdf", "", now))
	assert.Equal(t, "projects/p1/images/1700000000123_shot.png",
		GenerateFilePath("p1", "shot.png", "images", now))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "0 Bytes", FormatFileSize(0))
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.0 KiB", FormatFileSize(1024))
	assert.Equal(t, "2.5 MiB", FormatFileSize(2621440))
}
