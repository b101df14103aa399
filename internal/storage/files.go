// Package storage holds the file upload helpers: validation, path generation,
// blob storage and the attachment metadata documents that point at blobs.
package storage

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

const (
	DefaultMaxSize = 5 * 1024 * 1024
	DefaultFolder  = "attachments"
)

var DefaultAllowedTypes = []string{"image/*", "application/pdf"}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

type Options struct {
	MaxSize      int64
	AllowedTypes []string
}

func (o Options) withDefaults() Options {
	if o.MaxSize <= 0 {
		o.MaxSize = DefaultMaxSize
	}
	if len(o.AllowedTypes) == 0 {
		o.AllowedTypes = DefaultAllowedTypes
	}
	return o
}

// ValidationError lists every problem found with an upload.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// ValidateFile checks size and content type against opts. Allowed types may
// use a "major/*" wildcard. It returns nil or a *ValidationError.
func ValidateFile(size int64, contentType string, opts Options) error {
	opts = opts.withDefaults()
	var problems []string

	if size > opts.MaxSize {
		mb := strconv.FormatFloat(float64(opts.MaxSize)/(1024*1024), 'f', -1, 64)
		problems = append(problems, fmt.Sprintf("File size must be less than %sMB", mb))
	}

	if !typeAllowed(contentType, opts.AllowedTypes) {
		problems = append(problems, "File type not allowed. Allowed types: "+strings.Join(opts.AllowedTypes, ", "))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func typeAllowed(contentType string, allowed []string) bool {
	// Drop parameters such as "; charset=utf-8".
	base, _, _ := strings.Cut(contentType, ";")
	base = strings.TrimSpace(base)
	for _, t := range allowed {
		if major, ok := strings.CutSuffix(t, "/*"); ok {
			if strings.HasPrefix(base, major+"/") {
				return true
			}
			continue
		}
		if base == t {
			return true
		}
	}
	return false
}

// DetectContentType sniffs data rather than trusting the client's header.
func DetectContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

// GenerateFilePath returns projects/<id>/<folder>/<unix millis>_<name> with
// unsafe characters in name replaced by underscores.
func GenerateFilePath(projectID, fileName, folder string, now time.Time) string {
	if folder == "" {
		folder = DefaultFolder
	}
	clean := unsafeNameChars.ReplaceAllString(fileName, "_")
	return fmt.Sprintf("projects/%s/%s/%d_%s", projectID, folder, now.UnixMilli(), clean)
}

// FormatFileSize renders bytes with IEC units, e.g. "2.5 MiB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	return humanize.IBytes(uint64(bytes))
}
