package fetch

import (
	"bytes"
	"compress/gzip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// SitemapFormat is the tagged result of body format detection. Detection is
// explicit rather than try-decompress-and-catch so callers can log which
// form a publisher actually serves.
type SitemapFormat int

const (
	FormatGzip SitemapFormat = iota
	FormatPlainText
	FormatUnrecognized
)

func (f SitemapFormat) String() string {
	switch f {
	case FormatGzip:
		return "gzip"
	case FormatPlainText:
		return "plain-text"
	default:
		return "unrecognized"
	}
}

// ErrUnsupportedFormat means the sitemap body is neither valid gzip nor
// decodable text. Fatal to an ingestion run.
var ErrUnsupportedFormat = errors.New("sitemap body is neither gzip nor plain text")

// DetectFormat classifies raw sitemap bytes. Gzip wins when the body
// decompresses cleanly; otherwise any valid UTF-8 body is treated as plain
// XML text.
func DetectFormat(data []byte) SitemapFormat {
	if _, err := gunzip(data); err == nil {
		return FormatGzip
	}
	if utf8.Valid(data) {
		return FormatPlainText
	}
	return FormatUnrecognized
}

// DecodeSitemap turns raw body bytes into sitemap XML text, reporting which
// format was detected.
func DecodeSitemap(data []byte) (string, SitemapFormat, error) {
	switch format := DetectFormat(data); format {
	case FormatGzip:
		text, err := gunzip(data)
		if err != nil {
			return "", format, err
		}
		return text, format, nil
	case FormatPlainText:
		return string(data), format, nil
	default:
		return "", format, ErrUnsupportedFormat
	}
}

func gunzip(data []byte) (string, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer reader.Close()

	text, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(text), nil
}

// sitemaps.org 0.9 schema: <urlset><url><loc>...</loc></url>...</urlset>
type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	URLs    []struct {
		Loc string `xml:"loc"`
	} `xml:"url"`
}

// ParseSitemap extracts every <loc> value from sitemap XML. Malformed XML is
// fatal: without the URL list there is nothing to ingest.
func ParseSitemap(content string) ([]string, error) {
	var parsed urlSet
	if err := xml.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("sitemap parse: %w", err)
	}

	urls := make([]string, 0, len(parsed.URLs))
	for _, u := range parsed.URLs {
		if loc := strings.TrimSpace(u.Loc); loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls, nil
}
