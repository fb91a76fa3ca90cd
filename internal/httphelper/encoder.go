package httphelper

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Encoding selects how POST parameters are written to the request body
type Encoding int

const (
	// EncodingURLEncoded writes the query string as an
	// application/x-www-form-urlencoded body (default)
	EncodingURLEncoded Encoding = iota
	// EncodingStandard writes a multipart/form-data body; required for uploads
	EncodingStandard
	// EncodingJSON writes the concatenated parameter values as application/json
	EncodingJSON
	// EncodingNone writes the concatenated parameter values without a content type
	EncodingNone
)

// Content types set by the encoder
const (
	ContentTypeForm      = "application/x-www-form-urlencoded"
	ContentTypeJSON      = "application/json"
	ContentTypeMultipart = "multipart/form-data"
)

// boundaryPrefix precedes the hex clock ticks in multipart boundaries
const boundaryPrefix = "---------------------------"

// chunkSize is the buffer used when copying upload streams
const chunkSize = 4096

// String returns the flag/config spelling of the encoding
func (e Encoding) String() string {
	switch e {
	case EncodingURLEncoded:
		return "urlencoded"
	case EncodingStandard:
		return "standard"
	case EncodingJSON:
		return "json"
	case EncodingNone:
		return "none"
	default:
		return fmt.Sprintf("Encoding(%d)", e)
	}
}

// ParseEncoding parses the spelling produced by Encoding.String.
// "multipart" is accepted as an alias of "standard".
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "urlencoded", "form":
		return EncodingURLEncoded, nil
	case "standard", "multipart":
		return EncodingStandard, nil
	case "json":
		return EncodingJSON, nil
	case "none", "raw":
		return EncodingNone, nil
	default:
		return 0, NewInvalidConfigurationError(fmt.Sprintf("unknown encoding %q", s))
	}
}

// PercentEncode escapes a query value. Spaces become %20.
func PercentEncode(value string) string {
	// QueryEscape turns a literal '+' into %2B, so any '+' left is a space
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

// QueryString encodes the string parameters as key=value pairs joined by '&'.
// Keys are written verbatim, values are percent-encoded.
func QueryString(p *Params) string {
	var b strings.Builder
	for i, key := range p.stringKeys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(PercentEncode(p.strings[key]))
	}
	return b.String()
}

// FullURL appends the query string to base, if there is one
func FullURL(base string, p *Params) string {
	query := QueryString(p)
	if query == "" {
		return base
	}
	return base + "?" + query
}

// NewBoundary derives a multipart boundary from the current clock
func NewBoundary() string {
	// 100ns ticks, the resolution the boundary format was designed around
	ticks := time.Now().UnixNano() / 100
	return boundaryPrefix + strconv.FormatInt(ticks, 16)
}

// ValidateEncoding rejects uploads combined with a non-multipart encoding
func ValidateEncoding(p *Params, mode Encoding) error {
	if p.HasUploads() && mode != EncodingStandard {
		return NewInvalidConfigurationError(fmt.Sprintf(
			"file uploads require the %s encoding, got %s", EncodingStandard, mode))
	}
	return nil
}

// BodyContentType returns the Content-Type header for mode. An empty string
// means no header is sent.
func BodyContentType(mode Encoding, boundary string) string {
	switch mode {
	case EncodingStandard:
		return ContentTypeMultipart + "; boundary=" + boundary
	case EncodingJSON:
		return ContentTypeJSON
	case EncodingNone:
		return ""
	default:
		return ContentTypeForm
	}
}

// EncodeBody writes the request body for mode to w.
func EncodeBody(w io.Writer, p *Params, mode Encoding, fieldName, boundary string) error {
	if err := ValidateEncoding(p, mode); err != nil {
		return err
	}

	switch mode {
	case EncodingStandard:
		return writeMultipart(w, p, fieldName, boundary)
	case EncodingJSON, EncodingNone:
		for _, v := range p.Values() {
			if _, err := io.WriteString(w, v); err != nil {
				return err
			}
		}
		return nil
	default:
		query := QueryString(p)
		if query == "" {
			return nil
		}
		_, err := io.WriteString(w, query)
		return err
	}
}

func writeMultipart(w io.Writer, p *Params, fieldName, boundary string) error {
	boundaryLine := "--" + boundary + "\r\n"

	for _, key := range p.stringKeys {
		part := boundaryLine +
			fmt.Sprintf("Content-Disposition: form-data; name=\"%s\"\r\n\r\n%s\r\n", key, p.strings[key])
		if _, err := io.WriteString(w, part); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, boundaryLine); err != nil {
		return err
	}

	buf := make([]byte, chunkSize)
	for i, key := range p.fileKeys {
		if i > 0 {
			// keep each file in its own part
			if _, err := io.WriteString(w, "\r\n"+boundaryLine); err != nil {
				return err
			}
		}
		header := fmt.Sprintf("Content-Disposition: form-data; name=\"%s\"; filename=\"%s\"\r\nContent-Type: %s\r\n\r\n",
			fieldName, key, ContentType(key))
		if _, err := io.WriteString(w, header); err != nil {
			return err
		}
		if err := copyChunks(w, p.files[key], buf); err != nil {
			return fmt.Errorf("failed to copy upload %q: %w", key, err)
		}
	}

	_, err := io.WriteString(w, "\r\n--"+boundary+"--\r\n")
	return err
}

// copyChunks copies r to w through buf without handing r to io.Copy, which
// could bypass the fixed chunk size via WriterTo.
func copyChunks(w io.Writer, r io.Reader, buf []byte) error {
	if r == nil {
		return nil
	}
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
