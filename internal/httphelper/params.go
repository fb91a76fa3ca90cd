package httphelper

import (
	"io"
	"maps"
)

// Params holds the string and file parameters of a pending request.
// Keys are unique across both kinds and iteration follows insertion order.
//
// File readers are owned by the caller: Params and Client only read them and
// never close them.
type Params struct {
	stringKeys []string
	strings    map[string]string
	fileKeys   []string
	files      map[string]io.Reader
}

// NewParams creates an empty parameter store
func NewParams() *Params {
	return &Params{
		strings: make(map[string]string),
		files:   make(map[string]io.Reader),
	}
}

func (p *Params) has(key string) bool {
	if _, ok := p.strings[key]; ok {
		return true
	}
	_, ok := p.files[key]
	return ok
}

// AppendString adds a string parameter
func (p *Params) AppendString(key, value string) error {
	if p.has(key) {
		return NewDuplicateKeyError(key)
	}
	p.stringKeys = append(p.stringKeys, key)
	p.strings[key] = value
	return nil
}

// AppendFile adds a file parameter. key doubles as the multipart filename.
func (p *Params) AppendFile(key string, r io.Reader) error {
	if p.has(key) {
		return NewDuplicateKeyError(key)
	}
	p.fileKeys = append(p.fileKeys, key)
	p.files[key] = r
	return nil
}

// HasUploads reports whether any file parameter is pending
func (p *Params) HasUploads() bool {
	return len(p.fileKeys) > 0
}

// UploadKeys returns the file parameter keys in insertion order
func (p *Params) UploadKeys() []string {
	return append([]string(nil), p.fileKeys...)
}

// Keys returns the string parameter keys in insertion order
func (p *Params) Keys() []string {
	return append([]string(nil), p.stringKeys...)
}

// Values returns the string parameter values in insertion order
func (p *Params) Values() []string {
	values := make([]string, 0, len(p.stringKeys))
	for _, k := range p.stringKeys {
		values = append(values, p.strings[k])
	}
	return values
}

// Get returns a string parameter
func (p *Params) Get(key string) (string, bool) {
	v, ok := p.strings[key]
	return v, ok
}

// File returns a file parameter
func (p *Params) File(key string) (io.Reader, bool) {
	r, ok := p.files[key]
	return r, ok
}

// Len returns the number of parameters of both kinds
func (p *Params) Len() int {
	return len(p.stringKeys) + len(p.fileKeys)
}

// Clear removes every parameter
func (p *Params) Clear() {
	p.stringKeys = nil
	p.fileKeys = nil
	clear(p.strings)
	clear(p.files)
}

// Clone returns a copy that shares the file readers but none of the
// bookkeeping, so later changes to p do not affect it
func (p *Params) Clone() *Params {
	c := NewParams()
	c.stringKeys = append([]string(nil), p.stringKeys...)
	c.fileKeys = append([]string(nil), p.fileKeys...)
	maps.Copy(c.strings, p.strings)
	maps.Copy(c.files, p.files)
	return c
}
