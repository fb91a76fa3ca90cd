package httphelper

import "strings"

// DefaultImageContentType is used for unknown extensions
const DefaultImageContentType = "image/jpeg"

// ContentType maps an upload's file name to the MIME type sent in its
// multipart header. Only common image types are recognised.
func ContentType(fileName string) string {
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 {
		return DefaultImageContentType
	}

	switch strings.ToLower(fileName[idx:]) {
	case ".jpg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return DefaultImageContentType
	}
}
