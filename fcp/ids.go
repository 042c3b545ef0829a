package fcp

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// GenerateUID derives a stable asset UID from a media reference. The host
// and path take part; the query string and fragment do not.
func GenerateUID(src string) string {
	hasher := md5.New()
	hasher.Write([]byte("reeledit_media_" + mediaKey(src)))
	hexStr := strings.ToUpper(hex.EncodeToString(hasher.Sum(nil)))
	return fmt.Sprintf("%s-%s-%s-%s-%s",
		hexStr[0:8], hexStr[8:12], hexStr[12:16], hexStr[16:20], hexStr[20:32])
}

func mediaKey(src string) string {
	u, err := url.Parse(src)
	if err != nil || u.Path == "" {
		return src
	}
	return u.Host + u.Path
}

// MediaName returns the file name of a media reference without query,
// fragment or extension.
func MediaName(src string) string {
	p := src
	if u, err := url.Parse(src); err == nil && u.Path != "" {
		p = u.Path
	}
	base := path.Base(p)
	if base == "." || base == "/" {
		return src
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// GenerateTextStyleID returns a text-style-def ID unique to one title. IDs
// must not repeat within a document or the DTD check fails.
func GenerateTextStyleID(text, baseName string) string {
	uid := GenerateUID("text_" + baseName + "_" + text)
	return "ts" + uid[0:8]
}

// GenerateResourceID creates a standardized resource ID
func GenerateResourceID(index int) string {
	return fmt.Sprintf("r%d", index)
}
