package upload

import (
	"fmt"
	"strings"
)

// OptimizedURL rewrites a cloudinary delivery URL to serve a resized,
// quality-tuned variant. Non-cloudinary URLs pass through unchanged.
func OptimizedURL(url string, width, height int, quality string) string {
	if !strings.Contains(url, "/upload/") {
		return url
	}
	transform := fmt.Sprintf("/upload/w_%d,h_%d,c_fill,q_%s/", width, height, quality)
	return strings.Replace(url, "/upload/", transform, 1)
}

// ThumbnailURL rewrites a cloudinary delivery URL to a square thumbnail.
func ThumbnailURL(url string, size int) string {
	if !strings.Contains(url, "/upload/") {
		return url
	}
	transform := fmt.Sprintf("/upload/w_%d,h_%d,c_thumb,g_face/", size, size)
	return strings.Replace(url, "/upload/", transform, 1)
}
