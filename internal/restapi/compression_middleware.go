package restapi

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// compressMinSize is the smallest body that gets gzipped.
const compressMinSize = 1024

// compressibleTypes are the content types the API emits itself. /metrics
// negotiates its own encoding.
var compressibleTypes = []string{
	"application/json",
	"text/html",
}

// NewCompressionMiddleware gzips responses of at least minSize bytes.
func NewCompressionMiddleware(minSize int) func(http.Handler) http.Handler {
	wrapper, err := gzhttp.NewWrapper(
		gzhttp.MinSize(minSize),
		gzhttp.ContentTypes(compressibleTypes),
	)
	if err != nil {
		return func(next http.Handler) http.Handler { return gzhttp.GzipHandler(next) }
	}
	return func(next http.Handler) http.Handler { return wrapper(next) }
}

func CompressionMiddleware(next http.Handler) http.Handler {
	return NewCompressionMiddleware(compressMinSize)(next)
}
