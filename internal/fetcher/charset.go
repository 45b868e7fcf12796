package fetcher

import (
	"io"
	"mime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
)

// decodeBody converts r to UTF-8 according to the charset named in contentType.
// Unknown or absent charsets pass the body through unchanged.
func decodeBody(r io.Reader, contentType string) (io.Reader, error) {
	if contentType == "" {
		return r, nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return r, nil
	}
	cs := strings.ToLower(strings.TrimSpace(params["charset"]))
	if cs == "" || cs == "utf-8" || cs == "utf8" {
		return r, nil
	}

	enc, err := htmlindex.Get(cs)
	if err != nil {
		zap.L().Debug("fetcher: unsupported charset, reading raw body", zap.String("charset", cs))
		return r, nil
	}
	return enc.NewDecoder().Reader(r), nil
}
