package devtools

import (
	"strconv"
	"strings"
)

const crlf = "\r\n"

// Dechunk decodes an HTTP/1.1 chunked body. Decoding stops at the zero-size
// chunk or at the first length line that cannot be parsed, returning what was
// decoded so far. A chunk announced longer than the remaining data yields the
// remaining data.
func Dechunk(body string) string {
	var out strings.Builder
	rest := body
	for {
		end := strings.Index(rest, crlf)
		if end < 0 {
			break
		}

		sizeLine := rest[:end]
		if i := strings.IndexByte(sizeLine, ';'); i >= 0 {
			sizeLine = sizeLine[:i]
		}
		size, err := strconv.ParseUint(strings.TrimSpace(sizeLine), 16, 63)
		if err != nil || size == 0 {
			break
		}

		rest = rest[end+len(crlf):]
		if size > uint64(len(rest)) {
			size = uint64(len(rest))
		}
		n := int(size)
		out.WriteString(rest[:n])
		rest = strings.TrimPrefix(rest[n:], crlf)
	}
	return out.String()
}
