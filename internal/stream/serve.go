package stream

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
)

// DefaultChunkBytes bounds per-stream memory when no chunk size is configured.
const DefaultChunkBytes = 256 * 1024

// Options carries the descriptor facts the response builder needs. Size must
// be the authoritative object length; it is trusted for Content-Length and
// range validation without consulting the store again.
type Options struct {
	ContentType string
	Size        int64
	ChunkBytes  int
}

// OpenRangeFunc opens a reader over the inclusive byte range [start, end] of
// the underlying object. It is called at most once per request, after the
// range has been validated.
type OpenRangeFunc func(start, end int64) (io.ReadCloser, error)

// Serve composes a full (200), partial (206), or range-not-satisfiable (416)
// response for one media object and drives the chunked body copy.
//
// The body is never buffered whole: bytes are pulled from the opened reader
// in bounded chunks and forwarded as the response is written, stopping
// exactly at the end of the requested range. If the client disconnects, the
// transport stops reading and closes the reader, so no further chunks are
// requested from the store. A read error mid-body aborts the connection;
// headers have already committed Content-Length, so no recovery is possible
// and the client is expected to resume with a fresh ranged request.
//
// An error return means the object range could not be opened and no response
// bytes have been written; the caller maps it to a 5xx.
func Serve(c *fiber.Ctx, opt Options, rangeHeader string, open OpenRangeFunc) error {
	br, err := ParseRange(rangeHeader, opt.Size)
	if err != nil {
		c.Set(fiber.HeaderContentRange, fmt.Sprintf("bytes */%d", opt.Size))
		c.Status(fiber.StatusRequestedRangeNotSatisfiable)
		return nil
	}

	status := fiber.StatusOK
	start, end := int64(0), opt.Size-1
	if br != nil {
		status = fiber.StatusPartialContent
		start, end = br.Start, br.End
	}

	if opt.Size == 0 {
		// Empty object: a 200 with zero bytes. ParseRange already rejected
		// any present Range header against an empty resource.
		setInlineHeaders(c, opt.ContentType)
		c.Status(status)
		c.Response().Header.SetContentLength(0)
		return nil
	}

	rc, err := open(start, end)
	if err != nil {
		return fmt.Errorf("open object range %d-%d: %w", start, end, err)
	}

	setInlineHeaders(c, opt.ContentType)
	if status == fiber.StatusPartialContent {
		c.Set(fiber.HeaderContentRange, fmt.Sprintf("bytes %d-%d/%d", start, end, opt.Size))
	}
	c.Status(status)

	chunk := opt.ChunkBytes
	if chunk <= 0 {
		chunk = DefaultChunkBytes
	}
	length := end - start + 1
	c.Response().SetBodyStream(newChunkReader(rc, length, chunk), int(length))
	return nil
}

// setInlineHeaders applies the header policy that keeps browsers rendering
// media in place: a bare inline disposition with no filename attribute, plus
// cache suppression. This is an HTTP contract, not a security boundary; any
// client can still persist the streamed bytes.
func setInlineHeaders(c *fiber.Ctx, contentType string) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderAcceptRanges, "bytes")
	c.Set(fiber.HeaderContentDisposition, "inline")
	c.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
	c.Set(fiber.HeaderPragma, "no-cache")
	c.Set(fiber.HeaderExpires, "0")
}

// chunkReader caps each Read at the configured chunk size and stops exactly
// after the declared range length, regardless of how many bytes the backend
// is willing to return. The transport closes it once the response is written
// or the client goes away.
type chunkReader struct {
	rc        io.ReadCloser
	remaining int64
	chunk     int
}

func newChunkReader(rc io.ReadCloser, length int64, chunk int) *chunkReader {
	return &chunkReader{rc: rc, remaining: length, chunk: chunk}
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.remaining <= 0 {
		return 0, io.EOF
	}
	limit := int64(r.chunk)
	if int64(len(p)) < limit {
		limit = int64(len(p))
	}
	if r.remaining < limit {
		limit = r.remaining
	}
	n, err := r.rc.Read(p[:limit])
	r.remaining -= int64(n)
	if err == io.EOF && r.remaining > 0 {
		// The backend ended before the declared range length. Surfacing an
		// unexpected EOF makes the transport abort the connection instead of
		// completing a short body that looks valid.
		return n, io.ErrUnexpectedEOF
	}
	return n, err
}

func (r *chunkReader) Close() error { return r.rc.Close() }
