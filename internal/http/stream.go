package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ChunkSize is the size of each read from a media stream.
const ChunkSize = 32 << 10

// Progress is the state of a stream after a chunk has been written.
type Progress struct {
	// Written is the number of bytes written so far.
	Written int64

	// Total is the announced length, or -1 when unknown.
	Total int64
}

// Known reports whether the total length is known.
func (p Progress) Known() bool {
	return p.Total >= 0
}

// Value returns the completed fraction in [0,1] when the total is known,
// and the raw byte count otherwise.
func (p Progress) Value() float64 {
	switch {
	case !p.Known():
		return float64(p.Written)
	case p.Total == 0 || p.Written >= p.Total:
		return 1
	default:
		return float64(p.Written) / float64(p.Total)
	}
}

// ProgressFunc receives progress after every chunk.
type ProgressFunc func(Progress)

// ProgressWriter wraps a writer to track download progress.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: file,
//	    Total:  contentLength,
//	    OnUpdate: func(p Progress) {
//	        fmt.Printf("%d / %d bytes\n", p.Written, p.Total)
//	    },
//	}
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes, -1 if unknown.
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	OnUpdate ProgressFunc
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil && n > 0 {
		pw.OnUpdate(Progress{Written: pw.Written, Total: pw.Total})
	}
	return n, err
}

// Stream copies the body at rawURL into w in ChunkSize pieces and
// returns the number of bytes written. The response is closed on every
// path.
func (c *Client) Stream(ctx context.Context, rawURL string, w io.Writer, onProgress ProgressFunc) (int64, error) {
	resp, err := c.do(ctx, http.MethodGet, rawURL)
	if err != nil {
		return 0, err
	}
	defer closeBody(resp.Body)

	total := resp.ContentLength
	pw := &ProgressWriter{Writer: w, Total: total, OnUpdate: onProgress}

	buf := make([]byte, ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return pw.Written, fmt.Errorf("%w: %w", ErrDownloadCanceled, err)
		}

		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := pw.Write(buf[:n]); werr != nil {
				return pw.Written, fmt.Errorf("writing chunk: %w", werr)
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			if ctx.Err() != nil {
				return pw.Written, fmt.Errorf("%w: %w", ErrDownloadCanceled, ctx.Err())
			}
			return pw.Written, fmt.Errorf("reading body: %w", rerr)
		}
	}

	if total >= 0 && pw.Written != total {
		return pw.Written, fmt.Errorf("%w: expected %d bytes, got %d", ErrContentLengthMismatch, total, pw.Written)
	}
	if pw.Written == 0 && onProgress != nil {
		onProgress(Progress{Written: 0, Total: total})
	}
	return pw.Written, nil
}

// DownloadFile streams rawURL into destPath.
//
// The body goes to a temporary file next to destPath which is renamed
// into place only after a complete copy. On any error, cancellation
// included, the temporary file is removed and destPath is left untouched.
func (c *Client) DownloadFile(ctx context.Context, rawURL, destPath string, onProgress ProgressFunc) error {
	file, err := os.CreateTemp(filepath.Dir(destPath), ".scdl-*.part")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	var successful bool
	defer func() {
		if cerr := file.Close(); cerr != nil && !errors.Is(cerr, os.ErrClosed) {
			c.logger.Warn("closing temp file", zap.Error(cerr))
		}
		if !successful {
			if rerr := os.Remove(file.Name()); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
				c.logger.Warn("removing temp file", zap.Error(rerr))
			}
		}
	}()

	if _, err := c.Stream(ctx, rawURL, file, onProgress); err != nil {
		return err
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(file.Name(), destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	successful = true
	return nil
}
