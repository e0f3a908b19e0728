package asciify

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

const (
	// DefaultColumns is the width used by Handler when the request doesn't
	// specify one.
	DefaultColumns = 100
	// MaxColumns is the widest rendering Handler will produce.
	MaxColumns = 1000
)

func statusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrDecode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Handler returns an http.Handler that renders the image posted as the
// request body. The width is taken from the "cols" query parameter.
func (c *Converter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		cols := DefaultColumns
		if s := r.URL.Query().Get("cols"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				http.Error(w, "cols must be an integer", http.StatusBadRequest)
				return
			}
			if n > MaxColumns {
				http.Error(w, fmt.Sprintf("cols must be no more than %d", MaxColumns), http.StatusBadRequest)
				return
			}
			cols = n
		}

		b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFileSize))
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				http.Error(w, "image too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		text, err := c.Convert(b, cols)
		if code := statusCode(err); code != http.StatusOK {
			if code == http.StatusInternalServerError {
				c.logger.Printf("Conversion failed: %v\n", err)
			}
			http.Error(w, err.Error(), code)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, text)
	})
}
