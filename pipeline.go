package asciify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TextExt is appended to the image filename when Scan writes out the
// rendered text, so a.png and a.jpg never share an output.
const TextExt = ".txt"

const maxFileSize = 16 << (10 * 2)

var imageExts = map[string]struct{}{
	".bmp":  {},
	".gif":  {},
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".tif":  {},
	".tiff": {},
	".webp": {},
}

func isImage(file string) bool {
	_, ok := imageExts[strings.ToLower(filepath.Ext(file))]
	return ok
}

func (c *Converter) findImages(ctx context.Context, base string) (<-chan string, <-chan error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if file != base && info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() {
				return nil
			}

			// Ignore any file greater than 16 MB
			if info.Size() > maxFileSize {
				c.logger.Printf("Skipping \"%s\", too large\n", file)
				return nil
			}

			if info.Size() == 0 {
				return nil
			}

			if !isImage(file) {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc
}

func textFile(file string) string {
	return file + TextExt
}

func (c *Converter) imageWorker(ctx context.Context, in <-chan string, width int) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			text, err := c.ConvertFile(file, width)
			if err != nil {
				// Undecodable images are reported but don't stop the scan
				if errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrDecode) || errors.Is(err, ErrResample) {
					c.logger.Printf("Skipping \"%s\": %v\n", file, err)
					continue
				}
				errc <- err
				return
			}

			if err := os.WriteFile(textFile(file), []byte(text), 0644); err != nil {
				errc <- err
				return
			}
			c.logger.Printf("Wrote \"%s\"\n", textFile(file))
		}
	}()
	return errc
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks path and renders every image found at width columns, writing
// the text alongside the image with TextExt appended to its name.
// Images that can't be decoded are logged and skipped.
func (c *Converter) Scan(ctx context.Context, path string, width int) error {
	if width <= 0 {
		return fmt.Errorf("%w: width must be > 0, got %d", ErrInvalidArgument, width)
	}

	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	var errcList []<-chan error

	files, errc := c.findImages(ctx, dir)
	errcList = append(errcList, errc)

	for i := 0; i < c.workers; i++ {
		errcList = append(errcList, c.imageWorker(ctx, files, width))
	}

	return waitForPipeline(errcList...)
}
