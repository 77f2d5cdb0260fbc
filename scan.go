package inkgallery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

func (g *Gallery) findImages(ctx context.Context, base string) (<-chan string, <-chan error, error) {
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
			if info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsRegular() || !isImageFile(file) {
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
	return out, errc, nil
}

func (g *Gallery) importWorker(ctx context.Context, base string, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			// Register the path relative to the scan root so entries in
			// subdirectories stay resolvable against the images directory.
			rel, err := filepath.Rel(base, file)
			if err != nil {
				errc <- err
				return
			}

			sha, err := sha1File(file)
			if err != nil {
				errc <- err
				return
			}

			dup, err := g.db.HasSHA1(sha)
			if err != nil {
				errc <- err
				return
			}
			if dup {
				g.logger.Printf("Skipping \"%s\", already registered\n", file)
				continue
			}

			info, err := os.Stat(file)
			if err != nil {
				errc <- err
				return
			}

			if _, err := g.db.AddImage(filepath.ToSlash(rel), sha, info.ModTime()); err != nil {
				errc <- err
				return
			}
			g.logger.Printf("Registered \"%s\"\n", file)
		}
	}()
	return errc, nil
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

// Scan walks a directory tree and registers every image file it finds in
// the metadata database, skipping files whose content is already present.
func (g *Gallery) Scan(path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := g.findImages(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < runtime.NumCPU(); i++ {
		errc, err := g.importWorker(ctx, dir, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
