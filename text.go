package byteslice

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/byteslice/internal/fs"
)

// LoadTextFile reads whitespace-separated unsigned integers from path into
// rows 0, 1, 2, ... until either the file or the column is exhausted. It
// returns the number of rows loaded.
func (c *Column) LoadTextFile(path string) (int, error) {
	return c.loadText(fs.Default, path)
}

func (c *Column) loadText(fsys fs.FileSystem, path string) (int, error) {
	start := time.Now()
	n, err := c.readText(fsys, path)
	c.opts.metricsCollector.RecordLoad(n, time.Since(start), err)
	c.logger.LogLoad(context.Background(), path, n, err)
	return n, err
}

func (c *Column) readText(fsys fs.FileSystem, path string) (int, error) {
	if c.closed {
		return 0, ErrClosed
	}
	f, err := fsys.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	id := 0
	line := 0
	for id < c.num && sc.Scan() {
		line++
		for _, field := range strings.Fields(sc.Text()) {
			if id == c.num {
				break
			}
			v, err := strconv.ParseUint(field, 10, 64)
			if err != nil {
				return id, fmt.Errorf("%s:%d: %w", path, line, err)
			}
			if err := c.SetTuple(id, v); err != nil {
				return id, fmt.Errorf("%s:%d: %w", path, line, err)
			}
			id++
		}
	}
	if err := sc.Err(); err != nil {
		return id, fmt.Errorf("read %s: %w", path, err)
	}
	return id, nil
}
