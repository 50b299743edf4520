// Package source walks directory trees and single files, applies a
// deny-list filtering policy, and yields decompressed byte streams in
// deterministic order.
package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"

	"github.com/logjuicer/logjuicer/pkg/lgerrors"
	"github.com/logjuicer/logjuicer/pkg/logging"
)

// denyBasename lists noise files that carry no useful vocabulary for the
// detector: host facts, process listings, static binary dumps.
var denyBasename = []string{
	"lsof_network.txt", "uname.txt", "sysstat.txt", "df.txt",
	"rdo-trunk-deps-end.txt", "meminfo.txt", "repolist.txt", "hosts.txt",
	"lsof.txt", "lsmod.txt", "sysctl.txt", "cpuinfo.txt", "pstree.txt",
	"iotop.txt", "iostat.txt", "free.txt", "dstat.txt",
}

// denyExtensions are binary/noise formats, checked after stripping any
// compression suffix.
var denyExtensions = []string{
	".ico", ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tgz", ".pyc", ".pyo",
	".key", ".pem", ".crt", ".rpm", ".deb", ".db", ".sqlite", ".sqlite3",
	".json", ".yaml", ".yml", ".pickle", ".whl", ".jar", ".so", ".a",
}

var compressionSuffixes = []string{".gz", ".bz2", ".xz"}

// Descriptor describes one entry to walk: a directory or a single file, with
// an optional base URL used to resolve a PublicURL for provenance. BaseURL
// may be empty, in which case no public URL is ever resolved for files under
// this descriptor.
type Descriptor struct {
	Path    string
	BaseURL string
}

// File is one yielded entry: its path relative to the descriptor root, an
// open (and, if necessary, transparently decompressed) byte stream, and its
// resolved provenance URL.
type File struct {
	RelPath   string
	PublicURL string
	stream    io.ReadCloser
}

// Stream returns the file's content stream. Callers must Close it.
func (f *File) Stream() io.ReadCloser { return f.stream }

// Close releases the underlying stream.
func (f *File) Close() error { return f.stream.Close() }

// Lines reads every physical line out of f, dropping non-ASCII bytes and
// expanding any Ansible-style \n-blob into its constituent segments.
// maxLineBytes bounds a single scanner token so a pathological file cannot
// exhaust memory.
func (f *File) Lines(dropNonASCII func([]byte) string, maxLineBytes int) ([]string, error) {
	scanner := bufio.NewScanner(f.stream)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	var out []string
	for scanner.Scan() {
		line := dropNonASCII(scanner.Bytes())
		out = append(out, SplitAnsibleBlob(line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", lgerrors.ErrUnreadableFile, f.RelPath, err)
	}
	return out, nil
}

// Filter holds the caller-supplied deny patterns.
type Filter struct {
	DenyBasename *regexp.Regexp
	DenyPath     *regexp.Regexp
}

// Walk enumerates every file under descriptors, in depth-first lexicographic
// order, applying the filtering policy and opening a decompressed stream for
// each survivor. It returns the full slice rather than a channel: callers
// process one model bucket at a time, so there is no benefit to streaming
// the directory walk itself.
//
// A file that cannot be opened or decompressed is logged at Warn (wrapping
// lgerrors.ErrUnreadableFile) and skipped rather than aborting the walk; a
// descriptor whose root path itself does not exist is still fatal. logger
// may be nil, in which case skip events are discarded.
func Walk(descriptors []Descriptor, filter Filter, logger *logging.Logger) ([]*File, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	var out []*File
	for _, d := range descriptors {
		info, err := os.Stat(d.Path)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", d.Path, err)
		}
		if !info.IsDir() {
			f, err := openEntry(d.Path, filepath.Base(d.Path), d)
			if err != nil {
				logger.Warn("skipping unreadable file", "path", d.Path, "error", err)
				continue
			}
			if f != nil {
				out = append(out, f)
			}
			continue
		}
		var paths []string
		err = filepath.Walk(d.Path, func(p string, i os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if i.IsDir() {
				return nil
			}
			if strings.Contains(filepath.ToSlash(p), "/.git/") {
				return nil
			}
			paths = append(paths, p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", d.Path, err)
		}
		sort.Strings(paths)
		for _, p := range paths {
			rel, err := filepath.Rel(d.Path, p)
			if err != nil {
				return nil, err
			}
			rel = filepath.ToSlash(rel)
			if denied(filepath.Base(p), rel, filter) {
				continue
			}
			f, err := openEntry(p, rel, d)
			if err != nil {
				logger.Warn("skipping unreadable file", "path", p, "error", err)
				continue
			}
			if f != nil {
				out = append(out, f)
			}
		}
	}
	return out, nil
}

func denied(base, rel string, filter Filter) bool {
	if filter.DenyBasename != nil && filter.DenyBasename.MatchString(base) {
		return true
	}
	if filter.DenyPath != nil && filter.DenyPath.MatchString(rel) {
		return true
	}
	for _, b := range denyBasename {
		if base == b {
			return true
		}
	}
	stripped := base
	for _, c := range compressionSuffixes {
		stripped = strings.TrimSuffix(stripped, c)
	}
	for _, e := range denyExtensions {
		if strings.HasSuffix(stripped, e) {
			return true
		}
	}
	return false
}

// openEntry opens p, decompresses it if needed, and skips it if it turns out
// to be empty, including a gzip file containing only a header.
func openEntry(p, rel string, d Descriptor) (*File, error) {
	raw, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", lgerrors.ErrUnreadableFile, p, err)
	}

	stream, empty, err := decompress(raw, p)
	if err != nil {
		raw.Close()
		return nil, fmt.Errorf("%w: %s: %v", lgerrors.ErrUnreadableFile, p, err)
	}
	if empty {
		stream.Close()
		return nil, nil
	}

	return &File{
		RelPath:   rel,
		PublicURL: publicURL(rel, d),
		stream:    stream,
	}, nil
}

// decompress transparently unwraps .gz and .xz content. A ".gz" name is not
// trusted blindly: the first two magic bytes (0x1f 0x8b) are checked first,
// since some log servers serve already-decompressed content under a ".gz"
// name. The returned stream is peeked for emptiness (including a
// well-formed gzip stream with no payload) without consuming any byte a
// subsequent Read would otherwise see.
func decompress(raw *os.File, name string) (io.ReadCloser, bool, error) {
	buffered := bufio.NewReader(raw)
	magic, err := buffered.Peek(2)
	if err != nil && err != io.EOF {
		return nil, false, err
	}
	if len(magic) == 0 {
		return readCloser{buffered, raw}, true, nil
	}
	isGzipMagic := len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b

	switch {
	case strings.HasSuffix(name, ".gz") && isGzipMagic:
		gz, err := gzip.NewReader(buffered)
		if err != nil {
			return nil, false, fmt.Errorf("invalid gzip stream: %w", err)
		}
		return peekEmpty(gz, raw)
	case strings.HasSuffix(name, ".xz"):
		xr, err := xz.NewReader(buffered)
		if err != nil {
			return nil, false, fmt.Errorf("invalid xz stream: %w", err)
		}
		return peekEmpty(xr, raw)
	default:
		return peekEmpty(buffered, raw)
	}
}

// peekEmpty wraps r in a bufio.Reader and reports whether it is empty,
// without losing any bytes for the eventual real read.
func peekEmpty(r io.Reader, raw *os.File) (io.ReadCloser, bool, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	peek, err := br.Peek(1)
	if err != nil && err != io.EOF {
		return nil, false, err
	}
	return readCloser{br, raw}, len(peek) == 0, nil
}

// readCloser pairs a Reader with the os.File that must ultimately be closed.
type readCloser struct {
	io.Reader
	raw *os.File
}

func (r readCloser) Close() error { return r.raw.Close() }

// publicURL resolves provenance: when the file lives under a descriptor
// with a base URL, compute the public URL by appending the relative path
// to that base.
func publicURL(rel string, d Descriptor) string {
	if d.BaseURL == "" {
		return ""
	}
	return strings.TrimSuffix(d.BaseURL, "/") + "/" + rel
}

// jobOutputCutoffMarker is the literal substring that marks the point, in a
// job-output.txt file, where logjuicer's own previous report was appended.
// Training on it would mean training on the detector's own output.
const jobOutputCutoffMarker = "TASK [log-classify"

// CutJobOutput truncates a job-output.txt line stream at the first line
// containing jobOutputCutoffMarker.
func CutJobOutput(lines []string) []string {
	for i, l := range lines {
		if strings.Contains(l, jobOutputCutoffMarker) {
			return lines[:i]
		}
	}
	return lines
}

// SplitAnsibleBlob expands an Ansible stdout_lines/stderr_lines-style blob
// that was captured as a single physical line containing literal "\n"
// escape sequences. Lines with no such separator are returned unchanged as
// a single-element slice.
func SplitAnsibleBlob(line string) []string {
	if !strings.Contains(line, `\n`) {
		return []string{line}
	}
	return strings.Split(line, `\n`)
}
