// Package router maps a log file's relative path to a model name so that
// "the same kind of file" across CI runs is trained and tested together.
// It is a pure, deterministic, I/O-free function. It special-cases
// job-output.txt, k8s_ container logs, and Zuul-style pipeline segments
// (/check/, /gate/, /post/, /periodic/).
package router

import (
	"path"
	"regexp"
	"strings"
)

var digitSubword = regexp.MustCompile(`(?i)[a-z0-9]*[0-9][a-z0-9]*[^\s/-]*`)

var uuidLike = regexp.MustCompile(`(?i)[0-9a-f]{8}-?[0-9a-f]{4}-?[0-9a-f]{4}-?[0-9a-f]{4}-?[0-9a-f]{12}`)

var nonModelChars = regexp.MustCompile(`[^a-zA-Z/._-]`)

// meaningfulExtensions is checked, in order, against the original path: any
// extension present anywhere in it is re-appended to the computed model
// name. Order matters for the ".log.txt" -> ".log" normalization below.
var meaningfulExtensions = []string{
	".conf", ".audit", ".yaml", ".orig", ".log", ".xml", ".html", ".txt", ".py", ".json", ".yml",
}

var pipelineSegments = []string{"/check/", "/gate/", "/post/", "/periodic/"}

// FilenameToModelName derives the model name a given relative file path
// should be trained and tested against.
func FilenameToModelName(relPath string) string {
	relPath = toSlash(relPath)
	base := path.Base(relPath)

	if strings.HasPrefix(base, "job-output.txt") {
		return "job-output.txt"
	}
	if strings.HasPrefix(base, "k8s_") {
		return strings.SplitN(base, "-", 2)[0]
	}

	dir := path.Base(path.Dir(relPath))
	dir = digitSubword.ReplaceAllString(dir, "")

	stem := base
	if idx := strings.IndexByte(stem, '.'); idx >= 0 {
		stem = stem[:idx]
	}

	name := path.Join(dir, stem)

	for _, seg := range pipelineSegments {
		if idx := strings.Index(relPath, seg); idx >= 0 {
			rest := relPath[idx+len(seg):]
			parts := strings.SplitN(rest, "/", 2)
			if parts[0] != "" {
				name = path.Join(parts[0], name)
			}
			break
		}
	}

	if name == "" {
		name = stem
	}

	for _, ext := range meaningfulExtensions {
		if strings.Contains(relPath, ext) {
			name += ext
		}
	}
	name = strings.Replace(name, ".log.txt", ".log", 1)

	name = uuidLike.ReplaceAllString(name, "")
	name = nonModelChars.ReplaceAllString(name, "")

	return name
}

// toSlash normalizes OS path separators to '/' so the router is
// stable regardless of the host platform the file iterator walked on.
func toSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
