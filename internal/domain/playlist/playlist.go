// Package playlist provides the Playlist domain entity and its line format.
package playlist

import (
	"bufio"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

const (
	// LineSeparator separates items in a playlist file.
	LineSeparator = "\r\n"
	// ShuffleDirective marks a playlist whose items should be shuffled on load.
	ShuffleDirective = "#shuffle"

	maxLineSize = 1024 * 1024
)

// ErrInvalidName is returned when a playlist name cannot be used as a file key.
var ErrInvalidName = errors.New("invalid playlist name")

var (
	whitespace      = regexp.MustCompile(`\s+`)
	commentPrefixes = []string{"#", "//"}
)

// Item is a single normalized track reference.
type Item string

// Playlist represents a named, ordered list of track references.
type Playlist struct {
	Name    string // Normalized playlist name
	Items   []Item // Items in file order
	Shuffle bool   // Set by a shuffle directive line
}

// URLs returns the items as plain strings.
func (p *Playlist) URLs() []string {
	urls := make([]string, len(p.Items))
	for i, item := range p.Items {
		urls[i] = string(item)
	}
	return urls
}

// Len returns the number of items.
func (p *Playlist) Len() int {
	return len(p.Items)
}

// Content serializes the playlist into its on-disk form.
func (p *Playlist) Content() string {
	return Serialize(p.Items, p.Shuffle)
}

// NormalizeItem trims surrounding whitespace and a surrounding pair of angle
// brackets. It reports false when nothing is left, when the value would not
// fit on a single line, or when it would be read back as a comment.
func NormalizeItem(raw string) (Item, bool) {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 && strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" || strings.ContainsAny(s, "\r\n") || isComment(s) {
		return "", false
	}
	return Item(s), true
}

// SplitItems splits a pipe-delimited argument into normalized items.
// Empty segments are dropped.
func SplitItems(raw string) []Item {
	parts := strings.Split(raw, "|")
	items := make([]Item, 0, len(parts))
	for _, part := range parts {
		if item, ok := NormalizeItem(part); ok {
			items = append(items, item)
		}
	}
	return items
}

// NormalizeName turns a raw playlist name into the key used on disk.
// Whitespace runs become underscores; names that could escape the playlists
// directory are rejected.
func NormalizeName(raw string) (string, error) {
	name := whitespace.ReplaceAllString(strings.TrimSpace(raw), "_")
	switch {
	case name == "":
		return "", errors.Wrap(ErrInvalidName, "name is empty")
	case name == "." || name == "..":
		return "", errors.Wrapf(ErrInvalidName, "name %q is reserved", name)
	case strings.HasPrefix(name, "."):
		return "", errors.Wrapf(ErrInvalidName, "name %q starts with a dot", name)
	case strings.ContainsAny(name, "/\\:\x00"):
		return "", errors.Wrapf(ErrInvalidName, "name %q contains a path character", name)
	case !utf8.ValidString(name):
		return "", errors.Wrap(ErrInvalidName, "name is not valid UTF-8")
	}
	return name, nil
}

// Parse reads a playlist file. Blank lines and comment lines are ignored;
// lines that do not normalize to an item are skipped.
func Parse(name string, r io.Reader) (*Playlist, error) {
	p := &Playlist{Name: name, Items: make([]Item, 0)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if isComment(line) {
			if isShuffleDirective(line) {
				p.Shuffle = true
			}
			continue
		}
		if !utf8.ValidString(line) {
			continue
		}
		if item, ok := NormalizeItem(line); ok {
			p.Items = append(p.Items, item)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to parse playlist %s", name)
	}
	return p, nil
}

// Serialize renders items as CRLF-terminated lines, preceded by the shuffle
// directive when shuffle is set.
func Serialize(items []Item, shuffle bool) string {
	var b strings.Builder
	if shuffle {
		b.WriteString(ShuffleDirective)
		b.WriteString(LineSeparator)
	}
	for _, item := range items {
		b.WriteString(string(item))
		b.WriteString(LineSeparator)
	}
	return b.String()
}

func isComment(line string) bool {
	for _, prefix := range commentPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func isShuffleDirective(line string) bool {
	compact := whitespace.ReplaceAllString(line, "")
	return strings.EqualFold(compact, "#shuffle") || strings.EqualFold(compact, "//shuffle")
}
