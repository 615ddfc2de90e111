package thread

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-go-golems/cricket/pkg/document"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	filePrefix   = "cricket-"
	fileSuffix   = ".org"
	timestampFmt = "20060102T150405.000000000Z"
)

// Thread pairs a parsed document with the file it lives in.
type Thread struct {
	Path string
	Doc  *document.Document
}

// Name returns the file name without directory and extension.
func (t *Thread) Name() string {
	return strings.TrimSuffix(filepath.Base(t.Path), fileSuffix)
}

// Title returns the document title from the preamble, or "" when the thread
// was created without a name.
func (t *Thread) Title() string {
	for _, line := range strings.Split(t.Doc.Root().Body, "\n") {
		if title, ok := strings.CutPrefix(line, "#+title:"); ok {
			return strings.TrimSpace(title)
		}
	}
	return ""
}

// Store creates and finds thread files in a storage directory.
type Store struct {
	Dir string
}

// Owns reports whether path names a thread file of this store.
func (s *Store) Owns(path string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileSuffix)
}

// NewStore validates the storage directory and returns a store over it.
func NewStore(dir string) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &ConfigurationError{Err: errors.Wrap(err, "storage directory")}
	}
	if !info.IsDir() {
		return nil, &ConfigurationError{Err: errors.Errorf("storage path %s is not a directory", dir)}
	}
	return &Store{Dir: dir}, nil
}

// NewThread creates a new thread file named by the fixed prefix and a
// full-precision UTC timestamp, one file per invocation. A non-empty name
// becomes the document title.
func (s *Store) NewThread(name string) (*Thread, error) {
	doc := document.New()
	if name != "" {
		doc.Root().Body = "#+title: " + name + "\n\n"
	}

	stamp := time.Now().UTC().Format(timestampFmt)
	t := &Thread{
		Path: filepath.Join(s.Dir, filePrefix+stamp+fileSuffix),
		Doc:  doc,
	}
	if err := s.Save(t); err != nil {
		return nil, err
	}

	log.Debug().Str("path", t.Path).Str("name", name).Msg("created thread")
	return t, nil
}

// Load reads and parses a thread file.
func (s *Store) Load(path string) (*Thread, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening thread")
	}
	defer func() {
		_ = f.Close()
	}()

	doc, err := document.Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing thread %s", path)
	}
	return &Thread{Path: path, Doc: doc}, nil
}

// Save renders the thread document back to its file.
func (s *Store) Save(t *Thread) error {
	if t.Path == "" {
		return errors.New("thread has no path")
	}
	if err := os.WriteFile(t.Path, []byte(t.Doc.String()), 0o644); err != nil {
		return errors.Wrap(err, "writing thread file")
	}
	return nil
}

// List returns the store's thread paths, newest first. The timestamped names
// sort chronologically, so name order is creation order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, &ConfigurationError{Err: errors.Wrap(err, "reading storage directory")}
	}

	paths := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !s.Owns(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(s.Dir, entry.Name()))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))

	return paths, nil
}

// Resolve turns a thread reference into a path. A reference that names an
// existing file (absolute or relative) wins; otherwise it is tried as a file
// name inside the store, with or without the fixed prefix and extension.
func (s *Store) Resolve(ref string) (string, error) {
	if _, err := os.Stat(ref); err == nil {
		return ref, nil
	}

	candidates := []string{
		filepath.Join(s.Dir, ref),
		filepath.Join(s.Dir, ref+fileSuffix),
		filepath.Join(s.Dir, filePrefix+ref+fileSuffix),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", errors.Errorf("no thread matching %q in %s", ref, s.Dir)
}
