package subst

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	// defaultFilePerms are the file permissions used when rendering to a
	// path that does not exist yet and no explicit mode was given.
	defaultFilePerms = 0o644
)

var (
	errNoParentDir = errors.New("parent directory is missing")
	errMissingDest = errors.New("missing destination")
)

// Renderer outputs interpolated text somewhere useful.
type Renderer interface {
	Render(contents []byte) (RenderResult, error)
}

// RenderResult reports the outcome of a render.
type RenderResult struct {
	// DidRender is true when the contents were written to disk. False on
	// error, in dry mode, and when the file on disk already matched.
	DidRender bool

	// WouldRender is true whenever the contents could have been written,
	// including dry mode and the already-matching case.
	WouldRender bool
}

// FileRenderer writes interpolated text to a file, atomically, preserving
// the permissions of whatever it replaces.
type FileRenderer struct {
	createDestDirs bool
	path           string
	perms          os.FileMode
	backup         BackupFunc
	dry            bool
}

var _ Renderer = (*FileRenderer)(nil)

// BackupFunc is called with the destination path right before it is
// overwritten, for keeping a copy of the previous contents.
type BackupFunc func(path string)

// FileRendererInput is the input structure for NewFileRenderer.
type FileRendererInput struct {
	// CreateDestDirs causes missing directories on the path to be created.
	CreateDestDirs bool
	// Path is the full file path to write to.
	Path string
	// Perms sets the mode of the file. When zero, an existing file keeps
	// its mode and a new file gets 0644.
	Perms os.FileMode
	// Backup, if set, runs before the file is replaced.
	Backup BackupFunc
	// Dry reports what would happen without touching the disk.
	Dry bool
}

// NewFileRenderer returns a new FileRenderer.
func NewFileRenderer(i FileRendererInput) FileRenderer {
	backup := i.Backup
	if backup == nil {
		backup = func(string) {}
	}
	return FileRenderer{
		createDestDirs: i.CreateDestDirs,
		path:           i.Path,
		perms:          i.Perms,
		backup:         backup,
		dry:            i.Dry,
	}
}

// Render writes the contents to the renderer's path. The write is skipped
// when the file already holds exactly these contents.
func (r FileRenderer) Render(contents []byte) (RenderResult, error) {
	existing, err := os.ReadFile(r.path)
	fileExists := !os.IsNotExist(err)
	if err != nil && fileExists {
		return RenderResult{}, errors.Wrap(err, "failed reading file")
	}

	if fileExists && bytes.Equal(existing, contents) {
		return RenderResult{DidRender: false, WouldRender: true}, nil
	}

	if r.dry {
		return RenderResult{DidRender: false, WouldRender: true}, nil
	}

	r.backup(r.path)

	if err := atomicWrite(r.path, contents, r.perms, r.createDestDirs); err != nil {
		return RenderResult{}, errors.Wrap(err, "failed writing file")
	}

	return RenderResult{DidRender: true, WouldRender: true}, nil
}

// Backup creates a [filename].bak copy, preserving the mode. Provided for
// convenience as a ready-made BackupFunc.
func Backup(path string) {
	if path == "" {
		return
	}
	bak, old := path+".bak", path+".old.bak"
	os.Rename(bak, old) // ignore error
	if err := os.Link(path, bak); err == nil {
		os.Remove(old) // ignore error
	}
}

// atomicWrite writes contents to a temp file next to path and renames it
// into place. If path already exists its permissions and ownership are
// preserved; otherwise the file is created with perms (or the default).
func atomicWrite(path string, contents []byte, perms os.FileMode, createDestDirs bool) error {
	if path == "" {
		return errMissingDest
	}

	parent := filepath.Dir(path)
	if _, err := os.Stat(parent); os.IsNotExist(err) {
		if !createDestDirs {
			return errNoParentDir
		}
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return err
		}
	}

	f, err := os.CreateTemp(parent, "")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(contents); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if perms == 0 {
		currentInfo, err := os.Stat(path)
		switch {
		case os.IsNotExist(err):
			perms = defaultFilePerms
		case err != nil:
			return err
		default:
			perms = currentInfo.Mode()
			preserveFilePermissions(f.Name(), currentInfo)
		}
	}

	if err := os.Chmod(f.Name(), perms); err != nil {
		return err
	}

	return os.Rename(f.Name(), path)
}
