// Package foamcase sets up an OpenFOAM-style case directory from a
// template: it validates the template layout, copies it into place and
// installs the prepared geometry under constant/triSurface.
package foamcase

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/chazu/flowprep/pkg/logger"
	"github.com/chazu/flowprep/pkg/solid"
)

// ErrBadTemplate is returned when the template directory is missing the
// expected case structure.
var ErrBadTemplate = errors.New("template must contain constant/triSurface or system")

// geometryFile is the filename the mesher template expects under
// constant/triSurface.
const geometryFile = "aircraft.stl"

// Case is a prepared case directory.
type Case struct {
	Dir string
}

// Setup creates a case directory at dir from the given template. An
// existing directory at dir is removed first. The template must contain a
// constant/triSurface or system subdirectory.
func Setup(dir, templatePath string) (*Case, error) {
	info, err := os.Stat(templatePath)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("foamcase: template path %s is missing", templatePath)
	}

	triSurface := filepath.Join(templatePath, "constant", "triSurface")
	system := filepath.Join(templatePath, "system")
	if !isDir(triSurface) && !isDir(system) {
		return nil, fmt.Errorf("foamcase: %w: %s", ErrBadTemplate, templatePath)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("foamcase: resolve %s: %w", dir, err)
	}
	if isDir(abs) {
		logger.Warn("removing existing case directory", zap.String("dir", abs))
		if err := os.RemoveAll(abs); err != nil {
			return nil, fmt.Errorf("foamcase: remove %s: %w", abs, err)
		}
	}

	if err := copyTree(templatePath, abs); err != nil {
		return nil, fmt.Errorf("foamcase: copy template: %w", err)
	}
	logger.Info("copied case template", zap.String("from", templatePath), zap.String("to", abs))

	return &Case{Dir: abs}, nil
}

// GeometryPath returns where the case expects its surface geometry.
func (c *Case) GeometryPath() string {
	return filepath.Join(c.Dir, "constant", "triSurface", geometryFile)
}

// SystemPath returns the path of a file under the case's system directory.
func (c *Case) SystemPath(name string) string {
	return filepath.Join(c.Dir, "system", name)
}

// PolyMeshPath returns the path of a file under constant/polyMesh.
func (c *Case) PolyMeshPath(name string) string {
	return filepath.Join(c.Dir, "constant", "polyMesh", name)
}

// InstallGeometry saves the prepared solid into the case's triSurface
// directory, creating it if the template did not carry one.
func (c *Case) InstallGeometry(s *solid.Solid) error {
	path := c.GeometryPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("foamcase: mkdir triSurface: %w", err)
	}
	return s.Save(path)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// copyTree recursively copies src into dst, preserving the layout.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
