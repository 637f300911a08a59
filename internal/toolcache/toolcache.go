package toolcache

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/airslate-oss/setup-specmatic/internal/resolver"
	"github.com/sirupsen/logrus"
)

const completeMarkerSuffix = ".complete"

// Cache is a tool cache laid out like the one on hosted runners:
// <root>/<tool>/<version>/<arch>, completed by an <arch>.complete marker.
type Cache struct {
	root string
	log  logrus.FieldLogger
}

func New(root string, log logrus.FieldLogger) *Cache {
	return &Cache{
		root: root,
		log:  log,
	}
}

func (c *Cache) Root() string {
	return c.root
}

func cleanVersion(version string) string {
	v, err := semver.NewVersion(version)
	if err != nil {
		return version
	}
	return v.String()
}

func isExplicitVersion(spec string) bool {
	_, err := semver.StrictNewVersion(spec)
	return err == nil
}

func (c *Cache) toolPath(tool, version, arch string) string {
	return filepath.Join(c.root, tool, cleanVersion(version), arch)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Find returns the install directory of tool for arch. An explicit version is
// looked up directly; any other spec picks the highest cached version that
// satisfies it.
func (c *Cache) Find(tool, spec, arch string) (string, bool) {
	if tool == "" || spec == "" || arch == "" {
		return "", false
	}
	version := spec
	if !isExplicitVersion(spec) {
		constraint, err := resolver.NewConstraint(spec)
		if err != nil {
			return "", false
		}
		match, ok := evaluateVersions(c.FindAllVersions(tool, arch), constraint)
		if !ok {
			return "", false
		}
		version = match
	}
	path := c.toolPath(tool, version, arch)
	c.log.Debugf("checking tool cache path %s", path)
	if !exists(path) || !exists(path+completeMarkerSuffix) {
		c.log.Debugf("not found in tool cache: %s %s %s", tool, version, arch)
		return "", false
	}
	return path, true
}

func evaluateVersions(versions []string, constraint *semver.Constraints) (string, bool) {
	parsed := make(semver.Collection, 0, len(versions))
	for _, v := range versions {
		sv, err := semver.NewVersion(v)
		if err != nil {
			continue
		}
		parsed = append(parsed, sv)
	}
	sort.Sort(sort.Reverse(parsed))
	for _, v := range parsed {
		if constraint.Check(v) {
			return v.Original(), true
		}
	}
	return "", false
}

// FindAllVersions lists every completely cached version of tool for arch.
func (c *Cache) FindAllVersions(tool, arch string) []string {
	entries, err := os.ReadDir(filepath.Join(c.root, tool))
	if err != nil {
		return nil
	}
	ret := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(c.root, tool, e.Name(), arch)
		if exists(path) && exists(path+completeMarkerSuffix) {
			ret = append(ret, e.Name())
		}
	}
	return ret
}

// createToolPath resets the install directory of a version so that a
// re-install overwrites the previous entry.
func (c *Cache) createToolPath(tool, version, arch string) (string, error) {
	path := c.toolPath(tool, version, arch)
	c.log.Debugf("destination %s", path)
	if err := os.RemoveAll(path); err != nil {
		return "", err
	}
	if err := os.Remove(path + completeMarkerSuffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return path, nil
}

func completeToolPath(path string) error {
	return os.WriteFile(path+completeMarkerSuffix, nil, 0o644)
}

// CacheFile copies the file at source into the cache as fileName and returns
// the install directory.
func (c *Cache) CacheFile(source, fileName, tool, version, arch string) (string, error) {
	c.log.Debugf("caching tool %s %s %s", tool, version, arch)
	info, err := os.Stat(source)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory, expected a file", source)
	}
	path, err := c.createToolPath(tool, version, arch)
	if err != nil {
		return "", err
	}
	if err := copyFile(source, filepath.Join(path, fileName), info.Mode().Perm()); err != nil {
		return "", err
	}
	if err := completeToolPath(path); err != nil {
		return "", err
	}
	return path, nil
}

// CacheDir copies the contents of the source directory into the cache and
// returns the install directory.
func (c *Cache) CacheDir(source, tool, version, arch string) (string, error) {
	c.log.Debugf("caching tool %s %s %s", tool, version, arch)
	info, err := os.Stat(source)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", source)
	}
	path, err := c.createToolPath(tool, version, arch)
	if err != nil {
		return "", err
	}
	err = filepath.WalkDir(source, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(source, p)
		if err != nil {
			return err
		}
		target := filepath.Join(path, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(p, target, fi.Mode().Perm())
	})
	if err != nil {
		return "", err
	}
	if err := completeToolPath(path); err != nil {
		return "", err
	}
	return path, nil
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
