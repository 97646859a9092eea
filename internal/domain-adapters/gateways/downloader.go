package gateways

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/jwuxan/homebrew-lofetch/internal/domain/interfaces"
)

// defaultMaxEntryBytes caps a single extracted file (1GB) to stop decompression bombs
const defaultMaxEntryBytes = 1 << 30

// Downloader fetches formula sources over HTTP or git
type Downloader struct {
	httpClient *http.Client
	gitBinary  string
	userAgent  string
	maxEntry   int64
	logger     interfaces.Logger
}

// NewDownloader creates a new downloader
func NewDownloader(logger interfaces.Logger) *Downloader {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &Downloader{
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // Long timeout for large downloads
		},
		gitBinary: "git",
		userAgent: "tap/1.0",
		maxEntry:  defaultMaxEntryBytes,
		logger:    logger,
	}
}

// Download writes the body of url to dest.
// The file is streamed to a temporary sibling and renamed, so dest never holds a partial download.
func (d *Downloader) Download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	written, err := io.Copy(tmp, resp.Body)
	if err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to move download into place: %w", err)
	}

	d.logger.Debug("downloaded", interfaces.F("file", filepath.Base(dest)), interfaces.F("bytes", written))
	return nil
}

// Extract unpacks a .tar.gz archive into destDir, replacing any previous extraction.
// When the archive holds a single top-level directory (GitHub tag archives do),
// that directory is returned as the source root.
func (d *Downloader) Extract(_ context.Context, archivePath, destDir string) (string, error) {
	if err := os.RemoveAll(destDir); err != nil {
		return "", fmt.Errorf("failed to clear extraction directory: %w", err)
	}

	if err := d.extractTarGz(archivePath, destDir); err != nil {
		return "", err
	}

	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", fmt.Errorf("failed to read extracted directory: %w", err)
	}

	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(destDir, entries[0].Name()), nil
	}
	return destDir, nil
}

// Clone checks out a shallow copy of branch into dest, replacing any previous checkout
func (d *Downloader) Clone(ctx context.Context, url, branch, dest string) error {
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("failed to clear checkout directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return fmt.Errorf("failed to create checkout parent: %w", err)
	}

	args := []string{"clone", "--depth", "1", "--single-branch"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, url, dest)

	//nolint:gosec // G204: git URL and branch come from the formula descriptor
	cmd := exec.CommandContext(ctx, d.gitBinary, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git clone %s (%s) failed: %w\n%s", url, branch, err, strings.TrimSpace(string(out)))
	}

	d.logger.Debug("cloned", interfaces.F("url", url), interfaces.F("branch", branch))
	return nil
}

// extractTarGz extracts a .tar.gz file to destination directory
func (d *Downloader) extractTarGz(tarPath, destDir string) error {
	//nolint:gosec // G304: File path tarPath is the fetched archive
	file, err := os.Open(tarPath)
	if err != nil {
		return fmt.Errorf("failed to open tar.gz: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer file.Close()

	gzr, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	//nolint:errcheck // Defer close on gzip reader
	defer gzr.Close()

	tr := tar.NewReader(gzr)

	if err := os.MkdirAll(destDir, 0750); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	// Symlinks are created after all regular files exist
	type symlinkInfo struct {
		target   string
		linkname string
	}
	var symlinks []symlinkInfo

	root := filepath.Clean(destDir) + string(os.PathSeparator)

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("tar read error: %w", err)
		}

		//nolint:gosec // G305: Path traversal validated by prefix check below
		target := filepath.Join(destDir, header.Name)
		if !strings.HasPrefix(filepath.Clean(target)+string(os.PathSeparator), root) {
			return fmt.Errorf("invalid file path in archive: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0750); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
				return fmt.Errorf("failed to create parent directory: %w", err)
			}

			if header.Size > d.maxEntry {
				return fmt.Errorf("archive entry %s exceeds size limit (%d > %d bytes)", header.Name, header.Size, d.maxEntry)
			}

			//nolint:gosec // G115: tar header mode fits in FileMode permission bits
			outFile, err := os.OpenFile(target, os.O_CREATE|os.O_RDWR|os.O_TRUNC, os.FileMode(header.Mode).Perm())
			if err != nil {
				return fmt.Errorf("failed to create file: %w", err)
			}

			//nolint:gosec // G110: tar.Reader yields header.Size bytes, bounded above
			if _, err := io.Copy(outFile, tr); err != nil {
				_ = outFile.Close()
				return fmt.Errorf("failed to write file: %w", err)
			}
			if err := outFile.Close(); err != nil {
				return fmt.Errorf("failed to close file: %w", err)
			}

		case tar.TypeSymlink:
			if !linkInside(root, target, header.Linkname) {
				return fmt.Errorf("symlink %s points outside the archive: %s", header.Name, header.Linkname)
			}
			symlinks = append(symlinks, symlinkInfo{
				target:   target,
				linkname: header.Linkname,
			})

		case tar.TypeXGlobalHeader:
			// GitHub archives carry the commit id in a pax global header

		default:
			d.logger.Warn("ignoring unsupported tar entry",
				interfaces.F("type", string(header.Typeflag)), interfaces.F("name", header.Name))
		}
	}

	for _, link := range symlinks {
		if err := os.MkdirAll(filepath.Dir(link.target), 0750); err != nil {
			return fmt.Errorf("failed to create directory for symlink: %w", err)
		}
		if err := os.Symlink(link.linkname, link.target); err != nil {
			d.logger.Warn("failed to create symlink",
				interfaces.F("path", link.target), interfaces.F("target", link.linkname), interfaces.F("error", err))
		}
	}

	d.logger.Debug("extracted", interfaces.F("dir", destDir))
	return nil
}

// linkInside reports whether a symlink at target pointing to linkname resolves under root
func linkInside(root, target, linkname string) bool {
	if linkname == "" || filepath.IsAbs(linkname) {
		return false
	}
	resolved := filepath.Join(filepath.Dir(target), linkname)
	return strings.HasPrefix(filepath.Clean(resolved)+string(os.PathSeparator), root)
}
