package gateways

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"testing"
)

// tarEntry describes one file in a generated test archive
type tarEntry struct {
	Name     string
	Body     string
	Mode     int64
	Dir      bool
	Linkname string
}

// buildTarGz returns the bytes of a gzipped tar holding entries
func buildTarGz(t *testing.T, entries []tarEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)

	for _, e := range entries {
		hdr := &tar.Header{Name: e.Name, Mode: e.Mode}
		switch {
		case e.Dir:
			hdr.Typeflag = tar.TypeDir
			if hdr.Mode == 0 {
				hdr.Mode = 0755
			}
		case e.Linkname != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.Linkname
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.Body))
			if hdr.Mode == 0 {
				hdr.Mode = 0644
			}
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("WriteHeader(%s) error = %v", e.Name, err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.Body)); err != nil {
				t.Fatalf("Write(%s) error = %v", e.Name, err)
			}
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// writeTarGz writes a generated archive to path
func writeTarGz(t *testing.T, path string, entries []tarEntry) {
	t.Helper()
	if err := os.WriteFile(path, buildTarGz(t, entries), 0600); err != nil {
		t.Fatalf("failed to write archive: %v", err)
	}
}
