package workbook

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/ordermatch/pkg/constants"
	"github.com/agentstation/ordermatch/pkg/errors"
)

const (
	mediaPrefix    = "xl/media/"
	drawingsPrefix = "xl/drawings/"
)

// StripStats reports what Strip removed.
type StripStats struct {
	Removed      []string
	BytesBefore  int64
	BytesAfter   int64
	EntriesTotal int
}

// Saved returns the number of bytes the stripped archive saves.
func (s StripStats) Saved() int64 {
	return s.BytesBefore - s.BytesAfter
}

// Supported reports whether name has an extension Strip can process.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// Strip rewrites a workbook archive without its embedded media. When drawings
// is set the drawing parts that anchor the images are removed too. Every other
// entry is copied unchanged.
func Strip(data []byte, drawings bool) ([]byte, StripStats, error) {
	stats := StripStats{BytesBefore: int64(len(data))}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, stats, errors.WrapParse("xlsx", "", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range zr.File {
		stats.EntriesTotal++
		if strip(entry.Name, drawings) {
			stats.Removed = append(stats.Removed, entry.Name)
			continue
		}
		if err := copyEntry(zw, entry); err != nil {
			return nil, stats, errors.WrapIO("copy", entry.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, stats, errors.WrapIO("write", "archive", err)
	}

	stats.BytesAfter = int64(buf.Len())
	return buf.Bytes(), stats, nil
}

// StripFile strips src into dst. Only .xlsx and .xlsm sources are accepted.
func StripFile(src, dst string, drawings bool) (StripStats, error) {
	if !Supported(src) {
		return StripStats{}, &errors.ValidationError{
			Field:   "path",
			Value:   src,
			Message: "only .xlsx and .xlsm workbooks are supported",
		}
	}
	data, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return StripStats{}, errors.NewNotFoundError("workbook", src)
		}
		return StripStats{}, errors.WrapIO("read", src, err)
	}
	out, stats, err := Strip(data, drawings)
	if err != nil {
		return stats, err
	}
	if err := os.WriteFile(dst, out, constants.FilePermissions); err != nil {
		return stats, errors.WrapIO("write", dst, err)
	}
	return stats, nil
}

func strip(name string, drawings bool) bool {
	if strings.HasPrefix(name, mediaPrefix) {
		return true
	}
	return drawings && strings.HasPrefix(name, drawingsPrefix)
}

func copyEntry(zw *zip.Writer, entry *zip.File) error {
	header := entry.FileHeader
	header.Method = zip.Deflate
	w, err := zw.CreateHeader(&header)
	if err != nil {
		return err
	}
	r, err := entry.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	_, err = io.Copy(w, r)
	return err
}
