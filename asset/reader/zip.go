package reader

import (
	"archive/zip"
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"time"

	"github.com/achilleasa/vmath/asset"
	"github.com/achilleasa/vmath/log"
)

const (
	// The name of the gob-encoded compiled mesh inside the archive.
	DataFile = "mesh.bin"
)

type zipReader struct {
	logger log.Logger
}

// Create a new compiled mesh reader.
func newZipReader() *zipReader {
	return &zipReader{
		logger: log.New("zip reader"),
	}
}

// Read a compiled mesh from a zip file.
func (p *zipReader) Read(res *asset.Resource) (*asset.Compiled, error) {
	p.logger.Noticef(`loading compiled mesh from "%s"`, res.Path())
	start := time.Now()

	// zip.NewReader needs an io.ReaderAt; resources may be remote streams
	// so the archive is buffered in memory.
	data, err := io.ReadAll(res)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("zip reader: %s: %w", res.Path(), err)
	}

	var compiled *asset.Compiled
	for _, f := range zr.File {
		if f.Name != DataFile {
			p.logger.Warningf("unknown file %s in compiled mesh archive; skipping", f.Name)
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		compiled = &asset.Compiled{}
		err = gob.NewDecoder(rc).Decode(compiled)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("zip reader: failed to load %s: %w", f.Name, err)
		}
	}

	if compiled == nil {
		return nil, fmt.Errorf("zip reader: %s does not contain %s", res.Path(), DataFile)
	}
	if compiled.Version != asset.CompiledVersion {
		return nil, fmt.Errorf("%w: expected %d; got %d", asset.ErrVersionMismatch, asset.CompiledVersion, compiled.Version)
	}

	p.logger.Noticef("loaded compiled mesh in %d ms", time.Since(start).Nanoseconds()/1e6)
	return compiled, nil
}
