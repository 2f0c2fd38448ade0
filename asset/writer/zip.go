package writer

import (
	"archive/zip"
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"github.com/achilleasa/vmath/asset"
	"github.com/achilleasa/vmath/asset/reader"
	"github.com/achilleasa/vmath/log"
)

type zipWriter struct {
	logger   log.Logger
	filename string
}

// Create a new zip writer for compiled meshes.
func newZipWriter(filename string) *zipWriter {
	return &zipWriter{
		logger:   log.New("zip writer"),
		filename: filename,
	}
}

// Gob-encode the compiled mesh into a single compressed archive entry.
func (w *zipWriter) Write(compiled *asset.Compiled) (err error) {
	w.logger.Noticef(`writing compiled mesh to "%s"`, w.filename)
	start := time.Now()

	f, err := os.Create(w.filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			os.Remove(w.filename)
		}
	}()

	zw := zip.NewWriter(f)
	entry, err := zw.Create(reader.DataFile)
	if err != nil {
		return err
	}
	if err = gob.NewEncoder(entry).Encode(compiled); err != nil {
		return fmt.Errorf("zip writer: could not encode %s: %w", reader.DataFile, err)
	}
	if err = zw.Close(); err != nil {
		return err
	}

	w.logger.Noticef("wrote compiled mesh in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}
