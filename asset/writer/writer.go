package writer

import "github.com/achilleasa/vmath/asset"

// The Writer interface is implemented by all compiled mesh writers.
type Writer interface {
	// Write compiled mesh.
	Write(*asset.Compiled) error
}

// Write a compiled mesh to a zip archive.
func WriteCompiled(compiled *asset.Compiled, filename string) error {
	return newZipWriter(filename).Write(compiled)
}
