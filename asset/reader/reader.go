package reader

import (
	"errors"
	"fmt"

	"github.com/achilleasa/vmath/asset"
)

var ErrUnsupportedFormat = errors.New("reader: unsupported file format")

// The MeshReader interface is implemented by all mesh readers.
type MeshReader interface {
	// Read a triangle mesh from a resource.
	Read(*asset.Resource) (*asset.Mesh, error)
}

// Read a triangle mesh from a wavefront obj or a gltf/glb file.
func ReadMesh(filename string) (*asset.Mesh, error) {
	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	reader, err := meshReaderFor(res)
	if err != nil {
		return nil, err
	}
	return reader.Read(res)
}

// Read a compiled mesh BVH from a zip file produced by the writer package.
func ReadCompiled(filename string) (*asset.Compiled, error) {
	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	if res.Ext() != ".zip" {
		return nil, fmt.Errorf("%w: %q is not a compiled mesh", ErrUnsupportedFormat, filename)
	}
	return newZipReader().Read(res)
}

// Select a reader based on the resource extension.
func meshReaderFor(res *asset.Resource) (MeshReader, error) {
	switch res.Ext() {
	case ".obj":
		return newWavefrontReader(), nil
	case ".gltf", ".glb":
		return newGltfReader(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, res.Path())
}
