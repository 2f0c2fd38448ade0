package reader

import (
	"bufio"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/vmath/asset"
	"github.com/achilleasa/vmath/log"
	"github.com/achilleasa/vmath/types"
)

type wavefrontReader struct {
	logger log.Logger

	// All parsed vertices. Faces index this list directly.
	vertexList []types.Vec3

	faces []uint32

	// Object/group names and the number of faces collected for them.
	objects    []string
	objFaces   []int
	errStack   []string
	faceTokens []uint32

	// Locations of the files currently being parsed.
	open map[string]bool
}

// Create a new wavefront obj mesh reader.
func newWavefrontReader() *wavefrontReader {
	return &wavefrontReader{
		logger:   log.New("wavefront reader"),
		errStack: make([]string, 0),
		open:     make(map[string]bool),
	}
}

// Read the geometry of an obj file (and any files it includes with "call")
// into a single triangle mesh. Normals, texture coordinates and materials
// are ignored.
func (r *wavefrontReader) Read(res *asset.Resource) (*asset.Mesh, error) {
	r.logger.Noticef(`parsing mesh from "%s"`, res.Path())
	start := time.Now()

	if err := r.parse(res); err != nil {
		return nil, err
	}
	r.verifyLastObject()

	mesh := &asset.Mesh{
		Name:     strings.TrimSuffix(path.Base(res.Path()), path.Ext(res.Path())),
		Vertices: r.vertexList,
		Faces:    r.faces,
	}
	if len(r.objects) == 1 {
		mesh.Name = r.objects[0]
	}

	r.logger.Noticef("parsed %d vertices and %d triangles in %d ms", len(mesh.Vertices), mesh.TriangleCount(), time.Since(start).Nanoseconds()/1e6)
	return mesh, nil
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)
	return errors.New(strings.Trim(
		fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n")),
		"\n",
	))
}

// Push a frame to the error stack.
func (r *wavefrontReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontReader) popFrame() {
	r.errStack = r.errStack[1:]
}

func (r *wavefrontReader) parse(res *asset.Resource) error {
	var lineNum int

	// Included files use 1-based indices relative to their own vertex
	// list while negative indices always refer to the most recent
	// vertices.
	relVertexOffset := len(r.vertexList)

	loc := res.Location()
	r.open[loc] = true
	defer delete(r.open, loc)

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "call"; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [call]", res.Path(), lineNum))
			incRes, err := asset.NewResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			if r.open[incRes.Location()] {
				incRes.Close()
				return r.emitError(res.Path(), lineNum, "recursive call of %s", incRes.Path())
			}
			err = r.parse(incRes)
			incRes.Close()
			if err != nil {
				return err
			}
			r.popFrame()
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument for object name; got %d`, lineTokens[0], len(lineTokens)-1)
			}
			r.verifyLastObject()
			r.objects = append(r.objects, lineTokens[1])
			r.objFaces = append(r.objFaces, 0)
		case "f":
			if err := r.parseFace(lineTokens, relVertexOffset); err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		case "vn", "vt", "vp", "s", "l", "usemtl", "mtllib":
		default:
			r.logger.Debugf("%s:%d: ignoring unsupported statement %q", res.Path(), lineNum, lineTokens[0])
		}
	}

	if err := scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err.Error())
	}
	return nil
}

// Drop the last object name if no faces were parsed for it.
func (r *wavefrontReader) verifyLastObject() {
	last := len(r.objects) - 1
	if last >= 0 && r.objFaces[last] == 0 {
		r.logger.Warningf(`object "%s" contains no polygons`, r.objects[last])
		r.objects = r.objects[:last]
		r.objFaces = r.objFaces[:last]
	}
}

// Parse a face definition and triangulate it as a fan around its first
// vertex. Only the vertex index of each "v/vt/vn" argument is used.
func (r *wavefrontReader) parseFace(lineTokens []string, relVertexOffset int) error {
	if len(lineTokens) < 4 {
		return fmt.Errorf(`unsupported syntax for "f"; expected at least 3 arguments; got %d`, len(lineTokens)-1)
	}

	r.faceTokens = r.faceTokens[:0]
	expIndices := 0
	for arg, token := range lineTokens[1:] {
		vTokens := strings.Split(token, "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		if vTokens[0] == "" {
			return fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vOffset, err := selectFaceCoordIndex(vTokens[0], len(r.vertexList), relVertexOffset)
		if err != nil {
			return fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		r.faceTokens = append(r.faceTokens, uint32(vOffset))
	}

	for i := 2; i < len(r.faceTokens); i++ {
		r.faces = append(r.faces, r.faceTokens[0], r.faceTokens[i-1], r.faceTokens[i])
	}
	if len(r.objFaces) != 0 {
		r.objFaces[len(r.objFaces)-1] += len(r.faceTokens) - 2
	}
	return nil
}

// Given a face vertex index calculate the offset into the vertex list.
// Negative indices reference elements from the end of the list.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int
	switch {
	case index < 0:
		vOffset = coordListLen + int(index)
	case index == 0:
		return -1, fmt.Errorf("index 0 is not valid")
	default:
		vOffset = relOffset + int(index-1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
