package bvh

import (
	"github.com/achilleasa/vmath/half"
	"github.com/achilleasa/vmath/types"
)

// Bvh nodes are comprised of two Vec3 and two multipurpose int32 parameters
// whose value depends on the node type:
//
//   - For internal nodes LData is > 0 and points to the left child while
//     RData points to the right child. The left child always follows its
//     parent so LData is the parent index + 1.
//   - For leaves LData is <= 0 and contains the negated index of the first
//     primitive slot while RData contains the primitive count.
type Node struct {
	Min   types.Vec3
	LData int32

	Max   types.Vec3
	RData int32
}

// Set bounding box.
func (n *Node) SetBox(b types.Box) {
	n.Min = b.Min
	n.Max = b.Max
}

// Set left and right child node indices.
func (n *Node) SetChildNodes(left, right uint32) {
	n.LData = int32(left)
	n.RData = int32(right)
}

// Set primitive index and count.
func (n *Node) SetPrimitives(firstPrimIndex, count uint32) {
	n.LData = -int32(firstPrimIndex)
	n.RData = int32(count)
}

// Get the node bounding box.
func (n Node) Bounds() types.Box {
	return types.Box{Min: n.Min, Max: n.Max}
}

// Returns true if this is a leaf node.
func (n Node) IsLeaf() bool {
	return n.LData <= 0
}

// Get left and right child node indices.
func (n Node) Children() (left, right uint32) {
	return uint32(n.LData), uint32(n.RData)
}

// Get primitive index and count.
func (n Node) GetPrimitives() (firstPrimIndex, count uint32) {
	return uint32(-n.LData), uint32(n.RData)
}

// A node variant that stores its bounds as half floats. The minimum corner is
// rounded towards -Inf and the maximum corner towards +Inf so the decoded box
// always encloses the original one. LData/RData follow the Node encoding.
type CompactNode struct {
	Min   half.Vec3
	Max   half.Vec3
	LData int32
	RData int32
}

// Pack a node.
func NewCompactNode(n Node) CompactNode {
	lo, hi := half.EncodeBox(n.Bounds())
	return CompactNode{Min: lo, Max: hi, LData: n.LData, RData: n.RData}
}

// Get the (conservative) node bounding box.
func (n CompactNode) Bounds() types.Box {
	return types.Box{Min: n.Min.Decode(), Max: n.Max.Decode()}
}

// Returns true if this is a leaf node.
func (n CompactNode) IsLeaf() bool {
	return n.LData <= 0
}

// Get left and right child node indices.
func (n CompactNode) Children() (left, right uint32) {
	return uint32(n.LData), uint32(n.RData)
}

// Get primitive index and count.
func (n CompactNode) GetPrimitives() (firstPrimIndex, count uint32) {
	return uint32(-n.LData), uint32(n.RData)
}

// The methods shared by all node layouts.
type nodeLayout interface {
	Node | CompactNode

	Bounds() types.Box
	IsLeaf() bool
	Children() (left, right uint32)
	GetPrimitives() (firstPrimIndex, count uint32)
}
