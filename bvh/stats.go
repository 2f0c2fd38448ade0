package bvh

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Statistics collected while building a tree.
type BuildStats struct {
	// Number of input primitives.
	Primitives int

	// Primitives left out of the tree because of non-finite bounds (filter
	// policy) or because they have zero area (meshes).
	Filtered   int
	Degenerate int

	Nodes    int
	Leaves   int
	MaxDepth int

	// Largest primitive count of any leaf.
	MaxLeafPrims int

	// Splits applied even though SAH preferred a leaf, and object median
	// splits used when no SAH candidate existed.
	ForcedSplits int
	MedianSplits int

	// SAH cost of the whole tree relative to its root box.
	Cost float32

	BuildTime time.Duration
}

// Build a tabular representation of the build statistics.
func (s BuildStats) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Build stat", "Value"})
	table.Append([]string{"Primitives", fmt.Sprint(s.Primitives)})
	table.Append([]string{"Filtered", fmt.Sprint(s.Filtered)})
	table.Append([]string{"Degenerate", fmt.Sprint(s.Degenerate)})
	table.Append([]string{"Nodes", fmt.Sprint(s.Nodes)})
	table.Append([]string{"Leaves", fmt.Sprint(s.Leaves)})
	table.Append([]string{"Max depth", fmt.Sprint(s.MaxDepth)})
	table.Append([]string{"Max leaf prims", fmt.Sprint(s.MaxLeafPrims)})
	table.Append([]string{"Forced splits", fmt.Sprint(s.ForcedSplits)})
	table.Append([]string{"Median splits", fmt.Sprint(s.MedianSplits)})
	table.Append([]string{"SAH cost", fmt.Sprintf("%.2f", s.Cost)})
	table.SetFooter([]string{"Build time", s.BuildTime.String()})
	table.Render()
	return buf.String()
}

// Per query traversal counters. Counters from many queries can be combined
// with Add.
type TraversalStats struct {
	Queries        int
	Nodes          int
	Leaves         int
	BoxTests       int
	PrimitiveTests int
	Hits           int
}

// Accumulate the counters of other into s.
func (s *TraversalStats) Add(other TraversalStats) {
	s.Queries += other.Queries
	s.Nodes += other.Nodes
	s.Leaves += other.Leaves
	s.BoxTests += other.BoxTests
	s.PrimitiveTests += other.PrimitiveTests
	s.Hits += other.Hits
}

// Build a tabular representation of the traversal counters, including per
// query averages.
func (s TraversalStats) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Counter", "Total", "Per query"})
	avg := func(v int) string {
		if s.Queries == 0 {
			return "-"
		}
		return fmt.Sprintf("%.2f", float64(v)/float64(s.Queries))
	}
	table.Append([]string{"Nodes", fmt.Sprint(s.Nodes), avg(s.Nodes)})
	table.Append([]string{"Leaves", fmt.Sprint(s.Leaves), avg(s.Leaves)})
	table.Append([]string{"Box tests", fmt.Sprint(s.BoxTests), avg(s.BoxTests)})
	table.Append([]string{"Primitive tests", fmt.Sprint(s.PrimitiveTests), avg(s.PrimitiveTests)})
	table.Append([]string{"Hits", fmt.Sprint(s.Hits), avg(s.Hits)})
	table.SetFooter([]string{"Queries", fmt.Sprint(s.Queries), " "})
	table.Render()
	return buf.String()
}

// Build a tabular representation of the memory used by the tree.
func (t *Tree) MemoryTable() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Data", "Count", "Size"})
	table.Append([]string{"Nodes", fmt.Sprint(len(t.Nodes)), fmtSize(t.Nodes)})
	table.Append([]string{"Compact nodes", fmt.Sprint(len(t.CompactNodes)), fmtSize(t.CompactNodes)})
	table.Append([]string{"Indices", fmt.Sprint(len(t.Indices)), fmtSize(t.Indices)})
	table.SetFooter([]string{"Total", " ", strings.TrimLeft(fmtSize(t.Nodes, t.CompactNodes, t.Indices), " ")})
	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
