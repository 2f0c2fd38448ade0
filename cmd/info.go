package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/achilleasa/vmath/asset"
	"github.com/achilleasa/vmath/asset/reader"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Display the contents of compiled mesh files.
func ShowInfo(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}
	if ctx.NArg() == 0 {
		return errors.New("missing compiled mesh argument")
	}

	for _, zipFile := range ctx.Args() {
		compiled, err := reader.ReadCompiled(zipFile)
		if err != nil {
			return err
		}
		logger.Noticef("%q\n%s%s%s", zipFile, compiledTable(compiled), compiled.Tree.Stats.Table(), compiled.Tree.MemoryTable())
	}
	return nil
}

func compiledTable(c *asset.Compiled) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Property", "Value"})
	table.Append([]string{"Mesh", c.Mesh.Name})
	table.Append([]string{"Format version", fmt.Sprint(c.Version)})
	table.Append([]string{"Vertices", fmt.Sprint(len(c.Mesh.Vertices))})
	table.Append([]string{"Triangles", fmt.Sprint(c.Mesh.TriangleCount())})
	table.Append([]string{"Bounds", c.Tree.Bounds.String()})
	table.Append([]string{"Strategy", string(c.Options.Strategy)})
	table.Append([]string{"Max leaf size", fmt.Sprint(c.Options.MaxLeafSize)})
	table.Append([]string{"SAH costs", fmt.Sprintf("traversal %v, intersection %v", c.Options.TraversalCost, c.Options.IntersectionCost)})
	table.Append([]string{"Layout", string(c.Tree.Layout)})
	table.Render()
	return buf.String()
}
