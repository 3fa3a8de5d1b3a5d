package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"github.com/voxelforge/anvil"
)

func main() {
	app := &cli.App{
		Name:  "anviltool",
		Usage: "inspect Minecraft region files",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "print per-chunk diagnostics",
			},
		},
		Before: func(ctx *cli.Context) error {
			anvil.Log.Debug = ctx.Bool("debug")
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "summarize a region file",
				ArgsUsage: "<region file>",
				Action:    runInfo,
			},
			{
				Name:      "block",
				Usage:     "look up the block at a world coordinate",
				ArgsUsage: "<region file>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "x", Required: true, Usage: "world x coordinate"},
					&cli.IntFlag{Name: "y", Required: true, Usage: "world y coordinate"},
					&cli.IntFlag{Name: "z", Required: true, Usage: "world z coordinate"},
				},
				Action: runBlock,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runInfo(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.Exit("expected exactly one region file", 1)
	}
	region, err := anvil.OpenRegion(ctx.Args().First())
	if err != nil {
		return err
	}
	chunks := region.PopulatedChunks()
	fmt.Printf("region (%d, %d): %d of 1024 chunks populated\n", region.X, region.Z, len(chunks))
	for _, coord := range chunks {
		chunk, err := region.GetChunk(coord[0], coord[1])
		if err != nil {
			fmt.Printf("  chunk (%d, %d): unreadable: %v\n", coord[0], coord[1], err)
			continue
		}
		fmt.Printf("  chunk (%d, %d): data version %d\n", chunk.X, chunk.Z, chunk.Version)
	}
	return nil
}

func runBlock(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.Exit("expected exactly one region file", 1)
	}
	region, err := anvil.OpenRegion(ctx.Args().First())
	if err != nil {
		return err
	}
	x, y, z := ctx.Int("x"), ctx.Int("y"), ctx.Int("z")
	block, err := region.GetBlock(x, y, z)
	if err != nil {
		return err
	}
	biome, err := region.GetBiome(x, y, z)
	if err != nil {
		return err
	}
	fmt.Printf("(%d, %d, %d): %s in %s\n", x, y, z, block, biome.ID())
	return nil
}
