// threemftool is a CLI utility for inspecting and repairing 3MF containers.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Faultbox/threemf/internal/config"
	"github.com/Faultbox/threemf/internal/logger"
	"github.com/Faultbox/threemf/pkg/threemf"
	"github.com/Faultbox/threemf/pkg/zip64"
)

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}

	opts := logger.DefaultOptions(cfg.Logging.Level)
	opts.File = cfg.Logging.LogFile
	if err := logger.Init(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "info":
		cmdInfo(args)
	case "list", "ls":
		cmdList(args)
	case "extract", "x":
		cmdExtract(args, cfg)
	case "mesh":
		cmdMesh(args, cfg)
	case "patch":
		cmdPatch(args, cfg)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`threemftool - 3MF container utility

Usage:
  threemftool [flags] <command> [options]

Commands:
  info <file.3mf>                 Show container information
  list <file.3mf> [pattern]       List entries (optional glob pattern)
  extract <file.3mf> <entry>      Extract an entry to the output directory
  mesh <file.3mf>                 Parse and summarize the mesh
  patch <file.3mf> [output.3mf]   Write a ZIP64-repaired copy

Flags:
  -config <path>   Config file (default: threemftool.yaml, then user config dir)
  -debug           Enable debug logging

Examples:
  threemftool info benchy.3mf
  threemftool list benchy.3mf "*.model"
  threemftool mesh benchy.3mf
  threemftool patch broken.3mf fixed.3mf`)
}

func openContainer(path string) *threemf.Archive {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Sugar.Debugw("read container", "path", path, "bytes", len(data))

	archive, err := threemf.OpenArchive(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return archive
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: threemftool info <file.3mf>")
		os.Exit(1)
	}

	archive := openContainer(args[0])
	entries := archive.Entries()

	extCount := make(map[string]int)
	var totalSize uint64
	for _, e := range entries {
		if e.Dir {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name))
		if ext == "" {
			ext = "(no ext)"
		}
		extCount[ext]++
		totalSize += e.UncompressedSize
	}

	fmt.Printf("Container: %s\n", args[0])
	fmt.Printf("Entries:   %d\n", len(entries))
	fmt.Printf("Models:    %d\n", len(archive.ModelEntries()))
	fmt.Printf("Size:      %.2f KB uncompressed\n", float64(totalSize)/1024)
	fmt.Println()
	fmt.Println("Entries by type:")

	type extStat struct {
		ext   string
		count int
	}
	var stats []extStat
	for ext, count := range extCount {
		stats = append(stats, extStat{ext, count})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].count > stats[j].count
	})
	for _, s := range stats {
		fmt.Printf("  %-10s %d\n", s.ext, s.count)
	}
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N entries (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: threemftool list <file.3mf> [pattern]")
		os.Exit(1)
	}

	archive := openContainer(fs.Arg(0))

	pattern := ""
	if fs.NArg() > 1 {
		pattern = strings.ToLower(fs.Arg(1))
	}

	count := 0
	for _, e := range archive.Entries() {
		if pattern != "" {
			matched, _ := filepath.Match(pattern, strings.ToLower(filepath.Base(e.Name)))
			if !matched && !strings.Contains(strings.ToLower(e.Name), pattern) {
				continue
			}
		}
		fmt.Printf("%10d  %s\n", e.UncompressedSize, e.Name)
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}

	if pattern != "" {
		fmt.Fprintf(os.Stderr, "\n(%d entries matched)\n", count)
	}
}

func cmdExtract(args []string, cfg *config.Config) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	outDir := fs.String("out", cfg.Output.Dir, "Output directory")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: threemftool extract <file.3mf> <entry>")
		os.Exit(1)
	}

	archive := openContainer(fs.Arg(0))
	name := fs.Arg(1)

	for _, e := range archive.Entries() {
		if e.Name != name {
			continue
		}
		data, err := archive.Extract(e)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading entry: %v\n", err)
			os.Exit(1)
		}

		outputPath := filepath.Join(*outDir, filepath.Base(name))
		if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Extracted: %s (%d bytes)\n", outputPath, len(data))
		return
	}

	fmt.Fprintf(os.Stderr, "Entry not found: %s\n", name)
	os.Exit(1)
}

func cmdMesh(args []string, cfg *config.Config) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: threemftool mesh <file.3mf>")
		os.Exit(1)
	}

	mesh, err := threemf.LoadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Sugar.Debugw("parsed mesh",
		"vertices", len(mesh.Vertices),
		"triangles", len(mesh.Triangles),
		"colored", mesh.HasColors())

	fmt.Printf("Mesh: %s\n", args[0])
	fmt.Printf("Vertices:  %d\n", len(mesh.Vertices))
	fmt.Printf("Triangles: %d\n", len(mesh.Triangles))

	if cfg.Mesh.ShowColors {
		if mesh.HasColors() {
			fmt.Printf("Colors:    %d triangle color triples\n", len(mesh.Colors))
		} else {
			fmt.Println("Colors:    none")
		}
	}

	if cfg.Mesh.ShowBounds {
		box := mesh.Bounds()
		if !box.Empty() {
			size := box.Size()
			center := box.Center()
			fmt.Printf("Bounds:    %.2f x %.2f x %.2f\n", size.X, size.Y, size.Z)
			fmt.Printf("Center:    (%.2f, %.2f, %.2f)\n", center.X, center.Y, center.Z)
		}
	}
}

func cmdPatch(args []string, cfg *config.Config) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: threemftool patch <file.3mf> [output.3mf]")
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	patched := zip64.Patch(data)

	outputPath := filepath.Join(cfg.Output.Dir, strings.TrimSuffix(filepath.Base(args[0]), ".3mf")+"-patched.3mf")
	if len(args) > 1 {
		outputPath = args[1]
	}

	if err := os.WriteFile(outputPath, patched, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	changed := 0
	for i := range data {
		if data[i] != patched[i] {
			changed++
		}
	}
	logger.Sugar.Debugw("patched container", "bytes_changed", changed)
	fmt.Printf("Patched: %s (%d bytes rewritten)\n", outputPath, changed)
}
