// tdlgen is a compiler for TDL (type definition language) files. It parses
// each input file into a declaration tree, normalizes the tree, and runs the
// registered target language backends over it, writing the generated
// artifacts under the output root.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	glob "github.com/ryanuber/go-glob"
	"golang.org/x/sync/errgroup"

	"github.com/tdlgen/tdlgen/fixup"
	"github.com/tdlgen/tdlgen/gen"
	"github.com/tdlgen/tdlgen/tdl"
	"github.com/tdlgen/tdlgen/util"
)

var (
	flagOut     = flag.String("out", "out", "output root directory")
	flagTargets = flag.String("t", "go", "comma-separated list of target tags")
	flagInclude = flag.String("include", "", "glob of declaration names to include")
	flagExclude = flag.String("exclude", "", "glob of declaration names to exclude")
	flagQuiet   = flag.Bool("q", false, "toggle quiet output")
)

func main() {
	flag.Parse()

	// run
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run runs the compiler.
func run() error {
	if flag.NArg() < 1 {
		return errors.New("no input files")
	}
	if *flagQuiet {
		util.Logf = func(string, ...interface{}) {}
	}

	// resolve targets
	generators := gen.Generators()
	var targets []string
	for _, t := range strings.Split(*flagTargets, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if generators[t] == nil {
			return fmt.Errorf("unknown target %q", t)
		}
		targets = append(targets, t)
	}
	if len(targets) == 0 {
		return errors.New("no targets")
	}

	for _, path := range flag.Args() {
		util.Logf("PARSING: %s", path)
		prog, err := tdl.ParseFile(path)
		if err != nil {
			return err
		}
		if v := prog.Version; v != nil {
			if err := util.CheckVersion(v.Major, v.Minor); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
		prog.OutPath = *flagOut

		filterProgram(prog)

		if err := fixup.FixProgram(prog); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		// one generator instance per target; the tree is read-only during
		// generation so the passes can run concurrently
		var eg errgroup.Group
		for _, t := range targets {
			eg.Go(func(g *gen.Generator) func() error {
				return func() error {
					if err := g.Run(); err != nil {
						return err
					}
					return write(g)
				}
			}(gen.New(prog, generators[t]())))
		}
		if err := eg.Wait(); err != nil {
			return err
		}
	}

	util.Logf("done.")
	return nil
}

// filterProgram drops declarations excluded by the -include/-exclude globs.
func filterProgram(prog *tdl.Program) {
	prog.Typedefs = filterDecls("typedef", prog.Typedefs, func(td *tdl.Typedef) string { return td.Name })
	prog.Enums = filterDecls("enum", prog.Enums, func(en *tdl.Enum) string { return en.Name })
	prog.Consts = filterDecls("const", prog.Consts, func(c *tdl.Const) string { return c.Name })
	prog.Structs = filterDecls("struct", prog.Structs, func(st *tdl.Struct) string { return st.Name })
	prog.Exceptions = filterDecls("exception", prog.Exceptions, func(ex *tdl.Struct) string { return ex.Name })
	prog.Services = filterDecls("service", prog.Services, func(svc *tdl.Service) string { return svc.Name })
}

// filterDecls applies the name globs to one declaration category.
func filterDecls[T any](kind string, decls []T, name func(T) string) []T {
	var keep []T
	for _, d := range decls {
		n := name(d)
		if *flagInclude != "" && !glob.Glob(*flagInclude, n) {
			util.Logf("SKIPPING(%s): %s [not included]", util.Pad(kind, 9), n)
			continue
		}
		if *flagExclude != "" && glob.Glob(*flagExclude, n) {
			util.Logf("SKIPPING(%s): %s [excluded]", util.Pad(kind, 9), n)
			continue
		}
		keep = append(keep, d)
	}
	return keep
}

// write writes a generator's artifact buffers under its output directory.
func write(g *gen.Generator) error {
	files := g.Files()
	var keys []string
	for k := range files {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		n := filepath.Join(g.OutDir(), k)
		if err := os.MkdirAll(filepath.Dir(n), 0755); err != nil {
			return err
		}
		util.Logf("WRITING: %s", n)
		if err := os.WriteFile(n, files[k].Bytes(), 0644); err != nil {
			return err
		}
	}
	return nil
}
