package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

const SourceExt = ".Mod"

// CompiledModule is the result of compiling one source file.
type CompiledModule struct {
	Name     string
	Code     string   // empty when only checked.
	Warnings []string // checker diagnostics when the check is skipped.
}

// CompileSource runs every stage on one module. When generate is false it stops after the
// checker.
func CompileSource(rd io.Reader, conf *Config, generate bool) (*CompiledModule, error) {
	logf(conf, "compiler: start tokenizer")
	tokenizer := &Tokenizer{}
	tokenizer.Reset()
	tokens, err := tokenizer.Tokenize(rd)
	if err != nil {
		return nil, err
	}
	logf(conf, "compiler: start parser")
	parser := &Parser{}
	module, err := parser.Parse(tokens)
	if err != nil {
		return nil, err
	}
	ret := &CompiledModule{Name: module.Name}
	logf(conf, "compiler: start type checker for module %s", module.Name)
	var checkErr error
	if conf.SkipCheck {
		// The generator still needs the annotations, so the checker runs without a limit.
		checkErr = NewTypeChecker(math.MaxInt32).Check(module)
		ret.Warnings = Diagnostics(checkErr)
	} else if err := NewTypeChecker(conf.MaxErrors).Check(module); err != nil {
		return nil, err
	}
	if !generate {
		return ret, nil
	}
	logf(conf, "compiler: start generate codes for module %s", module.Name)
	ret.Code, err = NewCodeGenerator(conf.Prefix).Generate(module)
	if err != nil {
		var internalErr *InternalError
		if checkErr != nil && errors.As(err, &internalErr) {
			// A skipped diagnostic left the ast incomplete, report the diagnostics instead.
			return nil, checkErr
		}
		return nil, err
	}
	return ret, nil
}

// Compile compiles path, a source file or a directory of source files, and writes one C file
// per module into conf.Out. Files are compiled concurrently, the first failure stops the rest.
func Compile(ctx context.Context, path string, conf *Config) error {
	if err := os.MkdirAll(conf.Out, 0o755); err != nil {
		return fmt.Errorf("compile %s: %w", path, err)
	}
	return forEachSource(ctx, path, conf, func(file string) error {
		compiled, err := compileFile(file, conf, true)
		if err != nil {
			return err
		}
		out := filepath.Join(conf.Out, compiled.Name+".c")
		logf(conf, "compiler: write %s", out)
		return os.WriteFile(out, []byte(compiled.Code), 0o644)
	})
}

// Check runs the front end on path without generating code.
func Check(ctx context.Context, path string, conf *Config) error {
	return forEachSource(ctx, path, conf, func(file string) error {
		_, err := compileFile(file, conf, false)
		return err
	})
}

func compileFile(path string, conf *Config, generate bool) (*CompiledModule, error) {
	logf(conf, "compiler: start compiling %s", path)
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	compiled, err := CompileSource(file, conf, generate)
	if err != nil {
		return nil, err
	}
	for _, warning := range compiled.Warnings {
		log.Printf("%s: warning: %s", path, warning)
	}
	return compiled, nil
}

func forEachSource(ctx context.Context, path string, conf *Config, fn func(file string) error) error {
	files, err := sourceFiles(path)
	if err != nil {
		return fmt.Errorf("compile %s: %w", path, err)
	}
	group, ctx := errgroup.WithContext(ctx)
	jobs := conf.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	group.SetLimit(jobs)
	for _, file := range files {
		file := file
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(file); err != nil {
				return fmt.Errorf("compile %s: %w", file, err)
			}
			return nil
		})
	}
	return group.Wait()
}

// sourceFiles returns path itself, or the source files directly inside the directory path in
// name order.
func sourceFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), SourceExt) {
			continue
		}
		files = append(files, filepath.Join(path, entry.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found", SourceExt)
	}
	sort.Strings(files)
	return files, nil
}

func logf(conf *Config, format string, args ...interface{}) {
	if conf.Verbose {
		log.Printf(format, args...)
	}
}
