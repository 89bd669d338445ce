package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/strata/internal/term"
)

// Program is a loaded set of definitions and an optional entry term.
type Program struct {
	Definitions term.MapDefinitions

	// Entry is nil when the program declares no entry.
	Entry term.Term

	// Files is the number of source files the program was built from.
	Files int
}

// RequireEntry returns the entry term or a NO_ENTRY error.
func (p *Program) RequireEntry() (term.Term, error) {
	if p.Entry == nil {
		return nil, &LoadError{Code: ErrCodeNoEntry, Field: "entry", Message: "program has no entry term"}
	}
	return p.Entry, nil
}

// Load reads a program from path. A directory is loaded as one CUE
// package; a file is compiled on its own, and may be CUE or JSON.
func Load(path string) (*Program, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("program not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing program: %v", err)}
	}
	if info.IsDir() {
		return LoadDir(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	return Parse(data, path)
}

// LoadDir loads every .cue file of dir as one package.
func LoadDir(dir string) (*Program, error) {
	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fromCUE(ErrCodeLoadFailed, inst.Err)
	}

	p, err := Decode(cuecontext.New().BuildInstance(inst))
	if err != nil {
		return nil, err
	}
	p.Files = len(files)
	return p, nil
}

// Parse compiles a single CUE or JSON source. filename is used for
// error positions only.
func Parse(src []byte, filename string) (*Program, error) {
	v := cuecontext.New().CompileBytes(src, cue.Filename(filename))
	p, err := Decode(v)
	if err != nil {
		return nil, err
	}
	p.Files = 1
	return p, nil
}

// Decode extracts a program from a built CUE value.
func Decode(v cue.Value) (*Program, error) {
	if err := v.Err(); err != nil {
		return nil, fromCUE(ErrCodeBuildFailed, err)
	}

	p := &Program{Definitions: term.MapDefinitions{}}

	defs := v.LookupPath(cue.ParsePath("definitions"))
	if defs.Exists() {
		iter, err := defs.Fields()
		if err != nil {
			return nil, fromCUE(ErrCodeBuildFailed, err)
		}
		for iter.Next() {
			name := iter.Selector().Unquoted()
			t, err := decodeTerm(iter.Value(), "definitions."+name)
			if err != nil {
				return nil, err
			}
			p.Definitions[name] = t
		}
	}

	entry := v.LookupPath(cue.ParsePath("entry"))
	if entry.Exists() {
		t, err := decodeTerm(entry, "entry")
		if err != nil {
			return nil, err
		}
		p.Entry = t
	}

	return p, nil
}

func decodeTerm(v cue.Value, field string) (term.Term, error) {
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fromCUE(ErrCodeBuildFailed, err)
	}

	var raw any
	if err := v.Decode(&raw); err != nil {
		return nil, fromCUE(ErrCodeDecodeFailed, err)
	}

	t, err := term.FromValue(raw)
	if err != nil {
		le := &LoadError{Code: ErrCodeDecodeFailed, Field: field, Message: err.Error(), Pos: v.Pos()}
		var de *term.DecodeError
		if errors.As(err, &de) {
			le.Message = de.Message
			if at := lookupDecodePath(v, de.Path); at.Exists() {
				le.Pos = at.Pos()
			}
		}
		return nil, le
	}
	return t, nil
}

// lookupDecodePath maps a term.DecodeError path such as "$.apply.function"
// back onto the CUE value it came from.
func lookupDecodePath(v cue.Value, path string) cue.Value {
	rest := strings.TrimPrefix(strings.TrimPrefix(path, "$"), ".")
	if rest == "" {
		return v
	}
	var sels []cue.Selector
	for _, part := range strings.Split(rest, ".") {
		sels = append(sels, cue.Str(part))
	}
	return v.LookupPath(cue.MakePath(sels...))
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
