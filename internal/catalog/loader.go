package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue stories/*.cue
var builtinFS embed.FS

// LoadMode controls how errors are handled during story loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Error code constants - shared with the CLI validate command.
const (
	ErrCodeGeneric   = "E001" // Generic/unknown error
	ErrCodeScanError = "E002" // Directory scan error
	ErrCodeNoFiles   = "E003" // No CUE files found
	ErrCodeCompile   = "E004" // CUE compile failed
	ErrCodeNotFound  = "E005" // Path not found
	ErrCodeSchema    = "E006" // Story does not satisfy #Story schema
	ErrCodeDecode    = "E007" // Decode into Go value failed
	ErrCodeDuplicate = "E008" // Duplicate story id
)

// LoadError is an error that occurred while loading story definitions.
type LoadError struct {
	Code    string
	File    string
	Message string
}

func (e *LoadError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// BuiltIn returns the catalog of embedded story definitions.
//
// The embedded stories ship with the binary and are validated against the
// schema at load, so an error here means the build itself is broken.
func BuiltIn() (*Catalog, error) {
	ctx := cuecontext.New()
	schema, err := storySchema(ctx)
	if err != nil {
		return nil, err
	}

	names, err := fs.Glob(builtinFS, "stories/*.cue")
	if err != nil {
		return nil, fmt.Errorf("glob embedded stories: %w", err)
	}
	sort.Strings(names)

	var stories []Story
	for _, name := range names {
		src, err := builtinFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read embedded story %s: %w", name, err)
		}
		loaded, errs := loadSource(ctx, schema, name, src, LoadModeFailFast)
		if len(errs) > 0 {
			return nil, fmt.Errorf("load embedded story %s: %w", name, errs[0])
		}
		stories = append(stories, loaded...)
	}

	return New(stories...)
}

// LoadDir loads story definitions from every .cue file under dir.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadDir(dir string, mode LoadMode) ([]Story, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("stories directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing stories directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	files, err := FindStoryFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(files) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	schema, err := storySchema(ctx)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeGeneric, Message: err.Error()}}
	}

	var (
		stories []Story
		errs    []error
		seen    = map[string]string{} // story id -> file that defined it
	)
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeScanError, File: file, Message: err.Error()})
			if mode == LoadModeFailFast {
				return stories, errs
			}
			continue
		}

		loaded, loadErrs := loadSource(ctx, schema, file, src, mode)
		errs = append(errs, loadErrs...)
		if len(loadErrs) > 0 && mode == LoadModeFailFast {
			return stories, errs
		}

		for _, s := range loaded {
			if prev, dup := seen[s.ID]; dup {
				errs = append(errs, &LoadError{
					Code:    ErrCodeDuplicate,
					File:    file,
					Message: fmt.Sprintf("story %q already defined in %s", s.ID, prev),
				})
				if mode == LoadModeFailFast {
					return stories, errs
				}
				continue
			}
			seen[s.ID] = file
			stories = append(stories, s)
		}
	}

	return stories, errs
}

// FindStoryFiles walks the directory and returns all .cue file paths.
func FindStoryFiles(dir string) ([]string, error) {
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

// storySchema compiles the embedded schema and returns the #Story definition.
func storySchema(ctx *cue.Context) (cue.Value, error) {
	src, err := builtinFS.ReadFile("schema.cue")
	if err != nil {
		return cue.Value{}, fmt.Errorf("read embedded schema: %w", err)
	}
	v := ctx.CompileBytes(src, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile story schema: %w", err)
	}
	def := v.LookupPath(cue.ParsePath("#Story"))
	if !def.Exists() {
		return cue.Value{}, fmt.Errorf("story schema missing #Story definition")
	}
	return def, nil
}

// loadSource compiles one CUE source and extracts every story under its
// top-level "story" struct. Each entry is unified with #Story, validated for
// concreteness, and decoded.
func loadSource(ctx *cue.Context, schema cue.Value, filename string, src []byte, mode LoadMode) ([]Story, []error) {
	var errs []error

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeCompile, File: filename, Message: err.Error()}}
	}

	storiesVal := v.LookupPath(cue.ParsePath("story"))
	if !storiesVal.Exists() {
		return nil, []error{&LoadError{Code: ErrCodeCompile, File: filename, Message: `no top-level "story" block`}}
	}

	iter, err := storiesVal.Fields()
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeCompile, File: filename, Message: fmt.Sprintf("iterating stories: %v", err)}}
	}

	var stories []Story
	for iter.Next() {
		id := strings.Trim(iter.Selector().String(), `"`)

		unified := schema.Unify(iter.Value())
		if err := unified.Validate(cue.Concrete(true)); err != nil {
			errs = append(errs, &LoadError{
				Code:    ErrCodeSchema,
				File:    filename,
				Message: fmt.Sprintf("story %q: %v", id, err),
			})
			if mode == LoadModeFailFast {
				return stories, errs
			}
			continue
		}

		var s Story
		if err := unified.Decode(&s); err != nil {
			errs = append(errs, &LoadError{
				Code:    ErrCodeDecode,
				File:    filename,
				Message: fmt.Sprintf("story %q: %v", id, err),
			})
			if mode == LoadModeFailFast {
				return stories, errs
			}
			continue
		}
		s.ID = id
		stories = append(stories, s)
	}

	return stories, errs
}
