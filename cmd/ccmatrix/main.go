// Copyright 2025 The ccmatrix Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// ccmatrix enumerates the conditional-compilation configurations of C source
// files and prints one -D flag group per configuration.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/ccmatrix/ccmatrix/conditional"
	"github.com/ccmatrix/ccmatrix/internal/collections"
	"github.com/ccmatrix/ccmatrix/internal/function"
	"github.com/ccmatrix/ccmatrix/internal/source"
)

type config struct {
	// Patterns are default glob patterns used when no arguments are given.
	Patterns []string `yaml:"patterns"`
	// StandardValues extends the built-in conventional constant table,
	// e.g. MY_ON: 1.
	StandardValues map[string]int `yaml:"standard_values"`
}

type fileReport struct {
	Path     string     `json:"path"`
	Function string     `json:"function,omitempty"`
	FlagSets [][]string `json:"flag_sets"`
	combos   []conditional.Combination
}

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ccmatrix [options] <glob>...\n\n")
		fmt.Fprintf(os.Stderr, "ccmatrix resolves #if/#ifdef conditional structure in C sources and\n")
		fmt.Fprintf(os.Stderr, "prints the macro configurations needed to compile every reachable path.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  ccmatrix 'src/**/*.c'             # file-wide matrix per file\n")
		fmt.Fprintf(os.Stderr, "  ccmatrix -f CanNm_MainFunction nm.c\n")
		fmt.Fprintf(os.Stderr, "  ccmatrix --json 'src/**/*.c'\n")
	}

	functionFlag := pflag.StringP("function", "f", "", "Analyze only the named function")
	configFlag := pflag.StringP("config", "c", "", "YAML config file (patterns, standard_values)")
	jsonFlag := pflag.BoolP("json", "j", false, "Emit machine-readable JSON")
	bareFlag := pflag.Bool("bare", false, "Print NAME=VALUE groups without the -D prefix")
	verboseFlag := pflag.BoolP("verbose", "v", false, "Log per-file progress to stderr")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return
	}

	log.SetFlags(0)
	log.SetPrefix("ccmatrix: ")

	var cfg config
	if *configFlag != "" {
		if err := loadConfig(*configFlag, &cfg); err != nil {
			log.Fatal(err)
		}
	}

	patterns := pflag.Args()
	if len(patterns) == 0 {
		patterns = cfg.Patterns
	}
	if len(patterns) == 0 {
		pflag.Usage()
		os.Exit(2)
	}

	files, err := expandPatterns(patterns)
	if err != nil {
		log.Fatal(err)
	}
	if len(files) == 0 {
		log.Fatal("no files matched")
	}

	analyzer := conditional.Analyzer{
		Translator: conditional.Translator{Standard: cfg.StandardValues},
	}
	cache := conditional.NewCache()

	var failures []error
	var reports []fileReport
	for _, path := range files {
		if *verboseFlag {
			log.Printf("analyzing %s", path)
		}
		report, err := analyzeFile(analyzer, cache, path, *functionFlag)
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", path, err))
			continue
		}
		reports = append(reports, report...)
	}

	if err := emit(reports, *jsonFlag, *bareFlag); err != nil {
		log.Fatal(err)
	}
	if joined := errors.Join(failures...); joined != nil {
		log.Print(joined)
	}
}

func loadConfig(path string, cfg *config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func expandPatterns(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		files = append(files, matches...)
	}
	return collections.DedupBy(files, func(p string) string { return p }), nil
}

// analyzeFile produces one report per file, or one per matching function when
// functionName is set. The cache short-circuits the file-wide path for files
// whose mtime has not changed.
func analyzeFile(analyzer conditional.Analyzer, cache *conditional.Cache, path, functionName string) ([]fileReport, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if functionName == "" {
		if combos, ok := cache.Get(path, info.ModTime()); ok {
			return []fileReport{{Path: path, combos: combos}}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := source.Lines(source.StripComments(string(data)))
	ranges := function.Locate(lines)

	if functionName != "" {
		matched := collections.Filter(ranges, func(r function.Range) bool {
			return r.Name == functionName
		})
		if len(matched) == 0 {
			return nil, fmt.Errorf("function %q not found", functionName)
		}
		return collections.Map(matched, func(r function.Range) fileReport {
			return fileReport{
				Path:     path,
				Function: r.Name,
				combos:   analyzer.Analyze(lines, conditional.LineRange{Start: r.StartLine, End: r.EndLine}),
			}
		}), nil
	}

	lineRanges := collections.Map(ranges, func(r function.Range) conditional.LineRange {
		return conditional.LineRange{Start: r.StartLine, End: r.EndLine}
	})
	combos := analyzer.AnalyzeFile(lines, lineRanges)
	cache.Put(path, info.ModTime(), combos)
	return []fileReport{{Path: path, combos: combos}}, nil
}

func emit(reports []fileReport, asJSON, bare bool) error {
	if asJSON {
		for i := range reports {
			reports[i].FlagSets = conditional.GCCFlags(reports[i].combos)
			if reports[i].FlagSets == nil {
				reports[i].FlagSets = [][]string{}
			}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	for _, report := range reports {
		label := report.Path
		if report.Function != "" {
			label += ":" + report.Function
		}
		for _, combo := range report.combos {
			if len(combo) == 0 {
				continue
			}
			tokens := combo.Strings()
			if !bare {
				tokens = collections.Map(tokens, func(t string) string { return "-D" + t })
			}
			fmt.Printf("%s: %s\n", label, strings.Join(tokens, " "))
		}
	}
	return nil
}
