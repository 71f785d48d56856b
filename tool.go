package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/neelance/sourcemap"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/cranefold/sourcefrag/internal/toolx"
	"github.com/cranefold/sourcefrag/source"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var verbose, quiet bool
	root := &cobra.Command{
		Use:           "sourcefrag",
		Short:         "Build, inspect and splice Source Map v3 files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			switch {
			case verbose:
				log.SetLevel(log.DebugLevel)
			case quiet:
				log.SetLevel(log.ErrorLevel)
			default:
				log.SetLevel(log.InfoLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only print errors")
	root.AddCommand(inspectCmd(), concatCmd(), rewriteCmd())
	return root
}

// addMapFlags registers the flags shared by every map-producing command.
func addMapFlags(fs *pflag.FlagSet, opts *source.MapOptions) {
	fs.StringVar(&opts.File, "file", "", `value for the map's "file" field`)
	fs.BoolVar(&opts.Columns, "columns", false, "emit column-accurate mappings")
}

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE.map...",
		Short: "Decode maps and print their resolved mapping tables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tables := make([][]*sourcemap.Mapping, len(args))
			var group errgroup.Group
			for i, path := range args {
				i, path := i, path
				group.Go(func() error {
					f, err := os.Open(path)
					if err != nil {
						return err
					}
					defer f.Close()
					m, err := sourcemap.ReadFrom(f)
					if err != nil {
						return fmt.Errorf("parsing %s: %w", path, err)
					}
					tables[i] = m.DecodedMappings()
					return nil
				})
			}
			if err := group.Wait(); err != nil {
				return err
			}
			for i, path := range args {
				fmt.Printf("%s: %d mappings\n", path, len(tables[i]))
				for _, mp := range tables[i] {
					fmt.Printf("  %d:%d -> %s %d:%d", mp.GeneratedLine, mp.GeneratedColumn, mp.OriginalFile, mp.OriginalLine, mp.OriginalColumn)
					if mp.OriginalName != "" {
						fmt.Printf(" (%s)", mp.OriginalName)
					}
					fmt.Println()
				}
			}
			return nil
		},
	}
}

func concatCmd() *cobra.Command {
	var out string
	var watch bool
	var opts source.MapOptions
	cmd := &cobra.Command{
		Use:   "concat -o OUT FILE...",
		Short: "Concatenate generated files, combining their source maps",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("missing -o flag")
			}
			if err := concatOnce(out, args, &opts); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return watchLoop(args, func() {
				if err := concatOnce(out, args, &opts); err != nil {
					log.Errorf("Rebuild failed: %v.", err)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "rebuild when an input changes")
	addMapFlags(cmd.Flags(), &opts)
	return cmd
}

func concatOnce(out string, inputs []string, opts *source.MapOptions) error {
	concat, err := source.NewConcatSource()
	if err != nil {
		return err
	}
	var group errgroup.Group
	loaded := make([]source.Source, len(inputs))
	for i, path := range inputs {
		i, path := i, path
		group.Go(func() error {
			s, err := toolx.LoadSource(path)
			loaded[i] = s
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	for _, s := range loaded {
		if err := concat.Add(s); err != nil {
			return err
		}
	}
	if err := toolx.WriteOutput(out, concat, opts); err != nil {
		return err
	}
	sum, err := toolx.Fingerprint(concat)
	if err != nil {
		return err
	}
	log.Infof("Wrote %q (sha256 %s).", out, sum[:12])
	return nil
}

func rewriteCmd() *cobra.Command {
	var out string
	var exprs []string
	var opts source.MapOptions
	cmd := &cobra.Command{
		Use:   "rewrite -e OLD=NEW -o OUT FILE",
		Short: "Apply literal text replacements while preserving mappings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("missing -o flag")
			}
			inner, err := toolx.LoadSource(args[0])
			if err != nil {
				return err
			}
			text, err := inner.Source()
			if err != nil {
				return err
			}
			rs := source.NewReplaceSource(inner)
			edits := 0
			for _, expr := range exprs {
				old, repl, ok := splitExpr(expr)
				if !ok {
					return fmt.Errorf("malformed expression %q, want OLD=NEW", expr)
				}
				for at := 0; ; {
					i := strings.Index(text[at:], old)
					if i < 0 {
						break
					}
					at += i
					rs.Replace(at, at+len(old)-1, repl, "")
					at += len(old)
					edits++
				}
			}
			log.Infof("Applying %d replacements to %q.", edits, args[0])
			return toolx.WriteOutput(out, rs, &opts)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file")
	cmd.Flags().StringArrayVarP(&exprs, "expr", "e", nil, "replacement expression OLD=NEW (repeatable)")
	addMapFlags(cmd.Flags(), &opts)
	return cmd
}

func splitExpr(expr string) (old, repl string, ok bool) {
	i := strings.IndexByte(expr, '=')
	if i <= 0 {
		return "", "", false
	}
	return expr[:i], expr[i+1:], true
}

// watchLoop rebuilds on every write to one of the inputs until the process
// is interrupted.
func watchLoop(inputs []string, rebuild func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	for _, path := range inputs {
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
	}
	log.Infof("Watching %d files.", len(inputs))
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			log.Debugf("Change detected: %s.", ev)
			rebuild()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("Watch error: %v.", err)
		}
	}
}
