package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/THE-NUKELEDGE/rseq2mid"
	"github.com/THE-NUKELEDGE/rseq2mid/debug"
	"github.com/THE-NUKELEDGE/rseq2mid/smf"
	"github.com/THE-NUKELEDGE/rseq2mid/version"
	"github.com/THE-NUKELEDGE/rseq2mid/vm"
)

const logFileName = "rseq2mid.log.txt"

var (
	fileStyle = lipgloss.NewStyle().Bold(true)
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func main() {
	opts, err := rseq.ReadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	ignoreJumps := flag.Bool("i", opts.IgnoreJumps, "ignore jump commands; decoding continues past them")
	debugCtrls := flag.Bool("d", opts.DebugControllers, "re-emit unmapped commands as generic debug controllers")
	writeLog := flag.Bool("l", false, "write a decode log to "+logFileName)
	printVersion := flag.Bool("version", false, "print version and exit")
	flag.Usage = printUsage
	flag.Parse()
	if *printVersion {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}
	if *writeLog {
		if err := debug.Enable(logFileName); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		defer debug.Disable()
	}
	opts.IgnoreJumps = *ignoreJumps
	opts.DebugControllers = *debugCtrls
	for _, path := range flag.Args() {
		fmt.Println(fileStyle.Render(path + ":"))
		debug.Logf("file", "%s:", path)
		if err := convert(path, opts); err != nil {
			fmt.Fprintln(os.Stderr, errStyle.Render("  "+err.Error()))
			debug.Logf("file", "  failed: %v", err)
		}
	}
}

// convert decodes one sequence file and writes the MIDI file next to it,
// with the extension replaced by .mid.
func convert(path string, opts rseq.Options) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()
	seq, err := rseq.ReadSequence(in)
	if err != nil {
		return err
	}
	s := vm.NewSequencer(in, seq, opts)
	if err := s.Run(); err != nil {
		return err
	}
	outPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".mid"
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	if err := smf.Write(out, s.Tracks()); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", outPath, err)
	}
	fmt.Println(okStyle.Render("  -> " + outPath))
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Convert RSEQ sequence files to standard MIDI files.\nUsage: %s [flags] file1.rseq [file2.rseq ...]\n", os.Args[0])
	flag.PrintDefaults()
}
