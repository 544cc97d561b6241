package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
	"github.com/lestrrat-go/xenon"
)

type cmdopts struct {
	DTD      bool   `long:"dtd"`
	Entities bool   `long:"entities"`
	Base     string `long:"base"`
	Version  bool   `long:"version"`
}

type input struct {
	name string
	rdr  io.Reader
}

func main() {
	os.Exit(_main())
}

func showVersion() {
	fmt.Printf("xenon-lint: using xenon version %s\n", xenon.Version)
}

func showUsage() {
	fmt.Printf(`Usage : xenon-lint [options] XMLfiles ...
	Parse the XML files and output the result of the parsing
	--dtd      : parse the inputs as DTD subsets instead of documents
	--entities : also list the general entities declared by each document
	--base DIR : resolve external parameter entities relative to DIR
	--version  : display the version of the XML library used
`)
}

func _main() int {
	opts := cmdopts{}
	args, err := flags.ParseArgs(&opts, os.Args[1:])
	if err != nil {
		showUsage()
		return 1
	}

	if opts.Version {
		showVersion()
		return 0
	}

	inputCh := make(chan input)
	errCh := make(chan error, 1)
	switch {
	case len(args) > 0: // filename present
		go func() {
			defer close(inputCh)
			for _, f := range args {
				fh, err := os.Open(f)
				if err != nil {
					errCh <- err
					return
				}
				inputCh <- input{name: f, rdr: fh}
			}
		}()
	case stdinPiped():
		go func() {
			defer close(inputCh)
			inputCh <- input{name: "stdin", rdr: os.Stdin}
		}()
	default:
		showUsage()
		return 1
	}

	for in := range inputCh {
		if err := processInput(&opts, in); err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			return 1
		}
	}

	select {
	case err := <-errCh:
		fmt.Fprintf(os.Stderr, "%s", err)
		return 1
	default:
	}

	return 0
}

func stdinPiped() bool {
	st, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return st.Mode()&os.ModeCharDevice == 0
}

func processInput(opts *cmdopts, in input) error {
	buf, err := io.ReadAll(in.rdr)
	if c, ok := in.rdr.(io.Closer); ok {
		c.Close()
	}
	if err != nil {
		return err
	}

	// External parameter entities resolve relative to the input file
	// unless --base overrides it.
	base := opts.Base
	if base == "" {
		base = filepath.Dir(in.name)
	}
	options := []xenon.Option{xenon.WithFS(os.DirFS(base))}

	d := xenon.Dumper{}
	if opts.DTD {
		dtd, err := xenon.ParseDTD(in.name, buf, options...)
		if err != nil {
			return err
		}
		return d.DumpDTD(os.Stdout, dtd)
	}

	doc, err := xenon.Parse(in.name, buf, options...)
	if err != nil {
		return err
	}
	if err := d.DumpDoc(os.Stdout, doc); err != nil {
		return err
	}
	if opts.Entities {
		for name, def := range doc.Entities.Range() {
			if err := d.DumpEntity(os.Stdout, name, def); err != nil {
				return err
			}
		}
	}
	return nil
}
