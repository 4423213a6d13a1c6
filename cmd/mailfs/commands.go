package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/brettbedarf/mailfs"
	"github.com/brettbedarf/mailfs/config"
	"github.com/brettbedarf/mailfs/maildir"
	"github.com/brettbedarf/mailfs/service"
)

var errUsage = errors.New("bad usage")

type cli struct {
	cfg     *config.Config
	factory mailfs.FileSystemFactory
	stdin   io.Reader
	stdout  io.Writer
}

func (c *cli) run(args []string) error {
	cmd, args := args[0], args[1:]
	switch cmd {
	case "ls":
		return c.withPath(args, c.ls)
	case "stat":
		return c.withPath(args, c.stat)
	case "mkdir":
		return c.mkdir(args)
	case "put":
		return c.withPath(args, c.put)
	case "cat":
		return c.withPath(args, c.cat)
	case "mv":
		return c.mv(args)
	case "rm":
		return c.withPath(args, func(f mailfs.File) error { return f.Remove() })
	case "deliver":
		return c.withPath(args, c.deliver)
	case "services":
		return c.services(args)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func (c *cli) node(arg string) (mailfs.File, error) {
	p, err := c.factory.StringToPath(arg)
	if err != nil {
		return nil, err
	}
	return c.factory.Create(p), nil
}

func (c *cli) withPath(args []string, fn func(mailfs.File) error) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: expected one path", errUsage)
	}
	f, err := c.node(args[0])
	if err != nil {
		return err
	}
	return fn(f)
}

func (c *cli) ls(dir mailfs.File) error {
	it, err := dir.Files()
	if err != nil {
		return err
	}
	for f := range mailfs.All(it) {
		kind := "-"
		if f.IsDirectory() {
			kind = "d"
		}
		var size int64
		if f.IsFile() {
			size, _ = f.Length()
		}
		fmt.Fprintf(c.stdout, "%s %10d %s\n", kind, size, f.FullPath().Last())
	}
	return nil
}

func (c *cli) stat(f mailfs.File) error {
	if !f.Exists() {
		fmt.Fprintf(c.stdout, "%s: does not exist\n", c.factory.PathToString(f.FullPath()))
		return nil
	}
	kind := "file"
	if f.IsDirectory() {
		kind = "directory"
	}
	fmt.Fprintf(c.stdout, "path:     %s\nkind:     %s\n", c.factory.PathToString(f.FullPath()), kind)
	if f.IsFile() {
		size, err := f.Length()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "size:     %d\n", size)
	}
	fmt.Fprintf(c.stdout, "readable: %t\nwritable: %t\n", f.CanRead(), f.CanWrite())
	return nil
}

func (c *cli) mkdir(args []string) error {
	fs := flag.NewFlagSet("mkdir", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	parents := fs.Bool("p", false, "create missing parents")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	return c.withPath(fs.Args(), func(f mailfs.File) error {
		return f.CreateDirectory(*parents)
	})
}

func (c *cli) put(f mailfs.File) error {
	w, err := f.FileWriter()
	if err != nil {
		return err
	}
	return w.OutputStream(func(w io.Writer) error {
		_, err := io.Copy(w, c.stdin)
		return err
	})
}

func (c *cli) cat(f mailfs.File) error {
	r, err := f.FileReader()
	if err != nil {
		return err
	}
	return r.InputStream(func(r io.Reader) error {
		_, err := io.Copy(c.stdout, r)
		return err
	})
}

func (c *cli) mv(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: expected source and destination", errUsage)
	}
	src, err := c.node(args[0])
	if err != nil {
		return err
	}
	dst, err := c.factory.StringToPath(args[1])
	if err != nil {
		return err
	}
	return src.Rename(dst)
}

func (c *cli) deliver(dir mailfs.File) error {
	md := maildir.New(c.factory, dir.FullPath())
	if err := md.Init(); err != nil {
		return err
	}
	name, err := md.Deliver(c.stdin)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, name)
	return nil
}

func (c *cli) services(args []string) error {
	names := service.Names()
	if len(args) > 0 {
		names = args
	}
	for _, name := range names {
		desc, ok := service.Lookup(name)
		if !ok {
			return fmt.Errorf("unknown service %q", name)
		}
		fmt.Fprintf(c.stdout, "%s (%s)\n", name, desc.PropertyPrefix())
		vals, err := c.cfg.ServiceValues(desc)
		for _, p := range desc.AvailableProperties() {
			var flags []string
			if p.Required() {
				flags = append(flags, "required")
			}
			if p.Hidden() {
				flags = append(flags, "hidden")
			}
			v, set := vals[p.Name]
			switch {
			case p.Hidden() && set:
				v = "***"
			case !set:
				v = "-"
			}
			fmt.Fprintf(c.stdout, "  %-28s %-8s %-20s %s\n", p.Name, p.Type, v, flagString(flags))
		}
		if err != nil {
			fmt.Fprintf(c.stdout, "  ! %v\n", err)
		}
	}
	return nil
}

func flagString(flags []string) string {
	if len(flags) == 0 {
		return ""
	}
	slices.Sort(flags)
	return "[" + strings.Join(flags, ",") + "]"
}
