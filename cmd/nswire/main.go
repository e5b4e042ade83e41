package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/statecraft/nswire"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "nation":
		nationCmd(os.Args[2:])
	case "region":
		regionCmd(os.Args[2:])
	case "world":
		worldCmd(os.Args[2:])
	case "happenings":
		happeningsCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "nswire CLI\n\nUsage:\n  nswire nation -ua <user agent> <name>\n  nswire region -ua <user agent> <name>\n  nswire world -ua <user agent>\n  nswire happenings -ua <user agent> <substring>\n\nNotes:\n  - Pass -config file.yaml to read the user agent and rate limits from YAML.")
}

func commonFlags(fs *flag.FlagSet) (ua, cfgPath *string) {
	ua = fs.String("ua", "", "descriptive user agent")
	cfgPath = fs.String("config", "", "YAML config file")
	return ua, cfgPath
}

func newClient(ua, cfgPath string) *nswire.Client {
	if cfgPath != "" {
		cfg, err := nswire.LoadConfig(cfgPath)
		if err != nil {
			fatalf("config: %v", err)
		}
		if ua != "" {
			cfg.UserAgent = ua
		}
		c, err := nswire.NewFromConfig(cfg)
		if err != nil {
			fatalf("config: %v", err)
		}
		return c
	}
	c, err := nswire.New(ua)
	if err != nil {
		fatalf("%v", err)
	}
	return c
}

func runCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func nationCmd(args []string) {
	fs := flag.NewFlagSet("nation", flag.ExitOnError)
	ua, cfgPath := commonFlags(fs)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	ctx, cancel := runCtx()
	defer cancel()
	n, err := newClient(*ua, *cfgPath).Nation(ctx, fs.Arg(0))
	if err != nil {
		fatalf("nation: %v", err)
	}
	printJSON(n)
}

func regionCmd(args []string) {
	fs := flag.NewFlagSet("region", flag.ExitOnError)
	ua, cfgPath := commonFlags(fs)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	ctx, cancel := runCtx()
	defer cancel()
	r, err := newClient(*ua, *cfgPath).Region(ctx, fs.Arg(0))
	if err != nil {
		fatalf("region: %v", err)
	}
	printJSON(r)
}

func worldCmd(args []string) {
	fs := flag.NewFlagSet("world", flag.ExitOnError)
	ua, cfgPath := commonFlags(fs)
	_ = fs.Parse(args)
	ctx, cancel := runCtx()
	defer cancel()
	w, err := newClient(*ua, *cfgPath).World(ctx)
	if err != nil {
		fatalf("world: %v", err)
	}
	printJSON(w)
}

func happeningsCmd(args []string) {
	fs := flag.NewFlagSet("happenings", flag.ExitOnError)
	ua, cfgPath := commonFlags(fs)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	needle := fs.Arg(0)
	ctx, cancel := runCtx()
	defer cancel()
	events, err := newClient(*ua, *cfgPath).Happenings(ctx, func(ev map[string]any) bool {
		text, _ := ev["text"].(string)
		return strings.Contains(text, needle)
	})
	if err != nil {
		fatalf("happenings: %v", err)
	}
	printJSON(events)
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatalf("encode: %v", err)
	}
	fmt.Println(string(out))
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "nswire: "+format+"\n", args...)
	os.Exit(1)
}
