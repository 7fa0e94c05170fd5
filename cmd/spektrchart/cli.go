package main

import (
	"github.com/jessevdk/go-flags"
)

// Option defines command line options.
type Option struct {
	File     string `short:"f" long:"file" description:"CSV data file"`
	Chart    string `short:"c" long:"chart" description:"chart config file (YAML or JSON); a suggestion is used when omitted"`
	Type     string `short:"t" long:"type" description:"chart type, overrides the chart config" choice:"bar" choice:"line" choice:"pie" choice:"scatter" choice:"combo"`
	Format   string `long:"format" description:"output format" choice:"json" choice:"pretty" choice:"msgpack" choice:"csv" default:"json"`
	Out      string `short:"o" long:"out" description:"write output to file instead of stdout"`
	SeedKey  string `long:"seed" description:"stable key for reproducible scatter sampling"`
	Discover bool   `long:"discover" description:"print discovered columns and a suggested chart config, then exit"`
	Serve    bool   `long:"serve" description:"run the HTTP API"`
	Config   string `long:"config" description:"path to spektrchart.toml"`
	Version  bool   `short:"v" long:"version" description:"display the version and exit"`
}

// Parse returns parsed command-line flags in Option struct
func Parse(args []string) (*Option, error) {
	opt := &Option{}
	parser := flags.NewParser(opt, flags.Default)
	parser.Name = "spektrchart"
	parser.Usage = `[OPTIONS]

Examples:
  spektrchart --file sales.csv --discover --format pretty
  spektrchart --file sales.csv --chart revenue.yml --format pretty
  spektrchart --file sales.csv --chart revenue.yml --type line --format csv --out revenue.csv
  spektrchart --serve --config spektrchart.toml`

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	return opt, nil
}

// IsHelp reports whether err only signals that help was printed.
func IsHelp(err error) bool {
	return flags.WroteHelp(err)
}
