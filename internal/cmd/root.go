package cmd

import (
	"github.com/alecthomas/kong"
)

type CLI struct {
	Color   string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto"`
	Verbose bool   `help:"Enable debug logging."`
	Logging bool   `help:"Print request/response progress lines." default:"true" negatable:""`

	VersionFlag kong.VersionFlag `help:"Print version."`

	Version  VersionCmd  `cmd:"" help:"Print version."`
	Config   ConfigCmd   `cmd:"" help:"Manage configuration."`
	Download DownloadCmd `cmd:"" help:"Download all matching form PDFs within a year range."`
	Info     InfoCmd     `cmd:"" help:"Summarize year coverage per form query into a JSON file."`
	Proxies  ProxiesCmd  `cmd:"" help:"Proxy utilities."`
}

func NewCLI() *CLI {
	return &CLI{}
}
