package cmd

import (
	"io"

	"github.com/jimezsa/formcli/internal/config"
	"github.com/jimezsa/formcli/internal/ui"
	"github.com/rs/zerolog"
)

type Context struct {
	Out       io.Writer
	Err       io.Writer
	UI        *ui.UI
	Config    config.Config
	ConfigDir string
	Logger    zerolog.Logger
	Verbose   bool
	Logging   bool
	Version   string
	ColorMode ui.ColorMode
}
