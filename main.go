package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/Fepozopo/tpaint/pkg/cli"
	"github.com/Fepozopo/tpaint/pkg/config"
	_ "github.com/Fepozopo/tpaint/pkg/cvops"
	"github.com/Fepozopo/tpaint/pkg/gui"
)

func main() {
	useGUI := flag.Bool("gui", false, "open the desktop window instead of the terminal REPL")
	cfgPath := flag.String("config", "", "config file (default "+config.DefaultFile+" if present)")
	version := flag.Bool("version", false, "print the version and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [image]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Println(cli.Version)
		return
	}
	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cfg.SetupLogging()

	path := flag.Arg(0)
	if *useGUI {
		err = gui.RunGUI(cfg, path)
	} else {
		err = cli.RunCLI(cfg, path)
	}
	if err != nil {
		log.Error().Err(err).Msg("tpaint")
		os.Exit(1)
	}
}
