package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/viper"
	"github.com/wheelibin/merossd/internal/bridge"
	"github.com/wheelibin/merossd/internal/config"
	"github.com/wheelibin/merossd/internal/lights"
	"github.com/wheelibin/merossd/internal/meross"
	"github.com/wheelibin/merossd/internal/models"
	"github.com/wheelibin/merossd/internal/repos"
)

const usage = `usage: merossctl [-config file] [-v] <device-id> on|off|brightness N|hs H S

  brightness N   level 0-254
  hs H S         hue and saturation, 0-254
`

type discard struct{}

func (discard) Publish(models.DeviceEvent) {}

func main() {
	configPath := flag.String("config", "", "path to the config file")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	args := flag.Args()
	if len(args) < 2 {
		flag.Usage()
		os.Exit(2)
	}
	id := args[0]
	cmd, err := parseArgs(args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	if err := config.InitialiseConfig(*configPath); err != nil {
		logger.Fatal(err)
	}
	cfg, err := config.ReadConfig(viper.GetViper())
	if err != nil {
		logger.Fatal(err)
	}

	db, err := sql.Open("sqlite3", "file::memory:")
	if err != nil {
		logger.Fatal(err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	deviceRepo, err := repos.NewDeviceRepo(logger, db)
	if err != nil {
		logger.Fatal(err)
	}

	client := meross.NewClient(logger, meross.WithTimeout(cfg.HTTP.Timeout))
	b := bridge.NewBridge(logger, lights.NewLightService(logger, client, cfg.HTTP.Timeout), deviceRepo, discard{})
	if err := b.Register(cfg.Devices); err != nil {
		logger.Fatal(err)
	}

	if err := b.HandleCommand(context.Background(), id, cmd); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	state := b.State(id)
	fmt.Printf("%s: ok (rgb #%06x, luminance %d)\n", id, state.RGB, state.Luminance)
}

func parseArgs(args []string) (bridge.Command, error) {
	switch args[0] {
	case "on", "off":
		on := args[0] == "on"
		return bridge.Command{On: &on}, nil
	case "brightness":
		if len(args) != 2 {
			return bridge.Command{}, fmt.Errorf("brightness needs a level")
		}
		level, err := strconv.Atoi(args[1])
		if err != nil {
			return bridge.Command{}, fmt.Errorf("invalid level %q", args[1])
		}
		return bridge.Command{Brightness: &level}, nil
	case "hs":
		if len(args) != 3 {
			return bridge.Command{}, fmt.Errorf("hs needs a hue and a saturation")
		}
		hue, err := strconv.Atoi(args[1])
		if err != nil {
			return bridge.Command{}, fmt.Errorf("invalid hue %q", args[1])
		}
		sat, err := strconv.Atoi(args[2])
		if err != nil {
			return bridge.Command{}, fmt.Errorf("invalid saturation %q", args[2])
		}
		return bridge.Command{Color: &bridge.HueSaturation{Hue: hue, Saturation: sat}}, nil
	}
	return bridge.Command{}, fmt.Errorf("unknown command %q", args[0])
}
