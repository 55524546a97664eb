package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/cenkalti/log"
	"github.com/cenkalti/rainbridge/bridge"
	"github.com/cenkalti/rainbridge/internal/jsonutil"
	"github.com/cenkalti/rainbridge/internal/logger"
	"github.com/cenkalti/rainbridge/internal/torrentdetails"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli"
)

const defaultConfig = "~/.rainbridge.yaml"

func main() {
	app := cli.NewApp()
	app.Name = "rainbridge"
	app.Usage = "Fetch tracker and piece state of torrents from a remote daemon"
	app.Version = bridge.Version
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "read config from `FILE`",
			Value: defaultConfig,
		},
		cli.BoolFlag{
			Name:  "debug, d",
			Usage: "enable debug log",
		},
	}
	app.Before = handleBeforeCommand
	app.Commands = []cli.Command{
		{
			Name:      "details",
			Usage:     "fetch details of a torrent",
			ArgsUsage: "HASH",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "text",
					Usage: "print trackers and errors as plain text",
				},
				cli.BoolFlag{
					Name:  "json",
					Usage: "print as JSON",
				},
			},
			Action: handleDetails,
		},
		{
			Name:   "cached",
			Usage:  "list torrents with saved details",
			Action: handleCached,
		},
		{
			Name:      "forget",
			Usage:     "remove saved details of a torrent",
			ArgsUsage: "HASH",
			Action:    handleForget,
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func handleBeforeCommand(c *cli.Context) error {
	logger.SetDebug(c.GlobalBool("debug"))
	jsonutil.SetColor(isatty.IsTerminal(os.Stdout.Fd()))
	return nil
}

func newBridge(c *cli.Context) (*bridge.Bridge, error) {
	cfg, err := bridge.LoadConfig(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	return bridge.New(*cfg)
}

type detailsView struct {
	Trackers []string
	Errors   []string
	Pieces   []*int32
}

func handleDetails(c *cli.Context) error {
	hash := c.Args().First()
	if hash == "" {
		return errors.New("torrent hash is required")
	}
	b, err := newBridge(c)
	if err != nil {
		return err
	}
	defer b.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	d, err := b.Fetch(ctx, hash)
	if err != nil {
		return err
	}
	switch {
	case c.Bool("json"):
		out, err := d.MarshalJSON()
		if err != nil {
			return err
		}
		_, _ = os.Stdout.Write(append(out, '\n'))
	case c.Bool("text"):
		fmt.Printf("Trackers:\n%s\n\nErrors:\n%s\n", d.TrackersText(), d.ErrorsText())
	default:
		out, err := jsonutil.MarshalFields(newDetailsView(d))
		if err != nil {
			return err
		}
		_, _ = os.Stdout.Write(out)
	}
	return nil
}

func newDetailsView(d *torrentdetails.Details) detailsView {
	pieces := d.Pieces()
	v := detailsView{
		Trackers: d.Trackers(),
		Errors:   d.Errors(),
		Pieces:   make([]*int32, 0, len(pieces)),
	}
	for _, p := range pieces {
		if p.Valid {
			code := p.Code
			v.Pieces = append(v.Pieces, &code)
		} else {
			v.Pieces = append(v.Pieces, nil)
		}
	}
	return v
}

func handleCached(c *cli.Context) error {
	b, err := newBridge(c)
	if err != nil {
		return err
	}
	defer b.Close()
	hashes, err := b.Cached()
	if err != nil {
		return err
	}
	for _, h := range hashes {
		fmt.Println(h)
	}
	return nil
}

func handleForget(c *cli.Context) error {
	hash := c.Args().First()
	if hash == "" {
		return errors.New("torrent hash is required")
	}
	b, err := newBridge(c)
	if err != nil {
		return err
	}
	defer b.Close()
	return b.Forget(hash)
}
