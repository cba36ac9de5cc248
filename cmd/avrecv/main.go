// avrecv connects to an IOTC device, starts its video stream and appends the
// received frames to video.mp4 in the working directory.
//
// Usage:
//
//	avrecv <uid> <channel>
//
// The output is the raw frame stream sent by the device (usually H.264
// Annex-B), not an MP4 container. The name is kept for compatibility with
// existing tooling.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"
	"github.com/thesyncim/avapi"
)

const (
	outputPath = "video.mp4"
	channels   = 32
	username   = "admin"
	password   = ""
)

type cli struct {
	UID     string `arg:"" help:"device UID"`
	Channel uint8  `arg:"" help:"IOTC channel id (0-255)"`
}

func parseArgs(args []string) (*cli, error) {
	var c cli
	parser, err := kong.New(&c,
		kong.Name("avrecv"),
		kong.Description("Receive video from an IOTC device into "+outputPath),
		kong.UsageOnError())
	if err != nil {
		return nil, err
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, err
	}
	return &c, nil
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	c, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "avrecv: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, c); err != nil {
		logrus.WithError(err).Error("avrecv failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, c *cli) error {
	sess, err := avapi.New(avapi.Config{Channels: channels})
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Connect(c.UID); err != nil {
		return err
	}
	if err := sess.OpenAV(username, password, c.Channel); err != nil {
		return err
	}
	if err := sess.StartStream(); err != nil {
		return err
	}

	sink, err := avapi.OpenFileSink(outputPath)
	if err != nil {
		return err
	}
	defer sink.Close()

	stats, err := sess.Drain(ctx, sink)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("interrupted after %d frames: %w", stats.Frames, err)
		}
		return err
	}

	logrus.WithFields(logrus.Fields{
		"output":     sink.Name(),
		"frames":     stats.Frames,
		"bytes":      stats.Bytes,
		"lost":       stats.Lost,
		"incomplete": stats.Incomplete,
		"reason":     stats.Terminal.String(),
	}).Info("Stream ended")
	return nil
}
