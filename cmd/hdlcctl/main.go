// Command hdlcctl is a thin CLI wrapper around the hdlc controller: it
// opens a serial transport, wires up logging callbacks, and pipes
// newline-delimited stdin to outbound DATA frames while printing inbound
// DATA payloads to stdout. It is ambient scaffolding around the engine, not
// part of the engine itself.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/sethvargo/go-envconfig"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"hdlcd/hdlc"
	"hdlcd/protocol"
	"hdlcd/transport"
)

var (
	device  string
	baud    int
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:   "hdlcctl",
		Short: "Drive an HDLC link-layer controller over a serial port",
		RunE:  run,
	}

	flags := root.Flags()
	flags.StringVar(&device, "device", "/dev/ttyUSB0", "serial device path")
	flags.IntVar(&baud, "baud", 115200, "baud rate")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(_ *cobra.Command, _ []string) error {
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	cfg := hdlc.DefaultConfig()
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return fmt.Errorf("hdlcctl: failed to load configuration: %w", err)
	}

	tcfg := transport.DefaultConfig(device)
	tcfg.Baud = baud

	rw, err := transport.NewSerial(tcfg)
	if err != nil {
		return fmt.Errorf("hdlcctl: failed to open transport: %w", err)
	}

	controller, err := hdlc.New(rw, protocol.NewHDLCCodec(), cfg)
	if err != nil {
		return fmt.Errorf("hdlcctl: failed to construct controller: %w", err)
	}

	if err := controller.SetSendCallback(func(payload []byte) {
		logrus.WithField("bytes", len(payload)).Debug("hdlcctl: sent DATA frame")
	}); err != nil {
		return err
	}
	if err := controller.SetReceiveCallback(func(payload []byte) {
		logrus.WithField("bytes", len(payload)).Debug("hdlcctl: received DATA frame")
	}); err != nil {
		return err
	}

	controller.Start()
	defer func() {
		if err := controller.Stop(); err != nil {
			logrus.WithError(err).Warn("hdlcctl: error while stopping controller")
		}
	}()

	go printReceived(controller)

	logrus.WithFields(logrus.Fields{
		"device": device,
		"baud":   baud,
	}).Info("hdlcctl: connected; type a line and press enter to send it")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		controller.Send([]byte(scanner.Text()))
	}
	return scanner.Err()
}

func printReceived(c *hdlc.Controller) {
	for {
		payload := c.GetData()
		fmt.Println(string(payload))
	}
}
