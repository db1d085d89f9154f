// cc1101ctl: inspect and drive a CC1101 attached to a Linux SPI port.
//
// Examples:
//
//	# Identify the chip and show its machine state
//	./cc1101ctl -spi /dev/spidev0.0 info
//
//	# Dump configuration registers and their decoded meaning as YAML
//	./cc1101ctl dump
//
//	# Load a radio configuration
//	./cc1101ctl -c radio.yaml apply
//
//	# Receive ten packets
//	./cc1101ctl -c radio.yaml -n 10 rx
//
//	# Send a packet
//	./cc1101ctl -c radio.yaml tx "hello"
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cc1101 "github.com/NV4RE/gocc1101"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v2"
	"periph.io/x/conn/v3/physic"
)

var log = logrus.New()

func main() {
	spiPort := flag.String("spi", "", "SPI port name, empty for the first one")
	csPin := flag.String("cs", "", "GPIO pin driven as chip select, empty for the controller's CSn")
	speed := flag.String("speed", "", "SPI clock, e.g. 4MHz (default 5MHz)")
	configPath := flag.String("c", "", "Radio configuration YAML file")
	count := flag.Int("n", 1, "Number of packets to receive")
	size := flag.Int("size", 0, "Bytes to read per packet, 0 for the RX FIFO count")
	verbose := flag.Bool("v", false, "Verbose output")
	logFile := flag.String("log-file", "", "Write logs to this file with rotation instead of stderr")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <info|dump|apply|rx|tx> [payload]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	log.Formatter = new(logrus.TextFormatter)
	log.Level = logrus.InfoLevel
	if *verbose {
		log.Level = logrus.DebugLevel
	}
	if *logFile != "" {
		lj := &lumberjack.Logger{
			Filename:   *logFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		defer lj.Close()
		log.SetOutput(lj)
	}

	hc := cc1101.HostConfig{
		SPI:     *spiPort,
		CS:      *csPin,
		Options: &cc1101.Options{Logger: log},
	}
	if *speed != "" {
		if err := hc.Speed.Set(*speed); err != nil {
			log.WithError(err).Fatal("invalid -speed")
		}
	}

	var cfg *cc1101.RadioConfig
	if *configPath != "" || flag.Arg(0) == "apply" {
		var err error
		if cfg, err = cc1101.LoadRadioConfig(*configPath); err != nil {
			log.WithError(err).Fatal("failed to load radio configuration")
		}
		hc.Options.Poll = cfg.PollPolicy()
	}

	d, err := cc1101.Open(hc)
	if err != nil {
		log.WithError(err).Fatal("failed to open cc1101")
	}
	defer d.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch cmd := flag.Arg(0); cmd {
	case "info":
		err = info(d)
	case "dump":
		err = dump(d)
	case "apply":
		err = cfg.Apply(d)
	case "rx":
		if cfg != nil {
			if err = cfg.Apply(d); err != nil {
				break
			}
		}
		err = receive(ctx, d, *count, *size)
	case "tx":
		if flag.NArg() < 2 {
			err = errors.New("tx needs a payload")
			break
		}
		if cfg != nil {
			if err = cfg.Apply(d); err != nil {
				break
			}
		}
		err = d.Transmit(ctx, []byte(flag.Arg(1)))
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		log.WithError(err).Error(flag.Arg(0) + " failed")
		d.Close()
		os.Exit(1)
	}
}

func info(d *cc1101.Dev) error {
	part, version, err := d.HardwareInfo()
	if err != nil {
		return err
	}
	state, err := d.State()
	if err != nil {
		return err
	}
	hz, err := d.Frequency()
	if err != nil {
		return err
	}
	fmt.Printf("partnum:   0x%02x\n", part)
	fmt.Printf("version:   0x%02x\n", version)
	fmt.Printf("state:     %s\n", state)
	fmt.Printf("frequency: %s\n", physic.Frequency(hz)*physic.Hertz)
	return nil
}

type dumpDoc struct {
	Registers map[string]string   `yaml:"registers"`
	GDO       map[string]string   `yaml:"gdo"`
	Radio     *cc1101.RadioConfig `yaml:"radio"`
}

func dump(d *cc1101.Dev) error {
	c, err := d.ReadConfig()
	if err != nil {
		return err
	}
	doc := dumpDoc{
		Registers: make(map[string]string),
		GDO: map[string]string{
			"gdo2": cc1101.GdoConfig(c.Get(cc1101.RegIocfg2)).String(),
			"gdo1": cc1101.GdoConfig(c.Get(cc1101.RegIocfg1)).String(),
			"gdo0": cc1101.GdoConfig(c.Get(cc1101.RegIocfg0)).String(),
		},
		Radio: cc1101.DecodeConfig(c),
	}
	for name, v := range c.Map() {
		doc.Registers[name] = fmt.Sprintf("0x%02x", v)
	}
	out, err := yaml.Marshal(&doc)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

func receive(ctx context.Context, d *cc1101.Dev, count, size int) error {
	for i := 0; i < count; {
		p, err := receiveOne(ctx, d, size)
		if errors.Is(err, cc1101.ErrRxOverflow) {
			log.Warn("rx fifo overflow, flushing")
			if err := d.FlushRX(ctx); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s rssi=%.1fdBm lqi=%d crc=%t\n", hex.EncodeToString(p.Data), p.RSSIdBm(), p.LinkQuality(), p.CRCOK())
		i++
	}
	return nil
}

func receiveOne(ctx context.Context, d *cc1101.Dev, size int) (*cc1101.Packet, error) {
	if err := d.SetRadioMode(ctx, cc1101.ModeReceive); err != nil {
		return nil, err
	}
	if size == 0 {
		n, err := d.BytesAvailable(ctx)
		if err != nil {
			return nil, err
		}
		size = n
	}
	return d.Receive(ctx, make([]byte, size))
}
