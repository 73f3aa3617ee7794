package main

import (
	stdcontext "context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/yatesdr/gos7link/config"
	"github.com/yatesdr/gos7link/httpapi"
	"github.com/yatesdr/gos7link/logging"
	"github.com/yatesdr/gos7link/publish"
	"github.com/yatesdr/gos7link/s7"
)

// context is the context struct kong passes to every command's Run method.
type context struct{}

// connectFlags is embedded by every command that needs a live PLC
// connection; each command applies it via connect().
type connectFlags struct {
	Address string `flag:"" required:"" short:"a" help:"PLC address, e.g. 192.168.0.1:102"`
	Rack    int    `flag:"" default:"0" help:"PLC rack number"`
	Slot    int    `flag:"" default:"2" help:"PLC slot number"`
	Debug   string `flag:"" optional:"" help:"write protocol debug log to this path"`
	Verbose bool   `flag:"" short:"v" help:"dump decoded responses with go-spew"`
}

func (f *connectFlags) connect() (*s7.Client, func(), error) {
	cleanup := func() {}
	if f.Debug != "" {
		logger, err := logging.NewLogger(f.Debug)
		if err != nil {
			return nil, cleanup, fmt.Errorf("open debug log: %w", err)
		}
		s7.SetDebugLogger(logger)
		cleanup = func() { logger.Close() }
	}
	client, err := s7.ConnectAddress(f.Address, s7.WithRack(f.Rack), s7.WithSlot(f.Slot))
	if err != nil {
		return nil, cleanup, fmt.Errorf("connect to %s: %w", f.Address, err)
	}
	return client, cleanup, nil
}

func (f *connectFlags) dump(v interface{}) {
	if !f.Verbose {
		return
	}
	spew.Config.Indent = "  "
	spew.Dump(v)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ---- read ----

type readCmd struct {
	connectFlags
	Tag  string `arg:"" help:"tag address, e.g. DB1.DBW0 or MB10"`
	Size int    `flag:"" default:"1" help:"element count to read"`
}

func (r *readCmd) Run(ctx *context) error {
	client, cleanup, err := r.connect()
	if err != nil {
		return err
	}
	defer cleanup()
	defer client.Close()

	addr, err := s7.ParseTagAddress(r.Tag)
	if err != nil {
		return err
	}
	width := 1
	switch addr.WordLength {
	case s7.WLWord, s7.WLTimer, s7.WLCounter:
		width = 2
	case s7.WLDWord:
		width = 4
	}
	buf := make([]byte, r.Size*width)
	item := addr.DataItem(r.Size, buf)
	if err := client.ReadMultiVars([]*s7.DataItem{item}); err != nil {
		return err
	}
	if item.Err != nil {
		return item.Err
	}
	r.dump(buf)
	return printJSON(map[string]string{"tag": r.Tag, "hex": fmt.Sprintf("% X", buf)})
}

// ---- write ----

type writeCmd struct {
	connectFlags
	Tag string `arg:"" help:"tag address, e.g. DB1.DBW0 or MB10"`
	Hex string `arg:"" help:"hex-encoded bytes to write, e.g. 00FF"`
}

func (w *writeCmd) Run(ctx *context) error {
	client, cleanup, err := w.connect()
	if err != nil {
		return err
	}
	defer cleanup()
	defer client.Close()

	addr, err := s7.ParseTagAddress(w.Tag)
	if err != nil {
		return err
	}
	buf, err := parseHex(w.Hex)
	if err != nil {
		return err
	}
	item := addr.DataItem(len(buf), buf)
	if err := client.WriteMultiVars([]*s7.DataItem{item}); err != nil {
		return err
	}
	if item.Err != nil {
		return item.Err
	}
	return printJSON(map[string]bool{"ok": true})
}

func parseHex(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even length")
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		hi, err := hexNibble(s[i*2])
		if err != nil {
			return nil, err
		}
		lo, err := hexNibble(s[i*2+1])
		if err != nil {
			return nil, err
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexNibble(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, fmt.Errorf("invalid hex character %q", c)
	}
}

// ---- status ----

type statusCmd struct {
	connectFlags
}

func (s *statusCmd) Run(ctx *context) error {
	client, cleanup, err := s.connect()
	if err != nil {
		return err
	}
	defer cleanup()
	defer client.Close()

	status, err := client.PlcStatus()
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"status": status.String()})
}

// ---- cpuinfo ----

type cpuInfoCmd struct {
	connectFlags
}

func (c *cpuInfoCmd) Run(ctx *context) error {
	client, cleanup, err := c.connect()
	if err != nil {
		return err
	}
	defer cleanup()
	defer client.Close()

	info, err := client.CpuInfo()
	if err != nil {
		return err
	}
	c.dump(info)
	return printJSON(info)
}

// ---- blocklist ----

type blockListCmd struct {
	connectFlags
}

func (b *blockListCmd) Run(ctx *context) error {
	client, cleanup, err := b.connect()
	if err != nil {
		return err
	}
	defer cleanup()
	defer client.Close()

	counts, err := client.GetAgBlockList()
	if err != nil {
		return err
	}
	return printJSON(counts)
}

// ---- blockinfo ----

var blockTypeByName = map[string]s7.BlockType{
	"ob":  s7.BlockTypeOB,
	"db":  s7.BlockTypeDB,
	"sdb": s7.BlockTypeSDB,
	"fc":  s7.BlockTypeFC,
	"sfc": s7.BlockTypeSFC,
	"fb":  s7.BlockTypeFB,
	"sfb": s7.BlockTypeSFB,
}

type blockInfoCmd struct {
	connectFlags
	Type   string `arg:"" help:"block type: ob, db, sdb, fc, sfc, fb, sfb"`
	Number uint32 `arg:"" help:"block number"`
}

func (b *blockInfoCmd) Run(ctx *context) error {
	blockType, ok := blockTypeByName[b.Type]
	if !ok {
		return fmt.Errorf("unknown block type %q", b.Type)
	}
	client, cleanup, err := b.connect()
	if err != nil {
		return err
	}
	defer cleanup()
	defer client.Close()

	info, err := client.GetAgBlockInfo(blockType, b.Number)
	if err != nil {
		return err
	}
	b.dump(info)
	return printJSON(info)
}

// ---- start / restart / stop ----

type startCmd struct{ connectFlags }

func (c *startCmd) Run(ctx *context) error { return runControl(&c.connectFlags, (*s7.Client).Start) }

type restartCmd struct{ connectFlags }

func (c *restartCmd) Run(ctx *context) error { return runControl(&c.connectFlags, (*s7.Client).Restart) }

type stopCmd struct{ connectFlags }

func (c *stopCmd) Run(ctx *context) error { return runControl(&c.connectFlags, (*s7.Client).Stop) }

func runControl(f *connectFlags, op func(*s7.Client) error) error {
	client, cleanup, err := f.connect()
	if err != nil {
		return err
	}
	defer cleanup()
	defer client.Close()

	if err := op(client); err != nil {
		return err
	}
	return printJSON(map[string]bool{"ok": true})
}

// ---- metrics ----

type metricsCmd struct {
	connectFlags
}

func (m *metricsCmd) Run(ctx *context) error {
	client, cleanup, err := m.connect()
	if err != nil {
		return err
	}
	defer cleanup()
	defer client.Close()

	// Issue one request so the counters have something to report.
	if _, err := client.PlcStatus(); err != nil {
		return err
	}

	reg := prometheus.NewPedanticRegistry()
	reg.MustRegister(client.Metrics())
	mfs, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(os.Stdout, mf); err != nil {
			return fmt.Errorf("serialize metrics: %w", err)
		}
	}
	return nil
}

// ---- serve ----

type serveCmd struct {
	Config string `flag:"" short:"c" help:"path to config.yaml" default:""`
}

func (s *serveCmd) Run(ctx *context) error {
	path := s.Config
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var logger *logging.Logger
	debugPath := os.Getenv("S7CLI_DEBUG_LOG")
	if debugPath != "" {
		logger, err = logging.NewLogger(debugPath)
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer logger.Close()
		s7.SetDebugLogger(logger)
		publish.SetDebugLogger(logger)
	}

	client, err := s7.ConnectAddress(cfg.PLC.Address,
		s7.WithRack(cfg.PLC.Rack),
		s7.WithSlot(cfg.PLC.Slot),
		s7.WithRequestedPDULength(cfg.PLC.RequestedPDULength),
		s7.WithConnectTimeout(cfg.PLC.ConnectTimeout),
		s7.WithReadTimeout(cfg.PLC.ReadTimeout),
		s7.WithWriteTimeout(cfg.PLC.WriteTimeout),
	)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.PLC.Address, err)
	}
	defer client.Close()

	if cfg.Publish.Enabled {
		pub, err := publish.New(cfg.Publish, client)
		if err != nil {
			return fmt.Errorf("init publisher: %w", err)
		}
		if err := pub.Start(); err != nil {
			return fmt.Errorf("start publisher: %w", err)
		}
		defer pub.Stop()
	}

	var httpServer *http.Server
	if cfg.API.Enabled {
		srv := httpapi.NewServer(client)
		httpServer = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
			Handler: srv.Router(),
		}
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				fmt.Fprintf(os.Stderr, "s7cli: http server: %v\n", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := stdcontext.WithTimeout(stdcontext.Background(), 5*time.Second)
			defer cancel()
			httpServer.Shutdown(shutdownCtx)
		}()
	}

	waitForSignal()
	return nil
}

func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}

// cli is kong's command table: one entry per s7cli subcommand.
var cli struct {
	Read       readCmd       `cmd:"" help:"read a tag's raw bytes"`
	Write      writeCmd      `cmd:"" help:"write hex-encoded bytes to a tag"`
	Status     statusCmd     `cmd:"" help:"report CPU run status"`
	CpuInfo    cpuInfoCmd    `cmd:"" name:"cpuinfo" help:"report CPU identity (SZL 0x001C)"`
	BlockList  blockListCmd  `cmd:"" name:"blocklist" help:"report block counts by type"`
	BlockInfo  blockInfoCmd  `cmd:"" name:"blockinfo" help:"report a single block's metadata"`
	Start      startCmd      `cmd:"" help:"cold-start the CPU"`
	Restart    restartCmd    `cmd:"" help:"warm-start the CPU"`
	Stop       stopCmd       `cmd:"" help:"stop the CPU"`
	Metrics    metricsCmd    `cmd:"" help:"dump connection metrics in Prometheus text exposition format"`
	Serve      serveCmd      `cmd:"" help:"run the HTTP API and MQTT publisher from a config file"`
}
