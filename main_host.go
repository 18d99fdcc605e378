//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/Chati-SidecarTridge/md-microfirmware-template/app"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/bustap"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/console"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/hal"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/netinfo"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/storage"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/tproto"
)

// errExit signals a clean terminal exit from inside a frontend loop.
var errExit = errors.New("exit requested")

func main() {
	var headless hal.HeadlessConfig
	var useConsole bool
	var ttyPort string
	var ttyBaud uint
	var sdRoot string
	flag.BoolVar(&headless.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&headless.Hz, "hz", 60, "Tick rate in headless mode.")
	flag.Uint64Var(&headless.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.BoolVar(&useConsole, "console", false, "Render into the controlling terminal instead of a window.")
	flag.StringVar(&ttyPort, "tty", "", "Serial port with captured bus traffic to replay.")
	flag.UintVar(&ttyBaud, "baud", 115200, "Baud rate for -tty.")
	flag.StringVar(&sdRoot, "sdroot", "", "Directory standing in for the SD card.")
	flag.Parse()

	if useConsole {
		if err := runConsole(ttyPort, ttyBaud, sdRoot); err != nil && err != errExit {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	newApp := func(h hal.HAL) func() error {
		fw, err := newFirmware(h, nil, ttyPort, ttyBaud, sdRoot)
		if err != nil {
			return func() error { return err }
		}
		return func() error {
			if err := fw.Step(); err != nil {
				return err
			}
			if fw.ExitRequested() || fw.ResetRequested() {
				return errExit
			}
			return nil
		}
	}

	if headless.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err := hal.RunHeadless(ctx, newApp, headless)
		if err == nil || err == errExit || err == context.Canceled {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := hal.RunWindow(newApp); err != nil && err != errExit {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newFirmware builds the firmware with host collaborators and, when asked,
// a serial bus tap feeding the interrupt path. Without a host computer on
// the bus the terminal is started directly.
func newFirmware(h hal.HAL, disp app.GridDisplay, ttyPort string, ttyBaud uint, sdRoot string) (*app.Firmware, error) {
	mount := storage.Mount(&storage.FixedMount{Mounted: true, TotalMB: 4096, FreeMB: 2048})
	if sdRoot != "" {
		mount = storage.ForPath(sdRoot)
	}
	fw, err := app.New(h, app.Options{
		Display: disp,
		Net:     netinfo.HostProvider{},
		Mount:   mount,
	})
	if err != nil {
		return nil, err
	}

	if ttyPort != "" {
		tap, err := bustap.Open(bustap.Config{Port: ttyPort, Baud: ttyBaud})
		if err != nil {
			return nil, err
		}
		go feedBus(h.Logger(), tap, fw)
	} else {
		fw.SendStart()
	}
	return fw, nil
}

func feedBus(log hal.Logger, tap *bustap.Tap, fw *app.Firmware) {
	defer tap.Close()
	words := make([]uint16, 64)
	for {
		n, err := tap.ReadWords(words)
		for _, w := range words[:n] {
			fw.OnBusEvent(tproto.BusAddr(w))
		}
		if err != nil {
			if err != io.EOF {
				log.WriteLineString("bustap: " + err.Error())
			}
			return
		}
	}
}

// runConsole drives the firmware from a tcell frontend. The event loop
// owns the foreground; the firmware steps on a ticker goroutine.
func runConsole(ttyPort string, ttyBaud uint, sdRoot string) error {
	disp, err := console.New(nil)
	if err != nil {
		return err
	}
	defer disp.Close()

	h := hal.New()
	emitter, _ := h.(interface{ EmitKey(hal.KeyEvent) })

	fw, err := newFirmware(h, disp, ttyPort, ttyBaud, sdRoot)
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	stop := make(chan struct{})
	go func() {
		tick := time.NewTicker(16 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-stop:
				errc <- errExit
				disp.Interrupt()
				return
			case <-tick.C:
				if err := fw.Step(); err != nil {
					errc <- err
					disp.Interrupt()
					return
				}
				if fw.ExitRequested() {
					errc <- errExit
					disp.Interrupt()
					return
				}
			}
		}
	}()

	stopped := false
	disp.RunEventLoop(func(ev hal.KeyEvent) bool {
		if ev.Code == hal.KeyEscape {
			if !stopped {
				stopped = true
				close(stop)
			}
			return true // keep polling until the step goroutine interrupts
		}
		if emitter != nil {
			emitter.EmitKey(ev)
		}
		return true
	})
	return <-errc
}
