//go:build !tinygo

// busfeed decodes captured cartridge bus traffic into protocol frames, for
// inspecting recordings taken on real hardware.
//
//	busfeed -in capture.bin
//	busfeed -tty /dev/ttyACM0 -baud 115200
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Chati-SidecarTridge/md-microfirmware-template/bustap"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/tproto"
)

func main() {
	var (
		inPath  = flag.String("in", "", "Capture file of raw little-endian bus words.")
		ttyPort = flag.String("tty", "", "Serial port to read live bus words from.")
		ttyBaud = flag.Uint("baud", 115200, "Baud rate for -tty.")
	)
	flag.Parse()

	tap, err := openTap(*inPath, *ttyPort, *ttyBaud)
	if err != nil {
		fatalf("%v", err)
	}
	defer tap.Close()

	frames := 0
	parser := tproto.NewParser(
		func(f *tproto.Frame) {
			frames++
			printFrame(frames, f)
		},
		func(f *tproto.Frame) {
			fmt.Fprintf(os.Stderr, "checksum error: id=%#04x size=%d got=%#04x\n",
				f.CommandID, f.PayloadSize, f.Checksum)
		},
	)

	words := make([]uint16, 256)
	for {
		n, err := tap.ReadWords(words)
		for _, w := range words[:n] {
			parser.Feed(w)
		}
		if err == io.EOF {
			fmt.Printf("%d frames\n", frames)
			return
		}
		if err != nil {
			fatalf("read: %v", err)
		}
	}
}

func openTap(inPath, ttyPort string, baud uint) (*bustap.Tap, error) {
	switch {
	case inPath != "" && ttyPort != "":
		return nil, fmt.Errorf("use either -in or -tty, not both")
	case inPath != "":
		f, err := os.Open(inPath)
		if err != nil {
			return nil, err
		}
		return bustap.NewTap(f), nil
	case ttyPort != "":
		return bustap.Open(bustap.Config{Port: ttyPort, Baud: baud})
	default:
		return nil, fmt.Errorf("usage: busfeed -in capture.bin | -tty /dev/ttyACM0")
	}
}

func printFrame(n int, f *tproto.Frame) {
	payload := f.Payload[:f.PayloadSize]
	fmt.Printf("frame %d: id=%#04x size=%d", n, f.CommandID, f.PayloadSize)
	if f.PayloadSize >= 4 {
		fmt.Printf(" token=%#08x", tproto.Token(payload))
	}
	fmt.Println()
	for off := 0; off < len(payload); off += 16 {
		end := off + 16
		if end > len(payload) {
			end = len(payload)
		}
		fmt.Printf("  %04x:", off)
		for _, b := range payload[off:end] {
			fmt.Printf(" %02x", b)
		}
		fmt.Println()
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
