// Command rdbhost is a development-only bring-up relay: it bridges a
// USB-serial link to a local TCP listener so `gdb target remote` can
// attach before the real cartridge FIFO transport is wired end to end.
// Grounded on driver/mjolnir/device.go's device-list-with-fallback
// serial.OpenPort pattern.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"runtime"

	"github.com/tarm/serial"
)

func main() {
	dev := flag.String("device", "", "serial device (default: platform-specific guess list)")
	addr := flag.String("listen", "localhost:2331", "TCP address gdb's target remote connects to")
	baud := flag.Int("baud", 115200, "serial baud rate")
	flag.Parse()

	if err := run(*dev, *addr, *baud); err != nil {
		fmt.Fprintf(os.Stderr, "rdbhost: %v\n", err)
		os.Exit(2)
	}
}

func run(dev, addr string, baud int) error {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))

	port, err := openSerial(dev, baud)
	if err != nil {
		return fmt.Errorf("open serial: %w", err)
	}
	defer port.Close()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()
	log.Printf("rdbhost: relaying %s on %s", addr, ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
		relay(conn, port)
	}
}

// relay pumps bytes both ways between a single gdb connection and the
// serial link until either side closes, then waits for the next
// connection; only one debugger session is meaningful at a time.
func relay(conn net.Conn, port io.ReadWriter) {
	defer conn.Close()
	done := make(chan struct{}, 2)
	go func() {
		io.Copy(port, conn)
		done <- struct{}{}
	}()
	go func() {
		io.Copy(conn, port)
		done <- struct{}{}
	}()
	<-done
}

func openSerial(dev string, baud int) (io.ReadWriteCloser, error) {
	var devices []string
	if dev != "" {
		devices = append(devices, dev)
	} else {
		switch runtime.GOOS {
		case "windows":
			devices = append(devices, "COM3")
		case "linux":
			devices = append(devices, "/dev/ttyUSB0", "/dev/ttyUSB1", "/dev/ttyACM0")
		case "darwin":
			devices = append(devices, "/dev/tty.usbserial-0001")
		}
	}
	if len(devices) == 0 {
		return nil, errors.New("no device specified")
	}
	var firstErr error
	for _, d := range devices {
		c := &serial.Config{Name: d, Baud: baud}
		s, err := serial.OpenPort(c)
		if err == nil {
			return s, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
