// Command uartmon is the PC end of the wire for a board running the usart
// driver: it opens a serial port with the same frame options the driver
// accepts and bridges it to the terminal. -list enumerates the ports the
// host can see.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/tarm/serial"
	bugst "go.bug.st/serial"
)

var (
	device   = flag.String("device", "/dev/ttyUSB0", "serial device path")
	baud     = flag.Int("baud", 9600, "baud rate")
	dataBits = flag.Int("databits", 8, "data bits (5..8)")
	stopBits = flag.Int("stopbits", 1, "stop bits (1 or 2)")
	parity   = flag.String("parity", "none", "parity: none, even or odd")
	list     = flag.Bool("list", false, "list serial ports and exit")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("uartmon: ")
	flag.Parse()

	if *list {
		listPorts()
		return
	}

	cfg, err := portConfig()
	if err != nil {
		log.Fatal(err)
	}
	port, err := serial.OpenPort(cfg)
	if err != nil {
		log.Fatalf("open %s: %v", *device, err)
	}
	defer port.Close()

	fmt.Fprintf(os.Stderr, "connected to %s at %d baud, ^C to quit\n", *device, *baud)

	go func() {
		if _, err := io.Copy(os.Stdout, port); err != nil {
			log.Fatalf("read %s: %v", *device, err)
		}
		os.Exit(0)
	}()
	if _, err := io.Copy(port, os.Stdin); err != nil {
		log.Fatalf("write %s: %v", *device, err)
	}
}

func listPorts() {
	ports, err := bugst.GetPortsList()
	if err != nil {
		log.Fatalf("list ports: %v", err)
	}
	if len(ports) == 0 {
		fmt.Println("no serial ports found")
		return
	}
	for _, p := range ports {
		fmt.Println(p)
	}
}

func portConfig() (*serial.Config, error) {
	cfg := &serial.Config{Name: *device, Baud: *baud}

	if *dataBits < 5 || *dataBits > 8 {
		return nil, fmt.Errorf("unsupported data bits %d", *dataBits)
	}
	cfg.Size = byte(*dataBits)

	switch *stopBits {
	case 1:
		cfg.StopBits = serial.Stop1
	case 2:
		cfg.StopBits = serial.Stop2
	default:
		return nil, fmt.Errorf("unsupported stop bits %d", *stopBits)
	}

	switch *parity {
	case "none":
		cfg.Parity = serial.ParityNone
	case "even":
		cfg.Parity = serial.ParityEven
	case "odd":
		cfg.Parity = serial.ParityOdd
	default:
		return nil, fmt.Errorf("unknown parity %q", *parity)
	}

	return cfg, nil
}
