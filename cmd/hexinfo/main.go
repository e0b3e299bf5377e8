// Command hexinfo summarizes an Intel HEX image before it goes to the
// flasher: per-segment load addresses and sizes, plus the total payload.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/marcinbor85/gohex"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("hexinfo: ")
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("usage: hexinfo <image.hex>")
	}
	name := flag.Arg(0)

	f, err := os.Open(name)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(f); err != nil {
		log.Fatalf("parse %s: %v", name, err)
	}

	segments := mem.GetDataSegments()
	total := 0
	for _, seg := range segments {
		fmt.Printf("segment 0x%06X  %6d bytes\n", seg.Address, len(seg.Data))
		total += len(seg.Data)
	}
	fmt.Printf("total %d bytes in %d segments\n", total, len(segments))
}
